package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// handleIndex returns basic service information
// GET / - Returns service info and available endpoints
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	info := map[string]interface{}{
		"service":     "Revolution Projector",
		"version":     "1.0.0",
		"description": "Event projection layer for the Revolution protocol on Base",
		"endpoints": map[string]string{
			"GET /":                 "This page - Service information",
			"GET /health":           "Health check endpoint",
			"GET /metrics":          "Prometheus metrics for monitoring",
			"GET /auctions":         "List auctions for a contract (?chain_id=&contract=)",
			"GET /auctions/{id}":    "Get auction by unique id",
			"GET /proposals/{id}":   "Get proposal by unique id",
			"GET /submissions/{id}": "Get submission by slug",
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}

// handleHealth returns health status
// GET /health - Health check for monitoring systems
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.repository.Ping(r.Context()); err != nil {
		slog.Error("Health check failed", "error", err)
		s.sendError(w, "Database unhealthy", http.StatusServiceUnavailable)
		return
	}

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "revolution-projector",
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

// handleMetrics returns Prometheus metrics
// GET /metrics - Prometheus scraping endpoint
func (s *Server) handleMetrics() http.Handler {
	return promhttp.Handler()
}

// handleListAuctions lists auctions under one (chain, contract) scope
// GET /auctions?chain_id=8453&contract=0x...
func (s *Server) handleListAuctions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	contract := query.Get("contract")
	if contract == "" {
		s.sendError(w, "contract query parameter required", http.StatusBadRequest)
		return
	}

	chainID := uint64(8453)
	if chainStr := query.Get("chain_id"); chainStr != "" {
		parsed, err := strconv.ParseUint(chainStr, 10, 64)
		if err != nil {
			s.sendError(w, "invalid chain_id", http.StatusBadRequest)
			return
		}
		chainID = parsed
	}

	auctions, err := s.repository.AuctionsByContract(r.Context(), chainID, contract)
	if err != nil {
		slog.Error("Failed to list auctions", "contract", contract, "error", err)
		s.sendError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"auctions": auctions,
		"total":    len(auctions),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleGetAuction returns one auction by its unique id
// GET /auctions/{id}
func (s *Server) handleGetAuction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		s.sendError(w, "Auction ID required", http.StatusBadRequest)
		return
	}

	auction, err := s.repository.FindAuction(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get auction", "auction_id", id, "error", err)
		s.sendError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if auction == nil {
		s.sendError(w, "Auction not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(auction)
}

// handleGetProposal returns one proposal by its unique id
// GET /proposals/{id}
func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		s.sendError(w, "Proposal ID required", http.StatusBadRequest)
		return
	}

	proposal, err := s.repository.FindProposal(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get proposal", "proposal_id", id, "error", err)
		s.sendError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if proposal == nil {
		s.sendError(w, "Proposal not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(proposal)
}

// handleGetSubmission returns one submission by its slug
// GET /submissions/{id}
func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		s.sendError(w, "Submission slug required", http.StatusBadRequest)
		return
	}

	submission, err := s.repository.FindSubmission(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get submission", "slug", id, "error", err)
		s.sendError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if submission == nil {
		s.sendError(w, "Submission not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(submission)
}

// sendError sends a JSON error response
func (s *Server) sendError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
