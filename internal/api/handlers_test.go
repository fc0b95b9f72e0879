package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"projector/internal/models"
	"projector/internal/storage"
)

func testServer(t *testing.T) (*Server, *storage.MemoryRepository) {
	t.Helper()
	repo := storage.NewMemoryRepository()
	return NewServer(0, repo), repo
}

func TestHealth(t *testing.T) {
	s, _ := testServer(t)

	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %v", body["status"])
	}
}

func TestGetAuction(t *testing.T) {
	s, repo := testServer(t)

	auction := &models.Auction{
		UniqueID:               "ethereum-8453-0xtoken-0xhouse-7",
		ChainID:                8453,
		AuctionContractAddress: "0xhouse",
		NFTTokenID:             "7",
		Name:                   "Vrb #7",
	}
	if err := repo.UpsertAuction(context.Background(), auction); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auctions/ethereum-8453-0xtoken-0xhouse-7", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got models.Auction
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Name != "Vrb #7" {
		t.Errorf("Name = %q", got.Name)
	}
}

func TestGetAuctionNotFound(t *testing.T) {
	s, _ := testServer(t)

	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auctions/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestListAuctionsRequiresContract(t *testing.T) {
	s, _ := testServer(t)

	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auctions", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetSubmission(t *testing.T) {
	s, repo := testServer(t)

	sub := &models.Submission{
		Slug:    "8453:0xindex:5",
		ChainID: 8453,
		PieceID: "5",
		Name:    "Sunrise",
	}
	if err := repo.UpsertSubmission(context.Background(), sub); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/submissions/8453:0xindex:5", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got models.Submission
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Name != "Sunrise" {
		t.Errorf("Name = %q", got.Name)
	}
}
