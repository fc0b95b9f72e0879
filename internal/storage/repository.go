package storage

import (
	"context"

	"projector/internal/models"
)

// Repository defines the interface for all storage operations. Find methods
// return (nil, nil) when no row exists; absence is a normal outcome the
// projection rules branch on, not an error.
type Repository interface {
	// Auctions
	FindAuction(ctx context.Context, uniqueID string) (*models.Auction, error)
	UpsertAuction(ctx context.Context, auction *models.Auction) error
	// AuctionsByContract lists every auction under one (chain, contract) scope.
	// Used only by the active-set batch updater.
	AuctionsByContract(ctx context.Context, chainID uint64, auctionContract string) ([]*models.Auction, error)

	// Auction bids
	FindAuctionBid(ctx context.Context, uniqueID string) (*models.AuctionBid, error)
	UpsertAuctionBid(ctx context.Context, bid *models.AuctionBid) error

	// Submissions
	FindSubmission(ctx context.Context, slug string) (*models.Submission, error)
	UpsertSubmission(ctx context.Context, submission *models.Submission) error

	// Upvotes
	UpsertUpvote(ctx context.Context, upvote *models.Upvote) error

	// Proposals
	FindProposal(ctx context.Context, uniqueID string) (*models.Proposal, error)
	UpsertProposal(ctx context.Context, proposal *models.Proposal) error

	// Votes
	FindVote(ctx context.Context, uniqueID string) (*models.Vote, error)
	UpsertVote(ctx context.Context, vote *models.Vote) error

	// Health & Maintenance
	Ping(ctx context.Context) error
	Close() error
}
