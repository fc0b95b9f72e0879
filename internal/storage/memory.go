package storage

import (
	"context"
	"encoding/json"
	"sync"

	"projector/internal/models"
)

// MemoryRepository is an in-memory Repository used by tests and local runs
// without a database. Records are deep-copied on the way in and out so callers
// can't mutate stored state behind the repository's back.
type MemoryRepository struct {
	mu          sync.RWMutex
	auctions    map[string]*models.Auction
	bids        map[string]*models.AuctionBid
	submissions map[string]*models.Submission
	upvotes     map[string]*models.Upvote
	proposals   map[string]*models.Proposal
	votes       map[string]*models.Vote
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		auctions:    make(map[string]*models.Auction),
		bids:        make(map[string]*models.AuctionBid),
		submissions: make(map[string]*models.Submission),
		upvotes:     make(map[string]*models.Upvote),
		proposals:   make(map[string]*models.Proposal),
		votes:       make(map[string]*models.Vote),
	}
}

// clone deep-copies src into a fresh value of the same type via JSON. All
// stored records marshal cleanly by construction.
func clone[T any](src *T) *T {
	raw, _ := json.Marshal(src)
	dst := new(T)
	_ = json.Unmarshal(raw, dst)
	return dst
}

func (m *MemoryRepository) FindAuction(ctx context.Context, uniqueID string) (*models.Auction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.auctions[uniqueID]; ok {
		return clone(a), nil
	}
	return nil, nil
}

func (m *MemoryRepository) UpsertAuction(ctx context.Context, auction *models.Auction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auctions[auction.UniqueID] = clone(auction)
	return nil
}

func (m *MemoryRepository) AuctionsByContract(ctx context.Context, chainID uint64, auctionContract string) ([]*models.Auction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Auction
	for _, a := range m.auctions {
		if a.ChainID == chainID && a.AuctionContractAddress == auctionContract {
			out = append(out, clone(a))
		}
	}
	return out, nil
}

func (m *MemoryRepository) FindAuctionBid(ctx context.Context, uniqueID string) (*models.AuctionBid, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if b, ok := m.bids[uniqueID]; ok {
		return clone(b), nil
	}
	return nil, nil
}

func (m *MemoryRepository) UpsertAuctionBid(ctx context.Context, bid *models.AuctionBid) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bids[bid.UniqueID] = clone(bid)
	return nil
}

func (m *MemoryRepository) FindSubmission(ctx context.Context, slug string) (*models.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.submissions[slug]; ok {
		return clone(s), nil
	}
	return nil, nil
}

func (m *MemoryRepository) UpsertSubmission(ctx context.Context, submission *models.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions[submission.Slug] = clone(submission)
	return nil
}

func (m *MemoryRepository) UpsertUpvote(ctx context.Context, upvote *models.Upvote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := clone(upvote)
	// Matches the SQL conflict clause: creation time and the stale flag
	// survive a re-vote overwrite.
	if existing, ok := m.upvotes[upvote.UniqueID]; ok {
		stored.CreatedAt = existing.CreatedAt
		stored.Stale = existing.Stale
	}
	m.upvotes[upvote.UniqueID] = stored
	return nil
}

// FindUpvote is not part of Repository; tests use it to inspect stored votes.
func (m *MemoryRepository) FindUpvote(uniqueID string) *models.Upvote {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.upvotes[uniqueID]; ok {
		return clone(u)
	}
	return nil
}

func (m *MemoryRepository) FindProposal(ctx context.Context, uniqueID string) (*models.Proposal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.proposals[uniqueID]; ok {
		return clone(p), nil
	}
	return nil, nil
}

func (m *MemoryRepository) UpsertProposal(ctx context.Context, proposal *models.Proposal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.proposals[proposal.UniqueID] = clone(proposal)
	return nil
}

func (m *MemoryRepository) FindVote(ctx context.Context, uniqueID string) (*models.Vote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.votes[uniqueID]; ok {
		return clone(v), nil
	}
	return nil, nil
}

func (m *MemoryRepository) UpsertVote(ctx context.Context, vote *models.Vote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.votes[vote.UniqueID] = clone(vote)
	return nil
}

func (m *MemoryRepository) Ping(ctx context.Context) error { return nil }

func (m *MemoryRepository) Close() error { return nil }
