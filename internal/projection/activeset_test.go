package projection

import (
	"context"
	"math/big"
	"testing"
	"time"

	"projector/internal/events"
	"projector/internal/storage"
)

// Two auctions under the same house: one still open at the event's block
// time, one already over. Only the open one picks up the new setting.
func TestActiveSetUpdateFiltersByEndTime(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	p := NewAuctionProjector(repo, defaultResolver())

	base := time.Unix(1700000000, 0).UTC()

	// Auction A ends after the settings event, B before it.
	if err := p.HandleAuctionCreated(ctx, &events.AuctionCreated{
		Env:       auctionEnv(100, 0, 1, base),
		TokenID:   big.NewInt(1),
		StartTime: uint64(base.Unix()),
		EndTime:   uint64(base.Add(20 * time.Minute).Unix()),
	}); err != nil {
		t.Fatalf("create A: %v", err)
	}
	if err := p.HandleAuctionCreated(ctx, &events.AuctionCreated{
		Env:       auctionEnv(101, 0, 1, base),
		TokenID:   big.NewInt(2),
		StartTime: uint64(base.Unix()),
		EndTime:   uint64(base.Add(5 * time.Minute).Unix()),
	}); err != nil {
		t.Fatalf("create B: %v", err)
	}

	update := &events.AuctionReservePriceUpdated{
		Env:          auctionEnv(120, 0, 1, base.Add(10*time.Minute)),
		ReservePrice: big.NewInt(77),
	}
	if err := p.HandleReservePriceUpdated(ctx, update); err != nil {
		t.Fatalf("HandleReservePriceUpdated: %v", err)
	}

	keyA := "ethereum-8453-" + testTokenContract + "-0xa153b0310354b189e18797d5d7dfda2c924bdc3d-1"
	keyB := "ethereum-8453-" + testTokenContract + "-0xa153b0310354b189e18797d5d7dfda2c924bdc3d-2"

	a, _ := repo.FindAuction(ctx, keyA)
	if a.ReservePrice != "77" {
		t.Errorf("active auction A ReservePrice = %q, want 77", a.ReservePrice)
	}
	b, _ := repo.FindAuction(ctx, keyB)
	if b.ReservePrice != "10" {
		t.Errorf("ended auction B ReservePrice = %q, want snapshot 10", b.ReservePrice)
	}
}

// A settings event before any auction exists is a silent no-op.
func TestActiveSetUpdateZeroMatches(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	p := NewAuctionProjector(repo, defaultResolver())

	err := p.HandleTimeBufferUpdated(ctx, &events.AuctionTimeBufferUpdated{
		Env:        auctionEnv(50, 0, 1, time.Unix(1700000000, 0)),
		TimeBuffer: big.NewInt(600),
	})
	if err != nil {
		t.Fatalf("zero-match settings update must not fail: %v", err)
	}
}

// An auction ending exactly at the event's block time is still active.
func TestActiveSetBoundaryInclusive(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	p := NewAuctionProjector(repo, defaultResolver())

	base := time.Unix(1700000000, 0).UTC()
	if err := p.HandleAuctionCreated(ctx, &events.AuctionCreated{
		Env:       auctionEnv(100, 0, 1, base),
		TokenID:   big.NewInt(3),
		StartTime: uint64(base.Unix()),
		EndTime:   uint64(base.Add(10 * time.Minute).Unix()),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := p.HandleEntropyRateBpsUpdated(ctx, &events.EntropyRateBpsUpdated{
		Env:     auctionEnv(120, 0, 1, base.Add(10*time.Minute)),
		RateBps: big.NewInt(2500),
	}); err != nil {
		t.Fatalf("HandleEntropyRateBpsUpdated: %v", err)
	}

	key := "ethereum-8453-" + testTokenContract + "-0xa153b0310354b189e18797d5d7dfda2c924bdc3d-3"
	a, _ := repo.FindAuction(ctx, key)
	if a.EntropyRateBps != 2500 {
		t.Errorf("EntropyRateBps = %d, want 2500 at the inclusive boundary", a.EntropyRateBps)
	}
}
