package projection

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"projector/internal/events"
	"projector/internal/resolver"
	"projector/internal/storage"
)

var (
	testAuctionHouse  = common.HexToAddress("0xA153B0310354B189E18797d5d7DFDA2c924bdc3D")
	testTokenContract = "0xb0b0000000000000000000000000000000000001"
)

type fakeResolver struct {
	tokenContract string
	settings      resolver.AuctionSettings
	names         map[string]string
	unavailable   bool
}

func defaultResolver() *fakeResolver {
	return &fakeResolver{
		tokenContract: testTokenContract,
		settings: resolver.AuctionSettings{
			TimeBuffer:                "300",
			ReservePrice:              "10",
			MinBidIncrementPercentage: "5",
			CreatorRateBps:            1000,
			EntropyRateBps:            500,
		},
		names: map[string]string{},
	}
}

func (f *fakeResolver) TokenContract(ctx context.Context, auctionContract string) (string, error) {
	if f.unavailable {
		return "", resolver.ErrUnavailable
	}
	return f.tokenContract, nil
}

func (f *fakeResolver) AuctionSettings(ctx context.Context, auctionContract string) (resolver.AuctionSettings, error) {
	if f.unavailable {
		return resolver.AuctionSettings{}, resolver.ErrUnavailable
	}
	return f.settings, nil
}

func (f *fakeResolver) DisplayName(ctx context.Context, tokenContract, tokenID string) resolver.Resolved[string] {
	if name, ok := f.names[tokenID]; ok {
		return resolver.Found(name)
	}
	return resolver.NotFound[string]()
}

func auctionEnv(block uint64, txIdx, logIdx uint, ts time.Time) events.Envelope {
	return events.Envelope{
		ChainID:          8453,
		ContractAddress:  testAuctionHouse,
		BlockNumber:      block,
		BlockTimestamp:   ts,
		TransactionHash:  common.HexToHash("0x0000000000000000000000000000000000000000000000000000000000000abc"),
		TransactionIndex: txIdx,
		LogIndex:         logIdx,
	}
}

const testAuctionKey = "ethereum-8453-0xb0b0000000000000000000000000000000000001-0xa153b0310354b189e18797d5d7dfda2c924bdc3d-7"

// Full lifecycle: create, two bids, settle. The settled record carries the
// winning bid and winner, and both bids remain as distinct rows.
func TestAuctionLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	p := NewAuctionProjector(repo, defaultResolver())

	start := time.Unix(1700000000, 0).UTC()
	created := &events.AuctionCreated{
		Env:       auctionEnv(100, 1, 1, start),
		TokenID:   big.NewInt(7),
		StartTime: 1700000000,
		EndTime:   1700086400,
	}
	if err := p.HandleAuctionCreated(ctx, created); err != nil {
		t.Fatalf("HandleAuctionCreated: %v", err)
	}

	auction, err := repo.FindAuction(ctx, testAuctionKey)
	if err != nil || auction == nil {
		t.Fatalf("auction not stored under %s: %v", testAuctionKey, err)
	}
	if auction.Name != "7" {
		t.Errorf("Name = %q, want raw token id fallback %q", auction.Name, "7")
	}
	if auction.TimeBuffer != "300" || auction.ReservePrice != "10" || auction.CreatorRateBps != 1000 {
		t.Errorf("settings snapshot wrong: %+v", auction)
	}
	if auction.Winner != nil || auction.WinningBid != nil {
		t.Error("fresh auction must have no settlement fields")
	}

	bid1 := &events.AuctionBid{
		Env:     auctionEnv(101, 0, 3, start.Add(time.Minute)),
		TokenID: big.NewInt(7),
		Bidder:  common.HexToAddress("0xBB00000000000000000000000000000000000001"),
		Sender:  common.HexToAddress("0xBB00000000000000000000000000000000000001"),
		Value:   big.NewInt(100),
	}
	bid2 := &events.AuctionBid{
		Env:     auctionEnv(102, 0, 5, start.Add(2*time.Minute)),
		TokenID: big.NewInt(7),
		Bidder:  common.HexToAddress("0xCC00000000000000000000000000000000000002"),
		Sender:  common.HexToAddress("0xCC00000000000000000000000000000000000002"),
		Value:   big.NewInt(150),
	}
	if err := p.HandleAuctionBid(ctx, bid1); err != nil {
		t.Fatalf("HandleAuctionBid #1: %v", err)
	}
	if err := p.HandleAuctionBid(ctx, bid2); err != nil {
		t.Fatalf("HandleAuctionBid #2: %v", err)
	}

	settled := &events.AuctionSettled{
		Env:                  auctionEnv(200, 0, 1, start.Add(24*time.Hour)),
		TokenID:              big.NewInt(7),
		Winner:               common.HexToAddress("0xCC00000000000000000000000000000000000002"),
		Amount:               big.NewInt(150),
		PointsPaidToCreators: big.NewInt(0),
		ETHPaidToCreators:    big.NewInt(15),
	}
	if err := p.HandleAuctionSettled(ctx, settled); err != nil {
		t.Fatalf("HandleAuctionSettled: %v", err)
	}

	auction, _ = repo.FindAuction(ctx, testAuctionKey)
	if auction.WinningBid == nil || *auction.WinningBid != "150" {
		t.Errorf("WinningBid = %v, want 150", auction.WinningBid)
	}
	if auction.Winner == nil || *auction.Winner != "0xcc00000000000000000000000000000000000002" {
		t.Errorf("Winner = %v, want lower-cased winner address", auction.Winner)
	}
	if auction.PointsPaidToCreators != nil {
		t.Error("zero points payout must stay nil")
	}
	if auction.ETHPaidToCreators == nil || *auction.ETHPaidToCreators != "15" {
		t.Errorf("ETHPaidToCreators = %v, want 15", auction.ETHPaidToCreators)
	}

	// Start time from creation must survive settlement.
	if !auction.Details.StartTime.Equal(time.Unix(1700000000, 0).UTC()) {
		t.Errorf("Details.StartTime clobbered: %v", auction.Details.StartTime)
	}

	bids, err := repo.AuctionsByContract(ctx, 8453, "0xa153b0310354b189e18797d5d7dfda2c924bdc3d")
	if err != nil || len(bids) != 1 {
		t.Fatalf("expected exactly one auction row, got %d (%v)", len(bids), err)
	}
	for _, env := range []events.Envelope{bid1.Env, bid2.Env} {
		key := testAuctionKey + "-0x0000000000000000000000000000000000000000000000000000000000000abc-" + itoa(env.LogIndex)
		row, err := repo.FindAuctionBid(ctx, key)
		if err != nil || row == nil {
			t.Errorf("bid row %s missing: %v", key, err)
		}
	}
}

func itoa(v uint) string {
	return big.NewInt(int64(v)).String()
}

// Redelivering the same events leaves the same state.
func TestAuctionReplayIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	p := NewAuctionProjector(repo, defaultResolver())

	ts := time.Unix(1700000000, 0).UTC()
	created := &events.AuctionCreated{
		Env:       auctionEnv(100, 1, 1, ts),
		TokenID:   big.NewInt(7),
		StartTime: 1700000000,
		EndTime:   1700086400,
	}
	bid := &events.AuctionBid{
		Env:     auctionEnv(101, 0, 3, ts.Add(time.Minute)),
		TokenID: big.NewInt(7),
		Bidder:  common.HexToAddress("0xBB00000000000000000000000000000000000001"),
		Sender:  common.HexToAddress("0xBB00000000000000000000000000000000000001"),
		Value:   big.NewInt(100),
	}

	for i := 0; i < 2; i++ {
		if err := p.HandleAuctionCreated(ctx, created); err != nil {
			t.Fatalf("replay %d AuctionCreated: %v", i, err)
		}
		if err := p.HandleAuctionBid(ctx, bid); err != nil {
			t.Fatalf("replay %d AuctionBid: %v", i, err)
		}
	}

	auction, _ := repo.FindAuction(ctx, testAuctionKey)
	if auction == nil || auction.ReservePrice != "10" {
		t.Fatalf("auction state drifted under replay: %+v", auction)
	}
}

// AuctionExtended only touches details.endTime.
func TestAuctionExtendedStructuralMerge(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	p := NewAuctionProjector(repo, defaultResolver())

	ts := time.Unix(1700000000, 0).UTC()
	created := &events.AuctionCreated{
		Env:       auctionEnv(100, 1, 1, ts),
		TokenID:   big.NewInt(7),
		StartTime: 1700000000,
		EndTime:   1700086400,
	}
	if err := p.HandleAuctionCreated(ctx, created); err != nil {
		t.Fatalf("HandleAuctionCreated: %v", err)
	}

	extended := &events.AuctionExtended{
		Env:     auctionEnv(150, 0, 2, ts.Add(time.Hour)),
		TokenID: big.NewInt(7),
		EndTime: 1700090000,
	}
	if err := p.HandleAuctionExtended(ctx, extended); err != nil {
		t.Fatalf("HandleAuctionExtended: %v", err)
	}

	auction, _ := repo.FindAuction(ctx, testAuctionKey)
	if !auction.Details.EndTime.Equal(time.Unix(1700090000, 0).UTC()) {
		t.Errorf("EndTime = %v, want extended time", auction.Details.EndTime)
	}
	if !auction.Details.StartTime.Equal(time.Unix(1700000000, 0).UTC()) {
		t.Errorf("StartTime = %v, sibling field must survive the merge", auction.Details.StartTime)
	}
}

func TestAuctionExtendedMissingPrerequisite(t *testing.T) {
	ctx := context.Background()
	p := NewAuctionProjector(storage.NewMemoryRepository(), defaultResolver())

	err := p.HandleAuctionExtended(ctx, &events.AuctionExtended{
		Env:     auctionEnv(150, 0, 2, time.Unix(1700000000, 0)),
		TokenID: big.NewInt(9),
		EndTime: 1700090000,
	})

	var missing *MissingPrerequisiteError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingPrerequisiteError, got %v", err)
	}
	if missing.EntityType != "auction" {
		t.Errorf("EntityType = %q, want auction", missing.EntityType)
	}
}

func TestManifestoUpdated(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	p := NewAuctionProjector(repo, defaultResolver())

	ts := time.Unix(1700000000, 0).UTC()
	if err := p.HandleAuctionCreated(ctx, &events.AuctionCreated{
		Env:       auctionEnv(100, 1, 1, ts),
		TokenID:   big.NewInt(7),
		StartTime: 1700000000,
		EndTime:   1700086400,
	}); err != nil {
		t.Fatalf("HandleAuctionCreated: %v", err)
	}

	if err := p.HandleManifestoUpdated(ctx, &events.ManifestoUpdated{
		Env:     auctionEnv(210, 0, 1, ts.Add(25*time.Hour)),
		TokenID: big.NewInt(7),
		Member:  common.HexToAddress("0xCC00000000000000000000000000000000000002"),
		Speech:  "vive la revolution",
	}); err != nil {
		t.Fatalf("HandleManifestoUpdated: %v", err)
	}

	auction, _ := repo.FindAuction(ctx, testAuctionKey)
	if auction.AcceptanceManifestoSpeech == nil || *auction.AcceptanceManifestoSpeech != "vive la revolution" {
		t.Errorf("speech = %v", auction.AcceptanceManifestoSpeech)
	}
}

// An unavailable resolver aborts the event with a typed error so redelivery
// can heal it; nothing is written.
func TestAuctionCreatedResolverUnavailable(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	aux := defaultResolver()
	aux.unavailable = true
	p := NewAuctionProjector(repo, aux)

	err := p.HandleAuctionCreated(ctx, &events.AuctionCreated{
		Env:       auctionEnv(100, 1, 1, time.Unix(1700000000, 0)),
		TokenID:   big.NewInt(7),
		StartTime: 1700000000,
		EndTime:   1700086400,
	})
	if !errors.Is(err, resolver.ErrUnavailable) {
		t.Fatalf("expected error wrapping ErrUnavailable, got %v", err)
	}

	if auction, _ := repo.FindAuction(ctx, testAuctionKey); auction != nil {
		t.Error("no auction row may be written when the resolver is down")
	}
}

// The display name snapshot prefers the NFT metadata name when available.
func TestAuctionCreatedDisplayName(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	aux := defaultResolver()
	aux.names["7"] = "Vrb #7"
	p := NewAuctionProjector(repo, aux)

	if err := p.HandleAuctionCreated(ctx, &events.AuctionCreated{
		Env:       auctionEnv(100, 1, 1, time.Unix(1700000000, 0).UTC()),
		TokenID:   big.NewInt(7),
		StartTime: 1700000000,
		EndTime:   1700086400,
	}); err != nil {
		t.Fatalf("HandleAuctionCreated: %v", err)
	}

	auction, _ := repo.FindAuction(ctx, testAuctionKey)
	if auction.Name != "Vrb #7" {
		t.Errorf("Name = %q, want resolved metadata name", auction.Name)
	}
}
