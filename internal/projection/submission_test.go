package projection

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"projector/internal/events"
	"projector/internal/models"
	"projector/internal/storage"
)

var testCultureIndex = common.HexToAddress("0x5DA551C18109b58831abe8A5b9edc5F9a8E4887C")

func cultureEnv(block uint64, logIdx uint, ts time.Time) events.Envelope {
	return events.Envelope{
		ChainID:         8453,
		ContractAddress: testCultureIndex,
		BlockNumber:     block,
		BlockTimestamp:  ts,
		TransactionHash: common.HexToHash("0x0000000000000000000000000000000000000000000000000000000000000def"),
		LogIndex:        logIdx,
	}
}

func pieceCreated(pieceID int64, image string, ts time.Time) *events.PieceCreated {
	return &events.PieceCreated{
		Env:     cultureEnv(100, 1, ts),
		PieceID: big.NewInt(pieceID),
		Sponsor: common.HexToAddress("0xAA00000000000000000000000000000000000009"),
		Metadata: events.PieceMetadata{
			Name:        "Sunrise",
			Description: "a sunrise",
			MediaType:   1,
			Image:       image,
		},
		Creators: []events.PieceCreator{
			{Creator: common.HexToAddress("0xAB00000000000000000000000000000000000001"), BPS: big.NewInt(10000)},
		},
	}
}

const testSlug = "8453:0x5da551c18109b58831abe8a5b9edc5f9a8e4887c:5"

func TestPieceCreated(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	p := NewSubmissionProjector(repo)

	ts := time.Unix(1700000000, 0).UTC()
	if err := p.HandlePieceCreated(ctx, pieceCreated(5, "ipfs://QmSunrise", ts)); err != nil {
		t.Fatalf("HandlePieceCreated: %v", err)
	}

	sub, err := repo.FindSubmission(ctx, testSlug)
	if err != nil || sub == nil {
		t.Fatalf("submission not stored: %v", err)
	}
	if sub.URL != "https://revolution.mypinata.cloud/ipfs/QmSunrise" {
		t.Errorf("URL = %q, want gateway form", sub.URL)
	}
	if sub.MediaMetadata.Type != models.MediaTypeImage {
		t.Errorf("media type = %q, want image", sub.MediaMetadata.Type)
	}
	if sub.ThumbnailURL == nil || *sub.ThumbnailURL != sub.URL {
		t.Error("image pieces use the media URL as thumbnail")
	}
	if len(sub.Creators) != 1 || sub.Creators[0].BPS != 10000 {
		t.Errorf("creators = %+v", sub.Creators)
	}
	if !sub.IsOnchain || sub.HasBeenDropped {
		t.Errorf("flags wrong: onchain=%v dropped=%v", sub.IsOnchain, sub.HasBeenDropped)
	}
}

// Unsupported media URLs are policy-skipped: no record, no error.
func TestPieceCreatedUnsupportedMedia(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	p := NewSubmissionProjector(repo)

	if err := p.HandlePieceCreated(ctx, pieceCreated(5, "https://example.com/art.png", time.Unix(1700000000, 0))); err != nil {
		t.Fatalf("unsupported media must not error: %v", err)
	}
	if sub, _ := repo.FindSubmission(ctx, testSlug); sub != nil {
		t.Error("no submission row may exist for skipped media")
	}
}

// Redelivery of PieceCreated must not reset accumulated votes or flags.
func TestPieceCreatedRedeliveryPreservesState(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	p := NewSubmissionProjector(repo)

	ts := time.Unix(1700000000, 0).UTC()
	if err := p.HandlePieceCreated(ctx, pieceCreated(5, "ipfs://QmSunrise", ts)); err != nil {
		t.Fatalf("HandlePieceCreated: %v", err)
	}
	if err := p.HandleVoteCast(ctx, &events.PieceVoteCast{
		Env:         cultureEnv(110, 2, ts.Add(time.Minute)),
		PieceID:     big.NewInt(5),
		Voter:       common.HexToAddress("0xAC00000000000000000000000000000000000001"),
		Weight:      big.NewInt(40),
		TotalWeight: big.NewInt(40),
	}); err != nil {
		t.Fatalf("HandleVoteCast: %v", err)
	}
	if err := p.HandlePieceDropped(ctx, &events.PieceDropped{
		Env:     cultureEnv(111, 1, ts.Add(2*time.Minute)),
		PieceID: big.NewInt(5),
		Remover: common.HexToAddress("0xAD00000000000000000000000000000000000001"),
	}); err != nil {
		t.Fatalf("HandlePieceDropped: %v", err)
	}

	// Redeliver the creation event.
	if err := p.HandlePieceCreated(ctx, pieceCreated(5, "ipfs://QmSunrise", ts)); err != nil {
		t.Fatalf("redelivered HandlePieceCreated: %v", err)
	}

	sub, _ := repo.FindSubmission(ctx, testSlug)
	if sub.VotesWeight != 40 {
		t.Errorf("VotesWeight = %d, want preserved 40", sub.VotesWeight)
	}
	if !sub.HasBeenDropped {
		t.Error("HasBeenDropped must survive creation redelivery")
	}
}

// A re-vote by the same voter overwrites the upvote row and tracks the
// contract's running total.
func TestVoteCastRevote(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	p := NewSubmissionProjector(repo)

	ts := time.Unix(1700000000, 0).UTC()
	if err := p.HandlePieceCreated(ctx, pieceCreated(5, "ipfs://QmSunrise", ts)); err != nil {
		t.Fatalf("HandlePieceCreated: %v", err)
	}

	voter := common.HexToAddress("0xAC00000000000000000000000000000000000001")
	first := &events.PieceVoteCast{
		Env:         cultureEnv(110, 2, ts.Add(time.Minute)),
		PieceID:     big.NewInt(5),
		Voter:       voter,
		Weight:      big.NewInt(40),
		TotalWeight: big.NewInt(40),
	}
	second := &events.PieceVoteCast{
		Env:         cultureEnv(120, 1, ts.Add(2*time.Minute)),
		PieceID:     big.NewInt(5),
		Voter:       voter,
		Weight:      big.NewInt(55),
		TotalWeight: big.NewInt(55),
	}
	if err := p.HandleVoteCast(ctx, first); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if err := p.HandleVoteCast(ctx, second); err != nil {
		t.Fatalf("second vote: %v", err)
	}

	sub, _ := repo.FindSubmission(ctx, testSlug)
	if sub.VotesWeight != 55 {
		t.Errorf("VotesWeight = %d, want contract total 55", sub.VotesWeight)
	}

	upvote := repo.FindUpvote(testSlug + "-0xac00000000000000000000000000000000000001")
	if upvote == nil {
		t.Fatal("upvote row missing")
	}
	if upvote.Weight != 55 {
		t.Errorf("upvote Weight = %d, want overwritten 55", upvote.Weight)
	}
	if upvote.Snapshot != 120 {
		t.Errorf("upvote Snapshot = %d, want latest block", upvote.Snapshot)
	}
	if upvote.Strategy != "culture-index-v1" || upvote.Version != 1 {
		t.Errorf("strategy tags wrong: %+v", upvote)
	}
}

func TestVoteCastMissingSubmission(t *testing.T) {
	ctx := context.Background()
	p := NewSubmissionProjector(storage.NewMemoryRepository())

	err := p.HandleVoteCast(ctx, &events.PieceVoteCast{
		Env:         cultureEnv(110, 2, time.Unix(1700000000, 0)),
		PieceID:     big.NewInt(5),
		Voter:       common.HexToAddress("0xAC00000000000000000000000000000000000001"),
		Weight:      big.NewInt(40),
		TotalWeight: big.NewInt(40),
	})

	var missing *MissingPrerequisiteError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingPrerequisiteError, got %v", err)
	}
}

func TestPieceDropped(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	p := NewSubmissionProjector(repo)

	ts := time.Unix(1700000000, 0).UTC()
	if err := p.HandlePieceCreated(ctx, pieceCreated(5, "ipfs://QmSunrise", ts)); err != nil {
		t.Fatalf("HandlePieceCreated: %v", err)
	}
	if err := p.HandlePieceDropped(ctx, &events.PieceDropped{
		Env:     cultureEnv(130, 1, ts.Add(time.Hour)),
		PieceID: big.NewInt(5),
		Remover: common.HexToAddress("0xAD00000000000000000000000000000000000001"),
	}); err != nil {
		t.Fatalf("HandlePieceDropped: %v", err)
	}

	sub, _ := repo.FindSubmission(ctx, testSlug)
	if !sub.HasBeenDropped {
		t.Error("HasBeenDropped not set")
	}
	if sub.Name != "Sunrise" {
		t.Error("drop must not erase the record")
	}
}

// Inline SVG data URLs are a supported scheme.
func TestPieceCreatedInlineSVG(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	p := NewSubmissionProjector(repo)

	ev := pieceCreated(5, "data:image/svg+xml;base64,PHN2Zy8+", time.Unix(1700000000, 0).UTC())
	if err := p.HandlePieceCreated(ctx, ev); err != nil {
		t.Fatalf("HandlePieceCreated: %v", err)
	}
	sub, _ := repo.FindSubmission(ctx, testSlug)
	if sub == nil {
		t.Fatal("inline SVG submission not stored")
	}
	if sub.URL != "data:image/svg+xml;base64,PHN2Zy8+" {
		t.Errorf("data URLs must pass through untouched, got %q", sub.URL)
	}
}
