package identity

import (
	"errors"
	"testing"
)

func TestAuctionKeyStableAcrossCasing(t *testing.T) {
	a, err := AuctionKey(8453, "0xBB00000000000000000000000000000000000001", "0xAA00000000000000000000000000000000000002", "7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := AuctionKey(8453, "0xbb00000000000000000000000000000000000001", "0xaa00000000000000000000000000000000000002", "7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Errorf("expected case-insensitive keys, got %q vs %q", a, b)
	}
	want := "ethereum-8453-0xbb00000000000000000000000000000000000001-0xaa00000000000000000000000000000000000002-7"
	if a != want {
		t.Errorf("unexpected key format:\n got %q\nwant %q", a, want)
	}
}

func TestAuctionKeyMissingComponent(t *testing.T) {
	_, err := AuctionKey(8453, "", "0xaa", "7")
	if err == nil {
		t.Fatal("expected error for missing token contract")
	}
	var identityErr *IdentityError
	if !errors.As(err, &identityErr) {
		t.Errorf("expected *IdentityError, got %T", err)
	}
}

func TestBidKeyIncludesTxAndLogIndex(t *testing.T) {
	auctionKey := "ethereum-8453-0xbb-0xaa-7"
	a := BidKey(auctionKey, "0xDEADBEEF", 1)
	b := BidKey(auctionKey, "0xdeadbeef", 2)
	if a == b {
		t.Error("bids with different log indexes must derive different keys")
	}
	if a != "ethereum-8453-0xbb-0xaa-7-0xdeadbeef-1" {
		t.Errorf("unexpected bid key %q", a)
	}
}

func TestSubmissionSlug(t *testing.T) {
	got := SubmissionSlug(8453, "0xEE4f427CE740031c2E4FE04b0F05DC342bC51272", "12")
	want := "8453:0xee4f427ce740031c2e4fe04b0f05dc342bc51272:12"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestVoteAndProposalKeys(t *testing.T) {
	entityID, err := EntityID(8453, "0x9EA7fd1b8823a271bEC99B205B6c0C56d7c3eae9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entityID != "ethereum-8453-revolution-0x9ea7fd1b8823a271bec99b205b6c0c56d7c3eae9" {
		t.Errorf("unexpected entity id %q", entityID)
	}
	if got := ProposalKey(entityID, "3"); got != entityID+"-3" {
		t.Errorf("unexpected proposal key %q", got)
	}
	if got := VoteKey(entityID, "0xCC", "3"); got != entityID+"-0xcc-3" {
		t.Errorf("unexpected vote key %q", got)
	}
}

func TestEntityIDMissingTokenContract(t *testing.T) {
	if _, err := EntityID(8453, ""); err == nil {
		t.Fatal("expected error for missing token contract")
	}
}
