// Package identity derives the deterministic keys that make every projected
// entity addressable. All derivations are pure and case-insensitive on
// addresses; the key formats are frozen because downstream applications key
// their own reads on them.
package identity

import (
	"fmt"
	"strings"
)

// IdentityError reports a missing component needed to derive a key. The event
// being processed must be aborted rather than written under a partial key.
type IdentityError struct {
	Entity string
	Reason string
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf("cannot derive %s key: %s", e.Entity, e.Reason)
}

// Normalize lower-cases an address (or hash) for key derivation and storage.
func Normalize(address string) string {
	return strings.ToLower(address)
}

// AuctionKey derives the auction id:
// ethereum-{chainId}-{tokenContract}-{auctionContract}-{tokenId}
func AuctionKey(chainID uint64, tokenContract, auctionContract, tokenID string) (string, error) {
	if tokenContract == "" || auctionContract == "" {
		return "", &IdentityError{
			Entity: "auction",
			Reason: fmt.Sprintf("missing token or auction contract for %d-%s-%s-%s",
				chainID, tokenID, tokenContract, auctionContract),
		}
	}
	return fmt.Sprintf("ethereum-%d-%s-%s-%s",
		chainID, Normalize(tokenContract), Normalize(auctionContract), tokenID), nil
}

// BidKey derives the bid id under an auction. Including both the transaction
// hash and the log index keeps multiple bids within one transaction distinct.
func BidKey(auctionKey, txHash string, logIndex uint) string {
	return fmt.Sprintf("%s-%s-%d", auctionKey, Normalize(txHash), logIndex)
}

// SubmissionSlug derives the culture-index piece id:
// {chainId}:{contractAddress}:{pieceId}
func SubmissionSlug(chainID uint64, contractAddress, pieceID string) string {
	return fmt.Sprintf("%d:%s:%s", chainID, Normalize(contractAddress), pieceID)
}

// UpvoteKey derives the per-(submission, voter) upvote id; re-votes by the
// same voter land on the same key.
func UpvoteKey(slug, voter string) string {
	return fmt.Sprintf("%s-%s", slug, Normalize(voter))
}

// EntityID derives the governance entity id from its token contract:
// ethereum-{chainId}-revolution-{tokenContract}
func EntityID(chainID uint64, tokenContract string) (string, error) {
	if tokenContract == "" {
		return "", &IdentityError{Entity: "governance entity", Reason: "missing token contract"}
	}
	return fmt.Sprintf("ethereum-%d-revolution-%s", chainID, Normalize(tokenContract)), nil
}

// ProposalKey derives the proposal id under a governance entity.
func ProposalKey(entityID, proposalID string) string {
	return fmt.Sprintf("%s-%s", entityID, proposalID)
}

// VoteKey derives the per-(entity, voter, proposal) vote id.
func VoteKey(entityID, voter, proposalID string) string {
	return fmt.Sprintf("%s-%s-%s", entityID, Normalize(voter), proposalID)
}
