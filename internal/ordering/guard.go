// Package ordering implements the idempotence guard for aggregate mutations.
// It compares event positions so replayed or duplicate deliveries of an event
// cannot double-apply a tally or regress a status.
package ordering

import "projector/internal/models"

// AlreadyApplied reports whether a candidate event at the given position has
// already been reflected in state last touched at lastUpdated. It returns
// false (apply) only when lastUpdated is strictly earlier than the candidate
// under lexicographic (blockNumber, transactionIndex, logIndex) order.
//
// A zero transactionIndex or logIndex on the candidate is treated as "unknown,
// don't compare at that level" — delivery metadata may omit the finer-grained
// position. This conflates a true position 0 with an absent one; the behavior
// is kept because rows written by the legacy ingestion already encode it.
//
// A zero-valued lastUpdated (the state a Proposal or Vote is created with)
// always yields false for any candidate in a real block.
func AlreadyApplied(candidate, lastUpdated models.EventPosition) bool {
	if lastUpdated.BlockNumber < candidate.BlockNumber {
		return false
	}
	if lastUpdated.BlockNumber == candidate.BlockNumber &&
		candidate.TransactionIndex != 0 &&
		lastUpdated.TransactionIndex < candidate.TransactionIndex {
		return false
	}
	if lastUpdated.BlockNumber == candidate.BlockNumber &&
		lastUpdated.TransactionIndex == candidate.TransactionIndex &&
		candidate.LogIndex != 0 &&
		lastUpdated.LogIndex < candidate.LogIndex {
		return false
	}
	return true
}
