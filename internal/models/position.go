package models

// EventPosition is the (block, transaction, log) triple that totally orders
// events within a chain's history. Proposal and Vote rows carry the position
// of the last event applied to them so replayed deliveries can be detected.
type EventPosition struct {
	BlockNumber      uint64 `json:"blockNumber"`
	TransactionIndex uint   `json:"transactionIndex"`
	LogIndex         uint   `json:"logIndex"`
}
