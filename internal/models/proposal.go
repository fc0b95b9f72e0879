package models

import "time"

// ProposalStatus is the governance proposal lifecycle state.
type ProposalStatus string

const (
	ProposalStatusPending   ProposalStatus = "pending"
	ProposalStatusActive    ProposalStatus = "active"
	ProposalStatusQueued    ProposalStatus = "queued"
	ProposalStatusExecuted  ProposalStatus = "executed"
	ProposalStatusCancelled ProposalStatus = "cancelled"
	ProposalStatusVetoed    ProposalStatus = "vetoed"
)

// ExecutionValue carries a call's attached value both as an exact wei quantity
// and as a float ETH amount for display (legacy record shape).
type ExecutionValue struct {
	ETH      float64 `json:"eth"`
	Quantity float64 `json:"quantity"`
}

// ExecutionData is one target call of a proposal.
type ExecutionData struct {
	Calldata  string         `json:"calldata"`
	Signature string         `json:"signature"`
	Target    string         `json:"target"`
	Value     ExecutionValue `json:"value"`
}

// ProposalOption is one entry of the options map: a vote choice plus its
// accumulated tally. VoteCount is a decimal string and only ever mutated
// through exact big-integer addition.
type ProposalOption struct {
	Name          string          `json:"name"`
	VoteCount     string          `json:"voteCount"`
	UniqueVotes   int             `json:"uniqueVotes"`
	ExecutionData []ExecutionData `json:"executionData"`
}

// PayoutAmount is the proposal's total attached value.
type PayoutAmount struct {
	Quantity string  `json:"quantity"` // exact wei sum
	ETH      float64 `json:"eth"`
}

// ProposalCreation records where the proposal entered the chain.
type ProposalCreation struct {
	Date            time.Time `json:"date"`
	Block           uint64    `json:"block"`
	TransactionHash string    `json:"transactionHash"`
}

// ProposalMetadata holds the voting window in blocks.
type ProposalMetadata struct {
	StartBlock uint64 `json:"startBlock"`
	EndBlock   uint64 `json:"endBlock"`
}

// ProposalStrategy snapshots the voting requirements at creation.
type ProposalStrategy struct {
	ProposalThreshold string `json:"proposalThreshold"`
	SnapshotBlock     uint64 `json:"snapshotBlock"`
}

// Proposal is one projected governance proposal per (entity, proposal id).
// LastUpdated is the ordering-guard token, never a business timestamp.
type Proposal struct {
	UniqueID           string `json:"uniqueId"`
	EntityID           string `json:"entityId"`
	ProposalID         string `json:"proposalId"`
	ChainID            uint64 `json:"chainId"`
	TokenContract      string `json:"tokenContract"`
	GovernanceContract string `json:"governanceContract"`

	Proposer    string   `json:"proposer"`
	Targets     []string `json:"targets"`
	Values      []string `json:"values"` // wei amounts as decimal strings
	Signatures  []string `json:"signatures"`
	Calldatas   []string `json:"calldatas"`
	Description string   `json:"description"`

	Status  ProposalStatus            `json:"status"`
	Options map[string]ProposalOption `json:"options"` // keyed by option index

	TotalVotes       string `json:"totalVotes"` // decimal string
	TotalUniqueVotes int    `json:"totalUniqueVotes"`

	LastUpdated EventPosition `json:"lastUpdated"`

	Creation     ProposalCreation `json:"creation"`
	Metadata     ProposalMetadata `json:"metadata"`
	Strategy     ProposalStrategy `json:"strategy"`
	PayoutAmount PayoutAmount     `json:"payoutAmount"`

	Blockchain  string `json:"blockchain"`
	Network     string `json:"network"`
	TrackerType string `json:"trackerType"`
	Type        string `json:"type"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// Option index keys and display names, fixed for the three-choice governor.
const (
	OptionAgainst = "0"
	OptionFor     = "1"
	OptionAbstain = "2"
)

// NewProposalOptions returns the default zeroed options map; the For option
// carries the proposal's decoded execution data.
func NewProposalOptions(executionData []ExecutionData) map[string]ProposalOption {
	return map[string]ProposalOption{
		OptionAgainst: {Name: "Against", VoteCount: "0", UniqueVotes: 0, ExecutionData: []ExecutionData{}},
		OptionFor:     {Name: "For", VoteCount: "0", UniqueVotes: 0, ExecutionData: executionData},
		OptionAbstain: {Name: "Abstain", VoteCount: "0", UniqueVotes: 0, ExecutionData: []ExecutionData{}},
	}
}

// VotedAt records where a vote entered the chain.
type VotedAt struct {
	Block uint64    `json:"block"`
	Time  time.Time `json:"time"`
}

// Vote is one projected ballot per (entity, voter, proposal). A later vote by
// the same voter overwrites the stored fields; LastUpdated guards the
// CountedInProposal flag independently of the proposal's own guard.
type Vote struct {
	UniqueID      string `json:"uniqueId"`
	EntityID      string `json:"entityId"`
	ProposalID    string `json:"proposalId"`
	ChainID       uint64 `json:"chainId"`
	TokenContract string `json:"tokenContract"`

	Voter    string `json:"voter"`
	OptionID int    `json:"optionId"`
	Weight   string `json:"weight"` // decimal string
	Reason   string `json:"reason"`

	CountedInProposal bool          `json:"countedInProposal"`
	LastUpdated       EventPosition `json:"lastUpdated"`

	Blockchain string  `json:"blockchain"`
	Network    string  `json:"network"`
	Type       string  `json:"type"`
	VotedAt    VotedAt `json:"votedAt"`

	UpdatedAt time.Time `json:"updatedAt"`
}
