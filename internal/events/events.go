// Package events defines the decoded log events the projection layer consumes.
// One variant type exists per tracked contract event; the router dispatches
// over the closed set with a type switch.
package events

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"projector/internal/models"
)

// Envelope carries the chain coordinates every decoded event arrives with.
type Envelope struct {
	ChainID          uint64
	ContractAddress  common.Address
	BlockNumber      uint64
	BlockTimestamp   time.Time
	TransactionHash  common.Hash
	TransactionIndex uint
	LogIndex         uint
}

// Position returns the envelope's event position for ordering-guard checks.
func (e *Envelope) Position() models.EventPosition {
	return models.EventPosition{
		BlockNumber:      e.BlockNumber,
		TransactionIndex: e.TransactionIndex,
		LogIndex:         e.LogIndex,
	}
}

// Event is the sum type over all decoded events.
type Event interface {
	// Name is the solidity event name, used for logging and metrics.
	Name() string
	// Envelope returns the chain coordinates of the underlying log.
	Envelope() *Envelope
}

// Auction house events.

type AuctionCreated struct {
	Env       Envelope
	TokenID   *big.Int
	StartTime uint64 // unix seconds
	EndTime   uint64 // unix seconds
}

func (e *AuctionCreated) Name() string        { return "AuctionCreated" }
func (e *AuctionCreated) Envelope() *Envelope { return &e.Env }

type AuctionBid struct {
	Env      Envelope
	TokenID  *big.Int
	Bidder   common.Address
	Sender   common.Address
	Value    *big.Int
	Extended bool
}

func (e *AuctionBid) Name() string        { return "AuctionBid" }
func (e *AuctionBid) Envelope() *Envelope { return &e.Env }

type AuctionExtended struct {
	Env     Envelope
	TokenID *big.Int
	EndTime uint64
}

func (e *AuctionExtended) Name() string        { return "AuctionExtended" }
func (e *AuctionExtended) Envelope() *Envelope { return &e.Env }

type AuctionSettled struct {
	Env                  Envelope
	TokenID              *big.Int
	Winner               common.Address
	Amount               *big.Int
	PointsPaidToCreators *big.Int
	ETHPaidToCreators    *big.Int
}

func (e *AuctionSettled) Name() string        { return "AuctionSettled" }
func (e *AuctionSettled) Envelope() *Envelope { return &e.Env }

type ManifestoUpdated struct {
	Env     Envelope
	TokenID *big.Int
	Member  common.Address
	Speech  string
}

func (e *ManifestoUpdated) Name() string        { return "ManifestoUpdated" }
func (e *ManifestoUpdated) Envelope() *Envelope { return &e.Env }

// Global auction settings events; these fan out to every active auction under
// the emitting contract.

type AuctionTimeBufferUpdated struct {
	Env        Envelope
	TimeBuffer *big.Int
}

func (e *AuctionTimeBufferUpdated) Name() string        { return "AuctionTimeBufferUpdated" }
func (e *AuctionTimeBufferUpdated) Envelope() *Envelope { return &e.Env }

type AuctionReservePriceUpdated struct {
	Env          Envelope
	ReservePrice *big.Int
}

func (e *AuctionReservePriceUpdated) Name() string        { return "AuctionReservePriceUpdated" }
func (e *AuctionReservePriceUpdated) Envelope() *Envelope { return &e.Env }

type AuctionMinBidIncrementPercentageUpdated struct {
	Env                       Envelope
	MinBidIncrementPercentage *big.Int
}

func (e *AuctionMinBidIncrementPercentageUpdated) Name() string {
	return "AuctionMinBidIncrementPercentageUpdated"
}
func (e *AuctionMinBidIncrementPercentageUpdated) Envelope() *Envelope { return &e.Env }

type CreatorRateBpsUpdated struct {
	Env     Envelope
	RateBps *big.Int
}

func (e *CreatorRateBpsUpdated) Name() string        { return "CreatorRateBpsUpdated" }
func (e *CreatorRateBpsUpdated) Envelope() *Envelope { return &e.Env }

type EntropyRateBpsUpdated struct {
	Env     Envelope
	RateBps *big.Int
}

func (e *EntropyRateBpsUpdated) Name() string        { return "EntropyRateBpsUpdated" }
func (e *EntropyRateBpsUpdated) Envelope() *Envelope { return &e.Env }

// Culture index events.

// PieceMetadata is the metadata tuple attached to PieceCreated.
type PieceMetadata struct {
	Name         string
	Description  string
	MediaType    uint8
	Image        string
	Text         string
	AnimationURL string
}

// PieceCreator is one (creator, bps) entry of the piece's split list.
type PieceCreator struct {
	Creator common.Address
	BPS     *big.Int
}

type PieceCreated struct {
	Env      Envelope
	PieceID  *big.Int
	Sponsor  common.Address
	Metadata PieceMetadata
	Creators []PieceCreator
}

func (e *PieceCreated) Name() string        { return "PieceCreated" }
func (e *PieceCreated) Envelope() *Envelope { return &e.Env }

// PieceVoteCast is the culture index's VoteCast event. TotalWeight is the
// contract's running total for the piece, not a delta.
type PieceVoteCast struct {
	Env         Envelope
	PieceID     *big.Int
	Voter       common.Address
	Weight      *big.Int
	TotalWeight *big.Int
}

func (e *PieceVoteCast) Name() string        { return "PieceVoteCast" }
func (e *PieceVoteCast) Envelope() *Envelope { return &e.Env }

type PieceDropped struct {
	Env     Envelope
	PieceID *big.Int
	Remover common.Address
}

func (e *PieceDropped) Name() string        { return "PieceDropped" }
func (e *PieceDropped) Envelope() *Envelope { return &e.Env }

// Governance events.

type ProposalCreatedWithRequirements struct {
	Env               Envelope
	ProposalID        *big.Int
	Proposer          common.Address
	Targets           []common.Address
	Values            []*big.Int
	Signatures        []string
	Calldatas         [][]byte
	StartBlock        uint64
	EndBlock          uint64
	ProposalThreshold *big.Int
	QuorumVotes       *big.Int
	Description       string
}

func (e *ProposalCreatedWithRequirements) Name() string        { return "ProposalCreatedWithRequirements" }
func (e *ProposalCreatedWithRequirements) Envelope() *Envelope { return &e.Env }

type ProposalCanceled struct {
	Env        Envelope
	ProposalID *big.Int
}

func (e *ProposalCanceled) Name() string        { return "ProposalCanceled" }
func (e *ProposalCanceled) Envelope() *Envelope { return &e.Env }

type ProposalQueued struct {
	Env        Envelope
	ProposalID *big.Int
	Eta        *big.Int
}

func (e *ProposalQueued) Name() string        { return "ProposalQueued" }
func (e *ProposalQueued) Envelope() *Envelope { return &e.Env }

type ProposalExecuted struct {
	Env        Envelope
	ProposalID *big.Int
}

func (e *ProposalExecuted) Name() string        { return "ProposalExecuted" }
func (e *ProposalExecuted) Envelope() *Envelope { return &e.Env }

type ProposalVetoed struct {
	Env        Envelope
	ProposalID *big.Int
}

func (e *ProposalVetoed) Name() string        { return "ProposalVetoed" }
func (e *ProposalVetoed) Envelope() *Envelope { return &e.Env }

// GovernanceVoteCast is the DAO's VoteCast event.
type GovernanceVoteCast struct {
	Env        Envelope
	Voter      common.Address
	ProposalID *big.Int
	Support    uint8
	Votes      *big.Int
	Reason     string
}

func (e *GovernanceVoteCast) Name() string        { return "VoteCast" }
func (e *GovernanceVoteCast) Envelope() *Envelope { return &e.Env }
