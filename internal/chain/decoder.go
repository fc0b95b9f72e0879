package chain

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"projector/internal/events"
)

// Decoder turns raw EVM logs into typed events. Logs from untracked addresses
// or with untracked topics decode to (nil, nil); malformed payloads on tracked
// topics are errors.
type Decoder struct {
	book    *AddressBook
	chainID uint64
}

// NewDecoder builds a decoder over the given address book.
func NewDecoder(book *AddressBook, chainID uint64) *Decoder {
	return &Decoder{book: book, chainID: chainID}
}

// Decode maps a log to its typed event. blockTime is the timestamp of the
// log's block, fetched separately by the poller.
func (d *Decoder) Decode(lg types.Log, blockTime time.Time) (events.Event, error) {
	deployment, ok := d.book.Lookup(lg.Address)
	if !ok || len(lg.Topics) == 0 {
		return nil, nil
	}

	env := events.Envelope{
		ChainID:          d.chainID,
		ContractAddress:  lg.Address,
		BlockNumber:      lg.BlockNumber,
		BlockTimestamp:   blockTime,
		TransactionHash:  lg.TxHash,
		TransactionIndex: lg.TxIndex,
		LogIndex:         lg.Index,
	}

	switch deployment.Kind {
	case KindAuctionHouse:
		return d.decodeAuctionHouse(lg, env)
	case KindCultureIndex:
		return d.decodeCultureIndex(lg, env)
	case KindDAO:
		return d.decodeDAO(lg, env)
	default:
		return nil, nil
	}
}

func (d *Decoder) decodeAuctionHouse(lg types.Log, env events.Envelope) (events.Event, error) {
	ev, err := auctionHouseABI.EventByID(lg.Topics[0])
	if err != nil {
		return nil, nil // untracked topic
	}

	switch ev.Name {
	case "AuctionCreated":
		var out struct {
			StartTime *big.Int
			EndTime   *big.Int
		}
		if err := auctionHouseABI.UnpackIntoInterface(&out, ev.Name, lg.Data); err != nil {
			return nil, fmt.Errorf("decode AuctionCreated: %w", err)
		}
		return &events.AuctionCreated{
			Env:       env,
			TokenID:   topicBig(lg, 1),
			StartTime: out.StartTime.Uint64(),
			EndTime:   out.EndTime.Uint64(),
		}, nil

	case "AuctionBid":
		var out struct {
			Bidder   common.Address
			Sender   common.Address
			Value    *big.Int
			Extended bool
		}
		if err := auctionHouseABI.UnpackIntoInterface(&out, ev.Name, lg.Data); err != nil {
			return nil, fmt.Errorf("decode AuctionBid: %w", err)
		}
		return &events.AuctionBid{
			Env:      env,
			TokenID:  topicBig(lg, 1),
			Bidder:   out.Bidder,
			Sender:   out.Sender,
			Value:    out.Value,
			Extended: out.Extended,
		}, nil

	case "AuctionExtended":
		var out struct {
			EndTime *big.Int
		}
		if err := auctionHouseABI.UnpackIntoInterface(&out, ev.Name, lg.Data); err != nil {
			return nil, fmt.Errorf("decode AuctionExtended: %w", err)
		}
		return &events.AuctionExtended{
			Env:     env,
			TokenID: topicBig(lg, 1),
			EndTime: out.EndTime.Uint64(),
		}, nil

	case "AuctionSettled":
		var out struct {
			Winner               common.Address
			Amount               *big.Int
			PointsPaidToCreators *big.Int
			EthPaidToCreators    *big.Int
		}
		if err := auctionHouseABI.UnpackIntoInterface(&out, ev.Name, lg.Data); err != nil {
			return nil, fmt.Errorf("decode AuctionSettled: %w", err)
		}
		return &events.AuctionSettled{
			Env:                  env,
			TokenID:              topicBig(lg, 1),
			Winner:               out.Winner,
			Amount:               out.Amount,
			PointsPaidToCreators: out.PointsPaidToCreators,
			ETHPaidToCreators:    out.EthPaidToCreators,
		}, nil

	case "ManifestoUpdated":
		var out struct {
			Member common.Address
			Speech string
		}
		if err := auctionHouseABI.UnpackIntoInterface(&out, ev.Name, lg.Data); err != nil {
			return nil, fmt.Errorf("decode ManifestoUpdated: %w", err)
		}
		return &events.ManifestoUpdated{
			Env:     env,
			TokenID: topicBig(lg, 1),
			Member:  out.Member,
			Speech:  out.Speech,
		}, nil

	case "AuctionTimeBufferUpdated":
		var out struct {
			TimeBuffer *big.Int
		}
		if err := auctionHouseABI.UnpackIntoInterface(&out, ev.Name, lg.Data); err != nil {
			return nil, fmt.Errorf("decode AuctionTimeBufferUpdated: %w", err)
		}
		return &events.AuctionTimeBufferUpdated{Env: env, TimeBuffer: out.TimeBuffer}, nil

	case "AuctionReservePriceUpdated":
		var out struct {
			ReservePrice *big.Int
		}
		if err := auctionHouseABI.UnpackIntoInterface(&out, ev.Name, lg.Data); err != nil {
			return nil, fmt.Errorf("decode AuctionReservePriceUpdated: %w", err)
		}
		return &events.AuctionReservePriceUpdated{Env: env, ReservePrice: out.ReservePrice}, nil

	case "AuctionMinBidIncrementPercentageUpdated":
		var out struct {
			MinBidIncrementPercentage uint8
		}
		if err := auctionHouseABI.UnpackIntoInterface(&out, ev.Name, lg.Data); err != nil {
			return nil, fmt.Errorf("decode AuctionMinBidIncrementPercentageUpdated: %w", err)
		}
		return &events.AuctionMinBidIncrementPercentageUpdated{
			Env:                       env,
			MinBidIncrementPercentage: big.NewInt(int64(out.MinBidIncrementPercentage)),
		}, nil

	case "CreatorRateBpsUpdated":
		var out struct {
			RateBps *big.Int
		}
		if err := auctionHouseABI.UnpackIntoInterface(&out, ev.Name, lg.Data); err != nil {
			return nil, fmt.Errorf("decode CreatorRateBpsUpdated: %w", err)
		}
		return &events.CreatorRateBpsUpdated{Env: env, RateBps: out.RateBps}, nil

	case "EntropyRateBpsUpdated":
		var out struct {
			RateBps *big.Int
		}
		if err := auctionHouseABI.UnpackIntoInterface(&out, ev.Name, lg.Data); err != nil {
			return nil, fmt.Errorf("decode EntropyRateBpsUpdated: %w", err)
		}
		return &events.EntropyRateBpsUpdated{Env: env, RateBps: out.RateBps}, nil
	}

	return nil, nil
}

func (d *Decoder) decodeCultureIndex(lg types.Log, env events.Envelope) (events.Event, error) {
	ev, err := cultureIndexABI.EventByID(lg.Topics[0])
	if err != nil {
		return nil, nil
	}

	switch ev.Name {
	case "PieceCreated":
		var out struct {
			Metadata struct {
				Name         string
				Description  string
				MediaType    uint8
				Image        string
				Text         string
				AnimationUrl string
			}
			Creators []struct {
				Creator common.Address
				Bps     *big.Int
			}
		}
		if err := cultureIndexABI.UnpackIntoInterface(&out, ev.Name, lg.Data); err != nil {
			return nil, fmt.Errorf("decode PieceCreated: %w", err)
		}
		creators := make([]events.PieceCreator, 0, len(out.Creators))
		for _, c := range out.Creators {
			creators = append(creators, events.PieceCreator{Creator: c.Creator, BPS: c.Bps})
		}
		return &events.PieceCreated{
			Env:     env,
			PieceID: topicBig(lg, 1),
			Sponsor: topicAddress(lg, 2),
			Metadata: events.PieceMetadata{
				Name:         out.Metadata.Name,
				Description:  out.Metadata.Description,
				MediaType:    out.Metadata.MediaType,
				Image:        out.Metadata.Image,
				Text:         out.Metadata.Text,
				AnimationURL: out.Metadata.AnimationUrl,
			},
			Creators: creators,
		}, nil

	case "VoteCast":
		var out struct {
			Weight      *big.Int
			TotalWeight *big.Int
		}
		if err := cultureIndexABI.UnpackIntoInterface(&out, ev.Name, lg.Data); err != nil {
			return nil, fmt.Errorf("decode culture VoteCast: %w", err)
		}
		return &events.PieceVoteCast{
			Env:         env,
			PieceID:     topicBig(lg, 1),
			Voter:       topicAddress(lg, 2),
			Weight:      out.Weight,
			TotalWeight: out.TotalWeight,
		}, nil

	case "PieceDropped":
		return &events.PieceDropped{
			Env:     env,
			PieceID: topicBig(lg, 1),
			Remover: topicAddress(lg, 2),
		}, nil
	}

	return nil, nil
}

func (d *Decoder) decodeDAO(lg types.Log, env events.Envelope) (events.Event, error) {
	ev, err := daoABI.EventByID(lg.Topics[0])
	if err != nil {
		return nil, nil
	}

	switch ev.Name {
	case "ProposalCreatedWithRequirements":
		var out struct {
			Id                *big.Int
			Proposer          common.Address
			Targets           []common.Address
			Values            []*big.Int
			Signatures        []string
			Calldatas         [][]byte
			StartBlock        *big.Int
			EndBlock          *big.Int
			ProposalThreshold *big.Int
			QuorumVotes       *big.Int
			Description       string
		}
		if err := daoABI.UnpackIntoInterface(&out, ev.Name, lg.Data); err != nil {
			return nil, fmt.Errorf("decode ProposalCreatedWithRequirements: %w", err)
		}
		return &events.ProposalCreatedWithRequirements{
			Env:               env,
			ProposalID:        out.Id,
			Proposer:          out.Proposer,
			Targets:           out.Targets,
			Values:            out.Values,
			Signatures:        out.Signatures,
			Calldatas:         out.Calldatas,
			StartBlock:        out.StartBlock.Uint64(),
			EndBlock:          out.EndBlock.Uint64(),
			ProposalThreshold: out.ProposalThreshold,
			QuorumVotes:       out.QuorumVotes,
			Description:       out.Description,
		}, nil

	case "ProposalCanceled":
		var out struct {
			Id *big.Int
		}
		if err := daoABI.UnpackIntoInterface(&out, ev.Name, lg.Data); err != nil {
			return nil, fmt.Errorf("decode ProposalCanceled: %w", err)
		}
		return &events.ProposalCanceled{Env: env, ProposalID: out.Id}, nil

	case "ProposalQueued":
		var out struct {
			Id  *big.Int
			Eta *big.Int
		}
		if err := daoABI.UnpackIntoInterface(&out, ev.Name, lg.Data); err != nil {
			return nil, fmt.Errorf("decode ProposalQueued: %w", err)
		}
		return &events.ProposalQueued{Env: env, ProposalID: out.Id, Eta: out.Eta}, nil

	case "ProposalExecuted":
		var out struct {
			Id *big.Int
		}
		if err := daoABI.UnpackIntoInterface(&out, ev.Name, lg.Data); err != nil {
			return nil, fmt.Errorf("decode ProposalExecuted: %w", err)
		}
		return &events.ProposalExecuted{Env: env, ProposalID: out.Id}, nil

	case "ProposalVetoed":
		var out struct {
			Id *big.Int
		}
		if err := daoABI.UnpackIntoInterface(&out, ev.Name, lg.Data); err != nil {
			return nil, fmt.Errorf("decode ProposalVetoed: %w", err)
		}
		return &events.ProposalVetoed{Env: env, ProposalID: out.Id}, nil

	case "VoteCast":
		var out struct {
			ProposalId *big.Int
			Support    uint8
			Votes      *big.Int
			Reason     string
		}
		if err := daoABI.UnpackIntoInterface(&out, ev.Name, lg.Data); err != nil {
			return nil, fmt.Errorf("decode governance VoteCast: %w", err)
		}
		return &events.GovernanceVoteCast{
			Env:        env,
			Voter:      topicAddress(lg, 1),
			ProposalID: out.ProposalId,
			Support:    out.Support,
			Votes:      out.Votes,
			Reason:     out.Reason,
		}, nil
	}

	return nil, nil
}

func topicBig(lg types.Log, i int) *big.Int {
	if i >= len(lg.Topics) {
		return new(big.Int)
	}
	return new(big.Int).SetBytes(lg.Topics[i].Bytes())
}

func topicAddress(lg types.Log, i int) common.Address {
	if i >= len(lg.Topics) {
		return common.Address{}
	}
	return common.BytesToAddress(lg.Topics[i].Bytes())
}
