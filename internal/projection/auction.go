package projection

import (
	"context"
	"fmt"
	"time"

	"projector/internal/events"
	"projector/internal/identity"
	"projector/internal/models"
	"projector/internal/resolver"
	"projector/internal/storage"
)

// Resolver provides the auxiliary reads projection rules depend on. The
// production implementation is the caching resolver over the chain client;
// tests inject fakes.
type Resolver interface {
	TokenContract(ctx context.Context, auctionContract string) (string, error)
	AuctionSettings(ctx context.Context, auctionContract string) (resolver.AuctionSettings, error)
	DisplayName(ctx context.Context, tokenContract, tokenID string) resolver.Resolved[string]
}

// AuctionProjector applies auction-house events to the auctions and
// auction_bids tables.
type AuctionProjector struct {
	repo storage.Repository
	aux  Resolver
}

// NewAuctionProjector creates the auction-house rule set.
func NewAuctionProjector(repo storage.Repository, aux Resolver) *AuctionProjector {
	return &AuctionProjector{repo: repo, aux: aux}
}

// auctionKey resolves the token contract behind the emitting auction house and
// derives the auction's id. Both failure modes abort the single event: an
// unavailable resolver read retries on redelivery, and a missing component can
// never produce a partial key.
func (p *AuctionProjector) auctionKey(ctx context.Context, env *events.Envelope, tokenID string) (key, tokenContract, auctionContract string, err error) {
	auctionContract = identity.Normalize(env.ContractAddress.Hex())
	tokenContract, err = p.aux.TokenContract(ctx, auctionContract)
	if err != nil {
		return "", "", "", err
	}
	key, err = identity.AuctionKey(env.ChainID, tokenContract, auctionContract, tokenID)
	if err != nil {
		return "", "", "", err
	}
	return key, tokenContract, auctionContract, nil
}

// HandleAuctionCreated projects a new auction, snapshotting the house settings
// and the NFT display name at the moment of creation. Later out-of-band
// changes to either never rewrite the snapshot; only a matching update event
// does.
func (p *AuctionProjector) HandleAuctionCreated(ctx context.Context, ev *events.AuctionCreated) error {
	tokenID := ev.TokenID.String()
	key, tokenContract, auctionContract, err := p.auctionKey(ctx, &ev.Env, tokenID)
	if err != nil {
		return err
	}

	// Best effort; the raw token id is a serviceable display name.
	name := p.aux.DisplayName(ctx, tokenContract, tokenID).ValueOr(tokenID)

	settings, err := p.aux.AuctionSettings(ctx, auctionContract)
	if err != nil {
		return err
	}

	createdAt := ev.Env.BlockTimestamp
	auction := &models.Auction{
		UniqueID:               key,
		ChainID:                ev.Env.ChainID,
		AuctionContractAddress: auctionContract,
		NFTContractAddress:     tokenContract,
		NFTTokenID:             tokenID,
		Name:                   name,
		Type:                   "revolution_v1",
		Details: models.AuctionDetails{
			StartTime: time.Unix(int64(ev.StartTime), 0).UTC(),
			EndTime:   time.Unix(int64(ev.EndTime), 0).UTC(),
		},
		ReservePrice:              settings.ReservePrice,
		MinBidIncrementPercentage: settings.MinBidIncrementPercentage,
		TimeBuffer:                settings.TimeBuffer,
		CreatorRateBps:            settings.CreatorRateBps,
		EntropyRateBps:            settings.EntropyRateBps,
		CreatedAt:                 createdAt,
		UpdatedAt:                 createdAt,
	}

	if err := p.repo.UpsertAuction(ctx, auction); err != nil {
		return fmt.Errorf("project AuctionCreated %s: %w", key, err)
	}
	return nil
}

// HandleAuctionBid projects one bid row keyed by (auction, tx hash, log
// index), so two bids inside one transaction stay distinct and redelivery of
// the same log is a no-op overwrite.
func (p *AuctionProjector) HandleAuctionBid(ctx context.Context, ev *events.AuctionBid) error {
	tokenID := ev.TokenID.String()
	auctionKey, _, auctionContract, err := p.auctionKey(ctx, &ev.Env, tokenID)
	if err != nil {
		return err
	}

	txHash := identity.Normalize(ev.Env.TransactionHash.Hex())
	bid := &models.AuctionBid{
		UniqueID:               identity.BidKey(auctionKey, txHash, ev.Env.LogIndex),
		AuctionUniqueID:        auctionKey,
		ChainID:                ev.Env.ChainID,
		AuctionContractAddress: auctionContract,
		BidAmount:              ev.Value.String(),
		TransactionHash:        txHash,
		Bidder:                 identity.Normalize(ev.Bidder.Hex()),
		Sender:                 identity.Normalize(ev.Sender.Hex()),
		BidCreatedAt:           ev.Env.BlockTimestamp,
	}

	if err := p.repo.UpsertAuctionBid(ctx, bid); err != nil {
		return fmt.Errorf("project AuctionBid %s: %w", bid.UniqueID, err)
	}
	return nil
}

// HandleAuctionExtended merges the new end time into the details sub-record
// without disturbing its sibling fields.
func (p *AuctionProjector) HandleAuctionExtended(ctx context.Context, ev *events.AuctionExtended) error {
	key, _, _, err := p.auctionKey(ctx, &ev.Env, ev.TokenID.String())
	if err != nil {
		return err
	}

	auction, err := p.repo.FindAuction(ctx, key)
	if err != nil {
		return fmt.Errorf("load auction %s: %w", key, err)
	}
	if auction == nil {
		return &MissingPrerequisiteError{EntityType: "auction", Key: key}
	}

	auction.Details.EndTime = time.Unix(int64(ev.EndTime), 0).UTC()
	auction.UpdatedAt = ev.Env.BlockTimestamp

	if err := p.repo.UpsertAuction(ctx, auction); err != nil {
		return fmt.Errorf("project AuctionExtended %s: %w", key, err)
	}
	return nil
}

// HandleAuctionSettled records the settlement outcome on the auction.
func (p *AuctionProjector) HandleAuctionSettled(ctx context.Context, ev *events.AuctionSettled) error {
	key, _, _, err := p.auctionKey(ctx, &ev.Env, ev.TokenID.String())
	if err != nil {
		return err
	}

	auction, err := p.repo.FindAuction(ctx, key)
	if err != nil {
		return fmt.Errorf("load auction %s: %w", key, err)
	}
	if auction == nil {
		return &MissingPrerequisiteError{EntityType: "auction", Key: key}
	}

	winner := identity.Normalize(ev.Winner.Hex())
	winningBid := ev.Amount.String()
	settlementTx := identity.Normalize(ev.Env.TransactionHash.Hex())
	auction.Winner = &winner
	auction.WinningBid = &winningBid
	auction.SettlementTransactionHash = &settlementTx
	if ev.PointsPaidToCreators != nil && ev.PointsPaidToCreators.Sign() != 0 {
		points := ev.PointsPaidToCreators.String()
		auction.PointsPaidToCreators = &points
	}
	if ev.ETHPaidToCreators != nil && ev.ETHPaidToCreators.Sign() != 0 {
		eth := ev.ETHPaidToCreators.String()
		auction.ETHPaidToCreators = &eth
	}
	auction.UpdatedAt = ev.Env.BlockTimestamp

	if err := p.repo.UpsertAuction(ctx, auction); err != nil {
		return fmt.Errorf("project AuctionSettled %s: %w", key, err)
	}
	return nil
}

// HandleManifestoUpdated overwrites the winner's acceptance speech.
func (p *AuctionProjector) HandleManifestoUpdated(ctx context.Context, ev *events.ManifestoUpdated) error {
	key, _, _, err := p.auctionKey(ctx, &ev.Env, ev.TokenID.String())
	if err != nil {
		return err
	}

	auction, err := p.repo.FindAuction(ctx, key)
	if err != nil {
		return fmt.Errorf("load auction %s: %w", key, err)
	}
	if auction == nil {
		return &MissingPrerequisiteError{EntityType: "auction", Key: key}
	}

	speech := ev.Speech
	auction.AcceptanceManifestoSpeech = &speech
	auction.UpdatedAt = ev.Env.BlockTimestamp

	if err := p.repo.UpsertAuction(ctx, auction); err != nil {
		return fmt.Errorf("project ManifestoUpdated %s: %w", key, err)
	}
	return nil
}
