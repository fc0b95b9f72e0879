package projection

import (
	"context"
	"fmt"

	"projector/internal/events"
	"projector/internal/identity"
	"projector/internal/metrics"
	"projector/internal/models"
)

// updateActiveAuctions applies one field change to every auction under the
// emitting contract whose end time is at or after the event's block time.
// Settled and expired auctions keep their snapshotted settings. Zero matches
// is a silent no-op: global settings can change before any auction exists.
//
// The scan-then-update sequence is not atomic across the batch; a partial
// application is completed by redelivery since the field overwrite is
// idempotent.
func (p *AuctionProjector) updateActiveAuctions(ctx context.Context, env *events.Envelope, apply func(*models.Auction)) error {
	auctionContract := identity.Normalize(env.ContractAddress.Hex())
	auctions, err := p.repo.AuctionsByContract(ctx, env.ChainID, auctionContract)
	if err != nil {
		return fmt.Errorf("list auctions for %s: %w", auctionContract, err)
	}

	cutoff := env.BlockTimestamp
	updated := 0
	for _, auction := range auctions {
		if auction.Details.EndTime.Before(cutoff) {
			continue
		}
		apply(auction)
		auction.UpdatedAt = env.BlockTimestamp
		if err := p.repo.UpsertAuction(ctx, auction); err != nil {
			return fmt.Errorf("update active auction %s: %w", auction.UniqueID, err)
		}
		updated++
	}

	metrics.ActiveSetUpdateSize.Observe(float64(updated))
	return nil
}

// HandleTimeBufferUpdated fans the new time buffer out to the active set.
func (p *AuctionProjector) HandleTimeBufferUpdated(ctx context.Context, ev *events.AuctionTimeBufferUpdated) error {
	return p.updateActiveAuctions(ctx, &ev.Env, func(a *models.Auction) {
		a.TimeBuffer = ev.TimeBuffer.String()
	})
}

// HandleReservePriceUpdated fans the new reserve price out to the active set.
func (p *AuctionProjector) HandleReservePriceUpdated(ctx context.Context, ev *events.AuctionReservePriceUpdated) error {
	return p.updateActiveAuctions(ctx, &ev.Env, func(a *models.Auction) {
		a.ReservePrice = ev.ReservePrice.String()
	})
}

// HandleMinBidIncrementUpdated fans the new minimum increment out to the
// active set.
func (p *AuctionProjector) HandleMinBidIncrementUpdated(ctx context.Context, ev *events.AuctionMinBidIncrementPercentageUpdated) error {
	return p.updateActiveAuctions(ctx, &ev.Env, func(a *models.Auction) {
		a.MinBidIncrementPercentage = ev.MinBidIncrementPercentage.String()
	})
}

// HandleCreatorRateBpsUpdated fans the new creator rate out to the active set.
func (p *AuctionProjector) HandleCreatorRateBpsUpdated(ctx context.Context, ev *events.CreatorRateBpsUpdated) error {
	return p.updateActiveAuctions(ctx, &ev.Env, func(a *models.Auction) {
		a.CreatorRateBps = int(ev.RateBps.Int64())
	})
}

// HandleEntropyRateBpsUpdated fans the new entropy rate out to the active set.
func (p *AuctionProjector) HandleEntropyRateBpsUpdated(ctx context.Context, ev *events.EntropyRateBpsUpdated) error {
	return p.updateActiveAuctions(ctx, &ev.Env, func(a *models.Auction) {
		a.EntropyRateBps = int(ev.RateBps.Int64())
	})
}
