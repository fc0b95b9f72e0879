package projection

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"projector/internal/events"
	"projector/internal/metrics"
	"projector/internal/storage"
)

// Router dispatches each decoded event to its projection rule. It is
// stateless; a failure in one rule is scoped to that single event and never
// affects events already applied.
type Router struct {
	auctions    *AuctionProjector
	submissions *SubmissionProjector
	governance  *GovernanceProjector
}

// NewRouter wires the three rule sets over one repository.
func NewRouter(repo storage.Repository, aux Resolver, daoToken DAOTokenLookup) *Router {
	return &Router{
		auctions:    NewAuctionProjector(repo, aux),
		submissions: NewSubmissionProjector(repo),
		governance:  NewGovernanceProjector(repo, daoToken),
	}
}

// Dispatch routes one event through its rule. Missing-prerequisite failures
// are logged as warnings (redelivery completes them once the creation event
// lands); anything else is an error. Both are returned typed so the caller
// can decide whether to keep streaming.
func (r *Router) Dispatch(ctx context.Context, ev events.Event) error {
	timer := prometheus.NewTimer(metrics.EventHandlingDuration.WithLabelValues(ev.Name()))
	defer timer.ObserveDuration()

	var err error
	switch e := ev.(type) {
	case *events.AuctionCreated:
		err = r.auctions.HandleAuctionCreated(ctx, e)
	case *events.AuctionBid:
		err = r.auctions.HandleAuctionBid(ctx, e)
	case *events.AuctionExtended:
		err = r.auctions.HandleAuctionExtended(ctx, e)
	case *events.AuctionSettled:
		err = r.auctions.HandleAuctionSettled(ctx, e)
	case *events.ManifestoUpdated:
		err = r.auctions.HandleManifestoUpdated(ctx, e)
	case *events.AuctionTimeBufferUpdated:
		err = r.auctions.HandleTimeBufferUpdated(ctx, e)
	case *events.AuctionReservePriceUpdated:
		err = r.auctions.HandleReservePriceUpdated(ctx, e)
	case *events.AuctionMinBidIncrementPercentageUpdated:
		err = r.auctions.HandleMinBidIncrementUpdated(ctx, e)
	case *events.CreatorRateBpsUpdated:
		err = r.auctions.HandleCreatorRateBpsUpdated(ctx, e)
	case *events.EntropyRateBpsUpdated:
		err = r.auctions.HandleEntropyRateBpsUpdated(ctx, e)
	case *events.PieceCreated:
		err = r.submissions.HandlePieceCreated(ctx, e)
	case *events.PieceVoteCast:
		err = r.submissions.HandleVoteCast(ctx, e)
	case *events.PieceDropped:
		err = r.submissions.HandlePieceDropped(ctx, e)
	case *events.ProposalCreatedWithRequirements:
		err = r.governance.HandleProposalCreated(ctx, e)
	case *events.ProposalCanceled:
		err = r.governance.HandleProposalCanceled(ctx, e)
	case *events.ProposalQueued:
		err = r.governance.HandleProposalQueued(ctx, e)
	case *events.ProposalExecuted:
		err = r.governance.HandleProposalExecuted(ctx, e)
	case *events.ProposalVetoed:
		err = r.governance.HandleProposalVetoed(ctx, e)
	case *events.GovernanceVoteCast:
		err = r.governance.HandleVoteCast(ctx, e)
	default:
		slog.Warn("No projection rule for event", "event_type", ev.Name())
		metrics.EventsSkipped.WithLabelValues("unknown_event").Inc()
		return nil
	}

	if err != nil {
		var missing *MissingPrerequisiteError
		if errors.As(err, &missing) {
			slog.Warn("Event references an entity that does not exist yet",
				"event_type", ev.Name(),
				"entity_type", missing.EntityType,
				"key", missing.Key,
			)
			metrics.EventsSkipped.WithLabelValues("missing_prerequisite").Inc()
		} else {
			slog.Error("Projection rule failed",
				"event_type", ev.Name(),
				"block", ev.Envelope().BlockNumber,
				"tx_hash", ev.Envelope().TransactionHash.Hex(),
				"error", err,
			)
			metrics.EventFailures.WithLabelValues(ev.Name()).Inc()
		}
		return err
	}

	metrics.EventsApplied.WithLabelValues(ev.Name()).Inc()
	return nil
}
