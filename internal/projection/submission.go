package projection

import (
	"context"
	"fmt"
	"log/slog"

	"projector/internal/events"
	"projector/internal/identity"
	"projector/internal/metrics"
	"projector/internal/models"
	"projector/internal/storage"
)

// SubmissionProjector applies culture-index events to the submissions and
// upvotes tables.
type SubmissionProjector struct {
	repo storage.Repository
}

// NewSubmissionProjector creates the culture-index rule set.
func NewSubmissionProjector(repo storage.Repository) *SubmissionProjector {
	return &SubmissionProjector{repo: repo}
}

// HandlePieceCreated projects a new submission. Pieces whose media URL uses an
// unsupported scheme are skipped without a record and without an error; that
// is policy, not failure.
func (p *SubmissionProjector) HandlePieceCreated(ctx context.Context, ev *events.PieceCreated) error {
	mediaURL := ev.Metadata.AnimationURL
	if mediaURL == "" {
		mediaURL = ev.Metadata.Image
	}
	if !SupportedMediaURL(mediaURL) {
		slog.Warn("Skipping PieceCreated with unsupported media URL",
			"piece_id", ev.PieceID.String(),
			"media_url", mediaURL,
		)
		metrics.EventsSkipped.WithLabelValues("unsupported_media").Inc()
		return nil
	}

	contractAddress := identity.Normalize(ev.Env.ContractAddress.Hex())
	pieceID := ev.PieceID.String()
	slug := identity.SubmissionSlug(ev.Env.ChainID, contractAddress, pieceID)
	timestamp := ev.Env.BlockTimestamp

	mediaType := MediaTypeFromCode(ev.Metadata.MediaType)
	url := IPFSToHTTP(mediaURL)
	var thumbnailURL *string
	if mediaType == models.MediaTypeImage {
		thumbnailURL = &url
	}

	creators := make([]models.CreatorSplit, 0, len(ev.Creators))
	for _, c := range ev.Creators {
		creators = append(creators, models.CreatorSplit{
			Address: identity.Normalize(c.Creator.Hex()),
			BPS:     int(c.BPS.Int64()),
		})
	}

	submission := &models.Submission{
		Slug:            slug,
		ContractAddress: contractAddress,
		ChainID:         ev.Env.ChainID,
		PieceID:         pieceID,
		Name:            ev.Metadata.Name,
		URL:             url,
		ThumbnailURL:    thumbnailURL,
		Description:     ev.Metadata.Description,
		Body:            ev.Metadata.Text,
		Creators:        creators,
		SponsorAddress:  identity.Normalize(ev.Sponsor.Hex()),
		MediaMetadata: models.MediaMetadata{
			Type:          mediaType,
			ThumbnailIPFS: IPFSToHTTP(ev.Metadata.Image),
		},
		LogicContractVersion: "v1",
		IsOnchain:            true,
		CreatedAt:            timestamp,
		UpdatedAt:            timestamp,
	}

	// Redelivery must not clobber accumulated vote weight or moderation flags.
	existing, err := p.repo.FindSubmission(ctx, slug)
	if err != nil {
		return fmt.Errorf("load submission %s: %w", slug, err)
	}
	if existing != nil {
		submission.VotesWeight = existing.VotesWeight
		submission.HasBeenDropped = existing.HasBeenDropped
		submission.IsHidden = existing.IsHidden
		submission.CreatedAt = existing.CreatedAt
	}

	if err := p.repo.UpsertSubmission(ctx, submission); err != nil {
		return fmt.Errorf("project PieceCreated %s: %w", slug, err)
	}
	return nil
}

// HandleVoteCast updates the submission's running vote weight from the
// contract's total and upserts the voter's upvote row. The same voter voting
// again overwrites the existing row rather than adding a second one.
func (p *SubmissionProjector) HandleVoteCast(ctx context.Context, ev *events.PieceVoteCast) error {
	contractAddress := identity.Normalize(ev.Env.ContractAddress.Hex())
	slug := identity.SubmissionSlug(ev.Env.ChainID, contractAddress, ev.PieceID.String())
	timestamp := ev.Env.BlockTimestamp

	submission, err := p.repo.FindSubmission(ctx, slug)
	if err != nil {
		return fmt.Errorf("load submission %s: %w", slug, err)
	}
	if submission == nil {
		return &MissingPrerequisiteError{EntityType: "submission", Key: slug}
	}

	// The contract reports the running total, so this overwrite is naturally
	// idempotent and order-tolerant within one piece.
	submission.VotesWeight = ev.TotalWeight.Int64()
	submission.UpdatedAt = timestamp
	if err := p.repo.UpsertSubmission(ctx, submission); err != nil {
		return fmt.Errorf("project VoteCast for %s: %w", slug, err)
	}

	voter := identity.Normalize(ev.Voter.Hex())
	upvote := &models.Upvote{
		UniqueID:       identity.UpvoteKey(slug, voter),
		Slug:           slug,
		Voter:          voter,
		Weight:         ev.Weight.Int64(),
		Strategy:       "culture-index-v1",
		ChainID:        ev.Env.ChainID,
		Version:        1,
		Snapshot:       ev.Env.BlockNumber,
		NetworkAddress: contractAddress,
		CreatedAt:      timestamp,
		UpdatedAt:      timestamp,
	}

	if err := p.repo.UpsertUpvote(ctx, upvote); err != nil {
		return fmt.Errorf("project upvote %s: %w", upvote.UniqueID, err)
	}
	return nil
}

// HandlePieceDropped flags the submission as dropped. The record survives;
// nothing is hard-deleted.
func (p *SubmissionProjector) HandlePieceDropped(ctx context.Context, ev *events.PieceDropped) error {
	contractAddress := identity.Normalize(ev.Env.ContractAddress.Hex())
	slug := identity.SubmissionSlug(ev.Env.ChainID, contractAddress, ev.PieceID.String())

	submission, err := p.repo.FindSubmission(ctx, slug)
	if err != nil {
		return fmt.Errorf("load submission %s: %w", slug, err)
	}
	if submission == nil {
		return &MissingPrerequisiteError{EntityType: "submission", Key: slug}
	}

	submission.HasBeenDropped = true
	submission.UpdatedAt = ev.Env.BlockTimestamp

	if err := p.repo.UpsertSubmission(ctx, submission); err != nil {
		return fmt.Errorf("project PieceDropped %s: %w", slug, err)
	}
	return nil
}
