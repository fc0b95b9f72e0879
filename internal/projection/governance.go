package projection

import (
	"context"
	"fmt"
	"log/slog"

	"projector/internal/events"
	"projector/internal/identity"
	"projector/internal/metrics"
	"projector/internal/models"
	"projector/internal/ordering"
	"projector/internal/storage"
)

// DAOTokenLookup maps a governance contract address (lower-cased) to the token
// contract its entity id is derived from. The production lookup is the fixed
// address book in internal/chain.
type DAOTokenLookup func(governanceContract string) (string, bool)

// GovernanceProjector applies DAO events to the proposals and votes tables.
// Both carry an explicit ordering token so replayed or duplicate deliveries
// cannot regress status or double-apply tallies.
type GovernanceProjector struct {
	repo     storage.Repository
	daoToken DAOTokenLookup
}

// NewGovernanceProjector creates the DAO rule set.
func NewGovernanceProjector(repo storage.Repository, daoToken DAOTokenLookup) *GovernanceProjector {
	return &GovernanceProjector{repo: repo, daoToken: daoToken}
}

// daoContext resolves the entity id for the emitting governance contract.
// Events from DAOs outside the address book are skipped with a warning.
func (p *GovernanceProjector) daoContext(env *events.Envelope) (entityID, tokenContract string, ok bool) {
	governanceContract := identity.Normalize(env.ContractAddress.Hex())
	tokenContract, ok = p.daoToken(governanceContract)
	if !ok {
		slog.Warn("Skipping DAO event: unknown DAO address", "dao_address", governanceContract)
		metrics.EventsSkipped.WithLabelValues("unknown_dao").Inc()
		return "", "", false
	}
	entityID, err := identity.EntityID(env.ChainID, tokenContract)
	if err != nil {
		// Unreachable while the address book maps to non-empty tokens.
		slog.Warn("Skipping DAO event: cannot derive entity id", "error", err)
		return "", "", false
	}
	return entityID, tokenContract, true
}

// HandleProposalCreated projects a proposal from its creation event, seeding
// the zeroed options map and snapshotting the voting requirements.
func (p *GovernanceProjector) HandleProposalCreated(ctx context.Context, ev *events.ProposalCreatedWithRequirements) error {
	entityID, tokenContract, ok := p.daoContext(&ev.Env)
	if !ok {
		return nil
	}

	executionData, payout, err := buildExecutionData(ev.Targets, ev.Values, ev.Signatures, ev.Calldatas)
	if err != nil {
		return fmt.Errorf("decode proposal %s calls: %w", ev.ProposalID.String(), err)
	}

	proposalID := ev.ProposalID.String()
	status := models.ProposalStatusPending
	if ev.StartBlock > 0 && ev.Env.BlockNumber >= ev.StartBlock {
		status = models.ProposalStatusActive
	}

	targets := make([]string, len(ev.Targets))
	for i, t := range ev.Targets {
		targets[i] = identity.Normalize(t.Hex())
	}
	values := make([]string, len(ev.Values))
	for i, v := range ev.Values {
		values[i] = v.String()
	}
	calldatas := make([]string, len(ev.Calldatas))
	for i, c := range ev.Calldatas {
		calldatas[i] = "0x" + fmt.Sprintf("%x", c)
	}

	proposal := &models.Proposal{
		UniqueID:           identity.ProposalKey(entityID, proposalID),
		EntityID:           entityID,
		ProposalID:         proposalID,
		ChainID:            ev.Env.ChainID,
		TokenContract:      tokenContract,
		GovernanceContract: identity.Normalize(ev.Env.ContractAddress.Hex()),
		Proposer:           identity.Normalize(ev.Proposer.Hex()),
		Targets:            targets,
		Values:             values,
		Signatures:         append([]string(nil), ev.Signatures...),
		Calldatas:          calldatas,
		Description:        ev.Description,
		Status:             status,
		Options:            models.NewProposalOptions(executionData),
		TotalVotes:         "0",
		TotalUniqueVotes:   0,
		// Zero ordering token: any later event in a real block applies.
		LastUpdated: models.EventPosition{},
		Creation: models.ProposalCreation{
			Date:            ev.Env.BlockTimestamp,
			Block:           ev.Env.BlockNumber,
			TransactionHash: identity.Normalize(ev.Env.TransactionHash.Hex()),
		},
		Metadata: models.ProposalMetadata{
			StartBlock: ev.StartBlock,
			EndBlock:   ev.EndBlock,
		},
		Strategy: models.ProposalStrategy{
			ProposalThreshold: ev.ProposalThreshold.String(),
			SnapshotBlock:     ev.StartBlock,
		},
		PayoutAmount: payout,
		Blockchain:   "ethereum",
		Network:      "mainnet",
		TrackerType:  "revolution_dao_v1",
		Type:         "revolution",
		UpdatedAt:    ev.Env.BlockTimestamp,
	}

	if err := p.repo.UpsertProposal(ctx, proposal); err != nil {
		return fmt.Errorf("project proposal %s: %w", proposal.UniqueID, err)
	}
	return nil
}

// updateProposalStatus applies an event-driven lifecycle transition, gated by
// the proposal's ordering token. A missing proposal is skipped with a warning
// rather than fabricated; redelivery after the creation event lands repairs it.
func (p *GovernanceProjector) updateProposalStatus(ctx context.Context, env *events.Envelope, key string, status models.ProposalStatus) error {
	proposal, err := p.repo.FindProposal(ctx, key)
	if err != nil {
		return fmt.Errorf("load proposal %s: %w", key, err)
	}
	if proposal == nil {
		slog.Warn("Skipping proposal status update: missing proposal",
			"proposal", key, "status", status)
		metrics.EventsSkipped.WithLabelValues("missing_prerequisite").Inc()
		return nil
	}

	position := env.Position()
	if ordering.AlreadyApplied(position, proposal.LastUpdated) {
		return nil
	}

	proposal.Status = status
	proposal.LastUpdated = position
	proposal.UpdatedAt = env.BlockTimestamp

	if err := p.repo.UpsertProposal(ctx, proposal); err != nil {
		return fmt.Errorf("update proposal %s status: %w", key, err)
	}
	return nil
}

func (p *GovernanceProjector) HandleProposalCanceled(ctx context.Context, ev *events.ProposalCanceled) error {
	entityID, _, ok := p.daoContext(&ev.Env)
	if !ok {
		return nil
	}
	key := identity.ProposalKey(entityID, ev.ProposalID.String())
	return p.updateProposalStatus(ctx, &ev.Env, key, models.ProposalStatusCancelled)
}

func (p *GovernanceProjector) HandleProposalVetoed(ctx context.Context, ev *events.ProposalVetoed) error {
	entityID, _, ok := p.daoContext(&ev.Env)
	if !ok {
		return nil
	}
	key := identity.ProposalKey(entityID, ev.ProposalID.String())
	return p.updateProposalStatus(ctx, &ev.Env, key, models.ProposalStatusVetoed)
}

func (p *GovernanceProjector) HandleProposalExecuted(ctx context.Context, ev *events.ProposalExecuted) error {
	entityID, _, ok := p.daoContext(&ev.Env)
	if !ok {
		return nil
	}
	key := identity.ProposalKey(entityID, ev.ProposalID.String())
	return p.updateProposalStatus(ctx, &ev.Env, key, models.ProposalStatusExecuted)
}

func (p *GovernanceProjector) HandleProposalQueued(ctx context.Context, ev *events.ProposalQueued) error {
	entityID, _, ok := p.daoContext(&ev.Env)
	if !ok {
		return nil
	}
	key := identity.ProposalKey(entityID, ev.ProposalID.String())
	return p.updateProposalStatus(ctx, &ev.Env, key, models.ProposalStatusQueued)
}

// HandleVoteCast upserts the voter's ballot and advances the proposal tally.
// Two ordering guards run independently: the proposal's token gates the tally
// mutation, the vote's own token gates its counted flag. They can diverge
// under partial replay and both must converge on redelivery.
func (p *GovernanceProjector) HandleVoteCast(ctx context.Context, ev *events.GovernanceVoteCast) error {
	entityID, tokenContract, ok := p.daoContext(&ev.Env)
	if !ok {
		return nil
	}

	proposalID := ev.ProposalID.String()
	voter := identity.Normalize(ev.Voter.Hex())
	voteKey := identity.VoteKey(entityID, voter, proposalID)
	position := ev.Env.Position()
	timestamp := ev.Env.BlockTimestamp

	vote := &models.Vote{
		UniqueID:      voteKey,
		EntityID:      entityID,
		ProposalID:    proposalID,
		ChainID:       ev.Env.ChainID,
		TokenContract: tokenContract,
		Voter:         voter,
		OptionID:      int(ev.Support),
		Weight:        ev.Votes.String(),
		Reason:        ev.Reason,
		Blockchain:    "ethereum",
		Network:       "mainnet",
		Type:          "revolution",
		VotedAt: models.VotedAt{
			Block: ev.Env.BlockNumber,
			Time:  timestamp,
		},
		UpdatedAt: timestamp,
	}

	// A re-delivered or re-cast vote lands on the same key; the counted flag
	// and its ordering token carry over so the guard below stays meaningful.
	existing, err := p.repo.FindVote(ctx, voteKey)
	if err != nil {
		return fmt.Errorf("load vote %s: %w", voteKey, err)
	}
	if existing != nil {
		vote.CountedInProposal = existing.CountedInProposal
		vote.LastUpdated = existing.LastUpdated
	}

	if err := p.repo.UpsertVote(ctx, vote); err != nil {
		return fmt.Errorf("project vote %s: %w", voteKey, err)
	}

	proposalKey := identity.ProposalKey(entityID, proposalID)
	proposal, err := p.repo.FindProposal(ctx, proposalKey)
	if err != nil {
		return fmt.Errorf("load proposal %s: %w", proposalKey, err)
	}
	if proposal == nil {
		slog.Warn("Skipping vote tally: missing proposal",
			"proposal_id", proposalID, "entity_id", entityID)
		metrics.EventsSkipped.WithLabelValues("missing_prerequisite").Inc()
		return nil
	}

	// The first vote on a pending proposal proves voting has opened.
	statusChanged := false
	if proposal.Status == models.ProposalStatusPending {
		proposal.Status = models.ProposalStatusActive
		statusChanged = true
	}

	if !ordering.AlreadyApplied(position, proposal.LastUpdated) {
		options, err := applyVoteToOptions(proposal.Options, vote.OptionID, vote.Weight)
		if err != nil {
			return fmt.Errorf("tally vote %s: %w", voteKey, err)
		}
		totalVotes, err := addDecimalStrings(proposal.TotalVotes, vote.Weight)
		if err != nil {
			return fmt.Errorf("tally vote %s: %w", voteKey, err)
		}

		proposal.Options = options
		proposal.TotalVotes = totalVotes
		proposal.TotalUniqueVotes++
		proposal.LastUpdated = position
		proposal.UpdatedAt = timestamp

		if err := p.repo.UpsertProposal(ctx, proposal); err != nil {
			return fmt.Errorf("update proposal %s tally: %w", proposalKey, err)
		}
	} else if statusChanged {
		if err := p.repo.UpsertProposal(ctx, proposal); err != nil {
			return fmt.Errorf("update proposal %s status: %w", proposalKey, err)
		}
	}

	// Independent guard on the vote's own ordering token.
	if !ordering.AlreadyApplied(position, vote.LastUpdated) {
		vote.CountedInProposal = true
		vote.LastUpdated = position
		if err := p.repo.UpsertVote(ctx, vote); err != nil {
			return fmt.Errorf("mark vote %s counted: %w", voteKey, err)
		}
	}
	return nil
}
