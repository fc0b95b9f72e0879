package storage

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"projector/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository and applies the
// projection schema.
func NewPostgresRepository(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// FindAuction retrieves an auction by unique id; nil when absent.
func (r *PostgresRepository) FindAuction(ctx context.Context, uniqueID string) (*models.Auction, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT unique_id, chain_id, auction_contract_address, nft_contract_address,
		       nft_token_id, name, type, details, reserve_price,
		       min_bid_increment_percentage, time_buffer, creator_rate_bps,
		       entropy_rate_bps, winner, winning_bid, points_paid_to_creators,
		       eth_paid_to_creators, settlement_transaction_hash,
		       acceptance_manifesto_speech, created_at, updated_at
		FROM auctions
		WHERE unique_id = $1
	`, uniqueID)

	auction, err := scanAuction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get auction %s: %w", uniqueID, err)
	}
	return auction, nil
}

// UpsertAuction writes the whole auction row, replacing any existing one.
func (r *PostgresRepository) UpsertAuction(ctx context.Context, auction *models.Auction) error {
	detailsJSON, err := json.Marshal(auction.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal auction details: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO auctions (
			unique_id, chain_id, auction_contract_address, nft_contract_address,
			nft_token_id, name, type, details, reserve_price,
			min_bid_increment_percentage, time_buffer, creator_rate_bps,
			entropy_rate_bps, winner, winning_bid, points_paid_to_creators,
			eth_paid_to_creators, settlement_transaction_hash,
			acceptance_manifesto_speech, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
		ON CONFLICT (unique_id) DO UPDATE SET
			chain_id = EXCLUDED.chain_id,
			auction_contract_address = EXCLUDED.auction_contract_address,
			nft_contract_address = EXCLUDED.nft_contract_address,
			nft_token_id = EXCLUDED.nft_token_id,
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			details = EXCLUDED.details,
			reserve_price = EXCLUDED.reserve_price,
			min_bid_increment_percentage = EXCLUDED.min_bid_increment_percentage,
			time_buffer = EXCLUDED.time_buffer,
			creator_rate_bps = EXCLUDED.creator_rate_bps,
			entropy_rate_bps = EXCLUDED.entropy_rate_bps,
			winner = EXCLUDED.winner,
			winning_bid = EXCLUDED.winning_bid,
			points_paid_to_creators = EXCLUDED.points_paid_to_creators,
			eth_paid_to_creators = EXCLUDED.eth_paid_to_creators,
			settlement_transaction_hash = EXCLUDED.settlement_transaction_hash,
			acceptance_manifesto_speech = EXCLUDED.acceptance_manifesto_speech,
			updated_at = EXCLUDED.updated_at
	`,
		auction.UniqueID,
		auction.ChainID,
		auction.AuctionContractAddress,
		auction.NFTContractAddress,
		auction.NFTTokenID,
		auction.Name,
		auction.Type,
		detailsJSON,
		auction.ReservePrice,
		auction.MinBidIncrementPercentage,
		auction.TimeBuffer,
		auction.CreatorRateBps,
		auction.EntropyRateBps,
		auction.Winner,
		auction.WinningBid,
		auction.PointsPaidToCreators,
		auction.ETHPaidToCreators,
		auction.SettlementTransactionHash,
		auction.AcceptanceManifestoSpeech,
		auction.CreatedAt,
		auction.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert auction %s: %w", auction.UniqueID, err)
	}
	return nil
}

// AuctionsByContract lists every auction under one (chain, contract) scope.
func (r *PostgresRepository) AuctionsByContract(ctx context.Context, chainID uint64, auctionContract string) ([]*models.Auction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT unique_id, chain_id, auction_contract_address, nft_contract_address,
		       nft_token_id, name, type, details, reserve_price,
		       min_bid_increment_percentage, time_buffer, creator_rate_bps,
		       entropy_rate_bps, winner, winning_bid, points_paid_to_creators,
		       eth_paid_to_creators, settlement_transaction_hash,
		       acceptance_manifesto_speech, created_at, updated_at
		FROM auctions
		WHERE chain_id = $1 AND auction_contract_address = $2
	`, chainID, auctionContract)
	if err != nil {
		return nil, fmt.Errorf("failed to query auctions by contract: %w", err)
	}
	defer rows.Close()

	var auctions []*models.Auction
	for rows.Next() {
		auction, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan auction row: %w", err)
		}
		auctions = append(auctions, auction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate auction rows: %w", err)
	}
	return auctions, nil
}

func scanAuction(row pgx.Row) (*models.Auction, error) {
	var auction models.Auction
	var detailsJSON []byte

	err := row.Scan(
		&auction.UniqueID,
		&auction.ChainID,
		&auction.AuctionContractAddress,
		&auction.NFTContractAddress,
		&auction.NFTTokenID,
		&auction.Name,
		&auction.Type,
		&detailsJSON,
		&auction.ReservePrice,
		&auction.MinBidIncrementPercentage,
		&auction.TimeBuffer,
		&auction.CreatorRateBps,
		&auction.EntropyRateBps,
		&auction.Winner,
		&auction.WinningBid,
		&auction.PointsPaidToCreators,
		&auction.ETHPaidToCreators,
		&auction.SettlementTransactionHash,
		&auction.AcceptanceManifestoSpeech,
		&auction.CreatedAt,
		&auction.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(detailsJSON, &auction.Details); err != nil {
		return nil, fmt.Errorf("failed to unmarshal details: %w", err)
	}
	return &auction, nil
}

// FindAuctionBid retrieves a bid by unique id; nil when absent.
func (r *PostgresRepository) FindAuctionBid(ctx context.Context, uniqueID string) (*models.AuctionBid, error) {
	var bid models.AuctionBid
	err := r.pool.QueryRow(ctx, `
		SELECT unique_id, auction_unique_id, chain_id, auction_contract_address,
		       bid_amount, transaction_hash, bidder, sender, bid_created_at
		FROM auction_bids
		WHERE unique_id = $1
	`, uniqueID).Scan(
		&bid.UniqueID,
		&bid.AuctionUniqueID,
		&bid.ChainID,
		&bid.AuctionContractAddress,
		&bid.BidAmount,
		&bid.TransactionHash,
		&bid.Bidder,
		&bid.Sender,
		&bid.BidCreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bid %s: %w", uniqueID, err)
	}
	return &bid, nil
}

// UpsertAuctionBid writes a bid row; redelivery overwrites amount, bidder and
// timestamp, which is a no-op when the values are identical.
func (r *PostgresRepository) UpsertAuctionBid(ctx context.Context, bid *models.AuctionBid) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO auction_bids (
			unique_id, auction_unique_id, chain_id, auction_contract_address,
			bid_amount, transaction_hash, bidder, sender, bid_created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (unique_id) DO UPDATE SET
			bid_amount = EXCLUDED.bid_amount,
			bidder = EXCLUDED.bidder,
			bid_created_at = EXCLUDED.bid_created_at
	`,
		bid.UniqueID,
		bid.AuctionUniqueID,
		bid.ChainID,
		bid.AuctionContractAddress,
		bid.BidAmount,
		bid.TransactionHash,
		bid.Bidder,
		bid.Sender,
		bid.BidCreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert bid %s: %w", bid.UniqueID, err)
	}
	return nil
}

// FindSubmission retrieves a submission by slug; nil when absent.
func (r *PostgresRepository) FindSubmission(ctx context.Context, slug string) (*models.Submission, error) {
	var s models.Submission
	var creatorsJSON, mediaJSON []byte
	err := r.pool.QueryRow(ctx, `
		SELECT slug, contract_address, chain_id, piece_id, name, url, thumbnail_url,
		       description, body, creators, sponsor_address, media_metadata,
		       logic_contract_version, votes_weight, has_been_dropped, is_hidden,
		       is_onchain, created_at, updated_at
		FROM submissions
		WHERE slug = $1
	`, slug).Scan(
		&s.Slug,
		&s.ContractAddress,
		&s.ChainID,
		&s.PieceID,
		&s.Name,
		&s.URL,
		&s.ThumbnailURL,
		&s.Description,
		&s.Body,
		&creatorsJSON,
		&s.SponsorAddress,
		&mediaJSON,
		&s.LogicContractVersion,
		&s.VotesWeight,
		&s.HasBeenDropped,
		&s.IsHidden,
		&s.IsOnchain,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission %s: %w", slug, err)
	}
	if err := json.Unmarshal(creatorsJSON, &s.Creators); err != nil {
		return nil, fmt.Errorf("failed to unmarshal creators: %w", err)
	}
	if err := json.Unmarshal(mediaJSON, &s.MediaMetadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal media_metadata: %w", err)
	}
	return &s, nil
}

// UpsertSubmission writes the whole submission row.
func (r *PostgresRepository) UpsertSubmission(ctx context.Context, s *models.Submission) error {
	creatorsJSON, err := json.Marshal(s.Creators)
	if err != nil {
		return fmt.Errorf("failed to marshal creators: %w", err)
	}
	mediaJSON, err := json.Marshal(s.MediaMetadata)
	if err != nil {
		return fmt.Errorf("failed to marshal media_metadata: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO submissions (
			slug, contract_address, chain_id, piece_id, name, url, thumbnail_url,
			description, body, creators, sponsor_address, media_metadata,
			logic_contract_version, votes_weight, has_been_dropped, is_hidden,
			is_onchain, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		ON CONFLICT (slug) DO UPDATE SET
			contract_address = EXCLUDED.contract_address,
			chain_id = EXCLUDED.chain_id,
			piece_id = EXCLUDED.piece_id,
			name = EXCLUDED.name,
			url = EXCLUDED.url,
			thumbnail_url = EXCLUDED.thumbnail_url,
			description = EXCLUDED.description,
			body = EXCLUDED.body,
			creators = EXCLUDED.creators,
			sponsor_address = EXCLUDED.sponsor_address,
			media_metadata = EXCLUDED.media_metadata,
			logic_contract_version = EXCLUDED.logic_contract_version,
			votes_weight = EXCLUDED.votes_weight,
			has_been_dropped = EXCLUDED.has_been_dropped,
			is_hidden = EXCLUDED.is_hidden,
			is_onchain = EXCLUDED.is_onchain,
			updated_at = EXCLUDED.updated_at
	`,
		s.Slug,
		s.ContractAddress,
		s.ChainID,
		s.PieceID,
		s.Name,
		s.URL,
		s.ThumbnailURL,
		s.Description,
		s.Body,
		creatorsJSON,
		s.SponsorAddress,
		mediaJSON,
		s.LogicContractVersion,
		s.VotesWeight,
		s.HasBeenDropped,
		s.IsHidden,
		s.IsOnchain,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert submission %s: %w", s.Slug, err)
	}
	return nil
}

// UpsertUpvote writes an upvote row; a re-vote by the same voter lands on the
// same key and overwrites it.
func (r *PostgresRepository) UpsertUpvote(ctx context.Context, u *models.Upvote) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO upvotes (
			unique_id, slug, voter, weight, strategy, chain_id, version,
			snapshot, network_address, stale, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (unique_id) DO UPDATE SET
			slug = EXCLUDED.slug,
			voter = EXCLUDED.voter,
			weight = EXCLUDED.weight,
			strategy = EXCLUDED.strategy,
			chain_id = EXCLUDED.chain_id,
			version = EXCLUDED.version,
			snapshot = EXCLUDED.snapshot,
			network_address = EXCLUDED.network_address,
			updated_at = EXCLUDED.updated_at
	`,
		u.UniqueID,
		u.Slug,
		u.Voter,
		u.Weight,
		u.Strategy,
		u.ChainID,
		u.Version,
		u.Snapshot,
		u.NetworkAddress,
		u.Stale,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert upvote %s: %w", u.UniqueID, err)
	}
	return nil
}

// FindProposal retrieves a proposal by unique id; nil when absent.
func (r *PostgresRepository) FindProposal(ctx context.Context, uniqueID string) (*models.Proposal, error) {
	var p models.Proposal
	var targetsJSON, valuesJSON, signaturesJSON, calldatasJSON []byte
	var optionsJSON, lastUpdatedJSON, creationJSON, metadataJSON, strategyJSON, payoutJSON []byte

	err := r.pool.QueryRow(ctx, `
		SELECT unique_id, entity_id, proposal_id, chain_id, token_contract,
		       governance_contract, proposer, targets, "values", signatures,
		       calldatas, description, status, options, total_votes,
		       total_unique_votes, last_updated, creation, metadata, strategy,
		       payout_amount, blockchain, network, tracker_type, type, updated_at
		FROM proposals
		WHERE unique_id = $1
	`, uniqueID).Scan(
		&p.UniqueID,
		&p.EntityID,
		&p.ProposalID,
		&p.ChainID,
		&p.TokenContract,
		&p.GovernanceContract,
		&p.Proposer,
		&targetsJSON,
		&valuesJSON,
		&signaturesJSON,
		&calldatasJSON,
		&p.Description,
		&p.Status,
		&optionsJSON,
		&p.TotalVotes,
		&p.TotalUniqueVotes,
		&lastUpdatedJSON,
		&creationJSON,
		&metadataJSON,
		&strategyJSON,
		&payoutJSON,
		&p.Blockchain,
		&p.Network,
		&p.TrackerType,
		&p.Type,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get proposal %s: %w", uniqueID, err)
	}

	for _, field := range []struct {
		raw []byte
		dst any
	}{
		{targetsJSON, &p.Targets},
		{valuesJSON, &p.Values},
		{signaturesJSON, &p.Signatures},
		{calldatasJSON, &p.Calldatas},
		{optionsJSON, &p.Options},
		{lastUpdatedJSON, &p.LastUpdated},
		{creationJSON, &p.Creation},
		{metadataJSON, &p.Metadata},
		{strategyJSON, &p.Strategy},
		{payoutJSON, &p.PayoutAmount},
	} {
		if err := json.Unmarshal(field.raw, field.dst); err != nil {
			return nil, fmt.Errorf("failed to unmarshal proposal field: %w", err)
		}
	}
	return &p, nil
}

// UpsertProposal writes the whole proposal row.
func (r *PostgresRepository) UpsertProposal(ctx context.Context, p *models.Proposal) error {
	marshal := func(v any) []byte {
		// All proposal sub-records are plain structs/slices/maps; marshaling
		// cannot fail for them.
		raw, _ := json.Marshal(v)
		return raw
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO proposals (
			unique_id, entity_id, proposal_id, chain_id, token_contract,
			governance_contract, proposer, targets, "values", signatures,
			calldatas, description, status, options, total_votes,
			total_unique_votes, last_updated, creation, metadata, strategy,
			payout_amount, blockchain, network, tracker_type, type, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,
		          $19,$20,$21,$22,$23,$24,$25,$26)
		ON CONFLICT (unique_id) DO UPDATE SET
			entity_id = EXCLUDED.entity_id,
			proposal_id = EXCLUDED.proposal_id,
			chain_id = EXCLUDED.chain_id,
			token_contract = EXCLUDED.token_contract,
			governance_contract = EXCLUDED.governance_contract,
			proposer = EXCLUDED.proposer,
			targets = EXCLUDED.targets,
			"values" = EXCLUDED."values",
			signatures = EXCLUDED.signatures,
			calldatas = EXCLUDED.calldatas,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			options = EXCLUDED.options,
			total_votes = EXCLUDED.total_votes,
			total_unique_votes = EXCLUDED.total_unique_votes,
			last_updated = EXCLUDED.last_updated,
			creation = EXCLUDED.creation,
			metadata = EXCLUDED.metadata,
			strategy = EXCLUDED.strategy,
			payout_amount = EXCLUDED.payout_amount,
			blockchain = EXCLUDED.blockchain,
			network = EXCLUDED.network,
			tracker_type = EXCLUDED.tracker_type,
			type = EXCLUDED.type,
			updated_at = EXCLUDED.updated_at
	`,
		p.UniqueID,
		p.EntityID,
		p.ProposalID,
		p.ChainID,
		p.TokenContract,
		p.GovernanceContract,
		p.Proposer,
		marshal(p.Targets),
		marshal(p.Values),
		marshal(p.Signatures),
		marshal(p.Calldatas),
		p.Description,
		p.Status,
		marshal(p.Options),
		p.TotalVotes,
		p.TotalUniqueVotes,
		marshal(p.LastUpdated),
		marshal(p.Creation),
		marshal(p.Metadata),
		marshal(p.Strategy),
		marshal(p.PayoutAmount),
		p.Blockchain,
		p.Network,
		p.TrackerType,
		p.Type,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert proposal %s: %w", p.UniqueID, err)
	}
	return nil
}

// FindVote retrieves a vote by unique id; nil when absent.
func (r *PostgresRepository) FindVote(ctx context.Context, uniqueID string) (*models.Vote, error) {
	var v models.Vote
	var lastUpdatedJSON, votedAtJSON []byte

	err := r.pool.QueryRow(ctx, `
		SELECT unique_id, entity_id, proposal_id, chain_id, token_contract, voter,
		       option_id, weight, reason, counted_in_proposal, last_updated,
		       blockchain, network, type, voted_at, updated_at
		FROM votes
		WHERE unique_id = $1
	`, uniqueID).Scan(
		&v.UniqueID,
		&v.EntityID,
		&v.ProposalID,
		&v.ChainID,
		&v.TokenContract,
		&v.Voter,
		&v.OptionID,
		&v.Weight,
		&v.Reason,
		&v.CountedInProposal,
		&lastUpdatedJSON,
		&v.Blockchain,
		&v.Network,
		&v.Type,
		&votedAtJSON,
		&v.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vote %s: %w", uniqueID, err)
	}
	if err := json.Unmarshal(lastUpdatedJSON, &v.LastUpdated); err != nil {
		return nil, fmt.Errorf("failed to unmarshal last_updated: %w", err)
	}
	if err := json.Unmarshal(votedAtJSON, &v.VotedAt); err != nil {
		return nil, fmt.Errorf("failed to unmarshal voted_at: %w", err)
	}
	return &v, nil
}

// UpsertVote writes the whole vote row.
func (r *PostgresRepository) UpsertVote(ctx context.Context, v *models.Vote) error {
	lastUpdatedJSON, _ := json.Marshal(v.LastUpdated)
	votedAtJSON, _ := json.Marshal(v.VotedAt)

	_, err := r.pool.Exec(ctx, `
		INSERT INTO votes (
			unique_id, entity_id, proposal_id, chain_id, token_contract, voter,
			option_id, weight, reason, counted_in_proposal, last_updated,
			blockchain, network, type, voted_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		ON CONFLICT (unique_id) DO UPDATE SET
			entity_id = EXCLUDED.entity_id,
			proposal_id = EXCLUDED.proposal_id,
			chain_id = EXCLUDED.chain_id,
			token_contract = EXCLUDED.token_contract,
			voter = EXCLUDED.voter,
			option_id = EXCLUDED.option_id,
			weight = EXCLUDED.weight,
			reason = EXCLUDED.reason,
			counted_in_proposal = EXCLUDED.counted_in_proposal,
			last_updated = EXCLUDED.last_updated,
			voted_at = EXCLUDED.voted_at,
			updated_at = EXCLUDED.updated_at
	`,
		v.UniqueID,
		v.EntityID,
		v.ProposalID,
		v.ChainID,
		v.TokenContract,
		v.Voter,
		v.OptionID,
		v.Weight,
		v.Reason,
		v.CountedInProposal,
		lastUpdatedJSON,
		v.Blockchain,
		v.Network,
		v.Type,
		votedAtJSON,
		v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert vote %s: %w", v.UniqueID, err)
	}
	return nil
}

// Ping checks database connectivity.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close releases the connection pool.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}
