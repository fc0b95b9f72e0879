package resolver

import (
	"context"
	"fmt"

	"projector/internal/metrics"
)

// AuctionSettings are the auction-house parameters snapshotted when an auction
// is created. Numeric fields are exact decimal strings, never floats.
type AuctionSettings struct {
	TimeBuffer                string
	ReservePrice              string
	MinBidIncrementPercentage string
	CreatorRateBps            int
	EntropyRateBps            int
}

// Source performs the actual auxiliary reads. The production implementation
// lives in internal/chain; tests inject fakes.
type Source interface {
	// TokenContract resolves the ERC-721 token contract backing an auction house.
	TokenContract(ctx context.Context, auctionContract string) (string, error)
	// AuctionSettings reads the auction house's current parameters.
	AuctionSettings(ctx context.Context, auctionContract string) (AuctionSettings, error)
	// DisplayName looks up the NFT metadata name, best effort.
	DisplayName(ctx context.Context, tokenContract, tokenID string) Resolved[string]
}

type nameKey struct {
	tokenContract string
	tokenID       string
}

// Caching is the read-through resolver handed to the projection layer. It is
// scoped to process lifetime and shared by all handlers.
type Caching struct {
	tokenContracts *Cache[string, string]
	settings       *Cache[string, AuctionSettings]
	names          *Cache[nameKey, string]
}

// NewCaching wraps a Source with memoization for all three lookups.
func NewCaching(src Source) *Caching {
	return &Caching{
		tokenContracts: NewCache(func(ctx context.Context, auctionContract string) Resolved[string] {
			token, err := src.TokenContract(ctx, auctionContract)
			if err != nil {
				return Unavailable[string]()
			}
			return Found(token)
		}),
		settings: NewCache(func(ctx context.Context, auctionContract string) Resolved[AuctionSettings] {
			settings, err := src.AuctionSettings(ctx, auctionContract)
			if err != nil {
				return Unavailable[AuctionSettings]()
			}
			return Found(settings)
		}),
		names: NewCache(func(ctx context.Context, key nameKey) Resolved[string] {
			return src.DisplayName(ctx, key.tokenContract, key.tokenID)
		}),
	}
}

// TokenContract resolves the token contract behind an auction house. There is
// no usable fallback: without it the auction key cannot be derived, so an
// unavailable read surfaces as an error wrapping ErrUnavailable.
func (c *Caching) TokenContract(ctx context.Context, auctionContract string) (string, error) {
	result := c.tokenContracts.Get(ctx, auctionContract)
	switch result.Status {
	case StatusFound:
		metrics.ResolverLookups.WithLabelValues("token_contract", "found").Inc()
		return result.Value, nil
	default:
		metrics.ResolverLookups.WithLabelValues("token_contract", "unavailable").Inc()
		return "", fmt.Errorf("resolve token contract for %s: %w", auctionContract, ErrUnavailable)
	}
}

// AuctionSettings resolves the auction parameters to snapshot at creation.
func (c *Caching) AuctionSettings(ctx context.Context, auctionContract string) (AuctionSettings, error) {
	result := c.settings.Get(ctx, auctionContract)
	switch result.Status {
	case StatusFound:
		metrics.ResolverLookups.WithLabelValues("auction_settings", "found").Inc()
		return result.Value, nil
	default:
		metrics.ResolverLookups.WithLabelValues("auction_settings", "unavailable").Inc()
		return AuctionSettings{}, fmt.Errorf("resolve auction settings for %s: %w", auctionContract, ErrUnavailable)
	}
}

// DisplayName resolves the NFT's metadata name. Absence and unavailability are
// both valid outcomes; callers fall back to the raw token id.
func (c *Caching) DisplayName(ctx context.Context, tokenContract, tokenID string) Resolved[string] {
	result := c.names.Get(ctx, nameKey{tokenContract: tokenContract, tokenID: tokenID})
	switch result.Status {
	case StatusFound:
		metrics.ResolverLookups.WithLabelValues("display_name", "found").Inc()
	case StatusNotFound:
		metrics.ResolverLookups.WithLabelValues("display_name", "not_found").Inc()
	default:
		metrics.ResolverLookups.WithLabelValues("display_name", "unavailable").Inc()
	}
	return result
}
