package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/sync/errgroup"

	"projector/internal/resolver"
	"projector/internal/retry"
)

// Client performs the auxiliary contract reads behind the resolver. It
// implements resolver.Source: token contract and settings come from eth_call
// against the auction house, display names from the NFT metadata API.
type Client struct {
	eth   *ethclient.Client
	nft   *AlchemyNFT
	retry retry.Strategy
}

// NewClient wires an eth client, the NFT metadata client and a retry strategy
// into a resolver source.
func NewClient(eth *ethclient.Client, nft *AlchemyNFT, strategy retry.Strategy) *Client {
	return &Client{eth: eth, nft: nft, retry: strategy}
}

// TokenContract reads revolutionToken() from the auction house.
func (c *Client) TokenContract(ctx context.Context, auctionContract string) (string, error) {
	out, err := c.call(ctx, auctionContract, "revolutionToken")
	if err != nil {
		return "", err
	}
	token, ok := out[0].(common.Address)
	if !ok {
		return "", fmt.Errorf("revolutionToken: unexpected return type %T", out[0])
	}
	return strings.ToLower(token.Hex()), nil
}

// AuctionSettings reads the five auction-house parameters. The calls are
// independent, so they run concurrently; any failure fails the whole read.
func (c *Client) AuctionSettings(ctx context.Context, auctionContract string) (resolver.AuctionSettings, error) {
	var settings resolver.AuctionSettings

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := c.callBig(gctx, auctionContract, "timeBuffer")
		if err != nil {
			return err
		}
		settings.TimeBuffer = v.String()
		return nil
	})
	g.Go(func() error {
		v, err := c.callBig(gctx, auctionContract, "reservePrice")
		if err != nil {
			return err
		}
		settings.ReservePrice = v.String()
		return nil
	})
	g.Go(func() error {
		out, err := c.call(gctx, auctionContract, "minBidIncrementPercentage")
		if err != nil {
			return err
		}
		pct, ok := out[0].(uint8)
		if !ok {
			return fmt.Errorf("minBidIncrementPercentage: unexpected return type %T", out[0])
		}
		settings.MinBidIncrementPercentage = fmt.Sprintf("%d", pct)
		return nil
	})
	g.Go(func() error {
		v, err := c.callBig(gctx, auctionContract, "creatorRateBps")
		if err != nil {
			return err
		}
		settings.CreatorRateBps = int(v.Int64())
		return nil
	})
	g.Go(func() error {
		v, err := c.callBig(gctx, auctionContract, "entropyRateBps")
		if err != nil {
			return err
		}
		settings.EntropyRateBps = int(v.Int64())
		return nil
	})

	if err := g.Wait(); err != nil {
		return resolver.AuctionSettings{}, fmt.Errorf("read auction settings from %s: %w", auctionContract, err)
	}
	return settings, nil
}

// DisplayName delegates to the NFT metadata client.
func (c *Client) DisplayName(ctx context.Context, tokenContract, tokenID string) resolver.Resolved[string] {
	return c.nft.DisplayName(ctx, tokenContract, tokenID)
}

// call packs a no-argument view method, executes it through the retry
// strategy and unpacks the raw return values.
func (c *Client) call(ctx context.Context, contract, method string) ([]interface{}, error) {
	input, err := auctionHouseABI.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	to := common.HexToAddress(contract)
	var raw []byte
	err = c.retry.Execute(ctx, func() error {
		var callErr error
		raw, callErr = c.eth.CallContract(ctx, ethereum.CallMsg{To: &to, Data: input}, nil)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("call %s on %s: %w", method, contract, err)
	}

	out, err := auctionHouseABI.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("call %s on %s: empty return", method, contract)
	}
	return out, nil
}

func (c *Client) callBig(ctx context.Context, contract, method string) (*big.Int, error) {
	out, err := c.call(ctx, contract, method)
	if err != nil {
		return nil, err
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected return type %T", method, out[0])
	}
	return v, nil
}
