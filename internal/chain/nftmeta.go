package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"projector/internal/resolver"
)

// AlchemyNFT looks up NFT metadata names through Alchemy's NFT API. The lookup
// is best effort: a missing API key or an unknown token resolves to NotFound,
// transport failures to Unavailable so the resolver can retry later.
type AlchemyNFT struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewAlchemyNFT builds the client for Base mainnet. An empty apiKey disables
// lookups entirely.
func NewAlchemyNFT(apiKey string) *AlchemyNFT {
	return &AlchemyNFT{
		apiKey:  apiKey,
		baseURL: "https://base-mainnet.g.alchemy.com/nft/v3",
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type nftMetadataResponse struct {
	Name string `json:"name"`
	Raw  struct {
		Metadata struct {
			Name string `json:"name"`
		} `json:"metadata"`
	} `json:"raw"`
}

// DisplayName fetches the token's metadata name.
func (a *AlchemyNFT) DisplayName(ctx context.Context, tokenContract, tokenID string) resolver.Resolved[string] {
	if a.apiKey == "" {
		return resolver.NotFound[string]()
	}

	endpoint := fmt.Sprintf("%s/%s/getNFTMetadata?contractAddress=%s&tokenId=%s",
		a.baseURL, url.PathEscape(a.apiKey), url.QueryEscape(tokenContract), url.QueryEscape(tokenID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return resolver.Unavailable[string]()
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return resolver.Unavailable[string]()
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return resolver.NotFound[string]()
	case resp.StatusCode != http.StatusOK:
		return resolver.Unavailable[string]()
	}

	var body nftMetadataResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return resolver.Unavailable[string]()
	}

	name := body.Name
	if name == "" {
		name = body.Raw.Metadata.Name
	}
	if name == "" {
		return resolver.NotFound[string]()
	}
	return resolver.Found(name)
}
