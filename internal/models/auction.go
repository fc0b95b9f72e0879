package models

import "time"

// AuctionDetails is the embedded sub-record holding the auction window and
// settlement routing. Stored as JSONB; endTime is the sole field used to
// classify an auction as active at a point in time.
type AuctionDetails struct {
	StartTime      time.Time `json:"startTime"`
	EndTime        time.Time `json:"endTime"`
	SellerAddress  *string   `json:"sellerAddress"`
	FundsRecipient *string   `json:"fundsRecipient"`
}

// Auction is one projected auction per (chain, auction contract, token).
// Numeric settings are kept as decimal strings to preserve exact on-chain
// values; addresses are stored lower-cased.
type Auction struct {
	// Identification
	UniqueID               string `json:"uniqueId"`
	ChainID                uint64 `json:"chainId"`
	AuctionContractAddress string `json:"auctionContractAddress"`
	NFTContractAddress     string `json:"nftContractAddress"`
	NFTTokenID             string `json:"nftTokenId"`

	// Display
	Name string `json:"name"`
	Type string `json:"type"` // e.g. "revolution_v1"

	// Window and settings, snapshotted at creation
	Details                   AuctionDetails `json:"details"`
	ReservePrice              string         `json:"reservePrice"`
	MinBidIncrementPercentage string         `json:"minBidIncrementPercentage"`
	TimeBuffer                string         `json:"timeBuffer"`
	CreatorRateBps            int            `json:"creatorRateBps"`
	EntropyRateBps            int            `json:"entropyRateBps"`

	// Settlement outcome, nil until settled
	Winner                    *string `json:"winner"`
	WinningBid                *string `json:"winningBid"`
	PointsPaidToCreators      *string `json:"pointsPaidToCreators"`
	ETHPaidToCreators         *string `json:"ethPaidToCreators"`
	SettlementTransactionHash *string `json:"settlementTransactionHash"`

	AcceptanceManifestoSpeech *string `json:"acceptanceManifestoSpeech"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuctionBid is one bid per (transaction, log index) under an auction. The key
// includes both so multiple bids inside one transaction stay distinct.
type AuctionBid struct {
	UniqueID               string    `json:"uniqueId"`
	AuctionUniqueID        string    `json:"auctionUniqueId"`
	ChainID                uint64    `json:"chainId"`
	AuctionContractAddress string    `json:"auctionContractAddress"`
	BidAmount              string    `json:"bidAmount"`
	TransactionHash        string    `json:"transactionHash"`
	Bidder                 string    `json:"bidder"`
	Sender                 string    `json:"sender"`
	BidCreatedAt           time.Time `json:"bidCreatedAt"`
}
