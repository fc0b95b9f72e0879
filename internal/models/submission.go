package models

import "time"

// MediaType classifies a submission's primary media.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
	MediaTypeAudio MediaType = "audio"
	MediaTypeText  MediaType = "text"
	// MediaTypeUnknown marks media the contract enum doesn't cover.
	MediaTypeUnknown MediaType = ""
)

// CreatorSplit is one (address, basis points) pair of a submission's creator
// list. The bps values conventionally sum to <= 10000 but this is not enforced.
type CreatorSplit struct {
	Address string `json:"address"`
	BPS     int    `json:"bps"`
}

// MediaMetadata mirrors the legacy embedded media descriptor.
type MediaMetadata struct {
	Type          MediaType `json:"type"`
	ThumbnailIPFS string    `json:"thumbnailIpfs"`
}

// Submission is one projected culture-index piece per (chain, contract, piece id).
type Submission struct {
	Slug            string `json:"slug"` // also the unique id
	ContractAddress string `json:"contractAddress"`
	ChainID         uint64 `json:"chainId"`
	PieceID         string `json:"pieceId"`

	Name         string  `json:"name"`
	URL          string  `json:"url"`
	ThumbnailURL *string `json:"thumbnailUrl"`
	Description  string  `json:"description"`
	Body         string  `json:"body"`

	Creators       []CreatorSplit `json:"creators"`
	SponsorAddress string         `json:"sponsorAddress"`
	MediaMetadata  MediaMetadata  `json:"mediaMetadata"`

	LogicContractVersion string `json:"logicContractVersion"`
	VotesWeight          int64  `json:"votesWeight"`

	HasBeenDropped bool `json:"hasBeenDropped"`
	IsHidden       bool `json:"isHidden"`
	IsOnchain      bool `json:"isOnchain"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Upvote is one vote per (submission, voter); a re-vote by the same voter
// overwrites the existing row rather than adding a second one.
type Upvote struct {
	UniqueID       string `json:"uniqueId"`
	Slug           string `json:"slug"`
	Voter          string `json:"voter"`
	Weight         int64  `json:"weight"`
	Strategy       string `json:"strategy"`
	ChainID        uint64 `json:"chainId"`
	Version        int    `json:"version"`
	Snapshot       uint64 `json:"snapshot"` // block number of the vote
	NetworkAddress string `json:"networkAddress"`

	// Stale is reserved for a future invalidation pass and never set here.
	Stale bool `json:"stale"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
