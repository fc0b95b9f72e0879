package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Tracked fragments of the Revolution contract ABIs: the events the projector
// consumes plus the auction-house view functions the resolver reads. Anything
// the protocol emits beyond these is ignored.

const auctionHouseABIJSON = `[
  {"type":"function","name":"revolutionToken","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"timeBuffer","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"reservePrice","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"minBidIncrementPercentage","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
  {"type":"function","name":"creatorRateBps","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"entropyRateBps","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"event","name":"AuctionCreated","inputs":[
    {"name":"tokenId","type":"uint256","indexed":true},
    {"name":"startTime","type":"uint256","indexed":false},
    {"name":"endTime","type":"uint256","indexed":false}]},
  {"type":"event","name":"AuctionBid","inputs":[
    {"name":"tokenId","type":"uint256","indexed":true},
    {"name":"bidder","type":"address","indexed":false},
    {"name":"sender","type":"address","indexed":false},
    {"name":"value","type":"uint256","indexed":false},
    {"name":"extended","type":"bool","indexed":false}]},
  {"type":"event","name":"AuctionExtended","inputs":[
    {"name":"tokenId","type":"uint256","indexed":true},
    {"name":"endTime","type":"uint256","indexed":false}]},
  {"type":"event","name":"AuctionSettled","inputs":[
    {"name":"tokenId","type":"uint256","indexed":true},
    {"name":"winner","type":"address","indexed":false},
    {"name":"amount","type":"uint256","indexed":false},
    {"name":"pointsPaidToCreators","type":"uint256","indexed":false},
    {"name":"ethPaidToCreators","type":"uint256","indexed":false}]},
  {"type":"event","name":"ManifestoUpdated","inputs":[
    {"name":"tokenId","type":"uint256","indexed":true},
    {"name":"member","type":"address","indexed":false},
    {"name":"speech","type":"string","indexed":false}]},
  {"type":"event","name":"AuctionTimeBufferUpdated","inputs":[
    {"name":"timeBuffer","type":"uint256","indexed":false}]},
  {"type":"event","name":"AuctionReservePriceUpdated","inputs":[
    {"name":"reservePrice","type":"uint256","indexed":false}]},
  {"type":"event","name":"AuctionMinBidIncrementPercentageUpdated","inputs":[
    {"name":"minBidIncrementPercentage","type":"uint8","indexed":false}]},
  {"type":"event","name":"CreatorRateBpsUpdated","inputs":[
    {"name":"rateBps","type":"uint256","indexed":false}]},
  {"type":"event","name":"EntropyRateBpsUpdated","inputs":[
    {"name":"rateBps","type":"uint256","indexed":false}]}
]`

const cultureIndexABIJSON = `[
  {"type":"event","name":"PieceCreated","inputs":[
    {"name":"pieceId","type":"uint256","indexed":true},
    {"name":"sponsor","type":"address","indexed":true},
    {"name":"metadata","type":"tuple","indexed":false,"components":[
      {"name":"name","type":"string"},
      {"name":"description","type":"string"},
      {"name":"mediaType","type":"uint8"},
      {"name":"image","type":"string"},
      {"name":"text","type":"string"},
      {"name":"animationUrl","type":"string"}]},
    {"name":"creators","type":"tuple[]","indexed":false,"components":[
      {"name":"creator","type":"address"},
      {"name":"bps","type":"uint256"}]}]},
  {"type":"event","name":"VoteCast","inputs":[
    {"name":"pieceId","type":"uint256","indexed":true},
    {"name":"voter","type":"address","indexed":true},
    {"name":"weight","type":"uint256","indexed":false},
    {"name":"totalWeight","type":"uint256","indexed":false}]},
  {"type":"event","name":"PieceDropped","inputs":[
    {"name":"pieceId","type":"uint256","indexed":true},
    {"name":"remover","type":"address","indexed":true}]}
]`

const daoABIJSON = `[
  {"type":"event","name":"ProposalCreatedWithRequirements","inputs":[
    {"name":"id","type":"uint256","indexed":false},
    {"name":"proposer","type":"address","indexed":false},
    {"name":"targets","type":"address[]","indexed":false},
    {"name":"values","type":"uint256[]","indexed":false},
    {"name":"signatures","type":"string[]","indexed":false},
    {"name":"calldatas","type":"bytes[]","indexed":false},
    {"name":"startBlock","type":"uint256","indexed":false},
    {"name":"endBlock","type":"uint256","indexed":false},
    {"name":"proposalThreshold","type":"uint256","indexed":false},
    {"name":"quorumVotes","type":"uint256","indexed":false},
    {"name":"description","type":"string","indexed":false}]},
  {"type":"event","name":"ProposalCanceled","inputs":[
    {"name":"id","type":"uint256","indexed":false}]},
  {"type":"event","name":"ProposalQueued","inputs":[
    {"name":"id","type":"uint256","indexed":false},
    {"name":"eta","type":"uint256","indexed":false}]},
  {"type":"event","name":"ProposalExecuted","inputs":[
    {"name":"id","type":"uint256","indexed":false}]},
  {"type":"event","name":"ProposalVetoed","inputs":[
    {"name":"id","type":"uint256","indexed":false}]},
  {"type":"event","name":"VoteCast","inputs":[
    {"name":"voter","type":"address","indexed":true},
    {"name":"proposalId","type":"uint256","indexed":false},
    {"name":"support","type":"uint8","indexed":false},
    {"name":"votes","type":"uint256","indexed":false},
    {"name":"reason","type":"string","indexed":false}]}
]`

var (
	auctionHouseABI = mustParseABI(auctionHouseABIJSON)
	cultureIndexABI = mustParseABI(cultureIndexABIJSON)
	daoABI          = mustParseABI(daoABIJSON)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}
