// Package chain holds everything that touches the EVM node: the contract
// address book, the log decoder, eth_call reads backing the resolver, and the
// polling loop that feeds decoded events to the router.
package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ContractKind distinguishes which tracked ABI a deployed address speaks.
type ContractKind int

const (
	KindUnknown ContractKind = iota
	KindAuctionHouse
	KindCultureIndex
	KindDAO
)

func (k ContractKind) String() string {
	switch k {
	case KindAuctionHouse:
		return "auction_house"
	case KindCultureIndex:
		return "culture_index"
	case KindDAO:
		return "dao"
	default:
		return "unknown"
	}
}

// Deployment is one tracked contract instance.
type Deployment struct {
	Community  string // deployment family, e.g. "vrbs"
	Kind       ContractKind
	Address    string // lower-cased hex
	StartBlock uint64
}

// Base mainnet deployments of the Revolution protocol.
const (
	ChainIDBase = 8453

	vrbsStartBlock    = 11346628
	groundsStartBlock = 12698632
)

var deployments = []Deployment{
	{Community: "vrbs", Kind: KindAuctionHouse, Address: "0x4153b0310354b189e18797d5d7dfda2c924bdc3d", StartBlock: vrbsStartBlock},
	{Community: "grounds", Kind: KindAuctionHouse, Address: "0xa79be6894c4817a67c6ef6c5b11e3e8cace95717", StartBlock: groundsStartBlock},
	{Community: "vrbs", Kind: KindCultureIndex, Address: "0x5da551c18109b58831abe8a5b9edc5f9a8e4887c", StartBlock: vrbsStartBlock},
	{Community: "grounds", Kind: KindCultureIndex, Address: "0xee4f427ce740031c2e4fe04b0f05dc342bc51272", StartBlock: groundsStartBlock},
	{Community: "vrbs", Kind: KindDAO, Address: "0x613b7ddca4b05355b3541f8c018b374987549e79", StartBlock: vrbsStartBlock},
	{Community: "grounds", Kind: KindDAO, Address: "0xc052ace88f0a8dfc58ba10b9c6de02357fba0cd7", StartBlock: groundsStartBlock},
}

// daoTokens maps a governance contract to the ERC-721 token contract its
// entity ids are derived from. Governance logs from addresses outside this map
// are skipped by the projection layer.
var daoTokens = map[string]string{
	"0x613b7ddca4b05355b3541f8c018b374987549e79": "0x9ea7fd1b8823a271bec99b205b6c0c56d7c3eae9",
	"0xc052ace88f0a8dfc58ba10b9c6de02357fba0cd7": "0xebf2d8b25d3dcc3371d54c6727c207c4f3080b8c",
}

// AddressBook answers "what contract is this address" questions for the
// decoder and supplies the filter set for log polling.
type AddressBook struct {
	byAddress map[string]Deployment
}

// NewAddressBook builds the book over the built-in Base deployments.
func NewAddressBook() *AddressBook {
	book := &AddressBook{byAddress: make(map[string]Deployment, len(deployments))}
	for _, d := range deployments {
		book.byAddress[d.Address] = d
	}
	return book
}

// Lookup returns the deployment for an address, if tracked.
func (b *AddressBook) Lookup(address common.Address) (Deployment, bool) {
	d, ok := b.byAddress[strings.ToLower(address.Hex())]
	return d, ok
}

// Addresses returns every tracked address, for the log filter query.
func (b *AddressBook) Addresses() []common.Address {
	out := make([]common.Address, 0, len(b.byAddress))
	for addr := range b.byAddress {
		out = append(out, common.HexToAddress(addr))
	}
	return out
}

// EarliestStartBlock is the lowest deployment start block, the default
// backfill origin when no start block is configured.
func (b *AddressBook) EarliestStartBlock() uint64 {
	var earliest uint64
	for _, d := range b.byAddress {
		if earliest == 0 || d.StartBlock < earliest {
			earliest = d.StartBlock
		}
	}
	return earliest
}

// DAOTokenContract returns the token contract paired with a governance
// contract. The bool reports whether the DAO is known.
func DAOTokenContract(governanceContract string) (string, bool) {
	token, ok := daoTokens[strings.ToLower(governanceContract)]
	return token, ok
}
