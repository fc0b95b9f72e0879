package projection

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"projector/internal/identity"
	"projector/internal/models"
)

// addDecimalStrings adds two integer amounts in decimal-string form exactly.
// Token-scale weights overflow int64, so all tally arithmetic goes through
// arbitrary precision.
func addDecimalStrings(a, b string) (string, error) {
	da, err := decimal.NewFromString(a)
	if err != nil {
		return "", fmt.Errorf("invalid decimal amount %q: %w", a, err)
	}
	db, err := decimal.NewFromString(b)
	if err != nil {
		return "", fmt.Errorf("invalid decimal amount %q: %w", b, err)
	}
	return da.Add(db).String(), nil
}

// applyVoteToOptions returns a copy of the options map with the voted option's
// tally advanced by one voter of the given weight. Absent options default to a
// zero entry, so votes on option indexes the creation rule didn't seed still
// tally correctly.
func applyVoteToOptions(options map[string]models.ProposalOption, optionID int, weight string) (map[string]models.ProposalOption, error) {
	key := strconv.Itoa(optionID)
	option, ok := options[key]
	if !ok {
		option = models.ProposalOption{VoteCount: "0", UniqueVotes: 0, ExecutionData: []models.ExecutionData{}}
	}

	voteCount, err := addDecimalStrings(option.VoteCount, weight)
	if err != nil {
		return nil, fmt.Errorf("option %s: %w", key, err)
	}
	option.VoteCount = voteCount
	option.UniqueVotes++

	updated := make(map[string]models.ProposalOption, len(options)+1)
	for k, v := range options {
		updated[k] = v
	}
	updated[key] = option
	return updated, nil
}

// weiToEth converts an exact wei amount to a float ETH value for the display
// fields of the legacy record shape. Tallies never go through this.
func weiToEth(wei *big.Int) float64 {
	f, _ := decimal.NewFromBigInt(wei, -18).Float64()
	return f
}

// buildExecutionData converts a proposal's decoded call arrays into the stored
// per-target execution entries plus the total payout.
func buildExecutionData(
	targets []common.Address,
	values []*big.Int,
	signatures []string,
	calldatas [][]byte,
) ([]models.ExecutionData, models.PayoutAmount, error) {
	if len(values) != len(targets) || len(signatures) != len(targets) || len(calldatas) != len(targets) {
		return nil, models.PayoutAmount{}, fmt.Errorf(
			"mismatched proposal call arrays: %d targets, %d values, %d signatures, %d calldatas",
			len(targets), len(values), len(signatures), len(calldatas))
	}

	executionData := make([]models.ExecutionData, 0, len(targets))
	totalWei := new(big.Int)

	for i, target := range targets {
		value := values[i]
		if value == nil {
			return nil, models.PayoutAmount{}, fmt.Errorf("missing value for target %d", i)
		}
		totalWei.Add(totalWei, value)

		quantity, _ := new(big.Float).SetInt(value).Float64()
		executionData = append(executionData, models.ExecutionData{
			Calldata:  "0x" + common.Bytes2Hex(calldatas[i]),
			Signature: signatures[i],
			Target:    identity.Normalize(target.Hex()),
			Value: models.ExecutionValue{
				ETH:      weiToEth(value),
				Quantity: quantity,
			},
		})
	}

	payout := models.PayoutAmount{
		Quantity: totalWei.String(),
		ETH:      weiToEth(totalWei),
	}
	return executionData, payout, nil
}
