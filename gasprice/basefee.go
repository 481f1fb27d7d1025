package gasprice

import "math/big"

// nextBaseFee projects the following block's base fee: EIP-1559's base fee
// moves by at most 1/8th per block toward a target of half the block's gas
// limit.
func nextBaseFee(baseFee *big.Int, gasUsed, gasLimit uint64) *big.Int {
	if baseFee == nil || gasLimit == 0 {
		return baseFee
	}

	target := gasLimit / 2
	if gasUsed == target {
		return new(big.Int).Set(baseFee)
	}

	if gasUsed > target {
		delta := gasUsed - target
		increase := new(big.Int).Mul(baseFee, big.NewInt(int64(delta)))
		increase.Div(increase, big.NewInt(int64(target)))
		increase.Div(increase, big.NewInt(8))
		if increase.Sign() == 0 {
			increase = big.NewInt(1)
		}
		return new(big.Int).Add(baseFee, increase)
	}

	delta := target - gasUsed
	decrease := new(big.Int).Mul(baseFee, big.NewInt(int64(delta)))
	decrease.Div(decrease, big.NewInt(int64(target)))
	decrease.Div(decrease, big.NewInt(8))

	next := new(big.Int).Sub(baseFee, decrease)
	if next.Sign() < 0 {
		return big.NewInt(0)
	}
	return next
}
