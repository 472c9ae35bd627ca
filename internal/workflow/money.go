package workflow

import (
	"fmt"
	"math/big"
)

var weiPerEth = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// EthToWei converts a decimal native-currency amount ("0.03") to wei,
// exactly. Amounts with more than 18 fractional digits are rejected rather
// than rounded.
func EthToWei(amount string) (*big.Int, error) {
	rat, ok := new(big.Rat).SetString(amount)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %q", amount)
	}
	if rat.Sign() < 0 {
		return nil, fmt.Errorf("negative amount: %q", amount)
	}

	rat.Mul(rat, new(big.Rat).SetInt(weiPerEth))
	if !rat.IsInt() {
		return nil, fmt.Errorf("amount %q is below wei precision", amount)
	}
	return new(big.Int).Set(rat.Num()), nil
}
