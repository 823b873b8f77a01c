package trading

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Helpers for pulling typed values out of unpacked contract call results.
// Reads fail loudly with the output position and name so a mismatched ABI
// surfaces immediately instead of as a zero value.

func extractBigInt(vals []any, i int, name string) (*big.Int, error) {
	if i >= len(vals) {
		return nil, errors.Errorf("missing output %d (%s): got %d values", i, name, len(vals))
	}
	v, ok := vals[i].(*big.Int)
	if !ok {
		return nil, errors.Errorf("output %d (%s): expected *big.Int, got %T", i, name, vals[i])
	}
	return v, nil
}

func extractAddress(vals []any, i int, name string) (common.Address, error) {
	if i >= len(vals) {
		return common.Address{}, errors.Errorf("missing output %d (%s): got %d values", i, name, len(vals))
	}
	v, ok := vals[i].(common.Address)
	if !ok {
		return common.Address{}, errors.Errorf("output %d (%s): expected address, got %T", i, name, vals[i])
	}
	return v, nil
}

func extractBool(vals []any, i int, name string) (bool, error) {
	if i >= len(vals) {
		return false, errors.Errorf("missing output %d (%s): got %d values", i, name, len(vals))
	}
	v, ok := vals[i].(bool)
	if !ok {
		return false, errors.Errorf("output %d (%s): expected bool, got %T", i, name, vals[i])
	}
	return v, nil
}
