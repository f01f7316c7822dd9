package relayer

import (
	"math/big"

	"github.com/omni-labs/bridge/core"
)

// FeeOracle estimates the native-fee a transfer must carry to be worth a
// relayer's time finalising it on a given destination chain. It is an
// interface, not a struct, because the estimate source differs per chain
// family (an EVM gas-price feed, a fixed Solana priority fee, a UTXO
// sat/vByte estimator) while the gating logic below is shared.
type FeeOracle interface {
	EstimateNativeFee(chain core.ChainKind) (*big.Int, error)
}

// StaticFeeOracle returns a fixed native fee per chain, useful for chains
// with flat relay costs and for tests that don't want to model gas markets.
type StaticFeeOracle struct {
	Fees map[core.ChainKind]*big.Int
}

func (o StaticFeeOracle) EstimateNativeFee(chain core.ChainKind) (*big.Int, error) {
	if fee, ok := o.Fees[chain]; ok {
		return fee, nil
	}
	return big.NewInt(0), nil
}

// MeetsMinimumFee reports whether a pending transfer's native fee at least
// covers the oracle's current estimate, the gate the fast-path worker
// checks before spending its own capital to pre-fund a transfer.
func MeetsMinimumFee(oracle FeeOracle, chain core.ChainKind, offeredNativeFee *big.Int) (bool, error) {
	required, err := oracle.EstimateNativeFee(chain)
	if err != nil {
		return false, err
	}
	if offeredNativeFee == nil {
		return required.Sign() == 0, nil
	}
	return offeredNativeFee.Cmp(required) >= 0, nil
}
