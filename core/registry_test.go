package core

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDenormalizeRoundTrip(t *testing.T) {
	amount := big.NewInt(1_000_000) // 1.0 at 6 decimals
	normalized := Normalize(amount, 6, 18)
	assert.Equal(t, "1000000000000000000", normalized.String())

	denorm, err := Denormalize(normalized, 18, 6, nil)
	require.NoError(t, err)
	assert.Equal(t, amount.String(), denorm.String())
}

func TestNormalizeTruncatesDust(t *testing.T) {
	// 18 -> 6 decimals drops everything below 10^12.
	amount, _ := new(big.Int).SetString("1000000000000123", 10)
	normalized := Normalize(amount, 18, 6)
	assert.Equal(t, "1000", normalized.String())
}

func TestDenormalizeOverflowIsFatal(t *testing.T) {
	amount := big.NewInt(1_000_000)
	maxValue := big.NewInt(10)
	_, err := Denormalize(amount, 6, 18, maxValue)
	assert.ErrorIs(t, err, ErrAmountOverflow)
}

func TestBindTokenRejectsDuplicateAddress(t *testing.T) {
	reg := NewTokenRegistry()
	addr, err := NewEVMAddress(ChainEthereum, common.HexToAddress("0x1"))
	require.NoError(t, err)

	require.NoError(t, reg.BindToken("usdc.bridge", addr, 6, 6))
	err = reg.BindToken("other.bridge", addr, 6, 6)
	assert.ErrorIs(t, err, ErrTokenAlreadyBound)
}

func TestTokenIDForHomeAddressIsItself(t *testing.T) {
	reg := NewTokenRegistry()
	id, err := reg.TokenID(NewHomeAddress("usdc.bridge"))
	require.NoError(t, err)
	assert.Equal(t, "usdc.bridge", id)
}

func TestTokenIDUnregisteredIsError(t *testing.T) {
	reg := NewTokenRegistry()
	addr, _ := NewEVMAddress(ChainEthereum, common.HexToAddress("0x2"))
	_, err := reg.TokenID(addr)
	assert.ErrorIs(t, err, ErrTokenNotRegistered)
}
