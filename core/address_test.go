package core

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOmniAddressRoundTripEVM(t *testing.T) {
	addr, err := NewEVMAddress(ChainEthereum, common.HexToAddress("0x000000000000000000000000000000000000aa"))
	require.NoError(t, err)

	s := addr.String()
	parsed, err := ParseOmniAddress(s)
	require.NoError(t, err)
	assert.True(t, addr.Equal(parsed))
}

func TestOmniAddressRoundTripSolana(t *testing.T) {
	pubkey := make([]byte, 32)
	pubkey[0] = 7
	addr, err := NewSolanaAddress(ChainSolana, pubkey)
	require.NoError(t, err)

	parsed, err := ParseOmniAddress(addr.String())
	require.NoError(t, err)
	assert.True(t, addr.Equal(parsed))
}

func TestOmniAddressRoundTripHome(t *testing.T) {
	addr := NewHomeAddress("alice.bridge")
	parsed, err := ParseOmniAddress(addr.String())
	require.NoError(t, err)
	assert.True(t, addr.Equal(parsed))
}

func TestZeroAddressIsZero(t *testing.T) {
	zero, err := ZeroAddress(ChainEthereum)
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	nonzero, err := NewEVMAddress(ChainEthereum, common.HexToAddress("0x1"))
	require.NoError(t, err)
	assert.False(t, nonzero.IsZero())
}

func TestTokenPrefixHashesSolana(t *testing.T) {
	pubkey := make([]byte, 32)
	for i := range pubkey {
		pubkey[i] = byte(i)
	}
	addr, err := NewSolanaAddress(ChainSolana, pubkey)
	require.NoError(t, err)
	assert.Len(t, addr.TokenPrefix(), 64) // hex-encoded 32-byte keccak digest
}

func TestNewEVMAddressRejectsNonEVMChain(t *testing.T) {
	_, err := NewEVMAddress(ChainSolana, common.Address{})
	assert.ErrorIs(t, err, ErrInvalidChainKind)
}

func TestParseOmniAddressRejectsMissingChain(t *testing.T) {
	_, err := ParseOmniAddress("not-a-valid-address")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}
