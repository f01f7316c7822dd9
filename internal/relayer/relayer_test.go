package relayer

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum/go-ethereum/common"

	"github.com/omni-labs/bridge/core"
	"github.com/omni-labs/bridge/internal/chainiface"
)

type fakeProver struct {
	result chainiface.FinTransferResult
	err    error
	calls  int
}

func (f *fakeProver) VerifyFinTransfer(ctx context.Context, chain core.ChainKind, raw []byte) (chainiface.FinTransferResult, error) {
	f.calls++
	return f.result, f.err
}

func (f *fakeProver) VerifyDeployToken(ctx context.Context, chain core.ChainKind, raw []byte) (chainiface.DeployTokenResult, error) {
	return chainiface.DeployTokenResult{}, nil
}

func noRetry() backoff.BackOff {
	return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 0)
}

func TestSubmitFinTransferAppliesVerifiedResult(t *testing.T) {
	l := NewLockerForTest(t)
	factory, _ := core.NewEVMAddress(core.ChainEthereum, common.HexToAddress("0xffff"))
	l.AddFactory(core.ChainEthereum, factory)

	ethUSDC, _ := core.NewEVMAddress(core.ChainEthereum, common.HexToAddress("0xaaaa"))
	require.NoError(t, l.Registry.BindToken("usdc.bridge", ethUSDC, 6, 6))
	require.NoError(t, l.Store.LockTokens("usdc.bridge", big.NewInt(1000)))

	recipient := core.NewHomeAddress("bob")
	l.StorageDeposit(recipient.String(), big.NewInt(1))

	prover := &fakeProver{result: chainiface.FinTransferResult{
		OriginChain:    core.ChainEthereum,
		TransferID:     core.TransferId{OriginChain: core.ChainEthereum, OriginNonce: 1},
		Token:          ethUSDC,
		Recipient:      recipient,
		Amount:         big.NewInt(100),
		Fee:            core.Fee{Fee: big.NewInt(0), NativeFee: big.NewInt(0)},
		EmitterAddress: factory,
	}}

	orch := NewOrchestrator(l, prover, nil, logrus.StandardLogger())
	orch.RetryPolicy = noRetry

	outcome, err := orch.SubmitFinTransfer(context.Background(), core.ChainEthereum, []byte("proof"), core.NewHomeAddress("relayer"))
	require.NoError(t, err)
	assert.Equal(t, "100", outcome.AmountPaid.String())
	assert.Equal(t, 1, prover.calls)
}

func TestSubmitFinTransferPropagatesProverError(t *testing.T) {
	l := NewLockerForTest(t)
	prover := &fakeProver{err: errors.New("rpc unavailable")}
	orch := NewOrchestrator(l, prover, nil, logrus.StandardLogger())
	orch.RetryPolicy = noRetry

	_, err := orch.SubmitFinTransfer(context.Background(), core.ChainEthereum, []byte("proof"), core.OmniAddress{})
	assert.Error(t, err)
}

func TestNonceManagerAllocatesSequentially(t *testing.T) {
	n := NewNonceManager()
	n.Seed(core.ChainEthereum, 5)
	assert.Equal(t, uint64(5), n.Next(core.ChainEthereum))
	assert.Equal(t, uint64(6), n.Next(core.ChainEthereum))
}

func TestNonceManagerReleaseRewindsOnlyAtTip(t *testing.T) {
	n := NewNonceManager()
	n.Seed(core.ChainEthereum, 5)
	got := n.Next(core.ChainEthereum) // consumes 5, tip now 6
	n.Release(core.ChainEthereum, got)
	assert.Equal(t, uint64(5), n.Next(core.ChainEthereum), "released nonce should be handed out again")
}

func TestMeetsMinimumFee(t *testing.T) {
	oracle := StaticFeeOracle{Fees: map[core.ChainKind]*big.Int{core.ChainEthereum: big.NewInt(100)}}
	ok, err := MeetsMinimumFee(oracle, core.ChainEthereum, big.NewInt(150))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = MeetsMinimumFee(oracle, core.ChainEthereum, big.NewInt(50))
	require.NoError(t, err)
	assert.False(t, ok)
}
