package core

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) *Locker {
	t.Helper()
	l := NewLocker(NewInMemoryStore(), nil)
	require.NoError(t, l.Registry.BindToken("usdc.bridge", NewHomeAddress("usdc.bridge"), 24, 24))

	factory, err := NewEVMAddress(ChainEthereum, common.HexToAddress("0xffff"))
	require.NoError(t, err)
	l.AddFactory(ChainEthereum, factory)

	ethUSDC, err := NewEVMAddress(ChainEthereum, common.HexToAddress("0xaaaa"))
	require.NoError(t, err)
	require.NoError(t, l.Registry.BindToken("usdc.bridge", ethUSDC, 6, 6))
	l.StorageDeposit("alice", big.NewInt(10*StorageCostPerTransfer))
	return l
}

func TestInitTransferThenSignRemovesZeroFeePending(t *testing.T) {
	l := newTestLocker(t)
	recipient, err := NewEVMAddress(ChainEthereum, common.HexToAddress("0xbeef"))
	require.NoError(t, err)

	id, err := l.InitTransfer(NewHomeAddress("alice"), NewHomeAddress("usdc.bridge"), big.NewInt(1000),
		recipient, Fee{Fee: big.NewInt(0), NativeFee: big.NewInt(0)}, "", "alice")
	require.NoError(t, err)

	_, err = l.SignTransfer(id, nil)
	require.NoError(t, err)

	_, err = l.GetTransferMessage(id)
	assert.ErrorIs(t, err, ErrTransferNotFound, "zero-fee transfer must be removed once signed")
}

func TestInitTransferKeepsPendingWhenFeeOwed(t *testing.T) {
	l := newTestLocker(t)
	recipient, _ := NewEVMAddress(ChainEthereum, common.HexToAddress("0xbeef"))

	id, err := l.InitTransfer(NewHomeAddress("alice"), NewHomeAddress("usdc.bridge"), big.NewInt(1000),
		recipient, Fee{Fee: big.NewInt(5), NativeFee: big.NewInt(0)}, "", "alice")
	require.NoError(t, err)

	_, err = l.SignTransfer(id, nil)
	require.NoError(t, err)

	msg, err := l.GetTransferMessage(id)
	require.NoError(t, err)
	assert.Equal(t, "1000", msg.Amount.String())
}

func TestInitTransferRejectsHomeRecipient(t *testing.T) {
	l := newTestLocker(t)

	_, err := l.InitTransfer(NewHomeAddress("alice"), NewHomeAddress("usdc.bridge"), big.NewInt(1000),
		NewHomeAddress("bob"), Fee{Fee: big.NewInt(0), NativeFee: big.NewInt(0)}, "", "alice")
	assert.ErrorIs(t, err, ErrRecipientIsHome)
}

func TestInitTransferRejectsFeeNotLessThanAmount(t *testing.T) {
	l := newTestLocker(t)
	recipient, _ := NewEVMAddress(ChainEthereum, common.HexToAddress("0xbeef"))

	_, err := l.InitTransfer(NewHomeAddress("alice"), NewHomeAddress("usdc.bridge"), big.NewInt(1000),
		recipient, Fee{Fee: big.NewInt(1000), NativeFee: big.NewInt(0)}, "", "alice")
	assert.ErrorIs(t, err, ErrInvalidFee)
}

func TestUpdateTransferFeeRequiresSender(t *testing.T) {
	l := newTestLocker(t)
	recipient, _ := NewEVMAddress(ChainEthereum, common.HexToAddress("0xbeef"))
	sender := NewHomeAddress("alice")

	id, err := l.InitTransfer(sender, NewHomeAddress("usdc.bridge"), big.NewInt(1000),
		recipient, Fee{Fee: big.NewInt(1), NativeFee: big.NewInt(0)}, "", "alice")
	require.NoError(t, err)

	err = l.UpdateTransferFee(id, NewHomeAddress("mallory"), big.NewInt(10), nil)
	assert.ErrorIs(t, err, ErrOnlySenderCanUpdateFee)

	err = l.UpdateTransferFee(id, sender, big.NewInt(10), nil)
	require.NoError(t, err)

	err = l.UpdateTransferFee(id, sender, big.NewInt(2), nil)
	assert.ErrorIs(t, err, ErrFeeMustIncrease)
}

func TestUpdateTransferFeeRejectsFeeNotLessThanAmount(t *testing.T) {
	l := newTestLocker(t)
	recipient, _ := NewEVMAddress(ChainEthereum, common.HexToAddress("0xbeef"))
	sender := NewHomeAddress("alice")

	id, err := l.InitTransfer(sender, NewHomeAddress("usdc.bridge"), big.NewInt(1000),
		recipient, Fee{Fee: big.NewInt(1), NativeFee: big.NewInt(0)}, "", "alice")
	require.NoError(t, err)

	err = l.UpdateTransferFee(id, sender, big.NewInt(1000), nil)
	assert.ErrorIs(t, err, ErrInvalidFee)
}

func TestFinTransferRejectsUnknownFactory(t *testing.T) {
	l := newTestLocker(t)
	imposter, _ := NewEVMAddress(ChainEthereum, common.HexToAddress("0xdead"))
	ethUSDC, _ := NewEVMAddress(ChainEthereum, common.HexToAddress("0xaaaa"))

	_, err := l.FinTransfer(FinTransferInput{
		OriginChain: ChainEthereum,
		TransferID:  TransferId{OriginChain: ChainEthereum, OriginNonce: 1},
		Token:       ethUSDC,
		Recipient:   NewHomeAddress("bob"),
		Amount:      big.NewInt(100),
		Emitter:     imposter,
	}, NewHomeAddress("relayer"))
	assert.ErrorIs(t, err, ErrUnknownFactory)
}

func TestFinTransferToHomeReleasesEscrowAndPaysFee(t *testing.T) {
	l := newTestLocker(t)
	factory, _ := NewEVMAddress(ChainEthereum, common.HexToAddress("0xffff"))
	ethUSDC, _ := NewEVMAddress(ChainEthereum, common.HexToAddress("0xaaaa"))
	require.NoError(t, l.Store.LockTokens("usdc.bridge", big.NewInt(1000)))

	recipient := NewHomeAddress("bob")
	feeRecipient := NewHomeAddress("relayer")
	l.StorageDeposit(recipient.String(), big.NewInt(1))
	l.StorageDeposit(feeRecipient.String(), big.NewInt(1))

	id := TransferId{OriginChain: ChainEthereum, OriginNonce: 1}
	out, err := l.FinTransfer(FinTransferInput{
		OriginChain: ChainEthereum,
		TransferID:  id,
		Token:       ethUSDC,
		Sender:      NewEVMAddress2(t, ChainEthereum, "0xcafe"),
		Recipient:   recipient,
		Amount:      big.NewInt(100),
		Fee:         Fee{Fee: big.NewInt(10), NativeFee: big.NewInt(0)},
		Emitter:     factory,
	}, feeRecipient)
	require.NoError(t, err)
	assert.Equal(t, recipient, out.Recipient)
	assert.Equal(t, feeRecipient, out.FeeRecipient)
	assert.Equal(t, "90", out.AmountPaid.String())
	assert.Equal(t, "10", out.FeePaid.String())

	_, err = l.FinTransfer(FinTransferInput{
		OriginChain: ChainEthereum,
		TransferID:  id,
		Token:       ethUSDC,
		Recipient:   recipient,
		Amount:      big.NewInt(100),
		Fee:         Fee{Fee: big.NewInt(10), NativeFee: big.NewInt(0)},
		Emitter:     factory,
	}, feeRecipient)
	assert.ErrorIs(t, err, ErrTransferAlreadyFinalised)
}

func TestFinTransferToHomeRequiresRecipientStorage(t *testing.T) {
	l := newTestLocker(t)
	factory, _ := NewEVMAddress(ChainEthereum, common.HexToAddress("0xffff"))
	ethUSDC, _ := NewEVMAddress(ChainEthereum, common.HexToAddress("0xaaaa"))
	require.NoError(t, l.Store.LockTokens("usdc.bridge", big.NewInt(1000)))

	id := TransferId{OriginChain: ChainEthereum, OriginNonce: 1}
	_, err := l.FinTransfer(FinTransferInput{
		OriginChain: ChainEthereum,
		TransferID:  id,
		Token:       ethUSDC,
		Recipient:   NewHomeAddress("bob"),
		Amount:      big.NewInt(100),
		Emitter:     factory,
	}, NewHomeAddress("relayer"))
	assert.ErrorIs(t, err, ErrInsufficientStorage)
}

func TestFinTransferToOtherChainRequeuesWithSameTransferID(t *testing.T) {
	l := newTestLocker(t)
	factory, _ := NewEVMAddress(ChainEthereum, common.HexToAddress("0xffff"))
	ethUSDC, _ := NewEVMAddress(ChainEthereum, common.HexToAddress("0xaaaa"))
	solanaRecipient, err := NewSolanaAddress(ChainSolana, make([]byte, 32))
	require.NoError(t, err)

	id := TransferId{OriginChain: ChainEthereum, OriginNonce: 1}
	sender, _ := NewEVMAddress(ChainEthereum, common.HexToAddress("0xcafe"))
	out, err := l.FinTransfer(FinTransferInput{
		OriginChain: ChainEthereum,
		TransferID:  id,
		Token:       ethUSDC,
		Sender:      sender,
		Recipient:   solanaRecipient,
		Amount:      big.NewInt(100),
		Fee:         Fee{Fee: big.NewInt(0), NativeFee: big.NewInt(0)},
		Emitter:     factory,
	}, NewHomeAddress("relayer"))
	require.NoError(t, err)
	assert.Equal(t, solanaRecipient, out.Recipient)

	relayed, err := l.GetTransferMessage(id)
	require.NoError(t, err, "the relay-through leg keeps the original transfer id, no new nonce allocated")
	assert.Equal(t, "100", relayed.Amount.String())
}

func TestFastFinTransferRequiresExactSentAmount(t *testing.T) {
	l := newTestLocker(t)
	recipient, _ := NewEVMAddress(ChainEthereum, common.HexToAddress("0xbeef"))
	relayer, _ := NewEVMAddress(ChainEthereum, common.HexToAddress("0xcafe"))

	id, err := l.InitTransfer(NewHomeAddress("alice"), NewHomeAddress("usdc.bridge"), big.NewInt(1000),
		recipient, Fee{Fee: big.NewInt(10), NativeFee: big.NewInt(0)}, "", "alice")
	require.NoError(t, err)

	_, _, err = l.FastFinTransfer(id, relayer, big.NewInt(999))
	assert.ErrorIs(t, err, ErrSentAmountMismatch)

	fid, relayedID, err := l.FastFinTransfer(id, relayer, big.NewInt(1010))
	require.NoError(t, err)
	require.NotNil(t, relayedID, "fast-funding a non-home transfer queues a reimbursement leg")

	_, _, err = l.FastFinTransfer(id, relayer, big.NewInt(1010))
	assert.ErrorIs(t, err, ErrFastTransferExists)

	status, ok := l.GetFastTransferStatus(fid)
	require.True(t, ok)
	assert.False(t, status.Finalised)

	reimbursement, err := l.GetTransferMessage(*relayedID)
	require.NoError(t, err)
	require.NotNil(t, reimbursement.OriginTransferId)
	assert.Equal(t, id, *reimbursement.OriginTransferId)
}

func TestUtxoFinTransferRequiresConnector(t *testing.T) {
	l := newTestLocker(t)
	btcToken := NewHomeAddress("usdc.bridge")
	connector, _ := NewEVMAddress(ChainEthereum, common.HexToAddress("0xc0de"))
	imposter, _ := NewEVMAddress(ChainEthereum, common.HexToAddress("0xbad0"))
	l.AddUTXOConnector(ChainBitcoin, connector)

	_, err := l.UtxoFinTransfer(ChainBitcoin, imposter, UtxoId{TxHash: "abc", Vout: 0}, big.NewInt(1), btcToken)
	assert.ErrorIs(t, err, ErrSenderIsNotConnector)
}

func TestDeployTokenRejectsUnknownFactoryAndDuplicateDeploy(t *testing.T) {
	l := newTestLocker(t)
	factory, _ := NewEVMAddress(ChainEthereum, common.HexToAddress("0xffff"))
	imposter, _ := NewEVMAddress(ChainEthereum, common.HexToAddress("0xdead"))
	tokenAddr, _ := NewEVMAddress(ChainEthereum, common.HexToAddress("0xf00d"))
	l.AddTokenDeployer(ChainEthereum, "deployer.bridge")

	_, err := l.DeployToken(ChainEthereum, imposter, tokenAddr, 18)
	assert.ErrorIs(t, err, ErrUnknownFactory)

	tokenID, err := l.DeployToken(ChainEthereum, factory, tokenAddr, 18)
	require.NoError(t, err)
	wantID, err := l.DeployedTokenAccountID(ChainEthereum, tokenAddr)
	require.NoError(t, err)
	assert.Equal(t, wantID, tokenID)

	_, err = l.DeployToken(ChainEthereum, factory, tokenAddr, 18)
	assert.ErrorIs(t, err, ErrTokenAlreadyDeployed)
}

func TestDeployNativeTokenMarksMintedOnHome(t *testing.T) {
	l := newTestLocker(t)
	l.AddTokenDeployer(ChainEthereum, "deployer.bridge")

	tokenID, err := l.DeployNativeToken(ChainEthereum, 18)
	require.NoError(t, err)
	assert.True(t, l.Registry.IsDeployed(tokenID))
}

func TestAddDeployedTokensBindsBatchAtomically(t *testing.T) {
	l := newTestLocker(t)
	usdc := NewEVMAddress2(t, ChainEthereum, "0x1111")
	dai := NewEVMAddress2(t, ChainEthereum, "0x2222")

	err := l.AddDeployedTokens([]DeployedTokenArg{
		{TokenID: "usdc.bridge", Address: usdc, Decimals: 6},
		{TokenID: "dai.bridge", Address: dai, Decimals: 18},
	})
	require.NoError(t, err)
	assert.True(t, l.Registry.IsDeployed("usdc.bridge"))
	assert.True(t, l.Registry.IsDeployed("dai.bridge"))

	addr, ok := l.Registry.TokenAddress(ChainEthereum, "usdc.bridge")
	require.True(t, ok)
	assert.True(t, addr.Equal(usdc))

	// Re-binding the same address fails, and the batch is not partially applied.
	err = l.AddDeployedTokens([]DeployedTokenArg{
		{TokenID: "usdc-again.bridge", Address: usdc, Decimals: 6},
	})
	assert.ErrorIs(t, err, ErrTokenAlreadyBound)
	assert.False(t, l.Registry.IsDeployed("usdc-again.bridge"))
}

func TestStorageDepositGatesInitTransfer(t *testing.T) {
	l := newTestLocker(t)
	recipient, _ := NewEVMAddress(ChainEthereum, common.HexToAddress("0xbeef"))

	_, err := l.InitTransfer(NewHomeAddress("bob"), NewHomeAddress("usdc.bridge"), big.NewInt(1000),
		recipient, Fee{Fee: big.NewInt(0), NativeFee: big.NewInt(0)}, "", "bob-unfunded")
	assert.ErrorIs(t, err, ErrInsufficientStorage)

	l.StorageDeposit("bob-funded", big.NewInt(StorageCostPerTransfer))
	_, err = l.InitTransfer(NewHomeAddress("bob"), NewHomeAddress("usdc.bridge"), big.NewInt(1000),
		recipient, Fee{Fee: big.NewInt(0), NativeFee: big.NewInt(0)}, "", "bob-funded")
	require.NoError(t, err)
}

// NewEVMAddress2 is a small test-only convenience around NewEVMAddress that
// fails the test instead of returning an error, used where a sender address
// is incidental to what a test is checking.
func NewEVMAddress2(t *testing.T, chain ChainKind, hexAddr string) OmniAddress {
	t.Helper()
	addr, err := NewEVMAddress(chain, common.HexToAddress(hexAddr))
	require.NoError(t, err)
	return addr
}
