package core

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func baseMessage() TransferMessage {
	return TransferMessage{
		OriginNonce: 1,
		Token:       NewHomeAddress("usdc.bridge"),
		Amount:      big.NewInt(100),
		Recipient:   NewHomeAddress("bob"),
		Fee:         Fee{Fee: big.NewInt(1), NativeFee: big.NewInt(0)},
		Sender:      NewHomeAddress("alice"),
	}
}

func TestHashableFieldIsDeterministic(t *testing.T) {
	a := baseMessage()
	b := baseMessage()
	assert.Equal(t, a.HashableField(), b.HashableField())
	assert.Equal(t, a.TransferHash(), b.TransferHash())
}

func TestHashableFieldChangesWithMsg(t *testing.T) {
	a := baseMessage()
	b := baseMessage()
	b.Msg = "relay-me"
	assert.NotEqual(t, a.HashableField(), b.HashableField())
}

func TestTransferHashChangesWithAmount(t *testing.T) {
	a := baseMessage()
	b := baseMessage()
	b.Amount = big.NewInt(200)
	assert.NotEqual(t, a.TransferHash(), b.TransferHash())
}

func baseTransferPayload() TransferMessagePayload {
	return TransferMessagePayload{
		Prefix:           PayloadTypeTransferMessage,
		DestinationNonce: 7,
		TransferID:       TransferId{OriginChain: ChainEthereum, OriginNonce: 1},
		TokenAddress:     NewHomeAddress("usdc.bridge"),
		Amount:           big.NewInt(99),
		Recipient:        NewHomeAddress("bob"),
	}
}

func TestTransferMessagePayloadPicksV1WhenMessageEmpty(t *testing.T) {
	v1 := baseTransferPayload()
	v2 := baseTransferPayload()
	v2.Message = []byte("relay-me")

	assert.NotEqual(t, v1.EncodeHashable(), v2.EncodeHashable())
	assert.NotEqual(t, v1.Hash(), v2.Hash())

	empty := baseTransferPayload()
	empty.Message = []byte{}
	assert.Equal(t, v1.EncodeHashable(), empty.EncodeHashable(), "an empty message encodes as v1")
}

func TestTransferMessagePayloadIsDeterministic(t *testing.T) {
	a := baseTransferPayload()
	b := baseTransferPayload()
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestTransferMessagePayloadBindsDestinationNonce(t *testing.T) {
	a := baseTransferPayload()
	b := baseTransferPayload()
	b.DestinationNonce = 8
	assert.NotEqual(t, a.Hash(), b.Hash())
}

func TestTransferMessagePayloadBindsFeeRecipient(t *testing.T) {
	a := baseTransferPayload()
	b := baseTransferPayload()
	recipient := "relayer.near"
	b.FeeRecipient = &recipient
	assert.NotEqual(t, a.Hash(), b.Hash())
}

func TestMetadataPayloadIsDeterministicAndSensitiveToFields(t *testing.T) {
	a := MetadataPayload{Prefix: PayloadTypeMetadata, Token: "usdc.bridge", Name: "USD Coin", Symbol: "USDC", Decimals: 6}
	b := a
	assert.Equal(t, a.Hash(), b.Hash())

	c := a
	c.Decimals = 18
	assert.NotEqual(t, a.Hash(), c.Hash())
}
