package core

import (
	"crypto/sha256"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
)

// PayloadType is the one-byte discriminant prefixed to every signed payload,
// letting a single MPC signer key safely sign three unrelated payload shapes
// without a signature over one ever being replayable as another.
type PayloadType uint8

const (
	PayloadTypeTransferMessage PayloadType = iota
	PayloadTypeMetadata
	PayloadTypeClaimNativeFee
)

// TransferMessagePayload is the bridge's signed external contract: the exact
// byte layout a destination-chain MPC signer signs over to authorize
// releasing Amount to Recipient. TransferID and DestinationNonce are bound
// into the hash so a signature can never be replayed against a different
// transfer or a different nonce slot than the one it was produced for.
type TransferMessagePayload struct {
	Prefix           PayloadType
	DestinationNonce uint64
	TransferID       TransferId
	TokenAddress     OmniAddress
	Amount           *big.Int
	Recipient        OmniAddress
	FeeRecipient     *string
	Message          []byte
}

// EncodeHashable mirrors encode_hashable: a transfer with no message hashes
// as the v1 shape, omitting the message field from the wire form entirely,
// so a signer deployed before the message field existed still verifies
// identically against every transfer that never used it. Any non-empty
// message switches to v2, which appends the message bytes after the v1
// fields rather than changing any of their encodings.
func (p TransferMessagePayload) EncodeHashable() []byte {
	w := newCodecWriter()
	w.u8(uint8(p.Prefix))
	w.u64(p.DestinationNonce)
	w.u64(p.TransferID.OriginNonce)
	w.u8(uint8(p.TransferID.OriginChain))
	w.address(p.TokenAddress)
	_ = w.u128(normalizedOrZero(p.Amount))
	w.address(p.Recipient)
	w.option(p.FeeRecipient != nil, func() {
		w.str(*p.FeeRecipient)
	})
	if len(p.Message) > 0 {
		w.bytes(p.Message)
	}
	return w.Bytes()
}

// Hash is the keccak256 digest the destination-chain MPC signer actually
// signs, matching near_sdk::env::keccak256_array over the borsh-encoded
// payload in the original contract.
func (p TransferMessagePayload) Hash() [32]byte {
	var out [32]byte
	copy(out[:], crypto.Keccak256(p.EncodeHashable()))
	return out
}

// MetadataPayload is the signed payload behind log_metadata/deploy_token: a
// home-chain token's name/symbol/decimals, pushed to a foreign chain's
// factory so it can deploy a matching wrapped mirror there.
type MetadataPayload struct {
	Prefix   PayloadType
	Token    string
	Name     string
	Symbol   string
	Decimals uint8
}

// EncodeHashable returns MetadataPayload's deterministic byte encoding.
func (p MetadataPayload) EncodeHashable() []byte {
	w := newCodecWriter()
	w.u8(uint8(p.Prefix))
	w.str(p.Token)
	w.str(p.Name)
	w.str(p.Symbol)
	w.u8(p.Decimals)
	return w.Bytes()
}

// Hash is the keccak256 digest signed over MetadataPayload.
func (p MetadataPayload) Hash() [32]byte {
	var out [32]byte
	copy(out[:], crypto.Keccak256(p.EncodeHashable()))
	return out
}

// HashableField returns the deterministic byte encoding of a
// TransferMessage used only to derive its VirtualAccountID (the storage
// pre-funding account) — this is TransferMessageStorageAccount's field set,
// not the signed cross-chain release payload. It must never be used as a
// stand-in for TransferMessagePayload: the two hash different things for
// different purposes and neither can substitute for the other.
func (m TransferMessage) HashableField() []byte {
	w := newCodecWriter()
	w.address(m.Token)
	_ = w.u128(normalizedOrZero(m.Amount))
	w.address(m.Recipient)
	_ = w.u128(normalizedOrZero(m.Fee.Fee))
	_ = w.u128(normalizedOrZero(m.Fee.NativeFee))
	w.address(m.Sender)
	w.str(m.Msg)
	return w.Bytes()
}

func normalizedOrZero(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return v
}

// TransferHash is the sha256 digest used as the storage-account seed.
func (m TransferMessage) TransferHash() [32]byte {
	return sha256.Sum256(m.HashableField())
}
