package core

import (
	"crypto/sha256"
	"fmt"
	"math/big"
)

// Fee splits a transfer's relayer compensation into a token-denominated leg
// (paid in the transferred token itself) and a native-coin leg (paid in the
// home chain's gas token, covering the destination-chain finalisation cost).
type Fee struct {
	Fee       *big.Int
	NativeFee *big.Int
}

// IsZero reports whether both legs of the fee are zero.
func (f Fee) IsZero() bool {
	return (f.Fee == nil || f.Fee.Sign() == 0) && (f.NativeFee == nil || f.NativeFee.Sign() == 0)
}

// TransferId names a transfer by its origin chain and the per-chain
// monotonic nonce assigned at init time. It is the identifier used for
// every chain that settles by nonce rather than by UTXO.
type TransferId struct {
	OriginChain ChainKind
	OriginNonce uint64
}

func (t TransferId) String() string {
	return fmt.Sprintf("%s:%d", t.OriginChain, t.OriginNonce)
}

// UtxoId names a single UTXO chain input by its transaction hash and output index.
type UtxoId struct {
	TxHash string
	Vout   uint32
}

func (u UtxoId) String() string { return fmt.Sprintf("%s@%d", u.TxHash, u.Vout) }

// TransferIdKind discriminates the two settlement identifier shapes a
// UnifiedTransferId may carry.
type TransferIdKind uint8

const (
	TransferIdNonce TransferIdKind = iota
	TransferIdUtxo
)

// UnifiedTransferId is the identifier used by finalisation bookkeeping,
// which must track both nonce-settled and UTXO-settled transfers in the
// same table.
type UnifiedTransferId struct {
	OriginChain ChainKind
	Kind        TransferIdKind
	Nonce       uint64
	Utxo        UtxoId
}

func (u UnifiedTransferId) String() string {
	if u.Kind == TransferIdUtxo {
		return fmt.Sprintf("%s:utxo:%s", u.OriginChain, u.Utxo)
	}
	return fmt.Sprintf("%s:nonce:%d", u.OriginChain, u.Nonce)
}

// TransferMessage is the canonical record of a single cross-chain transfer,
// stored while pending and referenced by every later lifecycle step.
type TransferMessage struct {
	OriginNonce      uint64
	Token            OmniAddress
	Amount           *big.Int
	Recipient        OmniAddress
	Fee              Fee
	Sender           OmniAddress
	Msg              string
	DestinationNonce uint64
	OriginTransferId *TransferId // set only for a fast-transfer's reimbursement leg
}

// OriginChain is the chain that issued the transfer (the Sender's chain).
func (m TransferMessage) OriginChain() ChainKind { return m.Sender.Chain }

// DestinationChain is the chain that should receive the transfer (the Recipient's chain).
func (m TransferMessage) DestinationChain() ChainKind { return m.Recipient.Chain }

// TransferId is this message's nonce-keyed identifier.
func (m TransferMessage) TransferId() TransferId {
	return TransferId{OriginChain: m.OriginChain(), OriginNonce: m.OriginNonce}
}

// FastTransferId identifies a fast-transfer independent of who funded it,
// derived from the content of the underlying transfer so two relayers racing
// to fund the same transfer collide on the same id rather than double-paying.
type FastTransferId [32]byte

func (id FastTransferId) String() string { return fmt.Sprintf("%x", id[:]) }

// FastTransfer records a relayer's pre-funding of a transfer ahead of
// on-chain finalisation, reimbursed later out of the normal SIGN/CLAIM path.
type FastTransfer struct {
	TransferId TransferId
	Token      OmniAddress
	Amount     *big.Int
	Fee        Fee
	Recipient  OmniAddress
	Msg        string
}

// Id derives the content-addressed FastTransferId for this fast transfer.
func (f FastTransfer) Id() FastTransferId {
	w := newCodecWriter()
	w.u64(f.TransferId.OriginNonce)
	w.u8(uint8(f.TransferId.OriginChain))
	w.address(f.Token)
	_ = w.u128(normalizedOrZero(f.Amount))
	_ = w.u128(normalizedOrZero(f.Fee.Fee))
	_ = w.u128(normalizedOrZero(f.Fee.NativeFee))
	w.address(f.Recipient)
	w.str(f.Msg)
	return sha256.Sum256(w.Bytes())
}

// FastTransferFromMessage derives the FastTransfer view of a pending
// transfer, the shape a relayer commits to when it pre-funds the transfer.
func FastTransferFromMessage(m TransferMessage, token OmniAddress) FastTransfer {
	return FastTransfer{
		TransferId: m.TransferId(),
		Token:      token,
		Amount:     m.Amount,
		Fee:        m.Fee,
		Recipient:  m.Recipient,
		Msg:        m.Msg,
	}
}

// FastTransferStatus records who funded a fast transfer and whether the
// underlying origin-chain transfer has since been finalised.
type FastTransferStatus struct {
	Relayer   OmniAddress
	Finalised bool
}
