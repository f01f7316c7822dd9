package core

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// TransferStore holds every table the locker state machine reads and
// writes: pending transfers awaiting finalisation, the finalised-transfer
// sets that guard against double settlement, fast-transfer pre-funding
// records, the destination nonce counter per chain, and the escrow ledger
// backing non-deployed (native, non-wrapped) tokens. It is built directly
// on KVStore so a production deployment can swap in a durable backend
// without touching locker logic.
type TransferStore struct {
	kv KVStore
}

func NewTransferStore(kv KVStore) *TransferStore {
	return &TransferStore{kv: kv}
}

func pendingKey(id TransferId) []byte {
	return []byte(fmt.Sprintf("pending:%s", id))
}
func finalisedKey(id TransferId) []byte {
	return []byte(fmt.Sprintf("finalised:%s", id))
}
func finalisedUtxoKey(id UnifiedTransferId) []byte {
	return []byte(fmt.Sprintf("finalised_utxo:%s", id))
}
func fastKey(id FastTransferId) []byte {
	return []byte(fmt.Sprintf("fast:%s", id))
}
func escrowKey(tokenID string) []byte {
	return []byte(fmt.Sprintf("escrow:%s", tokenID))
}
func destNonceKey(chain ChainKind) []byte {
	return []byte(fmt.Sprintf("destnonce:%d", uint8(chain)))
}

type pendingRecord struct {
	Message      TransferMessage
	StorageOwner string
}

// jsonTransferMessage is TransferMessage's wire shape for the KV store: the
// *big.Int fields need explicit string (de)serialization since
// encoding/json otherwise round-trips big.Int through float64-lossy paths
// for some stdlib versions, and this store's values must never lose precision.
type jsonTransferMessage struct {
	OriginNonce      uint64
	Token            OmniAddress
	Amount           string
	Recipient        OmniAddress
	Fee              string
	NativeFee        string
	Sender           OmniAddress
	Msg              string
	DestinationNonce uint64
	OriginTransferId *TransferId
}

func toJSON(m TransferMessage) jsonTransferMessage {
	amt := "0"
	if m.Amount != nil {
		amt = m.Amount.String()
	}
	fee := "0"
	if m.Fee.Fee != nil {
		fee = m.Fee.Fee.String()
	}
	nfee := "0"
	if m.Fee.NativeFee != nil {
		nfee = m.Fee.NativeFee.String()
	}
	return jsonTransferMessage{
		OriginNonce: m.OriginNonce, Token: m.Token, Amount: amt, Recipient: m.Recipient,
		Fee: fee, NativeFee: nfee, Sender: m.Sender, Msg: m.Msg,
		DestinationNonce: m.DestinationNonce, OriginTransferId: m.OriginTransferId,
	}
}

func fromJSON(j jsonTransferMessage) (TransferMessage, error) {
	amt, ok := new(big.Int).SetString(j.Amount, 10)
	if !ok {
		return TransferMessage{}, fmt.Errorf("corrupt stored amount %q", j.Amount)
	}
	fee, ok := new(big.Int).SetString(j.Fee, 10)
	if !ok {
		return TransferMessage{}, fmt.Errorf("corrupt stored fee %q", j.Fee)
	}
	nfee, ok := new(big.Int).SetString(j.NativeFee, 10)
	if !ok {
		return TransferMessage{}, fmt.Errorf("corrupt stored native fee %q", j.NativeFee)
	}
	return TransferMessage{
		OriginNonce: j.OriginNonce, Token: j.Token, Amount: amt, Recipient: j.Recipient,
		Fee: Fee{Fee: fee, NativeFee: nfee}, Sender: j.Sender, Msg: j.Msg,
		DestinationNonce: j.DestinationNonce, OriginTransferId: j.OriginTransferId,
	}, nil
}

// PutPending writes a pending transfer under its id, overwriting any record
// already stored there; there is no insert-once check. UpdateTransferFee
// relies on this to store the updated record in place.
func (s *TransferStore) PutPending(m TransferMessage, storageOwner string) error {
	raw, err := json.Marshal(struct {
		Message      jsonTransferMessage
		StorageOwner string
	}{toJSON(m), storageOwner})
	if err != nil {
		return err
	}
	return s.kv.Set(pendingKey(m.TransferId()), raw)
}

// GetPending fetches a pending transfer by id.
func (s *TransferStore) GetPending(id TransferId) (TransferMessage, string, error) {
	raw, err := s.kv.Get(pendingKey(id))
	if err != nil {
		return TransferMessage{}, "", fmt.Errorf("%w: %s", ErrTransferNotFound, id)
	}
	var rec struct {
		Message      jsonTransferMessage
		StorageOwner string
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return TransferMessage{}, "", err
	}
	m, err := fromJSON(rec.Message)
	return m, rec.StorageOwner, err
}

// RemovePending deletes a pending transfer, used once it finalises, fails,
// or has its fee fully claimed.
func (s *TransferStore) RemovePending(id TransferId) error {
	return s.kv.Delete(pendingKey(id))
}

// MarkFinalised records id as settled. It is a logic error to call this
// twice for the same id; callers must check IsFinalised first so the
// locker never double-releases escrowed value.
func (s *TransferStore) MarkFinalised(id TransferId) error {
	return s.kv.Set(finalisedKey(id), []byte{1})
}

// IsFinalised reports whether a nonce-settled transfer has already been finalised.
func (s *TransferStore) IsFinalised(id TransferId) bool {
	_, err := s.kv.Get(finalisedKey(id))
	return err == nil
}

// MarkFinalisedUTXO records a UTXO-settled transfer as settled.
func (s *TransferStore) MarkFinalisedUTXO(id UnifiedTransferId) error {
	return s.kv.Set(finalisedUtxoKey(id), []byte{1})
}

// IsFinalisedUTXO reports whether a UTXO-settled transfer has already been finalised.
func (s *TransferStore) IsFinalisedUTXO(id UnifiedTransferId) bool {
	_, err := s.kv.Get(finalisedUtxoKey(id))
	return err == nil
}

// IsTransferFinalised dispatches to the nonce or UTXO finalisation table
// depending on the identifier's kind.
func (s *TransferStore) IsTransferFinalised(id UnifiedTransferId) bool {
	if id.Kind == TransferIdUtxo {
		return s.IsFinalisedUTXO(id)
	}
	return s.IsFinalised(TransferId{OriginChain: id.OriginChain, OriginNonce: id.Nonce})
}

// PutFastTransfer records a relayer's pre-funding of id.
func (s *TransferStore) PutFastTransfer(id FastTransferId, status FastTransferStatus) error {
	raw, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return s.kv.Set(fastKey(id), raw)
}

// GetFastTransfer returns the funding status of a fast transfer, if any.
func (s *TransferStore) GetFastTransfer(id FastTransferId) (FastTransferStatus, bool) {
	raw, err := s.kv.Get(fastKey(id))
	if err != nil {
		return FastTransferStatus{}, false
	}
	var status FastTransferStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return FastTransferStatus{}, false
	}
	return status, true
}

// MarkFastTransferFinalised flips a fast transfer's status to finalised in place.
func (s *TransferStore) MarkFastTransferFinalised(id FastTransferId) error {
	status, ok := s.GetFastTransfer(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTransferNotFound, id)
	}
	status.Finalised = true
	return s.PutFastTransfer(id, status)
}

// RemoveFastTransfer deletes a fast transfer record once it has been
// reimbursed through the normal fee-claim path.
func (s *TransferStore) RemoveFastTransfer(id FastTransferId) error {
	return s.kv.Delete(fastKey(id))
}

// NextDestinationNonce allocates and persists the next outgoing nonce for
// chain. The home chain never needs one since it settles by account
// balance, not by replaying nonce-ordered messages.
func (s *TransferStore) NextDestinationNonce(chain ChainKind) (uint64, error) {
	if chain.IsHome() {
		return 0, nil
	}
	cur := s.CurrentDestinationNonce(chain)
	next := cur + 1
	if err := s.kv.Set(destNonceKey(chain), []byte(fmt.Sprintf("%d", next))); err != nil {
		return 0, err
	}
	return next, nil
}

// CurrentDestinationNonce returns chain's last-allocated destination nonce.
func (s *TransferStore) CurrentDestinationNonce(chain ChainKind) uint64 {
	raw, err := s.kv.Get(destNonceKey(chain))
	if err != nil {
		return 0
	}
	var n uint64
	fmt.Sscanf(string(raw), "%d", &n)
	return n
}

// LockTokens credits tokenID's escrow balance, used when a native (non-
// wrapped) token is locked on init so fin_transfer/claim can later release
// exactly what was escrowed rather than minting new supply.
func (s *TransferStore) LockTokens(tokenID string, amount *big.Int) error {
	cur := s.EscrowBalance(tokenID)
	return s.kv.Set(escrowKey(tokenID), []byte(new(big.Int).Add(cur, amount).String()))
}

// ReleaseTokens debits tokenID's escrow balance by amount.
func (s *TransferStore) ReleaseTokens(tokenID string, amount *big.Int) error {
	cur := s.EscrowBalance(tokenID)
	next := new(big.Int).Sub(cur, amount)
	if next.Sign() < 0 {
		return fmt.Errorf("escrow underflow for %s", tokenID)
	}
	return s.kv.Set(escrowKey(tokenID), []byte(next.String()))
}

// EscrowBalance returns the amount of tokenID currently held in escrow.
func (s *TransferStore) EscrowBalance(tokenID string) *big.Int {
	raw, err := s.kv.Get(escrowKey(tokenID))
	if err != nil {
		return big.NewInt(0)
	}
	n, ok := new(big.Int).SetString(string(raw), 10)
	if !ok {
		return big.NewInt(0)
	}
	return n
}
