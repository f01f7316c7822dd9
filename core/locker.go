package core

import (
	"fmt"
	"math/big"
	"sync"

	"go.uber.org/zap"
)

// Locker is the bridge's state machine: it owns the token registry, the
// transfer tables, and the storage accounting ledger, and exposes the
// public operations a relayer or an end user drives a transfer through. All
// mutating operations are serialized by a single mutex; the locker is a
// correctness-first in-process authority, not a throughput-optimized one —
// the relayer orchestrator is where concurrency happens, fanning requests
// out to many chains against this single synchronized source of truth.
type Locker struct {
	mu sync.Mutex

	Registry *TokenRegistry
	Store    *TransferStore
	Storage  *StorageAccounting

	factories          map[ChainKind]OmniAddress
	provers            map[ChainKind]string
	tokenDeployers     map[ChainKind]string
	utxoConnectors     map[ChainKind]OmniAddress
	utxoNativeAsset    map[ChainKind]string
	deployedTokens     map[string]bool
	originNonceCounter uint64

	log *zap.SugaredLogger
}

// NewLocker wires a Locker on top of a KVStore-backed TransferStore. Pass a
// *InMemoryStore for tests; a durable KVStore in production.
func NewLocker(kv KVStore, log *zap.SugaredLogger) *Locker {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Locker{
		Registry:        NewTokenRegistry(),
		Store:           NewTransferStore(kv),
		Storage:         NewStorageAccounting(),
		factories:       make(map[ChainKind]OmniAddress),
		provers:         make(map[ChainKind]string),
		tokenDeployers:  make(map[ChainKind]string),
		utxoConnectors:  make(map[ChainKind]OmniAddress),
		utxoNativeAsset: make(map[ChainKind]string),
		deployedTokens:  make(map[string]bool),
		log:             log,
	}
}

// AddFactory registers the wrapped-token factory contract address on a
// destination chain. Only the DAO role may call this in production; the
// locker itself does not enforce roles, matching the narrower scope
// delegated to it versus the admin surface that checks caller identity.
func (l *Locker) AddFactory(chain ChainKind, addr OmniAddress) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.factories[chain] = addr
	l.log.Infow("factory registered", "chain", chain, "address", addr)
}

// Factory returns the registered factory address for chain, if any.
func (l *Locker) Factory(chain ChainKind) (OmniAddress, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	addr, ok := l.factories[chain]
	return addr, ok
}

// AddProver registers the prover account/contract responsible for
// verifying proofs originating from chain.
func (l *Locker) AddProver(chain ChainKind, proverID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.provers[chain] = proverID
}

// RemoveProver deregisters chain's prover.
func (l *Locker) RemoveProver(chain ChainKind) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.provers, chain)
}

// AddTokenDeployer registers the account permitted to deploy wrapped tokens on chain.
func (l *Locker) AddTokenDeployer(chain ChainKind, accountID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokenDeployers[chain] = accountID
}

// AddUTXOConnector registers the single sender address permitted to submit
// UtxoFinTransfer proofs for chain, mirroring the original contract's
// per-chain connector account that alone may relay UTXO-chain deposits.
func (l *Locker) AddUTXOConnector(chain ChainKind, connector OmniAddress) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.utxoConnectors[chain] = connector
}

// AddUTXONativeAsset records which home tokenID represents chain's native
// coin, the only token UtxoFinTransfer/FinTransfer may release to a
// UTXO-chain recipient.
func (l *Locker) AddUTXONativeAsset(chain ChainKind, tokenID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.utxoNativeAsset[chain] = tokenID
}

// InitTransfer starts a transfer out of the home chain. It reserves storage
// from storageOwner (a real account, or a VirtualAccountID paid for by
// whichever relayer wants the transfer to proceed), locks the sent amount
// into escrow if the token is not locally wrapped, and assigns the next
// origin nonce.
func (l *Locker) InitTransfer(sender OmniAddress, token OmniAddress, amount *big.Int, recipient OmniAddress, fee Fee, msg, storageOwner string) (TransferId, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if amount == nil || amount.Sign() <= 0 {
		return TransferId{}, bridgeErr(ErrZeroAmount, "")
	}
	if recipient.Chain.IsHome() {
		return TransferId{}, bridgeErr(ErrRecipientIsHome, "")
	}
	if fee.Fee != nil && fee.Fee.Cmp(amount) >= 0 {
		return TransferId{}, bridgeErr(ErrInvalidFee, fmt.Sprintf("fee %s must be less than amount %s", fee.Fee, amount))
	}

	tokenID, err := l.Registry.TokenID(token)
	if err != nil {
		return TransferId{}, err
	}

	destNonce, err := l.Store.NextDestinationNonce(recipient.Chain)
	if err != nil {
		return TransferId{}, err
	}

	l.originNonceCounter++
	msgRecord := TransferMessage{
		OriginNonce:      l.originNonceCounter,
		Token:            token,
		Amount:           amount,
		Recipient:        recipient,
		Fee:              fee,
		Sender:           sender,
		Msg:              msg,
		DestinationNonce: destNonce,
	}

	if storageOwner == "" {
		storageOwner = VirtualAccountID(msgRecord)
	}
	required := big.NewInt(StorageCostPerTransfer)
	if !l.Storage.TryReserve(storageOwner, required) {
		return TransferId{}, bridgeErr(ErrInsufficientStorage, fmt.Sprintf("account %s needs %s", storageOwner, required))
	}

	if !l.Registry.IsDeployed(tokenID) {
		if err := l.Store.LockTokens(tokenID, amount); err != nil {
			l.Storage.Deposit(storageOwner, required) // refund the reservation
			return TransferId{}, err
		}
	}

	if err := l.Store.PutPending(msgRecord, storageOwner); err != nil {
		return TransferId{}, err
	}

	l.log.Infow("transfer initiated", "id", msgRecord.TransferId(), "sender", sender, "recipient", recipient, "amount", amount)
	return msgRecord.TransferId(), nil
}

// SignTransfer returns the keccak256 digest a destination-chain signer
// (e.g. an MPC service) must sign to authorize release of a pending
// transfer, built from the destination chain's own token address and
// decimal precision rather than the pending record's home-chain fields.
// If the transfer carries no fee at all it is removed from the pending
// table here, since nothing will ever call ClaimFee for it. A non-nil
// feeRecipient is bound into the signed payload; nil leaves the payload's
// fee recipient unset.
func (l *Locker) SignTransfer(id TransferId, feeRecipient *string) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg, _, err := l.Store.GetPending(id)
	if err != nil {
		return nil, err
	}

	tokenID, err := l.Registry.TokenID(msg.Token)
	if err != nil {
		return nil, err
	}
	destTokenAddr, ok := l.Registry.TokenAddress(msg.Recipient.Chain, tokenID)
	if !ok {
		return nil, bridgeErr(ErrTokenNotRegistered, fmt.Sprintf("%s not bound on %s", tokenID, msg.Recipient.Chain))
	}
	destDecimals, ok := l.Registry.Decimals(destTokenAddr)
	if !ok {
		return nil, bridgeErr(ErrDecimalsNotFound, destTokenAddr.String())
	}
	originDecimals, ok := l.Registry.OriginDecimals(destTokenAddr)
	if !ok {
		return nil, bridgeErr(ErrDecimalsNotFound, destTokenAddr.String())
	}

	feeAmt := big.NewInt(0)
	if msg.Fee.Fee != nil {
		feeAmt = msg.Fee.Fee
	}
	net := new(big.Int).Sub(msg.Amount, feeAmt)
	amountToTransfer := Normalize(net, originDecimals, destDecimals)
	if amountToTransfer.Sign() <= 0 {
		return nil, bridgeErr(ErrZeroAmount, "amount after fee and normalization is not positive")
	}

	payload := TransferMessagePayload{
		Prefix:           PayloadTypeTransferMessage,
		DestinationNonce: msg.DestinationNonce,
		TransferID:       id,
		TokenAddress:     destTokenAddr,
		Amount:           amountToTransfer,
		Recipient:        msg.Recipient,
		FeeRecipient:     feeRecipient,
		Message:          []byte(msg.Msg),
	}
	hash := payload.Hash()

	if msg.Fee.IsZero() {
		if err := l.Store.RemovePending(id); err != nil {
			return nil, err
		}
	}
	return hash[:], nil
}

// UpdateTransferFee lets the original sender raise a pending transfer's
// token fee (to incentivize a stalled relayer). The new token fee must be
// strictly higher than the current one and may never reach or exceed the
// transfer's amount, the same bound InitTransfer enforces at creation. A
// non-nil nativeFeePaid must equal the transfer's current native fee, or
// the call fails with ErrNativeFeeMismatch; this method never changes the
// native fee.
func (l *Locker) UpdateTransferFee(id TransferId, caller OmniAddress, newTokenFee *big.Int, nativeFeePaid *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg, owner, err := l.Store.GetPending(id)
	if err != nil {
		return err
	}
	if !msg.Sender.Equal(caller) {
		return bridgeErr(ErrOnlySenderCanUpdateFee, "")
	}
	if newTokenFee != nil {
		if msg.Fee.Fee != nil && newTokenFee.Cmp(msg.Fee.Fee) <= 0 {
			return bridgeErr(ErrFeeMustIncrease, "")
		}
		if newTokenFee.Cmp(msg.Amount) >= 0 {
			return bridgeErr(ErrInvalidFee, fmt.Sprintf("fee %s must be less than amount %s", newTokenFee, msg.Amount))
		}
		msg.Fee.Fee = newTokenFee
	}
	if nativeFeePaid != nil {
		if msg.Fee.NativeFee == nil || nativeFeePaid.Cmp(msg.Fee.NativeFee) != 0 {
			return bridgeErr(ErrNativeFeeMismatch, "")
		}
	}
	return l.Store.PutPending(msg, owner)
}

// FinTransferInput is the decoded, already proof-verified content of an
// incoming transfer, the Go shape of what process_fin_transfer reads off
// its verified TransferMessagePayload before branching on destination chain.
type FinTransferInput struct {
	OriginChain      ChainKind
	TransferID       TransferId
	Token            OmniAddress
	Sender           OmniAddress
	Recipient        OmniAddress
	Amount           *big.Int
	Fee              Fee
	Msg              string
	DestinationNonce uint64
	Emitter          OmniAddress
}

// FinTransferOutcome reports who must be paid what once FinTransfer
// succeeds; the locker only updates escrow/finalisation bookkeeping, the
// caller is responsible for the actual token movement this describes.
type FinTransferOutcome struct {
	Recipient         OmniAddress
	FeeRecipient      OmniAddress
	AmountPaid        *big.Int
	FeePaid           *big.Int
	NativeFeePaid     *big.Int
	Msg               string
	RelayedTransferID *TransferId
}

// FinTransfer finalises an incoming transfer whose origin-chain proof has
// already been verified by a chainiface.Prover. It checks the emitter
// against the registered factory, guards against double settlement, and
// branches on the recipient's chain exactly the way the original contract's
// fin_transfer callback does: a home-bound transfer pays out (and collects
// its fee) immediately; anything else is either reimbursed to a relayer
// that already fast-funded it, or re-queued as a pending transfer awaiting
// its own destination-chain signature. predecessor is the caller submitting
// this finalisation, the default fee recipient when no fast-transfer record
// substitutes a relayer instead.
func (l *Locker) FinTransfer(in FinTransferInput, predecessor OmniAddress) (*FinTransferOutcome, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Store.IsFinalised(in.TransferID) {
		return nil, bridgeErr(ErrTransferAlreadyFinalised, "")
	}
	known, ok := l.factories[in.OriginChain]
	if !ok || !known.Equal(in.Emitter) {
		return nil, bridgeErr(ErrUnknownFactory, fmt.Sprintf("chain %s", in.OriginChain))
	}

	tokenID, err := l.Registry.TokenID(in.Token)
	if err != nil {
		return nil, err
	}

	if in.Recipient.Chain.IsHome() {
		return l.finTransferToHome(in, tokenID, predecessor)
	}
	return l.finTransferToOtherChain(in, tokenID, predecessor)
}

// fastTransferIDForInput derives the content-addressed FastTransferId a
// relayer would have produced had it fast-funded this exact incoming
// transfer ahead of proof verification, so FinTransfer can detect and
// reconcile that pre-funding instead of double-paying the recipient.
func fastTransferIDForInput(in FinTransferInput, tokenID string) FastTransferId {
	ft := FastTransfer{
		TransferId: in.TransferID,
		Token:      OmniAddress{Chain: ChainHome, Text: tokenID},
		Amount:     in.Amount,
		Fee:        in.Fee,
		Recipient:  in.Recipient,
		Msg:        in.Msg,
	}
	return ft.Id()
}

// finTransferToHome is process_fin_transfer_to_near: it resolves the
// default payout parties (recipient and fee_recipient := predecessor),
// substitutes the fast-funding relayer if this transfer was pre-funded,
// storage-checks every party that is about to receive a leg of the
// payout, and releases escrow for the combined amount+fee in one step.
func (l *Locker) finTransferToHome(in FinTransferInput, tokenID string, predecessor OmniAddress) (*FinTransferOutcome, error) {
	decimals, ok := l.Registry.Decimals(in.Token)
	if !ok {
		return nil, bridgeErr(ErrDecimalsNotFound, in.Token.String())
	}

	recipient := in.Recipient
	msg := in.Msg
	feeRecipient := predecessor
	fastID := fastTransferIDForInput(in, tokenID)
	fastStatus, hasFast := l.Store.GetFastTransfer(fastID)
	if hasFast && !fastStatus.Finalised {
		recipient = fastStatus.Relayer
		msg = ""
		feeRecipient = fastStatus.Relayer
	}

	feeAmt := big.NewInt(0)
	if in.Fee.Fee != nil {
		feeAmt = in.Fee.Fee
	}
	nativeFeeAmt := big.NewInt(0)
	if in.Fee.NativeFee != nil {
		nativeFeeAmt = in.Fee.NativeFee
	}
	amountToTransfer := new(big.Int).Sub(in.Amount, feeAmt)
	if amountToTransfer.Sign() < 0 {
		amountToTransfer = big.NewInt(0)
	}

	check := func() error {
		required := big.NewInt(StorageCostPerTransfer)
		if !CheckStorageBalanceResult(l.Storage.BalanceOf(recipient.String()), required) {
			return bridgeErr(ErrInsufficientStorage, fmt.Sprintf("recipient %s", recipient))
		}
		if feeAmt.Sign() > 0 && !CheckStorageBalanceResult(l.Storage.BalanceOf(feeRecipient.String()), required) {
			return bridgeErr(ErrInsufficientStorage, fmt.Sprintf("fee recipient %s", feeRecipient))
		}
		if nativeFeeAmt.Sign() > 0 && !CheckStorageBalanceResult(l.Storage.BalanceOf(feeRecipient.String()), required) {
			return bridgeErr(ErrInsufficientStorage, fmt.Sprintf("fee recipient %s (native leg)", feeRecipient))
		}
		if _, err := Denormalize(in.Amount, decimals, decimals, nil); err != nil {
			return err
		}
		return nil
	}

	lc := BeginX("fin_transfer.to_home", check)
	err := lc.ResolveX(func() error {
		if !l.Registry.IsDeployed(tokenID) {
			if err := l.Store.ReleaseTokens(tokenID, in.Amount); err != nil {
				return err
			}
		}
		if hasFast && !fastStatus.Finalised {
			if err := l.Store.MarkFastTransferFinalised(fastID); err != nil {
				return err
			}
		}
		return l.Store.MarkFinalised(in.TransferID)
	})
	if err != nil {
		return nil, err
	}

	l.log.Infow("transfer finalised to home", "id", in.TransferID, "recipient", recipient, "amount", amountToTransfer, "fee", feeAmt)
	return &FinTransferOutcome{
		Recipient:     recipient,
		FeeRecipient:  feeRecipient,
		AmountPaid:    amountToTransfer,
		FeePaid:       feeAmt,
		NativeFeePaid: nativeFeeAmt,
		Msg:           msg,
	}, nil
}

// finTransferToOtherChain is process_fin_transfer_to_other_chain: a
// transfer whose recipient lives on neither home nor the chain it was
// proven from must either reimburse a relayer that already fast-funded it
// (paid directly, no new pending record), or be re-queued as a pending
// transfer under the submitting relayer's ownership so it can later go
// through SignTransfer/ClaimFee exactly like a home-originated one — using
// its own already-assigned nonce, never a freshly allocated one.
func (l *Locker) finTransferToOtherChain(in FinTransferInput, tokenID string, predecessor OmniAddress) (*FinTransferOutcome, error) {
	if in.Recipient.Chain.IsUTXO() {
		native, ok := l.utxoNativeAsset[in.Recipient.Chain]
		if !ok || native != tokenID {
			return nil, bridgeErr(ErrNotUTXONativeAsset, fmt.Sprintf("chain %s", in.Recipient.Chain))
		}
	}

	feeAmt := big.NewInt(0)
	if in.Fee.Fee != nil {
		feeAmt = in.Fee.Fee
	}

	fastID := fastTransferIDForInput(in, tokenID)
	if status, ok := l.Store.GetFastTransfer(fastID); ok && !status.Finalised {
		amountToRelayer := new(big.Int).Sub(in.Amount, feeAmt)
		if amountToRelayer.Sign() < 0 {
			amountToRelayer = big.NewInt(0)
		}
		if err := l.Store.MarkFastTransferFinalised(fastID); err != nil {
			return nil, err
		}
		if err := l.Store.MarkFinalised(in.TransferID); err != nil {
			return nil, err
		}
		l.log.Infow("transfer reimbursed to fast-funding relayer", "id", in.TransferID, "relayer", status.Relayer)
		return &FinTransferOutcome{
			Recipient:     status.Relayer,
			FeeRecipient:  status.Relayer,
			AmountPaid:    amountToRelayer,
			FeePaid:       big.NewInt(0),
			NativeFeePaid: big.NewInt(0),
		}, nil
	}

	relayMsg := TransferMessage{
		OriginNonce:      in.TransferID.OriginNonce,
		Token:            in.Token,
		Amount:           in.Amount,
		Recipient:        in.Recipient,
		Fee:              in.Fee,
		Sender:           in.Sender,
		Msg:              in.Msg,
		DestinationNonce: in.DestinationNonce,
	}
	if err := l.Store.PutPending(relayMsg, predecessor.String()); err != nil {
		return nil, err
	}
	if err := l.Store.MarkFinalised(in.TransferID); err != nil {
		return nil, err
	}

	l.log.Infow("transfer queued for relay to destination chain", "id", in.TransferID, "destination", in.Recipient.Chain)
	return &FinTransferOutcome{
		Recipient:    in.Recipient,
		FeeRecipient: predecessor,
		Msg:          in.Msg,
	}, nil
}

// UtxoFinTransfer finalises an incoming transfer from a UTXO-settled chain,
// identified by UtxoId rather than a nonce. Only the chain's registered
// connector account may submit these; there is no proof-and-factory check
// here since UTXO chains have no factory contract for the bridge to emit from.
func (l *Locker) UtxoFinTransfer(originChain ChainKind, sender OmniAddress, utxo UtxoId, amount *big.Int, destTokenAddr OmniAddress) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	connector, ok := l.utxoConnectors[originChain]
	if !ok || !sender.Equal(connector) {
		return nil, bridgeErr(ErrSenderIsNotConnector, fmt.Sprintf("chain %s", originChain))
	}

	id := UnifiedTransferId{OriginChain: originChain, Kind: TransferIdUtxo, Utxo: utxo}
	if l.Store.IsFinalisedUTXO(id) {
		return nil, bridgeErr(ErrTransferAlreadyFinalised, "")
	}

	tokenID, err := l.Registry.TokenID(destTokenAddr)
	if err != nil {
		return nil, err
	}
	if !l.Registry.IsDeployed(tokenID) {
		if err := l.Store.ReleaseTokens(tokenID, amount); err != nil {
			return nil, err
		}
	}
	if err := l.Store.MarkFinalisedUTXO(id); err != nil {
		return nil, err
	}
	l.log.Infow("utxo transfer finalised", "id", id, "amount", amount)
	return amount, nil
}

// ClaimFee finalises the fee leg of a transfer that has since been signed
// and released on its destination chain, reimbursing either the relayer
// that fast-funded it (if any) or the party that requested the fee. It
// removes the underlying pending transfer, since nothing further can act on it.
func (l *Locker) ClaimFee(id TransferId, caller OmniAddress, feeRecipient OmniAddress, sentAmount *big.Int) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg, _, err := l.Store.GetPending(id)
	if err != nil {
		return nil, err
	}
	if !feeRecipient.Equal(caller) {
		return nil, bridgeErr(ErrOnlyFeeRecipientCanClaim, "")
	}

	if msg.OriginTransferId != nil {
		tokenID, _ := l.Registry.TokenID(msg.Token)
		ft := FastTransferFromMessage(msg, OmniAddress{Chain: ChainHome, Text: tokenID})
		ft.TransferId = *msg.OriginTransferId
		if status, ok := l.Store.GetFastTransfer(ft.Id()); ok {
			if !status.Finalised {
				return nil, bridgeErr(ErrFastTransferNotFinalised, "")
			}
			_ = l.Store.RemoveFastTransfer(ft.Id())
		}
	}

	fee := new(big.Int).Sub(msg.Amount, sentAmount)
	if fee.Sign() < 0 {
		fee = big.NewInt(0)
	}
	if err := l.Store.RemovePending(id); err != nil {
		return nil, err
	}
	l.log.Infow("fee claimed", "id", id, "recipient", feeRecipient, "fee", fee)
	return fee, nil
}

// FastFinTransfer lets a relayer pre-fund a pending transfer's payout ahead
// of the slower proof-and-finalise path, reimbursed later through ClaimFee
// (home-bound transfers) or through a freshly queued reimbursement leg
// (everything else). sentAmount must cover the message's amount plus fee
// exactly, or the relayer would be funding a gift to the recipient out of
// its own pocket. The second return value is the id of that reimbursement
// leg, non-nil only when the underlying transfer is not home-bound.
func (l *Locker) FastFinTransfer(id TransferId, relayer OmniAddress, sentAmount *big.Int) (FastTransferId, *TransferId, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg, owner, err := l.Store.GetPending(id)
	if err != nil {
		return FastTransferId{}, nil, err
	}
	if l.Store.IsFinalised(id) {
		return FastTransferId{}, nil, bridgeErr(ErrTransferAlreadyFinalised, "")
	}

	want := new(big.Int).Add(msg.Amount, msg.Fee.Fee)
	if sentAmount.Cmp(want) != 0 {
		return FastTransferId{}, nil, bridgeErr(ErrSentAmountMismatch, fmt.Sprintf("sent %s, need %s", sentAmount, want))
	}

	tokenID, err := l.Registry.TokenID(msg.Token)
	if err != nil {
		return FastTransferId{}, nil, err
	}
	ft := FastTransferFromMessage(msg, OmniAddress{Chain: ChainHome, Text: tokenID})
	fid := ft.Id()
	if _, exists := l.Store.GetFastTransfer(fid); exists {
		return FastTransferId{}, nil, bridgeErr(ErrFastTransferExists, "")
	}
	if err := l.Store.PutFastTransfer(fid, FastTransferStatus{Relayer: relayer, Finalised: false}); err != nil {
		return FastTransferId{}, nil, err
	}

	if msg.DestinationChain().IsHome() {
		l.log.Infow("fast transfer funded to home", "id", fid, "relayer", relayer)
		return fid, nil, nil
	}

	destNonce, err := l.Store.NextDestinationNonce(msg.Recipient.Chain)
	if err != nil {
		return FastTransferId{}, nil, err
	}
	l.originNonceCounter++
	originalID := id
	reimbursement := new(big.Int).Sub(msg.Amount, msg.Fee.Fee)
	if reimbursement.Sign() < 0 {
		reimbursement = big.NewInt(0)
	}
	relayMsg := TransferMessage{
		OriginNonce:      l.originNonceCounter,
		Token:            msg.Token,
		Amount:           reimbursement,
		Recipient:        msg.Recipient,
		Fee:              Fee{Fee: big.NewInt(0), NativeFee: big.NewInt(0)},
		Sender:           relayer,
		Msg:              "",
		DestinationNonce: destNonce,
		OriginTransferId: &originalID,
	}
	if err := l.Store.PutPending(relayMsg, owner); err != nil {
		return FastTransferId{}, nil, err
	}
	relayedID := relayMsg.TransferId()
	l.log.Infow("fast transfer funded, queued reimbursement leg", "id", fid, "relayer", relayer, "relayed_transfer_id", relayedID)
	return fid, &relayedID, nil
}

// BindToken binds a verified chain-side token deployment to a home tokenID,
// which may carry different decimals from the origin token (unlike a first
// deploy_token_internal call, where both are necessarily equal).
func (l *Locker) BindToken(chain ChainKind, emitter OmniAddress, tokenID string, tokenAddr OmniAddress, decimals, originDecimals Decimals) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	known, ok := l.factories[chain]
	if !ok || !known.Equal(emitter) {
		return bridgeErr(ErrUnknownFactory, fmt.Sprintf("chain %s", chain))
	}
	return l.Registry.BindToken(tokenID, tokenAddr, decimals, originDecimals)
}

// deployTokenInternal is deploy_token_internal: it derives tokenID from
// tokenAddr's prefix and the chain's registered deployer account, rejects a
// token that has already been deployed once before, and binds it at equal
// decimals on both sides — the registry only ever needs differing decimals
// once a later BindToken call attaches a second chain to the same tokenID.
func (l *Locker) deployTokenInternal(chain ChainKind, tokenAddr OmniAddress, decimals Decimals) (string, error) {
	deployer, ok := l.tokenDeployers[chain]
	if !ok {
		return "", bridgeErr(ErrDeployerNotSet, fmt.Sprintf("chain %s", chain))
	}
	tokenID := fmt.Sprintf("%s.%s", tokenAddr.TokenPrefix(), deployer)
	if l.deployedTokens[tokenID] {
		return "", bridgeErr(ErrTokenAlreadyDeployed, tokenID)
	}
	if err := l.Registry.BindToken(tokenID, tokenAddr, decimals, decimals); err != nil {
		return "", err
	}
	l.deployedTokens[tokenID] = true
	l.log.Infow("token deployed", "token_id", tokenID, "chain", chain, "address", tokenAddr, "decimals", decimals)
	return tokenID, nil
}

// deployedTokenAccountID predicts deployTokenInternal's tokenID without
// deploying anything, letting a caller look up what a not-yet-seen token
// would be called once its DeployToken proof lands.
func (l *Locker) deployedTokenAccountID(chain ChainKind, tokenAddr OmniAddress) (string, error) {
	deployer, ok := l.tokenDeployers[chain]
	if !ok {
		return "", bridgeErr(ErrDeployerNotSet, fmt.Sprintf("chain %s", chain))
	}
	return fmt.Sprintf("%s.%s", tokenAddr.TokenPrefix(), deployer), nil
}

// DeployedTokenAccountID is the exported, locking form of deployedTokenAccountID.
func (l *Locker) DeployedTokenAccountID(chain ChainKind, tokenAddr OmniAddress) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.deployedTokenAccountID(chain, tokenAddr)
}

// DeployToken is deploy_token: it admits a LogMetadata proof's token only
// once the proof's emitter matches chain's registered factory, then runs
// the same deployTokenInternal path deploy_native_token uses.
func (l *Locker) DeployToken(chain ChainKind, emitter OmniAddress, tokenAddr OmniAddress, decimals Decimals) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	known, ok := l.factories[chain]
	if !ok || !known.Equal(emitter) {
		return "", bridgeErr(ErrUnknownFactory, fmt.Sprintf("chain %s", chain))
	}
	return l.deployTokenInternal(chain, tokenAddr, decimals)
}

// DeployNativeToken registers the home chain's wrapped mirror of chain's
// native coin, using the chain's zero-address placeholder as the token
// address deployTokenInternal derives a tokenID from. A native coin has no
// real home-side underlying balance to escrow, so it is always marked
// minted/burned locally, unlike a wrapped token deployed to a foreign chain.
func (l *Locker) DeployNativeToken(chain ChainKind, decimals Decimals) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	zero, err := ZeroAddress(chain)
	if err != nil {
		return "", err
	}
	tokenID, err := l.deployTokenInternal(chain, zero, decimals)
	if err != nil {
		return "", err
	}
	l.Registry.MarkDeployed(tokenID)
	return tokenID, nil
}

// DeployedTokenArg is one entry of a DAO-submitted batch registering tokens
// that were already deployed outside the normal proof-driven deploy_token
// flow, for migrating an existing deployment or bootstrapping a new chain
// without waiting on a confirmation proof per token.
type DeployedTokenArg struct {
	TokenID  string
	Address  OmniAddress
	Decimals Decimals
}

// AddDeployedTokens registers a batch of already-deployed wrapped tokens in
// one call, binding each at equal decimals and marking it deployed exactly
// as deployTokenInternal would, but skipping the factory/emitter check since
// the caller (gated by the admin surface, not the locker) is vouching for
// the binding directly rather than presenting a deploy proof. A bad entry
// aborts the whole batch rather than partially applying it, matching the
// all-or-nothing batches the admin surface submits this as.
func (l *Locker) AddDeployedTokens(tokens []DeployedTokenArg) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	seen := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		key := t.Address.String()
		if _, bound := l.Registry.Decimals(t.Address); bound || seen[key] {
			return fmt.Errorf("add_deployed_tokens %s: %w: %s", t.TokenID, ErrTokenAlreadyBound, key)
		}
		seen[key] = true
	}
	for _, t := range tokens {
		if err := l.Registry.BindToken(t.TokenID, t.Address, t.Decimals, t.Decimals); err != nil {
			return fmt.Errorf("add_deployed_tokens %s: %w", t.TokenID, err)
		}
		l.Registry.MarkDeployed(t.TokenID)
		l.deployedTokens[t.TokenID] = true
	}
	l.log.Infow("deployed tokens batch-registered", "count", len(tokens))
	return nil
}

// StorageDeposit credits account's storage balance by amount.
func (l *Locker) StorageDeposit(account string, amount *big.Int) {
	l.Storage.Deposit(account, amount)
}

// StorageWithdraw withdraws up to amount from account's storage balance.
func (l *Locker) StorageWithdraw(account string, amount *big.Int) *big.Int {
	return l.Storage.Withdraw(account, amount)
}

// StorageBalanceOf returns account's current storage balance.
func (l *Locker) StorageBalanceOf(account string) *big.Int {
	return l.Storage.BalanceOf(account)
}
