// Package relayer drives pending transfers through the locker's lifecycle:
// it watches for newly initiated transfers, requests destination-chain
// signatures, submits finalisation proofs, and retries failed submissions
// with exponential backoff. It owns no chain-specific knowledge itself —
// that lives behind chainiface.Prover/Signer and the indexer package — so
// the orchestrator loop here is chain-agnostic.
package relayer

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/omni-labs/bridge/core"
	"github.com/omni-labs/bridge/internal/chainiface"
	"github.com/omni-labs/bridge/internal/indexer"
)

// Orchestrator routes indexer events and relayer requests to the locker's
// operations, retrying fin_transfer submissions under a backoff policy. It
// holds no checkpoint of its own; resuming after a restart relies on the
// indexer's Checkpoints.
type Orchestrator struct {
	Locker *core.Locker
	Prover chainiface.Prover
	Signer chainiface.Signer
	Log    *logrus.Logger

	// Relayer is this orchestrator's own identity, used as the default fee
	// recipient on a submitted fin_transfer and as the funding address for
	// FastPath's pre-funding.
	Relayer core.OmniAddress

	// Nonces allocates destination-chain nonces in RequestSignature so
	// a relayer can pipeline several in-flight signature requests to the
	// same destination chain without waiting for each to confirm first. Nil
	// disables nonce tracking; RequestSignature then reports whatever nonce
	// the pending transfer was already assigned at InitTransfer time.
	Nonces *NonceManager

	// Fees screens a transfer's offered fee before FastPath commits capital
	// to pre-funding it. Nil disables fast-path consideration entirely.
	Fees FeeOracle

	// FastPath pre-funds pending transfers out of Relayer's own balance when
	// Fees clears the offered fee, reimbursed later through the slow path.
	FastPath *FastPathWorker

	// RetryPolicy builds a fresh backoff for each submission attempt; tests
	// substitute backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 0) to avoid
	// sleeping in CI.
	RetryPolicy func() backoff.BackOff
}

// NewOrchestrator wires an Orchestrator with the teacher's default
// exponential-backoff policy: up to 30s between attempts, giving up after
// five minutes of continuous failure so a stuck chain doesn't wedge the
// whole worker pool forever.
func NewOrchestrator(l *core.Locker, prover chainiface.Prover, signer chainiface.Signer, log *logrus.Logger) *Orchestrator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Orchestrator{
		Locker: l,
		Prover: prover,
		Signer: signer,
		Log:    log,
		RetryPolicy: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 30 * time.Second
			b.MaxElapsedTime = 5 * time.Minute
			return b
		},
	}
}

// SubmitFinTransfer verifies rawProof with the configured prover and drives
// it through Locker.FinTransfer, retrying the whole verify+apply step under
// the orchestrator's backoff policy since both legs can fail on a flaky RPC.
// predecessor is the caller this submission is made as, the default fee
// recipient when no fast-transfer record substitutes a relayer instead.
func (o *Orchestrator) SubmitFinTransfer(ctx context.Context, chain core.ChainKind, rawProof []byte, predecessor core.OmniAddress) (*core.FinTransferOutcome, error) {
	var outcome *core.FinTransferOutcome

	// correlationID ties together every retried attempt and the notify log
	// lines for this submission, since a single fin_transfer can span
	// several minutes of backoff across a noisy RPC endpoint.
	correlationID := uuid.New().String()

	op := func() error {
		result, err := o.Prover.VerifyFinTransfer(ctx, chain, rawProof)
		if err != nil {
			return err
		}
		outcome, err = o.Locker.FinTransfer(core.FinTransferInput{
			OriginChain:      result.OriginChain,
			TransferID:       result.TransferID,
			Token:            result.Token,
			Sender:           result.Sender,
			Recipient:        result.Recipient,
			Amount:           result.Amount,
			Fee:              result.Fee,
			Msg:              result.Msg,
			DestinationNonce: result.DestinationNonce,
			Emitter:          result.EmitterAddress,
		}, predecessor)
		return err
	}

	notify := func(err error, wait time.Duration) {
		o.Log.WithFields(logrus.Fields{"chain": chain, "retry_in": wait, "correlation_id": correlationID}).Warnf("fin_transfer submission failed: %v", err)
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(o.RetryPolicy(), ctx), notify); err != nil {
		return nil, err
	}
	o.Log.WithFields(logrus.Fields{"chain": chain, "correlation_id": correlationID}).Info("fin_transfer submitted")
	return outcome, nil
}

// SubmitDeployToken verifies a LogMetadata/DeployToken proof and drives it
// through Locker.DeployToken, returning the tokenID the deployment was
// bound under.
func (o *Orchestrator) SubmitDeployToken(ctx context.Context, chain core.ChainKind, rawProof []byte) (string, error) {
	result, err := o.Prover.VerifyDeployToken(ctx, chain, rawProof)
	if err != nil {
		return "", err
	}
	return o.Locker.DeployToken(chain, result.EmitterAddress, result.TokenAddress, result.Decimals)
}

// RequestSignature asks Signer for a destination-chain signature over a
// pending transfer's payload, the step a relayer performs before it can
// submit the release transaction on the destination chain. When Nonces is
// configured it allocates a fresh one for destChain, letting several
// in-flight signature requests to the same chain pipeline instead of
// serializing on confirmation.
func (o *Orchestrator) RequestSignature(ctx context.Context, id core.TransferId, destChain core.ChainKind, feeRecipient *string) ([]byte, uint64, error) {
	var assignedNonce uint64
	if o.Nonces == nil {
		msg, err := o.Locker.GetTransferMessage(id)
		if err != nil {
			return nil, 0, err
		}
		assignedNonce = msg.DestinationNonce
	}
	payload, err := o.Locker.SignTransfer(id, feeRecipient)
	if err != nil {
		return nil, 0, err
	}
	sig, err := o.Signer.Sign(ctx, payload)
	if err != nil {
		return nil, 0, err
	}
	nonce := assignedNonce
	if o.Nonces != nil {
		nonce = o.Nonces.Next(destChain)
	}
	return sig, nonce, nil
}

// ConsiderFastPath delegates to FastPath.Consider, reporting ok=false
// without error when fast-path funding is not configured on this
// orchestrator at all.
func (o *Orchestrator) ConsiderFastPath(id core.TransferId) (core.FastTransferId, bool, error) {
	if o.FastPath == nil {
		return core.FastTransferId{}, false, nil
	}
	return o.FastPath.Consider(id)
}

// Dispatch routes one indexed chain event to the orchestrator step that
// handles its kind. EventSignRequest has no proof to verify — signature
// requests are driven by Locker state directly through RequestSignature —
// so it is merely logged and acknowledged here rather than misrouted to a
// proof-verification path that could never succeed for it.
func (o *Orchestrator) Dispatch(ctx context.Context, ev indexer.Event) error {
	switch ev.Kind {
	case indexer.EventFinTransfer:
		_, err := o.SubmitFinTransfer(ctx, ev.Chain, ev.RawData, o.Relayer)
		return err
	case indexer.EventDeployToken:
		_, err := o.SubmitDeployToken(ctx, ev.Chain, ev.RawData)
		return err
	case indexer.EventInitTransfer, indexer.EventSignRequest:
		o.Log.WithFields(logrus.Fields{"chain": ev.Chain, "id": ev.ID, "kind": ev.Kind}).Debug("event observed, no proof-driven action to dispatch")
		return nil
	default:
		return fmt.Errorf("unknown event kind %d for %s", ev.Kind, ev.ID)
	}
}
