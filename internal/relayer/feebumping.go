package relayer

import (
	"context"
	"math/big"
	"time"

	"github.com/sirupsen/logrus"
)

// PendingSubmission tracks an EVM transaction this relayer broadcast but has
// not yet seen confirmed, so FeeBumper can detect it stalling in the
// mempool and resubmit at a higher gas price under the same nonce.
type PendingSubmission struct {
	Nonce       uint64
	TxHash      string
	GasFeeCap   *big.Int
	GasTipCap   *big.Int
	SubmittedAt time.Time
}

// EVMBroadcaster resubmits a transaction at a bumped fee, implemented by
// whichever EVM client package wires into the relayer at startup.
type EVMBroadcaster interface {
	Resubmit(ctx context.Context, nonce uint64, gasFeeCap, gasTipCap *big.Int) (txHash string, err error)
}

// FeeBumper replaces stalled EVM submissions with a higher-fee transaction
// carrying the same nonce, a simplified replace-by-fee strategy for the home
// relayer's own outbound transactions on EVM destination chains.
type FeeBumper struct {
	Broadcaster EVMBroadcaster
	Log         *logrus.Logger

	// Stale is how long a submission may sit unconfirmed before it is
	// considered stuck and eligible for a fee bump.
	Stale time.Duration
	// BumpNumerator/BumpDenominator scale both fee caps, e.g. 12/10 for a 20% bump.
	BumpNumerator   int64
	BumpDenominator int64
}

// NewFeeBumper returns a FeeBumper configured with a 2-minute staleness
// window and a 20% fee bump per retry, values chosen to match typical EVM
// block times without resubmitting so often it floods the mempool.
func NewFeeBumper(b EVMBroadcaster, log *logrus.Logger) *FeeBumper {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &FeeBumper{Broadcaster: b, Log: log, Stale: 2 * time.Minute, BumpNumerator: 12, BumpDenominator: 10}
}

// MaybeBump resubmits sub at a bumped fee if it has been pending longer
// than Stale, returning the new submission on success or the original one
// unchanged if it is still fresh.
func (f *FeeBumper) MaybeBump(ctx context.Context, sub PendingSubmission) (PendingSubmission, error) {
	if time.Since(sub.SubmittedAt) < f.Stale {
		return sub, nil
	}

	bump := func(v *big.Int) *big.Int {
		return new(big.Int).Div(new(big.Int).Mul(v, big.NewInt(f.BumpNumerator)), big.NewInt(f.BumpDenominator))
	}
	newFeeCap, newTipCap := bump(sub.GasFeeCap), bump(sub.GasTipCap)

	txHash, err := f.Broadcaster.Resubmit(ctx, sub.Nonce, newFeeCap, newTipCap)
	if err != nil {
		return sub, err
	}
	f.Log.WithFields(logrus.Fields{"nonce": sub.Nonce, "old_tx": sub.TxHash, "new_tx": txHash}).Info("bumped stalled submission fee")

	return PendingSubmission{Nonce: sub.Nonce, TxHash: txHash, GasFeeCap: newFeeCap, GasTipCap: newTipCap, SubmittedAt: time.Now()}, nil
}
