package indexer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/omni-labs/bridge/core"
	"github.com/omni-labs/bridge/internal/chainiface"
)

// EVMTailer polls an EVM-family chain for new blocks and turns their logs
// into queued Events, advancing a checkpoint after each successful batch so
// a restart resumes from the last confirmed block rather than genesis.
type EVMTailer struct {
	Chain       core.ChainKind
	RPC         chainiface.ChainRPC
	Queue       *Queue
	Checkpoints *Checkpoints
	Log         *logrus.Logger

	// Confirmations is how many blocks to stay behind the chain head before
	// indexing a block, guarding against a shallow reorg invalidating an
	// event the locker has already acted on.
	Confirmations uint64
}

// PollOnce fetches and enqueues logs for every confirmed block since the
// last checkpoint, returning the number of blocks advanced.
func (t *EVMTailer) PollOnce(ctx context.Context) (uint64, error) {
	head, err := t.RPC.LatestBlock(ctx)
	if err != nil {
		return 0, fmt.Errorf("latest block for %s: %w", t.Chain, err)
	}
	if head < t.Confirmations {
		return 0, nil
	}
	safeHead := head - t.Confirmations

	from := t.Checkpoints.Load(t.Chain)
	if from == 0 {
		from = safeHead
	}
	if from > safeHead {
		return 0, nil
	}

	logs, err := t.RPC.LogsInRange(ctx, from, safeHead)
	if err != nil {
		return 0, fmt.Errorf("logs %s [%d,%d]: %w", t.Chain, from, safeHead, err)
	}

	for _, raw := range logs {
		ev := Event{
			Chain:   t.Chain,
			ID:      raw.TxHash,
			Kind:    classifyEVMLog(raw),
			RawData: raw.Data,
		}
		if !t.Queue.Push(ctx, ev) {
			t.Log.WithFields(logrus.Fields{"chain": t.Chain, "tx": raw.TxHash}).Debug("duplicate log dropped")
		}
	}

	if err := t.Checkpoints.Save(t.Chain, safeHead+1); err != nil {
		return 0, err
	}
	return safeHead + 1 - from, nil
}

// classifyEVMLog maps a raw factory contract log to an indexer event kind
// by its first topic. Only the literal topic strings "DeployToken" and
// "FinTransfer" are recognised; any other first topic, including a keccak
// event selector hash, and a log with no topics are classified as
// EventInitTransfer.
func classifyEVMLog(raw chainiface.RawLog) EventKind {
	if len(raw.Topics) == 0 {
		return EventInitTransfer
	}
	switch raw.Topics[0] {
	case "DeployToken":
		return EventDeployToken
	case "FinTransfer":
		return EventFinTransfer
	default:
		return EventInitTransfer
	}
}
