// Package indexer tails each bridged chain for bridge-relevant events
// (outgoing locks/burns on foreign chains, incoming releases) and feeds
// them to the relayer orchestrator through a bounded queue, deduplicating
// by event id so a reorg-induced replay or an indexer restart never
// double-submits the same proof.
package indexer

import (
	"context"
	"strconv"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/omni-labs/bridge/core"
)

// Event is a decoded bridge-relevant occurrence on a watched chain, queued
// for the relayer to act on.
type Event struct {
	Chain   core.ChainKind
	ID      string // chain-specific: tx hash for EVM, "txid@vout" for UTXO chains
	Kind    EventKind
	RawData []byte
}

type EventKind uint8

const (
	EventInitTransfer EventKind = iota
	EventSignRequest
	EventFinTransfer
	EventDeployToken
)

// Queue is a bounded, deduplicating event channel shared by every chain
// tailer and drained by the relayer orchestrator.
type Queue struct {
	ch    chan Event
	seen  *lru.Cache[string, struct{}]
	mu    sync.Mutex
}

// NewQueue builds a Queue with capacity buffered events and a dedup window
// of dedupSize recently-seen event ids, bounding memory on long-running deployments.
func NewQueue(capacity, dedupSize int) (*Queue, error) {
	seen, err := lru.New[string, struct{}](dedupSize)
	if err != nil {
		return nil, err
	}
	return &Queue{ch: make(chan Event, capacity), seen: seen}, nil
}

// Push enqueues an event unless its id was already seen, returning false
// when the event was a duplicate and thus dropped.
func (q *Queue) Push(ctx context.Context, ev Event) bool {
	q.mu.Lock()
	if _, dup := q.seen.Get(ev.ID); dup {
		q.mu.Unlock()
		return false
	}
	q.seen.Add(ev.ID, struct{}{})
	q.mu.Unlock()

	select {
	case q.ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// Events exposes the receive side of the queue to the relayer orchestrator.
func (q *Queue) Events() <-chan Event { return q.ch }

// Checkpoints records, per chain, the block/slot/height to resume from (the
// first one not yet processed) so a restarted indexer resumes tailing where
// it left off instead of rescanning from genesis.
type Checkpoints struct {
	kv core.KVStore
}

func NewCheckpoints(kv core.KVStore) *Checkpoints {
	return &Checkpoints{kv: kv}
}

func checkpointKey(chain core.ChainKind) []byte {
	return []byte("checkpoint:" + chain.String())
}

// Save persists height as the next block to process for chain.
func (c *Checkpoints) Save(chain core.ChainKind, height uint64) error {
	return c.kv.Set(checkpointKey(chain), []byte(strconv.FormatUint(height, 10)))
}

// Load returns the last saved height for chain, or 0 if none is recorded.
func (c *Checkpoints) Load(chain core.ChainKind) uint64 {
	raw, err := c.kv.Get(checkpointKey(chain))
	if err != nil {
		return 0
	}
	v, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
