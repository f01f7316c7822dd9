package indexer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omni-labs/bridge/core"
	"github.com/omni-labs/bridge/internal/chainiface"
)

func TestQueueDeduplicatesByID(t *testing.T) {
	q, err := NewQueue(8, 8)
	require.NoError(t, err)
	ctx := context.Background()

	assert.True(t, q.Push(ctx, Event{Chain: core.ChainEthereum, ID: "0xabc"}))
	assert.False(t, q.Push(ctx, Event{Chain: core.ChainEthereum, ID: "0xabc"}), "duplicate id must be dropped")

	select {
	case ev := <-q.Events():
		assert.Equal(t, "0xabc", ev.ID)
	default:
		t.Fatal("expected the first push to be queued")
	}
}

func TestCheckpointsRoundTrip(t *testing.T) {
	cp := NewCheckpoints(core.NewInMemoryStore())
	assert.Equal(t, uint64(0), cp.Load(core.ChainEthereum))

	require.NoError(t, cp.Save(core.ChainEthereum, 12345))
	assert.Equal(t, uint64(12345), cp.Load(core.ChainEthereum))
}

type fakeRPC struct {
	head uint64
	logs []chainiface.RawLog
}

func (f *fakeRPC) LatestBlock(ctx context.Context) (uint64, error) { return f.head, nil }
func (f *fakeRPC) LogsInRange(ctx context.Context, from, to uint64) ([]chainiface.RawLog, error) {
	return f.logs, nil
}

func TestEVMTailerAdvancesCheckpoint(t *testing.T) {
	q, err := NewQueue(8, 8)
	require.NoError(t, err)
	cp := NewCheckpoints(core.NewInMemoryStore())

	rpc := &fakeRPC{head: 100, logs: []chainiface.RawLog{{TxHash: "0x1", Topics: []string{"FinTransfer"}}}}
	tailer := &EVMTailer{Chain: core.ChainEthereum, RPC: rpc, Queue: q, Checkpoints: cp, Confirmations: 5}
	tailer.Log = nil
	// Avoid logging through a nil logger: set a no-op one instead.
	tailer.Log = discardLogger()

	advanced, err := tailer.PollOnce(context.Background())
	require.NoError(t, err)
	assert.Positive(t, advanced)
	assert.Equal(t, uint64(96), cp.Load(core.ChainEthereum))
}
