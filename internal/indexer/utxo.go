package indexer

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/omni-labs/bridge/core"
)

// UTXOBlock is the minimal shape a UTXO chain's block-fetch RPC must return
// for the tailer to find deposits to the locker's receiving address.
type UTXOBlock struct {
	Height uint64
	Txs    []UTXOTx
}

// UTXOTx is a single transaction's outputs relevant to deposit detection.
type UTXOTx struct {
	TxID    string
	Outputs []UTXOOutput
}

type UTXOOutput struct {
	Vout    uint32
	Address string
	Amount  int64 // satoshis
}

// UTXOBlockSource fetches one block at a time, implemented by a chain-specific RPC client.
type UTXOBlockSource interface {
	BlockAtHeight(ctx context.Context, height uint64) (UTXOBlock, error)
	BestHeight(ctx context.Context) (uint64, error)
}

// UTXOTailer scans Bitcoin/Zcash-family blocks for outputs paid to the
// locker's receiving address and enqueues them as EventInitTransfer
// candidates, since a UTXO chain deposit itself is the user's transfer
// initiation — there is no separate init_transfer call to watch for.
type UTXOTailer struct {
	Chain       core.ChainKind
	Source      UTXOBlockSource
	ReceivingAddr string
	Queue       *Queue
	Checkpoints *Checkpoints

	Confirmations uint64
}

// PollOnce scans every confirmed, unprocessed block for deposits.
func (t *UTXOTailer) PollOnce(ctx context.Context) (uint64, error) {
	best, err := t.Source.BestHeight(ctx)
	if err != nil {
		return 0, fmt.Errorf("best height for %s: %w", t.Chain, err)
	}
	if best < t.Confirmations {
		return 0, nil
	}
	safeHeight := best - t.Confirmations

	from := t.Checkpoints.Load(t.Chain)
	if from == 0 {
		from = safeHeight
	}

	var scanned uint64
	for h := from; h <= safeHeight; h++ {
		block, err := t.Source.BlockAtHeight(ctx, h)
		if err != nil {
			return scanned, fmt.Errorf("block %d on %s: %w", h, t.Chain, err)
		}
		for _, tx := range block.Txs {
			for _, out := range tx.Outputs {
				if out.Address != t.ReceivingAddr {
					continue
				}
				id := fmt.Sprintf("%s@%d", tx.TxID, out.Vout)
				t.Queue.Push(ctx, Event{Chain: t.Chain, ID: id, Kind: EventInitTransfer})
			}
		}
		scanned++
	}

	if err := t.Checkpoints.Save(t.Chain, safeHeight+1); err != nil {
		return scanned, err
	}
	return scanned, nil
}

// DecodeReceivingAddress validates that addr is a well-formed address on
// params, used when an operator configures a new UTXO chain connector so a
// typo in config surfaces at startup instead of as a silently-ignored deposit.
func DecodeReceivingAddress(addr string, params *chaincfg.Params) (btcutil.Address, error) {
	decoded, err := btcutil.DecodeAddress(addr, params)
	if err != nil {
		return nil, fmt.Errorf("decode receiving address %q: %w", addr, err)
	}
	return decoded, nil
}
