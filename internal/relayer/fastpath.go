package relayer

import (
	"fmt"
	"math/big"

	"github.com/sirupsen/logrus"

	"github.com/omni-labs/bridge/core"
)

// FastPathWorker pre-funds pending transfers out of a relayer's own balance
// when the offered fee clears FeeOracle's minimum, trading capital for
// faster user-perceived settlement; it is reimbursed later once the normal
// proof-and-finalise path confirms the origin-chain transfer really happened.
type FastPathWorker struct {
	Locker *core.Locker
	Oracle FeeOracle
	Log    *logrus.Logger

	Relayer core.OmniAddress
}

// Consider evaluates a pending transfer and, if profitable, fast-funds it.
// It returns the fast-transfer id when it acts, or ok=false when the fee
// doesn't clear the oracle's bar and the transfer is left for the slow path.
func (w *FastPathWorker) Consider(id core.TransferId) (fid core.FastTransferId, ok bool, err error) {
	msg, err := w.Locker.GetTransferMessage(id)
	if err != nil {
		return core.FastTransferId{}, false, err
	}

	clears, err := MeetsMinimumFee(w.Oracle, msg.DestinationChain(), msg.Fee.NativeFee)
	if err != nil {
		return core.FastTransferId{}, false, err
	}
	if !clears {
		w.Log.WithField("transfer_id", id).Debug("fee below fast-path minimum, deferring to slow path")
		return core.FastTransferId{}, false, nil
	}

	sentAmount := new(big.Int).Add(msg.Amount, msg.Fee.Fee)
	fid, relayedID, err := w.Locker.FastFinTransfer(id, w.Relayer, sentAmount)
	if err != nil {
		return core.FastTransferId{}, false, fmt.Errorf("fast fund %s: %w", id, err)
	}
	if relayedID != nil {
		w.Log.WithFields(logrus.Fields{"transfer_id": id, "fast_id": fid, "relayed_transfer_id": *relayedID}).Info("fast-funded transfer, queued reimbursement leg")
	} else {
		w.Log.WithFields(logrus.Fields{"transfer_id": id, "fast_id": fid}).Info("fast-funded transfer")
	}
	return fid, true, nil
}
