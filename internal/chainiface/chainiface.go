// Package chainiface declares the collaborator interfaces the locker and
// the relayer orchestrator depend on but never implement directly: proof
// verification, MPC-style signing, and the per-chain RPC/connector surface
// each chain family needs. Concrete adapters live under internal/indexer
// and internal/relayer; this package exists so core stays testable against
// fakes without importing any chain SDK.
package chainiface

import (
	"context"
	"math/big"

	"github.com/omni-labs/bridge/core"
)

// FinTransferResult is the decoded content of a chain-side proof showing a
// transfer originating on another chain, the input to Locker.FinTransfer
// once a Prover has verified it. Its fields mirror core.FinTransferInput
// directly; the orchestrator only adds the submitting caller's own address
// before handing it to the locker.
type FinTransferResult struct {
	OriginChain      core.ChainKind
	TransferID       core.TransferId
	Token            core.OmniAddress
	Sender           core.OmniAddress
	Recipient        core.OmniAddress
	Amount           *big.Int
	Fee              core.Fee
	Msg              string
	DestinationNonce uint64
	EmitterAddress   core.OmniAddress
}

// DeployTokenResult is the decoded content of a chain-side proof showing a
// wrapped token contract was deployed for a token this locker bridges.
// Decimals is the token's own precision on the chain it was deployed to;
// deploy_token_internal always binds it at equal decimals on first sight,
// so there is no separate origin figure to carry here.
type DeployTokenResult struct {
	EmitterAddress core.OmniAddress
	TokenAddress   core.OmniAddress
	Decimals       core.Decimals
}

// Prover verifies a chain-specific inclusion/log proof and decodes it into
// one of the locker's result shapes. Each chain family (EVM light client,
// Solana validity proof, a UTXO chain's SPV merkle proof) gets its own
// implementation wired in by the relayer at startup.
type Prover interface {
	VerifyFinTransfer(ctx context.Context, chain core.ChainKind, rawProof []byte) (FinTransferResult, error)
	VerifyDeployToken(ctx context.Context, chain core.ChainKind, rawProof []byte) (DeployTokenResult, error)
}

// Signer requests a destination-chain signature over a pending transfer's
// payload, standing in for an MPC signing service.
type Signer interface {
	Sign(ctx context.Context, payload []byte) (signature []byte, err error)
}

// UTXOConnector derives the locker's receiving address for a UTXO chain and
// builds the outgoing transaction releasing funds to a recipient.
type UTXOConnector interface {
	ReceivingAddress(ctx context.Context) (core.OmniAddress, error)
	BuildRelease(ctx context.Context, to core.OmniAddress, amount *big.Int) (txHex string, err error)
}

// ChainRPC is the minimal read surface the indexer needs from an EVM-family
// chain client to tail bridge-related logs.
type ChainRPC interface {
	LatestBlock(ctx context.Context) (uint64, error)
	LogsInRange(ctx context.Context, fromBlock, toBlock uint64) ([]RawLog, error)
}

// RawLog is an undecoded chain log, decoded downstream by the indexer into
// the event types the relayer orchestrator acts on.
type RawLog struct {
	BlockNumber uint64
	TxHash      string
	Address     string
	Topics      []string
	Data        []byte
}
