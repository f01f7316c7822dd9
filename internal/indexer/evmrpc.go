package indexer

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/omni-labs/bridge/internal/chainiface"
)

// EthClientRPC adapts a go-ethereum JSON-RPC client to chainiface.ChainRPC,
// scoping log fetches to a single factory contract address so a noisy chain
// doesn't hand the tailer logs it has no classifier for.
type EthClientRPC struct {
	Client  *ethclient.Client
	Factory common.Address
}

// DialEthClientRPC connects to an EVM node's JSON-RPC endpoint.
func DialEthClientRPC(ctx context.Context, rpcEndpoint string, factory common.Address) (*EthClientRPC, error) {
	client, err := ethclient.DialContext(ctx, rpcEndpoint)
	if err != nil {
		return nil, err
	}
	return &EthClientRPC{Client: client, Factory: factory}, nil
}

func (r *EthClientRPC) LatestBlock(ctx context.Context) (uint64, error) {
	return r.Client.BlockNumber(ctx)
}

func (r *EthClientRPC) LogsInRange(ctx context.Context, fromBlock, toBlock uint64) ([]chainiface.RawLog, error) {
	logs, err := r.Client.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{r.Factory},
	})
	if err != nil {
		return nil, err
	}

	out := make([]chainiface.RawLog, 0, len(logs))
	for _, lg := range logs {
		topics := make([]string, len(lg.Topics))
		for i, t := range lg.Topics {
			topics[i] = t.Hex()
		}
		out = append(out, chainiface.RawLog{
			BlockNumber: lg.BlockNumber,
			TxHash:      lg.TxHash.Hex(),
			Address:     lg.Address.Hex(),
			Topics:      topics,
			Data:        lg.Data,
		})
	}
	return out, nil
}
