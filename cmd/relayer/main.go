package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/omni-labs/bridge/core"
	"github.com/omni-labs/bridge/internal/indexer"
	"github.com/omni-labs/bridge/internal/relayer"
	"github.com/omni-labs/bridge/pkg/config"
)

func main() {
	_ = godotenv.Load()

	log := logrus.StandardLogger()
	if lvl, err := logrus.ParseLevel(os.Getenv("BRIDGE_LOG_LEVEL")); err == nil {
		log.SetLevel(lvl)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.WithError(err).Warn("no config file found, continuing with defaults")
		cfg = &config.Config{}
	}

	store := core.NewInMemoryStore()
	locker := core.NewLocker(store, nil)
	checkpoints := indexer.NewCheckpoints(store)
	queue, err := indexer.NewQueue(1024, 4096)
	if err != nil {
		log.WithError(err).Fatal("failed to build event queue")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tailers := startTailers(ctx, cfg, locker, queue, checkpoints, log)

	orch := relayer.NewOrchestrator(locker, nil, nil, log)
	if cfg.Relayer.RelayerAccountID != "" {
		orch.Relayer = core.NewHomeAddress(cfg.Relayer.RelayerAccountID)
	}
	orch.Nonces = relayer.NewNonceManager()

	log.WithField("poll_interval_ms", cfg.Relayer.PollIntervalMS).Info("relayer orchestrator starting")
	ticker := time.NewTicker(pollInterval(cfg))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("relayer shutting down")
			return
		case <-ticker.C:
			for _, t := range tailers {
				if _, err := t.PollOnce(ctx); err != nil {
					log.WithError(err).Warn("tailer poll failed")
				}
			}
			drainOnce(ctx, queue, orch, log)
		}
	}
}

// evmPoller is the subset of EVMTailer that the relayer's poll loop needs;
// factored out so startTailers can return a uniform slice regardless of how
// many EVM chains are configured.
type evmPoller interface {
	PollOnce(ctx context.Context) (uint64, error)
}

// startTailers builds one EVMTailer per configured EVM-family chain, dialing
// its JSON-RPC endpoint up front so a misconfigured RPC URL fails fast at
// startup instead of during the first poll tick. UTXO-family chains are
// logged but not tailed yet: doing so needs a JSON-RPC client for the chain's
// node, and none of the wired dependencies (btcutil only decodes addresses)
// provide one, so wiring a block source here would mean fabricating an RPC
// client rather than grounding it in an available library.
func startTailers(ctx context.Context, cfg *config.Config, locker *core.Locker, queue *indexer.Queue, checkpoints *indexer.Checkpoints, log *logrus.Logger) []evmPoller {
	var tailers []evmPoller

	for _, chainCfg := range cfg.Chains {
		chain, err := core.ParseChainKind(chainCfg.Name)
		if err != nil {
			log.WithError(err).WithField("chain", chainCfg.Name).Warn("skipping unknown configured chain")
			continue
		}

		switch {
		case chain.IsEVM():
			if chainCfg.RPCEndpoint == "" {
				log.WithField("chain", chain).Warn("EVM chain configured without an rpc_endpoint, skipping tailer")
				continue
			}
			factory := common.HexToAddress(chainCfg.FactoryAddress)
			rpc, err := indexer.DialEthClientRPC(ctx, chainCfg.RPCEndpoint, factory)
			if err != nil {
				log.WithError(err).WithField("chain", chain).Error("failed to dial EVM RPC endpoint, chain will not be tailed")
				continue
			}
			if addr, err := core.NewEVMAddress(chain, factory); err == nil {
				locker.AddFactory(chain, addr)
			} else {
				log.WithError(err).WithField("chain", chain).Warn("invalid factory address in config")
			}
			tailers = append(tailers, &indexer.EVMTailer{
				Chain:         chain,
				RPC:           rpc,
				Queue:         queue,
				Checkpoints:   checkpoints,
				Log:           log,
				Confirmations: chainCfg.Confirmations,
			})
			log.WithField("chain", chain).Info("EVM tailer configured")

		case chain.IsUTXO():
			log.WithField("chain", chain).Warn("UTXO chain configured but no block source is wired; deposits on this chain will not be indexed")

		default:
			log.WithField("chain", chain).Info("configured chain")
		}
	}

	return tailers
}

func pollInterval(cfg *config.Config) time.Duration {
	if cfg.Relayer.PollIntervalMS <= 0 {
		return 5 * time.Second
	}
	return time.Duration(cfg.Relayer.PollIntervalMS) * time.Millisecond
}

// drainOnce pulls whatever chain events are already queued and dispatches
// each through the orchestrator, logging a dispatch failure without
// blocking the rest of the batch so one bad proof doesn't stall the queue.
func drainOnce(ctx context.Context, queue *indexer.Queue, orch *relayer.Orchestrator, log *logrus.Logger) {
	for {
		select {
		case ev := <-queue.Events():
			log.WithFields(logrus.Fields{"chain": ev.Chain, "id": ev.ID, "kind": ev.Kind}).Info("dequeued bridge event")
			if err := orch.Dispatch(ctx, ev); err != nil {
				log.WithFields(logrus.Fields{"chain": ev.Chain, "id": ev.ID, "kind": ev.Kind}).WithError(err).Warn("event dispatch failed")
			}
		default:
			return
		}
	}
}
