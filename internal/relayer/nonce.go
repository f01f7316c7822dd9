package relayer

import (
	"sync"

	"github.com/omni-labs/bridge/core"
)

// NonceManager hands out sequential outbound transaction nonces per chain
// account, so multiple goroutines submitting to the same EVM account never
// collide on the same nonce and get one of their transactions dropped.
type NonceManager struct {
	mu     sync.Mutex
	nonces map[core.ChainKind]uint64
}

func NewNonceManager() *NonceManager {
	return &NonceManager{nonces: make(map[core.ChainKind]uint64)}
}

// Seed sets the starting nonce for chain, read from the chain's RPC at startup.
func (n *NonceManager) Seed(chain core.ChainKind, current uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nonces[chain] = current
}

// Next allocates and returns the next nonce to use for chain.
func (n *NonceManager) Next(chain core.ChainKind) uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	v := n.nonces[chain]
	n.nonces[chain] = v + 1
	return v
}

// Release gives back a nonce that was allocated but never broadcast (e.g.
// the submission failed before reaching the mempool), so it can be reused
// rather than leaving a permanent gap the chain will never fill.
func (n *NonceManager) Release(chain core.ChainKind, nonce uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.nonces[chain] == nonce+1 {
		n.nonces[chain] = nonce
	}
}
