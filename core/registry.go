package core

import (
	"fmt"
	"math/big"
	"sync"
)

// Decimals is a chain-local token precision, e.g. 18 for most EVM ERC-20s,
// 24 for home-chain NEP-141 tokens, 9 for Solana SPL tokens.
type Decimals uint8

// tokenDecimals records both the token's origin precision and its precision
// on a specific destination chain, since the same logical token can be
// minted with different decimal counts on each chain it is bridged to.
type tokenDecimals struct {
	Decimals       Decimals
	OriginDecimals Decimals
}

// TokenRegistry maps a single logical token across every chain it has been
// bridged to, and tracks the decimal precision needed to convert amounts
// between chains without losing or fabricating value.
type TokenRegistry struct {
	mu sync.RWMutex

	idToAddress   map[ChainKind]map[string]OmniAddress // chain -> tokenID (home account) -> address
	addressToID   map[string]string                      // "chain:address" -> tokenID
	decimals      map[string]tokenDecimals                // "chain:address" -> decimals
	deployedTok   map[string]bool                         // tokenID -> wrapped-on-home, i.e. mintable/burnable locally
}

func NewTokenRegistry() *TokenRegistry {
	return &TokenRegistry{
		idToAddress: make(map[ChainKind]map[string]OmniAddress),
		addressToID: make(map[string]string),
		decimals:    make(map[string]tokenDecimals),
		deployedTok: make(map[string]bool),
	}
}

// BindToken registers a new chain-side address for tokenID, recording the
// decimal precision the locker must normalize amounts through when moving
// value to or from that chain.
func (r *TokenRegistry) BindToken(tokenID string, chainAddr OmniAddress, decimals, originDecimals Decimals) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := chainAddr.String()
	if _, exists := r.addressToID[key]; exists {
		return fmt.Errorf("%w: %s", ErrTokenAlreadyBound, key)
	}

	if r.idToAddress[chainAddr.Chain] == nil {
		r.idToAddress[chainAddr.Chain] = make(map[string]OmniAddress)
	}
	r.idToAddress[chainAddr.Chain][tokenID] = chainAddr
	r.addressToID[key] = tokenID
	r.decimals[key] = tokenDecimals{Decimals: decimals, OriginDecimals: originDecimals}
	return nil
}

// MarkDeployed flags tokenID as wrapped-on-home, meaning fin_transfer mints
// rather than releases an escrowed balance.
func (r *TokenRegistry) MarkDeployed(tokenID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deployedTok[tokenID] = true
}

// IsDeployed reports whether tokenID is minted/burned locally rather than escrowed.
func (r *TokenRegistry) IsDeployed(tokenID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.deployedTok[tokenID]
}

// TokenAddress resolves tokenID's address on chain, if bound.
func (r *TokenRegistry) TokenAddress(chain ChainKind, tokenID string) (OmniAddress, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	addr, ok := r.idToAddress[chain][tokenID]
	return addr, ok
}

// TokenID resolves the home tokenID bound to a chain-side address. A home
// chain address is always its own tokenID.
func (r *TokenRegistry) TokenID(addr OmniAddress) (string, error) {
	if addr.Chain.IsHome() {
		return addr.Text, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.addressToID[addr.String()]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTokenNotRegistered, addr)
	}
	return id, nil
}

// Decimals returns the bound precision for a chain-side token address.
func (r *TokenRegistry) Decimals(addr OmniAddress) (Decimals, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.decimals[addr.String()]
	return d.Decimals, ok
}

// OriginDecimals returns the precision the logical token bound to addr was
// first deployed with, the "from" side of any Normalize/Denormalize
// conversion into addr's own chain-local precision.
func (r *TokenRegistry) OriginDecimals(addr OmniAddress) (Decimals, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.decimals[addr.String()]
	return d.OriginDecimals, ok
}

// pow10 computes 10^n as a *big.Int, used by Normalize/Denormalize.
func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// Normalize scales amount from fromDecimals to toDecimals, dividing when
// fromDecimals is larger and multiplying when it is smaller. Truncation here is accepted: it only ever throws
// away dust below the destination's resolution, never value a sender
// expected to receive.
func Normalize(amount *big.Int, fromDecimals, toDecimals Decimals) *big.Int {
	if fromDecimals == toDecimals {
		return new(big.Int).Set(amount)
	}
	if fromDecimals > toDecimals {
		return new(big.Int).Div(amount, pow10(int(fromDecimals-toDecimals)))
	}
	return new(big.Int).Mul(amount, pow10(int(toDecimals-fromDecimals)))
}

// Denormalize scales amount from fromDecimals to toDecimals, in either
// direction. Unlike Normalize this direction can
// overflow the destination's representable range (e.g. expanding into a
// chain with many more decimals than fit in the destination's integer
// width); callers must treat ErrAmountOverflow as fatal to the transfer,
// never silently clamp it, since clamping would hand out less than promised.
func Denormalize(amount *big.Int, fromDecimals, toDecimals Decimals, maxValue *big.Int) (*big.Int, error) {
	var out *big.Int
	if fromDecimals == toDecimals {
		out = new(big.Int).Set(amount)
	} else if fromDecimals > toDecimals {
		out = new(big.Int).Div(amount, pow10(int(fromDecimals-toDecimals)))
	} else {
		out = new(big.Int).Mul(amount, pow10(int(toDecimals-fromDecimals)))
	}
	if maxValue != nil && out.Cmp(maxValue) > 0 {
		return nil, fmt.Errorf("%w: %s exceeds max %s", ErrAmountOverflow, out, maxValue)
	}
	return out, nil
}
