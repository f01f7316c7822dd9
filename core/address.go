package core

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mr-tron/base58"
)

// OmniAddress is a chain-tagged account identifier. It is the wire format
// used everywhere a transfer needs to name a sender, a recipient, a token,
// or a factory, so that a single struct works whether the other side is an
// EVM contract, a Solana/Starknet program, a home-chain account, or a UTXO
// chain address string.
//
// Exactly one of the byte/string fields is populated, selected by Chain:
//   - EVM chains (IsEVM)      -> Bytes holds 20 bytes
//   - Solana, Starknet        -> Bytes holds 32 bytes
//   - home chain, UTXO chains -> Text holds the native-format address/account id
type OmniAddress struct {
	Chain ChainKind
	Bytes []byte
	Text  string
}

// NewHomeAddress builds an OmniAddress for the locker's own settlement chain.
func NewHomeAddress(accountID string) OmniAddress {
	return OmniAddress{Chain: ChainHome, Text: accountID}
}

// NewEVMAddress builds an OmniAddress from a 20-byte EVM address.
func NewEVMAddress(chain ChainKind, addr common.Address) (OmniAddress, error) {
	if !chain.IsEVM() {
		return OmniAddress{}, fmt.Errorf("%w: %s is not an EVM chain", ErrInvalidChainKind, chain)
	}
	return OmniAddress{Chain: chain, Bytes: append([]byte(nil), addr.Bytes()...)}, nil
}

// NewSolanaAddress builds an OmniAddress from a 32-byte Solana/Starknet pubkey.
func NewSolanaAddress(chain ChainKind, pubkey []byte) (OmniAddress, error) {
	if chain != ChainSolana && chain != ChainStarknet {
		return OmniAddress{}, fmt.Errorf("%w: %s does not use 32-byte addresses", ErrInvalidChainKind, chain)
	}
	if len(pubkey) != 32 {
		return OmniAddress{}, fmt.Errorf("%w: want 32 bytes, got %d", ErrInvalidAddress, len(pubkey))
	}
	return OmniAddress{Chain: chain, Bytes: append([]byte(nil), pubkey...)}, nil
}

// NewUTXOAddress builds an OmniAddress for Bitcoin/Zcash style base58/bech32 text addresses.
func NewUTXOAddress(chain ChainKind, addr string) (OmniAddress, error) {
	if !chain.IsUTXO() {
		return OmniAddress{}, fmt.Errorf("%w: %s is not a UTXO chain", ErrInvalidChainKind, chain)
	}
	return OmniAddress{Chain: chain, Text: addr}, nil
}

// ZeroAddress returns the chain's canonical "native coin" placeholder token
// address, used to register a chain's gas token in the token registry.
func ZeroAddress(chain ChainKind) (OmniAddress, error) {
	switch {
	case chain.IsHome():
		return OmniAddress{}, fmt.Errorf("%w: home chain has no zero address", ErrInvalidChainKind)
	case chain.IsEVM():
		return OmniAddress{Chain: chain, Bytes: make([]byte, 20)}, nil
	case chain == ChainSolana || chain == ChainStarknet:
		return OmniAddress{Chain: chain, Bytes: make([]byte, 32)}, nil
	case chain.IsUTXO():
		return OmniAddress{Chain: chain, Text: ""}, nil
	default:
		return OmniAddress{}, fmt.Errorf("%w: %s", ErrInvalidChainKind, chain)
	}
}

// IsZero reports whether this is the chain's native-coin placeholder address.
func (a OmniAddress) IsZero() bool {
	switch {
	case a.Chain.IsEVM(), a.Chain == ChainSolana, a.Chain == ChainStarknet:
		for _, b := range a.Bytes {
			if b != 0 {
				return false
			}
		}
		return len(a.Bytes) > 0
	case a.Chain.IsUTXO():
		return a.Text == ""
	default:
		return false
	}
}

// Encode renders the address portion only, in the chain's native textual form.
func (a OmniAddress) Encode() string {
	switch {
	case a.Chain.IsHome(), a.Chain.IsUTXO():
		return a.Text
	case a.Chain.IsEVM():
		return common.BytesToAddress(a.Bytes).Hex()
	case a.Chain == ChainSolana || a.Chain == ChainStarknet:
		return base58.Encode(a.Bytes)
	default:
		return ""
	}
}

// String renders the full "chain:address" wire form.
func (a OmniAddress) String() string {
	return a.Chain.String() + ":" + a.Encode()
}

// ParseOmniAddress parses the "chain:address" wire form produced by String.
func ParseOmniAddress(s string) (OmniAddress, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return OmniAddress{}, fmt.Errorf("%w: missing chain prefix in %q", ErrInvalidAddress, s)
	}
	chain, err := ParseChainKind(parts[0])
	if err != nil {
		return OmniAddress{}, err
	}
	body := parts[1]
	switch {
	case chain.IsHome():
		return NewHomeAddress(body), nil
	case chain.IsUTXO():
		return NewUTXOAddress(chain, body)
	case chain.IsEVM():
		if !common.IsHexAddress(body) {
			return OmniAddress{}, fmt.Errorf("%w: %q is not a hex EVM address", ErrInvalidAddress, body)
		}
		return NewEVMAddress(chain, common.HexToAddress(body))
	case chain == ChainSolana || chain == ChainStarknet:
		raw, err := base58.Decode(body)
		if err != nil {
			return OmniAddress{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
		}
		return NewSolanaAddress(chain, raw)
	default:
		return OmniAddress{}, fmt.Errorf("%w: %s", ErrInvalidChainKind, chain)
	}
}

// TokenPrefix derives the registry key fragment used to disambiguate tokens
// that share an address across chains. EVM addresses are already unique and
// compact enough to use verbatim (lowercase hex, no 0x); Solana and Starknet
// mint addresses are base58, which is not a safe registry key component, so
// they are hashed with keccak256 first, matching how the locker derives
// storage-safe keys for 32-byte program-derived addresses.
func (a OmniAddress) TokenPrefix() string {
	switch {
	case a.Chain.IsHome(), a.Chain.IsUTXO():
		return a.Text
	case a.Chain.IsEVM():
		return hex.EncodeToString(a.Bytes)
	case a.Chain == ChainSolana || a.Chain == ChainStarknet:
		h := crypto.Keccak256(a.Bytes)
		return hex.EncodeToString(h)
	default:
		return ""
	}
}

// Equal compares two OmniAddress values by chain and canonical encoding.
func (a OmniAddress) Equal(b OmniAddress) bool {
	return a.Chain == b.Chain && a.Encode() == b.Encode()
}
