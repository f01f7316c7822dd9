package server

import (
	"encoding/json"
	"math/big"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/omni-labs/bridge/core"
)

// Server exposes the locker's read views and a small admin surface over
// HTTP, the same controllers/routes/middleware split the teacher's wallet
// service uses, now fronting a Locker instead of a key store.
type Server struct {
	Locker *core.Locker
}

func New(l *core.Locker) *Server {
	return &Server{Locker: l}
}

func parseChain(r *http.Request, name string) (core.ChainKind, error) {
	return core.ParseChainKind(mux.Vars(r)[name])
}

// GetTransfer returns the pending transfer record for {chain}/{nonce}.
func (s *Server) GetTransfer(w http.ResponseWriter, r *http.Request) {
	chain, err := parseChain(r, "chain")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	nonce, err := strconv.ParseUint(mux.Vars(r)["nonce"], 10, 64)
	if err != nil {
		http.Error(w, "invalid nonce", http.StatusBadRequest)
		return
	}
	msg, err := s.Locker.GetTransferMessage(core.TransferId{OriginChain: chain, OriginNonce: nonce})
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, msg)
}

// IsTransferFinalised reports whether {chain}/{nonce} has already settled.
func (s *Server) IsTransferFinalised(w http.ResponseWriter, r *http.Request) {
	chain, err := parseChain(r, "chain")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	nonce, err := strconv.ParseUint(mux.Vars(r)["nonce"], 10, 64)
	if err != nil {
		http.Error(w, "invalid nonce", http.StatusBadRequest)
		return
	}
	id := core.UnifiedTransferId{OriginChain: chain, Kind: core.TransferIdNonce, Nonce: nonce}
	writeJSON(w, map[string]bool{"finalised": s.Locker.IsTransferFinalised(id)})
}

type initTransferRequest struct {
	Sender       string `json:"sender"`
	Token        string `json:"token"`
	Amount       string `json:"amount"`
	Recipient    string `json:"recipient"`
	Fee          string `json:"fee"`
	NativeFee    string `json:"native_fee"`
	Msg          string `json:"msg"`
	StorageOwner string `json:"storage_owner"`
}

// InitTransfer starts a new transfer out of the home chain.
func (s *Server) InitTransfer(w http.ResponseWriter, r *http.Request) {
	var req initTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sender, err := core.ParseOmniAddress(req.Sender)
	if err != nil {
		http.Error(w, "sender: "+err.Error(), http.StatusBadRequest)
		return
	}
	token, err := core.ParseOmniAddress(req.Token)
	if err != nil {
		http.Error(w, "token: "+err.Error(), http.StatusBadRequest)
		return
	}
	recipient, err := core.ParseOmniAddress(req.Recipient)
	if err != nil {
		http.Error(w, "recipient: "+err.Error(), http.StatusBadRequest)
		return
	}
	amount, ok := new(big.Int).SetString(req.Amount, 10)
	if !ok {
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	}
	fee, _ := new(big.Int).SetString(req.Fee, 10)
	nativeFee, _ := new(big.Int).SetString(req.NativeFee, 10)
	if fee == nil {
		fee = big.NewInt(0)
	}
	if nativeFee == nil {
		nativeFee = big.NewInt(0)
	}

	id, err := s.Locker.InitTransfer(sender, token, amount, recipient, core.Fee{Fee: fee, NativeFee: nativeFee}, req.Msg, req.StorageOwner)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, id)
}

// GetTokenAddress resolves a home tokenID's bound address on {chain}.
func (s *Server) GetTokenAddress(w http.ResponseWriter, r *http.Request) {
	chain, err := parseChain(r, "chain")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	addr, ok := s.Locker.GetTokenAddress(chain, mux.Vars(r)["tokenID"])
	if !ok {
		http.Error(w, "token not bound on chain", http.StatusNotFound)
		return
	}
	writeJSON(w, addr)
}

// GetDestinationNonce returns {chain}'s last-allocated destination nonce.
func (s *Server) GetDestinationNonce(w http.ResponseWriter, r *http.Request) {
	chain, err := parseChain(r, "chain")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]uint64{"nonce": s.Locker.GetCurrentDestinationNonce(chain)})
}

type adminFactoryRequest struct {
	Chain   string `json:"chain"`
	Address string `json:"address"`
}

// AddFactory registers a destination chain's wrapped-token factory address.
func (s *Server) AddFactory(w http.ResponseWriter, r *http.Request) {
	var req adminFactoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	chain, err := core.ParseChainKind(req.Chain)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	addr, err := core.ParseOmniAddress(req.Address)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.Locker.AddFactory(chain, addr)
	w.WriteHeader(http.StatusNoContent)
}

type storageRequest struct {
	Account string `json:"account"`
	Amount  string `json:"amount"`
}

// StorageDeposit credits an account's storage balance.
func (s *Server) StorageDeposit(w http.ResponseWriter, r *http.Request) {
	var req storageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	amount, ok := new(big.Int).SetString(req.Amount, 10)
	if !ok {
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	}
	s.Locker.StorageDeposit(req.Account, amount)
	w.WriteHeader(http.StatusNoContent)
}

// StorageBalance returns an account's current storage balance.
func (s *Server) StorageBalance(w http.ResponseWriter, r *http.Request) {
	account := mux.Vars(r)["account"]
	writeJSON(w, map[string]string{"balance": s.Locker.StorageBalanceOf(account).String()})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
