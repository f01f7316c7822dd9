package core

// GetTransferMessage returns the pending transfer record for id.
func (l *Locker) GetTransferMessage(id TransferId) (TransferMessage, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	msg, _, err := l.Store.GetPending(id)
	return msg, err
}

// IsTransferFinalised reports whether id has already settled.
func (l *Locker) IsTransferFinalised(id UnifiedTransferId) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Store.IsTransferFinalised(id)
}

// GetFastTransferStatus returns the funding status of a fast transfer, if any.
func (l *Locker) GetFastTransferStatus(id FastTransferId) (FastTransferStatus, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Store.GetFastTransfer(id)
}

// GetTokenAddress resolves tokenID's bound address on chain.
func (l *Locker) GetTokenAddress(chain ChainKind, tokenID string) (OmniAddress, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Registry.TokenAddress(chain, tokenID)
}

// GetTokenID resolves the home tokenID bound to a chain-side address.
func (l *Locker) GetTokenID(addr OmniAddress) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Registry.TokenID(addr)
}

// GetCurrentDestinationNonce returns chain's last-allocated destination nonce.
func (l *Locker) GetCurrentDestinationNonce(chain ChainKind) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Store.CurrentDestinationNonce(chain)
}

// GetTokenDecimals returns the bound precision for a chain-side token address.
func (l *Locker) GetTokenDecimals(addr OmniAddress) (Decimals, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Registry.Decimals(addr)
}

// GetProvers returns every registered chain-to-prover binding.
func (l *Locker) GetProvers() map[ChainKind]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[ChainKind]string, len(l.provers))
	for k, v := range l.provers {
		out[k] = v
	}
	return out
}
