package core

// Lifecycle models the two-phase shape the original contract's promise
// chains give every state change that depends on an external check: first a
// callback inspects a result (a verified proof, a storage-balance lookup)
// and decides whether the operation may proceed at all, then — and only
// then — a second callback commits the mutation. Begin/Resolve ports that
// split into ordinary synchronous Go without pretending to await anything:
// the "promise" is just the deferred decision of whether Resolve runs.
type Lifecycle struct {
	name string
	err  error
}

// BeginX opens a two-phase operation named name, running check immediately
// against already-materialized state. A non-nil error here means the
// operation never reaches its mutating half, the same way a failed
// #[callback_result] match panics before the contract's promise chain gets
// anywhere near committing a change.
func BeginX(name string, check func() error) *Lifecycle {
	return &Lifecycle{name: name, err: check()}
}

// ResolveX commits apply only if BeginX's check passed; otherwise it
// returns that check's error untouched and apply never runs.
func (lc *Lifecycle) ResolveX(apply func() error) error {
	if lc.err != nil {
		return lc.err
	}
	return apply()
}

// Err reports BeginX's check result without running ResolveX, for callers
// that need to branch on it before deciding what apply to hand to Resolve.
func (lc *Lifecycle) Err() error { return lc.err }

// Name identifies which operation this Lifecycle belongs to, used in logging.
func (lc *Lifecycle) Name() string { return lc.name }
