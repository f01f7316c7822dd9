package relayer

import (
	"testing"

	"github.com/omni-labs/bridge/core"
)

// NewLockerForTest returns a Locker backed by a fresh in-memory store, for
// tests in this package that only need a working locker, not a populated one.
func NewLockerForTest(t *testing.T) *core.Locker {
	t.Helper()
	return core.NewLocker(core.NewInMemoryStore(), nil)
}
