package syncer

import (
	"fmt"
	"sync"
)

// InFlight is a process-local skip-if-running guard keyed by (user, item).
// A slow sync run that outlives its schedule interval would otherwise
// overlap its own next tick and race on the persisted cursor.
type InFlight struct {
	running sync.Map
}

// NewInFlight creates an empty guard.
func NewInFlight() *InFlight {
	return &InFlight{}
}

func (g *InFlight) key(userID int64, itemID string) string {
	return fmt.Sprintf("%d/%s", userID, itemID)
}

// TryAcquire claims the (user, item) slot, returning false when a run is
// already in flight.
func (g *InFlight) TryAcquire(userID int64, itemID string) bool {
	_, loaded := g.running.LoadOrStore(g.key(userID, itemID), struct{}{})
	return !loaded
}

// Release frees the slot claimed by TryAcquire.
func (g *InFlight) Release(userID int64, itemID string) {
	g.running.Delete(g.key(userID, itemID))
}
