package handlers

import (
	"sync"

	"github.com/google/uuid"
)

// teamLocks serializes writes per team. Transfer validation is a
// check-then-act sequence; without the lock two concurrent transfers for the
// same team could both validate against a stale snapshot and corrupt the
// change logs. Different teams never contend.
type teamLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newTeamLocks() *teamLocks {
	return &teamLocks{locks: map[uuid.UUID]*sync.Mutex{}}
}

// Lock acquires the mutex for a team, creating it on first use. Lock entries
// are never reaped; teams number in the hundreds, not millions.
func (t *teamLocks) Lock(teamID uuid.UUID) {
	t.mu.Lock()
	l, ok := t.locks[teamID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[teamID] = l
	}
	t.mu.Unlock()
	l.Lock()
}

func (t *teamLocks) Unlock(teamID uuid.UUID) {
	t.mu.Lock()
	l := t.locks[teamID]
	t.mu.Unlock()
	l.Unlock()
}
