package handlers

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTeamLocksSerializePerTeam(t *testing.T) {
	locks := newTeamLocks()
	teamID := uuid.New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locks.Lock(teamID)
			counter++
			locks.Unlock(teamID)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestTeamLocksIndependentTeams(t *testing.T) {
	locks := newTeamLocks()
	a, b := uuid.New(), uuid.New()

	locks.Lock(a)
	done := make(chan struct{})
	go func() {
		locks.Lock(b)
		locks.Unlock(b)
		close(done)
	}()
	<-done
	locks.Unlock(a)
}
