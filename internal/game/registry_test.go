package game

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/scythe504/spywords-backend/internal"
)

func sequenceIds(ids ...string) func() string {
	i := 0
	return func() string {
		id := ids[min(i, len(ids)-1)]
		i++
		return id
	}
}

func TestRegistryCreateRetriesOnCollision(t *testing.T) {
	reg := NewRegistry(nil)
	reg.newId = sequenceIds("aaaaaa", "aaaaaa", "bbbbbb")

	first, err := reg.Create(internal.NewPlayer("c1", "Alice"), testWords(30))
	require.NoError(t, err)
	second, err := reg.Create(internal.NewPlayer("c2", "Bob"), testWords(30))
	require.NoError(t, err)

	assert.Equal(t, "aaaaaa", first.Id)
	assert.Equal(t, "bbbbbb", second.Id)
	assert.Equal(t, []string{"aaaaaa", "bbbbbb"}, reg.Ids())
}

func TestRegistryCreateGivesUpWhenIdsAreExhausted(t *testing.T) {
	reg := NewRegistry(nil)
	reg.newId = func() string { return "aaaaaa" }

	_, err := reg.Create(internal.NewPlayer("c1", "Alice"), testWords(30))
	require.NoError(t, err)

	_, err = reg.Create(internal.NewPlayer("c2", "Bob"), testWords(30))
	assert.ErrorIs(t, err, ErrRoomIdExhausted)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryCreateRejectsSmallPool(t *testing.T) {
	reg := NewRegistry(nil)
	_, err := reg.Create(internal.NewPlayer("c1", "Alice"), testWords(3))
	assert.ErrorIs(t, err, internal.ErrInsufficientWords)
	assert.Zero(t, reg.Len())
}

func TestRegistryEvictIfEmpty(t *testing.T) {
	store := newMockPersistence(nil)
	recorder := NewRecorder(store, time.Second)
	reg := NewRegistry(recorder)

	room, err := reg.Create(internal.NewPlayer("c1", "Alice"), testWords(30))
	require.NoError(t, err)

	assert.False(t, reg.EvictIfEmpty(room.Id), "room with a player must stay")

	room.Mu.Lock()
	room.RemovePlayer("c1")
	room.Mu.Unlock()

	assert.True(t, reg.EvictIfEmpty(room.Id))
	assert.False(t, reg.EvictIfEmpty(room.Id))
	assert.True(t, room.Evicted)

	_, ok := reg.Get(room.Id)
	assert.False(t, ok)

	recorder.Wait()
	store.AssertNumberOfCalls(t, "DeleteOrDeactivate", 1)
	store.AssertCalled(t, "DeleteOrDeactivate", mock.Anything, room.Id)
}

func TestRegistryConcurrentLeavesEvictOnce(t *testing.T) {
	store := newMockPersistence(nil)
	recorder := NewRecorder(store, time.Second)
	reg := NewRegistry(recorder)

	room, err := reg.Create(internal.NewPlayer("p0", "p0"), testWords(30))
	require.NoError(t, err)
	ids := []string{"p0"}
	room.Mu.Lock()
	for _, id := range []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7"} {
		room.AddPlayer(id, id)
		ids = append(ids, id)
	}
	room.Mu.Unlock()

	var evictions atomic.Int32
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			room.Mu.Lock()
			room.RemovePlayer(id)
			room.Mu.Unlock()
			if reg.EvictIfEmpty(room.Id) {
				evictions.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, evictions.Load())
	assert.Zero(t, reg.Len())

	recorder.Wait()
	store.AssertNumberOfCalls(t, "DeleteOrDeactivate", 1)
}

func TestRegistryRecordsCreation(t *testing.T) {
	store := newMockPersistence(nil)
	recorder := NewRecorder(store, time.Second)
	reg := NewRegistry(recorder)

	room, err := reg.Create(internal.NewPlayer("c1", "Alice"), testWords(30))
	require.NoError(t, err)

	recorder.Wait()
	store.AssertCalled(t, "RecordCreated", mock.Anything, room.Id, "Alice")
}
