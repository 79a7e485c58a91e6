package game

import (
	"errors"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/spywords-backend/internal"
	"github.com/scythe504/spywords-backend/internal/utils"
)

const maxIdAttempts = 8

var ErrRoomIdExhausted = errors.New("could not allocate a free room id")

// =============================================================================
// ROOM MANAGEMENT
// =============================================================================

// Registry owns every live room of the process.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[string]*internal.Room
	recorder *Recorder

	newId   func() string
	newRand func() *rand.Rand
}

func NewRegistry(recorder *Recorder) *Registry {
	return &Registry{
		rooms:    make(map[string]*internal.Room),
		recorder: recorder,
		newId:    func() string { return utils.GenerateID(internal.RoomIdLength) },
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}
}

// Create registers a new room around creator and records it durably.
func (reg *Registry) Create(creator *internal.Player, pool []string) (*internal.Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	id := ""
	for range maxIdAttempts {
		candidate := reg.newId()
		if _, taken := reg.rooms[candidate]; !taken {
			id = candidate
			break
		}
		log.Warn().Str("room", candidate).Msg("[Registry.Create] room id collision, retrying")
	}
	if id == "" {
		return nil, ErrRoomIdExhausted
	}

	room, err := internal.NewRoom(id, creator, pool, reg.newRand())
	if err != nil {
		return nil, err
	}
	reg.rooms[id] = room

	log.Info().Str("room", id).Str("player", creator.Id).Str("starting_team", string(room.StartingTeam)).
		Msgf("[Registry.Create] created room (rooms=%d)", len(reg.rooms))

	reg.recorder.RecordCreated(id, creator.Nickname)
	return room, nil
}

func (reg *Registry) Get(id string) (*internal.Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[id]
	return room, ok
}

// EvictIfEmpty drops the room once nobody is left in it. Must be called
// without holding the room lock.
func (reg *Registry) EvictIfEmpty(id string) bool {
	reg.mu.Lock()
	room, ok := reg.rooms[id]
	if !ok {
		reg.mu.Unlock()
		return false
	}

	room.Mu.Lock()
	empty := room.IsEmpty()
	if empty {
		room.Evicted = true
		delete(reg.rooms, id)
	}
	room.Mu.Unlock()
	remaining := len(reg.rooms)
	reg.mu.Unlock()

	if !empty {
		return false
	}

	log.Info().Str("room", id).Msgf("[Registry.EvictIfEmpty] room is empty, evicted (rooms=%d)", remaining)
	reg.recorder.DeleteOrDeactivate(id)
	return true
}

func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// Ids lists live room ids in sorted order.
func (reg *Registry) Ids() []string {
	reg.mu.RLock()
	ids := make([]string, 0, len(reg.rooms))
	for id := range reg.rooms {
		ids = append(ids, id)
	}
	reg.mu.RUnlock()

	sort.Strings(ids)
	return ids
}
