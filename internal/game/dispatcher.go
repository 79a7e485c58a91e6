package game

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/spywords-backend/internal"
	"github.com/scythe504/spywords-backend/internal/utils"
)

const (
	msgJoinFailed   = "Room not found or invalid"
	msgRejoinFailed = "Room not found"
	msgNoNickname   = "Nickname is required"
	msgCannotStart  = "Unable to start game"

	wordsFetchTimeout = 5 * time.Second
)

// Dispatcher turns one inbound client event into one Room operation and
// broadcasts the resulting state. Each event runs under the room lock from
// mutation through broadcast, so events on the same room never interleave.
type Dispatcher struct {
	registry  *Registry
	transport Transport
	words     WordPool
	recorder  *Recorder
}

func NewDispatcher(registry *Registry, transport Transport, words WordPool, recorder *Recorder) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		transport: transport,
		words:     words,
		recorder:  recorder,
	}
}

// =============================================================================
// EVENT ROUTING
// =============================================================================

// Dispatch routes a raw envelope. Payloads that fail to decode are dropped.
func (d *Dispatcher) Dispatch(ctx context.Context, connId string, msg internal.Message[json.RawMessage]) {
	logger := log.With().Str("player", connId).Str("event", msg.Type).Logger()

	switch msg.Type {
	case internal.EventCreateRoom:
		var data internal.CreateRoomData
		if decode(msg, &data) {
			d.CreateRoom(ctx, connId, data.Nickname)
			return
		}
	case internal.EventJoinRoom:
		var data internal.JoinRoomData
		if decode(msg, &data) {
			d.JoinRoom(connId, data.RoomId, data.Nickname)
			return
		}
	case internal.EventRejoinRoom:
		var data internal.JoinRoomData
		if decode(msg, &data) {
			d.RejoinRoom(connId, data.RoomId, data.Nickname)
			return
		}
	case internal.EventLeaveRoom:
		var data internal.RoomRefData
		if decode(msg, &data) {
			d.LeaveRoom(connId, data.RoomId)
			return
		}
	case internal.EventSetRole:
		var data internal.SetRoleData
		if decode(msg, &data) {
			d.SetRole(connId, data.RoomId, data.Role, data.Team)
			return
		}
	case internal.EventSetClue:
		var data internal.SetClueData
		if decode(msg, &data) {
			d.SetClue(connId, data.RoomId, data.Clue, data.Number)
			return
		}
	case internal.EventRevealWord:
		var data internal.RevealWordData
		if decode(msg, &data) {
			d.RevealWord(connId, data.RoomId, data.Word)
			return
		}
	case internal.EventEndTurn:
		var data internal.RoomRefData
		if decode(msg, &data) {
			d.EndTurn(connId, data.RoomId)
			return
		}
	case internal.EventResetGame:
		var data internal.RoomRefData
		if decode(msg, &data) {
			d.ResetGame(ctx, connId, data.RoomId)
			return
		}
	case internal.EventNewGame:
		var data internal.RoomRefData
		if decode(msg, &data) {
			d.NewGame(ctx, connId, data.RoomId)
			return
		}
	default:
		logger.Debug().Msg("[Dispatch] unknown event type, dropping")
		return
	}

	logger.Debug().Msg("[Dispatch] malformed payload, dropping")
}

func decode(msg internal.Message[json.RawMessage], v any) bool {
	if len(msg.Data) == 0 {
		return false
	}
	return json.Unmarshal(msg.Data, v) == nil
}

// =============================================================================
// ROOM LIFECYCLE
// =============================================================================

func (d *Dispatcher) CreateRoom(ctx context.Context, connId, nickname string) {
	nickname = utils.CleanNickname(nickname)
	if nickname == "" {
		log.Debug().Str("player", connId).Msgf("[CreateRoom] %v", internal.ErrMissingNickname)
		d.reply(connId, internal.EventCreateRoom, internal.ReplyData{Error: msgNoNickname})
		return
	}

	pool, err := d.fetchWords(ctx)
	if err != nil {
		log.Error().Err(err).Str("player", connId).Msg("[CreateRoom] word pool unavailable")
		d.reply(connId, internal.EventCreateRoom, internal.ReplyData{Error: msgCannotStart})
		return
	}

	room, err := d.registry.Create(internal.NewPlayer(connId, nickname), pool)
	if err != nil {
		logger := log.Error().Err(err).Str("player", connId)
		switch {
		case errors.Is(err, internal.ErrInsufficientWords):
			logger.Msg("[CreateRoom] word pool too small for a board")
		case errors.Is(err, ErrRoomIdExhausted):
			logger.Msg("[CreateRoom] no free room id")
		default:
			logger.Msg("[CreateRoom] failed to create room")
		}
		d.reply(connId, internal.EventCreateRoom, internal.ReplyData{Error: msgCannotStart})
		return
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	d.transport.JoinChannel(connId, room.Id)
	d.reply(connId, internal.EventCreateRoom, internal.ReplyData{RoomId: room.Id})
	d.broadcast(room)
}

func (d *Dispatcher) JoinRoom(connId, roomId, nickname string) {
	nickname = utils.CleanNickname(nickname)
	if nickname == "" {
		d.reply(connId, internal.EventJoinRoom, internal.ReplyData{Error: msgJoinFailed})
		return
	}
	d.attach(connId, roomId, nickname, internal.EventJoinRoom, msgJoinFailed)
}

// RejoinRoom reattaches a connection after a client reload. It does not
// insist on a nickname.
func (d *Dispatcher) RejoinRoom(connId, roomId, nickname string) {
	d.attach(connId, roomId, utils.CleanNickname(nickname), internal.EventRejoinRoom, msgRejoinFailed)
}

func (d *Dispatcher) attach(connId, roomId, nickname, event, failure string) {
	room, ok := d.registry.Get(roomId)
	if !ok {
		log.Debug().Str("room", roomId).Str("player", connId).Msgf("[%s] %v", event, internal.ErrRoomNotFound)
		d.reply(connId, event, internal.ReplyData{Error: failure})
		return
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.Evicted {
		d.reply(connId, event, internal.ReplyData{Error: failure})
		return
	}

	if room.AddPlayer(connId, nickname) == internal.Changed {
		log.Info().Str("room", roomId).Str("player", connId).Msgf("[%s] %s joined (players=%d)", event, nickname, len(room.Players))
	}
	d.transport.JoinChannel(connId, roomId)
	d.recorder.MarkActive(roomId)
	d.reply(connId, event, internal.ReplyData{RoomId: roomId})
	d.broadcast(room)
}

// LeaveRoom removes the caller from one room and evicts it when empty.
func (d *Dispatcher) LeaveRoom(connId, roomId string) {
	d.transport.LeaveChannel(connId, roomId)
	d.leave(connId, roomId)
}

// Disconnect is the implicit leave for every room the connection had joined.
func (d *Dispatcher) Disconnect(connId string, roomIds []string) {
	log.Debug().Str("player", connId).Strs("rooms", roomIds).Msg("[Disconnect] connection closed")
	for _, roomId := range roomIds {
		d.leave(connId, roomId)
	}
}

func (d *Dispatcher) leave(connId, roomId string) {
	room, ok := d.registry.Get(roomId)
	if !ok {
		return
	}

	room.Mu.Lock()
	removed := room.RemovePlayer(connId) == internal.Changed
	if removed && !room.Evicted && !room.IsEmpty() {
		d.broadcast(room)
	}
	remaining := len(room.Players)
	room.Mu.Unlock()

	if removed {
		log.Info().Str("room", roomId).Str("player", connId).Msgf("[Leave] player left (players=%d)", remaining)
	}
	// Eviction runs after the removal so an emptied room is never reachable.
	d.registry.EvictIfEmpty(roomId)
}

// =============================================================================
// GAME ACTIONS
// =============================================================================

func (d *Dispatcher) SetRole(connId, roomId string, role internal.Role, team internal.Team) {
	d.mutate(connId, roomId, internal.EventSetRole, func(room *internal.Room) internal.Result {
		return room.SetRole(connId, role, team)
	})
}

func (d *Dispatcher) SetClue(connId, roomId, clue string, number int) {
	d.mutate(connId, roomId, internal.EventSetClue, func(room *internal.Room) internal.Result {
		return room.SetClue(connId, clue, number)
	})
}

func (d *Dispatcher) RevealWord(connId, roomId, word string) {
	d.mutate(connId, roomId, internal.EventRevealWord, func(room *internal.Room) internal.Result {
		res := room.RevealWord(connId, word)
		if res == internal.Changed && room.Winner != internal.TeamUnset {
			log.Info().Str("room", roomId).Str("winner", string(room.Winner)).Msg("[RevealWord] game over")
		}
		return res
	})
}

func (d *Dispatcher) EndTurn(connId, roomId string) {
	d.mutate(connId, roomId, internal.EventEndTurn, func(room *internal.Room) internal.Result {
		return room.EndTurn(connId)
	})
}

func (d *Dispatcher) ResetGame(ctx context.Context, connId, roomId string) {
	d.redeal(ctx, connId, roomId, internal.EventResetGame, (*internal.Room).Reset)
}

func (d *Dispatcher) NewGame(ctx context.Context, connId, roomId string) {
	d.redeal(ctx, connId, roomId, internal.EventNewGame, (*internal.Room).NewGame)
}

// redeal fetches words before taking the room lock so no I/O happens inside
// the transition.
func (d *Dispatcher) redeal(ctx context.Context, connId, roomId, event string, op func(*internal.Room, []string) (internal.Result, error)) {
	if _, ok := d.registry.Get(roomId); !ok {
		return
	}
	pool, err := d.fetchWords(ctx)
	if err != nil {
		log.Error().Err(err).Str("room", roomId).Msgf("[%s] word pool unavailable", event)
		return
	}
	d.mutate(connId, roomId, event, func(room *internal.Room) internal.Result {
		res, err := op(room, pool)
		if err != nil {
			log.Error().Err(err).Str("room", roomId).Msgf("[%s] could not deal a new board", event)
		}
		return res
	})
}

// mutate applies op under the room lock and broadcasts when it changed
// something. Rejections are dropped silently.
func (d *Dispatcher) mutate(connId, roomId, event string, op func(*internal.Room) internal.Result) {
	room, ok := d.registry.Get(roomId)
	if !ok {
		log.Debug().Str("room", roomId).Str("player", connId).Msgf("[%s] room not found, dropping", event)
		return
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.Evicted {
		return
	}
	if op(room) == internal.Rejected {
		log.Debug().Str("room", roomId).Str("player", connId).Msgf("[%s] rejected", event)
		return
	}
	d.broadcast(room)
}

// =============================================================================
// BROADCASTING & MESSAGING
// =============================================================================

// broadcast sends the full room state to every member. Caller holds room.Mu.
func (d *Dispatcher) broadcast(room *internal.Room) {
	d.transport.EmitToRoom(room.Id, internal.EventRoomData, room.Snapshot())
}

func (d *Dispatcher) reply(connId, event string, data internal.ReplyData) {
	d.transport.EmitToCaller(connId, event, data)
}

func (d *Dispatcher) fetchWords(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, wordsFetchTimeout)
	defer cancel()
	return d.words.Words(ctx)
}
