package internal

import "errors"

// Inbound event names, also used as the type of direct replies.
const (
	EventCreateRoom = "create-room"
	EventJoinRoom   = "join-room"
	EventRejoinRoom = "rejoin-room"
	EventLeaveRoom  = "leave-room"
	EventSetRole    = "set-role"
	EventSetClue    = "set-clue"
	EventRevealWord = "reveal-word"
	EventEndTurn    = "end-turn"
	EventResetGame  = "reset-game"
	EventNewGame    = "new-game"

	// Outbound only
	EventRoomData  = "room-data"
	EventConnected = "connected"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrMissingNickname = errors.New("nickname is required")
)

type Message[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}

type CreateRoomData struct {
	Nickname string `json:"nickname"`
}

type JoinRoomData struct {
	RoomId   string `json:"roomId"`
	Nickname string `json:"nickname"`
}

type SetRoleData struct {
	RoomId string `json:"roomId"`
	Role   Role   `json:"role"`
	Team   Team   `json:"team"`
}

type SetClueData struct {
	RoomId string `json:"roomId"`
	Clue   string `json:"clue"`
	Number int    `json:"number"`
}

type RevealWordData struct {
	RoomId string `json:"roomId"`
	Word   string `json:"word"`
}

type RoomRefData struct {
	RoomId string `json:"roomId"`
}

// ReplyData is sent to the caller alone. Error is empty on success.
type ReplyData struct {
	RoomId string `json:"room_id,omitempty"`
	Error  string `json:"error,omitempty"`
}

type ConnectedData struct {
	Id string `json:"id"`
}
