package game

import "context"

// Transport delivers events to connections. Emit calls must not block on
// the network; the room lock is held while they run.
type Transport interface {
	JoinChannel(connId, roomId string)
	LeaveChannel(connId, roomId string)
	EmitToRoom(roomId, event string, data any)
	EmitToCaller(connId, event string, data any)
}

// Persistence keeps the durable room record. Results are never read back by
// the game.
type Persistence interface {
	RecordCreated(ctx context.Context, id, creator string) error
	MarkActive(ctx context.Context, id string) error
	DeleteOrDeactivate(ctx context.Context, id string) error
}

// WordPool supplies candidate words, queried once per board.
type WordPool interface {
	Words(ctx context.Context) ([]string, error)
}
