package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/scythe504/spywords-backend/internal"
)

// --- Transport ---

type MockTransport struct {
	mock.Mock
}

func newMockTransport() *MockTransport {
	m := &MockTransport{}
	m.On("JoinChannel", mock.Anything, mock.Anything).Return()
	m.On("LeaveChannel", mock.Anything, mock.Anything).Return()
	m.On("EmitToRoom", mock.Anything, mock.Anything, mock.Anything).Return()
	m.On("EmitToCaller", mock.Anything, mock.Anything, mock.Anything).Return()
	return m
}

func (m *MockTransport) JoinChannel(connId, roomId string) {
	m.Called(connId, roomId)
}

func (m *MockTransport) LeaveChannel(connId, roomId string) {
	m.Called(connId, roomId)
}

func (m *MockTransport) EmitToRoom(roomId, event string, data any) {
	m.Called(roomId, event, data)
}

func (m *MockTransport) EmitToCaller(connId, event string, data any) {
	m.Called(connId, event, data)
}

func (m *MockTransport) calls(method string) []mock.Call {
	var out []mock.Call
	for _, c := range m.Calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// broadcasts returns every room-data state sent to roomId, oldest first.
func (m *MockTransport) broadcasts(roomId string) []internal.RoomState {
	var states []internal.RoomState
	for _, c := range m.calls("EmitToRoom") {
		if c.Arguments.String(0) == roomId && c.Arguments.String(1) == internal.EventRoomData {
			states = append(states, c.Arguments.Get(2).(internal.RoomState))
		}
	}
	return states
}

func (m *MockTransport) lastState(t *testing.T, roomId string) internal.RoomState {
	t.Helper()
	states := m.broadcasts(roomId)
	require.NotEmpty(t, states, "no room-data broadcast for %s", roomId)
	return states[len(states)-1]
}

func (m *MockTransport) replies(connId, event string) []internal.ReplyData {
	var out []internal.ReplyData
	for _, c := range m.calls("EmitToCaller") {
		if c.Arguments.String(0) == connId && c.Arguments.String(1) == event {
			out = append(out, c.Arguments.Get(2).(internal.ReplyData))
		}
	}
	return out
}

func (m *MockTransport) lastReply(t *testing.T, connId, event string) internal.ReplyData {
	t.Helper()
	replies := m.replies(connId, event)
	require.NotEmpty(t, replies, "no %s reply for %s", event, connId)
	return replies[len(replies)-1]
}

// --- Persistence ---

type MockPersistence struct {
	mock.Mock
}

func (m *MockPersistence) RecordCreated(ctx context.Context, id, creator string) error {
	args := m.Called(ctx, id, creator)
	return args.Error(0)
}

func (m *MockPersistence) MarkActive(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPersistence) DeleteOrDeactivate(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newMockPersistence(err error) *MockPersistence {
	m := &MockPersistence{}
	m.On("RecordCreated", mock.Anything, mock.Anything, mock.Anything).Return(err)
	m.On("MarkActive", mock.Anything, mock.Anything).Return(err)
	m.On("DeleteOrDeactivate", mock.Anything, mock.Anything).Return(err)
	return m
}

// --- WordPool ---

type MockWordPool struct {
	mock.Mock
}

func (m *MockWordPool) Words(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	words, _ := args.Get(0).([]string)
	return words, args.Error(1)
}
