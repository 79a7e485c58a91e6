package game

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Recorder pushes room lifecycle writes to Persistence in the background so
// a slow or failing database never holds up a room.
type Recorder struct {
	store   Persistence
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewRecorder wraps store. A nil store turns every call into a no-op.
func NewRecorder(store Persistence, timeout time.Duration) *Recorder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Recorder{store: store, timeout: timeout}
}

func (r *Recorder) RecordCreated(id, creator string) {
	r.run("RecordCreated", id, func(ctx context.Context) error {
		return r.store.RecordCreated(ctx, id, creator)
	})
}

func (r *Recorder) MarkActive(id string) {
	r.run("MarkActive", id, func(ctx context.Context) error {
		return r.store.MarkActive(ctx, id)
	})
}

func (r *Recorder) DeleteOrDeactivate(id string) {
	r.run("DeleteOrDeactivate", id, func(ctx context.Context) error {
		return r.store.DeleteOrDeactivate(ctx, id)
	})
}

// Wait blocks until every write started so far has finished.
func (r *Recorder) Wait() {
	r.wg.Wait()
}

func (r *Recorder) run(op, roomId string, fn func(ctx context.Context) error) {
	if r == nil || r.store == nil {
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			log.Error().Err(err).Str("room", roomId).Msgf("[Recorder] %s failed", op)
			return
		}
		log.Debug().Str("room", roomId).Msgf("[Recorder] %s done", op)
	}()
}
