package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/scythe504/spywords-backend/internal"
)

var (
	ErrUnexpectedDatabase = errors.New("unexpected database error")
	ErrRecordNotFound     = errors.New("room record not found")
)

// Service is the durable side of the game: one row per room plus an
// optional word table. In-progress board state never reaches it.
type Service struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, connString string) (*Service, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedDatabase, err)
	}
	return &Service{pool: pool}, nil
}

// =============================================================================
// ROOM RECORDS
// =============================================================================

func (s *Service) RecordCreated(ctx context.Context, id, creator string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO rooms (id, creator, created_at, last_active, active)
		VALUES ($1, $2, NOW(), NOW(), TRUE)
		ON CONFLICT (id) DO UPDATE
		SET creator = EXCLUDED.creator, created_at = NOW(), last_active = NOW(), active = TRUE`,
		id, creator)
	return wrap(err)
}

func (s *Service) MarkActive(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "UPDATE rooms SET last_active = NOW(), active = TRUE WHERE id = $1", id)
	if err != nil {
		return wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// DeleteOrDeactivate keeps the row for the recent rooms listing but flags it
// inactive.
func (s *Service) DeleteOrDeactivate(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "UPDATE rooms SET active = FALSE, last_active = NOW() WHERE id = $1", id)
	if err != nil {
		return wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *Service) GetRoom(ctx context.Context, id string) (internal.RoomRecord, error) {
	var rec internal.RoomRecord
	err := s.pool.QueryRow(ctx,
		"SELECT id, creator, created_at, last_active, active FROM rooms WHERE id = $1", id,
	).Scan(&rec.Id, &rec.Creator, &rec.CreatedAt, &rec.LastActive, &rec.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return internal.RoomRecord{}, ErrRecordNotFound
	}
	return rec, wrap(err)
}

// RecentRooms lists the newest room records first.
func (s *Service) RecentRooms(ctx context.Context, limit int) ([]internal.RoomRecord, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, creator, created_at, last_active, active FROM rooms ORDER BY created_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, wrap(err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (internal.RoomRecord, error) {
		var rec internal.RoomRecord
		err := row.Scan(&rec.Id, &rec.Creator, &rec.CreatedAt, &rec.LastActive, &rec.Active)
		return rec, err
	})
	if err != nil {
		return nil, wrap(err)
	}
	return records, nil
}

// =============================================================================
// WORDS
// =============================================================================

// Words returns the full word table. It satisfies the game word pool.
func (s *Service) Words(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, "SELECT word FROM words ORDER BY id")
	if err != nil {
		return nil, wrap(err)
	}
	words, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, wrap(err)
	}
	return words, nil
}

// AddWords inserts words, ignoring ones already present. Returns how many
// were new.
func (s *Service) AddWords(ctx context.Context, words []string) (int, error) {
	batch := &pgx.Batch{}
	for _, w := range words {
		batch.Queue("INSERT INTO words (word) VALUES ($1) ON CONFLICT (word) DO NOTHING", w)
	}
	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	added := 0
	for range words {
		tag, err := results.Exec()
		if err != nil {
			return added, wrap(err)
		}
		added += int(tag.RowsAffected())
	}
	return added, nil
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Health pings the pool and returns a small status map for the health route.
func (s *Service) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	stats := make(map[string]string)
	if err := s.pool.Ping(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = err.Error()
		log.Error().Err(err).Msg("[Health] database down")
		return stats
	}

	poolStats := s.pool.Stat()
	stats["status"] = "up"
	stats["message"] = "It's healthy"
	stats["total_connections"] = fmt.Sprint(poolStats.TotalConns())
	stats["idle_connections"] = fmt.Sprint(poolStats.IdleConns())
	stats["acquired_connections"] = fmt.Sprint(poolStats.AcquiredConns())
	return stats
}

func (s *Service) Close() {
	log.Info().Msg("[Close] closing database pool")
	s.pool.Close()
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%w: %s (%s): %w", ErrUnexpectedDatabase, pgErr.Message, pgErr.Code, err)
	}
	return fmt.Errorf("%w: %w", ErrUnexpectedDatabase, err)
}
