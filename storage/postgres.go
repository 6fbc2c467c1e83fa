package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rssreader/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX - подмножество pgxpool.Pool, которое нужно хранилищу.
// Позволяет подменять пул в тестах.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

const defaultListLimit = 20

type PostgresConversionDB struct {
	db  DBTX
	log *slog.Logger
}

func NewPostgresConversionDB(db DBTX, log *slog.Logger) *PostgresConversionDB {
	log.Info("Initializing Postgres conversion history")
	return &PostgresConversionDB{
		db:  db,
		log: log.With(slog.String("component", "storage")),
	}
}

func (s *PostgresConversionDB) Close() {
	s.log.Info("Closing database connection pool")
	s.db.Close()
}

// SaveConversion сохраняет запись о выполненной конвертации в таблицу conversions.
// Длительность хранится в миллисекундах (duration_ms).
func (s *PostgresConversionDB) SaveConversion(ctx context.Context, c domain.Conversion) error {
	const op = "storage.postgres.SaveConversion"
	query := `
	INSERT INTO conversions (id, feed_url, output, channel_title, items, duration_ms, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := s.db.Exec(ctx, query,
		c.ID,
		c.FeedURL,
		c.Output,
		c.ChannelTitle,
		c.Items,
		c.Duration.Milliseconds(),
		c.CreatedAt,
	)
	if err != nil {
		s.log.Error("Failed to save conversion",
			slog.String("op", op),
			slog.String("url", c.FeedURL),
			slog.Any("error", err),
		)
		return fmt.Errorf("%s: failed to insert conversion: %w", op, err)
	}
	return nil
}

// ListConversions возвращает последние n конвертаций, новые первыми.
// При n <= 0 используется defaultListLimit.
func (s *PostgresConversionDB) ListConversions(ctx context.Context, n int) ([]domain.Conversion, error) {
	limit := n
	if limit <= 0 {
		limit = defaultListLimit
	}
	const op = "storage.postgres.ListConversions"
	log := s.log.With(slog.String("op", op), slog.Int("limit", limit))
	query := `
	SELECT id, feed_url, output, channel_title, items, duration_ms, created_at
	FROM conversions
	ORDER BY created_at DESC
	LIMIT $1;
	`
	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		log.Error("Database query failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}
	defer rows.Close()
	conversions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Conversion, error) {
		var c domain.Conversion
		var durationMs int64
		err := row.Scan(
			&c.ID,
			&c.FeedURL,
			&c.Output,
			&c.ChannelTitle,
			&c.Items,
			&durationMs,
			&c.CreatedAt,
		)
		c.Duration = time.Duration(durationMs) * time.Millisecond
		return c, err
	})
	if err != nil {
		log.Error("Failed to collect rows", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to scan row: %w", op, err)
	}
	log.Debug("Retrieved conversions", slog.Int("count", len(conversions)))
	return conversions, nil
}
