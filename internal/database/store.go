package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for delivery log operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// RecordDelivery inserts one delivery outcome. CreatedAt defaults to now.
	RecordDelivery(ctx context.Context, delivery *Delivery) error

	// CountDeliveries returns how many deliveries were recorded for a chat.
	CountDeliveries(ctx context.Context, chatID int64) (int, error)

	// RecentDeliveries returns up to limit deliveries for a chat, newest first.
	RecentDeliveries(ctx context.Context, chatID int64, limit int) ([]Delivery, error)

	// DeleteDeliveriesBefore removes deliveries created before cutoff and
	// returns how many rows were deleted.
	DeleteDeliveriesBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// RecordDelivery inserts one delivery outcome and sets its ID.
func (s *sqlxStore) RecordDelivery(ctx context.Context, delivery *Delivery) error {
	if delivery == nil {
		return errors.New("cannot record nil delivery")
	}
	if delivery.ChatID == 0 {
		return errors.New("delivery must have a non-zero chat_id")
	}
	if delivery.Status != DeliveryStatusSent && delivery.Status != DeliveryStatusFailed {
		return fmt.Errorf("invalid delivery status %q", delivery.Status)
	}
	if delivery.CreatedAt.IsZero() {
		delivery.CreatedAt = time.Now().UTC()
	}

	query := `
        INSERT INTO deliveries (chat_id, timer_id, status, error, created_at)
        VALUES (:chat_id, :timer_id, :status, :error, :created_at);
    `

	result, err := s.db.NamedExecContext(ctx, query, delivery)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error recording delivery", "chat_id", delivery.ChatID, "error", err)
		return fmt.Errorf("failed to record delivery (chat %d): %w", delivery.ChatID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get delivery id: %w", err)
	}
	delivery.ID = id

	s.logger.DebugContext(ctx, "Delivery recorded", "id", id, "chat_id", delivery.ChatID, "status", delivery.Status)
	return nil
}

// CountDeliveries returns how many deliveries were recorded for a chat.
func (s *sqlxStore) CountDeliveries(ctx context.Context, chatID int64) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM deliveries WHERE chat_id = ?`, chatID); err != nil {
		return 0, fmt.Errorf("failed to count deliveries for chat %d: %w", chatID, err)
	}
	return count, nil
}

// RecentDeliveries returns up to limit deliveries for a chat, newest first.
func (s *sqlxStore) RecentDeliveries(ctx context.Context, chatID int64, limit int) ([]Delivery, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	var deliveries []Delivery
	query := `SELECT id, chat_id, timer_id, status, error, created_at
	          FROM deliveries WHERE chat_id = ? ORDER BY id DESC LIMIT ?`
	if err := s.db.SelectContext(ctx, &deliveries, query, chatID, limit); err != nil {
		return nil, fmt.Errorf("failed to get deliveries for chat %d: %w", chatID, err)
	}
	return deliveries, nil
}

// DeleteDeliveriesBefore removes deliveries created before cutoff.
func (s *sqlxStore) DeleteDeliveriesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM deliveries WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete old deliveries", "cutoff", cutoff, "error", err)
		return 0, fmt.Errorf("failed to delete deliveries before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	s.logger.InfoContext(ctx, "Deleted old deliveries", "count", deleted, "cutoff", cutoff)
	return deleted, nil
}

// RunSQLMaintenance executes VACUUM and PRAGMA optimize on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite.
	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
		s.logger.WarnContext(ctx, "PRAGMA optimize failed", "error", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	return nil
}
