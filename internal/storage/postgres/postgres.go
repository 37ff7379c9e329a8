// Package postgres provides a PostgreSQL-backed implementation of the storage.Store interface.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mmynk/roomsplit/internal/models"
	"github.com/mmynk/roomsplit/internal/storage"
)

// Ensure PostgresStore implements storage.Store
var _ storage.Store = (*PostgresStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS receipts (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    category TEXT NOT NULL,
    receipt_date TEXT NOT NULL,
    total_amount NUMERIC,
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS participants (
    id TEXT PRIMARY KEY,
    receipt_id TEXT NOT NULL REFERENCES receipts(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    amount_owed NUMERIC
);

CREATE INDEX IF NOT EXISTS idx_participants_receipt_id ON participants(receipt_id);
`

// PostgresStore implements storage.Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and ensures the schema exists.
// maxConns <= 0 keeps the pgxpool default.
func New(ctx context.Context, connString string, maxConns int) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = poolSize(maxConns)
	}
	cfg.HealthCheckPeriod = 15 * time.Second
	cfg.ConnConfig.ConnectTimeout = 5 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// poolSize converts a configured connection count to pgxpool's int32,
// clamping instead of wrapping around.
func poolSize(n int) int32 {
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(n)
}

// Close closes every pooled connection.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// CreateReceipt persists a new receipt.
func (s *PostgresStore) CreateReceipt(ctx context.Context, receipt *models.Receipt) error {
	if receipt.ID == "" {
		receipt.ID = uuid.New().String()
	}
	if receipt.CreatedAt == 0 {
		receipt.CreatedAt = time.Now().Unix()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO receipts (id, title, category, receipt_date, total_amount, created_at)
		 VALUES ($1, $2, $3, $4, $5::numeric, $6)`,
		receipt.ID, receipt.Title, string(receipt.Category), receipt.Date, nullableText(receipt.TotalAmount), receipt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}
	return nil
}

// CreateParticipants inserts all participants of a receipt in one transaction.
func (s *PostgresStore) CreateParticipants(ctx context.Context, receiptID string, participants []*models.Participant) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var next int
	err = tx.QueryRow(ctx,
		`SELECT COALESCE((SELECT MAX(position) + 1 FROM participants WHERE receipt_id = r.id), 0)
		 FROM receipts r WHERE r.id = $1 FOR UPDATE`,
		receiptID,
	).Scan(&next)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("receipt %s: %w", receiptID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read participant position: %w", err)
	}

	batch := &pgx.Batch{}
	for i, p := range participants {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		p.ReceiptID = receiptID
		batch.Queue(
			"INSERT INTO participants (id, receipt_id, position, name, amount_owed) VALUES ($1, $2, $3, $4, $5::numeric)",
			p.ID, receiptID, next+i, p.Name, nullableText(p.AmountOwed),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert participants: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetReceipt retrieves a receipt by ID.
func (s *PostgresStore) GetReceipt(ctx context.Context, receiptID string) (*models.Receipt, error) {
	receipt := &models.Receipt{}
	var category string
	var total *string
	err := s.pool.QueryRow(ctx,
		"SELECT id, title, category, receipt_date, total_amount::text, created_at FROM receipts WHERE id = $1",
		receiptID,
	).Scan(&receipt.ID, &receipt.Title, &category, &receipt.Date, &total, &receipt.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("receipt %s: %w", receiptID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	receipt.Category = models.Category(category)
	if receipt.TotalAmount, err = parseNullable(total); err != nil {
		return nil, fmt.Errorf("failed to parse receipt total: %w", err)
	}
	return receipt, nil
}

// ListParticipants retrieves the participants of a receipt in creation order.
func (s *PostgresStore) ListParticipants(ctx context.Context, receiptID string) ([]*models.Participant, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, receipt_id, name, amount_owed::text FROM participants WHERE receipt_id = $1 ORDER BY position",
		receiptID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []*models.Participant
	for rows.Next() {
		p := &models.Participant{}
		var owed *string
		if err := rows.Scan(&p.ID, &p.ReceiptID, &p.Name, &owed); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		if p.AmountOwed, err = parseNullable(owed); err != nil {
			return nil, fmt.Errorf("failed to parse owed amount: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return participants, nil
}

// UpdateReceiptTotal overwrites the total amount of a receipt.
func (s *PostgresStore) UpdateReceiptTotal(ctx context.Context, receiptID string, total decimal.Decimal) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE receipts SET total_amount = $1::numeric WHERE id = $2",
		total.String(), receiptID,
	)
	if err != nil {
		return fmt.Errorf("failed to update receipt total: %w", err)
	}
	return expectOneRow(tag, "receipt", receiptID)
}

// UpdateParticipantAmount overwrites the amount a participant owes.
func (s *PostgresStore) UpdateParticipantAmount(ctx context.Context, participantID string, amount decimal.Decimal) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE participants SET amount_owed = $1::numeric WHERE id = $2",
		amount.String(), participantID,
	)
	if err != nil {
		return fmt.Errorf("failed to update participant amount: %w", err)
	}
	return expectOneRow(tag, "participant", participantID)
}

func expectOneRow(tag pgconn.CommandTag, kind, id string) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}

// nullableText renders a NullDecimal as a NUMERIC literal or SQL NULL.
func nullableText(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.String()
	return &s
}

func parseNullable(s *string) (decimal.NullDecimal, error) {
	if s == nil {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
