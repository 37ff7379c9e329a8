// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/roomsplit/internal/models"
	"github.com/mmynk/roomsplit/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Pragmas go in the DSN so every pooled connection gets them
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer; participant updates arrive concurrently
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateReceipt persists a new receipt to the database.
func (s *SQLiteStore) CreateReceipt(ctx context.Context, receipt *models.Receipt) error {
	// Generate IDs if not set
	if receipt.ID == "" {
		receipt.ID = uuid.New().String()
	}
	if receipt.CreatedAt == 0 {
		receipt.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO receipts (id, title, category, receipt_date, total_amount, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		receipt.ID, receipt.Title, string(receipt.Category), receipt.Date, receipt.TotalAmount, receipt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}

	return nil
}

// CreateParticipants inserts all participants of a receipt in one transaction.
func (s *SQLiteStore) CreateParticipants(ctx context.Context, receiptID string, participants []*models.Participant) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM receipts WHERE id = ?", receiptID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("receipt %s: %w", receiptID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check receipt existence: %w", err)
	}

	var next int
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position) + 1, 0) FROM participants WHERE receipt_id = ?", receiptID,
	).Scan(&next); err != nil {
		return fmt.Errorf("failed to read participant position: %w", err)
	}

	for i, p := range participants {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		p.ReceiptID = receiptID

		_, err = tx.ExecContext(ctx,
			"INSERT INTO participants (id, receipt_id, position, name, amount_owed) VALUES (?, ?, ?, ?, ?)",
			p.ID, receiptID, next+i, p.Name, p.AmountOwed,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetReceipt retrieves a receipt by ID.
func (s *SQLiteStore) GetReceipt(ctx context.Context, receiptID string) (*models.Receipt, error) {
	receipt := &models.Receipt{}
	var category string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, title, category, receipt_date, total_amount, created_at FROM receipts WHERE id = ?",
		receiptID,
	).Scan(&receipt.ID, &receipt.Title, &category, &receipt.Date, &receipt.TotalAmount, &receipt.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("receipt %s: %w", receiptID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	receipt.Category = models.Category(category)

	return receipt, nil
}

// ListParticipants retrieves the participants of a receipt in creation order.
func (s *SQLiteStore) ListParticipants(ctx context.Context, receiptID string) ([]*models.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, receipt_id, name, amount_owed FROM participants WHERE receipt_id = ? ORDER BY position",
		receiptID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []*models.Participant
	for rows.Next() {
		p := &models.Participant{}
		if err := rows.Scan(&p.ID, &p.ReceiptID, &p.Name, &p.AmountOwed); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return participants, nil
}

// UpdateReceiptTotal overwrites the total amount of a receipt.
func (s *SQLiteStore) UpdateReceiptTotal(ctx context.Context, receiptID string, total decimal.Decimal) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE receipts SET total_amount = ? WHERE id = ?",
		total.String(), receiptID,
	)
	if err != nil {
		return fmt.Errorf("failed to update receipt total: %w", err)
	}
	return expectOneRow(res, "receipt", receiptID)
}

// UpdateParticipantAmount overwrites the amount a participant owes.
func (s *SQLiteStore) UpdateParticipantAmount(ctx context.Context, participantID string, amount decimal.Decimal) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE participants SET amount_owed = ? WHERE id = ?",
		amount.String(), participantID,
	)
	if err != nil {
		return fmt.Errorf("failed to update participant amount: %w", err)
	}
	return expectOneRow(res, "participant", participantID)
}

// expectOneRow turns an update that matched nothing into storage.ErrNotFound.
func expectOneRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}
