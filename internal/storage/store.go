// Package storage provides abstractions for the authoritative receipt store.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mmynk/roomsplit/internal/models"
)

// ErrNotFound is returned (wrapped) when a receipt or participant does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the operations the engine needs from the authoritative store.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, a
// remote RPC server) without changing the engine.
type Store interface {
	// CreateReceipt persists a new receipt.
	// The receipt.ID and receipt.CreatedAt fields are populated by the store.
	CreateReceipt(ctx context.Context, receipt *models.Receipt) error

	// CreateParticipants persists a batch of participants for a receipt.
	// Each participant's ID and ReceiptID are populated by the store.
	CreateParticipants(ctx context.Context, receiptID string, participants []*models.Participant) error

	// GetReceipt retrieves a receipt by its ID.
	GetReceipt(ctx context.Context, receiptID string) (*models.Receipt, error)

	// ListParticipants retrieves the participants of a receipt in creation order.
	ListParticipants(ctx context.Context, receiptID string) ([]*models.Participant, error)

	// UpdateReceiptTotal overwrites a receipt's total amount.
	UpdateReceiptTotal(ctx context.Context, receiptID string, total decimal.Decimal) error

	// UpdateParticipantAmount overwrites the amount a participant owes.
	UpdateParticipantAmount(ctx context.Context, participantID string, amount decimal.Decimal) error

	// Close releases any resources held by the store.
	Close() error
}
