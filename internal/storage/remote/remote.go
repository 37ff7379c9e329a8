// Package remote implements storage.Store on top of the ReceiptService RPC API,
// so the engine can run against a receipt server.
package remote

import (
	"context"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/roomsplit/internal/models"
	"github.com/mmynk/roomsplit/internal/rpc"
	"github.com/mmynk/roomsplit/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store forwards every operation to a receipt server.
type Store struct {
	client *rpc.ReceiptServiceClient
}

// New creates a Store talking to the server at baseURL.
func New(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Store {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Store{client: rpc.NewReceiptServiceClient(httpClient, baseURL, opts...)}
}

// Close is a no-op; the HTTP client is owned by the caller.
func (s *Store) Close() error {
	return nil
}

// wrap keeps NotFound answers recognizable as storage.ErrNotFound.
func wrap(op string, err error) error {
	if connect.CodeOf(err) == connect.CodeNotFound {
		return fmt.Errorf("%s: %w: %w", op, storage.ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Store) CreateReceipt(ctx context.Context, receipt *models.Receipt) error {
	resp, err := s.client.CreateReceipt(ctx, connect.NewRequest(&rpc.CreateReceiptRequest{
		Title:    receipt.Title,
		Category: string(receipt.Category),
		Date:     receipt.Date,
	}))
	if err != nil {
		return wrap("failed to create receipt", err)
	}
	receipt.ID = resp.Msg.Receipt.ID
	receipt.CreatedAt = resp.Msg.Receipt.CreatedAt
	return nil
}

func (s *Store) CreateParticipants(ctx context.Context, receiptID string, participants []*models.Participant) error {
	names := make([]string, len(participants))
	for i, p := range participants {
		names[i] = p.Name
	}

	resp, err := s.client.CreateParticipants(ctx, connect.NewRequest(&rpc.CreateParticipantsRequest{
		ReceiptID: receiptID,
		Names:     names,
	}))
	if err != nil {
		return wrap("failed to create participants", err)
	}
	if len(resp.Msg.Participants) != len(participants) {
		return fmt.Errorf("failed to create participants: server returned %d of %d", len(resp.Msg.Participants), len(participants))
	}

	for i, p := range participants {
		p.ID = resp.Msg.Participants[i].ID
		p.ReceiptID = receiptID
	}
	return nil
}

func (s *Store) GetReceipt(ctx context.Context, receiptID string) (*models.Receipt, error) {
	resp, err := s.client.GetReceipt(ctx, connect.NewRequest(&rpc.GetReceiptRequest{ReceiptID: receiptID}))
	if err != nil {
		return nil, wrap("failed to get receipt", err)
	}
	return rpc.ReceiptFromMessage(resp.Msg.Receipt), nil
}

func (s *Store) ListParticipants(ctx context.Context, receiptID string) ([]*models.Participant, error) {
	resp, err := s.client.ListParticipants(ctx, connect.NewRequest(&rpc.ListParticipantsRequest{ReceiptID: receiptID}))
	if err != nil {
		return nil, wrap("failed to list participants", err)
	}

	participants := make([]*models.Participant, len(resp.Msg.Participants))
	for i, p := range resp.Msg.Participants {
		participants[i] = rpc.ParticipantFromMessage(p)
	}
	return participants, nil
}

func (s *Store) UpdateReceiptTotal(ctx context.Context, receiptID string, total decimal.Decimal) error {
	_, err := s.client.UpdateReceiptTotal(ctx, connect.NewRequest(&rpc.UpdateReceiptTotalRequest{
		ReceiptID: receiptID,
		Total:     total,
	}))
	if err != nil {
		return wrap("failed to update receipt total", err)
	}
	return nil
}

func (s *Store) UpdateParticipantAmount(ctx context.Context, participantID string, amount decimal.Decimal) error {
	_, err := s.client.UpdateParticipantAmount(ctx, connect.NewRequest(&rpc.UpdateParticipantAmountRequest{
		ParticipantID: participantID,
		Amount:        amount,
	}))
	if err != nil {
		return wrap("failed to update participant amount", err)
	}
	return nil
}
