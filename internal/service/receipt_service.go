// Package service implements the Connect handlers of the receipt server.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/roomsplit/internal/calculator"
	"github.com/mmynk/roomsplit/internal/models"
	"github.com/mmynk/roomsplit/internal/rpc"
	"github.com/mmynk/roomsplit/internal/storage"
)

var _ rpc.ReceiptServiceHandler = (*ReceiptService)(nil)

// ReceiptService exposes a storage.Store over Connect.
type ReceiptService struct {
	store storage.Store
}

// NewReceiptService creates a new ReceiptService with the given storage backend.
func NewReceiptService(store storage.Store) *ReceiptService {
	return &ReceiptService{store: store}
}

// storeError maps a storage failure to a Connect error.
func storeError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return connect.NewError(connect.CodeNotFound, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

// checkAmount rejects negative or out-of-range amounts before they reach the store.
func checkAmount(field string, d decimal.Decimal) error {
	if err := calculator.CheckAmount(d); err != nil {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%s: %w", field, err))
	}
	return nil
}

// CreateReceipt records a new receipt. The category must be one of the known
// categories; the title and date are stored as given.
func (s *ReceiptService) CreateReceipt(ctx context.Context, req *connect.Request[rpc.CreateReceiptRequest]) (*connect.Response[rpc.CreateReceiptResponse], error) {
	category, err := models.ParseCategory(req.Msg.Category)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	receipt := &models.Receipt{
		Title:    req.Msg.Title,
		Category: category,
		Date:     req.Msg.Date,
	}
	if err := s.store.CreateReceipt(ctx, receipt); err != nil {
		slog.Error("CreateReceipt failed", "error", err)
		return nil, storeError(err)
	}

	slog.Debug("Receipt stored", "receipt_id", receipt.ID, "category", receipt.Category)
	return connect.NewResponse(&rpc.CreateReceiptResponse{Receipt: rpc.ReceiptToMessage(receipt)}), nil
}

// CreateParticipants adds named participants to an existing receipt in one batch.
func (s *ReceiptService) CreateParticipants(ctx context.Context, req *connect.Request[rpc.CreateParticipantsRequest]) (*connect.Response[rpc.CreateParticipantsResponse], error) {
	if req.Msg.ReceiptID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("receipt_id is required"))
	}

	participants := make([]*models.Participant, len(req.Msg.Names))
	for i, name := range req.Msg.Names {
		if strings.TrimSpace(name) == "" {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("participant %d has no name", i+1))
		}
		participants[i] = &models.Participant{Name: name}
	}

	if err := s.store.CreateParticipants(ctx, req.Msg.ReceiptID, participants); err != nil {
		slog.Error("CreateParticipants failed", "receipt_id", req.Msg.ReceiptID, "error", err)
		return nil, storeError(err)
	}

	resp := &rpc.CreateParticipantsResponse{Participants: make([]*rpc.Participant, len(participants))}
	for i, p := range participants {
		resp.Participants[i] = rpc.ParticipantToMessage(p)
	}
	return connect.NewResponse(resp), nil
}

// GetReceipt returns a receipt by ID.
func (s *ReceiptService) GetReceipt(ctx context.Context, req *connect.Request[rpc.GetReceiptRequest]) (*connect.Response[rpc.GetReceiptResponse], error) {
	receipt, err := s.store.GetReceipt(ctx, req.Msg.ReceiptID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("GetReceipt failed", "receipt_id", req.Msg.ReceiptID, "error", err)
		}
		return nil, storeError(err)
	}
	return connect.NewResponse(&rpc.GetReceiptResponse{Receipt: rpc.ReceiptToMessage(receipt)}), nil
}

// ListParticipants returns the participants of a receipt in creation order.
func (s *ReceiptService) ListParticipants(ctx context.Context, req *connect.Request[rpc.ListParticipantsRequest]) (*connect.Response[rpc.ListParticipantsResponse], error) {
	participants, err := s.store.ListParticipants(ctx, req.Msg.ReceiptID)
	if err != nil {
		slog.Error("ListParticipants failed", "receipt_id", req.Msg.ReceiptID, "error", err)
		return nil, storeError(err)
	}

	resp := &rpc.ListParticipantsResponse{Participants: make([]*rpc.Participant, len(participants))}
	for i, p := range participants {
		resp.Participants[i] = rpc.ParticipantToMessage(p)
	}
	return connect.NewResponse(resp), nil
}

// UpdateReceiptTotal overwrites a receipt's total.
func (s *ReceiptService) UpdateReceiptTotal(ctx context.Context, req *connect.Request[rpc.UpdateReceiptTotalRequest]) (*connect.Response[rpc.UpdateReceiptTotalResponse], error) {
	if err := checkAmount("total", req.Msg.Total); err != nil {
		return nil, err
	}
	if err := s.store.UpdateReceiptTotal(ctx, req.Msg.ReceiptID, req.Msg.Total); err != nil {
		slog.Error("UpdateReceiptTotal failed", "receipt_id", req.Msg.ReceiptID, "error", err)
		return nil, storeError(err)
	}
	return connect.NewResponse(&rpc.UpdateReceiptTotalResponse{}), nil
}

// UpdateParticipantAmount overwrites what a participant owes.
func (s *ReceiptService) UpdateParticipantAmount(ctx context.Context, req *connect.Request[rpc.UpdateParticipantAmountRequest]) (*connect.Response[rpc.UpdateParticipantAmountResponse], error) {
	if err := checkAmount("amount", req.Msg.Amount); err != nil {
		return nil, err
	}
	if err := s.store.UpdateParticipantAmount(ctx, req.Msg.ParticipantID, req.Msg.Amount); err != nil {
		slog.Error("UpdateParticipantAmount failed", "participant_id", req.Msg.ParticipantID, "error", err)
		return nil, storeError(err)
	}
	return connect.NewResponse(&rpc.UpdateParticipantAmountResponse{}), nil
}

// ComputeAllocation previews who owes what for the given inputs without
// writing anything.
func (s *ReceiptService) ComputeAllocation(ctx context.Context, req *connect.Request[rpc.ComputeAllocationRequest]) (*connect.Response[rpc.ComputeAllocationResponse], error) {
	mode := models.SplitEqual
	if req.Msg.Mode != "" {
		var err error
		if mode, err = models.ParseSplitMode(req.Msg.Mode); err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
	}

	selected := make(map[string]bool, len(req.Msg.SelectedIDs))
	for _, id := range req.Msg.SelectedIDs {
		selected[id] = true
	}

	owed := calculator.Allocate(calculator.AllocationInput{
		Total:        calculator.ParseAmount(req.Msg.Total),
		Mode:         mode,
		Participants: req.Msg.ParticipantIDs,
		Selected:     selected,
		Manual:       req.Msg.ManualAmounts,
	})

	slog.Debug("Allocation computed", "mode", mode, "participants", len(owed))
	return connect.NewResponse(&rpc.ComputeAllocationResponse{Amounts: owed}), nil
}
