package rpc

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/roomsplit/internal/models"
)

// Receipt is the wire form of models.Receipt.
type Receipt struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Category    string              `json:"category"`
	Date        string              `json:"date"`
	TotalAmount decimal.NullDecimal `json:"total_amount"`
	CreatedAt   int64               `json:"created_at"`
}

// Participant is the wire form of models.Participant.
type Participant struct {
	ID         string              `json:"id"`
	ReceiptID  string              `json:"receipt_id"`
	Name       string              `json:"name"`
	AmountOwed decimal.NullDecimal `json:"amount_owed"`
}

type CreateReceiptRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Date     string `json:"date"`
}

type CreateReceiptResponse struct {
	Receipt *Receipt `json:"receipt"`
}

type CreateParticipantsRequest struct {
	ReceiptID string   `json:"receipt_id"`
	Names     []string `json:"names"`
}

type CreateParticipantsResponse struct {
	Participants []*Participant `json:"participants"`
}

type GetReceiptRequest struct {
	ReceiptID string `json:"receipt_id"`
}

type GetReceiptResponse struct {
	Receipt *Receipt `json:"receipt"`
}

type ListParticipantsRequest struct {
	ReceiptID string `json:"receipt_id"`
}

type ListParticipantsResponse struct {
	Participants []*Participant `json:"participants"`
}

type UpdateReceiptTotalRequest struct {
	ReceiptID string          `json:"receipt_id"`
	Total     decimal.Decimal `json:"total"`
}

type UpdateReceiptTotalResponse struct{}

type UpdateParticipantAmountRequest struct {
	ParticipantID string          `json:"participant_id"`
	Amount        decimal.Decimal `json:"amount"`
}

type UpdateParticipantAmountResponse struct{}

// ComputeAllocationRequest previews an allocation without touching the store.
// Total and ManualAmounts are raw user input.
type ComputeAllocationRequest struct {
	Total          string            `json:"total"`
	Mode           string            `json:"mode"`
	ParticipantIDs []string          `json:"participant_ids"`
	SelectedIDs    []string          `json:"selected_ids"`
	ManualAmounts  map[string]string `json:"manual_amounts"`
}

type ComputeAllocationResponse struct {
	Amounts map[string]decimal.Decimal `json:"amounts"`
}

// ReceiptScoped is implemented by requests that address one receipt.
type ReceiptScoped interface {
	GetReceiptID() string
}

// ParticipantScoped is implemented by requests that address one participant.
type ParticipantScoped interface {
	GetParticipantID() string
}

func (r *CreateParticipantsRequest) GetReceiptID() string { return r.ReceiptID }
func (r *GetReceiptRequest) GetReceiptID() string { return r.ReceiptID }
func (r *ListParticipantsRequest) GetReceiptID() string { return r.ReceiptID }
func (r *UpdateReceiptTotalRequest) GetReceiptID() string { return r.ReceiptID }
func (r *UpdateParticipantAmountRequest) GetParticipantID() string { return r.ParticipantID }

// ReceiptToMessage converts a receipt model to its wire form.
func ReceiptToMessage(r *models.Receipt) *Receipt {
	return &Receipt{
		ID:          r.ID,
		Title:       r.Title,
		Category:    string(r.Category),
		Date:        r.Date,
		TotalAmount: r.TotalAmount,
		CreatedAt:   r.CreatedAt,
	}
}

// ReceiptFromMessage converts a wire receipt to the model.
func ReceiptFromMessage(r *Receipt) *models.Receipt {
	return &models.Receipt{
		ID:          r.ID,
		Title:       r.Title,
		Category:    models.Category(r.Category),
		Date:        r.Date,
		TotalAmount: r.TotalAmount,
		CreatedAt:   r.CreatedAt,
	}
}

// ParticipantToMessage converts a participant model to its wire form.
func ParticipantToMessage(p *models.Participant) *Participant {
	return &Participant{
		ID:         p.ID,
		ReceiptID:  p.ReceiptID,
		Name:       p.Name,
		AmountOwed: p.AmountOwed,
	}
}

// ParticipantFromMessage converts a wire participant to the model.
func ParticipantFromMessage(p *Participant) *models.Participant {
	return &models.Participant{
		ID:         p.ID,
		ReceiptID:  p.ReceiptID,
		Name:       p.Name,
		AmountOwed: p.AmountOwed,
	}
}
