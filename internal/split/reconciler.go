package split

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/roomsplit/internal/calculator"
	"github.com/mmynk/roomsplit/internal/history"
	"github.com/mmynk/roomsplit/internal/models"
	"github.com/mmynk/roomsplit/internal/storage"
)

// DefaultTitle is used when a receipt is created without a title.
const DefaultTitle = "GROCERY RUN"

// Reconciler creates receipts, loads them for editing and commits splits.
type Reconciler struct {
	store  storage.Store
	mirror *history.Mirror
}

// NewReconciler creates a Reconciler. mirror may be nil to skip local history.
func NewReconciler(store storage.Store, mirror *history.Mirror) *Reconciler {
	return &Reconciler{store: store, mirror: mirror}
}

// NewReceipt is the input for creating a receipt room.
type NewReceipt struct {
	Title       string
	Category    models.Category // Empty means GROCERY
	Date        string
	CreatorName string
	Roommates   []string
}

// Allocation is one participant's line in a saved split.
type Allocation struct {
	ParticipantID string          `json:"participant_id" yaml:"participant_id"`
	Name          string          `json:"name" yaml:"name"`
	Selected      bool            `json:"selected" yaml:"selected"`
	Amount        decimal.Decimal `json:"amount" yaml:"amount"`
}

// Result describes a successfully committed split.
type Result struct {
	Receipt     models.Receipt
	Total       decimal.Decimal
	Mode        models.SplitMode
	Allocations []Allocation
	Audit       calculator.Audit

	// Mirrored is true when this save added the receipt to local history.
	// It is false for receipts already mirrored and when writing history failed.
	Mirrored bool
}

// CreateReceipt validates the input and records a receipt with its
// participants: the creator first, then each non-blank roommate.
func (r *Reconciler) CreateReceipt(ctx context.Context, in NewReceipt) (*models.Receipt, []*models.Participant, error) {
	if strings.TrimSpace(in.Date) == "" {
		return nil, nil, &ValidationError{Field: "date", Message: "date is required"}
	}
	if strings.TrimSpace(in.CreatorName) == "" {
		return nil, nil, &ValidationError{Field: "name", Message: "your name is required"}
	}
	var roommates []string
	for _, name := range in.Roommates {
		if name = strings.TrimSpace(name); name != "" {
			roommates = append(roommates, name)
		}
	}
	if len(roommates) == 0 {
		return nil, nil, &ValidationError{Field: "roommates", Message: "at least one roommate is required"}
	}
	category := in.Category
	if category == "" {
		category = models.CategoryGrocery
	}
	if !category.Valid() {
		return nil, nil, &ValidationError{Field: "category", Message: "unknown category " + string(category)}
	}
	title := in.Title
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}

	receipt := &models.Receipt{
		Title:    title,
		Category: category,
		Date:     in.Date,
	}
	if err := r.store.CreateReceipt(ctx, receipt); err != nil {
		slog.Error("CreateReceipt failed", "error", err)
		return nil, nil, &SaveError{Stage: StageCreate, Err: err}
	}

	participants := make([]*models.Participant, 0, len(roommates)+1)
	participants = append(participants, &models.Participant{Name: strings.TrimSpace(in.CreatorName)})
	for _, name := range roommates {
		participants = append(participants, &models.Participant{Name: name})
	}
	if err := r.store.CreateParticipants(ctx, receipt.ID, participants); err != nil {
		slog.Error("CreateParticipants failed", "receipt_id", receipt.ID, "error", err)
		return nil, nil, &SaveError{ReceiptID: receipt.ID, Stage: StageCreate, Err: err}
	}

	slog.Info("Receipt created",
		"receipt_id", receipt.ID,
		"category", receipt.Category,
		"participants", len(participants),
	)
	return receipt, participants, nil
}

// Load reads a receipt and its participants and starts an edit of its split.
func (r *Reconciler) Load(ctx context.Context, receiptID string) (*EditState, error) {
	receipt, err := r.store.GetReceipt(ctx, receiptID)
	if err != nil {
		slog.Error("Load: failed to get receipt", "receipt_id", receiptID, "error", err)
		return nil, &ReadError{ReceiptID: receiptID, Err: err}
	}
	participants, err := r.store.ListParticipants(ctx, receiptID)
	if err != nil {
		slog.Error("Load: failed to list participants", "receipt_id", receiptID, "error", err)
		return nil, &ReadError{ReceiptID: receiptID, Err: err}
	}

	return NewEditState(receipt, participants), nil
}

// SaveSplit commits the split described by state.
//
// The receipt total is written first. The participants' owed amounts are
// then written concurrently; the save succeeds only if every write does.
// Nothing is rolled back on failure: a *SaveError lists which participants
// were updated. After a full success the receipt is mirrored to local history.
func (r *Reconciler) SaveSplit(ctx context.Context, state *EditState) (*Result, error) {
	receiptID := state.Receipt.ID
	total := calculator.ParseAmount(state.Total)
	if !total.IsPositive() {
		return nil, &ValidationError{Field: "total", Message: "please enter an amount greater than zero"}
	}

	if err := r.store.UpdateReceiptTotal(ctx, receiptID, total); err != nil {
		slog.Error("SaveSplit: failed to update total", "receipt_id", receiptID, "error", err)
		return nil, &SaveError{ReceiptID: receiptID, Stage: StageTotal, Err: err}
	}

	owed := state.Allocation()
	errs := make([]error, len(state.Participants))
	var g errgroup.Group
	for i, p := range state.Participants {
		i, p := i, p
		g.Go(func() error {
			errs[i] = r.store.UpdateParticipantAmount(ctx, p.ID, owed[p.ID])
			return errs[i]
		})
	}
	if err := g.Wait(); err != nil {
		saveErr := &SaveError{ReceiptID: receiptID, Stage: StageParticipants, Err: err}
		for i, p := range state.Participants {
			if errs[i] != nil {
				saveErr.Failed = append(saveErr.Failed, p.ID)
			} else {
				saveErr.Updated = append(saveErr.Updated, p.ID)
			}
		}
		slog.Error("SaveSplit: participant updates failed",
			"receipt_id", receiptID,
			"failed", len(saveErr.Failed),
			"updated", len(saveErr.Updated),
			"error", err,
		)
		return nil, saveErr
	}

	state.Receipt.TotalAmount = decimal.NewNullDecimal(total)
	result := &Result{
		Receipt:     state.Receipt,
		Total:       total,
		Mode:        state.Mode,
		Allocations: make([]Allocation, 0, len(state.Participants)),
		Audit:       calculator.AuditAllocation(total, owed),
	}
	for _, p := range state.Participants {
		p.AmountOwed = decimal.NewNullDecimal(owed[p.ID])
		result.Allocations = append(result.Allocations, Allocation{
			ParticipantID: p.ID,
			Name:          p.Name,
			Selected:      state.IsSelected(p.ID),
			Amount:        owed[p.ID],
		})
	}

	if r.mirror != nil {
		added, err := r.mirror.Append(models.HistoryEntry{
			ID:       receiptID,
			Category: state.Receipt.Category,
			Date:     state.Receipt.Date,
			Total:    total,
		})
		if err != nil {
			slog.Warn("SaveSplit: failed to mirror receipt to history", "receipt_id", receiptID, "error", err)
		}
		result.Mirrored = added
	}

	slog.Info("Split saved",
		"receipt_id", receiptID,
		"total", total.String(),
		"mode", state.Mode,
		"selected", len(state.Selected()),
		"drift", result.Audit.Drift.String(),
	)
	return result, nil
}
