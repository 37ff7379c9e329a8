package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/roomsplit/internal/models"
	"github.com/mmynk/roomsplit/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateReceipt generates ID and timestamp", func(t *testing.T) {
		receipt := &models.Receipt{
			Title:    "GROCERY RUN",
			Category: models.CategoryGrocery,
			Date:     "2024/05/01",
		}

		if err := store.CreateReceipt(ctx, receipt); err != nil {
			t.Fatalf("CreateReceipt failed: %v", err)
		}

		if receipt.ID == "" {
			t.Error("Expected receipt ID to be generated")
		}
		if receipt.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("GetReceipt retrieves receipt with null total", func(t *testing.T) {
		original := &models.Receipt{
			Title:    "Road trip",
			Category: models.CategoryTrip,
			Date:     "next friday",
		}
		if err := store.CreateReceipt(ctx, original); err != nil {
			t.Fatalf("CreateReceipt failed: %v", err)
		}

		retrieved, err := store.GetReceipt(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetReceipt failed: %v", err)
		}

		if retrieved.Title != original.Title {
			t.Errorf("Title mismatch: got %s, want %s", retrieved.Title, original.Title)
		}
		if retrieved.Category != models.CategoryTrip {
			t.Errorf("Category mismatch: got %s, want %s", retrieved.Category, models.CategoryTrip)
		}
		if retrieved.Date != original.Date {
			t.Errorf("Date mismatch: got %s, want %s", retrieved.Date, original.Date)
		}
		if retrieved.TotalAmount.Valid {
			t.Errorf("Expected null total, got %s", retrieved.TotalAmount.Decimal)
		}
	})

	t.Run("GetReceipt returns ErrNotFound for nonexistent receipt", func(t *testing.T) {
		_, err := store.GetReceipt(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("participants keep creation order", func(t *testing.T) {
		receipt := &models.Receipt{Title: "Couch", Category: models.CategoryFurniture, Date: "2024/06/01"}
		if err := store.CreateReceipt(ctx, receipt); err != nil {
			t.Fatalf("CreateReceipt failed: %v", err)
		}

		names := []string{"Zed", "Ann", "Mo"}
		var batch []*models.Participant
		for _, name := range names {
			batch = append(batch, &models.Participant{Name: name})
		}
		if err := store.CreateParticipants(ctx, receipt.ID, batch); err != nil {
			t.Fatalf("CreateParticipants failed: %v", err)
		}

		for _, p := range batch {
			if p.ID == "" {
				t.Errorf("Expected participant ID for %s", p.Name)
			}
			if p.ReceiptID != receipt.ID {
				t.Errorf("ReceiptID = %s, want %s", p.ReceiptID, receipt.ID)
			}
		}

		listed, err := store.ListParticipants(ctx, receipt.ID)
		if err != nil {
			t.Fatalf("ListParticipants failed: %v", err)
		}
		if len(listed) != len(names) {
			t.Fatalf("Expected %d participants, got %d", len(names), len(listed))
		}
		for i, p := range listed {
			if p.Name != names[i] {
				t.Errorf("participant %d = %s, want %s", i, p.Name, names[i])
			}
			if p.AmountOwed.Valid {
				t.Errorf("Expected null amount for %s", p.Name)
			}
		}
	})

	t.Run("CreateParticipants rejects unknown receipt", func(t *testing.T) {
		err := store.CreateParticipants(ctx, "missing", []*models.Participant{{Name: "Ghost"}})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("updates overwrite totals and owed amounts", func(t *testing.T) {
		receipt := &models.Receipt{Title: "Dinner", Category: models.CategoryGrocery, Date: "today"}
		if err := store.CreateReceipt(ctx, receipt); err != nil {
			t.Fatalf("CreateReceipt failed: %v", err)
		}
		batch := []*models.Participant{{Name: "Ann"}, {Name: "Bo"}}
		if err := store.CreateParticipants(ctx, receipt.ID, batch); err != nil {
			t.Fatalf("CreateParticipants failed: %v", err)
		}

		for _, total := range []string{"50", "80.25"} {
			if err := store.UpdateReceiptTotal(ctx, receipt.ID, decimal.RequireFromString(total)); err != nil {
				t.Fatalf("UpdateReceiptTotal failed: %v", err)
			}
		}
		if err := store.UpdateParticipantAmount(ctx, batch[0].ID, decimal.RequireFromString("40.13")); err != nil {
			t.Fatalf("UpdateParticipantAmount failed: %v", err)
		}

		got, err := store.GetReceipt(ctx, receipt.ID)
		if err != nil {
			t.Fatalf("GetReceipt failed: %v", err)
		}
		if !got.TotalAmount.Valid || !got.TotalAmount.Decimal.Equal(decimal.RequireFromString("80.25")) {
			t.Errorf("TotalAmount = %v, want 80.25", got.TotalAmount)
		}

		listed, err := store.ListParticipants(ctx, receipt.ID)
		if err != nil {
			t.Fatalf("ListParticipants failed: %v", err)
		}
		if !listed[0].AmountOwed.Valid || !listed[0].AmountOwed.Decimal.Equal(decimal.RequireFromString("40.13")) {
			t.Errorf("Ann owes %v, want 40.13", listed[0].AmountOwed)
		}
		if listed[1].AmountOwed.Valid {
			t.Errorf("Bo should still have a null amount, got %v", listed[1].AmountOwed)
		}
	})

	t.Run("updates of unknown rows return ErrNotFound", func(t *testing.T) {
		if err := store.UpdateReceiptTotal(ctx, "missing", decimal.NewFromInt(1)); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("UpdateReceiptTotal: expected ErrNotFound, got %v", err)
		}
		if err := store.UpdateParticipantAmount(ctx, "missing", decimal.NewFromInt(1)); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("UpdateParticipantAmount: expected ErrNotFound, got %v", err)
		}
	})
}
