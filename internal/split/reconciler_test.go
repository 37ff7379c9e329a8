package split

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/roomsplit/internal/history"
	"github.com/mmynk/roomsplit/internal/models"
	"github.com/mmynk/roomsplit/internal/storage"
	"github.com/mmynk/roomsplit/internal/storage/sqlite"
)

// flakyStore wraps a real store and fails chosen writes.
type flakyStore struct {
	storage.Store

	mu              sync.Mutex
	failTotal       bool
	failParticipant map[string]bool
	failCreate      bool
	failRead        bool
	writes          int
}

var errInjected = errors.New("injected failure")

func (s *flakyStore) CreateReceipt(ctx context.Context, r *models.Receipt) error {
	s.count()
	if s.failCreate {
		return errInjected
	}
	return s.Store.CreateReceipt(ctx, r)
}

func (s *flakyStore) GetReceipt(ctx context.Context, id string) (*models.Receipt, error) {
	if s.failRead {
		return nil, errInjected
	}
	return s.Store.GetReceipt(ctx, id)
}

func (s *flakyStore) UpdateReceiptTotal(ctx context.Context, id string, total decimal.Decimal) error {
	s.count()
	if s.failTotal {
		return errInjected
	}
	return s.Store.UpdateReceiptTotal(ctx, id, total)
}

func (s *flakyStore) UpdateParticipantAmount(ctx context.Context, id string, amount decimal.Decimal) error {
	s.count()
	if s.failParticipant[id] {
		return fmt.Errorf("participant %s: %w", id, errInjected)
	}
	return s.Store.UpdateParticipantAmount(ctx, id, amount)
}

func (s *flakyStore) count() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
}

type fixture struct {
	store      *flakyStore
	mirror     *history.Mirror
	reconciler *Reconciler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	db, err := sqlite.New(filepath.Join(dir, "receipts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := &flakyStore{Store: db, failParticipant: map[string]bool{}}
	mirror := history.NewMirror(history.NewFileStore(filepath.Join(dir, "history.json")))
	return &fixture{store: store, mirror: mirror, reconciler: NewReconciler(store, mirror)}
}

func (f *fixture) create(t *testing.T, roommates ...string) *models.Receipt {
	t.Helper()
	receipt, _, err := f.reconciler.CreateReceipt(context.Background(), NewReceipt{
		Category:    models.CategoryGrocery,
		Date:        "2024/05/01",
		CreatorName: "Ann",
		Roommates:   roommates,
	})
	require.NoError(t, err)
	return receipt
}

func TestCreateReceiptValidation(t *testing.T) {
	tests := []struct {
		name  string
		input NewReceipt
		field string
	}{
		{"missing date", NewReceipt{CreatorName: "Ann", Roommates: []string{"Bo"}}, "date"},
		{"missing name", NewReceipt{Date: "today", Roommates: []string{"Bo"}}, "name"},
		{"no roommates", NewReceipt{Date: "today", CreatorName: "Ann", Roommates: []string{"", "  "}}, "roommates"},
		{"bad category", NewReceipt{Date: "today", CreatorName: "Ann", Roommates: []string{"Bo"}, Category: "RENT"}, "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, _, err := f.reconciler.CreateReceipt(context.Background(), tt.input)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Zero(t, f.store.writes)
		})
	}
}

func TestCreateReceiptDefaults(t *testing.T) {
	f := newFixture(t)

	receipt, participants, err := f.reconciler.CreateReceipt(context.Background(), NewReceipt{
		Date:        "2024/05/01",
		CreatorName: " Ann ",
		Roommates:   []string{"Bo", "", " Cy "},
	})
	require.NoError(t, err)

	assert.Equal(t, DefaultTitle, receipt.Title)
	assert.Equal(t, models.CategoryGrocery, receipt.Category)
	require.Len(t, participants, 3)
	assert.Equal(t, "Ann", participants[0].Name)
	assert.Equal(t, "Bo", participants[1].Name)
	assert.Equal(t, "Cy", participants[2].Name)
}

func TestCreateReceiptStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.store.failCreate = true

	_, _, err := f.reconciler.CreateReceipt(context.Background(), NewReceipt{
		Date: "today", CreatorName: "Ann", Roommates: []string{"Bo"},
	})

	var saveErr *SaveError
	require.ErrorAs(t, err, &saveErr)
	assert.Equal(t, StageCreate, saveErr.Stage)
	assert.False(t, saveErr.Partial())
	assert.ErrorIs(t, err, errInjected)
}

func TestLoadReadError(t *testing.T) {
	f := newFixture(t)

	_, err := f.reconciler.Load(context.Background(), "missing")
	var readErr *ReadError
	require.ErrorAs(t, err, &readErr)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	receipt := f.create(t, "Bo")
	f.store.failRead = true
	_, err = f.reconciler.Load(context.Background(), receipt.ID)
	assert.ErrorAs(t, err, &readErr)
}

func TestSaveSplitEqualEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	receipt := f.create(t, "Bo")

	state, err := f.reconciler.Load(ctx, receipt.ID)
	require.NoError(t, err)
	require.Len(t, state.Participants, 2)
	state.Total = "50"

	result, err := f.reconciler.SaveSplit(ctx, state)
	require.NoError(t, err)
	assert.True(t, result.Mirrored)
	assert.True(t, result.Audit.Balanced())

	for _, a := range result.Allocations {
		assert.True(t, a.Amount.Equal(decimal.NewFromInt(25)), "%s owes %s", a.Name, a.Amount)
	}

	// The authoritative store holds the allocation.
	reloaded, err := f.reconciler.Load(ctx, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, "50", reloaded.Total)
	for _, p := range reloaded.Participants {
		require.True(t, p.AmountOwed.Valid)
		assert.True(t, p.AmountOwed.Decimal.Equal(decimal.NewFromInt(25)))
	}

	// History holds exactly one entry with the saved total.
	entries := f.mirror.List()
	require.Len(t, entries, 1)
	assert.Equal(t, receipt.ID, entries[0].ID)
	assert.Equal(t, models.CategoryGrocery, entries[0].Category)
	assert.Equal(t, "2024/05/01", entries[0].Date)
	assert.True(t, entries[0].Total.Equal(decimal.NewFromInt(50)))
}

func TestSaveSplitResaveKeepsHistorySnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	receipt := f.create(t, "Bo")

	state, err := f.reconciler.Load(ctx, receipt.ID)
	require.NoError(t, err)
	state.Total = "50"
	_, err = f.reconciler.SaveSplit(ctx, state)
	require.NoError(t, err)

	state.Total = "80"
	result, err := f.reconciler.SaveSplit(ctx, state)
	require.NoError(t, err)
	assert.False(t, result.Mirrored)

	stored, err := f.store.GetReceipt(ctx, receipt.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalAmount.Decimal.Equal(decimal.NewFromInt(80)))

	entries := f.mirror.List()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Total.Equal(decimal.NewFromInt(50)))
}

func TestSaveSplitCustomWithExcludedParticipant(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	receipt := f.create(t, "Bo", "Cy")

	state, err := f.reconciler.Load(ctx, receipt.ID)
	require.NoError(t, err)
	ann, _ := state.Find("Ann")
	bo, _ := state.Find("Bo")
	cy, _ := state.Find("Cy")

	state.Total = "50"
	state.Mode = models.SplitCustom
	require.NoError(t, state.Toggle(cy.ID))
	require.NoError(t, state.SetManualAmount(ann.ID, "30"))
	assert.Equal(t, "20", state.ManualAmount(bo.ID))

	result, err := f.reconciler.SaveSplit(ctx, state)
	require.NoError(t, err)

	got := map[string]Allocation{}
	for _, a := range result.Allocations {
		got[a.Name] = a
	}
	assert.True(t, got["Ann"].Amount.Equal(decimal.NewFromInt(30)))
	assert.True(t, got["Bo"].Amount.Equal(decimal.NewFromInt(20)))
	assert.True(t, got["Cy"].Amount.IsZero())
	assert.False(t, got["Cy"].Selected)
}

func TestSaveSplitRejectsMissingTotal(t *testing.T) {
	for _, total := range []string{"", "0", "-10", "abc"} {
		t.Run(total, func(t *testing.T) {
			f := newFixture(t)
			receipt := f.create(t, "Bo")
			state, err := f.reconciler.Load(context.Background(), receipt.ID)
			require.NoError(t, err)
			writesBefore := f.store.writes

			state.Total = total
			_, err = f.reconciler.SaveSplit(context.Background(), state)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, "total", vErr.Field)
			assert.Equal(t, writesBefore, f.store.writes)
			assert.Empty(t, f.mirror.List())
		})
	}
}

func TestSaveSplitTotalFailure(t *testing.T) {
	f := newFixture(t)
	receipt := f.create(t, "Bo")
	state, err := f.reconciler.Load(context.Background(), receipt.ID)
	require.NoError(t, err)
	state.Total = "50"
	f.store.failTotal = true

	_, err = f.reconciler.SaveSplit(context.Background(), state)

	var saveErr *SaveError
	require.ErrorAs(t, err, &saveErr)
	assert.Equal(t, StageTotal, saveErr.Stage)
	assert.False(t, saveErr.Partial())
	assert.Empty(t, f.mirror.List())

	listed, err := f.store.ListParticipants(context.Background(), receipt.ID)
	require.NoError(t, err)
	for _, p := range listed {
		assert.False(t, p.AmountOwed.Valid, "no participant write expected")
	}
}

func TestSaveSplitPartialFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	receipt := f.create(t, "Bo", "Cy")
	state, err := f.reconciler.Load(ctx, receipt.ID)
	require.NoError(t, err)
	bo, _ := state.Find("Bo")
	state.Total = "90"
	f.store.failParticipant[bo.ID] = true

	_, err = f.reconciler.SaveSplit(ctx, state)

	var saveErr *SaveError
	require.ErrorAs(t, err, &saveErr)
	assert.Equal(t, StageParticipants, saveErr.Stage)
	assert.True(t, saveErr.Partial())
	assert.Equal(t, []string{bo.ID}, saveErr.Failed)
	assert.Len(t, saveErr.Updated, 2)
	assert.ErrorIs(t, err, errInjected)

	// Successful writes stay committed; nothing is mirrored.
	stored, err := f.store.GetReceipt(ctx, receipt.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalAmount.Decimal.Equal(decimal.NewFromInt(90)))

	listed, err := f.store.ListParticipants(ctx, receipt.ID)
	require.NoError(t, err)
	for _, p := range listed {
		if p.ID == bo.ID {
			assert.False(t, p.AmountOwed.Valid)
		} else {
			assert.True(t, p.AmountOwed.Decimal.Equal(decimal.NewFromInt(30)))
		}
	}
	assert.Empty(t, f.mirror.List())
}

func TestSaveSplitWithoutMirror(t *testing.T) {
	f := newFixture(t)
	receipt := f.create(t, "Bo")
	reconciler := NewReconciler(f.store, nil)

	state, err := reconciler.Load(context.Background(), receipt.ID)
	require.NoError(t, err)
	state.Total = "10"

	result, err := reconciler.SaveSplit(context.Background(), state)
	require.NoError(t, err)
	assert.False(t, result.Mirrored)
}

// readOnlyHistory loads fine but refuses to save.
type readOnlyHistory struct{}

func (readOnlyHistory) Load() []models.HistoryEntry { return []models.HistoryEntry{} }
func (readOnlyHistory) Save([]models.HistoryEntry) error { return errors.New("read-only file system") }

func TestSaveSplitMirrorFailureStillSucceeds(t *testing.T) {
	f := newFixture(t)
	receipt := f.create(t, "Bo")
	reconciler := NewReconciler(f.store, history.NewMirror(readOnlyHistory{}))

	state, err := reconciler.Load(context.Background(), receipt.ID)
	require.NoError(t, err)
	state.Total = "10"

	result, err := reconciler.SaveSplit(context.Background(), state)
	require.NoError(t, err)
	assert.False(t, result.Mirrored)

	stored, err := f.store.GetReceipt(context.Background(), receipt.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalAmount.Decimal.Equal(decimal.NewFromInt(10)))
}
