package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/roomsplit/internal/models"
	"github.com/mmynk/roomsplit/internal/rpc"
	"github.com/mmynk/roomsplit/internal/service"
	"github.com/mmynk/roomsplit/internal/storage"
	"github.com/mmynk/roomsplit/internal/storage/sqlite"
)

func newRemoteStore(t *testing.T) *Store {
	t.Helper()

	backing, err := sqlite.New(filepath.Join(t.TempDir(), "remote.db"))
	require.NoError(t, err)

	mux := http.NewServeMux()
	path, handler := rpc.NewReceiptServiceHandler(service.NewReceiptService(backing))
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)

	t.Cleanup(func() {
		server.Close()
		backing.Close()
	})
	return New(server.Client(), server.URL)
}

func TestRemoteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newRemoteStore(t)

	receipt := &models.Receipt{Title: "SOFA", Category: models.CategoryFurniture, Date: "2024/06/02"}
	require.NoError(t, store.CreateReceipt(ctx, receipt))
	require.NotEmpty(t, receipt.ID)
	assert.NotZero(t, receipt.CreatedAt)

	batch := []*models.Participant{{Name: "Ann"}, {Name: "Bo"}, {Name: "Cy"}}
	require.NoError(t, store.CreateParticipants(ctx, receipt.ID, batch))
	for _, p := range batch {
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, receipt.ID, p.ReceiptID)
	}

	require.NoError(t, store.UpdateReceiptTotal(ctx, receipt.ID, decimal.RequireFromString("90")))
	require.NoError(t, store.UpdateParticipantAmount(ctx, batch[2].ID, decimal.RequireFromString("30")))

	got, err := store.GetReceipt(ctx, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryFurniture, got.Category)
	assert.Equal(t, "SOFA", got.Title)
	require.True(t, got.TotalAmount.Valid)
	assert.True(t, got.TotalAmount.Decimal.Equal(decimal.NewFromInt(90)))

	listed, err := store.ListParticipants(ctx, receipt.ID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, []string{"Ann", "Bo", "Cy"}, []string{listed[0].Name, listed[1].Name, listed[2].Name})
	assert.False(t, listed[0].AmountOwed.Valid)
	assert.True(t, listed[2].AmountOwed.Decimal.Equal(decimal.NewFromInt(30)))
}

func TestRemoteStoreNotFound(t *testing.T) {
	ctx := context.Background()
	store := newRemoteStore(t)

	_, err := store.GetReceipt(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = store.UpdateParticipantAmount(ctx, "missing", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = store.CreateParticipants(ctx, "missing", []*models.Participant{{Name: "Ann"}})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRemoteStoreUnreachable(t *testing.T) {
	store := New(nil, "http://127.0.0.1:1")

	_, err := store.GetReceipt(context.Background(), "r1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
}
