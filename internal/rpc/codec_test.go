package rpc

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/roomsplit/internal/models"
)

func TestJSONCodecEmptyBody(t *testing.T) {
	var req GetReceiptRequest
	require.NoError(t, JSONCodec{}.Unmarshal(nil, &req))
	assert.Empty(t, req.ReceiptID)
}

func TestJSONCodecAmounts(t *testing.T) {
	data, err := JSONCodec{}.Marshal(&Receipt{ID: "r1", Category: "TRIP"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"total_amount":null`)

	var got UpdateParticipantAmountRequest
	require.NoError(t, JSONCodec{}.Unmarshal([]byte(`{"participant_id":"p1","amount":"12.50"}`), &got))
	assert.Equal(t, "p1", got.ParticipantID)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("12.5")))
}

func TestParticipantConversion(t *testing.T) {
	p := &models.Participant{
		ID:         "p1",
		ReceiptID:  "r1",
		Name:       "Ann",
		AmountOwed: decimal.NewNullDecimal(decimal.NewFromInt(7)),
	}
	assert.Equal(t, p, ParticipantFromMessage(ParticipantToMessage(p)))

	r := &models.Receipt{ID: "r1", Title: "SOFA", Category: models.CategoryFurniture, Date: "2024/06/02", CreatedAt: 42}
	assert.Equal(t, r, ReceiptFromMessage(ReceiptToMessage(r)))
}
