package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingDecodesClientRecord(t *testing.T) {
	raw := `{
		"id": "b1",
		"title": "Curso Vip",
		"time": "09:00",
		"duration": "2 dias",
		"type": "class",
		"student": "Ana",
		"value": "1.500,00",
		"paymentStatus": "pending",
		"paymentDueDate": "",
		"date": "2026-03-10T03:00:00.000Z",
		"payments": [{"id": "p1", "amount": 400, "date": "2026-02-01T03:00:00.000Z"}],
		"materials": [{"id": "m1", "name": "Kit", "checked": true, "cost": "25,50", "expenseId": "e1"}]
	}`

	var b Booking
	require.NoError(t, json.Unmarshal([]byte(raw), &b))

	assert.Equal(t, "b1", b.ID)
	assert.InDelta(t, 1500.0, b.Value.Float64(), 1e-9)
	assert.True(t, b.PaymentDueDate.IsZero())
	assert.True(t, time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC).Equal(b.Date.Time))
	require.Len(t, b.Payments, 1)
	assert.Equal(t, 2026, b.Payments[0].Date.Year())
	require.Len(t, b.Materials, 1)
	assert.InDelta(t, 25.5, b.Materials[0].Cost.Float64(), 1e-9)
	assert.Equal(t, 0, b.Material("m1"))
	assert.Equal(t, -1, b.Material("missing"))
}

func TestTimestampRoundTrip(t *testing.T) {
	ts := NewTimestamp(time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC))

	out, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2026-01-02T15:04:05.000Z"`, string(out))

	out, err = json.Marshal(struct {
		At Timestamp `json:"at,omitzero"`
	}{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(out))
}

func TestTimestampToleratesGarbage(t *testing.T) {
	for _, in := range []string{`null`, `""`, `"not a date"`, `{}`} {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(in), &ts), in)
		assert.True(t, ts.IsZero(), in)
	}

	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"2026-05-01"`), &ts))
	assert.Equal(t, time.May, ts.Month())
}
