package report

import (
	"bytes"
	"testing"
	"time"

	"selectclass/internal/models"
	"selectclass/internal/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptWritesPDF(t *testing.T) {
	b := models.Booking{
		ID:      "b1",
		Title:   "Curso Vip",
		Student: "Ana Conceição",
		City:    "Guarulhos",
		State:   "SP",
		Time:    "09:00",
		Value:   1000,
		Date:    models.NewTimestamp(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)),
		Payments: []models.Payment{
			{ID: "p1", Amount: 400, Method: "pix"},
			{ID: "p2", Amount: 600, Method: "cartão"},
		},
	}

	r := Receipt{
		Instructor: "Seu Nome",
		Booking:    b,
		Summary:    reconcile.Summarize(b, reconcile.KindCourse, 1000, time.Now(), 5),
		IssuedAt:   time.Now(),
	}

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
