// Package report renders booking documents as PDF.
package report

import (
	"fmt"
	"io"
	"time"

	"selectclass/internal/models"
	"selectclass/internal/money"
	"selectclass/internal/reconcile"

	"github.com/phpdave11/gofpdf"
)

type Receipt struct {
	Instructor string
	Booking    models.Booking
	Summary    reconcile.Summary
	IssuedAt   time.Time
	Location   *time.Location
}

func (r Receipt) date(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}

	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}

	return ts.In(loc).Format("02/01/2006")
}

// Write renders the receipt to w.
func (r Receipt) Write(w io.Writer) error {
	const op = "report.Receipt.Write"

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(tr("Recibo - "+r.Booking.Title), false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr("Recibo de Pagamento"))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	line := func(label, value string) {
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(45, 8, tr(label))
		pdf.SetFont("Arial", "", 11)
		pdf.Cell(0, 8, tr(value))
		pdf.Ln(8)
	}

	b := r.Booking
	line("Instrutor(a):", r.Instructor)
	line("Aluno(a):", b.Student)
	line("Curso:", b.Title)
	line("Data:", r.date(b.Date.Time)+" "+b.Time)
	if b.City != "" {
		line("Local:", fmt.Sprintf("%s - %s", b.City, b.State))
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, tr("Pagamentos"))
	pdf.Ln(9)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(40, 7, "Data", "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 7, tr("Forma"), "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, "Valor", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, p := range b.Payments {
		pdf.CellFormat(40, 7, r.date(p.Date.Time), "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 7, tr(p.Method), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, tr(money.Format(p.Amount.Float64())), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	s := r.Summary
	line("Valor total:", money.Format(s.Value))
	line("Total pago:", money.Format(s.TotalPaid))
	line("Restante:", money.Format(s.Remaining))
	if s.IsPaid {
		line("Situação:", "Pago")
	} else {
		line("Situação:", "Pendente")
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 9)
	pdf.Cell(0, 6, tr("Emitido em "+r.date(r.IssuedAt)))

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
