package analytics

import (
	"fmt"
	"sort"
	"time"

	"selectclass/internal/reconcile"

	"github.com/shopspring/decimal"
)

type LedgerFilter struct {
	Period
	Category reconcile.Kind `json:"category"`
}

type LedgerEntry struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Amount     float64        `json:"amount"`
	Date       time.Time      `json:"date"`
	Category   reconcile.Kind `json:"category"`
	Automatic  bool           `json:"automatic"`
	BookingID  string         `json:"bookingId,omitempty"`
	MaterialID string         `json:"materialId,omitempty"`
}

type Ledger struct {
	Filter  LedgerFilter  `json:"filter"`
	Entries []LedgerEntry `json:"entries"`
	Total   float64       `json:"total"`
	Revenue *float64      `json:"revenue,omitempty"`
	Net     *float64      `json:"net,omitempty"`
}

// ExpenseCategory is the category an expense is booked under; unset means
// courses.
func ExpenseCategory(c string) reconcile.Kind {
	if k, ok := reconcile.ParseKind(c); ok {
		return k
	}

	return reconcile.KindCourse
}

// Ledger lists manual expenses and checked materials of one category, newest
// first. For lectures it also reports revenue and net.
func (e *Engine) Ledger(f LedgerFilter) (Ledger, error) {
	const op = "analytics.Engine.Ledger"

	if f.Category == "" {
		f.Category = reconcile.KindCourse
	}

	if err := f.Period.Validate(); err != nil {
		return Ledger{}, fmt.Errorf("%s: %w", op, err)
	}

	out := Ledger{Filter: f, Entries: []LedgerEntry{}}
	total := decimal.Zero

	linked := e.linkedExpenses()
	for _, x := range e.snap.Expenses {
		if _, ok := linked[x.ID]; ok {
			continue
		}

		d, ok := e.dated(x.Date)
		if !ok || !f.Period.Contains(d) || ExpenseCategory(x.Category) != f.Category {
			continue
		}

		out.Entries = append(out.Entries, LedgerEntry{
			ID:       x.ID,
			Title:    x.Title,
			Amount:   x.Amount.Float64(),
			Date:     d,
			Category: f.Category,
		})
		total = total.Add(decimal.NewFromFloat(x.Amount.Float64()))
	}

	revenue := decimal.Zero
	for _, b := range e.snap.Bookings {
		d, ok := e.dated(b.Date)
		if !ok || !f.Period.Contains(d) || e.cls.Kind(b) != f.Category {
			continue
		}

		revenue = revenue.Add(decimal.NewFromFloat(e.cls.EffectiveValue(b)))

		student := b.Student
		if student == "" {
			student = "Evento"
		}

		for _, m := range b.Materials {
			if !m.Checked {
				continue
			}

			out.Entries = append(out.Entries, LedgerEntry{
				ID:         m.ID,
				Title:      fmt.Sprintf("%s (%s)", m.Name, student),
				Amount:     m.Cost.Float64(),
				Date:       d,
				Category:   f.Category,
				Automatic:  true,
				BookingID:  b.ID,
				MaterialID: m.ID,
			})
			total = total.Add(decimal.NewFromFloat(m.Cost.Float64()))
		}
	}

	sort.SliceStable(out.Entries, func(i, j int) bool {
		return out.Entries[i].Date.After(out.Entries[j].Date)
	})

	out.Total = total.InexactFloat64()

	if f.Category == reconcile.KindLecture {
		rev := revenue.InexactFloat64()
		net := revenue.Sub(total).InexactFloat64()
		out.Revenue, out.Net = &rev, &net
	}

	return out, nil
}
