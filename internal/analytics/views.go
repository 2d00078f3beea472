package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"selectclass/internal/models"
	"selectclass/internal/reconcile"

	"github.com/shopspring/decimal"
)

type AgendaItem struct {
	Booking models.Booking `json:"booking"`
	Day     int            `json:"day"`
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()

	return ay == by && am == bm && ad == bd
}

// Agenda lists the bookings held on day: those starting that day, then the
// second day of two-day bookings that started the day before.
func (e *Engine) Agenda(day time.Time) []AgendaItem {
	day = day.In(e.loc)
	prev := day.AddDate(0, 0, -1)

	items := []AgendaItem{}
	for _, b := range e.snap.Bookings {
		d, ok := e.dated(b.Date)
		if !ok {
			continue
		}

		switch {
		case sameDay(d, day):
			items = append(items, AgendaItem{Booking: b, Day: 1})
		case reconcile.IsTwoDay(b.Duration) && sameDay(d, prev):
			items = append(items, AgendaItem{Booking: b, Day: 2})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Day != items[j].Day {
			return items[i].Day < items[j].Day
		}
		return items[i].Booking.Time < items[j].Booking.Time
	})

	return items
}

// CalendarDays returns the sorted days of month that hold a booking,
// counting the second day of two-day bookings.
func (e *Engine) CalendarDays(year, month int) ([]int, error) {
	const op = "analytics.Engine.CalendarDays"

	if err := (Period{Year: year, Month: month}).Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p := Period{Year: year, Month: month}
	seen := make(map[int]struct{})

	for _, b := range e.snap.Bookings {
		d, ok := e.dated(b.Date)
		if !ok {
			continue
		}

		if p.Contains(d) {
			seen[d.Day()] = struct{}{}
		}

		if reconcile.IsTwoDay(b.Duration) {
			if next := d.AddDate(0, 0, 1); p.Contains(next) {
				seen[next.Day()] = struct{}{}
			}
		}
	}

	days := make([]int, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Ints(days)

	return days, nil
}

type Dashboard struct {
	Period    Period  `json:"period"`
	Value     float64 `json:"value"`
	Count     int     `json:"count"`
	Expenses  float64 `json:"expenses"`
	Materials float64 `json:"materials"`
	Net       float64 `json:"net"`
}

// Dashboard sums the month's booked value against its costs.
func (e *Engine) Dashboard(p Period) (Dashboard, error) {
	const op = "analytics.Engine.Dashboard"

	if err := p.Validate(); err != nil {
		return Dashboard{}, fmt.Errorf("%s: %w", op, err)
	}

	value, mats, exps := decimal.Zero, decimal.Zero, decimal.Zero
	out := Dashboard{Period: p}

	for _, b := range e.snap.Bookings {
		d, ok := e.dated(b.Date)
		if !ok || !p.Contains(d) {
			continue
		}

		out.Count++
		value = value.Add(decimal.NewFromFloat(e.cls.EffectiveValue(b)))
		mats = mats.Add(decimal.NewFromFloat(reconcile.MaterialCost(b.Materials)))
	}

	linked := e.linkedExpenses()
	for _, x := range e.snap.Expenses {
		if _, ok := linked[x.ID]; ok {
			continue
		}

		d, ok := e.dated(x.Date)
		if !ok || !p.Contains(d) {
			continue
		}

		exps = exps.Add(decimal.NewFromFloat(x.Amount.Float64()))
	}

	out.Value = value.InexactFloat64()
	out.Materials = mats.InexactFloat64()
	out.Expenses = exps.InexactFloat64()
	out.Net = value.Sub(exps).Sub(mats).InexactFloat64()

	return out, nil
}

type SearchFilter struct {
	Period
	Category reconcile.Kind
	Term     string
	Limit    int
}

func matchesTerm(b models.Booking, term string) bool {
	if term == "" {
		return true
	}

	for _, field := range []string{b.Student, b.Title, b.EventLocation} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}

	return false
}

// Search returns matching bookings oldest first. Undated bookings come last
// and are only returned when no period is set.
func (e *Engine) Search(f SearchFilter) ([]models.Booking, error) {
	const op = "analytics.Engine.Search"

	if err := f.Period.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	term := strings.ToLower(strings.TrimSpace(f.Term))
	anyPeriod := f.Period == Period{}

	out := []models.Booking{}
	for _, b := range e.snap.Bookings {
		if !e.matchesKind(b, f.Category) || !matchesTerm(b, term) {
			continue
		}

		d, ok := e.dated(b.Date)
		if ok && !f.Period.Contains(d) || !ok && !anyPeriod {
			continue
		}

		out = append(out, b)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Date, out[j].Date
		if a.IsZero() != b.IsZero() {
			return b.IsZero()
		}
		return a.Before(b.Time)
	})

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}

	return out, nil
}

// Students filters the directory by a name or phone fragment and sorts it by
// name.
func (e *Engine) Students(query string) []models.Student {
	q := strings.ToLower(strings.TrimSpace(query))
	digits := onlyDigits(q)

	out := []models.Student{}
	for _, s := range e.snap.Students {
		if q == "" ||
			strings.Contains(strings.ToLower(s.Name), q) ||
			digits != "" && strings.Contains(onlyDigits(s.Phone), digits) {
			out = append(out, s)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})

	return out
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	return b.String()
}
