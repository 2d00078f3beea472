package analytics

import (
	"fmt"

	"selectclass/internal/models"
	"selectclass/internal/reconcile"

	"github.com/shopspring/decimal"
)

type MonthTotals struct {
	Month int     `json:"month"`
	Gross float64 `json:"gross"`
	Net   float64 `json:"net"`
}

type Financial struct {
	Period       Period        `json:"period"`
	Gross        float64       `json:"gross"`
	Expenses     float64       `json:"expenses"`
	Net          float64       `json:"net"`
	Annual       []MonthTotals `json:"annual"`
	AnnualGross  float64       `json:"annualGross"`
	Goal         float64       `json:"goal"`
	GoalProgress float64       `json:"goalProgress"`
}

// Gross is what a booking has brought in: its payments, or its value when it
// is marked paid without any payment recorded.
func Gross(b models.Booking) decimal.Decimal {
	paid := decimal.NewFromFloat(reconcile.TotalPaid(b.Payments))
	if b.PaymentStatus == models.PaymentPaid && paid.IsZero() {
		return decimal.NewFromFloat(b.Value.Float64())
	}

	return paid
}

// linkedExpenses returns the ids of expenses created by a checked material.
// Their amount is already counted as material cost.
func (e *Engine) linkedExpenses() map[string]struct{} {
	ids := make(map[string]struct{})
	for _, b := range e.snap.Bookings {
		for _, m := range b.Materials {
			if m.ExpenseID != "" {
				ids[m.ExpenseID] = struct{}{}
			}
		}
	}

	return ids
}

// Financial totals revenue and costs for p and charts the whole of p.Year.
func (e *Engine) Financial(p Period, goal float64) (Financial, error) {
	const op = "analytics.Engine.Financial"

	if err := p.Validate(); err != nil {
		return Financial{}, fmt.Errorf("%s: %w", op, err)
	}

	gross := make([]decimal.Decimal, 12)
	net := make([]decimal.Decimal, 12)
	for i := range gross {
		gross[i], net[i] = decimal.Zero, decimal.Zero
	}

	periodGross, periodCost := decimal.Zero, decimal.Zero

	for _, b := range e.snap.Bookings {
		d, ok := e.dated(b.Date)
		if !ok || d.Year() != p.Year {
			continue
		}

		g := Gross(b)
		mat := decimal.NewFromFloat(reconcile.MaterialCost(b.Materials))

		m := d.Month() - 1
		gross[m] = gross[m].Add(g)
		net[m] = net[m].Sub(mat)

		if p.Contains(d) {
			periodGross = periodGross.Add(g)
			periodCost = periodCost.Add(mat)
		}
	}

	linked := e.linkedExpenses()
	for _, x := range e.snap.Expenses {
		if _, ok := linked[x.ID]; ok {
			continue
		}

		d, ok := e.dated(x.Date)
		if !ok || d.Year() != p.Year {
			continue
		}

		amount := decimal.NewFromFloat(x.Amount.Float64())
		net[d.Month()-1] = net[d.Month()-1].Sub(amount)

		if p.Contains(d) {
			periodCost = periodCost.Add(amount)
		}
	}

	out := Financial{
		Period:   p,
		Gross:    periodGross.InexactFloat64(),
		Expenses: periodCost.InexactFloat64(),
		Net:      periodGross.Sub(periodCost).InexactFloat64(),
		Annual:   make([]MonthTotals, 12),
		Goal:     goal,
	}

	annual := decimal.Zero
	for i := range out.Annual {
		out.Annual[i] = MonthTotals{
			Month: i + 1,
			Gross: gross[i].InexactFloat64(),
			Net:   net[i].Add(gross[i]).InexactFloat64(),
		}
		annual = annual.Add(gross[i])
	}
	out.AnnualGross = annual.InexactFloat64()
	out.GoalProgress = GoalProgress(out.AnnualGross, goal)

	return out, nil
}

// GoalProgress is the percentage of goal reached, capped at 100.
func GoalProgress(total, goal float64) float64 {
	if goal <= 0 {
		return 0
	}

	pct := decimal.NewFromFloat(total).Div(decimal.NewFromFloat(goal)).Mul(decimal.NewFromInt(100))
	if pct.GreaterThan(decimal.NewFromInt(100)) {
		return 100
	}

	return pct.Round(2).InexactFloat64()
}
