// Package reconcile computes the payment and cost figures of a booking.
package reconcile

import (
	"strings"
	"time"

	"selectclass/internal/models"

	"github.com/shopspring/decimal"
)

// PaidTolerance absorbs floating rounding when comparing payments with value.
var PaidTolerance = decimal.NewFromFloat(0.01)

// DefaultAlertWindowDays is how close an unpaid course may get to its date
// before it is flagged.
const DefaultAlertWindowDays = 5

type Summary struct {
	Kind                Kind       `json:"kind"`
	Value               float64    `json:"value"`
	Deposit             float64    `json:"deposit"`
	OtherPayments       float64    `json:"otherPayments"`
	TotalPaid           float64    `json:"totalPaid"`
	Remaining           float64    `json:"remaining"`
	IsPaid              bool       `json:"isPaid"`
	MaterialCost        float64    `json:"materialCost"`
	Net                 float64    `json:"net"`
	AllMaterialsChecked bool       `json:"allMaterialsChecked"`
	DueDate             *time.Time `json:"dueDate,omitempty"`
	DaysUntilEvent      *int       `json:"daysUntilEvent,omitempty"`
	Alert               bool       `json:"alert"`
	Overdue             bool       `json:"overdue"`
}

func dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func paidSum(payments []models.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(dec(p.Amount.Float64()))
	}

	return total
}

func remaining(value, paid decimal.Decimal) decimal.Decimal {
	r := value.Sub(paid)
	if r.IsNegative() {
		return decimal.Zero
	}

	return r
}

func isPaid(value, paid decimal.Decimal) bool {
	return value.IsPositive() && remaining(value, paid).LessThan(PaidTolerance)
}

// TotalPaid sums every payment amount.
func TotalPaid(payments []models.Payment) float64 {
	return paidSum(payments).InexactFloat64()
}

// Remaining is max(0, value - paid).
func Remaining(value, paid float64) float64 {
	return remaining(dec(value), dec(paid)).InexactFloat64()
}

// IsPaid never reports an unpriced booking as paid.
func IsPaid(value, paid float64) bool {
	return isPaid(dec(value), dec(paid))
}

// MaterialCost sums the cost of checked materials only.
func MaterialCost(items []models.MaterialItem) float64 {
	total := decimal.Zero
	for _, m := range items {
		if m.Checked {
			total = total.Add(dec(m.Cost.Float64()))
		}
	}

	return total.InexactFloat64()
}

// Net deducts material costs from value: always for courses, and for
// lectures only when abate is set.
func Net(kind Kind, value, materialCost float64, abate bool) float64 {
	if kind == KindLecture && !abate {
		return value
	}

	return dec(value).Sub(dec(materialCost)).InexactFloat64()
}

// Status is the payment status a booking should carry after its value or
// payments change. requested is kept when the payments do not settle the
// value, which lets a booking be marked paid by hand.
func Status(value float64, payments []models.Payment, requested models.PaymentStatus) models.PaymentStatus {
	if IsPaid(value, TotalPaid(payments)) {
		return models.PaymentPaid
	}

	if requested == models.PaymentPaid {
		return models.PaymentPaid
	}

	return models.PaymentPending
}

// DueDate returns the explicit payment due date, or the event date minus the
// deadline offset.
func DueDate(b models.Booking) (time.Time, bool) {
	if !b.PaymentDueDate.IsZero() {
		return b.PaymentDueDate.Time, true
	}

	if b.PaymentDeadlineDays != nil && !b.Date.IsZero() {
		return b.Date.AddDate(0, 0, -*b.PaymentDeadlineDays), true
	}

	return time.Time{}, false
}

// DaysUntil counts calendar days from now to t in now's location. Past dates
// are negative.
func DaysUntil(t, now time.Time) int {
	loc := now.Location()
	ty, tm, td := t.In(loc).Date()
	ny, nm, nd := now.Date()

	a := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	b := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)

	return int(a.Sub(b).Hours() / 24)
}

// Summarize computes every figure shown for a booking. value is the
// effective value (see Classifier.EffectiveValue).
func Summarize(b models.Booking, kind Kind, value float64, now time.Time, windowDays int) Summary {
	v := dec(value)
	paid := paidSum(b.Payments)

	s := Summary{
		Kind:      kind,
		Value:     value,
		TotalPaid: paid.InexactFloat64(),
		Remaining: remaining(v, paid).InexactFloat64(),
		IsPaid:    isPaid(v, paid),
	}

	if len(b.Payments) > 0 {
		s.Deposit = b.Payments[0].Amount.Float64()
		s.OtherPayments = paidSum(b.Payments[1:]).InexactFloat64()
	}

	s.MaterialCost = MaterialCost(b.Materials)
	s.Net = Net(kind, value, s.MaterialCost, b.AbateExpenses)

	if len(b.Materials) > 0 {
		s.AllMaterialsChecked = true
		for _, m := range b.Materials {
			if !m.Checked {
				s.AllMaterialsChecked = false
				break
			}
		}
	}

	if kind != KindCourse {
		return s
	}

	if due, ok := DueDate(b); ok {
		s.DueDate = &due
		s.Overdue = !s.IsPaid && DaysUntil(due, now) < 0
	}

	if !b.Date.IsZero() {
		days := DaysUntil(b.Date.Time, now)
		s.DaysUntilEvent = &days
		s.Alert = !s.IsPaid && days <= windowDays
	}

	return s
}

// IsTwoDay reports whether a free-text duration spans two days.
func IsTwoDay(duration string) bool {
	d := strings.ToLower(duration)
	return strings.Contains(d, "2 dia") || strings.Contains(d, "2 day")
}
