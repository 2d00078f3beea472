// Package analytics derives the read-only views of the dataset: rankings,
// financial totals, the expense ledger and the agenda.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"selectclass/internal/models"
	"selectclass/internal/reconcile"
	"selectclass/internal/state"
	"selectclass/pkg/response"

	"github.com/shopspring/decimal"
)

// Period selects a year and optionally a month (1-12) and a day. Zero means
// any.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month,omitempty"`
	Day   int `json:"day,omitempty"`
}

func (p Period) Validate() error {
	if p.Year < 0 {
		return response.Invalid("year", "must not be negative")
	}
	if p.Month < 0 || p.Month > 12 {
		return response.Invalid("month", "must be between 1 and 12")
	}
	if p.Day < 0 || p.Day > 31 {
		return response.Invalid("day", "must be between 1 and 31")
	}

	return nil
}

func (p Period) Contains(t time.Time) bool {
	y, m, d := t.Date()

	if p.Year != 0 && y != p.Year {
		return false
	}
	if p.Month != 0 && int(m) != p.Month {
		return false
	}
	if p.Day != 0 && d != p.Day {
		return false
	}

	return true
}

// Engine evaluates views over one snapshot. Dates are bucketed in loc.
type Engine struct {
	snap state.Snapshot
	cls  reconcile.Classifier
	loc  *time.Location
}

func New(snap state.Snapshot, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}

	return &Engine{
		snap: snap,
		cls:  reconcile.NewClassifier(snap.CourseTypes, snap.LectureModels),
		loc:  loc,
	}
}

func (e *Engine) Classifier() reconcile.Classifier {
	return e.cls
}

func (e *Engine) Location() *time.Location {
	return e.loc
}

// dated returns the booking date in the engine location; ok is false for
// undated records.
func (e *Engine) dated(ts models.Timestamp) (time.Time, bool) {
	if ts.IsZero() {
		return time.Time{}, false
	}

	return ts.In(e.loc), true
}

func (e *Engine) matchesKind(b models.Booking, kind reconcile.Kind) bool {
	return kind == "" || e.cls.Kind(b) == kind
}

func sum(values ...float64) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}

	return total
}

type Filter struct {
	Year     int            `json:"year"`
	Month    int            `json:"month,omitempty"`
	City     string         `json:"city,omitempty"`
	Category reconcile.Kind `json:"category"`
}

type Rank struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type MonthCount struct {
	Month int `json:"month"`
	Count int `json:"count"`
}

type Report struct {
	Filter    Filter       `json:"filter"`
	Monthly   []MonthCount `json:"monthly"`
	Titles    []Rank       `json:"titles"`
	Locations []Rank       `json:"locations"`
	Cities    []string     `json:"cities"`
}

const maxLocations = 10

// ranker counts names and keeps first-appearance order for ties.
type ranker struct {
	index map[string]int
	ranks []Rank
}

func (r *ranker) add(name string) {
	if r.index == nil {
		r.index = make(map[string]int)
	}

	if i, ok := r.index[name]; ok {
		r.ranks[i].Count++
		return
	}

	r.index[name] = len(r.ranks)
	r.ranks = append(r.ranks, Rank{Name: name, Count: 1})
}

func (r *ranker) sorted() []Rank {
	out := append([]Rank{}, r.ranks...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })

	return out
}

// Analytics counts bookings of one category. The monthly series ignores the
// month filter; the rankings honour it.
func (e *Engine) Analytics(f Filter) (Report, error) {
	const op = "analytics.Engine.Analytics"

	if f.Category == "" {
		f.Category = reconcile.KindCourse
	}
	if f.City == "" {
		f.City = "all"
	}

	if err := (Period{Year: f.Year, Month: f.Month}).Validate(); err != nil {
		return Report{}, fmt.Errorf("%s: %w", op, err)
	}

	rep := Report{Filter: f, Monthly: make([]MonthCount, 12)}
	for i := range rep.Monthly {
		rep.Monthly[i].Month = i + 1
	}

	var titles, locations ranker
	cities := make(map[string]struct{})

	for _, b := range e.snap.Bookings {
		d, ok := e.dated(b.Date)
		if !ok || d.Year() != f.Year || !e.matchesKind(b, f.Category) {
			continue
		}

		if b.City != "" {
			cities[b.City] = struct{}{}
		}

		if f.City != "all" && b.City != f.City {
			continue
		}

		rep.Monthly[d.Month()-1].Count++

		if f.Month != 0 && int(d.Month()) != f.Month {
			continue
		}

		titles.add(b.Title)
		if b.City != "" && b.State != "" {
			locations.add(b.City + " - " + b.State)
		}
	}

	rep.Titles = titles.sorted()
	rep.Locations = locations.sorted()
	if len(rep.Locations) > maxLocations {
		rep.Locations = rep.Locations[:maxLocations]
	}

	rep.Cities = make([]string, 0, len(cities))
	for c := range cities {
		rep.Cities = append(rep.Cities, c)
	}
	sort.Strings(rep.Cities)

	return rep, nil
}
