package service

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"selectclass/api"
	"selectclass/internal/analytics"
	"selectclass/internal/report"
)

const (
	minQuickSearch   = 2
	quickSearchLimit = 10
)

func (s *Service) engine() *analytics.Engine {
	return analytics.New(s.state.Snapshot(), s.opts.Location)
}

// ListBookings searches the snapshot and reconciles every match.
func (s *Service) ListBookings(f analytics.SearchFilter) ([]api.BookingResponse, error) {
	const op = "service.ListBookings"

	e := s.engine()

	found, err := e.Search(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]api.BookingResponse, 0, len(found))
	for _, b := range found {
		out = append(out, *s.respond(e.Classifier(), b))
	}

	return out, nil
}

// QuickSearch is the search box: at least two characters, ten results.
func (s *Service) QuickSearch(term string) ([]api.BookingResponse, error) {
	if len([]rune(strings.TrimSpace(term))) < minQuickSearch {
		return []api.BookingResponse{}, nil
	}

	return s.ListBookings(analytics.SearchFilter{Term: term, Limit: quickSearchLimit})
}

// Agenda lists the bookings held on date (YYYY-MM-DD, default today).
func (s *Service) Agenda(date string) ([]analytics.AgendaItem, error) {
	const op = "service.Agenda"

	day := s.today()
	if date != "" {
		d, err := s.parseDate("date", date)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		day = d
	}

	return s.engine().Agenda(day), nil
}

func (s *Service) CalendarDays(year, month int) ([]int, error) {
	const op = "service.CalendarDays"

	year, month = s.defaultMonth(year, month)

	days, err := s.engine().CalendarDays(year, month)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return days, nil
}

func (s *Service) Dashboard(year, month int) (*analytics.Dashboard, error) {
	const op = "service.Dashboard"

	year, month = s.defaultMonth(year, month)

	d, err := s.engine().Dashboard(analytics.Period{Year: year, Month: month})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &d, nil
}

func (s *Service) Analytics(f analytics.Filter) (*analytics.Report, error) {
	const op = "service.Analytics"

	if f.Year == 0 {
		f.Year = s.today().Year()
	}

	rep, err := s.engine().Analytics(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &rep, nil
}

func (s *Service) Financial(p analytics.Period) (*analytics.Financial, error) {
	const op = "service.Financial"

	p.Year, p.Month = s.defaultMonth(p.Year, p.Month)

	snap := s.state.Snapshot()

	fin, err := analytics.New(snap, s.opts.Location).Financial(p, snap.Settings.AnnualGoal.Float64())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &fin, nil
}

func (s *Service) defaultMonth(year, month int) (int, int) {
	now := s.today()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}

	return year, month
}

var weekdays = [...]string{
	time.Sunday:    "domingo",
	time.Monday:    "segunda-feira",
	time.Tuesday:   "terça-feira",
	time.Wednesday: "quarta-feira",
	time.Thursday:  "quinta-feira",
	time.Friday:    "sexta-feira",
	time.Saturday:  "sábado",
}

// Share builds the confirmation message sent to the student and a WhatsApp
// link carrying it.
func (s *Service) Share(ctx context.Context, id string) (*api.ShareResponse, error) {
	const op = "service.Share"

	res, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	b := res.Booking

	var date, weekday string
	if !b.Date.IsZero() {
		d := b.Date.In(s.opts.Location)
		date = d.Format("02/01/2006")
		weekday = weekdays[d.Weekday()]
	}

	msg := fmt.Sprintf(
		"Parabéns pela sua aquisição no curso! O seu curso de %s foi agendado para o dia %s (%s) às %s.\n\nNosso endereço fica na %s",
		b.Title, date, weekday, b.Time, s.opts.DefaultAddress,
	)

	return &api.ShareResponse{
		Message:     msg,
		WhatsAppURL: WhatsAppURL(b.WhatsApp, msg),
	}, nil
}

// WhatsAppURL returns a wa.me link for phone, adding the Brazilian country
// code to numbers of up to eleven digits. It is empty without a number.
func WhatsAppURL(phone, text string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	number := digits.String()
	if number == "" {
		return ""
	}
	if len(number) <= 11 {
		number = "55" + number
	}

	return "https://wa.me/" + number + "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

// Receipt renders the booking's payment receipt as PDF.
func (s *Service) Receipt(ctx context.Context, id string) ([]byte, error) {
	const op = "service.Receipt"

	res, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r := report.Receipt{
		Instructor: s.state.Snapshot().Settings.InstructorName,
		Booking:    res.Booking,
		Summary:    res.Summary,
		IssuedAt:   s.now(),
		Location:   s.opts.Location,
	}

	var buf bytes.Buffer
	if err := r.Write(&buf); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return buf.Bytes(), nil
}
