package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"selectclass/api"
	"selectclass/internal/models"
	"selectclass/internal/reconcile"
	"selectclass/internal/state"
	"selectclass/internal/storage/remote"
	"selectclass/pkg/response"
)

const (
	defaultTitle    = "Evento"
	defaultTime     = "00:00"
	defaultDuration = "1 dia"
	defaultType     = "class"
)

func (s *Service) getBooking(ctx context.Context, id string) (models.Booking, error) {
	const op = "service.getBooking"

	var b models.Booking
	found, err := s.store.Get(ctx, remote.Join(remote.PathBookings, id), &b)
	if err != nil {
		return models.Booking{}, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return models.Booking{}, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	if b.ID == "" {
		b.ID = id
	}

	return b, nil
}

func (s *Service) putBooking(ctx context.Context, b models.Booking) error {
	const op = "service.putBooking"

	if err := s.store.Put(ctx, remote.Join(remote.PathBookings, b.ID), b); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) classifier() reconcile.Classifier {
	snap := s.state.Snapshot()
	return reconcile.NewClassifier(snap.CourseTypes, snap.LectureModels)
}

func (s *Service) respond(cls reconcile.Classifier, b models.Booking) *api.BookingResponse {
	return &api.BookingResponse{
		Booking: b,
		Summary: reconcile.Summarize(b, cls.Kind(b), cls.EffectiveValue(b), s.today(), s.opts.AlertWindowDays),
	}
}

func validateBooking(req *api.BookingRequest) error {
	required := []struct{ field, value string }{
		{"student", req.Student},
		{"whatsapp", req.WhatsApp},
		{"city", req.City},
		{"state", req.State},
		{"date", req.Date},
	}

	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return response.Invalid(r.field, "is required")
		}
	}

	if req.Value != nil && req.Value.Float64() < 0 {
		return response.Invalid("value", "must not be negative")
	}
	if req.Deposit < 0 {
		return response.Invalid("deposit", "must not be negative")
	}
	if req.PaymentDeadlineDays != nil && *req.PaymentDeadlineDays < 0 {
		return response.Invalid("paymentDeadlineDays", "must not be negative")
	}

	switch req.PaymentStatus {
	case "", models.PaymentPaid, models.PaymentPending:
	default:
		return response.Invalid("paymentStatus", "must be paid or pending")
	}

	return nil
}

// CreateBooking stores a new booking. Missing fields are filled from the
// course template of the same name.
func (s *Service) CreateBooking(ctx context.Context, req *api.BookingRequest) (*api.BookingResponse, error) {
	const op = "service.CreateBooking"

	if err := validateBooking(req); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cls := s.classifier()

	b := models.Booking{
		ID:       s.newID(),
		Title:    strings.TrimSpace(req.Title),
		Time:     req.Time,
		Duration: req.Duration,
		Type:     defaultType,
	}

	if b.Title == "" {
		b.Title = defaultTitle
	}

	tpl, hasTpl := cls.Course(b.Title)
	if hasTpl {
		if b.Time == "" {
			b.Time = tpl.DefaultTime
		}
		if b.Duration == "" {
			b.Duration = tpl.DefaultDuration
		}
		b.Value = tpl.DefaultValue
		for _, d := range tpl.DefaultMaterials {
			b.Materials = append(b.Materials, models.MaterialItem{ID: s.newID(), Name: d.Name})
		}
	}

	if b.Time == "" {
		b.Time = defaultTime
	}
	if b.Duration == "" {
		b.Duration = defaultDuration
	}

	if err := s.applyRequest(ctx, &b, req, req.PaymentStatus); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.putBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.upsertStudent(ctx, b)

	s.published(func(sn *state.Snapshot) {
		sn.Bookings = upsert(sn.Bookings, b, bookingKey)
	})

	return s.respond(cls, b), nil
}

// UpdateBooking overwrites the editable fields of a booking.
func (s *Service) UpdateBooking(ctx context.Context, id string, req *api.BookingRequest) (*api.BookingResponse, error) {
	const op = "service.UpdateBooking"

	if err := validateBooking(req); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		b       models.Booking
		removed []string
		synced  []models.Expense
	)
	err := s.withBookingLock(ctx, id, func() error {
		var err error
		b, err = s.getBooking(ctx, id)
		if err != nil {
			return err
		}

		if t := strings.TrimSpace(req.Title); t != "" {
			b.Title = t
		}
		if req.Time != "" {
			b.Time = req.Time
		}
		if req.Duration != "" {
			b.Duration = req.Duration
		}

		status := req.PaymentStatus
		if status == "" {
			status = b.PaymentStatus
		}

		before := b.Materials
		if err := s.applyRequest(ctx, &b, req, status); err != nil {
			return err
		}

		if err := s.putBooking(ctx, b); err != nil {
			return err
		}

		for _, m := range droppedMaterials(before, b.Materials) {
			if m.ExpenseID != "" {
				s.deleteOrPark(ctx, remote.Join(remote.PathExpenses, m.ExpenseID))
				removed = append(removed, m.ExpenseID)
			}
		}

		for _, m := range repricedMaterials(before, b.Materials) {
			if x := s.syncLinkedExpense(ctx, m); x != nil {
				synced = append(synced, *x)
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.upsertStudent(ctx, b)

	s.published(func(sn *state.Snapshot) {
		sn.Bookings = upsert(sn.Bookings, b, bookingKey)
		for _, id := range removed {
			sn.Expenses = without(sn.Expenses, id, expenseKey)
		}
		for _, x := range synced {
			sn.Expenses = upsert(sn.Expenses, x, expenseKey)
		}
	})

	return s.respond(s.classifier(), b), nil
}

// applyRequest copies the request onto b and recomputes the payment status,
// keeping a requested paid status.
func (s *Service) applyRequest(_ context.Context, b *models.Booking, req *api.BookingRequest, status models.PaymentStatus) error {
	date, err := s.parseDate("date", req.Date)
	if err != nil {
		return err
	}
	b.Date = models.NewTimestamp(date)

	b.Student = strings.TrimSpace(req.Student)
	b.WhatsApp = strings.TrimSpace(req.WhatsApp)
	b.City = strings.TrimSpace(req.City)
	b.State = strings.TrimSpace(req.State)
	b.EventLocation = strings.TrimSpace(req.EventLocation)
	b.PaymentMethod = req.PaymentMethod
	b.PaymentDeadlineDays = req.PaymentDeadlineDays

	if b.Type == "" {
		b.Type = defaultType
	}

	if req.Value != nil {
		b.Value = *req.Value
	}

	if req.AbateExpenses != nil {
		b.AbateExpenses = *req.AbateExpenses
	}

	b.PaymentDueDate = models.Timestamp{}
	if req.PaymentDueDate != "" {
		due, err := s.parseDate("paymentDueDate", req.PaymentDueDate)
		if err != nil {
			return err
		}
		b.PaymentDueDate = models.NewTimestamp(due)
	}

	if req.Materials != nil {
		b.Materials = s.mergeMaterials(b.Materials, req.Materials)
	}

	if req.Deposit > 0 {
		b.Payments = append(b.Payments, models.Payment{
			ID:     s.newID(),
			Amount: req.Deposit,
			Date:   models.NewTimestamp(s.now()),
			Method: req.PaymentMethod,
		})
	}

	b.PaymentStatus = reconcile.Status(b.Value.Float64(), b.Payments, status)

	return nil
}

// mergeMaterials keeps the check state and expense link of materials that
// survive an edit. New entries start unchecked; only ToggleMaterial changes
// the check state.
func (s *Service) mergeMaterials(current []models.MaterialItem, reqs []api.MaterialRequest) []models.MaterialItem {
	byID := make(map[string]models.MaterialItem, len(current))
	for _, m := range current {
		byID[m.ID] = m
	}

	out := make([]models.MaterialItem, 0, len(reqs))
	for _, r := range reqs {
		if cur, ok := byID[r.ID]; ok && r.ID != "" {
			cur.Name = r.Name
			cur.Cost = r.Cost
			out = append(out, cur)
			continue
		}

		out = append(out, models.MaterialItem{ID: s.newID(), Name: r.Name, Cost: r.Cost})
	}

	return out
}

func droppedMaterials(before, after []models.MaterialItem) []models.MaterialItem {
	kept := make(map[string]struct{}, len(after))
	for _, m := range after {
		kept[m.ID] = struct{}{}
	}

	var out []models.MaterialItem
	for _, m := range before {
		if _, ok := kept[m.ID]; !ok {
			out = append(out, m)
		}
	}

	return out
}

// repricedMaterials returns the linked materials in after whose cost differs
// from before.
func repricedMaterials(before, after []models.MaterialItem) []models.MaterialItem {
	cost := make(map[string]float64, len(before))
	for _, m := range before {
		cost[m.ID] = m.Cost.Float64()
	}

	var out []models.MaterialItem
	for _, m := range after {
		prev, ok := cost[m.ID]
		if ok && m.ExpenseID != "" && prev != m.Cost.Float64() {
			out = append(out, m)
		}
	}

	return out
}

// upsertStudent records the booking's student in the directory, matching an
// existing entry by name (case-insensitive) or phone.
func (s *Service) upsertStudent(ctx context.Context, b models.Booking) {
	if b.Student == "" {
		return
	}

	students, err := remote.GetCollection[models.Student](ctx, s.store, remote.PathStudents)
	if err != nil {
		students = s.state.Snapshot().Students
	}

	st := models.Student{
		ID:        s.newID(),
		Name:      b.Student,
		Phone:     b.WhatsApp,
		City:      b.City,
		State:     b.State,
		CreatedAt: models.NewTimestamp(s.now()),
	}

	for _, cur := range students {
		if strings.EqualFold(cur.Name, b.Student) || (b.WhatsApp != "" && cur.Phone == b.WhatsApp) {
			st.ID = cur.ID
			st.CreatedAt = cur.CreatedAt
			break
		}
	}

	s.putOrPark(ctx, remote.Join(remote.PathStudents, st.ID), st)

	s.state.Update(func(sn *state.Snapshot) {
		sn.Students = upsert(sn.Students, st, studentKey)
	})
}

// AddPayment appends a payment and settles the booking when covered.
func (s *Service) AddPayment(ctx context.Context, id string, req *api.PaymentRequest) (*api.BookingResponse, error) {
	const op = "service.AddPayment"

	if req.Amount <= 0 {
		return nil, fmt.Errorf("%s: %w", op, response.Invalid("amount", "must be greater than zero"))
	}

	paidAt := s.now()
	if req.Date != "" {
		d, err := s.parseDate("date", req.Date)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		paidAt = d
	}

	var b models.Booking
	err := s.withBookingLock(ctx, id, func() error {
		var err error
		b, err = s.getBooking(ctx, id)
		if err != nil {
			return err
		}

		b.Payments = append(b.Payments, models.Payment{
			ID:     s.newID(),
			Amount: req.Amount,
			Date:   models.NewTimestamp(paidAt),
			Method: req.Method,
		})
		b.PaymentStatus = reconcile.Status(b.Value.Float64(), b.Payments, b.PaymentStatus)

		return s.putBooking(ctx, b)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.published(func(sn *state.Snapshot) {
		sn.Bookings = upsert(sn.Bookings, b, bookingKey)
	})

	return s.respond(s.classifier(), b), nil
}

// DeleteBooking removes a booking and the expenses its materials created.
func (s *Service) DeleteBooking(ctx context.Context, id string) error {
	const op = "service.DeleteBooking"

	var linked []string
	err := s.withBookingLock(ctx, id, func() error {
		b, err := s.getBooking(ctx, id)
		if err != nil {
			return err
		}

		if err := s.store.Delete(ctx, remote.Join(remote.PathBookings, id)); err != nil {
			return err
		}

		for _, m := range b.Materials {
			if m.ExpenseID != "" {
				linked = append(linked, m.ExpenseID)
				s.deleteOrPark(ctx, remote.Join(remote.PathExpenses, m.ExpenseID))
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.published(func(sn *state.Snapshot) {
		sn.Bookings = without(sn.Bookings, id, bookingKey)
		for _, x := range linked {
			sn.Expenses = without(sn.Expenses, x, expenseKey)
		}
	})

	return nil
}

// GetBooking reads a booking from the snapshot, falling back to the store for
// records newer than the last refresh.
func (s *Service) GetBooking(ctx context.Context, id string) (*api.BookingResponse, error) {
	const op = "service.GetBooking"

	for _, b := range s.state.Snapshot().Bookings {
		if b.ID == id {
			return s.respond(s.classifier(), b), nil
		}
	}

	b, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.respond(s.classifier(), b), nil
}

func dateOr(ts models.Timestamp, fallback time.Time) time.Time {
	if ts.IsZero() {
		return fallback
	}

	return ts.Time
}
