package service

import (
	"context"
	"fmt"
	"log/slog"

	"selectclass/api"
	"selectclass/internal/models"
	"selectclass/internal/reconcile"
	"selectclass/internal/state"
	"selectclass/internal/storage/remote"
	"selectclass/pkg/response"
)

// ToggleMaterial flips a material's checked flag. For courses, checking
// records the material as an expense and unchecking removes that expense.
// The expense and booking writes succeed or fail together.
func (s *Service) ToggleMaterial(ctx context.Context, bookingID, materialID string) (*api.BookingResponse, error) {
	const op = "service.ToggleMaterial"

	cls := s.classifier()

	var (
		b       models.Booking
		created *models.Expense
		removed string
	)

	err := s.withBookingLock(ctx, bookingID, func() error {
		var err error
		b, err = s.getBooking(ctx, bookingID)
		if err != nil {
			return err
		}

		i := b.Material(materialID)
		if i < 0 {
			return response.ErrNotFound
		}
		m := &b.Materials[i]

		if cls.Kind(b) != reconcile.KindCourse {
			m.Checked = !m.Checked
			return s.putBooking(ctx, b)
		}

		if !m.Checked {
			created, err = s.checkMaterial(ctx, b, m)
			return err
		}

		removed = m.ExpenseID
		return s.uncheckMaterial(ctx, b, m)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.published(func(sn *state.Snapshot) {
		sn.Bookings = upsert(sn.Bookings, b, bookingKey)
		if created != nil {
			sn.Expenses = upsert(sn.Expenses, *created, expenseKey)
		}
		if removed != "" {
			sn.Expenses = without(sn.Expenses, removed, expenseKey)
		}
	})

	return s.respond(cls, b), nil
}

func (s *Service) checkMaterial(ctx context.Context, b models.Booking, m *models.MaterialItem) (*models.Expense, error) {
	student := b.Student
	if student == "" {
		student = "Aluna"
	}

	x := models.Expense{
		ID:     s.newID(),
		Title:  fmt.Sprintf("%s - %s", m.Name, student),
		Amount: m.Cost,
		Date:   models.NewTimestamp(dateOr(b.Date, s.now())),
	}
	path := remote.Join(remote.PathExpenses, x.ID)

	if err := s.store.Put(ctx, path, x); err != nil {
		return nil, err
	}

	m.Checked = true
	m.ExpenseID = x.ID

	if err := s.putBooking(ctx, b); err != nil {
		s.deleteOrPark(ctx, path)
		return nil, err
	}

	return &x, nil
}

func (s *Service) uncheckMaterial(ctx context.Context, b models.Booking, m *models.MaterialItem) error {
	var (
		prev    models.Expense
		hadPrev bool
	)

	if m.ExpenseID != "" {
		path := remote.Join(remote.PathExpenses, m.ExpenseID)

		found, err := s.store.Get(ctx, path, &prev)
		if err != nil {
			return err
		}
		hadPrev = found

		if err := s.store.Delete(ctx, path); err != nil {
			return err
		}
	}

	linked := m.ExpenseID
	m.Checked = false
	m.ExpenseID = ""

	if err := s.putBooking(ctx, b); err != nil {
		if hadPrev {
			s.putOrPark(ctx, remote.Join(remote.PathExpenses, linked), prev)
		}
		return err
	}

	return nil
}

// UpdateMaterialCost changes a material's cost and the amount of the expense
// it is linked to.
func (s *Service) UpdateMaterialCost(ctx context.Context, bookingID, materialID string, req *api.MaterialCostRequest) (*api.BookingResponse, error) {
	const op = "service.UpdateMaterialCost"

	if req.Cost < 0 {
		return nil, fmt.Errorf("%s: %w", op, response.Invalid("cost", "must not be negative"))
	}

	var (
		b       models.Booking
		updated *models.Expense
	)

	err := s.withBookingLock(ctx, bookingID, func() error {
		var err error
		b, err = s.getBooking(ctx, bookingID)
		if err != nil {
			return err
		}

		i := b.Material(materialID)
		if i < 0 {
			return response.ErrNotFound
		}
		b.Materials[i].Cost = req.Cost

		if err := s.putBooking(ctx, b); err != nil {
			return err
		}

		updated = s.syncLinkedExpense(ctx, b.Materials[i])

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.published(func(sn *state.Snapshot) {
		sn.Bookings = upsert(sn.Bookings, b, bookingKey)
		if updated != nil {
			sn.Expenses = upsert(sn.Expenses, *updated, expenseKey)
		}
	})

	return s.respond(s.classifier(), b), nil
}

// syncLinkedExpense sets the amount of the expense a checked material created
// to the material's cost. A failed write is parked.
func (s *Service) syncLinkedExpense(ctx context.Context, m models.MaterialItem) *models.Expense {
	const op = "service.syncLinkedExpense"

	if m.ExpenseID == "" {
		return nil
	}

	path := remote.Join(remote.PathExpenses, m.ExpenseID)

	var x models.Expense
	found, err := s.store.Get(ctx, path, &x)
	if err != nil || !found {
		s.log.Warn("Linked expense not updated",
			slog.String("op", op),
			slog.String("expense_id", m.ExpenseID),
			slog.Bool("found", found),
		)
		return nil
	}

	x.Amount = m.Cost
	s.putOrPark(ctx, path, x)

	return &x
}
