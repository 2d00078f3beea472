package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"selectclass/api"
	"selectclass/internal/analytics"
	"selectclass/internal/models"
	"selectclass/internal/reconcile"
	"selectclass/internal/state"
	"selectclass/internal/storage/remote"
	"selectclass/pkg/response"
	"selectclass/pkg/sl"
)

func (s *Service) AddExpense(ctx context.Context, req *api.ExpenseRequest) (*models.Expense, error) {
	const op = "service.AddExpense"

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%s: %w", op, response.Invalid("title", "is required"))
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%s: %w", op, response.Invalid("amount", "must be greater than zero"))
	}

	kind, ok := reconcile.ParseKind(req.Category)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, response.Invalid("category", "must be cursos or palestras"))
	}

	date := s.today()
	if req.Date != "" {
		d, err := s.parseDate("date", req.Date)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		date = d
	}

	x := models.Expense{
		ID:       s.newID(),
		Title:    title,
		Amount:   req.Amount,
		Date:     models.NewTimestamp(date),
		Category: string(kind),
	}

	if err := s.store.Put(ctx, remote.Join(remote.PathExpenses, x.ID), x); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.published(func(sn *state.Snapshot) {
		sn.Expenses = upsert(sn.Expenses, x, expenseKey)
	})

	return &x, nil
}

// DeleteExpense removes an expense. A material that created it is unchecked
// and unlinked. The owning bookings are locked and read before the expense
// goes, so a held lock or a failed read leaves everything in place.
func (s *Service) DeleteExpense(ctx context.Context, id string) error {
	const op = "service.DeleteExpense"

	path := remote.Join(remote.PathExpenses, id)

	var x models.Expense
	found, err := s.store.Get(ctx, path, &x)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	bookings, err := remote.GetCollection[models.Booking](ctx, s.store, remote.PathBookings)
	if err != nil {
		s.log.Warn("Using snapshot to find linked materials", slog.String("op", op), sl.Err(err))
		bookings = s.state.Snapshot().Bookings
	}

	var owners []string
	for _, b := range bookings {
		if linksExpense(b, id) {
			owners = append(owners, b.ID)
		}
	}
	sort.Strings(owners)

	var unlinked []models.Booking
	err = s.withBookingLocks(ctx, owners, func() error {
		for _, bid := range owners {
			b, err := s.getBooking(ctx, bid)
			if err != nil {
				return err
			}
			unlinked = append(unlinked, unlinkExpense(b, id))
		}

		if err := s.store.Delete(ctx, path); err != nil {
			return err
		}

		for _, b := range unlinked {
			s.putOrPark(ctx, remote.Join(remote.PathBookings, b.ID), b)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.published(func(sn *state.Snapshot) {
		sn.Expenses = without(sn.Expenses, id, expenseKey)
		for _, b := range unlinked {
			sn.Bookings = upsert(sn.Bookings, b, bookingKey)
		}
	})

	return nil
}

func linksExpense(b models.Booking, expenseID string) bool {
	for _, m := range b.Materials {
		if m.ExpenseID == expenseID {
			return true
		}
	}

	return false
}

func unlinkExpense(b models.Booking, expenseID string) models.Booking {
	materials := make([]models.MaterialItem, len(b.Materials))
	copy(materials, b.Materials)

	for i := range materials {
		if materials[i].ExpenseID == expenseID {
			materials[i].ExpenseID = ""
			materials[i].Checked = false
		}
	}
	b.Materials = materials

	return b
}

func (s *Service) Ledger(f analytics.LedgerFilter) (*analytics.Ledger, error) {
	const op = "service.Ledger"

	l, err := analytics.New(s.state.Snapshot(), s.opts.Location).Ledger(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &l, nil
}
