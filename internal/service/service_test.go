package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"selectclass/api"
	"selectclass/internal/auth"
	"selectclass/internal/lock"
	"selectclass/internal/models"
	"selectclass/internal/money"
	"selectclass/internal/outbox"
	"selectclass/internal/state"
	"selectclass/internal/storage/remote"
	"selectclass/internal/storage/remote/remotetest"
	"selectclass/pkg/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingNotifier struct{ n int }

func (c *countingNotifier) Trigger() { c.n++ }

type harness struct {
	svc    *Service
	mem    *remotetest.Memory
	locker *lock.MemoryLock
	outbox *outbox.Memory
	state  *state.Store
	notify *countingNotifier
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		mem:    remotetest.NewMemory(),
		locker: lock.NewMemoryLock(),
		outbox: outbox.NewMemory(),
		state:  state.New(),
		notify: &countingNotifier{},
	}

	tokens, err := auth.NewTokens("test-secret", time.Hour)
	require.NoError(t, err)

	h.svc = NewService(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		h.mem, h.locker, h.outbox, h.state, h.notify, tokens,
		Options{Location: time.UTC},
	)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	h.svc.now = func() time.Time { return now }

	seq := 0
	h.svc.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}

	h.state.Update(func(sn *state.Snapshot) {
		sn.CourseTypes = []models.CourseType{{
			ID: "c1", Name: "Curso Vip", DefaultValue: 1000, DefaultTime: "09:00", DefaultDuration: "2 dias",
			DefaultMaterials: []models.MaterialDef{{Name: "Apostila"}, {Name: "Kit"}},
		}}
		sn.LectureModels = []models.LectureModel{
			{ID: "l1", Name: "Oratória", Type: "Palestra", Order: 0},
			{ID: "l2", Name: "Liderança", Type: "Palestra", Order: 1},
			{ID: "l3", Name: "Vendas", Type: "Workshop", Order: 2},
		}
	})

	return h
}

func amount(v float64) *money.Amount {
	a := money.Amount(v)
	return &a
}

func bookingRequest() *api.BookingRequest {
	return &api.BookingRequest{
		Title:    "Curso Vip",
		Student:  "Ana",
		WhatsApp: "11999998888",
		City:     "Guarulhos",
		State:    "SP",
		Date:     "2026-03-20",
	}
}

func (h *harness) storedBooking(t *testing.T, id string) models.Booking {
	t.Helper()

	var b models.Booking
	require.True(t, h.mem.Decode(remote.Join(remote.PathBookings, id), &b), "booking %s stored", id)

	return b
}

func TestCreateBookingFillsFromTemplate(t *testing.T) {
	h := newHarness(t)

	req := bookingRequest()
	req.Deposit = 300

	res, err := h.svc.CreateBooking(context.Background(), req)
	require.NoError(t, err)

	b := h.storedBooking(t, res.Booking.ID)
	assert.Equal(t, "09:00", b.Time)
	assert.Equal(t, "2 dias", b.Duration)
	assert.Equal(t, "class", b.Type)
	assert.Equal(t, money.Amount(1000), b.Value)
	require.Len(t, b.Materials, 2)
	assert.Equal(t, "Apostila", b.Materials[0].Name)
	assert.False(t, b.Materials[0].Checked)

	require.Len(t, b.Payments, 1, "deposit becomes the first payment")
	assert.Equal(t, money.Amount(300), b.Payments[0].Amount)
	assert.Equal(t, models.PaymentPending, b.PaymentStatus)

	assert.InDelta(t, 300, res.Summary.Deposit, 0.001)
	assert.InDelta(t, 700, res.Summary.Remaining, 0.001)
	assert.True(t, time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC).Equal(b.Date.Time))

	students := h.mem.Children(remote.PathStudents)
	require.Len(t, students, 1)

	assert.Len(t, h.state.Snapshot().Bookings, 1, "snapshot sees the write")
	assert.Positive(t, h.notify.n)
}

func TestCreateBookingDefaultsWithoutTemplate(t *testing.T) {
	h := newHarness(t)

	req := bookingRequest()
	req.Title = ""
	req.Value = amount(500)
	req.Deposit = 500

	res, err := h.svc.CreateBooking(context.Background(), req)
	require.NoError(t, err)

	b := res.Booking
	assert.Equal(t, "Evento", b.Title)
	assert.Equal(t, "00:00", b.Time)
	assert.Equal(t, "1 dia", b.Duration)
	assert.Equal(t, models.PaymentPaid, b.PaymentStatus, "deposit covering the value settles it")
	assert.True(t, res.Summary.IsPaid)
}

func TestCreateBookingValidation(t *testing.T) {
	h := newHarness(t)

	cases := map[string]func(r *api.BookingRequest){
		"student":       func(r *api.BookingRequest) { r.Student = " " },
		"whatsapp":      func(r *api.BookingRequest) { r.WhatsApp = "" },
		"city":          func(r *api.BookingRequest) { r.City = "" },
		"state":         func(r *api.BookingRequest) { r.State = "" },
		"date":          func(r *api.BookingRequest) { r.Date = "20/03/2026" },
		"value":         func(r *api.BookingRequest) { r.Value = amount(-1) },
		"paymentStatus": func(r *api.BookingRequest) { r.PaymentStatus = "maybe" },
	}

	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			req := bookingRequest()
			mutate(req)

			_, err := h.svc.CreateBooking(context.Background(), req)

			var verr *response.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, field, verr.Field)
		})
	}

	assert.Empty(t, h.mem.Children(remote.PathBookings))
}

func TestSaveUpsertsExistingStudent(t *testing.T) {
	h := newHarness(t)

	created := models.NewTimestamp(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	h.mem.Seed("v1/students/s1", models.Student{ID: "s1", Name: "ANA", Phone: "000", CreatedAt: created})

	_, err := h.svc.CreateBooking(context.Background(), bookingRequest())
	require.NoError(t, err)

	require.Equal(t, []string{"s1"}, h.mem.Children(remote.PathStudents))

	var st models.Student
	require.True(t, h.mem.Decode("v1/students/s1", &st))
	assert.Equal(t, "Ana", st.Name)
	assert.Equal(t, "11999998888", st.Phone)
	assert.True(t, created.Equal(st.CreatedAt.Time), "createdAt is kept")
}

func TestAddPaymentSettlesBooking(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.svc.CreateBooking(ctx, bookingRequest())
	require.NoError(t, err)
	id := res.Booking.ID

	res, err = h.svc.AddPayment(ctx, id, &api.PaymentRequest{Amount: 400})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, res.Booking.PaymentStatus)
	assert.False(t, res.Summary.IsPaid)

	res, err = h.svc.AddPayment(ctx, id, &api.PaymentRequest{Amount: 600, Date: "2026-03-02", Method: "pix"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, res.Booking.PaymentStatus)
	assert.True(t, res.Summary.IsPaid)
	assert.InDelta(t, 0, res.Summary.Remaining, 0.001)

	assert.Equal(t, models.PaymentPaid, h.storedBooking(t, id).PaymentStatus)

	_, err = h.svc.AddPayment(ctx, id, &api.PaymentRequest{Amount: 0})
	var verr *response.ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = h.svc.AddPayment(ctx, "missing", &api.PaymentRequest{Amount: 10})
	assert.True(t, errors.Is(err, response.ErrNotFound))
}

func TestUpdateBookingKeepsMaterialLinks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.svc.CreateBooking(ctx, bookingRequest())
	require.NoError(t, err)
	b := res.Booking

	res, err = h.svc.ToggleMaterial(ctx, b.ID, b.Materials[0].ID)
	require.NoError(t, err)
	linked := res.Booking.Materials[0].ExpenseID
	require.NotEmpty(t, linked)

	req := bookingRequest()
	req.City = "Santos"
	req.Materials = []api.MaterialRequest{
		{ID: b.Materials[0].ID, Name: "Apostila", Cost: 50},
		{Name: "Caneta", Cost: 5},
	}

	res, err = h.svc.UpdateBooking(ctx, b.ID, req)
	require.NoError(t, err)

	got := h.storedBooking(t, b.ID)
	assert.Equal(t, "Santos", got.City)
	require.Len(t, got.Materials, 2)
	assert.True(t, got.Materials[0].Checked)
	assert.Equal(t, linked, got.Materials[0].ExpenseID)
	assert.Equal(t, "Caneta", got.Materials[1].Name)
	assert.Len(t, got.Payments, 0)

	req.Materials = []api.MaterialRequest{{Name: "Caneta", Cost: 5}}
	_, err = h.svc.UpdateBooking(ctx, b.ID, req)
	require.NoError(t, err)
	assert.False(t, h.mem.Has(remote.Join(remote.PathExpenses, linked)), "dropped material takes its expense")
}

func TestUpdateBookingKeepsStoredPaidStatus(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	req := bookingRequest()
	req.PaymentStatus = models.PaymentPaid

	res, err := h.svc.CreateBooking(ctx, req)
	require.NoError(t, err)
	require.Equal(t, models.PaymentPaid, res.Booking.PaymentStatus)

	req = bookingRequest()
	req.EventLocation = "Sala 6"

	res, err = h.svc.UpdateBooking(ctx, res.Booking.ID, req)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, res.Booking.PaymentStatus)
	assert.Equal(t, models.PaymentPaid, h.storedBooking(t, res.Booking.ID).PaymentStatus)

	req.PaymentStatus = models.PaymentPending
	res, err = h.svc.UpdateBooking(ctx, res.Booking.ID, req)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, res.Booking.PaymentStatus, "explicit status wins")
}

func TestBookingEditCannotCheckMaterials(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	var req api.BookingRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"student": "Ana", "whatsapp": "11999998888", "city": "Guarulhos", "state": "SP",
		"date": "2026-03-20", "materials": [{"name": "Banner", "cost": 80, "checked": true}]
	}`), &req))

	res, err := h.svc.CreateBooking(ctx, &req)
	require.NoError(t, err)

	got := h.storedBooking(t, res.Booking.ID)
	require.Len(t, got.Materials, 1)
	assert.False(t, got.Materials[0].Checked)
	assert.Empty(t, got.Materials[0].ExpenseID)
	assert.Empty(t, h.mem.Children(remote.PathExpenses))
}

func TestUpdateBookingRepricesLinkedExpense(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.svc.CreateBooking(ctx, bookingRequest())
	require.NoError(t, err)
	b := res.Booking

	res, err = h.svc.ToggleMaterial(ctx, b.ID, b.Materials[0].ID)
	require.NoError(t, err)
	linked := res.Booking.Materials[0].ExpenseID

	req := bookingRequest()
	req.Materials = []api.MaterialRequest{
		{ID: b.Materials[0].ID, Name: "Apostila", Cost: 70},
		{ID: b.Materials[1].ID, Name: "Kit", Cost: 20},
	}

	_, err = h.svc.UpdateBooking(ctx, b.ID, req)
	require.NoError(t, err)

	var x models.Expense
	require.True(t, h.mem.Decode(remote.Join(remote.PathExpenses, linked), &x))
	assert.Equal(t, money.Amount(70), x.Amount, "linked expense follows the edited cost")
	assert.Len(t, h.mem.Children(remote.PathExpenses), 1, "unchecked materials have no expense")

	for _, e := range h.state.Snapshot().Expenses {
		if e.ID == linked {
			assert.Equal(t, money.Amount(70), e.Amount)
		}
	}
}

func TestToggleMaterialCreatesAndRemovesExpense(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.svc.CreateBooking(ctx, bookingRequest())
	require.NoError(t, err)
	b := res.Booking
	matID := b.Materials[0].ID

	_, err = h.svc.UpdateMaterialCost(ctx, b.ID, matID, &api.MaterialCostRequest{Cost: 45})
	require.NoError(t, err)

	res, err = h.svc.ToggleMaterial(ctx, b.ID, matID)
	require.NoError(t, err)

	m := res.Booking.Materials[0]
	assert.True(t, m.Checked)
	require.NotEmpty(t, m.ExpenseID)

	var x models.Expense
	require.True(t, h.mem.Decode(remote.Join(remote.PathExpenses, m.ExpenseID), &x))
	assert.Equal(t, "Apostila - Ana", x.Title)
	assert.Equal(t, money.Amount(45), x.Amount)
	assert.True(t, b.Date.Equal(x.Date.Time), "expense is dated at the booking")

	assert.InDelta(t, 45, res.Summary.MaterialCost, 0.001)
	assert.InDelta(t, 955, res.Summary.Net, 0.001)

	_, err = h.svc.UpdateMaterialCost(ctx, b.ID, matID, &api.MaterialCostRequest{Cost: 60})
	require.NoError(t, err)
	require.True(t, h.mem.Decode(remote.Join(remote.PathExpenses, m.ExpenseID), &x))
	assert.Equal(t, money.Amount(60), x.Amount, "linked expense follows the cost")

	res, err = h.svc.ToggleMaterial(ctx, b.ID, matID)
	require.NoError(t, err)
	assert.False(t, res.Booking.Materials[0].Checked)
	assert.Empty(t, res.Booking.Materials[0].ExpenseID)
	assert.False(t, h.mem.Has(remote.Join(remote.PathExpenses, m.ExpenseID)))

	res, err = h.svc.ToggleMaterial(ctx, b.ID, matID)
	require.NoError(t, err)
	again := res.Booking.Materials[0]
	assert.True(t, again.Checked)
	require.NotEmpty(t, again.ExpenseID)
	assert.NotEqual(t, m.ExpenseID, again.ExpenseID, "checking again records a new expense")
	assert.True(t, h.mem.Has(remote.Join(remote.PathExpenses, again.ExpenseID)))
	assert.Len(t, h.mem.Children(remote.PathExpenses), 1)

	_, err = h.svc.ToggleMaterial(ctx, b.ID, "nope")
	assert.True(t, errors.Is(err, response.ErrNotFound))
}

func TestToggleMaterialCompensatesFailedBookingWrite(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.svc.CreateBooking(ctx, bookingRequest())
	require.NoError(t, err)
	b := res.Booking

	h.mem.FailOn(http.MethodPut, remote.Join(remote.PathBookings, b.ID), response.ErrStoreUnavailable)

	_, err = h.svc.ToggleMaterial(ctx, b.ID, b.Materials[0].ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, response.ErrStoreUnavailable))

	assert.Empty(t, h.mem.Children(remote.PathExpenses), "created expense is rolled back")
	assert.False(t, h.storedBooking(t, b.ID).Materials[0].Checked)

	h.mem.FailOn(http.MethodPut, remote.Join(remote.PathBookings, b.ID), nil)
	res, err = h.svc.ToggleMaterial(ctx, b.ID, b.Materials[0].ID)
	require.NoError(t, err)
	linked := res.Booking.Materials[0].ExpenseID

	h.mem.FailOn(http.MethodPut, remote.Join(remote.PathBookings, b.ID), response.ErrStoreUnavailable)
	_, err = h.svc.ToggleMaterial(ctx, b.ID, b.Materials[0].ID)
	require.Error(t, err)

	assert.True(t, h.mem.Has(remote.Join(remote.PathExpenses, linked)), "deleted expense is restored")
	assert.True(t, h.storedBooking(t, b.ID).Materials[0].Checked)
}

func TestToggleMaterialOnLectureOnlyFlips(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.mem.Seed("v1/appointments/p1", models.Booking{
		ID: "p1", Title: "Oratória", Value: 500,
		Materials: []models.MaterialItem{{ID: "m1", Name: "Banner", Cost: 80}},
	})

	res, err := h.svc.ToggleMaterial(ctx, "p1", "m1")
	require.NoError(t, err)

	assert.True(t, res.Booking.Materials[0].Checked)
	assert.Empty(t, res.Booking.Materials[0].ExpenseID)
	assert.Empty(t, h.mem.Children(remote.PathExpenses))
	assert.InDelta(t, 500, res.Summary.Net, 0.001, "lectures keep their value without abatement")
}

func TestDeleteLinkedExpenseUnchecksMaterial(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.svc.CreateBooking(ctx, bookingRequest())
	require.NoError(t, err)
	b := res.Booking

	res, err = h.svc.ToggleMaterial(ctx, b.ID, b.Materials[1].ID)
	require.NoError(t, err)
	linked := res.Booking.Materials[1].ExpenseID

	require.NoError(t, h.svc.DeleteExpense(ctx, linked))

	got := h.storedBooking(t, b.ID)
	assert.False(t, got.Materials[1].Checked)
	assert.Empty(t, got.Materials[1].ExpenseID)
	assert.False(t, h.mem.Has(remote.Join(remote.PathExpenses, linked)))

	err = h.svc.DeleteExpense(ctx, linked)
	assert.True(t, errors.Is(err, response.ErrNotFound))
}

func TestDeleteLinkedExpenseWhileBookingLocked(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.svc.CreateBooking(ctx, bookingRequest())
	require.NoError(t, err)
	b := res.Booking

	res, err = h.svc.ToggleMaterial(ctx, b.ID, b.Materials[0].ID)
	require.NoError(t, err)
	linked := res.Booking.Materials[0].ExpenseID

	token, ok, err := h.locker.Lock(ctx, "booking:"+b.ID, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	err = h.svc.DeleteExpense(ctx, linked)
	assert.True(t, errors.Is(err, response.ErrLocked))

	assert.True(t, h.mem.Has(remote.Join(remote.PathExpenses, linked)), "expense is kept while its booking is locked")
	got := h.storedBooking(t, b.ID)
	assert.True(t, got.Materials[0].Checked)
	assert.Equal(t, linked, got.Materials[0].ExpenseID)
	assert.Empty(t, h.outbox.All())

	require.NoError(t, h.locker.Unlock(ctx, "booking:"+b.ID, token))
	require.NoError(t, h.svc.DeleteExpense(ctx, linked))

	got = h.storedBooking(t, b.ID)
	assert.False(t, got.Materials[0].Checked)
	assert.Empty(t, got.Materials[0].ExpenseID)
	assert.False(t, h.mem.Has(remote.Join(remote.PathExpenses, linked)))
}

func TestDeleteLinkedExpenseParksFailedUnlink(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.svc.CreateBooking(ctx, bookingRequest())
	require.NoError(t, err)
	b := res.Booking

	res, err = h.svc.ToggleMaterial(ctx, b.ID, b.Materials[0].ID)
	require.NoError(t, err)
	linked := res.Booking.Materials[0].ExpenseID

	bookingPath := remote.Join(remote.PathBookings, b.ID)
	h.mem.FailOn(http.MethodGet, bookingPath, response.ErrStoreUnavailable)

	err = h.svc.DeleteExpense(ctx, linked)
	assert.True(t, errors.Is(err, response.ErrStoreUnavailable))
	assert.True(t, h.mem.Has(remote.Join(remote.PathExpenses, linked)), "unreadable booking keeps the expense")

	h.mem.FailOn(http.MethodGet, bookingPath, nil)
	h.mem.FailOn(http.MethodPut, bookingPath, errors.New("timeout"))

	require.NoError(t, h.svc.DeleteExpense(ctx, linked))
	assert.False(t, h.mem.Has(remote.Join(remote.PathExpenses, linked)))

	parked := h.outbox.All()
	require.Len(t, parked, 1)
	assert.Equal(t, http.MethodPut, parked[0].Method)
	assert.Equal(t, bookingPath, parked[0].Path)

	var queued models.Booking
	require.NoError(t, json.Unmarshal(parked[0].Body, &queued))
	assert.False(t, queued.Materials[0].Checked)
	assert.Empty(t, queued.Materials[0].ExpenseID)
}

func TestDeleteBookingCascadesAndParksFailures(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.svc.CreateBooking(ctx, bookingRequest())
	require.NoError(t, err)
	b := res.Booking

	res, err = h.svc.ToggleMaterial(ctx, b.ID, b.Materials[0].ID)
	require.NoError(t, err)
	first := res.Booking.Materials[0].ExpenseID

	res, err = h.svc.ToggleMaterial(ctx, b.ID, b.Materials[1].ID)
	require.NoError(t, err)
	second := res.Booking.Materials[1].ExpenseID

	h.mem.FailOn(http.MethodDelete, remote.Join(remote.PathExpenses, second), errors.New("timeout"))

	require.NoError(t, h.svc.DeleteBooking(ctx, b.ID))

	assert.False(t, h.mem.Has(remote.Join(remote.PathBookings, b.ID)))
	assert.False(t, h.mem.Has(remote.Join(remote.PathExpenses, first)))

	parked := h.outbox.All()
	require.Len(t, parked, 1)
	assert.Equal(t, http.MethodDelete, parked[0].Method)
	assert.Equal(t, remote.Join(remote.PathExpenses, second), parked[0].Path)

	assert.Empty(t, h.state.Snapshot().Bookings)

	err = h.svc.DeleteBooking(ctx, b.ID)
	assert.True(t, errors.Is(err, response.ErrNotFound))
}

func TestLockedBookingIsRejected(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.svc.CreateBooking(ctx, bookingRequest())
	require.NoError(t, err)

	_, ok, err := h.locker.Lock(ctx, "booking:"+res.Booking.ID, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = h.svc.ToggleMaterial(ctx, res.Booking.ID, res.Booking.Materials[0].ID)
	assert.True(t, errors.Is(err, response.ErrLocked))

	_, err = h.svc.AddPayment(ctx, res.Booking.ID, &api.PaymentRequest{Amount: 10})
	assert.True(t, errors.Is(err, response.ErrLocked))
}

func TestLoginAndCredentials(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.svc.Login(ctx, &api.LoginRequest{User: "admin", Pass: "1234"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	_, err = h.svc.Login(ctx, &api.LoginRequest{User: "admin", Pass: "nope"})
	assert.True(t, errors.Is(err, response.ErrUnauthorized))

	require.NoError(t, h.svc.UpdateCredentials(ctx, &api.CredentialsRequest{User: "maria", Pass: "s3cret"}))

	var stored models.Credentials
	require.True(t, h.mem.Decode(remote.PathCredentials, &stored))
	assert.Equal(t, "maria", stored.User)
	assert.True(t, strings.HasPrefix(stored.Pass, "$2"), "password is hashed")

	_, err = h.svc.Login(ctx, &api.LoginRequest{User: "admin", Pass: "1234"})
	assert.True(t, errors.Is(err, response.ErrUnauthorized), "defaults stop working")

	_, err = h.svc.Login(ctx, &api.LoginRequest{User: "maria", Pass: "s3cret"})
	require.NoError(t, err)

	h.mem.Seed(remote.PathCredentials, models.Credentials{User: "legacy", Pass: "plain"})
	_, err = h.svc.Login(ctx, &api.LoginRequest{User: "legacy", Pass: "plain"})
	require.NoError(t, err, "plain-text credentials still log in")

	err = h.svc.UpdateCredentials(ctx, &api.CredentialsRequest{User: "x", Pass: "1"})
	var verr *response.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestReorderLectures(t *testing.T) {
	h := newHarness(t)

	got, err := h.svc.ReorderLectures(context.Background(), []string{"l3", "l1"})
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"l3", "l1", "l2"}, []string{got[0].ID, got[1].ID, got[2].ID})

	var lm models.LectureModel
	require.True(t, h.mem.Decode("v1/lecture_models/l2", &lm))
	assert.Equal(t, 2, lm.Order)
	require.True(t, h.mem.Decode("v1/lecture_models/l3", &lm))
	assert.Equal(t, 0, lm.Order)

	_, err = h.svc.ReorderLectures(context.Background(), []string{"l9"})
	assert.True(t, errors.Is(err, response.ErrNotFound))
}

func TestDirectoryCommands(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	ct, err := h.svc.SaveCourse(ctx, "", &api.CourseTypeRequest{Name: "Curso Básico", DefaultValue: 300})
	require.NoError(t, err)
	assert.Equal(t, 1, ct.Order)
	assert.Len(t, h.svc.ListCourses(), 2)

	_, err = h.svc.SaveCourse(ctx, "missing", &api.CourseTypeRequest{Name: "X"})
	assert.True(t, errors.Is(err, response.ErrNotFound))

	require.NoError(t, h.svc.DeleteCourse(ctx, ct.ID))
	assert.Len(t, h.svc.ListCourses(), 1)

	lm, err := h.svc.AddLecture(ctx, &api.LectureModelRequest{Name: "Marketing"})
	require.NoError(t, err)
	assert.Equal(t, "Palestra", lm.Type)

	require.NoError(t, h.svc.RemoveLecture(ctx, lm.ID))
	assert.Len(t, h.svc.ListLectures(), 3)

	st, err := h.svc.SaveStudent(ctx, "", &api.StudentRequest{Name: "Zoe", Phone: "1190000"})
	require.NoError(t, err)
	_, err = h.svc.SaveStudent(ctx, st.ID, &api.StudentRequest{Name: "Zoé"})
	require.NoError(t, err)
	assert.Equal(t, "Zoé", h.svc.ListStudents("zo")[0].Name)

	require.NoError(t, h.svc.DeleteStudent(ctx, st.ID))
	assert.Empty(t, h.svc.ListStudents(""))
}

func TestSettings(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	assert.Equal(t, models.DefaultSettings(), h.svc.GetSettings())

	dark, goal := "dark", money.Amount(90000)
	got, err := h.svc.UpdateSettings(ctx, &api.SettingsRequest{Theme: &dark, AnnualGoal: &goal})
	require.NoError(t, err)
	assert.Equal(t, "dark", got.Theme)
	assert.Equal(t, "#1A4373", got.PrimaryColor)

	var stored models.Settings
	require.True(t, h.mem.Decode(remote.PathSettings, &stored))
	assert.Equal(t, money.Amount(90000), stored.AnnualGoal)

	bad := "blue"
	_, err = h.svc.UpdateSettings(ctx, &api.SettingsRequest{PrimaryColor: &bad})
	var verr *response.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestShareMessage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.svc.CreateBooking(ctx, bookingRequest())
	require.NoError(t, err)

	share, err := h.svc.Share(ctx, res.Booking.ID)
	require.NoError(t, err)

	assert.Contains(t, share.Message, "O seu curso de Curso Vip foi agendado para o dia 20/03/2026 (sexta-feira) às 09:00.")
	assert.Contains(t, share.Message, "Rua Francisco Antônio Miranda")
	assert.True(t, strings.HasPrefix(share.WhatsAppURL, "https://wa.me/5511999998888?text="))

	u, err := url.Parse(share.WhatsAppURL)
	require.NoError(t, err)
	assert.Equal(t, share.Message, u.Query().Get("text"))

	assert.Equal(t, "", WhatsAppURL("", "x"))
	assert.True(t, strings.HasPrefix(WhatsAppURL("+55 (11) 99999-8888", "x"), "https://wa.me/5511999998888?"))
}

func TestReceiptAndViews(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.svc.CreateBooking(ctx, bookingRequest())
	require.NoError(t, err)

	pdf, err := h.svc.Receipt(ctx, res.Booking.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF-"))

	list, err := h.svc.QuickSearch("an")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = h.svc.QuickSearch("a")
	require.NoError(t, err)
	assert.Empty(t, list, "one character does not search")

	agenda, err := h.svc.Agenda("2026-03-21")
	require.NoError(t, err)
	require.Len(t, agenda, 1)
	assert.Equal(t, 2, agenda[0].Day)

	days, err := h.svc.CalendarDays(2026, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{20, 21}, days)

	dash, err := h.svc.Dashboard(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, dash.Count)
	assert.InDelta(t, 1000, dash.Value, 0.001)
}
