package api

import (
	"time"

	"selectclass/internal/models"
	"selectclass/internal/money"
	"selectclass/internal/reconcile"
)

const DateLayout = "2006-01-02"

// MaterialRequest edits a material. An ID keeps an existing material with its
// check state; checking is done through the toggle endpoint.
type MaterialRequest struct {
	ID   string       `json:"id,omitempty"`
	Name string       `json:"name"`
	Cost money.Amount `json:"cost"`
}

// BookingRequest creates or updates a booking. Dates use DateLayout. A nil
// Value or Materials keeps the stored (or template) one.
type BookingRequest struct {
	Title               string               `json:"title"`
	Student             string               `json:"student"`
	WhatsApp            string               `json:"whatsapp"`
	City                string               `json:"city"`
	State               string               `json:"state"`
	EventLocation       string               `json:"eventLocation,omitempty"`
	Date                string               `json:"date"`
	Time                string               `json:"time,omitempty"`
	Duration            string               `json:"duration,omitempty"`
	Value               *money.Amount        `json:"value,omitempty"`
	Deposit             money.Amount         `json:"deposit,omitempty"`
	PaymentMethod       string               `json:"paymentMethod,omitempty"`
	PaymentStatus       models.PaymentStatus `json:"paymentStatus,omitempty"`
	PaymentDueDate      string               `json:"paymentDueDate,omitempty"`
	PaymentDeadlineDays *int                 `json:"paymentDeadlineDays,omitempty"`
	Materials           []MaterialRequest    `json:"materials,omitempty"`
	AbateExpenses       *bool                `json:"abateExpenses,omitempty"`
}

type BookingResponse struct {
	Booking models.Booking    `json:"booking"`
	Summary reconcile.Summary `json:"summary"`
}

type PaymentRequest struct {
	Amount money.Amount `json:"amount"`
	Date   string       `json:"date,omitempty"`
	Method string       `json:"method,omitempty"`
}

type MaterialCostRequest struct {
	Cost money.Amount `json:"cost"`
}

type ShareResponse struct {
	Message     string `json:"message"`
	WhatsAppURL string `json:"whatsappUrl,omitempty"`
}

type ExpenseRequest struct {
	Title    string       `json:"title"`
	Amount   money.Amount `json:"amount"`
	Date     string       `json:"date,omitempty"`
	Category string       `json:"category,omitempty"`
}

type StudentRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
}

type CourseTypeRequest struct {
	Name             string               `json:"name"`
	Model            string               `json:"model,omitempty"`
	DefaultValue     money.Amount         `json:"defaultValue,omitempty"`
	DefaultTime      string               `json:"defaultTime,omitempty"`
	DefaultDuration  string               `json:"defaultDuration,omitempty"`
	DefaultMaterials []models.MaterialDef `json:"defaultMaterials,omitempty"`
	Order            *int                 `json:"order,omitempty"`
}

type LectureModelRequest struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

type ReorderRequest struct {
	IDs []string `json:"ids"`
}

type LoginRequest struct {
	User string `json:"user"`
	Pass string `json:"pass"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type CredentialsRequest struct {
	User string `json:"user"`
	Pass string `json:"pass"`
}

// SettingsRequest is a partial update; nil fields are left unchanged.
type SettingsRequest struct {
	Theme          *string       `json:"theme,omitempty"`
	PrimaryColor   *string       `json:"primaryColor,omitempty"`
	InstructorName *string       `json:"instructorName,omitempty"`
	AnnualGoal     *money.Amount `json:"annualGoal,omitempty"`
}
