package models

import (
	"selectclass/internal/money"
)

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
)

// Booking is a scheduled course or lecture (an "appointment" in the store).
type Booking struct {
	ID                  string         `json:"id"`
	Title               string         `json:"title"`
	Time                string         `json:"time"`
	Duration            string         `json:"duration"`
	Type                string         `json:"type,omitempty"`
	Student             string         `json:"student,omitempty"`
	WhatsApp            string         `json:"whatsapp,omitempty"`
	City                string         `json:"city,omitempty"`
	State               string         `json:"state,omitempty"`
	EventLocation       string         `json:"eventLocation,omitempty"`
	Value               money.Amount   `json:"value"`
	PaymentMethod       string         `json:"paymentMethod,omitempty"`
	PaymentStatus       PaymentStatus  `json:"paymentStatus,omitempty"`
	PaymentDueDate      Timestamp      `json:"paymentDueDate,omitzero"`
	PaymentDeadlineDays *int           `json:"paymentDeadlineDays,omitempty"`
	Payments            []Payment      `json:"payments,omitempty"`
	Date                Timestamp      `json:"date,omitzero"`
	Materials           []MaterialItem `json:"materials,omitempty"`
	AbateExpenses       bool           `json:"abateExpenses,omitempty"`
}

// Material returns the index of the material with the given id, or -1.
func (b *Booking) Material(id string) int {
	for i := range b.Materials {
		if b.Materials[i].ID == id {
			return i
		}
	}

	return -1
}

type Payment struct {
	ID     string       `json:"id"`
	Amount money.Amount `json:"amount"`
	Date   Timestamp    `json:"date,omitzero"`
	Method string       `json:"method,omitempty"`
}

type MaterialItem struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Checked   bool         `json:"checked"`
	Cost      money.Amount `json:"cost,omitempty"`
	ExpenseID string       `json:"expenseId,omitempty"`
}

type Expense struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Amount   money.Amount `json:"amount"`
	Date     Timestamp    `json:"date,omitzero"`
	Category string       `json:"category,omitempty"`
}

type MaterialDef struct {
	Name string `json:"name"`
}

type CourseType struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Model            string        `json:"model,omitempty"`
	DefaultValue     money.Amount  `json:"defaultValue,omitempty"`
	DefaultTime      string        `json:"defaultTime,omitempty"`
	DefaultDuration  string        `json:"defaultDuration,omitempty"`
	DefaultMaterials []MaterialDef `json:"defaultMaterials,omitempty"`
	Order            int           `json:"order,omitempty"`
}

type LectureModel struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Order int    `json:"order,omitempty"`
}

type Student struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	City      string    `json:"city,omitempty"`
	State     string    `json:"state,omitempty"`
	CreatedAt Timestamp `json:"createdAt,omitzero"`
}

type Credentials struct {
	User string `json:"user"`
	Pass string `json:"pass"`
}

type Settings struct {
	Theme          string       `json:"theme"`
	PrimaryColor   string       `json:"primaryColor"`
	InstructorName string       `json:"instructorName"`
	AnnualGoal     money.Amount `json:"annualGoal"`
}

func DefaultSettings() Settings {
	return Settings{
		Theme:          "light",
		PrimaryColor:   "#1A4373",
		InstructorName: "Seu Nome",
		AnnualGoal:     81000,
	}
}
