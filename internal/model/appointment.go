package model

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// KindAppointment is the document kind appointments are stored under.
const KindAppointment = "appointment"

// AppointmentRequest is the inbound submission. Optional fields stay empty
// strings when absent so downstream formatting never sees a null.
type AppointmentRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
	Date       string `json:"date"`
	Notes      string `json:"notes"`
}

// Normalize trims surrounding whitespace from every field. Call once right
// after decoding; the value is treated as immutable afterwards.
func (a *AppointmentRequest) Normalize() {
	a.Name = strings.TrimSpace(a.Name)
	a.Email = strings.TrimSpace(a.Email)
	a.Phone = strings.TrimSpace(a.Phone)
	a.Department = strings.TrimSpace(a.Department)
	a.Date = strings.TrimSpace(a.Date)
	a.Notes = strings.TrimSpace(a.Notes)
}

func (a AppointmentRequest) Validate() error {
	switch {
	case a.Name == "":
		return errors.New("name is required")
	case a.Email == "":
		return errors.New("email is required")
	case a.Phone == "":
		return errors.New("phone is required")
	case a.Department == "":
		return errors.New("department is required")
	}
	if _, err := mail.ParseAddress(a.Email); err != nil {
		return fmt.Errorf("email %q is not a valid address", a.Email)
	}
	return nil
}
