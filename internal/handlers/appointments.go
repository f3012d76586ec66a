package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/md-rashed-zaman/apptintake/internal/model"
	"github.com/md-rashed-zaman/apptintake/internal/submit"
)

// Submitter runs one appointment submission; see submit.Orchestrator.
type Submitter interface {
	Submit(ctx context.Context, appt model.AppointmentRequest) (submit.Result, error)
}

type AppointmentsHandler struct {
	submitter Submitter
	logger    *slog.Logger
}

func NewAppointmentsHandler(submitter Submitter, logger *slog.Logger) *AppointmentsHandler {
	return &AppointmentsHandler{submitter: submitter, logger: logger}
}

type appointmentResponse struct {
	OK           bool   `json:"ok"`
	ID           string `json:"id"`
	GoogleSheets bool   `json:"google_sheets"`
	WhatsApp     bool   `json:"whatsapp"`
}

func (h *AppointmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var appt model.AppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&appt); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid json body")
		return
	}
	appt.Normalize()

	res, err := h.submitter.Submit(r.Context(), appt)
	switch {
	case errors.Is(err, submit.ErrValidation):
		writeDetail(w, http.StatusBadRequest, err.Error())
	case err != nil:
		h.logger.Error("appointment submission failed", "err", err)
		writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("Database error: %v", err))
	default:
		writeJSON(w, http.StatusOK, appointmentResponse{
			OK:           true,
			ID:           res.ID,
			GoogleSheets: res.Sheets.Succeeded,
			WhatsApp:     res.WhatsApp.Succeeded,
		})
	}
}
