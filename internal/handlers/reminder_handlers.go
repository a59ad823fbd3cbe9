package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"ms-reminders/internal/models"
	"ms-reminders/internal/reminder"
)

// SweepRunner runs one named reminder sweep.
type SweepRunner interface {
	Run(ctx context.Context, kind models.SweepKind, now time.Time) (reminder.SweepResult, error)
}

type ReminderHandler struct {
	runner SweepRunner
	logger *zap.Logger
	now    func() time.Time
}

func NewReminderHandler(runner SweepRunner, logger *zap.Logger) *ReminderHandler {
	return &ReminderHandler{
		runner: runner,
		logger: logger,
		now:    time.Now,
	}
}

type sweepResponse struct {
	Success    bool                  `json:"success"`
	Checked    int                   `json:"checked"`
	Created    int                   `json:"created"`
	Suppressed int                   `json:"suppressed"`
	Errors     []*reminder.ItemError `json:"errors"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// SendAppointmentReminders handles /functions/v1/send-appointment-reminders
func (h *ReminderHandler) SendAppointmentReminders(w http.ResponseWriter, r *http.Request) {
	h.runSweep(w, r, models.SweepAppointment)
}

// SendMedicationReminders handles /functions/v1/send-medication-reminders
func (h *ReminderHandler) SendMedicationReminders(w http.ResponseWriter, r *http.Request) {
	h.runSweep(w, r, models.SweepMedication)
}

func (h *ReminderHandler) runSweep(w http.ResponseWriter, r *http.Request, kind models.SweepKind) {
	res, err := h.runner.Run(r.Context(), kind, h.now())
	if err != nil {
		h.logger.Error("Reminder sweep failed", zap.String("sweep", string(kind)), zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	errs := res.Errors
	if errs == nil {
		errs = []*reminder.ItemError{}
	}
	h.writeJSON(w, http.StatusOK, sweepResponse{
		Success:    true,
		Checked:    res.Examined,
		Created:    res.Created,
		Suppressed: res.Suppressed,
		Errors:     errs,
	})
}

func (h *ReminderHandler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method " + r.Method + " not allowed"})
}

func (h *ReminderHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("Error encoding response", zap.Error(err))
	}
}
