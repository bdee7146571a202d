package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/blaisecz/smart-wake/internal/api/validation"
	"github.com/blaisecz/smart-wake/internal/domain"
	"github.com/blaisecz/smart-wake/internal/service"
	"github.com/blaisecz/smart-wake/pkg/problem"
)

type ScheduleHandler struct {
	service service.ScheduleService
}

func NewScheduleHandler(service service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

// Update handles PUT /v1/schedule
// @Summary Configure the smart alarm
// @Description Store the alarm schedule and push it to the paired device. A failed device write is not an error: the response reports synced=false and the device picks the schedule up on the next successful sync.
// @Tags schedule
// @Accept json
// @Produce json
// @Param request body domain.UpdateScheduleRequest true "Alarm schedule"
// @Success 200 {object} domain.ScheduleSyncResponse "Schedule stored"
// @Failure 400 {object} problem.Problem "Invalid JSON body"
// @Failure 422 {object} problem.Problem "Invalid schedule fields"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /schedule [put]
func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.BadRequest("Invalid JSON body").Write(w)
		return
	}

	if fieldErrors := validation.Validate(req); fieldErrors != nil {
		problem.ValidationError("Request body contains invalid fields", fieldErrors).Write(w)
		return
	}

	resp, err := h.service.Update(r.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			problem.ValidationError(err.Error(), nil).Write(w)
			return
		}
		problem.InternalError("Failed to update schedule").Write(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Get handles GET /v1/schedule
// @Summary Get the smart alarm schedule
// @Description Return the persisted schedule, or the defaults when none was configured.
// @Tags schedule
// @Produce json
// @Success 200 {object} domain.ScheduleSetting
// @Failure 500 {object} problem.Problem "Server error"
// @Router /schedule [get]
func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	setting, err := h.service.Get(r.Context())
	if err != nil {
		problem.InternalError("Failed to load schedule").Write(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(setting)
}

// Cancel handles DELETE /v1/schedule
// @Summary Disable the smart alarm
// @Description Disable the schedule, cancel the fallback notification and tell the device to stop.
// @Tags schedule
// @Success 204 "Schedule disabled"
// @Failure 503 {object} problem.Problem "Schedule disabled locally but the device was not reached"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /schedule [delete]
func (h *ScheduleHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Cancel(r.Context()); err != nil {
		if errors.Is(err, domain.ErrSyncFailed) {
			problem.DeviceUnreachable("Schedule disabled but the device could not be updated").Write(w)
			return
		}
		problem.InternalError("Failed to cancel schedule").Write(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
