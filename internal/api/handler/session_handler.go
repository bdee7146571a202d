package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/blaisecz/smart-wake/internal/domain"
	"github.com/blaisecz/smart-wake/internal/service"
	"github.com/blaisecz/smart-wake/pkg/pagination"
	"github.com/blaisecz/smart-wake/pkg/problem"
)

type SessionHandler struct {
	summaries service.SummaryService
	reports   service.ReportService
}

func NewSessionHandler(summaries service.SummaryService, reports service.ReportService) *SessionHandler {
	return &SessionHandler{summaries: summaries, reports: reports}
}

// List handles GET /v1/sessions
// @Summary List wake sessions
// @Description Fetch paginated wake session summaries reported by the device, newest first.
// @Tags sessions
// @Produce json
// @Param from query string false "Only sessions fired at or after this instant (RFC3339)" format(date-time) example(2026-01-01T00:00:00Z)
// @Param limit query integer false "Results per page (1-100)" default(20) minimum(1) maximum(100)
// @Param cursor query string false "Cursor from previous response's next_cursor"
// @Success 200 {object} domain.SummaryListResponse
// @Failure 422 {object} problem.Problem "Invalid query parameters"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /sessions [get]
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, fieldErrors := parseSummaryFilter(r)
	if fieldErrors != nil {
		problem.ValidationError("Invalid query parameters", fieldErrors).Write(w)
		return
	}

	response, err := h.summaries.List(r.Context(), filter)
	if err != nil {
		problem.InternalError("Failed to list wake sessions").Write(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// Report handles GET /v1/report
// @Summary Wake report
// @Description Aggregate wake statistics over the last N days, with an optional narrative when an LLM is configured.
// @Tags sessions
// @Produce json
// @Param days query integer false "Window in days (1-90)" default(7) minimum(1) maximum(90)
// @Success 200 {object} domain.WakeReport
// @Failure 422 {object} problem.Problem "Invalid query parameters"
// @Failure 500 {object} problem.Problem "Server error"
// @Router /report [get]
func (h *SessionHandler) Report(w http.ResponseWriter, r *http.Request) {
	days := service.DefaultReportDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeDaysError(w)
			return
		}
		days = parsed
	}

	report, err := h.reports.Generate(r.Context(), days)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeDaysError(w)
			return
		}
		problem.InternalError("Failed to generate wake report").Write(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

func writeDaysError(w http.ResponseWriter) {
	problem.ValidationError("Invalid query parameters", []problem.FieldError{{
		Field:   "days",
		Message: "must be an integer between 1 and " + strconv.Itoa(service.MaxReportDays),
	}}).Write(w)
}

func parseSummaryFilter(r *http.Request) (domain.SummaryFilter, []problem.FieldError) {
	var filter domain.SummaryFilter
	var fieldErrors []problem.FieldError
	query := r.URL.Query()

	if fromStr := query.Get("from"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			fieldErrors = append(fieldErrors, problem.FieldError{
				Field:   "from",
				Message: "must be a valid RFC3339 timestamp",
			})
		} else {
			filter.From = &from
		}
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			fieldErrors = append(fieldErrors, problem.FieldError{
				Field:   "limit",
				Message: "must be a positive integer",
			})
		} else {
			filter.Limit = limit
		}
	}

	if cursor := query.Get("cursor"); cursor != "" {
		if _, err := pagination.DecodeCursor(cursor); err != nil {
			fieldErrors = append(fieldErrors, problem.FieldError{
				Field:   "cursor",
				Message: "must be a cursor returned by a previous page",
			})
		} else {
			filter.Cursor = cursor
		}
	}

	if len(fieldErrors) > 0 {
		return filter, fieldErrors
	}
	return filter, nil
}
