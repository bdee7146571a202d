package domain

import (
	"time"

	"github.com/google/uuid"
)

// WakeSessionSummary is the immutable record of one completed wake cycle.
// It is created once on the device at dismissal and stored by the
// controller keyed by (FiredAt, Reason).
// @Description Record of one completed wake session.
type WakeSessionSummary struct {
	ID                    uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	WindowStartAt         time.Time     `gorm:"not null" json:"window_start_at" example:"2026-01-20T07:00:00Z"`
	WindowEndAt           time.Time     `gorm:"not null" json:"window_end_at" example:"2026-01-20T07:30:00Z"`
	FiredAt               time.Time     `gorm:"not null;uniqueIndex:idx_summary_fired_reason;index:idx_summary_fired,sort:desc" json:"fired_at" example:"2026-01-20T07:12:30Z"`
	Reason                TriggerReason `gorm:"type:varchar(10);not null;uniqueIndex:idx_summary_fired_reason" json:"reason" example:"SMART" enums:"SMART,FORCED"`
	ScoreAtFire           float64       `gorm:"not null" json:"score_at_fire" example:"0.78"`
	BestCandidateAt       *time.Time    `json:"best_candidate_at,omitempty" example:"2026-01-20T07:12:00Z"`
	BestScore             *float64      `json:"best_score,omitempty" example:"0.81"`
	BatteryImpactEstimate *int          `json:"battery_impact_estimate,omitempty" example:"15"`
	CreatedAt             time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

func (WakeSessionSummary) TableName() string {
	return "wake_session_summaries"
}

// SameSession reports whether two summaries describe the same wake event.
func (s WakeSessionSummary) SameSession(other WakeSessionSummary) bool {
	return s.Reason == other.Reason && s.FiredAt.Truncate(time.Second).Equal(other.FiredAt.Truncate(time.Second))
}

// SummaryFilter contains filter parameters for listing summaries.
type SummaryFilter struct {
	From   *time.Time
	Limit  int
	Cursor string
}

// SummaryListResponse is the response body for GET /v1/sessions.
// @Description Paginated list of wake session summaries.
type SummaryListResponse struct {
	Data       []WakeSessionSummary `json:"data"`
	Pagination PaginationResponse   `json:"pagination"`
}

// PaginationResponse contains pagination metadata.
// @Description Cursor-based pagination info.
type PaginationResponse struct {
	// Cursor for fetching the next page (empty if no more pages)
	NextCursor string `json:"next_cursor,omitempty"`
	// True if more results are available
	HasMore bool `json:"has_more" example:"true"`
}

// WakeReportStats aggregates summaries over a window.
// @Description Aggregated wake statistics.
type WakeReportStats struct {
	Sessions                int      `json:"sessions" example:"12"`
	SmartCount              int      `json:"smart_count" example:"9"`
	ForcedCount             int      `json:"forced_count" example:"3"`
	SmartRate               float64  `json:"smart_rate" example:"0.75"`
	MeanScoreAtFire         float64  `json:"mean_score_at_fire" example:"0.74"`
	MeanMinutesBeforeTarget float64  `json:"mean_minutes_before_target" example:"11.5"`
	MeanBestScore           *float64 `json:"mean_best_score,omitempty" example:"0.79"`
}

// WakeReportNarrative is the optional LLM-written report text.
// @Description Non-medical narrative about recent wake sessions.
type WakeReportNarrative struct {
	Summary      string   `json:"summary"`
	Observations []string `json:"observations"`
}

// WakeReport is the response body for GET /v1/report.
// @Description Wake report over a window of days.
type WakeReport struct {
	From      time.Time            `json:"from"`
	To        time.Time            `json:"to"`
	Stats     WakeReportStats      `json:"stats"`
	Narrative *WakeReportNarrative `json:"narrative,omitempty"`
}

// SyncStatus is the controller's view of the link to the device.
// @Description Controller-side sync and device status.
type SyncStatus struct {
	Reachable        bool       `json:"reachable"`
	LastSyncAt       *time.Time `json:"last_sync_at,omitempty"`
	LastError        string     `json:"last_error,omitempty"`
	DeviceState      string     `json:"device_state,omitempty" example:"Monitoring"`
	LastScore        *float64   `json:"last_score,omitempty"`
	LastAlarmFiredAt *time.Time `json:"last_alarm_fired_at,omitempty"`
}
