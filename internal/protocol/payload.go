package protocol

import (
	"github.com/blaisecz/smart-wake/internal/domain"
)

// MessageType is the envelope discriminant.
type MessageType string

const (
	TypeUpdateSchedule MessageType = "update_schedule"
	TypeCancelSchedule MessageType = "cancel_schedule"
	TypePing           MessageType = "ping"
	TypeSessionState   MessageType = "session_state"
	TypeAlarmFired     MessageType = "alarm_fired"
	TypeSessionSummary MessageType = "session_summary"
	TypeError          MessageType = "error"
)

// Payload is implemented by every message body.
type Payload interface {
	MessageType() MessageType
}

// UpdateSchedule replaces the device schedule (controller → device).
type UpdateSchedule struct {
	Schedule      domain.AlarmSchedule `json:"schedule"`
	EffectiveDate string               `json:"effectiveDate"`
}

func (UpdateSchedule) MessageType() MessageType { return TypeUpdateSchedule }

// Plan returns the schedule bound to its effective date.
func (p UpdateSchedule) Plan() domain.WakePlan {
	return domain.WakePlan{Schedule: p.Schedule, EffectiveDate: p.EffectiveDate}
}

// CancelSchedule clears the device schedule (controller → device).
type CancelSchedule struct {
	EffectiveDate string `json:"effectiveDate"`
}

func (CancelSchedule) MessageType() MessageType { return TypeCancelSchedule }

// Ping is a liveness check; receivers ignore it.
type Ping struct {
	Timestamp Timestamp `json:"timestamp"`
}

func (Ping) MessageType() MessageType { return TypePing }

// SessionState reports the device phase (device → controller).
type SessionState struct {
	State     string   `json:"state"`
	LastScore *float64 `json:"lastScore,omitempty"`
}

func (SessionState) MessageType() MessageType { return TypeSessionState }

// AlarmFired is sent once when a trigger fires (device → controller).
type AlarmFired struct {
	TargetWakeAt    Timestamp              `json:"targetWakeAt"`
	FiredAt         Timestamp              `json:"firedAt"`
	Reason          domain.TriggerReason   `json:"reason"`
	ScoreAtFire     float64                `json:"scoreAtFire"`
	Components      domain.ScoreComponents `json:"components"`
	CooldownApplied bool                   `json:"cooldownApplied"`
}

func (AlarmFired) MessageType() MessageType { return TypeAlarmFired }

// SessionSummary carries the record produced at dismissal (device → controller).
type SessionSummary struct {
	Summary Summary `json:"summary"`
}

func (SessionSummary) MessageType() MessageType { return TypeSessionSummary }

// Error reports a message the sender could not apply.
type Error struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

func (Error) MessageType() MessageType { return TypeError }

// Error codes.
const (
	CodeInvalidSchedule = "invalid_schedule"
	CodeDecodeFailed    = "decode_failed"
)

// Summary is the wire form of domain.WakeSessionSummary.
type Summary struct {
	WindowStartAt         Timestamp            `json:"windowStartAt"`
	WindowEndAt           Timestamp            `json:"windowEndAt"`
	FiredAt               Timestamp            `json:"firedAt"`
	Reason                domain.TriggerReason `json:"reason"`
	ScoreAtFire           float64              `json:"scoreAtFire"`
	BestCandidateAt       *Timestamp           `json:"bestCandidateAt,omitempty"`
	BestScore             *float64             `json:"bestScore,omitempty"`
	BatteryImpactEstimate *int                 `json:"batteryImpactEstimate,omitempty"`
}

// SummaryFrom converts a domain summary for the wire.
func SummaryFrom(s domain.WakeSessionSummary) Summary {
	return Summary{
		WindowStartAt:         At(s.WindowStartAt),
		WindowEndAt:           At(s.WindowEndAt),
		FiredAt:               At(s.FiredAt),
		Reason:                s.Reason,
		ScoreAtFire:           s.ScoreAtFire,
		BestCandidateAt:       optionalAt(s.BestCandidateAt),
		BestScore:             s.BestScore,
		BatteryImpactEstimate: s.BatteryImpactEstimate,
	}
}

// Domain converts the wire summary back to the domain record.
func (s Summary) Domain() domain.WakeSessionSummary {
	return domain.WakeSessionSummary{
		WindowStartAt:         s.WindowStartAt.Time(),
		WindowEndAt:           s.WindowEndAt.Time(),
		FiredAt:               s.FiredAt.Time(),
		Reason:                s.Reason,
		ScoreAtFire:           s.ScoreAtFire,
		BestCandidateAt:       s.BestCandidateAt.optionalTime(),
		BestScore:             s.BestScore,
		BatteryImpactEstimate: s.BatteryImpactEstimate,
	}
}
