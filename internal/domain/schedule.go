package domain

import (
	"fmt"
	"time"
)

// Sensitivity controls how eagerly the smart trigger fires.
// @Description Smart trigger sensitivity.
type Sensitivity string

const (
	SensitivityConservative Sensitivity = "conservative"
	SensitivityBalanced     Sensitivity = "balanced"
	SensitivitySensitive    Sensitivity = "sensitive"
)

// Valid reports whether s is one of the known sensitivities.
func (s Sensitivity) Valid() bool {
	switch s {
	case SensitivityConservative, SensitivityBalanced, SensitivitySensitive:
		return true
	}
	return false
}

const (
	// EffectiveDateLayout is the wire layout of a schedule's effective date.
	EffectiveDateLayout = "2006-01-02"
	// WakeTimeLayout is the wire layout of AlarmSchedule.WakeTimeLocal.
	WakeTimeLayout = "15:04"

	// ArmLead is how long before the window start the session arms.
	ArmLead = time.Minute
)

// AlarmSchedule is the only externally supplied configuration. It is
// replaced wholesale on every update.
// @Description Smart alarm schedule.
type AlarmSchedule struct {
	// Local wake time in HH:mm
	WakeTimeLocal string `json:"wakeTimeLocal" validate:"required,clock" example:"07:30"`
	// Length of the smart window before the wake time
	WindowMinutes int `json:"windowMinutes" validate:"required,min=1,max=180" example:"30"`
	// Smart trigger sensitivity
	Sensitivity Sensitivity `json:"sensitivity" validate:"required,oneof=conservative balanced sensitive" example:"balanced" enums:"conservative,balanced,sensitive"`
	// Whether the alarm is active
	Enabled bool `json:"enabled" example:"true"`
}

// Validate checks the schedule without the validator package so the device
// side can reject malformed schedules arriving over the link.
func (s AlarmSchedule) Validate() error {
	if _, _, err := ParseWakeTime(s.WakeTimeLocal); err != nil {
		return err
	}
	if s.WindowMinutes < 1 || s.WindowMinutes > 180 {
		return fmt.Errorf("%w: window minutes %d out of range", ErrInvalidSchedule, s.WindowMinutes)
	}
	if !s.Sensitivity.Valid() {
		return fmt.Errorf("%w: unknown sensitivity %q", ErrInvalidSchedule, s.Sensitivity)
	}
	return nil
}

// ParseWakeTime splits an "HH:mm" string into hour and minute.
func ParseWakeTime(v string) (hour, minute int, err error) {
	t, err := time.Parse(WakeTimeLayout, v)
	if err != nil || len(v) != len(WakeTimeLayout) {
		return 0, 0, fmt.Errorf("%w: wake time %q is not HH:mm", ErrInvalidSchedule, v)
	}
	return t.Hour(), t.Minute(), nil
}

// WakePlan binds a schedule to the calendar date it applies to.
type WakePlan struct {
	Schedule      AlarmSchedule `json:"schedule"`
	EffectiveDate string        `json:"effectiveDate"`
}

// WakeWindow holds the absolute instants derived from a WakePlan.
type WakeWindow struct {
	ArmAt    time.Time
	StartAt  time.Time
	TargetAt time.Time
}

// Window resolves the plan in loc:
// target = effectiveDate + wakeTimeLocal, start = target - windowMinutes,
// arm = start - 1 minute.
func (p WakePlan) Window(loc *time.Location) (WakeWindow, error) {
	if loc == nil {
		loc = time.Local
	}
	hour, minute, err := ParseWakeTime(p.Schedule.WakeTimeLocal)
	if err != nil {
		return WakeWindow{}, err
	}
	day, err := time.ParseInLocation(EffectiveDateLayout, p.EffectiveDate, loc)
	if err != nil {
		return WakeWindow{}, fmt.Errorf("%w: effective date %q", ErrInvalidSchedule, p.EffectiveDate)
	}

	target := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
	start := target.Add(-time.Duration(p.Schedule.WindowMinutes) * time.Minute)
	return WakeWindow{
		ArmAt:    start.Add(-ArmLead),
		StartAt:  start,
		TargetAt: target,
	}, nil
}

// NextEffectiveDate returns the date the schedule applies to when set at now:
// today if the wake time is still ahead, tomorrow otherwise.
func NextEffectiveDate(schedule AlarmSchedule, now time.Time) (string, time.Time, error) {
	hour, minute, err := ParseWakeTime(schedule.WakeTimeLocal)
	if err != nil {
		return "", time.Time{}, err
	}
	target := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !target.After(now) {
		target = target.AddDate(0, 0, 1)
	}
	return target.Format(EffectiveDateLayout), target, nil
}

// ScheduleSetting is the controller's persisted copy of the last schedule
// the user configured. There is a single row.
type ScheduleSetting struct {
	ID            uint        `gorm:"primaryKey" json:"-"`
	WakeTimeLocal string      `gorm:"type:varchar(5);not null" json:"wake_time_local"`
	WindowMinutes int         `gorm:"not null" json:"window_minutes"`
	Sensitivity   Sensitivity `gorm:"type:varchar(16);not null" json:"sensitivity"`
	Enabled       bool        `gorm:"not null" json:"enabled"`
	EffectiveDate string      `gorm:"type:varchar(10)" json:"effective_date,omitempty"`
	UpdatedAt     time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ScheduleSetting) TableName() string {
	return "schedule_settings"
}

// DefaultScheduleSetting mirrors the controller UI defaults.
func DefaultScheduleSetting() ScheduleSetting {
	return ScheduleSetting{
		WakeTimeLocal: "07:30",
		WindowMinutes: 30,
		Sensitivity:   SensitivityBalanced,
		Enabled:       true,
	}
}

// Schedule returns the AlarmSchedule held by the setting.
func (s ScheduleSetting) Schedule() AlarmSchedule {
	return AlarmSchedule{
		WakeTimeLocal: s.WakeTimeLocal,
		WindowMinutes: s.WindowMinutes,
		Sensitivity:   s.Sensitivity,
		Enabled:       s.Enabled,
	}
}

// UpdateScheduleRequest is the request body for PUT /v1/schedule.
// @Description Request payload for configuring the smart alarm.
type UpdateScheduleRequest struct {
	// Local wake time in HH:mm
	WakeTimeLocal string `json:"wake_time_local" validate:"required,clock" example:"07:30"`
	// Smart window length in minutes (1-180)
	WindowMinutes int `json:"window_minutes" validate:"required,min=1,max=180" example:"30" minimum:"1" maximum:"180"`
	// Smart trigger sensitivity
	Sensitivity Sensitivity `json:"sensitivity" validate:"required,oneof=conservative balanced sensitive" example:"balanced" enums:"conservative,balanced,sensitive"`
	// Whether the alarm is active (defaults to true)
	Enabled *bool `json:"enabled,omitempty" example:"true"`
}

// Schedule converts the request into an AlarmSchedule.
func (r UpdateScheduleRequest) Schedule() AlarmSchedule {
	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}
	return AlarmSchedule{
		WakeTimeLocal: r.WakeTimeLocal,
		WindowMinutes: r.WindowMinutes,
		Sensitivity:   r.Sensitivity,
		Enabled:       enabled,
	}
}

// ScheduleSyncResponse is returned after a schedule update.
// @Description Result of pushing a schedule to the device.
type ScheduleSyncResponse struct {
	Schedule      AlarmSchedule `json:"schedule"`
	EffectiveDate string        `json:"effective_date" example:"2026-01-20"`
	TargetWakeAt  time.Time     `json:"target_wake_at" example:"2026-01-20T07:30:00+01:00"`
	// False when the replicated context could not be written; the device
	// picks the schedule up once a later sync succeeds.
	Synced bool `json:"synced" example:"true"`
}
