package domain

import "time"

// Phase is the session phase derived from (schedule, now).
type Phase string

const (
	PhaseIdle       Phase = "Idle"
	PhaseArmed      Phase = "Armed"
	PhaseMonitoring Phase = "Monitoring"
	PhaseTriggered  Phase = "Triggered"
)

// AlarmStatus is the ringing lifecycle once a trigger fires.
type AlarmStatus string

const (
	AlarmIdle      AlarmStatus = "Idle"
	AlarmRinging   AlarmStatus = "Ringing"
	AlarmSnoozed   AlarmStatus = "Snoozed"
	AlarmDismissed AlarmStatus = "Dismissed"
)

// AlarmState is the alarm status plus the snooze resume instant, which is
// only meaningful while Snoozed.
type AlarmState struct {
	Status      AlarmStatus
	ResumeAt    time.Time
	SnoozeCount int
}
