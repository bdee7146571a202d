// Package session runs one wake session on the device: the arming state
// machine, the monitoring orchestrator, the alarm lifecycle, and the actor
// that drives them from timers, sensors and the link.
package session

import (
	"fmt"
	"time"

	"github.com/blaisecz/smart-wake/internal/domain"
)

// CommandKind names a command emitted by the arming machine.
type CommandKind string

const (
	CmdStartMonitoring CommandKind = "start_monitoring"
	CmdStopMonitoring  CommandKind = "stop_monitoring"
	CmdSessionEnded    CommandKind = "session_ended"
)

// Command is addressed to the monitoring orchestrator.
type Command struct {
	Kind        CommandKind
	Window      domain.WakeWindow
	Sensitivity domain.Sensitivity
}

// Arming derives the session phase from the current plan and time.
// Phase only moves forward on ticks; it goes back to Idle only through
// Cancel, Reset, a replaced plan, or the target passing without a trigger.
type Arming struct {
	loc *time.Location

	plan   *domain.WakePlan
	window domain.WakeWindow
	phase  domain.Phase

	monitoring bool
	triggered  bool
	// completed is the target of the last finished session; the same
	// target is never armed twice.
	completed time.Time
}

// NewArming creates an idle machine resolving plans in loc.
func NewArming(loc *time.Location) *Arming {
	if loc == nil {
		loc = time.Local
	}
	return &Arming{loc: loc, phase: domain.PhaseIdle}
}

func (a *Arming) Phase() domain.Phase { return a.phase }

// Plan returns the current plan, if any.
func (a *Arming) Plan() (domain.WakePlan, bool) {
	if a.plan == nil {
		return domain.WakePlan{}, false
	}
	return *a.plan, true
}

// Window returns the resolved window of the current plan.
func (a *Arming) Window() (domain.WakeWindow, bool) {
	return a.window, a.plan != nil
}

// SetPlan replaces the plan wholesale and re-evaluates. An invalid plan is
// rejected and leaves the machine untouched. Replacing the plan of a
// running session with a different target stops that session.
func (a *Arming) SetPlan(plan domain.WakePlan, now time.Time) ([]Command, error) {
	if err := plan.Schedule.Validate(); err != nil {
		return nil, err
	}
	window, err := plan.Window(a.loc)
	if err != nil {
		return nil, err
	}

	var cmds []Command
	if a.plan != nil && !window.TargetAt.Equal(a.window.TargetAt) {
		if a.monitoring {
			cmds = append(cmds, Command{Kind: CmdStopMonitoring})
		}
		a.monitoring = false
		a.triggered = false
	}

	a.plan = &plan
	a.window = window
	return append(cmds, a.evaluate(now)...), nil
}

// Cancel drops the plan and returns to Idle.
func (a *Arming) Cancel() []Command {
	var cmds []Command
	if a.monitoring {
		cmds = append(cmds, Command{Kind: CmdStopMonitoring})
	}
	a.plan = nil
	a.window = domain.WakeWindow{}
	a.monitoring = false
	a.triggered = false
	a.phase = domain.PhaseIdle
	return cmds
}

// Tick re-evaluates at now.
func (a *Arming) Tick(now time.Time) []Command {
	return a.evaluate(now)
}

// MarkTriggered moves to the terminal Triggered phase.
func (a *Arming) MarkTriggered() {
	a.triggered = true
	a.monitoring = false
	a.phase = domain.PhaseTriggered
	if a.plan != nil {
		a.completed = a.window.TargetAt
	}
}

// Completed returns the target of the last finished session, if any.
func (a *Arming) Completed() time.Time { return a.completed }

// RestoreCompleted marks target as finished, typically after a restart.
// It must run before the matching plan is set.
func (a *Arming) RestoreCompleted(target time.Time) {
	if target.After(a.completed) {
		a.completed = target
	}
}

// Reset leaves Triggered after the alarm is dismissed. The finished target
// stays completed, so the machine idles until a new plan arrives.
func (a *Arming) Reset(now time.Time) []Command {
	a.triggered = false
	a.monitoring = false
	a.phase = domain.PhaseIdle
	return a.evaluate(now)
}

func (a *Arming) evaluate(now time.Time) []Command {
	if a.triggered {
		a.phase = domain.PhaseTriggered
		return nil
	}
	if a.plan == nil || !a.plan.Schedule.Enabled || a.window.TargetAt.Equal(a.completed) {
		var cmds []Command
		if a.monitoring {
			cmds = append(cmds, Command{Kind: CmdStopMonitoring})
			a.monitoring = false
		}
		a.phase = domain.PhaseIdle
		return cmds
	}

	w := a.window
	if a.monitoring {
		if !now.Before(w.TargetAt) {
			a.monitoring = false
			a.completed = w.TargetAt
			a.phase = domain.PhaseIdle
			return []Command{{Kind: CmdSessionEnded, Window: w, Sensitivity: a.plan.Schedule.Sensitivity}}
		}
		// Once entered, Monitoring holds even if the clock moves backwards.
		a.phase = domain.PhaseMonitoring
		return nil
	}

	switch {
	case now.Before(w.ArmAt):
		a.phase = domain.PhaseIdle
	case now.Before(w.StartAt):
		a.phase = domain.PhaseArmed
	case now.Before(w.TargetAt):
		a.phase = domain.PhaseMonitoring
		a.monitoring = true
		return []Command{{Kind: CmdStartMonitoring, Window: w, Sensitivity: a.plan.Schedule.Sensitivity}}
	default:
		a.phase = domain.PhaseIdle
	}
	return nil
}

func (c Command) String() string {
	return fmt.Sprintf("%s(target=%s)", c.Kind, c.Window.TargetAt.Format(time.RFC3339))
}
