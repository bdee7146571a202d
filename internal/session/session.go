package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/blaisecz/smart-wake/internal/algorithm"
	"github.com/blaisecz/smart-wake/internal/domain"
	"github.com/blaisecz/smart-wake/internal/protocol"
	"github.com/blaisecz/smart-wake/internal/repository"
	"github.com/blaisecz/smart-wake/internal/sensor"
	"github.com/blaisecz/smart-wake/internal/transport"
)

// Peer is the device's view of the controller link. *protocol.Client
// implements it.
type Peer interface {
	Send(ctx context.Context, p protocol.Payload) error
	UpdateContext(ctx context.Context, p protocol.Payload) error
	ReceivedContext(ctx context.Context) (protocol.Envelope, error)
	Decode(data []byte) (protocol.Envelope, error)
	Messages() <-chan []byte
	IsReachable() bool
}

// Cue plays one pulse of the wake cue (haptic or audio).
type Cue interface {
	Play()
}

// Config tunes the session timers.
type Config struct {
	Location             *time.Location
	TickInterval         time.Duration
	AlgorithmInterval    time.Duration
	HapticInterval       time.Duration
	ReachabilityInterval time.Duration
	SnoozeDuration       time.Duration
	SendTimeout          time.Duration
	Monitor              MonitorConfig
}

// DefaultConfig returns the production timer settings.
func DefaultConfig() Config {
	return Config{
		Location:             time.Local,
		TickInterval:         time.Second,
		AlgorithmInterval:    30 * time.Second,
		HapticInterval:       DefaultHapticInterval,
		ReachabilityInterval: 2 * time.Second,
		SnoozeDuration:       DefaultSnoozeDuration,
		SendTimeout:          10 * time.Second,
		Monitor:              DefaultMonitorConfig(),
	}
}

// Deps are the collaborators of a session.
type Deps struct {
	Peer      Peer
	Motion    sensor.MotionSource
	HeartRate sensor.HeartRateSource
	Store     repository.PlanStore
	Cue       Cue
	Scorer    Scorer
	Log       *zap.Logger
	Clock     func() time.Time
}

// Snapshot is a read-only view of the session for callers outside the actor.
type Snapshot struct {
	Phase     domain.Phase
	Alarm     domain.AlarmState
	LastScore *float64
	Reachable bool
}

type actionKind int

const (
	actionSnooze actionKind = iota
	actionStop
	actionReset
)

type outbound struct {
	payload protocol.Payload
	context bool
}

// Session is the single logical wake session of the device. All state is
// owned by the goroutine running Run; other goroutines interact through
// Snooze, Stop, Reset and Snapshot.
type Session struct {
	cfg    Config
	deps   Deps
	log    *zap.Logger
	tracer trace.Tracer

	arming  *Arming
	monitor *Monitor
	alarm   *Alarm

	actions chan actionKind
	outbox  chan outbound

	motionCh <-chan domain.MotionSample
	heartCh  <-chan domain.HeartRateSample

	algoTicker   *time.Ticker
	hapticTicker *time.Ticker
	snoozeTimer  *time.Timer

	lastPhase     domain.Phase
	lastReachable bool

	mu       sync.RWMutex
	snapshot Snapshot
}

// New wires a session. Missing optional collaborators get defaults: a
// silent cue, time.Now, the default scorer and unavailable sensors.
func New(cfg Config, deps Deps) *Session {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Cue == nil {
		deps.Cue = nopCue{}
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.HeartRate == nil {
		deps.HeartRate = sensor.Unavailable[domain.HeartRateSample]{}
	}
	if deps.Motion == nil {
		deps.Motion = sensor.Unavailable[domain.MotionSample]{}
	}
	if deps.Scorer == nil {
		deps.Scorer = algorithm.NewWakeability(algorithm.DefaultScoreConfig())
	}

	s := &Session{
		cfg:       cfg,
		deps:      deps,
		log:       deps.Log,
		tracer:    otel.Tracer("smart-wake/session"),
		arming:    NewArming(cfg.Location),
		monitor:   NewMonitor(cfg.Monitor, deps.Scorer, deps.Log),
		alarm:     NewAlarm(cfg.SnoozeDuration, deps.Log),
		actions:   make(chan actionKind, 8),
		outbox:    make(chan outbound, 32),
		lastPhase: domain.PhaseIdle,
	}
	s.snapshot = Snapshot{Phase: domain.PhaseIdle, Alarm: s.alarm.State()}
	return s
}

// Snooze asks the actor to snooze a ringing alarm.
func (s *Session) Snooze() { s.enqueue(actionSnooze) }

// Stop asks the actor to dismiss the alarm.
func (s *Session) Stop() { s.enqueue(actionStop) }

// Reset asks the actor to leave Triggered and silence the alarm without a summary.
func (s *Session) Reset() { s.enqueue(actionReset) }

func (s *Session) enqueue(a actionKind) {
	select {
	case s.actions <- a:
	default:
		s.log.Warn("session action queue full, dropping action")
	}
}

// Snapshot returns the latest published view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Run drives the session until ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	go s.sendLoop(ctx)

	s.restore(ctx, s.deps.Clock())
	s.after(ctx)

	tick := time.NewTicker(s.cfg.TickInterval)
	defer tick.Stop()
	reach := time.NewTicker(s.cfg.ReachabilityInterval)
	defer reach.Stop()

	inbound := s.deps.Peer.Messages()
	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return nil
		case <-tick.C:
			s.handleTick(ctx, s.deps.Clock())
		case <-tickerC(s.algoTicker):
			s.handleAlgorithmTick(ctx, s.deps.Clock())
		case <-tickerC(s.hapticTicker):
			s.handleHaptic()
		case <-timerC(s.snoozeTimer):
			s.snoozeTimer = nil
			s.handleSnoozeElapsed(s.deps.Clock())
		case sample, ok := <-s.motionCh:
			if !ok {
				s.motionCh = nil
				continue
			}
			s.monitor.AddMotion(sample)
			continue
		case sample, ok := <-s.heartCh:
			if !ok {
				s.heartCh = nil
				continue
			}
			s.monitor.AddHeartRate(sample)
			continue
		case raw, ok := <-inbound:
			if !ok {
				s.log.Warn("link closed, no more inbound messages")
				inbound = nil
				continue
			}
			s.handleMessage(ctx, raw, s.deps.Clock())
		case a := <-s.actions:
			s.handleAction(ctx, a, s.deps.Clock())
		case <-reach.C:
			s.handleReachability()
		}
		s.after(ctx)
	}
}

// restore applies the completed target and the stored plan, then the
// controller's last context.
func (s *Session) restore(ctx context.Context, now time.Time) {
	if s.deps.Store != nil {
		completed, err := s.deps.Store.Completed(ctx)
		switch {
		case err == nil:
			s.arming.RestoreCompleted(completed)
		case errors.Is(err, domain.ErrNotFound):
		default:
			s.log.Warn("failed to load completed target", zap.Error(err))
		}

		plan, err := s.deps.Store.Load(ctx)
		switch {
		case err == nil:
			s.applyPlan(ctx, *plan, now)
		case errors.Is(err, domain.ErrNotFound):
		default:
			s.log.Warn("failed to load stored plan", zap.Error(err))
		}
	}

	env, err := s.deps.Peer.ReceivedContext(ctx)
	switch {
	case err == nil:
		s.applyEnvelope(ctx, env, now)
	case errors.Is(err, transport.ErrNoContext):
	default:
		s.log.Warn("failed to read replicated context", zap.Error(err))
	}
}

func (s *Session) handleTick(ctx context.Context, now time.Time) {
	s.apply(ctx, s.arming.Tick(now), now)
	// The snooze timer is authoritative; this catches a missed timer after
	// the process was suspended.
	if s.alarm.Resume(now) {
		s.startRinging()
	}
}

func (s *Session) handleAlgorithmTick(ctx context.Context, now time.Time) {
	if s.arming.Phase() != domain.PhaseMonitoring {
		return
	}
	s.evaluate(ctx, now)
}

// evaluate runs one monitoring tick inside a span.
func (s *Session) evaluate(ctx context.Context, now time.Time) {
	ctx, span := s.tracer.Start(ctx, "session.evaluate")
	defer span.End()

	eval := s.monitor.Tick(now)
	if !eval.Evaluated {
		span.SetAttributes(attribute.Bool("evaluated", false))
		return
	}
	span.SetAttributes(
		attribute.Bool("evaluated", true),
		attribute.Float64("score", eval.Update.Score),
		attribute.Float64("motion_score", eval.Update.Components.MotionScore),
		attribute.Float64("heart_rate_score", eval.Update.Components.HeartRateScore),
	)
	s.push(protocol.SessionState{State: string(s.arming.Phase()), LastScore: s.monitor.LastScore()}, false)

	if eval.Trigger != nil {
		span.SetAttributes(attribute.String("trigger", string(eval.Trigger.Reason)))
		s.onTrigger(ctx, eval, now)
	}
}

func (s *Session) onTrigger(ctx context.Context, eval Evaluation, now time.Time) {
	event := eval.Trigger
	window := s.monitor.Window()

	s.arming.MarkTriggered()
	s.stopSensors()
	if s.deps.Store != nil {
		if err := s.deps.Store.MarkCompleted(ctx, window.TargetAt); err != nil {
			s.log.Warn("failed to persist completed target", zap.Error(err))
		}
	}

	s.log.Info("wake trigger fired",
		zap.String("reason", string(event.Reason)),
		zap.Float64("score", event.Score),
		zap.Time("target", window.TargetAt),
	)

	s.push(protocol.AlarmFired{
		TargetWakeAt:    protocol.At(window.TargetAt),
		FiredAt:         protocol.At(event.Timestamp),
		Reason:          event.Reason,
		ScoreAtFire:     event.Score,
		Components:      event.Components,
		CooldownApplied: eval.CooldownApplied,
	}, true)

	if s.alarm.Fire(event, &window, s.monitor.History()) {
		s.startRinging()
	}
}

func (s *Session) handleHaptic() {
	if s.alarm.Ringing() {
		s.deps.Cue.Play()
	}
}

func (s *Session) handleSnoozeElapsed(now time.Time) {
	if s.alarm.Resume(now) {
		s.log.Info("snooze elapsed, ringing again")
		s.startRinging()
	}
}

func (s *Session) startRinging() {
	s.deps.Cue.Play()
}

func (s *Session) handleAction(ctx context.Context, a actionKind, now time.Time) {
	switch a {
	case actionSnooze:
		if resumeAt, ok := s.alarm.Snooze(now); ok {
			s.log.Info("alarm snoozed", zap.Time("resume_at", resumeAt), zap.Int("snooze_count", s.alarm.State().SnoozeCount))
		}
	case actionStop:
		summary, ok := s.alarm.Stop(now)
		if !ok {
			return
		}
		s.log.Info("alarm dismissed",
			zap.String("reason", string(summary.Reason)),
			zap.Time("fired_at", summary.FiredAt),
			zap.Int("snooze_count", s.alarm.State().SnoozeCount),
		)
		s.push(protocol.SessionSummary{Summary: protocol.SummaryFrom(summary)}, true)
		s.apply(ctx, s.arming.Reset(now), now)
	case actionReset:
		s.alarm.Reset()
		s.apply(ctx, s.arming.Reset(now), now)
	}
}

func (s *Session) handleMessage(ctx context.Context, raw []byte, now time.Time) {
	env, err := s.deps.Peer.Decode(raw)
	if err != nil {
		// Unknown types are forward compatible no-ops. Other failures were
		// already logged by the decoder; only a dropped schedule is reported.
		if env.Type == protocol.TypeUpdateSchedule {
			s.push(protocol.Error{Code: protocol.CodeDecodeFailed, Detail: err.Error()}, false)
		}
		return
	}
	s.applyEnvelope(ctx, env, now)
}

func (s *Session) applyEnvelope(ctx context.Context, env protocol.Envelope, now time.Time) {
	switch p := env.Payload.(type) {
	case protocol.UpdateSchedule:
		s.applyPlan(ctx, p.Plan(), now)
	case protocol.CancelSchedule:
		s.log.Info("schedule cancelled", zap.String("effective_date", p.EffectiveDate))
		s.apply(ctx, s.arming.Cancel(), now)
		if s.deps.Store != nil {
			if err := s.deps.Store.Clear(ctx); err != nil {
				s.log.Warn("failed to clear stored plan", zap.Error(err))
			}
		}
	default:
		s.log.Debug("ignoring message", zap.String("type", string(env.Type)))
	}
}

func (s *Session) applyPlan(ctx context.Context, plan domain.WakePlan, now time.Time) {
	cmds, err := s.arming.SetPlan(plan, now)
	if err != nil {
		s.log.Warn("rejecting schedule", zap.Error(err))
		s.push(protocol.Error{Code: protocol.CodeInvalidSchedule, Detail: err.Error()}, false)
		return
	}
	window, _ := s.arming.Window()
	s.log.Info("schedule applied",
		zap.String("effective_date", plan.EffectiveDate),
		zap.String("wake_time", plan.Schedule.WakeTimeLocal),
		zap.Bool("enabled", plan.Schedule.Enabled),
		zap.Time("target", window.TargetAt),
	)
	if s.deps.Store != nil {
		if err := s.deps.Store.Save(ctx, plan); err != nil {
			s.log.Warn("failed to persist plan", zap.Error(err))
		}
	}
	s.apply(ctx, cmds, now)
}

// apply executes arming commands against the monitor and sensors.
func (s *Session) apply(ctx context.Context, cmds []Command, now time.Time) {
	for _, cmd := range cmds {
		s.log.Info("arming command", zap.Stringer("command", cmd))
		switch cmd.Kind {
		case CmdStartMonitoring:
			s.monitor.Start(cmd.Window, cmd.Sensitivity)
			s.startSensors(ctx)
		case CmdStopMonitoring:
			s.monitor.Stop()
			s.stopSensors()
		case CmdSessionEnded:
			// The target has passed; one last evaluation lets the forced
			// trigger fire.
			if s.monitor.Active() {
				s.evaluate(ctx, now)
			}
			if s.monitor.Active() {
				s.log.Warn("session ended without trigger")
				s.monitor.Stop()
			}
			s.stopSensors()
		}
	}
}

func (s *Session) startSensors(ctx context.Context) {
	s.stopSensors()

	motion, err := s.deps.Motion.Start(ctx)
	if err != nil {
		s.log.Warn("motion sensor unavailable", zap.Error(err))
	}
	s.motionCh = motion

	heart, err := s.deps.HeartRate.Start(ctx)
	if err != nil {
		s.log.Warn("heart rate sensor unavailable, scoring on motion only", zap.Error(err))
	}
	s.heartCh = heart
	s.monitor.SetHeartRateAvailable(err == nil)
}

func (s *Session) stopSensors() {
	if s.motionCh != nil {
		s.deps.Motion.Stop()
		s.motionCh = nil
	}
	if s.heartCh != nil {
		s.deps.HeartRate.Stop()
		s.heartCh = nil
	}
}

func (s *Session) handleReachability() {
	reachable := s.deps.Peer.IsReachable()
	if reachable == s.lastReachable {
		return
	}
	s.lastReachable = reachable
	s.log.Info("controller reachability changed", zap.Bool("reachable", reachable))
	if reachable {
		s.push(protocol.SessionState{State: string(s.arming.Phase()), LastScore: s.monitor.LastScore()}, false)
	}
}

// after runs once per handled event: it reports phase changes, aligns the
// timers with the current state and publishes the snapshot.
func (s *Session) after(ctx context.Context) {
	if phase := s.arming.Phase(); phase != s.lastPhase {
		s.log.Info("phase changed", zap.String("from", string(s.lastPhase)), zap.String("to", string(phase)))
		s.lastPhase = phase
		s.push(protocol.SessionState{State: string(phase), LastScore: s.monitor.LastScore()}, false)
	}
	s.syncTimers(s.deps.Clock())

	s.mu.Lock()
	s.snapshot = Snapshot{
		Phase:     s.arming.Phase(),
		Alarm:     s.alarm.State(),
		LastScore: s.monitor.LastScore(),
		Reachable: s.lastReachable,
	}
	s.mu.Unlock()
}

func (s *Session) syncTimers(now time.Time) {
	if s.monitor.Active() {
		if s.algoTicker == nil {
			s.algoTicker = time.NewTicker(s.cfg.AlgorithmInterval)
		}
	} else if s.algoTicker != nil {
		s.algoTicker.Stop()
		s.algoTicker = nil
	}

	if s.alarm.Ringing() {
		if s.hapticTicker == nil {
			s.hapticTicker = time.NewTicker(s.cfg.HapticInterval)
		}
	} else if s.hapticTicker != nil {
		s.hapticTicker.Stop()
		s.hapticTicker = nil
	}

	state := s.alarm.State()
	if state.Status == domain.AlarmSnoozed {
		if s.snoozeTimer == nil {
			s.snoozeTimer = time.NewTimer(state.ResumeAt.Sub(now))
		}
	} else if s.snoozeTimer != nil {
		s.snoozeTimer.Stop()
		s.snoozeTimer = nil
	}
}

func (s *Session) shutdown() {
	s.monitor.Stop()
	s.stopSensors()
	s.syncTimers(s.deps.Clock())
	s.log.Info("session stopped")
}

// push queues an outbound message without blocking the actor.
func (s *Session) push(p protocol.Payload, replicated bool) {
	select {
	case s.outbox <- outbound{payload: p, context: replicated}:
	default:
		s.log.Warn("outbox full, dropping message", zap.String("type", string(p.MessageType())))
	}
}

// sendLoop delivers queued messages in order.
func (s *Session) sendLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case out := <-s.outbox:
			s.deliver(ctx, out)
		}
	}
}

func (s *Session) deliver(ctx context.Context, out outbound) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	defer cancel()

	var err error
	if out.context {
		err = s.deps.Peer.UpdateContext(ctx, out.payload)
	} else {
		err = s.deps.Peer.Send(ctx, out.payload)
	}
	switch {
	case err == nil:
	case errors.Is(err, transport.ErrNotReachable):
		s.log.Debug("controller not reachable, message dropped", zap.String("type", string(out.payload.MessageType())))
	default:
		s.log.Warn("failed to deliver message", zap.String("type", string(out.payload.MessageType())), zap.Error(err))
	}
}

func tickerC(t *time.Ticker) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}

func timerC(t *time.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}

type nopCue struct{}

func (nopCue) Play() {}
