package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/medminder/medminder/internal/platform/clock"
)

// PrescriptionSource loads the medicine list a session schedules against.
// Satisfied by the patient service.
type PrescriptionSource interface {
	Medicines(ctx context.Context, patientID string) ([]Medicine, error)
}

// SinkFactory builds the effect sink for a patient's session.
type SinkFactory func(patientID string) Sink

// Intervals groups the session cadences. All four come from configuration.
type Intervals struct {
	Tick          time.Duration
	Escalation    time.Duration
	PromptTimeout time.Duration
	AdviceTimeout time.Duration
}

// MedicineStatus is one row of a session snapshot.
type MedicineStatus struct {
	Name            string   `json:"name"`
	Dose            string   `json:"dose"`
	Times           []string `json:"times"`
	Frequency       int      `json:"frequency"`
	SecondsLeft     int64    `json:"seconds_left"`
	State           State    `json:"state"`
	NoResponseCount int      `json:"no_response_count"`
}

// Snapshot is the current reminder state for a patient.
type Snapshot struct {
	PatientID      string           `json:"patient_id"`
	Medicines      []MedicineStatus `json:"medicines"`
	AdviceMedicine string           `json:"advice_medicine,omitempty"`
}

// Session drives one patient's reminder engine. A single goroutine owns the
// tick, escalation and sweep cadences; stopping the session cancels that
// goroutine and all three stop together.
type Session struct {
	patientID string
	sched     *Scheduler
	ctrl      *Controller
	cancel    context.CancelFunc
	done      chan struct{}
}

func (s *Session) run(ctx context.Context, clk clock.Clock, iv Intervals) {
	defer close(s.done)

	tick := time.NewTicker(iv.Tick)
	defer tick.Stop()
	escalate := time.NewTicker(iv.Escalation)
	defer escalate.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			now := clk.Now()
			s.sched.Tick(now)
			s.ctrl.Sweep(now)
		case <-escalate.C:
			s.ctrl.Escalate()
		}
	}
}

// Respond forwards a prompt answer to the alarm controller.
func (s *Session) Respond(ctx context.Context, medicineName string, taken bool) error {
	return s.ctrl.Respond(ctx, medicineName, taken)
}

// Snapshot reports the countdowns and alarm states for every medicine in the
// session.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{PatientID: s.patientID}
	for _, m := range s.sched.Medicines() {
		left, _ := s.sched.SecondsLeft(m.Name)
		state, count := s.ctrl.AlarmState(m.Name)
		snap.Medicines = append(snap.Medicines, MedicineStatus{
			Name:            m.Name,
			Dose:            m.Dose,
			Times:           m.Times,
			Frequency:       m.Frequency,
			SecondsLeft:     left,
			State:           state,
			NoResponseCount: count,
		})
	}
	if med, ok := s.ctrl.Advice(); ok {
		snap.AdviceMedicine = med
	}
	return snap
}

// Manager owns the running sessions, at most one per patient.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	prescriptions PrescriptionSource
	ledger        Ledger
	sinks         SinkFactory
	clk           clock.Clock
	intervals     Intervals
	logger        zerolog.Logger
}

func NewManager(prescriptions PrescriptionSource, ledger Ledger, sinks SinkFactory, clk clock.Clock, iv Intervals, logger zerolog.Logger) *Manager {
	return &Manager{
		sessions:      make(map[string]*Session),
		prescriptions: prescriptions,
		ledger:        ledger,
		sinks:         sinks,
		clk:           clk,
		intervals:     iv,
		logger:        logger,
	}
}

// Start begins a reminder session for the patient, loading their current
// prescription list. Starting an already-running session is a no-op that
// returns the existing one; the prescription is re-read only by an explicit
// stop and start.
func (m *Manager) Start(ctx context.Context, patientID string) (*Session, error) {
	m.mu.Lock()
	if existing, ok := m.sessions[patientID]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	m.mu.Unlock()

	meds, err := m.prescriptions.Medicines(ctx, patientID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[patientID]; ok {
		return existing, nil
	}

	sched := NewScheduler(nil)
	ctrl := NewController(patientID, m.clk, m.sinks(patientID), m.ledger, sched,
		m.intervals.PromptTimeout, m.intervals.AdviceTimeout)
	sched.onDue = ctrl.OnDue
	sched.Initialize(meds, m.clk.Now())

	runCtx, cancel := context.WithCancel(context.Background())
	sess := &Session{
		patientID: patientID,
		sched:     sched,
		ctrl:      ctrl,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	m.sessions[patientID] = sess
	go sess.run(runCtx, m.clk, m.intervals)

	m.logger.Info().Str("patient_id", patientID).Int("medicines", len(meds)).Msg("reminder session started")
	return sess, nil
}

// Get returns the running session for a patient, if any.
func (m *Manager) Get(patientID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[patientID]
	return s, ok
}

// Stop ends the patient's session, tearing down its timers. Stopping a
// patient with no session is a no-op.
func (m *Manager) Stop(patientID string) {
	m.mu.Lock()
	sess, ok := m.sessions[patientID]
	if ok {
		delete(m.sessions, patientID)
	}
	m.mu.Unlock()
	if !ok {
		return
	}
	sess.cancel()
	<-sess.done
	m.logger.Info().Str("patient_id", patientID).Msg("reminder session stopped")
}

// StopAll ends every running session. Called on server shutdown.
func (m *Manager) StopAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, sess := range sessions {
		sess.cancel()
		<-sess.done
	}
}
