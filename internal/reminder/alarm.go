package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/medminder/medminder/internal/platform/clock"
)

// State is the lifecycle of a single medicine's alarm.
type State string

const (
	// StateIdle means the countdown is running and no prompt is showing.
	StateIdle State = "idle"
	// StatePrompting means the dose is due, the alert has fired and the
	// patient has not answered the prompt yet.
	StatePrompting State = "prompting"
)

// ErrNotPrompting is returned when a response arrives for a medicine whose
// prompt is no longer (or was never) showing. Late answers after an
// auto-dismiss land here and are dropped without touching the intake ledger.
var ErrNotPrompting = errors.New("medicine is not prompting")

// adviceMessage is shown after a patient declines a dose.
const adviceMessage = "Please take %s as soon as possible. Consult your doctor if needed."

// Ledger records the outcome of an answered prompt. Satisfied by the intake
// service.
type Ledger interface {
	Record(ctx context.Context, patientID, medicineName string, takenAt time.Time, taken bool) error
}

type alarm struct {
	state           State
	noResponseCount int
	promptedAt      time.Time
}

type advice struct {
	medicine string
	until    time.Time
}

// Controller runs the alarm state machine for one patient. The session loop
// calls OnDue, Escalate and Sweep; the HTTP respond path calls Respond. A
// single mutex serializes them so a prompt cannot be answered and dismissed
// at the same time.
type Controller struct {
	mu        sync.Mutex
	patientID string
	clk       clock.Clock
	sink      Sink
	ledger    Ledger
	sched     *Scheduler

	promptTimeout time.Duration
	adviceTimeout time.Duration

	alarms map[string]*alarm
	advice *advice
}

func NewController(patientID string, clk clock.Clock, sink Sink, ledger Ledger, sched *Scheduler, promptTimeout, adviceTimeout time.Duration) *Controller {
	return &Controller{
		patientID:     patientID,
		clk:           clk,
		sink:          sink,
		ledger:        ledger,
		sched:         sched,
		promptTimeout: promptTimeout,
		adviceTimeout: adviceTimeout,
		alarms:        make(map[string]*alarm),
	}
}

// OnDue transitions a medicine into Prompting: the alert sound plays and the
// first prompt shows. A medicine already prompting stays where it is.
func (c *Controller) OnDue(medicineName string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	a := c.alarms[medicineName]
	if a == nil {
		a = &alarm{state: StateIdle}
		c.alarms[medicineName] = a
	}
	if a.state == StatePrompting {
		return
	}
	a.state = StatePrompting
	a.noResponseCount = 0
	a.promptedAt = c.clk.Now()

	c.sink.PlayAlert(medicineName)
	c.sink.ShowPrompt(medicineName, 1)
}

// Escalate replays the alert and re-shows the prompt for every unanswered
// medicine, bumping its no-response count. Called on the escalation cadence.
func (c *Controller) Escalate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for name, a := range c.alarms {
		if a.state != StatePrompting {
			continue
		}
		a.noResponseCount++
		c.sink.PlayAlert(name)
		c.sink.ShowPrompt(name, a.noResponseCount+1)
	}
}

// Sweep auto-dismisses prompts that have outlived the prompt timeout and
// clears an expired advisory. A swept prompt goes back to Idle without a
// ledger write and without a recompute; its countdown is already zero, so
// the next tick of the schedule leaves it due until the patient responds or
// the next occurrence is recomputed by a response.
func (c *Controller) Sweep(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for name, a := range c.alarms {
		if a.state != StatePrompting {
			continue
		}
		if now.Sub(a.promptedAt) >= c.promptTimeout {
			a.state = StateIdle
			a.noResponseCount = 0
			c.sink.HidePrompt(name)
			c.sink.StopAlert()
		}
	}

	if c.advice != nil && !now.Before(c.advice.until) {
		c.sink.ClearAdvice(c.advice.medicine)
		c.advice = nil
	}
}

// Respond resolves a showing prompt with the patient's answer. The ledger
// write happens first: if it fails the prompt stays up and the error is
// returned, so a retry is still possible. On success the alert stops, the
// prompt hides, a declined dose raises the advisory (a taken one clears any
// showing advisory), and only this medicine's countdown is recomputed.
func (c *Controller) Respond(ctx context.Context, medicineName string, taken bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	a := c.alarms[medicineName]
	if a == nil || a.state != StatePrompting {
		return fmt.Errorf("%w: %s", ErrNotPrompting, medicineName)
	}

	now := c.clk.Now()
	if err := c.ledger.Record(ctx, c.patientID, medicineName, now, taken); err != nil {
		return fmt.Errorf("record intake: %w", err)
	}

	a.state = StateIdle
	a.noResponseCount = 0
	c.sink.StopAlert()
	c.sink.HidePrompt(medicineName)

	if c.advice != nil {
		c.sink.ClearAdvice(c.advice.medicine)
		c.advice = nil
	}
	if !taken {
		c.advice = &advice{medicine: medicineName, until: now.Add(c.adviceTimeout)}
		c.sink.ShowAdvice(medicineName, fmt.Sprintf(adviceMessage, medicineName))
	}

	c.sched.Recompute(medicineName, now)
	return nil
}

// AlarmState reports the state and no-response count for one medicine.
// Medicines that never came due are Idle.
func (c *Controller) AlarmState(medicineName string) (State, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a := c.alarms[medicineName]
	if a == nil {
		return StateIdle, 0
	}
	return a.state, a.noResponseCount
}

// Advice returns the medicine currently under an advisory, if any.
func (c *Controller) Advice() (medicineName string, active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.advice == nil {
		return "", false
	}
	return c.advice.medicine, true
}
