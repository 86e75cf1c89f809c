package reminder

import (
	"sync"
	"time"
)

// Medicine is the scheduler's view of a prescription entry. It carries the
// display fields the reminder snapshot exposes alongside the daily times the
// countdown is computed from.
type Medicine struct {
	Name      string   `json:"name"`
	Dose      string   `json:"dose"`
	Times     []string `json:"times"`
	Frequency int      `json:"frequency"`
}

// DueFunc is invoked once per due transition, after the scheduler lock is
// released, so callbacks are free to call back into the scheduler.
type DueFunc func(medicineName string)

// Scheduler maintains per-medicine countdowns in whole seconds. All mutation
// goes through a single owner (the session loop plus the respond path), so a
// countdown can never be decremented and recomputed concurrently.
type Scheduler struct {
	mu       sync.Mutex
	meds     []Medicine
	secsLeft map[string]int64
	lastTick time.Time
	onDue    DueFunc
}

func NewScheduler(onDue DueFunc) *Scheduler {
	return &Scheduler{
		secsLeft: make(map[string]int64),
		onDue:    onDue,
	}
}

// Initialize seeds the countdowns from the prescription list. Medicines that
// are already due (zero seconds left) fire their due callback immediately, so
// a session started at dose time still prompts.
func (s *Scheduler) Initialize(meds []Medicine, now time.Time) {
	s.mu.Lock()
	s.meds = make([]Medicine, len(meds))
	copy(s.meds, meds)
	s.secsLeft = make(map[string]int64, len(meds))
	s.lastTick = now

	var due []string
	for _, m := range meds {
		left := int64(NextDueIn(m.Times, now) / time.Second)
		s.secsLeft[m.Name] = left
		if left == 0 {
			due = append(due, m.Name)
		}
	}
	s.mu.Unlock()

	s.fireDue(due)
}

// Tick advances the countdowns to now. Elapsed time is measured against the
// previous tick and clamped below at zero, so a clock jump of any size
// produces at most one due transition per medicine and countdowns never go
// negative. The fractional remainder stays in lastTick to avoid drift.
func (s *Scheduler) Tick(now time.Time) {
	s.mu.Lock()
	elapsed := int64(now.Sub(s.lastTick) / time.Second)
	if elapsed <= 0 {
		s.mu.Unlock()
		return
	}
	s.lastTick = s.lastTick.Add(time.Duration(elapsed) * time.Second)

	var due []string
	for name, left := range s.secsLeft {
		if left <= 0 {
			continue
		}
		left -= elapsed
		if left <= 0 {
			left = 0
			due = append(due, name)
		}
		s.secsLeft[name] = left
	}
	s.mu.Unlock()

	s.fireDue(due)
}

func (s *Scheduler) fireDue(names []string) {
	if s.onDue == nil {
		return
	}
	for _, name := range names {
		s.onDue(name)
	}
}

// Recompute resets a single medicine's countdown to its next occurrence,
// leaving every other countdown untouched. Unknown names are ignored.
func (s *Scheduler) Recompute(medicineName string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.meds {
		if m.Name == medicineName {
			s.secsLeft[medicineName] = int64(NextDueIn(m.Times, now) / time.Second)
			return
		}
	}
}

// SecondsLeft returns the current countdown for a medicine.
func (s *Scheduler) SecondsLeft(medicineName string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	left, ok := s.secsLeft[medicineName]
	return left, ok
}

// Medicines returns a copy of the prescription list the scheduler was
// initialized with.
func (s *Scheduler) Medicines() []Medicine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Medicine, len(s.meds))
	copy(out, s.meds)
	return out
}
