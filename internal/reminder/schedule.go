// Package reminder implements the medication reminder engine: dose
// countdowns computed from daily wall-clock times, the alarm state machine
// that prompts and escalates when a dose comes due, and the per-patient
// session that drives both on timers.
package reminder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTime is returned for times that are not valid "HH:MM" wall-clock
// strings. Invalid times never enter the scheduler; the medicine editor
// rejects them and NextDueIn filters them defensively.
var ErrInvalidTime = errors.New("invalid wall-clock time")

// ParseClockTime parses an "HH:MM" wall-clock string. Hours must be 0-23 and
// minutes 0-59.
func ParseClockTime(s string) (hour, minute int, err error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	hour, err = strconv.Atoi(hh)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	minute, err = strconv.Atoi(mm)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q out of range", ErrInvalidTime, s)
	}
	return hour, minute, nil
}

// NextOccurrence returns the duration from now until the next occurrence of
// the given "HH:MM" wall-clock time, floored to whole seconds. The candidate
// instant is always computed fresh from now (no drift accumulation): today at
// that wall-clock time, advanced by exactly one calendar day when it is at or
// before now. Answering a dose at its exact due second therefore reschedules
// it a full day out instead of making it instantly due again.
func NextOccurrence(clockTime string, now time.Time) (time.Duration, error) {
	hour, minute, err := ParseClockTime(clockTime)
	if err != nil {
		return 0, err
	}

	candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}

	left := candidate.Sub(now)
	if left < 0 {
		left = 0
	}
	return left.Truncate(time.Second), nil
}

// NextDueIn returns the duration until the earliest next occurrence among the
// given daily times. Invalid times are excluded; when no valid time remains
// the medicine is treated as due now (zero), matching the shipped product
// behavior rather than disabling the medicine.
func NextDueIn(times []string, now time.Time) time.Duration {
	next := time.Duration(-1)
	for _, t := range times {
		left, err := NextOccurrence(t, now)
		if err != nil {
			continue
		}
		if next < 0 || left < next {
			next = left
		}
	}
	if next < 0 {
		return 0
	}
	return next
}
