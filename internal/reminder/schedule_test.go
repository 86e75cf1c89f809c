package reminder

import (
	"testing"
	"time"
)

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		input   string
		hour    int
		minute  int
		wantErr bool
	}{
		{"08:00", 8, 0, false},
		{"8:05", 8, 5, false},
		{"00:00", 0, 0, false},
		{"23:59", 23, 59, false},
		{"24:00", 0, 0, true},
		{"12:60", 0, 0, true},
		{"-1:30", 0, 0, true},
		{"aa:bb", 0, 0, true},
		{"0800", 0, 0, true},
		{"", 0, 0, true},
	}
	for _, tt := range tests {
		hour, minute, err := ParseClockTime(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseClockTime(%q): expected error, got hour=%d minute=%d", tt.input, hour, minute)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClockTime(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if hour != tt.hour || minute != tt.minute {
			t.Errorf("ParseClockTime(%q) = %d:%d, want %d:%d", tt.input, hour, minute, tt.hour, tt.minute)
		}
	}
}

func TestNextOccurrence(t *testing.T) {
	now := time.Date(2026, 8, 30, 7, 59, 50, 0, time.UTC)

	left, err := NextOccurrence("08:00", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if left != 10*time.Second {
		t.Errorf("upcoming time: got %v, want 10s", left)
	}

	// A time already passed today rolls to tomorrow.
	left, err = NextOccurrence("07:00", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := 23*time.Hour + 10*time.Second; left != want {
		t.Errorf("passed time: got %v, want %v", left, want)
	}

	// A candidate exactly at the current instant rolls a full day out, so
	// answering at the due second never makes the dose due again at once.
	exact := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)
	left, err = NextOccurrence("08:00", exact)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if left != 24*time.Hour {
		t.Errorf("exact instant: got %v, want 24h", left)
	}

	// A candidate under a second away floors to zero: due now.
	almost := time.Date(2026, 8, 30, 7, 59, 59, int(500*time.Millisecond), time.UTC)
	left, err = NextOccurrence("08:00", almost)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if left != 0 {
		t.Errorf("sub-second away: got %v, want 0", left)
	}

	// Sub-second remainders are floored, never rounded up.
	frac := time.Date(2026, 8, 30, 7, 59, 50, int(500*time.Millisecond), time.UTC)
	left, err = NextOccurrence("08:00", frac)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if left != 9*time.Second {
		t.Errorf("fractional now: got %v, want 9s", left)
	}

	if _, err := NextOccurrence("25:00", now); err == nil {
		t.Error("expected error for out-of-range time")
	}
}

func TestNextDueIn(t *testing.T) {
	now := time.Date(2026, 8, 30, 7, 59, 50, 0, time.UTC)

	if got := NextDueIn([]string{"12:00", "08:00", "20:00"}, now); got != 10*time.Second {
		t.Errorf("earliest of several: got %v, want 10s", got)
	}

	// Invalid entries are skipped, valid ones still schedule.
	if got := NextDueIn([]string{"bogus", "08:00"}, now); got != 10*time.Second {
		t.Errorf("mixed valid/invalid: got %v, want 10s", got)
	}

	// No valid time at all means due now.
	if got := NextDueIn([]string{"bogus", "99:99"}, now); got != 0 {
		t.Errorf("all invalid: got %v, want 0", got)
	}
	if got := NextDueIn(nil, now); got != 0 {
		t.Errorf("empty list: got %v, want 0", got)
	}
}
