package adherence

import (
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/medminder/medminder/internal/domain/intake"
	"github.com/medminder/medminder/internal/domain/patient"
)

func TestBuildReportWindow(t *testing.T) {
	today := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	patientID := uuid.New()

	meds := []patient.Medicine{
		{Name: "X", Times: []string{"08:00"}},
		{Name: "Y", Times: []string{"20:00"}},
	}
	records := []*intake.Record{
		{
			PatientID:    patientID,
			MedicineName: "X",
			Day:          intake.DayOf(today.AddDate(0, 0, -10)),
			Taken:        true,
			Frequency:    3,
		},
	}

	report := Build(patientID.String(), meds, records, today)

	if len(report.Days) != WindowDays {
		t.Fatalf("axis length = %d, want %d", len(report.Days), WindowDays)
	}
	// The axis runs oldest to newest and ends today.
	if report.Days[WindowDays-1] != strconv.Itoa(today.Day()) {
		t.Errorf("last label = %s, want %d", report.Days[WindowDays-1], today.Day())
	}
	if len(report.Series) != 2 {
		t.Fatalf("series count = %d, want 2", len(report.Series))
	}

	var xData, yData []int
	for _, s := range report.Series {
		switch s.Medicine {
		case "X":
			xData = s.Data
		case "Y":
			yData = s.Data
		}
	}
	// 10 days ago sits at index window-1-10.
	for i, v := range xData {
		want := 0
		if i == WindowDays-1-10 {
			want = 3
		}
		if v != want {
			t.Errorf("X[%d] = %d, want %d", i, v, want)
		}
	}
	// An untouched medicine charts as a flat zero line.
	for i, v := range yData {
		if v != 0 {
			t.Errorf("Y[%d] = %d, want 0", i, v)
		}
	}
}

func TestBuildReportBucketsByDateNotLabel(t *testing.T) {
	// Window spans a month boundary: August 5th is in range, July 5th is
	// not, even though both carry the label "5".
	today := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	patientID := uuid.New()

	meds := []patient.Medicine{{Name: "X", Times: []string{"08:00"}}}
	records := []*intake.Record{
		{MedicineName: "X", Day: time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC), Frequency: 2},
		{MedicineName: "X", Day: time.Date(2026, 7, 5, 0, 0, 0, 0, time.UTC), Frequency: 9},
	}

	report := Build(patientID.String(), meds, records, today)

	total := 0
	for _, v := range report.Series[0].Data {
		total += v
	}
	if total != 2 {
		t.Errorf("series total = %d, want 2 (out-of-window record leaked in)", total)
	}
}

func TestBuildReportIgnoresUnprescribedMedicine(t *testing.T) {
	today := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	meds := []patient.Medicine{{Name: "X", Times: []string{"08:00"}}}
	records := []*intake.Record{
		{MedicineName: "Dropped", Day: intake.DayOf(today), Frequency: 4},
	}

	report := Build(uuid.NewString(), meds, records, today)
	if len(report.Series) != 1 || report.Series[0].Medicine != "X" {
		t.Fatalf("series: %+v", report.Series)
	}
	for i, v := range report.Series[0].Data {
		if v != 0 {
			t.Errorf("X[%d] = %d, want 0", i, v)
		}
	}
}
