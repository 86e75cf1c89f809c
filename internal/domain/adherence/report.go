// Package adherence builds the 30-day intake chart a doctor reviews: one
// series per prescribed medicine over a rolling day axis. Reports are
// assembled from the ledger on every request, never cached.
package adherence

import (
	"strconv"
	"time"

	"github.com/medminder/medminder/internal/domain/intake"
	"github.com/medminder/medminder/internal/domain/patient"
)

// WindowDays is the report window, today included.
const WindowDays = 30

// Series is one medicine's daily frequencies across the window.
type Series struct {
	Medicine string `json:"medicine"`
	Data     []int  `json:"data"`
}

// Report is the chart payload: day-of-month labels, oldest first, and one
// zero-filled series per prescribed medicine.
type Report struct {
	PatientID string   `json:"patient_id"`
	Days      []string `json:"days"`
	Series    []Series `json:"series"`
}

// Build assembles the report for the window ending today. Every prescribed
// medicine gets a series even with no recorded intake, so a fully missed
// medicine shows as a flat zero line. Records are bucketed by calendar date,
// which keeps a window spanning a month boundary from mixing, say, July 5th
// and August 5th under one label.
func Build(patientID string, meds []patient.Medicine, records []*intake.Record, today time.Time) *Report {
	start := intake.DayOf(today).AddDate(0, 0, -(WindowDays - 1))

	report := &Report{PatientID: patientID}
	index := make(map[string]int, WindowDays)
	for i := 0; i < WindowDays; i++ {
		day := start.AddDate(0, 0, i)
		report.Days = append(report.Days, strconv.Itoa(day.Day()))
		index[day.Format("2006-01-02")] = i
	}

	series := make(map[string][]int, len(meds))
	for _, m := range meds {
		data := make([]int, WindowDays)
		series[m.Name] = data
		report.Series = append(report.Series, Series{Medicine: m.Name, Data: data})
	}

	for _, rec := range records {
		data, prescribed := series[rec.MedicineName]
		if !prescribed {
			continue
		}
		if i, ok := index[rec.Day.Format("2006-01-02")]; ok {
			data[i] += rec.Frequency
		}
	}
	return report
}
