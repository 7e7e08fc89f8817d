package treatment

import (
	"fmt"
	"math"
	"time"
)

// Severity is the qualitative status tier driving display color.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Status labels.
const (
	LabelOnTrack  = "OnTrack"
	LabelReassess = "Reassess"
	LabelOverdue  = "Overdue"
)

// StatusInfo is the computed display state of an active treatment.
type StatusInfo struct {
	ElapsedDays int      `json:"elapsed_days"`
	DisplayText string   `json:"display_text"`
	Severity    Severity `json:"severity"`
	Percent     float64  `json:"percent"`
	Label       string   `json:"label"`
}

// ComputeStatus classifies a treatment as of the given date. Day 1 is the
// start date itself, so a treatment evaluated on its start date has one
// elapsed day. Classification precedence: elapsed beyond duration is
// Overdue; the last two scheduled days are Reassess; everything earlier is
// OnTrack.
//
// The elapsed count uses the absolute difference between the two dates: a
// start date in the future therefore still yields a positive count, matching
// the deployed behavior.
func ComputeStatus(rec *PatientRecord, asOf time.Time) (StatusInfo, error) {
	start, err := time.ParseInLocation(DateLayout, rec.Start, time.UTC)
	if err != nil {
		return StatusInfo{}, fmt.Errorf("parse start date %q: %w", rec.Start, err)
	}
	if rec.Duration <= 0 {
		return StatusInfo{}, fmt.Errorf("duration must be positive, got %d: %w", rec.Duration, ErrInvalidArgument)
	}

	day := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	diff := day.Sub(start)
	if diff < 0 {
		diff = -diff
	}
	elapsed := int(math.Ceil(diff.Hours()/24)) + 1

	info := StatusInfo{
		ElapsedDays: elapsed,
		DisplayText: fmt.Sprintf("D%d / D%d", elapsed, rec.Duration),
		Severity:    SeveritySuccess,
		Label:       LabelOnTrack,
	}

	switch {
	case elapsed > rec.Duration:
		info.Severity = SeverityDanger
		info.Label = LabelOverdue
		info.DisplayText = fmt.Sprintf("OVERDUE (+%d)", elapsed-rec.Duration)
	case elapsed >= rec.Duration-1:
		info.Severity = SeverityWarning
		info.Label = LabelReassess
	}

	percent := float64(elapsed) / float64(rec.Duration) * 100
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		percent = 0
	}
	info.Percent = percent

	return info, nil
}
