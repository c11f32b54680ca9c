package core

import (
	"time"

	"github.com/huangsam/gitsize/schema"
)

// Sampling constants.
const (
	DaysPerYear          = 365.25 // Average year length used to measure history span
	YearlyThresholdYears = 6.0    // Spans strictly longer than this sample yearly in auto mode
	YearlyStepDays       = 365
	MonthlyStepDays      = 30
)

const day = 24 * time.Hour

// wholeDays returns the number of complete days between start and end.
func wholeDays(start, end time.Time) int64 {
	if !end.After(start) {
		return 0
	}
	return int64(end.Sub(start) / day)
}

// selectInterval picks the auto interval for a span measured in years.
func selectInterval(years float64) schema.Interval {
	if years > YearlyThresholdYears {
		return schema.YearlyInterval
	}
	return schema.MonthlyInterval
}

// SelectInterval returns the interval used for the span and the span length in years.
// Forced modes override the automatic choice.
func SelectInterval(spanStart, spanEnd time.Time, mode schema.SamplingMode) (schema.Interval, float64) {
	years := float64(wholeDays(spanStart, spanEnd)) / DaysPerYear
	switch mode {
	case schema.YearlySampling:
		return schema.YearlyInterval, years
	case schema.MonthlySampling:
		return schema.MonthlyInterval, years
	default:
		return selectInterval(years), years
	}
}

// stepFor returns the step between sample dates for an interval.
func stepFor(interval schema.Interval) time.Duration {
	if interval == schema.YearlyInterval {
		return YearlyStepDays * day
	}
	return MonthlyStepDays * day
}

// Plan returns the target dates to sample between spanStart and spanEnd.
// Dates advance by the chosen step while strictly before spanEnd; spanEnd
// itself is always the last date and appears exactly once.
func Plan(spanStart, spanEnd time.Time, mode schema.SamplingMode) []time.Time {
	interval, _ := SelectInterval(spanStart, spanEnd, mode)
	step := stepFor(interval)

	var targets []time.Time
	for current := spanStart; current.Before(spanEnd); current = current.Add(step) {
		targets = append(targets, current)
	}
	return append(targets, spanEnd)
}

// ResolveSamples maps each target date to its nearest commit.
// Consecutive targets falling on the same calendar date collapse into one,
// keeping the later target so the final date always survives.
func ResolveSamples(idx *CommitIndex, targets []time.Time) []schema.SamplePoint {
	points := make([]schema.SamplePoint, 0, len(targets))
	for _, target := range targets {
		rec, ok := idx.FindNearest(target.Unix())
		if !ok {
			continue
		}
		point := schema.SamplePoint{
			TargetDate: target.UTC(),
			CommitID:   rec.ID,
			CommitTime: rec.Timestamp,
		}
		if last := len(points) - 1; last >= 0 && points[last].Date() == point.Date() {
			points[last] = point
			continue
		}
		points = append(points, point)
	}
	return points
}
