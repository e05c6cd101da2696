package analysis

import (
	"math"
	"slices"

	"gokundoluk/domain/gradebook"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ClassSummary describes the spread of overall averages across a class.
// Students without any score are not counted.
type ClassSummary struct {
	Students int     `json:"students"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// Summarize computes class-level statistics over the reports
func Summarize(reports []gradebook.StudentReport) ClassSummary {
	var values []float64
	for _, r := range reports {
		if hasScore(r) {
			values = append(values, r.OverallAverage)
		}
	}
	if len(values) == 0 {
		return ClassSummary{}
	}

	slices.Sort(values)
	mean, std := stat.MeanStdDev(values, nil)
	if len(values) < 2 || math.IsNaN(std) {
		std = 0
	}

	median, err := stats.Median(values)
	if err != nil {
		median = mean
	}

	return ClassSummary{
		Students: len(values),
		Mean:     mean,
		Median:   median,
		StdDev:   std,
		Min:      floats.Min(values),
		Max:      floats.Max(values),
	}
}

func hasScore(r gradebook.StudentReport) bool {
	for _, s := range r.Scores {
		if s.Valid {
			return true
		}
	}
	return false
}
