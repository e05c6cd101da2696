package analysis

import (
	"gokundoluk/domain/gradebook"

	"github.com/montanaflynn/stats"
	"github.com/volatiletech/null/v8"
)

// Aggregate folds the grade's subjects into one report row per student.
//
// The first subject's roster fixes which students appear and in what order;
// students only present in later subjects are left out. Slot i holds the
// student's average in subject i (null when absent). The overall average is
// the mean of present slots, or 0 when there are none.
func Aggregate(grade gradebook.Grade) []gradebook.StudentReport {
	if len(grade.Subjects) == 0 {
		return []gradebook.StudentReport{}
	}

	roster, position := rosterOf(grade.Subjects[0])

	scores := make([][]null.Float64, len(roster))
	for i := range scores {
		scores[i] = make([]null.Float64, len(grade.Subjects))
	}

	for col, subject := range grade.Subjects {
		for _, row := range subject.Rows {
			idx, ok := position[row.Student]
			if !ok {
				continue
			}
			scores[idx][col] = row.Average
		}
	}

	reports := make([]gradebook.StudentReport, len(roster))
	for i, name := range roster {
		avg := OverallAverage(scores[i])
		reports[i] = gradebook.StudentReport{
			Index:          i + 1,
			Name:           name,
			Scores:         scores[i],
			OverallAverage: avg,
			Category:       gradebook.Categorize(avg),
		}
	}
	return reports
}

// OverallAverage is the mean of the present scores, 0 when none are present
func OverallAverage(scores []null.Float64) float64 {
	present := make([]float64, 0, len(scores))
	for _, s := range scores {
		if s.Valid {
			present = append(present, s.Float64)
		}
	}
	mean, err := stats.Mean(present)
	if err != nil {
		return 0
	}
	return mean
}

// RoundAverage rounds an overall average to two decimals for display
func RoundAverage(avg float64) float64 {
	rounded, err := stats.Round(avg, 2)
	if err != nil {
		return avg
	}
	return rounded
}

func rosterOf(subject gradebook.Subject) ([]string, map[string]int) {
	roster := make([]string, 0, len(subject.Rows))
	position := make(map[string]int, len(subject.Rows))
	for _, row := range subject.Rows {
		if _, seen := position[row.Student]; seen {
			continue
		}
		position[row.Student] = len(roster)
		roster = append(roster, row.Student)
	}
	return roster, position
}
