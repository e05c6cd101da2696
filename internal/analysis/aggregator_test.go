package analysis

import (
	"testing"

	"gokundoluk/domain/gradebook"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
)

func score(v float64) null.Float64 { return null.Float64From(v) }

var missing = null.Float64{}

func subject(name string, rows ...gradebook.SubjectRow) gradebook.Subject {
	return gradebook.Subject{Name: name, Rows: rows}
}

func row(student string, avg null.Float64) gradebook.SubjectRow {
	return gradebook.SubjectRow{Student: student, Average: avg}
}

func TestAggregate_EmptyGrade(t *testing.T) {
	reports := Aggregate(gradebook.Grade{Label: "4Б", Quarter: 1})
	assert.NotNil(t, reports)
	assert.Empty(t, reports)
}

func TestAggregate_MissingScoresAreExcludedFromMean(t *testing.T) {
	grade := gradebook.Grade{Subjects: []gradebook.Subject{
		subject("A", row("X", score(4))),
		subject("B", row("X", missing)),
		subject("C", row("X", score(5))),
	}}

	reports := Aggregate(grade)
	require.Len(t, reports, 1)

	assert.InDelta(t, 4.5, reports[0].OverallAverage, 1e-9)
	assert.Equal(t, []null.Float64{score(4), missing, score(5)}, reports[0].Scores)
	assert.Equal(t, gradebook.Satisfactory, reports[0].Category)
}

func TestAggregate_AllNullStudent(t *testing.T) {
	grade := gradebook.Grade{Subjects: []gradebook.Subject{
		subject("A", row("X", missing)),
		subject("B", row("X", missing)),
	}}

	reports := Aggregate(grade)
	require.Len(t, reports, 1)
	assert.Equal(t, 0.0, reports[0].OverallAverage)
	assert.Equal(t, gradebook.Unsatisfactory, reports[0].Category)
}

func TestAggregate_FirstSubjectDefinesRoster(t *testing.T) {
	grade := gradebook.Grade{Subjects: []gradebook.Subject{
		subject("A", row("X", score(5)), row("Y", score(4))),
		subject("B", row("Y", score(3)), row("Z", score(5))),
	}}

	reports := Aggregate(grade)
	require.Len(t, reports, 2)

	assert.Equal(t, "X", reports[0].Name)
	assert.Equal(t, "Y", reports[1].Name)
	assert.Equal(t, 1, reports[0].Index)
	assert.Equal(t, 2, reports[1].Index)

	assert.Equal(t, []null.Float64{score(5), missing}, reports[0].Scores, "X has no row in B")
	assert.InDelta(t, 3.5, reports[1].OverallAverage, 1e-9)
}

func TestAggregate_DuplicateRosterNames(t *testing.T) {
	grade := gradebook.Grade{Subjects: []gradebook.Subject{
		subject("A", row("X", score(2)), row("X", score(4))),
	}}

	reports := Aggregate(grade)
	require.Len(t, reports, 1, "roster holds distinct names")
	assert.InDelta(t, 4.0, reports[0].OverallAverage, 1e-9, "later rows overwrite the slot")
}

func TestAggregate_IsDeterministic(t *testing.T) {
	grade := gradebook.Grade{Subjects: []gradebook.Subject{
		subject("A", row("X", score(5)), row("Y", score(3))),
		subject("B", row("X", score(4)), row("Y", missing)),
	}}

	first := Aggregate(grade)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Aggregate(grade))
	}
}

func TestRoundAverage(t *testing.T) {
	assert.Equal(t, 4.33, RoundAverage(13.0/3))
	assert.Equal(t, 4.67, RoundAverage(14.0/3))
	assert.Equal(t, 0.0, RoundAverage(0))
}
