package gradebook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTable_MultiLevelHeader(t *testing.T) {
	header := [][]string{
		{"№", "ФИО", "Оценки", "Оценки", "Оценки", "СР", "Четв."},
		{"№", "ФИО", "01.09", "08.09", "15.09", "СР", "Четв."},
	}
	body := [][]string{
		{"1", "Алиев Азамат", "5", "4", "", "4,5", "5"},
		{"2", "Бекова Айгуль", "н", "3", "3", "3", "3"},
		{"3", "", "", "", "", "", ""},
	}

	flat, rows, err := ParseTable(header, body)
	require.NoError(t, err)

	assert.Equal(t, "Оценки / 01.09", flat[2])
	assert.Equal(t, "СР", flat[5])
	require.Len(t, rows, 2, "rows without a student are skipped")

	first := rows[0]
	assert.Equal(t, "Алиев Азамат", first.Student)
	assert.True(t, first.Average.Valid)
	assert.InDelta(t, 4.5, first.Average.Float64, 1e-9)
	require.Len(t, first.Scores, 3)
	assert.False(t, first.Scores[2].Valid)
	assert.Equal(t, "4,5", first.Cells[5], "raw cells are kept as scraped")

	assert.False(t, rows[1].Scores[0].Valid, "non-numeric cells are null")
}

func TestParseTable_FallbackColumns(t *testing.T) {
	header := [][]string{{"#", "Student", "T1", "T2", "Avg", "Final"}}
	body := [][]string{{"1", "X", "5", "5", "5", "5"}}

	_, rows, err := ParseTable(header, body)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "X", rows[0].Student)
	assert.Len(t, rows[0].Scores, 2)
	assert.InDelta(t, 5.0, rows[0].Average.Float64, 1e-9)
}

func TestParseTable_ShapeErrors(t *testing.T) {
	_, _, err := ParseTable(nil, [][]string{{"1", "X"}})
	assert.ErrorIs(t, err, ErrTableShape)

	_, _, err = ParseTable([][]string{{"СР", "ФИО", "x"}}, nil)
	assert.ErrorIs(t, err, ErrTableShape, "average column left of the student column")
}

func TestParseTable_ShortRowsArePadded(t *testing.T) {
	header := [][]string{{"№", "ФИО", "1", "СР", "Четв."}}
	body := [][]string{{"1", "Y", "4"}}

	_, rows, err := ParseTable(header, body)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0].Cells, 5)
	assert.False(t, rows[0].Average.Valid)
}
