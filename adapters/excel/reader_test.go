package excel

import (
	"path/filepath"
	"testing"

	"gokundoluk/domain/core"
	"gokundoluk/domain/gradebook"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFileName(t *testing.T) {
	label, quarter, err := ParseFileName("/tmp/reports/10А-3.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "10А", label)
	assert.Equal(t, 3, quarter)

	for _, bad := range []string{"report.xlsx", "4Б-x.xlsx", "4Б-0.xlsx", "-2.xlsx"} {
		_, _, err := ParseFileName(bad)
		assert.True(t, core.IsInvalidInputError(err), bad)
	}
}

func writeSheet(t *testing.T, wb interface {
	ReplaceSheet(string, int) error
	AppendRow(string, []any) (int, error)
}, name string, rows ...[]any) {
	t.Helper()
	require.NoError(t, wb.ReplaceSheet(name, -1))
	for _, r := range rows {
		_, err := wb.AppendRow(name, r)
		require.NoError(t, err)
	}
}

func TestGradeReader_ReadGrade(t *testing.T) {
	path := filepath.Join(t.TempDir(), "4Б-2.xlsx")
	wb, err := NewStore(DefaultConfig(), nil).Open(path)
	require.NoError(t, err)

	header := []any{"№", "ФИО", "Д1", "Д2", "СР", "Итог"}
	writeSheet(t, wb, "Физика", header,
		[]any{"1", "Асанов Бек", "5", "4", "4,5", "5"},
		[]any{"2", "Бекова Айя", "3", "", "3", "3"},
	)
	writeSheet(t, wb, "Алгебра", header,
		[]any{"1", "Асанов Бек", "5", "5", "5", "5"},
	)
	writeSheet(t, wb, "Пусто", header)
	writeSheet(t, wb, "Заметки", []any{"только текст"})
	writeSheet(t, wb, gradebook.ResultSheet, []any{"ignored", "ignored", "ignored"})
	require.NoError(t, wb.SaveAs(path))
	require.NoError(t, wb.Close())

	grade, err := NewGradeReader(nil).ReadGrade(path)
	require.NoError(t, err)

	assert.Equal(t, "4Б", grade.Label)
	assert.Equal(t, 2, grade.Quarter)
	assert.Equal(t, []string{"Алгебра", "Физика"}, grade.SubjectNames())

	physics := grade.Subjects[1]
	require.Len(t, physics.Rows, 2)
	assert.Equal(t, "Асанов Бек", physics.Rows[0].Student)
	assert.InDelta(t, 4.5, physics.Rows[0].Average.Float64, 1e-9)
	assert.False(t, physics.Rows[1].Scores[1].Valid)
}

func TestGradeReader_MissingFile(t *testing.T) {
	_, err := NewGradeReader(nil).ReadGrade(filepath.Join(t.TempDir(), "4Б-1.xlsx"))
	require.Error(t, err)
}
