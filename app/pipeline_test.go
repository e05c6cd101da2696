package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gokundoluk/adapters/excel"
	"gokundoluk/domain/core"
	"gokundoluk/domain/gradebook"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestPipeline(fg *fakeGradebook) *Pipeline {
	return NewPipeline(
		gradebook.DefaultClassRegistry(),
		newTestFetcher(fg),
		newTestBuilder(nil),
		excel.NewGradeReader(nil),
		nil,
	)
}

func TestPipeline_RejectsInvalidRequests(t *testing.T) {
	cases := []struct {
		name string
		req  Request
	}{
		{"missing class", Request{Quarter: 1}},
		{"unknown class", Request{Class: "99Я", Quarter: 1}},
		{"zero quarter", Request{Class: "4Б", Quarter: 0}},
		{"negative quarter", Request{Class: "4Б", Quarter: -2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fg := newFakeGradebook("Алгебра")
			tc.req.OutputDir = t.TempDir()

			_, err := newTestPipeline(fg).Run(context.Background(), tc.req)
			require.Error(t, err)
			assert.True(t, core.IsInvalidInputError(err))
			assert.Zero(t, fg.listed.Load(), "no network call on invalid input")
		})
	}
}

func TestPipeline_Run(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	fg := newFakeGradebook("Физика", "Алгебра")

	result, err := newTestPipeline(fg).Run(context.Background(), Request{Class: "4б", Quarter: 2, OutputDir: dir})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "4Б-2.xlsx"), result.Path)
	assert.Equal(t, []string{"Алгебра", "Физика"}, result.Subjects)
	assert.Equal(t, 1, result.Students)
	assert.False(t, result.RunID.String() == "")

	f, err := excelize.OpenFile(result.Path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Result", "Алгебра", "Физика"}, f.GetSheetList())
}

func TestPipeline_DiscoveryFailure(t *testing.T) {
	dir := t.TempDir()
	fg := newFakeGradebook("Алгебра")
	fg.listErr = errors.New("timeout")

	_, err := newTestPipeline(fg).Run(context.Background(), Request{Class: "4Б", Quarter: 1, OutputDir: dir})
	require.Error(t, err)
	assert.True(t, core.IsDiscoveryError(err))
	assert.NoFileExists(t, filepath.Join(dir, "4Б-1.xlsx"))
}

func TestPipeline_NoSurvivingSubjects(t *testing.T) {
	fg := newFakeGradebook("Алгебра", "Физика")
	fg.failing["Алгебра"] = true
	fg.failing["Физика"] = true

	result, err := newTestPipeline(fg).Run(context.Background(), Request{Class: "4Б", Quarter: 1, OutputDir: t.TempDir()})
	require.NoError(t, err)
	assert.Empty(t, result.Subjects)
	assert.Zero(t, result.Students)
	assert.FileExists(t, result.Path)
}

func TestPipeline_Rebuild(t *testing.T) {
	fg := newFakeGradebook("Физика", "Алгебра")
	p := newTestPipeline(fg)

	first, err := p.Run(context.Background(), Request{Class: "4Б", Quarter: 3, OutputDir: t.TempDir()})
	require.NoError(t, err)

	again, err := p.Rebuild(context.Background(), first.Path, false)
	require.NoError(t, err)

	assert.Equal(t, first.Subjects, again.Subjects)
	assert.Equal(t, first.Students, again.Students)
	assert.Equal(t, first.Distribution, again.Distribution)
	assert.NotEqual(t, first.RunID, again.RunID)
	assert.Equal(t, int32(1), fg.listed.Load(), "rebuild stays offline")
}

func TestPipeline_RebuildMissingFile(t *testing.T) {
	_, err := newTestPipeline(newFakeGradebook()).Rebuild(context.Background(), filepath.Join(t.TempDir(), "4Б-1.xlsx"), false)
	require.Error(t, err)
	assert.True(t, core.IsInvalidInputError(err))
}
