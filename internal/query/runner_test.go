package query

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ecomkpi/internal/tabular"
)

// fakeExecutor records the statements it sees and fails on a chosen one.
type fakeExecutor struct {
	calls  []string
	failOn string
}

func (f *fakeExecutor) Query(_ context.Context, sql string) (*tabular.ResultSet, error) {
	f.calls = append(f.calls, sql)
	if sql == f.failOn {
		return nil, errors.New("syntax error")
	}
	return &tabular.ResultSet{
		Columns: []string{"query", "n"},
		Rows:    [][]any{{sql, int64(len(f.calls))}},
	}, nil
}

type recordingObserver struct {
	events []string
}

func (o *recordingObserver) QuerySkipped(name string)       { o.events = append(o.events, "skip:"+name) }
func (o *recordingObserver) QueryRan(name string, rows int) { o.events = append(o.events, "ran:"+name) }
func (o *recordingObserver) QueryFailed(name string)        { o.events = append(o.events, "fail:"+name) }

func TestRunOrderAndSkip(t *testing.T) {
	dir := t.TempDir()
	exec := &fakeExecutor{}
	obs := &recordingObserver{}
	r := &Runner{Exec: exec, OutputDir: dir, Observer: obs}

	defs, err := Discover(osDirFS(t, map[string]string{
		"b.sql": "SELECT 'b'",
		"a.sql": "   ",
	}))
	require.NoError(t, err)

	ran, err := r.Run(context.Background(), defs)
	require.NoError(t, err)

	assert.Equal(t, []string{"b.sql"}, ran)
	assert.Equal(t, []string{"SELECT 'b'"}, exec.calls)
	assert.Equal(t, []string{"skip:a", "ran:b"}, obs.events)

	assert.NoFileExists(t, filepath.Join(dir, "a.csv"))
	data, err := os.ReadFile(filepath.Join(dir, "b.csv"))
	require.NoError(t, err)
	assert.Equal(t, "query,n\nSELECT 'b',1\n", string(data))
}

func TestRunIsRepeatable(t *testing.T) {
	defs := []Definition{
		{File: "01_x.sql", SQL: "SELECT 1"},
		{File: "02_y.sql", SQL: "SELECT 2"},
	}

	first, err := (&Runner{Exec: &fakeExecutor{}, OutputDir: t.TempDir()}).Run(context.Background(), defs)
	require.NoError(t, err)
	second, err := (&Runner{Exec: &fakeExecutor{}, OutputDir: t.TempDir()}).Run(context.Background(), defs)
	require.NoError(t, err)

	assert.Equal(t, []string{"01_x.sql", "02_y.sql"}, first)
	assert.Equal(t, first, second)
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	dir := t.TempDir()
	exec := &fakeExecutor{failOn: "SELEC broken"}
	obs := &recordingObserver{}
	r := &Runner{Exec: exec, OutputDir: dir, Observer: obs}

	defs := []Definition{
		{File: "01_ok.sql", SQL: "SELECT 1"},
		{File: "02_bad.sql", SQL: "SELEC broken"},
		{File: "03_never.sql", SQL: "SELECT 3"},
	}

	ran, err := r.Run(context.Background(), defs)

	var qerr *Error
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, "02_bad.sql", qerr.File)
	assert.Contains(t, err.Error(), "query 02_bad.sql: syntax error")
	assert.Equal(t, []string{"01_ok.sql"}, ran)
	assert.Len(t, exec.calls, 2)
	assert.Equal(t, []string{"ran:01_ok", "fail:02_bad"}, obs.events)
	assert.FileExists(t, filepath.Join(dir, "01_ok.csv"))
	assert.NoFileExists(t, filepath.Join(dir, "02_bad.csv"))
	assert.NoFileExists(t, filepath.Join(dir, "03_never.csv"))
}

func TestRunMissingOutputDir(t *testing.T) {
	r := &Runner{Exec: &fakeExecutor{}, OutputDir: filepath.Join(t.TempDir(), "missing")}

	_, err := r.Run(context.Background(), []Definition{{File: "q.sql", SQL: "SELECT 1"}})

	var qerr *Error
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, "q.sql", qerr.File)
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec := &fakeExecutor{}

	_, err := (&Runner{Exec: exec, OutputDir: t.TempDir()}).Run(ctx, []Definition{{File: "q.sql", SQL: "SELECT 1"}})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, exec.calls)
}

func TestRunNothing(t *testing.T) {
	ran, err := (&Runner{Exec: &fakeExecutor{}, OutputDir: t.TempDir()}).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, ran)
}

func osDirFS(t *testing.T, files map[string]string) fs.FS {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return os.DirFS(dir)
}
