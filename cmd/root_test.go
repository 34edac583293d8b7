package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/habitboard/internal/config"
	"github.com/theirongolddev/habitboard/internal/model"
	"github.com/theirongolddev/habitboard/internal/persist"
	"github.com/theirongolddev/habitboard/internal/store"
	"github.com/theirongolddev/habitboard/internal/tracker"
)

func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		flagMonth, flagDate, flagDay, flagOffline = "", "", 0, false
	})
}

func TestSelectedDate(t *testing.T) {
	resetFlags(t)

	flagDate = "2024-02-29"
	d, err := selectedDate()
	require.NoError(t, err)
	assert.Equal(t, model.MustDate(2024, time.February, 29), d)

	flagDate, flagMonth, flagDay = "", "2023-02", 28
	d, err = selectedDate()
	require.NoError(t, err)
	assert.Equal(t, model.MustDate(2023, time.February, 28), d)

	flagDay = 29
	_, err = selectedDate()
	assert.True(t, model.IsValidation(err), "2023 has no Feb 29: %v", err)

	flagMonth = "2023-13"
	_, _, err = selectedMonth()
	assert.Error(t, err)
}

func TestEntryText(t *testing.T) {
	got, err := entryText([]string{"went", "running"}, strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, "went running", got)

	got, err = entryText([]string{"-"}, strings.NewReader("line one\nline two\n"))
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", got)

	got, err = entryText(nil, strings.NewReader("from stdin"))
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)
}

func TestParseIndex(t *testing.T) {
	i, err := parseIndex("3")
	require.NoError(t, err)
	assert.Equal(t, 3, i)

	_, err = parseIndex("three")
	assert.True(t, model.IsValidation(err))
}

func localConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Storage.Driver = config.DriverLocal
	cfg.Local.Path = filepath.Join(t.TempDir(), "history.db")
	return cfg
}

func TestLocalDriverRoundTrip(t *testing.T) {
	resetFlags(t)
	ctx := context.Background()
	cfg := localConfig(t)

	gw, history, err := buildGateway(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, "local", gw.BackendName())

	tr := openTracker(ctx, gw)
	assert.Equal(t, "default", tr.Source())
	_, st, err := tr.CreateHabit(ctx, "Reading", "#A78BFA")
	require.NoError(t, err)
	assert.Equal(t, tracker.Succeeded, st.State)
	require.NoError(t, history.Close())

	gw, history, err = buildGateway(ctx, cfg)
	require.NoError(t, err)
	defer func() { _ = history.Close() }()

	tr = openTracker(ctx, gw)
	assert.Equal(t, "local", tr.Source())
	assert.True(t, tr.Snapshot().HasHabit("Reading"))

	n, err := history.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n, "local driver records each save once")
}

func TestGistWithoutCredentialsIsUnavailable(t *testing.T) {
	resetFlags(t)
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GIST_ID", "")

	cfg := config.DefaultConfig()
	cfg.Local.Path = filepath.Join(t.TempDir(), "history.db")

	gw, history, err := buildGateway(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = history.Close() }()

	assert.False(t, gw.Available())
	assert.Equal(t, "none", gw.BackendName())
	require.NotNil(t, history, "mirror stays on")
}

func TestOfflineUsesLocalSnapshots(t *testing.T) {
	resetFlags(t)
	flagOffline = true

	cfg := config.DefaultConfig()
	cfg.Local.Path = filepath.Join(t.TempDir(), "history.db")

	gw, history, err := buildGateway(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = history.Close() }()
	assert.Equal(t, "local", gw.BackendName())
}

func TestReportSaveWritesBackupOnFailure(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.General.BackupDir = t.TempDir()
	sess := &session{cfg: cfg}

	require.NoError(t, sess.reportSave(tracker.SaveStatus{State: tracker.Succeeded, Backend: "gist"}))

	err := sess.reportSave(tracker.SaveStatus{
		State:    tracker.Failed,
		Err:      errors.New("network down"),
		Fallback: []byte(`{"notes": []}`),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network down")

	data, err := os.ReadFile(config.BackupPath(cfg))
	require.NoError(t, err)
	assert.Equal(t, "{\"notes\": []}\n", string(data))
}

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"serve", "--detach", "--addr", ":9000", "--detach=true"})
	assert.Equal(t, []string{"serve", "--addr", ":9000"}, got)
}

func TestHistoryStateShowsLastRemoteSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	h, err := store.Open(path)
	require.NoError(t, err)
	defer func() { _ = h.Close() }()

	var out bytes.Buffer
	require.NoError(t, printHistoryState(&out, h, path))
	assert.Contains(t, out.String(), "Local snapshots: 0")

	_, err = h.Record([]byte(`{"notes": []}`), "gist", true)
	require.NoError(t, err)
	out.Reset()
	require.NoError(t, printHistoryState(&out, h, path))
	assert.Contains(t, out.String(), "accepted by remote")
	assert.NotContains(t, out.String(), "Last on remote")

	_, err = h.Record([]byte(`{"Chess": {"color": "#112233", "count": {}}, "notes": []}`), "gist", false)
	require.NoError(t, err)
	out.Reset()
	require.NoError(t, printHistoryState(&out, h, path))
	assert.Contains(t, out.String(), "Local snapshots: 2")
	assert.Contains(t, out.String(), "not on remote")
	assert.Contains(t, out.String(), "Last on remote:  v1")
}

type countingGateway struct {
	res   *persist.LoadResult
	loads int
}

func (g *countingGateway) Load(_ context.Context) *persist.LoadResult {
	g.loads++
	return g.res
}

func (g *countingGateway) Attempt(_ context.Context, _ *model.Store) persist.SaveReport {
	return persist.SaveReport{OK: true, Backend: "gist"}
}

func TestPullReportsWithoutFetchingTwice(t *testing.T) {
	loaded := model.NewStore()
	_, err := loaded.CreateHabit("Chess", "#112233")
	require.NoError(t, err)

	tests := []struct {
		name string
		res  *persist.LoadResult
		want string
	}{
		{"remote", &persist.LoadResult{Store: loaded, Source: "gist"}, "Loaded 1 habits and 0 journal entries from gist"},
		{"mirror", &persist.LoadResult{Store: loaded, Source: persist.SourceMirror}, "Remote unreachable"},
		{"nothing", nil, "Nothing to load"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &countingGateway{res: tt.res}
			tr := tracker.Open(context.Background(), gw)

			var out bytes.Buffer
			printPull(&out, tr)
			assert.Contains(t, out.String(), tt.want)
			assert.Equal(t, 1, gw.loads)
		})
	}
}
