package tracker

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

	"github.com/theirongolddev/habitboard/internal/model"
	"github.com/theirongolddev/habitboard/internal/persist"
)

// fakeGateway records every saved document.
type fakeGateway struct {
	load  *persist.LoadResult
	fail  bool
	saved [][]byte
	loads int
}

func (g *fakeGateway) Load(_ context.Context) *persist.LoadResult {
	g.loads++
	return g.load
}

func (g *fakeGateway) Attempt(_ context.Context, s *model.Store) persist.SaveReport {
	payload, _ := model.Encode(s)
	g.saved = append(g.saved, payload)
	if g.fail {
		return persist.SaveReport{Backend: "fake", Payload: payload, Err: errors.New("network down")}
	}
	return persist.SaveReport{OK: true, Backend: "fake", Payload: payload, Version: int64(len(g.saved))}
}

var (
	ctx   = context.Background()
	day   = model.MustDate(2024, time.February, 1)
	clock = func() time.Time { return time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC) }
)

func TestOpenDefaultsWhenNothingLoads(t *testing.T) {
	gw := &fakeGateway{}
	tr := Open(ctx, gw)

	assert.Equal(t, "default", tr.Source())
	assert.Equal(t, []string{"Tennis", "DSA Solving", "Finance Learning"}, tr.Snapshot().HabitNames())
	assert.Empty(t, gw.saved, "default store is not saved until a mutation")
	assert.Equal(t, Idle, tr.LastSave().State)
}

func TestOpenSavesMigratedStore(t *testing.T) {
	s, migrated, err := model.Load([]byte(`{"notes": {"2023": "hello"}}`))
	require.NoError(t, err)
	gw := &fakeGateway{load: &persist.LoadResult{Store: s, Migrated: migrated, Source: "fake"}}

	tr := Open(ctx, gw, WithClock(clock))
	require.Len(t, gw.saved, 1)
	assert.Contains(t, string(gw.saved[0]), `"date": "2023-01-01"`)
	assert.Equal(t, Succeeded, tr.LastSave().State)
}

func TestEveryMutationPersistsFullSnapshot(t *testing.T) {
	gw := &fakeGateway{}
	tr := Open(ctx, gw, WithClock(clock))

	_, st, err := tr.CreateHabit(ctx, "Chess", "#111111")
	require.NoError(t, err)
	assert.Equal(t, Succeeded, st.State)
	assert.Equal(t, clock(), st.At)

	n, _, err := tr.AddOccurrence(ctx, "Chess", day)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = tr.SetHabitColor(ctx, "Chess", "#222222")
	require.NoError(t, err)
	_, _, err = tr.AddJournalEntry(ctx, day, "good game")
	require.NoError(t, err)
	_, err = tr.UpdateJournalEntry(ctx, 0, "great game")
	require.NoError(t, err)
	_, err = tr.DeleteJournalEntry(ctx, 0)
	require.NoError(t, err)
	_, _, err = tr.RemoveOccurrence(ctx, "Chess", day)
	require.NoError(t, err)
	_, err = tr.DeleteHabit(ctx, "Chess")
	require.NoError(t, err)

	require.Len(t, gw.saved, 8)
	last, _, err := model.Load(gw.saved[len(gw.saved)-1])
	require.NoError(t, err)
	assert.True(t, tr.Snapshot().Equal(last))
}

func TestRejectedActionDoesNotSave(t *testing.T) {
	gw := &fakeGateway{}
	tr := Open(ctx, gw)
	before := tr.Snapshot()

	_, _, err := tr.RemoveOccurrence(ctx, "Tennis", day)
	assert.True(t, model.IsNotFound(err))
	_, _, err = tr.CreateHabit(ctx, "Tennis", "")
	assert.True(t, model.IsDuplicate(err))
	_, _, err = tr.AddJournalEntry(ctx, day, "   ")
	assert.True(t, model.IsValidation(err))

	assert.Empty(t, gw.saved)
	assert.True(t, before.Equal(tr.Snapshot()))
}

func TestFailedSaveKeepsStateAndOffersFallback(t *testing.T) {
	gw := &fakeGateway{fail: true}
	tr := Open(ctx, gw)

	n, st, err := tr.AddOccurrence(ctx, "Tennis", day)
	require.NoError(t, err, "a failed save is not an action error")
	assert.Equal(t, 1, n)
	assert.Equal(t, Failed, st.State)
	require.Error(t, st.Err)

	snap := tr.Snapshot()
	assert.Equal(t, 1, snap.Count("Tennis", day))
	want, _ := model.Encode(snap)
	assert.Equal(t, want, st.Fallback)

	// The next action starts a fresh attempt.
	gw.fail = false
	st = tr.SaveNow(ctx)
	assert.Equal(t, Succeeded, st.State)
	assert.Nil(t, st.Fallback)
}

func TestAddOccurrencesSavesOnce(t *testing.T) {
	gw := &fakeGateway{fail: true}
	tr := Open(ctx, gw)

	n, st, err := tr.AddOccurrences(ctx, "Tennis", day, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, Failed, st.State)
	require.Len(t, gw.saved, 1, "one save for the whole batch")
	assert.Contains(t, string(st.Fallback), `"2024-02-01": 3`)
	assert.Equal(t, 3, tr.Snapshot().Count("Tennis", day))

	_, _, err = tr.AddOccurrences(ctx, "Tennis", day, 0)
	assert.True(t, model.IsValidation(err))
	_, _, err = tr.AddOccurrences(ctx, "Nope", day, 2)
	assert.True(t, model.IsNotFound(err))
	assert.Len(t, gw.saved, 1)
}

func TestImportMalformedKeepsStore(t *testing.T) {
	gw := &fakeGateway{}
	tr := Open(ctx, gw)
	_, _, _ = tr.AddOccurrence(ctx, "Tennis", day)
	before := tr.Snapshot()
	saves := len(gw.saved)

	for _, in := range []string{`{"Tennis": `, ``, `[1,2]`, `{"Tennis": {"count": {"nope": 1}}}`} {
		_, err := tr.Import(ctx, strings.NewReader(in))
		var ie *ImportError
		require.ErrorAs(t, err, &ie, "input %q", in)
	}

	assert.True(t, before.Equal(tr.Snapshot()))
	assert.Len(t, gw.saved, saves)
}

func TestImportReplacesAndSaves(t *testing.T) {
	gw := &fakeGateway{}
	tr := Open(ctx, gw)

	st, err := tr.Import(ctx, strings.NewReader(`{"Chess": {"color": "#000", "count": {"2024-02-01": 2}}, "notes": {"2022": "old"}}`))
	require.NoError(t, err)
	assert.Equal(t, Succeeded, st.State)
	assert.Equal(t, "import", tr.Source())

	snap := tr.Snapshot()
	assert.Equal(t, []string{"Chess"}, snap.HabitNames())
	assert.Equal(t, 2, snap.Count("Chess", day))
	assert.Equal(t, "2022-01-01", snap.Journal()[0].Date.String())
	assert.Len(t, gw.saved, 1)
}

func TestExportRoundTrip(t *testing.T) {
	tr := Open(ctx, &fakeGateway{})
	_, _, _ = tr.AddOccurrence(ctx, "Tennis", day)

	var buf bytes.Buffer
	require.NoError(t, tr.Export(&buf))

	other := Open(ctx, &fakeGateway{})
	_, err := other.Import(ctx, &buf)
	require.NoError(t, err)
	assert.True(t, tr.Snapshot().Equal(other.Snapshot()))
}

func TestSnapshotIsACopy(t *testing.T) {
	tr := Open(ctx, &fakeGateway{})
	snap := tr.Snapshot()
	_, _ = snap.AddOccurrence("Tennis", day)

	assert.Zero(t, tr.Snapshot().Count("Tennis", day))
}

func TestReload(t *testing.T) {
	gw := &fakeGateway{}
	tr := Open(ctx, gw)
	_, _, _ = tr.AddOccurrence(ctx, "Tennis", day)

	assert.False(t, tr.Reload(ctx), "nothing remote keeps the current store")
	assert.Equal(t, 1, tr.Snapshot().Count("Tennis", day))

	remote := model.NewStore()
	_, _ = remote.CreateHabit("Chess", "")
	gw.load = &persist.LoadResult{Store: remote, Source: "fake"}
	assert.True(t, tr.Reload(ctx))
	assert.Equal(t, []string{"Chess"}, tr.Snapshot().HabitNames())
}

func TestWriteFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "habit_tracker_backup.json")

	require.NoError(t, WriteFallback(path, SaveStatus{State: Succeeded, Fallback: []byte("{}")}))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "only failed saves write a backup")

	tr := Open(ctx, &fakeGateway{fail: true})
	_, st, err := tr.AddOccurrence(ctx, "Tennis", day)
	require.NoError(t, err)
	require.NoError(t, WriteFallback(path, st))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	s, _, err := model.Load(data)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Count("Tennis", day))
}
