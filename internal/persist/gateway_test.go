package persist

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/habitboard/internal/gist"
	"github.com/theirongolddev/habitboard/internal/model"
	"github.com/theirongolddev/habitboard/internal/store"
)

type fakeBackend struct {
	data     []byte
	fetchErr error
	putErr   error
	puts     int
	fetches  int
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Fetch(_ context.Context) ([]byte, error) {
	f.fetches++
	return f.data, f.fetchErr
}

func (f *fakeBackend) Put(_ context.Context, content []byte) error {
	f.puts++
	if f.putErr != nil {
		return f.putErr
	}
	f.data = append([]byte(nil), content...)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openHistory(t *testing.T) *store.History {
	t.Helper()
	h, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestLoadUnavailable(t *testing.T) {
	g := New(nil, nil, Options{Logger: quietLogger()})

	assert.False(t, g.Available())
	assert.Nil(t, g.Load(context.Background()))

	rep := g.Attempt(context.Background(), model.DefaultStore())
	assert.False(t, rep.OK)
	assert.ErrorIs(t, rep.Err, ErrUnavailable)
	assert.NotEmpty(t, rep.Payload, "payload is kept for manual copy")
}

func TestLoadRemote(t *testing.T) {
	b := &fakeBackend{data: []byte(`{"Tennis": {"color": "#FF6B6B", "count": {"2024-02-01": 1}}, "notes": []}`)}
	g := New(b, nil, Options{Logger: quietLogger()})

	res := g.Load(context.Background())
	require.NotNil(t, res)
	assert.Equal(t, "fake", res.Source)
	assert.False(t, res.Migrated)
	assert.Equal(t, []string{"Tennis"}, res.Store.HabitNames())
}

func TestLoadLegacySignalsMigration(t *testing.T) {
	b := &fakeBackend{data: []byte(`{"Tennis": {"color": "#FF6B6B", "count": {}}, "notes": {"2023": "hello"}}`)}
	res := New(b, nil, Options{Logger: quietLogger()}).Load(context.Background())

	require.NotNil(t, res)
	assert.True(t, res.Migrated)
	assert.Equal(t, "hello", res.Store.Journal()[0].Text)
}

func TestLoadEmptyDocumentYieldsNothing(t *testing.T) {
	for _, data := range []string{"", "  \n", "{}"} {
		b := &fakeBackend{data: []byte(data)}
		assert.Nil(t, New(b, nil, Options{Logger: quietLogger()}).Load(context.Background()), "data %q", data)
	}

	missing := &fakeBackend{fetchErr: gist.ErrFileMissing}
	assert.Nil(t, New(missing, nil, Options{Logger: quietLogger()}).Load(context.Background()))
}

func TestLoadFailureFallsBackToMirror(t *testing.T) {
	h := openHistory(t)
	_, err := h.Record([]byte(`{"Chess": {"color": "#000", "count": {}}, "notes": []}`), "fake", false)
	require.NoError(t, err)

	for name, b := range map[string]*fakeBackend{
		"transport": {fetchErr: errors.New("connection refused")},
		"malformed": {data: []byte(`{"Chess": [`)},
	} {
		t.Run(name, func(t *testing.T) {
			res := New(b, h, Options{Logger: quietLogger()}).Load(context.Background())
			require.NotNil(t, res)
			assert.Equal(t, SourceMirror, res.Source)
			assert.Equal(t, []string{"Chess"}, res.Store.HabitNames())
		})
	}

	// Without a mirror the failure is soft.
	b := &fakeBackend{fetchErr: errors.New("timeout")}
	assert.Nil(t, New(b, nil, Options{Logger: quietLogger()}).Load(context.Background()))
}

func TestSaveOverwritesRemoteAndMirrors(t *testing.T) {
	h := openHistory(t)
	b := &fakeBackend{}
	g := New(b, h, Options{Logger: quietLogger(), Keep: 2})

	s := model.DefaultStore()
	assert.True(t, g.Save(context.Background(), s))
	want, err := model.Encode(s)
	require.NoError(t, err)
	assert.Equal(t, want, b.data)

	_, _ = s.AddOccurrence("Tennis", model.MustDate(2024, time.February, 1))
	rep := g.Attempt(context.Background(), s)
	require.True(t, rep.OK)
	assert.Positive(t, rep.Version)

	_, _ = s.AddOccurrence("Tennis", model.MustDate(2024, time.February, 2))
	require.True(t, g.Save(context.Background(), s))

	n, err := h.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n, "mirror is pruned to Keep")
}

func TestSaveFailureReturnsFalse(t *testing.T) {
	h := openHistory(t)
	b := &fakeBackend{putErr: errors.New("502 bad gateway")}
	g := New(b, h, Options{Logger: quietLogger()})

	s := model.DefaultStore()
	before := s.Clone()

	rep := g.Attempt(context.Background(), s)
	assert.False(t, rep.OK)
	require.Error(t, rep.Err)
	assert.True(t, s.Equal(before))

	latest, err := h.Latest()
	require.NoError(t, err)
	assert.False(t, latest.RemoteOK)
	assert.Equal(t, rep.Payload, latest.Payload)
}

func TestLocalBackend(t *testing.T) {
	h := openHistory(t)
	g := New(NewLocalBackend(h), nil, Options{Logger: quietLogger()})

	assert.Nil(t, g.Load(context.Background()), "empty history loads nothing")

	s := model.DefaultStore()
	require.True(t, g.Save(context.Background(), s))

	res := g.Load(context.Background())
	require.NotNil(t, res)
	assert.Equal(t, "local", res.Source)
	assert.True(t, s.Equal(res.Store))
}
