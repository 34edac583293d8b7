package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *History {
	t.Helper()
	h, err := Open(filepath.Join(t.TempDir(), "nested", "habitboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestLatestEmpty(t *testing.T) {
	h := openTemp(t)

	_, err := h.Latest()
	assert.ErrorIs(t, err, ErrNoSnapshot)
	_, err = h.Get(1)
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestRecordAndLatest(t *testing.T) {
	h := openTemp(t)

	v1, err := h.Record([]byte(`{"notes": []}`), "gist", true)
	require.NoError(t, err)
	v2, err := h.Record([]byte(`{"a": {}, "notes": []}`), "gist", false)
	require.NoError(t, err)
	assert.Greater(t, v2, v1)

	latest, err := h.Latest()
	require.NoError(t, err)
	assert.Equal(t, v2, latest.Version)
	assert.False(t, latest.RemoteOK)
	assert.Equal(t, `{"a": {}, "notes": []}`, string(latest.Payload))
	assert.Equal(t, len(latest.Payload), latest.Size)
	assert.False(t, latest.SavedAt.IsZero())

	remote, err := h.LatestRemote()
	require.NoError(t, err)
	assert.Equal(t, v1, remote.Version)
}

func TestRecordSamePayloadReusesVersion(t *testing.T) {
	h := openTemp(t)
	payload := []byte(`{"notes": []}`)

	v1, err := h.Record(payload, "gist", false)
	require.NoError(t, err)
	v2, err := h.Record(payload, "gist", true)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)

	n, err := h.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	s, err := h.Get(v1)
	require.NoError(t, err)
	assert.True(t, s.RemoteOK)
}

func TestListAndPrune(t *testing.T) {
	h := openTemp(t)
	for _, p := range []string{"1", "2", "3", "4"} {
		_, err := h.Record([]byte(p), "local", true)
		require.NoError(t, err)
	}

	list, err := h.List(2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Nil(t, list[0].Payload)
	assert.Greater(t, list[0].Version, list[1].Version)

	removed, err := h.Prune(2)
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	all, err := h.List(0)
	require.NoError(t, err)
	require.Len(t, all, 2)

	latest, err := h.Latest()
	require.NoError(t, err)
	assert.Equal(t, "4", string(latest.Payload))

	removed, err = h.Prune(0)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
