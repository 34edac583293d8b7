package persist

import (
	"context"

	"github.com/theirongolddev/habitboard/internal/store"
)

// LocalBackend keeps the document only in the local snapshot history, for
// use without any remote.
type LocalBackend struct {
	history *store.History
}

// NewLocalBackend wraps h as a Backend.
func NewLocalBackend(h *store.History) *LocalBackend {
	return &LocalBackend{history: h}
}

func (b *LocalBackend) Name() string { return "local" }

// Fetch returns the newest snapshot's payload.
func (b *LocalBackend) Fetch(_ context.Context) ([]byte, error) {
	snap, err := b.history.Latest()
	if err != nil {
		return nil, err
	}
	return snap.Payload, nil
}

// Put records content as a new snapshot.
func (b *LocalBackend) Put(_ context.Context, content []byte) error {
	_, err := b.history.Record(content, "local", true)
	return err
}
