// Package persist loads and saves the whole habit document through a
// remote backend. Failures never reach the caller as errors: Load returns
// nil and Save returns false, and every attempt is mirrored to the local
// snapshot history.
package persist

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/theirongolddev/habitboard/internal/gist"
	"github.com/theirongolddev/habitboard/internal/model"
	"github.com/theirongolddev/habitboard/internal/s3doc"
	"github.com/theirongolddev/habitboard/internal/store"
)

// ErrUnavailable is reported when no remote backend is configured.
var ErrUnavailable = errors.New("persist: remote document store not configured")

// SourceMirror marks a store loaded from the local snapshot history after
// the remote failed.
const SourceMirror = "mirror"

// Backend holds the single remote document.
type Backend interface {
	Name() string
	Fetch(ctx context.Context) ([]byte, error)
	Put(ctx context.Context, content []byte) error
}

// LoadResult is a successfully loaded store and where it came from.
type LoadResult struct {
	Store    *model.Store
	Migrated bool   // legacy journal was converted; the caller should save
	Source   string // backend name, or SourceMirror
	Version  int64  // mirror snapshot version, 0 for remote loads
}

// SaveReport describes one save attempt.
type SaveReport struct {
	OK       bool
	Backend  string
	Payload  []byte // serialized document, kept for manual copy on failure
	Version  int64  // mirror snapshot version, 0 when not mirrored
	Err      error
	Duration time.Duration
}

// Options tunes a Gateway.
type Options struct {
	Timeout time.Duration // per remote call; 0 means 15s
	Keep    int           // mirror snapshots retained; 0 keeps all
	Logger  *slog.Logger
}

// Gateway loads and saves the document. A nil remote means unavailable.
type Gateway struct {
	remote  Backend
	mirror  *store.History
	timeout time.Duration
	keep    int
	logger  *slog.Logger
}

// New creates a gateway. remote and mirror may both be nil.
func New(remote Backend, mirror *store.History, opts Options) *Gateway {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Gateway{
		remote:  remote,
		mirror:  mirror,
		timeout: opts.Timeout,
		keep:    opts.Keep,
		logger:  opts.Logger,
	}
}

// Available reports whether a remote backend is configured.
func (g *Gateway) Available() bool { return g.remote != nil }

// BackendName returns the remote backend's name, or "none".
func (g *Gateway) BackendName() string {
	if g.remote == nil {
		return "none"
	}
	return g.remote.Name()
}

// Load fetches and decodes the remote document. When the remote is
// unavailable, unreachable or holds a malformed document, the newest mirror
// snapshot is used instead. It returns nil when nothing could be loaded or
// the remote document is empty.
func (g *Gateway) Load(ctx context.Context) *LoadResult {
	if g.remote == nil {
		operationsTotal.WithLabelValues("load", "none", resultUnavailable).Inc()
		g.logger.Warn("document store unavailable", "op", "load", "err", ErrUnavailable)
		return g.loadMirror()
	}

	name := g.remote.Name()
	data, err := g.fetch(ctx)
	if err != nil {
		if isEmptyRemote(err) {
			operationsTotal.WithLabelValues("load", name, resultEmpty).Inc()
			g.logger.Info("remote document not created yet", "backend", name)
			return nil
		}
		operationsTotal.WithLabelValues("load", name, resultError).Inc()
		g.logger.Warn("loading document failed", "backend", name, "err", err)
		return g.loadMirror()
	}

	res, empty, err := decode(data)
	switch {
	case err != nil:
		operationsTotal.WithLabelValues("load", name, resultMalformed).Inc()
		g.logger.Warn("remote document is malformed", "backend", name, "err", err)
		return g.loadMirror()
	case empty:
		operationsTotal.WithLabelValues("load", name, resultEmpty).Inc()
		return nil
	}

	operationsTotal.WithLabelValues("load", name, resultOK).Inc()
	res.Source = name
	if g.mirror != nil {
		if _, err := g.mirror.Record(data, name, true); err != nil {
			g.logger.Warn("mirroring loaded document failed", "err", err)
		}
	}
	return res
}

func (g *Gateway) fetch(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	data, err := g.remote.Fetch(ctx)
	operationDuration.WithLabelValues("load", g.remote.Name()).Observe(time.Since(start).Seconds())
	return data, err
}

func (g *Gateway) loadMirror() *LoadResult {
	if g.mirror == nil {
		return nil
	}
	snap, err := g.mirror.Latest()
	if err != nil {
		if !errors.Is(err, store.ErrNoSnapshot) {
			g.logger.Warn("reading local mirror failed", "err", err)
		}
		return nil
	}
	res, empty, err := decode(snap.Payload)
	if err != nil || empty {
		operationsTotal.WithLabelValues("load", SourceMirror, resultMalformed).Inc()
		g.logger.Warn("local mirror snapshot unusable", "version", snap.Version, "err", err)
		return nil
	}
	operationsTotal.WithLabelValues("load", SourceMirror, resultOK).Inc()
	g.logger.Info("loaded local mirror snapshot", "version", snap.Version, "saved_at", snap.SavedAt)
	res.Source = SourceMirror
	res.Version = snap.Version
	return res
}

// decode reports empty for a blank payload or a document with no keys at
// all; both mean nothing has been stored yet.
func decode(data []byte) (res *LoadResult, empty bool, err error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, true, nil
	}
	doc, err := model.Decode(data)
	if err != nil {
		return nil, false, err
	}
	if len(doc.Habits) == 0 && doc.Notes == model.NotesAbsent {
		return nil, true, nil
	}
	migrated := doc.MigrateLegacyJournal()
	return &LoadResult{Store: doc.Store(), Migrated: migrated}, false, nil
}

func isEmptyRemote(err error) bool {
	return errors.Is(err, gist.ErrFileMissing) ||
		errors.Is(err, s3doc.ErrNotFound) ||
		errors.Is(err, store.ErrNoSnapshot)
}

// Save serializes s and overwrites the remote document. It reports whether
// the remote accepted it.
func (g *Gateway) Save(ctx context.Context, s *model.Store) bool {
	return g.Attempt(ctx, s).OK
}

// Attempt is Save with the details a caller needs to surface a failure.
func (g *Gateway) Attempt(ctx context.Context, s *model.Store) SaveReport {
	rep := SaveReport{Backend: g.BackendName()}

	payload, err := model.Encode(s)
	if err != nil {
		rep.Err = err
		operationsTotal.WithLabelValues("save", rep.Backend, resultMalformed).Inc()
		g.logger.Error("encoding document failed", "err", err)
		return rep
	}
	rep.Payload = payload
	documentBytes.Set(float64(len(payload)))

	if g.remote == nil {
		rep.Err = ErrUnavailable
		operationsTotal.WithLabelValues("save", rep.Backend, resultUnavailable).Inc()
		g.logger.Warn("document store unavailable", "op", "save", "err", ErrUnavailable)
	} else {
		ctx, cancel := context.WithTimeout(ctx, g.timeout)
		start := time.Now()
		rep.Err = g.remote.Put(ctx, payload)
		cancel()
		rep.Duration = time.Since(start)
		operationDuration.WithLabelValues("save", rep.Backend).Observe(rep.Duration.Seconds())

		if rep.Err != nil {
			operationsTotal.WithLabelValues("save", rep.Backend, resultError).Inc()
			g.logger.Warn("saving document failed", "backend", rep.Backend, "err", rep.Err)
		} else {
			rep.OK = true
			operationsTotal.WithLabelValues("save", rep.Backend, resultOK).Inc()
		}
	}

	rep.Version = g.recordMirror(payload, rep.Backend, rep.OK)
	return rep
}

func (g *Gateway) recordMirror(payload []byte, source string, remoteOK bool) int64 {
	if g.mirror == nil {
		return 0
	}
	v, err := g.mirror.Record(payload, source, remoteOK)
	if err != nil {
		g.logger.Warn("mirroring document failed", "err", err)
		return 0
	}
	if g.keep > 0 {
		if n, err := g.mirror.Prune(g.keep); err != nil {
			g.logger.Warn("pruning local mirror failed", "err", err)
		} else if n > 0 {
			g.logger.Debug("pruned local mirror", "removed", n)
		}
	}
	return v
}
