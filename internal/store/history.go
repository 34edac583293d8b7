// Package store provides a SQLite-backed history of saved habit documents.
// It mirrors every save attempt locally and doubles as the offline backend.
package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNoSnapshot is returned when the history holds no matching snapshot.
var ErrNoSnapshot = errors.New("store: no snapshot")

// Snapshot is one recorded document version.
type Snapshot struct {
	Version  int64
	SavedAt  time.Time
	Source   string // backend the document was saved to or loaded from
	RemoteOK bool   // whether the remote accepted this version
	Size     int
	Checksum string
	Payload  []byte // nil in List results
}

// History provides SQLite-backed snapshot storage.
type History struct {
	db *sql.DB
}

// Open opens or creates the history database at the given path.
func Open(dbPath string) (*History, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &History{db: db}, nil
}

// Close closes the history database.
func (h *History) Close() error {
	return h.db.Close()
}

func checksum(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Record stores payload as a new version and returns its version number.
// Recording the same payload as the latest version only refreshes its
// metadata.
func (h *History) Record(payload []byte, source string, remoteOK bool) (int64, error) {
	tx, err := h.db.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	sum := checksum(payload)

	var (
		latest    int64
		latestSum string
	)
	err = tx.QueryRow("SELECT version, checksum FROM snapshots ORDER BY version DESC LIMIT 1").Scan(&latest, &latestSum)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return 0, err
	case latestSum == sum:
		ok := 0
		if remoteOK {
			ok = 1
		}
		_, err = tx.Exec(`UPDATE snapshots SET saved_at = ?, source = ?, remote_ok = MAX(remote_ok, ?)
			WHERE version = ?`, now, source, ok, latest)
		if err != nil {
			return 0, err
		}
		return latest, tx.Commit()
	}

	remote := 0
	if remoteOK {
		remote = 1
	}
	res, err := tx.Exec(`INSERT INTO snapshots (saved_at, source, remote_ok, size_bytes, checksum, payload)
		VALUES (?, ?, ?, ?, ?, ?)`, now, source, remote, len(payload), sum, payload)
	if err != nil {
		return 0, err
	}
	version, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return version, tx.Commit()
}

const snapshotColumns = "version, saved_at, source, remote_ok, size_bytes, checksum"

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner, withPayload bool) (Snapshot, error) {
	var (
		s       Snapshot
		savedAt string
		remote  int
	)
	dest := []any{&s.Version, &savedAt, &s.Source, &remote, &s.Size, &s.Checksum}
	if withPayload {
		dest = append(dest, &s.Payload)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s, ErrNoSnapshot
		}
		return s, err
	}
	s.RemoteOK = remote != 0
	s.SavedAt, _ = time.Parse(time.RFC3339Nano, savedAt)
	return s, nil
}

// Latest returns the most recent snapshot including its payload.
func (h *History) Latest() (Snapshot, error) {
	row := h.db.QueryRow("SELECT " + snapshotColumns + ", payload FROM snapshots ORDER BY version DESC LIMIT 1")
	return scanSnapshot(row, true)
}

// LatestRemote returns the most recent snapshot the remote accepted.
func (h *History) LatestRemote() (Snapshot, error) {
	row := h.db.QueryRow("SELECT " + snapshotColumns + ", payload FROM snapshots WHERE remote_ok = 1 ORDER BY version DESC LIMIT 1")
	return scanSnapshot(row, true)
}

// Get returns a snapshot by version.
func (h *History) Get(version int64) (Snapshot, error) {
	row := h.db.QueryRow("SELECT "+snapshotColumns+", payload FROM snapshots WHERE version = ?", version)
	return scanSnapshot(row, true)
}

// List returns up to limit snapshots, newest first, without payloads.
// A limit of 0 or less returns every snapshot.
func (h *History) List(limit int) ([]Snapshot, error) {
	query := "SELECT " + snapshotColumns + " FROM snapshots ORDER BY version DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows, false)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Prune keeps the newest keep snapshots and deletes the rest. It returns
// the number of rows removed. keep below 1 disables pruning.
func (h *History) Prune(keep int) (int64, error) {
	if keep < 1 {
		return 0, nil
	}
	res, err := h.db.Exec(`DELETE FROM snapshots WHERE version NOT IN
		(SELECT version FROM snapshots ORDER BY version DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Count returns the number of stored snapshots.
func (h *History) Count() (int, error) {
	var n int
	err := h.db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&n)
	return n, err
}
