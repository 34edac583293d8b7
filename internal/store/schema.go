package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS snapshots (
    version              INTEGER PRIMARY KEY AUTOINCREMENT,
    saved_at             TEXT NOT NULL,
    source               TEXT NOT NULL,
    remote_ok            INTEGER NOT NULL DEFAULT 0,
    size_bytes           INTEGER NOT NULL,
    checksum             TEXT NOT NULL,
    payload              BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_saved ON snapshots(saved_at);
CREATE INDEX IF NOT EXISTS idx_snapshots_checksum ON snapshots(checksum);
`
