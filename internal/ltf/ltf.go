// Package ltf implements the load-tracker file: a small per-artwork JSON
// record that promotes to "terminal" after three failed load attempts,
// permanently blocking future downloads of that file (§6 "LTF").
package ltf

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/prxssh/playsetsched/internal/vault"
)

const maxAttempts = 3

// Record is the JSON shape persisted to disk.
type Record struct {
	Attempts     int    `json:"attempts"`
	Terminal     bool   `json:"terminal"`
	LastFailure  int64  `json:"last_failure"`
	Reason       string `json:"reason"`
}

// Load reads the record at path. A missing file is not an error: it
// returns the zero Record.
func Load(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Record{}, nil
	}
	if err != nil {
		return Record{}, err
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, err
	}
	return r, nil
}

// RecordFailure loads the existing record at path (if any), increments its
// attempt count, sets the failure reason and timestamp, and persists it.
// The record becomes terminal on its third strike. It returns the updated
// record.
func RecordFailure(path, reason string, now time.Time) (Record, error) {
	r, err := Load(path)
	if err != nil {
		r = Record{}
	}

	r.Attempts++
	r.Reason = reason
	r.LastFailure = now.Unix()
	if r.Attempts >= maxAttempts {
		r.Terminal = true
	}

	if err := save(path, r); err != nil {
		return r, err
	}
	return r, nil
}

// IsTerminal reports whether the record at path has reached its
// three-strike terminal state. A missing file is never terminal.
func IsTerminal(path string) bool {
	r, err := Load(path)
	if err != nil {
		return false
	}
	return r.Terminal
}

// Clear deletes the load-tracker file on a successful load (§7).
func Clear(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Tracker adapts the path-based package functions above into the
// scheduler's storage-key-keyed LoadTracker contract, resolving each
// storage key to its sharded LTF path via internal/vault. Local (SD-card)
// storage keys aren't valid UUIDs and simply report no tracked state,
// since LTF only applies to remote (vault-backed) entries.
type Tracker struct {
	VaultDir string
}

// NewTracker builds a Tracker rooted at vaultDir.
func NewTracker(vaultDir string) *Tracker {
	return &Tracker{VaultDir: vaultDir}
}

func (t *Tracker) pathFor(storageKey string) (string, bool) {
	key, err := uuid.Parse(storageKey)
	if err != nil {
		return "", false
	}
	return vault.LTFPath(t.VaultDir, key), true
}

// RecordFailure implements scheduler.LoadTracker.
func (t *Tracker) RecordFailure(storageKey, channelID, reason string) (bool, error) {
	path, ok := t.pathFor(storageKey)
	if !ok {
		return false, nil
	}
	r, err := RecordFailure(path, reason, time.Now())
	if err != nil {
		return false, err
	}
	return r.Terminal, nil
}

// IsTerminal implements scheduler.LoadTracker.
func (t *Tracker) IsTerminal(storageKey string) bool {
	path, ok := t.pathFor(storageKey)
	if !ok {
		return false
	}
	return IsTerminal(path)
}

// ClearOnSuccess implements scheduler.LoadTracker.
func (t *Tracker) ClearOnSuccess(storageKey string) error {
	path, ok := t.pathFor(storageKey)
	if !ok {
		return nil
	}
	return Clear(path)
}

func save(path string, r Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.Marshal(r)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
