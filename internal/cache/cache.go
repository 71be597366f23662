// Package cache implements the Channel Cache: a per-channel binary file
// storing the catalogue entry array and the LAi, protected by a CRC32 and
// saved through a debounced scheduler so bursts of LAi mutation collapse
// into a single write (§4.4, §6 "Channel cache file").
package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"

	"github.com/prxssh/playsetsched/internal/catalogue"
	"github.com/prxssh/playsetsched/internal/errs"
	"github.com/prxssh/playsetsched/internal/lai"
	"github.com/prxssh/playsetsched/internal/retry"
)

const (
	magicValue     uint32 = 0x43433350 // "P3CC" little-endian
	currentVersion uint16 = 1
	headerSize            = 32
)

// Cache owns one channel's catalogue entries and LAi, and persists them to
// disk on a debounced schedule whenever the LAi mutates.
type Cache struct {
	path   string
	mu     sync.RWMutex
	format catalogue.Format

	entries []catalogue.Entry
	laiIdx  *lai.Index

	debounced func(func())
	saveErrMu sync.Mutex
	lastErr   error
}

// New creates an empty cache bound to path, with LAi mutations scheduling a
// save after debounceWindow of quiet (§4.4's debounced save scheduler).
func New(path string, format catalogue.Format, debounceWindow time.Duration) *Cache {
	c := &Cache{
		path:      path,
		format:    format,
		debounced: debounce.New(debounceWindow),
	}
	c.laiIdx = lai.New(c.scheduleSave)
	return c
}

func (c *Cache) scheduleSave() {
	c.debounced(func() {
		if err := c.Save(); err != nil {
			c.saveErrMu.Lock()
			c.lastErr = err
			c.saveErrMu.Unlock()
		}
	})
}

// LastSaveError returns the error from the most recent debounced save
// attempt, if any.
func (c *Cache) LastSaveError() error {
	c.saveErrMu.Lock()
	defer c.saveErrMu.Unlock()
	return c.lastErr
}

// Entries returns a snapshot of the catalogue entries.
func (c *Cache) Entries() []catalogue.Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]catalogue.Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// LAi returns the underlying locally-available index.
func (c *Cache) LAi() *lai.Index {
	return c.laiIdx
}

// Format reports the catalogue entry format this cache was loaded with.
func (c *Cache) Format() catalogue.Format {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.format
}

// SetEntries replaces the catalogue entry array wholesale, as happens on a
// refresh. It does not itself touch the LAi.
func (c *Cache) SetEntries(format catalogue.Format, entries []catalogue.Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.format = format
	c.entries = entries
}

// EntryAt returns the entry at i, or false if i is out of range.
func (c *Cache) EntryAt(i int) (catalogue.Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i < 0 || i >= len(c.entries) {
		return catalogue.Entry{}, false
	}
	return c.entries[i], true
}

// Load reads the channel cache file at path. A missing file, magic
// mismatch, version mismatch, or CRC mismatch are all treated as "empty
// cache" per §6's load sequence, not as errors.
//
// fileExists is consulted only for legacy files that carry entries but no
// LAi: each entry's on-disk existence is probed to synthesize the LAi, and
// the cache is marked dirty so the synthesized LAi gets persisted. Pass nil
// to skip synthesis (the cache then starts with an empty LAi).
func Load(path string, debounceWindow time.Duration, fileExists func(catalogue.Entry) bool) (*Cache, error) {
	c := New(path, catalogue.FormatOther, debounceWindow)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.KindIOFailure, "cache.Load", err)
	}
	if len(data) < headerSize {
		return c, nil
	}

	if binary.LittleEndian.Uint32(data[0:4]) != magicValue {
		return c, nil
	}
	version := binary.LittleEndian.Uint16(data[4:6])
	if version != currentVersion {
		return c, nil
	}
	entryFormat := catalogue.Format(binary.LittleEndian.Uint16(data[6:8]))
	entryCount := binary.LittleEndian.Uint32(data[8:12])
	laiCount := binary.LittleEndian.Uint32(data[12:16])
	storedCRC := binary.LittleEndian.Uint32(data[16:20])

	payload := data[headerSize:]
	if crc32.ChecksumIEEE(payload) != storedCRC {
		return c, nil
	}

	entrySize := entryFormat.Size()
	if entrySize == 0 && entryCount > 0 {
		return c, nil
	}
	need := int(entryCount)*entrySize + int(laiCount)*4
	if len(payload) < need {
		return c, nil
	}

	entries := make([]catalogue.Entry, 0, entryCount)
	offset := 0
	for i := uint32(0); i < entryCount; i++ {
		buf := payload[offset : offset+entrySize]
		e, err := catalogue.Unpack(entryFormat, buf)
		if err != nil {
			return c, nil
		}
		entries = append(entries, e)
		offset += entrySize
	}

	laiItems := make([]uint32, 0, laiCount)
	for i := uint32(0); i < laiCount; i++ {
		v := binary.LittleEndian.Uint32(payload[offset : offset+4])
		laiItems = append(laiItems, v)
		offset += 4
	}

	c.format = entryFormat
	c.entries = entries

	legacy := laiCount == 0 && entryCount > 0 && fileExists != nil
	if legacy {
		for i, e := range entries {
			if fileExists(e) {
				laiItems = append(laiItems, uint32(i))
			}
		}
	}
	c.laiIdx.Reset(laiItems)
	if legacy {
		c.scheduleSave()
	}

	return c, nil
}

// Save persists the current entries and LAi to disk via a temp-file,
// fsync, rename sequence (§6 "Atomic write").
func (c *Cache) Save() error {
	c.mu.RLock()
	entries := make([]catalogue.Entry, len(c.entries))
	copy(entries, c.entries)
	format := c.format
	c.mu.RUnlock()

	laiItems := c.laiIdx.Snapshot()

	entrySize := format.Size()
	payload := make([]byte, 0, len(entries)*entrySize+len(laiItems)*4)
	for _, e := range entries {
		buf, err := e.Pack(format)
		if err != nil {
			return errs.Wrap(errs.KindInvalidArgument, "cache.Save", err)
		}
		payload = append(payload, buf...)
	}
	for _, idx := range laiItems {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], idx)
		payload = append(payload, b[:]...)
	}

	crc := crc32.ChecksumIEEE(payload)

	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(header[0:4], magicValue)
	binary.LittleEndian.PutUint16(header[4:6], currentVersion)
	binary.LittleEndian.PutUint16(header[6:8], uint16(format))
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(entries)))
	binary.LittleEndian.PutUint32(header[12:16], uint32(len(laiItems)))
	binary.LittleEndian.PutUint32(header[16:20], crc)

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return errs.Wrap(errs.KindIOFailure, "cache.Save", err)
	}

	tmp := c.path + ".tmp"
	writeOnce := func(context.Context) error {
		f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		if _, err := f.Write(header); err != nil {
			f.Close()
			return err
		}
		if _, err := f.Write(payload); err != nil {
			f.Close()
			return err
		}
		if err := f.Sync(); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		return os.Rename(tmp, c.path)
	}

	// A full atomic-write attempt is retried wholesale rather than
	// resumed mid-write: a transient failure (full disk, unmounted SD
	// card) leaves the .tmp file in an unknown state, and re-opening with
	// O_TRUNC makes each attempt self-contained.
	if err := retry.Do(context.Background(), writeOnce, retry.WithMaxAttempts(3)); err != nil {
		return errs.Wrap(errs.KindIOFailure, "cache.Save", err)
	}
	return nil
}
