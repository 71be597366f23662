package cache

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/prxssh/playsetsched/internal/catalogue"
)

func waitForSave(t *testing.T, path string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); err == nil {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s to be written", path)
}

func TestCache_SaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "named.bin")

	c := New(path, catalogue.FormatLocal, 10*time.Millisecond)
	c.SetEntries(catalogue.FormatLocal, []catalogue.Entry{
		{Kind: catalogue.KindArtwork, Extension: catalogue.ExtGIF, Filename: "a.gif", DwellTimeMs: 3000},
		{Kind: catalogue.KindArtwork, Extension: catalogue.ExtPNG, Filename: "b.png", DwellTimeMs: 5000},
	})
	c.LAi().Add(0)
	c.LAi().Add(1)

	if err := c.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path, 10*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Format() != catalogue.FormatLocal {
		t.Fatalf("Format() = %v, want FormatLocal", loaded.Format())
	}
	entries := loaded.Entries()
	if len(entries) != 2 {
		t.Fatalf("len(Entries()) = %d, want 2", len(entries))
	}
	if entries[0].Filename != "a.gif" || entries[1].Filename != "b.png" {
		t.Fatalf("entries round-tripped incorrectly: %+v", entries)
	}
	if loaded.LAi().Len() != 2 {
		t.Fatalf("LAi().Len() = %d, want 2", loaded.LAi().Len())
	}
}

func TestCache_LoadMissingFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(filepath.Join(dir, "missing.bin"), 10*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(c.Entries()) != 0 || c.LAi().Len() != 0 {
		t.Fatal("expected empty cache for missing file")
	}
}

func TestCache_LoadBadMagicIsTreatedAsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.bin")
	if err := os.WriteFile(path, make([]byte, 64), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path, 10*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(c.Entries()) != 0 {
		t.Fatal("expected empty cache for bad magic")
	}
}

func TestCache_LoadCorruptCRCIsTreatedAsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.bin")

	c := New(path, catalogue.FormatRemote, 10*time.Millisecond)
	c.SetEntries(catalogue.FormatRemote, []catalogue.Entry{
		{Kind: catalogue.KindArtwork, Extension: catalogue.ExtWEBP, StorageKeyUUID: uuid.New()},
	})
	c.LAi().Add(0)
	if err := c.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// Corrupt the CRC field.
	binary.LittleEndian.PutUint32(data[16:20], 0xdeadbeef)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path, 10*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded.Entries()) != 0 {
		t.Fatal("expected empty cache after CRC corruption")
	}
}

func TestCache_LegacyFileSynthesizesLAi(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "legacy.bin")

	c := New(path, catalogue.FormatLocal, 10*time.Millisecond)
	c.SetEntries(catalogue.FormatLocal, []catalogue.Entry{
		{Kind: catalogue.KindArtwork, Extension: catalogue.ExtGIF, Filename: "present.gif"},
		{Kind: catalogue.KindArtwork, Extension: catalogue.ExtGIF, Filename: "missing.gif"},
	})
	// No LAi entries added: simulates a legacy file written before the LAi
	// existed.
	if err := c.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	exists := func(e catalogue.Entry) bool { return e.Filename == "present.gif" }
	loaded, err := Load(path, 10*time.Millisecond, exists)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.LAi().Len() != 1 {
		t.Fatalf("LAi().Len() = %d, want 1", loaded.LAi().Len())
	}
	if !loaded.LAi().Contains(0) {
		t.Fatal("expected synthesized LAi to contain index 0 (present.gif)")
	}

	resaved := filepath.Join(dir, "legacy-resave-marker")
	_ = resaved
	waitForSave(t, path)
}

func TestCache_DebouncedSaveCoalescesMutations(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "debounced.bin")

	c := New(path, catalogue.FormatLocal, 30*time.Millisecond)
	c.SetEntries(catalogue.FormatLocal, []catalogue.Entry{
		{Kind: catalogue.KindArtwork, Extension: catalogue.ExtGIF, Filename: "a.gif"},
		{Kind: catalogue.KindArtwork, Extension: catalogue.ExtGIF, Filename: "b.gif"},
	})
	c.LAi().Add(0)
	c.LAi().Add(1)

	waitForSave(t, path)

	loaded, err := Load(path, 10*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.LAi().Len() != 2 {
		t.Fatalf("LAi().Len() = %d, want 2", loaded.LAi().Len())
	}
}
