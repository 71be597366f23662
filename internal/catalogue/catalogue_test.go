package catalogue

import (
	"testing"

	"github.com/google/uuid"
)

func TestRemoteEntry_RoundTrip(t *testing.T) {
	e := Entry{
		Kind:           KindArtwork,
		Extension:      ExtPNG,
		CreatedAt:      1700000000,
		ModifiedAt:     1700000500,
		StorageKeyUUID: uuid.New(),
		FilterFlags:    0xdeadbeef,
	}

	buf, err := e.Pack(FormatRemote)
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	if len(buf) != remoteRecordSize {
		t.Fatalf("Pack() len = %d, want %d", len(buf), remoteRecordSize)
	}

	got, err := Unpack(FormatRemote, buf)
	if err != nil {
		t.Fatalf("Unpack() error = %v", err)
	}

	if got.Extension != e.Extension || got.Kind != e.Kind || got.FilterFlags != e.FilterFlags {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, e)
	}
	if got.StorageKeyUUID != e.StorageKeyUUID {
		t.Fatalf("StorageKeyUUID mismatch: got %v, want %v", got.StorageKeyUUID, e.StorageKeyUUID)
	}
	if got.CreatedAt != e.CreatedAt || got.ModifiedAt != e.ModifiedAt {
		t.Fatalf("timestamps mismatch: got %+v, want %+v", got, e)
	}
}

func TestLocalEntry_RoundTrip(t *testing.T) {
	e := Entry{
		Extension:   ExtGIF,
		CreatedAt:   1700000000,
		DwellTimeMs: 5000,
		Filename:    "sunset-walk.gif",
	}
	e.PostID = PostIDForFilename(e.Filename)

	buf, err := e.Pack(FormatLocal)
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	if len(buf) != localRecordSize {
		t.Fatalf("Pack() len = %d, want %d", len(buf), localRecordSize)
	}

	got, err := Unpack(FormatLocal, buf)
	if err != nil {
		t.Fatalf("Unpack() error = %v", err)
	}

	if got.Filename != e.Filename {
		t.Fatalf("Filename = %q, want %q", got.Filename, e.Filename)
	}
	if got.PostID != e.PostID {
		t.Fatalf("PostID = %d, want %d", got.PostID, e.PostID)
	}
	if got.PostID >= 0 {
		t.Fatalf("PostID = %d, want negative for local entries", got.PostID)
	}
	if got.DwellTimeMs != e.DwellTimeMs || got.Extension != e.Extension {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, e)
	}
}

func TestLocalEntry_FilenameTooLong(t *testing.T) {
	e := Entry{Filename: string(make([]byte, maxFilenameLen+1))}
	if _, err := e.Pack(FormatLocal); err == nil {
		t.Fatal("Pack() error = nil, want error for oversized filename")
	}
}

func TestOtherEntry_RoundTrip(t *testing.T) {
	e := Entry{
		Kind:           KindPlaylist,
		Extension:      ExtJPEG,
		CreatedAt:      42,
		StorageKeyUUID: uuid.New(),
		FilterFlags:    7,
	}

	buf, err := e.Pack(FormatOther)
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	if len(buf) != otherRecordSize {
		t.Fatalf("Pack() len = %d, want %d", len(buf), otherRecordSize)
	}

	got, err := Unpack(FormatOther, buf)
	if err != nil {
		t.Fatalf("Unpack() error = %v", err)
	}
	if got.Kind != e.Kind || got.Extension != e.Extension || got.FilterFlags != e.FilterFlags {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, e)
	}
}

func TestPostIDForFilename_Deterministic(t *testing.T) {
	a := PostIDForFilename("foo.gif")
	b := PostIDForFilename("foo.gif")
	if a != b {
		t.Fatalf("PostIDForFilename not deterministic: %d != %d", a, b)
	}
	if a >= 0 {
		t.Fatalf("PostIDForFilename(%q) = %d, want negative", "foo.gif", a)
	}
}

func TestFormat_Size(t *testing.T) {
	tests := []struct {
		format Format
		want   int
	}{
		{FormatRemote, 64},
		{FormatLocal, 160},
		{FormatOther, 48},
		{Format(99), 0},
	}
	for _, tt := range tests {
		if got := tt.format.Size(); got != tt.want {
			t.Errorf("Format(%d).Size() = %d, want %d", tt.format, got, tt.want)
		}
	}
}
