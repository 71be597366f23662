// Package catalogue defines the on-disk catalogue entry formats owned by
// the Channel Cache (§3, §6): a 64-byte remote (Makapix) record, a 160-byte
// local (SD-card) record, and a 48-byte record for any other registered
// channel type that needs neither full remote metadata nor a long
// filename. All three formats decode into the single in-memory Entry type
// the picker and scheduler operate on.
package catalogue

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"
)

// Extension enumerates the asset file extensions a catalogue entry can
// name.
type Extension uint8

const (
	ExtWEBP Extension = iota
	ExtGIF
	ExtPNG
	ExtJPEG
)

func (e Extension) String() string {
	switch e {
	case ExtWEBP:
		return "webp"
	case ExtGIF:
		return "gif"
	case ExtPNG:
		return "png"
	case ExtJPEG:
		return "jpeg"
	default:
		return "bin"
	}
}

// Kind distinguishes a playable artwork entry from a playlist entry. Only
// Kind == KindArtwork is eligible for picking (§3 invariant 2).
type Kind uint8

const (
	KindArtwork Kind = iota
	KindPlaylist
)

// Format identifies which packed record layout a channel's entries use.
type Format uint16

const (
	FormatOther  Format = 0
	FormatRemote Format = 1
	FormatLocal  Format = 2
)

const (
	remoteRecordSize = 64
	localRecordSize  = 160
	otherRecordSize  = 48

	maxFilenameLen = 143
)

// Size returns the packed record size in bytes for the format, or 0 for an
// unrecognized tag.
func (f Format) Size() int {
	switch f {
	case FormatOther:
		return otherRecordSize
	case FormatRemote:
		return remoteRecordSize
	case FormatLocal:
		return localRecordSize
	default:
		return 0
	}
}

// Entry is the normalized, in-memory catalogue record the picker and
// scheduler operate on, regardless of which on-disk format it was decoded
// from.
type Entry struct {
	Kind        Kind
	Extension   Extension
	CreatedAt   int64
	ModifiedAt  int64 // remote only; zero for local/other
	DwellTimeMs uint32

	// PostID identifies the entry for repeat-avoidance and the public
	// artwork reference. Local entries carry the spec's "negative hash of
	// filename"; remote/other entries carry a non-negative hash of their
	// storage key, since the Makapix record has no native post_id field.
	PostID int32

	StorageKeyUUID uuid.UUID // remote/other only; zero value for local
	Filename       string    // local only; empty for remote/other

	FilterFlags uint32 // remote/other only
}

// PostIDForFilename computes the spec's "negative hash of filename" used
// as the SD-card post_id.
func PostIDForFilename(filename string) int32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(filename))
	v := int32(h.Sum32())
	if v > 0 {
		v = -v
	}
	if v == 0 {
		v = -1
	}
	return v
}

// PostIDForStorageKey computes a stable non-negative post_id for a remote
// entry from its storage key, since the packed Makapix record carries no
// native post_id field.
func PostIDForStorageKey(key uuid.UUID) int32 {
	h := fnv.New32a()
	_, _ = h.Write(key[:])
	v := int32(h.Sum32() &^ (1 << 31)) // clear sign bit
	return v
}

// Pack encodes e into the on-disk layout named by format.
func (e Entry) Pack(format Format) ([]byte, error) {
	switch format {
	case FormatRemote:
		return e.packRemote(), nil
	case FormatLocal:
		return e.packLocal()
	case FormatOther:
		return e.packOther(), nil
	default:
		return nil, fmt.Errorf("catalogue: unknown format %d", format)
	}
}

// Unpack decodes buf (of the size named by format) into an Entry.
func Unpack(format Format, buf []byte) (Entry, error) {
	switch format {
	case FormatRemote:
		return unpackRemote(buf)
	case FormatLocal:
		return unpackLocal(buf)
	case FormatOther:
		return unpackOther(buf)
	default:
		return Entry{}, fmt.Errorf("catalogue: unknown format %d", format)
	}
}

func (e Entry) packRemote() []byte {
	buf := make([]byte, remoteRecordSize)
	copy(buf[0:16], e.StorageKeyUUID[:])
	binary.LittleEndian.PutUint64(buf[16:24], uint64(e.CreatedAt))
	binary.LittleEndian.PutUint64(buf[24:32], uint64(e.ModifiedAt))
	buf[32] = byte(e.Extension)
	buf[33] = byte(e.Kind)
	binary.LittleEndian.PutUint32(buf[34:38], e.FilterFlags)
	// buf[38:64] reserved, zeroed.
	return buf
}

func unpackRemote(buf []byte) (Entry, error) {
	if len(buf) != remoteRecordSize {
		return Entry{}, fmt.Errorf("catalogue: remote record must be %d bytes, got %d", remoteRecordSize, len(buf))
	}

	var e Entry
	copy(e.StorageKeyUUID[:], buf[0:16])
	e.CreatedAt = int64(binary.LittleEndian.Uint64(buf[16:24]))
	e.ModifiedAt = int64(binary.LittleEndian.Uint64(buf[24:32]))
	e.Extension = Extension(buf[32])
	e.Kind = Kind(buf[33])
	e.FilterFlags = binary.LittleEndian.Uint32(buf[34:38])
	e.PostID = PostIDForStorageKey(e.StorageKeyUUID)
	return e, nil
}

func (e Entry) packLocal() ([]byte, error) {
	if len(e.Filename) > maxFilenameLen {
		return nil, fmt.Errorf("catalogue: filename %q exceeds %d bytes", e.Filename, maxFilenameLen)
	}

	buf := make([]byte, localRecordSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(e.PostID))
	buf[4] = byte(e.Extension)
	binary.LittleEndian.PutUint64(buf[5:13], uint64(e.CreatedAt))
	binary.LittleEndian.PutUint32(buf[13:17], e.DwellTimeMs)
	copy(buf[17:17+len(e.Filename)], e.Filename)
	// remainder of the filename field is zero-padded.
	return buf, nil
}

func unpackLocal(buf []byte) (Entry, error) {
	if len(buf) != localRecordSize {
		return Entry{}, fmt.Errorf("catalogue: local record must be %d bytes, got %d", localRecordSize, len(buf))
	}

	var e Entry
	e.Kind = KindArtwork
	e.PostID = int32(binary.LittleEndian.Uint32(buf[0:4]))
	e.Extension = Extension(buf[4])
	e.CreatedAt = int64(binary.LittleEndian.Uint64(buf[5:13]))
	e.DwellTimeMs = binary.LittleEndian.Uint32(buf[13:17])

	nameBytes := buf[17:localRecordSize]
	n := 0
	for n < len(nameBytes) && nameBytes[n] != 0 {
		n++
	}
	e.Filename = string(nameBytes[:n])
	return e, nil
}

func (e Entry) packOther() []byte {
	buf := make([]byte, otherRecordSize)
	copy(buf[0:16], e.StorageKeyUUID[:])
	binary.LittleEndian.PutUint64(buf[16:24], uint64(e.CreatedAt))
	buf[24] = byte(e.Extension)
	buf[25] = byte(e.Kind)
	binary.LittleEndian.PutUint32(buf[26:30], e.FilterFlags)
	// buf[30:48] reserved, zeroed.
	return buf
}

func unpackOther(buf []byte) (Entry, error) {
	if len(buf) != otherRecordSize {
		return Entry{}, fmt.Errorf("catalogue: other record must be %d bytes, got %d", otherRecordSize, len(buf))
	}

	var e Entry
	copy(e.StorageKeyUUID[:], buf[0:16])
	e.CreatedAt = int64(binary.LittleEndian.Uint64(buf[16:24]))
	e.Extension = Extension(buf[24])
	e.Kind = Kind(buf[25])
	e.FilterFlags = binary.LittleEndian.Uint32(buf[26:30])
	e.PostID = PostIDForStorageKey(e.StorageKeyUUID)
	return e, nil
}
