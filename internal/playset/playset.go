// Package playset implements the on-disk playset file: the channel list
// and exposure/pick mode a single execute_playset command installs (§6
// "Playset file").
package playset

import (
	"encoding/binary"
	"hash/crc32"
	"os"
	"path/filepath"

	"github.com/prxssh/playsetsched/internal/artwork"
	"github.com/prxssh/playsetsched/internal/errs"
)

const (
	magicValue     uint32 = 0x50335053 // "P3PS" little-endian
	currentVersion uint16 = 10

	headerSize = 32
	entrySize  = 144

	nameFieldLen        = 33
	identifierFieldLen  = 33
	displayNameFieldLen = 65

	// MaxChannels bounds a single playset's channel list (§3).
	MaxChannels = 64
)

// ExposureMode mirrors swrr.ExposureMode's on-disk tag; kept independent
// to avoid the file-format package depending on the selector package.
type ExposureMode uint8

const (
	ExposureEqual ExposureMode = iota
	ExposureManual
	ExposureProportional
)

// PickMode mirrors picker.Mode's on-disk tag.
type PickMode uint8

const (
	PickRecency PickMode = iota
	PickRandom
)

// Channel is one playset row: a channel's type, stable name/identifier,
// a human display name, and its manual-mode weight.
type Channel struct {
	Type        artwork.ChannelType
	Name        string
	Identifier  string
	DisplayName string
	Weight      uint32
}

// Playset is the decoded file contents: the exposure/pick modes and up to
// MaxChannels channel rows.
type Playset struct {
	ExposureMode ExposureMode
	PickMode     PickMode
	Channels     []Channel
}

// Load reads and validates the playset file at path. A version mismatch
// deletes the file and reports errs.KindInvalidVersion, per §6.
func Load(path string) (Playset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Playset{}, errs.Wrap(errs.KindIOFailure, "playset.Load", err)
	}
	if len(data) < headerSize {
		return Playset{}, errs.New(errs.KindInvalidSize, "playset.Load")
	}

	if binary.LittleEndian.Uint32(data[0:4]) != magicValue {
		return Playset{}, errs.New(errs.KindInvalidArgument, "playset.Load")
	}

	version := binary.LittleEndian.Uint16(data[4:6])
	if version != currentVersion {
		_ = os.Remove(path)
		return Playset{}, errs.New(errs.KindInvalidVersion, "playset.Load")
	}

	exposureMode := ExposureMode(data[8])
	pickMode := PickMode(data[9])
	channelCount := binary.LittleEndian.Uint16(data[10:12])
	storedCRC := binary.LittleEndian.Uint32(data[12:16])

	need := headerSize + int(channelCount)*entrySize
	if len(data) < need {
		return Playset{}, errs.New(errs.KindInvalidSize, "playset.Load")
	}

	checkBuf := make([]byte, len(data))
	copy(checkBuf, data)
	for i := 12; i < 16; i++ {
		checkBuf[i] = 0
	}
	if crc32.ChecksumIEEE(checkBuf) != storedCRC {
		return Playset{}, errs.New(errs.KindInvalidCRC, "playset.Load")
	}

	channels := make([]Channel, 0, channelCount)
	offset := headerSize
	for i := uint16(0); i < channelCount; i++ {
		row := data[offset : offset+entrySize]
		ch := Channel{
			Type:        artwork.ChannelType(row[0]),
			Name:        trimNul(row[1 : 1+nameFieldLen]),
			Identifier:  trimNul(row[1+nameFieldLen : 1+nameFieldLen+identifierFieldLen]),
			DisplayName: trimNul(row[1+nameFieldLen+identifierFieldLen : 1+nameFieldLen+identifierFieldLen+displayNameFieldLen]),
		}
		weightOff := 1 + nameFieldLen + identifierFieldLen + displayNameFieldLen
		ch.Weight = binary.LittleEndian.Uint32(row[weightOff : weightOff+4])
		channels = append(channels, ch)
		offset += entrySize
	}

	return Playset{ExposureMode: exposureMode, PickMode: pickMode, Channels: channels}, nil
}

// Save writes ps to path as a complete file (no debounce: playset writes
// are infrequent, operator-driven events, unlike the Channel Cache).
func Save(path string, ps Playset) error {
	if len(ps.Channels) == 0 || len(ps.Channels) > MaxChannels {
		return errs.New(errs.KindInvalidArgument, "playset.Save")
	}

	buf := make([]byte, headerSize+len(ps.Channels)*entrySize)

	binary.LittleEndian.PutUint32(buf[0:4], magicValue)
	binary.LittleEndian.PutUint16(buf[4:6], currentVersion)
	// buf[6:8] flags, reserved 0.
	buf[8] = byte(ps.ExposureMode)
	buf[9] = byte(ps.PickMode)
	binary.LittleEndian.PutUint16(buf[10:12], uint16(len(ps.Channels)))
	// buf[12:16] CRC32, computed below with this field zeroed.
	// buf[16:32] reserved, zeroed.

	offset := headerSize
	for _, ch := range ps.Channels {
		row := buf[offset : offset+entrySize]
		row[0] = byte(ch.Type)
		if err := putFixed(row[1:1+nameFieldLen], ch.Name); err != nil {
			return err
		}
		if err := putFixed(row[1+nameFieldLen:1+nameFieldLen+identifierFieldLen], ch.Identifier); err != nil {
			return err
		}
		if err := putFixed(row[1+nameFieldLen+identifierFieldLen:1+nameFieldLen+identifierFieldLen+displayNameFieldLen], ch.DisplayName); err != nil {
			return err
		}
		weightOff := 1 + nameFieldLen + identifierFieldLen + displayNameFieldLen
		binary.LittleEndian.PutUint32(row[weightOff:weightOff+4], ch.Weight)
		offset += entrySize
	}

	crc := crc32.ChecksumIEEE(buf)
	binary.LittleEndian.PutUint32(buf[12:16], crc)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.Wrap(errs.KindIOFailure, "playset.Save", err)
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return errs.Wrap(errs.KindIOFailure, "playset.Save", err)
	}
	if _, err := f.Write(buf); err != nil {
		f.Close()
		return errs.Wrap(errs.KindIOFailure, "playset.Save", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return errs.Wrap(errs.KindIOFailure, "playset.Save", err)
	}
	if err := f.Close(); err != nil {
		return errs.Wrap(errs.KindIOFailure, "playset.Save", err)
	}
	return os.Rename(tmp, path)
}

func putFixed(dst []byte, s string) error {
	if len(s) > len(dst) {
		return errs.New(errs.KindInvalidSize, "playset.putFixed")
	}
	copy(dst, s)
	for i := len(s); i < len(dst); i++ {
		dst[i] = 0
	}
	return nil
}

func trimNul(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}
