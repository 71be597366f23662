// Package picker implements per-channel next-item selection over a
// channel's locally-available index, in recency and random modes (§4.5).
package picker

import (
	"strings"

	"github.com/prxssh/playsetsched/internal/artwork"
	"github.com/prxssh/playsetsched/internal/cache"
	"github.com/prxssh/playsetsched/internal/catalogue"
	"github.com/prxssh/playsetsched/internal/prng"
	"github.com/prxssh/playsetsched/internal/vault"
)

// Mode selects the picker's selection strategy.
type Mode uint8

const (
	ModeRecency Mode = iota
	ModeRandom
)

const randomAttempts = 5

// Request carries everything the picker needs that isn't owned by the
// cache itself: the caller's cursor and repeat-avoidance state, the
// channel's identity for the resulting reference, and the filesystem roots
// needed to build a filepath.
type Request struct {
	Mode         Mode
	Cursor       uint32
	LastPlayedID int32
	RNG          *prng.State

	AnimationsDir string
	VaultDir      string

	ChannelIdx  uint8
	ChannelType artwork.ChannelType
}

// Result is what Pick returns on success, including the cursor value the
// caller should persist for the channel's next recency-mode call.
type Result struct {
	Reference  artwork.Reference
	NextCursor uint32
}

// Pick selects the next playable entry from c per req.Mode. ok is false on
// exhaustion: no acceptable entry within one wrap (recency) or after
// falling back from an exhausted random attempt sequence.
func Pick(c *cache.Cache, req Request) (Result, bool) {
	n := c.LAi().Len()
	if n == 0 {
		return Result{}, false
	}

	allowRepeat := n == 1
	format := c.Format()

	tryPos := func(pos int, permitRepeat bool) (artwork.Reference, bool) {
		idx, ok := c.LAi().At(pos)
		if !ok {
			return artwork.Reference{}, false
		}
		e, ok := c.EntryAt(int(idx))
		if !ok {
			return artwork.Reference{}, false
		}
		if e.Kind != catalogue.KindArtwork {
			return artwork.Reference{}, false
		}
		if !allowRepeat && !permitRepeat && e.PostID == req.LastPlayedID {
			return artwork.Reference{}, false
		}
		return buildReference(e, format, req), true
	}

	if req.Mode == ModeRandom && req.RNG != nil {
		for attempt := 0; attempt < randomAttempts; attempt++ {
			pos := req.RNG.Intn(n)
			permitRepeat := attempt == randomAttempts-1
			if ref, ok := tryPos(pos, permitRepeat); ok {
				return Result{Reference: ref, NextCursor: req.Cursor}, true
			}
		}
		// Every attempt rejected: fall through to recency mode.
	}

	for i := 0; i < n; i++ {
		pos := int((req.Cursor + uint32(i)) % uint32(n))
		if ref, ok := tryPos(pos, false); ok {
			return Result{Reference: ref, NextCursor: uint32((pos + 1) % n)}, true
		}
	}

	return Result{}, false
}

func buildReference(e catalogue.Entry, format catalogue.Format, req Request) artwork.Reference {
	ref := artwork.Reference{
		ArtworkID:   e.PostID,
		PostID:      e.PostID,
		CreatedAt:   e.CreatedAt,
		DwellTimeMs: e.DwellTimeMs,
		AssetType:   assetTypeFor(e.Extension),
		ChannelIdx:  req.ChannelIdx,
		ChannelType: req.ChannelType,
	}

	if format == catalogue.FormatLocal {
		ref.Filepath = vault.LocalPath(req.AnimationsDir, e.Filename)
		return ref
	}

	ref.StorageKey = e.StorageKeyUUID.String()
	ref.Filepath = vault.RemotePath(req.VaultDir, e.StorageKeyUUID, strings.ToLower(e.Extension.String()))
	return ref
}

func assetTypeFor(ext catalogue.Extension) artwork.AssetType {
	switch ext {
	case catalogue.ExtWEBP:
		return artwork.AssetWEBP
	case catalogue.ExtGIF:
		return artwork.AssetGIF
	case catalogue.ExtPNG:
		return artwork.AssetPNG
	case catalogue.ExtJPEG:
		return artwork.AssetJPEG
	default:
		return artwork.AssetWEBP
	}
}
