// Package artwork defines the artwork reference value type shared across
// the picker, history ring, NAE pool, and scheduler core (§3).
package artwork

// AssetType enumerates the renderable media kinds a presenter can swap to.
type AssetType uint8

const (
	AssetWEBP AssetType = iota
	AssetGIF
	AssetPNG
	AssetJPEG
)

func (a AssetType) String() string {
	switch a {
	case AssetWEBP:
		return "webp"
	case AssetGIF:
		return "gif"
	case AssetPNG:
		return "png"
	case AssetJPEG:
		return "jpeg"
	default:
		return "unknown"
	}
}

// ChannelType enumerates the channel kinds a reference can originate from.
type ChannelType uint8

const (
	ChannelNamed ChannelType = iota
	ChannelUser
	ChannelHashtag
	ChannelSDCard
	ChannelArtwork
	ChannelGiphy
)

// Reference is a value-type pointer to one playable artwork. It is copied
// freely and owns nothing.
type Reference struct {
	ArtworkID   int32
	PostID      int32
	Filepath    string
	StorageKey  string // UUID string; empty for local (SD-card) files
	CreatedAt   int64  // unix seconds
	DwellTimeMs uint32 // 0 = use global dwell time
	AssetType   AssetType
	ChannelIdx  uint8
	ChannelType ChannelType
}

// FilePath implements history.Entry.
func (r Reference) FilePath() string { return r.Filepath }
