// Package config holds the scheduler's tunables, mirroring the teacher's
// functional-default Config struct plus an atomically-swappable global
// handle for settings mutated outside the scheduler's own mutex (e.g. the
// dwell time, via the public setter in §6).
package config

import (
	"sync/atomic"
	"time"
)

// Config defines the scheduler's resource limits and external paths.
type Config struct {
	// GlobalSeed seeds every channel's PRNG, combined with channel index
	// and epoch id per §4.1.
	GlobalSeed uint32

	// ChannelDir is where Channel Cache (.bin) and playset (.playset)
	// files are read and written.
	ChannelDir string

	// AnimationsDir is the SD-card root used to build local filepaths.
	AnimationsDir string

	// VaultDir is the content-addressed root used to build remote
	// filepaths and LTF paths.
	VaultDir string

	// MaxChannels records the channel limit of a playset (§3, "channels
	// (≤64)"). The scheduler enforces its own MaxChannels constant and does
	// not read this field.
	MaxChannels int

	// HistoryCapacity is the history ring's fixed capacity (§4.2, default
	// 32).
	HistoryCapacity int

	// NAECapacity records the NAE pool size (§4.7, 32). The pool uses the
	// fixed nae.Capacity constant and does not read this field.
	NAECapacity int

	// DwellTimeSeconds is the auto-advance interval; 0 disables the
	// dwell timer (§4.9).
	DwellTimeSeconds int

	// CacheSaveDebounce is the coalescing window for Channel Cache saves
	// (§4.4).
	CacheSaveDebounce time.Duration

	// RefreshTickInterval is not read by any component: the scheduler runs
	// no background refresh tick, and refreshes are requested only through
	// the Refresher interface.
	RefreshTickInterval time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		GlobalSeed:          0,
		ChannelDir:          "./channels",
		AnimationsDir:       "./animations",
		VaultDir:            "./vault",
		MaxChannels:         64,
		HistoryCapacity:     32,
		NAECapacity:         32,
		DwellTimeSeconds:    30,
		CacheSaveDebounce:   200 * time.Millisecond,
		RefreshTickInterval: 5 * time.Second,
	}
}

var global atomic.Value

// Init installs the default config as the process-wide global handle.
func Init() {
	c := DefaultConfig()
	global.Store(&c)
}

// Load returns the current global config. Callers must treat it as
// read-only; mutate via Update or Swap.
func Load() *Config {
	v, _ := global.Load().(*Config)
	if v == nil {
		c := DefaultConfig()
		return &c
	}
	return v
}

// Update applies mut to a copy of the current config and atomically swaps
// it in, returning the new value.
func Update(mut func(*Config)) *Config {
	curr := Load()
	next := *curr
	mut(&next)
	global.Store(&next)
	return &next
}

// Swap replaces the global config outright.
func Swap(next Config) *Config {
	global.Store(&next)
	return &next
}
