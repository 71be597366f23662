// Package scheduler implements the Scheduler Core: it orchestrates the
// picker, SWRR selector, history ring, NAE pool, and per-channel caches
// behind one coarse mutex, exposing the navigation API and the
// download/failure integration hooks (§4.8-4.10).
package scheduler

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/prxssh/playsetsched/internal/artwork"
	"github.com/prxssh/playsetsched/internal/cache"
	"github.com/prxssh/playsetsched/internal/catalogue"
	"github.com/prxssh/playsetsched/internal/errs"
	"github.com/prxssh/playsetsched/internal/history"
	"github.com/prxssh/playsetsched/internal/nae"
	"github.com/prxssh/playsetsched/internal/picker"
	"github.com/prxssh/playsetsched/internal/playset"
	"github.com/prxssh/playsetsched/internal/prng"
	"github.com/prxssh/playsetsched/internal/swrr"
	"github.com/prxssh/playsetsched/internal/vault"
)

// MaxChannels bounds a single playset's channel list (§3).
const MaxChannels = 64

// naeChannelIndex is a reserved per-(epoch) PRNG stream index for the NAE
// pool's coin flip, kept out of the 0-63 range real channels occupy.
const naeChannelIndex = 0xFF

// Presenter is the consumed swap/message surface (§6 "Presenter
// contract"). Production implementations (frame decode, display swap) are
// out of scope; the demo binary and tests supply fakes.
type Presenter interface {
	RequestSwap(a artwork.Reference, startTimeMs, startFrame uint32) error
	DisplayMessage(title, body string)
}

// Refresher is asked to queue a background catalogue refresh for a
// channel; it does not report completion synchronously.
type Refresher interface {
	RequestRefresh(channelID string)
}

// PathResolver builds filesystem paths for local and remote catalogue
// entries (§4.5 "Filepath construction"). The default implementation
// delegates to internal/vault.
type PathResolver interface {
	LocalPath(animationsDir, filename string) string
	VaultPath(vaultDir string, key uuid.UUID, ext string) string
}

// LoadTracker is the consumed load-tracker-file surface (§6 "LTF").
type LoadTracker interface {
	RecordFailure(storageKey, channelID, reason string) (terminal bool, err error)
	IsTerminal(storageKey string) bool
	ClearOnSuccess(storageKey string) error
}

type vaultPathResolver struct{}

func (vaultPathResolver) LocalPath(animationsDir, filename string) string {
	return vault.LocalPath(animationsDir, filename)
}

func (vaultPathResolver) VaultPath(vaultDir string, key uuid.UUID, ext string) string {
	return vault.RemotePath(vaultDir, key, ext)
}

// Config carries the scheduler's collaborators and resource limits.
type Config struct {
	GlobalSeed    uint32
	ChannelDir    string
	AnimationsDir string
	VaultDir      string

	HistoryCapacity   int
	DwellTimeSeconds  int
	CacheSaveDebounce time.Duration

	Presenter    Presenter
	Refresher    Refresher
	LoadTracker  LoadTracker
	PathResolver PathResolver
	Logger       *slog.Logger
}

func (c *Config) setDefaults() {
	if c.HistoryCapacity <= 0 {
		c.HistoryCapacity = 32
	}
	if c.CacheSaveDebounce <= 0 {
		c.CacheSaveDebounce = 200 * time.Millisecond
	}
	if c.PathResolver == nil {
		c.PathResolver = vaultPathResolver{}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// ChannelSpec is one playset row as consumed by ExecutePlayset.
type ChannelSpec struct {
	Type       artwork.ChannelType
	Name       string
	SpecWeight uint32
}

// PlaysetCommand is the primary entry point's argument (§4.8
// "execute_playset(cmd)").
type PlaysetCommand struct {
	ExposureMode swrr.ExposureMode
	PickMode     picker.Mode
	Channels     []ChannelSpec
}

// CommandFromPlayset adapts a decoded playset file into a PlaysetCommand,
// bridging §6's file format to the scheduler's execution contract.
func CommandFromPlayset(ps playset.Playset) PlaysetCommand {
	cmd := PlaysetCommand{
		ExposureMode: swrr.ExposureMode(ps.ExposureMode),
		PickMode:     picker.Mode(ps.PickMode),
		Channels:     make([]ChannelSpec, len(ps.Channels)),
	}
	for i, ch := range ps.Channels {
		name := ch.Name
		if name == "" {
			name = ch.Identifier
		}
		cmd.Channels[i] = ChannelSpec{Type: ch.Type, Name: name, SpecWeight: ch.Weight}
	}
	return cmd
}

type channelState struct {
	id       string
	chanType artwork.ChannelType
	index    uint8
	format   catalogue.Format // fixed by chanType, independent of cache.Format()'s load-time guess

	specWeight uint32
	weight     uint32
	cursor     uint32
	rng        *prng.State
	cache      *cache.Cache
}

// Stats is the supplemented get_stats() return shape (SPEC_FULL "Supplemented
// features").
type Stats struct {
	EpochID        uint32
	TotalAvailable int
	PickMode       picker.Mode
	ExposureMode   swrr.ExposureMode
	ChannelCount   int
	NAECount       int
}

// ChannelStats is the supplemented get_channel_stats() return shape.
type ChannelStats struct {
	Total  int
	Cached int
}

// Scheduler is the process-wide scheduler instance (§3 "Scheduler state").
type Scheduler struct {
	log *slog.Logger
	cfg Config

	mu                  sync.Mutex
	exposureMode        swrr.ExposureMode
	pickMode            picker.Mode
	channels            []*channelState
	selector            *swrr.Selector
	history             *history.Ring[artwork.Reference]
	nae                 *nae.Pool
	naeEnabled          bool
	epochID             uint32
	lastPlayedID        int32
	lastPlayedByChannel map[uint8]int32
	playbackActive      bool

	dwellSeconds   atomic.Int32
	autoSwapPaused atomic.Bool
	dwellResetCh   chan struct{}

	cancel context.CancelFunc
	group  *errgroup.Group
}

// New constructs a scheduler and starts its dwell-timer goroutine.
func New(cfg Config) *Scheduler {
	cfg.setDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		log:                 cfg.Logger.With("component", "scheduler"),
		cfg:                 cfg,
		history:             history.New[artwork.Reference](cfg.HistoryCapacity),
		selector:            swrr.New(nil),
		lastPlayedByChannel: make(map[uint8]int32),
		dwellResetCh:        make(chan struct{}, 1),
		cancel:              cancel,
	}
	s.nae = nae.New(prng.New(prng.SeedFor(cfg.GlobalSeed, naeChannelIndex, s.epochID)))
	s.dwellSeconds.Store(int32(cfg.DwellTimeSeconds))

	g, gctx := errgroup.WithContext(ctx)
	s.group = g
	g.Go(func() error { return s.dwellLoop(gctx) })

	return s
}

// Close stops the dwell-timer goroutine and waits for it to exit, or
// returns ctx's error if it is canceled first.
func (s *Scheduler) Close(ctx context.Context) error {
	s.cancel()

	done := make(chan error, 1)
	go func() { done <- s.group.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) dwellLoop(ctx context.Context) error {
	var ticker *time.Ticker
	var tickerC <-chan time.Time

	setup := func() {
		if ticker != nil {
			ticker.Stop()
		}
		secs := s.dwellSeconds.Load()
		if secs <= 0 {
			ticker, tickerC = nil, nil
			return
		}
		ticker = time.NewTicker(time.Duration(secs) * time.Second)
		tickerC = ticker.C
	}
	setup()
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.dwellResetCh:
			setup()
		case <-tickerC:
			s.onDwellTick()
		}
	}
}

func (s *Scheduler) onDwellTick() {
	if s.autoSwapPaused.Load() {
		return
	}

	s.mu.Lock()
	active := s.playbackActive
	total := s.totalAvailableLocked()
	s.mu.Unlock()

	if !active || total <= 1 {
		return
	}

	var out artwork.Reference
	if err := s.Next(&out); err != nil {
		s.log.Debug("dwell auto-advance found nothing to play", "error", err)
	}
}

func (s *Scheduler) resetDwellTimer() {
	select {
	case s.dwellResetCh <- struct{}{}:
	default:
	}
}

// SetDwellTime changes the auto-advance interval; 0 disables it.
func (s *Scheduler) SetDwellTime(seconds int) {
	s.dwellSeconds.Store(int32(seconds))
	s.resetDwellTimer()
}

// GetDwellTime returns the current auto-advance interval in seconds.
func (s *Scheduler) GetDwellTime() int { return int(s.dwellSeconds.Load()) }

// ResetTimer restarts the dwell ticker without changing its interval.
func (s *Scheduler) ResetTimer() { s.resetDwellTimer() }

// PauseAutoSwap suspends dwell-driven auto-advance; manual navigation still
// works.
func (s *Scheduler) PauseAutoSwap() { s.autoSwapPaused.Store(true) }

// ResumeAutoSwap re-enables dwell-driven auto-advance and restarts the
// ticker.
func (s *Scheduler) ResumeAutoSwap() {
	s.autoSwapPaused.Store(false)
	s.resetDwellTimer()
}

// SetPickMode changes the active pick mode for subsequent selections.
func (s *Scheduler) SetPickMode(m picker.Mode) {
	s.mu.Lock()
	s.pickMode = m
	s.mu.Unlock()
}

// GetPickMode returns the active pick mode.
func (s *Scheduler) GetPickMode() picker.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pickMode
}

// SetNAEEnabled toggles NAE pool consultation in next().
func (s *Scheduler) SetNAEEnabled(enabled bool) {
	s.mu.Lock()
	s.naeEnabled = enabled
	s.mu.Unlock()
}

// IsNAEEnabled reports whether the NAE pool is consulted in next().
func (s *Scheduler) IsNAEEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.naeEnabled
}

// NAEInsert inserts a into the NAE pool (§4.7).
func (s *Scheduler) NAEInsert(a artwork.Reference) {
	s.nae.Insert(a, time.Now())
}

func sanitizeComponent(s string) string {
	b := []byte(s)
	for i := range b {
		c := b[i]
		switch {
		case c >= '0' && c <= '9', c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z':
		default:
			b[i] = '_'
		}
	}
	return string(b)
}

func sanitizeForFilename(channelID string) string {
	return strings.ReplaceAll(channelID, ":", "_")
}

func synthesizeChannelID(spec ChannelSpec) string {
	switch spec.Type {
	case artwork.ChannelUser:
		return "user:" + sanitizeComponent(spec.Name)
	case artwork.ChannelHashtag:
		return "hashtag:" + sanitizeComponent(spec.Name)
	case artwork.ChannelGiphy:
		return "giphy:" + sanitizeComponent(spec.Name)
	case artwork.ChannelSDCard:
		return "sdcard"
	default: // ChannelNamed, ChannelArtwork
		return spec.Name
	}
}

func formatForChannelType(t artwork.ChannelType) catalogue.Format {
	if t == artwork.ChannelSDCard {
		return catalogue.FormatLocal
	}
	return catalogue.FormatRemote
}

// ExecutePlayset installs a new channel set, loading each channel's cache,
// requesting background refreshes, recomputing SWRR weights, and clearing
// the NAE pool. History is preserved across calls (§4.8).
func (s *Scheduler) ExecutePlayset(cmd PlaysetCommand) error {
	if len(cmd.Channels) == 0 || len(cmd.Channels) > MaxChannels {
		return errs.New(errs.KindInvalidArgument, "scheduler.ExecutePlayset")
	}

	s.mu.Lock()
	// Previous channel caches are simply dropped; the Go runtime reclaims
	// them once unreferenced, so there is no separate cache-free path to
	// invoke here.
	s.epochID++
	epoch := s.epochID

	channels := make([]*channelState, len(cmd.Channels))
	for i, spec := range cmd.Channels {
		id := synthesizeChannelID(spec)
		format := formatForChannelType(spec.Type)
		path := s.cachePath(id)

		c, err := cache.Load(path, s.cfg.CacheSaveDebounce, s.fileExistsChecker(format))
		if err != nil {
			s.log.Warn("channel cache load failed, starting empty", "channel", id, "error", err)
			c = cache.New(path, format, s.cfg.CacheSaveDebounce)
		}

		channels[i] = &channelState{
			id:         id,
			chanType:   spec.Type,
			index:      uint8(i),
			format:     format,
			specWeight: spec.SpecWeight,
			rng:        prng.New(prng.SeedFor(s.cfg.GlobalSeed, uint8(i), epoch)),
			cache:      c,
		}

		if s.cfg.Refresher != nil {
			s.cfg.Refresher.RequestRefresh(id)
		}
	}

	s.channels = channels
	s.exposureMode = cmd.ExposureMode
	s.pickMode = cmd.PickMode
	s.recomputeWeightsLocked()
	s.selector.ResetCredits()
	s.nae.Clear()
	s.lastPlayedByChannel = make(map[uint8]int32)
	s.playbackActive = true

	hasContent := s.totalAvailableLocked() > 0
	s.mu.Unlock()

	if hasContent {
		var out artwork.Reference
		return s.Next(&out)
	}
	if s.cfg.Presenter != nil {
		s.cfg.Presenter.DisplayMessage("Loading", "Waiting for channel content to become available")
	}
	return nil
}

func (s *Scheduler) cachePath(channelID string) string {
	return s.cfg.ChannelDir + "/" + sanitizeForFilename(channelID) + ".bin"
}

func (s *Scheduler) entryPath(format catalogue.Format, e catalogue.Entry) string {
	if format == catalogue.FormatLocal {
		return s.cfg.PathResolver.LocalPath(s.cfg.AnimationsDir, e.Filename)
	}
	return s.cfg.PathResolver.VaultPath(s.cfg.VaultDir, e.StorageKeyUUID, strings.ToLower(e.Extension.String()))
}

func (s *Scheduler) fileExistsChecker(format catalogue.Format) func(catalogue.Entry) bool {
	return func(e catalogue.Entry) bool {
		_, err := os.Stat(s.entryPath(format, e))
		return err == nil
	}
}

// effectiveCount approximates per-channel availability for weight
// computation: LAi size for remote channels, raw entry count for local
// (SD-card) channels, whose whole catalogue is assumed already present
// (§4.6).
func effectiveCount(cs *channelState) int {
	if cs.format == catalogue.FormatLocal {
		return len(cs.cache.Entries())
	}
	return cs.cache.LAi().Len()
}

func (s *Scheduler) recomputeWeightsLocked() {
	infos := make([]swrr.ChannelInfo, len(s.channels))
	for i, cs := range s.channels {
		ec := effectiveCount(cs)
		infos[i] = swrr.ChannelInfo{Active: ec > 0, EffectiveCount: ec, SpecWeight: cs.specWeight}
	}
	weights := swrr.ComputeWeights(s.exposureMode, infos)
	for i, cs := range s.channels {
		cs.weight = weights[i]
	}
	s.selector.SetWeights(weights)
}

func (s *Scheduler) totalAvailableLocked() int {
	total := 0
	for _, cs := range s.channels {
		total += cs.cache.LAi().Len()
	}
	return total
}

// selectionState bundles the mutable per-call state Next's core selection
// logic reads and writes, so PeekNext can run the identical algorithm
// against clones without touching the real scheduler state.
type selectionState struct {
	channels            []*channelState
	selector            *swrr.Selector
	history             *history.Ring[artwork.Reference]
	nae                 *nae.Pool
	naeEnabled          bool
	lastPlayedByChannel map[uint8]int32
}

func (s *Scheduler) selectNext(st *selectionState, pickMode picker.Mode) (artwork.Reference, bool) {
	if ref, ok := st.history.GoForward(); ok {
		return ref, true
	}

	if st.naeEnabled {
		if ref, ok := st.nae.TrySelect(); ok {
			st.history.Push(ref)
			st.lastPlayedByChannel[ref.ChannelIdx] = ref.PostID
			return ref, true
		}
	}

	n := len(st.channels)
	for tried := 0; tried < n; tried++ {
		idx, ok := st.selector.Select()
		if !ok {
			break
		}

		cs := st.channels[idx]
		req := picker.Request{
			Mode:          pickMode,
			Cursor:        cs.cursor,
			LastPlayedID:  st.lastPlayedByChannel[cs.index],
			RNG:           cs.rng,
			AnimationsDir: s.cfg.AnimationsDir,
			VaultDir:      s.cfg.VaultDir,
			ChannelIdx:    cs.index,
			ChannelType:   cs.chanType,
		}
		res, ok := picker.Pick(cs.cache, req)
		if !ok {
			continue
		}

		cs.cursor = res.NextCursor
		st.history.Push(res.Reference)
		st.lastPlayedByChannel[cs.index] = res.Reference.PostID
		return res.Reference, true
	}

	return artwork.Reference{}, false
}

// Next advances playback: forward-history, then NAE, then SWRR+picker
// (§4.8). On success it pushes to history, updates last_played_id, and
// issues a swap request to the presenter.
func (s *Scheduler) Next(out *artwork.Reference) error {
	s.mu.Lock()
	if len(s.channels) == 0 && s.history.Count() == 0 {
		s.mu.Unlock()
		return errs.New(errs.KindNotFound, "scheduler.Next")
	}

	st := &selectionState{
		channels:            s.channels,
		selector:            s.selector,
		history:             s.history,
		nae:                 s.nae,
		naeEnabled:          s.naeEnabled,
		lastPlayedByChannel: s.lastPlayedByChannel,
	}
	ref, ok := s.selectNext(st, s.pickMode)
	if !ok {
		s.mu.Unlock()
		return errs.New(errs.KindNotFound, "scheduler.Next")
	}

	s.lastPlayedID = ref.PostID
	presenter := s.cfg.Presenter
	s.mu.Unlock()

	*out = ref
	s.resetDwellTimer()
	return s.swap(presenter, ref)
}

// Prev returns the previous history entry without mutating pickers or
// credits (§4.8).
func (s *Scheduler) Prev(out *artwork.Reference) error {
	s.mu.Lock()
	ref, ok := s.history.GoBack()
	presenter := s.cfg.Presenter
	s.mu.Unlock()

	if !ok {
		return errs.New(errs.KindNotFound, "scheduler.Prev")
	}

	*out = ref
	s.resetDwellTimer()
	return s.swap(presenter, ref)
}

// PeekNext runs Next's selection logic against a shallow copy of the
// mutable scheduler fields, leaving the real state untouched.
func (s *Scheduler) PeekNext(out *artwork.Reference) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clonedChannels := make([]*channelState, len(s.channels))
	for i, cs := range s.channels {
		clone := *cs
		clone.rng = cs.rng.Clone()
		clonedChannels[i] = &clone
	}
	lastPlayedClone := make(map[uint8]int32, len(s.lastPlayedByChannel))
	for k, v := range s.lastPlayedByChannel {
		lastPlayedClone[k] = v
	}

	st := &selectionState{
		channels:            clonedChannels,
		selector:            s.selector.Clone(),
		history:             s.history.Clone(),
		nae:                 s.nae.Clone(),
		naeEnabled:          s.naeEnabled,
		lastPlayedByChannel: lastPlayedClone,
	}
	ref, ok := s.selectNext(st, s.pickMode)
	if !ok {
		return errs.New(errs.KindNotFound, "scheduler.PeekNext")
	}
	*out = ref
	return nil
}

// Current returns the entry at the history cursor.
func (s *Scheduler) Current(out *artwork.Reference) error {
	s.mu.Lock()
	ref, ok := s.history.GetCurrent()
	s.mu.Unlock()

	if !ok {
		return errs.New(errs.KindNotFound, "scheduler.Current")
	}
	*out = ref
	return nil
}

// Reset clears the NAE pool, resets each channel's cursor and credit,
// reseeds pick PRNGs, and increments the epoch; history is preserved.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epochID++
	s.nae.Clear()
	for _, cs := range s.channels {
		cs.cursor = 0
		cs.rng = prng.New(prng.SeedFor(s.cfg.GlobalSeed, cs.index, s.epochID))
	}
	s.selector.ResetCredits()
	s.lastPlayedByChannel = make(map[uint8]int32)
	s.lastPlayedID = 0
}

func (s *Scheduler) swap(presenter Presenter, ref artwork.Reference) error {
	if presenter == nil {
		return errs.New(errs.KindNotSupported, "scheduler.swap")
	}
	return presenter.RequestSwap(ref, 0, 0)
}

func (s *Scheduler) findChannelLocked(id string) *channelState {
	for _, cs := range s.channels {
		if cs.id == id {
			return cs
		}
	}
	return nil
}

func locateEntryIndex(entries []catalogue.Entry, postIDOrKey string) (int, bool) {
	if pid, err := strconv.ParseInt(postIDOrKey, 10, 32); err == nil {
		for i, e := range entries {
			if e.PostID == int32(pid) {
				return i, true
			}
		}
	}
	if key, err := uuid.Parse(postIDOrKey); err == nil {
		for i, e := range entries {
			if e.StorageKeyUUID == key {
				return i, true
			}
		}
	}
	for i, e := range entries {
		if e.Filename == postIDOrKey {
			return i, true
		}
	}
	return 0, false
}

// OnDownloadComplete locates the newly downloaded entry in its channel's
// catalogue and adds it to the LAi. next() runs once only on a true
// zero-to-one global availability transition: the total was zero when the
// call began and is positive afterwards, whether the entry arrived through
// the cache reload or the LAi add (§4.10, §9 open question (b)).
func (s *Scheduler) OnDownloadComplete(channelID, postIDOrKey string) error {
	s.mu.Lock()
	cs := s.findChannelLocked(channelID)
	if cs == nil {
		s.mu.Unlock()
		return errs.New(errs.KindNotFound, "scheduler.OnDownloadComplete")
	}

	beforeTotal := s.totalAvailableLocked()
	idx, found := locateEntryIndex(cs.cache.Entries(), postIDOrKey)
	if !found {
		reloaded, err := cache.Load(s.cachePath(cs.id), s.cfg.CacheSaveDebounce, s.fileExistsChecker(cs.format))
		if err == nil {
			cs.cache = reloaded
			idx, found = locateEntryIndex(cs.cache.Entries(), postIDOrKey)
		}
	}
	if !found {
		s.mu.Unlock()
		return errs.New(errs.KindNotFound, "scheduler.OnDownloadComplete")
	}

	cs.cache.LAi().Add(uint32(idx))
	s.recomputeWeightsLocked()
	afterTotal := s.totalAvailableLocked()
	zeroToOne := beforeTotal == 0 && afterTotal > 0
	s.mu.Unlock()

	if zeroToOne {
		var out artwork.Reference
		return s.Next(&out)
	}
	return nil
}

// OnLoadFailed records a load failure in the load tracker, unlinks the
// underlying file, removes the corresponding LAi entry, and either
// advances playback or notifies the presenter (§4.10).
func (s *Scheduler) OnLoadFailed(storageKey, channelID, reason string) error {
	s.mu.Lock()
	cs := s.findChannelLocked(channelID)
	if cs == nil {
		s.mu.Unlock()
		return errs.New(errs.KindNotFound, "scheduler.OnLoadFailed")
	}
	format := cs.format
	idx, found := locateEntryIndex(cs.cache.Entries(), storageKey)
	var entry catalogue.Entry
	if found {
		entry, _ = cs.cache.EntryAt(idx)
	}
	s.mu.Unlock()

	if s.cfg.LoadTracker != nil {
		if _, err := s.cfg.LoadTracker.RecordFailure(storageKey, channelID, reason); err != nil {
			s.log.Error("load-tracker record failure failed", "storage_key", storageKey, "error", err)
		}
	}
	if found {
		_ = os.Remove(s.entryPath(format, entry))
	}

	s.mu.Lock()
	if found {
		cs.cache.LAi().Remove(uint32(idx))
	}
	s.recomputeWeightsLocked()
	remaining := s.totalAvailableLocked()
	presenter := s.cfg.Presenter
	s.mu.Unlock()

	if remaining > 0 {
		var out artwork.Reference
		return s.Next(&out)
	}
	if presenter != nil {
		presenter.DisplayMessage("No playable files available", "")
	}
	return nil
}

// GetStats returns a snapshot of scheduler-wide counters.
func (s *Scheduler) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		EpochID:        s.epochID,
		TotalAvailable: s.totalAvailableLocked(),
		PickMode:       s.pickMode,
		ExposureMode:   s.exposureMode,
		ChannelCount:   len(s.channels),
		NAECount:       s.nae.Len(),
	}
}

// GetActiveChannelIDs returns the ids of channels with a non-zero SWRR
// weight, truncated to max when max > 0.
func (s *Scheduler) GetActiveChannelIDs(max int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.channels))
	for _, cs := range s.channels {
		if cs.weight > 0 {
			ids = append(ids, cs.id)
		}
		if max > 0 && len(ids) >= max {
			break
		}
	}
	return ids
}

// GetChannelStats returns the total catalogue size and cached (available)
// count for the named channel.
func (s *Scheduler) GetChannelStats(id string) (ChannelStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs := s.findChannelLocked(id)
	if cs == nil {
		return ChannelStats{}, errs.New(errs.KindNotFound, "scheduler.GetChannelStats")
	}
	return ChannelStats{Total: len(cs.cache.Entries()), Cached: cs.cache.LAi().Len()}, nil
}

// GetTotalAvailable returns the sum of every channel's LAi size.
func (s *Scheduler) GetTotalAvailable() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalAvailableLocked()
}
