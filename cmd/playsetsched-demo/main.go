// Command playsetsched-demo wires the scheduler core to fake presenter,
// refresher, and load-tracker implementations plus a Prometheus /metrics
// endpoint, and drives it through a small scripted playset so the
// scheduling behavior can be observed end to end without real display or
// download hardware.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prxssh/playsetsched/internal/artwork"
	"github.com/prxssh/playsetsched/internal/cache"
	"github.com/prxssh/playsetsched/internal/catalogue"
	"github.com/prxssh/playsetsched/internal/config"
	"github.com/prxssh/playsetsched/internal/logging"
	"github.com/prxssh/playsetsched/internal/ltf"
	"github.com/prxssh/playsetsched/internal/metrics"
	"github.com/prxssh/playsetsched/internal/picker"
	"github.com/prxssh/playsetsched/internal/scheduler"
	"github.com/prxssh/playsetsched/internal/swrr"
)

func main() {
	setupLogger()
	config.Init()

	listenAddr := flag.String("listen", ":9090", "address to serve /metrics on")
	dataDir := flag.String("data-dir", "./playsetsched-demo-data", "root directory for channel caches and fake animation files")
	flag.Parse()

	if err := run(*listenAddr, *dataDir); err != nil {
		slog.Error("demo exited with an error", "error", err)
		os.Exit(1)
	}
}

func setupLogger() {
	logging.SetupDefault(os.Stdout, slog.LevelInfo)
}

func run(listenAddr, dataDir string) error {
	animDir := filepath.Join(dataDir, "animations")
	channelDir := filepath.Join(dataDir, "channels")
	vaultDir := filepath.Join(dataDir, "vault")
	for _, dir := range []string{animDir, channelDir, vaultDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	cfg := config.Update(func(c *config.Config) {
		c.GlobalSeed = 42
		c.ChannelDir = channelDir
		c.AnimationsDir = animDir
		c.VaultDir = vaultDir
		c.DwellTimeSeconds = 5
	})

	presenter := &loggingPresenter{log: slog.Default().With("component", "presenter")}
	refresher := &loggingRefresher{log: slog.Default().With("component", "refresher")}

	s := scheduler.New(scheduler.Config{
		GlobalSeed:        cfg.GlobalSeed,
		ChannelDir:        cfg.ChannelDir,
		AnimationsDir:     cfg.AnimationsDir,
		VaultDir:          cfg.VaultDir,
		HistoryCapacity:   cfg.HistoryCapacity,
		DwellTimeSeconds:  cfg.DwellTimeSeconds,
		CacheSaveDebounce: cfg.CacheSaveDebounce,
		Presenter:         presenter,
		Refresher:         refresher,
		LoadTracker:       ltf.NewTracker(vaultDir),
		Logger:            slog.Default(),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics.New(s))
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	server := &http.Server{Addr: listenAddr, Handler: mux}
	go func() {
		slog.Info("serving metrics", "addr", listenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server failed", "error", err)
		}
	}()

	if err := seedDemoChannel(channelDir, animDir, "sdcard"); err != nil {
		return fmt.Errorf("seeding demo channel: %w", err)
	}

	cmd := scheduler.PlaysetCommand{
		ExposureMode: swrr.ExposureEqual,
		PickMode:     picker.ModeRecency,
		Channels:     []scheduler.ChannelSpec{{Type: artwork.ChannelSDCard, Name: "sunsets"}},
	}
	if err := s.ExecutePlayset(cmd); err != nil {
		return fmt.Errorf("executing demo playset: %w", err)
	}

	// The scheduler's own dwell timer drives auto-advance from here; this
	// goroutine just waits for shutdown.
	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
	return s.Close(shutdownCtx)
}

// seedDemoChannel writes a handful of fake local artwork files and a
// matching channel cache entry list, so the demo has something to pick
// from without a real downloader.
func seedDemoChannel(channelDir, animDir, channelID string) error {
	names := []string{"sunset-01.gif", "sunset-02.gif", "sunset-03.gif"}
	entries := make([]catalogue.Entry, len(names))
	for i, name := range names {
		if err := os.WriteFile(filepath.Join(animDir, name), []byte("demo-gif-bytes"), 0o644); err != nil {
			return err
		}
		entries[i] = catalogue.Entry{
			Kind:      catalogue.KindArtwork,
			Extension: catalogue.ExtGIF,
			Filename:  name,
			PostID:    catalogue.PostIDForFilename(name),
		}
	}

	path := filepath.Join(channelDir, channelID+".bin")
	c := cache.New(path, catalogue.FormatLocal, 50*time.Millisecond)
	c.SetEntries(catalogue.FormatLocal, entries)
	return c.Save()
}

type loggingPresenter struct {
	log *slog.Logger
}

func (p *loggingPresenter) RequestSwap(a artwork.Reference, startTimeMs, startFrame uint32) error {
	p.log.Info("swap requested", "filepath", a.Filepath, "post_id", a.PostID, "channel", a.ChannelIdx)
	return nil
}

func (p *loggingPresenter) DisplayMessage(title, body string) {
	p.log.Info("display message", "title", title, "body", body)
}

type loggingRefresher struct {
	log *slog.Logger
}

func (r *loggingRefresher) RequestRefresh(channelID string) {
	r.log.Debug("refresh requested", "channel", channelID)
}
