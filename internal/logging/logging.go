// Package logging provides a pretty, color-coded slog.Handler for local
// development, adapted from the teacher's pkg/utils/logging/slog.go.
// Library code never installs this handler itself; only the demo binary
// does, via SetupDefault.
package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Options configures the pretty handler.
type Options struct {
	SlogOpts       slog.HandlerOptions
	UseColor       bool
	ShowSource     bool
	TimeFormat     string
	FieldSeparator string
}

// DefaultOptions returns info-level, colorized, source-annotated options.
func DefaultOptions() Options {
	return Options{
		SlogOpts:       slog.HandlerOptions{Level: slog.LevelInfo},
		UseColor:       true,
		ShowSource:     true,
		TimeFormat:     time.RFC3339,
		FieldSeparator: " | ",
	}
}

// SetupDefault installs a pretty handler as the slog default, writing to w
// at the given level. Intended for cmd/ entry points only.
func SetupDefault(w io.Writer, level slog.Level) {
	opts := DefaultOptions()
	opts.SlogOpts.Level = level
	slog.SetDefault(slog.New(NewHandler(w, opts)))
}

// Handler is a minimal slog.Handler that prints a single colorized,
// human-readable line per record.
type Handler struct {
	opts   Options
	writer io.Writer
	mu     *sync.Mutex
	attrs  []slog.Attr

	colorTime    func(...any) string
	colorLevel   map[slog.Level]func(...any) string
	colorMessage func(...any) string
	colorSource  func(...any) string
	colorFields  func(...any) string
}

// NewHandler builds a Handler writing to w.
func NewHandler(w io.Writer, opts Options) *Handler {
	if opts.TimeFormat == "" {
		opts.TimeFormat = time.RFC3339
	}
	if opts.FieldSeparator == "" {
		opts.FieldSeparator = " | "
	}

	h := &Handler{opts: opts, writer: w, mu: &sync.Mutex{}}
	h.initColors()
	return h
}

func (h *Handler) initColors() {
	if !h.opts.UseColor {
		noColor := func(a ...any) string { return fmt.Sprint(a...) }
		h.colorTime, h.colorMessage, h.colorSource, h.colorFields = noColor, noColor, noColor, noColor
		h.colorLevel = map[slog.Level]func(...any) string{
			slog.LevelDebug: noColor, slog.LevelInfo: noColor,
			slog.LevelWarn: noColor, slog.LevelError: noColor,
		}
		return
	}

	h.colorTime = color.New(color.FgHiBlack).SprintFunc()
	h.colorMessage = color.New(color.FgCyan).SprintFunc()
	h.colorSource = color.New(color.FgHiBlack).SprintFunc()
	h.colorFields = color.New(color.FgWhite).SprintFunc()
	h.colorLevel = map[slog.Level]func(...any) string{
		slog.LevelDebug: color.New(color.FgMagenta).SprintFunc(),
		slog.LevelInfo:  color.New(color.FgBlue).SprintFunc(),
		slog.LevelWarn:  color.New(color.FgYellow).SprintFunc(),
		slog.LevelError: color.New(color.FgRed).SprintFunc(),
	}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.SlogOpts.Level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	h.mu.Lock()
	defer h.mu.Unlock()

	buf.WriteString(h.colorTime(r.Time.Format(h.opts.TimeFormat)))
	buf.WriteString(h.opts.FieldSeparator)

	level := strings.ToUpper(r.Level.String())
	if colorFn, ok := h.colorLevel[r.Level]; ok {
		buf.WriteString(colorFn(fmt.Sprintf("%-5s", level)))
	} else {
		buf.WriteString(fmt.Sprintf("%-5s", level))
	}
	buf.WriteString(h.opts.FieldSeparator)

	if h.opts.ShowSource && r.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{r.PC})
		frame, _ := frames.Next()
		if frame.Function != "" {
			buf.WriteString(h.colorSource(fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)))
			buf.WriteString(h.opts.FieldSeparator)
		}
	}

	buf.WriteString(h.colorMessage(r.Message))

	fields := make([]string, 0, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		fields = append(fields, fmt.Sprintf("%s=%v", a.Key, a.Value))
	}
	r.Attrs(func(a slog.Attr) bool {
		fields = append(fields, fmt.Sprintf("%s=%v", a.Key, a.Value))
		return true
	})
	if len(fields) > 0 {
		buf.WriteString(h.opts.FieldSeparator)
		buf.WriteString(h.colorFields(strings.Join(fields, " ")))
	}

	buf.WriteByte('\n')
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	nh := &Handler{
		opts:   h.opts,
		writer: h.writer,
		mu:     &sync.Mutex{},
		attrs:  append(append([]slog.Attr(nil), h.attrs...), attrs...),
	}
	nh.initColors()
	return nh
}

func (h *Handler) WithGroup(_ string) slog.Handler {
	return h
}
