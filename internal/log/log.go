// Package log provides the structured logging output used throughout the simulator.
package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"runtime"
	"strings"
	"sync"
	"time"
)

var (
	// DefaultLogger returns a new formatted logger writing to standard error on every call. Most
	// components call it once during construction and keep the result.
	DefaultLogger = func() *Logger { return NewFormattedLogger(os.Stderr) }

	// SetDefault sets slog's process-wide default logger; it does not change what DefaultLogger
	// returns.
	SetDefault = slog.SetDefault

	// LogLevel is the minimum level that will be written. It can be adjusted at runtime, e.g. by
	// test harnesses that want to silence debug tracing.
	LogLevel = &slog.LevelVar{}
)

// NewFormattedLogger returns a logger that writes each record to out as one labelled line per
// field, followed by a blank line.
func NewFormattedLogger(out io.Writer) *Logger {
	return slog.New(NewHandler(out))
}

// Handler formats log records as a sequence of labelled lines rather than slog's default
// key=value form; it reads better for the kind of line-by-line instruction tracing this
// simulator produces.
type Handler struct {
	mut *sync.Mutex
	out io.Writer

	opts  *slog.HandlerOptions
	group string
	attrs []Attr
}

// Options configures the handler's level and source-location reporting.
var Options = &slog.HandlerOptions{
	AddSource: true,
	Level:     LogLevel,
}

// NewHandler creates a Handler that writes to out.
func NewHandler(out io.Writer) *Handler {
	return &Handler{
		out:  out,
		mut:  new(sync.Mutex),
		opts: Options,
	}
}

// Enabled reports whether level is at or above the handler's configured level.
func (h *Handler) Enabled(_ context.Context, level Level) bool {
	return level >= h.opts.Level.Level()
}

// Handle formats and writes a single log record.
func (h *Handler) Handle(_ context.Context, rec slog.Record) error {
	buf := bytes.NewBuffer(make([]byte, 0, 1024))

	if !rec.Time.IsZero() {
		fmt.Fprintf(buf, "%10s : %s\n", "TIMESTAMP", rec.Time.Format(time.RFC3339Nano))
	}

	fmt.Fprintf(buf, "%10s : %s\n", "LEVEL", rec.Level.String())

	if h.opts.AddSource && rec.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{rec.PC})
		f, _ := frames.Next()
		_, file := path.Split(f.File)
		fmt.Fprintf(buf, "%10s : %s:%d\n", "SOURCE", file, f.Line)
	}

	fmt.Fprintf(buf, "%10s : %s\n", "MESSAGE", rec.Message)

	for _, a := range h.attrs {
		if err := h.appendAttr(buf, a); err != nil {
			return err
		}
	}

	rec.Attrs(func(attr Attr) bool {
		_ = h.appendAttr(buf, attr)
		return true
	})

	fmt.Fprintln(buf)

	h.mut.Lock()
	defer h.mut.Unlock()

	_, err := h.out.Write(buf.Bytes())

	return err
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	attrs := make([]Attr, len(h.attrs))
	copy(attrs, h.attrs)

	return &Handler{mut: h.mut, out: h.out, opts: h.opts, attrs: attrs, group: name}
}

func (h *Handler) WithAttrs(attrs []Attr) slog.Handler {
	as := make([]Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(as, h.attrs)
	as = append(as, attrs...)

	return &Handler{out: h.out, mut: h.mut, opts: h.opts, attrs: as}
}

func (h *Handler) appendAttr(out io.Writer, attr slog.Attr) error {
	attr.Value = attr.Value.Resolve()

	if attr.Equal(Attr{}) {
		return nil
	}

	key := strings.ToUpper(attr.Key)

	if attr.Value.Kind() != slog.KindGroup {
		_, err := fmt.Fprintf(out, "%10s : %v\n", key, attr.Value.Any())
		return err
	}

	if key != "" {
		if _, err := fmt.Fprintf(out, "%10s :\n", key); err != nil {
			return err
		}
	}

	for _, a := range attr.Value.Group() {
		if err := h.appendAttr(out, a); err != nil {
			return err
		}
	}

	return nil
}

// Loggable is implemented by components that accept a logger after construction.
type Loggable interface {
	WithLogger(*Logger)
}

type (
	Attr   = slog.Attr
	Level  = slog.Level
	Logger = slog.Logger
	Value  = slog.Value
)

var (
	String     = slog.String
	Group      = slog.Group
	GroupValue = slog.GroupValue
	Any        = slog.Any
)

const (
	Debug = slog.LevelDebug
	Info  = slog.LevelInfo
	Warn  = slog.LevelWarn
	Error = slog.LevelError
)
