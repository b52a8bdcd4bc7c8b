/*
 * pal8 - PDP-8 PAL-style cross-assembler.
 *
 * Copyright (c) 2024-2026, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package palog wraps log/slog for the assembler's operational
// diagnostics: pass start/end, file open/close, symbol-table overflow.
// Per-line assembly errors go through internal/listing instead; this
// package never sees them.
package palog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Handler formats records as "time level: message attr attr ..." on a
// single writer, and additionally mirrors the record to stderr when
// debug is set or the level exceeds Debug.
type Handler struct {
	out   io.Writer
	h     slog.Handler
	mu    *sync.Mutex
	debug bool
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{out: h.out, h: h.h.WithAttrs(attrs), mu: h.mu, debug: h.debug}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{out: h.out, h: h.h.WithGroup(name), mu: h.mu, debug: h.debug}
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	level := r.Level.String() + ":"
	formattedTime := r.Time.Format("2006/01/02 15:04:05")

	strs := []string{formattedTime, level, r.Message}
	if r.NumAttrs() != 0 {
		r.Attrs(func(a slog.Attr) bool {
			strs = append(strs, a.Value.String())
			return true
		})
	}
	b := []byte(strings.Join(strs, " ") + "\n")

	h.mu.Lock()
	defer h.mu.Unlock()

	var err error
	if h.out != nil {
		_, err = h.out.Write(b)
	}
	if h.debug || r.Level > slog.LevelDebug {
		_, err = os.Stderr.Write(b)
	}
	return err
}

// SetDebug toggles whether Debug-level records are also mirrored to
// stderr; without it only Info and above reach the terminal.
func (h *Handler) SetDebug(debug bool) {
	h.debug = debug
}

// NewHandler builds a Handler writing to file (nil discards the file
// copy, leaving only the stderr mirror), honoring opts.Level for what
// reaches either destination.
func NewHandler(file io.Writer, opts *slog.HandlerOptions, debug bool) *Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &Handler{
		out: file,
		h: slog.NewTextHandler(file, &slog.HandlerOptions{
			Level:     opts.Level,
			AddSource: opts.AddSource,
		}),
		mu:    &sync.Mutex{},
		debug: debug,
	}
}

// Init installs a Handler as the process-wide default logger. If
// path is empty, operational diagnostics go only to stderr at Info
// level and above. It returns a closer the caller must defer, and an
// error if path could not be opened.
func Init(path string, verbose bool) (io.Closer, error) {
	var w io.Writer = io.Discard
	var closer io.Closer = nopCloser{}

	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		w = f
		closer = f
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	h := NewHandler(w, &slog.HandlerOptions{Level: level}, verbose)
	slog.SetDefault(slog.New(h))
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
