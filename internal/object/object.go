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

// Package object is the byte-exact DEC paper-tape encoder: it emits
// BIN or RIM frames, maintains the 12-bit running checksum, and
// punches leader/trailer, per spec.md §4.9. It is modeled on the
// teacher's util/card punch context (a small buffered io.Writer
// wrapper that tracks physical-medium state alongside the byte
// stream) adapted from card images to paper-tape frames.
package object

import "io"

// Mode selects the paper-tape object format.
type Mode int

const (
	BIN Mode = iota
	RIM
)

// DefaultLeaderFrames is the default leader/trailer length in frames.
const DefaultLeaderFrames = 240

// blankFrame is the punch-nothing leader/trailer byte (bit 7 set).
const blankFrame byte = 0200

// Writer punches frames to an underlying io.Writer, tracking the
// running checksum and output mode.
type Writer struct {
	w           io.Writer
	mode        Mode
	checksum    int
	dataEmitted bool // spec.md §3 "binary-data-emitted sentinel"
	enabled     bool // false under NOPUNCH: frames are checksummed but not written
	err         error
}

// NewWriter wraps w as an object-file punch in the given mode.
func NewWriter(w io.Writer, mode Mode) *Writer {
	return &Writer{w: w, mode: mode, enabled: true}
}

// Mode returns the current output format.
func (o *Writer) Mode() Mode { return o.mode }

// SetMode switches between BIN and RIM (the BINPUNCH and RIMPUNCH
// pseudo-ops drive this).
func (o *Writer) SetMode(m Mode) { o.mode = m }

// Checksum returns the running 12-bit checksum.
func (o *Writer) Checksum() int { return o.checksum & 07777 }

// ResetChecksum zeroes the running checksum (done at BINPUNCH and at
// end-of-binary after the checksum frame is emitted).
func (o *Writer) ResetChecksum() { o.checksum = 0 }

// DataEmitted reports whether any data frame has been punched since
// the sentinel was last cleared.
func (o *Writer) DataEmitted() bool { return o.dataEmitted }

// ClearDataEmitted resets the sentinel (done after RIMPUNCH/BINPUNCH
// switch modes).
func (o *Writer) ClearDataEmitted() { o.dataEmitted = false }

// Enable restores object output after a NOPUNCH (ENPUNCH pseudo-op).
func (o *Writer) Enable() { o.enabled = true }

// Disable silences object output without losing checksum state
// (NOPUNCH pseudo-op): the null-writer swap-and-restore the engine's
// resource model (spec.md §5) calls for.
func (o *Writer) Disable() { o.enabled = false }

// Err returns the first I/O error encountered, if any.
func (o *Writer) Err() error { return o.err }

func (o *Writer) raw(b byte) {
	if o.err != nil || !o.enabled {
		return
	}
	if _, err := o.w.Write([]byte{b}); err != nil {
		o.err = err
	}
}

// frame punches b and folds it into the checksum (spec.md §8
// invariant 1: every data frame and origin frame is summed).
func (o *Writer) frame(b byte) {
	o.raw(b)
	o.checksum = (o.checksum + int(b)) & 07777
	o.dataEmitted = true
}

// Leader punches n blank frames (0 uses DefaultLeaderFrames).
func (o *Writer) Leader(n int) {
	if n <= 0 {
		n = DefaultLeaderFrames
	}
	for i := 0; i < n; i++ {
		o.raw(blankFrame)
	}
}

// Origin punches the RIM/BIN origin frame pair for loc.
func (o *Writer) Origin(loc int) {
	o.frame(byte(((loc >> 6) & 077) | 0100))
	o.frame(byte(loc & 077))
}

// Word punches one 12-bit value as a data frame pair, preceded by an
// origin pair when in RIM mode (RIM re-states the address with every
// word; BIN relies on the caller to have punched an origin at segment
// start and at explicit flush points, per spec.md §4.9).
func (o *Writer) Word(loc, val int) {
	if o.mode == RIM {
		o.Origin(loc)
	}
	o.frame(byte((val >> 6) & 077))
	o.frame(byte(val & 077))
}

// FieldSelect punches the field-select frame (0300 | field<<3) and
// immediately backs it out of the checksum, so FIELD changes net to
// zero (spec.md §4.9, confirmed against palbart's
// "checksum -= value /* Field punches are not added to checksum */").
func (o *Writer) FieldSelect(field int) {
	v := byte(0300 | ((field & 07) << 3))
	o.frame(v)
	o.checksum = (o.checksum - int(v)) & 07777
}

// EndBinary punches the running checksum as two frames (BIN mode end
// of segment) and resets it, unless suppress is set (RIMPUNCH -1).
func (o *Writer) EndBinary(suppress bool) {
	if !o.dataEmitted {
		return
	}
	if !suppress {
		sum := o.Checksum()
		o.frame(byte((sum >> 6) & 077))
		o.frame(byte(sum & 077))
	}
	o.ResetChecksum()
	o.dataEmitted = false
}
