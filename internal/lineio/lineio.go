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

// Package lineio supplies the PAL-8 character source: it reads the
// source file one line at a time, expands tabs to 8-column stops,
// strips a trailing carriage return, and exposes the result as an
// indexable character buffer with a column cursor, per spec.md §2.1
// and §4.1.
package lineio

import (
	"bufio"
	"io"
)

const tabStop = 8

// NUL is the sentinel the lexer treats as end-of-line when the cursor
// runs past the text of the line (spec.md §4.1).
const NUL = 0

// Source reads lines from an underlying reader, normalizing tabs and
// line endings.
type Source struct {
	scan   *bufio.Scanner
	lineno int
}

// NewSource wraps r as a PAL-8 character source.
func NewSource(r io.Reader) *Source {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 4096), 1<<20)
	return &Source{scan: s}
}

// Next reads the next physical line, expands tabs, and strips a
// trailing CR. It returns io.EOF when the underlying reader is
// exhausted.
func (s *Source) Next() (*Line, error) {
	if !s.scan.Scan() {
		if err := s.scan.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	s.lineno++
	raw := s.scan.Text()
	if n := len(raw); n > 0 && raw[n-1] == '\r' {
		raw = raw[:n-1]
	}
	return NewLine(expandTabs(raw), s.lineno), nil
}

// LineNumber returns the number of lines consumed so far.
func (s *Source) LineNumber() int { return s.lineno }

func expandTabs(s string) string {
	out := make([]byte, 0, len(s)+8)
	col := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\t' {
			spaces := tabStop - (col % tabStop)
			for j := 0; j < spaces; j++ {
				out = append(out, ' ')
			}
			col += spaces
			continue
		}
		out = append(out, c)
		col++
	}
	return string(out)
}

// Line is an indexable character buffer with a column cursor, the
// unit the lexer scans over.
type Line struct {
	Text   string
	Number int
	cc     int // column cursor
}

// NewLine wraps text (already tab-expanded) as a cursor-addressable
// line numbered lineno.
func NewLine(text string, lineno int) *Line {
	return &Line{Text: text, Number: lineno}
}

// Col returns the current zero-based column cursor.
func (l *Line) Col() int { return l.cc }

// SetCol repositions the cursor (used to re-scan a term, e.g. for
// conditional-assembly block skipping).
func (l *Line) SetCol(col int) { l.cc = col }

// Peek returns the character at the cursor without advancing, or NUL
// at end of line.
func (l *Line) Peek() byte {
	if l.cc >= len(l.Text) {
		return NUL
	}
	return l.Text[l.cc]
}

// At returns the character at column col, or NUL past the end.
func (l *Line) At(col int) byte {
	if col < 0 || col >= len(l.Text) {
		return NUL
	}
	return l.Text[col]
}

// Advance moves the cursor forward n columns.
func (l *Line) Advance(n int) { l.cc += n }

// AtEnd reports whether the cursor has reached end of line.
func (l *Line) AtEnd() bool { return l.cc >= len(l.Text) }

// Remainder returns the unconsumed tail of the line from the cursor.
func (l *Line) Remainder() string {
	if l.cc >= len(l.Text) {
		return ""
	}
	return l.Text[l.cc:]
}
