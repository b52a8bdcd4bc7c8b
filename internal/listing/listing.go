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

// Package listing formats pass-2 output: the paginated source listing
// (spec.md §6, 55 lines per page including a 5-line header) and the
// dedicated error file (one long-form line per diagnostic, deleted at
// end of run if no errors occurred). Styled after the teacher's
// util/card line-oriented text emitters, adapted from 80-column card
// images to listing pages.
package listing

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// LinesPerPage is the total page length including the header.
const LinesPerPage = 55

// HeaderLines is the number of lines the header occupies.
const HeaderLines = 5

// Style selects how a code line's location/value column is rendered.
type Style int

const (
	// Blank prints only the line number and source text.
	Blank Style = iota
	// ValOnly prints "val" with no location (for "=" and "*" lines).
	ValOnly
	// LocVal prints "loc val" beside the source text.
	LocVal
	// LocValNoSource prints "loc val" with no source (literal-pool dumps).
	LocValNoSource
)

// Line is one rendered statement: its raw source plus however it
// should present in the loc/val gutter, followed by any errors.
type Line struct {
	Number   int
	Style    Style
	Loc      int
	Val      int
	Indirect bool // append "@" to Val: auto-generated indirect literal
	Source   string
	Errors   []Annotation
}

// Annotation is one error marker under a listing line.
type Annotation struct {
	Tag string // two-character tag, e.g. "UA"
	Col int    // 0-based column of the caret
}

// Writer paginates listing lines to an underlying io.Writer.
type Writer struct {
	w        *bufio.Writer
	title    string
	filename string
	page     int
	lineNo   int // line within current page, including header
	suppress bool

	capture   bool
	pageLines map[int][]string
}

// NewWriter returns a listing writer for filename, titled initially
// with filename itself (TITLE overrides this).
func NewWriter(w io.Writer, filename string) *Writer {
	lw := &Writer{w: bufio.NewWriter(w), filename: filename, title: filename}
	lw.page = 1
	lw.lineNo = LinesPerPage // forces a header before the first line
	return lw
}

// SetTitle installs a new page title and forces a page break (TITLE
// pseudo-op, spec.md §4.6).
func (lw *Writer) SetTitle(title string) {
	lw.title = title
	lw.forceBreak()
}

// Suppress toggles listing output (XLIST pseudo-op). While suppressed,
// Emit is a no-op but page/line bookkeeping still advances so output
// resumes in the right place.
func (lw *Writer) Suppress(on bool) { lw.suppress = on }

// EnablePageCapture retains a copy of every LocVal/LocValNoSource line
// keyed by its 12-bit-page (loc>>7), for the -i browser's `page N`
// command. Off by default: a non-interactive run never pays for it.
func (lw *Writer) EnablePageCapture() {
	lw.capture = true
	lw.pageLines = make(map[int][]string)
}

// PageLines returns the captured listing lines for 12-bit page page,
// in emission order. Empty if capture was never enabled or the page
// was never touched.
func (lw *Writer) PageLines(page int) []string {
	return lw.pageLines[page]
}

func (lw *Writer) forceBreak() { lw.lineNo = LinesPerPage }

func (lw *Writer) header() {
	fmt.Fprintf(lw.w, "%s\tPage %d\n\n", lw.title, lw.page)
	fmt.Fprintf(lw.w, "%s\n\n\n", lw.filename)
	lw.lineNo = HeaderLines
	lw.page++
}

// Emit renders one code line, paginating as needed.
func (lw *Writer) Emit(l Line) {
	if lw.lineNo >= LinesPerPage {
		if !lw.suppress {
			lw.header()
		} else {
			lw.lineNo = HeaderLines
			lw.page++
		}
	}
	if !lw.suppress {
		lw.writeLine(l)
	}
	lw.lineNo++
	for range l.Errors {
		if !lw.suppress {
			lw.lineNo++
		}
	}
}

func (lw *Writer) writeLine(l Line) {
	var text string
	switch l.Style {
	case Blank:
		text = fmt.Sprintf("%5d\t\t%s\n", l.Number, l.Source)
	case ValOnly:
		text = fmt.Sprintf("%5d\t%04o\t%s\n", l.Number, l.Val&07777, l.Source)
	case LocVal:
		ind := ""
		if l.Indirect {
			ind = "@"
		}
		text = fmt.Sprintf("%5d\t%05o %04o%s\t%s\n", l.Number, l.Loc&077777, l.Val&07777, ind, l.Source)
	case LocValNoSource:
		text = fmt.Sprintf("     \t%05o %04o\n", l.Loc&077777, l.Val&07777)
	}
	fmt.Fprint(lw.w, text)
	if lw.capture && (l.Style == LocVal || l.Style == LocValNoSource) {
		page := l.Loc >> 7
		lw.pageLines[page] = append(lw.pageLines[page], text)
	}
	for _, a := range l.Errors {
		fmt.Fprintf(lw.w, "\t\t%s%*s^\n", a.Tag, a.Col, "")
	}
}

// Flush flushes buffered output.
func (lw *Writer) Flush() error { return lw.w.Flush() }

// ErrorEntry is one diagnostic destined for the dedicated error file.
type ErrorEntry struct {
	Line int
	Col  int
	Text string
	Loc  int
}

// ErrorFile accumulates long-form diagnostics and writes them on
// Close, per the format in spec.md §6:
//
//	filename(line:col) : error:  <text> at Loc = <octal5>
//
// It is deleted if no entries were ever recorded.
type ErrorFile struct {
	path    string
	f       *os.File
	w       *bufio.Writer
	entries int
}

// CreateErrorFile opens (truncating) the error file at path.
func CreateErrorFile(path string) (*ErrorFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &ErrorFile{path: path, f: f, w: bufio.NewWriter(f)}, nil
}

// Write appends one diagnostic line for filename.
func (ef *ErrorFile) Write(filename string, e ErrorEntry) {
	fmt.Fprintf(ef.w, "%s(%d:%d) : error:  %s at Loc = %05o\n", filename, e.Line, e.Col, e.Text, e.Loc&077777)
	ef.entries++
}

// Close flushes and closes the file. hadOtherErrors reports whether
// errors occurred anywhere outside what this file recorded (namely
// pass 1, since Write is only ever called during pass 2); the file is
// deleted only when both this file is empty and hadOtherErrors is
// false, matching "if (errors == 0 && errors_pass_1 == 0)
// remove(errorpathname)".
func (ef *ErrorFile) Close(hadOtherErrors bool) error {
	if err := ef.w.Flush(); err != nil {
		ef.f.Close()
		return err
	}
	if err := ef.f.Close(); err != nil {
		return err
	}
	if ef.entries == 0 && !hadOtherErrors {
		return os.Remove(ef.path)
	}
	return nil
}

// Entries reports how many diagnostics were written so far.
func (ef *ErrorFile) Entries() int { return ef.entries }
