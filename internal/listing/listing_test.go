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

package listing

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmitLocValLine(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, "test.pal")
	w.Emit(Line{Number: 10, Style: LocVal, Loc: 0200, Val: 07200, Source: "CLA"})
	w.Flush()
	out := buf.String()
	if !strings.Contains(out, "CLA") {
		t.Fatalf("expected source text in output: %q", out)
	}
	if !strings.Contains(out, "Page 1") {
		t.Fatalf("expected page header: %q", out)
	}
}

func TestIndirectSuffix(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, "t.pal")
	w.Emit(Line{Number: 1, Style: LocVal, Loc: 0200, Val: 0600, Indirect: true, Source: "TAD I X"})
	w.Flush()
	if !strings.Contains(buf.String(), "@") {
		t.Fatalf("expected @ suffix for auto-indirect: %q", buf.String())
	}
}

func TestPageBreakAfterLinesPerPage(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, "t.pal")
	for i := 0; i < LinesPerPage+2; i++ {
		w.Emit(Line{Number: i, Style: Blank, Source: "NOP"})
	}
	w.Flush()
	if strings.Count(buf.String(), "Page ") < 2 {
		t.Fatalf("expected a second page header after overflow")
	}
}

func TestTitleForcesBreak(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, "t.pal")
	w.Emit(Line{Number: 1, Style: Blank, Source: "X"})
	w.SetTitle("MY PROGRAM")
	w.Emit(Line{Number: 2, Style: Blank, Source: "Y"})
	w.Flush()
	if !strings.Contains(buf.String(), "MY PROGRAM") {
		t.Fatal("expected new title to appear")
	}
}

func TestPageCaptureKeyedByLocShiftSeven(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, "t.pal")
	w.EnablePageCapture()
	w.Emit(Line{Number: 1, Style: LocVal, Loc: 0200, Val: 07200, Source: "CLA"})
	w.Emit(Line{Number: 2, Style: LocVal, Loc: 0377, Val: 07040, Source: "CMA"})
	w.Flush()
	lines := w.PageLines(0200 >> 7)
	if len(lines) != 2 {
		t.Fatalf("expected both lines on page 1, got %d", len(lines))
	}
	if w.PageLines(5) != nil {
		t.Fatal("expected no lines captured for an untouched page")
	}
}

func TestPageCaptureOffByDefault(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, "t.pal")
	w.Emit(Line{Number: 1, Style: LocVal, Loc: 0200, Val: 07200, Source: "CLA"})
	w.Flush()
	if w.PageLines(0200>>7) != nil {
		t.Fatal("expected no capture without EnablePageCapture")
	}
}

func TestErrorFileDeletedWhenEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.err")
	ef, err := CreateErrorFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := ef.Close(false); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected error file to be removed when no entries were written")
	}
}

func TestErrorFileKeptWhenPriorPassHadErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.err")
	ef, err := CreateErrorFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := ef.Close(true); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal("expected error file to survive when pass 1 had errors, even though this file recorded none")
	}
}

func TestErrorFileKeptWithEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.err")
	ef, err := CreateErrorFile(path)
	if err != nil {
		t.Fatal(err)
	}
	ef.Write("test.pal", ErrorEntry{Line: 5, Col: 3, Text: "undefined symbol", Loc: 0200})
	if err := ef.Close(false); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "test.pal(5:3) : error:  undefined symbol at Loc = 00200") {
		t.Fatalf("unexpected error line: %q", string(data))
	}
}
