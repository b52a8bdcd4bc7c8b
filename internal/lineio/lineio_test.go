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

package lineio

import (
	"io"
	"strings"
	"testing"
)

func TestExpandTabs(t *testing.T) {
	cases := map[string]string{
		"A\tB":     "A       B",
		"\tX":      "        X",
		"AB\tCD":   "AB      CD",
		"ABCDEFGH\tX": "ABCDEFGH        X",
	}
	for in, want := range cases {
		if got := expandTabs(in); got != want {
			t.Errorf("expandTabs(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSourceStripsCRAndCountsLines(t *testing.T) {
	src := NewSource(strings.NewReader("FIRST\r\nSECOND\n"))
	l1, err := src.Next()
	if err != nil {
		t.Fatal(err)
	}
	if l1.Text != "FIRST" || l1.Number != 1 {
		t.Fatalf("got %q line %d", l1.Text, l1.Number)
	}
	l2, err := src.Next()
	if err != nil {
		t.Fatal(err)
	}
	if l2.Text != "SECOND" || l2.Number != 2 {
		t.Fatalf("got %q line %d", l2.Text, l2.Number)
	}
	if _, err := src.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestLineCursor(t *testing.T) {
	l := NewLine("AB", 1)
	if l.Peek() != 'A' {
		t.Fatal("expected A at cursor 0")
	}
	l.Advance(1)
	if l.Peek() != 'B' {
		t.Fatal("expected B at cursor 1")
	}
	l.Advance(1)
	if !l.AtEnd() || l.Peek() != NUL {
		t.Fatal("expected end of line sentinel")
	}
}
