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

package engine

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rcornwell/pal8/internal/lineio"
	"github.com/rcornwell/pal8/internal/object"
)

// assembleBIN runs both passes of src through a fresh engine and
// returns the BIN object bytes, mirroring spec.md §8's end-to-end
// scenarios.
func assembleBIN(t *testing.T, src string) []byte {
	t.Helper()
	s := New()
	s.LiteralsOn = true

	if !s.RunPass("t.pal", strings.NewReader(src)) {
		t.Fatalf("pass 1 did not terminate with $: %q", src)
	}

	var obj bytes.Buffer
	s.Pass2 = true
	s.Obj = object.NewWriter(&obj, object.BIN)
	if !s.RunPass("t.pal", strings.NewReader(src)) {
		t.Fatalf("pass 2 did not terminate with $: %q", src)
	}
	return obj.Bytes()
}

func TestOriginAndClaChecksum(t *testing.T) {
	out := assembleBIN(t, "*0200\nCLA\n$")
	// origin 0200 -> 0102,0000; word 07200 -> 0072,0000; checksum 0174 -> 0001,0074
	want := []byte{0102, 0000, 0072, 0000, 0001, 0074}
	if !bytes.Equal(out, want) {
		t.Fatalf("got % o, want % o", out, want)
	}
}

func TestCurrentPageDirectSelfReference(t *testing.T) {
	s := New()
	s.LiteralsOn = true
	src := "*0200\nA, TAD A\n$"
	if !s.RunPass("t.pal", strings.NewReader(src)) {
		t.Fatal("pass 1 did not terminate")
	}
	var obj bytes.Buffer
	s.Pass2 = true
	s.Obj = object.NewWriter(&obj, object.BIN)
	if !s.RunPass("t.pal", strings.NewReader(src)) {
		t.Fatal("pass 2 did not terminate")
	}
	// word should be 1200 (TAD=01000 | PageBit 0200 | offset 0)
	data := obj.Bytes()
	// skip origin pair, read data pair
	hi, lo := data[2], data[3]
	got := int(hi)<<6 | int(lo)
	if got != 01200 {
		t.Fatalf("word = %04o, want 01200", got)
	}
}

func TestDecimalOctalRadixSwitch(t *testing.T) {
	s := New()
	src := "DECIMAL\nA=10\nOCTAL\nB=10\n$"
	if !s.RunPass("t.pal", strings.NewReader(src)) {
		t.Fatal("pass did not terminate")
	}
	aIdx, ok := s.Sym.Lookup("A")
	if !ok {
		t.Fatal("A not defined")
	}
	bIdx, ok := s.Sym.Lookup("B")
	if !ok {
		t.Fatal("B not defined")
	}
	if s.Sym.Symbol(aIdx).Value != 012 {
		t.Fatalf("A = %o, want 012", s.Sym.Symbol(aIdx).Value)
	}
	if s.Sym.Symbol(bIdx).Value != 010 {
		t.Fatalf("B = %o, want 010", s.Sym.Symbol(bIdx).Value)
	}
}

func TestIfdefIfndefConsistentAcrossPasses(t *testing.T) {
	s := New()
	s.LiteralsOn = true
	src := "*0200\nIFDEF UND <CLA>\nIFNDEF UND <CMA>\n$"
	if !s.RunPass("t.pal", strings.NewReader(src)) {
		t.Fatal("pass 1 did not terminate")
	}
	var obj bytes.Buffer
	s.Pass2 = true
	s.Obj = object.NewWriter(&obj, object.BIN)
	if !s.RunPass("t.pal", strings.NewReader(src)) {
		t.Fatal("pass 2 did not terminate")
	}
	data := obj.Bytes()
	// exactly one word emitted: CMA = 07040
	if len(data) != 6 { // origin pair + word pair + checksum pair
		t.Fatalf("expected exactly one word emitted, got % o", data)
	}
	hi, lo := data[2], data[3]
	got := int(hi)<<6 | int(lo)
	if got != 07040 {
		t.Fatalf("word = %04o, want 07040 (CMA)", got)
	}
}

func TestDublEmitsTwoWords(t *testing.T) {
	out := assembleBIN(t, "*0200\nDUBL\n-1\n$")
	// two words of all-ones: 7777,7777
	hi1 := int(out[2])<<6 | int(out[3])
	hi2 := int(out[4])<<6 | int(out[5])
	if hi1 != 07777 || hi2 != 07777 {
		t.Fatalf("words = %04o, %04o, want 7777, 7777", hi1, hi2)
	}
}

func TestTextPacksTwoCharsPerWord(t *testing.T) {
	out := assembleBIN(t, "*0200\nTEXT /AB/\n$")
	word := int(out[2])<<6 | int(out[3])
	if word != 0102 {
		t.Fatalf("word = %04o, want 0102", word)
	}
}

// TestMRIOperandWithOffsetResolvesAsChain covers the OR-list bug: an
// MRI operand with a trailing "+n" must be evaluated as a full
// left-to-right chain (getExpr), not a single primary term, or the
// "+2" is silently dropped and then mis-fed into the next OR-list
// member as a bogus illegal-character token.
func TestMRIOperandWithOffsetResolvesAsChain(t *testing.T) {
	out := assembleBIN(t, "*0200\nJMP .+2\n$")
	// JMP=05000, same-page direct reference to 0202 -> PageBit|offset(2).
	word := int(out[2])<<6 | int(out[3])
	if word != 05202 {
		t.Fatalf("word = %04o, want 05202", word)
	}
}

// TestLabelPlusOffsetOperandResolvesAsChain covers the same bug for a
// plain (non-MRI) label-plus-offset operand.
func TestLabelPlusOffsetOperandResolvesAsChain(t *testing.T) {
	out := assembleBIN(t, "*0200\nPTR, 0\nDCA PTR+1\n$")
	// PTR=0200, PTR+1=0201, same page as clc(0201) -> PageBit|offset(1).
	word := int(out[4])<<6 | int(out[5])
	if word != 03201 {
		t.Fatalf("word = %04o, want 03201", word)
	}
}

// TestCurrentPageBracketRedirectsToPageZeroPool covers insertLiteral's
// page-zero rule: "(v)" ordinarily targets the current-page pool, but
// when the current page is page zero itself there is no separate
// current-page pool to use, so the literal must land in PZ.
func TestCurrentPageBracketRedirectsToPageZeroPool(t *testing.T) {
	s := New()
	s.LiteralsOn = true
	s.Clc = 0010 // page zero
	s.Lines = lineio.NewSource(strings.NewReader("TAD (0123)\n"))
	if !s.AdvanceLine() {
		t.Fatal("no line to scan")
	}
	s.ClearLine()
	s.statement("t.pal")

	if !s.CP.Empty() {
		t.Fatal("expected the current-page pool untouched on page zero")
	}
	if s.PZ.Empty() {
		t.Fatal("expected the bracket literal to redirect into the page-zero pool")
	}
}

// TestNoSpuriousZeroPageOverflowOnNonZeroPage covers
// testForLiteralCollision's branch: growth on a non-zero page of field
// 0 must only be checked against that page's own current-page pool,
// never against the page-zero pool's unrelated high-water mark.
func TestNoSpuriousZeroPageOverflowOnNonZeroPage(t *testing.T) {
	s := New()
	s.PZ.Insert(01) // fills the page-zero pool's high-water mark to 127
	s.Clc = 0377    // last in-page address of page 1, field 0 -- not page zero
	s.checkPoolCollision("t.pal")
	if s.TotalErrors() != 0 {
		t.Fatalf("expected no errors from page-1 growth reusing page zero's threshold, got %d", s.TotalErrors())
	}
}

func TestUndefinedSymbolReportedOnlyInPass2(t *testing.T) {
	s := New()
	s.LiteralsOn = true
	src := "*0200\nTAD FOO\n$"
	s.RunPass("t.pal", strings.NewReader(src))
	if s.TotalErrors() != 0 {
		t.Fatalf("pass 1 should not report undefined symbols, got %d errors", s.TotalErrors())
	}
	s.Pass2 = true
	var obj bytes.Buffer
	s.Obj = object.NewWriter(&obj, object.BIN)
	s.RunPass("t.pal", strings.NewReader(src))
	if s.TotalErrors() == 0 {
		t.Fatal("pass 2 should report undefined symbol FOO")
	}
}
