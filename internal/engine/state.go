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

// Package engine is the two-pass assembly driver: it threads the
// symbol table, literal pools, cross-reference table, object encoder,
// and listing writer through lexical scanning, expression evaluation,
// and pseudo-op dispatch for one source line at a time. It replaces
// the teacher's process-wide emulator state (emu/assemble) with an
// explicit engine value, per the "global state" design note: every
// mutation happens through a *State receiver instead of a package
// global.
package engine

import (
	"github.com/rcornwell/pal8/internal/lineio"
	"github.com/rcornwell/pal8/internal/listing"
	"github.com/rcornwell/pal8/internal/literal"
	"github.com/rcornwell/pal8/internal/object"
	"github.com/rcornwell/pal8/internal/symtab"
	"github.com/rcornwell/pal8/internal/xref"
)

// Page bits, shared by the expression evaluator and pseudo-op table.
const (
	PageBit     = 0200
	IndirectBit = 0400
	FieldShift  = 12
	FieldMask   = 070000
	AddrMask    = 07777
)

// Diagnostic is the error-return value spec.md §9 calls for in place
// of exceptions: a tag, the offending column, human text, and the
// location the statement assembled at.
type Diagnostic struct {
	Tag    string
	Col    int
	Text   string
	Symbol string
	Loc    int
}

// Known two-character listing tags (spec.md §7).
const (
	TagDuplicate       = "DT"
	TagIllegalChar     = "IC"
	TagIllegalRedefine = "ID"
	TagIllegalEquals   = "IE"
	TagIllegalIndirect = "II"
	TagIllegalRef      = "IR"
	TagNoEOF           = "ND"
	TagPageFull        = "PE"
	TagZeroPageFull    = "ZE"
	TagRedefined       = "RD"
	TagTableFull       = "ST"
	TagUndefined       = "UA"
)

// ErrSymbolTableFull is an error value for a full symbol table. No
// engine path returns it: a full table is reported as an ST diagnostic
// and the pass goes on.
type ErrSymbolTableFull struct{}

func (ErrSymbolTableFull) Error() string { return "Symbol Table Full" }

// State is the explicit engine value: every component the pass driver
// and pseudo-op dispatcher touch, gathered so no package-level global
// is needed.
type State struct {
	Sym  *symtab.Table
	Xref *xref.Table
	PZ   *literal.Pool // page-zero literal pool
	CP   *literal.Pool // current-page literal pool

	Obj  *object.Writer  // nil during pass 1 (spec.md §5: opened at pass 2 start)
	List *listing.Writer // nil during pass 1, or while suppressed
	Err  *listing.ErrorFile

	// Lines and Cur are the shared mutable cursor every scanning
	// method reads/advances, rather than a line parameter threaded
	// call-to-call: conditional-assembly blocks (spec.md §4.7) can
	// span multiple physical lines, and only a cursor owned by the
	// engine value lets a pseudo-op pull a fresh line mid-statement
	// without losing the pass driver's place.
	Lines *lineio.Source
	Cur   *lineio.Line

	Pass2 bool

	Clc        int  // 15-bit location counter (field<<12 | in-field addr)
	Reloc      int  // relocation offset
	Radix      int  // 8 or 10
	LiteralsOn bool
	RimMode    bool // true = RIM output, false = BIN

	Lineno      int
	ErrorInLine bool
	LineErrors  []Diagnostic

	TitlePending bool
	XlistDepth   int // >0 suppresses listing (nests with EJECT/TITLE semantics)

	totalErrors int
	priorErrors int // errors from passes already completed (spec.md §7: pass 1 errors still count)
}

// Field returns the current 3-bit field selector.
func (s *State) Field() int { return (s.Clc >> FieldShift) & 07 }

// FieldLC returns the 12-bit in-field address.
func (s *State) FieldLC() int { return s.Clc & AddrMask }

// New builds a fresh engine with an installed, sealed permanent
// symbol table, matching spec.md §3's "symbols created on first
// reference" lifecycle and the FIXTAB-sealed permanent prefix.
func New() *State {
	s := &State{
		Sym:   symtab.Permanent(),
		Xref:  xref.New(),
		PZ:    literal.NewPool(),
		CP:    literal.NewPool(),
		Radix: 8,
		Clc:   0200,
	}
	return s
}

// Reset prepares the state for pass 2: pools and per-line counters
// are cleared, but the symbol table, its values, and the sized
// cross-reference array persist (spec.md §5: "both passes share the
// symbol table and cross-reference index space"). Errors already
// counted carry forward into priorErrors: spec.md §7 counts pass 1
// errors in the final report even though they never suppress pass 2.
func (s *State) Reset() {
	s.priorErrors += s.totalErrors
	s.PZ.Reset()
	s.CP.Reset()
	s.Clc = 0200
	s.Reloc = 0
	s.Radix = 8
	s.Lineno = 0
	s.totalErrors = 0
}

// AdvanceLine pulls the next physical line from Lines into Cur,
// bumping Lineno. It returns false at end of input.
func (s *State) AdvanceLine() bool {
	l, err := s.Lines.Next()
	if err != nil {
		return false
	}
	s.Cur = l
	s.Lineno = l.Number
	return true
}

// ClcAdvance increments the in-field address by one, preserving field
// bits, per spec.md §4.8.
func (s *State) ClcAdvance() {
	s.Clc = (s.Clc & FieldMask) | ((s.Clc + 1) & AddrMask)
}

// Report records a diagnostic against the current line. In pass 2 it
// also writes the long-form entry to the error file, per spec.md §7.
// No tag stops the pass: callers that report ST (symbol table full)
// return a zero value and scanning continues.
func (s *State) Report(filename string, col int, tag, text, symbol string) {
	s.ErrorInLine = true
	s.totalErrors++
	d := Diagnostic{Tag: tag, Col: col, Text: text, Symbol: symbol, Loc: s.Clc}
	s.LineErrors = append(s.LineErrors, d)
	if s.Pass2 && s.Err != nil {
		s.Err.Write(filename, listing.ErrorEntry{Line: s.Lineno, Col: col, Text: text, Loc: s.Clc})
	}
}

// TotalErrors returns the running error count across every pass run
// so far (priorErrors carried across Reset plus the current pass).
func (s *State) TotalErrors() int { return s.priorErrors + s.totalErrors }

// PriorErrors returns the error count carried forward from passes
// already completed (errors_pass_1 in the original): pass 1's errors
// never reach the error file, since Report only writes to it during
// pass 2, so callers deciding whether to keep an empty error file must
// consult this separately from what the file itself recorded.
func (s *State) PriorErrors() int { return s.priorErrors }

// ClearLine resets the per-line diagnostic buffer before scanning a
// new line.
func (s *State) ClearLine() {
	s.ErrorInLine = false
	s.LineErrors = s.LineErrors[:0]
}
