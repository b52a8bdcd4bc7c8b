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
	"io"

	"github.com/rcornwell/pal8/internal/lexer"
	"github.com/rcornwell/pal8/internal/lineio"
	"github.com/rcornwell/pal8/internal/listing"
	"github.com/rcornwell/pal8/internal/symtab"
)

// RunPass runs one pass of the engine over src. Pass 1 establishes
// symbol values and literal-pool shapes; pass 2, run against a fresh
// reader over the same source (the caller reopens/rewinds it and
// sets s.Obj/s.List/s.Err per spec.md §5's "opened at pass 2 start"),
// emits object code, listing lines, and error messages. filename is
// used only
// to shape diagnostic text. It returns false if the program never hit
// a terminating `$` (spec.md's `end_of_file` / ND condition).
func (s *State) RunPass(filename string, src io.Reader) bool {
	s.Lines = lineio.NewSource(src)
	s.Reset()
	if !s.AdvanceLine() {
		return false
	}

	for {
		s.ClearLine()
		if s.statement(filename) {
			return true // hit terminating $
		}
		if !s.AdvanceLine() {
			s.synthesizeMissingDollar(filename)
			return false
		}
	}
}

// synthesizeMissingDollar reports ND (spec.md §4.8's "end_of_file"
// handling: a synthetic `$` line with error_in_line set).
func (s *State) synthesizeMissingDollar(filename string) {
	s.ClearLine()
	s.Report(filename, 0, TagNoEOF, "No $ at end of file", "")
	s.flushCurrentPagePool()
	s.flushZeroPagePool()
}

// statement scans and dispatches every top-level form on the current
// line, repeating until end of line or a terminating `$`, per spec.md
// §4.8. It returns true when `$` ends the program.
func (s *State) statement(filename string) bool {
	for {
		for isLeadingBlank(s.Cur.Peek()) {
			s.Cur.Advance(1)
		}
		c := s.Cur.Peek()
		switch {
		case c == lineio.NUL:
			return false
		case c == ';':
			s.Cur.Advance(1)
			continue
		case c == '/':
			return false // comment runs to end of line
		case c == '$':
			s.Cur.Advance(1)
			s.flushCurrentPagePool()
			s.flushZeroPagePool()
			if s.Obj != nil && !s.RimMode {
				s.Obj.EndBinary(false)
			}
			return true
		case c == '*':
			s.Cur.Advance(1)
			s.statementOrigin(filename)
			continue
		}

		save := s.Cur.Col()
		lx := s.next(filename)
		if lx.Kind == lexer.EOL {
			return false
		}

		switch {
		case lx.Kind == lexer.Ident && s.Cur.Peek() == ',':
			s.Cur.Advance(1)
			s.statementLabel(filename, lx)
		case lx.Kind == lexer.Ident && s.Cur.Peek() == '=':
			s.Cur.Advance(1)
			s.statementAssign(filename, lx)
		case lx.Kind == lexer.Ident && s.isPseudo(lx.Text):
			if s.Dispatch(filename, symtab.Normalize(lx.Text)) {
				continue
			}
			return false
		default:
			s.Cur.SetCol(save)
			val := s.exprs(filename)
			s.emitWord(filename, val)
		}
	}
}

// isLeadingBlank mirrors the lexer's own leading-blank skip (spec.md
// §4.1) so the statement dispatcher's special-character check isn't
// fooled by indentation.
func isLeadingBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\f' || c == '>'
}

func (s *State) isPseudo(name string) bool {
	idx, ok := s.Sym.Lookup(name)
	if !ok {
		return false
	}
	return s.Sym.Symbol(idx).Attr&symtab.Pseudo != 0
}

// statementOrigin handles `*expr` (spec.md §4.8): compute the new clc,
// flush the current-page pool if the page changed, and emit a BIN
// origin frame.
func (s *State) statementOrigin(filename string) {
	v, _ := s.expr(filename)
	newclc := (v & AddrMask) | (s.Field() << FieldShift)
	if (newclc & 07600) != (s.Clc & 07600) {
		s.flushCurrentPagePool()
	}
	s.Clc = newclc - s.Reloc
	if s.Obj != nil && !s.RimMode {
		s.Obj.Origin(s.Clc)
	}
}

// statementLabel handles `name,` (spec.md §4.8): define a LABEL at
// clc+reloc, reporting duplicate_label on a differing redefinition.
func (s *State) statementLabel(filename string, lx lexer.Lexeme) {
	idx, err := s.Sym.LookupOrInsert(lx.Text)
	if err != nil {
		s.Report(filename, lx.Col, TagTableFull, err.Error(), lx.Text)
		return
	}
	res := s.Sym.Define(idx, s.Clc+s.Reloc, symtab.Label, s.Pass2)
	if res.Duplicate {
		s.Report(filename, lx.Col, TagDuplicate, "Duplicate label", lx.Text)
	}
}

// statementAssign handles `name=expr` (spec.md §4.8): define a
// DEFINED symbol with the 12-bit expression value, reporting
// redefined_symbol on a differing pass-2 redefinition.
func (s *State) statementAssign(filename string, lx lexer.Lexeme) {
	val, _ := s.expr(filename)
	idx, err := s.Sym.LookupOrInsert(lx.Text)
	if err != nil {
		s.Report(filename, lx.Col, TagTableFull, err.Error(), lx.Text)
		return
	}
	res := s.Sym.Define(idx, val, 0, s.Pass2)
	if res.Redefined {
		s.Report(filename, lx.Col, TagRedefined, "Redefined symbol", lx.Text)
	}
	if s.List != nil {
		s.List.Emit(listing.Line{Number: s.Lineno, Style: listing.ValOnly, Val: val & AddrMask})
	}
}
