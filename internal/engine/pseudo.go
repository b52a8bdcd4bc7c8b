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
	"github.com/rcornwell/pal8/internal/lexer"
	"github.com/rcornwell/pal8/internal/lineio"
	"github.com/rcornwell/pal8/internal/listing"
	"github.com/rcornwell/pal8/internal/literal"
	"github.com/rcornwell/pal8/internal/object"
	"github.com/rcornwell/pal8/internal/symtab"
)

// Dispatch runs the pseudo-op named by name (already uppercased and
// truncated to symtab.NameLen), scanning from the engine's current
// line. It returns continueLine = true to keep scanning the current
// line, matching spec.md §4.6's "Returns TRUE to continue scanning
// the current line and FALSE to read the next line" contract.
func (s *State) Dispatch(filename string, name string) (continueLine bool) {
	switch name {
	case "DECIMA":
		s.Radix = 10
	case "OCTAL":
		s.Radix = 8
	case "PAGE":
		s.pseudoPage(filename)
	case "SEGMNT":
		s.pseudoSegmnt(filename)
	case "FIELD":
		s.pseudoField(filename)
	case "FIXMRI":
		s.pseudoFixmri(filename)
	case "FIXTAB":
		s.Sym.Sort()
		s.Sym.FixTab()
	case "EXPUNG":
		if !s.Pass2 {
			s.Sym.Expunge()
			s.installDirectives()
		}
	case "IFDEF":
		return s.pseudoConditional(filename, func(defined bool) bool { return defined })
	case "IFNDEF":
		return s.pseudoConditional(filename, func(defined bool) bool { return !defined })
	case "IFZERO":
		return s.pseudoConditionalExpr(filename, func(v int) bool { return v == 0 })
	case "IFNZER":
		return s.pseudoConditionalExpr(filename, func(v int) bool { return v != 0 })
	case "DUBL":
		return s.emitDubl(filename)
	case "FLTG":
		return s.emitFltg(filename)
	case "TEXT":
		s.pseudoText(filename)
	case "ZBLOCK":
		s.pseudoZblock(filename)
	case "TITLE":
		s.pseudoTitle(filename)
	case "EJECT":
		if s.List != nil {
			s.List.SetTitle("")
		}
	case "XLIST":
		s.pseudoXlist(filename)
	case "BINPUN":
		s.pseudoBinpunch(filename)
	case "RIMPUN":
		s.pseudoRimpunch(filename)
	case "ENPUNC":
		if s.Obj != nil {
			s.Obj.Enable()
		}
	case "NOPUNC":
		if s.Obj != nil {
			s.Obj.Disable()
		}
	case "RELOC":
		s.pseudoReloc(filename)
	case "PAUSE":
		// no-op; historically single-stepped the physical reader.
	case "BANK":
		s.Report(filename, s.Cur.Col(), TagIllegalChar, "No such pseudo-op", "")
	}
	return false
}

// flushPool emits a literal pool's live entries (spec.md §4.5
// punchLiteralPool): an origin in BIN mode, then one word per live
// slot from loc to 127, as a listing line with no source text.
func (s *State) flushPool(pool *literal.Pool, pageBase int) {
	if pool.Empty() {
		return
	}
	if s.Obj != nil && !s.RimMode {
		s.Obj.Origin(pageBase | 0200)
	}
	loc := pool.Loc()
	for _, v := range pool.Words() {
		if s.Obj != nil {
			s.Obj.Word(pageBase|loc, v)
		}
		if s.List != nil {
			s.List.Emit(listing.Line{Style: listing.LocValNoSource, Loc: pageBase | loc, Val: v})
		}
		loc++
	}
	pool.Reset()
}

func (s *State) flushCurrentPagePool() {
	s.flushPool(s.CP, s.Clc&07600)
}

func (s *State) flushZeroPagePool() {
	s.flushPool(s.PZ, s.Field()<<FieldShift)
}

func (s *State) pseudoPage(filename string) {
	s.flushCurrentPagePool()
	lx := s.next(filename)
	if lx.Kind == lexer.EOL {
		s.Clc = (s.Clc &^ 0177) + 0200
	} else {
		n := s.reEvalExpr(filename, lx)
		s.Clc = (s.Field() << FieldShift) | ((n & 037) << 7)
	}
	if s.Obj != nil && !s.RimMode {
		s.Obj.Origin(s.Clc)
	}
}

func (s *State) pseudoSegmnt(filename string) {
	s.flushCurrentPagePool()
	lx := s.next(filename)
	if lx.Kind == lexer.EOL {
		s.Clc = (s.Clc &^ 01777) + 02000
	} else {
		n := s.reEvalExpr(filename, lx)
		s.Clc = (s.Field() << FieldShift) | ((n & 3) << 10)
	}
}

func (s *State) pseudoField(filename string) {
	s.flushCurrentPagePool()
	s.flushZeroPagePool()
	if s.RimMode {
		s.Report(filename, s.Cur.Col(), TagIllegalChar, "FIELD illegal in RIM mode", "")
		return
	}
	lx := s.next(filename)
	n := 0
	if lx.Kind != lexer.EOL {
		n = s.reEvalExpr(filename, lx)
	}
	if n < 0 || n > 7 {
		s.Report(filename, lx.Col, TagIllegalChar, "Illegal field value", "")
		return
	}
	if s.Obj != nil {
		s.Obj.FieldSelect(n)
	}
	s.Clc = 0200 | (n << FieldShift)
	if s.Obj != nil {
		s.Obj.Origin(s.Clc)
	}
}

func (s *State) pseudoFixmri(filename string) {
	nameLx := s.next(filename)
	if nameLx.Kind != lexer.Ident {
		s.Report(filename, nameLx.Col, TagIllegalChar, "Expected symbol", "")
		return
	}
	eq := s.next(filename)
	if eq.Kind != lexer.Punct || eq.Text != "=" {
		s.Report(filename, eq.Col, TagIllegalEquals, "Expected =", "")
		return
	}
	val, _ := s.expr(filename)
	idx, err := s.Sym.LookupOrInsert(nameLx.Text)
	if err != nil {
		s.Report(filename, nameLx.Col, TagTableFull, err.Error(), nameLx.Text)
		return
	}
	s.Sym.Define(idx, val, symtab.MRI, s.Pass2)
}

// pseudoConditional handles IFDEF/IFNDEF: evaluate predicate over a
// symbol's defined-ness, then either consume the `<...>` block
// normally or skip it, per spec.md §4.7.
func (s *State) pseudoConditional(filename string, pred func(defined bool) bool) bool {
	nameLx := s.next(filename)
	idx, _ := s.Sym.LookupOrInsert(nameLx.Text)
	sym := s.Sym.Symbol(idx)
	// Pass 1 sets CONDITION at every definition and pass 2 clears it at
	// the definition site, so in pass 2 a CONDITION symbol has not been
	// reached yet; in pass 1 DEFINED alone decides.
	defined := sym.Attr&symtab.Defined != 0 && (!s.Pass2 || sym.Attr&symtab.Condition == 0)
	return s.conditionalBody(filename, pred(defined))
}

func (s *State) pseudoConditionalExpr(filename string, pred func(int) bool) bool {
	v, _ := s.expr(filename)
	return s.conditionalBody(filename, pred(v))
}

// conditionalBody expects `<` next; on take, consumes just that `<`
// and lets normal scanning continue inside the block. On skip, it
// scans forward counting nesting depth until the matching `>` (or a
// `$`, which also terminates the scan), crossing line boundaries by
// pulling fresh lines from s.Lines directly (spec.md §4.7) so the
// pass driver never sees the lines consumed mid-skip.
func (s *State) conditionalBody(filename string, take bool) bool {
	lx := s.next(filename)
	if lx.Kind != lexer.Punct || lx.Text != "<" {
		s.Report(filename, lx.Col, TagIllegalChar, "Expected <", "")
		return false
	}
	if take {
		return true
	}
	depth := 1
	for depth > 0 {
		if s.Cur.AtEnd() {
			if !s.AdvanceLine() {
				return false
			}
			continue
		}
		c := s.Cur.Peek()
		switch c {
		case '<':
			depth++
			s.Cur.Advance(1)
		case '>':
			depth--
			s.Cur.Advance(1)
		case '$':
			return false
		default:
			s.Cur.Advance(1)
		}
	}
	return true
}

// emitDubl emits DUBL constants, reading further lines at end of line,
// until a lexeme that is not a sign or digit run (left at the cursor
// for the pass driver) or end of input. It always returns true so the
// driver goes on scanning whatever line the cursor now sits on.
func (s *State) emitDubl(filename string) bool {
	for {
		save := s.Cur.Col()
		if lx := s.next(filename); lx.Kind == lexer.EOL {
			if !s.AdvanceLine() {
				return true
			}
			continue
		}
		s.Cur.SetCol(save)
		hi, lo, ok := s.DublWords(filename)
		if !ok {
			s.Cur.SetCol(save)
			return true
		}
		s.emitWord(filename, hi)
		s.emitWord(filename, lo)
	}
}

// emitFltg is emitDubl's counterpart for FLTG constants.
func (s *State) emitFltg(filename string) bool {
	for {
		for isLeadingBlank(s.Cur.Peek()) {
			s.Cur.Advance(1)
		}
		if s.Cur.AtEnd() {
			if !s.AdvanceLine() {
				return true
			}
			continue
		}
		save := s.Cur.Col()
		expWord, hi, lo, ok := s.FltgWords(filename)
		if !ok {
			s.Cur.SetCol(save)
			return true
		}
		s.emitWord(filename, expWord)
		s.emitWord(filename, hi)
		s.emitWord(filename, lo)
	}
}

// pseudoText packs `'str'` (or any matching delimiter pair) as 6-bit
// ASCII, two characters per word, zero-padded in the last word.
func (s *State) pseudoText(filename string) {
	l := s.Cur
	for isSpace(l.Peek()) {
		l.Advance(1)
	}
	delim := l.Peek()
	if delim == lineio.NUL {
		s.Report(filename, l.Col(), TagIllegalChar, "Missing TEXT delimiter", "")
		return
	}
	l.Advance(1)
	start := l.Col()
	for l.Peek() != delim && l.Peek() != lineio.NUL {
		l.Advance(1)
	}
	if l.Peek() != delim {
		s.Report(filename, start, TagIllegalChar, "Unterminated TEXT string", "")
		return
	}
	text := l.Text[start:l.Col()]
	l.Advance(1)

	for i := 0; i < len(text); i += 2 {
		hi := text[i] & 077
		lo := byte(0)
		if i+1 < len(text) {
			lo = text[i+1] & 077
		}
		s.emitWord(filename, int(hi)<<6|int(lo))
	}
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' }

func (s *State) pseudoZblock(filename string) {
	lx := s.next(filename)
	n := s.reEvalExpr(filename, lx)
	if n < 0 {
		s.Report(filename, lx.Col, TagIllegalChar, "Illegal ZBLOCK count", "")
		return
	}
	for i := 0; i < n; i++ {
		s.emitWord(filename, 0)
	}
}

func (s *State) pseudoTitle(filename string) {
	l := s.Cur
	for isSpace(l.Peek()) {
		l.Advance(1)
	}
	delim := l.Peek()
	if delim == lineio.NUL {
		return
	}
	l.Advance(1)
	start := l.Col()
	for l.Peek() != delim && l.Peek() != lineio.NUL {
		l.Advance(1)
	}
	title := l.Text[start:l.Col()]
	if len(title) > 63 {
		title = title[:63]
	}
	if l.Peek() == delim {
		l.Advance(1)
	}
	if s.List != nil {
		s.List.SetTitle(title)
	}
}

func (s *State) pseudoXlist(filename string) {
	save := s.Cur.Col()
	lx := s.next(filename)
	if lx.Kind == lexer.EOL {
		s.Cur.SetCol(save)
		s.XlistDepth++
	} else {
		v := s.reEvalExpr(filename, lx)
		if v == 0 {
			s.XlistDepth = 0
		} else {
			s.XlistDepth = 1
		}
	}
	if s.List != nil {
		s.List.Suppress(s.XlistDepth > 0)
	}
}

func (s *State) pseudoBinpunch(filename string) {
	n := s.optionalArg(filename, 8)
	if s.RimMode && s.Obj != nil && s.Obj.DataEmitted() {
		s.CP.Reset()
		s.PZ.Reset()
		s.Obj.Leader(n)
		s.Obj.ResetChecksum()
		s.Obj.ClearDataEmitted()
	}
	s.RimMode = false
	if s.Obj != nil {
		s.Obj.SetMode(object.BIN)
	}
}

func (s *State) pseudoRimpunch(filename string) {
	save := s.Cur.Col()
	lx := s.next(filename)
	suppress := false
	n := 8
	switch {
	case lx.Kind == lexer.Punct && lx.Text == "-":
		// expr masks to 12 bits, so -1 arrives as 07777.
		if s.reEvalExpr(filename, lx) == AddrMask {
			suppress = true
		}
	case lx.Kind != lexer.EOL:
		n = s.reEvalExpr(filename, lx)
	default:
		s.Cur.SetCol(save)
	}
	if !s.RimMode && s.Obj != nil && s.Obj.DataEmitted() {
		s.Obj.EndBinary(suppress)
		s.Obj.Leader(n)
	}
	s.RimMode = true
	if s.Obj != nil {
		s.Obj.SetMode(object.RIM)
	}
}

func (s *State) optionalArg(filename string, def int) int {
	save := s.Cur.Col()
	lx := s.next(filename)
	if lx.Kind == lexer.EOL {
		s.Cur.SetCol(save)
		return def
	}
	return s.reEvalExpr(filename, lx)
}

func (s *State) pseudoReloc(filename string) {
	save := s.Cur.Col()
	lx := s.next(filename)
	if lx.Kind == lexer.EOL {
		s.Cur.SetCol(save)
		s.Reloc = 0
		return
	}
	target := s.reEvalExpr(filename, lx)
	s.Reloc = target - s.Clc
}

// reEvalExpr re-parses an expression that begins with the
// already-consumed lexeme lx, by rewinding to its start column and
// calling the normal expr() path; pseudo-ops that peek one token
// ahead to distinguish "blank argument" from "expression argument"
// use this instead of duplicating expr()'s grammar.
func (s *State) reEvalExpr(filename string, lx lexer.Lexeme) int {
	s.Cur.SetCol(lx.Col)
	v, _ := s.expr(filename)
	return v
}

// emitWord writes one 12-bit word at the current location, advancing
// clc, matching the "any other expression" statement form of spec.md
// §4.8 and the DUBL/FLTG/TEXT/ZBLOCK emitters that share its shape.
func (s *State) emitWord(filename string, val int) {
	if s.Obj != nil {
		s.Obj.Word(s.Clc, val&07777)
	}
	if s.List != nil {
		s.List.Emit(listing.Line{Number: s.Lineno, Style: listing.LocVal, Loc: s.Clc, Val: val & 07777})
	}
	s.ClcAdvance()
	s.checkPoolCollision(filename)
}

// checkPoolCollision reports PE/ZE (spec.md §4.5 testForLiteralCollision)
// once code growth reaches into a page's reserved literal region. Like
// insertLiteral, the branch is on whether the current page itself is
// page zero ((clc & 07600) == 0), not on which field we're in: fields
// above 0 have a page zero too, and it shares the PZ pool.
func (s *State) checkPoolCollision(filename string) {
	if (s.FieldLC() & 07600) == 0 {
		if s.PZ.TestCollision(s.FieldLC()) {
			s.Report(filename, s.Cur.Col(), TagZeroPageFull, "Zero page literal pool overflow", "")
		}
		return
	}
	off := s.FieldLC() & 0177
	if s.CP.TestCollision(off) {
		s.Report(filename, s.Cur.Col(), TagPageFull, "Current page literal pool overflow", "")
	}
}

func (s *State) installDirectives() {
	for _, op := range symtab.PseudoNames {
		idx, _ := s.Sym.LookupOrInsert(op)
		s.Sym.Define(idx, 0, symtab.Pseudo, s.Pass2)
	}
}
