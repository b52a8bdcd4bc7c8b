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
	"github.com/rcornwell/pal8/internal/symtab"
)

// next wraps lexer.Next over the engine's current line, turning its
// sentinel errors into diagnostics the way every other engine method
// reports them.
func (s *State) next(filename string) lexer.Lexeme {
	lx, err := lexer.Next(s.Cur)
	if err != nil {
		if le, ok := err.(*lexer.Error); ok {
			s.Report(filename, le.Col, TagIllegalChar, le.Msg, "")
		}
		return lexer.Lexeme{Kind: lexer.EOL}
	}
	return lx
}

func (s *State) nextBlank(filename string, priorDelim byte) lexer.Lexeme {
	lx, err := lexer.NextBlank(s.Cur, priorDelim)
	if err != nil {
		if le, ok := err.(*lexer.Error); ok {
			s.Report(filename, le.Col, TagIllegalChar, le.Msg, "")
		}
		return lexer.Lexeme{Kind: lexer.EOL}
	}
	return lx
}

// term evaluates one primary expression (spec.md §4.3 "eval()"):
// identifier, digit run, character literal, `.`, or a bracketed
// literal-pool reference.
func (s *State) term(filename string, lx lexer.Lexeme) (val int, mri bool) {
	switch lx.Kind {
	case lexer.Ident:
		idx, err := s.Sym.LookupOrInsert(lx.Text)
		if err != nil {
			s.Report(filename, lx.Col, TagTableFull, err.Error(), lx.Text)
			return 0, false
		}
		sym := s.Sym.Symbol(idx)
		s.countReference(idx, lx.Col)
		if s.Pass2 && sym.Attr&symtab.Defined == 0 {
			s.Report(filename, lx.Col, TagUndefined, "Undefined symbol", lx.Text)
		}
		return int(sym.Value) & AddrMask, sym.Attr&symtab.MRI != 0

	case lexer.Number:
		v, bad := parseRadix(lx.Text, s.Radix)
		if bad {
			s.Report(filename, lx.Col, TagIllegalChar, "Number not in radix", "")
		}
		return v & AddrMask, false

	case lexer.Char:
		c := byte(0)
		if len(lx.Text) > 0 {
			c = lx.Text[0]
		}
		return (int(c) | 0200) & 0377, false

	case lexer.Punct:
		switch lx.Text {
		case ".":
			return (s.Clc + s.Reloc) & AddrMask, false
		case "[":
			return s.bracketLiteral(filename, false)
		case "(":
			return s.bracketLiteral(filename, true)
		case "=":
			s.Report(filename, lx.Col, TagIllegalEquals, "Illegal use of =", "")
			return 0, false
		}
	}
	s.Report(filename, lx.Col, TagIllegalChar, "Illegal character", "")
	return 0, false
}

// countReference records a use of the symbol for the concordance.
// Duplicate (line, column) suppression is the pass-2 xref fill-in
// walk's responsibility (pass.go), not this accumulator.
func (s *State) countReference(idx, col int) {
	_ = col
	s.Sym.BumpXrefCount(idx)
}

func (s *State) bracketLiteral(filename string, currentPage bool) (int, bool) {
	closer := ')'
	if !currentPage {
		closer = ']'
	}
	v, _ := s.expr(filename)
	lx := s.next(filename)
	if lx.Kind != lexer.Punct || lx.Text == "" || rune(lx.Text[0]) != closer {
		s.Report(filename, lx.Col, TagIllegalChar, "Illegal character", "")
	}
	if !s.LiteralsOn {
		s.Report(filename, lx.Col, TagIllegalRef, "Literal generation off", "")
		return 0, false
	}
	// insertLiteral: if the current page is page zero, both "[v]" and
	// "(v)" redirect to the page-zero pool regardless of which bracket
	// was written, since page zero has no separate current-page pool.
	if !currentPage || (s.Clc&07600) == 0 {
		idx, ok := s.PZ.Insert(v & AddrMask)
		if !ok {
			s.Report(filename, lx.Col, TagZeroPageFull, "Zero page literal pool full", "")
			return 0, false
		}
		return idx, false
	}
	idx, ok := s.CP.Insert(v & AddrMask)
	if !ok {
		s.Report(filename, lx.Col, TagPageFull, "Current page literal pool full", "")
		return 0, false
	}
	return (s.Clc & 07600) | idx, false
}

// expr evaluates a left-to-right operator chain with equal precedence
// (spec.md §4.3 "getExpr()"): `+ - ^ * % / & !`, a leading `-`
// negating the first term. Operands must not be separated from their
// operator by blanks. The reported mri flag is the first term's alone,
// matching the original's getExpr(&symt) out-parameter: only the
// chain's leading term can establish that this is an MRI instruction.
func (s *State) expr(filename string) (val int, mri bool) {
	first := s.nextBlank(filename, 0)
	neg := false
	if first.Kind == lexer.Punct && first.Text == "-" {
		neg = true
		first = s.nextBlank(filename, first.Delim)
	}
	val, mri = s.term(filename, first)
	if neg {
		val = (-val) & AddrMask
	}

	prevDelim := first.Delim
	for {
		// A blank after a term ends the chain: it separates OR-list members.
		if isLeadingBlank(prevDelim) {
			return val & AddrMask, mri
		}
		save := s.Cur.Col()
		op := s.nextBlank(filename, prevDelim)
		if op.Kind != lexer.Punct || !isChainOp(op.Text) {
			s.Cur.SetCol(save)
			return val & AddrMask, mri
		}
		rhs := s.nextBlank(filename, op.Delim)
		rv, _ := s.term(filename, rhs)
		switch op.Text {
		case "+":
			val += rv
		case "-":
			val -= rv
		case "^", "*":
			val *= rv
		case "%", "/":
			if rv != 0 {
				val /= rv
			}
		case "&":
			val &= rv
		case "!":
			val |= rv
		}
		val &= AddrMask
		prevDelim = rhs.Delim
	}
}

func isChainOp(s string) bool {
	switch s {
	case "+", "-", "^", "*", "%", "/", "&", "!":
		return true
	}
	return false
}

// exprs evaluates the blank-separated OR-list (spec.md §4.3
// "getExprs()"), applying MRI-aware page/indirect resolution once the
// first term establishes that this is an MRI instruction. Each list
// member is itself a full left-to-right operator chain (getExpr()),
// not a single primary term, so trailing "+n"/"-n" offsets on an
// operand resolve correctly instead of leaking into the next member.
func (s *State) exprs(filename string) int {
	val, isMRI := s.expr(filename)
	indirectSet := val&IndirectBit != 0

	for {
		save := s.Cur.Col()
		peek := s.next(filename)
		if peek.Kind == lexer.EOL {
			s.Cur.SetCol(save)
			break
		}
		s.Cur.SetCol(save)
		addr, addrMRI := s.expr(filename)
		switch {
		case isMRI && addrMRI:
			val |= addr
			indirectSet = val&IndirectBit != 0
		case !isMRI:
			val |= addr & AddrMask
		default:
			val = s.resolveMRIOperand(filename, val, addr, indirectSet)
			indirectSet = val&IndirectBit != 0
		}
	}
	return val & AddrMask
}

// resolveMRIOperand applies the page-zero/current-page/off-page rule
// of spec.md §4.3's getExprs() to one non-MRI operand of an MRI
// instruction.
func (s *State) resolveMRIOperand(filename string, val, addr int, indirectSet bool) int {
	cur := s.FieldLC() + s.Reloc
	pageBase := cur & 07600
	pageTop := cur | 0177

	switch {
	case addr < 0200:
		return val | addr
	case addr >= pageBase && addr <= pageTop:
		return val | PageBit | (addr & 0177)
	default:
		if indirectSet {
			s.Report(filename, 0, TagIllegalIndirect, "Illegal indirect", "")
			return val
		}
		if !s.LiteralsOn {
			s.Report(filename, 0, TagIllegalRef, "Illegal reference, no literals", "")
			return val
		}
		// insertLiteral: an off-page reference from page zero itself
		// still redirects to the page-zero pool, not the current-page
		// one, regardless of the pool this call would otherwise pick.
		if (s.Clc & 07600) == 0 {
			idx, ok := s.PZ.Insert(addr & AddrMask)
			if !ok {
				s.Report(filename, 0, TagZeroPageFull, "Zero page literal pool full", "")
				return val
			}
			return val | PageBit | IndirectBit | idx
		}
		idx, ok := s.CP.Insert(addr & AddrMask)
		if !ok {
			s.Report(filename, 0, TagPageFull, "Current page literal pool full", "")
			return val
		}
		return val | PageBit | IndirectBit | idx
	}
}

// parseRadix parses a digit run in the given radix, reporting
// a bad digit (number_not_radix) when a digit is out of range.
func parseRadix(text string, radix int) (val int, badDigit bool) {
	for _, c := range text {
		d := int(c - '0')
		if d < 0 || d > 9 || d >= radix {
			badDigit = true
			continue
		}
		val = val*radix + d
	}
	return val, badDigit
}
