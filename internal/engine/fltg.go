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
)

// DublWords evaluates one DUBL constant: `[+|-] digits`, emitted as
// two 12-bit words, high word first (spec.md §4.4). Operators between
// DUBL operands are illegal; the caller stops the DUBL scan on
// anything but a leading sign or digit run.
func (s *State) DublWords(filename string) (hi, lo int, consumed bool) {
	lx := s.next(filename)
	neg := false
	if lx.Kind == lexer.Punct && (lx.Text == "+" || lx.Text == "-") {
		neg = lx.Text == "-"
		lx = s.next(filename)
	}
	if lx.Kind != lexer.Number {
		return 0, 0, false
	}
	v, bad := parseRadix(lx.Text, 10)
	if bad {
		s.Report(filename, lx.Col, TagIllegalChar, "Number not in radix", "")
	}
	if neg {
		v = -v
	}
	if v > 1<<23-1 || v < -(1<<23) {
		s.Report(filename, lx.Col, TagIllegalChar, "DUBL overflow", "")
	}
	uv := uint32(v) & 0xFFFFFF
	return int(uv >> 12 & 07777), int(uv & 07777), true
}

// fltgState is the 10-state table spec.md §4.4 describes for parsing
// `[+|-] digits[.digits][E[+|-]digits]`. Columns are tried in the
// listed order against the pending character class.
type fltgState int

const (
	fltgStart fltgState = iota
	fltgSign
	fltgInt
	fltgFrac
	fltgExpSign
	fltgExpDigits
	fltgDone
)

// fltgAccum holds the pieces parseFloatLiteral extracts before
// conversion to the 27-bit working mantissa.
type fltgAccum struct {
	negative    bool
	mantissa    uint64 // unsigned decimal digits, integer and fraction concatenated
	rightDigits int    // digits seen after the decimal point
	exponent    int    // decimal exponent (E field)
}

// parseFloatLiteral runs the state machine over the engine's current
// line starting at the lexer cursor, consuming exactly one FLTG
// literal.
func (s *State) parseFloatLiteral(filename string) (fltgAccum, bool) {
	var a fltgAccum
	l := s.Cur
	state := fltgStart
	expNeg := false
	sawDigit := false

	for {
		c := l.Peek()
		switch state {
		case fltgStart:
			switch {
			case c == '+':
				l.Advance(1)
				state = fltgSign
			case c == '-':
				a.negative = true
				l.Advance(1)
				state = fltgSign
			case c >= '0' && c <= '9':
				state = fltgInt
			default:
				return a, false
			}
		case fltgSign, fltgInt:
			switch {
			case c >= '0' && c <= '9':
				a.mantissa = a.mantissa*10 + uint64(c-'0')
				sawDigit = true
				l.Advance(1)
				state = fltgInt
			case c == '.':
				l.Advance(1)
				state = fltgFrac
			case c == 'E' || c == 'e':
				l.Advance(1)
				state = fltgExpSign
			default:
				state = fltgDone
			}
		case fltgFrac:
			switch {
			case c >= '0' && c <= '9':
				a.mantissa = a.mantissa*10 + uint64(c-'0')
				a.rightDigits++
				sawDigit = true
				l.Advance(1)
			case c == 'E' || c == 'e':
				l.Advance(1)
				state = fltgExpSign
			default:
				state = fltgDone
			}
		case fltgExpSign:
			switch {
			case c == '+':
				l.Advance(1)
				state = fltgExpDigits
			case c == '-':
				expNeg = true
				l.Advance(1)
				state = fltgExpDigits
			case c >= '0' && c <= '9':
				state = fltgExpDigits
			default:
				s.Report(filename, l.Col(), TagIllegalChar, "Illegal character", "")
				state = fltgDone
			}
		case fltgExpDigits:
			if c >= '0' && c <= '9' {
				a.exponent = a.exponent*10 + int(c-'0')
				l.Advance(1)
				continue
			}
			state = fltgDone
		}
		if state == fltgDone {
			break
		}
	}
	if expNeg {
		a.exponent = -a.exponent
	}
	return a, sawDigit
}

// FltgWords converts one FLTG literal to its three-word encoding
// (exponent, mantissa high, mantissa low), per spec.md §4.4's 27-bit
// working-precision procedure.
func (s *State) FltgWords(filename string) (expWord, hiWord, loWord int, ok bool) {
	a, sawDigit := s.parseFloatLiteral(filename)
	if !sawDigit {
		return 0, 0, 0, false
	}

	exponent := a.exponent - a.rightDigits
	mantissa := a.mantissa

	for mantissa != 0 && mantissa%10 == 0 {
		mantissa /= 10
		exponent++
	}

	expBin := 26
	work := int64(mantissa) << 3

	for exponent > 0 {
		work *= 10
		work, expBin = normalize(work, expBin)
		exponent--
	}
	for exponent < 0 {
		work /= 10
		work, expBin = normalize(work, expBin)
		exponent++
	}
	work, expBin = normalize(work, expBin)

	work >>= 3
	expBin -= 3
	if a.negative {
		work = (-work) & 0xFFFFFF
	}
	work &= 0xFFFFFF

	return expBin & 07777, int((work >> 12) & 07777), int(work & 07777), true
}

// normalize applies spec.md §4.4's rule: left-shift while the
// mantissa fits under bit 25 (to maximize precision), right-shift
// while it spills past bit 26. Mantissa 0 forces exponent 0.
func normalize(mantissa int64, exp int) (int64, int) {
	if mantissa == 0 {
		return 0, 0
	}
	for mantissa&^0x3FFFFFF == 0 && mantissa&(1<<25) == 0 {
		mantissa <<= 1
		exp--
	}
	for mantissa&^0x3FFFFFF != 0 {
		mantissa >>= 1
		exp++
	}
	return mantissa, exp
}
