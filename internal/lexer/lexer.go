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

// Package lexer extracts PAL-8 lexemes (identifiers, decimal
// digit-runs, single punctuation, 2-character literals, and an
// end-of-line sentinel) from a lineio.Line cursor, per spec.md §4.1.
package lexer

import (
	"github.com/rcornwell/pal8/internal/lineio"
)

// Kind tags what a Lexeme is.
type Kind int

const (
	EOL Kind = iota
	Ident
	Number
	Char // "c two-character literal
	Punct
)

// Lexeme is one scanned token: its kind, text, the column it started
// at, and the delimiter (the character immediately following it,
// which callers use to detect illegal embedded blanks).
type Lexeme struct {
	Kind     Kind
	Text     string
	Col      int
	Delim    byte
	DelimPos int
}

// isBlank reports whether c is skipped by nextLexeme's leading-blank
// scan: space, tab, form-feed, and '>' (spec.md §4.1). Tabs have
// already been expanded to spaces by lineio, but '>' and form-feed
// are real per-character skips the lexer itself performs.
func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\f' || c == '>'
}

func isAlnum(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

func isEOL(c byte) bool { return c == lineio.NUL || c == '\n' }

// Error is the diagnostic Next and NextBlank return; Msg is
// "no_literal_value" or "illegal_blank". Callers format it with their
// own tag/column machinery (see internal/engine).
type Error struct {
	Msg string
	Col int
}

func (e *Error) Error() string { return e.Msg }

// Next extracts the next lexeme starting at the line's cursor,
// advancing the cursor past it, per spec.md §4.1.
func Next(l *lineio.Line) (Lexeme, error) {
	for isBlank(l.Peek()) {
		l.Advance(1)
	}
	start := l.Col()
	c := l.Peek()

	switch {
	case isEOL(c):
		return Lexeme{Kind: EOL, Col: start, Delim: lineio.NUL}, nil

	case isAlnum(c):
		for isAlnum(l.Peek()) {
			l.Advance(1)
		}
		text := l.Text[start:l.Col()]
		kind := Ident
		if c >= '0' && c <= '9' {
			kind = Number
		}
		return Lexeme{Kind: kind, Text: text, Col: start, Delim: l.Peek(), DelimPos: l.Col()}, nil

	case c == '"':
		if l.Col()+1 >= len(l.Text) {
			return Lexeme{}, &Error{Msg: "no_literal_value", Col: start}
		}
		ch := l.At(l.Col() + 1)
		l.Advance(2)
		return Lexeme{Kind: Char, Text: string(ch), Col: start, Delim: l.Peek(), DelimPos: l.Col()}, nil

	default:
		l.Advance(1)
		return Lexeme{Kind: Punct, Text: string(c), Col: start, Delim: l.Peek(), DelimPos: l.Col()}, nil
	}
}

// NextBlank is identical to Next but fails with illegal_blank when
// the prior lexeme's delimiter was itself a blank: PAL-8 expressions
// may contain no internal spaces, since a bare space is the MRI
// OR-list separator (spec.md §4.1, §4.3).
func NextBlank(l *lineio.Line, priorDelim byte) (Lexeme, error) {
	if isBlank(priorDelim) {
		return Lexeme{}, &Error{Msg: "illegal_blank", Col: l.Col()}
	}
	return Next(l)
}
