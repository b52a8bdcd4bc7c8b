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

// Package literal implements the two 128-word PAL-8 literal pools
// (page-zero and current-page), filled top-down with duplicate
// reuse, per spec.md §3 and §4.5.
package literal

// Size is the fixed word count of a literal pool.
const Size = 128

// Pool is one 128-entry literal pool.
type Pool struct {
	words [Size]int
	loc   int  // high-water mark; values live in [loc, Size)
	err   bool // one-shot overflow-report guard for this page
}

// NewPool returns an empty pool (loc == Size).
func NewPool() *Pool {
	return &Pool{loc: Size}
}

// Loc returns the current high-water mark.
func (p *Pool) Loc() int { return p.loc }

// Empty reports whether the pool holds no values.
func (p *Pool) Empty() bool { return p.loc == Size }

// Insert stores v, reusing an existing identical entry if one is
// already present between loc and the top of the pool (spec.md
// §4.5). It returns the pool index the value lives at, or
// (0, false) if the pool is already full.
func (p *Pool) Insert(v int) (int, bool) {
	for i := Size - 1; i >= p.loc; i-- {
		if p.words[i] == v {
			return i, true
		}
	}
	if p.loc == 0 {
		return 0, false
	}
	p.loc--
	p.words[p.loc] = v
	return p.loc, true
}

// TestCollision reports whether offset (the in-page 7-bit location
// counter) has grown into the pool's reserved region; it is the
// single check behind spec.md's literal_overflow / pz_literal_overflow,
// guarded so only the first collision on a given page is reported.
func (p *Pool) TestCollision(offset int) bool {
	if p.err {
		return false
	}
	if (offset & 0177) >= p.loc {
		p.err = true
		return true
	}
	return false
}

// Words returns the live words from loc to Size-1, in ascending index
// order, for the §4.5 PunchLiteralPool dump.
func (p *Pool) Words() []int {
	out := make([]int, Size-p.loc)
	copy(out, p.words[p.loc:])
	return out
}

// Reset empties the pool, matching PunchLiteralPool's post-flush
// state (loc = Size, error cleared).
func (p *Pool) Reset() {
	p.loc = Size
	p.err = false
}
