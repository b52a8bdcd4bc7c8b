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

// Package symtab implements the PAL-8 symbol table: a sorted array of
// 6-character symbols with an attribute lattice, a permanent (fixed)
// prefix, and the lookup/insert/define operations the two-pass engine
// drives on every statement.
package symtab

import (
	"errors"
	"sort"
)

// Attr is the symbol attribute bit set.
type Attr uint16

const (
	Undefined Attr = 0 // placeholder; appears before first definition

	Defined   Attr = 1 << iota // has a value
	Fixed                      // cannot be redefined (permanent)
	MRI                        // memory-reference instruction opcode
	Label                      // defined by "name," at a location
	Redefined                  // value changed on pass 2 vs pass 1
	Duplicate                  // same label appeared twice at differing loc
	Pseudo                     // a directive
	Condition                  // set at IFDEF/IFNDEF definition site in pass 1
)

// NameLen is the maximum significant length of a symbol name; PAL-8
// truncates (does not error on) anything longer.
const NameLen = 6

// MaxSymbols bounds the table the way the original's fixed-size array
// did; once reached, lookupOrInsert fails with ErrTableFull.
const MaxSymbols = 4096

// ErrTableFull is fatal per spec.md §4.2: Symbol Table Full.
var ErrTableFull = errors.New("Symbol Table Full")

// Symbol is one symbol-table record.
type Symbol struct {
	Name      string
	Value     int16 // 12-bit value, widened; LABEL carries full 15-bit loc
	Attr      Attr
	XrefIndex int // base index into the cross-reference table
	XrefCount int // references recorded so far
}

// Table is the sorted symbol array with a fixed-prefix boundary.
type Table struct {
	syms       []Symbol
	fixedCount int // number_of_fixed_symbols: permanent prefix length
}

// New returns an empty table with no permanent entries. Callers
// install permanent directives/opcodes and call FixTab to seal them.
func New() *Table {
	return &Table{syms: make([]Symbol, 0, 256)}
}

// Len returns the number of live symbols.
func (t *Table) Len() int { return len(t.syms) }

// FixedCount returns the size of the permanent prefix.
func (t *Table) FixedCount() int { return t.fixedCount }

// Symbol returns a copy of the symbol at idx. Indices are stable only
// until the next Insert/LookupOrInsert call that grows the table;
// callers must not hold an index across statement boundaries without
// re-resolving it.
func (t *Table) Symbol(idx int) Symbol { return t.syms[idx] }

// search does the two-range binary search spec.md §4.2 describes:
// first the permanent prefix, then the mutable tail. It returns a
// non-negative index on a hit, or the bitwise complement of the
// insertion point on a miss (consistent with sort.Search semantics).
func (t *Table) search(name string) int {
	if t.fixedCount > 0 {
		lo, hi := 0, t.fixedCount
		i := sort.Search(hi-lo, func(i int) bool { return t.syms[lo+i].Name >= name })
		if lo+i < hi && t.syms[lo+i].Name == name {
			return lo + i
		}
	}
	lo, hi := t.fixedCount, len(t.syms)
	i := sort.Search(hi-lo, func(i int) bool { return t.syms[lo+i].Name >= name })
	if lo+i < hi && t.syms[lo+i].Name == name {
		return lo + i
	}
	return ^(lo + i)
}

// Lookup finds name without inserting. Returns (index, true) on hit.
func (t *Table) Lookup(name string) (int, bool) {
	name = Normalize(name)
	idx := t.search(name)
	if idx >= 0 {
		return idx, true
	}
	return 0, false
}

// LookupOrInsert finds name, inserting an UNDEFINED placeholder at the
// correct sorted position (within the mutable tail) on a miss. It is
// the two-phase primitive DESIGN NOTES §9 calls for: the caller always
// gets back a fresh index, never a pointer held across statements.
func (t *Table) LookupOrInsert(name string) (int, error) {
	name = Normalize(name)
	idx := t.search(name)
	if idx >= 0 {
		return idx, nil
	}
	if len(t.syms) >= MaxSymbols {
		return 0, ErrTableFull
	}
	insertAt := ^idx
	t.syms = append(t.syms, Symbol{})
	copy(t.syms[insertAt+1:], t.syms[insertAt:len(t.syms)-1])
	t.syms[insertAt] = Symbol{Name: name, Attr: Undefined}
	return insertAt, nil
}

// Install adds a permanent symbol directly (used only while building
// the initial table, before FixTab runs); it does not sort — callers
// must Install in sorted-name order or call Sort before FixTab.
func (t *Table) Install(name string, val int16, attr Attr) {
	t.syms = append(t.syms, Symbol{Name: Normalize(name), Value: val, Attr: attr | Fixed | Defined})
}

// DefineResult carries the outcome of Define back to the pass driver.
type DefineResult struct {
	Redefined bool // value changed on pass 2 vs pass 1 (redefined_symbol)
	Duplicate bool // duplicate label at differing value (duplicate_label)
	Applied   bool // false if the symbol is FIXED and the write was ignored
}

// Define stores val/typ at idx following spec.md §4.2:
//   - FIXED entries are never modified.
//   - If already DEFINED and the value differs on pass 2, the symbol
//     is marked REDEFINED and the result reports it (but only once:
//     once REDEFINED is set, Define no longer reports it again).
//   - LABEL values carry the full 15-bit loc; everything else is
//     masked to 12 bits.
//   - Pass 1 ORs in CONDITION; pass 2 writes the type without it.
func (t *Table) Define(idx int, val int, typ Attr, pass2 bool) DefineResult {
	sym := &t.syms[idx]
	if sym.Attr&Fixed != 0 {
		return DefineResult{Applied: false}
	}

	stored := int16(val & 07777)
	if typ&Label != 0 {
		stored = int16(val & 077777)
	}

	var res DefineResult
	wasDefined := sym.Attr&Defined != 0
	if wasDefined && sym.Value != stored {
		if typ&Label != 0 {
			if sym.Attr&Duplicate == 0 {
				sym.Attr |= Duplicate
				res.Duplicate = true
			}
		} else if pass2 && sym.Attr&Redefined == 0 {
			sym.Attr |= Redefined
			res.Redefined = true
		}
	}

	sym.Value = stored
	newAttr := typ | Defined
	if !pass2 {
		newAttr |= Condition
	}
	sym.Attr = (sym.Attr &^ Condition) | newAttr
	res.Applied = true
	return res
}

// SetXrefBase records the concordance table base index assigned to
// the symbol at idx once pass 1 has sized the flat xref array.
func (t *Table) SetXrefBase(idx, base int) { t.syms[idx].XrefIndex = base }

// BumpXrefCount increments and returns the symbol's reference count,
// used both to size its run after pass 1 and to pick the next free
// slot in that run while pass 2 fills it in.
func (t *Table) BumpXrefCount(idx int) int {
	t.syms[idx].XrefCount++
	return t.syms[idx].XrefCount
}

// ResetXrefCount zeroes the reference counter, called between pass 1
// (where it measured how much space the symbol needs) and pass 2
// (where it re-counts while indexing into the now-sized array).
func (t *Table) ResetXrefCount(idx int) { t.syms[idx].XrefCount = 0 }

// ClearCondition clears the CONDITION bit at idx without otherwise
// touching the entry. The pass driver does not call it: a pass-2
// Define already drops CONDITION at the definition site, which is what
// lets IFDEF/IFNDEF read the symbol as "not yet defined" before that
// point, matching pass-1 ordering (spec.md §4.7).
func (t *Table) ClearCondition(idx int) { t.syms[idx].Attr &^= Condition }

// FixTab ORs FIXED into every current entry, making the whole table
// permanent, and resets the fixed-prefix boundary to its new length.
// The table must already be sorted by name.
func (t *Table) FixTab() {
	for i := range t.syms {
		t.syms[i].Attr |= Fixed
	}
	t.fixedCount = len(t.syms)
}

// Sort restores sorted order; used after bulk Install calls that were
// not already presented in name order.
func (t *Table) Sort() {
	sort.Slice(t.syms, func(i, j int) bool { return t.syms[i].Name < t.syms[j].Name })
}

// Expunge empties the table entirely (pass 1 only, per spec.md
// §4.2/§4.6); the caller re-installs the pseudo-op directives, which
// stay unsealed (no FIXED bit, empty fixed prefix) until a later FIXTAB.
func (t *Table) Expunge() {
	t.syms = t.syms[:0]
	t.fixedCount = 0
}

// All returns every symbol in table order, for symbol-dump and
// permanent-symbol-file writers.
func (t *Table) All() []Symbol {
	out := make([]Symbol, len(t.syms))
	copy(out, t.syms)
	return out
}

// Normalize upper-cases and truncates a name to NameLen characters,
// the PAL-8 rule for symbol significance.
func Normalize(name string) string {
	if len(name) > NameLen {
		name = name[:NameLen]
	}
	b := []byte(name)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
