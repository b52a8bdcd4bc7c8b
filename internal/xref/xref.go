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

// Package xref implements the PAL-8 concordance: a flat integer array
// in which each symbol owns a base slot (its definition line number)
// followed by its reference line numbers, per spec.md §3.
package xref

// Table is the flat cross-reference array. Symbols own disjoint runs
// within it; ownership bookkeeping (XrefIndex/XrefCount) lives on the
// symtab.Symbol record, sized once at the end of pass 1 per spec.md
// §5.
type Table struct {
	slots []int
}

// New returns an empty table.
func New() *Table { return &Table{} }

// Reserve grows the table by count slots and returns the base index
// of the new run, used once pass 1 knows how many references each
// symbol accumulated.
func (t *Table) Reserve(count int) int {
	base := len(t.slots)
	t.slots = append(t.slots, make([]int, count)...)
	return base
}

// SetDefinition records line as the definition line at base (slot 0
// of a symbol's run).
func (t *Table) SetDefinition(base, line int) { t.slots[base] = line }

// AddReference appends line to the run starting at base, at offset
// 1+already-recorded, matching the original "definition then
// references" slot layout.
func (t *Table) AddReference(base, offset, line int) { t.slots[base+1+offset] = line }

// Definition returns the definition line recorded at base.
func (t *Table) Definition(base int) int { return t.slots[base] }

// References returns the count reference line numbers recorded after
// base's definition slot.
func (t *Table) References(base, count int) []int {
	out := make([]int, count)
	copy(out, t.slots[base+1:base+1+count])
	return out
}

// Reset discards all recorded data, used between pass 1 and pass 2
// once sizes are known and the table is rebuilt fresh.
func (t *Table) Reset() { t.slots = t.slots[:0] }
