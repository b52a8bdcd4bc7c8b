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

package symtab

// mriOp is a memory-reference instruction: FIXMRI-combinable opcode
// carrying the 3-bit op code in bits 9-11 (value is OR'd with an
// address/indirect/page by the expression evaluator).
type mriOp struct {
	name string
	val  int16
}

// Memory reference instructions, grounded on palbart's permanent_symbols
// table (original_source/palbart-2.5.c).
var mriOps = []mriOp{
	{"AND", 00000},
	{"TAD", 01000},
	{"ISZ", 02000},
	{"DCA", 03000},
	{"JMS", 04000},
	{"JMP", 05000},
	{"I", 00400}, // indirect addressing bit, OR'd in like an MRI
	{"Z", 00000}, // page-zero addressing bit (no-op OR)
}

// fixedOp is a plain FIXED instruction (OPR micro-ops, IOT device
// codes); these combine only via bitwise OR, never via the MRI
// off-page literal machinery.
type fixedOp struct {
	name string
	val  int16
}

var fixedOps = []fixedOp{
	// Group 1 operate microinstructions.
	{"NOP", 07000},
	{"IAC", 07001},
	{"BSW", 07002},
	{"RAL", 07004},
	{"RTL", 07006},
	{"RAR", 07010},
	{"RTR", 07012},
	{"CML", 07020},
	{"CMA", 07040},
	{"CIA", 07041},
	{"CLL", 07100},
	{"STL", 07120},
	{"CLA", 07200},
	{"GLK", 07204},
	{"STA", 07240},
	// Group 2 operate microinstructions.
	{"HLT", 07402},
	{"OSR", 07404},
	{"SKP", 07410},
	{"SNL", 07420},
	{"MQL", 07421},
	{"SZL", 07430},
	{"SZA", 07440},
	{"SNA", 07450},
	{"MQA", 07501},
	{"SMA", 07500},
	{"SPA", 07510},
	{"SWP", 07521},
	{"LAS", 07604},
	{"ACL", 07701},
	// Program interrupt control.
	{"SKON", 06000},
	{"ION", 06001},
	{"IOF", 06002},
	{"SRQ", 06003},
	{"GTF", 06004},
	{"RTF", 06005},
	{"SGT", 06006},
	{"CAF", 06007},
	// High-speed paper tape reader (PC8-E).
	{"RPE", 06010},
	{"RSF", 06011},
	{"RRB", 06012},
	{"RFC", 06014},
	{"RCC", 06016},
	// High-speed paper tape punch.
	{"PCE", 06020},
	{"PSF", 06021},
	{"PCF", 06022},
	{"PPC", 06024},
	{"PLS", 06026},
	// Keyboard/reader.
	{"KSF", 06031},
	{"KCC", 06032},
	{"KRS", 06034},
	{"KRB", 06036},
	// Teleprinter/punch.
	{"TSF", 06041},
	{"TCF", 06042},
	{"TPC", 06044},
	{"TLS", 06046},
}

// PseudoNames lists every pseudo-op recognized by the dispatcher in
// internal/engine/pseudo.go. The symbol table only needs to know these
// names are PSEUDO so the pass driver's "identifier that is a PSEUDO"
// branch fires; the dispatch itself is by name.
var PseudoNames = []string{
	"DECIMA", "OCTAL", "PAGE", "SEGMNT", "FIELD", "FIXMRI", "FIXTAB",
	"EXPUNG", "IFDEF", "IFNDEF", "IFZERO", "IFNZER", "DUBL", "FLTG",
	"TEXT", "ZBLOCK", "TITLE", "EJECT", "XLIST", "BINPUN", "RIMPUN",
	"ENPUNC", "NOPUNC", "RELOC", "PAUSE", "BANK",
}

// Permanent builds a fresh table with every MRI, FIXED, and PSEUDO
// symbol installed and the fixed prefix sealed, matching what
// EXPUNGE/startup does in spec.md §4.2 and §4.6.
func Permanent() *Table {
	t := New()
	for _, op := range mriOps {
		t.Install(op.name, op.val, MRI)
	}
	for _, op := range fixedOps {
		t.Install(op.name, op.val, 0)
	}
	for _, name := range PseudoNames {
		t.Install(name, 0, Pseudo)
	}
	t.Sort()
	t.FixTab()
	return t
}
