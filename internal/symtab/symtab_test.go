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

import "testing"

func TestLookupOrInsertKeepsSorted(t *testing.T) {
	tbl := New()
	names := []string{"FOO", "bar", "baz", "Q", "a"}
	for _, n := range names {
		if _, err := tbl.LookupOrInsert(n); err != nil {
			t.Fatalf("insert %q: %v", n, err)
		}
	}
	all := tbl.All()
	for i := 1; i < len(all); i++ {
		if all[i-1].Name >= all[i].Name {
			t.Fatalf("table not sorted after inserts: %v", all)
		}
	}
	idx, ok := tbl.Lookup("bar")
	if !ok || tbl.Symbol(idx).Name != "BAR" {
		t.Fatalf("expected normalized BAR, got idx=%d ok=%v", idx, ok)
	}
}

func TestLookupOrInsertReturnsExisting(t *testing.T) {
	tbl := New()
	idx1, _ := tbl.LookupOrInsert("LOOP")
	idx2, _ := tbl.LookupOrInsert("loop")
	if idx1 != idx2 {
		t.Fatalf("expected same index for case-insensitive repeat lookup, got %d vs %d", idx1, idx2)
	}
	if tbl.Len() != 1 {
		t.Fatalf("expected single entry, got %d", tbl.Len())
	}
}

func TestDefineFixedNeverChanges(t *testing.T) {
	tbl := Permanent()
	idx, ok := tbl.Lookup("TAD")
	if !ok {
		t.Fatal("TAD should be permanent")
	}
	before := tbl.Symbol(idx)
	res := tbl.Define(idx, 01234, Label, true)
	if res.Applied {
		t.Fatal("Define on a FIXED symbol must not apply")
	}
	if tbl.Symbol(idx) != before {
		t.Fatalf("FIXED symbol TAD was modified: %+v -> %+v", before, tbl.Symbol(idx))
	}
}

func TestDefineRedefinedReportsOnce(t *testing.T) {
	tbl := New()
	idx, _ := tbl.LookupOrInsert("X")
	tbl.Define(idx, 0100, 0, false) // pass 1 value
	res := tbl.Define(idx, 0200, 0, true)
	if !res.Redefined {
		t.Fatal("expected redefined_symbol on first pass-2 mismatch")
	}
	res2 := tbl.Define(idx, 0300, 0, true)
	if res2.Redefined {
		t.Fatal("redefined_symbol must only be reported once")
	}
}

func TestDuplicateLabel(t *testing.T) {
	tbl := New()
	idx, _ := tbl.LookupOrInsert("L")
	tbl.Define(idx, 0100, Label, false)
	res := tbl.Define(idx, 0200, Label, false)
	if !res.Duplicate {
		t.Fatal("expected duplicate_label on differing LABEL redefinition")
	}
	if tbl.Symbol(idx).Attr&Duplicate == 0 {
		t.Fatal("DUPLICATE attribute not set")
	}
}

func TestConditionClearedAtDefinitionSite(t *testing.T) {
	tbl := New()
	idx, _ := tbl.LookupOrInsert("UND")
	tbl.Define(idx, 0, 0, false) // pass 1: sets CONDITION
	if tbl.Symbol(idx).Attr&Condition == 0 {
		t.Fatal("expected CONDITION set in pass 1")
	}
	tbl.ClearCondition(idx)
	if tbl.Symbol(idx).Attr&Condition != 0 {
		t.Fatal("ClearCondition did not clear CONDITION")
	}
}

func TestFixTabSealsPrefix(t *testing.T) {
	tbl := New()
	tbl.LookupOrInsert("A")
	tbl.LookupOrInsert("B")
	tbl.Sort()
	tbl.FixTab()
	if tbl.FixedCount() != 2 {
		t.Fatalf("expected fixed count 2, got %d", tbl.FixedCount())
	}
	idx, _ := tbl.Lookup("A")
	if tbl.Symbol(idx).Attr&Fixed == 0 {
		t.Fatal("FIXTAB did not mark A as FIXED")
	}
}

func TestExpungeEmptiesTable(t *testing.T) {
	tbl := Permanent()
	before := tbl.Len()
	if before == 0 {
		t.Fatal("permanent table should be non-empty")
	}
	tbl.Expunge()
	if tbl.Len() != 0 {
		t.Fatal("EXPUNGE did not empty the table")
	}
}

func TestPermanentTableHasMRIAndPseudo(t *testing.T) {
	tbl := Permanent()
	idx, ok := tbl.Lookup("TAD")
	if !ok || tbl.Symbol(idx).Attr&MRI == 0 {
		t.Fatal("TAD should be a permanent MRI symbol")
	}
	idx, ok = tbl.Lookup("FIXTAB")
	if !ok || tbl.Symbol(idx).Attr&Pseudo == 0 {
		t.Fatal("FIXTAB should be a permanent PSEUDO symbol")
	}
}
