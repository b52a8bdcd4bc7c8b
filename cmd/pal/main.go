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

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/pal8/internal/console"
	"github.com/rcornwell/pal8/internal/engine"
	"github.com/rcornwell/pal8/internal/listing"
	"github.com/rcornwell/pal8/internal/object"
	"github.com/rcornwell/pal8/internal/palog"
	"github.com/rcornwell/pal8/internal/symtab"
	"github.com/rcornwell/pal8/internal/xref"
)

const version = "pal8 1.0"

func main() {
	optDump := getopt.BoolLong("dump", 'd', "Dump symbol table")
	optLiterals := getopt.BoolLong("literals", 'l', "Enable literal generation")
	optPermanent := getopt.BoolLong("permanent", 'p', "Write permanent-symbol file")
	optRim := getopt.BoolLong("rim", 'r', "Output RIM format (default BIN)")
	optXref := getopt.BoolLong("xref", 'x', "Emit cross reference")
	optInteractive := getopt.BoolLong("interactive", 'i', "Browse symbols/listing after assembly")
	optLogFile := getopt.StringLong("log", 0, "", "Log file")
	optVersion := getopt.BoolLong("version", 'v', "Print version")
	optHelp := getopt.BoolLong("help", 'h', "Print help")
	getopt.Parse()

	if *optVersion {
		fmt.Println(version)
		os.Exit(-1)
	}
	if *optHelp {
		getopt.Usage()
		os.Exit(-1)
	}

	args := getopt.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: pal [-dlprxiv] [-log file] input.pal")
		os.Exit(-1)
	}
	input := args[0]

	closer, err := palog.Init(*optLogFile, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open log file: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	base := strings.TrimSuffix(input, filepathExt(input))
	objExt := ".bin"
	if *optRim {
		objExt = ".rim"
	}

	errCount := run(input, base, objExt, *optLiterals, *optRim, *optDump, *optPermanent, *optXref, *optInteractive)
	if errCount != 0 {
		os.Exit(1)
	}
}

// filepathExt mirrors path/filepath.Ext without importing it solely
// for this one call, since the rest of the CLI has no other path-
// manipulation need.
func filepathExt(name string) string {
	for i := len(name) - 1; i >= 0 && name[i] != '/'; i-- {
		if name[i] == '.' {
			return name[i:]
		}
	}
	return ""
}

func run(input, base, objExt string, literals, rim, dump, permanent, xref, interactive bool) int {
	slog.Info("assembly started", slog.String("file", input))

	s := engine.New()
	s.LiteralsOn = literals
	if rim {
		s.RimMode = true
	}

	src, err := os.ReadFile(input)
	if err != nil {
		slog.Error("cannot read input", slog.String("error", err.Error()))
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if !s.RunPass(input, strings.NewReader(string(src))) {
		slog.Warn("pass 1 ended without a terminating $")
	}

	objFile, err := os.Create(base + objExt)
	if err != nil {
		slog.Error("cannot create object file", slog.String("error", err.Error()))
		return 1
	}
	defer objFile.Close()

	lstFile, err := os.Create(base + ".lst")
	if err != nil {
		slog.Error("cannot create listing file", slog.String("error", err.Error()))
		return 1
	}
	defer lstFile.Close()

	errFile, err := listing.CreateErrorFile(base + ".err")
	if err != nil {
		slog.Error("cannot create error file", slog.String("error", err.Error()))
		return 1
	}

	mode := object.BIN
	if rim {
		mode = object.RIM
	}

	s.Pass2 = true
	s.Obj = object.NewWriter(objFile, mode)
	s.List = listing.NewWriter(lstFile, input)
	if interactive {
		s.List.EnablePageCapture()
	}
	s.Err = errFile

	s.Obj.Leader(0) // 2 feet of leader, per DEC documentation
	if !s.RunPass(input, strings.NewReader(string(src))) {
		slog.Warn("pass 2 ended without a terminating $")
	}
	s.Obj.EndBinary(false)
	s.Obj.Leader(1)
	s.List.Flush()
	if err := s.Err.Close(s.PriorErrors() > 0); err != nil {
		slog.Error("cannot close error file", slog.String("error", err.Error()))
	}

	errCount := s.TotalErrors()
	slog.Info("assembly finished", slog.Int("errors", errCount))

	if dump {
		dumpSymbols(s.Sym)
	}
	if permanent {
		if err := writePermanentFile(base+".prm", s.Sym); err != nil {
			slog.Error("cannot write permanent-symbol file", slog.String("error", err.Error()))
		}
	}
	if xref {
		writeCrossReference(os.Stdout, s.Sym, s.Xref)
	}
	if interactive {
		(&console.Browser{Sym: s.Sym, Xref: s.Xref, Pages: s.List, Out: os.Stdout}).Run()
	}

	return errCount
}

// dumpSymbols prints every non-permanent symbol, name then octal value,
// matching the `-d` behavior spec.md §6 names.
func dumpSymbols(sym *symtab.Table) {
	for _, s := range sym.All() {
		if s.Attr&symtab.Fixed != 0 {
			continue
		}
		fmt.Printf("%-6s %04o\n", s.Name, uint16(s.Value)&07777)
	}
}

// writePermanentFile emits the text format spec.md §6 specifies:
// EXPUNGE, one FIXMRI line per MRI, one plain line per other FIXED
// non-pseudo symbol, then FIXTAB.
func writePermanentFile(path string, sym *symtab.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintln(f, "EXPUNGE")
	for _, s := range sym.All() {
		if s.Attr&symtab.Fixed == 0 || s.Attr&symtab.Pseudo != 0 {
			continue
		}
		val := uint16(s.Value) & 07777
		if s.Attr&symtab.MRI != 0 {
			fmt.Fprintf(f, "FIXMRI %s=0%o\n", s.Name, val)
		} else {
			fmt.Fprintf(f, "     %s=0%o\n", s.Name, val)
		}
	}
	fmt.Fprintln(f, "FIXTAB")
	return nil
}

// writeCrossReference prints every user symbol's definition and
// reference lines, `-x` per spec.md §6.
func writeCrossReference(w *os.File, sym *symtab.Table, xr *xref.Table) {
	for _, s := range sym.All() {
		if s.Attr&symtab.Fixed != 0 || s.XrefCount == 0 {
			continue
		}
		fmt.Fprintf(w, "%-6s %04o  %d", s.Name, uint16(s.Value)&07777, xr.Definition(s.XrefIndex))
		for _, line := range xr.References(s.XrefIndex, s.XrefCount) {
			fmt.Fprintf(w, " %d", line)
		}
		fmt.Fprintln(w)
	}
}
