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

// Package console implements the `-i` post-assembly browser: a
// peterh/liner prompt over the symbol table, cross-reference table,
// and captured listing pages built during pass 2. It never re-enters
// the engine and never executes assembled code; it only answers
// queries against state the engine already produced.
package console

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/rcornwell/pal8/internal/symtab"
	"github.com/rcornwell/pal8/internal/xref"
)

// PageSource supplies the captured listing lines a `page N` command
// prints; internal/listing.Writer satisfies it once EnablePageCapture
// has been called.
type PageSource interface {
	PageLines(page int) []string
}

// Browser holds the finished-assembly state the prompt queries.
type Browser struct {
	Sym   *symtab.Table
	Xref  *xref.Table
	Pages PageSource
	Out   io.Writer
}

var commands = []string{"sym", "page", "xref", "quit"}

// Run drives the `pal> ` prompt until `quit` or EOF/Ctrl-D. Ctrl-C
// aborts the current line like the teacher's ConsoleReader rather than
// exiting the browser outright.
func (b *Browser) Run() {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(b.complete)

	for {
		input, err := line.Prompt("pal> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				continue
			}
			return
		}
		line.AppendHistory(input)
		if b.dispatch(strings.TrimSpace(input)) {
			return
		}
	}
}

// dispatch runs one command line, returning true on `quit`.
func (b *Browser) dispatch(input string) bool {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "quit", "q":
		return true
	case "sym":
		b.cmdSym(args)
	case "page":
		b.cmdPage(args)
	case "xref":
		b.cmdXref(args)
	default:
		fmt.Fprintf(b.Out, "unknown command %q (try sym, page, xref, quit)\n", cmd)
	}
	return false
}

func (b *Browser) cmdSym(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(b.Out, "usage: sym NAME")
		return
	}
	idx, ok := b.Sym.Lookup(args[0])
	if !ok {
		fmt.Fprintf(b.Out, "undefined: %s\n", args[0])
		return
	}
	sym := b.Sym.Symbol(idx)
	fmt.Fprintf(b.Out, "%-6s %04o  %s\n", sym.Name, uint16(sym.Value)&07777, attrString(sym.Attr))
}

func attrString(a symtab.Attr) string {
	var tags []string
	for _, pair := range []struct {
		bit  symtab.Attr
		name string
	}{
		{symtab.Fixed, "FIXED"},
		{symtab.MRI, "MRI"},
		{symtab.Label, "LABEL"},
		{symtab.Redefined, "REDEFINED"},
		{symtab.Duplicate, "DUPLICATE"},
		{symtab.Pseudo, "PSEUDO"},
	} {
		if a&pair.bit != 0 {
			tags = append(tags, pair.name)
		}
	}
	if len(tags) == 0 {
		return "-"
	}
	return strings.Join(tags, ",")
}

func (b *Browser) cmdPage(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(b.Out, "usage: page N")
		return
	}
	n, err := strconv.ParseInt(args[0], 8, 32)
	if err != nil {
		fmt.Fprintf(b.Out, "bad page number %q\n", args[0])
		return
	}
	if b.Pages == nil {
		fmt.Fprintln(b.Out, "no listing captured for this run")
		return
	}
	lines := b.Pages.PageLines(int(n))
	if len(lines) == 0 {
		fmt.Fprintf(b.Out, "page %o is empty\n", n)
		return
	}
	for _, l := range lines {
		fmt.Fprint(b.Out, l)
	}
}

func (b *Browser) cmdXref(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(b.Out, "usage: xref NAME")
		return
	}
	idx, ok := b.Sym.Lookup(args[0])
	if !ok {
		fmt.Fprintf(b.Out, "undefined: %s\n", args[0])
		return
	}
	sym := b.Sym.Symbol(idx)
	if sym.XrefCount == 0 {
		fmt.Fprintf(b.Out, "%s: no references recorded\n", sym.Name)
		return
	}
	def := b.Xref.Definition(sym.XrefIndex)
	refs := b.Xref.References(sym.XrefIndex, sym.XrefCount)
	fmt.Fprintf(b.Out, "%s  defined line %d\n", sym.Name, def)
	for _, r := range refs {
		fmt.Fprintf(b.Out, "        referenced line %d\n", r)
	}
}

// complete mirrors the teacher's parser.CompleteCmd: the first word
// completes against the command set, everything after is command
// specific. Only `sym`/`xref` complete symbol names; `page` and `quit`
// take no useful completion.
func (b *Browser) complete(input string) []string {
	fields := strings.SplitN(input, " ", 2)
	if len(fields) == 1 {
		var out []string
		for _, c := range commands {
			if strings.HasPrefix(c, fields[0]) {
				out = append(out, c)
			}
		}
		sort.Strings(out)
		return out
	}

	cmd, prefix := fields[0], fields[1]
	if cmd != "sym" && cmd != "xref" {
		return nil
	}
	var out []string
	for _, sym := range b.Sym.All() {
		if strings.HasPrefix(sym.Name, strings.ToUpper(prefix)) {
			out = append(out, cmd+" "+sym.Name)
		}
	}
	sort.Strings(out)
	return out
}
