// cifdump parses CIF files and prints the structure of each: its data
// blocks, their items, loops and save frames.
//
// Usage:
//
//	cifdump [options] file...
//
// A file name of "-" reads from stdin.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	cif "github.com/Differentiable-Electron-Crystallography/cif-parser"
)

var (
	verbose = flag.Bool("v", false, "log parser progress and warnings to stderr")
	values  = flag.Bool("values", false, "print item values and loop rows")
	maxRows = flag.Int("rows", 5, "with -values, the number of loop rows to print (0 for all)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "cifdump - print the structure of CIF files\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  cifdump [options] file...\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	var opts []cif.Option
	if *verbose {
		h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		opts = append(opts, cif.WithLogger(slog.New(h)))
	}

	failed := false
	for _, name := range flag.Args() {
		var doc *cif.Document
		var err error
		if name == "-" {
			doc, err = cif.Read(os.Stdin, opts...)
		} else {
			doc, err = cif.ReadFile(name, opts...)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "cifdump: %v\n", err)
			failed = true
			continue
		}
		dump(os.Stdout, name, doc)
	}
	if failed {
		os.Exit(1)
	}
}

func dump(w io.Writer, name string, doc *cif.Document) {
	fmt.Fprintf(w, "%s: %d block(s)", name, doc.Len())
	if v := doc.Version(); v != "" {
		fmt.Fprintf(w, " [%s]", v)
	}
	fmt.Fprintln(w)
	for _, warning := range doc.Warnings() {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}
	for _, b := range doc.Blocks() {
		fmt.Fprintf(w, "data_%s: %d item(s), %d loop(s), %d save frame(s)\n",
			b.Name(), b.ItemCount(), b.LoopCount(), b.FrameCount())
		dumpEntries(w, "  ", &b.Container)
	}
}

func dumpEntries(w io.Writer, indent string, c *cif.Container) {
	for _, e := range c.Entries() {
		switch e.Kind {
		case cif.EntryItem:
			if *values {
				fmt.Fprintf(w, "%s%s %s (%s)\n", indent, e.Tag, e.Value, e.Value.Kind())
			} else {
				fmt.Fprintf(w, "%s%s\n", indent, e.Tag)
			}
		case cif.EntryLoop:
			dumpLoop(w, indent, e.Loop)
		case cif.EntryFrame:
			fmt.Fprintf(w, "%ssave_%s: %d item(s), %d loop(s)\n",
				indent, e.Frame.Name(), e.Frame.ItemCount(), e.Frame.LoopCount())
			dumpEntries(w, indent+"  ", &e.Frame.Container)
		}
	}
}

func dumpLoop(w io.Writer, indent string, lp *cif.Loop) {
	fmt.Fprintf(w, "%sloop_ (%d row(s)): %s\n",
		indent, lp.Len(), strings.Join(lp.Tags(), " "))
	if !*values {
		return
	}
	rows := lp.Rows()
	if *maxRows > 0 && *maxRows < len(rows) {
		rows = rows[:*maxRows]
	}
	for _, row := range rows {
		strs := make([]string, len(row))
		for j, v := range row {
			strs[j] = v.String()
		}
		fmt.Fprintf(w, "%s  %s\n", indent, strings.Join(strs, "  "))
	}
	if len(rows) < lp.Len() {
		fmt.Fprintf(w, "%s  ... %d more\n", indent, lp.Len()-len(rows))
	}
}
