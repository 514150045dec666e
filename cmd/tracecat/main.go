// tracecat prints a zstd-compressed event trace as plain JSON lines.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/crowdclash/server/internal/trace"
	"github.com/dustin/go-humanize"
)

func main() {
	fs := flag.NewFlagSet("tracecat", flag.ExitOnError)
	kinds := fs.String("kind", "", "comma-separated record kinds to print (default: all)")
	summary := fs.Bool("summary", false, "print per-kind counts instead of records")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tracecat [-kind k1,k2] [-summary] <trace.jsonl.zst>")
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}
	if err := run(fs.Arg(0), *kinds, *summary); err != nil {
		fmt.Fprintf(os.Stderr, "tracecat: %v\n", err)
		os.Exit(1)
	}
}

func run(path, kinds string, summary bool) error {
	r, err := trace.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	want := make(map[string]bool)
	for _, k := range strings.Split(kinds, ",") {
		if k = strings.TrimSpace(k); k != "" {
			want[k] = true
		}
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	h := r.Header()
	counts := make(map[string]int)
	total := 0
	var lastTick uint64
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("record %d: %w", total+1, err)
		}
		total++
		lastTick = rec.Tick
		if len(want) > 0 && !want[rec.Kind] {
			continue
		}
		counts[rec.Kind]++
		if !summary {
			out.Write(r.Raw())
			out.WriteByte('\n')
		}
	}

	if !summary {
		return nil
	}
	size := "?"
	if fi, err := os.Stat(path); err == nil {
		size = humanize.Bytes(uint64(fi.Size()))
	}
	fmt.Fprintf(out, "match %s (%s, seed %d), started %s\n", h.Match, h.Scenario, h.Seed, h.Started.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "%s records over %s ticks, %s on disk\n",
		humanize.Comma(int64(total)), humanize.Comma(int64(lastTick)), size)
	names := make([]string, 0, len(counts))
	for k := range counts {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(out, "  %-18s %s\n", k, humanize.Comma(int64(counts[k])))
	}
	return nil
}
