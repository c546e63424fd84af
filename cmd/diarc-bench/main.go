// Command diarc-bench is a throwaway harness for exercising a compress
// pass against a directory on disk and reporting driver.Stats. It is
// not a product CLI (no flag parsing, just two positional paths: source
// directory and output file; no output-format options); it mirrors the teacher's cmd/ layout for
// ad hoc benchmarking during development.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dolthub/diarc/config"
	"github.com/dolthub/diarc/driver"
	"github.com/dolthub/diarc/internal/dirtree"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: diarc-bench <source-dir> <out-file>")
		os.Exit(2)
	}
	srcDir, outPath := os.Args[1], os.Args[2]

	root, err := dirtree.Walk(srcDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "walk:", err)
		os.Exit(1)
	}

	cfg := config.Default()
	stats, err := driver.CompressToFile(context.Background(), root, outPath, &cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "compress:", err)
		os.Exit(1)
	}

	fmt.Printf("files: %d (skipped %d), read %d bytes, dictionary %d bytes, compressed %d bytes, deduped %d\n",
		stats.FilesSeen, stats.FilesSkipped, stats.BytesRead, stats.DictionaryBytes, stats.CompressedBytes, stats.DedupedFiles)
	fmt.Printf("walk %s, mine %s, write %s\n", stats.WalkDuration, stats.MineDuration, stats.WriteDuration)
}
