// Command codechunk splits a source file into line-bounded, entity-aware
// chunks and prints a summary of the result.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	codechunk "github.com/fernmap/codechunk"
)

func main() {
	limit := flag.Int("limit", 40, "maximum lines per chunk")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: codechunk [-limit N] <file>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	source, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("codechunk: reading %s: %v", path, err)
	}

	chunks, err := codechunk.Split(path, string(source), codechunk.Options{ChunkLineLimit: *limit})
	if err != nil {
		log.Fatalf("codechunk: splitting %s: %v", path, err)
	}

	fmt.Printf("%s: %d chunk(s)\n\n", path, len(chunks))
	for i, chunk := range chunks {
		fmt.Printf("=== chunk %d/%d: lines %d-%d ===\n", i+1, len(chunks), chunk.LineRange.Start, chunk.LineRange.End)
		for _, e := range chunk.Entities {
			parent := ""
			if e.Parent != nil {
				parent = fmt.Sprintf(" (in %s)", *e.Parent)
			}
			fmt.Printf("  - %s %q%s: lines %d-%d\n", e.Kind, e.Name, parent, e.ChunkLineRange.Start, e.ChunkLineRange.End)
		}
	}
}
