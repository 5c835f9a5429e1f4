// Package main provides a thin CLI wrapper over the analysis engine: it
// analyzes URLs given as arguments (or on stdin, one per line) and prints
// one JSON result per URL.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/qrshield/engine/internal/engine"
)

func main() {
	pretty := flag.Bool("pretty", false, "Indent JSON output")
	unicodeOnly := flag.Bool("unicode", false, "Run only the hostname Unicode analysis")
	flag.Parse()

	eng, err := engine.New(zap.NewNop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine init failed: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}

	emit := func(input string) {
		if *unicodeOnly {
			_ = enc.Encode(eng.AnalyzeUnicode(input))
			return
		}
		_ = enc.Encode(eng.Analyze(input))
	}

	if flag.NArg() > 0 {
		for _, arg := range flag.Args() {
			emit(arg)
		}
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		emit(line)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "read stdin: %v\n", err)
		os.Exit(1)
	}
}
