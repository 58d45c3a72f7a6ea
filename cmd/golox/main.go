package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/peterh/liner"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"golox"
)

const historyFile = ".golox_history"

func main() {
	verbosity := flag.Int("v", 0, "log verbosity (0 = quiet)")
	flag.Usage = usage
	flag.Parse()

	commonlog.Configure(*verbosity, nil)

	args := flag.Args()
	switch {
	case len(args) > 1:
		usage()
		os.Exit(64)
	case len(args) == 1:
		os.Exit(runFile(args[0]))
	default:
		os.Exit(runPrompt())
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: golox [script]")
}

func runFile(path string) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "golox: %s\n", err)
		return 66
	}

	runner := golox.NewRunner(os.Stdout, os.Stderr)
	runner.Run(string(src))

	if runner.HadError() {
		return 64
	}
	if runner.HadRuntimeError() {
		return 70
	}
	return 0
}

// runPrompt keeps one Runner alive for the whole session so globals persist
// across lines; errors are reported and the prompt comes back.
func runPrompt() int {
	runner := golox.NewRunner(os.Stdout, os.Stderr)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := historyPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	defer func() {
		if histPath == "" {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		line, err := ln.Prompt("> ")
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				fmt.Fprintf(os.Stderr, "golox: %s\n", err)
			}
			fmt.Println()
			return 0
		}
		if line == "" {
			continue
		}
		ln.AppendHistory(line)

		runner.Run(line)
		runner.ResetErrors()
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFile)
}
