// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// wbxml is an inspection tool for WBXML streams: it renders binary
// documents as an XML trace and dumps document preambles. Tokens are
// resolved against the built-in ActiveSync code pages, or against a
// YAML declaration file supplied with --pages.
package main

import (
	"fmt"
	"os"
)

const usage = `wbxml inspects WBXML byte streams.

Usage:
  wbxml <command> [flags] [file]

Commands:
  decode   Render a WBXML document as an XML trace
  header   Dump the document preamble

Input is read from the named file, or from stdin when no file is
given. Run 'wbxml <command> --help' for command flags.
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("command required")
	}
	switch args[0] {
	case "decode":
		return decodeCommand(args[1:])
	case "header":
		return headerCommand(args[1:])
	case "-h", "--help", "help":
		fmt.Fprint(os.Stderr, usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// openInput returns the stream named by the positional arguments:
// the single named file, or stdin.
func openInput(args []string) (*os.File, func(), error) {
	switch len(args) {
	case 0:
		return os.Stdin, func() {}, nil
	case 1:
		file, err := os.Open(args[0])
		if err != nil {
			return nil, nil, err
		}
		return file, func() { file.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("at most one input file, got %d", len(args))
	}
}
