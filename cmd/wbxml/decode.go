// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/wbxml/lib/airsync"
	"github.com/bureau-foundation/wbxml/lib/schema"
	"github.com/bureau-foundation/wbxml/lib/wire"
)

func decodeCommand(args []string) error {
	var pagesPath string

	flagSet := pflag.NewFlagSet("wbxml decode", pflag.ContinueOnError)
	flagSet.StringVar(&pagesPath, "pages", "", "YAML code-page declarations (default: built-in ActiveSync pages)")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	finder, err := pageFinder(pagesPath)
	if err != nil {
		return err
	}

	input, closeInput, err := openInput(flagSet.Args())
	if err != nil {
		return err
	}
	defer closeInput()

	return decodeTrace(input, os.Stdout, finder)
}

// pageFinder resolves tokens against the named YAML declarations, or
// against the built-in ActiveSync registry when no file is given.
func pageFinder(pagesPath string) (wire.PageFinder, error) {
	if pagesPath == "" {
		return airsync.Registry(), nil
	}
	pages, err := schema.LoadCodePages(pagesPath)
	if err != nil {
		return nil, err
	}
	registry := schema.NewRegistry()
	for _, page := range pages {
		registry.AddPage(page)
	}
	return registry, nil
}

// decodeTrace renders the document's event stream as indented XML.
// Opaque payloads appear hex-encoded, since they have no native
// textual form.
func decodeTrace(r io.Reader, w io.Writer, finder wire.PageFinder) error {
	decoder := wire.NewDecoder(r, finder)
	depth := 0
	for {
		event, err := decoder.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		switch event.Type {
		case wire.StartElement:
			fmt.Fprintf(w, "%s<%s>\n", indent(depth), event.Field.Name)
			depth++
		case wire.EndElement:
			depth--
			fmt.Fprintf(w, "%s</%s>\n", indent(depth), event.Field.Name)
		case wire.Text:
			fmt.Fprintf(w, "%s%s\n", indent(depth), event.Text)
		case wire.Opaque:
			fmt.Fprintf(w, "%sopaque[%d] %s\n", indent(depth), len(event.Opaque), hex.EncodeToString(event.Opaque))
		}
	}
}

func indent(depth int) string {
	if depth < 0 {
		depth = 0
	}
	return strings.Repeat("  ", depth)
}
