// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/wbxml/lib/wbxml"
	"github.com/bureau-foundation/wbxml/lib/wire"
)

func headerCommand(args []string) error {
	flagSet := pflag.NewFlagSet("wbxml header", pflag.ContinueOnError)
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	input, closeInput, err := openInput(flagSet.Args())
	if err != nil {
		return err
	}
	defer closeInput()

	return dumpHeader(input, os.Stdout)
}

func dumpHeader(r io.Reader, w io.Writer) error {
	decoder := wire.NewDecoder(r, nil)
	header, err := decoder.Header()
	if err != nil {
		return err
	}

	version := fmt.Sprintf("0x%02X", header.Version)
	switch header.Version {
	case wbxml.Version11:
		version += " (WBXML 1.1)"
	case wbxml.Version12:
		version += " (WBXML 1.2)"
	}
	charset := fmt.Sprintf("%d", header.Charset)
	if header.Charset == wbxml.CharsetUTF8 {
		charset += " (UTF-8)"
	}

	fmt.Fprintf(w, "version:       %s\n", version)
	fmt.Fprintf(w, "public id:     %d\n", header.PublicID)
	fmt.Fprintf(w, "charset:       %s\n", charset)
	fmt.Fprintf(w, "string table:  %d bytes\n", header.StringTableLength)
	return nil
}
