// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/wbxml/lib/wbxml"
)

// Code-page declaration file format:
//
//	pages:
//	  - index: 13
//	    name: Ping
//	    public_id: 1
//	    tokens:
//	      - token: 0x05
//	        name: Ping
//	      - token: 0x0A
//	        name: Folder
//	        model: PingFolder
//
// Token values accept YAML's integer forms, including hex.
type codePageFile struct {
	Pages []codePageDecl `yaml:"pages"`
}

type codePageDecl struct {
	Index    int         `yaml:"index"`
	Name     string      `yaml:"name"`
	PublicID uint32      `yaml:"public_id"`
	Tokens   []tokenDecl `yaml:"tokens"`
}

type tokenDecl struct {
	Token int    `yaml:"token"`
	Name  string `yaml:"name"`
	Model string `yaml:"model,omitempty"`
}

// ParseCodePages parses YAML code-page declarations.
func ParseCodePages(data []byte) ([]*CodePage, error) {
	var file codePageFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing code page declarations: %w", err)
	}
	if len(file.Pages) == 0 {
		return nil, fmt.Errorf("code page declarations contain no pages")
	}

	pages := make([]*CodePage, 0, len(file.Pages))
	seen := make(map[int]string, len(file.Pages))
	for _, decl := range file.Pages {
		if decl.Index < 0 || decl.Index > 0xFF {
			return nil, fmt.Errorf("page %q: index %d out of range [0, 255]", decl.Name, decl.Index)
		}
		if decl.Name == "" {
			return nil, fmt.Errorf("page %d: missing name", decl.Index)
		}
		if previous, dup := seen[decl.Index]; dup {
			return nil, fmt.Errorf("page index %d declared twice (%q and %q)", decl.Index, previous, decl.Name)
		}
		seen[decl.Index] = decl.Name

		page := NewCodePage(decl.Index, decl.Name, decl.PublicID)
		for _, token := range decl.Tokens {
			if token.Token < wbxml.MinElementToken || token.Token > wbxml.MaxElementToken {
				return nil, fmt.Errorf("page %q: token 0x%02X out of range [0x05, 0x3F]", decl.Name, token.Token)
			}
			if token.Name == "" {
				return nil, fmt.Errorf("page %q: token 0x%02X has no name", decl.Name, token.Token)
			}
			if existing, dup := page.Field(token.Token); dup {
				return nil, fmt.Errorf("page %q: token 0x%02X declared twice (%q and %q)",
					decl.Name, token.Token, existing.Name, token.Name)
			}
			page.DefineModel(token.Token, token.Name, token.Model)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// LoadCodePages reads and parses YAML code-page declarations from a
// file. There is no search path or discovery; the caller names the
// exact file.
func LoadCodePages(path string) ([]*CodePage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading code page declarations: %w", err)
	}
	pages, err := ParseCodePages(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pages, nil
}

// AddPages parses YAML declarations and adds every page to the
// registry.
func (r *Registry) AddPages(data []byte) error {
	pages, err := ParseCodePages(data)
	if err != nil {
		return err
	}
	for _, page := range pages {
		r.AddPage(page)
	}
	return nil
}
