package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/toolhub/ynabhub/internal/tools"
)

func main() {
	if err := render(os.Stdout, tools.Definitions()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func render(w io.Writer, defs []tools.Tool) error {
	p := &printer{w: w}
	p.line("# MCP Tools (Generated)")
	p.line("")
	p.line("This file is generated from `internal/tools/definitions.go`. Amounts are milliunits.")
	p.line("")

	for _, d := range defs {
		access := "read-only"
		if !d.ReadOnly {
			access = "writes to YNAB"
		}
		p.line(fmt.Sprintf("## `%s` (%s)", d.Name, access))
		p.line("")
		if d.Description != "" {
			p.line(d.Description)
			p.line("")
		}

		props, _ := d.InputSchema["properties"].(map[string]any)
		requiredRaw, _ := d.InputSchema["required"].([]string)
		requiredSet := make(map[string]bool, len(requiredRaw))
		for _, r := range requiredRaw {
			requiredSet[r] = true
		}

		keys := make([]string, 0, len(props))
		for k := range props {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if requiredSet[keys[i]] != requiredSet[keys[j]] {
				return requiredSet[keys[i]]
			}
			return keys[i] < keys[j]
		})

		if len(keys) == 0 {
			p.line("No input.")
			p.line("")
			continue
		}
		p.line("| Input | Type | Required | Description |")
		p.line("|---|---|---|---|")
		for _, k := range keys {
			prop, _ := props[k].(map[string]any)
			typ, _ := prop["type"].(string)
			desc, _ := prop["description"].(string)
			if enum, ok := prop["enum"].([]string); ok {
				desc = fmt.Sprintf("%s One of: %v.", desc, enum)
			}
			req := "no"
			if requiredSet[k] {
				req = "yes"
			}
			p.line(fmt.Sprintf("| `%s` | %s | %s | %s |", k, typ, req, desc))
		}
		p.line("")
	}
	return p.err
}

// printer keeps the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintln(p.w, s)
}
