package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pterm/pterm"
)

// printer renders command results as pterm tables or JSON.
type printer struct {
	json bool
	w    io.Writer
}

func newPrinter(format string, w io.Writer) (*printer, error) {
	switch format {
	case "table", "":
		return &printer{w: w}, nil
	case "json":
		return &printer{json: true, w: w}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// value prints a result object. In table mode pairs are shown instead.
func (p *printer) value(title string, v any, pairs [][2]string) error {
	if p.json {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return p.pairs(title, pairs)
}

// pairs prints a two-column key/value table.
func (p *printer) pairs(title string, pairs [][2]string) error {
	if p.json {
		m := make(map[string]string, len(pairs))
		for _, kv := range pairs {
			m[kv[0]] = kv[1]
		}
		return p.value(title, m, nil)
	}

	data := [][]string{{"Field", "Value"}}
	for _, kv := range pairs {
		data = append(data, []string{kv[0], kv[1]})
	}
	if title != "" {
		fmt.Fprint(p.w, pterm.DefaultSection.Sprint(title))
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithHeaderRowSeparator("-").WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.w, table)
	return err
}

// success prints a one-line confirmation in table mode.
func (p *printer) success(format string, args ...any) {
	if p.json {
		return
	}
	fmt.Fprintln(p.w, pterm.Success.Sprintf(format, args...))
}
