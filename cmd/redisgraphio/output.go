package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/orneryd/redisgraphio/pkg/graph"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	statStyle   = lipgloss.NewStyle().Faint(true)
)

// resultDocument is the JSON/YAML shape of a query result.
type resultDocument struct {
	Columns    []string `json:"columns" yaml:"columns"`
	Rows       [][]any  `json:"rows" yaml:"rows"`
	Statistics []string `json:"statistics" yaml:"statistics"`
}

func newResultDocument(res *graph.QueryResult) resultDocument {
	doc := resultDocument{
		Columns:    append([]string{}, res.Header...),
		Rows:       make([][]any, len(res.Rows)),
		Statistics: append([]string{}, res.Statistics...),
	}
	for i, row := range res.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v.Interface()
		}
		doc.Rows[i] = cells
	}
	return doc
}

func renderResult(w io.Writer, res *graph.QueryResult, format string) error {
	switch format {
	case "json":
		return writeJSON(w, newResultDocument(res))
	case "yaml":
		return writeYAML(w, newResultDocument(res))
	case "table":
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	if len(res.Header) > 0 {
		rows := make([][]string, len(res.Rows))
		for i, row := range res.Rows {
			cells := make([]string, len(row))
			for j, v := range row {
				cells[j] = v.String()
			}
			rows[i] = cells
		}
		fmt.Fprintln(w, newTable(res.Header, rows).Render())
	}
	for _, line := range res.Statistics {
		fmt.Fprintln(w, statStyle.Render(line))
	}
	return nil
}

func renderNames(w io.Writer, names []string, format string) error {
	switch format {
	case "json":
		return writeJSON(w, names)
	case "yaml":
		return writeYAML(w, names)
	case "table":
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	rows := make([][]string, len(names))
	for i, n := range names {
		rows[i] = []string{fmt.Sprint(i), n}
	}
	fmt.Fprintln(w, newTable([]string{"id", "name"}, rows).Render())
	return nil
}

func newTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
