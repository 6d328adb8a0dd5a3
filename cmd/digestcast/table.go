package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// tableColumn is one column of a ledger view.
type tableColumn struct {
	header string
	align  text.Align
	// maxWidth wraps longer cells; zero leaves the column unbounded.
	maxWidth int
}

// renderTable draws rows under columns with an optional footer row. Short
// rows are padded with blanks and extra cells are dropped.
func renderTable(columns []tableColumn, rows [][]string, footer []string) string {
	if len(columns) == 0 {
		return ""
	}

	style := table.StyleRounded
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	tw := table.NewWriter()
	tw.SetStyle(style)

	tw.AppendHeader(tableRow(len(columns), func(i int) string { return columns[i].header }))
	for _, row := range rows {
		tw.AppendRow(tableRow(len(columns), cellAt(row)))
	}
	if len(footer) > 0 {
		tw.AppendFooter(tableRow(len(columns), cellAt(footer)))
	}

	configs := make([]table.ColumnConfig, len(columns))
	for i, column := range columns {
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       column.align,
			AlignFooter: column.align,
			AlignHeader: text.AlignLeft,
			WidthMax:    column.maxWidth,
		}
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func tableRow(columns int, cell func(int) string) table.Row {
	row := make(table.Row, columns)
	for i := range columns {
		row[i] = cell(i)
	}
	return row
}

func cellAt(values []string) func(int) string {
	return func(i int) string {
		if i < len(values) {
			return values[i]
		}
		return ""
	}
}
