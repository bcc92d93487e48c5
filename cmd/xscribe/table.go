package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// renderTable draws a rounded table. Columns named in rightAligned
// (1-based) are right-justified; their headers stay left so narrow
// numeric columns keep a readable label.
func renderTable(header table.Row, rows []table.Row, rightAligned ...int) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(header)
	tw.AppendRows(rows)

	if len(rightAligned) > 0 {
		configs := make([]table.ColumnConfig, 0, len(rightAligned))
		for _, number := range rightAligned {
			configs = append(configs, table.ColumnConfig{
				Number:      number,
				Align:       text.AlignRight,
				AlignHeader: text.AlignLeft,
			})
		}
		tw.SetColumnConfigs(configs)
	}
	return tw.Render()
}
