package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"vidbatch/internal/report"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// renderReport prints the per-video table followed by a summary line.
func renderReport(rep report.Report) string {
	var b strings.Builder
	if len(rep.Items) > 0 {
		rows := make([][]string, 0, len(rep.Items))
		for _, item := range rep.Items {
			detail := item.Output
			if item.Error != "" {
				detail = item.Error
			}
			frames := ""
			if item.Frames > 0 {
				frames = strconv.Itoa(item.Frames)
			}
			rows = append(rows, []string{
				item.Video,
				string(item.Status),
				frames,
				formatElapsed(item.Duration),
				detail,
			})
		}
		b.WriteString(renderTable(
			[]string{"Video", "Status", "Frames", "Time", "Output / Error"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
		))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%s: %d succeeded, %d failed, %d skipped\n", rep.Operation, rep.Succeeded, rep.Failed, rep.Skipped)
	return b.String()
}

func formatElapsed(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	return d.Round(100 * time.Millisecond).String()
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
