package verify

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// ConversionReport summarizes one conversion: what was converted, what lint
// found and whether it succeeded.
type ConversionReport struct {
	Mode   string // "encode" or "decode"
	Lines  int    // Input lines read
	Issues []Issue
	Err    error
}

// Warnings counts the issues that are warnings.
func (r *ConversionReport) Warnings() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Type.Warning() {
			n++
		}
	}
	return n
}

// WriteReport writes a formatted report to a writer
func (r *ConversionReport) WriteReport(w io.Writer) {
	separator := strings.Repeat("=", 60)

	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "CONVERSION REPORT (%s, %d lines)\n", r.Mode, r.Lines)
	fmt.Fprintln(w, separator)

	if len(r.Issues) == 0 {
		fmt.Fprintln(w, "No lint issues found.")
	} else {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"Type", "Line", "Op", "Message"})
		for _, issue := range r.Issues {
			line := "-"
			if issue.Line > 0 {
				line = fmt.Sprint(issue.Line)
			}
			t.AppendRow(table.Row{issue.Type, line, issue.Op, issue.Message})
		}
		t.AppendFooter(table.Row{"", "", "Warnings", r.Warnings()})
		t.Render()
	}

	if r.Err != nil {
		fmt.Fprintf(w, "Result: FAILED: %v\n", r.Err)
		return
	}
	fmt.Fprintln(w, "Result: SUCCESS")
}

// SaveReportToFile saves the report to a file
func (r *ConversionReport) SaveReportToFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	r.WriteReport(file)
	return nil
}
