package logging

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/wbrown/flowbase/relation"
)

// RelationTable renders a Collection as a markdown table, headered by the
// given column names plus a trailing diff column. Inspect nodes and the
// flowbased server do not call it; Inspect prints its rows with fmt.Printf.
func RelationTable(columns []string, c *relation.Collection) string {
	entries := c.Sorted()
	if len(entries) == 0 {
		return fmt.Sprintf("_Columns: %v_\n\n_No rows_", columns)
	}

	var b strings.Builder

	alignment := make([]tw.Align, len(columns))
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}

	table := tablewriter.NewTable(&b,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header(append(append([]string{}, columns...), "diff"))

	for _, entry := range entries {
		row := make([]string, 0, len(columns)+1)
		for _, v := range entry.Tuple {
			row = append(row, v.String())
		}
		row = append(row, fmt.Sprintf("%d", entry.Diff))
		table.Append(row)
	}
	table.Render()

	fmt.Fprintf(&b, "\n_%d rows_\n", len(entries))
	return b.String()
}
