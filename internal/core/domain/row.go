package domain

import (
	"strings"
	"time"
)

// TimestampLayout renders row timestamps as yyyy/MM/dd HH:mm.
const TimestampLayout = "2006/01/02 15:04"

// Row is one line of a statistics table: a timestamp followed by one cell
// per tracked metric. Absent metrics are empty cells so columns stay aligned.
type Row struct {
	Cells []string
}

// NewRow builds a row for snap with cells in the given metric order.
// The snapshot's own iteration order is irrelevant.
func NewRow(ts time.Time, snap Snapshot, order []string) Row {
	cells := make([]string, 0, 1+len(order))
	cells = append(cells, ts.Format(TimestampLayout))
	for _, name := range order {
		value, _ := snap.Get(name)
		cells = append(cells, value)
	}
	return Row{Cells: cells}
}

// Render returns the wikitext for the row, ending in a newline:
//
//	|-
//	|2024/01/07 12:00
//	|1234
//	|
func (r Row) Render() string {
	var b strings.Builder
	b.WriteString("|-")
	for _, cell := range r.Cells {
		b.WriteString("\n|")
		b.WriteString(cell)
	}
	b.WriteString("\n")
	return b.String()
}

// FormatRow formats a timestamp and snapshot into a rendered table row.
func FormatRow(ts time.Time, snap Snapshot, order []string) string {
	return NewRow(ts, snap, order).Render()
}
