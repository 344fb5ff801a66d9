package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

type Formatter struct {
	Format string
	Writer io.Writer
}

func (f *Formatter) IsJSON() bool { return f.Format == "json" }

func (f *Formatter) JSON(value any) error {
	encoder := json.NewEncoder(f.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func (f *Formatter) Line(format string, args ...any) {
	fmt.Fprintf(f.Writer, format+"\n", args...)
}

// Table renders a plain column-aligned table.
func (f *Formatter) Table(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = len(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	f.printRow(headers, widths)
	separators := make([]string, len(headers))
	for i := range headers {
		separators[i] = strings.Repeat("-", widths[i])
	}
	f.printRow(separators, widths)
	for _, row := range rows {
		f.printRow(row, widths)
	}
}

func (f *Formatter) printRow(cells []string, widths []int) {
	padded := make([]string, len(cells))
	for i, cell := range cells {
		padded[i] = fmt.Sprintf("%-*s", widths[i], cell)
	}
	fmt.Fprintln(f.Writer, strings.TrimRight(strings.Join(padded, "  "), " "))
}
