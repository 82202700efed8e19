package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// Table is implemented by results that have a tabular form.
type Table interface {
	Headers() []string
	Rows() [][]string
}

// PrintTable writes t as a borderless, left-aligned table.
func PrintTable(w io.Writer, t Table) error {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(t.Headers())
	tw.SetAutoWrapText(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetBorder(false)
	tw.SetHeaderLine(false)
	tw.SetCenterSeparator("")
	tw.SetColumnSeparator("")
	tw.SetRowSeparator("")
	tw.SetTablePadding("  ")
	tw.SetNoWhiteSpace(true)
	tw.AppendBulk(t.Rows())
	tw.Render()
	return nil
}

// Rows is an ad-hoc Table.
type Rows struct {
	Header []string
	Data   [][]string
}

// Add appends one row.
func (r *Rows) Add(cells ...string) { r.Data = append(r.Data, cells) }

func (r *Rows) Headers() []string { return r.Header }
func (r *Rows) Rows() [][]string  { return r.Data }
