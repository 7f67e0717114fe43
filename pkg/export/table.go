package export

import (
	"github.com/ssargent/dtafile/pkg/dta"
)

const dateLayout = "2006-01-02"

// Options control how cells are rendered.
type Options struct {
	// ApplyLabels replaces integer cells that have a value label with the label.
	ApplyLabels bool
	// Dates renders cells of date-formatted columns as YYYY-MM-DD.
	Dates bool
}

// Table is a window of rows in column order. Missing cells are nil.
type Table struct {
	Columns []string `json:"columns"`
	Offset  int      `json:"offset"`
	Total   int      `json:"total"`
	Rows    [][]any  `json:"rows"`
}

type renderer struct {
	ds     *dta.Dataset
	opts   Options
	tables []*dta.LabelTable
}

func newRenderer(ds *dta.Dataset, opts Options) *renderer {
	r := &renderer{ds: ds, opts: opts}
	if opts.ApplyLabels {
		r.tables = ds.ColumnLabelTables()
	}
	return r
}

// cell returns nil, int64, float64 or string.
func (r *renderer) cell(col int, v dta.Value) any {
	if v.IsMissing() {
		return nil
	}
	if r.tables != nil && r.tables[col] != nil {
		if label, ok := r.tables[col].Lookup(v); ok {
			return label
		}
	}
	if r.opts.Dates && r.ds.Columns[col].IsDate() {
		if n, ok := v.Int(); ok {
			return dta.DateFromDays(n).Format(dateLayout)
		}
		if f, ok := v.Real(); ok && f == float64(int64(f)) {
			return dta.DateFromDays(int64(f)).Format(dateLayout)
		}
	}
	return v.Interface()
}

func (r *renderer) row(i int) []any {
	row := make([]any, len(r.ds.Columns))
	for j, c := range r.ds.Columns {
		row[j] = r.cell(j, c.Values[i])
	}
	return row
}

// Slice returns rows [offset, offset+limit). A limit <= 0 means all
// remaining rows; offsets past the end give an empty table.
func Slice(ds *dta.Dataset, offset, limit int, opts Options) *Table {
	offset = min(max(offset, 0), ds.Rows)
	end := ds.Rows
	if limit > 0 {
		end = min(offset+limit, ds.Rows)
	}

	r := newRenderer(ds, opts)
	t := &Table{
		Columns: ds.Names(),
		Offset:  offset,
		Total:   ds.Rows,
		Rows:    make([][]any, 0, end-offset),
	}
	for i := offset; i < end; i++ {
		t.Rows = append(t.Rows, r.row(i))
	}
	return t
}
