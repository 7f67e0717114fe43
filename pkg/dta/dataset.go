package dta

import (
	"fmt"
	"strings"
)

// Column is one variable: its descriptor fields and its cells.
type Column struct {
	Name       string
	Type       StorageType
	Format     string
	ValueLabel string // name of the label table, empty for none
	Label      string
	Values     []Value
}

// IsDate reports whether the display format marks the column as a date.
func (c *Column) IsDate() bool {
	return IsDateFormat(c.Format)
}

// Dataset is a decoded file, or the input to an encode.
type Dataset struct {
	Version     Version
	ByteOrder   ByteOrder
	Label       string
	Timestamp   string
	Rows        int
	Columns     []*Column
	LabelTables []*LabelTable
}

// Column returns the column with the given name, or nil.
func (d *Dataset) Column(name string) *Column {
	for _, c := range d.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// LabelTable returns the label table with the given name, or nil.
func (d *Dataset) LabelTable(name string) *LabelTable {
	if name == "" {
		return nil
	}
	for _, t := range d.LabelTables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// ColumnLabelTables resolves each column's ValueLabel against the dataset's
// tables. The result is parallel to Columns; unresolved links are nil.
func (d *Dataset) ColumnLabelTables() []*LabelTable {
	tables := make([]*LabelTable, len(d.Columns))
	for i, c := range d.Columns {
		tables[i] = d.LabelTable(c.ValueLabel)
	}
	return tables
}

// Row returns the cells of row i in column order.
func (d *Dataset) Row(i int) []Value {
	row := make([]Value, len(d.Columns))
	for j, c := range d.Columns {
		row[j] = c.Values[i]
	}
	return row
}

// Validate checks that every column holds exactly Rows cells.
func (d *Dataset) Validate() error {
	if d.Rows < 0 {
		return fmt.Errorf("%w: negative row count %d", ErrInvalidDataset, d.Rows)
	}
	for _, c := range d.Columns {
		if len(c.Values) != d.Rows {
			return fmt.Errorf("%w: column %q has %d values, want %d", ErrInvalidDataset, c.Name, len(c.Values), d.Rows)
		}
	}
	return nil
}

// Names returns the column names in order.
func (d *Dataset) Names() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

func (d *Dataset) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "dta %s (%s): %d variables, %d observations", d.Version, d.ByteOrder, len(d.Columns), d.Rows)
	if d.Label != "" {
		fmt.Fprintf(&b, ", %q", d.Label)
	}
	return b.String()
}
