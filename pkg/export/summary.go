// Package export renders decoded datasets for people and other programs:
// a metadata summary, tabular row slices, CSV and JSON.
package export

import (
	"github.com/ssargent/dtafile/pkg/dta"
)

// Summary is the metadata of a dataset without its cells.
type Summary struct {
	Version     string              `json:"version"`
	ByteOrder   string              `json:"byte_order"`
	Label       string              `json:"label,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
	Rows        int                 `json:"rows"`
	Variables   int                 `json:"variables"`
	Columns     []ColumnSummary     `json:"columns"`
	LabelTables []LabelTableSummary `json:"label_tables,omitempty"`
}

// ColumnSummary describes one variable.
type ColumnSummary struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Format     string `json:"format"`
	Label      string `json:"label,omitempty"`
	ValueLabel string `json:"value_label,omitempty"`
	Date       bool   `json:"date,omitempty"`
	Missing    int    `json:"missing"`
}

// LabelTableSummary lists a label table in table order.
type LabelTableSummary struct {
	Name   string       `json:"name"`
	Labels []LabelEntry `json:"labels"`
}

type LabelEntry struct {
	Code  int32  `json:"code"`
	Label string `json:"label"`
}

// Summarize collects the metadata of ds and counts missing cells per column.
func Summarize(ds *dta.Dataset) *Summary {
	s := &Summary{
		Version:   ds.Version.String(),
		ByteOrder: ds.ByteOrder.String(),
		Label:     ds.Label,
		Timestamp: ds.Timestamp,
		Rows:      ds.Rows,
		Variables: len(ds.Columns),
		Columns:   make([]ColumnSummary, len(ds.Columns)),
	}
	for i, c := range ds.Columns {
		missing := 0
		for _, v := range c.Values {
			if v.IsMissing() {
				missing++
			}
		}
		s.Columns[i] = ColumnSummary{
			Name:       c.Name,
			Type:       c.Type.String(),
			Format:     c.Format,
			Label:      c.Label,
			ValueLabel: c.ValueLabel,
			Date:       c.IsDate(),
			Missing:    missing,
		}
	}
	for _, t := range ds.LabelTables {
		s.LabelTables = append(s.LabelTables, SummarizeLabelTable(t))
	}
	return s
}

func SummarizeLabelTable(t *dta.LabelTable) LabelTableSummary {
	out := LabelTableSummary{Name: t.Name, Labels: make([]LabelEntry, 0, t.Len())}
	for code, label := range t.All() {
		out.Labels = append(out.Labels, LabelEntry{Code: code, Label: label})
	}
	return out
}
