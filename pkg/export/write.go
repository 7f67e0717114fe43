package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/ssargent/dtafile/pkg/dta"
)

// Format is an output encoding for rows.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts "csv" and "json".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatJSON:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Write renders every row of ds in the given format.
func Write(w io.Writer, ds *dta.Dataset, format Format, opts Options) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, ds, opts)
	case FormatJSON:
		return WriteJSON(w, ds, opts)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// WriteCSV writes a header row of column names, then one record per row.
// Missing cells are empty fields.
func WriteCSV(w io.Writer, ds *dta.Dataset, opts Options) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ds.Names()); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	r := newRenderer(ds, opts)
	record := make([]string, len(ds.Columns))
	for i := 0; i < ds.Rows; i++ {
		for j, cell := range r.row(i) {
			record[j] = csvField(cell)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvField(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return v
	}
	return fmt.Sprint(cell)
}

// WriteJSON writes the whole dataset as one Table object.
func WriteJSON(w io.Writer, ds *dta.Dataset, opts Options) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Slice(ds, 0, 0, opts)); err != nil {
		return fmt.Errorf("failed to write json: %w", err)
	}
	return nil
}
