package dta_test

import (
	"bytes"
	"errors"
	"fmt"
	"log"

	"github.com/ssargent/dtafile/pkg/dta"
)

// ExampleEncode writes a small dataset as version 8 and reads it back.
func ExampleEncode() {
	yesno := dta.NewLabelTableFromLabels("yesno", "no", "yes")
	ds := &dta.Dataset{
		Label: "Example",
		Rows:  3,
		Columns: []*dta.Column{
			{Name: "id", Type: dta.TypeInt, Values: []dta.Value{dta.Int(1), dta.Int(2), dta.Int(3)}},
			{Name: "smoker", Type: dta.TypeByte, ValueLabel: "yesno", Values: []dta.Value{dta.Int(2), dta.Missing(), dta.Int(1)}},
			{Name: "town", Type: dta.TypeString(0), Values: []dta.Value{dta.Text("Bergen"), dta.Text("Oslo"), dta.Text("")}},
		},
		LabelTables: []*dta.LabelTable{yesno},
	}

	var buf bytes.Buffer
	if err := dta.Encode(&buf, ds, dta.Version8, nil); err != nil {
		log.Fatal(err)
	}

	got, err := dta.Decode(&buf)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(got.Version, got.Label, got.Rows)
	for i := 0; i < got.Rows; i++ {
		smoker := got.Column("smoker").Values[i]
		label, _ := got.LabelTable("yesno").Lookup(smoker)
		fmt.Printf("%v %q\n", got.Row(i), label)
	}
	fmt.Println(got.Column("town").Type)

	// Output:
	// 8 Example 3
	// [1 2 Bergen] "yes"
	// [2 . Oslo] ""
	// [3 1 ] "no"
	// str6
}

// ExampleDecode_errors shows how to match an error class.
func ExampleDecode_errors() {
	_, err := dta.Decode(bytes.NewReader([]byte{0x72, 0x02}))
	fmt.Println(errors.Is(err, dta.ErrUnsupportedFormat))
	// Output:
	// true
}
