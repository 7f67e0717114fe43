// Package dta reads and writes the .dta statistical data format, format
// generations 5, 6, 7, 7/SE and 8.
//
// A file is decoded into a Dataset: typed columns of equal length, the
// dataset label and timestamp, and any value label tables. A Dataset can be
// written back as generation 6, 7 or 8.
//
// # File Layout
//
// Every generation shares the same sequence of sections:
//
//	[header][descriptors][characteristics][data][value labels]
//
// Header:
//
//	[tag(1)][byteorder(1)][filetype(1)][pad(1)][nvar(2)][nobs(4)][label(32|81)][timestamp(18)]
//
// The tag selects the generation (0x69, 'l', 0x6e, 111, 113). The byte
// order byte is 1 for big-endian and 2 for little-endian files; every
// multi-byte field after it uses that order.
//
// Descriptors, one entry per column in each block:
//
//	[type(1)]* [name(w+1)]* [sortlist(2*(nvar+1))] [format(12)]* [labelname(w+1)]* [label(32|81)]*
//
// The name width w is 8 before generation 7 and 32 from 7 on. Type tags use
// one of two numbering schemes:
//
//	standard (5, 6, 7):  'b' 'i' 'l' 'f' 'd', strN = N + 0x7f
//	extended (7/SE, 8):  251 252 253 254 255, strN = N
//
// The data matrix is row-major, each cell as wide as its column type. Value
// label tables follow until the end of the stream.
//
// # Missing Values
//
// The format has no validity flag. Each numeric kind reserves one bit pattern
// (127, 32767, 2^31-1, 2^127, 2^1023) for "missing". The decoder turns those
// into Missing values, and the encoder turns Missing and non-finite reals
// back into them. WithRawSentinels disables the translation on decode.
//
// # Usage
//
//	f, err := os.Open("survey.dta")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	ds, err := dta.Decode(f, dta.WithCharmap(charmap.Windows1252))
//	if err != nil {
//	    return err
//	}
//
//	out, err := os.Create("survey-v8.dta")
//	if err != nil {
//	    return err
//	}
//	defer out.Close()
//	return dta.Encode(out, ds, dta.Version8, nil)
//
// # Value Labels
//
// Label tables keep their insertion order. On output the codes of every
// table are renumbered 1..N in that order, so a round trip preserves table
// names and label sequences but not arbitrary codes.
//
// # Error Handling
//
// Decode and Encode either succeed completely or return an error wrapping
// one of the Err values, for example:
//
//	if errors.Is(err, dta.ErrTruncatedStream) { ... }
//
// Lengths read from the stream are checked against Limits and, when the
// reader can report it, the remaining stream length before anything is
// allocated for them. Limits.MaxCells caps observations times variables,
// which the stream length alone cannot bound when every column is str0.
//
// # Thread Safety
//
// Decoder and Encoder keep no state between calls, but a single instance
// must not be used from several goroutines at once. A decoded Dataset is not
// synchronised; treat it as read-only when sharing it.
package dta
