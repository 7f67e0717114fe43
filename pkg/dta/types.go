package dta

import "fmt"

// Kind is the storage kind of a column.
type Kind uint8

const (
	KindByte Kind = iota + 1
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindByte:
		return "byte"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindString:
		return "str"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// StorageType is a column's on-disk type. Width is the cell size in bytes,
// which for strings is the declared fixed length.
type StorageType struct {
	Kind  Kind
	Width int
}

var (
	TypeByte   = StorageType{Kind: KindByte, Width: 1}
	TypeInt    = StorageType{Kind: KindInt, Width: 2}
	TypeLong   = StorageType{Kind: KindLong, Width: 4}
	TypeFloat  = StorageType{Kind: KindFloat, Width: 4}
	TypeDouble = StorageType{Kind: KindDouble, Width: 8}
)

// TypeString returns a fixed-length string type of the given width.
func TypeString(width int) StorageType {
	return StorageType{Kind: KindString, Width: width}
}

func numericType(k Kind) StorageType {
	switch k {
	case KindByte:
		return TypeByte
	case KindInt:
		return TypeInt
	case KindLong:
		return TypeLong
	case KindFloat:
		return TypeFloat
	case KindDouble:
		return TypeDouble
	}
	return StorageType{Kind: k}
}

// IsString reports whether cells are fixed-length strings.
func (t StorageType) IsString() bool { return t.Kind == KindString }

// IsInteger reports whether cells are byte, int or long.
func (t StorageType) IsInteger() bool {
	return t.Kind == KindByte || t.Kind == KindInt || t.Kind == KindLong
}

// IsReal reports whether cells are float or double.
func (t StorageType) IsReal() bool { return t.Kind == KindFloat || t.Kind == KindDouble }

func (t StorageType) String() string {
	if t.Kind == KindString {
		return fmt.Sprintf("str%d", t.Width)
	}
	return t.Kind.String()
}

// tagScheme maps wire type tags to storage types for one numbering scheme.
// Numeric kinds have fixed tags; a string of width N is tagged N+stringOffset.
type tagScheme struct {
	name         string
	kinds        map[byte]Kind
	tags         map[Kind]byte
	stringOffset int
	maxString    int
}

var standardScheme = newTagScheme("standard", 0x7f, 128, map[byte]Kind{
	'b': KindByte,
	'i': KindInt,
	'l': KindLong,
	'f': KindFloat,
	'd': KindDouble,
})

var extendedScheme = newTagScheme("extended", 0, 244, map[byte]Kind{
	251: KindByte,
	252: KindInt,
	253: KindLong,
	254: KindFloat,
	255: KindDouble,
})

func newTagScheme(name string, stringOffset, maxString int, kinds map[byte]Kind) tagScheme {
	tags := make(map[Kind]byte, len(kinds))
	for tag, k := range kinds {
		tags[k] = tag
	}
	return tagScheme{
		name:         name,
		kinds:        kinds,
		tags:         tags,
		stringOffset: stringOffset,
		maxString:    maxString,
	}
}

func (s *tagScheme) decode(tag byte) (StorageType, error) {
	if k, ok := s.kinds[tag]; ok {
		return numericType(k), nil
	}
	width := int(tag) - s.stringOffset
	if width < 0 || width > s.maxString {
		return StorageType{}, fmt.Errorf("%w: tag %d in the %s numbering", ErrUnknownColumnType, tag, s.name)
	}
	return TypeString(width), nil
}

func (s *tagScheme) encode(t StorageType) (byte, error) {
	if t.Kind == KindString {
		if t.Width < 0 || t.Width > s.maxString {
			return 0, fmt.Errorf("%w: string width %d exceeds %d", ErrInvalidDataset, t.Width, s.maxString)
		}
		return byte(t.Width + s.stringOffset), nil
	}
	tag, ok := s.tags[t.Kind]
	if !ok {
		return 0, fmt.Errorf("%w: no storage type set", ErrInvalidDataset)
	}
	return tag, nil
}
