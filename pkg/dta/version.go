package dta

import (
	"fmt"
	"strings"
)

// Version identifies one of the supported on-disk format generations.
type Version int

const (
	Version5 Version = iota + 1
	Version6
	Version7
	Version7SE
	Version8
)

var versionTags = map[byte]Version{
	0x69: Version5,
	'l':  Version6,
	0x6e: Version7,
	111:  Version7SE,
	113:  Version8,
}

// versionFromTag maps the first byte of a file to its generation.
func versionFromTag(tag byte) (Version, error) {
	v, ok := versionTags[tag]
	if !ok {
		return 0, fmt.Errorf("%w: format tag 0x%02x is not a version 5-8 file", ErrUnsupportedFormat, tag)
	}
	return v, nil
}

// ParseVersion accepts "5", "6", "7", "7se" and "8".
func ParseVersion(s string) (Version, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "5":
		return Version5, nil
	case "6":
		return Version6, nil
	case "7":
		return Version7, nil
	case "7se", "7/se", "7-se":
		return Version7SE, nil
	case "8":
		return Version8, nil
	}
	return 0, fmt.Errorf("%w: version %q", ErrUnsupportedFormat, s)
}

// Tag returns the format tag byte written at offset 0.
func (v Version) Tag() byte {
	for tag, candidate := range versionTags {
		if candidate == v {
			return tag
		}
	}
	return 0
}

// Number is the release number, with 7/SE reported as 7.
func (v Version) Number() int {
	switch v {
	case Version5:
		return 5
	case Version6:
		return 6
	case Version7, Version7SE:
		return 7
	case Version8:
		return 8
	}
	return 0
}

func (v Version) String() string {
	if v == Version7SE {
		return "7/SE"
	}
	if n := v.Number(); n != 0 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("Version(%d)", int(v))
}

// Extended reports whether the generation uses the extended storage type
// numbering (7/SE and 8).
func (v Version) Extended() bool {
	return v == Version7SE || v == Version8
}

// Writable reports whether the encoder can produce this generation.
func (v Version) Writable() bool {
	return v == Version6 || v == Version7 || v == Version8
}

func (v Version) nameWidth() int {
	if v.Number() >= 7 {
		return 32
	}
	return 8
}

// labelWidth is the width of both the dataset label and the column labels.
func (v Version) labelWidth() int {
	if v == Version5 {
		return 32
	}
	return 81
}

// The characteristics length is an int32 from 7 on. The format manual
// documents a 2-byte field; real files disagree.
func (v Version) longCharacteristics() bool {
	return v.Number() >= 7
}

func (v Version) hasValueLabels() bool {
	return v.Number() > 5
}

func (v Version) scheme() *tagScheme {
	if v.Extended() {
		return &extendedScheme
	}
	return &standardScheme
}
