package dta

// Error is a class of codec failure. Every error returned by the decoder or
// encoder wraps exactly one of the values below, so callers can match the
// class with errors.Is and still print the wrapped detail.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Errors
var (
	ErrUnsupportedFormat        = &Error{"unsupported format"}
	ErrMalformedHeader          = &Error{"malformed header"}
	ErrUnknownColumnType        = &Error{"unknown data type"}
	ErrMalformedCharacteristics = &Error{"unexpected nonzero terminal characteristic length"}
	ErrTruncatedStream          = &Error{"truncated stream"}
	ErrMalformedLabelTable      = &Error{"malformed value label table"}
	ErrLabelTableOverrun        = &Error{"value label text overrun"}
	ErrLabelTableUnderrun       = &Error{"value label text underrun"}
	ErrInvalidDataset           = &Error{"invalid dataset"}
)
