package encoding

import (
	"encoding/hex"
	"fmt"
)

// Buffer is a buffer of bytes
type Buffer []byte

// Wire is a collection of Buffer. May be allocated in non-contiguous memory.
type Wire []Buffer

// Join combines all segments into one contiguous buffer.
// A single-segment wire is returned without copy.
func (w Wire) Join() []byte {
	if len(w) == 0 {
		return []byte{}
	} else if len(w) == 1 {
		return w[0]
	}

	b := make([]byte, w.Length())
	bp := copy(b, w[0])
	for _, v := range w[1:] {
		bp += copy(b[bp:], v)
	}
	return b
}

// Length returns the total number of bytes in all segments.
func (w Wire) Length() uint64 {
	ret := uint64(0)
	for _, v := range w {
		ret += uint64(len(v))
	}
	return ret
}

// Hex returns the hexadecimal representation of the buffer.
func (b Buffer) Hex() string {
	return hex.EncodeToString(b)
}

type ErrFormat struct {
	Msg string
}

func (e ErrFormat) Error() string {
	return e.Msg
}

var ErrBufferOverflow = fmt.Errorf("buffer overflow when parsing. One of the TLV Length is wrong")

// ErrTrailingBytes is returned when a buffer holds more than the single TLV it should contain.
type ErrTrailingBytes struct {
	TypeNum TLNum
	Extra   int
}

func (e ErrTrailingBytes) Error() string {
	return fmt.Sprintf("%d unexpected bytes after TLV block of type %d", e.Extra, e.TypeNum)
}

type ErrFailToParse struct {
	TypeNum TLNum
	Err     error
}

func (e ErrFailToParse) Error() string {
	return fmt.Sprintf("Failed to parse field %d: %v", e.TypeNum, e.Err)
}

func (e ErrFailToParse) Unwrap() error {
	return e.Err
}
