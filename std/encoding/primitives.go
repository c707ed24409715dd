package encoding

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
)

// TLNum is a TLV-TYPE or TLV-LENGTH, encoded as a VAR-NUMBER.
type TLNum uint64

// Nat is a NonNegativeInteger, encoded in 1, 2, 4 or 8 bytes.
type Nat uint64

// VAR-NUMBER markers of the 2, 4 and 8 byte forms.
const (
	varNum16 = 0xfd
	varNum32 = 0xfe
	varNum64 = 0xff
)

// uintSize is the smallest of 1, 2, 4 and 8 bytes that holds x.
func uintSize(x uint64) int {
	switch {
	case x <= math.MaxUint8:
		return 1
	case x <= math.MaxUint16:
		return 2
	case x <= math.MaxUint32:
		return 4
	}
	return 8
}

// putUint writes x into the first n bytes of buf, big endian.
func putUint(buf []byte, x uint64, n int) {
	switch n {
	case 1:
		buf[0] = byte(x)
	case 2:
		binary.BigEndian.PutUint16(buf, uint16(x))
	case 4:
		binary.BigEndian.PutUint32(buf, uint32(x))
	default:
		binary.BigEndian.PutUint64(buf, x)
	}
}

func getUint(buf []byte) (x uint64) {
	for _, b := range buf {
		x = x<<8 | uint64(b)
	}
	return x
}

func (v TLNum) EncodingLength() int {
	if v < varNum16 {
		return 1
	}
	return 1 + max(uintSize(uint64(v)), 2)
}

// EncodeInto writes v into buf, which must hold EncodingLength() bytes.
func (v TLNum) EncodeInto(buf Buffer) int {
	if v < varNum16 {
		buf[0] = byte(v)
		return 1
	}

	n := max(uintSize(uint64(v)), 2)
	switch n {
	case 2:
		buf[0] = varNum16
	case 4:
		buf[0] = varNum32
	default:
		buf[0] = varNum64
	}
	putUint(buf[1:], uint64(v), n)
	return 1 + n
}

// ReadTLNum reads a VAR-NUMBER.
// A number cut short by the end of the view is io.ErrUnexpectedEOF.
func (r *WireView) ReadTLNum() (TLNum, error) {
	x, err := r.ReadByte()
	if err != nil {
		return 0, err
	}

	var n int
	switch x {
	case varNum16:
		n = 2
	case varNum32:
		n = 4
	case varNum64:
		n = 8
	default:
		return TLNum(x), nil
	}

	var val uint64
	for range n {
		b, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
		val = val<<8 | uint64(b)
	}
	return TLNum(val), nil
}

func (v Nat) EncodingLength() int {
	return uintSize(uint64(v))
}

func (v Nat) EncodeInto(buf Buffer) int {
	n := v.EncodingLength()
	putUint(buf, uint64(v), n)
	return n
}

func (v Nat) Bytes() []byte {
	buf := make([]byte, v.EncodingLength())
	v.EncodeInto(buf)
	return buf
}

// ParseNat parses a NonNegativeInteger occupying the whole buffer.
func ParseNat(buf Buffer) (val Nat, pos int, err error) {
	switch len(buf) {
	case 1, 2, 4, 8:
		return Nat(getUint(buf)), len(buf), nil
	}
	return 0, 0, ErrFormat{"natural number length is not 1, 2, 4 or 8"}
}

// ParseFixedUint64 parses a big endian integer that must be exactly 8 bytes.
func ParseFixedUint64(buf Buffer) (uint64, error) {
	if len(buf) != 8 {
		return 0, ErrFormat{"fixed-width integer length is not 8"}
	}
	return getUint(buf), nil
}
