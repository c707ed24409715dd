package lp

import (
	enc "github.com/named-data/ndnlp/std/encoding"
)

// Location is the part of an LpPacket a field may occupy.
type Location int

const (
	// LocationHeader is a header field, placed before the fragment.
	LocationHeader Location = iota + 1
	// LocationFragment is the Fragment field.
	LocationFragment
)

func (l Location) String() string {
	switch l {
	case LocationHeader:
		return "header"
	case LocationFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

// FieldInfo describes the structural properties of a field.
type FieldInfo interface {
	// TlvType is the TLV-TYPE identifying this field in a packet.
	TlvType() enc.TLNum
	// IsRepeatable reports whether the field may occur more than once.
	IsRepeatable() bool
	// Location is where the field may occur.
	Location() Location
}

// Field is a field descriptor: a reversible mapping between a value of type T
// and its TLV encoding.
//
// Decode is called with a block of type TlvType() and must fail with an
// *ErrFieldDecode if the value is malformed. Encode writes the complete TLV
// element and returns its size; Decode must accept what Encode produces.
type Field[T any] interface {
	FieldInfo
	Decode(b enc.Block) (T, error)
	Encode(e enc.Encoder, v T) int
}

// FieldDecl is the structural part of a field descriptor.
type FieldDecl struct {
	Type       enc.TLNum
	Repeatable bool
	Loc        Location
}

func (d FieldDecl) TlvType() enc.TLNum {
	return d.Type
}

func (d FieldDecl) IsRepeatable() bool {
	return d.Repeatable
}

func (d FieldDecl) Location() Location {
	return d.Loc
}

// codecField implements Field with a pair of value codec functions.
type codecField[T any] struct {
	FieldDecl
	decode func(value enc.Buffer) (T, error)
	encode func(e enc.Encoder, typ enc.TLNum, v T) int
}

// NewField creates a field descriptor from a value decoder and a TLV encoder.
// decode receives the TLV-VALUE; its errors are wrapped in *ErrFieldDecode.
func NewField[T any](
	decl FieldDecl,
	decode func(value enc.Buffer) (T, error),
	encode func(e enc.Encoder, typ enc.TLNum, v T) int,
) Field[T] {
	return codecField[T]{FieldDecl: decl, decode: decode, encode: encode}
}

func (f codecField[T]) Decode(b enc.Block) (T, error) {
	if b.Type() != f.Type {
		var zero T
		return zero, &ErrFieldDecode{TypeNum: f.Type, Err: enc.ErrFormat{Msg: "unexpected TLV-TYPE"}}
	}
	v, err := f.decode(b.Value())
	if err != nil {
		var zero T
		return zero, &ErrFieldDecode{TypeNum: f.Type, Err: err}
	}
	return v, nil
}

func (f codecField[T]) Encode(e enc.Encoder, v T) int {
	return f.encode(e, f.Type, v)
}

// NewNatField creates a descriptor of a NonNegativeInteger field.
func NewNatField(decl FieldDecl) Field[uint64] {
	return NewField(decl,
		func(value enc.Buffer) (uint64, error) {
			v, _, err := enc.ParseNat(value)
			return uint64(v), err
		},
		enc.EncodeNatTLV)
}

// NewSequenceField creates a descriptor of a field holding a fixed-width 8 byte Sequence.
func NewSequenceField(decl FieldDecl) Field[Sequence] {
	return NewField(decl,
		func(value enc.Buffer) (Sequence, error) {
			v, err := enc.ParseFixedUint64(value)
			return Sequence(v), err
		},
		func(e enc.Encoder, typ enc.TLNum, v Sequence) int {
			n := e.AppendTLNum(typ)
			n += e.AppendTLNum(8)
			n += e.AppendFixedUint64(uint64(v))
			return n
		})
}

// NewBytesField creates a descriptor of a field holding opaque bytes.
// Decoded values share memory with the packet.
func NewBytesField(decl FieldDecl) Field[[]byte] {
	return NewField(decl,
		func(value enc.Buffer) ([]byte, error) {
			return value, nil
		},
		encodeBytes[[]byte])
}

// EmptyValue is the value of a field whose presence is its only information.
type EmptyValue struct{}

// NewEmptyField creates a descriptor of a field that must have an empty value.
func NewEmptyField(decl FieldDecl) Field[EmptyValue] {
	return NewField(decl,
		func(value enc.Buffer) (EmptyValue, error) {
			if len(value) != 0 {
				return EmptyValue{}, enc.ErrFormat{Msg: "value must be empty"}
			}
			return EmptyValue{}, nil
		},
		func(e enc.Encoder, typ enc.TLNum, _ EmptyValue) int {
			return enc.EncodeTLV(e, typ, nil)
		})
}

func encodeBytes[B ~[]byte](e enc.Encoder, typ enc.TLNum, v B) int {
	n := e.AppendTLNum(typ)
	n += e.AppendTLNum(enc.TLNum(len(v)))
	n += e.AppendBytes(v)
	return n
}
