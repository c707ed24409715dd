package lp

import (
	"errors"
	"fmt"

	enc "github.com/named-data/ndnlp/std/encoding"
)

// ErrWrongType is returned when the outer TLV is not an LpPacket.
var ErrWrongType = errors.New("not an LpPacket")

// ErrMalformed is returned when the nested TLV structure cannot be parsed.
var ErrMalformed = errors.New("malformed LpPacket")

// ErrUnknownField is returned when an unrecognized field cannot be ignored.
var ErrUnknownField = errors.New("unrecognized field cannot be ignored")

// ErrFieldRepeated is returned when a non-repeatable field occurs more than once.
var ErrFieldRepeated = errors.New("non-repeatable field is repeated")

// ErrFieldOrder is returned when the fields are not in NDNLPv2 sort order.
var ErrFieldOrder = errors.New("fields are not in correct sort order")

// ErrDuplicate is the kind of ErrDuplicateField.
var ErrDuplicate = errors.New("field cannot be repeated")

// ErrOutOfRange is the kind of ErrIndexOutOfRange.
var ErrOutOfRange = errors.New("field index out of range")

// ErrPacketFormat is returned by WireDecode. The input is not adopted.
type ErrPacketFormat struct {
	TypeNum enc.TLNum
	Reason  error
	Err     error
}

func (e *ErrPacketFormat) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lp.Packet: %v (type %d): %v", e.Reason, e.TypeNum, e.Err)
	}
	return fmt.Sprintf("lp.Packet: %v (type %d)", e.Reason, e.TypeNum)
}

func (e *ErrPacketFormat) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Reason, e.Err}
	}
	return []error{e.Reason}
}

// ErrFieldDecode is returned when a field value does not have the expected shape.
type ErrFieldDecode struct {
	TypeNum enc.TLNum
	Err     error
}

func (e *ErrFieldDecode) Error() string {
	return fmt.Sprintf("lp: cannot decode field %d: %v", e.TypeNum, e.Err)
}

func (e *ErrFieldDecode) Unwrap() error {
	return e.Err
}

// ErrDuplicateField is returned when adding a non-repeatable field that is already present.
type ErrDuplicateField struct {
	TypeNum enc.TLNum
}

func (e *ErrDuplicateField) Error() string {
	return fmt.Sprintf("lp.Packet.Add: field %d cannot be repeated", e.TypeNum)
}

func (e *ErrDuplicateField) Unwrap() error {
	return ErrDuplicate
}

// ErrIndexOutOfRange is returned when the requested occurrence of a field does not exist.
type ErrIndexOutOfRange struct {
	TypeNum enc.TLNum
	Index   int
	Count   int
}

func (e *ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("lp.Packet: index %d out of range for field %d (count %d)", e.Index, e.TypeNum, e.Count)
}

func (e *ErrIndexOutOfRange) Unwrap() error {
	return ErrOutOfRange
}
