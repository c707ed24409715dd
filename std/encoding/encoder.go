package encoding

import "encoding/binary"

// Encoder is a sink of TLV encoded bytes.
// Every call returns the number of bytes it produced, so a single encoding
// function can be run against an Estimator to size a buffer, then against
// a Writer to fill it.
type Encoder interface {
	AppendTLNum(v TLNum) int
	AppendNat(v Nat) int
	AppendFixedUint64(v uint64) int
	AppendBytes(b []byte) int
}

// Estimator computes the encoded size without writing anything.
type Estimator struct {
	size int
}

func (e *Estimator) AppendTLNum(v TLNum) int {
	n := v.EncodingLength()
	e.size += n
	return n
}

func (e *Estimator) AppendNat(v Nat) int {
	n := v.EncodingLength()
	e.size += n
	return n
}

func (e *Estimator) AppendFixedUint64(uint64) int {
	e.size += 8
	return 8
}

func (e *Estimator) AppendBytes(b []byte) int {
	e.size += len(b)
	return len(b)
}

// Size returns the number of bytes estimated so far.
func (e *Estimator) Size() int {
	return e.size
}

// Writer appends encoded bytes into a buffer.
type Writer struct {
	buf Buffer
}

// NewWriter creates a Writer with the given capacity.
// If the capacity comes from an Estimator, no reallocation happens.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make(Buffer, 0, capacity)}
}

func (w *Writer) grow(n int) Buffer {
	l := len(w.buf)
	w.buf = append(w.buf, make([]byte, n)...)
	return w.buf[l:]
}

func (w *Writer) AppendTLNum(v TLNum) int {
	return v.EncodeInto(w.grow(v.EncodingLength()))
}

func (w *Writer) AppendNat(v Nat) int {
	return v.EncodeInto(w.grow(v.EncodingLength()))
}

func (w *Writer) AppendFixedUint64(v uint64) int {
	binary.BigEndian.PutUint64(w.grow(8), v)
	return 8
}

func (w *Writer) AppendBytes(b []byte) int {
	w.buf = append(w.buf, b...)
	return len(b)
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() Buffer {
	return w.buf
}

// EncodeTLV writes a TLV element whose value is produced by body.
// body may be nil for an element with empty value.
// body is called twice: once to compute the TLV-LENGTH, once to write.
func EncodeTLV(e Encoder, typ TLNum, body func(Encoder) int) int {
	l := 0
	if body != nil {
		var est Estimator
		l = body(&est)
	}
	n := e.AppendTLNum(typ)
	n += e.AppendTLNum(TLNum(l))
	if body != nil {
		n += body(e)
	}
	return n
}

// EncodeNatTLV writes a TLV element holding a NonNegativeInteger.
func EncodeNatTLV(e Encoder, typ TLNum, v uint64) int {
	n := Nat(v)
	l := e.AppendTLNum(typ)
	l += e.AppendTLNum(TLNum(n.EncodingLength()))
	l += e.AppendNat(n)
	return l
}
