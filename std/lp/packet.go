package lp

import (
	"sort"

	enc "github.com/named-data/ndnlp/std/encoding"
	"github.com/named-data/ndnlp/std/types/tag"
)

// Packet is an NDNLPv2 LpPacket.
//
// The fields are kept as encoded children of a single LpPacket block, sorted
// by location (header before fragment) and then by TLV-TYPE. Fields of the
// same type keep their insertion order. Typed access goes through a Field
// descriptor: see Get, List, Add and Set.
//
// Tags hold process-local metadata. They are never encoded.
//
// A Packet is not safe for concurrent use.
type Packet struct {
	Tags tag.Host
	wire enc.Block
}

// NewPacket creates an empty packet.
func NewPacket() *Packet {
	return &Packet{wire: enc.NewEmptyBlock(TypeLpPacket)}
}

// ParsePacket decodes a packet from wire format.
func ParsePacket(buf []byte) (*Packet, error) {
	p := NewPacket()
	if err := p.WireDecodeBytes(buf); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Packet) block() *enc.Block {
	if !p.wire.IsParsed() {
		p.wire = enc.NewEmptyBlock(TypeLpPacket)
	}
	return &p.wire
}

// Empty returns true if the packet has no field.
func (p *Packet) Empty() bool {
	return p.block().ElementsSize() == 0
}

// Has returns true if the field occurs at least once.
func (p *Packet) Has(f FieldInfo) bool {
	return p.Count(f) > 0
}

// Count returns the number of occurrences of the field.
func (p *Packet) Count(f FieldInfo) int {
	typ := f.TlvType()
	count := 0
	for _, e := range p.block().Elements() {
		if e.Type() == typ {
			count++
		}
	}
	return count
}

// Remove removes the index-th occurrence of the field.
func (p *Packet) Remove(f FieldInfo, index int) error {
	b := p.block()
	pos, count := p.find(f.TlvType(), index)
	if pos < 0 {
		return &ErrIndexOutOfRange{TypeNum: f.TlvType(), Index: index, Count: count}
	}
	b.Erase(pos)
	return nil
}

// Clear removes all occurrences of the field.
func (p *Packet) Clear(f FieldInfo) {
	p.block().Remove(f.TlvType())
}

// find returns the child position of the index-th element of type typ,
// or -1 and the number of such elements if there are not enough.
func (p *Packet) find(typ enc.TLNum, index int) (pos int, count int) {
	for i, e := range p.block().Elements() {
		if e.Type() != typ {
			continue
		}
		if count == index {
			return i, count
		}
		count++
	}
	return -1, count
}

// Get decodes the index-th occurrence of the field.
func Get[T any](p *Packet, f Field[T], index int) (T, error) {
	pos, count := p.find(f.TlvType(), index)
	if pos < 0 {
		var zero T
		return zero, &ErrIndexOutOfRange{TypeNum: f.TlvType(), Index: index, Count: count}
	}
	return f.Decode(p.block().Elements()[pos])
}

// GetFirst decodes the first occurrence of the field.
func GetFirst[T any](p *Packet, f Field[T]) (T, error) {
	return Get(p, f, 0)
}

// List decodes all occurrences of the field, in packet order.
// The result is empty, not nil, if the field is absent.
func List[T any](p *Packet, f Field[T]) ([]T, error) {
	typ := f.TlvType()
	ret := make([]T, 0)
	for _, e := range p.block().Elements() {
		if e.Type() != typ {
			continue
		}
		v, err := f.Decode(e)
		if err != nil {
			return nil, err
		}
		ret = append(ret, v)
	}
	return ret, nil
}

// Add encodes a value of the field and inserts it at its sorted position,
// after all existing occurrences of the same field.
func Add[T any](p *Packet, f Field[T], v T) error {
	if !f.IsRepeatable() && p.Has(f) {
		return &ErrDuplicateField{TypeNum: f.TlvType()}
	}

	var est enc.Estimator
	size := f.Encode(&est, v)
	w := enc.NewWriter(size)
	f.Encode(w, v)
	child, err := enc.ParseBlock(w.Bytes())
	if err != nil || child.Type() != f.TlvType() {
		panic("[BUG] lp.Add: field descriptor produced an invalid encoding")
	}

	b := p.block()
	key := lookupFieldInfo(f.TlvType())
	elements := b.Elements()
	pos := sort.Search(len(elements), func(i int) bool {
		return compareFieldSortOrder(key, lookupFieldInfo(elements[i].Type()))
	})
	b.Insert(pos, child)
	return nil
}

// Set removes all occurrences of the field, then adds one with the value.
func Set[T any](p *Packet, f Field[T], v T) {
	p.Clear(f)
	if err := Add(p, f, v); err != nil {
		panic("[BUG] lp.Set: " + err.Error())
	}
}

// WireEncode returns the packet in wire format.
// The encoding is cached until the packet is modified.
func (p *Packet) WireEncode() enc.Block {
	// hand out a block that does not share the children list
	ret, err := enc.ParseBlock(p.block().Encode())
	if err != nil {
		panic("[BUG] lp.Packet: cannot parse own encoding")
	}
	return ret
}

// Bytes returns the encoded packet. The result must not be modified.
func (p *Packet) Bytes() enc.Buffer {
	return p.block().Encode()
}

// WireDecodeBytes decodes the packet from wire format.
func (p *Packet) WireDecodeBytes(buf []byte) error {
	wire, err := enc.ParseBlock(buf)
	if err != nil {
		return &ErrPacketFormat{Reason: ErrMalformed, Err: err}
	}
	return p.WireDecode(wire)
}

// WireDecode replaces the fields of the packet with those of wire.
//
// A bare Interest or Data becomes the Fragment of an otherwise empty packet.
// On error the packet is unchanged. Tags are not touched.
func (p *Packet) WireDecode(wire enc.Block) error {
	b, err := enc.ParseBlock(wire.Encode())
	if err != nil {
		return &ErrPacketFormat{TypeNum: wire.Type(), Reason: ErrMalformed, Err: err}
	}

	switch b.Type() {
	case TypeInterest, TypeData:
		bare := enc.NewEmptyBlock(TypeLpPacket)
		bare.Insert(0, enc.NewBlock(TypeFragment, b.Encode()))
		p.wire = bare
		return nil
	case TypeLpPacket:
		// decoded below
	default:
		return &ErrPacketFormat{TypeNum: b.Type(), Reason: ErrWrongType}
	}

	if err := b.Parse(); err != nil {
		return &ErrPacketFormat{TypeNum: TypeLpPacket, Reason: ErrMalformed, Err: err}
	}

	var prev fieldInfo
	for i, e := range b.Elements() {
		info := lookupFieldInfo(e.Type())
		if !info.isRecognized && !info.canIgnore {
			return &ErrPacketFormat{TypeNum: info.tlvType, Reason: ErrUnknownField}
		}
		if i > 0 {
			if info.tlvType == prev.tlvType && !info.isRepeatable {
				return &ErrPacketFormat{TypeNum: info.tlvType, Reason: ErrFieldRepeated}
			}
			if info.tlvType != prev.tlvType && !compareFieldSortOrder(prev, info) {
				return &ErrPacketFormat{TypeNum: info.tlvType, Reason: ErrFieldOrder}
			}
		}
		prev = info
	}

	p.wire = b
	return nil
}
