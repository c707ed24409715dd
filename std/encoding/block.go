package encoding

import "slices"

// Block is a TLV element that may be parsed into an ordered list of child elements.
//
// A Block decoded from wire keeps a reference to the original buffer.
// Modifying the children (Insert, Erase, Remove) invalidates the cached
// encoding; Encode re-derives it from the children.
type Block struct {
	typ      TLNum
	value    Buffer
	wire     Buffer
	elements []Block
	parsed   bool
}

// NewBlock creates a Block with the given type and value.
// The value is not copied.
func NewBlock(typ TLNum, value Buffer) Block {
	return Block{typ: typ, value: value}
}

// NewEmptyBlock creates a composite Block with no children.
func NewEmptyBlock(typ TLNum) Block {
	return Block{typ: typ, value: Buffer{}, parsed: true}
}

// ParseBlock parses buf as exactly one TLV element.
// The returned Block shares memory with buf.
func ParseBlock(buf Buffer) (Block, error) {
	r := NewBufferView(buf)
	b, err := readBlock(&r)
	if err != nil {
		return Block{}, err
	}
	if !r.IsEOF() {
		return Block{}, ErrTrailingBytes{TypeNum: b.typ, Extra: r.Remaining()}
	}
	return b, nil
}

// ReadBlock reads the next TLV element from a wire view.
// The element is copied only if it spans multiple segments.
func ReadBlock(r *WireView) (Block, error) {
	return readBlock(r)
}

func readBlock(r *WireView) (Block, error) {
	head := *r
	typ, err := r.ReadTLNum()
	if err != nil {
		return Block{}, err
	}
	l, err := r.ReadTLNum()
	if err != nil {
		return Block{}, err
	}
	if uint64(l) > uint64(r.Remaining()) {
		return Block{}, ErrBufferOverflow
	}
	hdr := r.Pos() - head.Pos()

	// read header and value together so the wire stays contiguous
	wire, err := head.ReadBuf(hdr + int(l))
	if err != nil {
		return Block{}, err
	}
	*r = head

	return Block{
		typ:   typ,
		value: wire[hdr:],
		wire:  wire,
	}, nil
}

// Type returns the TLV-TYPE.
func (b *Block) Type() TLNum {
	return b.typ
}

// Value returns the TLV-VALUE, encoding the children first if needed.
func (b *Block) Value() Buffer {
	if b.wire == nil && b.parsed {
		b.Encode()
	}
	return b.value
}

// Parse splits the value into child elements.
// It does nothing if the block is already parsed.
// On error the block is left unchanged.
func (b *Block) Parse() error {
	if b.parsed {
		return nil
	}

	elements := make([]Block, 0, 4)
	r := NewBufferView(b.value)
	for !r.IsEOF() {
		e, err := readBlock(&r)
		if err != nil {
			return ErrFailToParse{TypeNum: b.typ, Err: err}
		}
		elements = append(elements, e)
	}

	b.elements = elements
	b.parsed = true
	return nil
}

// IsParsed returns true if the children are available.
func (b *Block) IsParsed() bool {
	return b.parsed
}

// Elements returns the children of a parsed block.
// The returned slice must not be modified.
func (b *Block) Elements() []Block {
	return b.elements
}

// ElementsSize returns the number of children.
func (b *Block) ElementsSize() int {
	return len(b.elements)
}

// Insert inserts child before position pos.
//
// The mutators never write to the existing children list, so a Block copied
// by value keeps its own children.
func (b *Block) Insert(pos int, child Block) {
	b.mustBeParsed()
	b.elements = slices.Insert(slices.Clip(b.elements), pos, child)
	b.resetWire()
}

// Erase removes the child at position pos.
func (b *Block) Erase(pos int) {
	b.mustBeParsed()
	elements := make([]Block, 0, len(b.elements)-1)
	elements = append(elements, b.elements[:pos]...)
	b.elements = append(elements, b.elements[pos+1:]...)
	b.resetWire()
}

// Remove removes all children of type typ and returns how many were removed.
func (b *Block) Remove(typ TLNum) int {
	b.mustBeParsed()
	kept := make([]Block, 0, len(b.elements))
	for _, e := range b.elements {
		if e.typ != typ {
			kept = append(kept, e)
		}
	}
	removed := len(b.elements) - len(kept)
	if removed > 0 {
		b.elements = kept
		b.resetWire()
	}
	return removed
}

// HasWire returns true if the cached encoding is up to date.
func (b *Block) HasWire() bool {
	return b.wire != nil
}

// Size returns the total encoded size of the block.
func (b *Block) Size() int {
	if b.wire != nil {
		return len(b.wire)
	}
	l := b.valueSize()
	return b.typ.EncodingLength() + TLNum(l).EncodingLength() + l
}

func (b *Block) valueSize() int {
	if !b.parsed {
		return len(b.value)
	}
	l := 0
	for i := range b.elements {
		l += b.elements[i].Size()
	}
	return l
}

// Encode returns the TLV encoding of the block.
// The cached encoding is returned if nothing changed since the last call.
func (b *Block) Encode() Buffer {
	if b.wire != nil {
		return b.wire
	}

	l := b.valueSize()
	w := NewWriter(b.typ.EncodingLength() + TLNum(l).EncodingLength() + l)
	hdr := w.AppendTLNum(b.typ)
	hdr += w.AppendTLNum(TLNum(l))
	if b.parsed {
		for _, e := range b.elements {
			w.AppendBytes(e.Encode())
		}
	} else {
		w.AppendBytes(b.value)
	}

	b.wire = w.Bytes()
	b.value = b.wire[hdr:]
	return b.wire
}

func (b *Block) resetWire() {
	b.wire = nil
	b.value = nil
}

func (b *Block) mustBeParsed() {
	if !b.parsed {
		panic("[BUG] encoding.Block: children accessed before Parse")
	}
}
