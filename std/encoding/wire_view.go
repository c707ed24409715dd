package encoding

import "io"

// WireView is a read cursor over a Wire.
// It is a small value; copying it forks the cursor.
type WireView struct {
	wire Wire
	seg  int // current segment
	off  int // offset in the current segment
	pos  int // bytes consumed
	size int // total bytes
}

func NewWireView(wire Wire) WireView {
	size, compact := 0, true
	for _, s := range wire {
		size += len(s)
		compact = compact && len(s) > 0
	}

	// the cursor never rests on an empty segment
	if !compact {
		segs := make(Wire, 0, len(wire))
		for _, s := range wire {
			if len(s) > 0 {
				segs = append(segs, s)
			}
		}
		wire = segs
	}

	return WireView{wire: wire, size: size}
}

func NewBufferView(buf Buffer) WireView {
	return NewWireView(Wire{buf})
}

func (r *WireView) IsEOF() bool {
	return r.pos >= r.size
}

func (r *WireView) Pos() int {
	return r.pos
}

func (r *WireView) Length() int {
	return r.size
}

func (r *WireView) Remaining() int {
	return r.size - r.pos
}

// next consumes up to n bytes of the current segment, without copying.
func (r *WireView) next(n int) []byte {
	cur := r.wire[r.seg][r.off:]
	if n < len(cur) {
		cur = cur[:n]
	}
	r.pos += len(cur)
	r.off += len(cur)
	if r.off == len(r.wire[r.seg]) {
		r.seg++
		r.off = 0
	}
	return cur
}

func (r *WireView) ReadByte() (byte, error) {
	if r.IsEOF() {
		return 0, io.EOF
	}
	return r.next(1)[0], nil
}

// Skip skips n bytes. The cursor does not move if fewer are left.
func (r *WireView) Skip(n int) error {
	if n > r.Remaining() {
		return ErrBufferOverflow
	}
	for n > 0 {
		n -= len(r.next(n))
	}
	return nil
}

// ReadWire reads size bytes without copying. The result may span segments.
func (r *WireView) ReadWire(size int) (Wire, error) {
	if size > r.Remaining() {
		return nil, ErrBufferOverflow
	}
	ret := Wire{}
	for size > 0 {
		seg := r.next(size)
		ret = append(ret, seg)
		size -= len(seg)
	}
	return ret, nil
}

// ReadBuf reads size contiguous bytes. It only copies when the bytes span segments.
func (r *WireView) ReadBuf(size int) ([]byte, error) {
	if size > r.Remaining() {
		return nil, ErrBufferOverflow
	}
	if size == 0 {
		return []byte{}, nil
	}

	first := r.next(size)
	if len(first) == size {
		return first, nil
	}
	ret := make([]byte, len(first), size)
	copy(ret, first)
	for len(ret) < size {
		ret = append(ret, r.next(size-len(ret))...)
	}
	return ret, nil
}
