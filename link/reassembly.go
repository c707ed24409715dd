/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package link

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash"
	enc "github.com/named-data/ndnlp/std/encoding"
	"github.com/named-data/ndnlp/std/lp"
)

// maxFragCount bounds the memory taken by one partial packet.
const maxFragCount = 1024

// reassembler collects fragments into whole packets.
// Partial packets live in a fixed ring; a new packet evicts the oldest one.
type reassembler struct {
	index   int
	buffers []reassemblyBuffer
}

type reassemblyBuffer struct {
	key      uint64
	remote   string
	base     lp.Sequence
	frags    enc.Wire
	received int
}

func newReassembler(size int) *reassembler {
	return &reassembler{
		index:   -1,
		buffers: make([]reassemblyBuffer, size),
	}
}

func reassemblyKey(remote string, base lp.Sequence) uint64 {
	buf := make([]byte, len(remote)+8)
	copy(buf, remote)
	binary.BigEndian.PutUint64(buf[len(remote):], uint64(base))
	return xxhash.Sum64(buf)
}

// add stores a fragment and returns the whole packet once all fragments
// are present. The fragment must not be reused by the caller.
func (r *reassembler) add(
	remote string,
	base lp.Sequence,
	fragIndex uint64,
	fragCount uint64,
	frag enc.Buffer,
) (enc.Wire, error) {
	key := reassemblyKey(remote, base)

	var buf *reassemblyBuffer
	for i := range r.buffers {
		b := &r.buffers[i]
		if b.frags != nil && b.key == key && b.base == base && b.remote == remote {
			buf = b
			break
		}
	}

	if buf == nil {
		if fragCount > maxFragCount {
			return nil, fmt.Errorf("fragment count %d exceeds limit %d", fragCount, maxFragCount)
		}
		if fragIndex >= fragCount {
			return nil, fmt.Errorf("fragment index %d out of range (count %d)", fragIndex, fragCount)
		}
		r.index = (r.index + 1) % len(r.buffers)
		buf = &r.buffers[r.index]
		*buf = reassemblyBuffer{
			key:    key,
			remote: remote,
			base:   base,
			frags:  make(enc.Wire, fragCount),
		}
	}

	if fragCount != uint64(len(buf.frags)) {
		return nil, fmt.Errorf("fragment count %d does not match expected %d", fragCount, len(buf.frags))
	}
	if fragIndex >= fragCount {
		return nil, fmt.Errorf("fragment index %d out of range (count %d)", fragIndex, fragCount)
	}

	if buf.frags[fragIndex] == nil {
		buf.received++
	}
	buf.frags[fragIndex] = frag
	if buf.received < len(buf.frags) {
		return nil, nil
	}

	wire := buf.frags
	*buf = reassemblyBuffer{}
	return wire, nil
}

// pending returns the number of partially reassembled packets.
func (r *reassembler) pending() int {
	n := 0
	for i := range r.buffers {
		if r.buffers[i].frags != nil {
			n++
		}
	}
	return n
}
