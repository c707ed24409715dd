package io

import (
	"errors"
	"fmt"
	"io"
	"math"

	enc "github.com/named-data/ndnlp/std/encoding"
)

// ErrFrameTooLarge is returned when no complete TLV element fits in maxFrame bytes.
var ErrFrameTooLarge = errors.New("received too much data without valid TLV block")

// ReadTlvStream reads TLV elements from a byte stream and calls onFrame with
// each complete element, until EOF, an error, or onFrame returns false.
// The frame is only valid during the callback.
//
// Read errors for which ignoreError returns true are skipped.
func ReadTlvStream(
	reader io.Reader,
	maxFrame int,
	onFrame func([]byte) bool,
	ignoreError func(error) bool,
) error {
	recvBuf := make([]byte, maxFrame*8)
	recvOff := 0
	tlvOff := 0

	for {
		// keep room for at least one full frame
		if len(recvBuf)-recvOff < maxFrame {
			copy(recvBuf, recvBuf[tlvOff:recvOff])
			recvOff -= tlvOff
			tlvOff = 0
		}

		readSize, err := reader.Read(recvBuf[recvOff:])
		recvOff += readSize

		// deliver what we have before looking at the error
		for recvOff > tlvOff {
			size, ok := frameSize(recvBuf[tlvOff:recvOff])
			if !ok || recvOff-tlvOff < size {
				if recvOff-tlvOff > maxFrame || size > maxFrame {
					return fmt.Errorf("%w (%d bytes buffered)", ErrFrameTooLarge, recvOff-tlvOff)
				}
				break
			}
			if !onFrame(recvBuf[tlvOff : tlvOff+size]) {
				return nil
			}
			tlvOff += size
		}

		if err != nil {
			if ignoreError != nil && ignoreError(err) {
				continue
			}
			if errors.Is(err, io.EOF) {
				if recvOff > tlvOff {
					return io.ErrUnexpectedEOF
				}
				return nil
			}
			return err
		}
	}
}

// frameSize returns the total size of the TLV element at the start of buf,
// if its header is complete.
func frameSize(buf []byte) (int, bool) {
	rdr := enc.NewBufferView(buf)
	typ, err := rdr.ReadTLNum()
	if err != nil {
		return 0, false
	}
	l, err := rdr.ReadTLNum()
	if err != nil {
		return 0, false
	}
	if uint64(l) > math.MaxInt32 {
		return math.MaxInt32, true
	}
	return typ.EncodingLength() + l.EncodingLength() + int(l), true
}
