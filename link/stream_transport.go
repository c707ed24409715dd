/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package link

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/named-data/ndnlp/std/log"
	ndn_io "github.com/named-data/ndnlp/std/utils/io"
)

// StreamTransport carries frames back to back on a byte stream,
// such as a TCP or Unix connection or a pipe.
type StreamTransport struct {
	remote  string
	conn    io.ReadWriteCloser
	writer  *ndn_io.TimedWriter
	running atomic.Bool

	sendMut sync.Mutex
	onFrame func(frame []byte)
}

// NewStreamTransport creates a transport on a connected stream.
func NewStreamTransport(remote string, conn io.ReadWriteCloser) *StreamTransport {
	t := &StreamTransport{
		remote: remote,
		conn:   conn,
		writer: ndn_io.NewTimedWriter(conn, 4*MaxFrameSize),
	}
	t.running.Store(true)
	return t
}

func (t *StreamTransport) String() string {
	return fmt.Sprintf("stream-transport (remote=%s)", t.remote)
}

func (t *StreamTransport) RemoteURI() string {
	return t.remote
}

func (t *StreamTransport) MTU() int {
	return MaxFrameSize
}

func (t *StreamTransport) OnFrame(onFrame func(frame []byte)) {
	t.onFrame = onFrame
}

func (t *StreamTransport) Send(frame []byte) error {
	if !t.running.Load() {
		return ErrTransportClosed
	}
	if len(frame) > t.MTU() {
		return ErrFrameTooLarge{Size: len(frame), Mtu: t.MTU()}
	}

	t.sendMut.Lock()
	_, err := t.writer.Write(frame)
	t.sendMut.Unlock()
	if err != nil {
		log.Warn(t, "Unable to send on stream - Face DOWN", "err", err)
		t.Close()
		return err
	}
	return nil
}

// Receive reads frames until the stream ends or the transport is closed.
func (t *StreamTransport) Receive() error {
	defer t.Close()

	err := ndn_io.ReadTlvStream(t.conn, MaxFrameSize, func(b []byte) bool {
		if t.onFrame != nil {
			t.onFrame(b)
		}
		return t.running.Load()
	}, nil)
	if err != nil && t.running.Load() {
		log.Warn(t, "Unable to read from stream - Face DOWN", "err", err)
		return err
	}
	return nil
}

func (t *StreamTransport) Close() error {
	if !t.running.Swap(false) {
		return nil
	}
	t.sendMut.Lock()
	t.writer.Flush()
	t.sendMut.Unlock()
	return t.conn.Close()
}
