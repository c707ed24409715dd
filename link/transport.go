/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package link

import (
	"errors"
	"fmt"
)

// ErrTransportClosed is returned when sending on a closed transport.
var ErrTransportClosed = errors.New("transport is closed")

// Transport carries whole frames between two ends of a link.
type Transport interface {
	fmt.Stringer

	// RemoteURI identifies the other end of the link.
	RemoteURI() string
	// MTU is the largest frame the transport can carry.
	MTU() int

	// Send a frame. The frame may be reused after Send returns.
	Send(frame []byte) error
	// OnFrame sets the callback for received frames.
	// The frame is only valid during the callback.
	OnFrame(onFrame func(frame []byte))
	// Receive frames until the transport is closed or fails.
	Receive() error
	// Close the transport. Receive returns after Close.
	// Closing a closed transport does nothing.
	Close() error
}

// ErrFrameTooLarge is returned when a frame exceeds the transport MTU.
type ErrFrameTooLarge struct {
	Size int
	Mtu  int
}

func (e ErrFrameTooLarge) Error() string {
	return fmt.Sprintf("frame of %d bytes exceeds MTU %d", e.Size, e.Mtu)
}
