package link

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// DummyTransport is an in-memory transport.
// Sent frames are recorded, and delivered to the peer if there is one.
type DummyTransport struct {
	remote  string
	mtu     int
	running atomic.Bool
	closed  chan struct{}

	mutex   sync.Mutex
	sent    [][]byte
	onFrame func(frame []byte)
	peer    *DummyTransport
}

// NewDummyTransport creates a running dummy transport.
func NewDummyTransport(remote string, mtu int) *DummyTransport {
	t := &DummyTransport{
		remote: remote,
		mtu:    mtu,
		closed: make(chan struct{}),
		sent:   make([][]byte, 0),
	}
	t.running.Store(true)
	return t
}

// NewDummyPair creates two dummy transports connected to each other.
func NewDummyPair(mtu int) (a *DummyTransport, b *DummyTransport) {
	a = NewDummyTransport("dummy://b", mtu)
	b = NewDummyTransport("dummy://a", mtu)
	a.peer, b.peer = b, a
	return a, b
}

func (t *DummyTransport) String() string {
	return fmt.Sprintf("dummy-transport (remote=%s)", t.remote)
}

func (t *DummyTransport) RemoteURI() string {
	return t.remote
}

func (t *DummyTransport) MTU() int {
	return t.mtu
}

func (t *DummyTransport) OnFrame(onFrame func(frame []byte)) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.onFrame = onFrame
}

func (t *DummyTransport) Send(frame []byte) error {
	if !t.running.Load() {
		return ErrTransportClosed
	}
	if len(frame) > t.mtu {
		return ErrFrameTooLarge{Size: len(frame), Mtu: t.mtu}
	}

	frameCopy := make([]byte, len(frame))
	copy(frameCopy, frame)

	t.mutex.Lock()
	t.sent = append(t.sent, frameCopy)
	peer := t.peer
	t.mutex.Unlock()

	if peer != nil {
		return peer.Feed(frameCopy)
	}
	return nil
}

// Feed delivers a frame as if it was received.
func (t *DummyTransport) Feed(frame []byte) error {
	if !t.running.Load() {
		return ErrTransportClosed
	}
	t.mutex.Lock()
	onFrame := t.onFrame
	t.mutex.Unlock()

	if onFrame != nil {
		onFrame(frame)
	}
	return nil
}

// Sent returns and forgets the frames sent so far.
func (t *DummyTransport) Sent() [][]byte {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	sent := t.sent
	t.sent = make([][]byte, 0)
	return sent
}

// Receive blocks until the transport is closed.
// Frames are delivered by Feed.
func (t *DummyTransport) Receive() error {
	<-t.closed
	return nil
}

func (t *DummyTransport) Close() error {
	if !t.running.Swap(false) {
		return nil
	}
	close(t.closed)
	return nil
}
