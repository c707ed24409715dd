package link

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/named-data/ndnlp/std/log"
)

// WebSocketTransport carries one frame per binary WebSocket message.
type WebSocketTransport struct {
	remote  string
	c       *websocket.Conn
	running atomic.Bool

	sendMut sync.Mutex
	onFrame func(frame []byte)
}

// NewWebSocketTransport creates a transport on an established connection,
// e.g. one accepted with a websocket.Upgrader.
func NewWebSocketTransport(c *websocket.Conn) *WebSocketTransport {
	t := &WebSocketTransport{
		remote: "ws://" + c.RemoteAddr().String(),
		c:      c,
	}
	t.running.Store(true)
	return t
}

// DialWebSocket connects to a WebSocket server.
func DialWebSocket(url string) (*WebSocketTransport, error) {
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	t := NewWebSocketTransport(c)
	t.remote = url
	return t, nil
}

func (t *WebSocketTransport) String() string {
	return fmt.Sprintf("web-socket-transport (remote=%s)", t.remote)
}

func (t *WebSocketTransport) RemoteURI() string {
	return t.remote
}

func (t *WebSocketTransport) MTU() int {
	return MaxFrameSize
}

func (t *WebSocketTransport) OnFrame(onFrame func(frame []byte)) {
	t.onFrame = onFrame
}

func (t *WebSocketTransport) Send(frame []byte) error {
	if !t.running.Load() {
		return ErrTransportClosed
	}
	if len(frame) > t.MTU() {
		return ErrFrameTooLarge{Size: len(frame), Mtu: t.MTU()}
	}

	t.sendMut.Lock()
	defer t.sendMut.Unlock()
	if err := t.c.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		log.Warn(t, "Unable to send on socket - Face DOWN", "err", err)
		t.Close()
		return err
	}
	return nil
}

// Receive reads messages until the connection is closed.
func (t *WebSocketTransport) Receive() error {
	defer t.Close()

	for {
		mt, message, err := t.c.ReadMessage()
		if err != nil {
			if !t.running.Load() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			if websocket.IsUnexpectedCloseError(err) {
				log.Info(t, "WebSocket closed unexpectedly - Face DOWN", "err", err)
			} else {
				log.Warn(t, "Unable to read from WebSocket - Face DOWN", "err", err)
			}
			return err
		}

		if mt != websocket.BinaryMessage {
			log.Warn(t, "Ignored non-binary message")
			continue
		}
		if len(message) > t.MTU() {
			log.Warn(t, "Received frame larger than MTU - DROP", "size", len(message))
			continue
		}

		if t.onFrame != nil {
			t.onFrame(message)
		}
	}
}

func (t *WebSocketTransport) Close() error {
	if !t.running.Swap(false) {
		return nil
	}
	return t.c.Close()
}
