//go:build !tinygo

package link

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/named-data/ndnlp/std/log"
	"github.com/quic-go/quic-go"
)

// QuicAlpn is the ALPN protocol of NDN over QUIC datagrams.
const QuicAlpn = "ndn"

// quicMtu is below the datagram payload limit without path MTU discovery.
const quicMtu = 1000

// QuicConfig returns the QUIC settings used by QUIC transports.
func QuicConfig() *quic.Config {
	return &quic.Config{
		EnableDatagrams:         true,
		MaxIdleTimeout:          60 * time.Second,
		KeepAlivePeriod:         30 * time.Second,
		DisablePathMTUDiscovery: true,
	}
}

// QuicTransport carries one frame per QUIC datagram.
// Datagrams are unreliable, so lost fragments are handled by reassembly eviction.
type QuicTransport struct {
	remote  string
	c       quic.Connection
	running atomic.Bool
	onFrame func(frame []byte)
}

// NewQuicTransport creates a transport on an established connection,
// e.g. one accepted from a listener created with ListenQuic.
func NewQuicTransport(c quic.Connection) *QuicTransport {
	t := &QuicTransport{
		remote: "quic://" + c.RemoteAddr().String(),
		c:      c,
	}
	t.running.Store(true)
	return t
}

// DialQuic connects to a QUIC server at addr (host:port).
func DialQuic(ctx context.Context, addr string, tlsConf *tls.Config) (*QuicTransport, error) {
	tlsConf = tlsConf.Clone()
	tlsConf.NextProtos = []string{QuicAlpn}
	c, err := quic.DialAddr(ctx, addr, tlsConf, QuicConfig())
	if err != nil {
		return nil, err
	}
	return NewQuicTransport(c), nil
}

// ListenQuic listens for QUIC connections on addr (host:port).
func ListenQuic(addr string, tlsConf *tls.Config) (*quic.Listener, error) {
	tlsConf = tlsConf.Clone()
	tlsConf.NextProtos = []string{QuicAlpn}
	return quic.ListenAddr(addr, tlsConf, QuicConfig())
}

func (t *QuicTransport) String() string {
	return fmt.Sprintf("quic-transport (remote=%s)", t.remote)
}

func (t *QuicTransport) RemoteURI() string {
	return t.remote
}

func (t *QuicTransport) MTU() int {
	return quicMtu
}

func (t *QuicTransport) OnFrame(onFrame func(frame []byte)) {
	t.onFrame = onFrame
}

func (t *QuicTransport) Send(frame []byte) error {
	if !t.running.Load() {
		return ErrTransportClosed
	}
	if len(frame) > t.MTU() {
		return ErrFrameTooLarge{Size: len(frame), Mtu: t.MTU()}
	}

	if err := t.c.SendDatagram(frame); err != nil {
		log.Warn(t, "Unable to send on connection - Face DOWN", "err", err)
		t.Close()
		return err
	}
	return nil
}

// Receive reads datagrams until the connection is closed.
func (t *QuicTransport) Receive() error {
	defer t.Close()

	for {
		message, err := t.c.ReceiveDatagram(t.c.Context())
		if err != nil {
			if !t.running.Load() {
				return nil
			}
			var appErr *quic.ApplicationError
			if errors.As(err, &appErr) && appErr.Remote {
				log.Info(t, "Connection closed by peer - Face DOWN")
				return nil
			}
			log.Warn(t, "Unable to read from connection - Face DOWN", "err", err)
			return err
		}

		if len(message) > MaxFrameSize {
			log.Warn(t, "Received frame larger than MTU - DROP", "size", len(message))
			continue
		}

		if t.onFrame != nil {
			t.onFrame(message)
		}
	}
}

func (t *QuicTransport) Close() error {
	if !t.running.Swap(false) {
		return nil
	}
	return t.c.CloseWithError(0, "")
}
