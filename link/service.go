/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package link

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	enc "github.com/named-data/ndnlp/std/encoding"
	"github.com/named-data/ndnlp/std/log"
	"github.com/named-data/ndnlp/std/lp"
	"github.com/named-data/ndnlp/std/types/optional"
	"github.com/named-data/ndnlp/std/types/tag"
	"github.com/named-data/ndnlp/std/utils"
)

const congestionMarkOverhead = 3 + 1 + 8
const nextHopFaceIdOverhead = 3 + 1 + 8

// ErrEmptyPacket is returned when sending a packet without content.
var ErrEmptyPacket = errors.New("network packet is empty")

// NetPacket is a network layer packet together with its link layer metadata.
// Tags carry header fields between the link service and upper layers.
type NetPacket struct {
	Wire enc.Wire
	Tags tag.Host
}

// Counters of a link Service.
type Counters struct {
	NInFrames   uint64 `yaml:"in_frames"`
	NOutFrames  uint64 `yaml:"out_frames"`
	NInPackets  uint64 `yaml:"in_packets"`
	NOutPackets uint64 `yaml:"out_packets"`
	NDrops      uint64 `yaml:"drops"`
}

// Service is a link service implementing the NDNLPv2 link protocol on top of
// a Transport. Outgoing packets are wrapped in LpPackets and fragmented when
// needed; incoming frames are decoded, reassembled and delivered to the
// packet handler.
type Service struct {
	faceId         uint64
	transport      Transport
	options        Options
	headerOverhead int
	onPacket       func(pkt *NetPacket)

	sendMut      sync.Mutex
	nextSequence lp.Sequence

	recvMut     sync.Mutex
	reassembler *reassembler

	nInFrames   atomic.Uint64
	nOutFrames  atomic.Uint64
	nInPackets  atomic.Uint64
	nOutPackets atomic.Uint64
	nDrops      atomic.Uint64
}

// NewService creates a link service for the face faceId on a transport.
// Received frames are handled as soon as the transport delivers them.
func NewService(faceId uint64, t Transport, options Options) (*Service, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}

	l := &Service{
		faceId:         faceId,
		transport:      t,
		options:        options,
		headerOverhead: options.headerOverhead(),
	}
	if options.IsReassemblyEnabled {
		l.reassembler = newReassembler(options.ReassemblyBuffers)
	}

	t.OnFrame(func(frame []byte) {
		l.HandleFrame(t.RemoteURI(), frame)
	})
	return l, nil
}

func (l *Service) String() string {
	return fmt.Sprintf("ndnlp-link-service (faceid=%d remote=%s)", l.faceId, l.transport.RemoteURI())
}

// FaceId of the face this service belongs to.
func (l *Service) FaceId() uint64 {
	return l.faceId
}

// Options gets the settings of the service.
func (l *Service) Options() Options {
	return l.options
}

// OnPacket sets the handler of received network packets.
// It must be called before frames are received.
func (l *Service) OnPacket(onPacket func(pkt *NetPacket)) {
	l.onPacket = onPacket
}

// Run receives frames until the transport is closed.
func (l *Service) Run() error {
	return l.transport.Receive()
}

// Close closes the transport.
func (l *Service) Close() error {
	return l.transport.Close()
}

// Counters returns a snapshot of the packet counters.
func (l *Service) Counters() Counters {
	return Counters{
		NInFrames:   l.nInFrames.Load(),
		NOutFrames:  l.nOutFrames.Load(),
		NInPackets:  l.nInPackets.Load(),
		NOutPackets: l.nOutPackets.Load(),
		NDrops:      l.nDrops.Load(),
	}
}

// mtu is the largest frame that may be sent.
func (l *Service) mtu() int {
	return min(l.options.Mtu, l.transport.MTU())
}

// Send wraps a network packet into one or more LpPackets and sends them.
// PitToken, CongestionMark, IncomingFaceId and NextHopFaceId are taken from
// the packet tags, subject to the options.
func (l *Service) Send(pkt *NetPacket) error {
	wire := pkt.Wire
	frameLen := int(wire.Length())
	if frameLen == 0 {
		return ErrEmptyPacket
	}

	pitToken := tag.Get[lp.PitTokenTag](&pkt.Tags)
	congestionMark := optional.CastInt[lp.CongestionMarkTag, uint64](
		optional.FromPtr(tag.Get[lp.CongestionMarkTag](&pkt.Tags)))

	inFace := optional.None[uint64]()
	if l.options.IsIncomingFaceIndicationEnabled {
		inFace = optional.CastInt[lp.IncomingFaceIdTag, uint64](
			optional.FromPtr(tag.Get[lp.IncomingFaceIdTag](&pkt.Tags)))
	}
	nextHop := optional.None[uint64]()
	if l.options.IsConsumerControlledForwardingEnabled {
		nextHop = optional.CastInt[lp.NextHopFaceIdTag, uint64](
			optional.FromPtr(tag.Get[lp.NextHopFaceIdTag](&pkt.Tags)))
	}

	// effective MTU after accounting for packet-specific overhead
	mtu := l.mtu()
	effectiveMtu := mtu - l.headerOverhead
	if pitToken != nil {
		pl := len(*pitToken)
		effectiveMtu -= 1 + enc.TLNum(pl).EncodingLength() + pl
	}
	if congestionMark.IsSet() {
		effectiveMtu -= congestionMarkOverhead
	}
	if nextHop.IsSet() {
		effectiveMtu -= nextHopFaceIdOverhead
	}
	if effectiveMtu <= 0 {
		l.nDrops.Add(1)
		return ErrFrameTooLarge{Size: mtu - effectiveMtu, Mtu: mtu}
	}

	// split up the packet if necessary
	fragments := []enc.Wire{wire}
	if frameLen > effectiveMtu {
		if !l.options.IsFragmentationEnabled {
			l.nDrops.Add(1)
			log.Info(l, "Attempted to send frame over MTU on link without fragmentation - DROP", "size", frameLen)
			return ErrFrameTooLarge{Size: frameLen, Mtu: effectiveMtu}
		}

		fragCount := (frameLen + effectiveMtu - 1) / effectiveMtu
		if fragCount > maxFragCount {
			l.nDrops.Add(1)
			return ErrFrameTooLarge{Size: frameLen, Mtu: effectiveMtu * maxFragCount}
		}

		fragments = make([]enc.Wire, fragCount)
		reader := enc.NewWireView(wire)
		for i := range fragments {
			readSize := min(effectiveMtu, reader.Remaining())
			frag, err := reader.ReadWire(readSize)
			if err != nil {
				panic("[BUG] link.Service: unexpected wire reading error")
			}
			fragments[i] = frag
		}
	}

	l.sendMut.Lock()
	defer l.sendMut.Unlock()

	for i, frag := range fragments {
		p := lp.NewPacket()
		lp.Set(p, lp.FragmentField, frag.Join())
		if len(fragments) > 1 {
			l.nextSequence++
			lp.Set(p, lp.SequenceField, l.nextSequence)
			lp.Set(p, lp.FragIndexField, uint64(i))
			lp.Set(p, lp.FragCountField, uint64(len(fragments)))
		}
		if pitToken != nil {
			lp.Set(p, lp.PitTokenField, []byte(*pitToken))
		}
		if v, ok := inFace.Get(); ok {
			lp.Set(p, lp.IncomingFaceIdField, v)
		}
		if v, ok := nextHop.Get(); ok {
			lp.Set(p, lp.NextHopFaceIdField, v)
		}
		if v, ok := congestionMark.Get(); ok {
			lp.Set(p, lp.CongestionMarkField, v)
		}

		frame := p.Bytes()
		if len(frame) > mtu {
			panic(fmt.Sprintf("[BUG] link.Service: frame of %d bytes over MTU %d", len(frame), mtu))
		}
		if err := l.transport.Send(frame); err != nil {
			l.nDrops.Add(1)
			log.Warn(l, "Unable to send frame - DROP", "err", err)
			return err
		}
		l.nOutFrames.Add(1)
	}

	l.nOutPackets.Add(1)
	return nil
}

// HandleFrame processes a frame received from remote.
// The frame is copied, so the caller may reuse it.
func (l *Service) HandleFrame(remote string, frame []byte) {
	l.nInFrames.Add(1)
	if log.HasTrace() {
		log.Trace(l, "Received frame", "remote", remote, "wire", enc.Buffer(frame).Hex())
	}

	pkt := l.receive(remote, frame)
	if pkt == nil {
		return
	}

	l.nInPackets.Add(1)
	if l.onPacket != nil {
		l.onPacket(pkt)
	}
}

// receive decodes a frame into a network packet. It returns nil if the frame
// is dropped or holds a fragment of an incomplete packet.
func (l *Service) receive(remote string, frame []byte) *NetPacket {
	frameCopy := make([]byte, len(frame))
	copy(frameCopy, frame)

	p := lp.NewPacket()
	if err := p.WireDecodeBytes(frameCopy); err != nil {
		return l.drop("Unable to decode incoming frame - DROP", "err", err)
	}

	// no fragment means IDLE packet
	fragment, err := lp.GetFirst(p, lp.FragmentField)
	if err != nil || len(fragment) == 0 {
		l.nDrops.Add(1)
		log.Trace(l, "IDLE frame - DROP")
		return nil
	}
	wire := enc.Wire{fragment}

	if l.options.IsReassemblyEnabled && p.Has(lp.SequenceField) {
		sequence, err := lp.GetFirst(p, lp.SequenceField)
		if err != nil {
			return l.drop("Invalid Sequence - DROP", "err", err)
		}
		fragIndex, err := getOptional(p, lp.FragIndexField)
		if err != nil {
			return l.drop("Invalid FragIndex - DROP", "err", err)
		}
		fragCount, err := getOptional(p, lp.FragCountField)
		if err != nil {
			return l.drop("Invalid FragCount - DROP", "err", err)
		}

		index, count := fragIndex.GetOr(0), fragCount.GetOr(1)
		base := sequence - lp.Sequence(index)
		log.Trace(l, "Received fragment", "index", index, "count", count, "base", base)

		if index != 0 || count != 1 {
			l.recvMut.Lock()
			wire, err = l.reassembler.add(remote, base, index, count, fragment)
			l.recvMut.Unlock()
			if err != nil {
				return l.drop("Invalid fragment - DROP", "err", err, "base", base)
			}
			if wire == nil {
				return nil
			}
		}
	} else if p.Has(lp.FragIndexField) || p.Has(lp.FragCountField) {
		return l.drop("Received NDNLPv2 frame with fragmentation fields but reassembly disabled - DROP")
	}

	pkt := &NetPacket{Wire: wire}
	if err := l.tagPacket(p, pkt); err != nil {
		return l.drop("Invalid header field - DROP", "err", err)
	}
	return pkt
}

func (l *Service) drop(msg string, v ...any) *NetPacket {
	l.nDrops.Add(1)
	log.Warn(l, msg, v...)
	return nil
}

// tagPacket copies the header fields of an LpPacket into tags.
// For a reassembled packet these come from the last fragment received.
func (l *Service) tagPacket(p *lp.Packet, pkt *NetPacket) error {
	tag.Set(&pkt.Tags, utils.IdPtr(lp.IncomingFaceIdTag(l.faceId)))

	if mark, err := getOptional(p, lp.CongestionMarkField); err != nil {
		return err
	} else if v, ok := mark.Get(); ok {
		tag.Set(&pkt.Tags, utils.IdPtr(lp.CongestionMarkTag(v)))
	}

	if l.options.IsConsumerControlledForwardingEnabled {
		if nextHop, err := getOptional(p, lp.NextHopFaceIdField); err != nil {
			return err
		} else if v, ok := nextHop.Get(); ok {
			tag.Set(&pkt.Tags, utils.IdPtr(lp.NextHopFaceIdTag(v)))
		}
	}

	if token, err := getOptional(p, lp.PitTokenField); err != nil {
		return err
	} else if v, ok := token.Get(); ok {
		tag.Set(&pkt.Tags, utils.IdPtr(lp.PitTokenTag(v)))
	}

	if hops, err := getOptional(p, lp.HopCountTagField); err != nil {
		return err
	} else if v, ok := hops.Get(); ok {
		tag.Set(&pkt.Tags, utils.IdPtr(lp.HopCountTag(v)))
	}

	if policy, err := getOptional(p, lp.CachePolicyField); err != nil {
		return err
	} else if v, ok := policy.Get(); ok {
		tag.Set(&pkt.Tags, utils.IdPtr(lp.CachePolicyTag(v)))
	}

	if p.Has(lp.NonDiscoveryField) {
		tag.Set(&pkt.Tags, &lp.NonDiscoveryTag{})
	}
	return nil
}

// getOptional decodes the first occurrence of a field, if present.
func getOptional[T any](p *lp.Packet, f lp.Field[T]) (optional.Optional[T], error) {
	if !p.Has(f) {
		return optional.None[T](), nil
	}
	v, err := lp.GetFirst(p, f)
	if err != nil {
		return optional.None[T](), err
	}
	return optional.Some(v), nil
}
