package link_test

import (
	"testing"

	"github.com/named-data/ndnlp/link"
	enc "github.com/named-data/ndnlp/std/encoding"
	"github.com/named-data/ndnlp/std/lp"
	"github.com/named-data/ndnlp/std/types/tag"
	tu "github.com/named-data/ndnlp/std/utils/testutils"
	"github.com/stretchr/testify/require"
)

// makeData returns a Data-typed TLV element of size bytes in total.
func makeData(size int) enc.Buffer {
	l := size - 4
	buf := make(enc.Buffer, size)
	buf[0] = 0x06
	buf[1] = 0xfd
	buf[2] = byte(l >> 8)
	buf[3] = byte(l)
	for i := 4; i < size; i++ {
		buf[i] = byte(i)
	}
	return buf
}

type linkPair struct {
	a, b   *link.Service
	ta, tb *link.DummyTransport
	recv   []*link.NetPacket
}

func newLinkPair(t *testing.T, mtu int, opts link.Options) *linkPair {
	p := &linkPair{}
	p.ta, p.tb = link.NewDummyPair(mtu)
	p.a = tu.NoErr(link.NewService(1, p.ta, opts))
	p.b = tu.NoErr(link.NewService(2, p.tb, opts))
	p.b.OnPacket(func(pkt *link.NetPacket) {
		p.recv = append(p.recv, pkt)
	})
	return p
}

func TestServiceSendSmall(t *testing.T) {
	tu.SetT(t)

	p := newLinkPair(t, 1500, link.DefaultOptions())
	interest := enc.Buffer{0x05, 0x03, 0x07, 0x01, 0x08}
	require.NoError(t, p.a.Send(&link.NetPacket{Wire: enc.Wire{interest}}))

	sent := p.ta.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, []byte{0x64, 0x07, 0x50, 0x05, 0x05, 0x03, 0x07, 0x01, 0x08}, sent[0])

	require.Len(t, p.recv, 1)
	require.Equal(t, []byte(interest), p.recv[0].Wire.Join())
	require.Equal(t, lp.IncomingFaceIdTag(2), *tag.Get[lp.IncomingFaceIdTag](&p.recv[0].Tags))

	require.Equal(t, link.Counters{NOutFrames: 1, NOutPackets: 1}, p.a.Counters())
	require.Equal(t, link.Counters{NInFrames: 1, NInPackets: 1}, p.b.Counters())

	require.ErrorIs(t, p.a.Send(&link.NetPacket{}), link.ErrEmptyPacket)
}

func TestServiceFragmentation(t *testing.T) {
	tu.SetT(t)

	opts := link.DefaultOptions()
	opts.Mtu = 100
	p := newLinkPair(t, 1500, opts)

	data := makeData(301)
	wire := enc.Wire{data[:50], data[50:51], data[51:]}
	require.NoError(t, p.a.Send(&link.NetPacket{Wire: wire}))

	sent := p.ta.Sent()
	require.Len(t, sent, 4)
	for i, frame := range sent {
		require.LessOrEqual(t, len(frame), 100)

		pkt := tu.NoErr(lp.ParsePacket(frame))
		require.Equal(t, lp.Sequence(i+1), tu.NoErr(lp.GetFirst(pkt, lp.SequenceField)))
		require.Equal(t, uint64(i), tu.NoErr(lp.GetFirst(pkt, lp.FragIndexField)))
		require.Equal(t, uint64(4), tu.NoErr(lp.GetFirst(pkt, lp.FragCountField)))
	}

	require.Len(t, p.recv, 1)
	require.Equal(t, []byte(data), p.recv[0].Wire.Join())
	require.Equal(t, uint64(4), p.b.Counters().NInFrames)
	require.Equal(t, uint64(1), p.b.Counters().NInPackets)

	// sequence numbers continue
	require.NoError(t, p.a.Send(&link.NetPacket{Wire: enc.Wire{makeData(200)}}))
	sent = p.ta.Sent()
	require.Len(t, sent, 3)
	first := tu.NoErr(lp.ParsePacket(sent[0]))
	require.Equal(t, lp.Sequence(5), tu.NoErr(lp.GetFirst(first, lp.SequenceField)))
	require.Len(t, p.recv, 2)
}

func TestServiceNoFragmentation(t *testing.T) {
	tu.SetT(t)

	opts := link.DefaultOptions()
	opts.Mtu = 100
	opts.IsFragmentationEnabled = false
	p := newLinkPair(t, 1500, opts)

	err := p.a.Send(&link.NetPacket{Wire: enc.Wire{makeData(200)}})
	require.Equal(t, 200, tu.ErrAs[link.ErrFrameTooLarge](err).Size)
	require.Len(t, p.ta.Sent(), 0)
	require.Equal(t, uint64(1), p.a.Counters().NDrops)

	// fits
	require.NoError(t, p.a.Send(&link.NetPacket{Wire: enc.Wire{makeData(90)}}))
	require.Len(t, p.recv, 1)
}

func TestServiceTransportMtu(t *testing.T) {
	tu.SetT(t)

	// the transport MTU wins when smaller than the configured one
	p := newLinkPair(t, 200, link.DefaultOptions())
	require.NoError(t, p.a.Send(&link.NetPacket{Wire: enc.Wire{makeData(1000)}}))
	for _, frame := range p.ta.Sent() {
		require.LessOrEqual(t, len(frame), 200)
	}
	require.Len(t, p.recv, 1)
	require.Equal(t, 1000, len(p.recv[0].Wire.Join()))
}

// fragments returns the frames of each packet, sent in turn through
// a standalone service.
func fragments(t *testing.T, mtu int, data ...enc.Buffer) [][][]byte {
	tr := link.NewDummyTransport("dummy://out", mtu)
	opts := link.DefaultOptions()
	opts.Mtu = mtu
	s := tu.NoErr(link.NewService(9, tr, opts))

	ret := make([][][]byte, 0, len(data))
	for _, d := range data {
		require.NoError(t, s.Send(&link.NetPacket{Wire: enc.Wire{d}}))
		ret = append(ret, tr.Sent())
	}
	return ret
}

func TestServiceReassemblyOrder(t *testing.T) {
	tu.SetT(t)

	tr := link.NewDummyTransport("dummy://in", 1500)
	s := tu.NoErr(link.NewService(3, tr, link.DefaultOptions()))
	recv := make([][]byte, 0)
	s.OnPacket(func(pkt *link.NetPacket) {
		recv = append(recv, pkt.Wire.Join())
	})

	d1 := makeData(250)
	d2 := makeData(340)
	frags := fragments(t, 100, d1, d2)
	f1, f2 := frags[0], frags[1]
	require.Len(t, f1, 4)
	require.Len(t, f2, 5)

	// reversed and interleaved
	for i := len(f1) - 1; i >= 0; i-- {
		require.NoError(t, tr.Feed(f1[i]))
		if i < len(f2) {
			require.NoError(t, tr.Feed(f2[i]))
		}
	}
	require.Len(t, recv, 1)
	for i := len(f1); i < len(f2); i++ {
		require.NoError(t, tr.Feed(f2[i]))
	}

	require.Len(t, recv, 2)
	require.Equal(t, []byte(d1), recv[0])
	require.Equal(t, []byte(d2), recv[1])

	// duplicate fragment after completion starts a new buffer, nothing delivered
	require.NoError(t, tr.Feed(f1[0]))
	require.Len(t, recv, 2)
}

func TestServiceDrops(t *testing.T) {
	tu.SetT(t)

	tr := link.NewDummyTransport("dummy://in", 1500)
	s := tu.NoErr(link.NewService(3, tr, link.DefaultOptions()))
	n := 0
	s.OnPacket(func(*link.NetPacket) { n++ })

	frames := [][]byte{
		// malformed
		{0x64, 0x05, 0x50},
		// not an LpPacket
		{0x07, 0x00},
		// IDLE
		{0x64, 0x00},
		{0x64, 0x0a, 0x51, 0x08, 0, 0, 0, 0, 0, 0, 0, 1},
		// empty fragment
		{0x64, 0x02, 0x50, 0x00},
		// bad Sequence length
		{0x64, 0x07, 0x51, 0x02, 0, 1, 0x50, 0x01, 0xaa},
		// FragIndex beyond FragCount
		{0x64, 0x13, 0x51, 0x08, 0, 0, 0, 0, 0, 0, 0, 9, 0x52, 0x01, 0x03, 0x53, 0x01, 0x02, 0x50, 0x01, 0xaa},
	}
	for _, f := range frames {
		require.NoError(t, tr.Feed(f))
	}
	require.Equal(t, 0, n)
	require.Equal(t, uint64(len(frames)), s.Counters().NDrops)
	require.Equal(t, uint64(len(frames)), s.Counters().NInFrames)

	// bare network packet
	require.NoError(t, tr.Feed([]byte{0x06, 0x01, 0x00}))
	require.Equal(t, 1, n)
}

func TestServiceFragCountMismatch(t *testing.T) {
	tu.SetT(t)

	tr := link.NewDummyTransport("dummy://in", 1500)
	s := tu.NoErr(link.NewService(3, tr, link.DefaultOptions()))
	n := 0
	s.OnPacket(func(*link.NetPacket) { n++ })

	frag := func(seq lp.Sequence, index, count uint64) []byte {
		p := lp.NewPacket()
		lp.Set(p, lp.SequenceField, seq)
		lp.Set(p, lp.FragIndexField, index)
		lp.Set(p, lp.FragCountField, count)
		lp.Set(p, lp.FragmentField, enc.Buffer{byte(index)})
		return p.Bytes()
	}

	require.NoError(t, tr.Feed(frag(10, 0, 2)))
	require.NoError(t, tr.Feed(frag(11, 1, 3)))
	require.Equal(t, 0, n)
	require.Equal(t, uint64(1), s.Counters().NDrops)

	require.NoError(t, tr.Feed(frag(11, 1, 2)))
	require.Equal(t, 1, n)
}

func TestServiceReassemblyDisabled(t *testing.T) {
	tu.SetT(t)

	opts := link.DefaultOptions()
	opts.IsReassemblyEnabled = false
	tr := link.NewDummyTransport("dummy://in", 1500)
	s := tu.NoErr(link.NewService(3, tr, opts))
	n := 0
	s.OnPacket(func(*link.NetPacket) { n++ })

	for _, f := range fragments(t, 100, makeData(150))[0] {
		require.NoError(t, tr.Feed(f))
	}
	require.Equal(t, 0, n)
	require.Equal(t, uint64(2), s.Counters().NDrops)

	// unfragmented packets still pass
	require.NoError(t, tr.Feed([]byte{0x64, 0x04, 0x50, 0x02, 0x06, 0x00}))
	require.Equal(t, 1, n)
}

func TestServiceTags(t *testing.T) {
	tu.SetT(t)

	opts := link.DefaultOptions()
	opts.IsIncomingFaceIndicationEnabled = true
	opts.IsConsumerControlledForwardingEnabled = true
	p := newLinkPair(t, 1500, opts)

	out := &link.NetPacket{Wire: enc.Wire{{0x05, 0x00}}}
	token := lp.PitTokenTag{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}
	tag.Set(&out.Tags, &token)
	mark := lp.CongestionMarkTag(1)
	tag.Set(&out.Tags, &mark)
	nextHop := lp.NextHopFaceIdTag(300)
	tag.Set(&out.Tags, &nextHop)
	inFace := lp.IncomingFaceIdTag(77)
	tag.Set(&out.Tags, &inFace)
	require.NoError(t, p.a.Send(out))

	frame := tu.NoErr(lp.ParsePacket(p.ta.Sent()[0]))
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6}, tu.NoErr(lp.GetFirst(frame, lp.PitTokenField)))
	require.Equal(t, uint64(1), tu.NoErr(lp.GetFirst(frame, lp.CongestionMarkField)))
	require.Equal(t, uint64(300), tu.NoErr(lp.GetFirst(frame, lp.NextHopFaceIdField)))
	require.Equal(t, uint64(77), tu.NoErr(lp.GetFirst(frame, lp.IncomingFaceIdField)))

	require.Len(t, p.recv, 1)
	tags := &p.recv[0].Tags
	require.Equal(t, lp.PitTokenTag{1, 2, 3, 4, 5, 6}, *tag.Get[lp.PitTokenTag](tags))
	require.Equal(t, lp.CongestionMarkTag(1), *tag.Get[lp.CongestionMarkTag](tags))
	require.Equal(t, lp.NextHopFaceIdTag(300), *tag.Get[lp.NextHopFaceIdTag](tags))
	// the receiving face, not the indicated one
	require.Equal(t, lp.IncomingFaceIdTag(2), *tag.Get[lp.IncomingFaceIdTag](tags))
	require.Nil(t, tag.Get[lp.NonDiscoveryTag](tags))

	// header-only fields become tags on receipt
	pkt := lp.NewPacket()
	lp.Set(pkt, lp.FragmentField, enc.Buffer{0x05, 0x00})
	lp.Set(pkt, lp.HopCountTagField, 4)
	lp.Set(pkt, lp.NonDiscoveryField, lp.EmptyValue{})
	lp.Set(pkt, lp.CachePolicyField, lp.CachePolicy{Type: lp.CachePolicyNoCache})
	require.NoError(t, p.tb.Feed(pkt.Bytes()))
	require.Len(t, p.recv, 2)
	tags = &p.recv[1].Tags
	require.Equal(t, lp.HopCountTag(4), *tag.Get[lp.HopCountTag](tags))
	require.NotNil(t, tag.Get[lp.NonDiscoveryTag](tags))
	require.Equal(t, lp.CachePolicyNoCache, tag.Get[lp.CachePolicyTag](tags).Type)
}

func TestServiceTagsDisabled(t *testing.T) {
	tu.SetT(t)

	p := newLinkPair(t, 1500, link.DefaultOptions())
	out := &link.NetPacket{Wire: enc.Wire{{0x05, 0x00}}}
	nextHop := lp.NextHopFaceIdTag(300)
	tag.Set(&out.Tags, &nextHop)
	inFace := lp.IncomingFaceIdTag(77)
	tag.Set(&out.Tags, &inFace)
	require.NoError(t, p.a.Send(out))

	frame := tu.NoErr(lp.ParsePacket(p.ta.Sent()[0]))
	require.False(t, frame.Has(lp.NextHopFaceIdField))
	require.False(t, frame.Has(lp.IncomingFaceIdField))

	// NextHopFaceId is ignored on receipt
	pkt := lp.NewPacket()
	lp.Set(pkt, lp.FragmentField, enc.Buffer{0x05, 0x00})
	lp.Set(pkt, lp.NextHopFaceIdField, 5)
	require.NoError(t, p.tb.Feed(pkt.Bytes()))
	require.Nil(t, tag.Get[lp.NextHopFaceIdTag](&p.recv[1].Tags))
}

func TestServiceClosed(t *testing.T) {
	tu.SetT(t)

	p := newLinkPair(t, 1500, link.DefaultOptions())
	done := make(chan error)
	go func() { done <- p.a.Run() }()
	require.NoError(t, p.a.Close())
	require.NoError(t, <-done)

	err := p.a.Send(&link.NetPacket{Wire: enc.Wire{{0x05, 0x00}}})
	require.ErrorIs(t, err, link.ErrTransportClosed)
	require.Equal(t, uint64(1), p.a.Counters().NDrops)
}

func TestOptionsValidate(t *testing.T) {
	tu.SetT(t)

	require.NoError(t, link.DefaultOptions().Validate())

	opts := link.DefaultOptions()
	opts.Mtu = 10
	require.Error(t, opts.Validate())
	tu.Err(link.NewService(1, link.NewDummyTransport("x", 1500), opts))

	opts = link.DefaultOptions()
	opts.ReassemblyBuffers = 0
	require.Error(t, opts.Validate())
	opts.IsReassemblyEnabled = false
	require.NoError(t, opts.Validate())
}
