package link

import (
	"fmt"

	enc "github.com/named-data/ndnlp/std/encoding"
)

const (
	// MaxFrameSize is the largest frame a link service sends or accepts.
	MaxFrameSize = 8800
	// minEffectiveMtu is the smallest fragment payload worth sending.
	minEffectiveMtu = 64
)

// Options contains the settings of a link Service.
type Options struct {
	// Mtu is the largest frame the transport can carry.
	Mtu int `yaml:"mtu"`

	IsFragmentationEnabled bool `yaml:"fragmentation"`
	IsReassemblyEnabled    bool `yaml:"reassembly"`

	// Whether to send IncomingFaceId to the other side of the link.
	IsIncomingFaceIndicationEnabled bool `yaml:"incoming_face_indication"`

	// Whether to honor NextHopFaceId on received packets and send it on outgoing ones.
	IsConsumerControlledForwardingEnabled bool `yaml:"consumer_controlled_forwarding"`

	// ReassemblyBuffers is the number of packets that can be reassembled at once.
	ReassemblyBuffers int `yaml:"reassembly_buffers"`
}

// DefaultOptions returns options with fragmentation and reassembly enabled.
func DefaultOptions() Options {
	return Options{
		Mtu:                    MaxFrameSize,
		IsFragmentationEnabled: true,
		IsReassemblyEnabled:    true,
		ReassemblyBuffers:      16,
	}
}

// Validate checks that the options can be used by a Service.
func (o Options) Validate() error {
	if o.Mtu < minEffectiveMtu || o.Mtu > MaxFrameSize {
		return fmt.Errorf("mtu must be between %d and %d, got %d", minEffectiveMtu, MaxFrameSize, o.Mtu)
	}
	if o.IsReassemblyEnabled && o.ReassemblyBuffers <= 0 {
		return fmt.Errorf("reassembly_buffers must be positive, got %d", o.ReassemblyBuffers)
	}
	return nil
}

// headerOverhead is the worst case size of the fields added to every frame.
func (o Options) headerOverhead() int {
	lenSize := enc.TLNum(o.Mtu).EncodingLength()
	overhead := 2 * (1 + lenSize) // LpPacket + Fragment

	if o.IsFragmentationEnabled {
		overhead += 1 + 1 + 8 // Sequence
		overhead += 1 + 1 + 2 // FragIndex (at most 2^16 fragments)
		overhead += 1 + 1 + 2 // FragCount
	}
	if o.IsIncomingFaceIndicationEnabled {
		overhead += 3 + 1 + 8 // IncomingFaceId
	}
	return overhead
}
