package tools

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	enc "github.com/named-data/ndnlp/std/encoding"
	"github.com/named-data/ndnlp/std/lp"
	"github.com/named-data/ndnlp/std/utils"
)

// PacketSpec is the YAML form of an LpPacket.
// Byte strings are hex encoded. A present but empty field is "".
type PacketSpec struct {
	Sequence           *uint64  `yaml:"sequence,omitempty"`
	FragIndex          *uint64  `yaml:"frag_index,omitempty"`
	FragCount          *uint64  `yaml:"frag_count,omitempty"`
	HopCount           *uint64  `yaml:"hop_count,omitempty"`
	PitToken           *string  `yaml:"pit_token,omitempty"`
	Nack               string   `yaml:"nack,omitempty"`
	IncomingFaceId     *uint64  `yaml:"incoming_face_id,omitempty"`
	NextHopFaceId      *uint64  `yaml:"next_hop_face_id,omitempty"`
	CachePolicy        string   `yaml:"cache_policy,omitempty"`
	CongestionMark     *uint64  `yaml:"congestion_mark,omitempty"`
	Ack                []uint64 `yaml:"ack,omitempty"`
	TxSequence         *uint64  `yaml:"tx_sequence,omitempty"`
	NonDiscovery       bool     `yaml:"non_discovery,omitempty"`
	PrefixAnnouncement *string  `yaml:"prefix_announcement,omitempty"`
	Fragment           *string  `yaml:"fragment,omitempty"`
}

// SpecFromPacket converts a decoded packet to its YAML form.
func SpecFromPacket(p *lp.Packet) (s PacketSpec, err error) {
	nat := func(f lp.Field[uint64]) (*uint64, error) {
		if !p.Has(f) {
			return nil, nil
		}
		v, err := lp.GetFirst(p, f)
		if err != nil {
			return nil, err
		}
		return utils.IdPtr(v), nil
	}
	seq := func(f lp.Field[lp.Sequence]) (*uint64, error) {
		if !p.Has(f) {
			return nil, nil
		}
		v, err := lp.GetFirst(p, f)
		if err != nil {
			return nil, err
		}
		return utils.IdPtr(uint64(v)), nil
	}
	bytes := func(f lp.Field[[]byte]) (*string, error) {
		if !p.Has(f) {
			return nil, nil
		}
		v, err := lp.GetFirst(p, f)
		if err != nil {
			return nil, err
		}
		return utils.IdPtr(hex.EncodeToString(v)), nil
	}

	if s.Sequence, err = seq(lp.SequenceField); err != nil {
		return
	}
	if s.FragIndex, err = nat(lp.FragIndexField); err != nil {
		return
	}
	if s.FragCount, err = nat(lp.FragCountField); err != nil {
		return
	}
	if s.HopCount, err = nat(lp.HopCountTagField); err != nil {
		return
	}
	if s.PitToken, err = bytes(lp.PitTokenField); err != nil {
		return
	}
	if p.Has(lp.NackField) {
		nack, err := lp.GetFirst(p, lp.NackField)
		if err != nil {
			return s, err
		}
		s.Nack = nack.Reason.String()
	}
	if s.IncomingFaceId, err = nat(lp.IncomingFaceIdField); err != nil {
		return
	}
	if s.NextHopFaceId, err = nat(lp.NextHopFaceIdField); err != nil {
		return
	}
	if p.Has(lp.CachePolicyField) {
		policy, err := lp.GetFirst(p, lp.CachePolicyField)
		if err != nil {
			return s, err
		}
		s.CachePolicy = policy.Type.String()
	}
	if s.CongestionMark, err = nat(lp.CongestionMarkField); err != nil {
		return
	}
	acks, err := lp.List(p, lp.AckField)
	if err != nil {
		return
	}
	for _, ack := range acks {
		s.Ack = append(s.Ack, uint64(ack))
	}
	if s.TxSequence, err = seq(lp.TxSequenceField); err != nil {
		return
	}
	s.NonDiscovery = p.Has(lp.NonDiscoveryField)
	if s.PrefixAnnouncement, err = bytes(lp.PrefixAnnouncementField); err != nil {
		return
	}
	if p.Has(lp.FragmentField) {
		frag, err := lp.GetFirst(p, lp.FragmentField)
		if err != nil {
			return s, err
		}
		s.Fragment = utils.IdPtr(hex.EncodeToString(frag))
	}
	return s, nil
}

// Packet builds the packet described by the spec.
func (s PacketSpec) Packet() (*lp.Packet, error) {
	p := lp.NewPacket()

	nat := func(f lp.Field[uint64], v *uint64) {
		if v != nil {
			lp.Set(p, f, *v)
		}
	}
	seq := func(f lp.Field[lp.Sequence], v *uint64) {
		if v != nil {
			lp.Set(p, f, lp.Sequence(*v))
		}
	}
	bytes := func(f lp.Field[[]byte], v *string) error {
		if v == nil {
			return nil
		}
		b, err := hex.DecodeString(*v)
		if err != nil {
			return fmt.Errorf("invalid hex in field %v: %w", f.TlvType(), err)
		}
		lp.Set(p, f, b)
		return nil
	}

	seq(lp.SequenceField, s.Sequence)
	nat(lp.FragIndexField, s.FragIndex)
	nat(lp.FragCountField, s.FragCount)
	nat(lp.HopCountTagField, s.HopCount)
	if err := bytes(lp.PitTokenField, s.PitToken); err != nil {
		return nil, err
	}
	if s.Nack != "" {
		reason, err := ParseNackReason(s.Nack)
		if err != nil {
			return nil, err
		}
		lp.Set(p, lp.NackField, lp.NackHeader{Reason: reason})
	}
	nat(lp.IncomingFaceIdField, s.IncomingFaceId)
	nat(lp.NextHopFaceIdField, s.NextHopFaceId)
	if s.CachePolicy != "" {
		if !strings.EqualFold(s.CachePolicy, lp.CachePolicyNoCache.String()) {
			return nil, fmt.Errorf("unknown cache policy %q", s.CachePolicy)
		}
		lp.Set(p, lp.CachePolicyField, lp.CachePolicy{Type: lp.CachePolicyNoCache})
	}
	nat(lp.CongestionMarkField, s.CongestionMark)
	for _, ack := range s.Ack {
		if err := lp.Add(p, lp.AckField, lp.Sequence(ack)); err != nil {
			return nil, err
		}
	}
	seq(lp.TxSequenceField, s.TxSequence)
	if s.NonDiscovery {
		lp.Set(p, lp.NonDiscoveryField, lp.EmptyValue{})
	}
	if err := bytes(lp.PrefixAnnouncementField, s.PrefixAnnouncement); err != nil {
		return nil, err
	}
	if s.Fragment != nil {
		frag, err := hex.DecodeString(*s.Fragment)
		if err != nil {
			return nil, fmt.Errorf("invalid hex in fragment: %w", err)
		}
		lp.Set(p, lp.FragmentField, enc.Buffer(frag))
	}
	return p, nil
}

// ParseNackReason parses a reason name or number.
func ParseNackReason(s string) (lp.NackReason, error) {
	for _, r := range []lp.NackReason{
		lp.NackReasonNone,
		lp.NackReasonCongestion,
		lp.NackReasonDuplicate,
		lp.NackReasonNoRoute,
	} {
		if strings.EqualFold(s, r.String()) {
			return r, nil
		}
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unknown nack reason %q", s)
	}
	return lp.NackReason(v), nil
}
