package lp

import (
	"fmt"

	enc "github.com/named-data/ndnlp/std/encoding"
)

// NackReason is the reason code of a network Nack.
type NackReason uint64

const (
	NackReasonNone       NackReason = 0
	NackReasonCongestion NackReason = 50
	NackReasonDuplicate  NackReason = 100
	NackReasonNoRoute    NackReason = 150
)

func (r NackReason) String() string {
	switch r {
	case NackReasonNone:
		return "None"
	case NackReasonCongestion:
		return "Congestion"
	case NackReasonDuplicate:
		return "Duplicate"
	case NackReasonNoRoute:
		return "NoRoute"
	default:
		return fmt.Sprintf("%d", uint64(r))
	}
}

// NackHeader is the value of the Nack field.
type NackHeader struct {
	Reason NackReason
}

// CachePolicyType is the policy carried in a CachePolicy field.
type CachePolicyType uint64

const CachePolicyNoCache CachePolicyType = 1

func (t CachePolicyType) String() string {
	if t == CachePolicyNoCache {
		return "NoCache"
	}
	return fmt.Sprintf("%d", uint64(t))
}

// CachePolicy is the value of the CachePolicy field.
type CachePolicy struct {
	Type CachePolicyType
}

// Fragment area.
var FragmentField = NewField(
	FieldDecl{Type: TypeFragment, Loc: LocationFragment},
	func(value enc.Buffer) (enc.Buffer, error) { return value, nil },
	encodeBytes[enc.Buffer])

// Header fields.
var (
	SequenceField = NewSequenceField(FieldDecl{Type: TypeSequence, Loc: LocationHeader})

	FragIndexField = NewNatField(FieldDecl{Type: TypeFragIndex, Loc: LocationHeader})

	FragCountField = NewNatField(FieldDecl{Type: TypeFragCount, Loc: LocationHeader})

	HopCountTagField = NewNatField(FieldDecl{Type: TypeHopCountTag, Loc: LocationHeader})

	PitTokenField = NewBytesField(FieldDecl{Type: TypePitToken, Loc: LocationHeader})

	NackField = NewField(FieldDecl{Type: TypeNack, Loc: LocationHeader}, decodeNack, encodeNack)

	IncomingFaceIdField = NewNatField(FieldDecl{Type: TypeIncomingFaceId, Loc: LocationHeader})

	NextHopFaceIdField = NewNatField(FieldDecl{Type: TypeNextHopFaceId, Loc: LocationHeader})

	CachePolicyField = NewField(FieldDecl{Type: TypeCachePolicy, Loc: LocationHeader}, decodeCachePolicy, encodeCachePolicy)

	CongestionMarkField = NewNatField(FieldDecl{Type: TypeCongestionMark, Loc: LocationHeader})

	AckField = NewSequenceField(FieldDecl{Type: TypeAck, Repeatable: true, Loc: LocationHeader})

	TxSequenceField = NewSequenceField(FieldDecl{Type: TypeTxSequence, Loc: LocationHeader})

	NonDiscoveryField = NewEmptyField(FieldDecl{Type: TypeNonDiscovery, Loc: LocationHeader})

	// PrefixAnnouncementField carries an encoded prefix announcement Data packet.
	PrefixAnnouncementField = NewBytesField(FieldDecl{Type: TypePrefixAnnouncement, Loc: LocationHeader})
)

func decodeNack(value enc.Buffer) (NackHeader, error) {
	h := NackHeader{Reason: NackReasonNone}
	r := enc.NewBufferView(value)
	for !r.IsEOF() {
		b, err := enc.ReadBlock(&r)
		if err != nil {
			return NackHeader{}, err
		}
		if b.Type() != TypeNackReason {
			continue
		}
		v, _, err := enc.ParseNat(b.Value())
		if err != nil {
			return NackHeader{}, err
		}
		h.Reason = NackReason(v)
	}
	return h, nil
}

func encodeNack(e enc.Encoder, typ enc.TLNum, h NackHeader) int {
	if h.Reason == NackReasonNone {
		return enc.EncodeTLV(e, typ, nil)
	}
	return enc.EncodeTLV(e, typ, func(e enc.Encoder) int {
		return enc.EncodeNatTLV(e, TypeNackReason, uint64(h.Reason))
	})
}

func decodeCachePolicy(value enc.Buffer) (CachePolicy, error) {
	r := enc.NewBufferView(value)
	for !r.IsEOF() {
		b, err := enc.ReadBlock(&r)
		if err != nil {
			return CachePolicy{}, err
		}
		if b.Type() != TypeCachePolicyType {
			continue
		}
		v, _, err := enc.ParseNat(b.Value())
		if err != nil {
			return CachePolicy{}, err
		}
		if CachePolicyType(v) != CachePolicyNoCache {
			return CachePolicy{}, enc.ErrFormat{Msg: fmt.Sprintf("unknown CachePolicyType %d", v)}
		}
		return CachePolicy{Type: CachePolicyType(v)}, nil
	}
	return CachePolicy{}, enc.ErrFormat{Msg: "CachePolicyType is missing"}
}

func encodeCachePolicy(e enc.Encoder, typ enc.TLNum, p CachePolicy) int {
	return enc.EncodeTLV(e, typ, func(e enc.Encoder) int {
		return enc.EncodeNatTLV(e, TypeCachePolicyType, uint64(p.Type))
	})
}
