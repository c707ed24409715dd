package lp

import enc "github.com/named-data/ndnlp/std/encoding"

// Fields returns the descriptors of all NDNLPv2 fields known to this package.
func Fields() []FieldInfo {
	return []FieldInfo{
		FragmentField,
		SequenceField,
		FragIndexField,
		FragCountField,
		HopCountTagField,
		PitTokenField,
		NackField,
		IncomingFaceIdField,
		NextHopFaceIdField,
		CachePolicyField,
		CongestionMarkField,
		AckField,
		TxSequenceField,
		NonDiscoveryField,
		PrefixAnnouncementField,
	}
}

// fieldInfo is what a decoder knows about a TLV-TYPE found in a packet.
type fieldInfo struct {
	tlvType      enc.TLNum
	isRecognized bool
	canIgnore    bool
	isRepeatable bool
	location     Location
}

var knownFields = func() map[enc.TLNum]fieldInfo {
	m := make(map[enc.TLNum]fieldInfo)
	for _, f := range Fields() {
		m[f.TlvType()] = fieldInfoOf(f)
	}
	return m
}()

func fieldInfoOf(f FieldInfo) fieldInfo {
	return fieldInfo{
		tlvType:      f.TlvType(),
		isRecognized: true,
		isRepeatable: f.IsRepeatable(),
		location:     f.Location(),
	}
}

// lookupFieldInfo returns the info of a TLV-TYPE.
// Unrecognized types are header fields; they can be ignored only if they are
// in the reserved header range with the two low bits cleared.
func lookupFieldInfo(typ enc.TLNum) fieldInfo {
	if info, ok := knownFields[typ]; ok {
		return info
	}
	return fieldInfo{
		tlvType:   typ,
		canIgnore: headerIgnoreMin <= typ && typ <= headerIgnoreMax && typ&0x03 == 0,
		location:  LocationHeader,
	}
}

// compareFieldSortOrder reports whether a must be placed before b.
func compareFieldSortOrder(a, b fieldInfo) bool {
	return a.location < b.location || (a.location == b.location && a.tlvType < b.tlvType)
}
