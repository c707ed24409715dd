package lp

import enc "github.com/named-data/ndnlp/std/encoding"

// TLV-TYPE numbers of NDNLPv2.
const (
	TypeLpPacket enc.TLNum = 0x64

	TypeFragment           enc.TLNum = 0x50
	TypeSequence           enc.TLNum = 0x51
	TypeFragIndex          enc.TLNum = 0x52
	TypeFragCount          enc.TLNum = 0x53
	TypeHopCountTag        enc.TLNum = 0x54
	TypePitToken           enc.TLNum = 0x62
	TypeNack               enc.TLNum = 0x0320
	TypeNackReason         enc.TLNum = 0x0321
	TypeIncomingFaceId     enc.TLNum = 0x032C
	TypeNextHopFaceId      enc.TLNum = 0x0330
	TypeCachePolicy        enc.TLNum = 0x0334
	TypeCachePolicyType    enc.TLNum = 0x0335
	TypeCongestionMark     enc.TLNum = 0x0340
	TypeAck                enc.TLNum = 0x0344
	TypeTxSequence         enc.TLNum = 0x0348
	TypeNonDiscovery       enc.TLNum = 0x034C
	TypePrefixAnnouncement enc.TLNum = 0x0350
)

// Network layer packets that may be carried bare, without an LpPacket envelope.
const (
	TypeInterest enc.TLNum = 0x05
	TypeData     enc.TLNum = 0x06
)

// Header fields in this range whose two low bits are zero may be ignored by
// a receiver that does not recognize them.
const (
	headerIgnoreMin enc.TLNum = 800
	headerIgnoreMax enc.TLNum = 959
)
