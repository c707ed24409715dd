package lp

// Tags attached to packets by a link service. They mirror header fields so
// that upper layers can read them after the LpPacket envelope is stripped.

// IncomingFaceIdTag is the face a packet was received from.
type IncomingFaceIdTag uint64

// NextHopFaceIdTag is the face a consumer asked the forwarder to use.
type NextHopFaceIdTag uint64

// CachePolicyTag is the caching policy requested by a producer.
type CachePolicyTag CachePolicy

// CongestionMarkTag is the congestion mark of a received packet.
type CongestionMarkTag uint64

// NonDiscoveryTag marks an Interest that must not trigger self-learning.
type NonDiscoveryTag struct{}

// HopCountTag is the number of hops a packet has taken.
type HopCountTag uint64

// PitTokenTag is an opaque token to be echoed back to the previous hop.
type PitTokenTag []byte
