package lp

import "strconv"

// Sequence is a link-layer sequence number.
// It identifies one LpPacket within the stream sent on a link.
type Sequence uint64

func (s Sequence) String() string {
	return strconv.FormatUint(uint64(s), 10)
}
