package capture

import (
	"fmt"
	"net"
	"time"

	ja4 "github.com/mel2oo/go-ja4"
	"github.com/mel2oo/go-ja4/gid"
)

// Traffic is one observation parsed from the wire, tagged with the addresses
// it was seen on.
type Traffic struct {
	SrcIP   net.IP
	SrcPort int
	DstIP   net.IP
	DstPort int

	Content Observation

	// The time at which the first packet contributing to this observation
	// was seen.
	ObservationTime time.Time

	// The time at which the final packet arrived, for multi-packet content.
	// Equal to ObservationTime for single packets.
	FinalPacketTime time.Time
}

// Observation is implemented by everything a traffic parser can emit.
type Observation interface {
	Print() string
}

// Handshake is a fingerprinted hello message.
type Handshake struct {
	// Identifies the connection this hello belongs to. Both hellos of a
	// full handshake carry the same ID.
	ConnectionID gid.ConnectionID

	Fields      ja4.FieldSet
	Fingerprint ja4.Fingerprint
}

var _ Observation = (*Handshake)(nil)

func (h Handshake) Print() string {
	sni, _ := h.Fields.SNI.Get()
	return fmt.Sprintf("## %s %s hello: %s sni=%q",
		h.ConnectionID, h.Fields.Role, h.Fingerprint, sni)
}

// DroppedBytes records traffic that no parser accepted.
type DroppedBytes int64

var _ Observation = (*DroppedBytes)(nil)

func (db DroppedBytes) Print() string {
	return fmt.Sprintf("dropped %d bytes", int64(db))
}
