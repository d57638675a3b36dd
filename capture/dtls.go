package capture

import (
	"github.com/google/gopacket"

	ja4 "github.com/mel2oo/go-ja4"
	"github.com/mel2oo/go-ja4/gid"
)

const (
	// DTLS record header: type, version, epoch, 48-bit sequence, length.
	dtlsRecordHeaderLength = 13

	// DTLS handshake header: the TLS one widened by a message sequence and
	// a fragment offset/length.
	dtlsHandshakeHeaderLength = 12
)

// dtlsTracker fingerprints hellos found in UDP datagrams. DTLS needs no
// stream reassembly, but connection IDs must be stable across the datagrams
// of one exchange, so the tracker remembers an ID per address pair.
type dtlsTracker struct {
	policy ja4.Policy
	ids    map[string]gid.ConnectionID
}

func newDTLSTracker(policy ja4.Policy) *dtlsTracker {
	return &dtlsTracker{
		policy: policy,
		ids:    make(map[string]gid.ConnectionID),
	}
}

func (t *dtlsTracker) connectionID(netFlow, udpFlow gopacket.Flow) gid.ConnectionID {
	key := flowKey(netFlow, udpFlow)
	if id, ok := t.ids[key]; ok {
		return id
	}
	id := gid.GenerateConnectionID()
	t.ids[key] = id
	return id
}

// flowKey is direction-independent: both directions of an exchange map to
// the same key.
func flowKey(netFlow, udpFlow gopacket.Flow) string {
	a := netFlow.Src().String() + ":" + udpFlow.Src().String()
	b := netFlow.Dst().String() + ":" + udpFlow.Dst().String()
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// looksLikeDTLS reports whether a datagram starts with a DTLS handshake
// record. DTLS version codes all have major byte 0xfe.
func looksLikeDTLS(payload []byte) bool {
	return len(payload) >= dtlsRecordHeaderLength &&
		payload[0] == recordTypeHandshake &&
		payload[1] == 0xfe
}

// helloObservations deframes the records of one datagram and fingerprints
// any unfragmented hello messages inside.
func (t *dtlsTracker) helloObservations(payload []byte, netFlow, udpFlow gopacket.Flow) []Observation {
	var out []Observation

	for len(payload) >= dtlsRecordHeaderLength {
		if payload[0] != recordTypeHandshake || payload[1] != 0xfe {
			break
		}
		recLen := int(payload[11])<<8 | int(payload[12])
		if len(payload) < dtlsRecordHeaderLength+recLen {
			break
		}
		record := payload[dtlsRecordHeaderLength : dtlsRecordHeaderLength+recLen]
		payload = payload[dtlsRecordHeaderLength+recLen:]

		if obs := t.helloFromFragment(record, netFlow, udpFlow); obs != nil {
			out = append(out, obs)
		}
	}

	return out
}

// helloFromFragment reframes an unfragmented DTLS handshake fragment as a
// plain handshake message and fingerprints it. Fragmented hellos would need
// cross-datagram reassembly and are skipped.
func (t *dtlsTracker) helloFromFragment(fragment []byte, netFlow, udpFlow gopacket.Flow) Observation {
	if len(fragment) < dtlsHandshakeHeaderLength {
		return nil
	}

	var role ja4.Role
	switch fragment[0] {
	case 0x01:
		role = ja4.RoleClient
	case 0x02:
		role = ja4.RoleServer
	default:
		// hello_verify_request and the rest of the handshake.
		return nil
	}

	length := u24(fragment[1:4])
	fragOff := u24(fragment[6:9])
	fragLen := u24(fragment[9:12])
	if fragOff != 0 || fragLen != length {
		return nil
	}
	if len(fragment) < dtlsHandshakeHeaderLength+int(length) {
		return nil
	}

	msg := make([]byte, 0, 4+length)
	msg = append(msg, fragment[0:4]...)
	msg = append(msg, fragment[dtlsHandshakeHeaderLength:dtlsHandshakeHeaderLength+int(length)]...)

	fields, err := ja4.Parse(role, ja4.ModeDatagram, msg)
	if err != nil {
		return nil
	}

	return Handshake{
		ConnectionID: t.connectionID(netFlow, udpFlow),
		Fields:       fields,
		Fingerprint:  fields.FingerprintWithPolicy(t.policy),
	}
}

func u24(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}
