package capture

import (
	"github.com/pkg/errors"

	ja4 "github.com/mel2oo/go-ja4"
	"github.com/mel2oo/go-ja4/gid"
	"github.com/mel2oo/go-ja4/memview"
)

const (
	recordTypeHandshake = 0x16

	// One hello never legitimately needs more than a handful of records;
	// cap the buffer so a broken peer cannot make us accumulate forever.
	maxHelloBufferBytes = 1 << 20
)

func newHelloParser(id gid.ConnectionID, role ja4.Role, policy ja4.Policy) *helloParser {
	return &helloParser{
		connectionID: id,
		role:         role,
		policy:       policy,
	}
}

// helloParser strips TLS record framing from one side of a stream and
// fingerprints the hello message found inside. A hello may span several
// handshake records, so record payloads are accumulated until the handshake
// header's declared length is satisfied.
type helloParser struct {
	connectionID gid.ConnectionID
	role         ja4.Role
	policy       ja4.Policy

	allInput  memview.MemView // raw record stream
	recordPos int64           // offset of the next record header in allInput
	handshake memview.MemView // record payloads, concatenated
}

var _ TCPParser = (*helloParser)(nil)

func (p *helloParser) Name() string {
	return "TLS " + p.role.String() + "-hello parser"
}

func (p *helloParser) Parse(input memview.MemView, isEnd bool) (result Observation, unused memview.MemView, totalBytesConsumed int64, err error) {
	result, err = p.parse(input)

	// It's an error if we're at the end and we don't yet have a result.
	if isEnd && result == nil && err == nil {
		err = errors.Errorf("incomplete TLS record stream for %s hello", p.role)
	}

	totalBytesConsumed = p.allInput.Len()

	if err != nil {
		return nil, memview.MemView{}, totalBytesConsumed, err
	}

	if result != nil {
		// Everything past the last deframed record is the caller's again.
		unused = p.allInput.SubView(p.recordPos, p.allInput.Len())
		totalBytesConsumed -= unused.Len()
		return result, unused, totalBytesConsumed, nil
	}

	return nil, memview.MemView{}, totalBytesConsumed, nil
}

func (p *helloParser) parse(input memview.MemView) (Observation, error) {
	p.allInput.Append(input)

	if p.allInput.Len() > maxHelloBufferBytes {
		return nil, errors.Errorf("hello exceeds %d bytes", maxHelloBufferBytes)
	}

	// Deframe as many complete records as are available.
	for p.allInput.Len()-p.recordPos >= tlsRecordHeaderLength {
		if p.allInput.GetByte(p.recordPos) != recordTypeHandshake {
			return nil, errors.Errorf("record type 0x%02x interrupts the handshake",
				p.allInput.GetByte(p.recordPos))
		}

		payloadLen := int64(p.allInput.GetUint16(p.recordPos + 3))
		recordEnd := p.recordPos + tlsRecordHeaderLength + payloadLen
		if p.allInput.Len() < recordEnd {
			break
		}

		p.handshake.Append(p.allInput.SubView(p.recordPos+tlsRecordHeaderLength, recordEnd))
		p.recordPos = recordEnd

		if done, msg := p.completeMessage(); done {
			return p.fingerprint(msg)
		}
	}

	return nil, nil
}

// completeMessage reports whether the accumulated record payloads hold the
// full hello declared by the handshake header, and returns its bytes if so.
func (p *helloParser) completeMessage() (bool, []byte) {
	const handshakeHeaderLength = 4
	if p.handshake.Len() < handshakeHeaderLength {
		return false, nil
	}

	msgEnd := handshakeHeaderLength + int64(p.handshake.GetUint24(1))
	if p.handshake.Len() < msgEnd {
		return false, nil
	}

	return true, []byte(p.handshake.SubView(0, msgEnd).String())
}

func (p *helloParser) fingerprint(msg []byte) (Observation, error) {
	fields, err := ja4.Parse(p.role, ja4.ModeStream, msg)
	if err != nil {
		return nil, errors.Wrapf(err, "fingerprinting %s hello", p.role)
	}

	return Handshake{
		ConnectionID: p.connectionID,
		Fields:       fields,
		Fingerprint:  fields.FingerprintWithPolicy(p.policy),
	}, nil
}
