package capture

import (
	ja4 "github.com/mel2oo/go-ja4"
	"github.com/mel2oo/go-ja4/gid"
	"github.com/mel2oo/go-ja4/memview"
)

const (
	tlsRecordHeaderLength = 5

	// Record header, handshake header and the hello's own version field:
	// enough to decide whether a stream prefix is a hello.
	minHelloPrefixLength = 11
)

// The stream prefix of a TLS client hello. Record length and handshake
// length are ignored; version fields are matched on the major byte only so
// all SSL 3 / TLS versions pass.
var clientHelloPrefixBytes = []byte{
	// Record header (5 bytes)
	0x16,       // handshake record
	0x03, 0x00, // record version, major 3
	0x00, 0x00, // record payload size (ignored)

	// Handshake header (4 bytes)
	0x01,             // client hello
	0x00, 0x00, 0x00, // hello size (ignored)

	// Legacy version (2 bytes)
	0x03, 0x00, // major 3
}

var helloPrefixMask = []byte{
	0xff,       // record type
	0xff, 0x00, // record version major
	0x00, 0x00,
	0xff, // handshake type
	0x00, 0x00, 0x00,
	0xff, 0x00, // legacy version major
}

var serverHelloPrefixBytes = func() []byte {
	prefix := make([]byte, len(clientHelloPrefixBytes))
	copy(prefix, clientHelloPrefixBytes)
	prefix[5] = 0x02 // server hello
	return prefix
}()

// NewClientHelloFactory returns a parser factory for the client half of a
// TLS connection.
func NewClientHelloFactory(policy ja4.Policy) TCPParserFactory {
	return &helloFactory{
		role:   ja4.RoleClient,
		prefix: clientHelloPrefixBytes,
		policy: policy,
	}
}

// NewServerHelloFactory returns a parser factory for the server half of a
// TLS connection.
func NewServerHelloFactory(policy ja4.Policy) TCPParserFactory {
	return &helloFactory{
		role:   ja4.RoleServer,
		prefix: serverHelloPrefixBytes,
		policy: policy,
	}
}

type helloFactory struct {
	role   ja4.Role
	prefix []byte
	policy ja4.Policy
}

func (f *helloFactory) Name() string {
	return "TLS " + f.role.String() + "-hello parser factory"
}

func (f *helloFactory) Accepts(input memview.MemView, isEnd bool) (AcceptDecision, int64) {
	decision, discardFront := f.accepts(input)

	if decision == NeedMoreData && isEnd {
		decision = Reject
		discardFront = input.Len()
	}

	return decision, discardFront
}

func (f *helloFactory) accepts(input memview.MemView) (AcceptDecision, int64) {
	if input.Len() < minHelloPrefixLength {
		return NeedMoreData, 0
	}

	for idx, expected := range f.prefix {
		if input.GetByte(int64(idx))&helloPrefixMask[idx] != expected {
			return Reject, input.Len()
		}
	}

	return Accept, 0
}

func (f *helloFactory) CreateParser(id gid.ConnectionID) TCPParser {
	return newHelloParser(id, f.role, f.policy)
}
