package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"

	ja4 "github.com/mel2oo/go-ja4"
	"github.com/mel2oo/go-ja4/memview"
)

// Ensures that bits set in the hello prefixes are also set in the mask.
func TestHelloPrefixMask(t *testing.T) {
	for _, prefix := range [][]byte{clientHelloPrefixBytes, serverHelloPrefixBytes} {
		if len(prefix) != len(helloPrefixMask) {
			t.Fatalf("prefix has length %d but mask has length %d", len(prefix), len(helloPrefixMask))
		}
		for i := range prefix {
			if prefix[i]&helloPrefixMask[i] != prefix[i] {
				t.Errorf("bits set in prefix[%d] are being masked", i)
			}
		}
	}
}

func TestClientHelloFactoryAccepts(t *testing.T) {
	factory := NewClientHelloFactory(ja4.DefaultPolicy)

	// A TLS 1.2 client hello prefix.
	prefix := []byte{0x16, 0x03, 0x01, 0x01, 0x23, 0x01, 0x00, 0x01, 0x1f, 0x03, 0x03}

	decision, discard := factory.Accepts(memview.New(prefix), false)
	assert.Equal(t, Accept, decision)
	assert.Equal(t, int64(0), discard)

	// A short prefix is undecided until the stream ends.
	decision, _ = factory.Accepts(memview.New(prefix[:6]), false)
	assert.Equal(t, NeedMoreData, decision)

	decision, discard = factory.Accepts(memview.New(prefix[:6]), true)
	assert.Equal(t, Reject, decision)
	assert.Equal(t, int64(6), discard)

	// A server hello is not a client hello.
	server := append([]byte{}, prefix...)
	server[5] = 0x02
	decision, _ = factory.Accepts(memview.New(server), false)
	assert.Equal(t, Reject, decision)

	// Application data is not a hello at all.
	appData := append([]byte{}, prefix...)
	appData[0] = 0x17
	decision, _ = factory.Accepts(memview.New(appData), false)
	assert.Equal(t, Reject, decision)
}

func TestServerHelloFactoryAccepts(t *testing.T) {
	factory := NewServerHelloFactory(ja4.DefaultPolicy)

	prefix := []byte{0x16, 0x03, 0x03, 0x00, 0x7a, 0x02, 0x00, 0x00, 0x76, 0x03, 0x03}
	decision, _ := factory.Accepts(memview.New(prefix), false)
	assert.Equal(t, Accept, decision)

	prefix[5] = 0x01
	decision, _ = factory.Accepts(memview.New(prefix), false)
	assert.Equal(t, Reject, decision)
}

func TestSelectorPrefersEarlierFactory(t *testing.T) {
	selector := TCPParserFactorySelector{
		NewClientHelloFactory(ja4.DefaultPolicy),
		NewServerHelloFactory(ja4.DefaultPolicy),
	}

	clientPrefix := memview.New([]byte{0x16, 0x03, 0x01, 0x01, 0x23, 0x01, 0x00, 0x01, 0x1f, 0x03, 0x03})
	factory, decision, _ := selector.Select(clientPrefix, false)
	assert.Equal(t, Accept, decision)
	assert.Equal(t, "TLS client-hello parser factory", factory.Name())

	serverPrefix := memview.New([]byte{0x16, 0x03, 0x03, 0x00, 0x7a, 0x02, 0x00, 0x00, 0x76, 0x03, 0x03})
	factory, decision, _ = selector.Select(serverPrefix, false)
	assert.Equal(t, Accept, decision)
	assert.Equal(t, "TLS server-hello parser factory", factory.Name())

	// HTTP is nobody's hello.
	http := memview.New([]byte("GET / HTTP/1.1\r\n"))
	_, decision, discard := selector.Select(http, false)
	assert.Equal(t, Reject, decision)
	assert.Equal(t, http.Len(), discard)

	// Undecided while any factory still wants more bytes.
	short := memview.New([]byte{0x16, 0x03})
	_, decision, _ = selector.Select(short, false)
	assert.Equal(t, NeedMoreData, decision)

	_, decision, _ = selector.Select(short, true)
	assert.Equal(t, Reject, decision)
}
