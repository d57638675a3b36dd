package capture

import (
	"github.com/mel2oo/go-ja4/gid"
	"github.com/mel2oo/go-ja4/memview"
)

// AcceptDecision is a parser factory's verdict on a stream prefix.
type AcceptDecision int

const (
	// More bytes are needed before the factory can decide.
	NeedMoreData AcceptDecision = iota

	// The stream belongs to this factory's parser.
	Accept

	// The stream can never belong to this factory's parser.
	Reject
)

func (d AcceptDecision) String() string {
	switch d {
	case NeedMoreData:
		return "NeedMoreData"
	case Accept:
		return "Accept"
	case Reject:
		return "Reject"
	}
	return "unknown"
}

// TCPParser consumes the bytes of one side of a reassembled TCP stream and
// produces at most one observation.
type TCPParser interface {
	Name() string

	// Parse consumes input and reports how far it got. A non-nil result
	// means the parser is done; unused holds any bytes past the result that
	// it did not consume. isEnd signals that no more input will arrive.
	Parse(input memview.MemView, isEnd bool) (result Observation, unused memview.MemView, totalBytesConsumed int64, err error)
}

// TCPParserFactory decides whether a stream prefix belongs to its parser.
type TCPParserFactory interface {
	Name() string

	// Accepts examines a stream prefix. discardFront is the number of
	// leading bytes the caller may drop: on Reject, bytes this factory has
	// ruled out; on NeedMoreData, bytes no future call will need.
	Accepts(input memview.MemView, isEnd bool) (decision AcceptDecision, discardFront int64)

	CreateParser(id gid.ConnectionID) TCPParser
}

// TCPParserFactorySelector tries factories in order. Earlier factories win.
type TCPParserFactorySelector []TCPParserFactory

// Select runs every factory against the stream prefix. It returns the first
// factory that accepts, or NeedMoreData while any factory is still undecided,
// or Reject once all factories have ruled themselves out. discardFront is the
// number of leading bytes that are safe to drop whatever happens next: the
// accepting factory's discard on Accept, the whole input on Reject, and the
// minimum across undecided factories on NeedMoreData.
func (s TCPParserFactorySelector) Select(input memview.MemView, isEnd bool) (TCPParserFactory, AcceptDecision, int64) {
	if len(s) == 0 {
		return nil, Reject, input.Len()
	}

	minDiscard := input.Len()
	anyUndecided := false

	for _, factory := range s {
		decision, discard := factory.Accepts(input, isEnd)
		switch decision {
		case Accept:
			return factory, Accept, discard
		case NeedMoreData:
			anyUndecided = true
			if discard < minDiscard {
				minDiscard = discard
			}
		case Reject:
		}
	}

	if anyUndecided {
		return nil, NeedMoreData, minDiscard
	}
	return nil, Reject, input.Len()
}
