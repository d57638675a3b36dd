package capture

import (
	"encoding/binary"
	"net"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/reassembly"

	"github.com/mel2oo/go-ja4/gid"
	"github.com/mel2oo/go-ja4/memview"
)

// Internal implementation of reassembly.AssemblerContext that includes TCP
// seq and ack numbers.
type assemblerCtxWithSeq struct {
	ci       gopacket.CaptureInfo
	seq, ack reassembly.Sequence
}

func contextFromTCPPacket(p gopacket.Packet, t *layers.TCP) *assemblerCtxWithSeq {
	return &assemblerCtxWithSeq{
		ci:  p.Metadata().CaptureInfo,
		seq: reassembly.Sequence(t.Seq),
		ack: reassembly.Sequence(t.Ack),
	}
}

func (ctx *assemblerCtxWithSeq) GetCaptureInfo() gopacket.CaptureInfo {
	return ctx.ci
}

// tcpStreamFactory implements reassembly.StreamFactory.
type tcpStreamFactory struct {
	outChan   chan<- Traffic
	factories TCPParserFactorySelector
}

func newTCPStreamFactory(outChan chan<- Traffic, factories TCPParserFactorySelector) *tcpStreamFactory {
	return &tcpStreamFactory{
		outChan:   outChan,
		factories: factories,
	}
}

func (fact *tcpStreamFactory) New(netFlow, tcpFlow gopacket.Flow, _ *layers.TCP,
	_ reassembly.AssemblerContext) reassembly.Stream {
	return newTCPStream(netFlow, tcpFlow, fact.outChan, fact.factories)
}

// tcpStream tracks one TCP connection. Each direction gets its own tcpFlow;
// the two share a connection ID so the client and server hellos of one
// handshake can be joined downstream.
type tcpStream struct {
	id      gid.ConnectionID
	netFlow gopacket.Flow
	tcpFlow gopacket.Flow
	outChan chan<- Traffic

	flows [2]*tcpFlow
}

var _ reassembly.Stream = (*tcpStream)(nil)

func newTCPStream(netFlow, tcpFlow gopacket.Flow, outChan chan<- Traffic,
	factories TCPParserFactorySelector) *tcpStream {
	s := &tcpStream{
		id:      gid.GenerateConnectionID(),
		netFlow: netFlow,
		tcpFlow: tcpFlow,
		outChan: outChan,
	}
	s.flows[0] = &tcpFlow{stream: s, dir: reassembly.TCPDirClientToServer, factories: factories}
	s.flows[1] = &tcpFlow{stream: s, dir: reassembly.TCPDirServerToClient, factories: factories}
	return s
}

func (s *tcpStream) Accept(tcp *layers.TCP, ci gopacket.CaptureInfo,
	dir reassembly.TCPFlowDirection, nextSeq reassembly.Sequence,
	start *bool, ac reassembly.AssemblerContext) bool {
	// Accept everything; sequence checking is the assembler's job.
	return true
}

func (s *tcpStream) ReassembledSG(sg reassembly.ScatterGather, ac reassembly.AssemblerContext) {
	dir, _, _, skip := sg.Info()
	flow := s.flow(dir)

	// A positive skip means captured bytes were lost to a reassembly gap.
	// Any parser state is now meaningless for this direction.
	if skip > 0 {
		flow.abandon()
		return
	}

	length, _ := sg.Lengths()
	if length == 0 {
		return
	}

	// The assembler reuses the fetched pages, so take a copy before holding
	// on to the bytes.
	fetched := sg.Fetch(length)
	data := make([]byte, len(fetched))
	copy(data, fetched)

	var ts time.Time
	if ac != nil {
		ts = ac.GetCaptureInfo().Timestamp
	}

	flow.handleBytes(memview.New(data), ts, false)
}

func (s *tcpStream) ReassemblyComplete(ac reassembly.AssemblerContext) bool {
	for _, flow := range s.flows {
		flow.handleBytes(memview.MemView{}, time.Time{}, true)
	}
	// Let the stream pool release this stream's resources.
	return true
}

func (s *tcpStream) flow(dir reassembly.TCPFlowDirection) *tcpFlow {
	if dir == reassembly.TCPDirClientToServer {
		return s.flows[0]
	}
	return s.flows[1]
}

// tcpFlow is one direction of a TCP connection. It buffers bytes until a
// parser factory accepts the stream, then feeds the chosen parser until it
// produces an observation. A flow that has produced its observation, been
// rejected by every factory, or hit a reassembly gap discards everything
// that follows.
type tcpFlow struct {
	stream    *tcpStream
	dir       reassembly.TCPFlowDirection
	factories TCPParserFactorySelector

	buf    memview.MemView
	parser TCPParser
	done   bool

	firstSeen time.Time
	lastSeen  time.Time
}

func (f *tcpFlow) abandon() {
	f.parser = nil
	f.done = true
	f.buf.Clear()
}

func (f *tcpFlow) handleBytes(data memview.MemView, ts time.Time, isEnd bool) {
	if f.done {
		return
	}
	if !ts.IsZero() {
		if f.firstSeen.IsZero() {
			f.firstSeen = ts
		}
		f.lastSeen = ts
	}

	if f.parser != nil {
		f.feed(data, isEnd)
		return
	}

	f.buf.Append(data)
	factory, decision, discardFront := f.factories.Select(f.buf, isEnd)
	switch decision {
	case NeedMoreData:
		if discardFront > 0 {
			f.buf = f.buf.SubView(discardFront, f.buf.Len())
		}
	case Reject:
		if f.buf.Len() > 0 {
			f.emit(DroppedBytes(f.buf.Len()))
		}
		f.abandon()
	case Accept:
		if discardFront > 0 {
			f.buf = f.buf.SubView(discardFront, f.buf.Len())
		}
		f.parser = factory.CreateParser(f.stream.id)
		input := f.buf
		f.buf = memview.MemView{}
		f.feed(input, isEnd)
	}
}

func (f *tcpFlow) feed(input memview.MemView, isEnd bool) {
	result, _, _, err := f.parser.Parse(input, isEnd)
	if err != nil {
		f.abandon()
		return
	}
	if result != nil {
		f.emit(result)
		// One hello per direction; what follows is encrypted.
		f.abandon()
	}
}

func (f *tcpFlow) emit(obs Observation) {
	netFlow, tcpFlow := f.stream.netFlow, f.stream.tcpFlow
	if f.dir == reassembly.TCPDirServerToClient {
		netFlow, tcpFlow = netFlow.Reverse(), tcpFlow.Reverse()
	}

	f.stream.outChan <- Traffic{
		SrcIP:           net.IP(netFlow.Src().Raw()),
		SrcPort:         int(binary.BigEndian.Uint16(tcpFlow.Src().Raw())),
		DstIP:           net.IP(netFlow.Dst().Raw()),
		DstPort:         int(binary.BigEndian.Uint16(tcpFlow.Dst().Raw())),
		Content:         obs,
		ObservationTime: f.firstSeen,
		FinalPacketTime: f.lastSeen,
	}
}
