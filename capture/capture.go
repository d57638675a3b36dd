// Package capture locates TLS and DTLS hello messages in network traffic
// and emits their fingerprints. TCP streams are reassembled and deframed;
// DTLS hellos are lifted straight out of UDP datagrams.
package capture

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/reassembly"
	"github.com/pkg/errors"
)

type TrafficParser struct {
	opts    Options
	reader  PacketReader
	dtls    *dtlsTracker
	outchan chan Traffic
}

func NewTrafficParser(opt ...Option) (*TrafficParser, error) {
	opts := NewOptions()
	for _, o := range opt {
		o(&opts)
	}

	if len(opts.ReadName) == 0 {
		return nil, errors.New("please set reader name")
	}

	var reader PacketReader
	if !opts.Live {
		reader = NewFileReader(opts.ReadName, opts.BPFilter)
	} else {
		reader = NewDeviceReader(opts.ReadName, opts.BPFilter)
	}

	return &TrafficParser{
		opts:    opts,
		reader:  reader,
		dtls:    newDTLSTracker(opts.Policy),
		outchan: make(chan Traffic, 100),
	}, nil
}

// Parse captures packets and emits one Traffic observation per hello found.
// The order of parser factories matters: earlier factories get tried first,
// and once one has accepted a stream no other factory is consulted. With no
// factories given, the client and server hello factories are used.
//
// The returned channel closes when the packet source is exhausted or the
// context is cancelled.
func (p *TrafficParser) Parse(ctx context.Context,
	fs ...TCPParserFactory) (<-chan Traffic, error) {
	if len(fs) == 0 {
		fs = []TCPParserFactory{
			NewClientHelloFactory(p.opts.Policy),
			NewServerHelloFactory(p.opts.Policy),
		}
	}

	// Read in packets, pass to assembler.
	packets, err := p.reader.Capture(ctx)
	if err != nil {
		return nil, err
	}

	// Set up assembly.
	streamFactory := newTCPStreamFactory(p.outchan, TCPParserFactorySelector(fs))
	streamPool := reassembly.NewStreamPool(streamFactory)
	assembler := reassembly.NewAssembler(streamPool)

	// Override the assembler configuration. (This is the documented way to
	// change it.)
	assembler.AssemblerOptions.MaxBufferedPagesTotal = p.opts.MaxBufferedPagesTotal
	assembler.AssemblerOptions.MaxBufferedPagesPerConnection = p.opts.MaxBufferedPagesPerConnection

	streamFlushTimeout := time.Duration(p.opts.StreamFlushTimeout) * time.Second
	streamCloseTimeout := time.Duration(p.opts.StreamCloseTimeout) * time.Second

	go func() {
		ticker := time.NewTicker(streamFlushTimeout / 4)
		defer ticker.Stop()

		// Signal the caller that we're done on exit.
		defer close(p.outchan)

		for {
			select {
			case packet, more := <-packets:
				if !more || packet == nil {
					// Flushes and closes all remaining connections, which
					// delivers any hello still sitting in a reassembly
					// buffer.
					assembler.FlushAll()
					return
				}

				p.packetToTraffic(assembler, packet)
			case <-ticker.C:
				// Flush streams with a reassembly gap older than the flush
				// timeout, and close streams idle past the close timeout.
				now := time.Now()
				assembler.FlushWithOptions(reassembly.FlushOptions{
					T:  now.Add(-streamFlushTimeout),
					TC: now.Add(-streamCloseTimeout),
				})
			}
		}
	}()

	return p.outchan, nil
}

func (p *TrafficParser) packetToTraffic(assembler *reassembly.Assembler, packet gopacket.Packet) {
	defer func() {
		// A malformed packet must not crash the capture loop.
		if err := recover(); err != nil {
			fmt.Println("packet handling", err)
		}
	}()

	if packet.NetworkLayer() == nil {
		return
	}

	observationTime := time.Now()
	if packet.Metadata() != nil {
		if t := packet.Metadata().Timestamp; !t.IsZero() {
			observationTime = t
		}
	}

	var srcIP, dstIP net.IP
	switch l := packet.NetworkLayer().(type) {
	case *layers.IPv4:
		srcIP = l.SrcIP
		dstIP = l.DstIP
	case *layers.IPv6:
		srcIP = l.SrcIP
		dstIP = l.DstIP
	}

	switch t := packet.TransportLayer().(type) {
	case *layers.TCP:
		// Let the TCP reassembler piece the stream back together; the
		// stream's parsers take it from there.
		assembler.AssembleWithContext(packet.NetworkLayer().NetworkFlow(), t,
			contextFromTCPPacket(packet, t))

	case *layers.UDP:
		payload := t.LayerPayload()
		if !looksLikeDTLS(payload) {
			return
		}
		netFlow := packet.NetworkLayer().NetworkFlow()
		for _, obs := range p.dtls.helloObservations(payload, netFlow, t.TransportFlow()) {
			p.outchan <- Traffic{
				SrcIP:           srcIP,
				SrcPort:         int(t.SrcPort),
				DstIP:           dstIP,
				DstPort:         int(t.DstPort),
				Content:         obs,
				ObservationTime: observationTime,
				FinalPacketTime: observationTime,
			}
		}
	}
}
