// Command ja4 prints a fingerprint line for every TLS or DTLS hello found
// in a pcap file or captured live from an interface.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"time"

	ja4 "github.com/mel2oo/go-ja4"
	"github.com/mel2oo/go-ja4/capture"
	"github.com/mel2oo/go-ja4/gid"
)

func main() {
	var (
		file          = flag.String("r", "", "read packets from a pcap `file`")
		device        = flag.String("i", "", "capture packets from a network `interface`")
		bpf           = flag.String("f", "", "BPF `filter` applied to the capture")
		jsonOut       = flag.Bool("json", false, "print one JSON object per hello")
		filterSigAlgs = flag.Bool("filter-sigalgs", false, "strip GREASE values from signature algorithm lists")
	)
	flag.Parse()

	if (*file == "") == (*device == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -r or -i is required")
		flag.Usage()
		os.Exit(2)
	}

	name, live := *file, false
	if *device != "" {
		name, live = *device, true
	}

	parser, err := capture.NewTrafficParser(
		capture.WithReadName(name, live),
		capture.WithBPF(*bpf),
		capture.WithPolicy(ja4.Policy{FilterSignatureAlgorithms: *filterSigAlgs}),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ja4:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	traffic, err := parser.Parse(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ja4:", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	for tr := range traffic {
		hello, ok := tr.Content.(capture.Handshake)
		if !ok {
			continue
		}

		if *jsonOut {
			if err := enc.Encode(newHelloRecord(tr, hello)); err != nil {
				fmt.Fprintln(os.Stderr, "ja4:", err)
				os.Exit(1)
			}
			continue
		}

		sni, _ := hello.Fields.SNI.Get()
		degraded := ""
		if hello.Fingerprint.Degraded {
			degraded = " (degraded)"
		}
		fmt.Printf("%s %s:%d -> %s:%d %s %s sni=%q%s\n",
			tr.ObservationTime.Format(time.RFC3339),
			tr.SrcIP, tr.SrcPort, tr.DstIP, tr.DstPort,
			hello.Fields.Role, hello.Fingerprint, sni, degraded)
	}
}

type helloRecord struct {
	Time         time.Time        `json:"time"`
	ConnectionID gid.ConnectionID `json:"connection_id"`
	SrcIP        net.IP           `json:"src_ip"`
	SrcPort      int              `json:"src_port"`
	DstIP        net.IP           `json:"dst_ip"`
	DstPort      int              `json:"dst_port"`
	Role         string           `json:"role"`
	Mode         string           `json:"mode"`
	Fingerprint  string           `json:"fingerprint"`
	Degraded     bool             `json:"degraded,omitempty"`
	SNI          string           `json:"sni,omitempty"`
	ALPN         []string         `json:"alpn,omitempty"`
}

func newHelloRecord(tr capture.Traffic, hello capture.Handshake) helloRecord {
	sni, _ := hello.Fields.SNI.Get()
	return helloRecord{
		Time:         tr.ObservationTime,
		ConnectionID: hello.ConnectionID,
		SrcIP:        tr.SrcIP,
		SrcPort:      tr.SrcPort,
		DstIP:        tr.DstIP,
		DstPort:      tr.DstPort,
		Role:         hello.Fields.Role.String(),
		Mode:         hello.Fields.Mode.String(),
		Fingerprint:  hello.Fingerprint.Value,
		Degraded:     hello.Fingerprint.Degraded,
		SNI:          sni,
		ALPN:         hello.Fields.ALPN,
	}
}
