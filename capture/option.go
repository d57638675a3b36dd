package capture

import (
	ja4 "github.com/mel2oo/go-ja4"
)

const (
	DefaultStreamFlushTimeout int64 = 10
	DefaultStreamCloseTimeout int64 = 90

	DefaultMaxBufferedPagesTotal         int = 100000
	DefaultMaxBufferedPagesPerConnection int = 4000
)

type Options struct {
	// live or offline
	Live bool
	// read from offline file or live device
	ReadName string
	// bpf filter
	BPFilter string

	// Canonicalization policy applied to fingerprints.
	Policy ja4.Policy

	// The maximum time we will wait before flushing a connection and
	// delivering the data even if there is a gap in the collected sequence.
	// Default 10 seconds.
	StreamFlushTimeout int64

	// The maximum time we will leave a connection open waiting for traffic.
	// Default 90 seconds.
	StreamCloseTimeout int64

	// Maximum size of gopacket reassembly buffers, per interface and
	// direction. A gopacket page is 1900 bytes.
	MaxBufferedPagesTotal int

	// Maximum reassembly pages held for a single connection. Enough that a
	// retransmitted packet arrives before we give up on the gap.
	MaxBufferedPagesPerConnection int
}

func NewOptions() Options {
	return Options{
		Policy:                        ja4.DefaultPolicy,
		StreamFlushTimeout:            DefaultStreamFlushTimeout,
		StreamCloseTimeout:            DefaultStreamCloseTimeout,
		MaxBufferedPagesTotal:         DefaultMaxBufferedPagesTotal,
		MaxBufferedPagesPerConnection: DefaultMaxBufferedPagesPerConnection,
	}
}

type Option func(*Options)

func WithReadName(name string, live bool) Option {
	return func(o *Options) {
		o.Live = live
		o.ReadName = name
	}
}

func WithBPF(filter string) Option {
	return func(o *Options) {
		o.BPFilter = filter
	}
}

func WithPolicy(p ja4.Policy) Option {
	return func(o *Options) {
		o.Policy = p
	}
}

func WithStreamFlushTimeout(t int64) Option {
	return func(o *Options) {
		o.StreamFlushTimeout = t
	}
}

func WithStreamCloseTimeout(t int64) Option {
	return func(o *Options) {
		o.StreamCloseTimeout = t
	}
}

func WithTotalPagesBlock(n int) Option {
	return func(o *Options) {
		o.MaxBufferedPagesTotal = n * DefaultMaxBufferedPagesTotal
	}
}

func WithPerPagesBlock(n int) Option {
	return func(o *Options) {
		o.MaxBufferedPagesPerConnection = n * DefaultMaxBufferedPagesPerConnection
	}
}
