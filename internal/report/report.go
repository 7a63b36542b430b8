// Package report assembles the text block printed for each captured frame.
package report

import (
	"strconv"
	"strings"
	"time"

	"firestige.xyz/sniffer/internal/core"
	"firestige.xyz/sniffer/internal/format"
)

// Options configures a Reporter.
type Options struct {
	// Location is the time zone used for the timestamp line. nil means time.Local.
	Location *time.Location
}

// Reporter renders decoded frames. It keeps no per-frame state.
type Reporter struct {
	loc *time.Location
}

// NewReporter creates a Reporter.
func NewReporter(opts Options) *Reporter {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	return &Reporter{loc: loc}
}

// Render returns the report for frame:
//
//	timestamp: 2023-11-14T22:13:20.123+00:00
//	captured length: 42
//	L2 protocol: ETHERNET
//	... one header line plus field lines per decoded layer ...
//
//	0x0000 ... hex dump of the captured bytes ...
//
// A malformed frame prints the layers decoded before the truncation.
func (r *Reporter) Render(frame core.DecodedFrame) string {
	data := frame.Raw.Bytes()

	var b strings.Builder
	b.Grow(256 + len(data)*5)

	line(&b, "timestamp", format.Timestamp(frame.Raw.Seconds, frame.Raw.Micros, r.loc))
	line(&b, "captured length", strconv.Itoa(frame.Raw.CaptureLen))
	for _, l := range frame.Layers {
		writeLayer(&b, l, frame.Raw)
	}
	b.WriteByte('\n')

	for _, l := range format.HexDump(data) {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	return b.String()
}

func writeLayer(b *strings.Builder, l core.Layer, raw core.RawFrame) {
	switch l := l.(type) {
	case core.Ethernet:
		line(b, "L2 protocol", l.Kind().String())
		line(b, "src MAC", format.MAC(l.SrcMAC))
		line(b, "dst MAC", format.MAC(l.DstMAC))
		line(b, "frame length", strconv.Itoa(raw.WireLen))
	case core.ARP:
		line(b, "L2.5 protocol", l.Kind().String())
		line(b, "src MAC", format.MAC(l.SrcMAC))
		line(b, "dst MAC", format.MAC(l.DstMAC))
		line(b, "src IP", format.IPv4(l.SrcIP))
		line(b, "dst IP", format.IPv4(l.DstIP))
		line(b, "ARP operation", strconv.Itoa(int(l.Operation)))
	case core.IPv4:
		line(b, "L3 protocol", l.Kind().String())
		line(b, "src IP", format.IPv4(l.SrcIP))
		line(b, "dst IP", format.IPv4(l.DstIP))
		line(b, "time to live", strconv.Itoa(int(l.TTL)))
	case core.IPv6:
		line(b, "L3 protocol", l.Kind().String())
		line(b, "src IP", format.IPv6(l.SrcIP))
		line(b, "dst IP", format.IPv6(l.DstIP))
		line(b, "hop limit", strconv.Itoa(int(l.HopLimit)))
	case core.ICMP:
		line(b, "L4 protocol", l.Kind().String())
		line(b, "ICMP type", strconv.Itoa(int(l.Type)))
	case core.TCP:
		line(b, "L4 protocol", l.Kind().String())
		line(b, "src port", strconv.Itoa(int(l.SrcPort)))
		line(b, "dst port", strconv.Itoa(int(l.DstPort)))
	case core.UDP:
		line(b, "L4 protocol", l.Kind().String())
		line(b, "src port", strconv.Itoa(int(l.SrcPort)))
		line(b, "dst port", strconv.Itoa(int(l.DstPort)))
	}
}

func line(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteByte('\n')
}
