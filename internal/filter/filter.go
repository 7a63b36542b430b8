// Package filter builds the capture filter expression from the selected
// protocols and evaluates compiled classic BPF programs in software.
package filter

import (
	"fmt"
	"strconv"
	"strings"

	"firestige.xyz/sniffer/internal/core"
)

// AnyPort disables port matching.
const AnyPort = -1

// Options selects which traffic reaches the decoder.
type Options struct {
	Port int // AnyPort or 0..65535, applies to TCP and UDP
	TCP  bool
	UDP  bool
	ARP  bool
	ICMP bool
}

// All reports whether no protocol was selected, which means every supported
// protocol is captured.
func (o Options) All() bool {
	return !o.TCP && !o.UDP && !o.ARP && !o.ICMP
}

// Validate checks the port range.
func (o Options) Validate() error {
	if o.Port != AnyPort && (o.Port < 0 || o.Port > 65535) {
		return fmt.Errorf("%w: port number invalid: %d", core.ErrInvalidArgument, o.Port)
	}
	return nil
}

// Expression returns the pcap filter expression for o.
//
// The expression starts from the never-true term "len < 0" so that every
// selected protocol can be appended as an "or" alternative. With no protocol
// selected it matches ARP, ICMP, ICMPv6, TCP and UDP; a port restricts TCP
// and UDP only.
func Expression(o Options) string {
	var b strings.Builder
	b.WriteString("len < 0 ")

	port := ""
	if o.Port != AnyPort {
		port = "port " + strconv.Itoa(o.Port) + " "
	}

	if o.All() {
		b.WriteString("or arp or icmp or icmp6 or tcp ")
		b.WriteString(port)
		b.WriteString("or udp ")
		b.WriteString(port)
		return b.String()
	}

	if o.ARP {
		b.WriteString("or arp ")
	}
	if o.ICMP {
		b.WriteString("or icmp or icmp6 ")
	}
	if o.TCP {
		b.WriteString("or tcp ")
		b.WriteString(port)
	}
	if o.UDP {
		b.WriteString("or udp ")
		b.WriteString(port)
	}
	if !o.TCP && !o.UDP && o.Port != AnyPort {
		p := strconv.Itoa(o.Port)
		b.WriteString("or udp port " + p + " or tcp port " + p)
	}

	return b.String()
}
