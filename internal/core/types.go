// Package core defines core types with zero external dependencies.
package core

import "strings"

// LayerKind tags the concrete type behind a Layer.
type LayerKind uint8

const (
	LayerUnknown LayerKind = iota
	LayerEthernet
	LayerARP
	LayerIPv4
	LayerIPv6
	LayerICMP
	LayerTCP
	LayerUDP
)

var layerNames = [...]string{
	LayerUnknown:  "UNKNOWN",
	LayerEthernet: "ETHERNET",
	LayerARP:      "ARP",
	LayerIPv4:     "IPv4",
	LayerIPv6:     "IPv6",
	LayerICMP:     "ICMP",
	LayerTCP:      "TCP",
	LayerUDP:      "UDP",
}

// String returns the protocol name printed in frame reports.
func (k LayerKind) String() string {
	if int(k) < len(layerNames) {
		return layerNames[k]
	}
	return layerNames[LayerUnknown]
}

// ParseLayerKind looks a kind up by its report name, ignoring case.
func ParseLayerKind(name string) (LayerKind, bool) {
	for k, n := range layerNames {
		if LayerKind(k) != LayerUnknown && strings.EqualFold(n, name) {
			return LayerKind(k), true
		}
	}
	return LayerUnknown, false
}

// Layer is one decoded protocol header. The concrete type is selected by Kind.
type Layer interface {
	Kind() LayerKind
}

// Ethernet is the L2 Ethernet II header.
type Ethernet struct {
	SrcMAC    [6]byte
	DstMAC    [6]byte
	EtherType uint16 // 0x0800=IPv4, 0x86DD=IPv6, 0x0806=ARP
}

// ARP is the fixed 28-byte Ethernet/IPv4 ARP header.
type ARP struct {
	HwType    uint16
	ProtoType uint16
	HwLen     uint8
	ProtoLen  uint8
	Operation uint16 // 1=request, 2=reply
	SrcMAC    [6]byte
	SrcIP     [4]byte
	DstMAC    [6]byte
	DstIP     [4]byte
}

// IPv4 holds the IPv4 header fields the report needs.
type IPv4 struct {
	SrcIP     [4]byte
	DstIP     [4]byte
	TTL       uint8
	Protocol  uint8 // ICMP=1, TCP=6, UDP=17
	HeaderLen int   // IHL * 4
}

// IPv6 holds the fixed IPv6 header fields. Extension headers are not walked.
type IPv6 struct {
	SrcIP      [16]byte
	DstIP      [16]byte
	HopLimit   uint8
	NextHeader uint8 // ICMPv6=58, TCP=6, UDP=17
}

// ICMP carries the message type of an ICMP or ICMPv6 header.
type ICMP struct {
	Type uint8
	V6   bool
}

// TCP holds the TCP port pair.
type TCP struct {
	SrcPort uint16
	DstPort uint16
}

// UDP holds the UDP port pair.
type UDP struct {
	SrcPort uint16
	DstPort uint16
}

// Unknown marks a selector value no decoder is registered for.
type Unknown struct {
	Selector uint16
}

func (Ethernet) Kind() LayerKind { return LayerEthernet }
func (ARP) Kind() LayerKind      { return LayerARP }
func (IPv4) Kind() LayerKind     { return LayerIPv4 }
func (IPv6) Kind() LayerKind     { return LayerIPv6 }
func (ICMP) Kind() LayerKind     { return LayerICMP }
func (TCP) Kind() LayerKind      { return LayerTCP }
func (UDP) Kind() LayerKind      { return LayerUDP }
func (Unknown) Kind() LayerKind  { return LayerUnknown }
