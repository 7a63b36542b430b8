// Package decoder implements protocol decoding.
package decoder

import (
	"encoding/binary"

	"firestige.xyz/sniffer/internal/core"
)

const (
	icmpTypeLen = 1
	portPairLen = 4

	// Protocol numbers
	protocolICMP   = 1
	protocolTCP    = 6
	protocolUDP    = 17
	protocolICMPv6 = 58
)

func decodeICMPv4(data []byte, off int) (core.Layer, error) {
	return decodeICMP(data, off, false)
}

func decodeICMPv6(data []byte, off int) (core.Layer, error) {
	return decodeICMP(data, off, true)
}

// decodeICMP reads the message type, the first byte of the ICMP header.
func decodeICMP(data []byte, off int, v6 bool) (core.Layer, error) {
	if err := need(data, off, icmpTypeLen, core.LayerICMP); err != nil {
		return nil, err
	}
	return core.ICMP{Type: data[off], V6: v6}, nil
}

// decodeTCP reads the port pair at the start of the TCP header.
func decodeTCP(data []byte, off int) (core.Layer, error) {
	if err := need(data, off, portPairLen, core.LayerTCP); err != nil {
		return nil, err
	}
	src, dst := readPorts(data[off:])
	return core.TCP{SrcPort: src, DstPort: dst}, nil
}

// decodeUDP reads the port pair at the start of the UDP header.
func decodeUDP(data []byte, off int) (core.Layer, error) {
	if err := need(data, off, portPairLen, core.LayerUDP); err != nil {
		return nil, err
	}
	src, dst := readPorts(data[off:])
	return core.UDP{SrcPort: src, DstPort: dst}, nil
}

// readPorts returns the big-endian source and destination ports shared by the
// TCP and UDP header layouts. p must hold at least 4 bytes.
func readPorts(p []byte) (src, dst uint16) {
	return binary.BigEndian.Uint16(p[0:2]), binary.BigEndian.Uint16(p[2:4])
}
