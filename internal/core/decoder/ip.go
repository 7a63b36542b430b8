// Package decoder implements protocol decoding.
package decoder

import (
	"firestige.xyz/sniffer/internal/core"
)

const (
	ipv4HeaderMinLen = 20
	ipv6HeaderLen    = 40
)

// decodeIPv4 decodes the IPv4 header at off.
// Returns the header, the cursor after header options and the protocol field.
func decodeIPv4(data []byte, off int) (core.Layer, int, uint8, error) {
	if err := need(data, off, ipv4HeaderMinLen, core.LayerIPv4); err != nil {
		return nil, off, 0, err
	}
	h := data[off:]

	// IHL (Internet Header Length) - lower 4 bits of first byte, in 32-bit words
	headerLen := int(h[0]&0x0F) * 4
	if headerLen < ipv4HeaderMinLen {
		return nil, off, 0, &core.MalformedError{
			Layer: core.LayerIPv4, Offset: off, Need: ipv4HeaderMinLen, Have: len(data),
		}
	}
	if err := need(data, off, headerLen, core.LayerIPv4); err != nil {
		return nil, off, 0, err
	}

	ip := core.IPv4{
		TTL:       h[8], // TTL (1 byte at offset 8)
		Protocol:  h[9], // Protocol (1 byte at offset 9)
		HeaderLen: headerLen,
	}

	// Source IP (4 bytes at offset 12), destination IP (4 bytes at offset 16)
	copy(ip.SrcIP[:], h[12:16])
	copy(ip.DstIP[:], h[16:20])

	return ip, off + headerLen, ip.Protocol, nil
}

// decodeIPv6 decodes the fixed IPv6 header at off.
// Extension headers are not walked: the next-header value is returned as is
// and an extension header number simply finds no transport decoder.
func decodeIPv6(data []byte, off int) (core.Layer, int, uint8, error) {
	if err := need(data, off, ipv6HeaderLen, core.LayerIPv6); err != nil {
		return nil, off, 0, err
	}
	h := data[off : off+ipv6HeaderLen]

	ip := core.IPv6{
		NextHeader: h[6], // Next Header (1 byte at offset 6)
		HopLimit:   h[7], // Hop Limit (1 byte at offset 7)
	}

	// Source IP (16 bytes at offset 8), destination IP (16 bytes at offset 24)
	copy(ip.SrcIP[:], h[8:24])
	copy(ip.DstIP[:], h[24:40])

	return ip, off + ipv6HeaderLen, ip.NextHeader, nil
}
