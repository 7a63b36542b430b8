// Package decoder implements protocol decoding.
package decoder

import (
	"encoding/binary"

	"firestige.xyz/sniffer/internal/core"
)

const (
	// Ethernet constants
	ethernetHeaderLen = 14
	arpHeaderLen      = 28

	// EtherType values
	etherTypeIPv4 = 0x0800
	etherTypeARP  = 0x0806
	etherTypeIPv6 = 0x86DD
)

// decodeEthernet decodes the Ethernet II header at the start of data.
// Returns the header and the cursor of the encapsulated payload.
func decodeEthernet(data []byte) (core.Ethernet, int, error) {
	if err := need(data, 0, ethernetHeaderLen, core.LayerEthernet); err != nil {
		return core.Ethernet{}, 0, err
	}

	eth := core.Ethernet{}

	// Destination MAC (6 bytes)
	copy(eth.DstMAC[:], data[0:6])

	// Source MAC (6 bytes)
	copy(eth.SrcMAC[:], data[6:12])

	// EtherType (2 bytes)
	eth.EtherType = binary.BigEndian.Uint16(data[12:14])

	return eth, ethernetHeaderLen, nil
}

// decodeARP decodes the fixed-size ARP header at off.
// ARP carries no further layer, so the returned selector is always zero.
func decodeARP(data []byte, off int) (core.Layer, int, uint8, error) {
	if err := need(data, off, arpHeaderLen, core.LayerARP); err != nil {
		return nil, off, 0, err
	}
	h := data[off : off+arpHeaderLen]

	arp := core.ARP{
		HwType:    binary.BigEndian.Uint16(h[0:2]),
		ProtoType: binary.BigEndian.Uint16(h[2:4]),
		HwLen:     h[4],
		ProtoLen:  h[5],
		Operation: binary.BigEndian.Uint16(h[6:8]),
	}

	// Sender hardware/protocol address (6 + 4 bytes)
	copy(arp.SrcMAC[:], h[8:14])
	copy(arp.SrcIP[:], h[14:18])

	// Target hardware/protocol address (6 + 4 bytes)
	copy(arp.DstMAC[:], h[18:24])
	copy(arp.DstIP[:], h[24:28])

	return arp, off + arpHeaderLen, 0, nil
}
