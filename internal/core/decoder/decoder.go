// Package decoder implements L2-L4 protocol stack decoding.
package decoder

import (
	"firestige.xyz/sniffer/internal/core"
)

// Decoder decodes raw frames into an ordered layer sequence.
// Decode never fails: a short or truncated frame yields the layers decoded so
// far with DecodedFrame.Err set.
type Decoder interface {
	Decode(raw core.RawFrame) core.DecodedFrame
}

// networkDecodeFunc decodes the header selected by an EtherType at off.
// It returns the layer, the cursor after the header and the selector of the
// next layer.
type networkDecodeFunc func(data []byte, off int) (core.Layer, int, uint8, error)

// transportDecodeFunc decodes the header selected by an IP protocol number.
type transportDecodeFunc func(data []byte, off int) (core.Layer, error)

// transportKey selects a transport decoder by network family and protocol,
// so ICMP (1) is only accepted after IPv4 and ICMPv6 (58) only after IPv6.
type transportKey struct {
	network  core.LayerKind
	protocol uint8
}

// Config controls which protocols the decoder dispatches to.
type Config struct {
	// Disabled removes layer kinds from the dispatch tables. The chain ends
	// where a disabled layer would have been decoded. Ethernet cannot be disabled.
	Disabled []core.LayerKind
}

// StandardDecoder walks Ethernet -> ARP/IPv4/IPv6 -> ICMP/TCP/UDP through two
// lookup tables. It holds no per-frame state and is safe for concurrent use.
type StandardDecoder struct {
	network   map[uint16]networkDecodeFunc
	transport map[transportKey]transportDecodeFunc
}

// NewStandardDecoder creates a decoder with every supported protocol registered
// except those listed in cfg.Disabled.
func NewStandardDecoder(cfg Config) *StandardDecoder {
	disabled := make(map[core.LayerKind]bool, len(cfg.Disabled))
	for _, k := range cfg.Disabled {
		disabled[k] = true
	}

	d := &StandardDecoder{
		network:   make(map[uint16]networkDecodeFunc),
		transport: make(map[transportKey]transportDecodeFunc),
	}

	networks := []struct {
		etherType uint16
		kind      core.LayerKind
		fn        networkDecodeFunc
	}{
		{etherTypeIPv4, core.LayerIPv4, decodeIPv4},
		{etherTypeIPv6, core.LayerIPv6, decodeIPv6},
		{etherTypeARP, core.LayerARP, decodeARP},
	}
	for _, n := range networks {
		if !disabled[n.kind] {
			d.network[n.etherType] = n.fn
		}
	}

	transports := []struct {
		key  transportKey
		kind core.LayerKind
		fn   transportDecodeFunc
	}{
		{transportKey{core.LayerIPv4, protocolICMP}, core.LayerICMP, decodeICMPv4},
		{transportKey{core.LayerIPv6, protocolICMPv6}, core.LayerICMP, decodeICMPv6},
		{transportKey{core.LayerIPv4, protocolTCP}, core.LayerTCP, decodeTCP},
		{transportKey{core.LayerIPv6, protocolTCP}, core.LayerTCP, decodeTCP},
		{transportKey{core.LayerIPv4, protocolUDP}, core.LayerUDP, decodeUDP},
		{transportKey{core.LayerIPv6, protocolUDP}, core.LayerUDP, decodeUDP},
	}
	for _, t := range transports {
		if !disabled[t.kind] {
			d.transport[t.key] = t.fn
		}
	}

	return d
}

// Decode implements Decoder.
func (d *StandardDecoder) Decode(raw core.RawFrame) core.DecodedFrame {
	frame := core.DecodedFrame{Raw: raw}
	data := raw.Bytes()

	eth, off, err := decodeEthernet(data)
	if err != nil {
		frame.Err = err
		return frame
	}
	frame.Layers = make([]core.Layer, 0, 3)
	frame.Layers = append(frame.Layers, eth)

	decodeNetwork, ok := d.network[eth.EtherType]
	if !ok {
		return frame
	}
	network, off, protocol, err := decodeNetwork(data, off)
	if err != nil {
		frame.Err = err
		return frame
	}
	frame.Layers = append(frame.Layers, network)

	decodeTransport, ok := d.transport[transportKey{network.Kind(), protocol}]
	if !ok {
		return frame
	}
	transport, err := decodeTransport(data, off)
	if err != nil {
		frame.Err = err
		return frame
	}
	frame.Layers = append(frame.Layers, transport)

	return frame
}

// need verifies that n bytes can be read at off without leaving data.
func need(data []byte, off, n int, kind core.LayerKind) error {
	if off < 0 || n < 0 || off+n > len(data) {
		return &core.MalformedError{Layer: kind, Offset: off, Need: n, Have: len(data)}
	}
	return nil
}
