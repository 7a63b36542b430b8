// Package format renders addresses, capture timestamps and hex dumps as text.
//
// Every function here is pure and allocates its own scratch space, so frames
// may be formatted from several goroutines at once.
package format

import (
	"net"
	"net/netip"
	"strconv"
)

// MAC renders six bytes as lowercase hex pairs joined by ':'.
func MAC(mac [6]byte) string {
	return net.HardwareAddr(mac[:]).String()
}

// IPv4 renders four octets in dotted-decimal form.
func IPv4(ip [4]byte) string {
	return netip.AddrFrom4(ip).String()
}

// IPv6 renders an address in compressed form: the longest run of two or more
// all-zero groups becomes "::" (leftmost run wins a tie) and every other group
// is lowercase hex without leading zeros. Unlike netip, IPv4-mapped and
// IPv4-compatible addresses keep the all-hex form.
func IPv6(ip [16]byte) string {
	var groups [8]uint16
	for i := range groups {
		groups[i] = uint16(ip[2*i])<<8 | uint16(ip[2*i+1])
	}

	zeroStart, zeroLen := longestZeroRun(groups)

	buf := make([]byte, 0, 39)
	for i := 0; i < len(groups); {
		if zeroLen > 0 && i == zeroStart {
			buf = append(buf, ':', ':')
			i += zeroLen
			continue
		}
		if i > 0 && !(zeroLen > 0 && i == zeroStart+zeroLen) {
			buf = append(buf, ':')
		}
		buf = strconv.AppendUint(buf, uint64(groups[i]), 16)
		i++
	}
	return string(buf)
}

// longestZeroRun returns the start and length of the first longest run of
// zero groups. Runs shorter than two groups are not compressed (length 0).
func longestZeroRun(groups [8]uint16) (start, length int) {
	start = -1
	for i := 0; i < len(groups); {
		if groups[i] != 0 {
			i++
			continue
		}
		j := i
		for j < len(groups) && groups[j] == 0 {
			j++
		}
		if j-i > length {
			start, length = i, j-i
		}
		i = j
	}
	if length < 2 {
		return -1, 0
	}
	return start, length
}
