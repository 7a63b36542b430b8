package format

import (
	"fmt"
	"io"
	"strings"
)

const (
	bytesPerLine = 16
	halfLine     = bytesPerLine / 2
)

// HexDump renders data 16 bytes per line:
//
//	0x0000 45 00 00 3c 1c 46 40 00  40 06 b1 e6 ac 10 00 01 E..<.F@. @.......
//
// The offset is uppercase, bytes are lowercase and both the hex and ASCII
// columns get one extra space after the 8th byte. A short last line is padded
// so its ASCII column lines up with the lines above. Bytes 33..126 print as
// themselves, everything else as '.'. Empty input yields no lines.
func HexDump(data []byte) []string {
	lines := make([]string, 0, (len(data)+bytesPerLine-1)/bytesPerLine)
	for start := 0; start < len(data); start += bytesPerLine {
		end := min(start+bytesPerLine, len(data))
		lines = append(lines, hexDumpLine(start, data[start:end]))
	}
	return lines
}

// WriteHexDump writes the HexDump lines of data to w, each ending in '\n'.
func WriteHexDump(w io.Writer, data []byte) error {
	for _, line := range HexDump(data) {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func hexDumpLine(offset int, chunk []byte) string {
	var b strings.Builder
	b.Grow(7 + bytesPerLine*3 + 1 + bytesPerLine + 1)

	fmt.Fprintf(&b, "0x%04X ", offset)

	for i, c := range chunk {
		fmt.Fprintf(&b, "%02x ", c)
		if i == halfLine-1 {
			b.WriteByte(' ')
		}
	}

	// Pad missing columns; the mid-line gap was not written if the chunk
	// ended before the 8th byte.
	if missing := bytesPerLine - len(chunk); missing > 0 {
		b.WriteString(strings.Repeat("   ", missing))
		if len(chunk) < halfLine {
			b.WriteByte(' ')
		}
	}

	for i, c := range chunk {
		if IsPrintable(c) {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
		if i == halfLine-1 {
			b.WriteByte(' ')
		}
	}

	return b.String()
}

// IsPrintable reports whether c is a visible ASCII character (33..126).
func IsPrintable(c byte) bool {
	return c >= 33 && c <= 126
}
