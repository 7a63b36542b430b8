package source

import "fmt"

const (
	tpacketAlignment = 16  // TPACKET_ALIGNMENT
	tpacketHdrLen    = 52  // TPACKET3 header, rounded
	minBlockBytes    = 128 << 10
)

// ringLayout sizes an AF_PACKET TPACKET_V3 ring of about bufferMB megabytes.
//
// Frames hold one snapLen capture plus header, aligned to 16 bytes. A frame
// is then widened to a power of two no larger than a page, or to a whole
// number of pages, so that a block can be a multiple of both the frame size
// and the page size.
func ringLayout(bufferMB, snapLen, pageSize int) (frameSize, blockSize, numBlocks int, err error) {
	if bufferMB <= 0 {
		return 0, 0, 0, fmt.Errorf("buffer size must be positive, got %d MB", bufferMB)
	}
	if snapLen <= 0 {
		return 0, 0, 0, fmt.Errorf("snap length must be positive, got %d", snapLen)
	}
	if pageSize <= 0 || pageSize%tpacketAlignment != 0 {
		return 0, 0, 0, fmt.Errorf("page size must be a positive multiple of %d, got %d", tpacketAlignment, pageSize)
	}

	frameSize = alignUp(tpacketHdrLen+snapLen, tpacketAlignment)
	if frameSize <= pageSize {
		p := tpacketAlignment
		for p < frameSize {
			p <<= 1
		}
		frameSize = p
	} else {
		frameSize = alignUp(frameSize, pageSize)
	}

	blockSize = alignUp(minBlockBytes, max(frameSize, pageSize))
	numBlocks = max(1, bufferMB<<20/blockSize)
	return frameSize, blockSize, numBlocks, nil
}

func alignUp(n, align int) int {
	return (n + align - 1) / align * align
}
