package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingLayout(t *testing.T) {
	tests := []struct {
		name      string
		bufferMB  int
		snapLen   int
		pageSize  int
		frameSize int
		blockSize int
		numBlocks int
	}{
		{"default snap length", 8, 8192, 4096, 12288, 135168, 62},
		{"small snap length", 1, 100, 4096, 256, 131072, 8},
		{"jumbo snap length", 1, 65535, 4096, 69632, 139264, 7},
		{"large pages", 4, 1500, 65536, 2048, 131072, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, block, n, err := ringLayout(tt.bufferMB, tt.snapLen, tt.pageSize)
			require.NoError(t, err)

			assert.Equal(t, tt.frameSize, frame)
			assert.Equal(t, tt.blockSize, block)
			assert.Equal(t, tt.numBlocks, n)

			assert.GreaterOrEqual(t, frame, tt.snapLen+tpacketHdrLen)
			assert.Zero(t, block%frame, "block must hold whole frames")
			assert.Zero(t, block%tt.pageSize, "block must be page aligned")
		})
	}
}

func TestRingLayoutInvalid(t *testing.T) {
	_, _, _, err := ringLayout(0, 8192, 4096)
	assert.Error(t, err)

	_, _, _, err = ringLayout(8, 0, 4096)
	assert.Error(t, err)

	_, _, _, err = ringLayout(8, 8192, 1000)
	assert.Error(t, err)
}
