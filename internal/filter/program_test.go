package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/bpf"
)

// arpOnly accepts frames whose EtherType is 0x0806.
func arpOnly(t *testing.T) []bpf.RawInstruction {
	t.Helper()
	raw, err := bpf.Assemble([]bpf.Instruction{
		bpf.LoadAbsolute{Off: 12, Size: 2},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: 0x0806, SkipFalse: 1},
		bpf.RetConstant{Val: 262144},
		bpf.RetConstant{Val: 0},
	})
	require.NoError(t, err)
	return raw
}

func frame(etherType uint16) []byte {
	f := make([]byte, 42)
	f[12], f[13] = byte(etherType>>8), byte(etherType)
	return f
}

func TestProgramMatch(t *testing.T) {
	p, err := NewProgram(arpOnly(t))
	require.NoError(t, err)

	assert.True(t, p.Match(frame(0x0806)))
	assert.False(t, p.Match(frame(0x0800)))
	// Loads past the end of the frame reject instead of failing.
	assert.False(t, p.Match([]byte{0x00, 0x01}))
}

func TestNilProgramMatchesEverything(t *testing.T) {
	var p *Program
	assert.True(t, p.Match(nil))
	assert.True(t, p.Match(frame(0x86DD)))
	assert.Empty(t, p.Instructions())
}

func TestProgramDisassemble(t *testing.T) {
	p, err := NewProgram(arpOnly(t))
	require.NoError(t, err)

	lines := p.Disassemble()
	require.Len(t, lines, 4)
	assert.Equal(t, "(000) ldh [12]", lines[0])
	assert.Len(t, p.Instructions(), 4)
}

func TestNewProgramRejectsInvalid(t *testing.T) {
	// A program that can fall off the end is rejected by the VM.
	raw, err := bpf.Assemble([]bpf.Instruction{bpf.LoadAbsolute{Off: 12, Size: 2}})
	require.NoError(t, err)

	_, err = NewProgram(raw)
	assert.Error(t, err)
}
