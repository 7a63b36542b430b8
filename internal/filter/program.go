package filter

import (
	"fmt"

	"golang.org/x/net/bpf"

	"firestige.xyz/sniffer/internal/core"
)

// Program runs a compiled classic BPF filter against frames in user space.
// A nil *Program matches every frame.
type Program struct {
	vm  *bpf.VM
	raw []bpf.RawInstruction
}

// NewProgram loads raw instructions, as produced by a BPF compiler, into a VM.
func NewProgram(raw []bpf.RawInstruction) (*Program, error) {
	insns, ok := bpf.Disassemble(raw)
	if !ok {
		return nil, fmt.Errorf("%w: filter program has undecodable instructions", core.ErrInvalidArgument)
	}
	vm, err := bpf.NewVM(insns)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidArgument, err)
	}
	return &Program{vm: vm, raw: raw}, nil
}

// Match reports whether the filter accepts frame.
func (p *Program) Match(frame []byte) bool {
	if p == nil {
		return true
	}
	n, err := p.vm.Run(frame)
	return err == nil && n > 0
}

// Instructions returns the program as loaded.
func (p *Program) Instructions() []bpf.RawInstruction {
	if p == nil {
		return nil
	}
	return p.raw
}

// Disassemble renders the program one instruction per line.
func (p *Program) Disassemble() []string {
	insns, _ := bpf.Disassemble(p.Instructions())
	out := make([]string, 0, len(insns))
	for i, ins := range insns {
		out = append(out, fmt.Sprintf("(%03d) %v", i, ins))
	}
	return out
}
