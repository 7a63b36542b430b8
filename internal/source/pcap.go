package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"golang.org/x/net/bpf"

	"firestige.xyz/sniffer/internal/core"
	"firestige.xyz/sniffer/internal/filter"
)

type pcapSource struct {
	handle  *pcap.Handle
	program *filter.Program // user-space filter for offline replay, nil when live
}

func openPcapLive(cfg LiveConfig) (Source, error) {
	handle, err := pcap.OpenLive(cfg.Interface, int32(cfg.SnapLen), cfg.Promiscuous, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", core.ErrCapture, cfg.Interface, err)
	}

	if lt := handle.LinkType(); lt != layers.LinkTypeEthernet {
		handle.Close()
		return nil, fmt.Errorf("%w: %s has link type %v, only Ethernet is supported",
			core.ErrLinkType, cfg.Interface, lt)
	}

	if cfg.Filter != "" {
		if err := handle.SetBPFFilter(cfg.Filter); err != nil {
			handle.Close()
			return nil, fmt.Errorf("%w: set filter %q: %w", core.ErrCapture, cfg.Filter, err)
		}
	}

	return &pcapSource{handle: handle}, nil
}

// OpenFile replays a pcap file. The filter, if any, is compiled once and run
// on every record in user space, so replays select the same frames a live
// capture with the same expression would.
func OpenFile(cfg FileConfig) (Source, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: no capture file given", core.ErrInvalidArgument)
	}
	if cfg.SnapLen <= 0 {
		cfg.SnapLen = DefaultSnapLen
	}

	handle, err := pcap.OpenOffline(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", core.ErrCapture, cfg.Path, err)
	}

	if lt := handle.LinkType(); lt != layers.LinkTypeEthernet {
		handle.Close()
		return nil, fmt.Errorf("%w: %s has link type %v, only Ethernet is supported",
			core.ErrLinkType, cfg.Path, lt)
	}

	s := &pcapSource{handle: handle}
	if cfg.Filter != "" {
		raw, err := CompileFilter(cfg.Filter, cfg.SnapLen)
		if err != nil {
			handle.Close()
			return nil, err
		}
		if s.program, err = filter.NewProgram(raw); err != nil {
			handle.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *pcapSource) Next(ctx context.Context) (core.RawFrame, error) {
	for {
		if err := ctx.Err(); err != nil {
			return core.RawFrame{}, err
		}

		data, ci, err := s.handle.ReadPacketData()
		switch {
		case err == nil:
		case errors.Is(err, pcap.NextErrorTimeoutExpired):
			continue
		case errors.Is(err, io.EOF):
			return core.RawFrame{}, io.EOF
		default:
			return core.RawFrame{}, fmt.Errorf("%w: read: %w", core.ErrCapture, err)
		}

		if !s.program.Match(data) {
			continue
		}
		return frameFromCapture(data, ci), nil
	}
}

func (s *pcapSource) Close() error {
	if s.handle != nil {
		s.handle.Close()
		s.handle = nil
	}
	return nil
}

// CompileFilter compiles a pcap filter expression for Ethernet frames into
// classic BPF instructions.
func CompileFilter(expr string, snapLen int) ([]bpf.RawInstruction, error) {
	pcapBPF, err := pcap.CompileBPFFilter(layers.LinkTypeEthernet, snapLen, expr)
	if err != nil {
		return nil, fmt.Errorf("%w: compile filter %q: %w", core.ErrInvalidArgument, expr, err)
	}

	raw := make([]bpf.RawInstruction, len(pcapBPF))
	for i, ins := range pcapBPF {
		raw[i] = bpf.RawInstruction{Op: ins.Code, Jt: ins.Jt, Jf: ins.Jf, K: ins.K}
	}
	return raw, nil
}

// Interface describes a capture device.
type Interface struct {
	Name        string
	Description string
	Addresses   []string
}

// Interfaces lists the devices libpcap can capture on.
func Interfaces() ([]Interface, error) {
	devs, err := pcap.FindAllDevs()
	if err != nil {
		return nil, fmt.Errorf("%w: list interfaces: %w", core.ErrCapture, err)
	}

	out := make([]Interface, 0, len(devs))
	for _, d := range devs {
		iface := Interface{Name: d.Name, Description: d.Description}
		for _, a := range d.Addresses {
			iface.Addresses = append(iface.Addresses, a.IP.String())
		}
		out = append(out, iface)
	}
	return out, nil
}
