//go:build linux

package source

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/google/gopacket/afpacket"

	"firestige.xyz/sniffer/internal/core"
)

// afpacketSource captures through a memory-mapped AF_PACKET ring.
// It does not switch the interface into promiscuous mode.
type afpacketSource struct {
	tp *afpacket.TPacket
}

func openAFPacket(cfg LiveConfig) (Source, error) {
	iface, err := net.InterfaceByName(cfg.Interface)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrCapture, cfg.Interface, err)
	}
	if len(iface.HardwareAddr) != 6 {
		return nil, fmt.Errorf("%w: %s is not an Ethernet interface", core.ErrLinkType, cfg.Interface)
	}

	frameSize, blockSize, numBlocks, err := ringLayout(cfg.BufferMB, cfg.SnapLen, os.Getpagesize())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidArgument, err)
	}

	tp, err := afpacket.NewTPacket(
		afpacket.OptInterface(cfg.Interface),
		afpacket.OptFrameSize(frameSize),
		afpacket.OptBlockSize(blockSize),
		afpacket.OptNumBlocks(numBlocks),
		afpacket.OptPollTimeout(cfg.Timeout),
		afpacket.SocketRaw,
		afpacket.TPacketVersion3,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", core.ErrCapture, cfg.Interface, err)
	}

	if cfg.Filter != "" {
		raw, err := CompileFilter(cfg.Filter, frameSize)
		if err != nil {
			tp.Close()
			return nil, err
		}
		if err := tp.SetBPF(raw); err != nil {
			tp.Close()
			return nil, fmt.Errorf("%w: attach filter: %w", core.ErrCapture, err)
		}
	}

	return &afpacketSource{tp: tp}, nil
}

func (s *afpacketSource) Next(ctx context.Context) (core.RawFrame, error) {
	for {
		if err := ctx.Err(); err != nil {
			return core.RawFrame{}, err
		}

		data, ci, err := s.tp.ReadPacketData()
		switch {
		case err == nil:
			return frameFromCapture(data, ci), nil
		case errors.Is(err, afpacket.ErrTimeout):
			continue
		default:
			return core.RawFrame{}, fmt.Errorf("%w: read: %w", core.ErrCapture, err)
		}
	}
}

func (s *afpacketSource) Close() error {
	if s.tp != nil {
		s.tp.Close()
		s.tp = nil
	}
	return nil
}
