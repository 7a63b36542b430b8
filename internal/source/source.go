// Package source provides the capture collaborators that feed raw frames to
// the decoder: live capture through libpcap or AF_PACKET, and pcap file replay.
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/google/gopacket"

	"firestige.xyz/sniffer/internal/core"
)

// Source yields captured frames one at a time.
//
// Next blocks until a frame is available, the context is done or the capture
// ends. It returns io.EOF when an offline capture is exhausted and ctx.Err()
// when the context is cancelled. The returned frame's Data stays valid until
// the next call.
type Source interface {
	Next(ctx context.Context) (core.RawFrame, error)
	Close() error
}

// Capture engines.
const (
	EnginePcap     = "pcap"
	EngineAFPacket = "afpacket"
)

const (
	DefaultSnapLen  = 8192 // BUFSIZ
	DefaultTimeout  = time.Second
	DefaultBufferMB = 8
)

// LiveConfig configures capture from a network interface.
type LiveConfig struct {
	Interface   string
	Engine      string        // EnginePcap (default) or EngineAFPacket
	SnapLen     int           // Bytes captured per frame
	Promiscuous bool          // pcap engine only
	Timeout     time.Duration // Read timeout; cancellation is checked between reads
	BufferMB    int           // AF_PACKET ring size
	Filter      string        // pcap filter expression, empty for none
}

func (c LiveConfig) withDefaults() LiveConfig {
	if c.Engine == "" {
		c.Engine = EnginePcap
	}
	if c.SnapLen <= 0 {
		c.SnapLen = DefaultSnapLen
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.BufferMB <= 0 {
		c.BufferMB = DefaultBufferMB
	}
	return c
}

// FileConfig configures replay of a pcap file.
type FileConfig struct {
	Path    string
	Filter  string // pcap filter expression applied in user space
	SnapLen int    // Snap length used to compile Filter
}

// OpenLive opens a live capture on cfg.Interface with the selected engine.
func OpenLive(cfg LiveConfig) (Source, error) {
	cfg = cfg.withDefaults()
	if cfg.Interface == "" {
		return nil, fmt.Errorf("%w: no interface given", core.ErrInvalidArgument)
	}

	switch cfg.Engine {
	case EnginePcap:
		return openPcapLive(cfg)
	case EngineAFPacket:
		return openAFPacket(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown capture engine %q", core.ErrInvalidArgument, cfg.Engine)
	}
}

// frameFromCapture converts a gopacket capture record into a RawFrame.
func frameFromCapture(data []byte, ci gopacket.CaptureInfo) core.RawFrame {
	captureLen := ci.CaptureLength
	if captureLen <= 0 || captureLen > len(data) {
		captureLen = len(data)
	}
	wireLen := ci.Length
	if wireLen < captureLen {
		wireLen = captureLen
	}
	return core.RawFrame{
		Data:       data,
		CaptureLen: captureLen,
		WireLen:    wireLen,
		Seconds:    ci.Timestamp.Unix(),
		Micros:     int64(ci.Timestamp.Nanosecond() / 1000),
	}
}
