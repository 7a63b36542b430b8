// Package sniffer drives the capture loop: read a frame, decode it, render
// the report and hand it to the sink, one frame at a time.
package sniffer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"firestige.xyz/sniffer/internal/core"
	"firestige.xyz/sniffer/internal/core/decoder"
	"firestige.xyz/sniffer/internal/log"
	"firestige.xyz/sniffer/internal/metrics"
	"firestige.xyz/sniffer/internal/source"
)

// Renderer turns a decoded frame into report text.
type Renderer interface {
	Render(frame core.DecodedFrame) string
}

// Sink receives finished reports.
type Sink interface {
	Send(report string) error
}

// Config wires the collaborators of a Sniffer.
type Config struct {
	Source   source.Source
	Decoder  decoder.Decoder
	Renderer Renderer
	Sink     Sink
	Count    int        // Frames to report; <= 0 runs until the source ends
	Logger   log.Logger // Defaults to log.GetLogger()
	Anomaly  AnomalyLimiterConfig
}

// Sniffer reports captured frames. It keeps no state between frames apart
// from counters.
type Sniffer struct {
	src      source.Source
	dec      decoder.Decoder
	render   Renderer
	sink     Sink
	count    int
	logger   log.Logger
	limiter  *AnomalyLimiter
	reported int
	now      func() time.Time
}

// New validates cfg and builds a Sniffer.
func New(cfg Config) (*Sniffer, error) {
	if cfg.Source == nil || cfg.Decoder == nil || cfg.Renderer == nil || cfg.Sink == nil {
		return nil, fmt.Errorf("%w: sniffer needs a source, decoder, renderer and sink", core.ErrInvalidArgument)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.GetLogger()
	}
	if cfg.Anomaly.MaxPerWindow == 0 {
		cfg.Anomaly.MaxPerWindow = 5
	}
	return &Sniffer{
		src:     cfg.Source,
		dec:     cfg.Decoder,
		render:  cfg.Renderer,
		sink:    cfg.Sink,
		count:   cfg.Count,
		logger:  logger,
		limiter: NewAnomalyLimiter(cfg.Anomaly),
		now:     time.Now,
	}, nil
}

// Run reports frames until Count is reached, the source is exhausted or ctx
// is cancelled. Cancellation is checked between frames, so the frame in
// flight is always reported in full; it is not an error.
//
// A sink failure stops the loop and is returned wrapped in
// core.ErrRenderFailure. Source failures are returned wrapped in
// core.ErrCapture.
func (s *Sniffer) Run(ctx context.Context) error {
	for s.count <= 0 || s.reported < s.count {
		if ctx.Err() != nil {
			return nil
		}

		raw, err := s.src.Next(ctx)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			s.logger.WithField("frames", s.reported).Debug("capture source exhausted")
			return nil
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, core.ErrCapture):
			return err
		default:
			return fmt.Errorf("%w: %w", core.ErrCapture, err)
		}

		if err := s.handle(raw); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sniffer) handle(raw core.RawFrame) error {
	start := s.now()
	frame := s.dec.Decode(raw)
	text := s.render.Render(frame)
	metrics.ObserveFrame(frame, s.now().Sub(start))

	if frame.Err != nil {
		s.warnAnomaly(frame, s.reported+1)
	}

	if err := s.sink.Send(text); err != nil {
		metrics.SinkErrorsTotal.Inc()
		if !errors.Is(err, core.ErrRenderFailure) {
			err = fmt.Errorf("%w: %w", core.ErrRenderFailure, err)
		}
		return err
	}
	s.reported++
	return nil
}

func (s *Sniffer) warnAnomaly(frame core.DecodedFrame, seq int) {
	reason := "frame"
	var me *core.MalformedError
	if errors.As(frame.Err, &me) {
		reason = me.Layer.String()
	}

	if !s.limiter.Allow(reason, s.now()) {
		return
	}
	s.logger.WithFields(map[string]interface{}{
		"frame":  seq,
		"layer":  reason,
		"caplen": frame.Raw.CaptureLen,
	}).WithError(frame.Err).Warn("malformed frame")
}

// Reported returns how many frames have been reported so far.
func (s *Sniffer) Reported() int {
	return s.reported
}

// Suppressed returns how many malformed-frame warnings were throttled.
func (s *Sniffer) Suppressed() int64 {
	return s.limiter.Suppressed()
}
