package cmd

import (
	"context"
	"io"

	"firestige.xyz/sniffer/internal/config"
	"firestige.xyz/sniffer/internal/core/decoder"
	"firestige.xyz/sniffer/internal/filter"
	"firestige.xyz/sniffer/internal/log"
	"firestige.xyz/sniffer/internal/metrics"
	"firestige.xyz/sniffer/internal/report"
	"firestige.xyz/sniffer/internal/sink/console"
	"firestige.xyz/sniffer/internal/sniffer"
	"firestige.xyz/sniffer/internal/source"
)

func filterOptions(cfg config.FilterConfig) filter.Options {
	return filter.Options{
		Port: cfg.Port,
		TCP:  cfg.TCP,
		UDP:  cfg.UDP,
		ARP:  cfg.ARP,
		ICMP: cfg.ICMP,
	}
}

func openSource(cfg config.CaptureConfig, expr string) (source.Source, error) {
	if cfg.File != "" {
		return source.OpenFile(source.FileConfig{
			Path:    cfg.File,
			Filter:  expr,
			SnapLen: cfg.SnapLen,
		})
	}
	return source.OpenLive(source.LiveConfig{
		Interface:   cfg.Interface,
		Engine:      cfg.Engine,
		SnapLen:     cfg.SnapLen,
		Promiscuous: cfg.Promiscuous,
		Timeout:     cfg.Timeout,
		BufferMB:    cfg.BufferMB,
		Filter:      expr,
	})
}

// runCapture reports frames from the configured source to out.
func runCapture(ctx context.Context, cfg *config.Config, out io.Writer) error {
	logger := log.GetLogger()

	opts := filterOptions(cfg.Filter)
	if err := opts.Validate(); err != nil {
		return err
	}
	expr := filter.Expression(opts)

	loc, err := cfg.Report.Location()
	if err != nil {
		return err
	}

	disabled, err := cfg.Decoder.Kinds()
	if err != nil {
		return err
	}

	src, err := openSource(cfg.Capture, expr)
	if err != nil {
		return err
	}
	defer src.Close()

	if cfg.Metrics.Enabled {
		srv := metrics.NewServer(cfg.Metrics.Listen, cfg.Metrics.Path)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer srv.Stop(context.Background())
	}

	sink := console.NewSink(out)
	defer sink.Close()

	sn, err := sniffer.New(sniffer.Config{
		Source:   src,
		Decoder:  decoder.NewStandardDecoder(decoder.Config{Disabled: disabled}),
		Renderer: report.NewReporter(report.Options{Location: loc}),
		Sink:     sink,
		Count:    cfg.Capture.Count,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	logger.WithFields(map[string]interface{}{
		"interface": cfg.Capture.Interface,
		"file":      cfg.Capture.File,
		"engine":    cfg.Capture.Engine,
		"filter":    expr,
		"count":     cfg.Capture.Count,
	}).Debug("capture started")

	err = sn.Run(ctx)

	logger.WithFields(map[string]interface{}{
		"frames":     sn.Reported(),
		"suppressed": sn.Suppressed(),
	}).Debug("capture finished")
	return err
}
