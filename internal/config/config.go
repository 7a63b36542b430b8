// Package config handles configuration loading using viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"firestige.xyz/sniffer/internal/core"
)

// Config is the effective sniffer configuration.
// Maps to the `sniffer:` root key in YAML.
type Config struct {
	Capture CaptureConfig `mapstructure:"capture" yaml:"capture"`
	Filter  FilterConfig  `mapstructure:"filter" yaml:"filter"`
	Decoder DecoderConfig `mapstructure:"decoder" yaml:"decoder"`
	Report  ReportConfig  `mapstructure:"report" yaml:"report"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// ─── Capture ───

// CaptureConfig selects the frame source and how many frames to print.
type CaptureConfig struct {
	Interface   string        `mapstructure:"interface" yaml:"interface"`
	File        string        `mapstructure:"file" yaml:"file"` // pcap file to replay instead of a live interface
	Engine      string        `mapstructure:"engine" yaml:"engine"` // pcap | afpacket
	SnapLen     int           `mapstructure:"snaplen" yaml:"snaplen"`
	Promiscuous bool          `mapstructure:"promiscuous" yaml:"promiscuous"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"-"`
	BufferMB    int           `mapstructure:"buffer_mb" yaml:"buffer_mb"` // afpacket ring size
	Count       int           `mapstructure:"count" yaml:"count"`         // 0 = unlimited
}

// MarshalYAML renders Timeout in duration notation ("1s") instead of nanoseconds.
func (c CaptureConfig) MarshalYAML() (any, error) {
	type plain CaptureConfig
	var n yaml.Node
	if err := n.Encode(plain(c)); err != nil {
		return nil, err
	}
	n.Content = append(n.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: "timeout"},
		&yaml.Node{Kind: yaml.ScalarNode, Value: c.Timeout.String()},
	)
	return &n, nil
}

// ─── Filter ───

// FilterConfig selects which frames the kernel filter passes.
// With no protocol enabled every supported protocol is captured.
type FilterConfig struct {
	Port int  `mapstructure:"port" yaml:"port"` // -1 = any
	TCP  bool `mapstructure:"tcp" yaml:"tcp"`
	UDP  bool `mapstructure:"udp" yaml:"udp"`
	ARP  bool `mapstructure:"arp" yaml:"arp"`
	ICMP bool `mapstructure:"icmp" yaml:"icmp"`
}

// ─── Decoder ───

// DecoderConfig controls protocol dispatch.
type DecoderConfig struct {
	// Disabled lists protocols (arp, ipv4, ipv6, icmp, tcp, udp) the decoder
	// stops at. Accepts a YAML list or a comma separated string.
	Disabled []string `mapstructure:"disabled" yaml:"disabled"`
}

// Kinds resolves Disabled to layer kinds.
func (c DecoderConfig) Kinds() ([]core.LayerKind, error) {
	kinds := make([]core.LayerKind, 0, len(c.Disabled))
	for _, name := range c.Disabled {
		k, ok := core.ParseLayerKind(strings.TrimSpace(name))
		if !ok || k == core.LayerEthernet {
			return nil, fmt.Errorf("%w: decoder.disabled %q (must be arp/ipv4/ipv6/icmp/tcp/udp)", core.ErrInvalidArgument, name)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// ─── Report ───

// ReportConfig controls report rendering.
type ReportConfig struct {
	Timezone string `mapstructure:"timezone" yaml:"timezone"` // Local, UTC or an IANA name
}

// Location resolves Timezone. An empty value means the host's local zone.
func (c ReportConfig) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local", "local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: report.timezone %q: %w", core.ErrInvalidArgument, c.Timezone, err)
	}
	return loc, nil
}

// ─── Log ───

// LogConfig contains logging settings.
type LogConfig struct {
	Level   string        `mapstructure:"level" yaml:"level"`   // trace / debug / info / warn / error
	Format  string        `mapstructure:"format" yaml:"format"` // text / json
	Pattern string        `mapstructure:"pattern" yaml:"pattern"`
	Time    string        `mapstructure:"time" yaml:"time"` // time layout for the text pattern
	File    FileLogConfig `mapstructure:"file" yaml:"file"`
}

// FileLogConfig configures a rotating log file written next to stderr.
type FileLogConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	Path       string `mapstructure:"path" yaml:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// ─── Metrics ───

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Listen  string `mapstructure:"listen" yaml:"listen"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// ─── Loading ───

const rootKey = "sniffer"

// configRoot is the top-level wrapper matching the YAML structure `sniffer: ...`.
type configRoot struct {
	Sniffer Config `mapstructure:"sniffer" yaml:"sniffer"`
}

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"interface": "capture.interface",
	"read":      "capture.file",
	"engine":    "capture.engine",
	"count":     "capture.count",
	"port":      "filter.port",
	"tcp":       "filter.tcp",
	"udp":       "filter.udp",
	"arp":       "filter.arp",
	"icmp":      "filter.icmp",
	"timezone":  "report.timezone",
	"log-level": "log.level",
}

// Load builds the configuration from defaults, an optional YAML file, the
// environment and finally the command line flags that were set.
//
// The file uses `sniffer:` as root key; environment variables use the
// SNIFFER_ prefix (e.g. SNIFFER_CAPTURE_INTERFACE).
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: failed to read config file: %w", core.ErrInvalidArgument, err)
		}
	}

	// The `sniffer.` key prefix maps to `SNIFFER_` through the key replacer.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(rootKey+"."+key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var root configRoot
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&root, hook); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal config: %w", core.ErrInvalidArgument, err)
	}
	cfg := root.Sniffer

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets default values for configuration.
// All keys use the "sniffer." prefix to match the YAML root wrapper.
func setDefaults(v *viper.Viper) {
	d := func(key string, value any) { v.SetDefault(rootKey+"."+key, value) }

	// Capture defaults
	d("capture.interface", "")
	d("capture.file", "")
	d("capture.engine", "pcap")
	d("capture.snaplen", 8192)
	d("capture.promiscuous", true)
	d("capture.timeout", "1s")
	d("capture.buffer_mb", 8)
	d("capture.count", 1)

	// Filter defaults
	d("filter.port", -1)
	d("filter.tcp", false)
	d("filter.udp", false)
	d("filter.arp", false)
	d("filter.icmp", false)

	// Decoder defaults
	d("decoder.disabled", []string{})

	// Report defaults
	d("report.timezone", "Local")

	// Log defaults
	d("log.level", "info")
	d("log.format", "text")
	d("log.pattern", "%time [%level] %field %msg\n")
	d("log.time", "2006-01-02 15:04:05.000")
	d("log.file.enabled", false)
	d("log.file.path", "/var/log/sniffer/sniffer.log")
	d("log.file.max_size_mb", 100)
	d("log.file.max_age_days", 30)
	d("log.file.max_backups", 5)
	d("log.file.compress", true)

	// Metrics defaults
	d("metrics.enabled", false)
	d("metrics.listen", ":9091")
	d("metrics.path", "/metrics")
}

// ValidateAndApplyDefaults validates configuration and applies runtime defaults.
// Every failure wraps core.ErrInvalidArgument.
func (cfg *Config) ValidateAndApplyDefaults() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", core.ErrInvalidArgument, fmt.Sprintf(format, args...))
	}

	// ── Capture ──
	c := &cfg.Capture
	if c.Interface != "" && c.File != "" {
		return invalid("capture.interface and capture.file are mutually exclusive")
	}
	if c.Engine == "" {
		c.Engine = "pcap"
	}
	if c.Engine != "pcap" && c.Engine != "afpacket" {
		return invalid("capture.engine %q (must be pcap/afpacket)", c.Engine)
	}
	if c.SnapLen <= 0 {
		return invalid("capture.snaplen must be positive, got %d", c.SnapLen)
	}
	if c.Timeout <= 0 {
		c.Timeout = time.Second
	}
	if c.BufferMB <= 0 {
		c.BufferMB = 8
	}
	if c.Count < 0 {
		c.Count = 0
	}

	// ── Filter ──
	if p := cfg.Filter.Port; p != -1 && (p < 0 || p > 65535) {
		return invalid("filter.port %d out of range 0..65535", p)
	}

	// ── Decoder ──
	if _, err := cfg.Decoder.Kinds(); err != nil {
		return err
	}

	// ── Report ──
	if _, err := cfg.Report.Location(); err != nil {
		return err
	}

	// ── Log ──
	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Log.Level] {
		return invalid("log.level %q (must be trace/debug/info/warn/error)", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "text" {
		return invalid("log.format %q (must be json/text)", cfg.Log.Format)
	}
	if cfg.Log.File.Enabled && cfg.Log.File.Path == "" {
		return invalid("log.file.path is required when log.file.enabled=true")
	}

	// ── Metrics ──
	if cfg.Metrics.Enabled && cfg.Metrics.Listen == "" {
		return invalid("metrics.listen is required when metrics.enabled=true")
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	return nil
}

// YAML renders the configuration under the `sniffer:` root key.
func (cfg *Config) YAML() ([]byte, error) {
	return yaml.Marshal(configRoot{Sniffer: *cfg})
}
