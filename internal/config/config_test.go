package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"firestige.xyz/sniffer/internal/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sniffer.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func testFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("sniffer", pflag.ContinueOnError)
	fs.StringP("interface", "i", "", "")
	fs.StringP("read", "r", "", "")
	fs.IntP("port", "p", -1, "")
	fs.BoolP("tcp", "t", false, "")
	fs.BoolP("udp", "u", false, "")
	fs.Bool("arp", false, "")
	fs.Bool("icmp", false, "")
	fs.IntP("count", "n", 1, "")
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Failed to parse flags: %v", err)
	}
	return fs
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Capture.Engine != "pcap" {
		t.Errorf("Expected default engine pcap, got %s", cfg.Capture.Engine)
	}
	if cfg.Capture.SnapLen != 8192 {
		t.Errorf("Expected default snaplen 8192, got %d", cfg.Capture.SnapLen)
	}
	if !cfg.Capture.Promiscuous {
		t.Error("Expected promiscuous capture by default")
	}
	if cfg.Capture.Timeout != time.Second {
		t.Errorf("Expected default timeout 1s, got %v", cfg.Capture.Timeout)
	}
	if cfg.Capture.Count != 1 {
		t.Errorf("Expected default count 1, got %d", cfg.Capture.Count)
	}
	if cfg.Filter.Port != -1 {
		t.Errorf("Expected default port -1, got %d", cfg.Filter.Port)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("Expected default log info/text, got %s/%s", cfg.Log.Level, cfg.Log.Format)
	}
	if cfg.Metrics.Enabled {
		t.Error("Expected metrics disabled by default")
	}
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
sniffer:
  capture:
    interface: "eth1"
    engine: "afpacket"
    timeout: "250ms"
    buffer_mb: 32
    count: 0
  filter:
    port: 53
    udp: true
  report:
    timezone: "UTC"
  log:
    level: "debug"
    format: "json"
  metrics:
    enabled: true
    listen: "127.0.0.1:9100"
`)

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Capture.Interface != "eth1" {
		t.Errorf("Expected interface eth1, got %s", cfg.Capture.Interface)
	}
	if cfg.Capture.Engine != "afpacket" {
		t.Errorf("Expected engine afpacket, got %s", cfg.Capture.Engine)
	}
	if cfg.Capture.Timeout != 250*time.Millisecond {
		t.Errorf("Expected timeout 250ms, got %v", cfg.Capture.Timeout)
	}
	if cfg.Capture.BufferMB != 32 {
		t.Errorf("Expected buffer 32MB, got %d", cfg.Capture.BufferMB)
	}
	if cfg.Capture.Count != 0 {
		t.Errorf("Expected unlimited count, got %d", cfg.Capture.Count)
	}
	if cfg.Filter.Port != 53 || !cfg.Filter.UDP || cfg.Filter.TCP {
		t.Errorf("Unexpected filter %+v", cfg.Filter)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Expected log debug/json, got %s/%s", cfg.Log.Level, cfg.Log.Format)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Listen != "127.0.0.1:9100" || cfg.Metrics.Path != "/metrics" {
		t.Errorf("Unexpected metrics %+v", cfg.Metrics)
	}

	loc, err := cfg.Report.Location()
	if err != nil || loc != time.UTC {
		t.Errorf("Expected UTC location, got %v (%v)", loc, err)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `
sniffer:
  log:
    level: "info"
`)
	t.Setenv("SNIFFER_LOG_LEVEL", "debug")
	t.Setenv("SNIFFER_CAPTURE_COUNT", "7")

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Expected log level debug from env var, got %s", cfg.Log.Level)
	}
	if cfg.Capture.Count != 7 {
		t.Errorf("Expected count 7 from env var, got %d", cfg.Capture.Count)
	}
}

func TestLoadDecoderDisabled(t *testing.T) {
	path := writeConfig(t, `
sniffer:
  decoder:
    disabled: ["tcp", "ICMP"]
`)
	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	kinds, err := cfg.Decoder.Kinds()
	if err != nil {
		t.Fatalf("Kinds failed: %v", err)
	}
	if len(kinds) != 2 || kinds[0] != core.LayerTCP || kinds[1] != core.LayerICMP {
		t.Errorf("Unexpected kinds %v", kinds)
	}

	t.Setenv("SNIFFER_DECODER_DISABLED", "udp,arp")
	cfg, err = Load("", nil)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if len(cfg.Decoder.Disabled) != 2 || cfg.Decoder.Disabled[0] != "udp" {
		t.Errorf("Expected comma separated env list, got %v", cfg.Decoder.Disabled)
	}
}

func TestLoadFlagOverride(t *testing.T) {
	path := writeConfig(t, `
sniffer:
  capture:
    interface: "eth0"
    count: 5
  filter:
    udp: true
`)
	t.Setenv("SNIFFER_CAPTURE_INTERFACE", "eth2")

	fs := testFlags(t, "-i", "eth1", "--tcp", "-p", "443")
	cfg, err := Load(path, fs)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Capture.Interface != "eth1" {
		t.Errorf("Expected flag to win over env and file, got %s", cfg.Capture.Interface)
	}
	if cfg.Capture.Count != 5 {
		t.Errorf("Expected unset flag to keep file value 5, got %d", cfg.Capture.Count)
	}
	if !cfg.Filter.TCP || !cfg.Filter.UDP || cfg.Filter.Port != 443 {
		t.Errorf("Unexpected filter %+v", cfg.Filter)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"log level", "sniffer:\n  log:\n    level: \"verbose\"\n"},
		{"log format", "sniffer:\n  log:\n    format: \"xml\"\n"},
		{"engine", "sniffer:\n  capture:\n    engine: \"dpdk\"\n"},
		{"port", "sniffer:\n  filter:\n    port: 70000\n"},
		{"snaplen", "sniffer:\n  capture:\n    snaplen: 0\n"},
		{"decoder protocol", "sniffer:\n  decoder:\n    disabled: [\"sctp\"]\n"},
		{"timezone", "sniffer:\n  report:\n    timezone: \"Mars/Olympus\"\n"},
		{"interface and file", "sniffer:\n  capture:\n    interface: \"eth0\"\n    file: \"a.pcap\"\n"},
		{"log file without path", "sniffer:\n  log:\n    file:\n      enabled: true\n      path: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content), nil)
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if !errors.Is(err, core.ErrInvalidArgument) {
				t.Errorf("Expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"), nil)
	if !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

func TestConfigYAML(t *testing.T) {
	cfg, err := Load("", testFlags(t, "-i", "eth0", "-n", "0"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	out, err := cfg.YAML()
	if err != nil {
		t.Fatalf("YAML failed: %v", err)
	}
	text := string(out)

	for _, want := range []string{"sniffer:", "interface: eth0", "timeout: 1s", "count: 0", "port: -1"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in output:\n%s", want, text)
		}
	}

	// The rendered document must load back to the same settings.
	var root struct {
		Sniffer struct {
			Capture struct {
				Interface string `yaml:"interface"`
				Timeout   string `yaml:"timeout"`
			} `yaml:"capture"`
		} `yaml:"sniffer"`
	}
	if err := yaml.Unmarshal(out, &root); err != nil {
		t.Fatalf("Rendered YAML does not parse: %v", err)
	}
	if root.Sniffer.Capture.Interface != "eth0" || root.Sniffer.Capture.Timeout != "1s" {
		t.Errorf("Unexpected capture section %+v", root.Sniffer.Capture)
	}
}
