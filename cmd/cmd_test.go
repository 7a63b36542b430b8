package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/sniffer/internal/config"
	"firestige.xyz/sniffer/internal/core"
	"firestige.xyz/sniffer/internal/source"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{fmt.Errorf("%w: bad port", core.ErrInvalidArgument), ExitInvalidArgument},
		{fmt.Errorf("%w: open eth9: no such device", core.ErrCapture), ExitCaptureError},
		{fmt.Errorf("%w: wlan0", core.ErrLinkType), ExitCaptureError},
		{fmt.Errorf("%w: %w", core.ErrRenderFailure, syscall.EPIPE), ExitInternalError},
		{errors.New("unexpected"), ExitInternalError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExitCode(tt.err), "%v", tt.err)
	}
}

func TestRunInterfaces(t *testing.T) {
	list := func() ([]source.Interface, error) {
		return []source.Interface{
			{Name: "eth0", Description: "uplink", Addresses: []string{"10.0.0.1", "fe80::1"}},
			{Name: "lo"},
		}, nil
	}

	var buf bytes.Buffer
	require.NoError(t, runInterfaces(&buf, list))
	assert.Equal(t,
		"available interfaces:\n  eth0 (uplink) 10.0.0.1, fe80::1\n  lo\n",
		buf.String())
}

func TestRunInterfacesEmptyAndError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runInterfaces(&buf, func() ([]source.Interface, error) { return nil, nil }))
	assert.Equal(t, "no capture interfaces found\n", buf.String())

	err := runInterfaces(&buf, func() ([]source.Interface, error) {
		return nil, fmt.Errorf("%w: permission denied", core.ErrCapture)
	})
	assert.Equal(t, ExitCaptureError, ExitCode(err))
}

func loadWithFlags(t *testing.T, args ...string) *config.Config {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringP("interface", "i", "", "")
	fs.StringP("read", "r", "", "")
	fs.IntP("count", "n", 1, "")
	fs.String("timezone", "Local", "")
	addFilterFlags(fs)
	require.NoError(t, fs.Parse(args))

	cfg, err := config.Load("", fs)
	require.NoError(t, err)
	return cfg
}

func TestRunFilter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runFilter(&buf, loadWithFlags(t, "-t", "-p", "80"), false))
	assert.Equal(t, "len < 0 or tcp port 80 \n", buf.String())

	buf.Reset()
	require.NoError(t, runFilter(&buf, loadWithFlags(t, "--arp"), true))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Greater(t, len(lines), 2)
	assert.Equal(t, "len < 0 or arp ", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "(000) "), lines[1])
}

func TestRunConfig(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runConfig(&buf, loadWithFlags(t, "-i", "eth3", "-u")))
	assert.Contains(t, buf.String(), "interface: eth3")
	assert.Contains(t, buf.String(), "udp: true")
}

func writeCapture(t *testing.T, frames ...[]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frames.pcap")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := pcapgo.NewWriter(f)
	require.NoError(t, w.WriteFileHeader(65536, layers.LinkTypeEthernet))
	for i, data := range frames {
		ci := gopacket.CaptureInfo{
			Timestamp:     time.Unix(1700000000+int64(i), 123000000),
			CaptureLength: len(data),
			Length:        len(data),
		}
		require.NoError(t, w.WritePacket(ci, data))
	}
	return path
}

func serialize(t *testing.T, ls ...gopacket.SerializableLayer) []byte {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	require.NoError(t, gopacket.SerializeLayers(buf, gopacket.SerializeOptions{FixLengths: true}, ls...))
	return buf.Bytes()
}

func TestRunCaptureFromFile(t *testing.T) {
	src := net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	dst := net.HardwareAddr{0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb}

	udp := serialize(t,
		&layers.Ethernet{SrcMAC: src, DstMAC: dst, EthernetType: layers.EthernetTypeIPv4},
		&layers.IPv4{Version: 4, TTL: 64, Protocol: layers.IPProtocolUDP, SrcIP: net.IP{10, 0, 0, 1}, DstIP: net.IP{10, 0, 0, 2}},
		&layers.UDP{SrcPort: 5000, DstPort: 53},
	)
	tcp := serialize(t,
		&layers.Ethernet{SrcMAC: src, DstMAC: dst, EthernetType: layers.EthernetTypeIPv4},
		&layers.IPv4{Version: 4, TTL: 32, Protocol: layers.IPProtocolTCP, SrcIP: net.IP{10, 0, 0, 3}, DstIP: net.IP{10, 0, 0, 4}},
		&layers.TCP{SrcPort: 40000, DstPort: 443, DataOffset: 5},
	)
	path := writeCapture(t, udp, tcp, udp)

	t.Run("all frames", func(t *testing.T) {
		cfg := loadWithFlags(t, "-r", path, "-n", "0", "--timezone", "UTC")
		var out bytes.Buffer
		require.NoError(t, runCapture(context.Background(), cfg, &out))

		text := out.String()
		assert.Equal(t, 3, strings.Count(text, "L2 protocol: ETHERNET"))
		assert.Equal(t, 2, strings.Count(text, "L4 protocol: UDP"))
		assert.Contains(t, text, "timestamp: 2023-11-14T22:13:21.123+00:00")
		assert.Contains(t, text, "dst port: 443")
	})

	t.Run("filtered and counted", func(t *testing.T) {
		cfg := loadWithFlags(t, "-r", path, "-u", "-n", "1", "--timezone", "UTC")
		var out bytes.Buffer
		require.NoError(t, runCapture(context.Background(), cfg, &out))

		text := out.String()
		assert.Equal(t, 1, strings.Count(text, "L2 protocol: ETHERNET"))
		assert.NotContains(t, text, "L4 protocol: TCP")
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := loadWithFlags(t, "-r", filepath.Join(t.TempDir(), "none.pcap"))
		err := runCapture(context.Background(), cfg, &bytes.Buffer{})
		assert.Equal(t, ExitCaptureError, ExitCode(err))
	})
}

func TestExecuteRejectsBadInput(t *testing.T) {
	tests := [][]string{
		{"--no-such-flag"},
		{"filter", "-p", "70000"},
		{"stray-argument"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			rootCmd.SetArgs(args)
			rootCmd.SetOut(&bytes.Buffer{})
			rootCmd.SetErr(&bytes.Buffer{})
			err := Execute(context.Background())
			assert.Equal(t, ExitInvalidArgument, ExitCode(err), "%v", err)
		})
	}
}
