// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"firestige.xyz/sniffer/internal/config"
	"firestige.xyz/sniffer/internal/core"
	"firestige.xyz/sniffer/internal/log"
)

// Process exit codes.
const (
	ExitOK              = 0
	ExitInvalidArgument = 1
	ExitCaptureError    = 2
	ExitInternalError   = 3
)

var (
	// Global flags
	configFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sniffer",
	Short: "Print a decoded report for every captured Ethernet frame",
	Long: `sniffer captures Ethernet frames from a network interface or a pcap file,
decodes the Ethernet, ARP, IPv4, IPv6, ICMP, TCP and UDP headers, and prints a
text report with a hex dump for each frame.

Without -i or -r the available capture interfaces are listed.

Examples:
  sniffer -i eth0 -n 10
  sniffer -i eth0 -u -p 53 -n 0
  sniffer -r capture.pcap --arp`,
	Version:       "0.1.0",
	Args:          noArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		if cfg.Capture.Interface == "" && cfg.Capture.File == "" {
			return runInterfaces(cmd.OutOrStdout(), listInterfaces)
		}
		return runCapture(cmd.Context(), cfg, cmd.OutOrStdout())
	},
}

// Execute runs the root command. Cancelling ctx stops a running capture
// after the current frame.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// ExitCode maps an error returned by Execute to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, core.ErrInvalidArgument):
		return ExitInvalidArgument
	case errors.Is(err, core.ErrCapture), errors.Is(err, core.ErrLinkType):
		return ExitCaptureError
	default:
		return ExitInternalError
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace/debug/info/warn/error)")

	f := rootCmd.Flags()
	f.StringP("interface", "i", "", "capture on this interface")
	f.StringP("read", "r", "", "replay frames from a pcap file")
	f.String("engine", "pcap", "live capture engine (pcap/afpacket)")
	f.IntP("count", "n", 1, "number of frames to report, 0 for unlimited")
	f.String("timezone", "Local", "time zone for report timestamps")
	addFilterFlags(f)

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", core.ErrInvalidArgument, err)
	})

	rootCmd.AddCommand(interfacesCmd)
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(configCmd)
}

// addFilterFlags declares the protocol and port selectors.
func addFilterFlags(f *pflag.FlagSet) {
	f.IntP("port", "p", -1, "only frames to or from this port")
	f.BoolP("tcp", "t", false, "capture TCP")
	f.BoolP("udp", "u", false, "capture UDP")
	f.Bool("arp", false, "capture ARP")
	f.Bool("icmp", false, "capture ICMP and ICMPv6")
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: unexpected argument %q for %s", core.ErrInvalidArgument, args[0], cmd.CommandPath())
	}
	return nil
}

// loadConfig loads configuration for a command and initializes logging.
func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, err
	}
	if err := log.Init(cfg.Log); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidArgument, err)
	}
	return cfg, nil
}
