package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/sniffer/internal/config"
	"firestige.xyz/sniffer/internal/filter"
	"firestige.xyz/sniffer/internal/source"
)

var filterCompile bool

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Print the capture filter built from the protocol flags",
	Long: `Print the pcap filter expression the protocol and port flags select.
With --compile the classic BPF program is printed as well.

Examples:
  sniffer filter -t -p 80
  sniffer filter --arp --icmp --compile`,
	Args: noArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		return runFilter(cmd.OutOrStdout(), cfg, filterCompile)
	},
}

func init() {
	addFilterFlags(filterCmd.Flags())
	filterCmd.Flags().BoolVar(&filterCompile, "compile", false, "print the compiled BPF program")
}

func runFilter(out io.Writer, cfg *config.Config, compile bool) error {
	opts := filterOptions(cfg.Filter)
	if err := opts.Validate(); err != nil {
		return err
	}
	expr := filter.Expression(opts)
	fmt.Fprintln(out, expr)
	if !compile {
		return nil
	}

	raw, err := source.CompileFilter(expr, cfg.Capture.SnapLen)
	if err != nil {
		return err
	}
	prog, err := filter.NewProgram(raw)
	if err != nil {
		return err
	}
	for _, line := range prog.Disassemble() {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}
