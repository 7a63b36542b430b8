package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/sniffer/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Print the configuration that results from defaults, the config file,
SNIFFER_* environment variables and flags.`,
	Args: noArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		return runConfig(cmd.OutOrStdout(), cfg)
	},
}

func runConfig(out io.Writer, cfg *config.Config) error {
	data, err := cfg.YAML()
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
