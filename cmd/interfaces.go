package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"firestige.xyz/sniffer/internal/source"
)

var listInterfaces = source.Interfaces

var interfacesCmd = &cobra.Command{
	Use:   "interfaces",
	Short: "List capture interfaces",
	Args:  noArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadConfig(cmd.Flags()); err != nil {
			return err
		}
		return runInterfaces(cmd.OutOrStdout(), listInterfaces)
	},
}

func runInterfaces(out io.Writer, list func() ([]source.Interface, error)) error {
	ifaces, err := list()
	if err != nil {
		return err
	}
	if len(ifaces) == 0 {
		_, err := fmt.Fprintln(out, "no capture interfaces found")
		return err
	}

	fmt.Fprintln(out, "available interfaces:")
	for _, iface := range ifaces {
		line := "  " + iface.Name
		if iface.Description != "" {
			line += " (" + iface.Description + ")"
		}
		if len(iface.Addresses) > 0 {
			line += " " + strings.Join(iface.Addresses, ", ")
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}
