package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tsawler/regiontext/normalize"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Normalize text from stdin",
	Long:  `Apply the region text normalization to stdin and write the result to stdout.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), normalize.Normalize(string(data)))
		return err
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
}
