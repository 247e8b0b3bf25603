// Package cli handles the command-line interface logic
// using the Cobra library.
package cli

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	ConfigFile string
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "csvbatch",
		Short: "csvbatch - download a people CSV and load it into SQL",
		Long: `csvbatch runs two batch jobs: downloadCsvFileJob copies a CSV file from a URL
(http, https, file or s3) to a local path, and loadCsvToDatabaseJob loads that
file into the people table in chunks, skipping professors.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "Path to config file (yaml, json or toml)")

	rootCmd.AddCommand(
		NewDownloadCmd(opts),
		NewLoadCmd(opts),
		NewRunCmd(opts),
		NewHistoryCmd(opts),
	)

	return rootCmd
}
