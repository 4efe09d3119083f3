package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:               "assetsplitter",
		Short:             "Divide shared assets between two parties",
		Long:              `Record shared assets, decide how each is split between two parties, and produce totals, JSON exports and PDF reports.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.loadConfig,
	}
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "assetsplitter.yaml", "Path to the YAML config file")

	rootCmd.AddCommand(
		newInitCmd(a),
		newShowCmd(a),
		newAddCmd(a),
		newSetCmd(a),
		newRmCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newReportCmd(a),
		newQueryCmd(a),
		newResetCmd(a),
		newServeCmd(a),
	)
	return rootCmd
}
