package main

import (
	"github.com/spf13/cobra"
	"github.com/username/gstfolio/src/logger"
)

var (
	bankName    string
	mappingPath string
	dbPath      string
	outPath     string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "gstfolio-cli",
	Short: "Prepare NZ GST returns from bank statement exports",
	Long: `gstfolio-cli reads CSV exports from New Zealand banks, classifies every
transaction against the chart of accounts and prints the GST return, the
transaction report or the balanced journal.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.InitLoggerWithWriter(logLevel, cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&bankName, "bank", "ANZ", "Bank the CSV files were exported from")
	rootCmd.PersistentFlags().StringVar(&mappingPath, "mapping", "", "JSON file of learned payee to category mappings")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", ":memory:", "Settings database; a file path keeps the chart of accounts between runs")
	rootCmd.PersistentFlags().StringVarP(&outPath, "out", "o", "", "Write output to this file instead of stdout")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "error", "Log level (debug, info, warn, error)")
}
