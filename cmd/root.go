package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Hybrid question answering over document collections",
	Long: `Docqa ingests documents into per-document vector indexes and a
metadata catalog, then answers questions with a hybrid engine: a query
router sends metadata questions to deterministic SQL answers and
content questions through grounded retrieval, extraction and
synthesis.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".docqa.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
