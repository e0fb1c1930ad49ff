package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "seedctl",
	Short: "Seedctl provisions sample databases and application config files.",
	Long:  `Seedctl provisions sample databases and application config files.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
