package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/formflow-go/formflow"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of formflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("formflow version %s\n", formflow.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
