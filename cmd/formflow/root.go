package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "formflow",
	Short: "FormFlow is a multi-step form engine with a branching logic graph",
	Long:  `FormFlow builds, inspects, and simulates multi-step forms whose navigation is driven by a graph of condition, operator, and action nodes.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".formflow", "Directory where flows and sessions are stored")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("store", "file", "Storage backend: file, memory, or redis")
	rootCmd.PersistentFlags().String("redis-addr", "localhost:6379", "Redis address (only for --store redis)")
}
