package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/formflow-go/formflow/internal/validator"
	"github.com/formflow-go/formflow/pkg/domain"
)

var validateCmd = &cobra.Command{
	Use:   "validate <flow-id>",
	Short: "Check a flow's logic graph for consistency",
	Long:  `Inspects a stored flow and reports dangling edges, stale rule handles, and unreachable nodes.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")

		flow, err := loadFlowArg(cmd, args, input)
		if err != nil {
			return err
		}

		if err := validator.ValidateFlow(flow); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Println("Graph is valid! ✅")
		return nil
	},
}

// loadFlowArg resolves a flow either from an editor document file or
// from the store by ID.
func loadFlowArg(cmd *cobra.Command, args []string, input string) (*domain.Flow, error) {
	switch {
	case input != "":
		return decodeFlowFile(input)
	case len(args) == 1:
		app, err := newApp(cmd)
		if err != nil {
			return nil, err
		}
		return app.LoadFlow(cmd.Context(), args[0])
	default:
		return nil, fmt.Errorf("a flow ID or --input file is required")
	}
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringP("input", "i", "", "Read the flow from an editor document file instead of the store")
}
