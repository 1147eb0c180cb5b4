package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/formflow-go/formflow/pkg/builder"
)

var flowCmd = &cobra.Command{
	Use:   "flow",
	Short: "Manage stored flow definitions",
}

var flowLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all stored flows",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		ids, err := app.ListFlows(cmd.Context())
		if err != nil {
			return err
		}

		if len(ids) == 0 {
			fmt.Println("No flows found. Seed one with 'formflow flow init'.")
			return nil
		}
		fmt.Println("Flows:")
		for _, id := range ids {
			fmt.Println("- " + id)
		}
		return nil
	},
}

var flowInitCmd = &cobra.Command{
	Use:   "init [flow-id]",
	Short: "Seed the starter template flow",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		id := "onboarding"
		if len(args) == 1 {
			id = args[0]
		}
		if err := app.SaveFlow(cmd.Context(), id, builder.Template()); err != nil {
			return err
		}
		fmt.Printf("Created flow '%s'\n", id)
		return nil
	},
}

var flowImportCmd = &cobra.Command{
	Use:   "import <flow-id> <file>",
	Short: "Import a flow from an editor JSON document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		doc, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		if err := app.ImportFlow(cmd.Context(), args[0], doc); err != nil {
			return err
		}
		fmt.Printf("Imported flow '%s'\n", args[0])
		return nil
	},
}

var flowExportCmd = &cobra.Command{
	Use:   "export <flow-id>",
	Short: "Export a flow as an editor JSON document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		doc, err := app.ExportFlow(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(string(doc))
		return nil
	},
}

var flowRmCmd = &cobra.Command{
	Use:   "rm <flow-id>...",
	Short: "Remove one or more flows",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		for _, id := range args {
			if err := app.DeleteFlow(cmd.Context(), id); err != nil {
				return fmt.Errorf("removing '%s': %w", id, err)
			}
			fmt.Printf("Removed flow '%s'\n", id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(flowCmd)
	flowCmd.AddCommand(flowLsCmd)
	flowCmd.AddCommand(flowInitCmd)
	flowCmd.AddCommand(flowImportCmd)
	flowCmd.AddCommand(flowExportCmd)
	flowCmd.AddCommand(flowRmCmd)
}
