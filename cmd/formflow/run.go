package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/formflow-go/formflow"
	"github.com/formflow-go/formflow/internal/presentation/tui"
	"github.com/formflow-go/formflow/internal/runtime"
	"github.com/formflow-go/formflow/pkg/domain"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <flow-id>",
	Short: "Walk a flow interactively in the terminal",
	Long:  `Starts a preview session over a stored flow and walks it section by section, prompting for answers and resolving the logic graph on each step.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		quiet, _ := cmd.Flags().GetBool("quiet")
		sessionID, _ := cmd.Flags().GetString("session")
		input, _ := cmd.Flags().GetString("input")

		if !quiet {
			tui.PrintBanner("v" + formflow.Version)
		}

		ctx := cmd.Context()

		flowID := "livePreviewFlow"
		if len(args) == 1 {
			flowID = args[0]
		}
		if input != "" {
			flow, err := decodeFlowFile(input)
			if err != nil {
				return err
			}
			if err := app.SaveFlow(ctx, flowID, flow); err != nil {
				return err
			}
		}

		var sess *runtime.Session
		if sessionID != "" {
			sess, err = app.Resume(ctx, sessionID)
		} else {
			sess, err = app.Open(ctx, flowID)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Session: %s\n\n", sess.ID())

		render := tui.NewRenderer()
		reader := bufio.NewReader(os.Stdin)

		for !sess.IsTerminal() {
			section, ok := sess.CurrentSection()
			if !ok {
				break
			}

			out, err := render(tui.SectionMarkdown(section, sess.State()))
			if err != nil {
				return err
			}
			fmt.Print(out)

			if done := promptSection(reader, sess, section); done {
				fmt.Println("Session saved. Resume with --session " + sess.ID())
				return app.Save(ctx, sess)
			}

			sess.Advance(ctx)
			if err := app.Save(ctx, sess); err != nil {
				return err
			}
		}

		if outcome := sess.Outcome(); outcome != nil {
			out, err := render(tui.OutcomeMarkdown(*outcome))
			if err != nil {
				return err
			}
			fmt.Print(out)
		}
		return nil
	},
}

// promptSection collects answers for every field. It reports true when
// the respondent wants to quit.
func promptSection(reader *bufio.Reader, sess *runtime.Session, section domain.Section) bool {
	for _, field := range section.Fields {
		fmt.Printf("%s> ", field.Label)
		text, err := reader.ReadString('\n')
		if err != nil {
			return true
		}
		text = strings.TrimSpace(text)

		if text == "exit" || text == "quit" {
			return true
		}
		if text == "" {
			continue
		}

		var value domain.Value
		if field.Multi() {
			items := strings.Split(text, ",")
			for i := range items {
				items[i] = strings.TrimSpace(items[i])
			}
			value = domain.ListValue(items...)
		} else {
			value = domain.ScalarValue(text)
		}

		if err := sess.SetAnswer(field.ID, value); err != nil {
			fmt.Printf("Could not record answer: %v\n", err)
		}
	}
	return false
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("session", "", "Resume a persisted session instead of starting fresh")
	runCmd.Flags().StringP("input", "i", "", "Load the flow from an editor document file before running")
	runCmd.Flags().BoolP("quiet", "q", false, "Skip the startup banner")
}
