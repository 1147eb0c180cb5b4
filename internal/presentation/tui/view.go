package tui

import (
	"fmt"
	"strings"

	"github.com/formflow-go/formflow/pkg/domain"
)

// SectionMarkdown renders a section as markdown for the interactive
// simulator. Answers already recorded in the state are shown inline.
func SectionMarkdown(section domain.Section, state *domain.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", section.Title)

	for i, field := range section.Fields {
		label := field.Label
		if field.Required {
			label += " *"
		}
		fmt.Fprintf(&b, "**%d. %s** `%s`\n\n", i+1, label, field.Type)

		if len(field.Options) > 0 {
			for _, opt := range field.Options {
				marker := "-"
				if state != nil && answerHas(state, field.ID, opt) {
					marker = "- [x]"
				}
				fmt.Fprintf(&b, "%s %s\n", marker, opt)
			}
			b.WriteString("\n")
		} else if state != nil {
			if v, ok := state.Answers.Get(field.ID); ok && !v.IsList {
				fmt.Fprintf(&b, "> %s\n\n", v.Scalar)
			}
		}
	}
	return b.String()
}

// OutcomeMarkdown renders a terminal outcome.
func OutcomeMarkdown(outcome domain.Outcome) string {
	return fmt.Sprintf("---\n\n## %s\n", outcome.String())
}

func answerHas(state *domain.State, fieldID, option string) bool {
	v, ok := state.Answers.Get(fieldID)
	if !ok {
		return false
	}
	if v.IsList {
		for _, item := range v.List {
			if item == option {
				return true
			}
		}
		return false
	}
	return v.Scalar == option
}
