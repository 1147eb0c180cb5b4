package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/formflow-go/formflow/pkg/domain"
)

func TestSectionMarkdown(t *testing.T) {
	section := domain.Section{
		ID:    "sec_1",
		Title: "Basics",
		Fields: []domain.Field{
			{ID: "f_1", Type: domain.FieldText, Label: "Name", Required: true},
			{ID: "f_2", Type: domain.FieldCheckbox, Label: "Teams", Options: []string{"Sales", "Eng"}},
		},
	}
	state := domain.NewState("sess-1", "flow-1", "sec_1")
	state.Answers.Set("f_1", domain.ScalarValue("Ada"))
	state.Answers.Set("f_2", domain.ListValue("Eng"))

	out := SectionMarkdown(section, state)
	assert.Contains(t, out, "# Basics")
	assert.Contains(t, out, "Name *")
	assert.Contains(t, out, "> Ada")
	assert.Contains(t, out, "- [x] Eng")
	assert.Contains(t, out, "- Sales")
}

func TestOutcomeMarkdown(t *testing.T) {
	out := OutcomeMarkdown(domain.EndOfForm("Default"))
	assert.Contains(t, out, "End of form (Default)")
}
