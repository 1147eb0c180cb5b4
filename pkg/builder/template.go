package builder

import "github.com/formflow-go/formflow/pkg/domain"

// Template returns the starter flow new forms begin from: a welcome
// section with a department picker and two follow-up sections the
// department can branch into.
func Template() *domain.Flow {
	return &domain.Flow{
		Title: "LogicFlow Builder",
		Sections: []domain.Section{
			{
				ID:    "sec_1",
				Title: "Welcome & Basic Info",
				Fields: []domain.Field{
					{ID: "f_1", Type: domain.FieldText, Label: "What is your name?", Required: true},
					{ID: "f_2", Type: domain.FieldSelect, Label: "Select your department", Options: []string{"Sales", "Engineering", "Support"}},
				},
			},
			{
				ID:    "sec_2",
				Title: "Engineering Details",
				Fields: []domain.Field{
					{ID: "f_3", Type: domain.FieldRadio, Label: "Primary Language", Options: []string{"TypeScript", "Python", "Rust"}},
				},
			},
			{
				ID:    "sec_3",
				Title: "Sales Targets",
				Fields: []domain.Field{
					{ID: "f_4", Type: domain.FieldText, Label: "Monthly Target ($)"},
				},
			},
		},
	}
}
