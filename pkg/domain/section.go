package domain

// Section is one page of the form. It doubles as a node in the logic
// graph: the section node shares the section's ID.
type Section struct {
	ID     string  `json:"id" yaml:"id" mapstructure:"id"`
	Title  string  `json:"title" yaml:"title" mapstructure:"title"`
	Fields []Field `json:"fields" yaml:"fields" mapstructure:"fields"`
}

// FieldByID returns the field with the given ID, if present.
func (s Section) FieldByID(id string) (Field, bool) {
	for _, f := range s.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}
