package domain

// FieldType enumerates the input widgets a form field can render as.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldLongText FieldType = "long_text"
	FieldSelect   FieldType = "select"
	FieldRadio    FieldType = "radio"
	FieldCheckbox FieldType = "checkbox"
	FieldRating   FieldType = "rating"
	FieldDate     FieldType = "date"
	FieldTime     FieldType = "time"
)

// Field is a single question inside a section. IDs are globally unique
// across the form; condition rules reference fields by ID.
type Field struct {
	ID          string    `json:"id" yaml:"id" mapstructure:"id"`
	Type        FieldType `json:"type" yaml:"type" mapstructure:"type"`
	Label       string    `json:"label" yaml:"label" mapstructure:"label"`
	Options     []string  `json:"options,omitempty" yaml:"options,omitempty" mapstructure:"options"`
	Required    bool      `json:"required,omitempty" yaml:"required,omitempty" mapstructure:"required"`
	RatingScale int       `json:"ratingScale,omitempty" yaml:"ratingScale,omitempty" mapstructure:"ratingScale"`
}

// Multi reports whether the field collects an ordered list of values
// rather than a single scalar.
func (f Field) Multi() bool {
	return f.Type == FieldCheckbox
}
