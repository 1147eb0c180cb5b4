package domain

// Flow is the complete persisted unit: the form's sections plus the logic
// graph layered on top of them. Edge and rule order is significant and is
// preserved exactly as stored.
type Flow struct {
	Title    string    `json:"title,omitempty" yaml:"title,omitempty"`
	Sections []Section `json:"sections" yaml:"sections"`
	Nodes    []Node    `json:"nodes" yaml:"nodes"`
	Edges    []Edge    `json:"edges" yaml:"edges"`
}

// NodeByID returns a pointer into the flow's node list, or nil.
func (f *Flow) NodeByID(id string) *Node {
	for i := range f.Nodes {
		if f.Nodes[i].ID == id {
			return &f.Nodes[i]
		}
	}
	return nil
}

// SectionByID returns the section with the given ID, if present.
func (f *Flow) SectionByID(id string) (Section, bool) {
	for _, s := range f.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// SectionIndex returns the positional index of a section, or -1.
func (f *Flow) SectionIndex(id string) int {
	for i, s := range f.Sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// StartSectionID is the first section in positional order, where every
// run begins. Empty if the form has no sections.
func (f *Flow) StartSectionID() string {
	if len(f.Sections) == 0 {
		return ""
	}
	return f.Sections[0].ID
}

// EdgesFrom returns the outgoing edges of a node in stored order.
func (f *Flow) EdgesFrom(source string) []Edge {
	var out []Edge
	for _, e := range f.Edges {
		if e.Source == source {
			out = append(out, e)
		}
	}
	return out
}

// EdgeFromHandle returns the first stored edge leaving source on the
// named handle.
func (f *Flow) EdgeFromHandle(source, handle string) (Edge, bool) {
	for _, e := range f.Edges {
		if e.Source == source && e.SourceHandle == handle {
			return e, true
		}
	}
	return Edge{}, false
}

// EdgesInto returns the incoming edges of a node in stored order.
func (f *Flow) EdgesInto(target string) []Edge {
	var out []Edge
	for _, e := range f.Edges {
		if e.Target == target {
			out = append(out, e)
		}
	}
	return out
}

// FieldByID searches every section for the field with the given ID.
func (f *Flow) FieldByID(id string) (Field, bool) {
	for _, s := range f.Sections {
		if fld, ok := s.FieldByID(id); ok {
			return fld, true
		}
	}
	return Field{}, false
}
