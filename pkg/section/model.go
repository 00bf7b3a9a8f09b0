package section

// Model is an ordered sequence of sections. Mutation happens on the
// sections themselves.
type Model interface {
	Sections() []*Section
}

// StaticModel is a Model with a fixed list of sections.
type StaticModel struct {
	sections []*Section
}

// NewModel returns a model over sections.
func NewModel(sections ...*Section) *StaticModel {
	return &StaticModel{sections: sections}
}

// Sections returns the sections in display order.
func (m *StaticModel) Sections() []*Section {
	return m.sections
}

// Offset returns the index of s within m, or -1.
func Offset(m Model, s *Section) int {
	for i, candidate := range m.Sections() {
		if candidate == s {
			return i
		}
	}
	return -1
}
