// Package survey defines the canonical in-memory questionnaire schema.
// A Model is built once by the parser, optionally adjusted by Normalize,
// and never mutated by the serializers.
package survey

import "fmt"

// QuestionType classifies how a question is answered.
type QuestionType string

const (
	SingleChoice QuestionType = "single-choice"
	MultiChoice  QuestionType = "multi-choice"
	OpenText     QuestionType = "open-text"
	Rating       QuestionType = "rating"
	Matrix       QuestionType = "matrix"
	Unknown      QuestionType = "unknown"
)

// Constraint names used in Question.Constraints.
const (
	ConstraintMin           = "min"
	ConstraintMax           = "max"
	ConstraintMaxLength     = "max_length"
	ConstraintMaxSelections = "max_selections"
)

// Model is the root survey entity.
//
// Serialization convention, applied uniformly: absent optional fields are
// omitted, never emitted as null.
type Model struct {
	Title    string    `json:"title,omitempty"`
	Sections []Section `json:"sections"`
}

// Section partitions the document top-down. A document with no detected
// section markers yields a single implicit section.
type Section struct {
	ID        string     `json:"id"`
	Title     string     `json:"title,omitempty"`
	Questions []Question `json:"questions"`
}

// Question is a single survey item.
type Question struct {
	ID          string         `json:"id"`
	Text        string         `json:"text"`
	Type        QuestionType   `json:"type"`
	Logic       string         `json:"logic,omitempty"` // routing line, e.g. "ASK ALL"
	Required    bool           `json:"required"`
	Options     []Option       `json:"options,omitempty"`
	Constraints map[string]int `json:"constraints,omitempty"`
}

// Option is one answer choice.
type Option struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Value     string `json:"value,omitempty"` // coded value, distinct from the label
	Exclusive bool   `json:"exclusive,omitempty"`
}

// QuestionCount returns the total number of questions across sections.
func (m *Model) QuestionCount() int {
	n := 0
	for _, s := range m.Sections {
		n += len(s.Questions)
	}
	return n
}

// Clone returns a deep copy of the model.
func (m *Model) Clone() *Model {
	out := &Model{Title: m.Title}
	out.Sections = make([]Section, len(m.Sections))
	for i, s := range m.Sections {
		cs := Section{ID: s.ID, Title: s.Title}
		cs.Questions = make([]Question, len(s.Questions))
		for j, q := range s.Questions {
			cq := q
			cq.Options = append([]Option(nil), q.Options...)
			if q.Constraints != nil {
				cq.Constraints = make(map[string]int, len(q.Constraints))
				for k, v := range q.Constraints {
					cq.Constraints[k] = v
				}
			}
			cs.Questions[j] = cq
		}
		out.Sections[i] = cs
	}
	return out
}

// Normalize enforces the model invariants on a copy of m and returns it
// together with warnings for every adjustment:
//
//   - a non-open-text question with no options becomes open-text
//   - an open-text question that accumulated options becomes single-choice
//   - choice questions keep no numeric constraints except max_selections
//     on multi-choice
//   - duplicate question ids (and option ids within a question) are
//     disambiguated with positional suffixes
//
// The input model is never modified.
func Normalize(m *Model) (*Model, []string) {
	out := m.Clone()
	var warnings []string

	seenQ := make(map[string]bool)
	for si := range out.Sections {
		sec := &out.Sections[si]
		for qi := range sec.Questions {
			q := &sec.Questions[qi]

			if q.Type != OpenText && len(q.Options) == 0 {
				warnings = append(warnings,
					fmt.Sprintf("question %s has no detected options, treating as open-text", q.ID))
				q.Type = OpenText
			} else if q.Type == OpenText && len(q.Options) > 0 {
				warnings = append(warnings,
					fmt.Sprintf("question %s has options under an open-text marker, treating as single-choice", q.ID))
				q.Type = SingleChoice
			}

			switch q.Type {
			case SingleChoice, Rating, Matrix:
				q.Constraints = nil
			case MultiChoice:
				if n, ok := q.Constraints[ConstraintMaxSelections]; ok {
					q.Constraints = map[string]int{ConstraintMaxSelections: n}
				} else {
					q.Constraints = nil
				}
			}

			if seenQ[q.ID] {
				old := q.ID
				for n := qi + 1; seenQ[q.ID]; n++ {
					q.ID = fmt.Sprintf("%s_%d", old, n)
				}
				warnings = append(warnings,
					fmt.Sprintf("duplicate question id %s renamed to %s", old, q.ID))
			}
			seenQ[q.ID] = true

			seenO := make(map[string]bool, len(q.Options))
			for oi := range q.Options {
				o := &q.Options[oi]
				if seenO[o.ID] {
					old := o.ID
					for n := oi + 1; seenO[o.ID]; n++ {
						o.ID = fmt.Sprintf("%s_%d", old, n)
					}
					warnings = append(warnings,
						fmt.Sprintf("duplicate option id %s in question %s renamed to %s", old, q.ID, o.ID))
				}
				seenO[o.ID] = true
			}
		}
	}

	return out, warnings
}
