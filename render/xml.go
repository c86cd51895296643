package render

import (
	"encoding/xml"
	"fmt"
	"sort"

	"github.com/docsurvey/docsurvey/survey"
)

// The XML schema is fixed: ids, types and flags are attributes; free text
// is element content. This keeps output deterministic and diffable.
type xmlSurvey struct {
	XMLName  xml.Name     `xml:"survey"`
	Title    string       `xml:"title,attr,omitempty"`
	Sections []xmlSection `xml:"section"`
}

type xmlSection struct {
	ID        string        `xml:"id,attr"`
	Title     string        `xml:"title,attr,omitempty"`
	Questions []xmlQuestion `xml:"question"`
}

type xmlQuestion struct {
	ID          string          `xml:"id,attr"`
	Type        string          `xml:"type,attr"`
	Required    bool            `xml:"required,attr"`
	Logic       string          `xml:"logic,attr,omitempty"`
	Text        string          `xml:"text"`
	Constraints []xmlConstraint `xml:"constraint"`
	Options     []xmlOption     `xml:"option"`
}

type xmlConstraint struct {
	Name  string `xml:"name,attr"`
	Value int    `xml:"value,attr"`
}

type xmlOption struct {
	ID        string `xml:"id,attr"`
	Value     string `xml:"value,attr,omitempty"`
	Exclusive bool   `xml:"exclusive,attr,omitempty"`
	Label     string `xml:",chardata"`
}

// XML encodes the model against the fixed survey schema, two-space
// indented with the standard XML header. Output is byte-identical for
// semantically identical models: constraints are emitted in sorted name
// order since their map carries no order of its own.
func XML(m *survey.Model) ([]byte, error) {
	doc := xmlSurvey{Title: m.Title}
	for _, s := range m.Sections {
		xs := xmlSection{ID: s.ID, Title: s.Title}
		for _, q := range s.Questions {
			xq := xmlQuestion{
				ID:       q.ID,
				Type:     string(q.Type),
				Required: q.Required,
				Logic:    q.Logic,
				Text:     q.Text,
			}
			names := make([]string, 0, len(q.Constraints))
			for name := range q.Constraints {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				xq.Constraints = append(xq.Constraints, xmlConstraint{Name: name, Value: q.Constraints[name]})
			}
			for _, o := range q.Options {
				xq.Options = append(xq.Options, xmlOption{
					ID:        o.ID,
					Value:     o.Value,
					Exclusive: o.Exclusive,
					Label:     o.Label,
				})
			}
			xs.Questions = append(xs.Questions, xq)
		}
		doc.Sections = append(doc.Sections, xs)
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialize, err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}
