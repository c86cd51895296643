// Package render projects a survey model into its two canonical output
// formats. Both serializers are pure functions of the model: same model
// in, byte-identical output out.
package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/docsurvey/docsurvey/survey"
)

// ErrSerialize is returned when a model cannot be encoded. It indicates
// a data-model invariant violation upstream, not a recoverable condition.
var ErrSerialize = errors.New("docsurvey: serialization failed")

// JSON encodes the model as its reference JSON representation, two-space
// indented. Sequence order is preserved as-is; absent optional fields are
// omitted entirely, never emitted as null. Special characters are escaped
// by the encoder, not dropped.
func JSON(m *survey.Model) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jsonModel(m)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialize, err)
	}
	return buf.Bytes(), nil
}

// jsonModel returns a copy with nil slices replaced by empty ones so the
// mandatory sequence fields are always arrays, never null.
func jsonModel(m *survey.Model) *survey.Model {
	out := m.Clone()
	if out.Sections == nil {
		out.Sections = []survey.Section{}
	}
	for i := range out.Sections {
		if out.Sections[i].Questions == nil {
			out.Sections[i].Questions = []survey.Question{}
		}
	}
	return out
}
