package docsurvey

import "github.com/docsurvey/docsurvey/parser"

// Config holds all configuration for the conversion pipeline.
type Config struct {
	// Markers drives line classification during parsing. If nil, the
	// built-in marker set is used.
	Markers *parser.MarkerConfig `json:"-" yaml:"-"`

	// SkipNormalize disables the post-parse model normalization pass.
	// Models then keep whatever shape the parser produced, including
	// typed questions without options and duplicate identifiers.
	SkipNormalize bool `json:"skip_normalize" yaml:"skip_normalize"`
}

// DefaultConfig returns a Config with the built-in marker set and
// normalization enabled.
func DefaultConfig() Config {
	m := parser.DefaultMarkers()
	return Config{Markers: &m}
}
