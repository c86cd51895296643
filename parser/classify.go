package parser

import (
	"regexp"
	"strings"

	"github.com/docsurvey/docsurvey/document"
	"github.com/docsurvey/docsurvey/survey"
)

// Kind tags the classification of a text block.
type Kind int

const (
	KindContinuation Kind = iota
	KindSectionHeading
	KindQuestion
	KindOption
	KindTypeMarker
	KindLogic
)

// Classification is the result of matching a text block against the
// marker rules.
type Classification struct {
	Kind    Kind
	Number  string              // question numbering as written, e.g. "1.4a"
	Text    string              // payload with the marker stripped
	Value   string              // option coded value
	Hint    survey.QuestionType // selection hint carried by the marker
	Numeric bool                // explicit type marker implies a numeric answer
}

// TypeMarker maps an explicit question-type line to a question type.
type TypeMarker struct {
	Pattern *regexp.Regexp
	Type    survey.QuestionType
	Numeric bool
}

// OptionMarker maps an option-marker pattern to its capture layout and
// the selection hint the marker glyph implies.
type OptionMarker struct {
	Pattern    *regexp.Regexp
	Hint       survey.QuestionType // MultiChoice for checkbox glyphs, SingleChoice for radio
	LabelGroup int
	ValueGroup int // 0 when the marker carries no coded value
}

// MarkerConfig is the recognized-marker set. It is configuration data:
// new document conventions are added by extending the pattern lists, not
// by touching the parser.
type MarkerConfig struct {
	// Logic matches routing lines such as "ASK ALL" / "ASK IF ...".
	Logic *regexp.Regexp

	// Question patterns; capture 1 is the numbering, capture 2 the text.
	Question []*regexp.Regexp

	// Types matches explicit question-type lines.
	Types []TypeMarker

	// Options matches option markers, tried in order.
	Options []OptionMarker

	// Exclusive matches option labels that exclude other selections.
	Exclusive *regexp.Regexp

	// Optional matches question text that marks the question optional.
	Optional *regexp.Regexp

	// MaxSelections captures a selection cap ("choose up to 3").
	MaxSelections *regexp.Regexp

	// NumericRange captures an explicit numeric range ("between 18 and 99").
	NumericRange *regexp.Regexp

	// MaxHeadingLen bounds the heuristic section-heading length, in runes.
	MaxHeadingLen int
}

// DefaultMarkers returns the built-in marker conventions.
func DefaultMarkers() MarkerConfig {
	return MarkerConfig{
		Logic: regexp.MustCompile(`(?i)^(ASK\s+ALL|ASK\s+IF\s+.+)$`),

		Question: []*regexp.Regexp{
			// Multi-level numbering, optional letter suffix: "1.1", "1.4a", "2.3.1 Text"
			regexp.MustCompile(`^(\d+(?:\.\d+)+[a-zA-Z]?)\.?\s+(\S.*)$`),
			// Single-level with separator: "1. Text", "3) Text"
			regexp.MustCompile(`^(\d+[a-zA-Z]?)[.)]\s+(\S.*)$`),
			// Q prefix: "Q7 Text", "Q1.4: Text"
			regexp.MustCompile(`(?i)^Q\s*(\d+(?:[.x]\d+)*[a-zA-Z]?)[.):]?\s+(\S.*)$`),
		},

		Types: []TypeMarker{
			{Pattern: regexp.MustCompile(`(?i)^Single\s+Answer\b`), Type: survey.SingleChoice},
			{Pattern: regexp.MustCompile(`(?i)^Multiple\s+Answers?\b`), Type: survey.MultiChoice},
			{Pattern: regexp.MustCompile(`(?i)^Open\s+(?:Answer|Text)\b`), Type: survey.OpenText},
			{Pattern: regexp.MustCompile(`(?i)^Numeric\b`), Type: survey.OpenText, Numeric: true},
			{Pattern: regexp.MustCompile(`(?i)^(?:Rating|Scale)\b`), Type: survey.Rating},
		},

		Options: []OptionMarker{
			// Checkbox glyphs imply multiple selection.
			{Pattern: regexp.MustCompile(`^[□☐■☑✓]\s*(\S.*)$`), Hint: survey.MultiChoice, LabelGroup: 1},
			// Radio glyphs imply single selection.
			{Pattern: regexp.MustCompile(`^[○◯●◉]\s*(\S.*)$`), Hint: survey.SingleChoice, LabelGroup: 1},
			// Parenthesized markers: "(a) Label", "(12) Label"
			{Pattern: regexp.MustCompile(`^\(([A-Za-z]|\d{1,2})\)\s*(\S.*)$`), ValueGroup: 1, LabelGroup: 2},
			// Letter markers: "A. Label", "b) Label"
			{Pattern: regexp.MustCompile(`^([A-Za-z])[.)]\s+(\S.*)$`), ValueGroup: 1, LabelGroup: 2},
			// Numbered options: "1. Label". The parser's tie-break
			// separates these from question numbering.
			{Pattern: regexp.MustCompile(`^(\d{1,2})[.)]\s+(\S.*)$`), ValueGroup: 1, LabelGroup: 2},
			// Leading dash or bullet.
			{Pattern: regexp.MustCompile(`^[-–—•*]\s+(\S.*)$`), LabelGroup: 1},
			// Trailing numeric code: "Label 3"
			{Pattern: regexp.MustCompile(`^(\S.*?)\s+(\d{1,3})$`), LabelGroup: 1, ValueGroup: 2},
		},

		Exclusive: regexp.MustCompile(
			`(?i)(other\s*[—–-]|other.*please\s+specify|none\s+of\s+the\s+above|prefer\s+not\s+to)`),
		Optional:      regexp.MustCompile(`(?i)\(optional\)`),
		MaxSelections: regexp.MustCompile(`(?i)(?:choose|select|pick)\s+(?:up\s+to\s+|at\s+most\s+)?(\d+)`),
		NumericRange:  regexp.MustCompile(`(?i)(?:between|from)\s+(\d+)\s+(?:and|to)\s+(\d+)`),
		MaxHeadingLen: 60,
	}
}

// Classify matches a text block against the marker rules in priority
// order: style-hinted headings, then logic lines, type markers, question
// numbering, option markers, bold heading-shaped lines. Anything else is
// continuation text; the parser resolves it with lookahead.
func (c *MarkerConfig) Classify(text string, hints document.StyleHints) Classification {
	text = strings.TrimSpace(text)

	if hints.Heading {
		return Classification{Kind: KindSectionHeading, Text: text}
	}
	if c.Logic != nil && c.Logic.MatchString(text) {
		return Classification{Kind: KindLogic, Text: text}
	}
	for _, tm := range c.Types {
		if tm.Pattern.MatchString(text) {
			return Classification{Kind: KindTypeMarker, Text: text, Hint: tm.Type, Numeric: tm.Numeric}
		}
	}
	for _, re := range c.Question {
		if m := re.FindStringSubmatch(text); m != nil {
			return Classification{Kind: KindQuestion, Number: m[1], Text: strings.TrimSpace(m[2])}
		}
	}
	if oc, ok := c.MatchOption(text); ok {
		return oc
	}
	// Bold is weaker evidence than a heading style: it promotes a line to
	// a section heading only when nothing else matched and the line is
	// heading-shaped. Style-less Word exports mark sections this way.
	if hints.Bold && c.LooksLikeHeading(text, hints) {
		return Classification{Kind: KindSectionHeading, Text: text}
	}
	return Classification{Kind: KindContinuation, Text: text}
}

// MatchOption matches a text block against the option markers alone.
// The parser uses it directly when resolving question/option ambiguity
// inside an open question.
func (c *MarkerConfig) MatchOption(text string) (Classification, bool) {
	text = strings.TrimSpace(text)
	for _, om := range c.Options {
		m := om.Pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		oc := Classification{Kind: KindOption, Hint: om.Hint}
		oc.Text = strings.TrimSpace(m[om.LabelGroup])
		if om.ValueGroup > 0 {
			oc.Value = strings.TrimSpace(m[om.ValueGroup])
		}
		return oc, true
	}
	return Classification{}, false
}

// LooksLikeHeading reports whether a line is a plausible section heading
// on its own: short, standalone, and not phrased as a question. The
// parser combines this with one-block lookahead before opening a section.
func (c *MarkerConfig) LooksLikeHeading(text string, hints document.StyleHints) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	if hints.Heading {
		return true
	}
	if len([]rune(text)) > c.MaxHeadingLen {
		return false
	}
	if strings.HasSuffix(text, "?") || strings.HasSuffix(text, ".") || strings.HasSuffix(text, ",") {
		return false
	}
	return true
}
