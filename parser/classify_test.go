package parser

import (
	"testing"

	"github.com/docsurvey/docsurvey/document"
	"github.com/docsurvey/docsurvey/survey"
)

// ---------------------------------------------------------------------------
// Classify tests
// ---------------------------------------------------------------------------

func TestClassify(t *testing.T) {
	cfg := DefaultMarkers()

	tests := []struct {
		name       string
		text       string
		wantKind   Kind
		wantNumber string
		wantText   string
		wantValue  string
		wantHint   survey.QuestionType
	}{
		{
			name: "logic_ask_all", text: "ASK ALL",
			wantKind: KindLogic, wantText: "ASK ALL",
		},
		{
			name: "logic_ask_if", text: "ask if Q3 = 1",
			wantKind: KindLogic, wantText: "ask if Q3 = 1",
		},
		{
			name: "type_single", text: "Single Answer",
			wantKind: KindTypeMarker, wantHint: survey.SingleChoice,
		},
		{
			name: "type_multiple", text: "Multiple Answers. Choose up to 3",
			wantKind: KindTypeMarker, wantHint: survey.MultiChoice,
		},
		{
			name: "type_open", text: "Open Answer",
			wantKind: KindTypeMarker, wantHint: survey.OpenText,
		},
		{
			name: "type_numeric", text: "Numeric",
			wantKind: KindTypeMarker, wantHint: survey.OpenText,
		},
		{
			name: "question_multilevel", text: "1.4a Which of these apply to you?",
			wantKind: KindQuestion, wantNumber: "1.4a", wantText: "Which of these apply to you?",
		},
		{
			name: "question_multilevel_trailing_dot", text: "2.3.1. How often?",
			wantKind: KindQuestion, wantNumber: "2.3.1", wantText: "How often?",
		},
		{
			name: "question_single_level", text: "7. What is your occupation?",
			wantKind: KindQuestion, wantNumber: "7", wantText: "What is your occupation?",
		},
		{
			name: "question_q_prefix", text: "Q12: Where do you live?",
			wantKind: KindQuestion, wantNumber: "12", wantText: "Where do you live?",
		},
		{
			name: "option_checkbox", text: "☐ Sports",
			wantKind: KindOption, wantText: "Sports", wantHint: survey.MultiChoice,
		},
		{
			name: "option_radio", text: "○ Strongly agree",
			wantKind: KindOption, wantText: "Strongly agree", wantHint: survey.SingleChoice,
		},
		{
			name: "option_parenthesized", text: "(4) Somewhat satisfied",
			wantKind: KindOption, wantText: "Somewhat satisfied", wantValue: "4",
		},
		{
			name: "option_letter", text: "b) Blue",
			wantKind: KindOption, wantText: "Blue", wantValue: "b",
		},
		{
			name: "option_dash", text: "- Something else",
			wantKind: KindOption, wantText: "Something else",
		},
		{
			name: "option_trailing_code", text: "Prefer not to say 99",
			wantKind: KindOption, wantText: "Prefer not to say", wantValue: "99",
		},
		{
			name: "continuation_plain", text: "Please answer honestly.",
			wantKind: KindContinuation, wantText: "Please answer honestly.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cfg.Classify(tt.text, document.StyleHints{})
			if c.Kind != tt.wantKind {
				t.Fatalf("Classify(%q).Kind = %v, want %v", tt.text, c.Kind, tt.wantKind)
			}
			if tt.wantNumber != "" && c.Number != tt.wantNumber {
				t.Errorf("Number = %q, want %q", c.Number, tt.wantNumber)
			}
			if tt.wantText != "" && c.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", c.Text, tt.wantText)
			}
			if c.Value != tt.wantValue {
				t.Errorf("Value = %q, want %q", c.Value, tt.wantValue)
			}
			if c.Hint != tt.wantHint {
				t.Errorf("Hint = %q, want %q", c.Hint, tt.wantHint)
			}
		})
	}
}

func TestClassifyHeadingStyleWins(t *testing.T) {
	cfg := DefaultMarkers()

	// A styled heading is a section even when its text would match a
	// question pattern.
	c := cfg.Classify("3. Lifestyle", document.StyleHints{Heading: true})
	if c.Kind != KindSectionHeading {
		t.Errorf("Kind = %v, want KindSectionHeading", c.Kind)
	}
}

func TestClassifyBoldHeading(t *testing.T) {
	cfg := DefaultMarkers()
	bold := document.StyleHints{Bold: true}

	if c := cfg.Classify("Demographics", bold); c.Kind != KindSectionHeading {
		t.Errorf("bold heading-shaped line Kind = %v, want KindSectionHeading", c.Kind)
	}
	// Bold loses to every marker and to the heading shape checks.
	if c := cfg.Classify("1.1 What is your gender?", bold); c.Kind != KindQuestion {
		t.Errorf("bold question Kind = %v, want KindQuestion", c.Kind)
	}
	if c := cfg.Classify("Male 1", bold); c.Kind != KindOption {
		t.Errorf("bold option Kind = %v, want KindOption", c.Kind)
	}
	if c := cfg.Classify("A bold sentence that ends with a full stop.", bold); c.Kind != KindContinuation {
		t.Errorf("bold sentence Kind = %v, want KindContinuation", c.Kind)
	}
}

func TestClassifyNumberedLineIsQuestionFirst(t *testing.T) {
	cfg := DefaultMarkers()

	// "1. Male" is ambiguous between question and option; classification
	// alone reads it as a question and leaves the tie-break to the parser.
	c := cfg.Classify("1. Male", document.StyleHints{})
	if c.Kind != KindQuestion {
		t.Fatalf("Kind = %v, want KindQuestion", c.Kind)
	}
	if oc, ok := cfg.MatchOption("1. Male"); !ok || oc.Value != "1" || oc.Text != "Male" {
		t.Errorf("MatchOption = %+v, %v; want option Male code 1", oc, ok)
	}
}

func TestClassifyNumericMarkerFlag(t *testing.T) {
	cfg := DefaultMarkers()

	c := cfg.Classify("Numeric. Enter a value between 18 and 65", document.StyleHints{})
	if c.Kind != KindTypeMarker || !c.Numeric {
		t.Errorf("got %+v, want numeric type marker", c)
	}
	if cfg.Classify("Single Answer", document.StyleHints{}).Numeric {
		t.Error("Single Answer marker should not be numeric")
	}
}

// ---------------------------------------------------------------------------
// Heading heuristic tests
// ---------------------------------------------------------------------------

func TestLooksLikeHeading(t *testing.T) {
	cfg := DefaultMarkers()

	tests := []struct {
		text  string
		hints document.StyleHints
		want  bool
	}{
		{text: "Demographics", want: true},
		{text: "Section B: Media Habits", want: true},
		{text: "", want: false},
		{text: "What is your favourite colour?", want: false},
		{text: "This sentence ends with a full stop.", want: false},
		{text: "a line that rambles on far past any plausible heading length, well beyond sixty runes in total", want: false},
		// Style hints override the length heuristic.
		{text: "a line that rambles on far past any plausible heading length, well beyond sixty runes in total",
			hints: document.StyleHints{Heading: true}, want: true},
	}

	for _, tt := range tests {
		if got := cfg.LooksLikeHeading(tt.text, tt.hints); got != tt.want {
			t.Errorf("LooksLikeHeading(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
