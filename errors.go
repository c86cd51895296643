package docsurvey

import (
	"github.com/docsurvey/docsurvey/document"
	"github.com/docsurvey/docsurvey/parser"
	"github.com/docsurvey/docsurvey/render"
)

// Sentinel errors from the pipeline stages, re-exported so callers can
// match with errors.Is without importing the stage packages.
var (
	// ErrUnreadableDocument is returned when the input file is missing,
	// corrupt, or not a valid instance of its container format.
	ErrUnreadableDocument = document.ErrUnreadable

	// ErrEmptyDocument is returned when the input contains no content
	// blocks at all.
	ErrEmptyDocument = document.ErrEmpty

	// ErrUnsupportedFormat is returned for unrecognized file formats.
	ErrUnsupportedFormat = document.ErrUnsupportedFormat

	// ErrNoQuestionsFound is returned when parsing completes without
	// recognizing a single question.
	ErrNoQuestionsFound = parser.ErrNoQuestions

	// ErrSerialization is returned when a model cannot be rendered to
	// JSON or XML.
	ErrSerialization = render.ErrSerialize
)
