// Package parser recovers survey structure from a document's block
// sequence. It is a single forward pass with one-block lookahead: an
// explicit three-state machine tracks the currently open section and
// question, and an ordered marker-rule set classifies each block.
package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/docsurvey/docsurvey/document"
	"github.com/docsurvey/docsurvey/survey"
)

// ErrNoQuestions is returned when a full pass detects zero questions.
var ErrNoQuestions = errors.New("docsurvey: no survey structure detected")

// state is the parser's scope: what entity is currently open.
type state int

const (
	stateNoSection state = iota
	stateInSection
	stateInQuestion
)

// Parser assembles a survey model from document blocks.
type Parser struct {
	cfg MarkerConfig
}

// New returns a parser using cfg, or the default marker set when cfg is
// nil.
func New(cfg *MarkerConfig) *Parser {
	if cfg == nil {
		c := DefaultMarkers()
		cfg = &c
	}
	return &Parser{cfg: *cfg}
}

// Parse consumes the document once and returns the assembled model plus
// non-fatal warnings. It fails only on an empty document or when no
// questions are detected after the full pass.
func (p *Parser) Parse(ctx context.Context, doc *document.Document) (*survey.Model, []string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if doc == nil || len(doc.Blocks) == 0 {
		return nil, nil, document.ErrEmpty
	}

	b := &builder{cfg: &p.cfg, model: &survey.Model{Title: doc.Title}}

	for i, blk := range doc.Blocks {
		switch bl := blk.(type) {
		case document.TextBlock:
			b.textBlock(i, bl, doc.Blocks)
		case document.TableBlock:
			b.tableBlock(i, bl)
		}
	}
	b.closeQuestion()
	b.closeSection()

	if b.model.QuestionCount() == 0 {
		return nil, b.warnings, ErrNoQuestions
	}

	slog.Debug("parse complete",
		"sections", len(b.model.Sections),
		"questions", b.model.QuestionCount(),
		"warnings", len(b.warnings))

	return b.model, b.warnings, nil
}

// builder carries the forward-pass state.
type builder struct {
	cfg      *MarkerConfig
	model    *survey.Model
	warnings []string

	state state
	sec   *survey.Section
	q     *survey.Question

	pendingLogic string

	// Per-question inference inputs, reset by openQuestion.
	explicitType survey.QuestionType
	numeric      bool
	matrix       bool
	multiHints   int
	singleHints  int
}

func (b *builder) warnf(format string, args ...any) {
	b.warnings = append(b.warnings, fmt.Sprintf(format, args...))
}

func (b *builder) textBlock(i int, bl document.TextBlock, blocks []document.Block) {
	c := b.cfg.Classify(bl.Text, bl.Style)

	// Tie-break: a numbered line inside an open question is an option
	// when it also matches an option marker, unless it is phrased as a
	// question or carries multi-level numbering (option codes are flat).
	if c.Kind == KindQuestion && b.state == stateInQuestion {
		if oc, ok := b.cfg.MatchOption(bl.Text); ok &&
			!strings.HasSuffix(strings.TrimSpace(bl.Text), "?") &&
			!strings.Contains(c.Number, ".") {
			c = oc
		}
	}

	switch c.Kind {
	case KindSectionHeading:
		// A leading title-styled paragraph is the survey title, not a
		// section of its own.
		if b.model.Title == "" && len(b.model.Sections) == 0 && b.sec == nil &&
			strings.HasPrefix(strings.ToLower(bl.Style.Style), "title") {
			b.model.Title = c.Text
			return
		}
		b.closeQuestion()
		b.closeSection()
		b.openSection(c.Text)

	case KindLogic:
		b.closeQuestion()
		b.pendingLogic = c.Text

	case KindTypeMarker:
		if b.state != stateInQuestion {
			b.warnf("type marker %q outside any question skipped at position %d", c.Text, i+1)
			return
		}
		b.explicitType = c.Hint
		b.numeric = b.numeric || c.Numeric
		if m := b.cfg.MaxSelections.FindStringSubmatch(c.Text); m != nil {
			b.setConstraint(survey.ConstraintMaxSelections, atoi(m[1]))
		}
		if m := b.cfg.NumericRange.FindStringSubmatch(c.Text); m != nil {
			b.setConstraint(survey.ConstraintMin, atoi(m[1]))
			b.setConstraint(survey.ConstraintMax, atoi(m[2]))
		}

	case KindQuestion:
		b.closeQuestion()
		b.openQuestion(c.Number, c.Text)

	case KindOption:
		if b.state != stateInQuestion {
			b.warnf("option-like block %q skipped at position %d (no open question)", c.Text, i+1)
			return
		}
		b.addOption(c.Text, c.Value, c.Hint)

	case KindContinuation:
		b.continuation(i, c.Text, bl.Style, blocks)
	}
}

// continuation resolves a block that matched no marker, using one-block
// lookahead as the fallback rules require.
func (b *builder) continuation(i int, text string, hints document.StyleHints, blocks []document.Block) {
	headingAhead := b.cfg.LooksLikeHeading(text, hints) && b.questionLikeAhead(i, blocks)
	optionsAhead := b.optionLikeAhead(i, blocks)

	switch b.state {
	case stateInQuestion:
		if headingAhead {
			b.closeQuestion()
			b.closeSection()
			b.openSection(text)
			return
		}
		if optionsAhead && len(b.q.Options) > 0 {
			// The previous option run is finished; this text opens the
			// next (unnumbered) question.
			b.closeQuestion()
			b.openQuestion("", text)
			return
		}
		// Question text wraps across blocks.
		b.q.Text = joined(b.q.Text, text)

	case stateInSection:
		if b.pendingLogic != "" || optionsAhead {
			// A routing line was just seen, or an option run follows:
			// this text is the next question's text.
			b.openQuestion("", text)
			return
		}
		if headingAhead {
			b.closeSection()
			b.openSection(text)
			return
		}
		if len(b.sec.Questions) == 0 && b.cfg.LooksLikeHeading(text, hints) {
			// A heading-shaped fragment before the first question is the
			// section title wrapping across blocks.
			b.sec.Title = joined(b.sec.Title, text)
			return
		}
		b.warnf("unrecognized block skipped at position %d", i+1)

	case stateNoSection:
		if b.pendingLogic != "" || optionsAhead {
			b.openQuestion("", text)
			return
		}
		if headingAhead {
			b.openSection(text)
			return
		}
		b.warnf("unrecognized block skipped at position %d", i+1)
	}
}

func (b *builder) tableBlock(i int, bl document.TableBlock) {
	if b.state != stateInQuestion {
		b.warnf("table block skipped at position %d (no open question)", i+1)
		return
	}

	if isGrid(bl.Rows) && len(b.q.Options) == 0 {
		// Row labels × column headers: a matrix question whose options
		// are the column headers.
		b.matrix = true
		for ci, col := range bl.Rows[0][1:] {
			if col == "" {
				continue
			}
			b.q.Options = append(b.q.Options, survey.Option{
				ID:    fmt.Sprintf("c%d", ci+1),
				Label: col,
			})
		}
		return
	}

	opts := tableOptions(bl.Rows)
	if len(opts) == 0 {
		b.warnf("table block at position %d not recognized as options", i+1)
		return
	}
	for _, o := range opts {
		b.addOption(o.label, o.value, "")
	}
}

// ---------------------------------------------------------------------------
// Entity lifecycle
// ---------------------------------------------------------------------------

func (b *builder) openSection(title string) {
	b.sec = &survey.Section{
		ID:        fmt.Sprintf("s%d", len(b.model.Sections)+1),
		Title:     title,
		Questions: []survey.Question{},
	}
	b.state = stateInSection
}

func (b *builder) closeSection() {
	if b.sec == nil {
		return
	}
	b.model.Sections = append(b.model.Sections, *b.sec)
	b.sec = nil
	b.state = stateNoSection
}

func (b *builder) openQuestion(number, text string) {
	if b.sec == nil {
		// Implicit section for documents without section markers.
		b.openSection("")
	}
	b.q = &survey.Question{
		ID:       questionID(number, len(b.model.Sections)+1, len(b.sec.Questions)+1),
		Text:     text,
		Logic:    b.pendingLogic,
		Required: true,
	}
	b.pendingLogic = ""
	b.explicitType = ""
	b.numeric = false
	b.matrix = false
	b.multiHints = 0
	b.singleHints = 0
	b.state = stateInQuestion
}

// closeQuestion runs type inference and constraint assembly, then appends
// the question to the open section.
func (b *builder) closeQuestion() {
	if b.q == nil {
		return
	}
	q := b.q
	b.q = nil

	switch {
	case b.explicitType != "":
		q.Type = b.explicitType
	case b.matrix:
		q.Type = survey.Matrix
	case b.multiHints > 0:
		q.Type = survey.MultiChoice
	case b.singleHints > 0:
		q.Type = survey.SingleChoice
	case len(q.Options) == 0:
		q.Type = survey.OpenText
	case len(q.Options) >= 2:
		q.Type = survey.SingleChoice
	default:
		q.Type = survey.Unknown
		b.warnf("question %s has an uncertain type", q.ID)
	}

	if b.numeric {
		if _, ok := q.Constraints[survey.ConstraintMin]; !ok {
			b.setConstraintOn(q, survey.ConstraintMin, 0)
			b.setConstraintOn(q, survey.ConstraintMax, 99)
		}
	}
	if q.Type == survey.MultiChoice {
		if _, ok := q.Constraints[survey.ConstraintMaxSelections]; !ok {
			if m := b.cfg.MaxSelections.FindStringSubmatch(q.Text); m != nil {
				b.setConstraintOn(q, survey.ConstraintMaxSelections, atoi(m[1]))
			}
		}
	}
	if b.cfg.Optional.MatchString(q.Text) {
		q.Required = false
	}
	if len(q.Options) == 0 && q.Type != survey.OpenText {
		b.warnf("question %s has no detected options", q.ID)
	}

	b.sec.Questions = append(b.sec.Questions, *q)
	b.state = stateInSection
}

func (b *builder) addOption(label, value string, hint survey.QuestionType) {
	id := "r" + value
	if value == "" {
		id = fmt.Sprintf("o%d", len(b.q.Options)+1)
	}
	b.q.Options = append(b.q.Options, survey.Option{
		ID:        id,
		Label:     label,
		Value:     value,
		Exclusive: b.cfg.Exclusive.MatchString(label),
	})
	switch hint {
	case survey.MultiChoice:
		b.multiHints++
	case survey.SingleChoice:
		b.singleHints++
	}
}

func (b *builder) setConstraint(name string, v int) {
	b.setConstraintOn(b.q, name, v)
}

func (b *builder) setConstraintOn(q *survey.Question, name string, v int) {
	if q.Constraints == nil {
		q.Constraints = make(map[string]int)
	}
	q.Constraints[name] = v
}

// ---------------------------------------------------------------------------
// Lookahead
// ---------------------------------------------------------------------------

// optionLikeAhead reports whether the block after i is option-like: a
// text block matching an option marker, or an option-shaped table.
func (b *builder) optionLikeAhead(i int, blocks []document.Block) bool {
	if i+1 >= len(blocks) {
		return false
	}
	switch next := blocks[i+1].(type) {
	case document.TextBlock:
		_, ok := b.cfg.MatchOption(next.Text)
		return ok
	case document.TableBlock:
		return isGrid(next.Rows) || len(tableOptions(next.Rows)) > 0
	}
	return false
}

// questionLikeAhead reports whether the block after i opens a question:
// numbered question text, a routing line, or text ending in a question
// mark.
func (b *builder) questionLikeAhead(i int, blocks []document.Block) bool {
	if i+1 >= len(blocks) {
		return false
	}
	next, ok := blocks[i+1].(document.TextBlock)
	if !ok {
		return false
	}
	c := b.cfg.Classify(next.Text, next.Style)
	return c.Kind == KindQuestion || c.Kind == KindLogic ||
		strings.HasSuffix(strings.TrimSpace(next.Text), "?")
}

// ---------------------------------------------------------------------------
// Table interpretation
// ---------------------------------------------------------------------------

type tableOption struct {
	label string
	value string
}

// tableOptions reads a table as a batch of options. Supported shapes,
// per row: label|code pairs in two or four columns, or a bare label
// column with positional codes.
func tableOptions(rows [][]string) []tableOption {
	var opts []tableOption
	for _, row := range rows {
		switch {
		case len(row) >= 4 && isCode(row[1]) && isCode(row[3]):
			if row[0] != "" {
				opts = append(opts, tableOption{label: row[0], value: row[1]})
			}
			if row[2] != "" {
				opts = append(opts, tableOption{label: row[2], value: row[3]})
			}
		case len(row) >= 2 && isCode(row[1]):
			if row[0] != "" {
				opts = append(opts, tableOption{label: row[0], value: row[1]})
			}
		case len(row) == 1:
			if row[0] != "" && !isCode(row[0]) {
				opts = append(opts, tableOption{
					label: row[0],
					value: strconv.Itoa(len(opts) + 1),
				})
			}
		default:
			return nil // not an option table
		}
	}
	return opts
}

// isGrid reports whether a table is matrix-shaped: at least two rows and
// three columns, and not an option label/code table.
func isGrid(rows [][]string) bool {
	if len(rows) < 2 || len(rows[0]) < 3 {
		return false
	}
	codeRows := 0
	for _, row := range rows {
		if len(row) >= 2 && isCode(row[1]) {
			codeRows++
		}
	}
	return codeRows <= len(rows)/2
}

func isCode(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}

// ---------------------------------------------------------------------------
// Identifiers
// ---------------------------------------------------------------------------

// questionID derives a stable id from the detected numbering ("1.4a"
// becomes "Q1x4a"), falling back to section and position for unnumbered
// questions.
func questionID(number string, secIdx, pos int) string {
	if number == "" {
		return fmt.Sprintf("Q%dx%d", secIdx, pos)
	}
	return "Q" + strings.Join(strings.Split(number, "."), "x")
}

func joined(a, b string) string {
	if a == "" {
		return b
	}
	return a + " " + b
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
