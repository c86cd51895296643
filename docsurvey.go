// Package docsurvey converts semi-structured questionnaire documents into
// a canonical JSON survey model and a matching XML rendering.
//
// The pipeline is Reader -> Parser -> Model -> {JSON, XML}, sequenced by
// Converter. It is synchronous and shares no state between conversions;
// callers running conversions concurrently dispatch one Convert call per
// request.
package docsurvey

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/docsurvey/docsurvey/document"
	"github.com/docsurvey/docsurvey/parser"
	"github.com/docsurvey/docsurvey/render"
	"github.com/docsurvey/docsurvey/survey"
)

// Result is the outcome of a successful conversion.
type Result struct {
	Model    *survey.Model
	JSON     []byte
	XML      []byte
	Warnings []string
}

// Converter runs the conversion pipeline.
type Converter struct {
	cfg     Config
	readers *document.Registry
	parser  *parser.Parser
}

// New creates a converter with the given configuration.
func New(cfg Config) *Converter {
	return &Converter{
		cfg:     cfg,
		readers: document.NewRegistry(),
		parser:  parser.New(cfg.Markers),
	}
}

// Readers exposes the format registry so callers can add readers for
// additional container formats.
func (c *Converter) Readers() *document.Registry {
	return c.readers
}

// Convert runs the full pipeline on one document. The first fatal error
// short-circuits and is returned typed, wrapping its cause; recoverable
// parse anomalies are collected as warnings on the result instead.
func (c *Converter) Convert(ctx context.Context, path string) (*Result, error) {
	filename := filepath.Base(path)
	start := time.Now()

	rd, err := c.readers.ForPath(path)
	if err != nil {
		return nil, err
	}

	doc, err := rd.Read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	slog.Debug("convert: document read", "file", filename, "blocks", len(doc.Blocks))

	model, warnings, err := c.parser.Parse(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}

	if !c.cfg.SkipNormalize {
		var normWarnings []string
		model, normWarnings = survey.Normalize(model)
		warnings = append(warnings, normWarnings...)
	}

	jsonOut, err := render.JSON(model)
	if err != nil {
		return nil, err
	}
	xmlOut, err := render.XML(model)
	if err != nil {
		return nil, err
	}

	slog.Info("convert: document converted",
		"file", filename,
		"sections", len(model.Sections),
		"questions", model.QuestionCount(),
		"warnings", len(warnings),
		"elapsed", time.Since(start).Round(time.Millisecond))

	return &Result{
		Model:    model,
		JSON:     jsonOut,
		XML:      xmlOut,
		Warnings: warnings,
	}, nil
}

// ConvertTo converts one document and writes both artifacts to the
// caller-provided sinks. Either sink may be nil to skip that artifact.
func (c *Converter) ConvertTo(ctx context.Context, path string, jsonSink, xmlSink io.Writer) ([]string, error) {
	res, err := c.Convert(ctx, path)
	if err != nil {
		return nil, err
	}
	if jsonSink != nil {
		if _, err := jsonSink.Write(res.JSON); err != nil {
			return res.Warnings, fmt.Errorf("writing JSON artifact: %w", err)
		}
	}
	if xmlSink != nil {
		if _, err := xmlSink.Write(res.XML); err != nil {
			return res.Warnings, fmt.Errorf("writing XML artifact: %w", err)
		}
	}
	return res.Warnings, nil
}
