// Command surveyconv converts a questionnaire document into JSON and XML
// survey artifacts.
//
// Usage:
//
//	surveyconv questionnaire.docx
//	surveyconv -o ./out -json-only survey.doc
//	surveyconv -q legacy.pdf
//
// The artifacts are written next to the input (or under -o) as
// <base>.json and <base>.xml.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/docsurvey/docsurvey"
	"github.com/docsurvey/docsurvey/survey"
)

func main() {
	var (
		outDir   = flag.String("o", "", "Output directory (default: alongside the input file)")
		quiet    = flag.Bool("q", false, "Suppress progress logging (warnings still print)")
		jsonOnly = flag.Bool("json-only", false, "Write only the JSON artifact")
		xmlOnly  = flag.Bool("xml-only", false, "Write only the XML artifact")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <document>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *jsonOnly && *xmlOnly {
		log.Fatal("-json-only and -xml-only are mutually exclusive")
	}

	level := slog.LevelInfo
	if *quiet {
		level = slog.LevelWarn
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	input := flag.Arg(0)
	dir := *outDir
	if dir == "" {
		dir = filepath.Dir(input)
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Fatalf("creating output directory: %v", err)
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))

	conv := docsurvey.New(docsurvey.DefaultConfig())
	res, err := conv.Convert(context.Background(), input)
	if err != nil {
		switch {
		case errors.Is(err, docsurvey.ErrUnsupportedFormat):
			log.Fatalf("unsupported input format: %v", err)
		case errors.Is(err, docsurvey.ErrNoQuestionsFound):
			log.Fatalf("no questions recognized in %s", input)
		default:
			log.Fatalf("conversion failed: %v", err)
		}
	}

	for _, w := range res.Warnings {
		slog.Warn("convert: " + w)
	}

	if !*xmlOnly {
		path := filepath.Join(dir, base+".json")
		if err := os.WriteFile(path, res.JSON, 0o644); err != nil {
			log.Fatalf("writing %s: %v", path, err)
		}
		slog.Info("wrote artifact", "path", path, "bytes", len(res.JSON))
	}
	if !*jsonOnly {
		path := filepath.Join(dir, base+".xml")
		if err := os.WriteFile(path, res.XML, 0o644); err != nil {
			log.Fatalf("writing %s: %v", path, err)
		}
		slog.Info("wrote artifact", "path", path, "bytes", len(res.XML))
	}

	if !*quiet {
		byType := map[survey.QuestionType]int{}
		for _, s := range res.Model.Sections {
			for _, q := range s.Questions {
				byType[q.Type]++
			}
		}
		fmt.Printf("%s: %d sections, %d questions", filepath.Base(input),
			len(res.Model.Sections), res.Model.QuestionCount())
		for _, t := range []survey.QuestionType{
			survey.SingleChoice, survey.MultiChoice, survey.OpenText,
			survey.Rating, survey.Matrix, survey.Unknown,
		} {
			if n := byType[t]; n > 0 {
				fmt.Printf(" %s=%d", t, n)
			}
		}
		fmt.Println()
	}
}
