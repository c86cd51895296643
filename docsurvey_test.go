package docsurvey

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docsurvey/docsurvey/survey"
)

const fixtureText = `Demographics
1.1 What is your gender?
Male 1
Female 2
Prefer not to say 99
Employment
2.1 What is your occupation?
`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConvertEndToEnd(t *testing.T) {
	conv := New(DefaultConfig())
	res, err := conv.Convert(context.Background(), writeFixture(t, "survey.txt", fixtureText))
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}

	if len(res.Model.Sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(res.Model.Sections))
	}
	if res.Model.Sections[0].Title != "Demographics" || res.Model.Sections[1].Title != "Employment" {
		t.Errorf("section titles = %q, %q",
			res.Model.Sections[0].Title, res.Model.Sections[1].Title)
	}

	gender := res.Model.Sections[0].Questions[0]
	if gender.Type != survey.SingleChoice || len(gender.Options) != 3 {
		t.Errorf("gender question = %q with %d options", gender.Type, len(gender.Options))
	}
	if !gender.Options[2].Exclusive {
		t.Error("prefer-not-to-say option should be exclusive")
	}
	if q := res.Model.Sections[1].Questions[0]; q.Type != survey.OpenText {
		t.Errorf("occupation question type = %q, want open-text", q.Type)
	}

	// Both artifacts are present and well formed.
	var roundTrip survey.Model
	if err := json.Unmarshal(res.JSON, &roundTrip); err != nil {
		t.Errorf("JSON artifact invalid: %v", err)
	}
	if !bytes.HasPrefix(res.XML, []byte(`<?xml version="1.0" encoding="UTF-8"?>`)) {
		t.Error("XML artifact missing header")
	}
	if !bytes.Contains(res.XML, []byte(`<question id="Q1x1"`)) {
		t.Errorf("XML artifact missing question element:\n%s", res.XML)
	}
}

func TestConvertIdempotent(t *testing.T) {
	path := writeFixture(t, "survey.txt", fixtureText)
	conv := New(DefaultConfig())

	r1, err := conv.Convert(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := conv.Convert(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(r1.JSON, r2.JSON) {
		t.Error("JSON output differs across conversions of the same input")
	}
	if !bytes.Equal(r1.XML, r2.XML) {
		t.Error("XML output differs across conversions of the same input")
	}
}

func TestConvertTo(t *testing.T) {
	path := writeFixture(t, "survey.txt", fixtureText)
	conv := New(DefaultConfig())

	var jsonBuf, xmlBuf bytes.Buffer
	if _, err := conv.ConvertTo(context.Background(), path, &jsonBuf, &xmlBuf); err != nil {
		t.Fatalf("ConvertTo returned error: %v", err)
	}
	if jsonBuf.Len() == 0 || xmlBuf.Len() == 0 {
		t.Errorf("sinks received %d and %d bytes", jsonBuf.Len(), xmlBuf.Len())
	}

	// A nil sink skips that artifact.
	var only bytes.Buffer
	if _, err := conv.ConvertTo(context.Background(), path, &only, nil); err != nil {
		t.Fatalf("ConvertTo with nil sink returned error: %v", err)
	}
	if !strings.Contains(only.String(), `"sections"`) {
		t.Error("JSON sink did not receive the JSON artifact")
	}
}

func TestConvertErrors(t *testing.T) {
	conv := New(DefaultConfig())
	ctx := context.Background()

	t.Run("unsupported_format", func(t *testing.T) {
		_, err := conv.Convert(ctx, "deck.pptx")
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("Convert = %v, want ErrUnsupportedFormat", err)
		}
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := conv.Convert(ctx, filepath.Join(t.TempDir(), "absent.txt"))
		if !errors.Is(err, ErrUnreadableDocument) {
			t.Errorf("Convert = %v, want ErrUnreadableDocument", err)
		}
	})

	t.Run("no_questions", func(t *testing.T) {
		path := writeFixture(t, "notes.txt", "Meeting notes\nNothing questionnaire-shaped here.\n")
		_, err := conv.Convert(ctx, path)
		if !errors.Is(err, ErrNoQuestionsFound) {
			t.Errorf("Convert = %v, want ErrNoQuestionsFound", err)
		}
	})
}

func TestConvertSkipNormalize(t *testing.T) {
	// A question with an explicit choice marker but no options survives
	// un-normalized only when SkipNormalize is set.
	content := "1.1 Pick one of the following\nSingle Answer\n2.1 And explain why\n"

	raw := New(Config{SkipNormalize: true})
	res, err := raw.Convert(context.Background(), writeFixture(t, "survey.txt", content))
	if err != nil {
		t.Fatal(err)
	}
	if q := res.Model.Sections[0].Questions[0]; q.Type != survey.SingleChoice {
		t.Errorf("un-normalized type = %q, want single-choice kept", q.Type)
	}

	norm := New(DefaultConfig())
	res, err = norm.Convert(context.Background(), writeFixture(t, "survey.txt", content))
	if err != nil {
		t.Fatal(err)
	}
	if q := res.Model.Sections[0].Questions[0]; q.Type != survey.OpenText {
		t.Errorf("normalized type = %q, want open-text demotion", q.Type)
	}
}
