package studyquiz

import (
	"strings"
	"testing"
)

func TestBuildPrompt_EmbedsSchemaAndQuantities(t *testing.T) {
	p := BuildPrompt(PromptInput{
		Content:    "Mitochondria produce ATP.",
		FileName:   "bio.pdf",
		FileType:   "application/pdf",
		Quantities: Quantities{Flashcards: 7, MCQs: 3},
	})

	for _, want := range []string{
		"- 7 flashcards",
		"- 3 multiple choice questions",
		"- 2 matching questions",
		"- 5 true/false statements",
		`"flashcards"`, `"mcqs"`, `"correctAnswer"`,
		`"matchingQuestions"`, `"leftItems"`, `"rightItems"`, `"correctMatches"`,
		`"trueFalseQuestions"`, `"isTrue"`,
		"Do NOT ask about the document itself",
		"Mitochondria produce ATP.",
		"bio.pdf",
	} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
	if strings.Contains(p, "truncated") {
		t.Fatalf("prompt should not mention truncation")
	}
}

func TestBuildPrompt_CustomPromptAndTruncation(t *testing.T) {
	p := BuildPrompt(PromptInput{Content: "x", Truncated: true, CustomPrompt: "  focus on dates  "})
	if !strings.Contains(p, "focus on dates") {
		t.Fatalf("custom prompt missing")
	}
	if !strings.Contains(p, "truncated") {
		t.Fatalf("truncation note missing")
	}
}

func TestTruncateContent(t *testing.T) {
	text, truncated := TruncateContent("hello", 10)
	if truncated || text != "hello" {
		t.Fatalf("got=%q truncated=%t", text, truncated)
	}

	text, truncated = TruncateContent("héllo wörld", 5)
	if !truncated || text != "héllo" {
		t.Fatalf("got=%q truncated=%t", text, truncated)
	}

	long := strings.Repeat("a", DefaultMaxContentChars+1)
	text, truncated = TruncateContent(long, 0)
	if !truncated || len(text) != DefaultMaxContentChars {
		t.Fatalf("len got=%d truncated=%t", len(text), truncated)
	}
}
