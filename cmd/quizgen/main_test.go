package main

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"studyquiz"
)

func testSet() studyquiz.QuestionSet {
	return studyquiz.QuestionSet{
		Flashcards: []studyquiz.Flashcard{{Question: "What is ATP?", Answer: "Energy currency"}},
		MCQs:       []studyquiz.MCQ{{Question: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: 1}},
		MatchingQuestions: []studyquiz.MatchingQuestion{{
			ID: "m", Question: "Match", LeftItems: []string{"a", "b"}, RightItems: []string{"1", "2"}, CorrectMatches: []int{0, 1},
		}},
		TrueFalseQuestions: []studyquiz.TrueFalseQuestion{{ID: "t", Question: "Water is wet.", IsTrue: true}},
	}
}

func TestPlay_AllCorrect(t *testing.T) {
	var out bytes.Buffer
	// flip, mcq (with one invalid letter), true/false, two matches
	in := strings.NewReader("\nz\nB\nt\nA\nB\n")
	score := play(in, &out, testSet())
	if score.Total != 3 || score.Correct != 3 || !score.Complete {
		t.Fatalf("score got=%+v output=%s", score, out.String())
	}
	if !strings.Contains(out.String(), "Please enter a letter from A to B") {
		t.Fatalf("invalid letter not reported: %s", out.String())
	}
	if !strings.Contains(out.String(), "Energy currency") {
		t.Fatal("flashcard answer not shown")
	}
}

func TestPlay_WrongAnswers(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("\nA\nf\nB\nA\n")
	score := play(in, &out, testSet())
	if score.Correct != 0 || score.Answered != 3 {
		t.Fatalf("score got=%+v", score)
	}
	if !strings.Contains(out.String(), "The correct answer is B) 4") {
		t.Fatalf("missing correction: %s", out.String())
	}
}

func TestPlay_EndOfInput(t *testing.T) {
	var out bytes.Buffer
	score := play(strings.NewReader("\nB\n"), &out, testSet())
	if score.Answered != 1 || score.Complete {
		t.Fatalf("score got=%+v", score)
	}
}

func TestBuildRequests(t *testing.T) {
	q := &studyquiz.Quantities{MCQs: 3}
	reqs, err := buildRequests(nil, "plain text", q, "focus on dates")
	if err != nil || len(reqs) != 1 || reqs[0].FileContent != "plain text" || reqs[0].CustomPrompt != "focus on dates" {
		t.Fatalf("text request got=%+v err=%v", reqs, err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	reqs, err = buildRequests([]string{path}, "", q, "")
	if err != nil {
		t.Fatalf("buildRequests: %v", err)
	}
	r := reqs[0]
	if r.FileName != "notes.txt" || !strings.HasPrefix(r.FileType, "text/plain") {
		t.Fatalf("request got=%+v", r)
	}
	data, ok, err := studyquiz.DecodeDataURI(r.FileContent)
	if err != nil || !ok || string(data) != "hello" {
		t.Fatalf("content data=%q ok=%v err=%v", data, ok, err)
	}
	if !strings.HasSuffix(r.FileContent, base64.StdEncoding.EncodeToString([]byte("hello"))) {
		t.Fatal("content not base64 encoded")
	}

	if _, err := buildRequests([]string{filepath.Join(dir, "missing.pdf")}, "", q, ""); err == nil {
		t.Fatal("expected error for missing file")
	}
}
