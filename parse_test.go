package studyquiz

import (
	"errors"
	"reflect"
	"testing"
)

const validResponse = `{
  "flashcards": [{"question": "What is osmosis?", "answer": "Diffusion of water across a membrane."}],
  "mcqs": [{"question": "2+2?", "options": ["3", "4"], "correctAnswer": 1}],
  "matchingQuestions": [{"id": "m1", "question": "Match", "leftItems": ["a"], "rightItems": ["b"], "correctMatches": [0]}],
  "trueFalseQuestions": [{"id": "t1", "question": "Water is wet.", "isTrue": true}]
}`

func TestParseResponse_StrictJSON(t *testing.T) {
	demo := MustLoadDemoData()
	got, err := ParseResponse(validResponse, demo)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if len(got.Substituted) != 0 || len(got.Invalid) != 0 {
		t.Fatalf("unexpected fallback: substituted=%v invalid=%v", got.Substituted, got.Invalid)
	}
	if got.Set.Flashcards[0].Question != "What is osmosis?" || got.Set.MCQs[0].CorrectAnswer != 1 {
		t.Fatalf("unexpected set: %+v", got.Set)
	}
}

func TestParseResponse_RecoversFromSurroundingProse(t *testing.T) {
	demo := MustLoadDemoData()
	raw := "Sure! Here is your quiz:\n```json\n" + validResponse + "\n```\nGood luck studying."
	got, err := ParseResponse(raw, demo)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if len(got.Substituted) != 0 {
		t.Fatalf("unexpected substitution: %v", got.Substituted)
	}
	if got.Set.TrueFalseQuestions[0].ID != "t1" {
		t.Fatalf("unexpected true/false: %+v", got.Set.TrueFalseQuestions)
	}
}

func TestParseResponse_Unparseable(t *testing.T) {
	demo := MustLoadDemoData()
	for _, raw := range []string{"", "no json here", "{not: valid", "[1,2,3]"} {
		if _, err := ParseResponse(raw, demo); !errors.Is(err, ErrUnparseable) {
			t.Fatalf("raw=%q expected ErrUnparseable got=%v", raw, err)
		}
	}
}

func TestParseResponse_MissingFieldSubstitutedAlone(t *testing.T) {
	demo := MustLoadDemoData()
	raw := `{"flashcards": [{"question": "q", "answer": "a"}], "matchingQuestions": "oops", "trueFalseQuestions": []}`

	got, err := ParseResponse(raw, demo)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}

	want := []Artifact{ArtifactMCQs, ArtifactMatching}
	if !reflect.DeepEqual(got.Substituted, want) {
		t.Fatalf("substituted got=%v want=%v", got.Substituted, want)
	}
	if !reflect.DeepEqual(got.Set.MCQs, demo.Illustrative().MCQs) {
		t.Fatalf("mcqs should be the illustrative fallback: %+v", got.Set.MCQs)
	}
	if !ValidMCQs(got.Set.MCQs) || !ValidMatching(got.Set.MatchingQuestions) {
		t.Fatalf("fallback must be internally consistent")
	}
	if len(got.Set.Flashcards) != 1 || got.Set.Flashcards[0].Question != "q" {
		t.Fatalf("flashcards should be untouched: %+v", got.Set.Flashcards)
	}
}

func TestParseResponse_TrueFalseWithoutBooleanIsInvalid(t *testing.T) {
	demo := MustLoadDemoData()
	raw := `{"flashcards": [], "mcqs": [], "matchingQuestions": [], "trueFalseQuestions": [{"question": "q", "isTrue": "yes"}]}`
	got, err := ParseResponse(raw, demo)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if !got.Invalid[ArtifactTrueFalse] {
		t.Fatalf("expected trueFalse to be invalid")
	}

	raw = `{"flashcards": [], "mcqs": [], "matchingQuestions": [], "trueFalseQuestions": [{"question": "q"}]}`
	got, err = ParseResponse(raw, demo)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if !got.Invalid[ArtifactTrueFalse] {
		t.Fatalf("expected missing isTrue to be invalid")
	}
}
