package studyquiz

import (
	"fmt"
	"reflect"
	"testing"
)

func newTestPostProcessor(t *testing.T) *PostProcessor {
	t.Helper()
	demo, err := LoadDemoData()
	if err != nil {
		t.Fatalf("LoadDemoData: %v", err)
	}
	return NewPostProcessor(NewSeededShuffler(1), demo)
}

func TestDedupFlashcards_LastWins(t *testing.T) {
	in := []Flashcard{
		{Question: "a", Answer: "1"},
		{Question: "b", Answer: "2"},
		{Question: "a", Answer: "3"},
	}
	got := DedupFlashcards(in)
	want := []Flashcard{{Question: "b", Answer: "2"}, {Question: "a", Answer: "3"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got=%v want=%v", got, want)
	}
}

func TestProcessFlashcards_OneEntryPerQuestion(t *testing.T) {
	p := newTestPostProcessor(t)
	in := []Flashcard{
		{Question: "What is a cell?", Answer: "old"},
		{Question: "What is DNA?", Answer: "acid"},
		{Question: "What is a cell?", Answer: "new"},
		{Question: "What is DNA?", Answer: "acid"},
	}

	got, usedDemo := p.ProcessFlashcards(in)

	if usedDemo {
		t.Fatalf("expected generated cards to survive")
	}
	if len(got) != 2 {
		t.Fatalf("len got=%d want=2", len(got))
	}
	answers := map[string]string{}
	for _, c := range got {
		if _, dup := answers[c.Question]; dup {
			t.Fatalf("duplicate question %q", c.Question)
		}
		answers[c.Question] = c.Answer
	}
	if answers["What is a cell?"] != "new" {
		t.Fatalf("last write should win, got %q", answers["What is a cell?"])
	}
}

func TestProcessFlashcards_InvalidUsesDemo(t *testing.T) {
	p := newTestPostProcessor(t)
	got, usedDemo := p.ProcessFlashcards([]Flashcard{{Question: "q", Answer: " "}})
	if !usedDemo {
		t.Fatalf("expected demo fallback")
	}
	if len(got) != len(p.demo.Flashcards()) {
		t.Fatalf("len got=%d want=%d", len(got), len(p.demo.Flashcards()))
	}
}

func TestProcessMCQs_InvalidReplacesWholeList(t *testing.T) {
	p := newTestPostProcessor(t)
	in := []MCQ{
		{Question: "good", Options: []string{"a", "b", "c"}, CorrectAnswer: 0},
		{Question: "bad", Options: []string{"a", "b"}, CorrectAnswer: 2},
	}
	got, usedDemo := p.ProcessMCQs(in)
	if !usedDemo {
		t.Fatalf("expected demo fallback")
	}
	if !reflect.DeepEqual(got, p.demo.MCQs()) {
		t.Fatalf("expected the demo MCQs in order, got=%v", got)
	}
}

func TestProcessMCQs_SingleOptionIsInvalid(t *testing.T) {
	p := newTestPostProcessor(t)
	_, usedDemo := p.ProcessMCQs([]MCQ{{Question: "q", Options: []string{"only"}, CorrectAnswer: 0}})
	if !usedDemo {
		t.Fatalf("expected demo fallback for a single option question")
	}
}

func TestProcessMatching_MisalignedUsesDemo(t *testing.T) {
	p := newTestPostProcessor(t)
	in := []MatchingQuestion{{Question: "m", LeftItems: []string{"a", "b"}, RightItems: []string{"x"}, CorrectMatches: []int{0, 0}}}
	got, usedDemo := p.ProcessMatching(in)
	if !usedDemo || len(got) != len(p.demo.Matching()) {
		t.Fatalf("expected demo matching, usedDemo=%t len=%d", usedDemo, len(got))
	}
}

func TestProcessMatching_AssignsIDs(t *testing.T) {
	p := newTestPostProcessor(t)
	in := []MatchingQuestion{{Question: "m", LeftItems: []string{"a", "b"}, RightItems: []string{"x", "y"}, CorrectMatches: []int{1, 0}}}
	got, usedDemo := p.ProcessMatching(in)
	if usedDemo {
		t.Fatalf("unexpected demo fallback")
	}
	if got[0].ID == "" {
		t.Fatalf("expected an id to be assigned")
	}
	if got[0].RightItems[got[0].CorrectMatches[0]] != "y" {
		t.Fatalf("pair a->y lost: %+v", got[0])
	}
}

func TestProcessTrueFalse_RebalancesSkewedSet(t *testing.T) {
	p := newTestPostProcessor(t)
	var in []TrueFalseQuestion
	for i := 0; i < 9; i++ {
		in = append(in, TrueFalseQuestion{ID: fmt.Sprintf("t%d", i), Question: fmt.Sprintf("true statement %d", i), IsTrue: true})
	}
	in = append(in, TrueFalseQuestion{ID: "f0", Question: "false statement", IsTrue: false})

	got, usedDemo := p.ProcessTrueFalse(in)

	if usedDemo {
		t.Fatalf("unexpected demo fallback")
	}
	if len(got) != 12 {
		t.Fatalf("len got=%d want=12", len(got))
	}
	falses := 0
	seen := map[string]bool{}
	for _, q := range got {
		if seen[q.Question] {
			t.Fatalf("duplicate statement %q", q.Question)
		}
		seen[q.Question] = true
		if !q.IsTrue {
			falses++
		}
	}
	if falses != 3 {
		t.Fatalf("falses got=%d want=3 (minority value topped up first)", falses)
	}
}

func TestProcessTrueFalse_BalancedSetUntouched(t *testing.T) {
	p := newTestPostProcessor(t)
	in := []TrueFalseQuestion{
		{ID: "1", Question: "a", IsTrue: true},
		{ID: "2", Question: "b", IsTrue: false},
		{ID: "3", Question: "c", IsTrue: true},
	}
	got, _ := p.ProcessTrueFalse(in)
	if len(got) != 3 {
		t.Fatalf("len got=%d want=3", len(got))
	}
}

func TestProcessTrueFalse_DoesNotDuplicateDemoItems(t *testing.T) {
	p := newTestPostProcessor(t)
	in := []TrueFalseQuestion{
		{Question: "Water boils at 100 degrees Celsius at sea level.", IsTrue: true},
		{Question: "The sun revolves around the Earth.", IsTrue: true},
		{Question: "Sound travels faster than light.", IsTrue: true},
		{Question: "Spiders are insects.", IsTrue: true},
	}
	got, _ := p.ProcessTrueFalse(in)
	seen := map[string]bool{}
	for _, q := range got {
		if seen[q.Question] {
			t.Fatalf("duplicate statement %q", q.Question)
		}
		seen[q.Question] = true
		if q.ID == "" {
			t.Fatalf("statement without id: %q", q.Question)
		}
	}
	if len(got) != 6 {
		t.Fatalf("len got=%d want=6", len(got))
	}
}

func TestValidators_AreIdempotent(t *testing.T) {
	cards := []Flashcard{{Question: "q", Answer: "a"}, {Question: "", Answer: "a"}}
	mcqs := []MCQ{{Question: "q", Options: []string{"a", "b"}, CorrectAnswer: 1}}
	tf := []TrueFalseQuestion{{Question: "q", IsTrue: true}}

	before := []Flashcard{cards[0], cards[1]}
	if ValidFlashcards(cards) != ValidFlashcards(cards) || !reflect.DeepEqual(cards, before) {
		t.Fatalf("flashcard validator not pure")
	}
	if ValidMCQs(mcqs) != ValidMCQs(mcqs) || mcqs[0].CorrectAnswer != 1 {
		t.Fatalf("mcq validator not pure")
	}
	if ValidTrueFalse(tf) != ValidTrueFalse(tf) {
		t.Fatalf("true/false validator not pure")
	}
	if ValidFlashcards(nil) || ValidMCQs(nil) || ValidMatching(nil) || ValidTrueFalse(nil) {
		t.Fatalf("empty lists must be invalid")
	}
}

func TestProcess_ReportsReplacedFields(t *testing.T) {
	p := newTestPostProcessor(t)
	set := QuestionSet{
		Flashcards:         []Flashcard{{Question: "q", Answer: "a"}},
		MCQs:               []MCQ{{Question: "q", Options: []string{"a", "b"}, CorrectAnswer: 0}},
		MatchingQuestions:  []MatchingQuestion{{Question: "m", LeftItems: []string{"a"}, RightItems: []string{"x"}, CorrectMatches: []int{0}}},
		TrueFalseQuestions: []TrueFalseQuestion{{Question: "t", IsTrue: true}, {Question: "f", IsTrue: false}},
	}

	out, replaced := p.Process(set, map[Artifact]bool{ArtifactMCQs: true})

	if !reflect.DeepEqual(replaced, []Artifact{ArtifactMCQs}) {
		t.Fatalf("replaced got=%v want=[mcqs]", replaced)
	}
	if len(out.Flashcards) != 1 || out.Flashcards[0].Question != "q" {
		t.Fatalf("flashcards should be untouched: %v", out.Flashcards)
	}
	if len(out.MCQs) != len(p.demo.MCQs()) {
		t.Fatalf("mcqs should be demo, got %d items", len(out.MCQs))
	}
}
