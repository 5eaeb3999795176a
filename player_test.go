package studyquiz

import (
	"bytes"
	"encoding/gob"
	"errors"
	"testing"
)

func newTestPlayer() *Player {
	return NewPlayer(MustLoadDemoData().Set())
}

func TestPlayer_CursorsClampAndAreIndependent(t *testing.T) {
	p := newTestPlayer()

	if got := p.Previous(ArtifactMCQs); got != 0 {
		t.Fatalf("previous at start got=%d want=0", got)
	}
	for i := 0; i < 10; i++ {
		p.Next(ArtifactMCQs)
	}
	if got := p.Cursor(ArtifactMCQs); got != len(p.Set.MCQs)-1 {
		t.Fatalf("cursor got=%d want=%d", got, len(p.Set.MCQs)-1)
	}
	if got := p.Cursor(ArtifactFlashcards); got != 0 {
		t.Fatalf("flashcard cursor moved: %d", got)
	}

	empty := NewPlayer(QuestionSet{})
	if got := empty.Next(ArtifactMatching); got != 0 {
		t.Fatalf("empty next got=%d want=0", got)
	}
}

func TestPlayer_AnswerMCQIsOneShot(t *testing.T) {
	p := newTestPlayer()
	q := p.Set.MCQs[0]

	correct, err := p.AnswerMCQ(0, q.CorrectAnswer)
	if err != nil || !correct {
		t.Fatalf("correct=%t err=%v", correct, err)
	}
	if _, err := p.AnswerMCQ(0, (q.CorrectAnswer+1)%len(q.Options)); !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("expected ErrAlreadyAnswered got=%v", err)
	}
	if _, err := p.AnswerMCQ(99, 0); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange got=%v", err)
	}
}

func TestPlayer_AnswerTrueFalse(t *testing.T) {
	p := newTestPlayer()
	q := p.Set.TrueFalseQuestions[1]

	correct, err := p.AnswerTrueFalse(1, !q.IsTrue)
	if err != nil || correct {
		t.Fatalf("correct=%t err=%v", correct, err)
	}
	if _, err := p.AnswerTrueFalse(1, q.IsTrue); !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("expected ErrAlreadyAnswered got=%v", err)
	}

	if err := p.Remount(ArtifactTrueFalse); err != nil {
		t.Fatalf("Remount: %v", err)
	}
	if correct, err := p.AnswerTrueFalse(1, q.IsTrue); err != nil || !correct {
		t.Fatalf("after remount correct=%t err=%v", correct, err)
	}
}

func TestPlayer_MatchingLocksWhenComplete(t *testing.T) {
	p := newTestPlayer()
	m := p.Set.MatchingQuestions[0]

	var st *MatchingState
	var err error
	for left := range m.LeftItems {
		st, err = p.SelectMatch(0, left, m.CorrectMatches[left])
		if err != nil {
			t.Fatalf("SelectMatch: %v", err)
		}
		if left < len(m.LeftItems)-1 && st.Locked {
			t.Fatalf("locked before every item was matched")
		}
	}
	if !st.Locked || !st.Correct || st.CorrectPairs != len(m.LeftItems) {
		t.Fatalf("unexpected state: %+v", st)
	}
	if _, err := p.SelectMatch(0, 0, 1); !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("expected ErrAlreadyAnswered got=%v", err)
	}

	if err := p.ResetMatching(0); err != nil {
		t.Fatalf("ResetMatching: %v", err)
	}
	st, err = p.SelectMatch(0, 0, 1)
	if err != nil || st.Locked {
		t.Fatalf("after reset st=%+v err=%v", st, err)
	}
}

func TestPlayer_MatchingWrongPairs(t *testing.T) {
	set := QuestionSet{MatchingQuestions: []MatchingQuestion{{
		ID: "m", Question: "q",
		LeftItems: []string{"a", "b", "c"}, RightItems: []string{"x", "y", "z"}, CorrectMatches: []int{0, 1, 2},
	}}}
	p := NewPlayer(set)

	p.SelectMatch(0, 0, 1)
	p.SelectMatch(0, 1, 1)
	st := p.Match[0]
	if _, taken := st.Selections[0]; taken {
		t.Fatalf("right item should have moved to left item 1: %+v", st)
	}
	p.SelectMatch(0, 0, 2)
	st, _ = p.SelectMatch(0, 2, 0)
	if !st.Locked || st.Correct || st.CorrectPairs != 1 {
		t.Fatalf("unexpected state: %+v", st)
	}
}

func TestPlayer_Score(t *testing.T) {
	p := newTestPlayer()
	p.AnswerMCQ(0, p.Set.MCQs[0].CorrectAnswer)
	p.AnswerMCQ(1, (p.Set.MCQs[1].CorrectAnswer+1)%len(p.Set.MCQs[1].Options))
	p.AnswerTrueFalse(0, p.Set.TrueFalseQuestions[0].IsTrue)

	s := p.Score()
	if s.MCQs.Answered != 2 || s.MCQs.Correct != 1 {
		t.Fatalf("mcq score: %+v", s.MCQs)
	}
	if s.Answered != 3 || s.Correct != 2 || s.Complete {
		t.Fatalf("score: %+v", s)
	}
	want := len(p.Set.MCQs) + len(p.Set.MatchingQuestions) + len(p.Set.TrueFalseQuestions)
	if s.Total != want {
		t.Fatalf("total got=%d want=%d", s.Total, want)
	}
}

func TestPlayer_GobRoundTrip(t *testing.T) {
	p := newTestPlayer()
	p.Next(ArtifactFlashcards)
	p.AnswerMCQ(2, 0)
	p.SelectMatch(1, 0, 0)

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(p); err != nil {
		t.Fatalf("encode: %v", err)
	}
	var back Player
	if err := gob.NewDecoder(&buf).Decode(&back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.Cursor(ArtifactFlashcards) != 1 || back.MCQ[2] != 0 || back.Match[1].Selections[0] != 0 {
		t.Fatalf("state lost: %+v", back)
	}
}
