package studyquiz

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyAnswered is returned when a one-shot question is answered twice
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrOutOfRange is returned for an index outside the artifact list or question
	ErrOutOfRange = errors.New("index out of range")
)

// MatchingState tracks one matching question while it is being played
type MatchingState struct {
	// Selections maps a left item index to the chosen right item index
	Selections map[int]int `json:"selections"`
	Locked     bool        `json:"locked"`
	Correct    bool        `json:"correct"`
	// CorrectPairs counts matching selections once locked
	CorrectPairs int `json:"correctPairs"`
}

// Player walks through a question set. Every artifact has its own cursor;
// MCQ and true/false answers are one-shot and matching questions lock once
// every left item has a match. Player is not safe for concurrent use.
type Player struct {
	Set     QuestionSet            `json:"set"`
	Cursors map[Artifact]int       `json:"cursors"`
	Flipped map[int]bool           `json:"flipped"`
	MCQ     map[int]int            `json:"mcqAnswers"`
	TF      map[int]bool           `json:"trueFalseAnswers"`
	Match   map[int]*MatchingState `json:"matching"`
}

// NewPlayer starts a player positioned at the first item of every artifact
func NewPlayer(set QuestionSet) *Player {
	p := &Player{Set: set}
	p.init()
	return p
}

func (p *Player) init() {
	if p.Cursors == nil {
		p.Cursors = map[Artifact]int{}
	}
	if p.Flipped == nil {
		p.Flipped = map[int]bool{}
	}
	if p.MCQ == nil {
		p.MCQ = map[int]int{}
	}
	if p.TF == nil {
		p.TF = map[int]bool{}
	}
	if p.Match == nil {
		p.Match = map[int]*MatchingState{}
	}
}

// Len returns the number of items of an artifact
func (p *Player) Len(a Artifact) int {
	switch a {
	case ArtifactFlashcards:
		return len(p.Set.Flashcards)
	case ArtifactMCQs:
		return len(p.Set.MCQs)
	case ArtifactMatching:
		return len(p.Set.MatchingQuestions)
	case ArtifactTrueFalse:
		return len(p.Set.TrueFalseQuestions)
	}
	return 0
}

// Cursor returns the current index for an artifact
func (p *Player) Cursor(a Artifact) int {
	p.init()
	return p.Cursors[a]
}

// Next advances the cursor, stopping at the last item
func (p *Player) Next(a Artifact) int {
	p.init()
	if c := p.Cursors[a]; c < p.Len(a)-1 {
		p.Cursors[a] = c + 1
	}
	return p.Cursors[a]
}

// Previous moves the cursor back, stopping at the first item
func (p *Player) Previous(a Artifact) int {
	p.init()
	if c := p.Cursors[a]; c > 0 {
		p.Cursors[a] = c - 1
	}
	return p.Cursors[a]
}

// Flip toggles whether a flashcard shows its answer
func (p *Player) Flip(index int) (bool, error) {
	p.init()
	if index < 0 || index >= len(p.Set.Flashcards) {
		return false, ErrOutOfRange
	}
	p.Flipped[index] = !p.Flipped[index]
	return p.Flipped[index], nil
}

// AnswerMCQ records the chosen option and reports whether it is correct
func (p *Player) AnswerMCQ(index, option int) (bool, error) {
	p.init()
	if index < 0 || index >= len(p.Set.MCQs) {
		return false, ErrOutOfRange
	}
	q := p.Set.MCQs[index]
	if option < 0 || option >= len(q.Options) {
		return false, ErrOutOfRange
	}
	if _, done := p.MCQ[index]; done {
		return false, ErrAlreadyAnswered
	}
	p.MCQ[index] = option
	return option == q.CorrectAnswer, nil
}

// AnswerTrueFalse records the chosen value and reports whether it is correct
func (p *Player) AnswerTrueFalse(index int, value bool) (bool, error) {
	p.init()
	if index < 0 || index >= len(p.Set.TrueFalseQuestions) {
		return false, ErrOutOfRange
	}
	if _, done := p.TF[index]; done {
		return false, ErrAlreadyAnswered
	}
	p.TF[index] = value
	return value == p.Set.TrueFalseQuestions[index].IsTrue, nil
}

// SelectMatch pairs a left item with a right item. A right item can belong to
// one left item at a time; choosing it again moves it. When every left item is
// paired the question locks and its correctness is computed.
func (p *Player) SelectMatch(index, left, right int) (*MatchingState, error) {
	p.init()
	if index < 0 || index >= len(p.Set.MatchingQuestions) {
		return nil, ErrOutOfRange
	}
	m := p.Set.MatchingQuestions[index]
	if left < 0 || left >= len(m.LeftItems) || right < 0 || right >= len(m.RightItems) {
		return nil, ErrOutOfRange
	}

	st := p.Match[index]
	if st == nil {
		st = &MatchingState{Selections: map[int]int{}}
		p.Match[index] = st
	}
	if st.Locked {
		return st, ErrAlreadyAnswered
	}

	for l, r := range st.Selections {
		if r == right && l != left {
			delete(st.Selections, l)
		}
	}
	st.Selections[left] = right

	if len(st.Selections) == len(m.LeftItems) {
		st.Locked = true
		st.CorrectPairs = 0
		for l, r := range st.Selections {
			if l < len(m.CorrectMatches) && m.CorrectMatches[l] == r {
				st.CorrectPairs++
			}
		}
		st.Correct = st.CorrectPairs == len(m.LeftItems)
	}
	return st, nil
}

// ResetMatching clears a matching question so it can be tried again
func (p *Player) ResetMatching(index int) error {
	p.init()
	if index < 0 || index >= len(p.Set.MatchingQuestions) {
		return ErrOutOfRange
	}
	delete(p.Match, index)
	return nil
}

// Remount discards every answer of one artifact and rewinds its cursor,
// as happens when the player leaves an artifact and comes back.
func (p *Player) Remount(a Artifact) error {
	p.init()
	switch a {
	case ArtifactFlashcards:
		p.Flipped = map[int]bool{}
	case ArtifactMCQs:
		p.MCQ = map[int]int{}
	case ArtifactMatching:
		p.Match = map[int]*MatchingState{}
	case ArtifactTrueFalse:
		p.TF = map[int]bool{}
	default:
		return fmt.Errorf("unknown artifact %q", a)
	}
	p.Cursors[a] = 0
	return nil
}

// ArtifactScore is progress on one artifact
type ArtifactScore struct {
	Total    int `json:"total"`
	Answered int `json:"answered"`
	Correct  int `json:"correct"`
}

// Score summarises progress across the gradable artifacts
type Score struct {
	MCQs      ArtifactScore `json:"mcqs"`
	Matching  ArtifactScore `json:"matching"`
	TrueFalse ArtifactScore `json:"trueFalse"`
	Total     int           `json:"total"`
	Answered  int           `json:"answered"`
	Correct   int           `json:"correct"`
	Complete  bool          `json:"complete"`
}

// Score computes the current score
func (p *Player) Score() Score {
	p.init()
	var s Score

	s.MCQs.Total = len(p.Set.MCQs)
	for i, opt := range p.MCQ {
		s.MCQs.Answered++
		if i < len(p.Set.MCQs) && p.Set.MCQs[i].CorrectAnswer == opt {
			s.MCQs.Correct++
		}
	}

	s.TrueFalse.Total = len(p.Set.TrueFalseQuestions)
	for i, v := range p.TF {
		s.TrueFalse.Answered++
		if i < len(p.Set.TrueFalseQuestions) && p.Set.TrueFalseQuestions[i].IsTrue == v {
			s.TrueFalse.Correct++
		}
	}

	s.Matching.Total = len(p.Set.MatchingQuestions)
	for _, st := range p.Match {
		if !st.Locked {
			continue
		}
		s.Matching.Answered++
		if st.Correct {
			s.Matching.Correct++
		}
	}

	for _, a := range []ArtifactScore{s.MCQs, s.Matching, s.TrueFalse} {
		s.Total += a.Total
		s.Answered += a.Answered
		s.Correct += a.Correct
	}
	s.Complete = s.Total > 0 && s.Answered == s.Total
	return s
}
