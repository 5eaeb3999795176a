package studyquiz

import (
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// maxTrueFalseTopUp bounds how many demo statements rebalancing may add
const maxTrueFalseTopUp = 2

// ValidFlashcards reports whether cards is non-empty and every card has a question and an answer
func ValidFlashcards(cards []Flashcard) bool {
	if len(cards) == 0 {
		return false
	}
	for _, c := range cards {
		if strings.TrimSpace(c.Question) == "" || strings.TrimSpace(c.Answer) == "" {
			return false
		}
	}
	return true
}

// ValidMCQs reports whether qs is non-empty and every question has at least two
// options and an in-range correct answer
func ValidMCQs(qs []MCQ) bool {
	if len(qs) == 0 {
		return false
	}
	for _, q := range qs {
		if strings.TrimSpace(q.Question) == "" || len(q.Options) < 2 {
			return false
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return false
		}
	}
	return true
}

// ValidMatching reports whether ms is non-empty and every question has aligned
// columns whose matches all index into the right column
func ValidMatching(ms []MatchingQuestion) bool {
	if len(ms) == 0 {
		return false
	}
	for _, m := range ms {
		n := len(m.LeftItems)
		if n == 0 || len(m.RightItems) != n || len(m.CorrectMatches) != n {
			return false
		}
		for _, idx := range m.CorrectMatches {
			if idx < 0 || idx >= n {
				return false
			}
		}
	}
	return true
}

// ValidTrueFalse reports whether qs is non-empty and every statement has text
func ValidTrueFalse(qs []TrueFalseQuestion) bool {
	if len(qs) == 0 {
		return false
	}
	for _, q := range qs {
		if strings.TrimSpace(q.Question) == "" {
			return false
		}
	}
	return true
}

// TrueFalseSkewed reports whether the true/false split differs by more than half the set
func TrueFalseSkewed(qs []TrueFalseQuestion) bool {
	trues := 0
	for _, q := range qs {
		if q.IsTrue {
			trues++
		}
	}
	falses := len(qs) - trues
	return math.Abs(float64(trues-falses)) > float64(len(qs))/2
}

// PostProcessor applies de-duplication, validation, shuffling and demo fallback
// to each artifact list
type PostProcessor struct {
	shuffler *Shuffler
	demo     *DemoData
}

// NewPostProcessor creates a post-processor
func NewPostProcessor(shuffler *Shuffler, demo *DemoData) *PostProcessor {
	return &PostProcessor{shuffler: shuffler, demo: demo}
}

// ProcessFlashcards de-duplicates by question, validates, then shuffles.
// If validation fails the whole demo flashcard set is returned and usedDemo is true.
func (p *PostProcessor) ProcessFlashcards(cards []Flashcard) (out []Flashcard, usedDemo bool) {
	cards = DedupFlashcards(trimFlashcards(cards))
	if !ValidFlashcards(cards) {
		return p.demo.Flashcards(), true
	}
	return shuffleSlice(p.shuffler, cards), false
}

// ProcessMCQs shuffles the options of every question and validates the result.
// Any invalid question replaces the entire list with the demo set.
func (p *PostProcessor) ProcessMCQs(qs []MCQ) (out []MCQ, usedDemo bool) {
	shuffled := p.shuffler.ShuffleMCQOptions(qs)
	if !ValidMCQs(shuffled) {
		return p.demo.MCQs(), true
	}
	return shuffled, false
}

// ProcessMatching shuffles the right column of every question and remaps its
// matches. Any invalid question replaces the entire list with the demo set.
func (p *PostProcessor) ProcessMatching(ms []MatchingQuestion) (out []MatchingQuestion, usedDemo bool) {
	if !ValidMatching(ms) {
		return p.demo.Matching(), true
	}
	out = make([]MatchingQuestion, len(ms))
	for i, m := range ms {
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		out[i] = p.shuffler.ShuffleMatching(m)
	}
	if !ValidMatching(out) {
		return p.demo.Matching(), true
	}
	return out, false
}

// ProcessTrueFalse de-duplicates and validates the statements, tops up a skewed
// set with up to two demo statements, then de-duplicates and shuffles again.
func (p *PostProcessor) ProcessTrueFalse(qs []TrueFalseQuestion) (out []TrueFalseQuestion, usedDemo bool) {
	qs = DedupTrueFalse(qs)
	if !ValidTrueFalse(qs) {
		return p.demo.TrueFalse(), true
	}
	for i := range qs {
		if qs[i].ID == "" {
			qs[i].ID = uuid.NewString()
		}
	}
	if TrueFalseSkewed(qs) {
		qs = append(qs, p.topUpTrueFalse(qs)...)
		qs = DedupTrueFalse(qs)
	}
	return shuffleSlice(p.shuffler, qs), false
}

// topUpTrueFalse picks demo statements not already present, minority value first
func (p *PostProcessor) topUpTrueFalse(qs []TrueFalseQuestion) []TrueFalseQuestion {
	seen := make(map[string]bool, len(qs))
	trues := 0
	for _, q := range qs {
		seen[q.Question] = true
		if q.IsTrue {
			trues++
		}
	}
	minority := trues < len(qs)-trues

	var candidates []TrueFalseQuestion
	for _, d := range p.demo.TrueFalse() {
		if !seen[d.Question] {
			candidates = append(candidates, d)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].IsTrue == minority && candidates[j].IsTrue != minority
	})
	if len(candidates) > maxTrueFalseTopUp {
		candidates = candidates[:maxTrueFalseTopUp]
	}
	return candidates
}

// Process runs every post-processor over set. Lists named in invalid skip
// straight to the demo fallback. The returned artifacts were replaced by demo content.
func (p *PostProcessor) Process(set QuestionSet, invalid map[Artifact]bool) (QuestionSet, []Artifact) {
	var out QuestionSet
	var replaced []Artifact
	var demo bool

	if invalid[ArtifactFlashcards] {
		out.Flashcards, demo = p.demo.Flashcards(), true
	} else {
		out.Flashcards, demo = p.ProcessFlashcards(set.Flashcards)
	}
	if demo {
		replaced = append(replaced, ArtifactFlashcards)
	}

	if invalid[ArtifactMCQs] {
		out.MCQs, demo = p.demo.MCQs(), true
	} else {
		out.MCQs, demo = p.ProcessMCQs(set.MCQs)
	}
	if demo {
		replaced = append(replaced, ArtifactMCQs)
	}

	if invalid[ArtifactMatching] {
		out.MatchingQuestions, demo = p.demo.Matching(), true
	} else {
		out.MatchingQuestions, demo = p.ProcessMatching(set.MatchingQuestions)
	}
	if demo {
		replaced = append(replaced, ArtifactMatching)
	}

	if invalid[ArtifactTrueFalse] {
		out.TrueFalseQuestions, demo = p.demo.TrueFalse(), true
	} else {
		out.TrueFalseQuestions, demo = p.ProcessTrueFalse(set.TrueFalseQuestions)
	}
	if demo {
		replaced = append(replaced, ArtifactTrueFalse)
	}

	return out, replaced
}
