package studyquiz

import (
	"math/rand"
	"sync"
	"time"
)

// Shuffler produces Fisher-Yates permutations from a seedable source.
// It is safe for concurrent use.
type Shuffler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewShuffler creates a shuffler seeded from the clock
func NewShuffler() *Shuffler {
	return NewSeededShuffler(time.Now().UnixNano())
}

// NewSeededShuffler creates a deterministic shuffler, mainly for tests
func NewSeededShuffler(seed int64) *Shuffler {
	return &Shuffler{rng: rand.New(rand.NewSource(seed))}
}

// Permutation returns a random ordering of 0..n-1.
// Element i of the result is the original index now placed at position i.
func (s *Shuffler) Permutation(n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := n - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}

// ShuffleMCQ reorders the options of q and moves CorrectAnswer along with the
// correct option. q itself is not modified.
func (s *Shuffler) ShuffleMCQ(q MCQ) MCQ {
	return PermuteMCQ(q, s.Permutation(len(q.Options)))
}

// ShuffleMCQOptions shuffles the options of every question in qs
func (s *Shuffler) ShuffleMCQOptions(qs []MCQ) []MCQ {
	out := make([]MCQ, len(qs))
	for i, q := range qs {
		out[i] = s.ShuffleMCQ(q)
	}
	return out
}

// ShuffleMatching reorders the right column of m and remaps CorrectMatches so
// every left item still points at the same right item text.
func (s *Shuffler) ShuffleMatching(m MatchingQuestion) MatchingQuestion {
	return PermuteMatching(m, s.Permutation(len(m.RightItems)))
}

// PermuteMCQ applies perm to the options of q: new position i holds the option
// that was at perm[i]. An out-of-range CorrectAnswer maps to -1.
func PermuteMCQ(q MCQ, perm []int) MCQ {
	out := MCQ{Question: q.Question, Options: make([]string, len(perm)), CorrectAnswer: -1}
	for i, from := range perm {
		out.Options[i] = q.Options[from]
	}
	out.CorrectAnswer = indexOf(perm, q.CorrectAnswer)
	return out
}

// PermuteMatching applies perm to the right column of m
func PermuteMatching(m MatchingQuestion, perm []int) MatchingQuestion {
	out := cloneMatching(m)
	out.RightItems = make([]string, len(perm))
	for i, from := range perm {
		out.RightItems[i] = m.RightItems[from]
	}
	for i, orig := range m.CorrectMatches {
		out.CorrectMatches[i] = indexOf(perm, orig)
	}
	return out
}

func shuffleSlice[T any](s *Shuffler, items []T) []T {
	perm := s.Permutation(len(items))
	out := make([]T, len(items))
	for i, from := range perm {
		out[i] = items[from]
	}
	return out
}

func indexOf(perm []int, v int) int {
	for i, p := range perm {
		if p == v {
			return i
		}
	}
	return -1
}
