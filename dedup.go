package studyquiz

import "strings"

// dedupLastWins collapses items sharing a key. The surviving item is the last
// occurrence and it keeps the position of that last occurrence.
func dedupLastWins[T any](items []T, key func(T) string) []T {
	last := make(map[string]int, len(items))
	for i, it := range items {
		last[key(it)] = i
	}
	out := make([]T, 0, len(last))
	for i, it := range items {
		if last[key(it)] == i {
			out = append(out, it)
		}
	}
	return out
}

// DedupFlashcards keeps one card per exact question string, last write wins
func DedupFlashcards(cards []Flashcard) []Flashcard {
	return dedupLastWins(cards, func(c Flashcard) string { return c.Question })
}

// DedupTrueFalse keeps one statement per exact question string, last write wins
func DedupTrueFalse(qs []TrueFalseQuestion) []TrueFalseQuestion {
	return dedupLastWins(qs, func(q TrueFalseQuestion) string { return q.Question })
}

func trimFlashcards(cards []Flashcard) []Flashcard {
	out := make([]Flashcard, len(cards))
	for i, c := range cards {
		out[i] = Flashcard{Question: strings.TrimSpace(c.Question), Answer: strings.TrimSpace(c.Answer)}
	}
	return out
}
