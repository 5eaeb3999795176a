package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"studyquiz"
)

const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

type terminal struct {
	in  *bufio.Scanner
	out io.Writer
}

// ask prints prompt and returns the next trimmed line; ok is false at end of input
func (t *terminal) ask(prompt string) (string, bool) {
	fmt.Fprint(t.out, prompt)
	if !t.in.Scan() {
		fmt.Fprintln(t.out)
		return "", false
	}
	return strings.TrimSpace(t.in.Text()), true
}

// askLetter repeats until the answer is one of the first n letters
func (t *terminal) askLetter(prompt string, n int) (int, bool) {
	n = min(n, len(letters))
	for {
		ans, ok := t.ask(prompt)
		if !ok {
			return 0, false
		}
		if len(ans) == 1 {
			if i := strings.Index(letters[:n], strings.ToUpper(ans)); i >= 0 {
				return i, true
			}
		}
		fmt.Fprintf(t.out, "Please enter a letter from A to %c\n", letters[n-1])
	}
}

// play walks the set on a terminal and returns the final score
func play(in io.Reader, out io.Writer, set studyquiz.QuestionSet) studyquiz.Score {
	t := &terminal{in: bufio.NewScanner(in), out: out}
	p := studyquiz.NewPlayer(set)

	fmt.Fprintf(out, "🎯 %d flashcards, %d multiple choice, %d matching, %d true/false\n\n",
		len(set.Flashcards), len(set.MCQs), len(set.MatchingQuestions), len(set.TrueFalseQuestions))

	if playFlashcards(t, p) && playMCQs(t, p) && playTrueFalse(t, p) {
		playMatching(t, p)
	}

	score := p.Score()
	fmt.Fprintln(out, "🎉 Quiz completed!")
	if score.Total > 0 {
		fmt.Fprintf(out, "🏆 %d/%d correct (%.1f%%)\n", score.Correct, score.Total, float64(score.Correct)/float64(score.Total)*100)
	}
	return score
}

func playFlashcards(t *terminal, p *studyquiz.Player) bool {
	cards := p.Set.Flashcards
	for i, c := range cards {
		fmt.Fprintf(t.out, "Flashcard %d/%d: %s\n", i+1, len(cards), c.Question)
		if _, ok := t.ask("Press Enter to flip "); !ok {
			return false
		}
		p.Flip(i)
		fmt.Fprintf(t.out, "💡 %s\n\n", c.Answer)
		p.Next(studyquiz.ArtifactFlashcards)
	}
	return true
}

func playMCQs(t *terminal, p *studyquiz.Player) bool {
	qs := p.Set.MCQs
	for i, q := range qs {
		fmt.Fprintf(t.out, "Question %d/%d:\n%s\n\n", i+1, len(qs), q.Question)
		for j, opt := range q.Options[:min(len(q.Options), len(letters))] {
			fmt.Fprintf(t.out, "%c) %s\n", letters[j], opt)
		}
		choice, ok := t.askLetter("Your answer: ", len(q.Options))
		if !ok {
			return false
		}
		correct, err := p.AnswerMCQ(i, choice)
		switch {
		case err != nil:
			fmt.Fprintf(t.out, "⚠️ %v\n", err)
		case correct:
			fmt.Fprintln(t.out, "✅ Correct!")
		default:
			fmt.Fprintf(t.out, "❌ Incorrect. The correct answer is %c) %s\n", letters[q.CorrectAnswer], q.Options[q.CorrectAnswer])
		}
		fmt.Fprintln(t.out)
		p.Next(studyquiz.ArtifactMCQs)
	}
	return true
}

func playTrueFalse(t *terminal, p *studyquiz.Player) bool {
	qs := p.Set.TrueFalseQuestions
	for i, q := range qs {
		fmt.Fprintf(t.out, "True or false %d/%d: %s\n", i+1, len(qs), q.Question)
		var value bool
		for {
			ans, ok := t.ask("(t/f): ")
			if !ok {
				return false
			}
			switch strings.ToLower(ans) {
			case "t", "true":
				value = true
			case "f", "false":
				value = false
			default:
				fmt.Fprintln(t.out, "Please enter t or f")
				continue
			}
			break
		}
		correct, err := p.AnswerTrueFalse(i, value)
		switch {
		case err != nil:
			fmt.Fprintf(t.out, "⚠️ %v\n", err)
		case correct:
			fmt.Fprintln(t.out, "✅ Correct!")
		default:
			fmt.Fprintf(t.out, "❌ Incorrect. The statement is %t\n", q.IsTrue)
		}
		fmt.Fprintln(t.out)
		p.Next(studyquiz.ArtifactTrueFalse)
	}
	return true
}

func playMatching(t *terminal, p *studyquiz.Player) bool {
	ms := p.Set.MatchingQuestions
	for i, m := range ms {
		fmt.Fprintf(t.out, "Matching %d/%d: %s\n", i+1, len(ms), m.Question)
		for j, r := range m.RightItems[:min(len(m.RightItems), len(letters))] {
			fmt.Fprintf(t.out, "  %c) %s\n", letters[j], r)
		}
		var st *studyquiz.MatchingState
		for l, left := range m.LeftItems {
			right, ok := t.askLetter(fmt.Sprintf("%d. %s -> ", l+1, left), len(m.RightItems))
			if !ok {
				return false
			}
			var err error
			if st, err = p.SelectMatch(i, l, right); err != nil {
				fmt.Fprintf(t.out, "⚠️ %v\n", err)
			}
		}
		// a right item chosen twice moves, leaving an earlier left item unmatched
		if st == nil || !st.Locked {
			fmt.Fprintln(t.out, "❌ Not every item was matched.")
		} else if st.Correct {
			fmt.Fprintln(t.out, "✅ All pairs correct!")
		} else {
			fmt.Fprintf(t.out, "❌ %d/%d pairs correct\n", st.CorrectPairs, len(m.LeftItems))
			for l, left := range m.LeftItems {
				fmt.Fprintf(t.out, "  %s -> %s\n", left, m.RightItems[m.CorrectMatches[l]])
			}
		}
		fmt.Fprintln(t.out)
		p.Next(studyquiz.ArtifactMatching)
	}
	return true
}
