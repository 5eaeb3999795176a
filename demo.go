package studyquiz

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed demo.yaml
var demoYAML []byte

type demoFile struct {
	Demo         QuestionSet `yaml:"demo"`
	Illustrative QuestionSet `yaml:"illustrative"`
}

// DemoData holds the fixed content substituted when generation fails
type DemoData struct {
	full         QuestionSet
	illustrative QuestionSet
}

// LoadDemoData parses the embedded demo set
func LoadDemoData() (*DemoData, error) {
	return ParseDemoData(demoYAML)
}

// ParseDemoData parses a demo document with "demo" and "illustrative" sections.
// Every list must be non-empty and valid.
func ParseDemoData(data []byte) (*DemoData, error) {
	var f demoFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse demo data: %w", err)
	}
	for name, set := range map[string]QuestionSet{"demo": f.Demo, "illustrative": f.Illustrative} {
		if !ValidFlashcards(set.Flashcards) || !ValidMCQs(set.MCQs) ||
			!ValidMatching(set.MatchingQuestions) || !ValidTrueFalse(set.TrueFalseQuestions) {
			return nil, fmt.Errorf("demo data section %q is incomplete or invalid", name)
		}
	}
	return &DemoData{full: f.Demo, illustrative: f.Illustrative}, nil
}

// MustLoadDemoData panics if the embedded demo set is broken
func MustLoadDemoData() *DemoData {
	d, err := LoadDemoData()
	if err != nil {
		panic(err)
	}
	return d
}

// Set returns a copy of the full demo set
func (d *DemoData) Set() QuestionSet { return cloneSet(d.full) }

func (d *DemoData) Flashcards() []Flashcard { return cloneSet(d.full).Flashcards }
func (d *DemoData) MCQs() []MCQ             { return cloneSet(d.full).MCQs }
func (d *DemoData) Matching() []MatchingQuestion {
	return cloneSet(d.full).MatchingQuestions
}
func (d *DemoData) TrueFalse() []TrueFalseQuestion {
	return cloneSet(d.full).TrueFalseQuestions
}

// Illustrative returns a copy of the one-item stand-ins for individual fields
func (d *DemoData) Illustrative() QuestionSet { return cloneSet(d.illustrative) }

func cloneSet(s QuestionSet) QuestionSet {
	out := QuestionSet{
		Flashcards:         append([]Flashcard{}, s.Flashcards...),
		MCQs:               make([]MCQ, len(s.MCQs)),
		MatchingQuestions:  make([]MatchingQuestion, len(s.MatchingQuestions)),
		TrueFalseQuestions: append([]TrueFalseQuestion{}, s.TrueFalseQuestions...),
	}
	for i, q := range s.MCQs {
		q.Options = append([]string{}, q.Options...)
		out.MCQs[i] = q
	}
	for i, m := range s.MatchingQuestions {
		out.MatchingQuestions[i] = cloneMatching(m)
	}
	return out
}

func cloneMatching(m MatchingQuestion) MatchingQuestion {
	m.LeftItems = append([]string{}, m.LeftItems...)
	m.RightItems = append([]string{}, m.RightItems...)
	m.CorrectMatches = append([]int{}, m.CorrectMatches...)
	return m
}
