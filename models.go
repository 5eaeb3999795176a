package studyquiz

import "errors"

// Flashcard is a single question/answer study card
type Flashcard struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// MCQ is a multiple choice question. CorrectAnswer is a 0-based index into Options.
type MCQ struct {
	Question      string   `json:"question" yaml:"question"`
	Options       []string `json:"options" yaml:"options"`
	CorrectAnswer int      `json:"correctAnswer" yaml:"correctAnswer"`
}

// MatchingQuestion pairs every left item with one right item.
// CorrectMatches[i] is the index into RightItems that LeftItems[i] belongs to.
type MatchingQuestion struct {
	ID             string   `json:"id" yaml:"id"`
	Question       string   `json:"question" yaml:"question"`
	LeftItems      []string `json:"leftItems" yaml:"leftItems"`
	RightItems     []string `json:"rightItems" yaml:"rightItems"`
	CorrectMatches []int    `json:"correctMatches" yaml:"correctMatches"`
}

// TrueFalseQuestion is a statement the player marks as true or false
type TrueFalseQuestion struct {
	ID       string `json:"id" yaml:"id"`
	Question string `json:"question" yaml:"question"`
	IsTrue   bool   `json:"isTrue" yaml:"isTrue"`
}

// QuestionSet is everything produced by one generation call
type QuestionSet struct {
	Flashcards         []Flashcard         `json:"flashcards" yaml:"flashcards"`
	MCQs               []MCQ               `json:"mcqs" yaml:"mcqs"`
	MatchingQuestions  []MatchingQuestion  `json:"matchingQuestions" yaml:"matchingQuestions"`
	TrueFalseQuestions []TrueFalseQuestion `json:"trueFalseQuestions" yaml:"trueFalseQuestions"`
}

// Concat appends other after s and returns the combined set. Neither input is modified.
func (s QuestionSet) Concat(other QuestionSet) QuestionSet {
	return QuestionSet{
		Flashcards:         append(append([]Flashcard{}, s.Flashcards...), other.Flashcards...),
		MCQs:               append(append([]MCQ{}, s.MCQs...), other.MCQs...),
		MatchingQuestions:  append(append([]MatchingQuestion{}, s.MatchingQuestions...), other.MatchingQuestions...),
		TrueFalseQuestions: append(append([]TrueFalseQuestion{}, s.TrueFalseQuestions...), other.TrueFalseQuestions...),
	}
}

// Artifact names one of the four generated content types
type Artifact string

const (
	ArtifactFlashcards Artifact = "flashcards"
	ArtifactMCQs       Artifact = "mcqs"
	ArtifactMatching   Artifact = "matching"
	ArtifactTrueFalse  Artifact = "trueFalse"
)

// Artifacts lists every artifact in presentation order
var Artifacts = []Artifact{ArtifactFlashcards, ArtifactMCQs, ArtifactMatching, ArtifactTrueFalse}

// ParseArtifact accepts the artifact name or the response field name
func ParseArtifact(s string) (Artifact, error) {
	switch s {
	case "flashcards":
		return ArtifactFlashcards, nil
	case "mcqs", "mcq":
		return ArtifactMCQs, nil
	case "matching", "matchingQuestions":
		return ArtifactMatching, nil
	case "trueFalse", "truefalse", "trueFalseQuestions":
		return ArtifactTrueFalse, nil
	}
	return "", errors.New("unknown artifact: " + s)
}

// Quantities is the requested number of items per artifact
type Quantities struct {
	Flashcards int `json:"flashcards" yaml:"flashcards"`
	MCQs       int `json:"mcqs" yaml:"mcqs"`
	Matching   int `json:"matching" yaml:"matching"`
	TrueFalse  int `json:"trueFalse" yaml:"trueFalse"`
}

// DefaultQuantities are used for any count that is not positive
var DefaultQuantities = Quantities{Flashcards: 5, MCQs: 5, Matching: 2, TrueFalse: 5}

// WithDefaults fills non-positive counts from DefaultQuantities
func (q Quantities) WithDefaults() Quantities {
	if q.Flashcards <= 0 {
		q.Flashcards = DefaultQuantities.Flashcards
	}
	if q.MCQs <= 0 {
		q.MCQs = DefaultQuantities.MCQs
	}
	if q.Matching <= 0 {
		q.Matching = DefaultQuantities.Matching
	}
	if q.TrueFalse <= 0 {
		q.TrueFalse = DefaultQuantities.TrueFalse
	}
	return q
}

// GenerationRequest mirrors the body of the generate-questions endpoint.
// FileContent is either raw text or a base64 data URI.
type GenerationRequest struct {
	FileContent  string      `json:"fileContent"`
	FileName     string      `json:"fileName"`
	FileType     string      `json:"fileType"`
	Quantities   *Quantities `json:"quantities,omitempty"`
	CustomPrompt string      `json:"customPrompt,omitempty"`
}

// GenerationMeta describes how a Result was produced
type GenerationMeta struct {
	FileName    string     `json:"fileName,omitempty"`
	Truncated   bool       `json:"truncated"`
	Cached      bool       `json:"cached"`
	Demo        bool       `json:"demo"`
	Substituted []Artifact `json:"substituted,omitempty"`
}

// Result is the output of one generation
type Result struct {
	Set  QuestionSet    `json:"set"`
	Meta GenerationMeta `json:"meta"`
}

var (
	// ErrUnparseable means neither parse attempt recovered a JSON object
	ErrUnparseable = errors.New("response is not parseable JSON")
	// ErrDegraded is returned under the atomic fallback policy instead of demo content
	ErrDegraded = errors.New("generation degraded to fallback content")
	// ErrEmptyContent means there was nothing to generate from
	ErrEmptyContent = errors.New("no content to generate from")
	// ErrInvalidContent means fileContent looked like a data URI but could not be decoded
	ErrInvalidContent = errors.New("invalid file content")
)
