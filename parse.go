package studyquiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
)

// outermostObject matches from the first '{' to the last '}'
var outermostObject = regexp.MustCompile(`(?s)\{.*\}`)

// responseFields maps each artifact to its top-level key in the model response
var responseFields = map[Artifact]string{
	ArtifactFlashcards: "flashcards",
	ArtifactMCQs:       "mcqs",
	ArtifactMatching:   "matchingQuestions",
	ArtifactTrueFalse:  "trueFalseQuestions",
}

// ParsedResponse is the typed content recovered from a model response.
// Substituted lists fields that were missing or not arrays and were replaced by
// the illustrative fallback. Invalid lists fields that were arrays but whose
// items could not be decoded; post-processing treats them as failed validation.
type ParsedResponse struct {
	Set         QuestionSet
	Substituted []Artifact
	Invalid     map[Artifact]bool
}

// ExtractJSONObject recovers the JSON object in raw. It first tries the whole
// text, then the outermost {...} substring. It returns ErrUnparseable if both fail.
func ExtractJSONObject(raw string) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &obj); err == nil && obj != nil {
		return obj, nil
	}
	match := outermostObject.FindString(raw)
	if match == "" {
		return nil, ErrUnparseable
	}
	if err := json.Unmarshal([]byte(match), &obj); err != nil || obj == nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	return obj, nil
}

// ParseResponse parses raw model output and validates the shape of each field,
// substituting the illustrative fallback for any field that is missing or not an array.
func ParseResponse(raw string, demo *DemoData) (*ParsedResponse, error) {
	obj, err := ExtractJSONObject(raw)
	if err != nil {
		return nil, err
	}
	return ValidateFields(obj, demo), nil
}

// ValidateFields converts the decoded top-level object into a ParsedResponse
func ValidateFields(obj map[string]json.RawMessage, demo *DemoData) *ParsedResponse {
	out := &ParsedResponse{Invalid: map[Artifact]bool{}}
	fallback := demo.Illustrative()

	for _, a := range Artifacts {
		field, present := obj[responseFields[a]]
		if !present || !isJSONArray(field) {
			out.Substituted = append(out.Substituted, a)
			switch a {
			case ArtifactFlashcards:
				out.Set.Flashcards = fallback.Flashcards
			case ArtifactMCQs:
				out.Set.MCQs = fallback.MCQs
			case ArtifactMatching:
				out.Set.MatchingQuestions = fallback.MatchingQuestions
			case ArtifactTrueFalse:
				out.Set.TrueFalseQuestions = fallback.TrueFalseQuestions
			}
			continue
		}
		if !decodeField(a, field, &out.Set) {
			out.Invalid[a] = true
		}
	}
	return out
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

type trueFalseWire struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	IsTrue   *bool  `json:"isTrue"`
}

// decodeField decodes one array into set. It reports false when items are malformed.
func decodeField(a Artifact, raw json.RawMessage, set *QuestionSet) bool {
	switch a {
	case ArtifactFlashcards:
		return json.Unmarshal(raw, &set.Flashcards) == nil
	case ArtifactMCQs:
		return json.Unmarshal(raw, &set.MCQs) == nil
	case ArtifactMatching:
		return json.Unmarshal(raw, &set.MatchingQuestions) == nil
	case ArtifactTrueFalse:
		var wire []trueFalseWire
		if err := json.Unmarshal(raw, &wire); err != nil {
			return false
		}
		set.TrueFalseQuestions = make([]TrueFalseQuestion, 0, len(wire))
		for _, w := range wire {
			if w.IsTrue == nil {
				return false
			}
			set.TrueFalseQuestions = append(set.TrueFalseQuestions, TrueFalseQuestion{ID: w.ID, Question: w.Question, IsTrue: *w.IsTrue})
		}
		return true
	}
	return false
}
