package studyquiz

import (
	"fmt"
	"strings"
)

// DefaultMaxContentChars caps how much extracted text is sent to the model
const DefaultMaxContentChars = 12000

// responseSchemaExample is embedded in every prompt. The parser relies on these field names.
const responseSchemaExample = `{
  "flashcards": [
    {"question": "What is photosynthesis?", "answer": "The process plants use to turn light, water and carbon dioxide into glucose and oxygen."}
  ],
  "mcqs": [
    {"question": "Which gas do plants release during photosynthesis?", "options": ["Nitrogen", "Oxygen", "Carbon dioxide", "Hydrogen"], "correctAnswer": 1}
  ],
  "matchingQuestions": [
    {
      "id": "matching-1",
      "question": "Match each organelle with its function",
      "leftItems": ["Chloroplast", "Mitochondrion", "Nucleus"],
      "rightItems": ["Photosynthesis", "Cellular respiration", "Stores genetic material"],
      "correctMatches": [0, 1, 2]
    }
  ],
  "trueFalseQuestions": [
    {"id": "tf-1", "question": "Photosynthesis takes place in the chloroplasts.", "isTrue": true}
  ]
}`

// PromptInput is everything the prompt depends on
type PromptInput struct {
	Content      string
	Truncated    bool
	FileName     string
	FileType     string
	Quantities   Quantities
	CustomPrompt string
}

// TruncateContent cuts text to at most max runes and reports whether anything was removed.
// A non-positive max uses DefaultMaxContentChars.
func TruncateContent(text string, max int) (string, bool) {
	if max <= 0 {
		max = DefaultMaxContentChars
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text, false
	}
	return string(runes[:max]), true
}

// BuildPrompt assembles the generation instruction for one document
func BuildPrompt(in PromptInput) string {
	q := in.Quantities.WithDefaults()
	var sb strings.Builder

	sb.WriteString("You are an expert teacher creating study material from a student's document.\n\n")

	sb.WriteString("Create the following from the content below:\n")
	sb.WriteString(fmt.Sprintf("- %d flashcards\n", q.Flashcards))
	sb.WriteString(fmt.Sprintf("- %d multiple choice questions with exactly 4 options each\n", q.MCQs))
	sb.WriteString(fmt.Sprintf("- %d matching questions with 3 to 5 pairs each\n", q.Matching))
	sb.WriteString(fmt.Sprintf("- %d true/false statements with a balanced mix of true and false\n\n", q.TrueFalse))

	sb.WriteString("Requirements:\n")
	sb.WriteString("- Ask only about the subject matter of the content. Do NOT ask about the document itself (its title, file name, format, author, length or structure)\n")
	sb.WriteString("- correctAnswer is the 0-based index of the correct option\n")
	sb.WriteString("- leftItems, rightItems and correctMatches have the same length; correctMatches[i] is the index in rightItems that matches leftItems[i]\n")
	sb.WriteString("- isTrue is a JSON boolean\n")
	sb.WriteString("- Every question must be answerable from the content\n")
	sb.WriteString("- Respond with a single JSON object only, no markdown fences and no commentary\n\n")

	sb.WriteString("The JSON object must have exactly this shape:\n")
	sb.WriteString(responseSchemaExample)
	sb.WriteString("\n\n")

	if strings.TrimSpace(in.CustomPrompt) != "" {
		sb.WriteString("Additional instructions from the student:\n")
		sb.WriteString(strings.TrimSpace(in.CustomPrompt))
		sb.WriteString("\n\n")
	}

	if in.FileName != "" {
		sb.WriteString(fmt.Sprintf("Source file: %s", in.FileName))
		if in.FileType != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", in.FileType))
		}
		sb.WriteString("\n")
	}
	if in.Truncated {
		sb.WriteString("Note: the content was truncated; cover only what is shown.\n")
	}
	sb.WriteString("Content:\n")
	sb.WriteString(in.Content)
	sb.WriteString("\n")

	return sb.String()
}
