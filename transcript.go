package studyquiz

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Transcript records one generation's prompt, response and outcome to a file
type Transcript struct {
	file *os.File
	mu   sync.Mutex
	id   string
}

// NewTranscript creates <dir>/<id>.log and writes the request header
func NewTranscript(dir, id string, req GenerationRequest, q Quantities) (*Transcript, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create transcript directory: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s.log", id))
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcript file: %w", err)
	}

	t := &Transcript{file: file, id: id}
	t.Logf("=== Generation Transcript ===\n")
	t.Logf("ID: %s\n", id)
	t.Logf("File: %s (%s)\n", req.FileName, req.FileType)
	t.Logf("Quantities: flashcards=%d mcqs=%d matching=%d trueFalse=%d\n", q.Flashcards, q.MCQs, q.Matching, q.TrueFalse)
	if req.CustomPrompt != "" {
		t.Logf("Custom Prompt: %s\n", req.CustomPrompt)
	}
	t.Logf("Started: %s\n", time.Now().Format(time.RFC3339))
	t.Logf("=============================\n\n")
	return t, nil
}

// Logf writes a timestamped entry. A nil transcript discards it.
func (t *Transcript) Logf(format string, args ...interface{}) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.file == nil {
		return
	}
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(t.file, "[%s] %s", timestamp, fmt.Sprintf(format, args...))
	t.file.Sync()
}

// LogRequest records the prompt sent to provider
func (t *Transcript) LogRequest(provider, prompt string) {
	t.Logf("=== REQUEST (%s) ===\n", provider)
	t.Logf("Prompt:\n%s\n", prompt)
	t.Logf("====================\n\n")
}

// LogResponse records the raw provider output
func (t *Transcript) LogResponse(provider, response string, cached bool) {
	t.Logf("=== RESPONSE (%s, cached=%t) ===\n", provider, cached)
	t.Logf("Response:\n%s\n", response)
	t.Logf("====================\n\n")
}

// LogOutcome records what the pipeline did with the response
func (t *Transcript) LogOutcome(meta GenerationMeta, err error) {
	if err != nil {
		t.Logf("Outcome: error - %v\n", err)
		return
	}
	subs := make([]string, len(meta.Substituted))
	for i, a := range meta.Substituted {
		subs[i] = string(a)
	}
	t.Logf("Outcome: demo=%t truncated=%t substituted=[%s]\n", meta.Demo, meta.Truncated, strings.Join(subs, ","))
}

// Close finishes and closes the file
func (t *Transcript) Close() error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	file := t.file
	t.mu.Unlock()
	if file == nil {
		return nil
	}
	t.Logf("=== Generation Complete ===\n")
	t.Logf("Completed: %s\n", time.Now().Format(time.RFC3339))
	t.mu.Lock()
	defer t.mu.Unlock()
	t.file = nil
	return file.Close()
}
