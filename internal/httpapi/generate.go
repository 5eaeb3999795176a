package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"studyquiz"
	"studyquiz/internal/auth"
	"studyquiz/internal/extract"
	"studyquiz/internal/store"
)

type generateResponse struct {
	studyquiz.QuestionSet
	Meta   studyquiz.GenerationMeta `json:"meta"`
	QuizID string                   `json:"quizId,omitempty"`
}

type batchRequest struct {
	Files []studyquiz.GenerationRequest `json:"files"`
}

type batchResponse struct {
	studyquiz.QuestionSet
	Files  []studyquiz.GenerationMeta `json:"files"`
	QuizID string                     `json:"quizId,omitempty"`
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req studyquiz.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := checkRequest(req); err != nil {
		abortError(c, http.StatusBadRequest, "unsupported file", err)
		return
	}

	ctx := c.Request.Context()
	res, err := s.gen.Generate(ctx, req)
	if err != nil {
		s.generationFailed(c, err)
		return
	}

	resp := generateResponse{QuestionSet: res.Set, Meta: res.Meta}
	resp.QuizID = s.saveQuiz(ctx, titleFor(req.FileName), res.Set, res.Meta)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGenerateBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if len(req.Files) == 0 {
		abortError(c, http.StatusBadRequest, "at least one file is required", nil)
		return
	}
	if len(req.Files) > s.opts.MaxFiles {
		abortError(c, http.StatusBadRequest, "too many files", nil)
		return
	}
	for _, f := range req.Files {
		if err := checkRequest(f); err != nil {
			abortError(c, http.StatusBadRequest, "unsupported file", err)
			return
		}
	}

	ctx := c.Request.Context()
	res, err := s.gen.GenerateBatch(ctx, req.Files)
	if err != nil {
		s.generationFailed(c, err)
		return
	}

	meta := studyquiz.GenerationMeta{Demo: true}
	seen := map[studyquiz.Artifact]bool{}
	for _, f := range res.Files {
		meta.Truncated = meta.Truncated || f.Truncated
		meta.Demo = meta.Demo && f.Demo
		for _, a := range f.Substituted {
			seen[a] = true
		}
	}
	for _, a := range studyquiz.Artifacts {
		if seen[a] {
			meta.Substituted = append(meta.Substituted, a)
		}
	}
	resp := batchResponse{QuestionSet: res.QuestionSet, Files: res.Files}
	resp.QuizID = s.saveQuiz(ctx, titleFor(req.Files[0].FileName), res.QuestionSet, meta)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) generationFailed(c *gin.Context, err error) {
	status := statusFor(err)
	switch status {
	case http.StatusBadRequest:
		abortError(c, status, "invalid content", err)
	case http.StatusBadGateway:
		s.log.Warn("generation degraded", "error", err)
		abortError(c, status, "question generation failed", err)
	default:
		s.log.Error("generation failed", "error", err)
		abortError(c, status, "question generation failed", err)
	}
}

// checkRequest enforces the extension allow-list on encoded files
func checkRequest(req studyquiz.GenerationRequest) error {
	if req.FileName == "" || !strings.HasPrefix(req.FileContent, "data:") {
		return nil
	}
	return extract.CheckFileName(req.FileName)
}

// saveQuiz keeps the set for signed-in users and records the activity.
// Storage failures are logged; the caller still gets its questions.
func (s *Server) saveQuiz(ctx context.Context, title string, set studyquiz.QuestionSet, meta studyquiz.GenerationMeta) string {
	sess := auth.FromContext(ctx)
	if sess.Anonymous() || s.store == nil {
		return ""
	}
	id, err := gonanoid.New()
	if err != nil {
		s.log.Error("failed to generate quiz id", "error", err)
		return ""
	}
	now := s.now().UTC()
	quiz := &store.Quiz{ID: id, UID: sess.UID, Title: title, Set: set, Meta: meta, CreatedAt: now}
	if err := s.store.SaveQuiz(ctx, quiz); err != nil {
		s.log.Error("failed to save quiz", "error", err, "uid", sess.UID)
		return ""
	}
	_ = s.record(ctx, &store.Activity{
		UID:       sess.UID,
		Kind:      store.ActivityQuiz,
		RefID:     id,
		Title:     title,
		Items:     countItems(set),
		Demo:      meta.Demo,
		CreatedAt: now,
	})
	return id
}

func (s *Server) record(ctx context.Context, a *store.Activity) error {
	if a.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return err
		}
		a.ID = id
	}
	if err := s.store.RecordActivity(ctx, a); err != nil {
		s.log.Error("failed to record activity", "error", err, "kind", a.Kind)
		return err
	}
	return nil
}

func countItems(set studyquiz.QuestionSet) int {
	return len(set.Flashcards) + len(set.MCQs) + len(set.MatchingQuestions) + len(set.TrueFalseQuestions)
}

func titleFor(fileName string) string {
	if fileName == "" {
		return "Pasted text"
	}
	return fileName
}
