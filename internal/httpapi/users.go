package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"studyquiz/internal/auth"
	"studyquiz/internal/store"
)

type profileRequest struct {
	DisplayName      *string `json:"displayName"`
	PhoneNumber      *string `json:"phoneNumber"`
	ProfileCompleted *bool   `json:"profileCompleted"`
}

// handleGetMe returns the stored profile, or one built from the token when
// the user has not been seen before
func (s *Server) handleGetMe(c *gin.Context) {
	ctx := c.Request.Context()
	sess := auth.FromContext(ctx)
	u, err := s.store.GetUser(ctx, sess.UID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusOK, userFromSession(sess))
		return
	}
	if err != nil {
		s.log.Error("failed to get user", "error", err, "uid", sess.UID)
		abortError(c, http.StatusInternalServerError, "failed to load profile", err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) handlePutMe(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	ctx := c.Request.Context()
	sess := auth.FromContext(ctx)

	u, err := s.store.GetUser(ctx, sess.UID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		u = userFromSession(sess)
	case err != nil:
		abortError(c, http.StatusInternalServerError, "failed to load profile", err)
		return
	}
	if sess.Email != "" {
		u.Email = sess.Email
	}
	if req.DisplayName != nil {
		u.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.PhoneNumber != nil {
		u.PhoneNumber = strings.TrimSpace(*req.PhoneNumber)
	}
	if req.ProfileCompleted != nil {
		u.ProfileCompleted = *req.ProfileCompleted
	}
	if err := s.store.UpsertUser(ctx, u); err != nil {
		s.log.Error("failed to save user", "error", err, "uid", sess.UID)
		abortError(c, http.StatusInternalServerError, "failed to save profile", err)
		return
	}
	saved, err := s.store.GetUser(ctx, sess.UID)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "failed to load profile", err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func userFromSession(sess auth.Session) *store.User {
	return &store.User{
		UID:              sess.UID,
		Email:            sess.Email,
		DisplayName:      sess.DisplayName,
		PhoneNumber:      sess.PhoneNumber,
		ProfileCompleted: sess.ProfileCompleted,
	}
}

func (s *Server) handleListActivity(c *gin.Context) {
	limit := store.DefaultActivityLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			abortError(c, http.StatusBadRequest, "limit must be between 1 and 100", nil)
			return
		}
		limit = n
	}
	ctx := c.Request.Context()
	uid := auth.FromContext(ctx).UID
	items, err := s.store.ListActivity(ctx, uid, limit)
	if err != nil {
		s.log.Error("failed to list activity", "error", err, "uid", uid)
		abortError(c, http.StatusInternalServerError, "failed to list activity", err)
		return
	}
	if items == nil {
		items = []store.Activity{}
	}
	c.JSON(http.StatusOK, gin.H{"activity": items})
}

type resultRequest struct {
	QuizID  string `json:"quizId"`
	Title   string `json:"title"`
	Correct int    `json:"correct"`
	Total   int    `json:"total"`
}

// handleRecordResult stores a finished quiz score. Without a body the score
// of the quiz in progress in this browser session is used.
func (s *Server) handleRecordResult(c *gin.Context) {
	var req resultRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortError(c, http.StatusBadRequest, "invalid request body", err)
			return
		}
	} else {
		p, err := s.players.Load(c.Request)
		if err != nil {
			abortError(c, statusFor(err), "no quiz in progress", err)
			return
		}
		score := p.Score()
		req.Correct, req.Total = score.Correct, score.Total
	}
	if req.Total <= 0 || req.Correct < 0 || req.Correct > req.Total {
		abortError(c, http.StatusBadRequest, "correct must be between 0 and total", nil)
		return
	}

	ctx := c.Request.Context()
	title := req.Title
	if req.QuizID != "" && title == "" {
		if q, err := s.store.GetQuiz(ctx, req.QuizID); err == nil {
			title = q.Title
		}
	}
	a := &store.Activity{
		UID:       auth.FromContext(ctx).UID,
		Kind:      store.ActivityResult,
		RefID:     req.QuizID,
		Title:     title,
		Correct:   req.Correct,
		Total:     req.Total,
		CreatedAt: s.now().UTC(),
	}
	if err := s.record(ctx, a); err != nil {
		abortError(c, http.StatusInternalServerError, "failed to record result", err)
		return
	}
	c.JSON(http.StatusCreated, a)
}
