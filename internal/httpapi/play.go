package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studyquiz"
	"studyquiz/internal/auth"
	"studyquiz/internal/store"
)

type playStartRequest struct {
	QuizID string                 `json:"quizId"`
	Set    *studyquiz.QuestionSet `json:"set"`
}

type playState struct {
	*studyquiz.Player
	Score studyquiz.Score `json:"score"`
}

type playResult struct {
	playState
	Result interface{} `json:"result"`
}

func stateOf(p *studyquiz.Player) playState {
	return playState{Player: p, Score: p.Score()}
}

// handlePlayStart begins a quiz from a saved quiz id or an inline set
func (s *Server) handlePlayStart(c *gin.Context) {
	var req playStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	var set studyquiz.QuestionSet
	switch {
	case req.QuizID != "":
		ctx := c.Request.Context()
		q, err := s.store.GetQuiz(ctx, req.QuizID)
		if err == nil && q.UID != "" && q.UID != auth.FromContext(ctx).UID {
			err = store.ErrNotFound
		}
		if err != nil {
			abortError(c, statusFor(err), "quiz not found", err)
			return
		}
		set = q.Set
	case req.Set != nil:
		set = *req.Set
	default:
		abortError(c, http.StatusBadRequest, "quizId or set is required", nil)
		return
	}
	if countItems(set) == 0 {
		abortError(c, http.StatusBadRequest, "question set is empty", nil)
		return
	}

	p := studyquiz.NewPlayer(set)
	if !s.savePlayer(c, p) {
		return
	}
	c.JSON(http.StatusCreated, stateOf(p))
}

func (s *Server) handlePlayState(c *gin.Context) {
	p, ok := s.loadPlayer(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, stateOf(p))
}

// handlePlayMove serves next, previous and remount for one artifact
func (s *Server) handlePlayMove(c *gin.Context) {
	a, err := studyquiz.ParseArtifact(c.Param("artifact"))
	if err != nil {
		abortError(c, http.StatusNotFound, "unknown artifact", err)
		return
	}
	action := c.Param("arg")
	if action != "next" && action != "previous" && action != "remount" {
		abortError(c, http.StatusNotFound, "unknown action", nil)
		return
	}
	p, ok := s.loadPlayer(c)
	if !ok {
		return
	}

	var cursor int
	switch action {
	case "next":
		cursor = p.Next(a)
	case "previous":
		cursor = p.Previous(a)
	case "remount":
		if err := p.Remount(a); err != nil {
			abortError(c, http.StatusBadRequest, "remount failed", err)
			return
		}
		cursor = p.Cursor(a)
	}
	if !s.savePlayer(c, p) {
		return
	}
	c.JSON(http.StatusOK, playResult{playState: stateOf(p), Result: gin.H{"cursor": cursor}})
}

type mcqAnswer struct {
	Option *int `json:"option"`
}

type trueFalseAnswer struct {
	Value *bool `json:"value"`
}

type matchSelection struct {
	Left  *int `json:"left"`
	Right *int `json:"right"`
}

// handlePlayItem serves the per-question actions
func (s *Server) handlePlayItem(c *gin.Context) {
	a, err := studyquiz.ParseArtifact(c.Param("artifact"))
	if err != nil {
		abortError(c, http.StatusNotFound, "unknown artifact", err)
		return
	}
	index, err := strconv.Atoi(c.Param("arg"))
	if err != nil {
		abortError(c, http.StatusBadRequest, "index must be a number", err)
		return
	}
	action := c.Param("action")

	type handler func(*studyquiz.Player) (interface{}, error)
	var h handler
	switch {
	case a == studyquiz.ArtifactFlashcards && action == "flip":
		h = func(p *studyquiz.Player) (interface{}, error) {
			flipped, err := p.Flip(index)
			return gin.H{"flipped": flipped}, err
		}
	case a == studyquiz.ArtifactMCQs && action == "answer":
		var body mcqAnswer
		if err := c.ShouldBindJSON(&body); err != nil || body.Option == nil {
			abortError(c, http.StatusBadRequest, "option is required", err)
			return
		}
		h = func(p *studyquiz.Player) (interface{}, error) {
			correct, err := p.AnswerMCQ(index, *body.Option)
			return gin.H{"correct": correct}, err
		}
	case a == studyquiz.ArtifactTrueFalse && action == "answer":
		var body trueFalseAnswer
		if err := c.ShouldBindJSON(&body); err != nil || body.Value == nil {
			abortError(c, http.StatusBadRequest, "value is required", err)
			return
		}
		h = func(p *studyquiz.Player) (interface{}, error) {
			correct, err := p.AnswerTrueFalse(index, *body.Value)
			return gin.H{"correct": correct}, err
		}
	case a == studyquiz.ArtifactMatching && action == "select":
		var body matchSelection
		if err := c.ShouldBindJSON(&body); err != nil || body.Left == nil || body.Right == nil {
			abortError(c, http.StatusBadRequest, "left and right are required", err)
			return
		}
		h = func(p *studyquiz.Player) (interface{}, error) {
			return p.SelectMatch(index, *body.Left, *body.Right)
		}
	case a == studyquiz.ArtifactMatching && action == "reset":
		h = func(p *studyquiz.Player) (interface{}, error) {
			return gin.H{"reset": true}, p.ResetMatching(index)
		}
	default:
		abortError(c, http.StatusNotFound, "unknown action", nil)
		return
	}

	p, ok := s.loadPlayer(c)
	if !ok {
		return
	}
	result, err := h(p)
	if err != nil {
		abortError(c, statusFor(err), "action rejected", err)
		return
	}
	if !s.savePlayer(c, p) {
		return
	}
	c.JSON(http.StatusOK, playResult{playState: stateOf(p), Result: result})
}

func (s *Server) loadPlayer(c *gin.Context) (*studyquiz.Player, bool) {
	p, err := s.players.Load(c.Request)
	if err != nil {
		if !errors.Is(err, auth.ErrNoPlayer) {
			s.log.Error("failed to load player", "error", err)
		}
		abortError(c, statusFor(err), "no quiz in progress", err)
		return nil, false
	}
	return p, true
}

func (s *Server) savePlayer(c *gin.Context, p *studyquiz.Player) bool {
	if err := s.players.Save(c.Request, c.Writer, p); err != nil {
		s.log.Error("failed to save player", "error", err)
		abortError(c, http.StatusInternalServerError, "failed to save quiz progress", err)
		return false
	}
	return true
}
