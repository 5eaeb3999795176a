// Package httpapi exposes generation, uploads, user activity and the quiz
// player over HTTP.
package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"studyquiz"
	"studyquiz/internal/auth"
	"studyquiz/internal/blob"
	"studyquiz/internal/logger"
	"studyquiz/internal/store"
)

// Options configures the router
type Options struct {
	AllowedOrigins []string
	// RequireAuth rejects anonymous callers on generation and uploads
	RequireAuth bool
	MaxFiles    int
	// MaxBodyBytes caps request bodies; zero means no limit
	MaxBodyBytes int64
	// FilesDir is served under /files when uploads are kept on local disk
	FilesDir string
}

// Server holds the handlers' dependencies
type Server struct {
	gen     *studyquiz.Generator
	store   store.Store
	blobs   blob.Store
	players *auth.PlayerStore
	tokens  *auth.Tokens
	opts    Options
	log     *logger.Logger
	now     func() time.Time
}

// New creates a Server
func New(gen *studyquiz.Generator, st store.Store, blobs blob.Store, players *auth.PlayerStore, tokens *auth.Tokens, opts Options, log *logger.Logger) *Server {
	if opts.MaxFiles <= 0 {
		opts.MaxFiles = 10
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		gen:     gen,
		store:   st,
		blobs:   blobs,
		players: players,
		tokens:  tokens,
		opts:    opts,
		log:     log.With("component", "httpapi"),
		now:     time.Now,
	}
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID())
	r.Use(requestLogger(s.log))
	if s.opts.MaxBodyBytes > 0 {
		r.Use(bodyLimit(s.opts.MaxBodyBytes))
	}
	if len(s.opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     s.opts.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthcheck", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.opts.FilesDir != "" {
		r.Static("/files", s.opts.FilesDir)
	}

	api := r.Group("/api")
	api.Use(auth.Middleware(s.tokens, s.log))

	gated := api.Group("")
	if s.opts.RequireAuth {
		gated.Use(auth.RequireUser())
	}
	gated.POST("/gemini/generate-questions", s.handleGenerate)
	gated.POST("/gemini/generate-questions/batch", s.handleGenerateBatch)
	gated.POST("/uploads", s.handleUpload)

	user := api.Group("", auth.RequireUser())
	user.GET("/me", s.handleGetMe)
	user.PUT("/me", s.handlePutMe)
	user.GET("/activity", s.handleListActivity)
	user.POST("/activity/results", s.handleRecordResult)

	play := api.Group("/play")
	play.POST("", s.handlePlayStart)
	play.GET("", s.handlePlayState)
	// /:artifact/next|previous|remount
	play.POST("/:artifact/:arg", s.handlePlayMove)
	// /flashcards/:index/flip, /mcqs/:index/answer, /trueFalse/:index/answer,
	// /matching/:index/select, /matching/:index/reset
	play.POST("/:artifact/:arg/:action", s.handlePlayItem)

	return r
}

// errorBody is the envelope of every non-2xx response
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func abortError(c *gin.Context, status int, msg string, err error) {
	body := errorBody{Error: msg}
	if err != nil {
		body.Details = err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}

// statusFor maps pipeline errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, studyquiz.ErrEmptyContent),
		errors.Is(err, studyquiz.ErrInvalidContent),
		errors.Is(err, studyquiz.ErrOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, studyquiz.ErrAlreadyAnswered):
		return http.StatusConflict
	case errors.Is(err, studyquiz.ErrDegraded):
		return http.StatusBadGateway
	case errors.Is(err, store.ErrNotFound), errors.Is(err, auth.ErrNoPlayer):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

const requestIDHeader = "X-Request-ID"

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func bodyLimit(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString("request_id"),
		}
		if s := auth.FromContext(c.Request.Context()); !s.Anonymous() {
			fields = append(fields, "uid", s.UID)
		}
		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
