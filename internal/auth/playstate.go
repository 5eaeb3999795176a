package auth

import (
	"encoding/gob"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"studyquiz"
)

const (
	playCookie = "studyquiz-play"
	playerKey  = "player"
)

// ErrNoPlayer is returned when the browser session has no quiz in progress
var ErrNoPlayer = errors.New("no quiz in progress")

func init() {
	gob.Register(&studyquiz.Player{})
}

// PlayerStore keeps the quiz player of each browser session on disk.
// The cookie carries only the signed session id.
type PlayerStore struct {
	store *sessions.FilesystemStore
}

// NewPlayerStore stores sessions below dir. An empty key generates a random
// one, which invalidates sessions on restart.
func NewPlayerStore(dir, key string, secure bool) (*PlayerStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	hashKey := []byte(key)
	if len(hashKey) == 0 {
		hashKey = securecookie.GenerateRandomKey(32)
	}
	store := sessions.NewFilesystemStore(dir, hashKey)
	// a full question set with answers does not fit the 4k default
	store.MaxLength(1 << 20)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &PlayerStore{store: store}, nil
}

// Load returns the player of the request's session
func (s *PlayerStore) Load(r *http.Request) (*studyquiz.Player, error) {
	sess, err := s.store.Get(r, playCookie)
	if err != nil && sess == nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	p, ok := sess.Values[playerKey].(*studyquiz.Player)
	if !ok || p == nil {
		return nil, ErrNoPlayer
	}
	return p, nil
}

// Save writes p into the request's session and sets the cookie
func (s *PlayerStore) Save(r *http.Request, w http.ResponseWriter, p *studyquiz.Player) error {
	// a stale or tampered cookie still yields a fresh session to write into
	sess, _ := s.store.Get(r, playCookie)
	if sess == nil {
		sess = sessions.NewSession(s.store, playCookie)
		sess.Options = s.store.Options
	}
	sess.Values[playerKey] = p
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
