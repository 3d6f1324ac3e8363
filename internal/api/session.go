/*
Package api
File: session.go
Description:
    Server-side sessions. The live game state of a logged-in player lives
    here, never in the cookie; the cookie only carries a signed session id.

    Key Responsibilities:
    - Issuing and verifying HS256 session tokens
    - Holding one live GameState per session
    - Serializing actions on the same session (Session.Lock)
    - Retiring expired sessions and older sessions of a player who logs in again
*/

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/everforgeworks/chronoquest/internal/game"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "chronoquest_session"

var errInvalidSession = errors.New("invalid session")

// Session is one logged-in browser. Hold its lock for the whole of an action.
type Session struct {
	sync.Mutex

	ID       string
	Username string
	State    *game.GameState // nil until a game is started or resumed
	QuitFlag bool

	expires time.Time
}

// SessionStore keeps sessions in memory, keyed by id.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates a store whose tokens are signed with secret and expire after ttl.
func NewSessionStore(secret []byte, ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		secret:   secret,
		ttl:      ttl,
		now:      time.Now,
	}
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

// Create opens a session for username and returns it with its signed token.
// Any other session of the same player is closed, so only the newest login
// holds a live game.
func (s *SessionStore) Create(username string, gs *game.GameState) (*Session, string, error) {
	now := s.now()
	sess := &Session{ID: uuid.NewString(), Username: username, State: gs, expires: now.Add(s.ttl)}

	claims := sessionClaims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        sess.ID,
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, "", fmt.Errorf("sign session token: %w", err)
	}

	s.mu.Lock()
	for id, old := range s.sessions {
		if strings.EqualFold(old.Username, username) || !now.Before(old.expires) {
			delete(s.sessions, id)
		}
	}
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess, token, nil
}

// Lookup verifies token and returns the session it names.
func (s *SessionStore) Lookup(token string) (*Session, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) && claims.ID != "" {
			s.Delete(claims.ID)
		}
		return nil, fmt.Errorf("%w: %w", errInvalidSession, err)
	}

	s.mu.RLock()
	sess, ok := s.sessions[claims.ID]
	s.mu.RUnlock()
	if !ok || sess.Username != claims.Subject {
		return nil, errInvalidSession
	}
	return sess, nil
}

// Delete forgets the session with id.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len returns the number of open sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// FromRequest resolves the session named by the request cookie.
func (s *SessionStore) FromRequest(r *http.Request) (*Session, error) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil, errInvalidSession
	}
	return s.Lookup(c.Value)
}

func (s *SessionStore) setCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl / time.Second),
	})
}

func clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
