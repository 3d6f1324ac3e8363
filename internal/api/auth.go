/*
Package api
File: auth.go
Description:
    Account handlers: existence check, login, registration and logout.
    Logging in or registering always starts a brand-new game and clears any
    durable save; only the quit flow keeps a game across logins.
*/

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/everforgeworks/chronoquest/internal/game"
	"golang.org/x/crypto/bcrypt"
)

type credentials struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (s *Server) handleUserCheck(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	_, err := s.Accounts.FindUser(r.Context(), strings.TrimSpace(req.Name))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]bool{"exists": true})
	case errors.Is(err, game.ErrProfileNotFound):
		writeJSON(w, http.StatusOK, map[string]bool{"exists": false})
	default:
		slog.Error("user check failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "lookup failed"})
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	user, err := s.Accounts.FindUser(r.Context(), strings.TrimSpace(req.Name))
	if err != nil && !errors.Is(err, game.ErrProfileNotFound) {
		slog.Error("login lookup failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, okBody{Error: "Login failed"})
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)) != nil {
		writeJSON(w, http.StatusOK, okBody{Error: "Wrong password"})
		return
	}

	gs, err := s.Game.NewGame(r.Context(), user.Name)
	if err != nil {
		slog.Error("starting game failed", "player", user.Name, "error", err)
		writeJSON(w, http.StatusInternalServerError, okBody{Error: "Login failed"})
		return
	}
	if !s.startSession(w, user.Name, gs) {
		return
	}

	slog.Info("player logged in", "player", user.Name)
	writeJSON(w, http.StatusOK, okBody{OK: true})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || req.Password == "" {
		writeJSON(w, http.StatusOK, okBody{Error: "Name and password are required"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeJSON(w, http.StatusOK, okBody{Error: "Password not accepted"})
		return
	}

	if _, err := s.Accounts.CreateUser(r.Context(), name, hash); err != nil {
		if errors.Is(err, game.ErrUserExists) {
			writeJSON(w, http.StatusOK, okBody{Error: "User already exists"})
			return
		}
		slog.Error("registration failed", "player", name, "error", err)
		writeJSON(w, http.StatusOK, okBody{Error: "Database registration failed"})
		return
	}

	gs, err := s.Game.NewGame(r.Context(), name)
	if err != nil {
		slog.Error("starting game failed", "player", name, "error", err)
		writeJSON(w, http.StatusInternalServerError, okBody{Error: "Database registration failed"})
		return
	}
	if !s.startSession(w, name, gs) {
		return
	}

	slog.Info("player registered", "player", name)
	writeJSON(w, http.StatusOK, okBody{OK: true})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, err := s.Sessions.FromRequest(r); err == nil {
		s.Sessions.Delete(sess.ID)
	}
	clearCookie(w)
	writeJSON(w, http.StatusOK, okBody{OK: true})
}

func (s *Server) startSession(w http.ResponseWriter, name string, gs *game.GameState) bool {
	_, token, err := s.Sessions.Create(name, gs)
	if err != nil {
		slog.Error("creating session failed", "player", name, "error", err)
		writeJSON(w, http.StatusInternalServerError, okBody{Error: "Login failed"})
		return false
	}
	s.Sessions.setCookie(w, token)
	return true
}
