/*
Package api
File: handlers.go
Description:
    Game handlers. Each one resolves the caller's session, holds its lock for
    the whole action, runs the action through game.Service and answers JSON.

    Key Responsibilities:
    - Input validation (is the JSON valid, does the airport exist)
    - Mapping game errors to HTTP status codes
    - Announcing finished games and new badges over the hub
*/

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/everforgeworks/chronoquest/internal/game"
)

// TravelRequest is the body of POST /api/main/travel.
type TravelRequest struct {
	ICAO string `json:"ICAO"`
}

// TravelResponse is the body returned by POST /api/main/travel.
type TravelResponse struct {
	Events game.EventLog   `json:"events"`
	State  *game.GameState `json:"state"`
	Win    bool            `json:"win"`
	Lose   bool            `json:"lose"`
	OK     *bool           `json:"ok,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// BuyCreditsRequest is the body of POST /api/buy/credits.
type BuyCreditsRequest struct {
	Fluxfire int `json:"fluxfire"`
}

// BuyRangeRequest is the body of POST /api/buy/range. Credits wins when both are sent.
type BuyRangeRequest struct {
	Credits *int `json:"credits"`
	Amount  *int `json:"amount"`
}

// liveState returns the session's game, falling back to a saved or fresh one.
// The caller holds sess.
func (s *Server) liveState(r *http.Request, sess *Session) (*game.GameState, error) {
	if sess.State != nil {
		return sess.State, nil
	}
	gs, err := s.Game.ResumeOrNew(r.Context(), sess.Username)
	if err != nil {
		return nil, err
	}
	sess.State = gs
	return gs, nil
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	sess.Lock()
	defer sess.Unlock()

	gs, err := s.liveState(r, sess)
	if err != nil {
		slog.Error("loading state failed", "player", sess.Username, "error", err)
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Game state not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]*game.GameState{"state": gs})
}

func (s *Server) handleAirports(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Game.Airports.List())
}

func (s *Server) handleTravel(w http.ResponseWriter, r *http.Request) {
	var req TravelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid Request", http.StatusBadRequest)
		return
	}

	sess := sessionFrom(r.Context())
	sess.Lock()
	defer sess.Unlock()

	gs, err := s.liveState(r, sess)
	if err != nil {
		slog.Error("loading state failed", "player", sess.Username, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Game state not found"})
		return
	}

	out, err := s.Game.Travel(r.Context(), gs, req.ICAO)
	switch {
	case errors.Is(err, game.ErrUnknownAirport):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Destination invalid"})
		return
	case errors.Is(err, game.ErrInsufficientEnergy):
		ok := false
		writeJSON(w, http.StatusBadRequest, TravelResponse{
			Events: out.Events,
			State:  gs,
			OK:     &ok,
			Error:  "Insufficient Energy",
		})
		return
	case err != nil:
		slog.Error("travel failed", "player", sess.Username, "dest", req.ICAO, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Travel could not be saved"})
		return
	}

	s.announce(sess.Username, out)
	if out.Win || out.Lose {
		// The game is over; the next state request starts a fresh one.
		sess.State = nil
	}

	writeJSON(w, http.StatusOK, TravelResponse{
		Events: out.Events,
		State:  gs,
		Win:    out.Win,
		Lose:   out.Lose,
	})
}

func (s *Server) announce(player string, out game.Outcome) {
	for _, b := range out.Awarded {
		s.Hub.Announce(MsgBadgeAwarded, map[string]string{"player": player, "badge": b.String()}, player)
	}
	switch {
	case out.Win:
		s.Hub.Announce(MsgGameWon, map[string]string{"player": player}, player)
	case out.Lose:
		s.Hub.Announce(MsgGameLost, map[string]string{"player": player}, player)
	}
}

func (s *Server) handleBuyCredits(w http.ResponseWriter, r *http.Request) {
	var req BuyCreditsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	sess := sessionFrom(r.Context())
	sess.Lock()
	defer sess.Unlock()

	gs, err := s.liveState(r, sess)
	if err != nil {
		slog.Error("loading state failed", "player", sess.Username, "error", err)
		writeJSON(w, http.StatusInternalServerError, okBody{Error: "Game state not found"})
		return
	}

	s.writeExchange(w, sess.Username, gs, s.Game.BuyCredits(r.Context(), gs, req.Fluxfire))
}

func (s *Server) handleBuyRange(w http.ResponseWriter, r *http.Request) {
	var req BuyRangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	amount := 0
	switch {
	case req.Credits != nil:
		amount = *req.Credits
	case req.Amount != nil:
		amount = *req.Amount
	}

	sess := sessionFrom(r.Context())
	sess.Lock()
	defer sess.Unlock()

	gs, err := s.liveState(r, sess)
	if err != nil {
		slog.Error("loading state failed", "player", sess.Username, "error", err)
		writeJSON(w, http.StatusInternalServerError, okBody{Error: "Game state not found"})
		return
	}

	s.writeExchange(w, sess.Username, gs, s.Game.BuyRange(r.Context(), gs, amount))
}

func (s *Server) writeExchange(w http.ResponseWriter, player string, gs *game.GameState, err error) {
	var exErr *game.ExchangeError
	switch {
	case errors.As(err, &exErr):
		writeJSON(w, http.StatusOK, okBody{Error: exErr.Message})
	case err != nil:
		slog.Error("exchange failed", "player", player, "error", err)
		writeJSON(w, http.StatusInternalServerError, okBody{Error: "Exchange could not be saved"})
	default:
		writeJSON(w, http.StatusOK, okBody{OK: true, State: gs})
	}
}

func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	badges, err := s.Game.Badges(r.Context(), sess.Username)
	if err != nil {
		slog.Error("loading badges failed", "player", sess.Username, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Badges not found"})
		return
	}

	names := make([]string, 0, len(badges))
	for _, b := range badges {
		names = append(names, b.String())
	}
	writeJSON(w, http.StatusOK, map[string][]string{"playerBadges": names})
}

// handleMainPage clears the durable save so a page load never resurrects an old game.
func (s *Server) handleMainPage(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := s.Game.ClearSave(r.Context(), sess.Username); err != nil {
		slog.Error("clearing save failed", "player", sess.Username, "error", err)
	}

	if s.staticDir != "" {
		s.servePage("main.html")(w, r)
		return
	}
	writeJSON(w, http.StatusOK, okBody{OK: true})
}

func (s *Server) handleQuitFlag(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	sess.Lock()
	sess.QuitFlag = true
	sess.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// handleQuit keeps the live game as the durable save if the player asked to quit.
func (s *Server) handleQuit(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	sess.Lock()
	defer sess.Unlock()

	if !sess.QuitFlag {
		http.Redirect(w, r, "/main", http.StatusSeeOther)
		return
	}
	sess.QuitFlag = false

	if sess.State != nil {
		if err := s.Game.Quit(r.Context(), sess.State); err != nil {
			slog.Error("saving on quit failed", "player", sess.Username, "error", err)
			writeJSON(w, http.StatusInternalServerError, okBody{Error: "Could not save your game"})
			return
		}
		sess.State = nil
	}

	slog.Info("player quit", "player", sess.Username)
	if s.staticDir != "" {
		s.servePage("quit.html")(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "You quit the game."})
}
