package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/everforgeworks/chronoquest/internal/game"
	"github.com/gorilla/websocket"
	"github.com/pixil98/go-testutil"
)

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func dialWs(t *testing.T, ts *httptest.Server, cookie *http.Cookie) *websocket.Conn {
	t.Helper()
	var header http.Header
	if cookie != nil {
		header = http.Header{"Cookie": {cookie.Name + "=" + cookie.Value}}
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), header)
	if err != nil {
		t.Fatalf("dialing hub: %v", err)
	}
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("reading message: %v", err)
	}
	return msg
}

func TestHubAnnouncesFinishedGame(t *testing.T) {
	env := newTestEnv(t)
	hub := NewHub()
	env.srv.Hub = hub
	go hub.Run()
	defer hub.Stop()

	ts := httptest.NewServer(env.http)
	defer ts.Close()

	cookie := env.register(t, "ada")
	conn := dialWs(t, ts, cookie)
	defer conn.Close()

	testutil.AssertEqual(t, "welcome", readMessage(t, conn).Type, MsgSystem)

	sess := env.session(t, cookie)
	sess.State.Shards = game.ShardSet{1: true, 2: true, 3: true, 4: true, 5: true}
	sess.State.Fluxfire = sess.State.RequiredFlux
	rec := env.do(t, http.MethodPost, "/api/main/travel", TravelRequest{ICAO: "EFHK"}, cookie)
	testutil.AssertEqual(t, "travel status", rec.Code, http.StatusOK)

	badge := readMessage(t, conn)
	testutil.AssertEqual(t, "badge type", badge.Type, MsgBadgeAwarded)
	testutil.AssertEqual(t, "badge sender", badge.Sender, "ada")
	payload, _ := badge.Payload.(map[string]any)
	testutil.AssertEqual(t, "badge name", payload["badge"], "Time Traveler (Achieved your first ChronoQuest victory.)")

	won := readMessage(t, conn)
	testutil.AssertEqual(t, "won type", won.Type, MsgGameWon)
	payload, _ = won.Payload.(map[string]any)
	testutil.AssertEqual(t, "won player", payload["player"], "ada")
}

func TestHubRequiresSession(t *testing.T) {
	env := newTestEnv(t)
	hub := NewHub()
	env.srv.Hub = hub
	go hub.Run()
	defer hub.Stop()

	ts := httptest.NewServer(env.http)
	defer ts.Close()

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	if !errors.Is(err, websocket.ErrBadHandshake) {
		t.Fatalf("expected a refused handshake, got %v", err)
	}
	testutil.AssertEqual(t, "status", resp.StatusCode, http.StatusSeeOther)
}

func TestHubStopDisconnectsClients(t *testing.T) {
	hub := NewHub()
	stopped := make(chan struct{})
	go func() {
		hub.Run()
		close(stopped)
	}()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r)
	}))
	defer ts.Close()

	conn := dialWs(t, ts, nil)
	defer conn.Close()
	testutil.AssertEqual(t, "welcome", readMessage(t, conn).Type, MsgSystem)

	hub.Stop()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Stop")
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	var closeErr *websocket.CloseError
	if !errors.As(err, &closeErr) {
		t.Fatalf("expected a close frame, got %v", err)
	}

	// Late announcements and connections are dropped quietly.
	hub.Announce(MsgSystem, "late", "")
	late := dialWs(t, ts, nil)
	defer late.Close()
	_ = late.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := late.ReadMessage(); err == nil {
		t.Error("expected the late connection to be closed")
	}
}

func TestNilHubAnnounce(t *testing.T) {
	var hub *Hub
	hub.Announce(MsgGameLost, map[string]string{"player": "ada"}, "ada")
}
