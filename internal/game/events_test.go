package game

import (
	"encoding/json"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestEventLogJSON(t *testing.T) {
	log := EventLog{
		CreditsEvent{Amount: 30},
		BanditEvent{Subtype: "range", Amount: 12},
		NothingEvent{},
		WinEvent{Fuel: "Voltash", RequiredFlux: 6},
		ParadoxCoinEvent{Coins: 2},
	}

	b, err := json.Marshal(log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exp := `[{"type":"credits","amount":30},` +
		`{"type":"bandit","subtype":"range","amount":12},` +
		`{"type":"nothing"},` +
		`{"type":"win","fuel":"Voltash","required_flux":6},` +
		`{"type":"paradox_coin","coins":2}]`
	testutil.AssertEqual(t, "json", string(b), exp)
}

func TestEventLogJSON_Empty(t *testing.T) {
	b, err := json.Marshal(struct {
		Events EventLog `json:"events"`
	}{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "json", string(b), `{"events":[]}`)
}

func TestShardSetJSON(t *testing.T) {
	b, err := json.Marshal(ShardSet{3: true, 1: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "encoded", string(b), `{"1":true,"3":true}`)

	var s ShardSet
	if err := json.Unmarshal([]byte(`{"2":true,"4":false,"9":true}`), &s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "len", s.Len(), 1)
	testutil.AssertEqual(t, "has 2", s.Has(2), true)
	testutil.AssertEqual(t, "next missing", s.NextMissing(), 1)

	err = json.Unmarshal([]byte(`{"x":true}`), &s)
	if err == nil {
		t.Fatal("expected error for non-numeric shard id")
	}
}
