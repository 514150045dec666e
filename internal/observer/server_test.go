package observer

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func TestSnapshotEndpoint(t *testing.T) {
	s := NewServer("", zap.NewNop())
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/snapshot")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 before first publish, got %d", resp.StatusCode)
	}

	s.Publish(Snapshot{Match: "m", Tick: 7, Leaders: []LeaderState{{Name: "red", Crowd: 3}}})
	resp, err = http.Get(ts.URL + "/snapshot")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	var snap Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Type != "SNAPSHOT" || snap.ProtocolVersion != ProtocolVersion || snap.Tick != 7 || snap.Leaders[0].Crowd != 3 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestWebsocketReceivesLatestThenUpdates(t *testing.T) {
	s := NewServer("", zap.NewNop())
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	s.Publish(Snapshot{Match: "m", Tick: 1})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	read := func() Snapshot {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var snap Snapshot
		if err := json.Unmarshal(msg, &snap); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return snap
	}

	if snap := read(); snap.Tick != 1 {
		t.Fatalf("expected latest snapshot on join, got tick %d", snap.Tick)
	}

	// The first frame arrives only after join, so the client is registered.
	s.Publish(Snapshot{Match: "m", Tick: 2})
	if snap := read(); snap.Tick != 2 {
		t.Fatalf("expected tick 2, got %d", snap.Tick)
	}
	if s.Clients() != 1 {
		t.Fatalf("expected one client, got %d", s.Clients())
	}
}
