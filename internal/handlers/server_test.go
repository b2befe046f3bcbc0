package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sonroyaalmerol/tilawa/internal/host"
	"github.com/sonroyaalmerol/tilawa/internal/media"
	"github.com/sonroyaalmerol/tilawa/internal/stream"
)

type instantLoader struct{}

func (instantLoader) Load(ctx context.Context, url string) (*stream.Clip, error) {
	return &stream.Clip{SampleRate: 48000, Frames: make([][2]float64, 4800)}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := NewServer(testConfig(), media.NewSilent(48000), instantLoader{})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("healthz = %d %v", resp.StatusCode, body)
	}
}

func TestWebSocketSession(t *testing.T) {
	srv := newTestServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	read := func() map[string]any {
		t.Helper()
		var m map[string]any
		if err := conn.ReadJSON(&m); err != nil {
			t.Fatalf("read: %v", err)
		}
		return m
	}

	if m := read(); m["type"] != host.TypeComponentReady || m["apiVersion"] != float64(1) {
		t.Fatalf("first message = %v", m)
	}
	if m := read(); m["type"] != host.TypeSetFrameHeight || m["height"] != float64(220) {
		t.Fatalf("second message = %v", m)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"render","args":{"playlist":[{"idx":0,"url":"a.mp3"}],"start_index":0,"is_playing":false}}`)); err != nil {
		t.Fatal(err)
	}
	for {
		m := read()
		if m["type"] == host.TypeView {
			view, _ := m["view"].(map[string]any)
			if view["counter"] != "Ayah 1 of 1" {
				t.Errorf("view = %v", view)
			}
			return
		}
	}
}

func TestOriginCheck(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedOrigins = []string{"https://app.example"}
	s := NewServer(cfg, media.NewSilent(48000), instantLoader{})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	h := http.Header{"Origin": []string{"https://evil.example"}}
	if _, _, err := websocket.DefaultDialer.Dial(url, h); err == nil {
		t.Errorf("foreign origin was accepted")
	}
}
