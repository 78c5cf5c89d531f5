package inspector

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iburimskiy/backdrop/internal/registry"
	"github.com/iburimskiy/backdrop/internal/schema"
)

type inbound struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Error     string `json:"error"`
	Instances []struct {
		ID     string          `json:"id"`
		Kind   string          `json:"type"`
		Config json.RawMessage `json:"config"`
	} `json:"instances"`
}

func newServer(t *testing.T) (*registry.Registry, *httptest.Server) {
	t.Helper()
	reg := registry.New()
	reg.Register("hero-1", schema.ParticleNetwork, nil)
	s := New(reg, Config{Logger: log.New(io.Discard, "", 0)})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return reg, srv
}

func dial(t *testing.T, base string) *websocket.Conn {
	t.Helper()
	u, err := url.Parse(base)
	if err != nil {
		t.Fatalf("failed to parse test server url: %v", err)
	}
	u.Scheme = "ws"
	u.Path = "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("failed to open websocket connection: %v", err)
	}
	t.Cleanup(func() {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
		if resp != nil {
			resp.Body.Close()
		}
	})
	return conn
}

func read(t *testing.T, conn *websocket.Conn) inbound {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg inbound
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("decode %s: %v", payload, err)
	}
	return msg
}

func particleCount(t *testing.T, msg inbound) int {
	t.Helper()
	if msg.Type != "snapshot" || len(msg.Instances) != 1 {
		t.Fatalf("unexpected message %+v", msg)
	}
	var cfg schema.ParticleConfig
	if err := json.Unmarshal(msg.Instances[0].Config, &cfg); err != nil {
		t.Fatal(err)
	}
	return cfg.ParticleCount
}

func TestInitialSnapshot(t *testing.T) {
	_, srv := newServer(t)
	conn := dial(t, srv.URL)
	msg := read(t, conn)
	if msg.Instances[0].ID != "hero-1" || msg.Instances[0].Kind != string(schema.ParticleNetwork) {
		t.Fatalf("snapshot = %+v", msg)
	}
	if got := particleCount(t, msg); got != 80 {
		t.Errorf("particleCount = %d, want 80", got)
	}
}

func TestUpdateBroadcastsToAllSubscribers(t *testing.T) {
	reg, srv := newServer(t)
	a := dial(t, srv.URL)
	b := dial(t, srv.URL)
	read(t, a)
	read(t, b)

	if err := a.WriteJSON(map[string]any{"type": "update", "id": "hero-1", "config": map[string]any{"particleCount": 120}}); err != nil {
		t.Fatal(err)
	}
	for _, conn := range []*websocket.Conn{a, b} {
		if got := particleCount(t, read(t, conn)); got != 120 {
			t.Errorf("broadcast particleCount = %d, want 120", got)
		}
	}
	inst, _ := reg.Lookup("hero-1")
	if inst.Config.(schema.ParticleConfig).ParticleCount != 120 {
		t.Error("registry not updated")
	}
}

func TestLocalEditsAreBroadcast(t *testing.T) {
	reg, srv := newServer(t)
	conn := dial(t, srv.URL)
	read(t, conn)

	if err := reg.UpdateConfig("hero-1", schema.Patch{"particleCount": 30}); err != nil {
		t.Fatal(err)
	}
	if got := particleCount(t, read(t, conn)); got != 30 {
		t.Errorf("particleCount = %d, want 30", got)
	}
}

func TestMalformedMessagesAreDropped(t *testing.T) {
	reg, srv := newServer(t)
	conn := dial(t, srv.URL)
	read(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(map[string]any{"type": "import", "id": "hero-1", "json": `{"wrapAround": true}`}); err != nil {
		t.Fatal(err)
	}
	msg := read(t, conn)
	if msg.Type != "snapshot" {
		t.Fatalf("malformed frame produced %+v", msg)
	}
	inst, _ := reg.Lookup("hero-1")
	if !inst.Config.(schema.ParticleConfig).WrapAround {
		t.Error("import not applied")
	}
}

func TestRejectedEditReportsError(t *testing.T) {
	reg, srv := newServer(t)
	conn := dial(t, srv.URL)
	read(t, conn)

	before := reg.Revision("hero-1")
	if err := conn.WriteJSON(map[string]any{"type": "update", "id": "hero-1", "config": map[string]any{"lineColor": "nope"}}); err != nil {
		t.Fatal(err)
	}
	msg := read(t, conn)
	if msg.Type != "error" || msg.ID != "hero-1" || !strings.Contains(msg.Error, "lineColor") {
		t.Errorf("reply = %+v", msg)
	}
	if reg.Revision("hero-1") != before {
		t.Error("rejected edit changed the registry")
	}
}

func TestHTTPRoutes(t *testing.T) {
	_, srv := newServer(t)

	resp, err := http.Get(srv.URL + "/instances")
	if err != nil {
		t.Fatal(err)
	}
	var list []map[string]any
	err = json.NewDecoder(resp.Body).Decode(&list)
	resp.Body.Close()
	if err != nil || len(list) != 1 || list[0]["id"] != "hero-1" {
		t.Fatalf("instances = %v, %v", list, err)
	}

	resp, err = http.Get(srv.URL + "/schema/" + url.PathEscape(string(schema.RetroGrid)))
	if err != nil {
		t.Fatal(err)
	}
	var fields []schema.Field
	err = json.NewDecoder(resp.Body).Decode(&fields)
	resp.Body.Close()
	if err != nil || len(fields) != 3 || fields[1].Key != "gridColor" {
		t.Fatalf("fields = %+v, %v", fields, err)
	}

	resp, err = http.Get(srv.URL + "/schema/Nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown kind status = %d", resp.StatusCode)
	}
}
