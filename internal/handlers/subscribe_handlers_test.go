package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"
)

func serve(t *testing.T, env *testEnv) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	go func() {
		_ = env.app.Listener(ln)
	}()
	t.Cleanup(func() {
		_ = env.app.ShutdownWithTimeout(2 * time.Second)
	})

	return "http://" + ln.Addr().String()
}

// readEvent returns the data of the next SSE event, skipping comments.
func readEvent(t *testing.T, reader *bufio.Reader) (string, string) {
	t.Helper()

	var event, data string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("failed reading event stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			if data != "" {
				return event, data
			}
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestSubscribeHandler_StreamsUpdates(t *testing.T) {
	env := setupTestEnv(t)
	base := serve(t, env)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/api/subscribe?path=groups:get", nil)
	if err != nil {
		t.Fatalf("failed building request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("subscribe request failed: %v", err)
	}
	defer resp.Body.Close()

	assertStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("expected event stream, got %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	event, data := readEvent(t, reader)
	if event != "result" || data != "[]" {
		t.Fatalf("expected empty initial result, got %s %s", event, data)
	}

	if _, err := env.groups.Create(context.Background(), "Live", "", ""); err != nil {
		t.Fatalf("failed creating group: %v", err)
	}

	_, data = readEvent(t, reader)
	var groups []map[string]any
	if err := json.Unmarshal([]byte(data), &groups); err != nil {
		t.Fatalf("invalid result payload %q: %v", data, err)
	}
	if len(groups) != 1 || groups[0]["name"] != "Live" {
		t.Fatalf("unexpected groups %+v", groups)
	}
}

func TestSubscribeHandler_Rejects(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name   string
		query  url.Values
		status int
	}{
		{"missing path", url.Values{}, http.StatusBadRequest},
		{"unknown function", url.Values{"path": {"groups:nope"}}, http.StatusNotFound},
		{"mutation", url.Values{"path": {"groups:create"}}, http.StatusBadRequest},
		{"bad json args", url.Values{"path": {"messages:get"}, "args": {"{"}}, http.StatusBadRequest},
		{"invalid args", url.Values{"path": {"messages:get"}, "args": {`{"chatId":"x"}`}}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := performRequest(t, env.app, http.MethodGet, "/api/subscribe?"+tt.query.Encode(), nil, nil)
			assertStatus(t, resp, tt.status)
		})
	}
}
