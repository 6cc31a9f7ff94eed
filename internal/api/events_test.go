package api

import (
	"bufio"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nathanchance/op5/internal/events"
)

func TestInjectTouchEvent(t *testing.T) {
	server, _, bus := newTestServer(t)
	ts := httptest.NewServer(server.mux)
	defer ts.Close()

	starts := make(chan events.TouchStartEvent, 1)
	defer bus.Subscribe(func(ev events.TouchStartEvent) { starts <- ev })()
	stops := make(chan events.TouchStopEvent, 1)
	defer bus.Subscribe(func(ev events.TouchStopEvent) { stops <- ev })()

	resp := doRequest(t, ts, http.MethodPost, "/api/events/touch", `{"action":"start"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	var body struct {
		Status string `json:"status"`
		Event  string `json:"event"`
	}
	decodeBody(t, resp, &body)
	if body.Status != "accepted" || body.Event != "touch-start" {
		t.Errorf("Expected accepted touch-start, got %s/%s", body.Status, body.Event)
	}

	select {
	case ev := <-starts:
		if ev.Timestamp == "" {
			t.Error("Expected timestamp on injected touch start event")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for injected touch start on the bus")
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/events/touch", `{"action":"stop"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	select {
	case <-stops:
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for injected touch stop on the bus")
	}
}

func TestInjectTouchEventRejectsUnknownAction(t *testing.T) {
	server, _, _ := newTestServer(t)
	ts := httptest.NewServer(server.mux)
	defer ts.Close()

	resp := doRequest(t, ts, http.MethodPost, "/api/events/touch", `{"action":"wiggle"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("Expected status 422 for unknown action, got %d", resp.StatusCode)
	}
}

func TestInjectButtonEvent(t *testing.T) {
	server, _, bus := newTestServer(t)
	ts := httptest.NewServer(server.mux)
	defer ts.Close()

	presses := make(chan events.ButtonPressEvent, 1)
	defer bus.Subscribe(func(ev events.ButtonPressEvent) { presses <- ev })()

	resp := doRequest(t, ts, http.MethodPost, "/api/events/button", `{"code":158,"name":"KEY_BACK"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	select {
	case ev := <-presses:
		if ev.Code != 158 || ev.Name != "KEY_BACK" {
			t.Errorf("Expected code 158/KEY_BACK, got %d/%s", ev.Code, ev.Name)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for injected button press on the bus")
	}
}

func TestInjectDisplayEvent(t *testing.T) {
	server, _, bus := newTestServer(t)
	ts := httptest.NewServer(server.mux)
	defer ts.Close()

	blanks := make(chan events.DisplayBlankEvent, 1)
	defer bus.Subscribe(func(ev events.DisplayBlankEvent) { blanks <- ev })()

	resp := doRequest(t, ts, http.MethodPost, "/api/events/display", `{"unblanked":true}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	select {
	case ev := <-blanks:
		if !ev.Unblanked {
			t.Error("Expected unblanked display event")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for injected display event on the bus")
	}
}

func TestSSEConnectionAndEvents(t *testing.T) {
	server, _, _ := newTestServer(t)
	ts := httptest.NewServer(server.mux)
	defer ts.Close()

	// SSE takes credentials via query parameter since EventSource cannot
	// set headers
	sseURL := fmt.Sprintf("%s/api/events?auth=%s", ts.URL, testCredentials())
	resp, err := http.Get(sseURL)
	if err != nil {
		t.Fatalf("Failed to connect to SSE: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "text/event-stream") {
		t.Fatalf("Expected SSE content type, got %s", resp.Header.Get("Content-Type"))
	}

	messageChan := make(chan string, 10)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.HasPrefix(line, "data:") {
				messageChan <- line
			}
		}
	}()

	// Give the stream handler a moment to subscribe before injecting
	time.Sleep(100 * time.Millisecond)

	apiResp := doRequest(t, ts, http.MethodPost, "/api/events/button", `{"code":158,"name":"KEY_BACK"}`)
	apiResp.Body.Close()
	if apiResp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200 from injection, got %d", apiResp.StatusCode)
	}

	select {
	case msg := <-messageChan:
		if !strings.Contains(msg, "KEY_BACK") {
			t.Errorf("Expected button press event with KEY_BACK, got: %s", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for button press on SSE stream")
	}
}

func TestSSEAuthFailure(t *testing.T) {
	server, _, _ := newTestServer(t)
	ts := httptest.NewServer(server.mux)
	defer ts.Close()

	// No credentials
	resp, err := http.Get(ts.URL + "/api/events")
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("Expected status 401, got %d", resp.StatusCode)
	}

	// Wrong credentials in query parameter
	wrong := "d3Jvbmc6d3Jvbmc=" // wrong:wrong
	resp, err = http.Get(fmt.Sprintf("%s/api/events?auth=%s", ts.URL, wrong))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("Expected status 401 for wrong auth, got %d", resp.StatusCode)
	}
}
