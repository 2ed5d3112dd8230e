package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type fakeSubscriber struct {
	mu           sync.Mutex
	subject      string
	handler      func([]byte)
	unsubscribed chan struct{}
	subscribed   chan struct{}
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{
		unsubscribed: make(chan struct{}),
		subscribed:   make(chan struct{}),
	}
}

func (f *fakeSubscriber) Subscribe(subject string, handler func([]byte)) (func() error, error) {
	f.mu.Lock()
	f.subject = subject
	f.handler = handler
	f.mu.Unlock()
	close(f.subscribed)

	return func() error {
		close(f.unsubscribed)
		return nil
	}, nil
}

func (f *fakeSubscriber) deliver(data []byte) {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	h(data)
}

func TestAnalysisWebSocket_RelaysEvents(t *testing.T) {
	sub := newFakeSubscriber()
	srv := httptest.NewServer(AnalysisWebSocketHandler(sub, "analysis.completed", DefaultWebSocketConfig()))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var welcome map[string]interface{}
	if err := conn.ReadJSON(&welcome); err != nil {
		t.Fatalf("read welcome: %v", err)
	}
	if welcome["type"] != "welcome" || welcome["subject"] != "analysis.completed" {
		t.Errorf("unexpected welcome %v", welcome)
	}

	select {
	case <-sub.subscribed:
	case <-time.After(5 * time.Second):
		t.Fatal("handler never subscribed")
	}

	event, _ := json.Marshal(map[string]string{"type": "analysis.completed", "id": "abc"})
	sub.deliver(event)

	_, got, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read event: %v", err)
	}
	if string(got) != string(event) {
		t.Errorf("got %s, want %s", got, event)
	}

	conn.Close()

	select {
	case <-sub.unsubscribed:
	case <-time.After(5 * time.Second):
		t.Fatal("closing the socket should unsubscribe")
	}
}

func TestAnalysisWebSocket_DisabledIs503(t *testing.T) {
	srv := httptest.NewServer(AnalysisWebSocketHandler(nil, "analysis.completed", DefaultWebSocketConfig()))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}
