package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/guregu/null/v6"

	"MarketBreadth/internal/recorder"
)

func TestOscillatorZone(t *testing.T) {
	tests := []struct {
		in   null.Float
		want string
	}{
		{null.FloatFrom(60), "overbought"},
		{null.FloatFrom(50), "overbought"},
		{null.FloatFrom(30), "strong"},
		{null.FloatFrom(0), "neutral"},
		{null.FloatFrom(-25), "weak"},
		{null.FloatFrom(-50), "oversold"},
		{null.Float{}, "n/a"},
	}
	for _, tt := range tests {
		if got := OscillatorZone(tt.in); got != tt.want {
			t.Errorf("OscillatorZone(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatBreadthSummary(t *testing.T) {
	snap := &recorder.Snapshot{
		Date:          time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
		Close:         null.FloatFrom(4688.7),
		MA20:          null.FloatFrom(61.2),
		Oscillator:    null.FloatFrom(-55),
		Summation:     null.FloatFrom(394),
		SummationMean: null.FloatFrom(410),
	}
	msg := FormatBreadthSummary(snap, 20)
	for _, want := range []string{"2024-01-04", "4688.70", "61.2 / – / –", "oversold", "MA20 410.00", "below mean"} {
		if !strings.Contains(msg, want) {
			t.Errorf("summary missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatHistory(t *testing.T) {
	if got := FormatHistory(nil); !strings.Contains(got, "No snapshots") {
		t.Errorf("empty history = %q", got)
	}
	snaps := []recorder.Snapshot{
		{Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), Oscillator: null.FloatFrom(3.14)},
		{Date: time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)},
	}
	got := FormatHistory(snaps)
	if !strings.Contains(got, "2024-01-05  osc 3.1") || !strings.Contains(got, "2024-01-04  osc –") {
		t.Errorf("history = %q", got)
	}
}

func newTestNotifier(srv *httptest.Server) *TelegramNotifier {
	n := NewTelegramNotifier("TOKEN", "42", "")
	n.APIBase = srv.URL
	n.Client = srv.Client()
	return n
}

func TestSendPostsMessage(t *testing.T) {
	var got map[string]any
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	if err := newTestNotifier(srv).Send(context.Background(), "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if path != "/botTOKEN/sendMessage" {
		t.Errorf("path = %q", path)
	}
	if got["chat_id"] != "42" || got["text"] != "hello" || got["parse_mode"] != "HTML" {
		t.Errorf("payload = %v", got)
	}
}

func TestSendWithRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	if err := newTestNotifier(srv).SendWithRetry(context.Background(), "hi", 2); err != nil {
		t.Fatalf("SendWithRetry: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestSendWithRetryExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := newTestNotifier(srv).SendWithRetry(context.Background(), "hi", 0)
	if err == nil || !strings.Contains(err.Error(), "status 500") {
		t.Errorf("expected wrapped API error, got %v", err)
	}
}

func TestStartPollingDispatchesCommands(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var polls atomic.Int32
	replies := make(chan string, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			if polls.Add(1) == 1 {
				w.Write([]byte(`{"ok":true,"result":[
					{"update_id":7,"message":{"text":"/breadth","chat":{"id":42}}},
					{"update_id":8,"message":{"text":"/breadth","chat":{"id":99}}}
				]}`))
				return
			}
			<-r.Context().Done()
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			replies <- body["text"].(string)
			w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer srv.Close()

	n := newTestNotifier(srv)
	done := make(chan struct{})
	go func() {
		n.StartPolling(ctx, func(_ context.Context, cmd string) string { return "got " + cmd })
		close(done)
	}()

	select {
	case reply := <-replies:
		if reply != "got /breadth" {
			t.Errorf("reply = %q", reply)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reply")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop after cancel")
	}
	if len(replies) != 0 {
		t.Error("message from another chat should be ignored")
	}
}
