package export

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func readEvent(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read event: %v", err)
		}
		if strings.HasPrefix(line, "event: ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "event: "))
		}
	}
}

func TestLiveReloadHub_SSE(t *testing.T) {
	hub, err := NewLiveReloadHub(nil, nil, nil)
	if err != nil {
		t.Fatalf("NewLiveReloadHub: %v", err)
	}
	defer hub.Stop()

	ts := httptest.NewServer(hub.SSEHandler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
	r := bufio.NewReader(resp.Body)
	if ev := readEvent(t, r); ev != "connected" {
		t.Fatalf("first event = %q, want connected", ev)
	}
	if n := hub.ClientCount(); n != 1 {
		t.Errorf("ClientCount = %d, want 1", n)
	}

	hub.Trigger()
	if ev := readEvent(t, r); ev != "reload" {
		t.Fatalf("event = %q, want reload", ev)
	}
}

func TestLiveReloadHub_FailedReloadNotifiesNobody(t *testing.T) {
	var calls atomic.Int32
	hub, err := NewLiveReloadHub(nil, func() error {
		calls.Add(1)
		return errors.New("bad csv")
	}, nil)
	if err != nil {
		t.Fatalf("NewLiveReloadHub: %v", err)
	}
	defer hub.Stop()

	ch := make(chan struct{}, 1)
	hub.mu.Lock()
	hub.clients[ch] = struct{}{}
	hub.mu.Unlock()

	hub.Trigger()
	if calls.Load() != 1 {
		t.Errorf("reload called %d times, want 1", calls.Load())
	}
	select {
	case <-ch:
		t.Error("client notified after failed reload")
	default:
	}
}

func TestLiveReloadHub_WatchesFiles(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "people.csv")
	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(data, []byte("id,name\n1,A\n"), 0644); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan struct{}, 4)
	hub, err := NewLiveReloadHub([]string{data}, func() error {
		reloaded <- struct{}{}
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("NewLiveReloadHub: %v", err)
	}
	hub.debounce = 20 * time.Millisecond
	if err := hub.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer hub.Stop()

	if err := os.WriteFile(other, []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-reloaded:
		t.Fatal("reload for an unwatched file")
	case <-time.After(200 * time.Millisecond):
	}

	if err := os.WriteFile(data, []byte("id,name\n1,B\n"), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after writing the data file")
	}
}

func TestLiveReloadHub_Run(t *testing.T) {
	hub, err := NewLiveReloadHub([]string{filepath.Join(t.TempDir(), "x.csv")}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
