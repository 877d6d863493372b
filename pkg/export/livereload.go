// Package export writes charts out of the process: Markdown reports, static
// snapshots and the interactive preview server.
//
// This file implements live reload for the preview server. The hub watches
// the data and config files; on change it runs the reload callback and,
// when that succeeds, tells connected browsers over Server-Sent Events to
// reload the page.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// LiveReloadHub manages SSE connections and file watching for live reload.
type LiveReloadHub struct {
	files   map[string]bool // cleaned absolute paths being watched
	watcher *fsnotify.Watcher
	reload  func() error
	logger  *slog.Logger

	mu      sync.RWMutex
	clients map[chan struct{}]struct{}

	ctx    context.Context
	cancel context.CancelFunc

	debounce time.Duration
}

// NewLiveReloadHub creates a hub for the given files. reload runs on every
// debounced change before clients are notified; a failing reload keeps the
// previous data and notifies nobody.
func NewLiveReloadHub(files []string, reload func() error, logger *slog.Logger) (*LiveReloadHub, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	hub := &LiveReloadHub{
		files:    make(map[string]bool, len(files)),
		watcher:  watcher,
		reload:   reload,
		logger:   logger,
		clients:  make(map[chan struct{}]struct{}),
		ctx:      ctx,
		cancel:   cancel,
		debounce: 200 * time.Millisecond,
	}
	for _, f := range files {
		if abs, err := filepath.Abs(f); err == nil {
			hub.files[filepath.Clean(abs)] = true
		}
	}
	return hub, nil
}

// Start watches the parent directory of every file. Editors often replace a
// file instead of writing it, which a watch on the file itself would miss.
func (h *LiveReloadHub) Start() error {
	dirs := make(map[string]bool)
	for f := range h.files {
		dirs[filepath.Dir(f)] = true
	}
	for dir := range dirs {
		if err := h.watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	go h.watchLoop()
	return nil
}

// Run starts the hub and blocks until ctx is done.
func (h *LiveReloadHub) Run(ctx context.Context) error {
	if err := h.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	h.Stop()
	return nil
}

// Stop shuts down the hub and disconnects every client.
func (h *LiveReloadHub) Stop() {
	h.cancel()
	h.watcher.Close()

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		close(ch)
	}
	h.clients = make(map[chan struct{}]struct{})
}

// ClientCount returns the number of connected clients.
func (h *LiveReloadHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// watchLoop collapses bursts of events into one reload.
func (h *LiveReloadHub) watchLoop() {
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-h.ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if !h.files[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(h.debounce)
			} else {
				timer.Reset(h.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			h.Trigger()

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Warn("file watcher error", "err", err)
		}
	}
}

// Trigger runs the reload callback and notifies clients on success.
func (h *LiveReloadHub) Trigger() {
	if h.reload != nil {
		if err := h.reload(); err != nil {
			h.logger.Warn("reload failed, keeping previous data", "err", err)
			return
		}
	}
	h.notifyClients()
}

// notifyClients sends a reload signal to all connected SSE clients.
func (h *LiveReloadHub) notifyClients() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.clients {
		select {
		case ch <- struct{}{}:
		default:
			// a reload is already pending for this client
		}
	}
}

// SSEHandler returns an HTTP handler for the SSE endpoint.
func (h *LiveReloadHub) SSEHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "SSE not supported", http.StatusInternalServerError)
			return
		}

		clientCh := make(chan struct{}, 1)
		h.mu.Lock()
		h.clients[clientCh] = struct{}{}
		h.mu.Unlock()

		defer func() {
			h.mu.Lock()
			delete(h.clients, clientCh)
			h.mu.Unlock()
		}()

		fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\"}\n\n")
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-h.ctx.Done():
				return
			case _, ok := <-clientCh:
				if !ok {
					return
				}
				fmt.Fprintf(w, "event: reload\ndata: {\"action\":\"reload\"}\n\n")
				flusher.Flush()
			}
		}
	}
}

// liveReloadJS reconnects with exponential backoff and reloads the page on
// every reload event.
const liveReloadJS = `
(function() {
  if (typeof(EventSource) === 'undefined') return;
  var reconnectDelay = 1000;
  var maxReconnectDelay = 30000;

  function connect() {
    var es = new EventSource('/__preview__/events');

    es.addEventListener('connected', function() {
      reconnectDelay = 1000;
    });

    es.addEventListener('reload', function() {
      location.reload();
    });

    es.onerror = function() {
      es.close();
      setTimeout(connect, reconnectDelay);
      reconnectDelay = Math.min(reconnectDelay * 2, maxReconnectDelay);
    };
  }

  connect();
})();
`
