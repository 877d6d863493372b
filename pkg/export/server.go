package export

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/vanderheijden86/orgchart/pkg/chart"
	"github.com/vanderheijden86/orgchart/pkg/collapse"
	"github.com/vanderheijden86/orgchart/pkg/render"
)

// SessionCookie names the cookie carrying the preview session id.
const SessionCookie = "orgchart_session"

// DefaultSessionTTL is how long an idle session is kept.
const DefaultSessionTTL = 30 * time.Minute

// session is one browser's chart. Toggles for a session are serialised by
// its mutex; different sessions proceed in parallel.
type session struct {
	mu       sync.Mutex
	state    chart.State
	scene    *render.Scene // what the browser shows once transitions end
	gen      uint64
	lastSeen time.Time
}

// Server serves the interactive chart. Each browser gets its own collapse
// state; the dataset is shared and swapped wholesale on reload.
type Server struct {
	mu   sync.RWMutex
	data *Dataset
	gen  uint64

	smu      sync.Mutex
	sessions map[string]*session

	title   string
	policy  collapse.Policy
	ttl     time.Duration
	hub     *LiveReloadHub
	metrics *Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// ServerOption configures NewServer.
type ServerOption func(*Server)

// WithTitle sets the page title.
func WithTitle(title string) ServerOption {
	return func(s *Server) { s.title = title }
}

// WithPolicy sets the toggle policy for every session.
func WithPolicy(p collapse.Policy) ServerOption {
	return func(s *Server) { s.policy = p }
}

// WithLiveReload mounts the hub's event stream and injects the reload script.
func WithLiveReload(h *LiveReloadHub) ServerOption {
	return func(s *Server) { s.hub = h }
}

// WithMetrics publishes server metrics to m instead of a private registry.
func WithMetrics(m *Metrics) ServerOption {
	return func(s *Server) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// WithSessionTTL sets how long idle sessions are kept.
func WithSessionTTL(d time.Duration) ServerOption {
	return func(s *Server) { s.ttl = d }
}

// NewServer creates a server for data.
func NewServer(data *Dataset, opts ...ServerOption) *Server {
	s := &Server{
		sessions: make(map[string]*session),
		title:    "Org Chart",
		ttl:      DefaultSessionTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.Swap(data)
	return s
}

// Swap replaces the dataset. Sessions built on the previous dataset are
// rebuilt on their next request.
func (s *Server) Swap(data *Dataset) {
	s.mu.Lock()
	s.data = data
	s.gen++
	s.mu.Unlock()
	s.metrics.SetDataset(data.Tree, data.Diagnostics)
}

// Reload swaps in the dataset returned by load. On error the current dataset
// stays in place.
func (s *Server) Reload(load func() (*Dataset, error)) error {
	data, err := load()
	if err != nil {
		s.metrics.ReloadsTotal.WithLabelValues("error").Inc()
		s.logger.Warn("reload failed, keeping previous data", "err", err)
		return err
	}
	s.Swap(data)
	s.metrics.ReloadsTotal.WithLabelValues("ok").Inc()
	s.logger.Info("data reloaded", "people", data.Tree.Len())
	return nil
}

// Dataset returns the current dataset.
func (s *Server) Dataset() *Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Metrics returns the server's metrics.
func (s *Server) Metrics() *Metrics { return s.metrics }

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	s.smu.Lock()
	defer s.smu.Unlock()
	return len(s.sessions)
}

func (s *Server) current() (*Dataset, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data, s.gen
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.metrics.instrument("page", s.handlePage))
	mux.HandleFunc("GET /api/chart", s.metrics.instrument("chart", s.handleChart))
	mux.HandleFunc("POST /api/toggle", s.metrics.instrument("toggle", s.handleToggle))
	mux.HandleFunc("GET /api/legend", s.metrics.instrument("legend", s.handleLegend))
	mux.Handle("GET /metrics", s.metrics.Handler())
	if s.hub != nil {
		mux.HandleFunc("GET /__preview__/events", s.hub.SSEHandler())
	}
	return mux
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	data, _ := s.current()
	card := data.Renderer.CardLayout()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := WritePage(w, PageOptions{
		Title:      s.title,
		Legend:     data.Renderer.Palette().Legend(),
		LinkStyle:  render.LinkStyle(card.LinkColor, card.LinkWidth),
		LiveReload: s.hub != nil,
	})
	if err != nil {
		s.logger.Error("write page", "err", err)
	}
}

// handleChart starts a fresh chart for the caller's session and returns the
// patch that builds it from nothing.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	data, gen := s.current()
	id, sess := s.session(w, r)

	sess.mu.Lock()
	sess.state = data.Chart(s.policy)
	sess.gen = gen
	sess.lastSeen = s.now()
	p := sess.state.Initial()
	sess.scene = render.NewScene()
	sess.scene.Apply(p)
	sess.mu.Unlock()

	s.logger.Debug("chart started", "session", id, "nodes", len(p.Enter))
	s.writePatch(w, p)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	nodeID := r.URL.Query().Get("id")
	if nodeID == "" {
		s.metrics.TogglesTotal.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, "missing id")
		return
	}
	_, gen := s.current()
	sess, ok := s.lookup(r)
	if !ok {
		s.metrics.TogglesTotal.WithLabelValues("stale").Inc()
		writeError(w, http.StatusConflict, "no chart for this session")
		return
	}

	sess.mu.Lock()
	if sess.gen != gen || sess.scene == nil {
		sess.mu.Unlock()
		s.metrics.TogglesTotal.WithLabelValues("stale").Inc()
		writeError(w, http.StatusConflict, "data was reloaded")
		return
	}
	sess.lastSeen = s.now()
	idx, known := sess.state.Tree().Lookup(nodeID)
	if !known {
		sess.mu.Unlock()
		s.metrics.TogglesTotal.WithLabelValues("unknown").Inc()
		writeError(w, http.StatusNotFound, fmt.Sprintf("%v: %q", chart.ErrUnknownNode, nodeID))
		return
	}
	if !sess.state.Expansion().IsVisible(idx) {
		sess.mu.Unlock()
		s.metrics.TogglesTotal.WithLabelValues("hidden").Inc()
		writeError(w, http.StatusConflict, fmt.Sprintf("%q is not on screen", nodeID))
		return
	}
	next, p, err := sess.state.Toggle(nodeID)
	if err != nil {
		sess.mu.Unlock()
		s.metrics.TogglesTotal.WithLabelValues("unknown").Inc()
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	before := sess.scene.Reentered()
	sess.scene.Apply(p)
	if sess.scene.Reentered() != before {
		// the browser already shows a card this patch would add again
		sess.scene = nil
		sess.mu.Unlock()
		s.metrics.TogglesTotal.WithLabelValues("desync").Inc()
		s.logger.Warn("session out of sync, forcing reload", "id", nodeID)
		writeError(w, http.StatusConflict, "chart out of sync")
		return
	}
	sess.state = next
	shown := sess.scene.Len()
	sess.mu.Unlock()

	s.logger.Debug("toggled", "id", nodeID, "shown", shown)
	s.metrics.TogglesTotal.WithLabelValues("ok").Inc()
	s.writePatch(w, p)
}

func (s *Server) handleLegend(w http.ResponseWriter, r *http.Request) {
	data, _ := s.current()
	writeJSON(w, http.StatusOK, data.Renderer.Palette().Legend())
}

func (s *Server) writePatch(w http.ResponseWriter, p render.Patch) {
	payload, err := NewPatchPayload(p)
	if err != nil {
		s.logger.Error("render patch", "err", err)
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}
	s.metrics.PatchSize.Observe(float64(payload.Nodes()))
	writeJSON(w, http.StatusOK, payload)
}

// session returns the caller's session, creating it and setting the cookie
// when the request carries none.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (string, *session) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		s.smu.Lock()
		sess, ok := s.sessions[c.Value]
		s.smu.Unlock()
		if ok {
			return c.Value, sess
		}
	}

	id := uuid.NewString()
	sess := &session{lastSeen: s.now()}
	s.smu.Lock()
	s.pruneLocked()
	s.sessions[id] = sess
	s.metrics.Sessions.Set(float64(len(s.sessions)))
	s.smu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id, sess
}

func (s *Server) lookup(r *http.Request) (*session, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil, false
	}
	s.smu.Lock()
	defer s.smu.Unlock()
	sess, ok := s.sessions[c.Value]
	return sess, ok
}

// pruneLocked drops sessions idle longer than the TTL. Callers hold smu.
func (s *Server) pruneLocked() {
	cutoff := s.now().Add(-s.ttl)
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.lastSeen.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
