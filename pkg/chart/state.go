// Package chart ties the collapse state, the layout engine and the renderer
// into one immutable value per displayed chart.
package chart

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/orgchart/pkg/collapse"
	"github.com/vanderheijden86/orgchart/pkg/config"
	"github.com/vanderheijden86/orgchart/pkg/hierarchy"
	"github.com/vanderheijden86/orgchart/pkg/layout"
	"github.com/vanderheijden86/orgchart/pkg/render"
)

// ErrUnknownNode is returned when a toggle names an id that is not in the tree.
var ErrUnknownNode = errors.New("unknown node")

// State is one displayed chart. Operations return a new State; the receiver
// is never modified, so callers decide when to swap states in.
type State struct {
	tree     *hierarchy.Tree
	renderer *render.Renderer
	engine   layout.Config
	policy   collapse.Policy

	expansion collapse.Expansion
	frame     render.Frame
}

// Option configures New.
type Option func(*State)

// WithPolicy sets the toggle policy.
func WithPolicy(p collapse.Policy) Option {
	return func(s *State) { s.policy = p }
}

// WithRenderer reuses cards built for the same tree, e.g. across preview
// sessions.
func WithRenderer(r *render.Renderer) Option {
	return func(s *State) { s.renderer = r }
}

// New returns the initial chart: the root expanded and everything below its
// children collapsed.
func New(tree *hierarchy.Tree, cfg config.Config, opts ...Option) State {
	s := State{
		tree:   tree,
		engine: cfg.Engine(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.renderer == nil {
		s.renderer = render.NewRenderer(tree, cfg)
	}
	return s.with(collapse.New(tree))
}

func (s State) with(e collapse.Expansion) State {
	s.expansion = e
	s.frame = s.renderer.Frame(e, layout.Compute(e, s.engine))
	return s
}

// Tree returns the underlying tree.
func (s State) Tree() *hierarchy.Tree { return s.tree }

// Expansion returns the collapse state.
func (s State) Expansion() collapse.Expansion { return s.expansion }

// Frame returns the current drawable frame.
func (s State) Frame() render.Frame { return s.frame }

// Renderer returns the card renderer shared by derived states.
func (s State) Renderer() *render.Renderer { return s.renderer }

// Initial returns the patch that builds the current frame from nothing.
func (s State) Initial() render.Patch {
	return render.Diff(render.Frame{}, s.frame)
}

// Toggle flips the node with the given id and returns the new state together
// with the patch that animates the change.
func (s State) Toggle(id string) (State, render.Patch, error) {
	i, ok := s.tree.Lookup(id)
	if !ok {
		return s, render.Patch{}, fmt.Errorf("toggle %q: %w", id, ErrUnknownNode)
	}
	return s.transition(s.expansion.ToggleWith(i, s.policy))
}

// Reveal expands every ancestor of id so that it becomes visible.
func (s State) Reveal(id string) (State, render.Patch, error) {
	i, ok := s.tree.Lookup(id)
	if !ok {
		return s, render.Patch{}, fmt.Errorf("reveal %q: %w", id, ErrUnknownNode)
	}
	return s.transition(s.expansion.ExpandPath(i))
}

// ExpandAll shows every node.
func (s State) ExpandAll() (State, render.Patch) {
	next, p, _ := s.transition(s.expansion.ExpandAll())
	return next, p
}

// ExpandToDepth shows every node down to depth d.
func (s State) ExpandToDepth(d int) (State, render.Patch) {
	next, p, _ := s.transition(s.expansion.ExpandToDepth(d))
	return next, p
}

func (s State) transition(e collapse.Expansion) (State, render.Patch, error) {
	next := s.with(e)
	return next, render.Diff(s.frame, next.frame), nil
}
