package render

import (
	"sort"

	"github.com/vanderheijden86/orgchart/pkg/layout"
)

// SceneNode is a card living in a Scene.
type SceneNode struct {
	ID    string
	Pos   layout.Point
	Glyph Glyph
	Card  *Card
}

// Scene is a retained copy of what a client shows after every transition
// has finished.
type Scene struct {
	nodes  map[string]*SceneNode
	links  map[string]LinkView
	bounds layout.Bounds

	// enter operations that hit a card already present
	reentered int
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{
		nodes: make(map[string]*SceneNode),
		links: make(map[string]LinkView),
	}
}

// Apply brings the scene to the state described by p. Applying the same
// patch twice leaves the scene unchanged.
func (s *Scene) Apply(p Patch) {
	for _, e := range p.Enter {
		if n, ok := s.nodes[e.Node.ID]; ok {
			s.reentered++
			n.Pos, n.Glyph = e.Node.Point(), e.Node.Glyph
			continue
		}
		s.nodes[e.Node.ID] = &SceneNode{
			ID:    e.Node.ID,
			Pos:   e.Node.Point(),
			Glyph: e.Node.Glyph,
			Card:  e.Node.Card,
		}
	}
	for _, m := range p.Update {
		if n, ok := s.nodes[m.ID]; ok {
			n.Pos, n.Glyph = m.To, m.Glyph
		}
	}
	for _, id := range p.Exit {
		delete(s.nodes, id)
	}
	for _, l := range p.LinkEnter {
		s.links[l.ID] = l
	}
	for _, l := range p.LinkUpdate {
		s.links[l.ID] = l
	}
	for _, id := range p.LinkExit {
		delete(s.links, id)
	}
	s.bounds = p.Bounds
}

// Len returns the number of cards in the scene.
func (s *Scene) Len() int { return len(s.nodes) }

// LinkCount returns the number of connectors in the scene.
func (s *Scene) LinkCount() int { return len(s.links) }

// Node returns the card with the given id.
func (s *Scene) Node(id string) (SceneNode, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return SceneNode{}, false
	}
	return *n, true
}

// Link returns the connector above the given child.
func (s *Scene) Link(id string) (LinkView, bool) {
	l, ok := s.links[id]
	return l, ok
}

// IDs returns the ids of all cards, sorted.
func (s *Scene) IDs() []string {
	ids := make([]string, 0, len(s.nodes))
	for id := range s.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Bounds returns the current viewport.
func (s *Scene) Bounds() layout.Bounds { return s.bounds }

// Reentered reports how many enter operations hit a card that was already
// present. A well-formed patch sequence never does this.
func (s *Scene) Reentered() int { return s.reentered }
