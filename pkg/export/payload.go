package export

import (
	"bytes"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/orgchart/pkg/render"
)

// PatchPayload is the JSON form of a render.Patch sent to the preview page.
// Entering cards carry their SVG fragment, already placed at the origin of
// the transition.
type PatchPayload struct {
	Enter      []EnterPayload `json:"enter"`
	Update     []MovePayload  `json:"update"`
	Exit       []string       `json:"exit"`
	LinkEnter  []LinkPayload  `json:"link_enter"`
	LinkUpdate []LinkPayload  `json:"link_update"`
	LinkExit   []string       `json:"link_exit"`
	ViewBox    [4]float64     `json:"view_box"`
	DurationMS int64          `json:"duration_ms"`
}

// EnterPayload is one card to insert.
type EnterPayload struct {
	ID    string  `json:"id"`
	SVG   string  `json:"svg"`
	FromX float64 `json:"from_x"`
	FromY float64 `json:"from_y"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// MovePayload moves an existing card and refreshes its glyph.
type MovePayload struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Glyph string  `json:"glyph"`
}

// LinkPayload is one connector path.
type LinkPayload struct {
	ID string `json:"id"`
	D  string `json:"d"`
}

// NewPatchPayload converts p, rendering entering cards with svgo.
func NewPatchPayload(p render.Patch) (PatchPayload, error) {
	out := PatchPayload{
		Enter:      make([]EnterPayload, 0, len(p.Enter)),
		Update:     make([]MovePayload, 0, len(p.Update)),
		Exit:       nonNil(p.Exit),
		LinkEnter:  links(p.LinkEnter),
		LinkUpdate: links(p.LinkUpdate),
		LinkExit:   nonNil(p.LinkExit),
		ViewBox:    p.Bounds.ViewBox(),
		DurationMS: p.Duration.Milliseconds(),
	}
	var buf bytes.Buffer
	for _, e := range p.Enter {
		buf.Reset()
		if err := render.WriteNodeSVG(&buf, e.Node, e.From); err != nil {
			return PatchPayload{}, err
		}
		out.Enter = append(out.Enter, EnterPayload{
			ID:    e.Node.ID,
			SVG:   buf.String(),
			FromX: e.From.X,
			FromY: e.From.Y,
			X:     e.Node.X,
			Y:     e.Node.Y,
		})
	}
	for _, m := range p.Update {
		out.Update = append(out.Update, MovePayload{ID: m.ID, X: m.To.X, Y: m.To.Y, Glyph: string(m.Glyph)})
	}
	return out, nil
}

// Nodes is the number of cards the patch touches.
func (p PatchPayload) Nodes() int {
	return len(p.Enter) + len(p.Update) + len(p.Exit)
}

// MarshalPatch renders p as JSON.
func MarshalPatch(p render.Patch) ([]byte, error) {
	payload, err := NewPatchPayload(p)
	if err != nil {
		return nil, err
	}
	return json.Marshal(payload)
}

func links(ls []render.LinkView) []LinkPayload {
	out := make([]LinkPayload, len(ls))
	for i, l := range ls {
		out[i] = LinkPayload{ID: l.ID, D: l.Path}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
