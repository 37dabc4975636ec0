package document

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/zenui/zendiagram/pkg/cache"
	"github.com/zenui/zendiagram/pkg/diagram"
	"github.com/zenui/zendiagram/pkg/edge"
	"github.com/zenui/zendiagram/pkg/engine"
	zerrors "github.com/zenui/zendiagram/pkg/errors"
	"github.com/zenui/zendiagram/pkg/geom"
)

// SnapshotVersion is the current snapshot format version.
const SnapshotVersion = 1

// =============================================================================
// Snapshot - Settled Diagram
// =============================================================================

// Snapshot is a settled diagram in logical coordinates.
type Snapshot struct {
	Version  int              `json:"version"`
	Title    string           `json:"title,omitempty"`
	Strategy diagram.Strategy `json:"strategy"`
	Viewport Viewport         `json:"viewport"`
	// Bounds is the union of every top-level item rectangle.
	Bounds   geom.Rect `json:"bounds"`
	ActiveID string    `json:"active_id,omitempty"`

	Nodes    []PlacedNode    `json:"nodes"`
	Wrappers []PlacedWrapper `json:"wrappers,omitempty"`
	Edges    []RoutedEdge    `json:"edges,omitempty"`
}

// PlacedNode is a node rectangle.
type PlacedNode struct {
	ID    string    `json:"id"`
	Group string    `json:"group,omitempty"`
	Label string    `json:"label"`
	Rect  geom.Rect `json:"rect"`
	// Related is set when the node is connected to the selected item.
	Related bool `json:"related,omitempty"`
}

// PlacedWrapper is a wrapper's derived box.
type PlacedWrapper struct {
	ID    string    `json:"id"`
	Label string    `json:"label"`
	Rect  geom.Rect `json:"rect"`
}

// RoutedEdge is an edge with its final path and paint.
type RoutedEdge struct {
	ID       string            `json:"id"`
	From     string            `json:"from"`
	To       string            `json:"to"`
	FromSide diagram.Dot       `json:"from_side"`
	ToSide   diagram.Dot       `json:"to_side"`
	Type     diagram.EdgeType  `json:"type"`
	Style    diagram.LineStyle `json:"style"`
	Color    string            `json:"color"`
	Width    float64           `json:"width"`
	Opacity  float64           `json:"opacity"`
	Dashes   []float64         `json:"dashes,omitempty"`
	Active   bool              `json:"active,omitempty"`
	Label    string            `json:"label,omitempty"`
	LabelPos geom.Point        `json:"label_pos"`
	// Path is the SVG path data of the route.
	Path     string    `json:"path"`
	Segments []Segment `json:"segments"`
}

// Segment is one drawing command of a route.
type Segment struct {
	// Op is "M", "L" or "C".
	Op     string       `json:"op"`
	Points []geom.Point `json:"points"`
}

var opNames = map[edge.Op]string{edge.MoveTo: "M", edge.LineTo: "L", edge.CubicTo: "C"}

// Capture records the current state of d. labels supplies display labels
// and may be nil, in which case ids are used.
func Capture(d *engine.Diagram, labels map[string]string) Snapshot {
	store := d.Store()
	tr := d.Viewport()
	snap := Snapshot{
		Version:  SnapshotVersion,
		Strategy: d.Strategy(),
		Viewport: Viewport{X: tr.Pan.X, Y: tr.Pan.Y, Zoom: tr.Scale},
		ActiveID: d.ActiveID(),
	}
	if b, ok := d.ContentBounds(); ok {
		snap.Bounds = b
	}

	related := make(map[string]bool)
	for _, id := range d.ActiveNodeIDs() {
		related[id] = true
	}
	label := func(id string) string {
		if l, ok := labels[id]; ok && l != "" {
			return l
		}
		return id
	}

	for _, it := range store.Wrappers() {
		if r, ok := d.Locate(it.ID); ok {
			snap.Wrappers = append(snap.Wrappers, PlacedWrapper{ID: it.ID, Label: label(it.ID), Rect: r})
		}
	}
	for _, n := range store.Nodes() {
		r, ok := d.Locate(n.ID)
		if !ok {
			continue
		}
		snap.Nodes = append(snap.Nodes, PlacedNode{
			ID: n.ID, Group: n.GroupID, Label: label(n.ID), Rect: r, Related: related[n.ID],
		})
	}
	for _, re := range d.Edges() {
		snap.Edges = append(snap.Edges, routed(re))
	}
	return snap
}

func routed(re edge.Rendered) RoutedEdge {
	out := RoutedEdge{
		ID:       re.Edge.ID,
		From:     re.Edge.From,
		To:       re.Edge.To,
		FromSide: re.From.Side,
		ToSide:   re.To.Side,
		Type:     re.Edge.Type,
		Style:    re.Style,
		Color:    re.Color,
		Width:    re.Width,
		Opacity:  re.Opacity,
		Dashes:   re.Dashes(),
		Active:   re.Active,
		Label:    re.Edge.Label,
		LabelPos: re.Path.Label,
		Path:     re.Path.D(),
	}
	for _, s := range re.Path.Segments {
		n := 1
		if s.Op == edge.CubicTo {
			n = 3
		}
		out.Segments = append(out.Segments, Segment{Op: opNames[s.Op], Points: append([]geom.Point(nil), s.Pts[:n]...)})
	}
	return out
}

// Node returns the placed node with the given id.
func (s *Snapshot) Node(id string) (PlacedNode, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return PlacedNode{}, false
}

// Edge returns the routed edge with the given id.
func (s *Snapshot) Edge(id string) (RoutedEdge, bool) {
	for _, e := range s.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return RoutedEdge{}, false
}

// Frame returns the bounds grown by margin on every side. A snapshot
// without content yields a margin-sized frame at the origin.
func (s *Snapshot) Frame(margin float64) geom.Rect {
	b := s.Bounds
	if b.Empty() {
		b = geom.Rect{}
	}
	return b.Inset(margin)
}

// Hash returns a content hash of the snapshot's JSON encoding.
func (s *Snapshot) Hash() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("hash snapshot: %w", err)
	}
	return cache.Hash(data), nil
}

// =============================================================================
// Snapshot Serialization API
// =============================================================================

// MarshalSnapshot serializes a Snapshot to pretty-printed JSON bytes.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// UnmarshalSnapshot deserializes JSON bytes into a Snapshot. A missing
// version is read as the current one; newer versions are rejected.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, zerrors.Wrap(zerrors.ErrCodeInvalidDocument, err, "unmarshal snapshot")
	}
	if s.Version == 0 {
		s.Version = SnapshotVersion
	}
	if s.Version > SnapshotVersion {
		return Snapshot{}, zerrors.New(zerrors.ErrCodeUnsupported, "snapshot version %d is newer than %d", s.Version, SnapshotVersion)
	}
	if s.Viewport.Zoom == 0 {
		s.Viewport.Zoom = 1
	}
	if len(s.Nodes) == 0 && len(s.Wrappers) == 0 {
		return Snapshot{}, ErrEmptyDocument
	}
	for _, e := range s.Edges {
		if len(e.Segments) == 0 {
			return Snapshot{}, zerrors.New(zerrors.ErrCodeInvalidDocument, "edge %q has no segments", e.ID)
		}
	}
	return s, nil
}

// WriteSnapshotFile writes a Snapshot to a JSON file.
func WriteSnapshotFile(s Snapshot, path string) error {
	data, err := MarshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadSnapshotFile reads a Snapshot from a JSON file.
func ReadSnapshotFile(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalSnapshot(data)
}
