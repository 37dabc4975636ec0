package document

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/zenui/zendiagram/pkg/canvas"
	"github.com/zenui/zendiagram/pkg/diagram"
	zerrors "github.com/zenui/zendiagram/pkg/errors"
	"github.com/zenui/zendiagram/pkg/geom"
)

const sampleJSON = `{
  "title": "sample",
  "auto_layout": false,
  "nodes": [
    {"id": "a", "label": "A", "width": 100, "height": 50},
    {"id": "b", "width": 100, "height": 50, "x": 400}
  ],
  "edges": [{"from": "a", "to": "b", "type": "straight"}]
}`

const sampleTOML = `
title = "sample"
auto_layout = false

[[nodes]]
id = "a"
label = "A"
width = 100.0
height = 50.0

[[nodes]]
id = "b"
width = 100.0
height = 50.0
x = 400.0

[[edges]]
from = "a"
to = "b"
type = "straight"
`

func TestParseFormats(t *testing.T) {
	fromJSON, err := Parse([]byte(sampleJSON), FormatJSON)
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	fromTOML, err := Parse([]byte(sampleTOML), FormatTOML)
	if err != nil {
		t.Fatalf("toml: %v", err)
	}
	if !reflect.DeepEqual(fromJSON, fromTOML) {
		t.Errorf("json and toml differ:\n%+v\n%+v", fromJSON, fromTOML)
	}

	doc := fromJSON
	if doc.AutoLayoutEnabled() {
		t.Error("auto_layout false should disable layout")
	}
	if doc.Nodes[1].X != 400 || doc.Nodes[1].Width != 100 {
		t.Errorf("node b = %+v", doc.Nodes[1])
	}
	if got := doc.Labels(); !reflect.DeepEqual(got, map[string]string{"a": "A", "b": "b"}) {
		t.Errorf("Labels = %v", got)
	}
}

func TestAutoLayoutDefault(t *testing.T) {
	doc, err := Parse([]byte(`{"nodes":[{"id":"a"}]}`), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if !doc.AutoLayoutEnabled() {
		t.Error("auto layout should default to on")
	}
	cfg := doc.Config()
	if !cfg.AutoLayout || cfg.Strategy != diagram.StrategySmart || cfg.Options != diagram.DefaultLayoutOptions() {
		t.Errorf("Config = %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code zerrors.Code
	}{
		{"empty", `{"nodes":[]}`, zerrors.ErrCodeInvalidDocument},
		{"bad strategy", `{"strategy":"spiral","nodes":[{"id":"a"}]}`, zerrors.ErrCodeInvalidStrategy},
		{"missing id", `{"nodes":[{"x":1}]}`, zerrors.ErrCodeInvalidDocument},
		{"control char", `{"nodes":[{"id":"a\u0007"}]}`, zerrors.ErrCodeInvalidDocument},
		{"duplicate", `{"nodes":[{"id":"a"},{"id":"a"}]}`, zerrors.ErrCodeInvalidDocument},
		{"node and wrapper share id", `{"wrappers":[{"id":"a"}],"nodes":[{"id":"a"}]}`, zerrors.ErrCodeInvalidDocument},
		{"group is a node", `{"nodes":[{"id":"a"},{"id":"b","group":"a"}]}`, zerrors.ErrCodeInvalidDocument},
		{"edge without target", `{"nodes":[{"id":"a"}],"edges":[{"from":"a"}]}`, zerrors.ErrCodeInvalidDocument},
		{"malformed", `{"nodes":`, zerrors.ErrCodeInvalidDocument},
		{"dangling edge", `{"nodes":[{"id":"a"}],"edges":[{"from":"a","to":"ghost"}]}`, ""},
		{"unknown group", `{"nodes":[{"id":"a","group":"nowhere"}]}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), FormatJSON)
			if tt.code == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if got := zerrors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}
}

func TestEmptyDocumentSentinel(t *testing.T) {
	_, err := Parse([]byte(`{}`), FormatJSON)
	if !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("err = %v, want ErrEmptyDocument", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]Format{"a.json": FormatJSON, "dir/B.TOML": FormatTOML} {
		got, err := FormatFromPath(path)
		if err != nil || got != want {
			t.Errorf("FormatFromPath(%q) = %q, %v; want %q", path, got, err, want)
		}
	}
	if _, err := FormatFromPath("diagram.yaml"); !zerrors.Is(err, zerrors.ErrCodeInvalidFormat) {
		t.Errorf("yaml: err = %v, want INVALID_FORMAT", err)
	}
}

func TestReadFileNotFound(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	if !zerrors.Is(err, zerrors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	doc, err := Parse([]byte(sampleJSON), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"d.json", "d.toml"} {
		path := filepath.Join(t.TempDir(), name)
		if err := WriteFile(path, doc); err != nil {
			t.Fatalf("%s: write: %v", name, err)
		}
		back, err := ReadFile(path)
		if err != nil {
			t.Fatalf("%s: read: %v", name, err)
		}
		if !reflect.DeepEqual(back, doc) {
			t.Errorf("%s: round trip changed the document:\n%+v\n%+v", name, back, doc)
		}
	}
}

func TestHash(t *testing.T) {
	a, _ := Parse([]byte(sampleJSON), FormatJSON)
	b, _ := Parse([]byte(sampleTOML), FormatTOML)
	ha, err := a.Hash()
	if err != nil {
		t.Fatal(err)
	}
	hb, _ := b.Hash()
	if ha != hb || len(ha) != 64 {
		t.Errorf("hashes %q and %q should match", ha, hb)
	}
	b.Nodes[0].Width = 101
	if hc, _ := b.Hash(); hc == ha {
		t.Error("changed document should hash differently")
	}
}

func mountSample(t *testing.T) *canvas.Canvas {
	t.Helper()
	doc, err := Parse([]byte(sampleJSON), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	c := canvas.New(doc.Config())
	t.Cleanup(c.Close)
	doc.Mount(c)
	return c
}

func TestCapture(t *testing.T) {
	c := mountSample(t)
	c.Diagram().Select("a")
	snap := Capture(c.Diagram(), map[string]string{"a": "A"})

	if snap.Version != SnapshotVersion || snap.ActiveID != "a" {
		t.Errorf("header = %+v", snap)
	}
	if snap.Bounds != geom.R(0, 0, 500, 50) {
		t.Errorf("Bounds = %+v", snap.Bounds)
	}
	a, _ := snap.Node("a")
	b, ok := snap.Node("b")
	if !ok || a.Label != "A" || b.Label != "b" {
		t.Errorf("labels = %q, %q", a.Label, b.Label)
	}
	if b.Rect != geom.R(400, 0, 100, 50) || !b.Related || a.Related {
		t.Errorf("b = %+v, a = %+v", b, a)
	}

	e, ok := snap.Edge("a->b")
	if !ok {
		t.Fatal("edge a->b missing")
	}
	if e.Path != "M 100 25 L 400 25" {
		t.Errorf("Path = %q", e.Path)
	}
	want := []Segment{{Op: "M", Points: []geom.Point{{X: 100, Y: 25}}}, {Op: "L", Points: []geom.Point{{X: 400, Y: 25}}}}
	if !reflect.DeepEqual(e.Segments, want) {
		t.Errorf("Segments = %+v", e.Segments)
	}
	if e.FromSide != diagram.DotRight || e.ToSide != diagram.DotLeft {
		t.Errorf("sides = %s, %s", e.FromSide, e.ToSide)
	}
	if !e.Active || e.Dashes == nil || e.LabelPos != geom.Pt(250, 25) {
		t.Errorf("active edge = %+v", e)
	}
}

func TestMountViewport(t *testing.T) {
	doc, _ := Parse([]byte(`{"auto_layout":false,"viewport":{"x":10,"y":20,"zoom":2},"nodes":[{"id":"a"}]}`), FormatJSON)
	c := canvas.New(doc.Config())
	defer c.Close()
	doc.Mount(c)
	tr := c.Diagram().Viewport()
	if tr.Pan != geom.Pt(10, 20) || tr.Scale != 2 {
		t.Errorf("viewport = %+v", tr)
	}
	snap := Capture(c.Diagram(), nil)
	if n, _ := snap.Node("a"); n.Rect != geom.R(0, 0, diagram.DefaultNodeWidth, diagram.DefaultNodeHeight) {
		t.Errorf("node rect under zoom = %+v", n.Rect)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	snap := Capture(mountSample(t).Diagram(), nil)
	data, err := MarshalSnapshot(snap)
	if err != nil {
		t.Fatal(err)
	}
	back, err := UnmarshalSnapshot(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back, snap) {
		t.Errorf("round trip changed the snapshot:\n%+v\n%+v", back, snap)
	}

	path := filepath.Join(t.TempDir(), "snap.json")
	if err := WriteSnapshotFile(snap, path); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadSnapshotFile(path); err != nil {
		t.Errorf("ReadSnapshotFile: %v", err)
	}
}

func TestUnmarshalSnapshotRejects(t *testing.T) {
	tests := map[string]string{
		"newer version": `{"version":99,"nodes":[{"id":"a"}]}`,
		"no items":      `{"version":1}`,
		"edge no path":  `{"nodes":[{"id":"a"}],"edges":[{"id":"a->a"}]}`,
		"malformed":     `[`,
	}
	for name, data := range tests {
		if _, err := UnmarshalSnapshot([]byte(data)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	s, err := UnmarshalSnapshot([]byte(`{"nodes":[{"id":"a"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if s.Version != SnapshotVersion || s.Viewport.Zoom != 1 {
		t.Errorf("defaults not applied: %+v", s)
	}
}

func TestFrame(t *testing.T) {
	s := Snapshot{Bounds: geom.R(0, 0, 100, 50)}
	if got := s.Frame(10); got != geom.R(-10, -10, 120, 70) {
		t.Errorf("Frame = %+v", got)
	}
	if got := (&Snapshot{}).Frame(5); got != geom.R(-5, -5, 10, 10) {
		t.Errorf("empty Frame = %+v", got)
	}
}

func TestValidateReportsField(t *testing.T) {
	tests := []struct {
		doc   string
		field string
	}{
		{`{"nodes":[{"id":"a"},{"id":"a"}]}`, "nodes[1].id"},
		{`{"wrappers":[{"id":""}],"nodes":[{"id":"a"}]}`, "wrappers[0].id"},
		{`{"nodes":[{"id":"a"},{"id":"b","group":"a"}]}`, "nodes[1].group"},
		{`{"nodes":[{"id":"a"}],"edges":[{"from":"a","to":"a"},{"to":"a"}]}`, "edges[1]"},
	}
	for _, tt := range tests {
		_, err := Parse([]byte(tt.doc), FormatJSON)
		if got := zerrors.FieldOf(err); got != tt.field {
			t.Errorf("Parse(%s) field = %q, want %q (err: %v)", tt.doc, got, tt.field, err)
		}
	}
}
