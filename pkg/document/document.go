package document

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/zenui/zendiagram/pkg/cache"
	"github.com/zenui/zendiagram/pkg/canvas"
	"github.com/zenui/zendiagram/pkg/diagram"
	"github.com/zenui/zendiagram/pkg/engine"
	zerrors "github.com/zenui/zendiagram/pkg/errors"
	"github.com/zenui/zendiagram/pkg/geom"
)

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", zerrors.New(zerrors.ErrCodeInvalidFormat, "cannot tell document format of %s (use .json or .toml)", path)
}

// ErrEmptyDocument is returned for documents without nodes or wrappers.
var ErrEmptyDocument = zerrors.New(zerrors.ErrCodeInvalidDocument, "document has no nodes or wrappers")

// Document is an authored diagram.
type Document struct {
	Title    string           `json:"title,omitempty" toml:"title,omitempty"`
	Strategy diagram.Strategy `json:"strategy,omitempty" toml:"strategy,omitempty"`
	// AutoLayout defaults to true when unset.
	AutoLayout *bool                 `json:"auto_layout,omitempty" toml:"auto_layout,omitempty"`
	Options    diagram.LayoutOptions `json:"options,omitzero" toml:"options,omitempty"`
	Viewport   *Viewport             `json:"viewport,omitempty" toml:"viewport,omitempty"`

	Nodes    []Node         `json:"nodes" toml:"nodes"`
	Wrappers []Wrapper      `json:"wrappers,omitempty" toml:"wrappers,omitempty"`
	Edges    []diagram.Edge `json:"edges,omitempty" toml:"edges,omitempty"`
}

// Node is a node with its label and authored position. Grouped nodes are
// positioned relative to their wrapper.
type Node struct {
	diagram.Node
	Label string  `json:"label,omitempty" toml:"label,omitempty"`
	X     float64 `json:"x,omitempty" toml:"x,omitempty"`
	Y     float64 `json:"y,omitempty" toml:"y,omitempty"`
}

// Wrapper is a wrapper with its label and authored position.
type Wrapper struct {
	diagram.Wrapper
	Label string  `json:"label,omitempty" toml:"label,omitempty"`
	X     float64 `json:"x,omitempty" toml:"x,omitempty"`
	Y     float64 `json:"y,omitempty" toml:"y,omitempty"`
}

// Viewport is a camera position: pan in screen pixels and zoom.
type Viewport struct {
	X    float64 `json:"x" toml:"x"`
	Y    float64 `json:"y" toml:"y"`
	Zoom float64 `json:"zoom" toml:"zoom"`
}

// AutoLayoutEnabled reports whether the document asks for automatic layout.
func (d *Document) AutoLayoutEnabled() bool { return d.AutoLayout == nil || *d.AutoLayout }

// Labels maps item ids to display labels, falling back to the id.
func (d *Document) Labels() map[string]string {
	out := make(map[string]string, len(d.Nodes)+len(d.Wrappers))
	for _, n := range d.Nodes {
		out[n.ID] = cmp.Or(n.Label, n.ID)
	}
	for _, w := range d.Wrappers {
		out[w.ID] = cmp.Or(w.Label, w.ID)
	}
	return out
}

// Validate checks the document for problems the engine cannot recover from:
// missing or malformed ids, ids used twice and unknown strategies. Unknown
// group references and dangling edges are allowed; the engine keeps such
// nodes top-level and skips such edges.
func (d *Document) Validate() error {
	if len(d.Nodes) == 0 && len(d.Wrappers) == 0 {
		return ErrEmptyDocument
	}
	if _, err := diagram.ParseStrategy(string(d.Strategy)); err != nil {
		return err
	}

	seen := make(map[string]string, len(d.Nodes)+len(d.Wrappers))
	claim := func(kind, list string, i int, id string) error {
		field := fmt.Sprintf("%s[%d].id", list, i)
		if err := zerrors.ValidateID(id); err != nil {
			return zerrors.Wrap(zerrors.ErrCodeInvalidDocument, err, "bad %s id", kind).At(field)
		}
		if prev, dup := seen[id]; dup {
			return zerrors.New(zerrors.ErrCodeInvalidDocument, "%s id %q already used by a %s", kind, id, prev).At(field)
		}
		seen[id] = kind
		return nil
	}
	for i, w := range d.Wrappers {
		if err := claim("wrapper", "wrappers", i, w.ID); err != nil {
			return err
		}
	}
	for i, n := range d.Nodes {
		if err := claim("node", "nodes", i, n.ID); err != nil {
			return err
		}
		if n.GroupID != "" && seen[n.GroupID] == "node" {
			return zerrors.New(zerrors.ErrCodeInvalidDocument, "group %q is a node, not a wrapper", n.GroupID).
				At(fmt.Sprintf("nodes[%d].group", i))
		}
	}
	for i, e := range d.Edges {
		if e.From == "" || e.To == "" {
			return zerrors.New(zerrors.ErrCodeInvalidDocument, "from and to are required").At(fmt.Sprintf("edges[%d]", i))
		}
	}
	return nil
}

// Config returns an engine configuration carrying the document's layout
// settings.
func (d *Document) Config() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.AutoLayout = d.AutoLayoutEnabled()
	if d.Strategy != "" {
		cfg.Strategy = d.Strategy
	}
	cfg.Options = d.Options.WithDefaults().Sanitize()
	return cfg
}

// Mount places every wrapper, node and edge of the document on c and
// applies the document viewport, if any. Wrappers are mounted first so
// grouped nodes find their parent.
func (d *Document) Mount(c *canvas.Canvas) {
	for _, w := range d.Wrappers {
		c.AddWrapper(w.Wrapper, geom.Pt(w.X, w.Y))
	}
	for _, n := range d.Nodes {
		c.AddNode(n.Node, geom.Pt(n.X, n.Y))
	}
	c.Diagram().SetEdges(d.Edges)
	if v := d.Viewport; v != nil {
		c.Diagram().SetViewport(v.X, v.Y, v.Zoom)
	}
}

// Hash returns a content hash of the document's canonical JSON encoding.
func (d *Document) Hash() (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("hash document: %w", err)
	}
	return cache.Hash(data), nil
}

// ==== Reading ====

// Read decodes a document from r and validates it. Read does not close r.
func Read(r io.Reader, f Format) (*Document, error) {
	var doc Document
	switch f {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, zerrors.Wrap(zerrors.ErrCodeInvalidDocument, err, "decode json")
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, zerrors.Wrap(zerrors.ErrCodeInvalidDocument, err, "decode toml")
		}
	default:
		return nil, zerrors.New(zerrors.ErrCodeInvalidFormat, "unsupported document format %q", f)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Parse decodes a document held in memory.
func Parse(data []byte, f Format) (*Document, error) {
	return Read(bytes.NewReader(data), f)
}

// ReadFile reads the document at path, picking the format from its
// extension.
func ReadFile(path string) (*Document, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, zerrors.Wrap(zerrors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	doc, err := Read(file, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// ==== Writing ====

// Write encodes doc to w.
func Write(w io.Writer, doc *Document, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatTOML:
		return toml.NewEncoder(w).Encode(doc)
	}
	return zerrors.New(zerrors.ErrCodeInvalidFormat, "unsupported document format %q", f)
}

// WriteFile writes doc to path in the format of its extension.
func WriteFile(path string, doc *Document) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Write(&buf, doc, f); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
