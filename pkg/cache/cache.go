// Package cache stores derived diagram data: laid out snapshots and
// rendered artifacts.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache]
// for the HTTP service and [NullCache] when caching is disabled. Keys are
// built by a [Keyer] from content hashes and options, so identical inputs
// always map to the same entry.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value under key. hit is false on a miss or expiry.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend.
	Close() error
}

// Default entry lifetimes.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 30 * 24 * time.Hour
)

// LayoutKeyOpts holds the options that influence a layout result.
type LayoutKeyOpts struct {
	Strategy          string  `json:"strategy"`
	AutoLayout        bool    `json:"auto_layout"`
	NodeSpacing       float64 `json:"node_spacing"`
	Iterations        int     `json:"iterations"`
	EdgeWeight        float64 `json:"edge_weight"`
	RepulsionStrength float64 `json:"repulsion_strength"`
	Width             float64 `json:"width"`
	Height            float64 `json:"height"`
	ActiveID          string  `json:"active_id,omitempty"`
}

// ArtifactKeyOpts holds the options that influence a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	Renderer string  `json:"renderer,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
	Labels   bool    `json:"labels"`
	Grid     float64 `json:"grid,omitempty"`
	Margin   float64 `json:"margin"`
}

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey keys a layout snapshot of the document with the given hash.
	LayoutKey(docHash string, opts LayoutKeyOpts) string
	// ArtifactKey keys a rendering of the snapshot with the given hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes every option into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns "layout:<hash>".
func (DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", docHash, opts)
}

// ArtifactKey returns "artifact:<format>:<hash>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:"+opts.Format, layoutHash, opts)
}
