package cache

import "fmt"

// LayoutKeyOpts holds the options that change a packed layout.
type LayoutKeyOpts struct {
	Thresholds []float64 `json:"thresholds"`
}

// ArtifactKeyOpts holds the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format  string  `json:"format"`
	Style   string  `json:"style"`
	Color   string  `json:"color,omitempty"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Padding float64 `json:"padding"`
	Title   string  `json:"title,omitempty"`
	Link    string  `json:"link,omitempty"`
	Source  string  `json:"source,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey keys a raw HTTP response in a client namespace.
	HTTPKey(namespace, key string) string
	// BlockKey keys a decoded block by source and height.
	BlockKey(source string, height int64) string
	// LayoutKey keys a layout by the hash of its values.
	LayoutKey(valuesHash string, opts LayoutKeyOpts) string
	// ArtifactKey keys a rendered artifact by the hash of its layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

func (DefaultKeyer) BlockKey(source string, height int64) string {
	return fmt.Sprintf("block:%s:%d", source, height)
}

func (DefaultKeyer) LayoutKey(valuesHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", valuesHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
