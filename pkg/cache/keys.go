package cache

import "fmt"

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey is the key for one rendered output of a chart script.
	ArtifactKey(scriptHash string, opts ArtifactKeyOpts) string
	// DocumentKey is the key for the JSON document built from a script.
	DocumentKey(scriptHash, configHash string) string
}

// ArtifactKeyOpts are the render settings that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	ConfigHash string  `json:"config_hash"`
	LaneMaxBar float64 `json:"lane_max_bar,omitempty"`
	Detailed   bool    `json:"detailed,omitempty"`
	Scale      float64 `json:"scale,omitempty"`
}

// DefaultKeyer hashes every input into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) ArtifactKey(scriptHash string, opts ArtifactKeyOpts) string {
	return hashKey(fmt.Sprintf("artifact:%s", opts.Format), scriptHash, opts)
}

func (DefaultKeyer) DocumentKey(scriptHash, configHash string) string {
	return hashKey("document", scriptHash, configHash)
}
