package wire

import (
	"os"
	"strconv"
)

// DefaultMaxDepth bounds message nesting when Config.MaxDepth is unset.
const DefaultMaxDepth = 100

// Config controls optional behaviors of the decoder and encoder.
// The zero value matches DefaultConfig without environment overrides.
type Config struct {
	// MaxDepth is the deepest nested message the decoder will descend into.
	// The outermost message is depth 0. Values <= 0 select DefaultMaxDepth.
	MaxDepth int

	// ShortestVarints switches the Encoder from fixed five/ten byte varints
	// to canonical shortest-form emission. Off by default because existing
	// fixtures depend on the fixed-width byte layout.
	ShortestVarints bool
}

// DefaultConfig returns the default configuration with optional environment
// overrides applied:
//
//	RAWPROTO_MAX_DEPTH=<n>
//	RAWPROTO_SHORTEST_VARINTS=1|true
func DefaultConfig() Config {
	c := Config{MaxDepth: DefaultMaxDepth}
	if v := os.Getenv("RAWPROTO_MAX_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxDepth = n
		}
	}
	if v := os.Getenv("RAWPROTO_SHORTEST_VARINTS"); v == "1" || v == "true" {
		c.ShortestVarints = true
	}
	return c
}

func (c Config) maxDepth() int {
	if c.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return c.MaxDepth
}
