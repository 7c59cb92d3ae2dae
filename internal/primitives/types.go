package primitives

import (
	"fmt"
	"strings"
)

// Kind is a primitive shape the builder can generate.
type Kind string

const (
	Cube   Kind = "CUBE"
	Sphere Kind = "SPHERE"
)

// Params is the definition for a primitive. Cubes use Size; spheres use Radius and the
// horizontal (USegments) and vertical (VSegments) segment counts.
type Params struct {
	Size      float32 `yaml:"size,omitempty"`
	Radius    float32 `yaml:"radius,omitempty"`
	USegments int     `yaml:"u_segments,omitempty"`
	VSegments int     `yaml:"v_segments,omitempty"`
}

// ParseKind maps a kind name (case-insensitive) to a Kind. Unknown names yield ErrUnsupportedPrimitiveKind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToUpper(strings.TrimSpace(s))); k {
	case Cube, Sphere:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedPrimitiveKind, s)
}
