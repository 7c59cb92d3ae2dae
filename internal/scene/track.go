package scene

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Property is an animatable object property.
type Property int

const (
	// Location is the object's location (3 channels).
	Location Property = iota
	// Rotation is the object's XYZ Euler rotation in radians (3 channels).
	Rotation
	// Hidden hides the object in both viewport and render (1 channel, 0 or 1).
	Hidden
)

// Channels is the number of values per keyframe for the property.
func (p Property) Channels() int {
	if p == Hidden {
		return 1
	}
	return 3
}

func (p Property) String() string {
	switch p {
	case Location:
		return "location"
	case Rotation:
		return "rotation_euler"
	case Hidden:
		return "hidden"
	}
	return fmt.Sprintf("Property(%d)", int(p))
}

// Interpolation is how values are filled in between keyframes.
type Interpolation int

const (
	// InterpDefault leaves the host's default easing (bezier) in place.
	InterpDefault Interpolation = iota
	// InterpLinear gives constant velocity between keys.
	InterpLinear
	// InterpConstant holds each key's value until the next key.
	InterpConstant
)

func (i Interpolation) String() string {
	switch i {
	case InterpLinear:
		return "LINEAR"
	case InterpConstant:
		return "CONSTANT"
	}
	return "BEZIER"
}

// Keyframe is one (frame, value) pair. Value has Property.Channels entries.
type Keyframe struct {
	Frame int
	Value []float32
}

// Track is the ordered keyframe list of one property on one object. Keys are kept in
// insertion order; callers are responsible for inserting frames in increasing order.
type Track struct {
	Property      Property
	Interpolation Interpolation
	Keys          []Keyframe
}

// InsertKeyframe appends a key for prop at frame, creating the track on first use.
func (o *Object) InsertKeyframe(prop Property, frame int, value ...float32) error {
	if len(value) != prop.Channels() {
		return fmt.Errorf("scene: %s key on %q needs %d values, got %d", prop, o.Name, prop.Channels(), len(value))
	}
	t := o.Track(prop)
	if t == nil {
		t = &Track{Property: prop}
		if prop == Hidden {
			t.Interpolation = InterpConstant
		}
		o.tracks = append(o.tracks, t)
	}
	v := make([]float32, len(value))
	copy(v, value)
	t.Keys = append(t.Keys, Keyframe{Frame: frame, Value: v})
	return nil
}

// KeyLocation keys the object's current location at frame.
func (o *Object) KeyLocation(frame int) error {
	return o.InsertKeyframe(Location, frame, o.Location[0], o.Location[1], o.Location[2])
}

// KeyRotation keys the object's current rotation at frame.
func (o *Object) KeyRotation(frame int) error {
	return o.InsertKeyframe(Rotation, frame, o.Rotation[0], o.Rotation[1], o.Rotation[2])
}

// KeyHidden sets the hide flags to hidden and keys them at frame.
func (o *Object) KeyHidden(frame int, hidden bool) error {
	o.HideRender = hidden
	o.HideViewport = hidden
	var v float32
	if hidden {
		v = 1
	}
	return o.InsertKeyframe(Hidden, frame, v)
}

// Frames returns the key frames in order.
func (t *Track) Frames() []int {
	out := make([]int, len(t.Keys))
	for i, k := range t.Keys {
		out[i] = k.Frame
	}
	return out
}

// Sample evaluates the track at frame. Before the first key and after the last key the
// nearest key's value is held. Keys that share a frame resolve to the last one inserted.
// Default interpolation is approximated with smoothstep easing.
func (t *Track) Sample(frame float32) []float32 {
	n := len(t.Keys)
	out := make([]float32, t.Property.Channels())
	if n == 0 {
		return out
	}
	if frame <= float32(t.Keys[0].Frame) {
		copy(out, t.Keys[0].Value)
		return out
	}
	last := t.Keys[n-1]
	if frame >= float32(last.Frame) {
		copy(out, last.Value)
		return out
	}
	i := 0
	for i+1 < n && float32(t.Keys[i+1].Frame) <= frame {
		i++
	}
	a, b := t.Keys[i], t.Keys[i+1]
	span := float32(b.Frame - a.Frame)
	if span <= 0 || t.Interpolation == InterpConstant {
		copy(out, a.Value)
		return out
	}
	u := (frame - float32(a.Frame)) / span
	if t.Interpolation == InterpDefault {
		u = smoothStep(u)
	}
	for c := range out {
		out[c] = a.Value[c] + (b.Value[c]-a.Value[c])*u
	}
	return out
}

// smoothStep is cubic easing: 3t^2 - 2t^3.
func smoothStep(t float32) float32 {
	t = math32.Max(0, math32.Min(1, t))
	return t * t * (3 - 2*t)
}
