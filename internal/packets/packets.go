package packets

import (
	"errors"
	"fmt"
	"math/rand"

	"gridrender/internal/grid"
	"gridrender/internal/materials"
	"gridrender/internal/primitives"
	"gridrender/internal/scene"
)

// ErrZeroLengthRoute is returned when a route's start and end coordinates are equal.
var ErrZeroLengthRoute = errors.New("packets: start and end coordinates are equal")

// Options controls packet traffic. TravelTime is the number of frames a packet needs per
// cell of distance; LeadOut is how many frames before the end a packet may still start.
type Options struct {
	Count      int     `yaml:"count" mapstructure:"count"`
	TravelTime int     `yaml:"travel_time" mapstructure:"travel_time"`
	LeadOut    int     `yaml:"lead_out" mapstructure:"lead_out"`
	Radius     float32 `yaml:"radius" mapstructure:"radius"`
}

// ErrInvalidOptions is returned by Validate for a negative count or lead-out, or a
// non-positive travel time or radius.
var ErrInvalidOptions = errors.New("packets: invalid options")

// Validate checks Count >= 0, TravelTime > 0, LeadOut >= 0 and Radius > 0.
func (o Options) Validate() error {
	if o.Count < 0 || o.TravelTime <= 0 || o.LeadOut < 0 || o.Radius <= 0 {
		return fmt.Errorf("%w: count %d travel time %d lead-out %d radius %g",
			ErrInvalidOptions, o.Count, o.TravelTime, o.LeadOut, o.Radius)
	}
	return nil
}

// DefaultOptions is 30 packets at 10 frames per cell starting up to 500 frames before the end.
func DefaultOptions() Options {
	return Options{Count: 30, TravelTime: 10, LeadOut: 500, Radius: 0.3}
}

const (
	packetUSegments = 16
	packetVSegments = 8
)

// Route is one packet's trip through the grid.
type Route struct {
	Start      grid.Coord
	End        grid.Coord
	StartFrame int
}

// Stops returns the dimension-ordered waypoints: start, after X, after Y, after Z.
func (r Route) Stops() [4]grid.Coord {
	return [4]grid.Coord{
		r.Start,
		{X: r.End.X, Y: r.Start.Y, Z: r.Start.Z},
		{X: r.End.X, Y: r.End.Y, Z: r.Start.Z},
		r.End,
	}
}

// Frames returns the frame at which each stop is reached. Each leg lasts |delta| * travel frames.
func (r Route) Frames(travel int) [4]int {
	f := [4]int{r.StartFrame}
	f[1] = f[0] + abs(r.End.X-r.Start.X)*travel
	f[2] = f[1] + abs(r.End.Y-r.Start.Y)*travel
	f[3] = f[2] + abs(r.End.Z-r.Start.Z)*travel
	return f
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func randomCoord(rng *rand.Rand, g grid.Options) grid.Coord {
	return grid.Coord{X: rng.Intn(g.SizeX), Y: rng.Intn(g.SizeY), Z: rng.Intn(g.SizeZ)}
}

// RandomRoute picks uniform start and end cells, re-rolling the end until it differs from
// the start, and a uniform start frame in [0, max(0, endFrame-leadOut)].
// The grid must have at least two cells.
func RandomRoute(rng *rand.Rand, g grid.Options, endFrame, leadOut int) Route {
	r := Route{Start: randomCoord(rng, g), End: randomCoord(rng, g)}
	for r.End == r.Start {
		r.End = randomCoord(rng, g)
	}
	if maxStart := endFrame - leadOut; maxStart > 0 {
		r.StartFrame = rng.Intn(maxStart + 1)
	}
	return r
}

// Animate keys the packet's visibility and location along route: hidden until start-1,
// visible at start, one location key per stop, hidden again one frame after arrival.
func Animate(b *scene.Builder, obj scene.ObjectID, g grid.Options, route Route, travel int) error {
	if route.Start == route.End {
		return ErrZeroLengthRoute
	}
	if !g.Contains(route.Start) || !g.Contains(route.End) {
		return fmt.Errorf("packets: route %v -> %v leaves the grid", route.Start, route.End)
	}
	o := b.Object(obj)
	if o == nil {
		return fmt.Errorf("packets: %w: object %d", scene.ErrUnknownHandle, obj)
	}
	frames := route.Frames(travel)
	if err := o.KeyHidden(route.StartFrame-1, true); err != nil {
		return err
	}
	if err := o.KeyHidden(route.StartFrame, false); err != nil {
		return err
	}
	for i, c := range route.Stops() {
		o.Location = g.Position(c)
		if err := o.KeyLocation(frames[i]); err != nil {
			return err
		}
	}
	return o.KeyHidden(frames[3]+1, true)
}

// Traffic records the packets created by Build.
type Traffic struct {
	Collection scene.CollectionID
	Packets    []scene.ObjectID
	Routes     []Route
}

// Build creates opts.Count packets in an AnimationObjects collection, each routed between two
// random cells with a random emissive material from pal. The timeline end is read from b.
func Build(b *scene.Builder, rng *rand.Rand, g grid.Options, opts Options, pal *materials.Palette) (*Traffic, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(pal.Packets) == 0 {
		return nil, errors.New("packets: palette has no packet materials")
	}
	coll, err := b.NewCollection("AnimationObjects")
	if err != nil {
		return nil, fmt.Errorf("packets: %w", err)
	}
	tr := &Traffic{Collection: coll}
	end := b.EndFrame()
	for i := 0; i < opts.Count; i++ {
		route := RandomRoute(rng, g, end, opts.LeadOut)
		mat := pal.Packets[rng.Intn(len(pal.Packets))]
		id, err := primitives.Create(b, fmt.Sprintf("Packet_%d", i), coll, primitives.Sphere, primitives.Params{
			Radius:    opts.Radius,
			USegments: packetUSegments,
			VSegments: packetVSegments,
		})
		if err != nil {
			return nil, err
		}
		if err := b.AppendMaterial(b.Object(id).Mesh, mat); err != nil {
			return nil, err
		}
		if err := Animate(b, id, g, route, opts.TravelTime); err != nil {
			return nil, err
		}
		tr.Packets = append(tr.Packets, id)
		tr.Routes = append(tr.Routes, route)
	}
	return tr, nil
}
