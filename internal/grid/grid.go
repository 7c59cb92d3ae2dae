package grid

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"gridrender/internal/materials"
	"gridrender/internal/primitives"
	"gridrender/internal/scene"
)

// ErrGridTooSmall is returned when an axis is empty or the grid has fewer than two cells,
// since packets need distinct start and end cells.
var ErrGridTooSmall = errors.New("grid: grid needs at least two cells")

// Options controls the processor grid layout.
// SizeX/SizeY/SizeZ are cell counts per axis; Spacing is the world distance between cells.
// CoreSize is the core cube edge, RouterSize the router sphere radius and PlateThickness
// the thin axis of each cooling plate.
type Options struct {
	SizeX          int     `yaml:"size_x" mapstructure:"size_x"`
	SizeY          int     `yaml:"size_y" mapstructure:"size_y"`
	SizeZ          int     `yaml:"size_z" mapstructure:"size_z"`
	CoreSize       float32 `yaml:"core_size" mapstructure:"core_size"`
	RouterSize     float32 `yaml:"router_size" mapstructure:"router_size"`
	Spacing        float32 `yaml:"spacing" mapstructure:"spacing"`
	PlateThickness float32 `yaml:"plate_thickness" mapstructure:"plate_thickness"`
}

// DefaultOptions is a 16x16x16 grid at 1.5 spacing.
func DefaultOptions() Options {
	return Options{
		SizeX:          16,
		SizeY:          16,
		SizeZ:          16,
		CoreSize:       0.4,
		RouterSize:     0.15,
		Spacing:        1.5,
		PlateThickness: 0.05,
	}
}

// Router sphere resolution.
const (
	routerUSegments = 16
	routerVSegments = 8
)

// Validate checks the grid has at least one cell per axis, two cells overall and positive sizes.
func (o Options) Validate() error {
	if o.SizeX < 1 || o.SizeY < 1 || o.SizeZ < 1 || o.Cells() < 2 {
		return fmt.Errorf("%w: %dx%dx%d", ErrGridTooSmall, o.SizeX, o.SizeY, o.SizeZ)
	}
	if o.Spacing <= 0 || o.CoreSize <= 0 || o.RouterSize <= 0 || o.PlateThickness <= 0 {
		return fmt.Errorf("grid: sizes must be positive (spacing %v core %v router %v plate %v)",
			o.Spacing, o.CoreSize, o.RouterSize, o.PlateThickness)
	}
	return nil
}

// Cells is the number of grid cells.
func (o Options) Cells() int {
	return o.SizeX * o.SizeY * o.SizeZ
}

// Coord is an integer grid coordinate.
type Coord struct {
	X, Y, Z int
}

// Contains reports whether c lies inside the grid.
func (o Options) Contains(c Coord) bool {
	return c.X >= 0 && c.X < o.SizeX && c.Y >= 0 && c.Y < o.SizeY && c.Z >= 0 && c.Z < o.SizeZ
}

// Position maps a coordinate to world space: coordinate * spacing.
func (o Options) Position(c Coord) mgl32.Vec3 {
	return o.PositionOf(float32(c.X), float32(c.Y), float32(c.Z))
}

// PositionOf maps a fractional grid coordinate (e.g. a centroid or a mid-layer) to world space.
func (o Options) PositionOf(x, y, z float32) mgl32.Vec3 {
	return mgl32.Vec3{x, y, z}.Mul(o.Spacing)
}

// Centroid is the world position of the grid centre.
func (o Options) Centroid() mgl32.Vec3 {
	return o.PositionOf(float32(o.SizeX-1)/2, float32(o.SizeY-1)/2, float32(o.SizeZ-1)/2)
}

// Extent is the distance from the first to the last cell centre on each axis.
func (o Options) Extent() mgl32.Vec3 {
	return o.PositionOf(float32(o.SizeX-1), float32(o.SizeY-1), float32(o.SizeZ-1))
}

// Layout records the handles created while assembling the grid.
type Layout struct {
	BaseModels scene.CollectionID
	Grid       scene.CollectionID
	Chiplets   scene.CollectionID
	Cooling    scene.CollectionID

	CoreMesh   scene.MeshID
	RouterMesh scene.MeshID
	PlateMesh  scene.MeshID

	Chiplet scene.ObjectID
	Cores   int
	Routers int
	Plates  int
}

// Build assembles, in order, the hidden base models, the core/router grid, the chiplet shell
// and the cooling plates.
func Build(b *scene.Builder, opts Options, pal *materials.Palette) (*Layout, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	l := &Layout{}
	if err := l.buildBaseModels(b, opts, pal); err != nil {
		return nil, err
	}
	if err := l.buildGrid(b, opts); err != nil {
		return nil, err
	}
	if err := l.buildChiplets(b, opts, pal); err != nil {
		return nil, err
	}
	if err := l.buildCooling(b, opts, pal); err != nil {
		return nil, err
	}
	return l, nil
}

func newCollection(b *scene.Builder, name string) (scene.CollectionID, error) {
	id, err := b.NewCollection(name)
	if err != nil {
		return 0, fmt.Errorf("grid: %w", err)
	}
	return id, nil
}

// buildBaseModels creates the core and router templates in a collection excluded from render
// and viewport. Materials go on the meshes before any instance exists.
func (l *Layout) buildBaseModels(b *scene.Builder, opts Options, pal *materials.Palette) error {
	coll, err := newCollection(b, "BaseModels")
	if err != nil {
		return err
	}
	l.BaseModels = coll
	core, err := primitives.Create(b, "Base_ForthCore", coll, primitives.Cube, primitives.Params{Size: opts.CoreSize})
	if err != nil {
		return err
	}
	l.CoreMesh = b.Object(core).Mesh
	if err := b.AppendMaterial(l.CoreMesh, pal.Core); err != nil {
		return err
	}
	router, err := primitives.Create(b, "Base_NoCRouter", coll, primitives.Sphere, primitives.Params{
		Radius:    opts.RouterSize,
		USegments: routerUSegments,
		VSegments: routerVSegments,
	})
	if err != nil {
		return err
	}
	l.RouterMesh = b.Object(router).Mesh
	if err := b.AppendMaterial(l.RouterMesh, pal.Router); err != nil {
		return err
	}
	c := b.Collection(coll)
	c.HideRender = true
	c.HideViewport = true
	return nil
}

// buildGrid instances one core and one router per cell, co-located at the cell position.
func (l *Layout) buildGrid(b *scene.Builder, opts Options) error {
	coll, err := newCollection(b, "ForthGrid")
	if err != nil {
		return err
	}
	l.Grid = coll
	for z := 0; z < opts.SizeZ; z++ {
		for y := 0; y < opts.SizeY; y++ {
			for x := 0; x < opts.SizeX; x++ {
				pos := opts.Position(Coord{x, y, z})
				core, err := primitives.Instance(b, fmt.Sprintf("Core_%d_%d_%d", x, y, z), coll, l.CoreMesh)
				if err != nil {
					return err
				}
				b.Object(core).Location = pos
				router, err := primitives.Instance(b, fmt.Sprintf("Router_%d_%d_%d", x, y, z), coll, l.RouterMesh)
				if err != nil {
					return err
				}
				b.Object(router).Location = pos
				l.Cores++
				l.Routers++
			}
		}
	}
	return nil
}

// buildChiplets adds the translucent shell: a unit cube at the centroid scaled to the grid size.
func (l *Layout) buildChiplets(b *scene.Builder, opts Options, pal *materials.Palette) error {
	coll, err := newCollection(b, "Chiplets")
	if err != nil {
		return err
	}
	l.Chiplets = coll
	box, err := primitives.Create(b, "Chiplet_Box", coll, primitives.Cube, primitives.Params{Size: 1})
	if err != nil {
		return err
	}
	o := b.Object(box)
	o.Location = opts.Centroid()
	o.Scale = opts.PositionOf(float32(opts.SizeX), float32(opts.SizeY), float32(opts.SizeZ))
	if err := b.AppendMaterial(o.Mesh, pal.Chiplet); err != nil {
		return err
	}
	l.Chiplet = box
	return nil
}

// buildCooling adds SizeZ-1, SizeY-1 and SizeX-1 plates between the layers of each axis.
// Every plate shares one unit-cube mesh; only the transform differs.
func (l *Layout) buildCooling(b *scene.Builder, opts Options, pal *materials.Palette) error {
	coll, err := newCollection(b, "CoolingGrid")
	if err != nil {
		return err
	}
	l.Cooling = coll
	mesh, err := primitives.NewTemplate(b, "BasePlate_Mesh", primitives.Cube, primitives.Params{Size: 1}, pal.CoolingPlate)
	if err != nil {
		return err
	}
	l.PlateMesh = mesh

	ext := opts.Extent()
	s := opts.Spacing
	mid := ext.Mul(0.5)
	span := mgl32.Vec3{ext[0] + s, ext[1] + s, ext[2] + s}
	th := opts.PlateThickness

	add := func(name string, loc, scale mgl32.Vec3) error {
		id, err := primitives.Instance(b, name, coll, mesh)
		if err != nil {
			return err
		}
		o := b.Object(id)
		o.Location = loc
		o.Scale = scale
		l.Plates++
		return nil
	}
	for z := 0; z < opts.SizeZ-1; z++ {
		loc := mgl32.Vec3{mid[0], mid[1], (float32(z) + 0.5) * s}
		if err := add(fmt.Sprintf("Plate_Z_%d", z), loc, mgl32.Vec3{span[0], span[1], th}); err != nil {
			return err
		}
	}
	for y := 0; y < opts.SizeY-1; y++ {
		loc := mgl32.Vec3{mid[0], (float32(y) + 0.5) * s, mid[2]}
		if err := add(fmt.Sprintf("Plate_Y_%d", y), loc, mgl32.Vec3{span[0], th, span[2]}); err != nil {
			return err
		}
	}
	for x := 0; x < opts.SizeX-1; x++ {
		loc := mgl32.Vec3{(float32(x) + 0.5) * s, mid[1], mid[2]}
		if err := add(fmt.Sprintf("Plate_X_%d", x), loc, mgl32.Vec3{th, span[1], span[2]}); err != nil {
			return err
		}
	}
	return nil
}
