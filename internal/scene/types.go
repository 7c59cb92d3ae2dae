package scene

import "github.com/go-gl/mathgl/mgl32"

// MeshID, MaterialID, CollectionID and ObjectID are indices into the Builder's tables.
// Objects hold handles, never copies, so many objects can share one mesh or material.
type (
	MeshID       int
	MaterialID   int
	CollectionID int
	ObjectID     int
)

// NoMesh marks an object without geometry (empty, camera, light).
const NoMesh MeshID = -1

// NoObject marks a missing object reference (no parent, no camera).
const NoObject ObjectID = -1

// ShapeKind is the primitive a mesh template is generated from.
type ShapeKind int

const (
	ShapeCube ShapeKind = iota
	ShapeUVSphere
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeCube:
		return "CUBE"
	case ShapeUVSphere:
		return "SPHERE"
	}
	return "UNKNOWN"
}

// Shape holds the parameters for a primitive mesh. Size is used by cubes (edge length);
// Radius, USegments and VSegments by UV spheres.
type Shape struct {
	Kind      ShapeKind
	Size      float32
	Radius    float32
	USegments int
	VSegments int
}

// Mesh is a shared geometry template. Once more than one object uses it the template is frozen.
type Mesh struct {
	Name      string
	Shape     Shape
	Materials []MaterialID

	users  int
	frozen bool
}

// Users is the number of objects referencing the mesh.
func (m *Mesh) Users() int { return m.users }

// Frozen reports whether instancing has begun and the template can no longer change.
func (m *Mesh) Frozen() bool { return m.frozen }

// BlendMode controls how a material's alpha is composited.
type BlendMode int

const (
	BlendOpaque BlendMode = iota
	BlendAlpha
)

// ShadowMode controls whether a material casts shadows.
type ShadowMode int

const (
	ShadowOpaque ShadowMode = iota
	ShadowNone
)

// Emission is an emissive colour and strength. A nil *Emission on a Material leaves the host default.
type Emission struct {
	Color    mgl32.Vec4
	Strength float32
}

// Material is a named principled shading definition.
type Material struct {
	Name      string
	BaseColor mgl32.Vec4
	Alpha     float32
	Emission  *Emission
	Metallic  float32
	Roughness float32
	Blend     BlendMode
	Shadow    ShadowMode
}

// Collection groups objects. Hidden collections are skipped by the renderer and viewport.
type Collection struct {
	Name         string
	Objects      []ObjectID
	HideRender   bool
	HideViewport bool
}

// ObjectKind tells which data an object carries.
type ObjectKind int

const (
	KindMesh ObjectKind = iota
	KindEmpty
	KindCamera
	KindLight
)

// ConstraintKind is a live transform constraint against another object.
type ConstraintKind int

const (
	// CopyLocation copies the target's world location.
	CopyLocation ConstraintKind = iota
	// TrackTo aims the owner's -Z axis at the target with Y up.
	TrackTo
)

func (k ConstraintKind) String() string {
	if k == TrackTo {
		return "TRACK_TO"
	}
	return "COPY_LOCATION"
}

// Constraint binds an object's transform to Target.
type Constraint struct {
	Kind   ConstraintKind
	Target ObjectID
}

// LightType is the kind of lamp a light object carries.
type LightType int

const (
	LightSun LightType = iota
	LightPoint
)

// Light is the lamp data of a KindLight object.
type Light struct {
	Type   LightType
	Energy float32
}

// Object is a named scene entity with a transform, optional mesh and keyframe tracks.
type Object struct {
	Name       string
	Kind       ObjectKind
	Mesh       MeshID
	Collection CollectionID
	Location   mgl32.Vec3
	// Rotation is an XYZ Euler rotation in radians.
	Rotation     mgl32.Vec3
	Scale        mgl32.Vec3
	Parent       ObjectID
	Constraints  []Constraint
	HideRender   bool
	HideViewport bool
	Light        *Light

	tracks []*Track
}

// Tracks returns the keyframe tracks in the order their properties were first keyed.
func (o *Object) Tracks() []*Track {
	return o.tracks
}

// Track returns the track for prop, or nil when the property has never been keyed.
func (o *Object) Track(prop Property) *Track {
	for _, t := range o.tracks {
		if t.Property == prop {
			return t
		}
	}
	return nil
}

// World is the environment background.
type World struct {
	Color    mgl32.Vec4
	Strength float32
}

// DefaultWorld is a neutral grey background at unit strength.
func DefaultWorld() World {
	return World{Color: mgl32.Vec4{0.05, 0.05, 0.05, 1}, Strength: 1}
}

// Bloom is the post-process glow applied to bright pixels.
type Bloom struct {
	Enabled   bool
	Threshold float32
	Intensity float32
	Radius    float32
}

// Render holds render engine, output and timeline settings. FrameEnd is the value scene
// code reads back to size its animations.
type Render struct {
	Engine      string
	Bloom       Bloom
	ResolutionX int
	ResolutionY int
	FPS         int
	FrameStart  int
	FrameEnd    int
}

// DefaultRender mirrors a newly created host scene: 1920x1080 at 24 fps over frames 1..250.
func DefaultRender() Render {
	return Render{
		Engine:      "BLENDER_EEVEE",
		ResolutionX: 1920,
		ResolutionY: 1080,
		FPS:         24,
		FrameStart:  1,
		FrameEnd:    250,
	}
}
