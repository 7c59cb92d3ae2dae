package scene

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// RootCollectionName is the name of the collection every fresh Builder starts with.
// Top-level objects such as the camera rig and the light are linked here.
const RootCollectionName = "Scene Collection"

var (
	// ErrDuplicateName is returned when an object, mesh, material or collection name is reused within one run.
	ErrDuplicateName = errors.New("scene: duplicate name")
	// ErrMeshFrozen is returned when a shared mesh template is modified after instancing began.
	ErrMeshFrozen = errors.New("scene: mesh is instanced and can no longer be modified")
	// ErrUnknownHandle is returned for a handle that does not refer to an entry in the builder's tables.
	ErrUnknownHandle = errors.New("scene: unknown handle")
)

// Builder is the explicit scene context threaded through every generation step. It owns the
// mesh, material, collection and object tables; entries are only ever added, and Reset is the
// single way to discard them. A Builder is not safe for concurrent use.
type Builder struct {
	meshes      []*Mesh
	materials   []*Material
	collections []*Collection
	objects     []*Object

	names map[nameKey]struct{}

	// World is the environment background.
	World World
	// Render holds render engine, timeline and output resolution settings.
	Render Render
	// Camera is the active scene camera, or NoObject.
	Camera ObjectID
}

type nameKind int

const (
	nameObject nameKind = iota
	nameMesh
	nameMaterial
	nameCollection
)

type nameKey struct {
	kind nameKind
	name string
}

// New returns an empty builder with only the root collection and default settings.
func New() *Builder {
	b := &Builder{}
	b.Reset()
	return b
}

// Reset discards every entity and setting and recreates the root collection.
// Regenerating a scene always starts from a Reset.
func (b *Builder) Reset() {
	b.meshes = nil
	b.materials = nil
	b.collections = nil
	b.objects = nil
	b.names = make(map[nameKey]struct{})
	b.World = DefaultWorld()
	b.Render = DefaultRender()
	b.Camera = NoObject
	_, _ = b.NewCollection(RootCollectionName)
}

// Root returns the root collection handle.
func (b *Builder) Root() CollectionID {
	return 0
}

func (b *Builder) claim(kind nameKind, name string) error {
	k := nameKey{kind, name}
	if _, ok := b.names[k]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	b.names[k] = struct{}{}
	return nil
}

// NewCollection adds a named collection.
func (b *Builder) NewCollection(name string) (CollectionID, error) {
	if err := b.claim(nameCollection, name); err != nil {
		return 0, err
	}
	b.collections = append(b.collections, &Collection{Name: name})
	return CollectionID(len(b.collections) - 1), nil
}

// Collection returns the collection for id, or nil.
func (b *Builder) Collection(id CollectionID) *Collection {
	if int(id) < 0 || int(id) >= len(b.collections) {
		return nil
	}
	return b.collections[id]
}

// Collections returns all collections in creation order. The root collection is first.
func (b *Builder) Collections() []*Collection {
	return b.collections
}

// NewMesh adds a mesh template built from the given primitive shape.
func (b *Builder) NewMesh(name string, shape Shape) (MeshID, error) {
	if err := b.claim(nameMesh, name); err != nil {
		return 0, err
	}
	b.meshes = append(b.meshes, &Mesh{Name: name, Shape: shape})
	return MeshID(len(b.meshes) - 1), nil
}

// Mesh returns the mesh for id, or nil.
func (b *Builder) Mesh(id MeshID) *Mesh {
	if int(id) < 0 || int(id) >= len(b.meshes) {
		return nil
	}
	return b.meshes[id]
}

// Meshes returns all meshes in creation order.
func (b *Builder) Meshes() []*Mesh {
	return b.meshes
}

// AppendMaterial adds a material slot to a mesh template. It fails with ErrMeshFrozen once
// more than one object shares the mesh, so every instance keeps looking the same.
func (b *Builder) AppendMaterial(mesh MeshID, mat MaterialID) error {
	m := b.Mesh(mesh)
	if m == nil {
		return fmt.Errorf("%w: mesh %d", ErrUnknownHandle, mesh)
	}
	if b.Material(mat) == nil {
		return fmt.Errorf("%w: material %d", ErrUnknownHandle, mat)
	}
	if m.frozen {
		return fmt.Errorf("%w: %q", ErrMeshFrozen, m.Name)
	}
	m.Materials = append(m.Materials, mat)
	return nil
}

// AddMaterial registers a fully built material and returns its handle.
func (b *Builder) AddMaterial(mat Material) (MaterialID, error) {
	if err := b.claim(nameMaterial, mat.Name); err != nil {
		return 0, err
	}
	m := mat
	b.materials = append(b.materials, &m)
	return MaterialID(len(b.materials) - 1), nil
}

// Material returns the material for id, or nil.
func (b *Builder) Material(id MaterialID) *Material {
	if int(id) < 0 || int(id) >= len(b.materials) {
		return nil
	}
	return b.materials[id]
}

// Materials returns all materials in creation order.
func (b *Builder) Materials() []*Material {
	return b.materials
}

// AddObject creates an object of the given kind and links it into coll. Pass NoMesh for
// empties, cameras and lights. Referencing a mesh that already has a user freezes the mesh.
func (b *Builder) AddObject(name string, coll CollectionID, kind ObjectKind, mesh MeshID) (ObjectID, error) {
	c := b.Collection(coll)
	if c == nil {
		return NoObject, fmt.Errorf("%w: collection %d", ErrUnknownHandle, coll)
	}
	var m *Mesh
	if mesh != NoMesh {
		m = b.Mesh(mesh)
		if m == nil {
			return NoObject, fmt.Errorf("%w: mesh %d", ErrUnknownHandle, mesh)
		}
	}
	if err := b.claim(nameObject, name); err != nil {
		return NoObject, err
	}
	if m != nil {
		m.users++
		if m.users > 1 {
			m.frozen = true
		}
	}
	obj := &Object{
		Name:       name,
		Kind:       kind,
		Mesh:       mesh,
		Collection: coll,
		Scale:      mgl32.Vec3{1, 1, 1},
		Parent:     NoObject,
	}
	b.objects = append(b.objects, obj)
	id := ObjectID(len(b.objects) - 1)
	c.Objects = append(c.Objects, id)
	return id, nil
}

// Object returns the object for id, or nil.
func (b *Builder) Object(id ObjectID) *Object {
	if int(id) < 0 || int(id) >= len(b.objects) {
		return nil
	}
	return b.objects[id]
}

// Objects returns all objects in creation order.
func (b *Builder) Objects() []*Object {
	return b.objects
}

// Lookup finds an object by name.
func (b *Builder) Lookup(name string) (ObjectID, bool) {
	for i, o := range b.objects {
		if o.Name == name {
			return ObjectID(i), true
		}
	}
	return NoObject, false
}

// SetParent parents child to parent; the child's location stays relative to the parent.
func (b *Builder) SetParent(child, parent ObjectID) error {
	c := b.Object(child)
	if c == nil || b.Object(parent) == nil {
		return fmt.Errorf("%w: parent %d of %d", ErrUnknownHandle, parent, child)
	}
	c.Parent = parent
	return nil
}

// AddConstraint appends a constraint targeting another object. Constraints are evaluated in order.
func (b *Builder) AddConstraint(obj ObjectID, kind ConstraintKind, target ObjectID) error {
	o := b.Object(obj)
	if o == nil || b.Object(target) == nil {
		return fmt.Errorf("%w: constraint target %d on %d", ErrUnknownHandle, target, obj)
	}
	o.Constraints = append(o.Constraints, Constraint{Kind: kind, Target: target})
	return nil
}

// SetCamera makes obj the active scene camera.
func (b *Builder) SetCamera(obj ObjectID) error {
	o := b.Object(obj)
	if o == nil || o.Kind != KindCamera {
		return fmt.Errorf("%w: camera %d", ErrUnknownHandle, obj)
	}
	b.Camera = obj
	return nil
}

// EndFrame is the last frame of the animation timeline as currently set on the scene.
func (b *Builder) EndFrame() int {
	return b.Render.FrameEnd
}

// Count returns the number of objects whose name has the given prefix.
func (b *Builder) Count(prefix string) int {
	n := 0
	for _, o := range b.objects {
		if strings.HasPrefix(o.Name, prefix) {
			n++
		}
	}
	return n
}
