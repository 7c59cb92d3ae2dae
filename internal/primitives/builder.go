package primitives

import (
	"errors"
	"fmt"

	"gridrender/internal/scene"
)

var (
	// ErrUnsupportedPrimitiveKind is returned for any kind other than Cube or Sphere.
	// Callers abort generation on it rather than emitting partial geometry.
	ErrUnsupportedPrimitiveKind = errors.New("primitives: unsupported primitive kind")
	// ErrInvalidParams is returned when the parameters required by a kind are missing.
	ErrInvalidParams = errors.New("primitives: invalid parameters")
)

// MeshSuffix is appended to the object name to name its new mesh.
const MeshSuffix = "_Mesh"

// Shape validates params for kind and returns the mesh shape to generate.
func Shape(kind Kind, p Params) (scene.Shape, error) {
	switch kind {
	case Cube:
		if p.Size <= 0 {
			return scene.Shape{}, fmt.Errorf("%w: cube size %v", ErrInvalidParams, p.Size)
		}
		return scene.Shape{Kind: scene.ShapeCube, Size: p.Size}, nil
	case Sphere:
		if p.Radius <= 0 || p.USegments < 3 || p.VSegments < 2 {
			return scene.Shape{}, fmt.Errorf("%w: sphere radius %v segments %dx%d", ErrInvalidParams, p.Radius, p.USegments, p.VSegments)
		}
		return scene.Shape{Kind: scene.ShapeUVSphere, Radius: p.Radius, USegments: p.USegments, VSegments: p.VSegments}, nil
	}
	return scene.Shape{}, fmt.Errorf("%w: %q", ErrUnsupportedPrimitiveKind, string(kind))
}

// Create builds a new mesh of the given kind and a new object named name that owns it,
// links the object into coll and returns its handle. Nothing is added to the builder when
// kind or params are rejected.
func Create(b *scene.Builder, name string, coll scene.CollectionID, kind Kind, p Params) (scene.ObjectID, error) {
	shape, err := Shape(kind, p)
	if err != nil {
		return scene.NoObject, err
	}
	mesh, err := b.NewMesh(name+MeshSuffix, shape)
	if err != nil {
		return scene.NoObject, err
	}
	return b.AddObject(name, coll, scene.KindMesh, mesh)
}

// NewTemplate creates a standalone mesh template with one material slot, for objects that
// are only ever instanced (cooling plates).
func NewTemplate(b *scene.Builder, name string, kind Kind, p Params, mat scene.MaterialID) (scene.MeshID, error) {
	shape, err := Shape(kind, p)
	if err != nil {
		return 0, err
	}
	mesh, err := b.NewMesh(name, shape)
	if err != nil {
		return 0, err
	}
	if err := b.AppendMaterial(mesh, mat); err != nil {
		return 0, err
	}
	return mesh, nil
}

// Instance adds an object named name that shares mesh with every other instance.
func Instance(b *scene.Builder, name string, coll scene.CollectionID, mesh scene.MeshID) (scene.ObjectID, error) {
	return b.AddObject(name, coll, scene.KindMesh, mesh)
}
