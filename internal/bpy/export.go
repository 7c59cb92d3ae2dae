// Package bpy writes a built scene as a Python script for Blender's embedded interpreter.
// The script resets the host scene and recreates every collection, mesh, material, object,
// constraint and keyframe from data tables, then applies world and render settings.
// Resolution, frame rate and end frame are left to the launcher's injected expressions.
package bpy

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"github.com/chewxy/math32"

	"gridrender/internal/scene"
)

// Header is the information printed and checked by the script before it builds anything.
type Header struct {
	Title    string
	Seed     int64
	EndFrame int
}

// Write writes the host script for b to w.
func Write(w io.Writer, b *scene.Builder, h Header) error {
	bw := bufio.NewWriter(w)
	e := &encoder{w: bw, b: b}
	if err := prelude.Execute(bw, preludeData{Header: h, FrameStart: b.Render.FrameStart, EndFrameKey: EndFrameKey}); err != nil {
		return fmt.Errorf("bpy: %w", err)
	}
	e.collections()
	e.materials()
	e.meshes()
	e.objects()
	e.constraints()
	e.tracks()
	e.settings()
	if err := postlude.Execute(bw, nil); err != nil {
		return fmt.Errorf("bpy: %w", err)
	}
	if e.err != nil {
		return fmt.Errorf("bpy: %w", e.err)
	}
	return bw.Flush()
}

// WriteFile writes the host script to path, creating its directory if needed.
func WriteFile(path string, b *scene.Builder, h Header) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("bpy: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("bpy: %w", err)
	}
	if err := Write(f, b, h); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type encoder struct {
	w   *bufio.Writer
	b   *scene.Builder
	err error
}

func (e *encoder) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

// num formats v as a Python float literal. Non-finite values become float() calls.
func num(v float32) string {
	switch {
	case math32.IsNaN(v):
		return "float('nan')"
	case math32.IsInf(v, 1):
		return "float('inf')"
	case math32.IsInf(v, -1):
		return "float('-inf')"
	}
	s := strconv.FormatFloat(float64(v), 'g', -1, 32)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func tuple(vs ...float32) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = num(v)
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func str(s string) string {
	return strconv.Quote(s)
}

func pybool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

func (e *encoder) objectName(id scene.ObjectID) string {
	if o := e.b.Object(id); o != nil {
		return str(o.Name)
	}
	return "None"
}

func (e *encoder) collections() {
	e.printf("COLLECTIONS = [\n")
	for i, c := range e.b.Collections() {
		if scene.CollectionID(i) == e.b.Root() {
			continue
		}
		e.printf("    (%s, %s, %s),\n", str(c.Name), pybool(c.HideRender), pybool(c.HideViewport))
	}
	e.printf("]\n\n")
}

func (e *encoder) materials() {
	e.printf("MATERIALS = [\n")
	for _, m := range e.b.Materials() {
		emission, strength := "None", "1.0"
		if m.Emission != nil {
			c := m.Emission.Color
			emission = tuple(c[0], c[1], c[2], c[3])
			strength = num(m.Emission.Strength)
		}
		c := m.BaseColor
		e.printf("    (%s, %s, %s, %s, %s, %s, %s, %s),\n",
			str(m.Name), tuple(c[0], c[1], c[2], c[3]), num(m.Alpha), emission, strength,
			num(m.Metallic), num(m.Roughness), pybool(m.Blend == scene.BlendAlpha))
	}
	e.printf("]\n\n")
}

func (e *encoder) meshes() {
	e.printf("MESHES = [\n")
	for _, m := range e.b.Meshes() {
		var params string
		switch m.Shape.Kind {
		case scene.ShapeCube:
			params = fmt.Sprintf("{\"size\": %s}", num(m.Shape.Size))
		case scene.ShapeUVSphere:
			params = fmt.Sprintf("{\"radius\": %s, \"u_segments\": %d, \"v_segments\": %d}",
				num(m.Shape.Radius), m.Shape.USegments, m.Shape.VSegments)
		default:
			if e.err == nil {
				e.err = fmt.Errorf("mesh %q has unsupported shape %s", m.Name, m.Shape.Kind)
			}
			return
		}
		mats := make([]string, len(m.Materials))
		for i, id := range m.Materials {
			mats[i] = str(e.b.Material(id).Name)
		}
		e.printf("    (%s, %s, %s, [%s]),\n", str(m.Name), str(m.Shape.Kind.String()), params, strings.Join(mats, ", "))
	}
	e.printf("]\n\n")
}

func objectKind(k scene.ObjectKind) string {
	switch k {
	case scene.KindEmpty:
		return "EMPTY"
	case scene.KindCamera:
		return "CAMERA"
	case scene.KindLight:
		return "LIGHT"
	}
	return "MESH"
}

func lightType(t scene.LightType) string {
	if t == scene.LightPoint {
		return "POINT"
	}
	return "SUN"
}

func (e *encoder) objects() {
	e.printf("OBJECTS = [\n")
	for _, o := range e.b.Objects() {
		mesh := "None"
		if m := e.b.Mesh(o.Mesh); o.Mesh != scene.NoMesh && m != nil {
			mesh = str(m.Name)
		}
		light := "None"
		if o.Light != nil {
			light = fmt.Sprintf("(%s, %s)", str(lightType(o.Light.Type)), num(o.Light.Energy))
		}
		coll := "None"
		if o.Collection != e.b.Root() {
			coll = str(e.b.Collection(o.Collection).Name)
		}
		l, r, s := o.Location, o.Rotation, o.Scale
		e.printf("    (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s),\n",
			str(o.Name), str(objectKind(o.Kind)), mesh, coll,
			tuple(l[0], l[1], l[2]), tuple(r[0], r[1], r[2]), tuple(s[0], s[1], s[2]),
			pybool(o.HideRender), pybool(o.HideViewport), light)
	}
	e.printf("]\n\n")

	e.printf("PARENTS = [\n")
	for _, o := range e.b.Objects() {
		if o.Parent != scene.NoObject {
			e.printf("    (%s, %s),\n", str(o.Name), e.objectName(o.Parent))
		}
	}
	e.printf("]\n\n")
}

func (e *encoder) constraints() {
	e.printf("CONSTRAINTS = [\n")
	for _, o := range e.b.Objects() {
		for _, c := range o.Constraints {
			e.printf("    (%s, %s, %s),\n", str(o.Name), str(c.Kind.String()), e.objectName(c.Target))
		}
	}
	e.printf("]\n\n")
}

func (e *encoder) tracks() {
	e.printf("TRACKS = [\n")
	for _, o := range e.b.Objects() {
		for _, t := range o.Tracks() {
			keys := make([]string, len(t.Keys))
			for i, k := range t.Keys {
				keys[i] = fmt.Sprintf("(%d, %s)", k.Frame, tuple(k.Value...))
			}
			e.printf("    (%s, %s, %s, [%s]),\n",
				str(o.Name), str(t.Property.String()), str(t.Interpolation.String()), strings.Join(keys, ", "))
		}
	}
	e.printf("]\n\n")
}

func (e *encoder) settings() {
	w, r := e.b.World, e.b.Render
	e.printf("WORLD = (%s, %s)\n", tuple(w.Color[0], w.Color[1], w.Color[2], w.Color[3]), num(w.Strength))
	e.printf("ENGINE = %s\n", str(r.Engine))
	e.printf("BLOOM = (%s, %s, %s, %s)\n", pybool(r.Bloom.Enabled), num(r.Bloom.Threshold), num(r.Bloom.Intensity), num(r.Bloom.Radius))
	e.printf("CAMERA = %s\n\n", e.objectName(e.b.Camera))
}

type preludeData struct {
	Header
	FrameStart  int
	EndFrameKey string
}

var prelude = template.Must(template.New("prelude").Parse(`# {{.Title}}
# Generated scene script. Resolution, fps and end frame are set by the launcher.
import bpy
import bmesh

SEED = {{.Seed}}
{{.EndFrameKey}} = {{.EndFrame}}
FRAME_START = {{.FrameStart}}

`))

var postlude = template.Must(template.New("postlude").Parse(`
def clean_scene():
    if bpy.context.active_object and bpy.context.active_object.mode != 'OBJECT':
        bpy.ops.object.mode_set(mode='OBJECT')
    for obj in list(bpy.data.objects):
        bpy.data.objects.remove(obj, do_unlink=True)
    for item in list(bpy.data.meshes):
        bpy.data.meshes.remove(item)
    for item in list(bpy.data.materials):
        bpy.data.materials.remove(item)
    for item in list(bpy.data.actions):
        bpy.data.actions.remove(item)
    for item in list(bpy.data.collections):
        bpy.data.collections.remove(item)


def build_materials():
    out = {}
    for name, base, alpha, emission, strength, metallic, roughness, blend in MATERIALS:
        mat = bpy.data.materials.new(name=name)
        mat.use_nodes = True
        bsdf = mat.node_tree.nodes["Principled BSDF"]
        bsdf.inputs['Base Color'].default_value = base
        bsdf.inputs['Alpha'].default_value = alpha
        bsdf.inputs['Metallic'].default_value = metallic
        bsdf.inputs['Roughness'].default_value = roughness
        if emission is not None:
            bsdf.inputs['Emission Color'].default_value = emission
            bsdf.inputs['Emission Strength'].default_value = strength
        if blend:
            mat.blend_method = 'BLEND'
            if hasattr(mat, "shadow_method"):
                mat.shadow_method = 'NONE'
        out[name] = mat
    return out


def build_meshes(materials):
    out = {}
    for name, kind, params, mats in MESHES:
        bm = bmesh.new()
        if kind == 'CUBE':
            bmesh.ops.create_cube(bm, **params)
        elif kind == 'SPHERE':
            bmesh.ops.create_uvsphere(bm, **params)
        else:
            bm.free()
            raise ValueError("Unsupported primitive type: " + kind)
        mesh = bpy.data.meshes.new(name)
        bm.to_mesh(mesh)
        bm.free()
        for m in mats:
            mesh.materials.append(materials[m])
        out[name] = mesh
    return out


def build_objects(meshes, collections):
    root = bpy.context.scene.collection
    out = {}
    for name, kind, mesh, coll, loc, rot, scale, hide_render, hide_viewport, light in OBJECTS:
        if kind == 'MESH':
            data = meshes[mesh]
        elif kind == 'CAMERA':
            data = bpy.data.cameras.new(name)
        elif kind == 'LIGHT':
            data = bpy.data.lights.new(name, type=light[0])
            data.energy = light[1]
        else:
            data = None
        obj = bpy.data.objects.new(name, data)
        obj.location = loc
        obj.rotation_euler = rot
        obj.scale = scale
        (collections[coll] if coll else root).objects.link(obj)
        out[name] = (obj, hide_render, hide_viewport)
    return out


def key(obj, prop, frame, value):
    if prop == 'hidden':
        obj.hide_viewport = obj.hide_render = bool(value[0])
        obj.keyframe_insert(data_path="hide_viewport", frame=frame)
        obj.keyframe_insert(data_path="hide_render", frame=frame)
        return
    setattr(obj, prop, value)
    obj.keyframe_insert(data_path=prop, frame=frame)


def set_interpolation(obj, prop, interp):
    action = obj.animation_data.action if obj.animation_data else None
    if action is None or interp == 'BEZIER':
        return
    paths = ("hide_viewport", "hide_render") if prop == 'hidden' else (prop,)
    for path in paths:
        for index in range(3):
            fcurve = action.fcurves.find(path, index=index)
            if fcurve:
                for kp in fcurve.keyframe_points:
                    kp.interpolation = interp


def main():
    print("--- Starting Scene Generation ---")
    clean_scene()
    scene = bpy.context.scene
    scene.frame_start = FRAME_START

    collections = {}
    for name, hide_render, hide_viewport in COLLECTIONS:
        coll = bpy.data.collections.new(name)
        scene.collection.children.link(coll)
        coll.hide_render = hide_render
        coll.hide_viewport = hide_viewport
        collections[name] = coll

    meshes = build_meshes(build_materials())
    objects = build_objects(meshes, collections)
    for child, parent in PARENTS:
        objects[child][0].parent = objects[parent][0]
    for name, kind, target in CONSTRAINTS:
        c = objects[name][0].constraints.new(type=kind)
        c.target = objects[target][0]
    for name, prop, interp, keys in TRACKS:
        obj = objects[name][0]
        for frame, value in keys:
            key(obj, prop, frame, value)
        set_interpolation(obj, prop, interp)
    for obj, hide_render, hide_viewport in objects.values():
        obj.hide_render = hide_render
        obj.hide_viewport = hide_viewport
    if CAMERA:
        scene.camera = objects[CAMERA][0]

    world = scene.world
    if world is None:
        world = bpy.data.worlds.new("World")
        scene.world = world
    world.use_nodes = True
    world.node_tree.nodes["Background"].inputs["Color"].default_value = WORLD[0]
    world.node_tree.nodes["Background"].inputs["Strength"].default_value = WORLD[1]

    try:
        scene.render.engine = ENGINE
    except TypeError:
        scene.render.engine = ENGINE + "_NEXT"
    if hasattr(scene.eevee, "use_bloom"):
        scene.eevee.use_bloom = BLOOM[0]
        scene.eevee.bloom_threshold = BLOOM[1]
        scene.eevee.bloom_intensity = BLOOM[2]
        scene.eevee.bloom_radius = BLOOM[3]
    print("--- Scene Generation Finished Successfully ---")


main()
`))
