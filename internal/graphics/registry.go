package graphics

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"gridrender/internal/preview"
	"gridrender/internal/scene"
)

// cached holds the GPU mesh and material for one scene mesh.
type cached struct {
	mesh rl.Mesh
	mtl  rl.Material
}

// Registry maps scene meshes to raylib meshes. Meshes are generated on first draw so GPU
// resources are allocated after the window exists; every object sharing a scene mesh
// shares the GPU mesh.
type Registry struct {
	cache    map[scene.MeshID]cached
	shader   rl.Shader
	viewPos  [3]float32
	lightDir [3]float32
}

// NewRegistry returns an empty registry lit from above-right.
func NewRegistry() *Registry {
	return &Registry{
		cache:    make(map[scene.MeshID]cached),
		lightDir: [3]float32{0.5, 1, 0.5},
	}
}

// SetView sets camera position and direction-to-light for this frame.
func (r *Registry) SetView(viewPos, lightDir [3]float32) {
	r.viewPos = viewPos
	r.lightDir = lightDir
}

func (r *Registry) ensure(id scene.MeshID, shape scene.Shape) (cached, bool) {
	if c, ok := r.cache[id]; ok {
		return c, true
	}
	var mesh rl.Mesh
	switch shape.Kind {
	case scene.ShapeCube:
		mesh = rl.GenMeshCube(shape.Size, shape.Size, shape.Size)
	case scene.ShapeUVSphere:
		mesh = rl.GenMeshSphere(shape.Radius, int(shape.VSegments), int(shape.USegments))
	default:
		return cached{}, false
	}
	if !rl.IsShaderValid(r.shader) {
		r.shader = rl.LoadShaderFromMemory(litVS, litFS)
	}
	mtl := rl.LoadMaterialDefault()
	if rl.IsShaderValid(r.shader) {
		mtl.Shader = r.shader
	}
	c := cached{mesh: mesh, mtl: mtl}
	r.cache[id] = c
	return c, true
}

// Draw draws one instance. Must be called between BeginMode3D and EndMode3D, after SetView.
func (r *Registry) Draw(inst preview.Instance) {
	c, ok := r.ensure(inst.Mesh, inst.Shape)
	if !ok {
		return
	}
	r.setUniforms()
	if albedo := c.mtl.GetMap(rl.MapAlbedo); albedo != nil {
		albedo.Color = rl.NewColor(inst.Color[0], inst.Color[1], inst.Color[2], inst.Color[3])
	}
	scaleM := rl.MatrixScale(inst.Scale[0], inst.Scale[1], inst.Scale[2])
	rotM := rl.MatrixRotateXYZ(rl.NewVector3(inst.Rotation[0], inst.Rotation[1], inst.Rotation[2]))
	transM := rl.MatrixTranslate(inst.Position[0], inst.Position[1], inst.Position[2])
	transform := rl.MatrixMultiply(rl.MatrixMultiply(scaleM, rotM), transM)
	rl.DrawMesh(c.mesh, c.mtl, transform)
}

// Unload releases every cached mesh and the shared shader.
func (r *Registry) Unload() {
	for id, c := range r.cache {
		rl.UnloadMesh(&c.mesh)
		delete(r.cache, id)
	}
	if rl.IsShaderValid(r.shader) {
		rl.UnloadShader(r.shader)
	}
}

// Directional light with ambient and a little specular.
const (
	litVS = `#version 330
in vec3 vertexPosition;
in vec3 vertexNormal;
uniform mat4 matProjection;
uniform mat4 matView;
uniform mat4 matModel;
out vec3 fragPosition;
out vec3 fragNormal;
void main() {
  vec4 worldPos = matModel * vec4(vertexPosition, 1.0);
  fragPosition = worldPos.xyz;
  fragNormal = mat3(matModel) * vertexNormal;
  gl_Position = matProjection * matView * worldPos;
}
`
	litFS = `#version 330
in vec3 fragPosition;
in vec3 fragNormal;
uniform vec4 colDiffuse;
uniform vec3 viewPos;
uniform vec3 lightDir;
uniform vec4 ambient;
uniform float specularStrength;
out vec4 finalColor;
void main() {
  vec3 N = normalize(fragNormal);
  vec3 L = normalize(lightDir);
  vec3 V = normalize(viewPos - fragPosition);
  float NdotL = max(dot(N, L), 0.0);
  float spec = pow(max(dot(N, normalize(L + V)), 0.0), 48.0) * specularStrength;
  vec3 rgb = ambient.rgb * colDiffuse.rgb + colDiffuse.rgb * NdotL * 0.75 + vec3(spec);
  finalColor = vec4(rgb, colDiffuse.a);
}
`
)

var ambient = [4]float32{0.2, 0.22, 0.26, 1.0}

const specularStrength = float32(0.35)

func (r *Registry) setUniforms() {
	if !rl.IsShaderValid(r.shader) {
		return
	}
	// cgo: pass local copies
	viewPos := r.viewPos
	lightDir := r.lightDir
	amb := ambient
	if loc := rl.GetShaderLocation(r.shader, "viewPos"); loc >= 0 {
		rl.SetShaderValueV(r.shader, loc, viewPos[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(r.shader, "lightDir"); loc >= 0 {
		rl.SetShaderValueV(r.shader, loc, lightDir[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(r.shader, "ambient"); loc >= 0 {
		rl.SetShaderValueV(r.shader, loc, amb[:], rl.ShaderUniformVec4, 1)
	}
	if loc := rl.GetShaderLocation(r.shader, "specularStrength"); loc >= 0 {
		rl.SetShaderValue(r.shader, loc, []float32{specularStrength}, rl.ShaderUniformFloat)
	}
}
