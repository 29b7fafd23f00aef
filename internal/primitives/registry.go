package primitives

import (
	"crystal-engine/internal/vecmath"

	"github.com/go-gl/mathgl/mgl32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// cached holds mesh and material for a primitive type. Created lazily on first Draw.
type cached struct {
	mesh rl.Mesh
	mtl  rl.Material
}

// Registry maps primitive type names to mesh+material. Meshes are created on first use
// so that GPU resources are allocated after the window/OpenGL context exists.
type Registry struct {
	cache    map[string]cached
	viewPos  [3]float32 // camera position, set each frame for lighting
	lightDir [3]float32 // direction to light (normalized), set each frame
}

// NewRegistry returns a registry with no primitives.
func NewRegistry() *Registry {
	return &Registry{
		cache:    make(map[string]cached),
		lightDir: [3]float32{0.5, 1, 0.5}, // default: from above-right
	}
}

// SetView sets camera position and direction-to-light for this frame. Call once per frame
// before drawing so lit primitives get correct shading.
func (r *Registry) SetView(viewPos, lightDir [3]float32) {
	r.viewPos = viewPos
	r.lightDir = lightDir
}

// Tints per body tag.
var (
	BoxColor    = rl.NewColor(196, 120, 64, 255)
	BulletColor = rl.NewColor(230, 230, 90, 255)
	GroundColor = rl.NewColor(70, 90, 70, 255)
	SleepColor  = rl.NewColor(110, 110, 140, 255)
	SparkColor  = rl.NewColor(255, 170, 40, 255)
)

const (
	sphereRings  = 8
	sphereSlices = 8
	// groundExtent is the side of the quad drawn for a ground plane.
	groundExtent = 100
)

// ensure creates the mesh for key with a lit material if not yet cached. Unknown keys are ignored.
func (r *Registry) ensure(key string) (cached, bool) {
	if c, ok := r.cache[key]; ok {
		return c, true
	}
	var mesh rl.Mesh
	switch key {
	case "cube":
		mesh = rl.GenMeshCube(1, 1, 1)
	case "sphere":
		// Radius 0.5 so diameter = 1, matching cube side length.
		mesh = rl.GenMeshSphere(0.5, sphereRings, sphereSlices)
	case "plane":
		mesh = rl.GenMeshPlane(1, 1, 1, 1)
	default:
		return cached{}, false
	}
	mtl := rl.LoadMaterialDefault()
	if shader := loadLitShader(); rl.IsShaderValid(shader) {
		mtl.Shader = shader
	}
	c := cached{mesh: mesh, mtl: mtl}
	r.cache[key] = c
	return c, true
}

// loadLitShader returns a shader that does simple directional light + ambient.
// Same vertex attributes as raylib meshes: vertexPosition, vertexTexCoord, vertexNormal.
func loadLitShader() rl.Shader {
	return rl.LoadShaderFromMemory(litVS, litFS)
}

const (
	litVS = `#version 330
in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec3 vertexNormal;
uniform mat4 matProjection;
uniform mat4 matView;
uniform mat4 matModel;
out vec3 fragPosition;
out vec2 fragTexCoord;
out vec3 fragNormal;
void main() {
  vec4 worldPos = matModel * vec4(vertexPosition, 1.0);
  fragPosition = worldPos.xyz;
  fragTexCoord = vertexTexCoord;
  fragNormal = mat3(matModel) * vertexNormal;
  gl_Position = matProjection * matView * worldPos;
}
`
	litFS = `#version 330
in vec3 fragPosition;
in vec2 fragTexCoord;
in vec3 fragNormal;
uniform vec4 colDiffuse;
uniform vec3 viewPos;
uniform vec3 lightDir;
uniform vec4 ambient;
uniform vec3 lightColor;
uniform float lightIntensity;
uniform float specularPower;
uniform float specularStrength;
out vec4 finalColor;
void main() {
  vec4 tint = colDiffuse;
  vec3 N = normalize(fragNormal);
  vec3 L = normalize(lightDir);
  vec3 V = normalize(viewPos - fragPosition);
  float NdotL = max(dot(N, L), 0.0);
  vec3 diffuse = tint.rgb * NdotL * lightColor * lightIntensity;
  vec3 amb = ambient.rgb * tint.rgb;
  vec3 H = normalize(L + V);
  float NdotH = max(dot(N, H), 0.0);
  float spec = pow(NdotH, specularPower) * specularStrength;
  vec3 specular = lightColor * spec * (NdotL > 0.0 ? 1.0 : 0.0);
  finalColor = vec4(amb + diffuse + specular, tint.a);
}
`
)

// defaultAmbient is the ambient term (dim so shadowed areas aren't pure black).
var defaultAmbient = [4]float32{0.2, 0.22, 0.26, 1.0}

// defaultLightColor is a soft warm-white for the directional light.
var defaultLightColor = [3]float32{1.0, 0.98, 0.95}

const (
	defaultLightIntensity   = float32(0.75)
	defaultSpecularPower    = float32(48.0)
	defaultSpecularStrength = float32(0.35)
)

// setLitShaderUniforms sets view, light and specular uniforms on the given shader (cgo-safe: local arrays).
func (r *Registry) setLitShaderUniforms(shader rl.Shader) {
	if !rl.IsShaderValid(shader) {
		return
	}
	viewPos := r.viewPos
	lightDir := r.lightDir
	amb := defaultAmbient
	lightColor := defaultLightColor
	vec3 := map[string][]float32{"viewPos": viewPos[:], "lightDir": lightDir[:], "lightColor": lightColor[:]}
	for name, v := range vec3 {
		if loc := rl.GetShaderLocation(shader, name); loc >= 0 {
			rl.SetShaderValueV(shader, loc, v, rl.ShaderUniformVec3, 1)
		}
	}
	if loc := rl.GetShaderLocation(shader, "ambient"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, amb[:], rl.ShaderUniformVec4, 1)
	}
	floats := map[string]float32{
		"lightIntensity":   defaultLightIntensity,
		"specularPower":    defaultSpecularPower,
		"specularStrength": defaultSpecularStrength,
	}
	for name, v := range floats {
		if loc := rl.GetShaderLocation(shader, name); loc >= 0 {
			rl.SetShaderValue(shader, loc, []float32{v}, rl.ShaderUniformFloat)
		}
	}
}

// Matrix converts a column-major OpenGL matrix to raylib's layout. Both index elements as column*4+row.
func Matrix(m mgl32.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M1: m[1], M2: m[2], M3: m[3],
		M4: m[4], M5: m[5], M6: m[6], M7: m[7],
		M8: m[8], M9: m[9], M10: m[10], M11: m[11],
		M12: m[12], M13: m[13], M14: m[14], M15: m[15],
	}
}

// draw renders a cached mesh scaled in model space and then placed by transform.
func (r *Registry) draw(key string, transform mgl32.Mat4, scale mgl32.Vec3, tint rl.Color) {
	c, ok := r.ensure(key)
	if !ok {
		return
	}
	if albedo := c.mtl.GetMap(rl.MapAlbedo); albedo != nil {
		albedo.Color = tint
	}
	r.setLitShaderUniforms(c.mtl.Shader)
	model := transform.Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
	rl.DrawMesh(c.mesh, c.mtl, Matrix(model))
}

// DrawBox draws a box with the given half sizes at a body transform.
// Must be called between BeginMode3D and EndMode3D.
func (r *Registry) DrawBox(transform vecmath.Matrix4, halfSize vecmath.Vector3, tint rl.Color) {
	r.draw("cube", transform.GLArray(), mgl32.Vec3{2 * halfSize.X, 2 * halfSize.Y, 2 * halfSize.Z}, tint)
}

// DrawSphere draws a sphere of the given radius at a body transform.
func (r *Registry) DrawSphere(transform vecmath.Matrix4, radius float32, tint rl.Color) {
	d := 2 * radius
	r.draw("sphere", transform.GLArray(), mgl32.Vec3{d, d, d}, tint)
}

// DrawPlane draws a large quad on the plane normal·p = offset, centred below the origin.
func (r *Registry) DrawPlane(normal vecmath.Vector3, offset float32, tint rl.Color) {
	n := mgl32.Vec3{normal.X, normal.Y, normal.Z}.Normalize()
	centre := n.Mul(offset)
	rotation := mgl32.QuatBetweenVectors(mgl32.Vec3{0, 1, 0}, n).Mat4()
	transform := mgl32.Translate3D(centre[0], centre[1], centre[2]).Mul4(rotation)
	r.draw("plane", transform, mgl32.Vec3{groundExtent, 1, groundExtent}, tint)
}

// DrawPoint draws a particle as a small unlit cube.
func (r *Registry) DrawPoint(p vecmath.Vector3, size float32, tint rl.Color) {
	rl.DrawCube(rl.NewVector3(p.X, p.Y, p.Z), size, size, size, tint)
}
