package render

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// materials holds the shared face quad, the lit shaders and their materials. Created
// lazily on first Draw so that GPU resources are allocated after the window/OpenGL
// context exists.
type materials struct {
	ready bool

	quad     rl.Mesh // 1×1 plane in XZ facing +Y
	plain    rl.Material
	textured rl.Material
	// albedo is the textured material's own default map. Imagery textures are only
	// borrowed; their owners release them.
	albedo rl.Texture2D

	viewPos  [3]float32
	lightDir [3]float32
}

func (m *materials) ensure() {
	if m.ready {
		return
	}
	m.quad = rl.GenMeshPlane(1, 1, 1, 1)
	m.plain = rl.LoadMaterialDefault()
	if s := rl.LoadShaderFromMemory(litVS, litFS); rl.IsShaderValid(s) {
		m.plain.Shader = s
	}
	m.textured = rl.LoadMaterialDefault()
	m.albedo = m.textured.GetMap(rl.MapAlbedo).Texture
	if s := rl.LoadShaderFromMemory(litVS, litTexturedFS); rl.IsShaderValid(s) {
		m.textured.Shader = s
	}
	m.lightDir = [3]float32{0.5, 1, 0.5}
	m.ready = true
}

func (m *materials) unload() {
	if !m.ready {
		return
	}
	m.restoreAlbedo()
	rl.UnloadMesh(&m.quad)
	rl.UnloadMaterial(m.plain)
	rl.UnloadMaterial(m.textured)
	m.ready = false
}

// restoreAlbedo puts the default map back on the textured material, so unloading it
// does not also unload the last imagery texture drawn with it.
func (m *materials) restoreAlbedo() {
	if mp := m.textured.GetMap(rl.MapAlbedo); mp != nil {
		mp.Texture = m.albedo
	}
}

// setView stores the camera position for this frame's specular term.
func (m *materials) setView(viewPos rl.Vector3) {
	m.viewPos = [3]float32{viewPos.X, viewPos.Y, viewPos.Z}
}

// draw draws mesh with tint, textured when tex is valid.
func (m *materials) draw(mesh rl.Mesh, transform rl.Matrix, tint rl.Color, emissive float32, tex rl.Texture2D, textured bool) {
	mtl := m.plain
	if textured && rl.IsTextureValid(tex) {
		rl.SetMaterialTexture(&m.textured, rl.MapAlbedo, tex)
		mtl = m.textured
	}
	if albedo := mtl.GetMap(rl.MapAlbedo); albedo != nil {
		albedo.Color = tint
	}
	m.setUniforms(mtl.Shader, emissive)
	rl.DrawMesh(mesh, mtl, transform)
}

// Lighting defaults: dim ambient so shadowed faces are not black, soft warm key light.
var (
	ambient    = [4]float32{0.25, 0.27, 0.32, 1.0}
	lightColor = [3]float32{1.0, 0.98, 0.95}
)

const (
	lightIntensity   = float32(0.75)
	specularPower    = float32(48.0)
	specularStrength = float32(0.25)
)

// setUniforms sets lighting uniforms on shader (cgo-safe: local arrays).
func (m *materials) setUniforms(shader rl.Shader, emissive float32) {
	if !rl.IsShaderValid(shader) {
		return
	}
	viewPos := m.viewPos
	lightDir := m.lightDir
	amb := ambient
	lc := lightColor
	if loc := rl.GetShaderLocation(shader, "viewPos"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, viewPos[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(shader, "lightDir"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, lightDir[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(shader, "ambient"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, amb[:], rl.ShaderUniformVec4, 1)
	}
	if loc := rl.GetShaderLocation(shader, "lightColor"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, lc[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(shader, "lightIntensity"); loc >= 0 {
		rl.SetShaderValue(shader, loc, []float32{lightIntensity}, rl.ShaderUniformFloat)
	}
	if loc := rl.GetShaderLocation(shader, "specularPower"); loc >= 0 {
		rl.SetShaderValue(shader, loc, []float32{specularPower}, rl.ShaderUniformFloat)
	}
	if loc := rl.GetShaderLocation(shader, "specularStrength"); loc >= 0 {
		rl.SetShaderValue(shader, loc, []float32{specularStrength}, rl.ShaderUniformFloat)
	}
	if loc := rl.GetShaderLocation(shader, "emissive"); loc >= 0 {
		rl.SetShaderValue(shader, loc, []float32{emissive}, rl.ShaderUniformFloat)
	}
}

// Directional light + ambient + specular, with an emissive share of the tint so
// score colors stay readable on faces turned away from the light.
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
	litShade = `
vec4 shade(vec4 tint) {
  vec3 N = normalize(fragNormal);
  vec3 L = normalize(lightDir);
  vec3 V = normalize(viewPos - fragPosition);
  float NdotL = max(dot(N, L), 0.0);
  vec3 diffuse = tint.rgb * NdotL * lightColor * lightIntensity;
  vec3 amb = ambient.rgb * tint.rgb;
  vec3 H = normalize(L + V);
  float spec = pow(max(dot(N, H), 0.0), specularPower) * specularStrength;
  vec3 specular = lightColor * spec * (NdotL > 0.0 ? 1.0 : 0.0);
  return vec4(amb + diffuse + specular + tint.rgb * emissive, tint.a);
}
`
	litUniforms = `#version 330
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
uniform float emissive;
out vec4 finalColor;
`
	litFS = litUniforms + litShade + `
void main() {
  finalColor = shade(colDiffuse);
}
`
	litTexturedFS = litUniforms + `uniform sampler2D texture0;
` + litShade + `
void main() {
  finalColor = shade(texture(texture0, fragTexCoord) * colDiffuse);
}
`
)
