package render

import (
	"os"
	"path/filepath"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	gridExtent     = 100
	gridMinorStep  = 2
	gridMajorStep  = 10
	gridMinorAlpha = 40
	gridMajorAlpha = 110
	skyboxScale    = 1000
)

// skyboxPaths are tried in order so the skybox is found whether run from repo root or cmd/explorer.
var skyboxPaths = []string{
	"assets/skybox/skybox.png",
	"assets/skybox/skybox.jpg",
	"../../assets/skybox/skybox.png",
	"../../assets/skybox/skybox.jpg",
}

// View owns the 3D camera and the world backdrop (skybox and ground grid). The camera
// is a free camera driven while the right mouse button is held, so left clicks stay
// available for picking.
type View struct {
	Camera      rl.Camera3D
	GridVisible bool

	looking bool

	// Skybox: panorama drawn first in 3D mode. GPU load is deferred to the first Draw.
	skyboxPath    string
	skyboxPending bool
	skyboxLoaded  bool
	skyboxTex     rl.Texture2D
	skyboxMesh    rl.Mesh
	skyboxMtl     rl.Material
	camPosLoc     int32
	texLoc        int32
}

// NewView returns a view whose camera looks at the origin from position.
func NewView(position rl.Vector3) *View {
	v := &View{GridVisible: true}
	v.Camera.Position = position
	v.Camera.Target = rl.NewVector3(0, 0, 0)
	v.Camera.Up = rl.NewVector3(0, 1, 0)
	v.Camera.Fovy = 45
	v.Camera.Projection = rl.CameraPerspective
	v.findSkybox()
	return v
}

func (v *View) findSkybox() {
	for _, p := range skyboxPaths {
		cleaned := filepath.Clean(p)
		if _, err := os.Stat(cleaned); err == nil {
			v.skyboxPath = cleaned
			v.skyboxPending = true
			return
		}
	}
}

// ensureSkybox loads the panorama texture and shader once the GL context exists.
func (v *View) ensureSkybox() {
	if !v.skyboxPending {
		return
	}
	v.skyboxPending = false
	v.skyboxTex = rl.LoadTexture(v.skyboxPath)
	if !rl.IsTextureValid(v.skyboxTex) {
		return
	}
	shader := rl.LoadShaderFromMemory(equirectVS, equirectFS)
	if !rl.IsShaderValid(shader) {
		rl.UnloadTexture(v.skyboxTex)
		return
	}
	v.skyboxMesh = rl.GenMeshCube(1, 1, 1)
	v.skyboxMtl = rl.LoadMaterialDefault()
	v.skyboxMtl.Shader = shader
	v.camPosLoc = rl.GetShaderLocation(shader, "cameraPosition")
	v.texLoc = rl.GetShaderLocation(shader, "skybox")
	v.skyboxLoaded = true
}

// Update moves the camera from user input unless locked (while a camera animation
// owns it). Holding the right mouse button captures the cursor for free-look.
func (v *View) Update(locked bool) {
	if locked {
		v.release()
		return
	}
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		rl.DisableCursor()
		v.looking = true
	}
	if rl.IsMouseButtonReleased(rl.MouseButtonRight) {
		v.release()
	}
	if v.looking {
		rl.UpdateCamera(&v.Camera, rl.CameraFree)
	}
}

func (v *View) release() {
	if v.looking {
		rl.EnableCursor()
		v.looking = false
	}
}

// Draw renders the backdrop, then calls world inside the same 3D pass.
func (v *View) Draw(world func()) {
	v.ensureSkybox()
	rl.BeginMode3D(v.Camera)
	if v.skyboxLoaded {
		v.drawSkybox()
	}
	if v.GridVisible {
		drawGroundGrid()
	}
	if world != nil {
		world()
	}
	rl.EndMode3D()
}

// Close frees the skybox GPU resources.
func (v *View) Close() {
	if !v.skyboxLoaded {
		return
	}
	rl.UnloadTexture(v.skyboxTex)
	rl.UnloadMesh(&v.skyboxMesh)
	rl.UnloadMaterial(v.skyboxMtl)
	v.skyboxLoaded = false
}

// drawSkybox draws the panorama on a large cube centered on the camera.
func (v *View) drawSkybox() {
	rl.DisableDepthMask()
	rl.DisableBackfaceCulling()
	pos := v.Camera.Position
	transform := rl.MatrixMultiply(rl.MatrixScale(skyboxScale, skyboxScale, skyboxScale), rl.MatrixTranslate(pos.X, pos.Y, pos.Z))
	if v.camPosLoc >= 0 {
		rl.SetShaderValueV(v.skyboxMtl.Shader, v.camPosLoc, []float32{pos.X, pos.Y, pos.Z}, rl.ShaderUniformVec3, 1)
	}
	if v.texLoc >= 0 {
		rl.SetShaderValueTexture(v.skyboxMtl.Shader, v.texLoc, v.skyboxTex)
	}
	rl.DrawMesh(v.skyboxMesh, v.skyboxMtl, transform)
	rl.EnableBackfaceCulling()
	rl.EnableDepthMask()
}

// drawGroundGrid draws the ground plane grid at Y=0 with heavier lines every gridMajorStep.
func drawGroundGrid() {
	minor := rl.NewColor(128, 128, 128, gridMinorAlpha)
	major := rl.NewColor(160, 160, 160, gridMajorAlpha)

	var start, end rl.Vector3
	for i := -gridExtent; i <= gridExtent; i += gridMinorStep {
		c := minor
		if i%gridMajorStep == 0 {
			c = major
		}
		start.X, start.Y, start.Z = float32(i), 0, -gridExtent
		end.X, end.Y, end.Z = float32(i), 0, gridExtent
		rl.DrawLine3D(start, end, c)
		start.X, start.Z = -gridExtent, float32(i)
		end.X, end.Z = gridExtent, float32(i)
		rl.DrawLine3D(start, end, c)
	}
}

// Equirectangular skybox shader: samples a 2D panorama by view direction.
const (
	equirectVS = `#version 330
in vec3 vertexPosition;
uniform mat4 matProjection;
uniform mat4 matView;
uniform mat4 matModel;
out vec3 fragWorldPos;
void main() {
  vec4 worldPos = matModel * vec4(vertexPosition, 1.0);
  fragWorldPos = worldPos.xyz;
  gl_Position = matProjection * matView * worldPos;
}
`
	equirectFS = `#version 330
in vec3 fragWorldPos;
out vec4 finalColor;
uniform sampler2D skybox;
uniform vec3 cameraPosition;
void main() {
  vec3 dir = normalize(fragWorldPos - cameraPosition);
  float lon = atan(dir.z, dir.x);
  float lat = asin(clamp(dir.y, -1.0, 1.0));
  finalColor = texture(skybox, vec2(lon / 6.28318530718 + 0.5, 0.5 - lat / 3.14159265359));
}
`
)
