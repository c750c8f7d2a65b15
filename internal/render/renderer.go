package render

import (
	"math"

	"property-explorer/internal/scene"
	"property-explorer/internal/visual"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"
)

const (
	rodSlices     = 16
	labelFontSize = 20
	// faceEmissive keeps score tints visible on unlit faces; textured faces get none.
	faceEmissive = float32(0.35)
	rodEmissive  = float32(0.2)
)

// Source is what the renderer draws from; *scene.Controller satisfies it.
type Source interface {
	Each(fn func(scene.Handle, *visual.Visual))
}

type rodMesh struct {
	mesh     rl.Mesh
	revision uint64
	seen     uint64
}

// Renderer draws property visuals: six face quads per box, the rod and the label plate.
// All GPU resources are created lazily on the first Draw and owned by the Renderer.
type Renderer struct {
	mats  materials
	rods  map[scene.Handle]*rodMesh
	frame uint64
	log   *zap.Logger
}

// NewRenderer returns a renderer with no GPU resources yet.
func NewRenderer(log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{rods: make(map[scene.Handle]*rodMesh), log: log.Named("render")}
}

// Draw renders every visual in src. Call between BeginMode3D and EndMode3D.
func (r *Renderer) Draw(cam rl.Camera3D, src Source) {
	r.mats.ensure()
	r.mats.setView(cam.Position)
	r.frame++

	src.Each(func(h scene.Handle, v *visual.Visual) {
		r.drawRod(h, v)
		r.drawBox(v)
		r.drawPlate(v)
	})
	r.sweepRods()
}

// DrawLabels draws label text over the plates. Call after EndMode3D.
func (r *Renderer) DrawLabels(cam rl.Camera3D, src Source) {
	forward := rl.Vector3Normalize(rl.Vector3Subtract(cam.Target, cam.Position))
	src.Each(func(_ scene.Handle, v *visual.Visual) {
		l := v.Label()
		if l.Text == "" || rl.Vector3DotProduct(rl.Vector3Subtract(l.Position, cam.Position), forward) <= 0 {
			return
		}
		p := rl.GetWorldToScreen(l.Position, cam)
		w := rl.MeasureText(l.Text, labelFontSize)
		rl.DrawText(l.Text, int32(p.X)-w/2, int32(p.Y)-labelFontSize/2, labelFontSize, rl.RayWhite)
	})
}

func (r *Renderer) drawBox(v *visual.Visual) {
	model := v.Transform()
	size := v.Options().Size
	for f := visual.Face(0); f < visual.FaceCount; f++ {
		m := v.Face(f)
		tex, ok := m.Texture.GPU()
		emissive := faceEmissive
		if ok {
			emissive = 0
		}
		r.mats.draw(r.mats.quad, rl.MatrixMultiply(faceMatrix(f, size), model), m.Tint, emissive, tex, ok)
	}
}

// drawRod draws the rod mesh, regenerating it when the rod revision changed.
func (r *Renderer) drawRod(h scene.Handle, v *visual.Visual) {
	rod := v.Rod()
	if rod.Length <= 0 {
		return
	}
	rm, ok := r.rods[h]
	if ok && rm.revision != rod.Revision {
		rl.UnloadMesh(&rm.mesh)
		ok = false
	}
	if !ok {
		rm = &rodMesh{mesh: rl.GenMeshCylinder(rod.Radius, rod.Length, rodSlices), revision: rod.Revision}
		r.rods[h] = rm
		r.log.Debug("rod mesh built", zap.String("id", v.ID()), zap.Uint64("revision", rod.Revision))
	}
	rm.seen = r.frame
	r.mats.draw(rm.mesh, rodMatrix(v.Anchor()), rod.Color, rodEmissive, rl.Texture2D{}, false)
}

func (r *Renderer) drawPlate(v *visual.Visual) {
	l := v.Label()
	if l.Text == "" {
		return
	}
	r.mats.draw(r.mats.quad, plateMatrix(l, v.Orientation().Yaw), visual.LabelTint(), 1, rl.Texture2D{}, false)
}

// sweepRods frees rod meshes of visuals that were not drawn this frame (disposed).
func (r *Renderer) sweepRods() {
	for h, rm := range r.rods {
		if rm.seen != r.frame {
			rl.UnloadMesh(&rm.mesh)
			delete(r.rods, h)
		}
	}
}

// Close frees every GPU resource owned by the renderer.
func (r *Renderer) Close() {
	for h, rm := range r.rods {
		rl.UnloadMesh(&rm.mesh)
		delete(r.rods, h)
	}
	r.mats.unload()
}

// faceMatrix maps the unit XZ quad facing +Y onto face f of a box of the given size
// centered at the origin.
func faceMatrix(f visual.Face, size rl.Vector3) rl.Matrix {
	const quarter = math.Pi / 2
	w, h, d := size.X, size.Y, size.Z
	var scale, rot, move rl.Matrix
	switch f {
	case visual.FaceRight:
		scale, rot, move = rl.MatrixScale(h, 1, d), rl.MatrixRotateZ(-quarter), rl.MatrixTranslate(w/2, 0, 0)
	case visual.FaceLeft:
		scale, rot, move = rl.MatrixScale(h, 1, d), rl.MatrixRotateZ(quarter), rl.MatrixTranslate(-w/2, 0, 0)
	case visual.FaceTop:
		scale, rot, move = rl.MatrixScale(w, 1, d), rl.MatrixIdentity(), rl.MatrixTranslate(0, h/2, 0)
	case visual.FaceBottom:
		scale, rot, move = rl.MatrixScale(w, 1, d), rl.MatrixRotateX(math.Pi), rl.MatrixTranslate(0, -h/2, 0)
	case visual.FaceFront:
		scale, rot, move = rl.MatrixScale(w, 1, h), rl.MatrixRotateX(quarter), rl.MatrixTranslate(0, 0, d/2)
	default:
		scale, rot, move = rl.MatrixScale(w, 1, h), rl.MatrixRotateX(-quarter), rl.MatrixTranslate(0, 0, -d/2)
	}
	return rl.MatrixMultiply(rl.MatrixMultiply(scale, rot), move)
}

// rodMatrix places the cylinder (base at origin, growing +Y) under the anchor.
func rodMatrix(anchor rl.Vector3) rl.Matrix {
	return rl.MatrixTranslate(anchor.X, 0, anchor.Z)
}

// plateMatrix stands the quad upright facing +Z, then yaws it with the box.
func plateMatrix(l visual.Label, yaw float32) rl.Matrix {
	m := rl.MatrixMultiply(rl.MatrixScale(l.Size.X, 1, l.Size.Y), rl.MatrixRotateX(math.Pi/2))
	m = rl.MatrixMultiply(m, rl.MatrixRotateY(yaw))
	return rl.MatrixMultiply(m, rl.MatrixTranslate(l.Position.X, l.Position.Y, l.Position.Z))
}
