package scene

import (
	"crystal-engine/internal/game"
	"crystal-engine/internal/physics"
	"crystal-engine/internal/primitives"
	"crystal-engine/internal/vecmath"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	gridExtent     = 50
	gridMinorStep  = 1
	gridMajorStep  = 10
	gridMinorAlpha = 50
	gridMajorAlpha = 120
	axisLineAlpha  = 220
	particleSize   = 0.05
)

// Scene holds a 3D camera and draws the game's bodies and effects. Update runs the free camera;
// Draw renders between BeginMode3D and EndMode3D.
type Scene struct {
	Camera      rl.Camera3D
	cursorDone  bool
	GridVisible bool
	prims       *primitives.Registry
}

// New returns a scene with a perspective camera looking at the origin.
// Camera: position (10,10,10), target (0,2,0), up (0,1,0), fovy 45°. Grid is visible by default.
func New() *Scene {
	s := &Scene{prims: primitives.NewRegistry()}
	s.Camera.Position = rl.NewVector3(10, 10, 10)
	s.Camera.Target = rl.NewVector3(0, 2, 0)
	s.Camera.Up = rl.NewVector3(0, 1, 0)
	s.Camera.Fovy = 45
	s.Camera.Projection = rl.CameraPerspective
	s.GridVisible = true
	return s
}

// SetGridVisible sets whether the editor grid is drawn.
func (s *Scene) SetGridVisible(visible bool) {
	s.GridVisible = visible
}

// Update runs once per frame. Uses raylib UpdateCamera with CameraFree so the user can
// move the camera with mouse and keyboard. Cursor is disabled so the mouse is captured.
func (s *Scene) Update() {
	if !s.cursorDone {
		rl.DisableCursor()
		s.cursorDone = true
	}
	rl.UpdateCamera(&s.Camera, rl.CameraFree)
}

// Aim returns the camera position and viewing direction, where bullets are fired from.
func (s *Scene) Aim() (origin, direction vecmath.Vector3) {
	p, t := s.Camera.Position, s.Camera.Target
	origin = vecmath.V3(p.X, p.Y, p.Z)
	return origin, vecmath.V3(t.X, t.Y, t.Z).Sub(origin)
}

// Draw renders the grid, every live collider of the game's world and the particles of running effects.
// Call after ClearBackground and before the 2D overlays.
func (s *Scene) Draw(g *game.Game) {
	p := s.Camera.Position
	s.prims.SetView([3]float32{p.X, p.Y, p.Z}, [3]float32{0.5, 1, 0.5})

	rl.BeginMode3D(s.Camera)
	if s.GridVisible {
		drawEditorGrid()
	}
	for _, c := range g.World.Colliders() {
		s.drawCollider(c)
	}
	for _, pt := range g.Particles.Particles() {
		s.prims.DrawPoint(pt.Position(), particleSize, primitives.SparkColor)
	}
	for _, e := range g.Particles.Effects() {
		if e.Destroyable() {
			continue
		}
		for _, pt := range e.Particles() {
			s.prims.DrawPoint(pt.Position(), particleSize, primitives.SparkColor)
		}
	}
	rl.EndMode3D()
}

func (s *Scene) drawCollider(c physics.Collider) {
	tint := tintFor(c.Body())
	switch shape := c.(type) {
	case *physics.Box:
		s.prims.DrawBox(shape.Transform(), shape.HalfSize, tint)
	case *physics.Sphere:
		s.prims.DrawSphere(shape.Transform(), shape.Radius, tint)
	case *physics.Plane:
		s.prims.DrawPlane(shape.Normal, shape.Offset, primitives.GroundColor)
	}
}

func tintFor(b *physics.RigidBody) rl.Color {
	switch {
	case b == nil:
		return primitives.GroundColor
	case b.Tag == game.BulletTag:
		return primitives.BulletColor
	case !b.Awake():
		return primitives.SleepColor
	}
	return primitives.BoxColor
}

// drawEditorGrid draws a grid on the XZ plane with major/minor lines and axis lines.
// Reuses start/end vectors to avoid per-frame allocations in the hot loop.
func drawEditorGrid() {
	minor := rl.NewColor(128, 128, 128, gridMinorAlpha)
	major := rl.NewColor(160, 160, 160, gridMajorAlpha)
	axisX := rl.NewColor(220, 80, 80, axisLineAlpha)
	axisY := rl.NewColor(80, 220, 80, axisLineAlpha)
	axisZ := rl.NewColor(80, 80, 220, axisLineAlpha)

	// Lifted slightly so the grid is not z-fighting with the ground quad.
	const y = 0.01
	var start, end rl.Vector3
	for i := -gridExtent; i <= gridExtent; i += gridMinorStep {
		c := major
		if i%gridMajorStep != 0 {
			c = minor
		}
		start.X, start.Y, start.Z = float32(i), y, -gridExtent
		end.X, end.Y, end.Z = float32(i), y, gridExtent
		rl.DrawLine3D(start, end, c)
		start.X, start.Y, start.Z = -gridExtent, y, float32(i)
		end.X, end.Y, end.Z = gridExtent, y, float32(i)
		rl.DrawLine3D(start, end, c)
	}

	// Axis lines through origin (X=red, Y=green, Z=blue)
	rl.DrawLine3D(rl.NewVector3(-gridExtent, y, 0), rl.NewVector3(gridExtent, y, 0), axisX)
	rl.DrawLine3D(rl.NewVector3(0, -gridExtent, 0), rl.NewVector3(0, gridExtent, 0), axisY)
	rl.DrawLine3D(rl.NewVector3(0, y, -gridExtent), rl.NewVector3(0, y, gridExtent), axisZ)
}
