package renderer

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goraymarch/camera"
	"github.com/richinsley/goraymarch/pipeline"
)

// Orbit moves a camera on a sphere around Target. Angles are in degrees;
// Speed turns the yaw in degrees per second.
type Orbit struct {
	Target mgl32.Vec3
	Radius float32
	Yaw    float32
	Pitch  float32
	Speed  float32
}

const (
	minPitch       = 2
	maxPitch       = 85
	dragDegPerPix  = 0.3
	insetFraction  = 4
	insetMarginPix = 12
)

// Angles returns the yaw and pitch at time t.
func (o Orbit) Angles(t float64) (yaw, pitch float32) {
	yaw = math32.Mod(o.Yaw+o.Speed*float32(t), 360)
	if yaw < 0 {
		yaw += 360
	}
	return yaw, o.Pitch
}

// Apply places cam on the orbit at time t.
func (o Orbit) Apply(cam *camera.Camera, t float64) {
	yaw, pitch := o.Angles(t)
	cam.Orbit(o.Target, o.Radius, yaw, pitch)
}

// Drag turns the orbit by a mouse movement in pixels.
func (o *Orbit) Drag(dx, dy float32) {
	o.Yaw -= dx * dragDegPerPix
	o.Pitch = mgl32.Clamp(o.Pitch-dy*dragDegPerPix, minPitch, maxPitch)
}

// View is a camera with its render targets.
type View struct {
	Camera  *camera.Camera
	Targets pipeline.Targets
	Orbit   Orbit
	// Inset draws the view into a corner of the window.
	Inset   bool
	Enabled bool
}

func newGameView() *View {
	cam := camera.New("Main Camera")
	return &View{
		Camera:  cam,
		Orbit:   Orbit{Target: mgl32.Vec3{0, 0.6, 0}, Radius: 6, Yaw: 30, Pitch: 22, Speed: 12},
		Enabled: true,
	}
}

// newSceneView is a slower, higher editor-style camera. Features that only
// serve game cameras skip it.
func newSceneView() *View {
	cam := camera.New("SceneCamera")
	cam.Type = camera.SceneView
	cam.FieldOfView = 50
	return &View{
		Camera: cam,
		Orbit:  Orbit{Target: mgl32.Vec3{0, 0.5, 0}, Radius: 10, Yaw: -60, Pitch: 40, Speed: -6},
		Inset:  true,
	}
}

// insetRect returns the viewport of an inset view in a width x height
// framebuffer: a quarter-size rectangle in the top right corner.
func insetRect(width, height int) (x, y, w, h int) {
	w, h = width/insetFraction, height/insetFraction
	x = width - w - insetMarginPix
	y = height - h - insetMarginPix
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y, w, h
}

// insetSize is the render target size of an inset view.
func insetSize(width, height int) (int, int) {
	_, _, w, h := insetRect(width, height)
	return max(w, 1), max(h, 1)
}

// mouseDrag turns GetMouseInput samples into drag deltas.
type mouseDrag struct {
	last     [2]float32
	dragging bool
}

// update returns the movement since the previous sample while the button
// is held. Click coordinates are negative when the button is up.
func (m *mouseDrag) update(mouse [4]float32) (dx, dy float32, ok bool) {
	down := mouse[2] > 0 || mouse[3] > 0
	if !down {
		m.dragging = false
		return 0, 0, false
	}
	pos := [2]float32{mouse[0], mouse[1]}
	if !m.dragging {
		m.dragging = true
		m.last = pos
		return 0, 0, false
	}
	dx, dy = pos[0]-m.last[0], pos[1]-m.last[1]
	m.last = pos
	return dx, dy, dx != 0 || dy != 0
}
