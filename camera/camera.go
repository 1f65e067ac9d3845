package camera

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Type classifies what a camera renders for. Values are bit flags so
// filters can be combined.
type Type uint32

const (
	Game       Type = 1
	SceneView  Type = 2
	Preview    Type = 4
	VR         Type = 8
	Reflection Type = 16
)

func (t Type) String() string {
	switch t {
	case Game:
		return "Game"
	case SceneView:
		return "SceneView"
	case Preview:
		return "Preview"
	case VR:
		return "VR"
	case Reflection:
		return "Reflection"
	}
	return fmt.Sprintf("Type(%d)", uint32(t))
}

// ErrSingularProjection is returned when a projection matrix cannot be inverted.
var ErrSingularProjection = errors.New("projection matrix is not invertible")

// Camera holds the transform and lens state the renderer needs to build
// per-frame matrices. View space follows the OpenGL convention: the camera
// looks down -Z with +Y up.
type Camera struct {
	Name     string
	Type     Type
	Position mgl32.Vec3
	Rotation mgl32.Quat

	// FieldOfView is the vertical field of view in degrees.
	FieldOfView float32
	Aspect      float32
	Near        float32
	Far         float32

	Orthographic bool
	// OrthographicSize is half the vertical extent of the view volume.
	OrthographicSize float32

	// customProjection overrides the lens parameters when set.
	customProjection *mgl32.Mat4
}

// New returns a perspective game camera at the origin looking down -Z.
func New(name string) *Camera {
	return &Camera{
		Name:             name,
		Type:             Game,
		Rotation:         mgl32.QuatIdent(),
		FieldOfView:      60,
		Aspect:           16.0 / 9.0,
		Near:             0.1,
		Far:              100,
		OrthographicSize: 5,
	}
}

// LookAt points the camera from eye towards center.
func (c *Camera) LookAt(eye, center, up mgl32.Vec3) {
	f := center.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)
	c.Position = eye
	c.Rotation = mgl32.Mat4ToQuat(mgl32.Mat3FromCols(s, u, f.Mul(-1)).Mat4())
}

// Orbit places the camera on a sphere of radius around target. Yaw and
// pitch are in degrees; yaw 0 puts the camera on +Z.
func (c *Camera) Orbit(target mgl32.Vec3, radius, yaw, pitch float32) {
	sy, cy := math32.Sincos(mgl32.DegToRad(yaw))
	sp, cp := math32.Sincos(mgl32.DegToRad(pitch))
	eye := target.Add(mgl32.Vec3{radius * cp * sy, radius * sp, radius * cp * cy})
	c.LookAt(eye, target, mgl32.Vec3{0, 1, 0})
}

// SetProjectionMatrix replaces the lens-derived projection. Pass nil to
// go back to the lens parameters.
func (c *Camera) SetProjectionMatrix(m *mgl32.Mat4) {
	if m == nil {
		c.customProjection = nil
		return
	}
	p := *m
	c.customProjection = &p
}

// ProjectionMatrix maps view space to clip space.
func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	if c.customProjection != nil {
		return *c.customProjection
	}
	if c.Orthographic {
		h := c.OrthographicSize
		w := h * c.Aspect
		return mgl32.Ortho(-w, w, -h, h, c.Near, c.Far)
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FieldOfView), c.Aspect, c.Near, c.Far)
}

// CameraToWorldMatrix maps view space to world space.
func (c *Camera) CameraToWorldMatrix() mgl32.Mat4 {
	return mgl32.Translate3D(c.Position.X(), c.Position.Y(), c.Position.Z()).Mul4(c.Rotation.Normalize().Mat4())
}

// WorldToCameraMatrix is the view matrix, the inverse of CameraToWorldMatrix.
// Rigid transforms invert without a general 4x4 inverse.
func (c *Camera) WorldToCameraMatrix() mgl32.Mat4 {
	rt := c.Rotation.Normalize().Conjugate()
	p := rt.Rotate(c.Position)
	return mgl32.Translate3D(-p.X(), -p.Y(), -p.Z()).Mul4(rt.Mat4())
}

// Forward returns the world-space viewing direction.
func (c *Camera) Forward() mgl32.Vec3 {
	return c.Rotation.Normalize().Rotate(mgl32.Vec3{0, 0, -1})
}

// InverseProjection inverts the projection matrix, refusing singular or
// non-finite input.
func InverseProjection(p mgl32.Mat4) (mgl32.Mat4, error) {
	det := p.Det()
	if det == 0 || math32.IsNaN(det) || math32.IsInf(det, 0) {
		return mgl32.Mat4{}, ErrSingularProjection
	}
	return p.Inv(), nil
}
