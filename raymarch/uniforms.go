package raymarch

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goraymarch/camera"
	"github.com/richinsley/goraymarch/pipeline"
)

// Shader globals read by the raymarch pass. Names must match the shader.
var (
	InvProjID = pipeline.PropertyToID("_InvProjMat")
	InvViewID = pipeline.PropertyToID("_InvViewMat")
	VPID      = pipeline.PropertyToID("_CameraVP")
	CamPosID  = pipeline.PropertyToID("_CameraPos")
)

// Uniforms are the per-camera values uploaded before the draw.
type Uniforms struct {
	InvProjection  mgl32.Mat4
	InvView        mgl32.Mat4 // camera to world
	ViewProjection mgl32.Mat4 // projection * world to camera
	CameraPosition mgl32.Vec3
}

// ComputeUniforms derives the raymarch globals from the camera's current
// state. It fails with camera.ErrSingularProjection when the projection
// cannot be inverted.
func ComputeUniforms(cam *camera.Camera) (Uniforms, error) {
	proj := cam.ProjectionMatrix()
	invProj, err := camera.InverseProjection(proj)
	if err != nil {
		return Uniforms{}, err
	}
	return Uniforms{
		InvProjection:  invProj,
		InvView:        cam.CameraToWorldMatrix(),
		ViewProjection: proj.Mul4(cam.WorldToCameraMatrix()),
		CameraPosition: cam.Position,
	}, nil
}

// Record writes u into cmd as shader globals.
func (u Uniforms) Record(cmd *pipeline.CommandBuffer) {
	cmd.SetGlobalMatrix(InvProjID, u.InvProjection)
	cmd.SetGlobalMatrix(InvViewID, u.InvView)
	cmd.SetGlobalMatrix(VPID, u.ViewProjection)
	cmd.SetGlobalVector(CamPosID, u.CameraPosition.Vec4(1))
}
