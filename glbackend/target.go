package glbackend

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// RenderTarget is an offscreen framebuffer with an RGBA8 color texture and
// a 24-bit depth renderbuffer.
type RenderTarget struct {
	fbo               uint32
	textureID         uint32
	depthRenderbuffer uint32
	width             int
	height            int
}

func newRenderTarget(width, height int) (*RenderTarget, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid render target size %dx%d", width, height)
	}
	rt := &RenderTarget{}
	gl.GenFramebuffers(1, &rt.fbo)
	gl.GenTextures(1, &rt.textureID)
	gl.GenRenderbuffers(1, &rt.depthRenderbuffer)
	if err := rt.allocate(width, height); err != nil {
		rt.Destroy()
		return nil, err
	}
	return rt, nil
}

func (rt *RenderTarget) allocate(width, height int) error {
	rt.width, rt.height = width, height

	gl.BindFramebuffer(gl.FRAMEBUFFER, rt.fbo)
	gl.BindTexture(gl.TEXTURE_2D, rt.textureID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, rt.textureID, 0)

	gl.BindRenderbuffer(gl.RENDERBUFFER, rt.depthRenderbuffer)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, int32(width), int32(height))
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, rt.depthRenderbuffer)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("render target fbo is not complete (status 0x%x)", status)
	}
	return nil
}

func (rt *RenderTarget) FBO() uint32       { return rt.fbo }
func (rt *RenderTarget) TextureID() uint32 { return rt.textureID }
func (rt *RenderTarget) Size() (int, int)  { return rt.width, rt.height }

// ReadPixels copies the color attachment into dst as tightly packed RGBA,
// bottom row first. dst must hold width*height*4 bytes.
func (rt *RenderTarget) ReadPixels(dst []byte) error {
	if need := rt.width * rt.height * 4; len(dst) < need {
		return fmt.Errorf("readback buffer holds %d bytes, need %d", len(dst), need)
	}
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, rt.fbo)
	gl.ReadBuffer(gl.COLOR_ATTACHMENT0)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(rt.width), int32(rt.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&dst[0]))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	return nil
}

func (rt *RenderTarget) Destroy() {
	gl.DeleteFramebuffers(1, &rt.fbo)
	gl.DeleteTextures(1, &rt.textureID)
	gl.DeleteRenderbuffers(1, &rt.depthRenderbuffer)
}
