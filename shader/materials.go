package shader

import "github.com/richinsley/goraymarch/material"

// Names of the built-in materials and their passes.
const (
	RaymarchMaterial = "Raymarch"
	RaymarchShader   = "Hidden/RaymarchDepth"
	RaymarchPass     = "RAYMARCH_DEPTH"

	FloorMaterial  = "Floor"
	FloorShader    = "Hidden/Floor"
	DepthOnlyPass  = "DEPTH_ONLY"
	ForwardPass    = "FORWARD"
	FloorVertCount = 6
)

var depthContract = material.RenderState{
	ZWrite:      true,
	ZTest:       material.CompareLessEqual,
	WritesDepth: true,
}

// Builtins returns a fresh library with the raymarch and floor materials.
// Configuration files layer their materials on top of it.
func Builtins() *material.Library {
	lib := material.NewLibrary()
	lib.Add(material.New(RaymarchMaterial, &material.Shader{
		Name: RaymarchShader,
		Passes: []material.Pass{{
			Name:     RaymarchPass,
			State:    depthContract,
			Fragment: RaymarchFragment(""),
		}},
	}))
	lib.Add(material.New(FloorMaterial, &material.Shader{
		Name: FloorShader,
		Passes: []material.Pass{
			{
				Name:     DepthOnlyPass,
				State:    material.RenderState{ZWrite: true, ZTest: material.CompareLessEqual, DepthOnly: true},
				Vertex:   FloorVertex,
				Fragment: DepthOnlyFragment,
			},
			{
				Name:     ForwardPass,
				State:    material.RenderState{ZWrite: true, ZTest: material.CompareLessEqual},
				Vertex:   FloorVertex,
				Fragment: FloorFragment,
			},
		},
	}))
	return lib
}
