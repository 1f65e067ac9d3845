package glbackend

import (
	"testing"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/goraymarch/material"
	"github.com/richinsley/goraymarch/pipeline"
)

func TestDepthFunc(t *testing.T) {
	tests := []struct {
		in   material.CompareFunc
		want uint32
	}{
		{material.CompareDisabled, gl.ALWAYS},
		{material.CompareNever, gl.NEVER},
		{material.CompareLess, gl.LESS},
		{material.CompareEqual, gl.EQUAL},
		{material.CompareLessEqual, gl.LEQUAL},
		{material.CompareGreater, gl.GREATER},
		{material.CompareNotEqual, gl.NOTEQUAL},
		{material.CompareGreaterEqual, gl.GEQUAL},
		{material.CompareAlways, gl.ALWAYS},
	}
	for _, tc := range tests {
		if got := depthFunc(tc.in); got != tc.want {
			t.Errorf("depthFunc(%v) = 0x%x, want 0x%x", tc.in, got, tc.want)
		}
	}
}

func TestTopologyMode(t *testing.T) {
	tests := []struct {
		in   pipeline.Topology
		want uint32
	}{
		{pipeline.TopologyTriangles, gl.TRIANGLES},
		{pipeline.TopologyTriangleStrip, gl.TRIANGLE_STRIP},
		{pipeline.TopologyLines, gl.LINES},
		{pipeline.TopologyLineStrip, gl.LINE_STRIP},
		{pipeline.TopologyPoints, gl.POINTS},
	}
	for _, tc := range tests {
		if got := topologyMode(tc.in); got != tc.want {
			t.Errorf("topologyMode(%v) = 0x%x, want 0x%x", tc.in, got, tc.want)
		}
	}
}
