package pipeline

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goraymarch/material"
)

// TargetHandle names a host-owned render target. Zero means "none".
type TargetHandle uint32

// Targets are the color and depth buffers of the camera being rendered.
// They are borrowed for the duration of one camera render.
type Targets struct {
	Color  TargetHandle
	Depth  TargetHandle
	Width  int
	Height int
}

// ClearFlag selects which attachments a target binding clears.
type ClearFlag uint8

const (
	ClearNone  ClearFlag = 0
	ClearColor ClearFlag = 1 << 0
	ClearDepth ClearFlag = 1 << 1
	ClearAll             = ClearColor | ClearDepth
)

// Topology is the primitive type of a draw.
type Topology int

const (
	TopologyTriangles Topology = iota
	TopologyTriangleStrip
	TopologyLines
	TopologyLineStrip
	TopologyPoints
)

func (t Topology) String() string {
	switch t {
	case TopologyTriangles:
		return "Triangles"
	case TopologyTriangleStrip:
		return "TriangleStrip"
	case TopologyLines:
		return "Lines"
	case TopologyLineStrip:
		return "LineStrip"
	case TopologyPoints:
		return "Points"
	}
	return fmt.Sprintf("Topology(%d)", int(t))
}

// Command is one recorded operation. Backends switch on the concrete type.
type Command interface {
	command()
}

type SetRenderTarget struct {
	Color TargetHandle
	Depth TargetHandle
	Clear ClearFlag
}

type ClearRenderTarget struct {
	Clear ClearFlag
	Color mgl32.Vec4
	Depth float32
}

type SetGlobalMatrix struct {
	ID    PropertyID
	Value mgl32.Mat4
}

type SetGlobalVector struct {
	ID    PropertyID
	Value mgl32.Vec4
}

type SetGlobalFloat struct {
	ID    PropertyID
	Value float32
}

// DrawProcedural draws without vertex or index buffers; the shader derives
// geometry from the vertex and instance index.
type DrawProcedural struct {
	Matrix        mgl32.Mat4
	Material      *material.Material
	Pass          int
	Topology      Topology
	VertexCount   int
	InstanceCount int
}

func (SetRenderTarget) command()   {}
func (ClearRenderTarget) command() {}
func (SetGlobalMatrix) command()   {}
func (SetGlobalVector) command()   {}
func (SetGlobalFloat) command()    {}
func (DrawProcedural) command()    {}

// CommandBuffer records commands for later execution by a Context.
type CommandBuffer struct {
	name string
	cmds []Command
}

func NewCommandBuffer(name string) *CommandBuffer {
	return &CommandBuffer{name: name}
}

func (cb *CommandBuffer) Name() string {
	return cb.name
}

// Commands returns the recorded commands. The slice is reused after Clear.
func (cb *CommandBuffer) Commands() []Command {
	return cb.cmds
}

func (cb *CommandBuffer) Len() int {
	return len(cb.cmds)
}

func (cb *CommandBuffer) Clear() {
	clear(cb.cmds)
	cb.cmds = cb.cmds[:0]
}

func (cb *CommandBuffer) SetRenderTarget(color, depth TargetHandle, clearFlags ClearFlag) {
	cb.cmds = append(cb.cmds, SetRenderTarget{Color: color, Depth: depth, Clear: clearFlags})
}

func (cb *CommandBuffer) ClearRenderTarget(flags ClearFlag, color mgl32.Vec4, depth float32) {
	cb.cmds = append(cb.cmds, ClearRenderTarget{Clear: flags, Color: color, Depth: depth})
}

func (cb *CommandBuffer) SetGlobalMatrix(id PropertyID, m mgl32.Mat4) {
	cb.cmds = append(cb.cmds, SetGlobalMatrix{ID: id, Value: m})
}

func (cb *CommandBuffer) SetGlobalVector(id PropertyID, v mgl32.Vec4) {
	cb.cmds = append(cb.cmds, SetGlobalVector{ID: id, Value: v})
}

func (cb *CommandBuffer) SetGlobalFloat(id PropertyID, v float32) {
	cb.cmds = append(cb.cmds, SetGlobalFloat{ID: id, Value: v})
}

func (cb *CommandBuffer) DrawProcedural(matrix mgl32.Mat4, mat *material.Material, pass int, topology Topology, vertexCount, instanceCount int) {
	cb.cmds = append(cb.cmds, DrawProcedural{
		Matrix:        matrix,
		Material:      mat,
		Pass:          pass,
		Topology:      topology,
		VertexCount:   vertexCount,
		InstanceCount: instanceCount,
	})
}

var commandBufferPool = sync.Pool{
	New: func() any { return &CommandBuffer{} },
}

// GetCommandBuffer takes an empty buffer from the pool.
func GetCommandBuffer(name string) *CommandBuffer {
	cb := commandBufferPool.Get().(*CommandBuffer)
	cb.name = name
	return cb
}

// ReleaseCommandBuffer clears cb and returns it to the pool. cb must not be
// used afterwards.
func ReleaseCommandBuffer(cb *CommandBuffer) {
	if cb == nil {
		return
	}
	cb.Clear()
	cb.name = ""
	commandBufferPool.Put(cb)
}
