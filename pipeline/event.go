package pipeline

import (
	"fmt"
	"strconv"
	"strings"
)

// RenderPassEvent is an insertion point in the frame timeline. Passes run
// in ascending event order.
type RenderPassEvent int

const (
	BeforeRendering               RenderPassEvent = 0
	BeforeRenderingShadows        RenderPassEvent = 50
	AfterRenderingShadows         RenderPassEvent = 100
	BeforeRenderingPrePasses      RenderPassEvent = 150
	AfterRenderingPrePasses       RenderPassEvent = 200
	BeforeRenderingGbuffer        RenderPassEvent = 210
	AfterRenderingGbuffer         RenderPassEvent = 220
	BeforeRenderingDeferredLights RenderPassEvent = 230
	AfterRenderingDeferredLights  RenderPassEvent = 240
	BeforeRenderingOpaques        RenderPassEvent = 250
	AfterRenderingOpaques         RenderPassEvent = 300
	BeforeRenderingSkybox         RenderPassEvent = 350
	AfterRenderingSkybox          RenderPassEvent = 400
	BeforeRenderingTransparents   RenderPassEvent = 450
	AfterRenderingTransparents    RenderPassEvent = 500
	BeforeRenderingPostProcessing RenderPassEvent = 550
	AfterRenderingPostProcessing  RenderPassEvent = 600
	AfterRendering                RenderPassEvent = 1000
)

var eventNames = []struct {
	e    RenderPassEvent
	name string
}{
	{BeforeRendering, "BeforeRendering"},
	{BeforeRenderingShadows, "BeforeRenderingShadows"},
	{AfterRenderingShadows, "AfterRenderingShadows"},
	{BeforeRenderingPrePasses, "BeforeRenderingPrePasses"},
	{AfterRenderingPrePasses, "AfterRenderingPrePasses"},
	{BeforeRenderingGbuffer, "BeforeRenderingGbuffer"},
	{AfterRenderingGbuffer, "AfterRenderingGbuffer"},
	{BeforeRenderingDeferredLights, "BeforeRenderingDeferredLights"},
	{AfterRenderingDeferredLights, "AfterRenderingDeferredLights"},
	{BeforeRenderingOpaques, "BeforeRenderingOpaques"},
	{AfterRenderingOpaques, "AfterRenderingOpaques"},
	{BeforeRenderingSkybox, "BeforeRenderingSkybox"},
	{AfterRenderingSkybox, "AfterRenderingSkybox"},
	{BeforeRenderingTransparents, "BeforeRenderingTransparents"},
	{AfterRenderingTransparents, "AfterRenderingTransparents"},
	{BeforeRenderingPostProcessing, "BeforeRenderingPostProcessing"},
	{AfterRenderingPostProcessing, "AfterRenderingPostProcessing"},
	{AfterRendering, "AfterRendering"},
}

// String returns the event name, or "Name+offset" for events placed
// between the named ones.
func (e RenderPassEvent) String() string {
	best := -1
	for i, n := range eventNames {
		if n.e <= e {
			best = i
		}
	}
	if best < 0 {
		return fmt.Sprintf("RenderPassEvent(%d)", int(e))
	}
	if off := e - eventNames[best].e; off != 0 {
		return fmt.Sprintf("%s+%d", eventNames[best].name, int(off))
	}
	return eventNames[best].name
}

// ParseRenderPassEvent accepts names (case-insensitive), "Name+offset" and
// plain integers.
func ParseRenderPassEvent(s string) (RenderPassEvent, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		return RenderPassEvent(v), nil
	}
	name, offset := s, 0
	if i := strings.IndexByte(s, '+'); i >= 0 {
		off, err := strconv.Atoi(strings.TrimSpace(s[i+1:]))
		if err != nil {
			return 0, fmt.Errorf("bad render pass event offset in %q: %w", s, err)
		}
		name, offset = strings.TrimSpace(s[:i]), off
	}
	for _, n := range eventNames {
		if strings.EqualFold(n.name, name) {
			return n.e + RenderPassEvent(offset), nil
		}
	}
	return 0, fmt.Errorf("unknown render pass event %q", s)
}

func (e *RenderPassEvent) UnmarshalText(b []byte) error {
	v, err := ParseRenderPassEvent(string(b))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

func (e RenderPassEvent) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// PassInput declares resources a pass needs the host to produce before it
// runs.
type PassInput uint32

const (
	InputNone   PassInput = 0
	InputDepth  PassInput = 1 << 0
	InputNormal PassInput = 1 << 1
	InputColor  PassInput = 1 << 2
	InputMotion PassInput = 1 << 3
)

func (p PassInput) Has(in PassInput) bool {
	return p&in == in
}
