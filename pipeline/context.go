package pipeline

import "fmt"

// Backend executes recorded commands against a device.
type Backend interface {
	Execute(cmds []Command) error
}

// Context collects the command buffers passes hand over during a camera
// render and submits them to the backend in order.
type Context struct {
	backend Backend
	pending []Command
}

func NewContext(backend Backend) *Context {
	return &Context{backend: backend}
}

// ExecuteCommandBuffer schedules a copy of cmd's commands. The buffer may be
// cleared or released right after the call.
func (c *Context) ExecuteCommandBuffer(cmd *CommandBuffer) {
	c.pending = append(c.pending, cmd.Commands()...)
}

// Pending returns the number of commands waiting for Submit.
func (c *Context) Pending() int {
	return len(c.pending)
}

// Submit hands all scheduled commands to the backend.
func (c *Context) Submit() error {
	if len(c.pending) == 0 {
		return nil
	}
	cmds := c.pending
	c.pending = c.pending[:0]
	err := c.backend.Execute(cmds)
	clear(cmds)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	return nil
}
