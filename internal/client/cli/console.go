package cli

import (
	"fmt"
	"io"
	"sync"
)

// console serializes everything the app prints. Resend runs in the
// background and reports through the same writer.
type console struct {
	mu sync.Mutex
	w  io.Writer
}

func newConsole(w io.Writer) *console {
	return &console{w: w}
}

// Success and Error print toast-style notifications.
func (c *console) Success(msg string) { c.Printf("✔ %s\n", msg) }
func (c *console) Error(msg string)   { c.Printf("✖ %s\n", msg) }

func (c *console) Printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, format, args...)
}

// Write lets prompts share the lock.
func (c *console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.w.Write(p)
}
