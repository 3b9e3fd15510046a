// Package request holds the per-request descriptor handed to handlers.
package request

import (
	"net"
	"time"

	"github.com/danmuck/gridd/internal/protocol"
)

// Context describes one in-flight request. It is owned by the goroutine
// serving the request and must not be shared.
type Context struct {
	Conn      net.Conn
	Local     *Addr
	Remote    *Addr
	StartedAt time.Time
	Request   *protocol.Envelope
}

// New builds a context for conn. The remote address is resolved from the
// connection; the local address is copied from local when given, otherwise
// resolved from the connection.
func New(conn net.Conn, local *Addr) *Context {
	ctx := &Context{
		Conn:      conn,
		StartedAt: time.Now(),
	}
	if conn == nil {
		ctx.Local = local.Clone()
		return ctx
	}
	ctx.Remote = AddrFrom(conn.RemoteAddr())
	if local != nil {
		ctx.Local = local.Clone()
	} else {
		ctx.Local = AddrFrom(conn.LocalAddr())
	}
	return ctx
}

// WithRequest attaches the decoded request envelope and returns ctx.
func (c *Context) WithRequest(env *protocol.Envelope) *Context {
	if c != nil {
		c.Request = env
	}
	return c
}

// RequestName returns the name of the attached request, if any.
func (c *Context) RequestName() string {
	if c == nil || c.Request == nil {
		return ""
	}
	return c.Request.Name
}

// RequestID returns the message ID of the attached request, if any.
func (c *Context) RequestID() uint64 {
	if c == nil || c.Request == nil {
		return 0
	}
	return c.Request.ID
}

// Elapsed reports the time spent since the context was created.
func (c *Context) Elapsed() time.Duration {
	if c == nil || c.StartedAt.IsZero() {
		return 0
	}
	return time.Since(c.StartedAt)
}

// Clear drops every field. Calling it again is a no-op.
func (c *Context) Clear() {
	if c == nil {
		return
	}
	*c = Context{}
}

// Free clears the context at the end of its request. The connection itself
// is left open; closing it belongs to the connection owner.
func (c *Context) Free() {
	c.Clear()
}
