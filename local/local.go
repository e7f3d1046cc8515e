// Package local provides a zero-copy, in-process timebase connection.
//
// For programs compiled into the same binary as their timebase, this
// adapter wraps the timebase with boundary state machine enforcement
// and capability discovery, with no serialization overhead.
package local

import (
	"context"

	"github.com/blockberries/unitime"
	"github.com/blockberries/unitime/server"
	"github.com/blockberries/unitime/types"
)

// Compile-time interface check.
var _ unitime.Connection = (*Connection)(nil)

// Connection wraps a local Timebase implementation with boundary
// enforcement and capability discovery.
type Connection struct {
	srv *server.Server
}

// NewConnection creates an in-process connection wrapping the given
// timebase.
func NewConnection(tb unitime.Timebase) *Connection {
	return &Connection{srv: server.New(tb)}
}

func (c *Connection) Handshake(ctx context.Context, req types.HandshakeRequest) (types.HandshakeResponse, error) {
	return c.srv.Handshake(ctx, req)
}

func (c *Connection) Now(ctx context.Context) (types.Mark, error) {
	return c.srv.Now(ctx)
}

func (c *Connection) Resolve(ctx context.Context, raw types.UniversalTime) (types.UniversalTime, error) {
	return c.srv.Resolve(ctx, raw)
}

func (c *Connection) Capabilities() types.Capabilities {
	return c.srv.Capabilities()
}

func (c *Connection) AsStreamer() unitime.Streamer {
	return c.srv.AsStreamer()
}

func (c *Connection) AsAdjuster() unitime.Adjuster {
	return c.srv.AsAdjuster()
}

func (c *Connection) AsHistorian() unitime.Historian {
	return c.srv.AsHistorian()
}

func (c *Connection) Close() error { return nil }

// Server returns the underlying server for advanced use cases.
func (c *Connection) Server() *server.Server {
	return c.srv
}
