package unitimegrpc

import "github.com/blockberries/unitime/types"

// Transport-specific wrapper types for RPC methods whose interface
// signatures don't map to a single request/response struct.
// These are used only for gRPC serialization boundaries.

// NowRequest is the (empty) request for Timebase.Now.
type NowRequest struct{}

// BetweenResponse wraps the return value of Historian.Between.
type BetweenResponse struct {
	Marks []types.Mark `cramberry:"1"`
}
