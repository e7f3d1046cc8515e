package types

// HandshakeRequest is sent by a consumer on every connection, before
// any other call.
type HandshakeRequest struct {
	// EpochYear is the epoch convention the consumer expects: day
	// zero is midnight on 1 January of this year, UTC. 0 = accept
	// whatever epoch the timebase natively uses.
	EpochYear int32 `cramberry:"1"`
}

// HandshakeResponse is the timebase's reply, reporting its epoch,
// its current time, and its capabilities.
type HandshakeResponse struct {
	// EpochYear the timebase serves. When the request named a
	// different epoch the handshake fails instead; a timebase never
	// silently serves times against an epoch the consumer did not
	// ask for.
	EpochYear int32 `cramberry:"1"`
	// Current is the timebase's reading at handshake time.
	Current Mark `cramberry:"2"`
	// Capabilities this timebase supports. Drives which optional
	// interfaces the connection exposes.
	Capabilities Capabilities `cramberry:"3"`
}
