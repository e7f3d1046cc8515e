package types

import "strings"

// Capabilities is a bitfield declaring which optional interfaces the
// timebase supports.
type Capabilities uint8

const (
	CapStream  Capabilities = 1 << iota // 0b001
	CapAdjust                           // 0b010
	CapHistory                          // 0b100
)

// Has returns true if all bits in cap are set.
func (c Capabilities) Has(cap Capabilities) bool {
	return c&cap == cap
}

// String returns a human-readable representation.
func (c Capabilities) String() string {
	var caps []string
	if c.Has(CapStream) {
		caps = append(caps, "Stream")
	}
	if c.Has(CapAdjust) {
		caps = append(caps, "Adjust")
	}
	if c.Has(CapHistory) {
		caps = append(caps, "History")
	}
	if len(caps) == 0 {
		return "none"
	}
	return strings.Join(caps, "|")
}
