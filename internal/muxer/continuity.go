package muxer

// ContinuityCounter is the 4-bit per-PID counter the MPEG-TS packetizer
// increments on every packet it emits for a given PID. It lives on the
// owning StreamState (spec.md §3, §9) rather than inside the
// packetizer, because OutputFrame carries only a non-owning reference
// to it — the same back-pointer shape used by the corpus's hand-rolled
// packetizers (per-PID counters keyed in a map in
// aminofox-zenlive's TSWriter, a single packetCount field in
// Azunyan1111's MPEGTSMuxer).
type ContinuityCounter struct {
	value byte
}

// Next returns the current counter value and advances it modulo 16.
func (c *ContinuityCounter) Next() byte {
	v := c.value & 0x0F
	c.value = (c.value + 1) & 0x0F
	return v
}

// Reset sets the counter back to zero (spec.md §4.8 simulation_reset).
func (c *ContinuityCounter) Reset() {
	c.value = 0
}
