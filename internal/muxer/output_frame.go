package muxer

// OutputFrame is the scratch record a StreamState hands to its active
// filter chain at the start of each frame (spec.md §3). CC is a
// non-owning reference to the stream's continuity counter: the
// filter chain and packetizer read and advance it, but StreamState
// owns its lifetime (spec.md §9).
type OutputFrame struct {
	PID  uint16
	SID  uint16
	PTS  int64
	DTS  int64
	Key  bool
	// OriginalSize is the frame's size in the source file, used by
	// simulated writes that never see the actual bytes.
	OriginalSize int64
	// LastStreamFrame is true when this is the final frame this stream
	// will ever emit (spec.md invariant 4). SimulateGetIFrames also sets
	// it on a stream's last frame before a segment boundary.
	LastStreamFrame bool
	// CC is the stream's continuity counter, shared by reference so the
	// packetizer can advance it without StreamState mediating every call.
	CC *ContinuityCounter
}
