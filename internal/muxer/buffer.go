package muxer

// Buffer accumulates ADTS-framed AAC access units into a single PES
// payload until the target size is reached, then hands the whole
// payload to the packetizer in one shot (spec.md §4.1, §4.5). It sits
// between the ADTS emitter and the packetizer in the audio chain.
//
// No corpus example accumulates PES payload this way before handing it
// to a packetizer (the teacher's ts_muxer.go writes one AAC access unit
// straight through to mediacommon per call); this queue is a direct,
// literal implementation of spec.md's Buffer contract rather than an
// adaptation of corpus code.
type Buffer struct {
	next       Filter
	targetSize int

	payload []byte
	pending *OutputFrame

	simSize    int64
	simPending *OutputFrame
}

// NewBuffer constructs a Buffer filter with the given target PES
// payload size (spec.md default: 2760 bytes) wrapping next, which is
// normally the shared TS packetizer.
func NewBuffer(next Filter, targetSize int) *Buffer {
	return &Buffer{next: next, targetSize: targetSize}
}

// StartFrame records the oldest pending frame's metadata the first
// time it is called after a flush; bytes are not forwarded until
// FlushFrame decides the accumulation is ready.
func (b *Buffer) StartFrame(of *OutputFrame) error {
	if b.pending == nil {
		cp := *of
		b.pending = &cp
	}
	return nil
}

// Write appends the frame's bytes to the in-progress accumulation.
func (b *Buffer) Write(p []byte) error {
	b.payload = append(b.payload, p...)
	return nil
}

// FlushFrame ends the current access unit's contribution. If the
// accumulation has reached the target size, it is handed to the
// packetizer; otherwise it waits for the next access unit or a
// ForceFlush.
func (b *Buffer) FlushFrame() error {
	if len(b.payload) >= b.targetSize {
		return b.emit()
	}
	return nil
}

// ForceFlush emits any pending payload regardless of target size
// (spec.md §4.4 delayed-buffer flush, §4.2 end-of-stream drain).
func (b *Buffer) ForceFlush() error {
	return b.emit()
}

func (b *Buffer) emit() error {
	if b.pending == nil {
		return nil
	}
	of := b.pending
	if err := b.next.StartFrame(of); err != nil {
		return err
	}
	if err := b.next.Write(b.payload); err != nil {
		return err
	}
	if err := b.next.FlushFrame(); err != nil {
		return err
	}
	b.payload = b.payload[:0]
	b.pending = nil
	return nil
}

// BufferDTS returns the DTS of the oldest frame currently buffered.
func (b *Buffer) BufferDTS() (int64, bool) {
	if b.pending == nil {
		return 0, false
	}
	return b.pending.DTS, true
}

// SimulatedWrite mirrors Write+FlushFrame's threshold logic against the
// simulated byte counter only.
func (b *Buffer) SimulatedWrite(of *OutputFrame) {
	if b.simPending == nil {
		cp := *of
		b.simPending = &cp
	}
	b.simSize += of.OriginalSize

	if b.simSize >= int64(b.targetSize) {
		b.simulatedEmit()
	}
}

// SimulatedForceFlush mirrors ForceFlush against the simulated counter.
func (b *Buffer) SimulatedForceFlush() {
	b.simulatedEmit()
}

func (b *Buffer) simulatedEmit() {
	if b.simPending == nil {
		return
	}
	cp := *b.simPending
	cp.OriginalSize = b.simSize
	b.next.SimulatedWrite(&cp)
	b.simSize = 0
	b.simPending = nil
}

// SimulationSupported reports whether the underlying packetizer
// supports simulation.
func (b *Buffer) SimulationSupported() bool {
	return b.next.SimulationSupported()
}

var _ BufferFilter = (*Buffer)(nil)
