package muxer

import (
	"encoding/binary"
)

// PID/table constants for the PSI tables the packetizer emits itself.
const (
	patPID = 0x0000
	pmtPID = 0x1000

	tableIDPAT = 0x00
	tableIDPMT = 0x02

	firstStreamPID = 0x0100

	streamIDVideo = 0xE0
	streamIDAudio = 0xC0

	streamTypeH264 = 0x1B
	streamTypeAAC  = 0x0F
)

type psTrack struct {
	pid        uint16
	sid        byte
	streamType byte
	isVideo    bool
}

type pesState struct {
	pid     uint16
	sid     byte
	dts     int64
	key     bool
	isVideo bool
	cc      *ContinuityCounter
	payload []byte
}

// Packetizer is the shared TS packetizer sink both filter chains feed
// into (spec.md §2, §6): the only collaborator the spec calls out as
// "out of scope, assume correct" but still required for the simulated
// and real paths to agree on byte counts. No corpus example ships a
// packetizer whose simulated and real paths must stay byte-identical,
// so this is a fresh implementation of the PAT/PMT/PES/TS framing,
// grounded on aminofox-zenlive's TSWriter for wire layout and on
// Azunyan1111's MPEGTSMuxer for the same PCR/adaptation-field
// conventions.
type Packetizer struct {
	write func([]byte) error

	tracks  []*psTrack
	pcrPID  uint16
	nextPID uint16

	patCC ContinuityCounter
	pmtCC ContinuityCounter

	cur *pesState

	simOffset int64
}

// NewPacketizer constructs a packetizer that emits finished TS packets
// to write.
func NewPacketizer(write func([]byte) error) *Packetizer {
	return &Packetizer{
		write:   write,
		nextPID: firstStreamPID,
	}
}

// AddStream allocates a PID (and PES stream ID) for a new elementary
// stream. The first video stream added becomes the PCR carrier; if no
// video stream is ever added, FinalizeStreams falls back to the first
// stream of any type.
func (p *Packetizer) AddStream(mt MediaType) (pid uint16, sid uint16) {
	pid = p.nextPID
	p.nextPID++

	t := &psTrack{pid: pid, isVideo: mt == MediaTypeVideo}
	if t.isVideo {
		t.sid = streamIDVideo
		t.streamType = streamTypeH264
		if p.pcrPID == 0 {
			p.pcrPID = pid
		}
	} else {
		t.sid = streamIDAudio
		t.streamType = streamTypeAAC
	}

	p.tracks = append(p.tracks, t)

	return pid, uint16(t.sid)
}

// FinalizeStreams emits the PAT and PMT sections describing every
// stream added so far (spec.md §4.1: called once, after every track's
// filter chain has been constructed).
func (p *Packetizer) FinalizeStreams() error {
	if p.pcrPID == 0 && len(p.tracks) > 0 {
		p.pcrPID = p.tracks[0].pid
	}

	if err := p.emitSection(patPID, &p.patCC, p.buildPAT()); err != nil {
		return err
	}
	return p.emitSection(pmtPID, &p.pmtCC, p.buildPMT())
}

func (p *Packetizer) buildPAT() []byte {
	section := make([]byte, 0, 13)
	section = append(section, tableIDPAT)
	section = appendU16(section, 0xB000|13)
	section = appendU16(section, 0x0001) // transport stream id
	section = append(section, 0xC1, 0x00, 0x00)
	section = appendU16(section, 0x0001)    // program number
	section = appendU16(section, 0xE000|pmtPID)
	crc := crc32MPEG2(section)
	section = appendU32(section, crc)
	return withPointerField(section)
}

func (p *Packetizer) buildPMT() []byte {
	esInfoLen := 5 * len(p.tracks)
	sectionLen := 13 + esInfoLen

	section := make([]byte, 0, 3+sectionLen)
	section = append(section, tableIDPMT)
	section = appendU16(section, 0xB000|uint16(sectionLen))
	section = appendU16(section, 0x0001) // program number
	section = append(section, 0xC1, 0x00, 0x00)
	section = appendU16(section, 0xE000|p.pcrPID)
	section = appendU16(section, 0xF000) // program info length = 0

	for _, t := range p.tracks {
		section = append(section, t.streamType)
		section = appendU16(section, 0xE000|t.pid)
		section = appendU16(section, 0xF000) // ES info length = 0
	}

	crc := crc32MPEG2(section)
	section = appendU32(section, crc)
	return withPointerField(section)
}

func withPointerField(section []byte) []byte {
	out := make([]byte, 0, len(section)+1)
	out = append(out, 0x00)
	return append(out, section...)
}

func appendU16(b []byte, v uint16) []byte {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendU32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

func (p *Packetizer) emitSection(pid uint16, cc *ContinuityCounter, section []byte) error {
	packet := make([]byte, TSPacketSize)
	packet[0] = 0x47
	binary.BigEndian.PutUint16(packet[1:3], 0x4000|pid)
	packet[3] = 0x10 | (cc.Next() & 0x0F)
	n := copy(packet[4:], section)
	for i := 4 + n; i < TSPacketSize; i++ {
		packet[i] = 0xFF
	}
	return p.write(packet)
}

// StartFrame begins accumulating a new frame's payload bytes.
func (p *Packetizer) StartFrame(of *OutputFrame) error {
	t := p.trackFor(of.PID)
	p.cur = &pesState{
		pid:     of.PID,
		sid:     t.sid,
		dts:     of.DTS,
		key:     of.Key,
		isVideo: t.isVideo,
		cc:      of.CC,
	}
	return nil
}

// Write appends to the frame's in-progress PES payload.
func (p *Packetizer) Write(b []byte) error {
	if p.cur == nil {
		return ErrNotInitialized
	}
	p.cur.payload = append(p.cur.payload, b...)
	return nil
}

// FlushFrame builds the PES header for the accumulated payload and
// emits it as one or more 188-byte TS packets.
func (p *Packetizer) FlushFrame() error {
	if p.cur == nil {
		return nil
	}
	cur := p.cur
	p.cur = nil

	header := buildPESHeader(cur.sid, cur.dts, cur.isVideo, len(cur.payload))
	full := append(header, cur.payload...)
	withPCR := cur.isVideo && cur.key

	return p.emitTSPackets(cur.pid, cur.cc, full, withPCR, cur.dts)
}

func (p *Packetizer) emitTSPackets(pid uint16, cc *ContinuityCounter, data []byte, withPCR bool, pcrClock int64) error {
	offset := 0
	first := true

	for offset < len(data) || first {
		packet := make([]byte, TSPacketSize)
		packet[0] = 0x47

		pusi := uint16(0)
		if first {
			pusi = 0x4000
		}
		binary.BigEndian.PutUint16(packet[1:3], pusi|(pid&0x1FFF))

		pos := 4
		hasPCR := first && withPCR
		afc := byte(0x10) // payload only
		if hasPCR {
			afc = 0x30 // adaptation field + payload
		}
		packet[3] = afc | (cc.Next() & 0x0F)

		if hasPCR {
			pos = writeAdaptationFieldPCR(packet, pcrClock)
		}

		remaining := len(data) - offset
		space := TSPacketSize - pos
		if remaining <= 0 {
			for i := pos; i < TSPacketSize; i++ {
				packet[i] = 0xFF
			}
		} else if remaining <= space {
			copy(packet[pos:], data[offset:])
			for i := pos + remaining; i < TSPacketSize; i++ {
				packet[i] = 0xFF
			}
			offset += remaining
		} else {
			copy(packet[pos:], data[offset:offset+space])
			offset += space
		}

		if err := p.write(packet); err != nil {
			return err
		}
		first = false
	}

	return nil
}

func writeAdaptationFieldPCR(packet []byte, clock int64) int {
	pos := 4
	packet[pos] = 7 // adaptation_field_length
	pos++
	packet[pos] = 0x10 // PCR flag
	pos++

	pcrBase := uint64(clock)
	pcrExt := uint16(0)
	packet[pos] = byte(pcrBase >> 25)
	packet[pos+1] = byte(pcrBase >> 17)
	packet[pos+2] = byte(pcrBase >> 9)
	packet[pos+3] = byte(pcrBase >> 1)
	packet[pos+4] = byte(((pcrBase & 0x01) << 7) | 0x7E | byte((pcrExt>>8)&0x01))
	packet[pos+5] = byte(pcrExt)
	pos += 6

	return pos
}

func pesOptionalFieldsLen(isVideo bool) int {
	if isVideo {
		return 10 // PTS + DTS
	}
	return 5 // PTS only
}

func buildPESHeader(sid byte, dts int64, isVideo bool, payloadLen int) []byte {
	optLen := pesOptionalFieldsLen(isVideo)
	header := make([]byte, 0, 9+optLen)
	header = append(header, 0x00, 0x00, 0x01, sid)

	if isVideo {
		header = appendU16(header, 0) // unbounded length
	} else {
		header = appendU16(header, uint16(payloadLen+3+optLen))
	}

	header = append(header, 0x80) // marker bits, no scrambling/priority/alignment

	ptsFlags := byte(0x80)
	if isVideo {
		ptsFlags = 0xC0
	}
	header = append(header, ptsFlags, byte(optLen))

	header = appendPTSDTS(header, dts, ptsFlags>>6)
	if isVideo {
		header = appendPTSDTS(header, dts, 0x01)
	}

	return header
}

func appendPTSDTS(buf []byte, ts int64, marker byte) []byte {
	v := uint64(ts)
	var tmp [5]byte
	tmp[0] = (marker << 4) | byte((v>>29)&0x0E) | 0x01
	binary.BigEndian.PutUint16(tmp[1:3], uint16((v>>14)&0xFFFE)|0x01)
	binary.BigEndian.PutUint16(tmp[3:5], uint16((v<<1)&0xFFFE)|0x01)
	return append(buf, tmp[:]...)
}

func (p *Packetizer) trackFor(pid uint16) *psTrack {
	for _, t := range p.tracks {
		if t.pid == pid {
			return t
		}
	}
	return &psTrack{pid: pid, sid: streamIDAudio}
}

func packetCountForStream(dataLen int, withPCR bool) int {
	firstCap := TSPacketSize - 4
	if withPCR {
		firstCap -= 8
	}
	if dataLen <= firstCap {
		return 1
	}
	remaining := dataLen - firstCap
	capPerPacket := TSPacketSize - 4
	return 1 + (remaining+capPerPacket-1)/capPerPacket
}

// SimulatedWrite computes the TS packet count this frame would
// produce, without performing any I/O, and adds it to the simulated
// byte offset.
func (p *Packetizer) SimulatedWrite(of *OutputFrame) {
	t := p.trackFor(of.PID)
	optLen := pesOptionalFieldsLen(t.isVideo)
	total := 9 + optLen + int(of.OriginalSize)
	withPCR := t.isVideo && of.Key

	n := packetCountForStream(total, withPCR)
	p.simOffset += int64(n) * TSPacketSize
}

// Flush is part of the packetizer contract (spec.md §6). Every PES
// this packetizer emits is already padded to a whole number of TS
// packets by FlushFrame, so there is no partial packet left behind to
// finalize; this exists for contract completeness and so callers don't
// need to special-case "nothing to flush".
func (p *Packetizer) Flush() error { return nil }

// SimulationSupported is always true: the packetizer is the one
// component the simulated path cannot do without.
func (p *Packetizer) SimulationSupported() bool { return true }

// SimulatedOffset returns the running simulated byte offset.
func (p *Packetizer) SimulatedOffset() int64 { return p.simOffset }

// ResetSimulation zeroes the simulated byte offset, for
// SimulationReset (spec.md §4.8).
func (p *Packetizer) ResetSimulation() { p.simOffset = 0 }

// StartSimulatedSegment begins a new simulated segment: the same
// effect as ResetSimulation, named to match the packetizer contract's
// simulated_start_segment (spec.md §6).
func (p *Packetizer) StartSimulatedSegment() { p.simOffset = 0 }

var _ Filter = (*Packetizer)(nil)
