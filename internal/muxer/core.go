package muxer

import (
	"fmt"
	"log/slog"
	"sort"
)

// Muxer is the Muxer Core (spec.md §2, §4): the single coordinator
// that interleaves every track's filter chain into one MPEG-TS
// segment via a shared packetizer.
//
// Grounded on the teacher's TSMuxer (ts_muxer.go), which plays the
// same coordinating role over mediacommon's codecs and a mutex-guarded
// field set; this Muxer replaces the mediacommon-backed wiring with
// the spec's own filter-chain/Stream-State model, since the teacher
// never implements suspendable, cache-driven emission or simulation.
type Muxer struct {
	cfg        Config
	log        *slog.Logger
	packetizer *Packetizer
	cache      Cache

	streams []*StreamState

	videoDurationMS int64
	simulationOK    bool

	// in-progress frame state (spec.md §3 "Muxer State")
	active       *StreamState
	activeFilter Filter
	frame        FrameDescriptor
	frameOffset  int64
	framePos     int64

	everStarted bool
}

// New allocates and initializes a Muxer for one segment (spec.md
// §4.1). tracks must already be built (parsed by the out-of-scope
// upstream MP4 parser); windowStartMS/windowEndMS bound the requested
// segment in milliseconds.
func New(cfg Config, segmentIndex int, tracks []TrackInput, cache Cache, write func([]byte) error, windowStartMS, windowEndMS int64) (*Muxer, error) {
	if write == nil {
		return nil, ErrNoTracks
	}

	m := &Muxer{
		cfg:          cfg,
		log:          cfg.logger(),
		packetizer:   NewPacketizer(write),
		cache:        cache,
		simulationOK: true,
	}

	streams := make([]*StreamState, 0, len(tracks))
	maxVideoDurationMS := int64(0)

	for _, t := range tracks {
		st, err := NewStreamState(t, 0, 0, m.cfg.DiskSliceOptions)
		if err != nil {
			return nil, fmt.Errorf("%w: allocating stream state: %v", ErrAllocFailed, err)
		}

		switch t.MediaType {
		case MediaTypeVideo:
			af, err := NewAnnexBFilter(m.packetizer, t.ExtraData, t.NALLengthSize)
			if err != nil {
				return nil, fmt.Errorf("%w: video filter chain: %v", ErrAllocFailed, err)
			}
			st.TopFilter = af
			if !af.SimulationSupported() {
				m.simulationOK = false
			}

			durMS := trackDurationMS(t)
			if durMS > maxVideoDurationMS {
				maxVideoDurationMS = durMS
			}

		case MediaTypeAudio:
			buf := NewBuffer(m.packetizer, DefaultPESPayloadSize)
			adts, err := NewADTSFilter(buf, t.ExtraData)
			if err != nil {
				return nil, fmt.Errorf("%w: audio filter chain: %v", ErrAllocFailed, err)
			}
			st.TopFilter = adts
			st.AudioBuffer = buf

		default:
			return nil, fmt.Errorf("%w: unknown media type %v", ErrAllocFailed, t.MediaType)
		}

		streams = append(streams, st)
	}

	sort.SliceStable(streams, func(i, j int) bool {
		if streams[i].MediaType != streams[j].MediaType {
			return streams[i].MediaType < streams[j].MediaType
		}
		return streams[i].TrackIndex < streams[j].TrackIndex
	})

	for _, st := range streams {
		pid, sid := m.packetizer.AddStream(st.MediaType)
		st.PID = pid
		st.SID = sid
	}

	if err := m.packetizer.FinalizeStreams(); err != nil {
		return nil, err
	}

	m.streams = streams

	videoDuration := maxVideoDurationMS
	if videoDuration > windowEndMS {
		videoDuration = windowEndMS
	}
	videoDuration -= windowStartMS
	if videoDuration < 0 {
		videoDuration = 0
	}
	m.videoDurationMS = videoDuration

	m.log.Debug("muxer initialized",
		"segment_index", segmentIndex,
		"track_count", len(streams),
		"video_duration_ms", m.videoDurationMS,
		"simulation_supported", m.simulationOK,
	)

	return m, nil
}

// SimulationSupported reports whether every video track's filter chain
// supports the simulated path.
func (m *Muxer) SimulationSupported() bool {
	return m.simulationOK
}

// VideoDurationMS returns the computed video_duration from Init.
func (m *Muxer) VideoDurationMS() int64 {
	return m.videoDurationMS
}

// StreamPIDs returns the PID assigned to every stream, in sorted
// (video-before-audio, then track_index) order, so an embedder can
// populate its read cache by PID without reaching into packetizer
// internals.
func (m *Muxer) StreamPIDs() []uint16 {
	pids := make([]uint16, len(m.streams))
	for i, st := range m.streams {
		pids[i] = st.PID
	}
	return pids
}

func trackDurationMS(t TrackInput) int64 {
	var total int64
	for _, fd := range t.Frames {
		total += fd.Duration
	}
	if t.SourceTimescale == 0 {
		return 0
	}
	return Rescale(total, t.SourceTimescale, 1000)
}
