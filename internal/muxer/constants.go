// Package muxer interleaves pre-demuxed video and audio frames into a
// single MPEG-TS segment, byte-exact and reproducible from metadata
// alone, with auxiliary dry-run modes for segment-size simulation and
// I-frame position discovery.
package muxer

// Protocol constants shared by every component in the package.
const (
	// TSPacketSize is the fixed MPEG-TS packet length.
	TSPacketSize = 188

	// OutputTimescale is the MPEG-TS convention clock rate, in ticks per
	// second. All DTS/PTS values leaving the muxer are on this timescale.
	OutputTimescale = 90000

	// DefaultPESPayloadSize is the target audio PES payload size used to
	// decide when the audio Buffer filter has accumulated enough data to
	// flush a PES packet (spec.md §4.1: "(header_freq − 1) × 184 + 170").
	DefaultPESPayloadSize = 2760

	// MediaTypeVideo and MediaTypeAudio are the two supported track
	// media types. Video always sorts before audio (spec.md §4.1).
	MediaTypeVideo MediaType = 0
	MediaTypeAudio MediaType = 1
)

// HLSDelay is the project-wide inter-stream buffering delay budget, in
// 90kHz ticks. Half of it is the threshold at which a buffered audio
// PES is force-flushed ahead of a video frame that has jumped far
// enough forward in DTS (spec.md §4.4).
//
// Not a const: exposed as a var so callers embedding this engine in a
// larger pipeline can tune it to match a shared policy value, the way
// the packetizer and the muxer core are required to agree on it
// (spec.md §6).
var HLSDelay int64 = 63000 // 700ms at 90kHz, matching common HLS muxer defaults

// MediaType distinguishes the two track kinds the muxer understands.
type MediaType int

// String implements fmt.Stringer.
func (m MediaType) String() string {
	switch m {
	case MediaTypeVideo:
		return "video"
	case MediaTypeAudio:
		return "audio"
	default:
		return "unknown"
	}
}
