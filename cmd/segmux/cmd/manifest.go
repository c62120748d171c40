package cmd

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jmylchreest/segmux/internal/muxer"
)

// trackManifest is the on-disk JSON shape of one track's metadata, the
// output the out-of-scope upstream MP4 parser would hand the muxer.
type trackManifest struct {
	MediaType            string              `json:"media_type"` // "video" | "audio"
	TrackIndex           int                 `json:"track_index"`
	SourceTimescale      int64               `json:"source_timescale"`
	FirstFrameTimeOffset int64               `json:"first_frame_time_offset"`
	ExtraDataBase64      string              `json:"extra_data_base64"`
	NALLengthSize        int                 `json:"nal_length_size"`
	Frames               []muxer.FrameDescriptor `json:"frames"`
	FrameOffsets         []int64             `json:"frame_offsets"`
}

type segmentManifest struct {
	SegmentIndex    int             `json:"segment_index"`
	WindowStartMS   int64           `json:"window_start_ms"`
	WindowEndMS     int64           `json:"window_end_ms"`
	SourceFile      string          `json:"source_file"`
	Tracks          []trackManifest `json:"tracks"`
}

func loadManifest(path string) (*segmentManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m segmentManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

func (m *segmentManifest) trackInputs() ([]muxer.TrackInput, error) {
	inputs := make([]muxer.TrackInput, 0, len(m.Tracks))
	for _, t := range m.Tracks {
		var mt muxer.MediaType
		switch t.MediaType {
		case "video":
			mt = muxer.MediaTypeVideo
		case "audio":
			mt = muxer.MediaTypeAudio
		default:
			return nil, fmt.Errorf("track %d: unknown media_type %q", t.TrackIndex, t.MediaType)
		}

		extraData, err := base64.StdEncoding.DecodeString(t.ExtraDataBase64)
		if err != nil {
			return nil, fmt.Errorf("track %d: decoding extra_data_base64: %w", t.TrackIndex, err)
		}

		inputs = append(inputs, muxer.TrackInput{
			MediaType:            mt,
			TrackIndex:           t.TrackIndex,
			SourceTimescale:      t.SourceTimescale,
			Frames:               t.Frames,
			FrameOffsets:         t.FrameOffsets,
			FirstFrameTimeOffset: t.FirstFrameTimeOffset,
			ExtraData:            extraData,
			NALLengthSize:        t.NALLengthSize,
		})
	}
	return inputs, nil
}
