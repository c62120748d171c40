package muxer

import "github.com/bluenviron/mediacommon/v2/pkg/codecs/mpeg4audio"

const adtsHeaderLen = 7

// adtsSampleRates is the fixed ADTS sampling-frequency table (ISO/IEC
// 13818-7 table 35). Index 15 ("explicit") is never produced here.
var adtsSampleRates = [...]int{
	96000, 88200, 64000, 48000, 44100, 32000, 24000, 22050,
	16000, 12000, 11025, 8000, 7350,
}

func adtsSampleRateIndex(rate int) int {
	for i, r := range adtsSampleRates {
		if r == rate {
			return i
		}
	}
	return 4 // 44100, a reasonable default for an unrecognized rate
}

// ADTSFilter prepends an ADTS header to every AAC access unit, then
// passes the raw payload through unchanged (spec.md §4.1.3: "ADTS
// emitter"). It wraps a Buffer filter in the audio chain.
//
// Grounded on the teacher's ts_muxer.go, which builds
// mpeg4audio.AudioSpecificConfig from extradata and emits AAC access
// units per frame; ADTS framing itself is spelled out here because the
// teacher hands ADTS framing off to mediamtx's mpegts writer, which is
// out of scope for this packetizer.
type ADTSFilter struct {
	next Filter

	profile       int
	sampleRateIdx int
	channelConfig int

	cur *OutputFrame
}

// NewADTSFilter parses an AudioSpecificConfig from extradata and
// constructs the ADTS framing filter wrapping next.
func NewADTSFilter(next Filter, extraData []byte) (*ADTSFilter, error) {
	var asc mpeg4audio.AudioSpecificConfig
	if err := asc.Unmarshal(extraData); err != nil {
		return nil, ErrBadData
	}

	profile := 1 // AAC-LC
	if asc.Type == mpeg4audio.ObjectTypeAACLC {
		profile = int(asc.Type) - 1
	}

	return &ADTSFilter{
		next:          next,
		profile:       profile,
		sampleRateIdx: adtsSampleRateIndex(asc.SampleRate),
		channelConfig: asc.ChannelCount,
	}, nil
}

// StartFrame computes and forwards this access unit's ADTS header
// immediately, since its total length is known from of.OriginalSize
// without needing to see the payload bytes.
func (f *ADTSFilter) StartFrame(of *OutputFrame) error {
	f.cur = of
	header := f.buildHeader(int(of.OriginalSize))
	if err := f.next.StartFrame(of); err != nil {
		return err
	}
	return f.next.Write(header)
}

func (f *ADTSFilter) buildHeader(payloadLen int) []byte {
	frameLen := adtsHeaderLen + payloadLen
	h := make([]byte, adtsHeaderLen)

	h[0] = 0xFF
	h[1] = 0xF1 // MPEG-4, no CRC
	h[2] = byte(f.profile<<6) | byte(f.sampleRateIdx<<2) | byte((f.channelConfig>>2)&0x1)
	h[3] = byte((f.channelConfig&0x3)<<6) | byte((frameLen>>11)&0x3)
	h[4] = byte((frameLen >> 3) & 0xFF)
	h[5] = byte((frameLen&0x7)<<5) | 0x1F
	h[6] = 0xFC

	return h
}

// Write forwards raw AAC payload bytes unchanged.
func (f *ADTSFilter) Write(p []byte) error {
	return f.next.Write(p)
}

// FlushFrame forwards to the wrapped Buffer filter.
func (f *ADTSFilter) FlushFrame() error {
	return f.next.FlushFrame()
}

// SimulatedWrite accounts for the header this frame would add, then
// delegates to the wrapped filter.
func (f *ADTSFilter) SimulatedWrite(of *OutputFrame) {
	cp := *of
	cp.OriginalSize += adtsHeaderLen
	f.next.SimulatedWrite(&cp)
}

// SimulationSupported reports the wrapped filter's support.
func (f *ADTSFilter) SimulationSupported() bool {
	return f.next.SimulationSupported()
}

var _ Filter = (*ADTSFilter)(nil)
