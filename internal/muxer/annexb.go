package muxer

import "github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"

const startCodeLen = 4

// AnnexBFilter converts AVCC length-prefixed H.264 frames into Annex-B
// start-code-delimited form, prepending the parameter sets ahead of
// every keyframe (spec.md §4.1.2: "MP4 to Annex-B converter"). It wraps
// the shared TS packetizer in the video chain.
//
// Grounded on the teacher's dataToAccessUnit (ts_muxer.go), which
// parses both AVCC and Annex-B input via mediacommon's h264.AVCC and
// h264.AnnexB types, and on VideoParamHelper's practice of prepending
// SPS/PPS ahead of every keyframe.
type AnnexBFilter struct {
	next          Filter
	nalLengthSize int
	paramSets     [][]byte
	paramSetsSize int64

	cur    *OutputFrame
	curBuf []byte
}

// NewAnnexBFilter parses extraData (Annex-B framed SPS/PPS) and
// constructs the conversion filter wrapping next, normally the shared
// TS packetizer.
func NewAnnexBFilter(next Filter, extraData []byte, nalLengthSize int) (*AnnexBFilter, error) {
	if nalLengthSize <= 0 {
		nalLengthSize = 4
	}

	var paramSets [][]byte
	if len(extraData) > 0 {
		var au h264.AnnexB
		if err := au.Unmarshal(extraData); err != nil {
			return nil, ErrBadData
		}
		paramSets = au
	}

	var size int64
	for _, ps := range paramSets {
		size += int64(startCodeLen + len(ps))
	}

	return &AnnexBFilter{
		next:          next,
		nalLengthSize: nalLengthSize,
		paramSets:     paramSets,
		paramSetsSize: size,
	}, nil
}

// StartFrame resets the per-frame accumulation buffer; the AVCC bytes
// are only parsed into NAL units once the whole frame has arrived,
// since mediacommon needs the complete length-prefixed buffer.
func (f *AnnexBFilter) StartFrame(of *OutputFrame) error {
	f.cur = of
	f.curBuf = f.curBuf[:0]
	return f.next.StartFrame(of)
}

// Write appends AVCC bytes to the accumulation buffer.
func (f *AnnexBFilter) Write(p []byte) error {
	f.curBuf = append(f.curBuf, p...)
	return nil
}

// FlushFrame parses the accumulated AVCC frame into NAL units,
// prepends the parameter sets ahead of keyframes, and forwards each
// NAL unit start-code-delimited to the packetizer.
func (f *AnnexBFilter) FlushFrame() error {
	var au h264.AVCC
	nals := [][]byte{f.curBuf}
	if len(f.curBuf) > 0 {
		if err := au.Unmarshal(f.curBuf); err == nil && len(au) > 0 {
			nals = au
		}
	}

	if f.cur != nil && f.cur.Key {
		for _, ps := range f.paramSets {
			if err := f.writeNAL(ps); err != nil {
				return err
			}
		}
	}

	for _, nal := range nals {
		if err := f.writeNAL(nal); err != nil {
			return err
		}
	}

	return f.next.FlushFrame()
}

func (f *AnnexBFilter) writeNAL(nal []byte) error {
	if err := f.next.Write([]byte{0x00, 0x00, 0x00, 0x01}); err != nil {
		return err
	}
	return f.next.Write(nal)
}

// SimulatedWrite assumes exactly one NAL unit per frame (true for
// access-unit-delimited sources): the AVCC length prefix (nalLengthSize
// bytes) is replaced one-for-one by a 4-byte start code, and the
// parameter sets are added ahead of every keyframe.
func (f *AnnexBFilter) SimulatedWrite(of *OutputFrame) {
	cp := *of
	cp.OriginalSize += int64(startCodeLen - f.nalLengthSize)
	if of.Key {
		cp.OriginalSize += f.paramSetsSize
	}
	f.next.SimulatedWrite(&cp)
}

// SimulationSupported reports the wrapped filter's support.
func (f *AnnexBFilter) SimulationSupported() bool {
	return f.next.SimulationSupported()
}

var _ Filter = (*AnnexBFilter)(nil)
