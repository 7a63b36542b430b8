// Package core defines core data structures with zero external dependencies.
package core

import "time"

// RawFrame is a borrowed view of one captured frame. The decoder never keeps
// a reference to Data past the call that processes it.
type RawFrame struct {
	Data       []byte // Captured bytes
	CaptureLen int    // Captured length (caplen), may be less than WireLen
	WireLen    int    // Original on-wire frame length
	Seconds    int64  // Capture timestamp, epoch seconds
	Micros     int64  // Capture timestamp, microseconds within the second
}

// NewRawFrame builds a frame whose captured and on-wire lengths equal len(data).
func NewRawFrame(data []byte, ts time.Time) RawFrame {
	return RawFrame{
		Data:       data,
		CaptureLen: len(data),
		WireLen:    len(data),
		Seconds:    ts.Unix(),
		Micros:     int64(ts.Nanosecond() / 1000),
	}
}

// Bytes returns the readable window Data[:CaptureLen], clamped to len(Data).
func (r RawFrame) Bytes() []byte {
	n := r.CaptureLen
	if n < 0 {
		n = 0
	}
	if n > len(r.Data) {
		n = len(r.Data)
	}
	return r.Data[:n]
}

// DecodedFrame is the result of the L2-L4 decode chain.
type DecodedFrame struct {
	Raw    RawFrame
	Layers []Layer // Outermost first
	Err    error   // nil, or a *MalformedError when bytes ran out
}

// Malformed reports whether decoding stopped because the frame was too short.
func (f DecodedFrame) Malformed() bool {
	return f.Err != nil
}

// Layer returns the first layer of the given kind.
func (f DecodedFrame) Layer(kind LayerKind) (Layer, bool) {
	for _, l := range f.Layers {
		if l.Kind() == kind {
			return l, true
		}
	}
	return nil, false
}
