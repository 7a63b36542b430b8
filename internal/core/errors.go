// Package core defines sentinel errors.
package core

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers classify with errors.Is.
var (
	// Decoding outcomes
	ErrMalformedFrame   = errors.New("sniffer: malformed frame")
	ErrUnsupportedLayer = errors.New("sniffer: unsupported layer")

	// Output errors
	ErrRenderFailure = errors.New("sniffer: render failure")

	// Collaborator errors
	ErrInvalidArgument = errors.New("sniffer: invalid argument")
	ErrCapture         = errors.New("sniffer: capture failed")
	ErrLinkType        = errors.New("sniffer: unsupported link type")
)

// MalformedError describes where the decode chain ran out of bytes.
type MalformedError struct {
	Layer  LayerKind // layer that could not be read
	Offset int       // cursor at which the read was attempted
	Need   int       // bytes required at Offset
	Have   int       // captured bytes in the frame
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%v: %s needs %d bytes at offset %d, frame has %d",
		ErrMalformedFrame, e.Layer, e.Need, e.Offset, e.Have)
}

// Unwrap lets errors.Is match ErrMalformedFrame.
func (e *MalformedError) Unwrap() error {
	return ErrMalformedFrame
}
