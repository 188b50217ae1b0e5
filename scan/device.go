// Package scan drives the food token scan pipeline: camera frames in,
// redemption transactions out. The camera itself sits behind the Device
// interface; stations feed decoded frames through a PushDevice.
package scan

import (
	"context"
	"fmt"
)

// Facing is the camera orientation reported by the device enumeration.
type Facing int

const (
	FacingUnknown Facing = iota
	FacingUser
	FacingEnvironment
)

type Camera struct {
	ID     string
	Label  string
	Facing Facing
}

// Constraint selects a camera. A concrete CameraID wins; otherwise the
// device picks any camera matching Facing.
type Constraint struct {
	CameraID string
	Facing   Facing
}

// Frame is one captured camera frame, opaque to the pipeline.
type Frame []byte

// FrameSource is the open camera handle. Next blocks until a frame is
// available or ctx is done. Close must be safe to call more than once.
type FrameSource interface {
	Next(ctx context.Context) (Frame, error)
	Close() error
}

// Device enumerates cameras and opens a frame source.
type Device interface {
	Cameras(ctx context.Context) ([]Camera, error)
	Open(ctx context.Context, c Constraint) (FrameSource, error)
}

// Decoder extracts QR text from a frame. ok is false when the frame has
// no readable code; that is the normal case and not an error.
type Decoder interface {
	Decode(f Frame) (text string, ok bool)
}

type DeviceErrorKind int

const (
	DeviceNotFound DeviceErrorKind = iota
	DevicePermissionDenied
	DeviceBusy
	DeviceInsecureContext
)

// DeviceError carries a kind so the dashboard can show a distinct message
// per failure mode instead of a generic one.
type DeviceError struct {
	Kind DeviceErrorKind
	Err  error
}

func (e *DeviceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message(), e.Err)
	}
	return e.Message()
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// Message is the operator-facing text for this failure mode.
func (e *DeviceError) Message() string {
	switch e.Kind {
	case DevicePermissionDenied:
		return "Camera permission denied. Please allow camera access in your browser settings."
	case DeviceBusy:
		return "Camera is in use by another application. Please close it and try again."
	case DeviceInsecureContext:
		return "Camera requires HTTPS. Please use HTTPS or localhost."
	default:
		return "No camera found on this device."
	}
}
