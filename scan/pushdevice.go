package scan

import (
	"context"
	"errors"
	"sync"
)

// PushDevice is a Device fed over the network: the station browser does
// the camera work and pushes decoded text here as frames. It reports a
// single environment-facing virtual camera.
type PushDevice struct {
	frames chan Frame

	closeOnce sync.Once
	closed    chan struct{}
}

func NewPushDevice() *PushDevice {
	return &PushDevice{
		frames: make(chan Frame, 8),
		closed: make(chan struct{}),
	}
}

func (d *PushDevice) Cameras(ctx context.Context) ([]Camera, error) {
	return []Camera{{ID: "station-0", Label: "station camera", Facing: FacingEnvironment}}, nil
}

func (d *PushDevice) Open(ctx context.Context, c Constraint) (FrameSource, error) {
	return &pushSource{device: d}, nil
}

// Push queues one decoded frame. Frames beyond the buffer are dropped,
// the same way a busy camera loop drops frames.
func (d *PushDevice) Push(text string) bool {
	select {
	case <-d.closed:
		return false
	default:
	}

	select {
	case d.frames <- Frame(text):
		return true
	default:
		return false
	}
}

type pushSource struct {
	device *PushDevice
}

func (s *pushSource) Next(ctx context.Context) (Frame, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.device.closed:
		return nil, errors.New("frame source closed")
	case f := <-s.device.frames:
		return f, nil
	}
}

func (s *pushSource) Close() error {
	s.device.closeOnce.Do(func() {
		close(s.device.closed)
	})
	return nil
}

// TextDecoder passes pushed frames through as UTF-8 text. Stations send
// already-decoded QR contents, so there is nothing to extract.
type TextDecoder struct{}

func (TextDecoder) Decode(f Frame) (string, bool) {
	text := string(f)
	return text, text != ""
}
