package scan

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"integraportal/foodtoken"
	"integraportal/qrtoken"

	"github.com/stretchr/testify/require"
)

type fakeRedeemer struct {
	mu    sync.Mutex
	calls []string
	err   error
	block chan struct{}
}

func (f *fakeRedeemer) Redeem(ctx context.Context, teamID, tokenID, operatorID string) (*foodtoken.RedemptionResult, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, tokenID)
	if f.err != nil {
		return nil, f.err
	}
	return &foodtoken.RedemptionResult{TotalTokens: 4, RedeemedThisScan: 4}, nil
}

func (f *fakeRedeemer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func payloadText(t *testing.T, tokenID string) string {
	t.Helper()
	raw, err := qrtoken.Encode(qrtoken.Payload{TeamID: "team1", TokenID: tokenID})
	require.NoError(t, err)
	return raw
}

func newTestSession(redeemer Redeemer, outcomes chan Outcome) *Session {
	cfg := Config{
		Device:         NewPushDevice(),
		Decoder:        TextDecoder{},
		Redeemer:       redeemer,
		OperatorID:     "op1",
		FrameInterval:  time.Millisecond,
		DebounceWindow: 5 * time.Second,
		ResumeDelay:    time.Millisecond,
	}
	if outcomes != nil {
		cfg.OnOutcome = func(o Outcome) { outcomes <- o }
	}
	return NewSession(cfg)
}

func TestSessionRedeemsPushedFrame(t *testing.T) {
	redeemer := &fakeRedeemer{}
	outcomes := make(chan Outcome, 8)
	device := NewPushDevice()

	session := NewSession(Config{
		Device:        device,
		Decoder:       TextDecoder{},
		Redeemer:      redeemer,
		OperatorID:    "op1",
		FrameInterval: time.Millisecond,
		ResumeDelay:   time.Millisecond,
		OnOutcome:     func(o Outcome) { outcomes <- o },
	})

	require.NoError(t, session.Start(context.Background()))
	defer session.Stop()

	require.True(t, device.Push(payloadText(t, "tok1")))

	select {
	case outcome := <-outcomes:
		require.NoError(t, outcome.Err)
		require.NotNil(t, outcome.Result)
		require.Equal(t, 4, outcome.Result.RedeemedThisScan)
		require.Equal(t, "Token(s) redeemed successfully", outcome.Message)
	case <-time.After(2 * time.Second):
		t.Fatal("no outcome within deadline")
	}

	require.Equal(t, []string{"tok1"}, redeemer.calls)
}

func TestSessionDebouncesSameToken(t *testing.T) {
	redeemer := &fakeRedeemer{}
	session := newTestSession(redeemer, nil)
	session.state = StateScanning

	raw := payloadText(t, "tok1")
	session.processDecode(context.Background(), raw)
	require.Equal(t, 1, redeemer.callCount())

	// Same still-visible code within the debounce window is ignored.
	session.resume()
	session.processDecode(context.Background(), raw)
	require.Equal(t, 1, redeemer.callCount())

	// A different token goes straight through.
	session.resume()
	session.processDecode(context.Background(), payloadText(t, "tok2"))
	require.Equal(t, 2, redeemer.callCount())
}

func TestSessionDebounceExpires(t *testing.T) {
	redeemer := &fakeRedeemer{}
	session := newTestSession(redeemer, nil)
	session.state = StateScanning

	raw := payloadText(t, "tok1")
	session.processDecode(context.Background(), raw)
	require.Equal(t, 1, redeemer.callCount())

	// Move the clock past the window instead of sleeping.
	base := time.Now().Add(6 * time.Second)
	session.now = func() time.Time { return base }

	session.resume()
	session.processDecode(context.Background(), raw)
	require.Equal(t, 2, redeemer.callCount())
}

func TestSessionFailedRedeemDoesNotDebounce(t *testing.T) {
	redeemer := &fakeRedeemer{err: foodtoken.ErrLimitExceeded}
	outcomes := make(chan Outcome, 8)
	session := newTestSession(redeemer, outcomes)
	session.state = StateScanning

	raw := payloadText(t, "tok1")
	session.processDecode(context.Background(), raw)
	session.processDecode(context.Background(), raw)

	// Both decodes reach the engine; only success arms the debounce.
	require.Equal(t, 2, redeemer.callCount())

	outcome := <-outcomes
	require.ErrorIs(t, outcome.Err, foodtoken.ErrLimitExceeded)
	require.Equal(t, "All tokens already redeemed for this QR", outcome.Message)
	// A failed scan resumes immediately.
	require.Equal(t, StateScanning, session.State())
}

func TestSessionDropsDecodeWhileInFlight(t *testing.T) {
	redeemer := &fakeRedeemer{block: make(chan struct{})}
	session := newTestSession(redeemer, nil)
	session.state = StateScanning

	done := make(chan struct{})
	go func() {
		session.processDecode(context.Background(), payloadText(t, "tok1"))
		close(done)
	}()

	require.Eventually(t, func() bool {
		session.mu.Lock()
		defer session.mu.Unlock()
		return session.inFlight
	}, time.Second, time.Millisecond)

	// This decode arrives mid-transaction and must be dropped, not queued.
	session.processDecode(context.Background(), payloadText(t, "tok2"))

	close(redeemer.block)
	<-done

	require.Equal(t, []string{"tok1"}, redeemer.calls)
}

func TestSessionReportsMalformedPayload(t *testing.T) {
	redeemer := &fakeRedeemer{}
	outcomes := make(chan Outcome, 8)
	session := newTestSession(redeemer, outcomes)
	session.state = StateScanning

	session.processDecode(context.Background(), "not json")

	outcome := <-outcomes
	require.ErrorIs(t, outcome.Err, qrtoken.ErrMalformed)
	require.Equal(t, "Invalid QR code", outcome.Message)
	require.Zero(t, redeemer.callCount())

	// Scanning continues after a bad decode.
	require.Equal(t, StateScanning, session.State())
}

func TestSessionPausesThenResumesAfterSuccess(t *testing.T) {
	redeemer := &fakeRedeemer{}
	session := newTestSession(redeemer, nil)
	session.cfg.ResumeDelay = 20 * time.Millisecond
	session.state = StateScanning

	session.processDecode(context.Background(), payloadText(t, "tok1"))

	require.Equal(t, StatePaused, session.State())
	require.Eventually(t, func() bool {
		return session.State() == StateScanning
	}, time.Second, time.Millisecond)
}

func TestSessionStartTwice(t *testing.T) {
	session := newTestSession(&fakeRedeemer{}, nil)

	require.NoError(t, session.Start(context.Background()))
	defer session.Stop()

	require.ErrorIs(t, session.Start(context.Background()), ErrAlreadyScanning)
}

// blockingDevice parks Cameras until released so tests can hold a Start
// call mid-acquisition.
type blockingDevice struct {
	entered chan struct{}
	release chan struct{}
}

func (d *blockingDevice) Cameras(ctx context.Context) ([]Camera, error) {
	close(d.entered)
	<-d.release
	return []Camera{{ID: "cam0", Facing: FacingEnvironment}}, nil
}

func (d *blockingDevice) Open(ctx context.Context, c Constraint) (FrameSource, error) {
	return &idleSource{}, nil
}

type idleSource struct{}

func (idleSource) Next(ctx context.Context) (Frame, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (idleSource) Close() error { return nil }

func TestSessionStartWhileStarting(t *testing.T) {
	device := &blockingDevice{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	session := NewSession(Config{
		Device:   device,
		Decoder:  TextDecoder{},
		Redeemer: &fakeRedeemer{},
	})

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- session.Start(context.Background())
	}()
	<-device.entered

	// The first Start is parked in camera acquisition; a second Start
	// must be refused, not race it to a second loop.
	require.ErrorIs(t, session.Start(context.Background()), ErrAlreadyScanning)

	close(device.release)
	require.NoError(t, <-firstDone)
	defer session.Stop()

	require.Equal(t, StateScanning, session.State())
	require.ErrorIs(t, session.Start(context.Background()), ErrAlreadyScanning)
}

func TestSessionStopIsIdempotent(t *testing.T) {
	session := newTestSession(&fakeRedeemer{}, nil)

	// Stop before Start is a no-op.
	session.Stop()
	require.Equal(t, StateIdle, session.State())

	require.NoError(t, session.Start(context.Background()))
	session.Stop()
	session.Stop()
	require.Equal(t, StateIdle, session.State())
}

type emptyDevice struct{}

func (emptyDevice) Cameras(ctx context.Context) ([]Camera, error) { return nil, nil }
func (emptyDevice) Open(ctx context.Context, c Constraint) (FrameSource, error) {
	return nil, errors.New("unreachable")
}

func TestSessionStartWithoutCamera(t *testing.T) {
	session := NewSession(Config{
		Device:   emptyDevice{},
		Decoder:  TextDecoder{},
		Redeemer: &fakeRedeemer{},
	})

	err := session.Start(context.Background())
	var devErr *DeviceError
	require.ErrorAs(t, err, &devErr)
	require.Equal(t, DeviceNotFound, devErr.Kind)
	require.Equal(t, "No camera found on this device.", devErr.Message())
}

func TestPickConstraintPrefersRearCamera(t *testing.T) {
	constraint := pickConstraint([]Camera{
		{ID: "front", Label: "Front Camera", Facing: FacingUser},
		{ID: "rear", Label: "Back Camera", Facing: FacingUnknown},
	})
	require.Equal(t, "rear", constraint.CameraID)

	constraint = pickConstraint([]Camera{
		{ID: "cam0", Label: "Camera 0", Facing: FacingUser},
		{ID: "cam1", Label: "Camera 1", Facing: FacingEnvironment},
	})
	require.Equal(t, "cam1", constraint.CameraID)

	// No rear camera: first camera wins.
	constraint = pickConstraint([]Camera{
		{ID: "cam0", Label: "Camera 0", Facing: FacingUser},
		{ID: "cam1", Label: "Camera 1", Facing: FacingUser},
	})
	require.Equal(t, "cam0", constraint.CameraID)

	// No resolvable id at all: fall back to a facing constraint.
	constraint = pickConstraint([]Camera{{Label: "Camera"}})
	require.Empty(t, constraint.CameraID)
	require.Equal(t, FacingEnvironment, constraint.Facing)
}

func TestDeviceErrorMessages(t *testing.T) {
	cases := map[DeviceErrorKind]string{
		DeviceNotFound:         "No camera found on this device.",
		DevicePermissionDenied: "Camera permission denied. Please allow camera access in your browser settings.",
		DeviceBusy:             "Camera is in use by another application. Please close it and try again.",
		DeviceInsecureContext:  "Camera requires HTTPS. Please use HTTPS or localhost.",
	}
	for kind, want := range cases {
		err := &DeviceError{Kind: kind}
		require.Equal(t, want, err.Message())
		require.Equal(t, want, err.Error())
	}

	wrapped := &DeviceError{Kind: DeviceBusy, Err: errors.New("NotReadableError")}
	require.Contains(t, wrapped.Error(), "NotReadableError")
}

func TestPushDeviceDropsWhenFull(t *testing.T) {
	device := NewPushDevice()

	accepted := 0
	for i := 0; i < 20; i++ {
		if device.Push("frame") {
			accepted++
		}
	}
	require.Equal(t, 8, accepted)

	src, err := device.Open(context.Background(), Constraint{})
	require.NoError(t, err)
	require.NoError(t, src.Close())

	// A closed device refuses new frames.
	require.False(t, device.Push("frame"))
}
