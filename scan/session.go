package scan

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"integraportal/foodtoken"
	"integraportal/qrtoken"

	"github.com/google/uuid"
)

type State int

const (
	StateIdle State = iota
	StateScanning
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	case StatePaused:
		return "paused"
	default:
		return "idle"
	}
}

var ErrAlreadyScanning = errors.New("scanner already running")

const (
	defaultFrameInterval  = 200 * time.Millisecond // ~5 fps, enough for a handheld scan
	defaultDebounceWindow = 5 * time.Second
	defaultResumeDelay    = 2 * time.Second
)

// Redeemer is the transaction engine as seen by the pipeline.
type Redeemer interface {
	Redeem(ctx context.Context, teamID, tokenID, operatorID string) (*foodtoken.RedemptionResult, error)
}

// Outcome is what one decode attempt produced, success or failure.
type Outcome struct {
	Raw     string                      `json:"-"`
	Payload *qrtoken.Payload            `json:"payload,omitempty"`
	Result  *foodtoken.RedemptionResult `json:"result,omitempty"`
	Err     error                       `json:"-"`
	Message string                      `json:"message,omitempty"`
	At      time.Time                   `json:"at"`
}

type Config struct {
	Device     Device
	Decoder    Decoder
	Redeemer   Redeemer
	OperatorID string

	FrameInterval  time.Duration
	DebounceWindow time.Duration
	ResumeDelay    time.Duration

	// OnOutcome is called after every completed decode attempt.
	OnOutcome func(Outcome)
}

// Session is one scanner station's scan state machine. All the formerly
// ambient scan state (in-flight lock, debounce cache) lives here as
// explicit fields.
type Session struct {
	ID  string
	cfg Config
	now func() time.Time

	mu             sync.Mutex
	state          State
	starting       bool
	inFlight       bool
	lastTokenID    string
	lastRedeemedAt time.Time
	lastOutcome    *Outcome
	src            FrameSource
	cancel         context.CancelFunc
}

func NewSession(cfg Config) *Session {
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = defaultFrameInterval
	}
	if cfg.DebounceWindow <= 0 {
		cfg.DebounceWindow = defaultDebounceWindow
	}
	if cfg.ResumeDelay <= 0 {
		cfg.ResumeDelay = defaultResumeDelay
	}
	return &Session{
		ID:  uuid.NewString(),
		cfg: cfg,
		now: time.Now,
	}
}

// Start acquires a camera and begins the decode loop. A rear-facing
// camera is preferred; when no concrete id can be resolved the device is
// opened with a generic environment-facing constraint.
func (s *Session) Start(ctx context.Context) error {
	// Claim the transition before releasing the lock so a second Start
	// racing through camera acquisition cannot spawn a second loop.
	s.mu.Lock()
	if s.state != StateIdle || s.starting {
		s.mu.Unlock()
		return ErrAlreadyScanning
	}
	s.starting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.starting = false
		s.mu.Unlock()
	}()

	cameras, err := s.cfg.Device.Cameras(ctx)
	if err != nil {
		return err
	}
	if len(cameras) == 0 {
		return &DeviceError{Kind: DeviceNotFound}
	}

	src, err := s.cfg.Device.Open(ctx, pickConstraint(cameras))
	if err != nil {
		return err
	}

	loopCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.src = src
	s.cancel = cancel
	s.state = StateScanning
	s.mu.Unlock()

	go s.loop(loopCtx, src)
	return nil
}

// Stop releases the camera and returns to Idle. Safe to call repeatedly
// and before Start.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.src != nil {
		s.src.Close()
		s.src = nil
	}
	s.state = StateIdle
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) LastOutcome() *Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastOutcome
}

func (s *Session) loop(ctx context.Context, src FrameSource) {
	ticker := time.NewTicker(s.cfg.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		frame, err := src.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}

		text, ok := s.cfg.Decoder.Decode(frame)
		if !ok {
			continue
		}
		s.processDecode(ctx, text)
	}
}

// processDecode runs one decode through lock, debounce, validation and
// the redemption transaction. A decode arriving while a transaction is
// in flight is dropped, never queued.
func (s *Session) processDecode(ctx context.Context, raw string) {
	s.mu.Lock()
	if s.state != StateScanning || s.inFlight {
		s.mu.Unlock()
		return
	}
	s.inFlight = true
	s.mu.Unlock()

	// The lock must clear on every exit path or the session wedges.
	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	payload, err := qrtoken.Decode(raw)
	if err != nil {
		s.report(Outcome{Raw: raw, Err: err, Message: "Invalid QR code", At: s.now()})
		return
	}

	s.mu.Lock()
	if payload.TokenID == s.lastTokenID && s.now().Sub(s.lastRedeemedAt) < s.cfg.DebounceWindow {
		// Same still-visible code re-read by the camera.
		s.mu.Unlock()
		return
	}
	s.state = StatePaused
	s.mu.Unlock()

	result, err := s.cfg.Redeemer.Redeem(ctx, payload.TeamID, payload.TokenID, s.cfg.OperatorID)
	if err != nil {
		// A failed scan never ends the session.
		s.resume()
		s.report(Outcome{Raw: raw, Payload: payload, Err: err, Message: redeemFailureMessage(err), At: s.now()})
		return
	}

	s.mu.Lock()
	s.lastTokenID = payload.TokenID
	s.lastRedeemedAt = s.now()
	s.mu.Unlock()

	s.report(Outcome{Raw: raw, Payload: payload, Result: result, Message: "Token(s) redeemed successfully", At: s.now()})

	// Stay paused so the operator sees the result, then resume.
	time.AfterFunc(s.cfg.ResumeDelay, s.resume)
}

func (s *Session) resume() {
	s.mu.Lock()
	if s.state == StatePaused {
		s.state = StateScanning
	}
	s.mu.Unlock()
}

func (s *Session) report(o Outcome) {
	s.mu.Lock()
	s.lastOutcome = &o
	s.mu.Unlock()

	if s.cfg.OnOutcome != nil {
		s.cfg.OnOutcome(o)
	}
}

func redeemFailureMessage(err error) string {
	switch {
	case errors.Is(err, foodtoken.ErrTokenNotFound):
		return "Token not found"
	case errors.Is(err, foodtoken.ErrLimitExceeded):
		return "All tokens already redeemed for this QR"
	default:
		return "Error processing QR code. Try again."
	}
}

// pickConstraint prefers a rear camera with a resolvable id and falls
// back to a generic environment-facing constraint.
func pickConstraint(cameras []Camera) Constraint {
	for _, cam := range cameras {
		if cam.ID == "" {
			continue
		}
		if cam.Facing == FacingEnvironment || hasRearLabel(cam.Label) {
			return Constraint{CameraID: cam.ID}
		}
	}
	if cameras[0].ID != "" {
		return Constraint{CameraID: cameras[0].ID}
	}
	return Constraint{Facing: FacingEnvironment}
}

func hasRearLabel(label string) bool {
	label = strings.ToLower(label)
	return strings.Contains(label, "back") ||
		strings.Contains(label, "rear") ||
		strings.Contains(label, "environment")
}
