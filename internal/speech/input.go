package speech

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Bermarmorsa/CopilotoUltraligero/internal/session"
	"github.com/Bermarmorsa/CopilotoUltraligero/pkg/logger"
)

// Input is the continuous recognition channel. It runs the engine in
// sessions: a session ends when the engine returns (error, cancelation,
// platform teardown) and is automatically restarted after a short delay
// unless recognition is disabled or the restart must wait for the output
// channel to finish speaking.
type Input struct {
	engine       Engine
	state        *session.State
	restartDelay time.Duration
	logger       *logger.Logger

	mu             sync.Mutex
	handler        func(string)
	onStatus       func(Status)
	running        bool
	cancel         context.CancelFunc
	pendingRestart bool
	status         Status
}

// NewInput creates the input channel around a recognition engine.
func NewInput(engine Engine, state *session.State, restartDelay time.Duration, log *logger.Logger) *Input {
	return &Input{
		engine:       engine,
		state:        state,
		restartDelay: restartDelay,
		logger:       log.Named("speech-input"),
		status:       Status{State: "stopped"},
	}
}

// OnTranscript registers the callback invoked for every final transcript.
func (in *Input) OnTranscript(fn func(string)) {
	in.mu.Lock()
	in.handler = fn
	in.mu.Unlock()
}

// OnStatus registers a callback invoked whenever the channel status
// changes. Used to push recognition state and errors to the dashboard.
func (in *Input) OnStatus(fn func(Status)) {
	in.mu.Lock()
	in.onStatus = fn
	in.mu.Unlock()
}

// Start begins a recognition session. No-op when one is already running or
// recognition is disabled.
func (in *Input) Start() {
	if !in.state.RecognitionEnabled() {
		return
	}
	if in.state.ListeningMode() == session.ListeningSpeaker && in.state.Speaking() {
		// The output channel began talking since this start was scheduled;
		// it restarts us once synthesis completes.
		in.mu.Lock()
		in.pendingRestart = true
		in.mu.Unlock()
		return
	}
	in.mu.Lock()
	if in.running {
		in.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	in.running = true
	in.cancel = cancel
	in.status = Status{State: "listening"}
	notify := in.onStatus
	status := in.status
	in.mu.Unlock()

	in.logger.Debug("Recognition session starting")
	if notify != nil {
		notify(status)
	}
	go in.run(ctx)
}

func (in *Input) run(ctx context.Context) {
	results := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- in.engine.Run(ctx, results)
	}()

	for {
		select {
		case text := <-results:
			in.forward(text)
		case err := <-done:
			// Drain transcripts that raced with session termination.
			for {
				select {
				case text := <-results:
					in.forward(text)
				default:
					in.sessionEnded(err)
					return
				}
			}
		}
	}
}

func (in *Input) forward(text string) {
	// While the system is talking over the speaker, anything the recognizer
	// heard is our own voice. Drop it before it reaches the interpreter.
	if in.state.ListeningMode() == session.ListeningSpeaker && in.state.Speaking() {
		in.logger.Debug("Transcript discarded while speaking", logger.String("text", text))
		return
	}
	in.mu.Lock()
	handler := in.handler
	in.mu.Unlock()
	if handler != nil {
		handler(text)
	}
}

// sessionEnded records the outcome and decides whether to restart. The
// session flags are read now, not captured when the session started: the
// user may have toggled them while it was alive.
func (in *Input) sessionEnded(err error) {
	canceled := errors.Is(err, context.Canceled)

	in.mu.Lock()
	in.running = false
	in.cancel = nil
	if err != nil && !canceled {
		in.status = Status{State: "error", Error: err.Error()}
	} else {
		in.status = Status{State: "stopped"}
	}
	notify := in.onStatus
	status := in.status
	in.mu.Unlock()
	if notify != nil {
		notify(status)
	}

	if err != nil && !canceled {
		in.logger.Error("Recognition session ended", logger.Error(err))
	} else {
		in.logger.Debug("Recognition session ended")
	}

	if !in.state.RecognitionEnabled() {
		return
	}
	if in.state.ListeningMode() == session.ListeningSpeaker && in.state.Speaking() {
		// The output channel restarts us once synthesis completes.
		in.mu.Lock()
		in.pendingRestart = true
		in.mu.Unlock()
		return
	}
	time.AfterFunc(in.restartDelay, in.Start)
}

// Pause tears down the active session without disabling recognition. The
// output channel calls this before speaking in speaker mode; the restart is
// deferred to Resume.
func (in *Input) Pause() {
	in.mu.Lock()
	cancel := in.cancel
	if in.running {
		in.pendingRestart = true
	}
	in.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Resume restarts a session deferred while the system was speaking. No-op
// when a session is already running or nothing was deferred.
func (in *Input) Resume() {
	in.mu.Lock()
	pending := in.pendingRestart
	running := in.running
	in.pendingRestart = false
	in.mu.Unlock()
	if running || !pending {
		return
	}
	in.Start()
}

// Stop disables recognition and tears down the active session. A manual
// Enable is required to listen again.
func (in *Input) Stop() {
	in.state.SetRecognitionEnabled(false)
	in.mu.Lock()
	cancel := in.cancel
	in.pendingRestart = false
	in.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Enable re-enables recognition and starts a session. Also used as the
// manual retry after a recognition error.
func (in *Input) Enable() {
	in.state.SetRecognitionEnabled(true)
	in.Start()
}

// Status returns the current user-visible input channel status.
func (in *Input) Status() Status {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.status
}

// Close tears down the session and releases the engine.
func (in *Input) Close() error {
	in.Stop()
	return in.engine.Close()
}
