package speech

import (
	"context"
	"sync"
	"time"

	"github.com/Bermarmorsa/CopilotoUltraligero/internal/session"
	"github.com/Bermarmorsa/CopilotoUltraligero/pkg/logger"
)

// Output is the speech output channel. At most one utterance is in flight:
// a new Speak preempts the current one. In speaker mode it pauses the input
// channel while talking and schedules its restart when done.
type Output struct {
	synth       Synthesizer
	state       *session.State
	resumeDelay time.Duration
	logger      *logger.Logger

	mu         sync.Mutex
	input      *Input
	cancel     context.CancelFunc
	generation int
	lastSpoken string
}

// NewOutput creates the output channel around a synthesizer.
func NewOutput(synth Synthesizer, state *session.State, resumeDelay time.Duration, log *logger.Logger) *Output {
	return &Output{
		synth:       synth,
		state:       state,
		resumeDelay: resumeDelay,
		logger:      log.Named("speech-output"),
	}
}

// BindInput wires the input channel for the speaker-mode pause/resume
// handshake. Must be called before the first Speak.
func (o *Output) BindInput(in *Input) {
	o.mu.Lock()
	o.input = in
	o.mu.Unlock()
}

// Speak synthesizes text asynchronously, preempting any utterance already
// in flight. Empty text is ignored.
func (o *Output) Speak(text string) {
	if text == "" {
		return
	}

	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.generation++
	gen := o.generation
	ctx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel
	o.lastSpoken = text
	input := o.input
	o.mu.Unlock()

	o.synth.Stop()

	o.state.SetSpeaking(true)
	if o.state.ListeningMode() == session.ListeningSpeaker && input != nil {
		input.Pause()
	}
	o.logger.Debug("Speaking", logger.String("text", text))

	go func() {
		err := o.synth.Speak(ctx, text)

		o.mu.Lock()
		current := gen == o.generation
		if current {
			o.cancel = nil
		}
		o.mu.Unlock()
		if !current {
			// Preempted; the newer utterance owns the session flags.
			return
		}
		if err != nil && ctx.Err() == nil {
			o.logger.Error("Speech synthesis failed", logger.Error(err))
		}
		o.finishSpeaking(input)
	}()
}

// Stop cancels the in-flight utterance, if any, and halts playback.
func (o *Output) Stop() {
	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	// Orphan the in-flight completion handler; we settle the flags here.
	o.generation++
	input := o.input
	o.mu.Unlock()

	o.synth.Stop()
	o.finishSpeaking(input)
}

// finishSpeaking clears the speaking flag and, in speaker mode, schedules
// the input channel restart. The mode and enable flags are read now, not
// captured at Speak time.
func (o *Output) finishSpeaking(input *Input) {
	o.state.SetSpeaking(false)
	if input == nil {
		return
	}
	if o.state.ListeningMode() == session.ListeningSpeaker && o.state.RecognitionEnabled() {
		time.AfterFunc(o.resumeDelay, input.Resume)
	}
}

// LastSpoken returns the text of the most recent utterance handed to the
// synthesizer, spoken to completion or not.
func (o *Output) LastSpoken() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastSpoken
}
