package speech

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Bermarmorsa/CopilotoUltraligero/internal/session"
	"github.com/Bermarmorsa/CopilotoUltraligero/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Format: "console"})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return log
}

// fakeEngine emits whatever is pushed into results and blocks until the
// session context is canceled.
type fakeEngine struct {
	results chan string

	mu   sync.Mutex
	runs int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{results: make(chan string, 8)}
}

func (f *fakeEngine) Run(ctx context.Context, out chan<- string) error {
	f.mu.Lock()
	f.runs++
	f.mu.Unlock()
	for {
		select {
		case text := <-f.results:
			out <- text
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (f *fakeEngine) Close() error { return nil }

func (f *fakeEngine) runCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs
}

// fakeSynth records spoken texts and completes after a configurable delay.
type fakeSynth struct {
	delay time.Duration

	mu     sync.Mutex
	spoken []string
	stops  int
}

func (f *fakeSynth) Speak(ctx context.Context, text string) error {
	f.mu.Lock()
	f.spoken = append(f.spoken, text)
	f.mu.Unlock()
	select {
	case <-time.After(f.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeSynth) Stop() {
	f.mu.Lock()
	f.stops++
	f.mu.Unlock()
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func TestInputForwardsTranscripts(t *testing.T) {
	state := session.NewState(session.ListeningSpeaker)
	engine := newFakeEngine()
	in := NewInput(engine, state, 10*time.Millisecond, testLogger(t))

	var mu sync.Mutex
	var got []string
	in.OnTranscript(func(text string) {
		mu.Lock()
		got = append(got, text)
		mu.Unlock()
	})

	in.Start()
	engine.results <- "copiloto"

	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1 && got[0] == "copiloto"
	})

	if status := in.Status(); status.State != "listening" {
		t.Errorf("status = %q, want listening", status.State)
	}
	in.Stop()
}

func TestInputDiscardsTranscriptsWhileSpeaking(t *testing.T) {
	state := session.NewState(session.ListeningSpeaker)
	engine := newFakeEngine()
	in := NewInput(engine, state, 10*time.Millisecond, testLogger(t))

	var mu sync.Mutex
	var got []string
	in.OnTranscript(func(text string) {
		mu.Lock()
		got = append(got, text)
		mu.Unlock()
	})

	in.Start()
	waitFor(t, time.Second, func() bool { return engine.runCount() == 1 })

	state.SetSpeaking(true)
	engine.results <- "echo of our own voice"
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	n := len(got)
	mu.Unlock()
	if n != 0 {
		t.Errorf("expected transcript to be discarded while speaking, got %d", n)
	}

	state.SetSpeaking(false)
	engine.results <- "real command"
	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1 && got[0] == "real command"
	})
	in.Stop()
}

func TestInputRestartsAfterSessionEnd(t *testing.T) {
	state := session.NewState(session.ListeningHeadphones)
	engine := newFakeEngine()
	in := NewInput(engine, state, 5*time.Millisecond, testLogger(t))

	in.Start()
	waitFor(t, time.Second, func() bool { return engine.runCount() == 1 })

	// Pause cancels the session; with nothing speaking the deferred restart
	// is resolved by Resume.
	in.Pause()
	in.Resume()
	waitFor(t, time.Second, func() bool { return engine.runCount() == 2 })
	in.Stop()
}

func TestInputStartDefersWhileSpeaking(t *testing.T) {
	state := session.NewState(session.ListeningSpeaker)
	engine := newFakeEngine()
	in := NewInput(engine, state, 5*time.Millisecond, testLogger(t))

	// A restart scheduled before synthesis began must not open a session
	// while the speaker is playing.
	state.SetSpeaking(true)
	in.Start()
	time.Sleep(50 * time.Millisecond)
	if n := engine.runCount(); n != 0 {
		t.Fatalf("session opened while speaking, got %d sessions", n)
	}

	// The deferred start is picked up by the synthesis-end resume.
	state.SetSpeaking(false)
	in.Resume()
	waitFor(t, time.Second, func() bool { return engine.runCount() == 1 })
	in.Stop()
}

func TestInputStopDisablesRestart(t *testing.T) {
	state := session.NewState(session.ListeningHeadphones)
	engine := newFakeEngine()
	in := NewInput(engine, state, 5*time.Millisecond, testLogger(t))

	in.Start()
	waitFor(t, time.Second, func() bool { return engine.runCount() == 1 })

	in.Stop()
	time.Sleep(50 * time.Millisecond)
	if n := engine.runCount(); n != 1 {
		t.Errorf("expected no restart after Stop, got %d sessions", n)
	}
	if state.RecognitionEnabled() {
		t.Error("expected recognition to be disabled after Stop")
	}

	in.Enable()
	waitFor(t, time.Second, func() bool { return engine.runCount() == 2 })
	if !state.RecognitionEnabled() {
		t.Error("expected recognition to be enabled after Enable")
	}
	in.Stop()
}

func TestOutputSpeaksAndClearsFlag(t *testing.T) {
	state := session.NewState(session.ListeningHeadphones)
	synth := &fakeSynth{delay: 10 * time.Millisecond}
	out := NewOutput(synth, state, 5*time.Millisecond, testLogger(t))

	out.Speak("Copiloto a la escucha")

	waitFor(t, time.Second, func() bool { return state.Speaking() })
	waitFor(t, time.Second, func() bool { return !state.Speaking() })

	if got := out.LastSpoken(); got != "Copiloto a la escucha" {
		t.Errorf("LastSpoken = %q", got)
	}
}

func TestOutputPreemption(t *testing.T) {
	state := session.NewState(session.ListeningHeadphones)
	synth := &fakeSynth{delay: 500 * time.Millisecond}
	out := NewOutput(synth, state, 5*time.Millisecond, testLogger(t))

	out.Speak("first utterance")
	time.Sleep(20 * time.Millisecond)
	out.Speak("second utterance")

	waitFor(t, 2*time.Second, func() bool { return !state.Speaking() })

	if got := out.LastSpoken(); got != "second utterance" {
		t.Errorf("LastSpoken = %q, want second utterance", got)
	}
	synth.mu.Lock()
	defer synth.mu.Unlock()
	if len(synth.spoken) != 2 {
		t.Errorf("synth received %d utterances, want 2", len(synth.spoken))
	}
}

func TestOutputStopSettlesSpeakingFlag(t *testing.T) {
	state := session.NewState(session.ListeningHeadphones)
	synth := &fakeSynth{delay: time.Second}
	out := NewOutput(synth, state, 5*time.Millisecond, testLogger(t))

	out.Speak("a very long readback")
	waitFor(t, time.Second, func() bool { return state.Speaking() })

	out.Stop()
	if state.Speaking() {
		t.Error("expected speaking flag cleared after Stop")
	}
}

func TestOutputPausesInputInSpeakerMode(t *testing.T) {
	state := session.NewState(session.ListeningSpeaker)
	engine := newFakeEngine()
	in := NewInput(engine, state, 5*time.Millisecond, testLogger(t))
	synth := &fakeSynth{delay: 20 * time.Millisecond}
	out := NewOutput(synth, state, 5*time.Millisecond, testLogger(t))
	out.BindInput(in)

	in.Start()
	waitFor(t, time.Second, func() bool { return engine.runCount() == 1 })

	out.Speak("Iniciando checklist Prevuelo. Primer punto: Combustible abierto")

	// Speaking pauses recognition; completion restarts it after the delay.
	waitFor(t, 2*time.Second, func() bool { return engine.runCount() == 2 })
	in.Stop()
}
