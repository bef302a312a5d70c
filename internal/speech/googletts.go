package speech

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	google_translate_tts "github.com/GrailFinder/google-translate-tts"
	"github.com/GrailFinder/google-translate-tts/handlers"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/Bermarmorsa/CopilotoUltraligero/internal/config"
	"github.com/Bermarmorsa/CopilotoUltraligero/pkg/logger"
)

// Synthesizer turns a text into audible speech. Speak blocks until playback
// completes or the context is canceled; Stop halts playback immediately.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
	Stop()
}

// GoogleSynthesizer speaks through the Google Translate TTS endpoint with
// beep playback. MP3 fragments are cached on disk by the upstream library.
type GoogleSynthesizer struct {
	logger *logger.Logger
	speech *google_translate_tts.Speech

	mu      sync.Mutex
	current *beep.Ctrl
}

// NewGoogleSynthesizer creates a synthesizer for the configured language
// and playback speed.
func NewGoogleSynthesizer(cfg config.OutputConfig, log *logger.Logger) *GoogleSynthesizer {
	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(os.TempDir(), "copiloto-tts")
	}
	return &GoogleSynthesizer{
		logger: log.Named("speech-tts"),
		speech: &google_translate_tts.Speech{
			Folder:   cacheDir,
			Language: cfg.Language,
			Speed:    cfg.Speed,
			Handler:  &handlers.Beep{},
		},
	}
}

// Speak synthesizes text and plays it, blocking until playback finishes or
// ctx is canceled.
func (s *GoogleSynthesizer) Speak(ctx context.Context, text string) error {
	reader, err := s.speech.GenerateSpeech(text)
	if err != nil {
		return fmt.Errorf("generate speech failed: %w", err)
	}
	streamer, format, err := mp3.Decode(io.NopCloser(reader))
	if err != nil {
		return fmt.Errorf("mp3 decode failed: %w", err)
	}
	defer streamer.Close()

	playback := beep.Streamer(streamer)
	speed := s.speech.Speed
	if speed <= 0 {
		speed = 1.0
	}
	if speed != 1.0 {
		playback = beep.ResampleRatio(3, float64(speed), streamer)
	}

	// speaker.Init complains when called more than once; playback still works.
	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		s.logger.Debug("Failed to init speaker", logger.Error(err))
	}

	done := make(chan struct{})
	ctrl := &beep.Ctrl{Streamer: beep.Seq(playback, beep.Callback(func() {
		close(done)
	}))}

	s.mu.Lock()
	s.current = ctrl
	s.mu.Unlock()

	speaker.Play(ctrl)

	select {
	case <-done:
		s.mu.Lock()
		if s.current == ctrl {
			s.current = nil
		}
		s.mu.Unlock()
		return nil
	case <-ctx.Done():
		// Stop only this utterance's stream; a preempting Speak may
		// already own s.current.
		s.mu.Lock()
		if s.current == ctrl {
			s.current = nil
		}
		s.mu.Unlock()
		speaker.Lock()
		ctrl.Streamer = nil
		speaker.Unlock()
		return ctx.Err()
	}
}

// Stop halts any current playback. Safe to call with nothing playing.
func (s *GoogleSynthesizer) Stop() {
	s.mu.Lock()
	ctrl := s.current
	s.current = nil
	s.mu.Unlock()

	if ctrl != nil {
		speaker.Lock()
		ctrl.Streamer = nil
		speaker.Unlock()
	}
	if s.speech != nil {
		_ = s.speech.Stop()
	}
}
