package speech

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/Bermarmorsa/CopilotoUltraligero/internal/audio"
	"github.com/Bermarmorsa/CopilotoUltraligero/internal/config"
	"github.com/Bermarmorsa/CopilotoUltraligero/pkg/logger"
)

// WhisperEngine records one utterance at a time with RMS-based endpointing
// and sends the captured audio to the OpenAI transcription API. It is the
// network-backed alternative to the offline sherpa recognizer.
type WhisperEngine struct {
	cfg     config.InputConfig
	client  openai.Client
	logger  *logger.Logger
	chunker *audio.Chunker
}

// NewWhisperEngine creates a Whisper-backed recognition engine.
func NewWhisperEngine(cfg config.InputConfig, log *logger.Logger) *WhisperEngine {
	return &WhisperEngine{
		cfg:     cfg,
		client:  openai.NewClient(option.WithAPIKey(cfg.OpenAI.APIKey)),
		logger:  log.Named("speech-whisper"),
		chunker: audio.NewChunker(cfg.SampleRate, 1, cfg.ChunkMs),
	}
}

// Run captures microphone audio, segments it into utterances by silence and
// emits one transcript per utterance until the context is canceled.
func (e *WhisperEngine) Run(ctx context.Context, results chan<- string) error {
	mic, err := openMicrophone(e.cfg.SampleRate)
	if err != nil {
		return err
	}
	defer mic.Close()

	e.chunker.Reset()

	var utterance []int16
	voiced := false
	silenceMs := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		samples, err := mic.Read()
		if err != nil {
			return err
		}
		for _, chunk := range e.chunker.Push(samples) {
			level := audio.RMS(chunk)
			if !voiced {
				if level < e.cfg.OpenAI.VADThreshold {
					continue
				}
				voiced = true
				silenceMs = 0
			}
			utterance = append(utterance, chunk...)
			if level >= e.cfg.OpenAI.VADThreshold {
				silenceMs = 0
				continue
			}
			silenceMs += e.chunker.ChunkMs()
			if silenceMs < e.cfg.OpenAI.SilenceMs {
				continue
			}

			text, err := e.transcribe(ctx, utterance)
			utterance = nil
			voiced = false
			silenceMs = 0
			if err != nil {
				return fmt.Errorf("transcription failed: %w", err)
			}
			if text == "" {
				continue
			}
			e.logger.Debug("Utterance transcript", logger.String("text", text))
			select {
			case results <- text:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (e *WhisperEngine) transcribe(ctx context.Context, samples []int16) (string, error) {
	wav := audio.EncodeWAV(samples, e.cfg.SampleRate)

	timeout := time.Duration(e.cfg.OpenAI.TimeoutSeconds) * time.Second
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := e.client.Audio.Transcriptions.New(reqCtx, openai.AudioTranscriptionNewParams{
		File:     openai.File(bytes.NewReader(wav), "utterance.wav", "audio/wav"),
		Model:    openai.AudioModel(e.cfg.OpenAI.Model),
		Language: openai.String(e.cfg.OpenAI.Language),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}

// Close is a no-op; the engine holds no native resources between sessions.
func (e *WhisperEngine) Close() error {
	return nil
}
