package speech

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/k2-fsa/sherpa-onnx-go/sherpa_onnx"

	"github.com/Bermarmorsa/CopilotoUltraligero/internal/audio"
	"github.com/Bermarmorsa/CopilotoUltraligero/internal/config"
	"github.com/Bermarmorsa/CopilotoUltraligero/pkg/logger"
)

// SherpaEngine runs the offline sherpa-onnx streaming recognizer against the
// microphone. One final transcript is emitted per detected endpoint. The
// recognizer is created once and survives across Run sessions; only the
// microphone is reopened.
type SherpaEngine struct {
	cfg        config.InputConfig
	logger     *logger.Logger
	recognizer *sherpa_onnx.OnlineRecognizer
	stream     *sherpa_onnx.OnlineStream
	chunker    *audio.Chunker
}

// NewSherpaEngine loads the transducer model from cfg.Sherpa.ModelDir and
// builds a streaming recognizer with endpoint detection enabled.
func NewSherpaEngine(cfg config.InputConfig, log *logger.Logger) (*SherpaEngine, error) {
	dir := cfg.Sherpa.ModelDir
	encoderPath := filepath.Join(dir, "encoder.onnx")
	decoderPath := filepath.Join(dir, "decoder.onnx")
	joinerPath := filepath.Join(dir, "joiner.onnx")
	tokensPath := filepath.Join(dir, "tokens.txt")

	for _, path := range []string{encoderPath, decoderPath, joinerPath, tokensPath} {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("model file not found: %s", path)
		}
	}

	recognizerConfig := sherpa_onnx.OnlineRecognizerConfig{}
	recognizerConfig.FeatConfig.SampleRate = cfg.SampleRate
	recognizerConfig.FeatConfig.FeatureDim = cfg.Sherpa.FeatureDim
	recognizerConfig.ModelConfig.Tokens = tokensPath
	recognizerConfig.ModelConfig.Transducer.Encoder = encoderPath
	recognizerConfig.ModelConfig.Transducer.Decoder = decoderPath
	recognizerConfig.ModelConfig.Transducer.Joiner = joinerPath
	recognizerConfig.ModelConfig.ModelType = "zipformer2"
	recognizerConfig.ModelConfig.Debug = 0
	recognizerConfig.ModelConfig.NumThreads = cfg.Sherpa.NumThreads
	recognizerConfig.ModelConfig.Provider = "cpu"
	recognizerConfig.DecodingMethod = "greedy_search"
	recognizerConfig.MaxActivePaths = 4
	recognizerConfig.EnableEndpoint = 1

	recognizer := sherpa_onnx.NewOnlineRecognizer(&recognizerConfig)
	if recognizer == nil {
		return nil, fmt.Errorf("failed to create recognizer")
	}
	stream := sherpa_onnx.NewOnlineStream(recognizer)
	if stream == nil {
		sherpa_onnx.DeleteOnlineRecognizer(recognizer)
		return nil, fmt.Errorf("failed to create recognizer stream")
	}

	return &SherpaEngine{
		cfg:        cfg,
		logger:     log.Named("speech-sherpa"),
		recognizer: recognizer,
		stream:     stream,
		chunker:    audio.NewChunker(cfg.SampleRate, 1, cfg.ChunkMs),
	}, nil
}

// Run captures microphone audio and emits one transcript per endpoint until
// the context is canceled or the microphone fails.
func (e *SherpaEngine) Run(ctx context.Context, results chan<- string) error {
	mic, err := openMicrophone(e.cfg.SampleRate)
	if err != nil {
		return err
	}
	defer mic.Close()

	e.chunker.Reset()
	e.recognizer.Reset(e.stream)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		samples, err := mic.Read()
		if err != nil {
			return err
		}
		for _, chunk := range e.chunker.Push(samples) {
			e.stream.AcceptWaveform(e.cfg.SampleRate, audio.Float32Samples(chunk))
			for e.recognizer.IsReady(e.stream) {
				e.recognizer.Decode(e.stream)
			}
			if !e.recognizer.IsEndpoint(e.stream) {
				continue
			}
			result := e.recognizer.GetResult(e.stream)
			e.recognizer.Reset(e.stream)
			if result == nil {
				continue
			}
			text := strings.TrimSpace(result.Text)
			if text == "" {
				continue
			}
			e.logger.Debug("Endpoint transcript", logger.String("text", text))
			select {
			case results <- text:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Close releases the recognizer and its stream.
func (e *SherpaEngine) Close() error {
	if e.stream != nil {
		sherpa_onnx.DeleteOnlineStream(e.stream)
		e.stream = nil
	}
	if e.recognizer != nil {
		sherpa_onnx.DeleteOnlineRecognizer(e.recognizer)
		e.recognizer = nil
	}
	return nil
}
