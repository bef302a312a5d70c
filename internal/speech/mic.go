package speech

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

const micFrames = 512

// microphone wraps a mono PCM16 portaudio input stream. One microphone is
// opened per recognition session and closed when the session ends.
type microphone struct {
	stream *portaudio.Stream
	buf    []int16
}

func openMicrophone(sampleRate int) (*microphone, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init failed: %w", err)
	}
	buf := make([]int16, micFrames)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), len(buf), buf)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("failed to open microphone: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("failed to start microphone: %w", err)
	}
	return &microphone{stream: stream, buf: buf}, nil
}

// Read blocks until the next buffer of samples is captured and returns a
// copy the caller owns.
func (m *microphone) Read() ([]int16, error) {
	if err := m.stream.Read(); err != nil {
		return nil, fmt.Errorf("microphone read failed: %w", err)
	}
	out := make([]int16, len(m.buf))
	copy(out, m.buf)
	return out, nil
}

func (m *microphone) Close() error {
	_ = m.stream.Stop()
	err := m.stream.Close()
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}
