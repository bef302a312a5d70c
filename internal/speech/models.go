// Package speech implements the voice input and output channels: a
// continuously-restarting recognition stream and a single-utterance
// synthesis channel that must not fight over the microphone.
package speech

import "context"

// Engine captures audio and produces final transcripts. Run blocks until
// the context is canceled or a terminal error occurs; the input channel
// restarts it. Implementations must be safe to Run again after returning.
type Engine interface {
	Run(ctx context.Context, results chan<- string) error
	Close() error
}

// Status is the user-visible state of the input channel.
type Status struct {
	State string `json:"state"` // "listening", "stopped", "error"
	Error string `json:"error,omitempty"`
}
