package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Bermarmorsa/CopilotoUltraligero/internal/session"
	"github.com/Bermarmorsa/CopilotoUltraligero/internal/speech"
	"github.com/Bermarmorsa/CopilotoUltraligero/internal/storage/sqlite"
	"github.com/Bermarmorsa/CopilotoUltraligero/internal/websocket"
	"github.com/Bermarmorsa/CopilotoUltraligero/pkg/logger"
)

type stubEngine struct{}

func (stubEngine) Run(ctx context.Context, _ chan<- string) error {
	<-ctx.Done()
	return ctx.Err()
}

func (stubEngine) Close() error { return nil }

type stubSynth struct{}

func (stubSynth) Speak(ctx context.Context, text string) error { return nil }
func (stubSynth) Stop()                                        {}

func newTestHandler(t *testing.T) (*Handler, *session.VoiceLog) {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Format: "console"})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	store, err := sqlite.Open(":memory:", log)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	state := session.NewState(session.ListeningHeadphones)
	voicelog := session.NewVoiceLog()
	input := speech.NewInput(stubEngine{}, state, time.Millisecond, log)
	output := speech.NewOutput(stubSynth{}, state, time.Millisecond, log)
	output.BindInput(input)
	ws := websocket.NewServer(log)
	t.Cleanup(ws.Close)

	return NewHandler(store, state, voicelog, input, output, ws, log), voicelog
}

func TestGetStatusIncludesLastReply(t *testing.T) {
	h, voicelog := newTestHandler(t)

	w := httptest.NewRecorder()
	h.GetStatus(w, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	var before map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &before); err != nil {
		t.Fatalf("failed to decode status: %v", err)
	}
	if _, ok := before["last_reply"]; ok {
		t.Error("last_reply present before anything was spoken")
	}

	voicelog.AppendUser("copiloto")
	voicelog.AppendSystem("Copiloto a la escucha")

	w = httptest.NewRecorder()
	h.GetStatus(w, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	var after struct {
		LastReply struct {
			Text string `json:"text"`
			Type string `json:"type"`
		} `json:"last_reply"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &after); err != nil {
		t.Fatalf("failed to decode status: %v", err)
	}
	if after.LastReply.Text != "Copiloto a la escucha" {
		t.Errorf("last_reply text = %q, want the system line", after.LastReply.Text)
	}
	if after.LastReply.Type != "system" {
		t.Errorf("last_reply type = %q, want system", after.LastReply.Type)
	}
}
