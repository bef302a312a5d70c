package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Bermarmorsa/CopilotoUltraligero/internal/api"
	"github.com/Bermarmorsa/CopilotoUltraligero/internal/config"
	"github.com/Bermarmorsa/CopilotoUltraligero/internal/interpreter"
	"github.com/Bermarmorsa/CopilotoUltraligero/internal/session"
	"github.com/Bermarmorsa/CopilotoUltraligero/internal/speech"
	"github.com/Bermarmorsa/CopilotoUltraligero/internal/storage/sqlite"
	"github.com/Bermarmorsa/CopilotoUltraligero/internal/websocket"
	"github.com/Bermarmorsa/CopilotoUltraligero/pkg/logger"
)

func main() {
	configPath := flag.String("config", "copiloto.toml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting copiloto",
		logger.String("wake_word", cfg.Wake.Word),
		logger.String("listening_mode", cfg.Wake.ListeningMode),
		logger.String("engine", cfg.Speech.Input.Engine),
	)

	store, err := sqlite.Open(cfg.Storage.SQLitePath, log)
	if err != nil {
		log.Error("Failed to open store", logger.Error(err))
		os.Exit(1)
	}
	defer store.Close()

	wsServer := websocket.NewServer(log)
	defer wsServer.Close()

	state := session.NewState(session.ListeningMode(cfg.Wake.ListeningMode))
	voicelog := session.NewVoiceLog()

	state.OnChange(func(snap session.Snapshot) {
		wsServer.Broadcast(&websocket.Message{Type: "session_state", Data: snap})
	})
	voicelog.OnAppend(func(entry session.Entry) {
		wsServer.Broadcast(&websocket.Message{Type: "voicelog_entry", Data: entry})
	})

	synth := speech.NewGoogleSynthesizer(cfg.Speech.Output, log)
	output := speech.NewOutput(synth, state,
		time.Duration(cfg.Speech.Output.ResumeDelayMs)*time.Millisecond, log)

	var engine speech.Engine
	switch cfg.Speech.Input.Engine {
	case "openai":
		engine = speech.NewWhisperEngine(cfg.Speech.Input, log)
	default:
		engine, err = speech.NewSherpaEngine(cfg.Speech.Input, log)
		if err != nil {
			log.Error("Failed to create recognizer", logger.Error(err))
			os.Exit(1)
		}
	}

	input := speech.NewInput(engine, state,
		time.Duration(cfg.Speech.Input.RestartDelayMs)*time.Millisecond, log)
	output.BindInput(input)

	interp := interpreter.New(store, state, voicelog, output, cfg.Wake.Word, log)
	input.OnTranscript(interp.HandleTranscript)
	input.OnStatus(func(status speech.Status) {
		wsServer.Broadcast(&websocket.Message{Type: "speech_status", Data: status})
	})
	input.Start()

	router := api.NewRouter(store, state, voicelog, input, output, wsServer, cfg, log)
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router.Routes(),
	}

	go func() {
		log.Info("HTTP server listening", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", logger.Error(err))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown failed", logger.Error(err))
	}

	output.Stop()
	if err := input.Close(); err != nil {
		log.Error("Failed to close input channel", logger.Error(err))
	}
}
