// Package interpreter turns recognized Spanish utterances into assistant
// actions: checklist reading, route queries, aerodrome briefings.
package interpreter

import (
	"regexp"
	"strings"

	"github.com/Bermarmorsa/CopilotoUltraligero/internal/flightdata"
	"github.com/Bermarmorsa/CopilotoUltraligero/internal/session"
	"github.com/Bermarmorsa/CopilotoUltraligero/pkg/logger"
)

// Speaker is the output channel as the interpreter sees it.
type Speaker interface {
	Speak(text string)
	Stop()
	LastSpoken() string
}

// Interpreter dispatches transcripts through an ordered command cascade.
// The first matching command handles the utterance; order is part of the
// contract ("cancelar checklist" selects a checklist, it does not cancel).
type Interpreter struct {
	repo      flightdata.Repository
	state     *session.State
	voicelog  *session.VoiceLog
	speaker   Speaker
	wakeWord  string
	logger    *logger.Logger
	commands  []command
	ordinalRE *regexp.Regexp
}

type command struct {
	name   string
	match  func(text string) bool
	handle func(text string)
}

// New creates an interpreter bound to the session state and data store.
func New(repo flightdata.Repository, state *session.State, voicelog *session.VoiceLog, speaker Speaker, wakeWord string, log *logger.Logger) *Interpreter {
	i := &Interpreter{
		repo:      repo,
		state:     state,
		voicelog:  voicelog,
		speaker:   speaker,
		wakeWord:  strings.ToLower(wakeWord),
		logger:    log.Named("interpreter"),
		ordinalRE: regexp.MustCompile(`punto(?:\s+de\s+ruta)?\s+([a-záéíóúñü0-9]+)`),
	}
	i.commands = []command{
		{name: "checklist-select", match: i.matchChecklistSelect, handle: i.handleChecklistSelect},
		{name: "checklist-step", match: i.matchChecklistStep, handle: i.handleChecklistStep},
		{name: "route", match: i.matchRoute, handle: i.handleRoute},
		{name: "aerodrome", match: i.matchAerodrome, handle: i.handleAerodrome},
		{name: "help", match: i.matchHelp, handle: i.handleHelp},
		{name: "cancel", match: i.matchCancel, handle: i.handleCancel},
		{name: "repeat", match: i.matchRepeat, handle: i.handleRepeat},
	}
	return i
}

// HandleTranscript is the entry point for every final transcript from the
// input channel.
func (i *Interpreter) HandleTranscript(raw string) {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return
	}

	// While talking over the speaker the recognizer hears our own voice.
	// Drop the transcript before it reaches the log.
	if i.state.ListeningMode() == session.ListeningSpeaker && i.state.Speaking() {
		i.logger.Debug("Transcript discarded while speaking", logger.String("text", text))
		return
	}

	if idx := strings.Index(text, i.wakeWord); idx >= 0 {
		i.voicelog.AppendUser(text)
		cmd := strings.TrimSpace(text[idx+len(i.wakeWord):])
		if cmd == "" {
			// Bare wake word: acknowledge only from idle.
			if i.state.Mode() == session.ModeIdle {
				i.state.SetMode(session.ModeListening)
				i.reply("Copiloto a la escucha")
			}
			return
		}
		// Text after the wake word is dispatched regardless of mode.
		i.dispatch(cmd)
		return
	}

	if i.state.Mode() != session.ModeIdle {
		i.voicelog.AppendUser(text)
		i.dispatch(text)
		return
	}
	// Idle speech without the wake word is not addressed to us.
	i.logger.Debug("Ignoring utterance without wake word", logger.String("text", text))
}

// dispatch walks the cascade in order and hands the utterance to the first
// matching command. Unrecognized utterances stay in the log with no reply.
func (i *Interpreter) dispatch(text string) {
	for _, c := range i.commands {
		if c.match(text) {
			i.logger.Debug("Command matched",
				logger.String("command", c.name),
				logger.String("text", text),
			)
			c.handle(text)
			return
		}
	}
	i.logger.Debug("Command not recognized", logger.String("text", text))
}

// reply logs a system line and speaks it.
func (i *Interpreter) reply(text string) {
	i.voicelog.AppendSystem(text)
	i.speaker.Speak(text)
}

func containsAny(text string, words []string) bool {
	for _, word := range words {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}
