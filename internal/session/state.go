// Package session holds the per-process voice session state: the interpreter
// mode machine and the transcript log. Both are ephemeral.
package session

import (
	"sync"

	"github.com/Bermarmorsa/CopilotoUltraligero/internal/flightdata"
)

// AppMode is the interpreter state.
type AppMode string

const (
	ModeIdle      AppMode = "idle"
	ModeListening AppMode = "listening"
	ModeChecklist AppMode = "checklist"
	ModeInfo      AppMode = "info" // placeholder, no cascade route enters it
)

// ListeningMode is the microphone policy while the system is talking.
type ListeningMode string

const (
	// ListeningHeadphones keeps recognition running while speaking.
	ListeningHeadphones ListeningMode = "headphones"
	// ListeningSpeaker pauses recognition while speaking so the system
	// does not hear itself.
	ListeningSpeaker ListeningMode = "speaker"
)

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	Mode               AppMode               `json:"mode"`
	ActiveChecklist    *flightdata.Checklist `json:"active_checklist,omitempty"`
	ChecklistIndex     int                   `json:"checklist_index"`
	ListeningMode      ListeningMode         `json:"listening_mode"`
	Speaking           bool                  `json:"speaking"`
	RecognitionEnabled bool                  `json:"recognition_enabled"`
}

// State is the single shared mutable cell for the voice session. Deferred
// callbacks (recognition end, synthesis end, timers) must read it when they
// fire, never capture values at registration time.
//
// Invariants: checklistIndex is -1 or a valid item index whenever a checklist
// is active; mode is ModeChecklist exactly when a checklist is active.
type State struct {
	mu                 sync.Mutex
	mode               AppMode
	activeChecklist    *flightdata.Checklist
	checklistIndex     int
	listeningMode      ListeningMode
	speaking           bool
	recognitionEnabled bool
	onChange           func(Snapshot)
}

// NewState creates the session state in idle mode.
func NewState(listeningMode ListeningMode) *State {
	return &State{
		mode:               ModeIdle,
		checklistIndex:     -1,
		listeningMode:      listeningMode,
		recognitionEnabled: true,
	}
}

// OnChange registers a callback invoked with a snapshot after every state
// change. Used to push session updates to dashboard clients.
func (s *State) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *State) notifyLocked() func() {
	if s.onChange == nil {
		return nil
	}
	fn := s.onChange
	snap := s.snapshotLocked()
	return func() { fn(snap) }
}

func (s *State) snapshotLocked() Snapshot {
	snap := Snapshot{
		Mode:               s.mode,
		ChecklistIndex:     s.checklistIndex,
		ListeningMode:      s.listeningMode,
		Speaking:           s.speaking,
		RecognitionEnabled: s.recognitionEnabled,
	}
	if s.activeChecklist != nil {
		cl := s.activeChecklist.Clone()
		snap.ActiveChecklist = &cl
	}
	return snap
}

// Snapshot returns a consistent copy of the whole state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Mode returns the current interpreter mode.
func (s *State) Mode() AppMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode transitions between the non-checklist modes. Entering or leaving
// checklist mode goes through BeginChecklist/EndChecklist so the checklist
// invariants hold.
func (s *State) SetMode(mode AppMode) {
	s.mu.Lock()
	if mode == ModeChecklist {
		s.mu.Unlock()
		return
	}
	s.mode = mode
	s.activeChecklist = nil
	s.checklistIndex = -1
	notify := s.notifyLocked()
	s.mu.Unlock()
	if notify != nil {
		notify()
	}
}

// BeginChecklist activates a checklist (copied by value) at item 0 and
// enters checklist mode.
func (s *State) BeginChecklist(cl flightdata.Checklist) {
	s.mu.Lock()
	copied := cl.Clone()
	s.activeChecklist = &copied
	s.checklistIndex = 0
	s.mode = ModeChecklist
	notify := s.notifyLocked()
	s.mu.Unlock()
	if notify != nil {
		notify()
	}
}

// SetChecklistIndex moves the progress index. Out-of-range values are
// clamped to the valid range; use EndChecklist to leave the checklist.
func (s *State) SetChecklistIndex(index int) {
	s.mu.Lock()
	if s.activeChecklist == nil {
		s.mu.Unlock()
		return
	}
	if index < 0 {
		index = 0
	}
	if max := len(s.activeChecklist.Items) - 1; index > max {
		index = max
	}
	s.checklistIndex = index
	notify := s.notifyLocked()
	s.mu.Unlock()
	if notify != nil {
		notify()
	}
}

// ActiveChecklist returns a copy of the active checklist (nil when none)
// and the current progress index.
func (s *State) ActiveChecklist() (*flightdata.Checklist, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeChecklist == nil {
		return nil, -1
	}
	cl := s.activeChecklist.Clone()
	return &cl, s.checklistIndex
}

// EndChecklist clears the active checklist and returns to idle mode.
func (s *State) EndChecklist() {
	s.mu.Lock()
	s.activeChecklist = nil
	s.checklistIndex = -1
	s.mode = ModeIdle
	notify := s.notifyLocked()
	s.mu.Unlock()
	if notify != nil {
		notify()
	}
}

// ListeningMode returns the current microphone policy.
func (s *State) ListeningMode() ListeningMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listeningMode
}

// SetListeningMode switches between speaker and headphones policy.
func (s *State) SetListeningMode(mode ListeningMode) {
	s.mu.Lock()
	s.listeningMode = mode
	notify := s.notifyLocked()
	s.mu.Unlock()
	if notify != nil {
		notify()
	}
}

// Speaking reports whether the output channel has an utterance in flight.
func (s *State) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking
}

// SetSpeaking records whether synthesis is in progress.
func (s *State) SetSpeaking(speaking bool) {
	s.mu.Lock()
	s.speaking = speaking
	notify := s.notifyLocked()
	s.mu.Unlock()
	if notify != nil {
		notify()
	}
}

// RecognitionEnabled reports whether the input channel may (re)start.
func (s *State) RecognitionEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recognitionEnabled
}

// SetRecognitionEnabled toggles the input channel master switch.
func (s *State) SetRecognitionEnabled(enabled bool) {
	s.mu.Lock()
	s.recognitionEnabled = enabled
	notify := s.notifyLocked()
	s.mu.Unlock()
	if notify != nil {
		notify()
	}
}
