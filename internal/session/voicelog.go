package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EntryType distinguishes pilot utterances from system replies.
type EntryType string

const (
	EntryUser   EntryType = "user"
	EntrySystem EntryType = "system"
)

// Entry is one line of the session transcript.
type Entry struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Type      EntryType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// VoiceLog is the append-only, arrival-ordered record of user utterances and
// system replies. It is unbounded and lives for the process lifetime.
type VoiceLog struct {
	mu       sync.Mutex
	entries  []Entry
	onAppend func(Entry)
}

// NewVoiceLog creates an empty voice log.
func NewVoiceLog() *VoiceLog {
	return &VoiceLog{}
}

// OnAppend registers a callback invoked for every appended entry. Used to
// push transcript lines to dashboard clients.
func (l *VoiceLog) OnAppend(fn func(Entry)) {
	l.mu.Lock()
	l.onAppend = fn
	l.mu.Unlock()
}

// AppendUser records a pilot utterance.
func (l *VoiceLog) AppendUser(text string) Entry {
	return l.append(text, EntryUser)
}

// AppendSystem records a system reply.
func (l *VoiceLog) AppendSystem(text string) Entry {
	return l.append(text, EntrySystem)
}

func (l *VoiceLog) append(text string, typ EntryType) Entry {
	entry := Entry{
		ID:        uuid.NewString(),
		Text:      text,
		Type:      typ,
		Timestamp: time.Now().UTC(),
	}
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	fn := l.onAppend
	l.mu.Unlock()
	if fn != nil {
		fn(entry)
	}
	return entry
}

// Entries returns a copy of the transcript in arrival order.
func (l *VoiceLog) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// LastSystem returns the most recent system entry, if any.
func (l *VoiceLog) LastSystem() (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].Type == EntrySystem {
			return l.entries[i], true
		}
	}
	return Entry{}, false
}
