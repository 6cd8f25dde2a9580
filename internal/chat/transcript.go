package chat

import (
	"sync"

	"github.com/google/uuid"
)

// Observer is notified of every transcript change, in order.
type Observer func(Event)

// Transcript is the ordered list of messages shown in a chat window.
type Transcript struct {
	mu        sync.Mutex
	messages  []Message
	observers []Observer
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Subscribe registers an observer.
func (t *Transcript) Subscribe(o Observer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, o)
}

// Append adds msg at the end, assigning an ID when it has none.
func (t *Transcript) Append(msg Message) Message {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}

	t.mu.Lock()
	t.messages = append(t.messages, msg)
	observers := append([]Observer(nil), t.observers...)
	t.mu.Unlock()

	notify(observers, Event{Kind: EventAdded, Message: msg})
	return msg
}

// Remove deletes the message with the given ID. It reports whether a
// message was removed.
func (t *Transcript) Remove(id string) bool {
	t.mu.Lock()
	idx := -1
	for i, m := range t.messages {
		if m.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.mu.Unlock()
		return false
	}
	removed := t.messages[idx]
	t.messages = append(t.messages[:idx], t.messages[idx+1:]...)
	observers := append([]Observer(nil), t.observers...)
	t.mu.Unlock()

	notify(observers, Event{Kind: EventRemoved, Message: removed})
	return true
}

// Messages returns a copy of the current messages.
func (t *Transcript) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

func notify(observers []Observer, ev Event) {
	for _, o := range observers {
		o(ev)
	}
}
