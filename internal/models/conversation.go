package models

import (
	"sync"
	"time"
)

// MemoryWindow is the number of past turns a session retains.
const MemoryWindow = 10

// ConversationTurn is one completed question/answer exchange.
type ConversationTurn struct {
	Question string
	Answer   string
	AskedAt  time.Time
}

// ConversationMemory is a fixed-capacity FIFO ring over the most recent
// turns of a single session. Once the window is full, appending evicts the
// single oldest turn. Eviction follows insertion order, never access order.
type ConversationMemory struct {
	mu    sync.Mutex
	turns []ConversationTurn
	head  int // index of the oldest turn
	size  int
}

func NewConversationMemory() *ConversationMemory {
	return &ConversationMemory{
		turns: make([]ConversationTurn, MemoryWindow),
	}
}

// Append records a completed turn.
func (m *ConversationMemory) Append(turn ConversationTurn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.size < len(m.turns) {
		m.turns[(m.head+m.size)%len(m.turns)] = turn
		m.size++
		return
	}
	m.turns[m.head] = turn
	m.head = (m.head + 1) % len(m.turns)
}

// Snapshot returns the retained turns oldest first. The slice is detached
// from internal storage.
func (m *ConversationMemory) Snapshot() []ConversationTurn {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]ConversationTurn, m.size)
	for i := 0; i < m.size; i++ {
		out[i] = m.turns[(m.head+i)%len(m.turns)]
	}
	return out
}

// Clear drops all retained turns.
func (m *ConversationMemory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.head = 0
	m.size = 0
}

// Len reports the number of retained turns.
func (m *ConversationMemory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size
}

// Cap reports the window size.
func (m *ConversationMemory) Cap() int {
	return len(m.turns)
}
