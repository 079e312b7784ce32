package memory

import (
	"sync"
	"time"

	"github.com/Bluenot3/ZENGEN/pkg/types"
)

// Sentiment classifies the overall tone of a finished conversation.
type Sentiment string

// Sentiment values.
const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Conversation is one stored long-term memory: the full message sequence
// that produced it plus the derived summary, topics, and sentiment.
// Created only when learning is enabled and a conversation is finalized.
type Conversation struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Messages  []types.Message `json:"conversation"`
	Summary   string          `json:"summary"`
	Topics    []string        `json:"topics"`
	Sentiment Sentiment       `json:"sentiment"`
}

// Tokens returns the accounted token footprint of the stored conversation.
func (c Conversation) Tokens() int {
	return types.TotalTokens(c.Messages)
}

// Store is a bot's bounded long-term memory log. Entries are ordered
// oldest first; eviction is FIFO and never removes the last remaining
// entry even if that leaves the budget exceeded.
type Store struct {
	mu        sync.Mutex
	enabled   bool
	maxTokens int
	entries   []Conversation
}

// NewStore creates a memory store with the given token budget.
// Learning starts disabled.
func NewStore(maxTokens int) *Store {
	return &Store{maxTokens: maxTokens}
}

// Enabled reports whether learning is on.
func (s *Store) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// SetEnabled toggles learning.
func (s *Store) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
}

// SetMaxTokens updates the token budget. The new budget applies on the
// next Record; existing entries are not pruned eagerly.
func (s *Store) SetMaxTokens(maxTokens int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxTokens = maxTokens
}

// List returns a copy of the stored memories, oldest first.
func (s *Store) List() []Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Conversation, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of stored memories.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// TotalTokens returns the accounted token footprint across all entries.
func (s *Store) TotalTokens() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalTokensLocked()
}

// Delete removes a memory by ID. Returns false if no entry matched.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return true
		}
	}
	return false
}

// add appends a memory and enforces the token budget: evict oldest first,
// one at a time, but always retain at least one entry.
func (s *Store) add(c Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, c)
	for s.totalTokensLocked() > s.maxTokens && len(s.entries) > 1 {
		s.entries = s.entries[1:]
	}
}

func (s *Store) totalTokensLocked() int {
	total := 0
	for _, e := range s.entries {
		total += e.Tokens()
	}
	return total
}
