// Package memory implements the conversation-memory engine: deterministic
// summarization, topic extraction, sentiment classification, a bounded
// FIFO memory store, and relevance-ranked retrieval. Everything here is a
// pure transform over stored text; no model calls are made.
package memory

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Bluenot3/ZENGEN/pkg/types"
)

// maxTopics bounds the number of extracted topics per conversation.
const maxTopics = 5

// maxRelevant bounds the number of memories returned for a query.
const maxRelevant = 3

// wordPattern tokenizes text on non-word-character boundaries.
var wordPattern = regexp.MustCompile(`\w+`)

// stopWords are excluded from topic extraction.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {},
}

// positiveWords and negativeWords are the fixed sentiment keyword sets.
// Matching is by substring, so a keyword inside a longer word counts.
var (
	positiveWords = []string{"great", "good", "excellent", "amazing", "wonderful", "happy", "thanks"}
	negativeWords = []string{"bad", "poor", "terrible", "awful", "unhappy", "wrong", "error"}
)

// Engine derives memories from finished conversations and retrieves them
// for new messages.
type Engine struct {
	now   func() time.Time
	newID func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDSource overrides the memory ID generator, for tests.
func WithIDSource(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// NewEngine creates a memory engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Summarize builds a fixed-template description of a conversation from the
// user and assistant turns.
func (e *Engine) Summarize(messages []types.Message) string {
	var userParts, botParts []string
	for _, m := range messages {
		switch m.Role {
		case types.RoleUser:
			userParts = append(userParts, m.Content)
		case types.RoleAssistant:
			botParts = append(botParts, m.Content)
		}
	}
	return fmt.Sprintf("User discussed: %s. Bot responded with: %s",
		strings.Join(userParts, ", "), strings.Join(botParts, ", "))
}

// ExtractTopics returns up to five terms ranked by descending frequency,
// ties broken by first occurrence. Tokens of length three or less and
// stop words are discarded.
func (e *Engine) ExtractTopics(messages []types.Message) []string {
	var parts []string
	for _, m := range messages {
		parts = append(parts, m.Content)
	}
	words := wordPattern.FindAllString(strings.ToLower(strings.Join(parts, " ")), -1)

	counts := make(map[string]int)
	var order []string
	for _, w := range words {
		if len(w) <= 3 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		if _, seen := counts[w]; !seen {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > maxTopics {
		order = order[:maxTopics]
	}
	return order
}

// ClassifySentiment counts occurrences of the fixed keyword sets in the
// concatenated conversation text and returns the dominant polarity, or
// neutral on a tie.
func (e *Engine) ClassifySentiment(messages []types.Message) Sentiment {
	var parts []string
	for _, m := range messages {
		parts = append(parts, m.Content)
	}
	text := strings.ToLower(strings.Join(parts, " "))

	positive, negative := 0, 0
	for _, w := range positiveWords {
		positive += strings.Count(text, w)
	}
	for _, w := range negativeWords {
		negative += strings.Count(text, w)
	}

	switch {
	case positive > negative:
		return SentimentPositive
	case negative > positive:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// Record derives a memory from a finished conversation and stores it.
// No-op unless learning is enabled on the store. After appending, the
// store enforces its token budget by FIFO eviction, always retaining at
// least one entry.
func (e *Engine) Record(store *Store, messages []types.Message) {
	if store == nil || !store.Enabled() || len(messages) == 0 {
		return
	}

	conv := make([]types.Message, len(messages))
	copy(conv, messages)

	store.add(Conversation{
		ID:        e.newID(),
		Timestamp: e.now(),
		Messages:  conv,
		Summary:   e.Summarize(messages),
		Topics:    e.ExtractTopics(messages),
		Sentiment: e.ClassifySentiment(messages),
	})
}

// RetrieveRelevant scores stored memories against a query by counting how
// many query tokens appear as substrings of each memory's summary,
// discards zero-score memories, and returns up to three ranked by
// descending score. Equal scores preserve insertion order.
func (e *Engine) RetrieveRelevant(store *Store, query string) []Conversation {
	if store == nil || !store.Enabled() {
		return nil
	}

	keywords := wordPattern.FindAllString(strings.ToLower(query), -1)
	if len(keywords) == 0 {
		return nil
	}

	type scored struct {
		conv  Conversation
		score int
	}
	var matches []scored
	for _, mem := range store.List() {
		summary := strings.ToLower(mem.Summary)
		score := 0
		for _, kw := range keywords {
			if strings.Contains(summary, kw) {
				score++
			}
		}
		if score > 0 {
			matches = append(matches, scored{conv: mem, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	if len(matches) > maxRelevant {
		matches = matches[:maxRelevant]
	}

	out := make([]Conversation, len(matches))
	for i, m := range matches {
		out[i] = m.conv
	}
	return out
}
