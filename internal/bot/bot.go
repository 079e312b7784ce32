// Package bot defines the Bot aggregate: identity plus per-subsystem
// configuration (appearance, training, knowledge, usage). A bot is created
// with defaults and mutated in place for the application's lifetime; all
// mutation goes through update methods so invariants hold at the boundary.
package bot

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Bluenot3/ZENGEN/internal/memory"
	"github.com/Bluenot3/ZENGEN/internal/provider"
	"github.com/Bluenot3/ZENGEN/internal/usage"
	"github.com/Bluenot3/ZENGEN/pkg/types"
)

// Tone is the configured speaking register for a bot.
type Tone string

// Supported tones.
const (
	ToneProfessional Tone = "professional"
	ToneCasual       Tone = "casual"
	ToneFriendly     Tone = "friendly"
	ToneTechnical    Tone = "technical"
)

// ResponseLength is the configured verbosity preference.
type ResponseLength string

// Supported response lengths.
const (
	LengthConcise  ResponseLength = "concise"
	LengthBalanced ResponseLength = "balanced"
	LengthDetailed ResponseLength = "detailed"
)

// Appearance holds the chat window styling configuration. The core never
// interprets these values; they exist for the editor screens.
type Appearance struct {
	PrimaryColor           string `json:"primaryColor"`
	SecondaryColor         string `json:"secondaryColor"`
	Font                   string `json:"font"`
	BorderRadius           string `json:"borderRadius"`
	Theme                  string `json:"theme"`
	ChatBubbleStyle        string `json:"chatBubbleStyle"`
	AvatarStyle            string `json:"avatarStyle"`
	ShowTimestamps         bool   `json:"showTimestamps"`
	EnableMarkdown         bool   `json:"enableMarkdown"`
	EnableCodeHighlighting bool   `json:"enableCodeHighlighting"`
}

// Training holds the personality configuration embedded into the system
// prompt of every turn.
type Training struct {
	Personality    string         `json:"personality"`
	Tone           Tone           `json:"tone"`
	Expertise      []string       `json:"expertise"`
	ContextWindow  int            `json:"contextWindow"`
	ResponseLength ResponseLength `json:"responseLength"`
}

// Document is an uploaded knowledge-base document.
type Document struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

// Knowledge holds the knowledge-base configuration including the bot's
// long-term conversation memory.
type Knowledge struct {
	Documents          []Document `json:"documents"`
	WebsiteURLs        []string   `json:"websiteUrls"`
	CustomInstructions string     `json:"customInstructions"`
	Memory             *memory.Store
}

// DefaultMaxMemoryTokens is the default conversation-memory token budget.
const DefaultMaxMemoryTokens = 10000

// Bot is the aggregate root for one configured chatbot. It owns exactly
// one usage ledger and one memory store.
type Bot struct {
	mu sync.Mutex

	id     string
	name   string
	avatar string

	model       string
	temperature float64
	maxTokens   int

	apiKeys    map[provider.Kind]string
	appearance Appearance
	training   Training
	knowledge  Knowledge

	ledger     *usage.Ledger
	transcript []types.Message
}

// Option configures a bot at construction time.
type Option func(*Bot)

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(b *Bot) { b.model = model }
}

// WithMaxMemoryTokens overrides the default memory budget.
func WithMaxMemoryTokens(n int) Option {
	return func(b *Bot) { b.knowledge.Memory.SetMaxTokens(n) }
}

// New creates a bot with the default configuration. The rate source prices
// the bot's usage ledger, normally the provider registry.
func New(name string, rates usage.RateSource, opts ...Option) *Bot {
	b := &Bot{
		id:          uuid.NewString(),
		name:        name,
		avatar:      "https://images.unsplash.com/photo-1675252271887-339c521bf7f7?q=80&w=200&auto=format&fit=crop",
		model:       "gpt-3.5-turbo",
		temperature: 0.7,
		maxTokens:   2000,
		apiKeys:     make(map[provider.Kind]string),
		appearance: Appearance{
			PrimaryColor:    "#6366f1",
			SecondaryColor:  "#4f46e5",
			Font:            "Inter",
			BorderRadius:    "12px",
			Theme:           "dark",
			ChatBubbleStyle: "modern",
			AvatarStyle:     "circle",
		},
		training: Training{
			Tone:           ToneProfessional,
			Expertise:      []string{"General Knowledge"},
			ContextWindow:  4096,
			ResponseLength: LengthBalanced,
		},
		knowledge: Knowledge{
			Memory: memory.NewStore(DefaultMaxMemoryTokens),
		},
		ledger: usage.NewLedger(rates),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ID returns the bot identifier.
func (b *Bot) ID() string { return b.id }

// Name returns the bot's display name.
func (b *Bot) Name() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.name
}

// Avatar returns the avatar URL.
func (b *Bot) Avatar() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.avatar
}

// Model returns the configured model identifier.
func (b *Bot) Model() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.model
}

// Temperature returns the configured sampling temperature.
func (b *Bot) Temperature() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.temperature
}

// MaxTokens returns the configured response token cap.
func (b *Bot) MaxTokens() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.maxTokens
}

// Ledger returns the bot's usage ledger.
func (b *Bot) Ledger() *usage.Ledger { return b.ledger }

// Memory returns the bot's conversation-memory store.
func (b *Bot) Memory() *memory.Store { return b.knowledge.Memory }

// Training returns a copy of the training configuration.
func (b *Bot) Training() Training {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := b.training
	t.Expertise = append([]string(nil), b.training.Expertise...)
	return t
}

// Appearance returns a copy of the appearance configuration.
func (b *Bot) Appearance() Appearance {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.appearance
}

// CustomInstructions returns the knowledge-base custom instructions.
func (b *Bot) CustomInstructions() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.knowledge.CustomInstructions
}

// Credential returns the stored API key for a provider kind. Empty keys
// count as absent.
func (b *Bot) Credential(kind provider.Kind) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key, ok := b.apiKeys[kind]
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

// SetCredential stores the API key for a provider kind.
func (b *Bot) SetCredential(kind provider.Kind, secret string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.apiKeys[kind] = secret
}

// Rename updates the bot's display name.
func (b *Bot) Rename(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.name = name
}

// SetAvatar updates the avatar URL.
func (b *Bot) SetAvatar(url string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.avatar = url
}

// UpdateModelSettings validates and applies the model, temperature, and
// response token cap in one step.
func (b *Bot) UpdateModelSettings(model string, temperature float64, maxTokens int) error {
	if model == "" {
		return fmt.Errorf("model is required")
	}
	if temperature < 0 || temperature > 2 {
		return fmt.Errorf("temperature must be between 0.0 and 2.0, got %v", temperature)
	}
	if maxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", maxTokens)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.model = model
	b.temperature = temperature
	b.maxTokens = maxTokens
	return nil
}

// UpdateTraining validates and replaces the training configuration.
func (b *Bot) UpdateTraining(t Training) error {
	switch t.Tone {
	case ToneProfessional, ToneCasual, ToneFriendly, ToneTechnical:
	default:
		return fmt.Errorf("unknown tone %q", t.Tone)
	}
	switch t.ResponseLength {
	case LengthConcise, LengthBalanced, LengthDetailed:
	default:
		return fmt.Errorf("unknown response length %q", t.ResponseLength)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.training = t
	return nil
}

// UpdateAppearance replaces the appearance configuration.
func (b *Bot) UpdateAppearance(a Appearance) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.appearance = a
}

// SetCustomInstructions updates the knowledge-base instructions embedded
// into the system prompt.
func (b *Bot) SetCustomInstructions(instructions string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.knowledge.CustomInstructions = instructions
}

// AddDocument appends a knowledge-base document.
func (b *Bot) AddDocument(name, content, docType string) Document {
	b.mu.Lock()
	defer b.mu.Unlock()
	doc := Document{ID: uuid.NewString(), Name: name, Content: content, Type: docType}
	b.knowledge.Documents = append(b.knowledge.Documents, doc)
	return doc
}

// AddWebsiteURL appends a knowledge-base website URL.
func (b *Bot) AddWebsiteURL(url string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.knowledge.WebsiteURLs = append(b.knowledge.WebsiteURLs, url)
}

// AppendMessage appends a message to the live transcript and returns its
// index. Insertion order is conversation order.
func (b *Bot) AppendMessage(msg types.Message) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transcript = append(b.transcript, msg)
	return len(b.transcript) - 1
}

// SetMessageTokens records the accounted token count on a transcript
// message once a provider reports usage.
func (b *Bot) SetMessageTokens(index, tokens int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index >= 0 && index < len(b.transcript) {
		b.transcript[index].Tokens = tokens
	}
}

// History returns a copy of the live transcript in conversation order.
func (b *Bot) History() []types.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]types.Message, len(b.transcript))
	copy(out, b.transcript)
	return out
}

// ResetConversation clears the live transcript and returns the turn log,
// so a finished conversation can be handed to the memory engine.
func (b *Bot) ResetConversation() []types.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	log := b.transcript
	b.transcript = nil
	return log
}
