// Package chat drives a single conversation turn end to end: credential
// resolution, provider-specific request assembly, dispatch, response
// normalization, and usage accounting. One turn is in flight per
// conversation; the caller serializes submissions.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Bluenot3/ZENGEN/internal/bot"
	"github.com/Bluenot3/ZENGEN/internal/memory"
	"github.com/Bluenot3/ZENGEN/internal/metrics"
	"github.com/Bluenot3/ZENGEN/internal/observability"
	"github.com/Bluenot3/ZENGEN/internal/provider"
	"github.com/Bluenot3/ZENGEN/internal/usage"
	llmerrors "github.com/Bluenot3/ZENGEN/pkg/errors"
	"github.com/Bluenot3/ZENGEN/pkg/types"
)

// FallbackContent is the assistant message appended when a turn fails.
// The user's message stays recorded; conversation state is not rolled back.
const FallbackContent = "Sorry, I encountered an error. Please try again."

// Doer issues HTTP requests. *http.Client satisfies it; tests substitute
// a spy.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Orchestrator executes chat turns against the configured providers.
type Orchestrator struct {
	registry *provider.Registry
	engine   *memory.Engine
	logger   *observability.Logger
	client   Doer
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithHTTPClient overrides the HTTP transport.
func WithHTTPClient(client Doer) Option {
	return func(o *Orchestrator) { o.client = client }
}

// New creates an orchestrator.
func New(registry *provider.Registry, engine *memory.Engine, logger *observability.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: registry,
		engine:   engine,
		logger:   logger,
		client:   &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SubmitTurn runs one conversation turn: it validates the model and
// credential, appends the user message, dispatches the provider request,
// and appends the normalized assistant reply. On provider or transport
// failure the caller gets a typed error and the conversation gets a
// fallback assistant message. No retries are performed.
func (o *Orchestrator) SubmitTurn(ctx context.Context, b *bot.Bot, userText string) (types.Message, error) {
	model := b.Model()
	start := time.Now()

	profile, err := o.registry.Resolve(model)
	if err != nil {
		metrics.ObserveTurn(model, "", time.Since(start), llmerrors.TypeUnsupportedModel)
		return types.Message{}, err
	}

	key, ok := b.Credential(profile.Kind)
	if !ok {
		metrics.ObserveTurn(model, string(profile.Kind), time.Since(start), llmerrors.TypeMissingCredential)
		return types.Message{}, llmerrors.NewMissingCredentialError(string(profile.Kind), model)
	}

	adapter, ok := o.registry.Adapter(profile.Kind)
	if !ok {
		// Registration guarantees an adapter per profile kind.
		return types.Message{}, llmerrors.NewUnsupportedModelError(model)
	}

	userIndex := b.AppendMessage(types.Message{Role: types.RoleUser, Content: userText})

	messages := append([]types.Message{o.systemMessage(b, userText)}, b.History()...)
	body, err := adapter.FormatBody(messages, provider.SamplingParams{
		Model:       model,
		MaxTokens:   b.MaxTokens(),
		Temperature: b.Temperature(),
	})
	if err != nil {
		return types.Message{}, o.fail(b, model, profile.Kind, start,
			llmerrors.NewProviderError(string(profile.Kind), model, 0, err.Error()))
	}

	req, err := adapter.BuildRequest(ctx, profile.Endpoint, key, body)
	if err != nil {
		return types.Message{}, o.fail(b, model, profile.Kind, start,
			llmerrors.NewTransportError(string(profile.Kind), model, err))
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return types.Message{}, o.fail(b, model, profile.Kind, start,
			llmerrors.NewTransportError(string(profile.Kind), model, err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.Message{}, o.fail(b, model, profile.Kind, start,
			llmerrors.NewTransportError(string(profile.Kind), model, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return types.Message{}, o.fail(b, model, profile.Kind, start,
			adapter.MapError(model, resp.StatusCode, respBody))
	}

	result, err := adapter.ParseResponse(respBody)
	if err != nil {
		return types.Message{}, o.fail(b, model, profile.Kind, start,
			llmerrors.NewProviderError(string(profile.Kind), model, resp.StatusCode, err.Error()))
	}

	assistant := result.Message
	if result.Usage != nil {
		in := b.Ledger().Record(model, result.Usage.PromptTokens, usage.KindInput)
		out := b.Ledger().Record(model, result.Usage.CompletionTokens, usage.KindOutput)
		metrics.ObserveUsage(model, string(usage.KindInput), in.Units, in.Cost)
		metrics.ObserveUsage(model, string(usage.KindOutput), out.Units, out.Cost)

		b.SetMessageTokens(userIndex, result.Usage.PromptTokens)
		assistant.Tokens = result.Usage.CompletionTokens
	}

	b.AppendMessage(assistant)
	metrics.ObserveTurn(model, string(profile.Kind), time.Since(start), "")
	o.logger.Info("turn completed",
		"bot", b.ID(),
		"model", model,
		"provider", string(profile.Kind),
	)
	return assistant, nil
}

// EndConversation finalizes the live transcript: the turn log is handed to
// the memory engine for summarization and storage, and the transcript is
// cleared for the next conversation.
func (o *Orchestrator) EndConversation(b *bot.Bot) {
	log := b.ResetConversation()
	if len(log) == 0 {
		return
	}
	o.engine.Record(b.Memory(), log)
}

// UsageSummary returns the bot's accumulated usage totals and history.
func (o *Orchestrator) UsageSummary(b *bot.Bot) usage.Summary {
	return b.Ledger().Summary()
}

// RelevantContext returns up to three stored memories ranked by relevance
// to the given text.
func (o *Orchestrator) RelevantContext(b *bot.Bot, text string) []memory.Conversation {
	return o.engine.RetrieveRelevant(b.Memory(), text)
}

// systemMessage synthesizes the system prompt embedding the bot's
// identity, training profile, custom instructions, and any stored
// memories relevant to the incoming message.
func (o *Orchestrator) systemMessage(b *bot.Bot, userText string) types.Message {
	training := b.Training()

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %s, an AI assistant with the following characteristics:\n", b.Name())
	fmt.Fprintf(&sb, "Personality: %s\n", training.Personality)
	fmt.Fprintf(&sb, "Tone: %s\n", training.Tone)
	fmt.Fprintf(&sb, "Expertise: %s\n", strings.Join(training.Expertise, ", "))
	sb.WriteString(b.CustomInstructions())

	if relevant := o.engine.RetrieveRelevant(b.Memory(), userText); len(relevant) > 0 {
		sb.WriteString("\nRelevant past conversations:\n")
		for _, mem := range relevant {
			fmt.Fprintf(&sb, "- %s\n", mem.Summary)
		}
	}

	return types.Message{Role: types.RoleSystem, Content: sb.String()}
}

// fail appends the fallback assistant message, records metrics, logs the
// failure, and returns the typed error for the caller.
func (o *Orchestrator) fail(b *bot.Bot, model string, kind provider.Kind, start time.Time, err error) error {
	b.AppendMessage(types.Message{Role: types.RoleAssistant, Content: FallbackContent})

	errType := llmerrors.TypeProvider
	var be *llmerrors.BotError
	if errors.As(err, &be) {
		errType = be.Type
	}
	metrics.ObserveTurn(model, string(kind), time.Since(start), errType)
	o.logger.RedactedError("turn failed",
		"bot", b.ID(),
		"model", model,
		"provider", string(kind),
		"error", err,
	)
	return err
}
