// Package main is the entry point for the ZENGEN bot console.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Bluenot3/ZENGEN/internal/bot"
	"github.com/Bluenot3/ZENGEN/internal/chat"
	"github.com/Bluenot3/ZENGEN/internal/config"
	"github.com/Bluenot3/ZENGEN/internal/image"
	"github.com/Bluenot3/ZENGEN/internal/memory"
	"github.com/Bluenot3/ZENGEN/internal/observability"
	"github.com/Bluenot3/ZENGEN/internal/provider"
	"github.com/Bluenot3/ZENGEN/internal/provider/providers"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	botName := flag.String("name", "ZEN AI Bot", "bot name")
	flag.Parse()

	// Initialize structured logger
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(slogger)

	slogger.Info("starting ZENGEN", "version", "0.1.0")

	// Load configuration; fall back to built-in defaults when the file is
	// absent so the console works out of the box.
	var cfgManager *config.Manager
	cfg := config.DefaultConfig()
	if m, err := config.NewManager(*configPath, slogger); err != nil {
		slogger.Warn("using default configuration", "error", err)
	} else {
		cfgManager = m
		cfg = m.Get()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := observability.NewLogger(observability.LoggerConfig{
		Level:      parseLevel(cfg.Logging.Level),
		Output:     os.Stdout,
		JSONFormat: cfg.Logging.Format == "json",
	}, observability.NewRedactor())

	// Initialize provider registry from the model catalog
	registry, err := providers.NewRegistry(cfg.Profiles())
	if err != nil {
		logger.Error("failed to build provider registry", "error", err)
		os.Exit(1)
	}

	// Hot-reload swaps the model catalog; a catalog the registry rejects
	// vetoes the whole reload.
	if cfgManager != nil {
		cfgManager.OnReload(func(c *config.Config) error {
			return registry.Reload(c.Profiles())
		})
		if err := cfgManager.Watch(ctx); err != nil {
			logger.Warn("config hot-reload disabled", "error", err)
		}
		defer cfgManager.Close()
	}

	// Metrics endpoint
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("GET "+cfg.Metrics.Path, promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	engine := memory.NewEngine()
	orch := chat.New(registry, engine, logger)
	generator := image.NewGenerator(logger,
		image.WithStyleVersions(cfg.Image.Styles),
		image.WithPolling(cfg.Image.PollInterval, cfg.Image.PollTimeout),
	)

	b := bot.New(*botName, registry,
		bot.WithModel(cfg.Defaults.Model),
		bot.WithMaxMemoryTokens(cfg.Defaults.MaxMemoryTokens),
	)
	loadCredentials(b)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		cancel()
		os.Exit(0)
	}()

	runConsole(ctx, b, orch, generator, registry, logger)
}

// loadCredentials seeds the bot's provider keys from the environment.
func loadCredentials(b *bot.Bot) {
	for kind, env := range map[provider.Kind]string{
		provider.KindOpenAI:     "OPENAI_API_KEY",
		provider.KindAnthropic:  "ANTHROPIC_API_KEY",
		provider.KindCohere:     "COHERE_API_KEY",
		provider.KindOpenRouter: "OPENROUTER_API_KEY",
		provider.KindReplicate:  "REPLICATE_API_TOKEN",
	} {
		if v := os.Getenv(env); v != "" {
			b.SetCredential(kind, v)
		}
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// runConsole reads user turns from stdin until EOF or /quit. Slash commands
// manage the bot; everything else is a chat turn.
func runConsole(ctx context.Context, b *bot.Bot, orch *chat.Orchestrator, generator *image.Generator, registry *provider.Registry, logger *observability.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Printf("%s ready. Type a message, or /help for commands.\n", b.Name())

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := runCommand(ctx, line, b, orch, generator, registry); quit {
				return
			}
			continue
		}

		reply, err := orch.SubmitTurn(ctx, b, line)
		if err != nil {
			fmt.Println(chat.FallbackContent)
			continue
		}
		fmt.Println(reply.Content)
	}

	if err := scanner.Err(); err != nil {
		logger.Error("input error", "error", err)
	}
	orch.EndConversation(b)
}

func runCommand(ctx context.Context, line string, b *bot.Bot, orch *chat.Orchestrator, generator *image.Generator, registry *provider.Registry) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit":
		orch.EndConversation(b)
		return true

	case "/end":
		orch.EndConversation(b)
		fmt.Println("conversation stored")

	case "/usage":
		s := orch.UsageSummary(b)
		fmt.Printf("total units: %d  total cost: $%.4f  events: %d\n",
			s.TotalUnits, s.TotalCost, len(s.History))

	case "/models":
		fmt.Println(strings.Join(registry.Models(), ", "))

	case "/model":
		if len(fields) < 2 {
			fmt.Printf("current model: %s\n", b.Model())
			return false
		}
		if err := b.UpdateModelSettings(fields[1], b.Temperature(), b.MaxTokens()); err != nil {
			fmt.Println(err)
			return false
		}
		fmt.Printf("model set to %s\n", fields[1])

	case "/key":
		if len(fields) < 3 {
			fmt.Println("usage: /key <provider> <api-key>")
			return false
		}
		b.SetCredential(provider.Kind(fields[1]), fields[2])
		fmt.Printf("credential stored for %s\n", fields[1])

	case "/learn":
		if len(fields) < 2 {
			fmt.Printf("learning enabled: %v\n", b.Memory().Enabled())
			return false
		}
		on, err := strconv.ParseBool(fields[1])
		if err != nil {
			fmt.Println("usage: /learn true|false")
			return false
		}
		b.Memory().SetEnabled(on)
		fmt.Printf("learning enabled: %v\n", on)

	case "/image":
		if len(fields) < 2 {
			fmt.Println("usage: /image <prompt...>")
			return false
		}
		url, err := generator.Generate(ctx, b, image.Request{
			Prompt: strings.Join(fields[1:], " "),
			Style:  "realistic",
		})
		if err != nil {
			fmt.Println(err)
			return false
		}
		fmt.Println(url)

	case "/help":
		fmt.Println("/model [id]  /models  /key <provider> <key>  /learn [bool]  /image <prompt>  /usage  /end  /quit")

	default:
		fmt.Println("unknown command, try /help")
	}
	return false
}
