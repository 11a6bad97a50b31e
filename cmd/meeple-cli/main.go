package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"meeple-cli/internal/agent"
	anthropicmodel "meeple-cli/internal/agent/anthropic"
	openaimodel "meeple-cli/internal/agent/openai"
	"meeple-cli/internal/config"
	"meeple-cli/internal/engine"
	"meeple-cli/internal/history"
	"meeple-cli/internal/logger"
	"meeple-cli/internal/prompts"
	"meeple-cli/internal/scenario"
	"meeple-cli/internal/search"
	"meeple-cli/internal/session"
	"meeple-cli/internal/store"
	"meeple-cli/internal/tools"
	"meeple-cli/internal/tui"
)

var log = logger.Named("main")

func main() {
	_ = godotenv.Load()
	logger.Configure()

	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "serve":
			serveMain(args[1:])
			return
		case "init-db":
			initDBMain(args[1:])
			return
		}
	}

	runInteractive(args)
}

func runInteractive(args []string) {
	fs, cli := newFlagSet("meeple-cli")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parse args: %v", err)
	}
	cli.finalizePrompt(fs)

	app, cleanup := mustApp(cli)
	defer cleanup()

	if cli.prompt != "" {
		askOnce(app, cli.prompt)
		return
	}

	conversation := history.New(history.DefaultMaxPairs)
	sessionID := ""
	if cli.resumeLast {
		rec, err := session.Last()
		if err != nil {
			log.Warnf("nothing to resume: %v", err)
		} else {
			sessionID = rec.ID
			seedHistory(conversation, rec.Messages)
		}
	}

	err := tui.Run(tui.Options{
		NewRunner: app.newRunner,
		History:   conversation,
		Schema:    store.SchemaDescription(),
	})
	if err != nil {
		log.Fatalf("program exit: %v", err)
	}

	if msgs := conversation.Messages(); len(msgs) > 0 {
		savedID, err := session.Save(sessionID, msgs)
		if err != nil {
			log.Warnf("failed to save session: %v", err)
			return
		}
		fmt.Printf("To continue this conversation, run meeple-cli -resume (session %s)\n", savedID)
	}
}

// seedHistory replays saved user/assistant pairs into the bounded log so
// trimming rules apply uniformly.
func seedHistory(l *history.Log, msgs []agent.Message) {
	for i := 0; i+1 < len(msgs); i += 2 {
		if msgs[i].Role == agent.RoleUser && msgs[i+1].Role == agent.RoleAssistant {
			l.AddPair(msgs[i].Content, msgs[i+1].Content)
		}
	}
}

// askOnce answers a single question, streaming progress to stderr and the
// answer to stdout.
func askOnce(app *app, question string) {
	runner := app.newRunner(func(event engine.Event, tool, detail string) {
		if tool != "" {
			fmt.Fprintf(os.Stderr, "  [%s] %s: %s\n", event, tool, detail)
			return
		}
		fmt.Fprintf(os.Stderr, "  [%s] %s\n", event, detail)
	})
	answer, err := runner.Run(context.Background(), question, nil)
	if err != nil {
		log.Fatalf("ask failed: %v", err)
	}
	fmt.Println(answer)
}

func initDBMain(args []string) {
	fs, cli := newFlagSet("meeple-cli init-db")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parse args: %v", err)
	}
	cfg := mustConfig(cli)

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer st.Close()
	if err := st.Init(context.Background()); err != nil {
		log.Fatalf("initialize database: %v", err)
	}
	fmt.Printf("Database initialized at %s\n", cfg.DBPath)
}

// app holds the shared pieces every runner needs.
type app struct {
	cfg      config.Config
	store    *store.Store
	client   agent.ModelClient
	index    *search.Index
	scenario *scenario.Runner
	system   string
}

func mustApp(cli *cliArgs) (*app, func()) {
	cfg := mustConfig(cli)

	if closer, path, err := logger.SetupFile(logPath(cfg)); err != nil {
		log.Warnf("failed to initialize log file: %v", err)
	} else {
		log.WithField("path", path).Debug("log file ready")
		// Closed on process exit.
		_ = closer
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	ctx := context.Background()
	ok, err := st.Initialized(ctx)
	if err != nil {
		log.Fatalf("inspect database: %v", err)
	}
	if !ok {
		if err := st.Init(ctx); err != nil {
			log.Fatalf("initialize database: %v", err)
		}
		log.Infof("seeded new database at %s", cfg.DBPath)
	}

	embedder := buildEmbedder(cfg)

	a := &app{
		cfg:      cfg,
		store:    st,
		client:   buildModelClient(cfg),
		index:    search.NewIndex(st, embedder),
		scenario: scenario.NewRunner(st),
		system:   prompts.System(store.SchemaDescription(), time.Now()),
	}
	return a, func() { st.Close() }
}

func (a *app) newRunner(onProgress engine.ProgressFunc) *engine.Runner {
	return &engine.Runner{
		Client: a.client,
		Dispatcher: &tools.Dispatcher{
			DB:       a.store,
			Search:   a.index,
			Scenario: a.scenario,
		},
		System:         a.system,
		Model:          a.cfg.Model,
		MaxTurns:       a.cfg.MaxTurns,
		MaxRetries:     a.cfg.MaxRetries,
		RequestTimeout: a.cfg.RequestTimeout(),
		OnProgress:     onProgress,
	}
}

func mustConfig(cli *cliArgs) config.Config {
	cfg, err := config.Load(cli.cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg = config.ApplyKVOverrides(cfg, []string(cli.configOverrides))
	if m := strings.TrimSpace(cli.modelOverride); m != "" {
		cfg.Model = m
	}
	return cfg
}

func logPath(cfg config.Config) string {
	if cfg.LogPath != "" {
		return cfg.LogPath
	}
	return logger.DefaultLogPath
}

// buildEmbedder picks the semantic-search engine. With no embedding
// config the index falls back to fuzzy matching.
func buildEmbedder(cfg config.Config) search.Embedder {
	if cfg.Embedding.Endpoint == "" && cfg.Embedding.Model == "" {
		return nil
	}
	if cfg.Backend == config.BackendOpenAI && cfg.Embedding.Endpoint == "" {
		embedder, err := search.NewOpenAIEmbedder(cfg.Token, "", cfg.Embedding.Model)
		if err != nil {
			log.Warnf("embeddings disabled: %v", err)
			return nil
		}
		return embedder
	}
	return search.NewOllamaEmbedder(cfg.Embedding.Endpoint, cfg.Embedding.Model)
}

func buildModelClient(cfg config.Config) agent.ModelClient {
	switch cfg.Backend {
	case config.BackendAnthropic:
		client, err := anthropicmodel.New(anthropicmodel.Options{
			Token:   cfg.Token,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
		if err != nil {
			log.Fatalf("failed to init anthropic client: %v", err)
		}
		return client
	case config.BackendOpenAI:
		client, err := openaimodel.New(openaimodel.Options{
			APIKey:  cfg.Token,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
		if err != nil {
			log.Fatalf("failed to init openai client: %v", err)
		}
		return client
	case config.BackendOllama:
		// Ollama speaks the OpenAI chat API under /v1.
		client, err := openaimodel.New(openaimodel.Options{
			APIKey:  "ollama",
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
		if err != nil {
			log.Fatalf("failed to init ollama client: %v", err)
		}
		return client
	}
	log.Fatalf("unknown backend %q (expected anthropic, openai, or ollama)", cfg.Backend)
	return nil
}
