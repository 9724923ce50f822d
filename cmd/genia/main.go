package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/adapter/apiclient"
	cfhttp "github.com/NeuroForge1/Genia-fronted-sub001/internal/adapter/http"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/adapter/litellm"
	cfmcp "github.com/NeuroForge1/Genia-fronted-sub001/internal/adapter/mcp"
	cfnats "github.com/NeuroForge1/Genia-fronted-sub001/internal/adapter/nats"
	cfopenai "github.com/NeuroForge1/Genia-fronted-sub001/internal/adapter/openai"
	cfotel "github.com/NeuroForge1/Genia-fronted-sub001/internal/adapter/otel"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/adapter/postgres"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/adapter/ristretto"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/adapter/ws"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/config"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/clone"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/logger"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/middleware"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/classifier"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/completion"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/messagequeue"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/resilience"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/secrets"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/service"
)

const version = "0.1.0"

func main() {
	var err error
	args := os.Args[1:]
	switch {
	case len(args) > 0 && args[0] == "admin":
		err = runAdmin(args[1:])
	case len(args) > 0 && args[0] == "migrate":
		err = runMigrate(args[1:])
	case len(args) > 0 && args[0] == "serve":
		err = run(args[1:])
	default:
		err = run(args)
	}
	if err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

// loadConfig parses CLI flags and loads the layered configuration.
func loadConfig(args []string) (*config.Config, error) {
	flags, err := config.ParseFlags(args)
	if err != nil {
		return nil, err
	}
	path := config.DefaultConfigFile
	if flags.ConfigPath != nil {
		path = *flags.ConfigPath
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyCLI(cfg, flags); err != nil {
		return nil, fmt.Errorf("cli flags: %w", err)
	}
	return cfg, nil
}

func run(args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser := logger.New(cfg.Logging)
	defer logCloser.Close()
	slog.SetDefault(log)

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"classifier", cfg.Classifier.Provider,
		"pg_max_conns", cfg.Postgres.MaxConns,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Observability ---

	otelShutdown, err := cfotel.Setup(ctx, cfg.OTEL)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("otel shutdown", "error", err)
		}
	}()

	metrics, err := cfotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("otel metrics: %w", err)
	}

	apiclient.ConfigureBreakers(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout)

	// --- Infrastructure ---

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	var queue messagequeue.Queue
	if cfg.NATS.URL != "" {
		q, err := cfnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() { _ = q.Close() }()
		queue = q

		cancelWatch, err := watchFailedTasks(ctx, q)
		if err != nil {
			return fmt.Errorf("nats subscribe: %w", err)
		}
		defer cancelWatch()
	} else {
		slog.Warn("nats disabled, task events will not be published")
	}

	l1, err := ristretto.New(cfg.Cache.L1MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer l1.Close()

	sealer, err := secrets.NewSealer(cfg.Connectors.CredentialsKey)
	if err != nil {
		return fmt.Errorf("credentials key: %w", err)
	}

	catalog, err := clone.LoadCatalog(cfg.Clones.Dir)
	if err != nil {
		return fmt.Errorf("clones: %w", err)
	}
	slog.Info("clone catalog loaded", "clones", len(catalog), "dir", cfg.Clones.Dir)

	// --- LLM backends ---

	cls, completer := buildLLM(cfg)

	// --- Services ---

	hub := ws.NewHub(originHosts(cfg.Server.CORSOrigin)...)
	defer hub.Close()

	store := postgres.NewStore(pool)
	factory := service.NewConnectorFactory(store, sealer, l1, cfg.Connectors)
	history := service.NewTaskHistoryService(store, queue, hub)

	dispatcher := service.NewDispatcher(factory,
		service.DefaultExtractors(cfg.Connectors.DefaultSocial, cfg.Connectors.DefaultEmail),
		history)
	dispatcher.SetFromName(cfg.Connectors.FromName)
	dispatcher.SetMetrics(metrics)

	analyzer := service.NewAnalyzer(cls)
	analyzer.SetMetrics(metrics)

	mcpSvc := service.NewMCPService(analyzer, dispatcher, completer, catalog)
	if queue != nil {
		mcpSvc.SetQueue(queue)
	}
	mcpSvc.SetBroadcaster(hub)
	mcpSvc.SetMetrics(metrics)

	// --- HTTP ---

	handlers := &cfhttp.Handlers{
		MCP:      mcpSvc,
		History:  history,
		Accounts: factory,
	}

	r := chi.NewRouter()

	r.Use(cfhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(cfhttp.SecurityHeaders)
	r.Use(cfotel.HTTPMiddleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID)
	r.Use(cfhttp.Logger)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	r.Get("/health", healthHandler(analyzer, queue))
	r.Get("/ws", hub.HandleWS)

	cfhttp.MountRoutes(r, handlers)

	if cfg.MCPServer.Enabled {
		mcpServer := cfmcp.NewServer(
			cfmcp.ServerConfig{Name: "genia-mcp", Version: version},
			cfmcp.ServerDeps{
				Router:   mcpSvc,
				Analyzer: analyzer,
				History:  history,
				Catalog:  catalog,
			},
		)
		r.Handle(cfg.MCPServer.Path, cfmcp.AuthMiddleware(cfg.MCPServer.APIKey, mcpServer.Handler(cfg.MCPServer.Path)))
		slog.Info("mcp server mounted", "path", cfg.MCPServer.Path, "auth", cfg.MCPServer.APIKey != "")
	}

	addr := ":" + cfg.Server.Port

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// buildLLM selects the intent classifier and the clone completer. Each
// backend shares one circuit breaker between both roles. The keyword
// provider disables LLM classification; the completer then falls back to
// LiteLLM when a URL is configured.
func buildLLM(cfg *config.Config) (classifier.Classifier, completion.Completer) {
	breaker := func(name string) *resilience.Breaker {
		return resilience.NewBreaker(name, cfg.Breaker.MaxFailures, cfg.Breaker.Timeout)
	}

	switch cfg.Classifier.Provider {
	case "openai":
		client := cfopenai.NewClient(cfopenai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Timeout: cfg.Classifier.Timeout,
		})
		client.SetBreaker(breaker("openai"))
		return cfopenai.NewClassifier(client, cfg.Classifier.Model, cfg.Classifier.MaxTokens),
			cfopenai.NewCompleter(client, cfg.Completion.Model, cfg.Completion.MaxTokens, cfg.Completion.Temperature)
	case "litellm":
		client := litellm.NewClient(cfg.LiteLLM.URL, cfg.LiteLLM.MasterKey, cfg.Classifier.Timeout)
		client.SetBreaker(breaker("litellm"))
		return litellm.NewClassifier(client, cfg.Classifier.Model, cfg.Classifier.MaxTokens),
			litellm.NewCompleter(client, cfg.Completion.Model, cfg.Completion.MaxTokens, cfg.Completion.Temperature)
	default:
		if cfg.LiteLLM.URL == "" {
			slog.Warn("no llm backend configured, clones answer with a placeholder")
			return nil, nil
		}
		client := litellm.NewClient(cfg.LiteLLM.URL, cfg.LiteLLM.MasterKey, cfg.Classifier.Timeout)
		client.SetBreaker(breaker("litellm"))
		return nil, litellm.NewCompleter(client, cfg.Completion.Model, cfg.Completion.MaxTokens, cfg.Completion.Temperature)
	}
}

// originHosts turns the CORS origin into websocket origin patterns, which
// match on host only. "*" allows any origin.
func originHosts(origin string) []string {
	if origin == "" || origin == "*" {
		return nil
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return []string{origin}
	}
	return []string{u.Host}
}

// watchFailedTasks logs every failed task event seen on the queue, including
// those published by other replicas.
func watchFailedTasks(ctx context.Context, q messagequeue.Queue) (func(), error) {
	subject := messagequeue.TaskStatusSubject("failed")
	return q.Subscribe(ctx, subject, func(ctx context.Context, _ string, data []byte) error {
		var ev messagequeue.TaskStatusPayload
		if err := json.Unmarshal(data, &ev); err != nil {
			return err
		}
		slog.WarnContext(ctx, "task failed",
			"task_id", ev.TaskID, "user_id", ev.UserID, "type", ev.Type, "platform", ev.Platform, "error", ev.Error)
		return nil
	})
}

// healthHandler reports the classifier strategy, queue connectivity and
// circuit breaker states of the connector APIs.
func healthHandler(analyzer *service.Analyzer, queue messagequeue.Queue) http.HandlerFunc {
	type healthStatus struct {
		Status     string            `json:"status"`
		Version    string            `json:"version"`
		Classifier string            `json:"classifier"`
		NATS       string            `json:"nats"`
		Breakers   map[string]string `json:"breakers"`
	}

	return func(w http.ResponseWriter, _ *http.Request) {
		status := healthStatus{
			Status:     "ok",
			Version:    version,
			Classifier: analyzer.Strategy(),
			NATS:       "disabled",
			Breakers:   apiclient.BreakerStates(),
		}
		if queue != nil {
			status.NATS = "connected"
			if !queue.IsConnected() {
				status.NATS = "disconnected"
				status.Status = "degraded"
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(status)
	}
}
