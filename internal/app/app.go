// Package app assembles the hub from its configuration.
package app

import (
	"chat-hub/infrastructure/websocket"
	"chat-hub/internal"
	"chat-hub/moderation"
	"chat-hub/observability"
	"chat-hub/repositories"
	"chat-hub/runtime"
	"chat-hub/runtime/workers"
	"chat-hub/services"
	"chat-hub/sink"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// App is a fully wired hub. The caller runs Supervisor and serves Handler.
type App struct {
	Handler    http.Handler
	Supervisor *workers.Supervisor
	Store      *repositories.Store
	Metrics    *observability.Metrics
	db         *badger.DB
	log        *slog.Logger
}

func New(log *slog.Logger, config internal.Config) (*App, error) {
	replacement, err := config.CharacterRune()
	if err != nil {
		return nil, err
	}
	filter, err := buildFilter(log, config, replacement)
	if err != nil {
		return nil, err
	}

	metrics := observability.NewMetrics()
	store := repositories.NewStore()
	registry := runtime.NewRegistry()
	metrics.Gauges(store.Rooms.Count, registry.Count)
	if err := metrics.Process(log); err != nil {
		log.Warn("Process metrics unavailable", "error", err)
	}
	fanout := runtime.NewFanout(log, registry, config.DeliveryTimeout, metrics)
	sup := workers.NewSupervisor(log, config.RestartInterval)
	a := &App{Supervisor: sup, Store: store, Metrics: metrics, log: log}

	if config.ArchiveFilepath != "" {
		a.db, err = badger.Open(badger.DefaultOptions(config.ArchiveFilepath).
			WithLoggingLevel(badger.WARNING))
		if err != nil {
			return nil, fmt.Errorf("archive opening failed: %w", err)
		}
		events := make(chan repositories.ArchivedEvent, config.ArchiveBufferSize)
		repository := repositories.NewArchiveRepository(a.db, log, config.ArchiveLimit)
		fanout.Add(sink.NewArchiveSink(events, log))
		sup.Add(workers.NewArchiveWorker(log, repository, events, metrics))
		log.Info("Archive enabled", "path", config.ArchiveFilepath)
	}

	engine := runtime.NewEngine(log, store, filter, runtime.EngineConfig{
		MaxContentLength: config.MaxContentLength,
		MaxImageBytes:    config.MaxImageBytes,
	})
	orchestrator := runtime.NewOrchestrator(log, store, engine, fanout)
	service := services.NewChatService(log, orchestrator, registry, metrics, config.MaxNameLength)
	handler := websocket.NewHandler(log, service, websocket.Settings{
		BufferSize:   config.ConnectionBufferSize,
		WriteTimeout: config.WriteTimeout,
		PongTimeout:  config.PongTimeout,
		MaxFrameSize: config.FrameLimit(),
	})
	a.Handler = websocket.NewRouter(handler, metrics)
	return a, nil
}

// Close releases the archive. Call it once the supervisor has stopped.
func (a *App) Close() {
	if a.db == nil {
		return
	}
	a.log.Info("Closing archive...")
	_ = a.db.Close()
}

// buildFilter merges CENSORED_WORDS and CENSORED_DIR. No word at all disables moderation.
func buildFilter(log *slog.Logger, config internal.Config, replacement rune) (*moderation.Filter, error) {
	words := moderation.ParseWords(config.CensoredWords)
	if config.CensoredDir != "" {
		list, err := moderation.LoadWords(os.DirFS(config.CensoredDir), ".")
		if err != nil {
			return nil, fmt.Errorf("censored words loading failed: %w", err)
		}
		log.Info(fmt.Sprintf("%d censored files loaded [%s]", len(list.Languages), strings.Join(list.Languages, ",")))
		words = append(words, list.Words...)
	}
	if len(words) == 0 {
		log.Info("Moderation disabled")
		return nil, nil
	}
	filter, err := moderation.NewFilter(words, replacement)
	if err != nil {
		return nil, err
	}
	log.Info(fmt.Sprintf("%d censored words loaded", len(words)))
	return filter, nil
}
