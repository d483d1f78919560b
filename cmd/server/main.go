package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/saireddyganapuram/Tecnvirons/gateway"
	"github.com/saireddyganapuram/Tecnvirons/pkg/config"
	"github.com/saireddyganapuram/Tecnvirons/pkg/kv"
	"github.com/saireddyganapuram/Tecnvirons/pkg/llm"
	"github.com/saireddyganapuram/Tecnvirons/session"
	"github.com/saireddyganapuram/Tecnvirons/storage"
	"github.com/saireddyganapuram/Tecnvirons/summary"
	"github.com/saireddyganapuram/Tecnvirons/tools"
)

const envPrefix = "RTB_"

func main() {
	log.Println("Starting realtime session backend...")

	cwd, _ := os.Getwd()
	if cwd == "" {
		cwd = "."
	}
	configDir := filepath.Join(cwd, "config")

	// Config precedence: defaults, then config.yaml, then env.config file,
	// then process environment.
	cfg := config.DefaultServerConfig()
	if err := cfg.LoadFile(filepath.Join(configDir, "config.yaml")); err != nil {
		log.Fatalf("config: %v", err)
	}
	for k, v := range config.ReadEnvConfig(filepath.Join(configDir, "env.config")) {
		if os.Getenv(k) == "" {
			os.Setenv(k, v)
		}
	}
	cfg.LoadFromEnv(envPrefix)

	// Storage + async persistence dispatcher
	store, err := storage.NewWithConfig(*cfg.Storage)
	if err != nil {
		log.Fatalf("open storage: %v", err)
	}
	defer store.Close()

	dispatcher := storage.NewDispatcher(store, cfg.Dispatcher.QueueSize, cfg.Dispatcher.Workers)
	defer dispatcher.Close()

	// Live-session KV (presence + token cache)
	kvStore, err := kv.Open(kv.Options{Dir: cfg.KV.Dir, MemoryMode: cfg.KV.MemoryMode})
	if err != nil {
		log.Fatalf("open kv: %v", err)
	}
	defer kvStore.Close()

	registry := tools.NewDefaultRegistry()

	var gen llm.Generator
	switch cfg.Responder.Backend {
	case "openai":
		gen = llm.NewOpenAIGenerator(cfg.Responder.APIKey, cfg.Responder.BaseURL, cfg.Responder.Model)
	default:
		gen = llm.NewMockGenerator()
	}
	log.Printf("[OK] responder backend: %s", gen.Name())

	srv := gateway.New(*cfg.Gateway, gateway.Deps{
		Responder: session.NewResponder(registry, gen, cfg.Responder.TokenDelay),
		Recorder:  dispatcher,
		Finalizer: summary.New(store),
		Registry:  registry,
		KV:        kvStore,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("gateway: %v", err)
	}
	log.Println("Shutdown complete")
}
