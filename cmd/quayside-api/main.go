package main

import (
	"context"
	"log"
	"net/http"

	capadapter "github.com/quaysidelabs/quayside-agent/internal/adapters/capability"
	httpadapter "github.com/quaysidelabs/quayside-agent/internal/adapters/http"
	"github.com/quaysidelabs/quayside-agent/internal/adapters/llm"
	"github.com/quaysidelabs/quayside-agent/internal/adapters/lookup"
	firestorestore "github.com/quaysidelabs/quayside-agent/internal/adapters/storage/firestore"
	memstore "github.com/quaysidelabs/quayside-agent/internal/adapters/storage/memory"
	redisstore "github.com/quaysidelabs/quayside-agent/internal/adapters/storage/redis"
	"github.com/quaysidelabs/quayside-agent/internal/app/agentflow"
	"github.com/quaysidelabs/quayside-agent/internal/app/capability"
	"github.com/quaysidelabs/quayside-agent/internal/app/contextbuilder"
	"github.com/quaysidelabs/quayside-agent/internal/config"
	"github.com/quaysidelabs/quayside-agent/internal/domain"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	// LLM: mock for local dev, Vertex otherwise.
	var (
		llmClient domain.LLMClient
		err       error
	)
	if cfg.UseMockLLM {
		log.Println("[LLM] Using MOCK LLM client")
		llmClient = llm.NewMockLLM()
	} else {
		log.Println("[LLM] Using Vertex LLM client")
		llmClient, err = llm.NewGeminiClient(ctx, llm.Config{
			ProjectID: cfg.GCPProjectID,
			Location:  cfg.GCPLocation,
			ModelName: cfg.ModelName,
		})
		if err != nil {
			log.Fatalf("error initializing Vertex LLM client: %v", err)
		}
	}
	llmClient = llm.WithTimeout(llmClient, cfg.LLMTimeout)

	// Storage: memory, Redis or Firestore. One store implements both
	// memory ports.
	var sessions domain.SessionMemory
	var profiles domain.ProfileMemory

	switch cfg.StorageBackend {
	case "redis":
		log.Printf("[STORE] Using Redis storage (addr=%s)", cfg.RedisAddr)
		store, err := redisstore.NewStore(redisstore.Config{
			Addr:        cfg.RedisAddr,
			Password:    cfg.RedisPassword,
			DB:          cfg.RedisDB,
			MaxMessages: cfg.MemoryMaxMessages,
		})
		if err != nil {
			log.Fatalf("error initializing Redis store: %v", err)
		}
		sessions = store
		profiles = store

	case "firestore":
		log.Printf("[STORE] Using Firestore storage (project=%s)", cfg.GCPProjectID)
		store, err := firestorestore.NewStore(ctx, cfg.GCPProjectID, cfg.MemoryMaxMessages)
		if err != nil {
			log.Fatalf("error initializing Firestore store: %v", err)
		}
		sessions = store
		profiles = store

	default:
		log.Println("[STORE] Using in-memory storage")
		sessions = memstore.NewSessionStore(cfg.MemoryMaxMessages)
		profiles = memstore.NewProfileStore()
	}

	// Prompt templates, optionally overridden from YAML.
	prompts := agentflow.DefaultPrompts()
	if cfg.PromptsPath != "" {
		prompts, err = agentflow.LoadPrompts(cfg.PromptsPath)
		if err != nil {
			log.Fatalf("error loading prompts from %s: %v", cfg.PromptsPath, err)
		}
		log.Printf("[PROMPTS] Loaded overrides from %s", cfg.PromptsPath)
	}

	// Domain data source backing both the document capability and the
	// context builder's instrument and freshness layers.
	instruments := lookup.NewStatic()

	registry := capability.NewRegistry("document")
	registry.Register(capadapter.NewDocument(llmClient, instruments))
	registry.Register(capability.NewSynthesis(llmClient))
	registry.Register(capadapter.NewResearch(llmClient, "market", "a market data analyst"))
	registry.Register(capadapter.NewResearch(llmClient, "financial", "a financial statement analyst"))
	registry.Register(capadapter.NewResearch(llmClient, "news", "a news researcher"))

	builder := contextbuilder.NewBuilder(sessions, profiles, instruments, instruments, contextbuilder.Options{})

	orchestrator := agentflow.NewOrchestrator(agentflow.Deps{
		Context:   builder,
		Planner:   agentflow.NewPlanner(llmClient, prompts),
		Reflector: agentflow.NewReflector(llmClient, prompts),
		Router:    agentflow.NewRouter(registry, cfg.CapabilityTimeout),
		Sessions:  sessions,
		Profiles:  profiles,
	}, cfg.MaxRetries, cfg.RunTimeout)

	handler := httpadapter.NewServer(orchestrator, sessions, profiles)

	addr := ":" + cfg.Port
	log.Println("Quayside API listening on port:", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal(err)
	}
}
