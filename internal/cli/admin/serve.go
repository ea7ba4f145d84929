// Package admin implements the zenchatd commands.
package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zenberry/zenchat/internal/api/handlers"
	"github.com/zenberry/zenchat/internal/capability"
	"github.com/zenberry/zenchat/internal/catalog"
	"github.com/zenberry/zenchat/internal/chat"
	"github.com/zenberry/zenchat/internal/config"
	"github.com/zenberry/zenchat/internal/knowledge"
	"github.com/zenberry/zenchat/internal/openai"
	"github.com/zenberry/zenchat/internal/policy"
	"github.com/zenberry/zenchat/internal/prompt"
	"github.com/zenberry/zenchat/internal/server"
	"github.com/zenberry/zenchat/internal/storage"
	"github.com/zenberry/zenchat/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the chat API server",
		Long:  "Start the zenchat API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.HasOpenAI() {
		return fmt.Errorf("ZENCHAT_OPENAI_API_KEY is required")
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	var docSource knowledge.DocumentSource
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		log.Printf("knowledge source: S3 bucket '%s'", cfg.S3Bucket)
		docSource = s3Client
	} else {
		log.Printf("knowledge source: directory '%s'", cfg.KnowledgeDir)
		docSource = knowledge.NewFileSource(cfg.KnowledgeDir)
	}

	store := knowledge.NewStore(docSource, cfg.KnowledgeManifest)
	if err := store.Load(ctx); err != nil {
		return fmt.Errorf("failed to load knowledge context: %w", err)
	}

	var fetcher catalog.ProductFetcher
	if cfg.HasShopify() {
		fetcher = catalog.NewShopifyClient(cfg.ShopifyStorefrontURL, cfg.ShopifyStorefrontToken)
	} else {
		log.Println("storefront credentials not set, serving an empty catalog")
		fetcher = &emptyFetcher{}
	}
	cache := catalog.NewCache(fetcher, cfg.StorefrontBaseURL)

	registry := capability.NewRegistry(cache, store)

	engine := openai.NewClientWithConfig(openai.Config{
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.OpenAIModel,
		MaxTokens:   cfg.OpenAIMaxTokens,
		Temperature: cfg.OpenAITemp,
	}).WithTools(&capabilityToolAdapter{registry: registry})

	assembler := prompt.NewAssembler(store, cache)
	orchestrator := chat.NewOrchestrator(policy.New(), assembler, engine)

	router := server.NewRouter(server.RouterConfig{
		ChatHandler:           handlers.NewChatHandler(orchestrator),
		HealthHandler:         handlers.NewHealthHandler(store, cache),
		ChatRequestsPerMinute: cfg.ChatRequestsPerMinute,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// capabilityToolAdapter exposes the capability registry as the completion
// engine's tool invoker.
type capabilityToolAdapter struct {
	registry *capability.Registry
}

func (a *capabilityToolAdapter) Definitions() []openai.ToolDefinition {
	defs := a.registry.Definitions()
	out := make([]openai.ToolDefinition, 0, len(defs))
	for _, d := range defs {
		out = append(out, openai.ToolDefinition{
			Name:        string(d.Name),
			Description: d.Description,
			Parameters:  d.Parameters,
		})
	}
	return out
}

func (a *capabilityToolAdapter) Invoke(ctx context.Context, name string, arguments json.RawMessage) (string, error) {
	return a.registry.Invoke(ctx, name, arguments)
}

// emptyFetcher stands in when no storefront is configured.
type emptyFetcher struct{}

func (f *emptyFetcher) FetchProducts(ctx context.Context, limit int) ([]catalog.RawProduct, error) {
	return []catalog.RawProduct{}, nil
}
