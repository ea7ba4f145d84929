package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	OpenAIAPIKey    string  `envconfig:"OPENAI_API_KEY"`
	OpenAIModel     string  `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAIMaxTokens int     `envconfig:"OPENAI_MAX_TOKENS" default:"600"`
	OpenAITemp      float32 `envconfig:"OPENAI_TEMPERATURE" default:"0.4"`

	ShopifyStorefrontURL   string `envconfig:"SHOPIFY_STOREFRONT_URL"`
	ShopifyStorefrontToken string `envconfig:"SHOPIFY_STOREFRONT_TOKEN"`
	StorefrontBaseURL      string `envconfig:"STOREFRONT_BASE_URL" default:"https://zenberry.shop"`

	// KnowledgeManifest is the ordered list of document identifiers loaded at
	// startup. Order is identity: the assembled context preserves it.
	KnowledgeManifest []string `envconfig:"KNOWLEDGE_MANIFEST" default:"company.md,products.md,ingredients.md,shipping.md,faq.md"`
	KnowledgeDir      string   `envconfig:"KNOWLEDGE_DIR" default:"knowledge"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"zenberry-knowledge"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	ChatRequestsPerMinute int `envconfig:"CHAT_REQUESTS_PER_MINUTE" default:"10"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("ZENCHAT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasShopify() bool {
	return c.ShopifyStorefrontURL != "" && c.ShopifyStorefrontToken != ""
}
