package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"

	"pdf-rag/internal/models"
)

const (
	ProviderBedrock = "bedrock"
	ProviderOllama  = "ollama"
	ProviderOpenAI  = "openai"
)

type Config struct {
	Embedding LLMConfig `yaml:"embedding"`
	LLM       LLMConfig `yaml:"llm"`
	AWS       AWSConfig `yaml:"aws"`
	RAG       RAGConfig `yaml:"rag"`
	Log       LogConfig `yaml:"log"`
}

// LLMConfig selects a remote model, either for embeddings or for generation
type LLMConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Key      string `yaml:"key"`
}

type AWSConfig struct {
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	Profile         string `yaml:"profile"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
}

type RAGConfig struct {
	ChunkSize    int      `yaml:"chunk_size"`
	ChunkOverlap int      `yaml:"chunk_overlap"`
	Separators   []string `yaml:"separators"`
	TopK         int      `yaml:"top_k"`
	Collection   string   `yaml:"collection"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// LoadConfig reads the YAML config at path. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a config with every field set to its default value
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

// ApplyDefaults fills zero-valued fields
func ApplyDefaults(cfg *Config) {
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = ProviderBedrock
	}
	if cfg.Embedding.Model == "" && cfg.Embedding.Provider == ProviderBedrock {
		cfg.Embedding.Model = models.DefaultEmbeddingModel
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = ProviderBedrock
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = models.DefaultModelID
	}
	if cfg.AWS.Region == "" {
		cfg.AWS.Region = models.DefaultRegion
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = models.DefaultChunkSize
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = models.DefaultChunkOverlap
	}
	if len(cfg.RAG.Separators) == 0 {
		cfg.RAG.Separators = append([]string(nil), models.DefaultSeparators...)
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = models.DefaultTopK
	}
	if cfg.RAG.Collection == "" {
		cfg.RAG.Collection = models.DefaultCollection
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.File == "" {
		cfg.Log.File = "ragchat.log"
	}
}
