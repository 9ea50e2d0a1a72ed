package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	Chunking struct {
		Window    int `yaml:"window"`
		Overlap   int `yaml:"overlap"`
		MinLength int `yaml:"min_length"`
	} `yaml:"chunking"`
	Retrieval struct {
		TopK           int     `yaml:"top_k"`
		ScoreThreshold float32 `yaml:"score_threshold"`
	} `yaml:"retrieval"`
	Embedding struct {
		Model      string `yaml:"model"`
		APIKey     string `yaml:"api_key"`
		Dimension  int32  `yaml:"dimension"`
		TimeoutSec int    `yaml:"timeout_sec"`
		BackoffSec int    `yaml:"retry_backoff_sec"`
	} `yaml:"embedding"`
	Generation struct {
		BaseURL    string `yaml:"base_url"`
		Model      string `yaml:"model"`
		APIKey     string `yaml:"api_key"`
		TimeoutSec int    `yaml:"timeout_sec"`
	} `yaml:"generation"`
	Index struct {
		Collection      string `yaml:"collection"`
		CacheCollection string `yaml:"cache_collection"`
		QdrantHost      string `yaml:"qdrant_host"`
		QdrantGrpcPort  int    `yaml:"qdrant_grpc_port"`
		QdrantUseTLS    bool   `yaml:"qdrant_use_tls"`
	} `yaml:"index"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
	} `yaml:"redis"`
	Auth struct {
		Token string `yaml:"token"`
	} `yaml:"auth"`
}

var envVarPattern = regexp.MustCompile(`\$\{(\w+)}`)

// Load applies the optional YAML config file on top of the compiled defaults,
// then the environment on top of that. Missing file is not an error.
func Load() error {
	path := os.Getenv("SYNTHIQUERY_CONFIG")
	if path == "" {
		path = "synthiquery.yaml"
	}

	if data, err := os.ReadFile(filepath.Clean(path)); err == nil {
		data = expandEnvVars(data)
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		applyFile(fc)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	applyEnv()

	if ChunkOverlap >= ChunkWindow {
		return fmt.Errorf("invalid chunking config: overlap %d must be smaller than window %d", ChunkOverlap, ChunkWindow)
	}
	if EmbeddingOutputDimensionality <= 0 {
		return fmt.Errorf("invalid embedding dimension %d", EmbeddingOutputDimensionality)
	}
	return nil
}

func expandEnvVars(data []byte) []byte {
	return envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := envVarPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(name)))
	})
}

func applyFile(fc fileConfig) {
	setInt(&ChunkWindow, fc.Chunking.Window)
	setInt(&ChunkOverlap, fc.Chunking.Overlap)
	setInt(&MinChunkLength, fc.Chunking.MinLength)
	setInt(&TopKDefault, fc.Retrieval.TopK)
	if fc.Retrieval.ScoreThreshold != 0 {
		ScoreThreshold = fc.Retrieval.ScoreThreshold
	}
	setString(&GoogleEmbeddingModel, fc.Embedding.Model)
	setString(&GoogleEmbeddingAPIKey, fc.Embedding.APIKey)
	if fc.Embedding.Dimension != 0 {
		EmbeddingOutputDimensionality = fc.Embedding.Dimension
	}
	setDuration(&EmbedTimeout, fc.Embedding.TimeoutSec)
	setDuration(&EmbedRetryBackoff, fc.Embedding.BackoffSec)
	setString(&GenerationBaseURL, fc.Generation.BaseURL)
	setString(&GenerationModel, fc.Generation.Model)
	setString(&GenerationAPIKey, fc.Generation.APIKey)
	setDuration(&GenerateTimeout, fc.Generation.TimeoutSec)
	setString(&CollectionName, fc.Index.Collection)
	setString(&CacheCollectionName, fc.Index.CacheCollection)
	setString(&QdrantHost, fc.Index.QdrantHost)
	setInt(&QdrantGrpcPort, fc.Index.QdrantGrpcPort)
	if fc.Index.QdrantUseTLS {
		QdrantUseTLS = true
	}
	setString(&RedisAddr, fc.Redis.Addr)
	setString(&RedisPassword, fc.Redis.Password)
	setString(&AuthToken, fc.Auth.Token)
	if AuthToken != "" {
		NoAuthBypass = false
	}
}

func applyEnv() {
	setString(&GoogleEmbeddingAPIKey, os.Getenv("GOOGLE_API_KEY"))
	setString(&GenerationAPIKey, os.Getenv("GROQ_API_KEY"))
	setString(&CollectionName, os.Getenv("COLLECTION_NAME"))
	setString(&QdrantHost, os.Getenv("QDRANT_HOST"))
	setString(&RedisAddr, os.Getenv("REDIS_ADDR"))
	if token := os.Getenv("AUTH_TOKEN"); token != "" {
		AuthToken = token
		NoAuthBypass = false
	}
}

func setString(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}

func setInt(dst *int, val int) {
	if val != 0 {
		*dst = val
	}
}

func setDuration(dst *time.Duration, seconds int) {
	if seconds != 0 {
		*dst = time.Duration(seconds) * time.Second
	}
}
