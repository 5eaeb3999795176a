package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"studyquiz"
)

// DefaultPath is read when STUDYQUIZ_CONFIG is not set
const DefaultPath = "config/config.yaml"

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Generation GenerationConfig `yaml:"generation"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Auth       AuthConfig       `yaml:"auth"`
	Store      StoreConfig      `yaml:"store"`
	Uploads    UploadConfig     `yaml:"uploads"`
	Cache      CacheConfig      `yaml:"cache"`
	LogMode    string           `yaml:"log_mode"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

type GenerationConfig struct {
	// Provider is "gemini" or "openai"
	Provider        string                   `yaml:"provider"`
	Model           string                   `yaml:"model"`
	GeminiAPIKey    string                   `yaml:"gemini_api_key"`
	OpenAIAPIKey    string                   `yaml:"openai_api_key"`
	OpenAIBaseURL   string                   `yaml:"openai_base_url"`
	MaxContentChars int                      `yaml:"max_content_chars"`
	Timeout         time.Duration            `yaml:"timeout"`
	FallbackPolicy  string                   `yaml:"fallback_policy"`
	TranscriptDir   string                   `yaml:"transcript_dir"`
	Safety          studyquiz.SafetySettings `yaml:"safety"`
}

type ExtractionConfig struct {
	MinTextChars  int              `yaml:"min_text_chars"`
	MinAlnumRatio float64          `yaml:"min_alnum_ratio"`
	DocumentAI    DocumentAIConfig `yaml:"documentai"`
}

// DocumentAIConfig enables OCR of scanned PDFs and images when ProcessorID is set
type DocumentAIConfig struct {
	ProjectID   string `yaml:"project_id"`
	Location    string `yaml:"location"`
	ProcessorID string `yaml:"processor_id"`
}

// Enabled reports whether OCR is configured
func (d DocumentAIConfig) Enabled() bool {
	return d.ProjectID != "" && d.Location != "" && d.ProcessorID != ""
}

type AuthConfig struct {
	JWTSecret  string `yaml:"jwt_secret"`
	SessionKey string `yaml:"session_key"`
	SessionDir string `yaml:"session_dir"`
	// RequireAuth rejects anonymous requests on user scoped routes
	RequireAuth bool `yaml:"require_auth"`
}

type StoreConfig struct {
	// Driver is "sqlite" or "mongo"
	Driver   string `yaml:"driver"`
	DBPath   string `yaml:"db_path"`
	MongoURI string `yaml:"mongo_uri"`
	MongoDB  string `yaml:"mongo_db"`
}

type UploadConfig struct {
	Dir       string `yaml:"dir"`
	GCSBucket string `yaml:"gcs_bucket"`
	MaxFiles  int    `yaml:"max_files"`
}

type CacheConfig struct {
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	TTL           time.Duration `yaml:"ttl"`
}

// Default returns the configuration used before any file or environment override
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            "8080",
			AllowedOrigins:  []string{"http://localhost:3000"},
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    32 << 20,
		},
		Generation: GenerationConfig{
			Provider:        "gemini",
			MaxContentChars: studyquiz.DefaultMaxContentChars,
			Timeout:         2 * time.Minute,
			FallbackPolicy:  string(studyquiz.PolicyBlend),
			Safety:          append(studyquiz.SafetySettings{}, studyquiz.DefaultSafety...),
		},
		Extraction: ExtractionConfig{
			MinTextChars:  50,
			MinAlnumRatio: 0.3,
		},
		Auth: AuthConfig{
			SessionDir: "data/sessions",
		},
		Store: StoreConfig{
			Driver:  "sqlite",
			DBPath:  "data/studyquiz.db",
			MongoDB: "studyquiz",
		},
		Uploads: UploadConfig{
			Dir:      "data/uploads",
			MaxFiles: 10,
		},
		Cache: CacheConfig{
			TTL: 24 * time.Hour,
		},
		LogMode: "development",
	}
}

// Load builds the configuration: defaults, then the YAML file, then environment variables.
// A .env file is loaded first unless LOG_MODE is production.
func Load() (Config, error) {
	if !isProduction(os.Getenv("LOG_MODE")) {
		_ = godotenv.Load()
	}

	cfg := Default()
	path := os.Getenv("STUDYQUIZ_CONFIG")
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := func(name string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*dst = v
		}
	}
	str("PORT", &c.Server.Port)
	str("LOG_MODE", &c.LogMode)
	str("GENERATION_PROVIDER", &c.Generation.Provider)
	str("GENERATION_MODEL", &c.Generation.Model)
	str("GEMINI_API_KEY", &c.Generation.GeminiAPIKey)
	str("OPENAI_API_KEY", &c.Generation.OpenAIAPIKey)
	str("OPENAI_BASE_URL", &c.Generation.OpenAIBaseURL)
	str("FALLBACK_POLICY", &c.Generation.FallbackPolicy)
	str("TRANSCRIPT_DIR", &c.Generation.TranscriptDir)
	str("JWT_SECRET_KEY", &c.Auth.JWTSecret)
	str("SESSION_KEY", &c.Auth.SessionKey)
	str("SESSION_DIR", &c.Auth.SessionDir)
	str("STORE_DRIVER", &c.Store.Driver)
	str("DB_PATH", &c.Store.DBPath)
	str("MONGO_URI", &c.Store.MongoURI)
	str("MONGO_DB", &c.Store.MongoDB)
	str("UPLOAD_DIR", &c.Uploads.Dir)
	str("UPLOAD_GCS_BUCKET", &c.Uploads.GCSBucket)
	str("REDIS_ADDR", &c.Cache.RedisAddr)
	str("REDIS_PASSWORD", &c.Cache.RedisPassword)
	str("DOCUMENTAI_PROJECT_ID", &c.Extraction.DocumentAI.ProjectID)
	str("DOCUMENTAI_LOCATION", &c.Extraction.DocumentAI.Location)
	str("DOCUMENTAI_PROCESSOR_ID", &c.Extraction.DocumentAI.ProcessorID)

	if v := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v := strings.TrimSpace(os.Getenv("REQUIRE_AUTH")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid REQUIRE_AUTH %q: %w", v, err)
		}
		c.Auth.RequireAuth = b
	}
	if v := strings.TrimSpace(os.Getenv("MAX_CONTENT_CHARS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MAX_CONTENT_CHARS %q: %w", v, err)
		}
		c.Generation.MaxContentChars = n
	}
	if v := strings.TrimSpace(os.Getenv("GENERATION_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid GENERATION_TIMEOUT %q: %w", v, err)
		}
		c.Generation.Timeout = d
	}
	return nil
}

// Validate reports settings that cannot work together
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port == "" {
		errs = append(errs, errors.New("server port is required"))
	}
	switch c.Generation.Provider {
	case "gemini":
		if c.Generation.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required for the gemini provider"))
		}
	case "openai":
		if c.Generation.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for the openai provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown generation provider %q", c.Generation.Provider))
	}
	if _, err := studyquiz.ParseFallbackPolicy(c.Generation.FallbackPolicy); err != nil {
		errs = append(errs, err)
	}
	if err := c.Generation.Safety.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Generation.Timeout <= 0 {
		errs = append(errs, errors.New("generation timeout must be positive"))
	}
	if c.Extraction.MinAlnumRatio < 0 || c.Extraction.MinAlnumRatio > 1 {
		errs = append(errs, fmt.Errorf("min_alnum_ratio %v must be between 0 and 1", c.Extraction.MinAlnumRatio))
	}
	switch c.Store.Driver {
	case "sqlite":
		if c.Store.DBPath == "" {
			errs = append(errs, errors.New("DB_PATH is required for the sqlite store"))
		}
	case "mongo":
		if c.Store.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	if c.Uploads.Dir == "" && c.Uploads.GCSBucket == "" {
		errs = append(errs, errors.New("either UPLOAD_DIR or UPLOAD_GCS_BUCKET is required"))
	}
	if c.Auth.RequireAuth && c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is required when auth is required"))
	}
	return errors.Join(errs...)
}

// Production reports whether the log mode selects production behaviour
func (c Config) Production() bool { return isProduction(c.LogMode) }

func isProduction(mode string) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		return true
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
