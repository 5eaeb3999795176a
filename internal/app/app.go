// Package app wires configuration into the pipeline, stores and HTTP server
// shared by the binaries.
package app

import (
	"context"
	"fmt"
	"io"

	"studyquiz"
	"studyquiz/internal/blob"
	"studyquiz/internal/cache"
	"studyquiz/internal/config"
	"studyquiz/internal/extract"
	"studyquiz/internal/logger"
	"studyquiz/internal/store"
)

// closers releases resources in reverse order of acquisition
type closers []io.Closer

func (c closers) Close() error {
	var first error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Pipeline is the generator plus everything it holds open
type Pipeline struct {
	Generator *studyquiz.Generator
	Extractor *extract.Extractor
	closers   closers
}

// Close releases provider, OCR and cache clients
func (p *Pipeline) Close() error { return p.closers.Close() }

// NewProvider returns the configured generation provider
func NewProvider(ctx context.Context, cfg config.GenerationConfig) (studyquiz.Provider, io.Closer, error) {
	switch cfg.Provider {
	case "gemini":
		p, err := studyquiz.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.Model)
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil
	case "openai":
		return studyquiz.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Model), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
}

// NewPipeline builds the extractor, optional OCR and cache, and the generator
func NewPipeline(ctx context.Context, cfg config.Config, log *logger.Logger) (*Pipeline, error) {
	p := &Pipeline{}

	provider, closer, err := NewProvider(ctx, cfg.Generation)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		p.closers = append(p.closers, closer)
	}

	opts := extract.Options{
		MinTextChars:  cfg.Extraction.MinTextChars,
		MinAlnumRatio: cfg.Extraction.MinAlnumRatio,
	}
	if d := cfg.Extraction.DocumentAI; d.Enabled() {
		ocr, err := extract.NewDocumentAIOCR(ctx, d.ProjectID, d.Location, d.ProcessorID)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.closers = append(p.closers, ocr)
		opts.OCR = ocr
		log.Info("OCR enabled", "processor", d.ProcessorID, "location", d.Location)
	}
	p.Extractor = extract.New(opts, log)

	policy, err := studyquiz.ParseFallbackPolicy(cfg.Generation.FallbackPolicy)
	if err != nil {
		p.Close()
		return nil, err
	}
	gcfg := studyquiz.GeneratorConfig{
		MaxContentChars: cfg.Generation.MaxContentChars,
		Timeout:         cfg.Generation.Timeout,
		Policy:          policy,
		Safety:          cfg.Generation.Safety,
		TranscriptDir:   cfg.Generation.TranscriptDir,
	}
	if cfg.Cache.RedisAddr != "" {
		rc, err := cache.NewRedis(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, cfg.Cache.TTL)
		if err != nil {
			// the cache is an optimisation; generation works without it
			log.Warn("response cache disabled", "error", err)
		} else {
			p.closers = append(p.closers, rc)
			gcfg.Cache = rc
		}
	}

	p.Generator, err = studyquiz.NewGenerator(provider, p.Extractor, gcfg, log)
	if err != nil {
		p.Close()
		return nil, err
	}
	log.Info("generator ready", "provider", provider.Name(), "policy", policy)
	return p, nil
}

// OpenStore opens the configured record store
func OpenStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case "sqlite":
		s, err := store.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "mongo":
		m, err := store.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// OpenBlobs returns GCS when a bucket is configured, local disk otherwise.
// filesDir is the directory to serve under /files, empty for GCS.
func OpenBlobs(ctx context.Context, cfg config.UploadConfig) (b blob.Store, filesDir string, err error) {
	if cfg.GCSBucket != "" {
		g, err := blob.NewGCS(ctx, cfg.GCSBucket)
		if err != nil {
			return nil, "", err
		}
		return g, "", nil
	}
	l, err := blob.NewLocal(cfg.Dir, "/files")
	if err != nil {
		return nil, "", err
	}
	return l, cfg.Dir, nil
}
