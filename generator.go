package studyquiz

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"studyquiz/internal/logger"
)

// ContentExtractor turns uploaded bytes into plain text. It never fails;
// unreadable input yields an explanatory placeholder.
type ContentExtractor interface {
	Extract(ctx context.Context, data []byte, fileType, fileName string) string
}

// ResponseCache stores raw provider responses by prompt hash
type ResponseCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// FallbackPolicy decides what happens when generation degrades
type FallbackPolicy string

const (
	// PolicyBlend substitutes demo or illustrative content per field and reports it in the meta
	PolicyBlend FallbackPolicy = "blend"
	// PolicyAtomic returns ErrDegraded instead of any substituted content
	PolicyAtomic FallbackPolicy = "atomic"
)

// ParseFallbackPolicy maps a config value to a policy. Empty means blend.
func ParseFallbackPolicy(s string) (FallbackPolicy, error) {
	switch FallbackPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyBlend:
		return PolicyBlend, nil
	case PolicyAtomic:
		return PolicyAtomic, nil
	}
	return "", fmt.Errorf("unknown fallback policy %q", s)
}

// GeneratorConfig tunes a Generator. Zero values select defaults.
type GeneratorConfig struct {
	MaxContentChars int
	Timeout         time.Duration
	Policy          FallbackPolicy
	Safety          SafetySettings
	TranscriptDir   string
	Cache           ResponseCache
	Shuffler        *Shuffler
	Demo            *DemoData
}

// Generator runs the document to question set pipeline
type Generator struct {
	provider  Provider
	extractor ContentExtractor
	post      *PostProcessor
	demo      *DemoData
	cfg       GeneratorConfig
	log       *logger.Logger
}

// NewGenerator creates a generator
func NewGenerator(provider Provider, extractor ContentExtractor, cfg GeneratorConfig, log *logger.Logger) (*Generator, error) {
	if provider == nil {
		return nil, errors.New("provider is required")
	}
	if cfg.Policy == "" {
		cfg.Policy = PolicyBlend
	}
	if cfg.MaxContentChars <= 0 {
		cfg.MaxContentChars = DefaultMaxContentChars
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if cfg.Safety == nil {
		cfg.Safety = DefaultSafety
	}
	if err := cfg.Safety.Validate(); err != nil {
		return nil, err
	}
	if cfg.Demo == nil {
		demo, err := LoadDemoData()
		if err != nil {
			return nil, err
		}
		cfg.Demo = demo
	}
	if cfg.Shuffler == nil {
		cfg.Shuffler = NewShuffler()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Generator{
		provider:  provider,
		extractor: extractor,
		post:      NewPostProcessor(cfg.Shuffler, cfg.Demo),
		demo:      cfg.Demo,
		cfg:       cfg,
		log:       log.With("component", "generator", "provider", provider.Name()),
	}, nil
}

// Policy reports the configured fallback policy
func (g *Generator) Policy() FallbackPolicy { return g.cfg.Policy }

// Demo returns the full demo result
func (g *Generator) Demo() *Result {
	return &Result{Set: g.demo.Set(), Meta: GenerationMeta{Demo: true, Substituted: append([]Artifact{}, Artifacts...)}}
}

// Generate produces a question set for one document. Input errors are returned
// as is; provider and parse failures follow the fallback policy.
func (g *Generator) Generate(ctx context.Context, req GenerationRequest) (*Result, error) {
	quantities := DefaultQuantities
	if req.Quantities != nil {
		quantities = req.Quantities.WithDefaults()
	}

	content, err := g.acquire(ctx, req)
	if err != nil {
		return nil, err
	}
	content, truncated := TruncateContent(content, g.cfg.MaxContentChars)

	prompt := BuildPrompt(PromptInput{
		Content:      content,
		Truncated:    truncated,
		FileName:     req.FileName,
		FileType:     req.FileType,
		Quantities:   quantities,
		CustomPrompt: req.CustomPrompt,
	})

	var transcript *Transcript
	if g.cfg.TranscriptDir != "" {
		transcript, err = NewTranscript(g.cfg.TranscriptDir, time.Now().Format("20060102-150405")+"-"+uuid.NewString()[:8], req, quantities)
		if err != nil {
			g.log.Warn("transcript unavailable", "error", err)
		}
		defer transcript.Close()
	}

	result, err := g.run(ctx, prompt, transcript)
	if result != nil {
		result.Meta.FileName = req.FileName
		result.Meta.Truncated = truncated
	}
	if transcript != nil {
		meta := GenerationMeta{}
		if result != nil {
			meta = result.Meta
		}
		transcript.LogOutcome(meta, err)
	}
	return result, err
}

func (g *Generator) run(ctx context.Context, prompt string, transcript *Transcript) (*Result, error) {
	raw, cached, err := g.complete(ctx, prompt, transcript)
	if err != nil {
		g.log.Error("generation failed", "error", err)
		return g.degrade(err)
	}

	parsed, err := ParseResponse(raw, g.demo)
	if err != nil {
		g.log.Warn("unparseable response", "error", err, "response_chars", len(raw))
		return g.degrade(err)
	}
	if !cached {
		g.store(ctx, prompt, raw)
	}

	set, replaced := g.post.Process(parsed.Set, parsed.Invalid)
	substituted := mergeArtifacts(parsed.Substituted, replaced)
	if len(substituted) > 0 {
		g.log.Warn("fields substituted with fallback content", "fields", substituted)
		if g.cfg.Policy == PolicyAtomic {
			return nil, fmt.Errorf("%w: fields %v failed validation", ErrDegraded, substituted)
		}
	}

	return &Result{
		Set: set,
		Meta: GenerationMeta{
			Cached:      cached,
			Demo:        len(replaced) == len(Artifacts),
			Substituted: substituted,
		},
	}, nil
}

// degrade answers a failed generation according to the policy
func (g *Generator) degrade(cause error) (*Result, error) {
	if g.cfg.Policy == PolicyAtomic {
		return nil, fmt.Errorf("%w: %v", ErrDegraded, cause)
	}
	return g.Demo(), nil
}

// complete returns the raw response, from the cache when possible
func (g *Generator) complete(ctx context.Context, prompt string, transcript *Transcript) (string, bool, error) {
	key := CacheKey(g.provider.Name(), prompt)
	if g.cfg.Cache != nil {
		raw, ok, err := g.cfg.Cache.Get(ctx, key)
		if err != nil {
			g.log.Warn("cache lookup failed", "error", err)
		} else if ok {
			g.log.Debug("cache hit", "key", key)
			transcript.LogResponse(g.provider.Name(), raw, true)
			return raw, true, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	transcript.LogRequest(g.provider.Name(), prompt)
	start := time.Now()
	raw, err := g.provider.Generate(ctx, prompt, g.cfg.Safety)
	if err != nil {
		transcript.Logf("Provider error: %v\n", err)
		return "", false, err
	}
	g.log.Info("provider responded", "duration", time.Since(start), "response_chars", len(raw))
	transcript.LogResponse(g.provider.Name(), raw, false)
	return raw, false, nil
}

func (g *Generator) store(ctx context.Context, prompt, raw string) {
	if g.cfg.Cache == nil {
		return
	}
	if err := g.cfg.Cache.Set(ctx, CacheKey(g.provider.Name(), prompt), raw); err != nil {
		g.log.Warn("cache store failed", "error", err)
	}
}

// acquire resolves the request into plain text
func (g *Generator) acquire(ctx context.Context, req GenerationRequest) (string, error) {
	content := req.FileContent
	if data, ok, err := DecodeDataURI(content); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidContent, err)
	} else if ok {
		if g.extractor != nil {
			content = g.extractor.Extract(ctx, data, req.FileType, req.FileName)
		} else {
			content = string(data)
		}
	}
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyContent
	}
	return content, nil
}

// DecodeDataURI decodes "data:<mime>;base64,<payload>". ok is false when s is
// not a data URI, in which case s should be treated as raw text.
func DecodeDataURI(s string) (data []byte, ok bool, err error) {
	if !strings.HasPrefix(s, "data:") {
		return nil, false, nil
	}
	header, payload, found := strings.Cut(s, ",")
	if !found {
		return nil, true, errors.New("malformed data URI")
	}
	if !strings.HasSuffix(header, ";base64") {
		return []byte(payload), true, nil
	}
	data, err = base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, true, fmt.Errorf("failed to decode data URI: %w", err)
	}
	return data, true, nil
}

// CacheKey hashes provider and prompt into a cache key
func CacheKey(provider, prompt string) string {
	sum := sha256.Sum256([]byte(provider + "\n" + prompt))
	return hex.EncodeToString(sum[:])
}

// BatchResult is the concatenation of several generations in input order
type BatchResult struct {
	QuestionSet
	Files []GenerationMeta `json:"files"`
}

// GenerateBatch generates each request in turn and concatenates the results.
// Under the atomic policy the first failure aborts the whole batch.
func (g *Generator) GenerateBatch(ctx context.Context, reqs []GenerationRequest) (*BatchResult, error) {
	var combined QuestionSet
	files := make([]GenerationMeta, 0, len(reqs))
	for i, req := range reqs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := g.Generate(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("failed to generate for file %d (%s): %w", i+1, req.FileName, err)
		}
		combined = combined.Concat(res.Set)
		files = append(files, res.Meta)
	}
	return &BatchResult{QuestionSet: combined, Files: files}, nil
}

// mergeArtifacts unions the lists in presentation order
func mergeArtifacts(lists ...[]Artifact) []Artifact {
	seen := map[Artifact]bool{}
	for _, l := range lists {
		for _, a := range l {
			seen[a] = true
		}
	}
	var out []Artifact
	for _, a := range Artifacts {
		if seen[a] {
			out = append(out, a)
		}
	}
	return out
}
