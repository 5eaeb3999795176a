package app

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"studyquiz/internal/config"
	"studyquiz/internal/logger"
)

type recordCloser struct {
	name  string
	order *[]string
	err   error
}

func (r recordCloser) Close() error {
	*r.order = append(*r.order, r.name)
	return r.err
}

func TestClosers_ReverseOrder(t *testing.T) {
	var order []string
	boom := errors.New("boom")
	c := closers{
		recordCloser{name: "first", order: &order, err: boom},
		recordCloser{name: "second", order: &order},
	}
	if err := c.Close(); !errors.Is(err, boom) {
		t.Fatalf("err got=%v", err)
	}
	if strings.Join(order, ",") != "second,first" {
		t.Fatalf("order got=%v", order)
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	st, err := OpenStore(ctx, config.StoreConfig{Driver: "sqlite", DBPath: filepath.Join(t.TempDir(), "s.db")})
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	st.Close()

	if _, err := OpenStore(ctx, config.StoreConfig{Driver: "postgres"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestOpenBlobs_Local(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	b, filesDir, err := OpenBlobs(context.Background(), config.UploadConfig{Dir: dir})
	if err != nil {
		t.Fatalf("OpenBlobs: %v", err)
	}
	defer b.Close()
	if filesDir != dir {
		t.Fatalf("filesDir got=%q want=%q", filesDir, dir)
	}
}

func TestNewPipeline_OpenAI(t *testing.T) {
	cfg := config.Default()
	cfg.Generation.Provider = "openai"
	cfg.Generation.OpenAIAPIKey = "sk-test"
	cfg.Generation.FallbackPolicy = "atomic"

	p, err := NewPipeline(context.Background(), cfg, logger.Nop())
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	defer p.Close()
	if p.Generator == nil || p.Extractor == nil {
		t.Fatal("pipeline incomplete")
	}
	if string(p.Generator.Policy()) != "atomic" {
		t.Fatalf("policy got=%q", p.Generator.Policy())
	}
}

func TestNewPipeline_BadPolicy(t *testing.T) {
	cfg := config.Default()
	cfg.Generation.Provider = "openai"
	cfg.Generation.FallbackPolicy = "sometimes"
	if _, err := NewPipeline(context.Background(), cfg, logger.Nop()); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}

func TestNewProvider_Unknown(t *testing.T) {
	if _, _, err := NewProvider(context.Background(), config.GenerationConfig{Provider: "llama"}); err == nil {
		t.Fatal("expected error")
	}
}
