package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"studyquiz"
	"studyquiz/internal/app"
	"studyquiz/internal/config"
	"studyquiz/internal/logger"
)

type fileList []string

func (f *fileList) String() string { return strings.Join(*f, ",") }

func (f *fileList) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func main() {
	var files fileList
	flag.Var(&files, "file", "Document to generate from (repeat for a batch)")
	var (
		text       = flag.String("text", "", "Generate from this text instead of a file")
		flashcards = flag.Int("flashcards", studyquiz.DefaultQuantities.Flashcards, "Number of flashcards")
		mcqs       = flag.Int("mcqs", studyquiz.DefaultQuantities.MCQs, "Number of multiple choice questions")
		matching   = flag.Int("matching", studyquiz.DefaultQuantities.Matching, "Number of matching questions")
		trueFalse  = flag.Int("truefalse", studyquiz.DefaultQuantities.TrueFalse, "Number of true/false statements")
		prompt     = flag.String("prompt", "", "Additional instructions for the generator")
		outputFile = flag.String("output", "", "Output file for the question set JSON (default: stdout)")
		provider   = flag.String("provider", "", "Generation provider: gemini or openai (default from config)")
		model      = flag.String("model", "", "Model name (default from config)")
		policy     = flag.String("policy", "", "Fallback policy: blend or atomic (default from config)")
		playMode   = flag.Bool("play", false, "Play the generated questions interactively")
		verbose    = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	if len(files) == 0 && strings.TrimSpace(*text) == "" {
		log.Fatal("Nothing to generate from. Use -file or -text.")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *provider != "" {
		cfg.Generation.Provider = *provider
	}
	if *model != "" {
		cfg.Generation.Model = *model
	}
	if *policy != "" {
		cfg.Generation.FallbackPolicy = *policy
	}
	// stdout carries the JSON, so logs stay terse unless asked for
	cfg.LogMode = "production"
	if *verbose {
		cfg.LogMode = "development"
	}

	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pipeline, err := app.NewPipeline(ctx, cfg, lg)
	if err != nil {
		log.Fatalf("Failed to set up generator: %v", err)
	}
	defer pipeline.Close()

	quantities := &studyquiz.Quantities{Flashcards: *flashcards, MCQs: *mcqs, Matching: *matching, TrueFalse: *trueFalse}
	reqs, err := buildRequests(files, *text, quantities, *prompt)
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}

	set, err := generate(ctx, pipeline.Generator, reqs)
	if err != nil {
		log.Fatalf("Failed to generate questions: %v", err)
	}

	if *playMode {
		play(os.Stdin, os.Stdout, set)
		return
	}

	output, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal questions: %v", err)
	}
	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, output, 0644); err != nil {
			log.Fatalf("Failed to write output file: %v", err)
		}
		log.Printf("Questions saved to: %s", *outputFile)
		return
	}
	fmt.Println(string(output))
}

// buildRequests turns files into data URI requests, or wraps the raw text
func buildRequests(files []string, text string, q *studyquiz.Quantities, prompt string) ([]studyquiz.GenerationRequest, error) {
	if len(files) == 0 {
		return []studyquiz.GenerationRequest{{FileContent: text, Quantities: q, CustomPrompt: prompt}}, nil
	}
	reqs := make([]studyquiz.GenerationRequest, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		fileType := mime.TypeByExtension(filepath.Ext(path))
		if fileType == "" {
			fileType = "application/octet-stream"
		}
		reqs = append(reqs, studyquiz.GenerationRequest{
			FileContent:  "data:" + fileType + ";base64," + base64.StdEncoding.EncodeToString(data),
			FileName:     filepath.Base(path),
			FileType:     fileType,
			Quantities:   q,
			CustomPrompt: prompt,
		})
	}
	return reqs, nil
}

func generate(ctx context.Context, g *studyquiz.Generator, reqs []studyquiz.GenerationRequest) (studyquiz.QuestionSet, error) {
	if len(reqs) == 1 {
		res, err := g.Generate(ctx, reqs[0])
		if err != nil {
			return studyquiz.QuestionSet{}, err
		}
		report(res.Meta)
		return res.Set, nil
	}
	res, err := g.GenerateBatch(ctx, reqs)
	if err != nil {
		return studyquiz.QuestionSet{}, err
	}
	for _, m := range res.Files {
		report(m)
	}
	return res.QuestionSet, nil
}

func report(m studyquiz.GenerationMeta) {
	name := m.FileName
	if name == "" {
		name = "text"
	}
	switch {
	case m.Demo:
		log.Printf("%s: generation failed, using demo questions", name)
	case len(m.Substituted) > 0:
		log.Printf("%s: replaced with sample content: %v", name, m.Substituted)
	}
	if m.Truncated {
		log.Printf("%s: content was truncated", name)
	}
}
