package studyquiz

import (
	"context"
	"fmt"
	"strings"
)

// HarmCategory is a content category a provider may block
type HarmCategory string

const (
	HarmHarassment       HarmCategory = "harassment"
	HarmHateSpeech       HarmCategory = "hate_speech"
	HarmSexuallyExplicit HarmCategory = "sexually_explicit"
	HarmDangerousContent HarmCategory = "dangerous_content"
)

// BlockThreshold is the probability level at or above which content is blocked
type BlockThreshold string

const (
	BlockNone           BlockThreshold = "none"
	BlockLowAndAbove    BlockThreshold = "low_and_above"
	BlockMediumAndAbove BlockThreshold = "medium_and_above"
	BlockOnlyHigh       BlockThreshold = "only_high"
)

// SafetyRule sets the block threshold for one category
type SafetyRule struct {
	Category  HarmCategory   `json:"category" yaml:"category"`
	Threshold BlockThreshold `json:"threshold" yaml:"threshold"`
}

// SafetySettings is passed through to the provider on every call
type SafetySettings []SafetyRule

// DefaultSafety blocks all four categories at medium probability and above
var DefaultSafety = SafetySettings{
	{Category: HarmHarassment, Threshold: BlockMediumAndAbove},
	{Category: HarmHateSpeech, Threshold: BlockMediumAndAbove},
	{Category: HarmSexuallyExplicit, Threshold: BlockMediumAndAbove},
	{Category: HarmDangerousContent, Threshold: BlockMediumAndAbove},
}

// Validate checks that every rule uses a known category and threshold
func (s SafetySettings) Validate() error {
	for _, r := range s {
		switch r.Category {
		case HarmHarassment, HarmHateSpeech, HarmSexuallyExplicit, HarmDangerousContent:
		default:
			return fmt.Errorf("unknown safety category %q", r.Category)
		}
		switch r.Threshold {
		case BlockNone, BlockLowAndAbove, BlockMediumAndAbove, BlockOnlyHigh:
		default:
			return fmt.Errorf("unknown safety threshold %q for %s", r.Threshold, r.Category)
		}
	}
	return nil
}

// Describe renders the rules as plain instructions for providers without native safety settings
func (s SafetySettings) Describe() string {
	if len(s) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Refuse to produce content in these categories:\n")
	for _, r := range s {
		if r.Threshold == BlockNone {
			continue
		}
		sb.WriteString(fmt.Sprintf("- %s (block %s)\n", strings.ReplaceAll(string(r.Category), "_", " "), strings.ReplaceAll(string(r.Threshold), "_", " ")))
	}
	return sb.String()
}

// Provider sends a prompt to a generative model and returns its raw text
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string, safety SafetySettings) (string, error)
}
