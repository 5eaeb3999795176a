// Package extract turns uploaded documents into plain text for prompt building.
// Extraction never fails: unreadable input becomes a placeholder that names the file.
package extract

import (
	"context"
	"fmt"
	"strings"

	"studyquiz/internal/logger"
)

// Options holds the scanned document thresholds
type Options struct {
	MinTextChars  int
	MinAlnumRatio float64
	// OCR is optional. Without it scanned PDFs and images yield placeholders.
	OCR OCR
}

// Result describes one extraction
type Result struct {
	Text        string
	Kind        Kind
	Scanned     bool
	OCR         bool
	Placeholder bool
}

// Extractor dispatches on the detected format
type Extractor struct {
	opts Options
	log  *logger.Logger
}

// New creates an extractor. Zero thresholds select 50 characters and a 0.3 ratio.
func New(opts Options, log *logger.Logger) *Extractor {
	if opts.MinTextChars <= 0 {
		opts.MinTextChars = 50
	}
	if opts.MinAlnumRatio <= 0 {
		opts.MinAlnumRatio = 0.3
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Extractor{opts: opts, log: log.With("component", "extract")}
}

// Extract returns the document text or a placeholder
func (e *Extractor) Extract(ctx context.Context, data []byte, fileType, fileName string) string {
	return e.ExtractDetailed(ctx, data, fileType, fileName).Text
}

// ExtractDetailed is Extract plus what was detected along the way
func (e *Extractor) ExtractDetailed(ctx context.Context, data []byte, fileType, fileName string) Result {
	if fileName == "" {
		fileName = "document"
	}
	kind := DetectKind(data, fileType, fileName)
	res := Result{Kind: kind}

	if len(data) == 0 {
		return e.placeholder(res, fileName, "the file is empty")
	}

	var text string
	var err error
	switch kind {
	case KindPDF:
		text, err = extractPDF(data)
		if err != nil || looksScanned(text, e.opts.MinTextChars, e.opts.MinAlnumRatio) {
			res.Scanned = true
			return e.recognize(ctx, res, data, fileName, "it appears to be a scanned PDF without a text layer")
		}
	case KindDOCX:
		text, err = extractDOCX(data)
	case KindPPTX:
		text, err = extractPPTX(data)
	case KindXLSX:
		text, err = extractXLSX(data)
	case KindCSV:
		text, err = extractCSV(data, fileName)
	case KindDOC, KindPPT, KindXLS:
		text = extractLegacyBinary(data)
	case KindRTF:
		text = stripRTF(string(data))
	case KindText:
		text = string(data)
	case KindImage:
		return e.recognize(ctx, res, data, fileName, "images need text recognition, which is not configured")
	default:
		return e.placeholder(res, fileName, "the format is not supported")
	}

	if err != nil {
		e.log.Warn("extraction failed", "file", fileName, "kind", kind, "error", err)
		return e.placeholder(res, fileName, "its contents could not be read")
	}
	if strings.TrimSpace(text) == "" {
		return e.placeholder(res, fileName, "no text was found in it")
	}
	res.Text = text
	return res
}

func (e *Extractor) recognize(ctx context.Context, res Result, data []byte, fileName, reason string) Result {
	if e.opts.OCR == nil {
		return e.placeholder(res, fileName, reason)
	}
	text, err := e.opts.OCR.Recognize(ctx, data, MimeType(res.Kind, fileName))
	if err != nil {
		e.log.Warn("ocr failed", "file", fileName, "error", err)
		return e.placeholder(res, fileName, "text recognition failed")
	}
	if strings.TrimSpace(text) == "" {
		return e.placeholder(res, fileName, "text recognition found no text")
	}
	res.Text = text
	res.OCR = true
	return res
}

func (e *Extractor) placeholder(res Result, fileName, reason string) Result {
	res.Placeholder = true
	res.Text = fmt.Sprintf("[The file %q could not be converted to text because %s. Generate general study questions about the likely subject suggested by the file name.]", fileName, reason)
	return res
}
