package extract

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	pdf "github.com/ledongthuc/pdf"
)

func extractPDF(data []byte) (text string, err error) {
	// the pdf package panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf parse panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf plaintext: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}
	return collapseWhitespace(string(b)), nil
}

var (
	rtfControlWord = regexp.MustCompile(`\\[a-zA-Z]+-?\d* ?`)
	rtfHexEscape   = regexp.MustCompile(`\\'[0-9a-fA-F]{2}`)
	rtfGroup       = regexp.MustCompile(`\{\\\*[^{}]*\}`)
)

// stripRTF removes control words and groups, keeping the visible text
func stripRTF(s string) string {
	s = rtfGroup.ReplaceAllString(s, "")
	s = rtfHexEscape.ReplaceAllString(s, "")
	s = rtfControlWord.ReplaceAllStringFunc(s, func(w string) string {
		switch strings.TrimRight(strings.TrimSpace(w), "-0123456789") {
		case `\par`, `\line`:
			return "\n"
		case `\tab`:
			return " "
		}
		return ""
	})
	s = strings.NewReplacer("{", "", "}", "", `\\`, `\`).Replace(s)
	return strings.TrimSpace(s)
}

func collapseWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// looksScanned applies the scanned document heuristic: too little text, or
// too few letters and digits among the non-space characters
func looksScanned(text string, minChars int, minAlnumRatio float64) bool {
	trimmed := strings.TrimSpace(text)
	if len([]rune(trimmed)) < minChars {
		return true
	}
	var alnum, visible int
	for _, r := range trimmed {
		if unicode.IsSpace(r) {
			continue
		}
		visible++
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}
	if visible == 0 {
		return true
	}
	return float64(alnum)/float64(visible) < minAlnumRatio
}
