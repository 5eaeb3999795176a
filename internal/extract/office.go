package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"
)

func openXMLKind(data []byte) Kind {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return KindUnknown
	}
	for _, f := range zr.File {
		switch {
		case strings.HasPrefix(f.Name, "word/"):
			return KindDOCX
		case strings.HasPrefix(f.Name, "ppt/"):
			return KindPPTX
		case strings.HasPrefix(f.Name, "xl/"):
			return KindXLSX
		}
	}
	return KindUnknown
}

// extractDOCX reads word/document.xml, one line per paragraph
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docx zip: %w", err)
	}
	f := findZipFile(zr, "word/document.xml")
	if f == nil {
		return "", fmt.Errorf("docx has no word/document.xml")
	}
	b, err := readZipFile(f)
	if err != nil {
		return "", err
	}
	return paragraphText(b), nil
}

// extractPPTX reads every slide in order, separated by blank lines
func extractPPTX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pptx zip: %w", err)
	}
	var slides []*zip.File
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			slides = append(slides, f)
		}
	}
	sort.Slice(slides, func(i, j int) bool {
		return slideNumber(slides[i].Name) < slideNumber(slides[j].Name)
	})

	var out strings.Builder
	for _, f := range slides {
		b, err := readZipFile(f)
		if err != nil {
			return "", err
		}
		if text := paragraphText(b); text != "" {
			out.WriteString(text)
			out.WriteString("\n\n")
		}
	}
	return strings.TrimSpace(out.String()), nil
}

func slideNumber(name string) int {
	n := 0
	for _, r := range strings.TrimSuffix(strings.TrimPrefix(name, "ppt/slides/slide"), ".xml") {
		if r < '0' || r > '9' {
			return n
		}
		n = n*10 + int(r-'0')
	}
	return n
}

func findZipFile(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// paragraphText gathers <t> runs and breaks lines at the end of each <p>
func paragraphText(xmlBytes []byte) string {
	dec := xml.NewDecoder(bytes.NewReader(xmlBytes))
	var out, line strings.Builder
	flush := func() {
		if s := strings.TrimSpace(line.String()); s != "" {
			out.WriteString(s)
			out.WriteString("\n")
		}
		line.Reset()
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				var v string
				if err := dec.DecodeElement(&v, &el); err == nil {
					line.WriteString(v)
				}
			case "tab":
				line.WriteString(" ")
			}
		case xml.EndElement:
			if el.Name.Local == "p" {
				flush()
			}
		}
	}
	flush()
	return strings.TrimSpace(out.String())
}

// extractLegacyBinary pulls printable runs out of .doc and .ppt files.
// Runs shorter than four characters are treated as binary noise.
func extractLegacyBinary(data []byte) string {
	var out strings.Builder
	var run []rune
	emit := func() {
		if len(run) >= 4 {
			out.WriteString(string(run))
			out.WriteString(" ")
		}
		run = run[:0]
	}
	for _, b := range data {
		r := rune(b)
		if r == '\r' || r == '\n' || r == '\t' || (r >= 0x20 && r < 0x7F) {
			run = append(run, r)
			continue
		}
		emit()
	}
	emit()
	return collapseWhitespace(strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, out.String()))
}
