package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

type fakeOCR struct {
	text string
	err  error
	mime string
}

func (f *fakeOCR) Recognize(ctx context.Context, data []byte, mimeType string) (string, error) {
	f.mime = mimeType
	return f.text, f.err
}

func zipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func TestAllowedExtension(t *testing.T) {
	for _, name := range []string{"a.pdf", "B.DOCX", "notes.md", "scan.JPEG", "deck.ppt"} {
		if !AllowedExtension(name) {
			t.Fatalf("%s should be allowed", name)
		}
	}
	for _, name := range []string{"run.exe", "archive.zip", "noext", "page.html"} {
		if AllowedExtension(name) {
			t.Fatalf("%s should be rejected", name)
		}
		if err := CheckFileName(name); !errors.Is(err, ErrUnsupportedFile) {
			t.Fatalf("%s: expected ErrUnsupportedFile got=%v", name, err)
		}
	}
}

func TestExtract_DOCXParagraphs(t *testing.T) {
	doc := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:r><w:t>Cells are the </w:t></w:r><w:r><w:t>unit of life.</w:t></w:r></w:p>
<w:p><w:r><w:t>DNA stores information.</w:t></w:r></w:p>
</w:body></w:document>`
	data := zipBytes(t, map[string]string{"word/document.xml": doc})

	res := New(Options{}, nil).ExtractDetailed(context.Background(), data, "", "bio.docx")

	if res.Kind != KindDOCX || res.Placeholder {
		t.Fatalf("unexpected result: %+v", res)
	}
	want := "Cells are the unit of life.\nDNA stores information."
	if res.Text != want {
		t.Fatalf("text got=%q want=%q", res.Text, want)
	}
}

func TestExtract_PPTXSlidesInOrder(t *testing.T) {
	slide := func(s string) string {
		return `<p:sld xmlns:p="p" xmlns:a="a"><p:cSld><a:p><a:r><a:t>` + s + `</a:t></a:r></a:p></p:cSld></p:sld>`
	}
	data := zipBytes(t, map[string]string{
		"ppt/slides/slide10.xml": slide("ten"),
		"ppt/slides/slide2.xml":  slide("two"),
		"ppt/slides/slide1.xml":  slide("one"),
	})
	text := New(Options{}, nil).Extract(context.Background(), data, "", "deck.pptx")
	if text != "one\n\ntwo\n\nten" {
		t.Fatalf("text got=%q", text)
	}
}

func TestExtract_XLSXSheets(t *testing.T) {
	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "Term")
	f.SetCellValue("Sheet1", "B1", "Definition")
	f.SetCellValue("Sheet1", "A2", "Osmosis")
	f.SetCellValue("Sheet1", "B2", "Water diffusion")
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	res := New(Options{}, nil).ExtractDetailed(context.Background(), buf.Bytes(), "", "terms.xlsx")

	if res.Kind != KindXLSX {
		t.Fatalf("kind got=%s", res.Kind)
	}
	for _, want := range []string{"Sheet: Sheet1", "Term, Definition", "Osmosis, Water diffusion"} {
		if !strings.Contains(res.Text, want) {
			t.Fatalf("text %q missing %q", res.Text, want)
		}
	}
}

func TestExtract_CSV(t *testing.T) {
	data := []byte("term,definition\nmitosis,cell division\n,\n")
	text := New(Options{}, nil).Extract(context.Background(), data, "text/csv", "terms.csv")
	want := "Sheet: terms.csv\nterm, definition\nmitosis, cell division"
	if text != want {
		t.Fatalf("text got=%q want=%q", text, want)
	}
}

func TestExtract_RTF(t *testing.T) {
	data := []byte(`{\rtf1\ansi{\*\generator Riched20;}\pard\b Photosynthesis\b0\par Plants make sugar.\par}`)
	text := New(Options{}, nil).Extract(context.Background(), data, "", "notes.rtf")
	if !strings.Contains(text, "Photosynthesis") || !strings.Contains(text, "Plants make sugar.") {
		t.Fatalf("text got=%q", text)
	}
	if strings.Contains(text, `\`) || strings.Contains(text, "Riched20") {
		t.Fatalf("control words left in %q", text)
	}
}

func TestExtract_LegacyDOC(t *testing.T) {
	data := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0x00, 0x01}, []byte("The mitochondrion produces ATP.")...)
	data = append(data, 0x00, 0x02, 'x', 0x00)
	text := New(Options{}, nil).Extract(context.Background(), data, "application/msword", "old.doc")
	if text != "The mitochondrion produces ATP." {
		t.Fatalf("text got=%q", text)
	}
}

func TestExtract_ImageWithoutOCRIsPlaceholder(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\nrest")
	res := New(Options{}, nil).ExtractDetailed(context.Background(), png, "image/png", "scan.png")
	if !res.Placeholder || !strings.Contains(res.Text, "scan.png") {
		t.Fatalf("expected placeholder naming the file: %+v", res)
	}
}

func TestExtract_ImageWithOCR(t *testing.T) {
	ocr := &fakeOCR{text: "Recognised lecture notes"}
	res := New(Options{OCR: ocr}, nil).ExtractDetailed(context.Background(), []byte{0xFF, 0xD8, 0xFF, 0xE0}, "", "photo.jpg")
	if !res.OCR || res.Text != "Recognised lecture notes" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if ocr.mime != "image/jpeg" {
		t.Fatalf("mime got=%q", ocr.mime)
	}

	failing := &fakeOCR{err: errors.New("quota")}
	res = New(Options{OCR: failing}, nil).ExtractDetailed(context.Background(), []byte{0xFF, 0xD8, 0xFF, 0xE0}, "", "photo.jpg")
	if !res.Placeholder {
		t.Fatalf("ocr failure should degrade to a placeholder: %+v", res)
	}
}

func TestExtract_BrokenPDFIsScanned(t *testing.T) {
	res := New(Options{}, nil).ExtractDetailed(context.Background(), []byte("%PDF-1.4 garbage"), "application/pdf", "scan.pdf")
	if !res.Scanned || !res.Placeholder {
		t.Fatalf("expected scanned placeholder: %+v", res)
	}
}

func TestExtract_EmptyAndUnknown(t *testing.T) {
	e := New(Options{}, nil)
	if res := e.ExtractDetailed(context.Background(), nil, "", "empty.txt"); !res.Placeholder {
		t.Fatalf("empty file should be a placeholder")
	}
	if res := e.ExtractDetailed(context.Background(), []byte{0x00, 0x01, 0x02}, "", "blob.bin"); !res.Placeholder || res.Kind != KindUnknown {
		t.Fatalf("unknown binary should be a placeholder: %+v", res)
	}
}

func TestLooksScanned(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"short", true},
		{strings.Repeat("Real sentence with words. ", 5), false},
		{strings.Repeat("@#$% ^&*( ", 10), true},
		{strings.Repeat(" ", 100), true},
	}
	for _, c := range cases {
		if got := looksScanned(c.text, 50, 0.3); got != c.want {
			t.Fatalf("looksScanned(%q) got=%t want=%t", c.text, got, c.want)
		}
	}
}
