package extract

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFile is returned for file names outside the allow-list
var ErrUnsupportedFile = errors.New("unsupported file type")

// Kind is the detected document format
type Kind string

const (
	KindPDF     Kind = "pdf"
	KindDOCX    Kind = "docx"
	KindDOC     Kind = "doc"
	KindXLSX    Kind = "xlsx"
	KindXLS     Kind = "xls"
	KindCSV     Kind = "csv"
	KindPPTX    Kind = "pptx"
	KindPPT     Kind = "ppt"
	KindRTF     Kind = "rtf"
	KindText    Kind = "text"
	KindImage   Kind = "image"
	KindUnknown Kind = "unknown"
)

var allowed = map[string]Kind{
	".pdf":  KindPDF,
	".doc":  KindDOC,
	".docx": KindDOCX,
	".txt":  KindText,
	".rtf":  KindRTF,
	".md":   KindText,
	".csv":  KindCSV,
	".xls":  KindXLS,
	".xlsx": KindXLSX,
	".ppt":  KindPPT,
	".pptx": KindPPTX,
	".png":  KindImage,
	".jpg":  KindImage,
	".jpeg": KindImage,
}

var mimeKinds = map[string]Kind{
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   KindDOCX,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         KindXLSX,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": KindPPTX,

	"application/pdf":               KindPDF,
	"application/msword":            KindDOC,
	"application/vnd.ms-excel":      KindXLS,
	"application/vnd.ms-powerpoint": KindPPT,
	"application/rtf":               KindRTF,
	"text/rtf":                      KindRTF,
	"text/csv":                      KindCSV,
	"text/plain":                    KindText,
	"text/markdown":                 KindText,
	"image/png":                     KindImage,
	"image/jpeg":                    KindImage,
}

// AllowedExtensions lists the accepted upload extensions
func AllowedExtensions() []string {
	return []string{".pdf", ".doc", ".docx", ".txt", ".rtf", ".md", ".csv", ".xls", ".xlsx", ".ppt", ".pptx", ".png", ".jpg", ".jpeg"}
}

// AllowedExtension reports whether name has an accepted extension
func AllowedExtension(name string) bool {
	_, ok := allowed[strings.ToLower(filepath.Ext(name))]
	return ok
}

// CheckFileName returns ErrUnsupportedFile if name is not on the allow-list
func CheckFileName(name string) error {
	if !AllowedExtension(name) {
		return ErrUnsupportedFile
	}
	return nil
}

// DetectKind picks a format from magic bytes, then the MIME type, then the extension
func DetectKind(data []byte, fileType, fileName string) Kind {
	switch {
	case isPDF(data):
		return KindPDF
	case isZip(data):
		if k := openXMLKind(data); k != KindUnknown {
			return k
		}
	case isPNG(data) || isJPEG(data):
		return KindImage
	}

	mt := strings.ToLower(strings.TrimSpace(fileType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if k, ok := mimeKinds[mt]; ok {
		return k
	}
	if k, ok := allowed[strings.ToLower(filepath.Ext(fileName))]; ok {
		return k
	}
	if strings.HasPrefix(mt, "text/") || isProbablyText(data) {
		return KindText
	}
	return KindUnknown
}

// MimeType returns the MIME type sent to OCR for a kind
func MimeType(k Kind, fileName string) string {
	switch k {
	case KindPDF:
		return "application/pdf"
	case KindImage:
		if ext := strings.ToLower(filepath.Ext(fileName)); ext == ".png" {
			return "image/png"
		}
		return "image/jpeg"
	}
	return "application/octet-stream"
}

func isPDF(b []byte) bool {
	return len(b) >= 5 && string(b[:5]) == "%PDF-"
}

func isZip(b []byte) bool {
	return len(b) >= 4 && b[0] == 'P' && b[1] == 'K' && b[2] == 3 && b[3] == 4
}

func isPNG(b []byte) bool {
	return len(b) >= 8 && string(b[:8]) == "\x89PNG\r\n\x1a\n"
}

func isJPEG(b []byte) bool {
	return len(b) >= 3 && b[0] == 0xFF && b[1] == 0xD8 && b[2] == 0xFF
}

func isProbablyText(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	sample := b[:min(len(b), 4096)]
	good := 0
	for _, c := range sample {
		if c == 0x00 {
			return false
		}
		if c == '\n' || c == '\r' || c == '\t' || (c >= 0x20 && c <= 0x7E) || c >= 0x80 {
			good++
		}
	}
	return float64(good)/float64(len(sample)) > 0.9
}
