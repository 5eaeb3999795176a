package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
)

// OCR recognises text in scanned PDFs and images
type OCR interface {
	Recognize(ctx context.Context, data []byte, mimeType string) (string, error)
}

// DocumentAIOCR runs a Document AI OCR processor over raw bytes
type DocumentAIOCR struct {
	client *documentai.DocumentProcessorClient
	name   string
}

// NewDocumentAIOCR connects to the regional Document AI endpoint
func NewDocumentAIOCR(ctx context.Context, projectID, location, processorID string, opts ...option.ClientOption) (*DocumentAIOCR, error) {
	if location == "" {
		location = "us"
	}
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", location)
	opts = append([]option.ClientOption{option.WithEndpoint(endpoint)}, opts...)
	client, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("documentai client: %w", err)
	}
	return &DocumentAIOCR{
		client: client,
		name:   fmt.Sprintf("projects/%s/locations/%s/processors/%s", projectID, location, processorID),
	}, nil
}

// Recognize sends data inline and returns the document text
func (d *DocumentAIOCR) Recognize(ctx context.Context, data []byte, mimeType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	resp, err := d.client.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: d.name,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: mimeType,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("documentai ProcessDocument: %w", err)
	}
	if resp == nil || resp.Document == nil {
		return "", nil
	}
	return strings.TrimSpace(resp.Document.Text), nil
}

// Close releases the client connection
func (d *DocumentAIOCR) Close() error {
	return d.client.Close()
}
