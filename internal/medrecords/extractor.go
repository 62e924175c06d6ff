// Package medrecords sends uploaded medical-record PDFs to the text
// extraction service and returns the plain text it produces. Extraction
// itself is a black box behind an HTTP API.
package medrecords

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/wellnesshq/tracker/internal/client"
)

// Extractor calls the extraction service.
type Extractor struct {
	client *client.Client
}

// NewExtractor returns an Extractor for the service at baseURL. A nil
// http.Client falls back to http.DefaultClient.
func NewExtractor(baseURL *url.URL, hc *http.Client) *Extractor {
	return &Extractor{client: client.NewClient(baseURL, hc)}
}

type extractResponse struct {
	Text string `json:"text"`
}

// Extract uploads one PDF and returns the extracted text. Failures are
// surfaced to the caller and not retried; the user re-triggers the upload.
func (e *Extractor) Extract(ctx context.Context, filename string, pdf []byte) (string, error) {
	req, err := e.client.NewUpload(ctx, "extract", "file", filename, pdf)
	if err != nil {
		return "", fmt.Errorf("building extraction request: %w", err)
	}

	var out extractResponse
	if _, err := e.client.Do(req, &out); err != nil {
		return "", fmt.Errorf("extracting text from %q: %w", filename, err)
	}
	return out.Text, nil
}
