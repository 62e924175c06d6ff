package medrecords

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
)

func TestExtract(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "https://extractor.example.com/extract",
		httpmock.NewStringResponder(200, `{"text":"Patient is in excellent health."}`))

	base, _ := url.Parse("https://extractor.example.com/")
	e := NewExtractor(base, nil)

	text, err := e.Extract(context.Background(), "records.pdf", []byte("%PDF-1.4 fake"))
	if err != nil {
		t.Fatal(err)
	}
	if text != "Patient is in excellent health." {
		t.Errorf("unexpected text %q", text)
	}
}

func TestExtractServiceError(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "https://extractor.example.com/extract",
		httpmock.NewStringResponder(500, `{"error":"unreadable"}`))

	base, _ := url.Parse("https://extractor.example.com/")
	e := NewExtractor(base, nil)

	_, err := e.Extract(context.Background(), "records.pdf", []byte("%PDF-1.4 fake"))
	if err == nil {
		t.Fatal("expected error for failed extraction")
	}
	if !strings.Contains(err.Error(), "records.pdf") {
		t.Errorf("error should name the file: %v", err)
	}
}
