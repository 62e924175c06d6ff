// Package records implements the medical-record PDF upload handler.
package records

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/wellnesshq/tracker/internal/medrecords"
)

// 10 MB upload cap, matching the extractor service's own limit.
const maxUploadBytes = 10 << 20

// Handler serves the record upload endpoint.
type Handler struct {
	extractor *medrecords.Extractor
}

// NewHandler returns a Handler backed by the extractor.
func NewHandler(extractor *medrecords.Extractor) *Handler {
	return &Handler{extractor: extractor}
}

// Upload accepts one PDF and responds with the extracted text.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		writeError(w, http.StatusBadRequest, "please select a valid PDF file")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading upload")
		return
	}

	text, err := h.extractor.Extract(r.Context(), header.Filename, data)
	if err != nil {
		slog.Error("extracting record text", "error", err)
		writeError(w, http.StatusBadGateway, "an error occurred while parsing the PDF, please try again")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"text": text}); err != nil {
		slog.Error("encoding upload response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg}) //nolint:gosec // We don't care if this fails
}
