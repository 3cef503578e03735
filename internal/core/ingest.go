package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/JonMunkholm/pharmadb/internal/api"
	"github.com/JonMunkholm/pharmadb/internal/logging"
)

// ingestTypes are the document types the backend extractor reads.
var ingestTypes = []string{
	"application/pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"text/plain",
}

type ingestRequest struct {
	Uploader string `validate:"required"`
	Filename string `validate:"required"`
}

// Ingest uploads a document for the backend to extract changes from.
// The uploader name is required and the content must sniff as PDF, DOCX or
// plain text.
func (s *Service) Ingest(ctx context.Context, uploader, filename string, r io.Reader) (api.IngestResult, error) {
	in := ingestRequest{Uploader: strings.TrimSpace(uploader), Filename: strings.TrimSpace(filename)}
	if err := s.validate.Struct(in); err != nil {
		return api.IngestResult{}, fmt.Errorf("validation failed: %w", err)
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return api.IngestResult{}, fmt.Errorf("read document: %w", err)
	}
	if s.maxFileSize > 0 && int64(len(content)) > s.maxFileSize {
		return api.IngestResult{}, fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, len(content), s.maxFileSize)
	}

	mtype := mimetype.Detect(content)
	if !isAnyOf(mtype, ingestTypes) {
		return api.IngestResult{}, fmt.Errorf("%w: %s", ErrUnsupportedDocument, mtype.String())
	}

	logger := logging.WithFields(ctx, "file", in.Filename, "uploader", in.Uploader, "mime", mtype.String())
	res, err := s.backend.Ingest(ctx, in.Uploader, in.Filename, bytes.NewReader(content))
	if err != nil {
		logger.Warn("ingest failed", "error", err)
		return api.IngestResult{}, fmt.Errorf("ingest document: %w", err)
	}
	logger.Info("document ingested", "doc_id", res.DocID, "changes", res.ChangesMade)
	return res, nil
}

// isAnyOf walks the detected type's parents, so text/csv still counts as
// text/plain.
func isAnyOf(m *mimetype.MIME, types []string) bool {
	for ; m != nil; m = m.Parent() {
		for _, t := range types {
			if m.Is(t) {
				return true
			}
		}
	}
	return false
}
