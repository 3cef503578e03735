package core

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ingestBackend(t *testing.T, opts ...Option) (*Service, *fakeBackend) {
	return newTestService(t, func(w http.ResponseWriter, r *http.Request, rr recordedRequest) {
		assert.Equal(t, "/api/injection/upload", r.URL.Path)
		assert.Equal(t, "Asha", r.FormValue("uploader_name"))
		writeJSON(w, http.StatusOK, map[string]any{
			"message":      "Document processed",
			"doc_id":       "doc-1",
			"changes_made": 2,
		})
	}, opts...)
}

func TestIngest_PlainText(t *testing.T) {
	svc, fb := ingestBackend(t)

	res, err := svc.Ingest(context.Background(), " Asha ", "notes.txt",
		bytes.NewReader([]byte("Add Dr. Rao to the Call List for next week.\n")))
	require.NoError(t, err)
	assert.Equal(t, "doc-1", res.DocID)
	assert.Equal(t, 2, res.ChangesMade)
	assert.Len(t, fb.Requests(), 1)
}

func TestIngest_Rejections(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

	tests := []struct {
		name     string
		uploader string
		filename string
		content  []byte
		wantErr  error
	}{
		{"missing uploader", "  ", "notes.txt", []byte("hello"), nil},
		{"missing filename", "Asha", "", []byte("hello"), nil},
		{"image", "Asha", "scan.png", png, ErrUnsupportedDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, fb := ingestBackend(t)
			_, err := svc.Ingest(context.Background(), tt.uploader, tt.filename, bytes.NewReader(tt.content))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Empty(t, fb.Requests())
		})
	}
}

func TestIngest_TooLarge(t *testing.T) {
	svc, fb := ingestBackend(t, WithMaxFileSize(4))
	_, err := svc.Ingest(context.Background(), "Asha", "notes.txt", bytes.NewReader([]byte("hello world")))
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.Empty(t, fb.Requests())
}
