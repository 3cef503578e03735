package web

// Shared request parsing for the gateway handlers.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/pharmadb/internal/api"
	"github.com/JonMunkholm/pharmadb/internal/catalog"
	"github.com/JonMunkholm/pharmadb/internal/core"
)

// maxFormMemory is how much of a multipart form is held in memory before
// spilling to temp files.
const maxFormMemory = 8 << 20

// pathInt parses a positive integer URL parameter.
func pathInt(r *http.Request, name string) (int, error) {
	v := chi.URLParam(r, name)
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s %q is not a positive id", errBadRequest, name, v)
	}
	return n, nil
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
	}
	return nil
}

// stringify renders a decoded JSON scalar the way a form field would hold it.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// domain resolves the {domainID} parameter against the catalog.
func domain(r *http.Request) (catalog.Domain, error) {
	id, err := pathInt(r, "domainID")
	if err != nil {
		return catalog.Domain{}, err
	}
	d, ok := catalog.DomainByID(id)
	if !ok {
		return catalog.Domain{}, fmt.Errorf("domain %d: %w", id, core.ErrNotFound)
	}
	return d, nil
}

// subdomain resolves {domainID}/{subdomainID} against the backend, since
// entry tables are keyed by the subdomain's name.
func (s *Server) subdomain(r *http.Request) (api.Subdomain, error) {
	d, err := domain(r)
	if err != nil {
		return api.Subdomain{}, err
	}
	id, err := pathInt(r, "subdomainID")
	if err != nil {
		return api.Subdomain{}, err
	}
	return s.findSubdomain(r.Context(), d.BackendID, id)
}

func (s *Server) findSubdomain(ctx context.Context, domainID, subdomainID int) (api.Subdomain, error) {
	subs, err := s.service.Backend().Subdomains(ctx, domainID)
	if err != nil {
		return api.Subdomain{}, fmt.Errorf("load subdomains: %w", err)
	}
	for _, sub := range subs {
		if sub.ID == subdomainID {
			return sub, nil
		}
	}
	return api.Subdomain{}, fmt.Errorf("subdomain %d of domain %d: %w", subdomainID, domainID, core.ErrNotFound)
}

// readUpload returns the named multipart file, bounded by the configured
// size limit.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, field string) (string, []byte, error) {
	limit := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, limit+maxFormMemory)

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return "", nil, fmt.Errorf("%w: over %d bytes", core.ErrFileTooLarge, limit)
		}
		return "", nil, fmt.Errorf("%w: invalid form: %v", errBadRequest, err)
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return "", nil, core.ErrNoFile
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(content)) > limit {
		return "", nil, fmt.Errorf("%w: over %d bytes", core.ErrFileTooLarge, limit)
	}
	return header.Filename, content, nil
}

// render writes a full page.
func render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	templ.Handler(c).ServeHTTP(w, r)
}
