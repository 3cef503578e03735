package core

import (
	"context"
	"io"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/pharmadb/internal/api"
	"github.com/JonMunkholm/pharmadb/internal/metrics"
)

// Backend is the subset of the REST client the workflows use. *api.Client
// implements it.
type Backend interface {
	CreateRow(ctx context.Context, table string, fields map[string]string) (api.Record, error)
	ListRows(ctx context.Context, table string, limit int) ([]api.Record, error)
	DeleteRow(ctx context.Context, table, id string) error
	UploadCSV(ctx context.Context, listID int, filename string, r io.Reader) (api.BulkUploadResult, error)

	Lists(ctx context.Context, filter api.ListFilter) ([]api.ListRequest, error)
	List(ctx context.Context, id int) (api.ListDetail, error)
	CreateList(ctx context.Context, in api.NewList) (api.ListRequest, error)
	UpdateList(ctx context.Context, id int, in api.ListUpdate) (api.ListRequest, error)
	DeleteList(ctx context.Context, id int) error
	AddItems(ctx context.Context, id int, updatedBy string, items []map[string]string) (api.BulkUploadResult, error)
	Subdomains(ctx context.Context, domainID int) ([]api.Subdomain, error)
	ListRequests(ctx context.Context, domainID int) ([]api.ListRequest, error)

	Versions(ctx context.Context, listID int) ([]api.Version, error)
	DomainVersions(ctx context.Context, domainID int) ([]api.Version, error)
	CreateVersion(ctx context.Context, in api.NewVersion) (api.Version, error)
	WorkLogs(ctx context.Context, listID int) ([]api.WorkLog, error)
	DomainWorkLogs(ctx context.Context, domainID int) ([]api.WorkLog, error)
	CreateWorkLog(ctx context.Context, in api.NewWorkLog) (api.WorkLog, error)

	ChatQuery(ctx context.Context, in api.ChatRequest) (api.ChatResponse, error)
	ChatClear(ctx context.Context, sessionID string) error
	Ingest(ctx context.Context, uploader, filename string, r io.Reader) (api.IngestResult, error)
}

// DefaultEntryLimit is how many rows an entry table view fetches.
const DefaultEntryLimit = 100

// Service wires the workflows to a backend.
type Service struct {
	backend  Backend
	metrics  *metrics.Set
	validate *validator.Validate
	limiter  *ImportLimiter

	entryLimit  int
	maxFileSize int64
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records import and delete counts on m. A nil m keeps the
// default set.
func WithMetrics(m *metrics.Set) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithImportLimiter bounds concurrent row-by-row imports.
func WithImportLimiter(l *ImportLimiter) Option {
	return func(s *Service) { s.limiter = l }
}

// WithEntryLimit sets how many rows entry views request.
func WithEntryLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.entryLimit = n
		}
	}
}

// WithMaxFileSize rejects selected files larger than n bytes. Zero disables the check.
func WithMaxFileSize(n int64) Option {
	return func(s *Service) { s.maxFileSize = n }
}

// NewService creates a Service backed by b.
func NewService(b Backend, opts ...Option) *Service {
	s := &Service{
		backend:    b,
		metrics:    metrics.Default(),
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		entryLimit: DefaultEntryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend exposes the underlying client for read-only pass-through calls.
func (s *Service) Backend() Backend {
	return s.backend
}

// Limiter returns the import limiter, or nil when imports are unbounded.
func (s *Service) Limiter() *ImportLimiter {
	return s.limiter
}

// Entries returns the rows of a subdomain's entry table.
func (s *Service) Entries(ctx context.Context, subdomain string) (string, []api.Record, error) {
	table, err := resolve(subdomain)
	if err != nil {
		return "", nil, err
	}
	rows, err := s.backend.ListRows(ctx, table, s.entryLimit)
	if err != nil {
		return table, nil, err
	}
	return table, rows, nil
}

func since(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
