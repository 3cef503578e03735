package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/pharmadb/internal/api"
	"github.com/JonMunkholm/pharmadb/internal/logging"
)

// DefaultListStatus is applied to new lists that name no status.
const DefaultListStatus = "In Progress"

// CreateList validates and creates a list request.
func (s *Service) CreateList(ctx context.Context, in api.NewList) (api.ListRequest, error) {
	in.RequesterName = strings.TrimSpace(in.RequesterName)
	in.RequestPurpose = strings.TrimSpace(in.RequestPurpose)
	if err := s.validate.Struct(in); err != nil {
		return api.ListRequest{}, fmt.Errorf("validation failed: %w", err)
	}
	if in.Status == "" {
		in.Status = DefaultListStatus
	}

	l, err := s.backend.CreateList(ctx, in)
	if err != nil {
		return api.ListRequest{}, fmt.Errorf("create list: %w", err)
	}
	logging.WithFields(ctx, "list_id", l.ID, "subdomain_id", in.SubdomainID).Info("list created")
	return l, nil
}

// UpdateList changes the non-nil fields of a list.
func (s *Service) UpdateList(ctx context.Context, id int, in api.ListUpdate) (api.ListRequest, error) {
	l, err := s.backend.UpdateList(ctx, id, in)
	if err != nil {
		return api.ListRequest{}, fmt.Errorf("update list %d: %w", id, err)
	}
	return l, nil
}

// DeleteList removes a list request.
func (s *Service) DeleteList(ctx context.Context, id int) error {
	if err := s.backend.DeleteList(ctx, id); err != nil {
		return fmt.Errorf("delete list %d: %w", id, err)
	}
	logging.WithFields(ctx, "list_id", id).Info("list deleted")
	return nil
}

// AddItems appends items to a list as the context's actor. Blank fields are
// dropped and rows left empty are skipped; nothing left fails with
// ErrEmptyRecord.
func (s *Service) AddItems(ctx context.Context, listID int, items []map[string]string) (api.BulkUploadResult, error) {
	clean := make([]map[string]string, 0, len(items))
	for _, it := range items {
		if f := stripEmpty(it); len(f) > 0 {
			clean = append(clean, f)
		}
	}
	if len(clean) == 0 {
		return api.BulkUploadResult{}, ErrEmptyRecord
	}

	res, err := s.backend.AddItems(ctx, listID, ActorFromContext(ctx), clean)
	if err != nil {
		return api.BulkUploadResult{}, fmt.Errorf("add items to list %d: %w", listID, err)
	}
	return res, nil
}

// CreateVersion validates and records a version.
func (s *Service) CreateVersion(ctx context.Context, in api.NewVersion) (api.Version, error) {
	if in.CreatedBy == "" {
		in.CreatedBy = ActorFromContext(ctx)
	}
	if err := s.validate.Struct(in); err != nil {
		return api.Version{}, fmt.Errorf("validation failed: %w", err)
	}
	v, err := s.backend.CreateVersion(ctx, in)
	if err != nil {
		return api.Version{}, fmt.Errorf("create version: %w", err)
	}
	return v, nil
}

// CreateWorkLog validates and records a work log.
func (s *Service) CreateWorkLog(ctx context.Context, in api.NewWorkLog) (api.WorkLog, error) {
	if in.WorkerName == "" {
		in.WorkerName = ActorFromContext(ctx)
	}
	if err := s.validate.Struct(in); err != nil {
		return api.WorkLog{}, fmt.Errorf("validation failed: %w", err)
	}
	w, err := s.backend.CreateWorkLog(ctx, in)
	if err != nil {
		return api.WorkLog{}, fmt.Errorf("create work log: %w", err)
	}
	return w, nil
}

// History is a version and work log listing for one list or one domain.
type History struct {
	Versions []api.Version
	WorkLogs []api.WorkLog
}

// ListHistory fetches versions and work logs of one list.
func (s *Service) ListHistory(ctx context.Context, listID int) (History, error) {
	versions, err := s.backend.Versions(ctx, listID)
	if err != nil {
		return History{}, fmt.Errorf("versions of list %d: %w", listID, err)
	}
	logs, err := s.backend.WorkLogs(ctx, listID)
	if err != nil {
		return History{}, fmt.Errorf("work logs of list %d: %w", listID, err)
	}
	return History{Versions: versions, WorkLogs: logs}, nil
}

// DomainHistory fetches versions and work logs across a domain.
func (s *Service) DomainHistory(ctx context.Context, domainID int) (History, error) {
	versions, err := s.backend.DomainVersions(ctx, domainID)
	if err != nil {
		return History{}, fmt.Errorf("versions of domain %d: %w", domainID, err)
	}
	logs, err := s.backend.DomainWorkLogs(ctx, domainID)
	if err != nil {
		return History{}, fmt.Errorf("work logs of domain %d: %w", domainID, err)
	}
	return History{Versions: versions, WorkLogs: logs}, nil
}
