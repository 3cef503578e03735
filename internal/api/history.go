package api

import (
	"context"
	"fmt"
	"net/http"
)

// Versions returns the version history of one list.
func (c *Client) Versions(ctx context.Context, listID int) ([]Version, error) {
	var out []Version
	if err := c.doJSON(ctx, "versions", http.MethodGet, fmt.Sprintf("/versions/%d", listID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DomainVersions returns versions across every list of a domain, newest first.
func (c *Client) DomainVersions(ctx context.Context, domainID int) ([]Version, error) {
	var out []Version
	if err := c.doJSON(ctx, "domain_versions", http.MethodGet, fmt.Sprintf("/api/lists/domain/%d/versions", domainID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateVersion records a version.
func (c *Client) CreateVersion(ctx context.Context, in NewVersion) (Version, error) {
	var out Version
	if err := c.doJSON(ctx, "create_version", http.MethodPost, "/versions", nil, in, &out); err != nil {
		return Version{}, err
	}
	return out, nil
}

// WorkLogs returns the work logs of one list.
func (c *Client) WorkLogs(ctx context.Context, listID int) ([]WorkLog, error) {
	var out []WorkLog
	if err := c.doJSON(ctx, "worklogs", http.MethodGet, fmt.Sprintf("/worklogs/%d", listID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DomainWorkLogs returns work logs across every list of a domain.
func (c *Client) DomainWorkLogs(ctx context.Context, domainID int) ([]WorkLog, error) {
	var out []WorkLog
	if err := c.doJSON(ctx, "domain_worklogs", http.MethodGet, fmt.Sprintf("/api/lists/domain/%d/worklogs", domainID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateWorkLog records a work log.
func (c *Client) CreateWorkLog(ctx context.Context, in NewWorkLog) (WorkLog, error) {
	var out WorkLog
	if err := c.doJSON(ctx, "create_worklog", http.MethodPost, "/worklogs", nil, in, &out); err != nil {
		return WorkLog{}, err
	}
	return out, nil
}
