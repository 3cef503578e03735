package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// ListFilter narrows GET /api/lists. Zero values are not sent.
type ListFilter struct {
	Category    string
	SubdomainID int
	Limit       int
}

func (f ListFilter) query() url.Values {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.SubdomainID > 0 {
		q.Set("subdomain_id", strconv.Itoa(f.SubdomainID))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// Lists returns list summaries.
func (c *Client) Lists(ctx context.Context, filter ListFilter) ([]ListRequest, error) {
	var out []ListRequest
	if err := c.doJSON(ctx, "lists", http.MethodGet, "/api/lists", filter.query(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// List returns one list with its current items.
func (c *Client) List(ctx context.Context, id int) (ListDetail, error) {
	var out ListDetail
	if err := c.doJSON(ctx, "list_detail", http.MethodGet, fmt.Sprintf("/api/lists/%d", id), nil, nil, &out); err != nil {
		return ListDetail{}, err
	}
	return out, nil
}

// CreateList creates a list request.
func (c *Client) CreateList(ctx context.Context, in NewList) (ListRequest, error) {
	var out ListRequest
	if err := c.doJSON(ctx, "create_list", http.MethodPost, "/api/lists", nil, in, &out); err != nil {
		return ListRequest{}, err
	}
	return out, nil
}

// UpdateList changes the given fields of a list.
func (c *Client) UpdateList(ctx context.Context, id int, in ListUpdate) (ListRequest, error) {
	var out ListRequest
	if err := c.doJSON(ctx, "update_list", http.MethodPut, fmt.Sprintf("/api/lists/%d", id), nil, in, &out); err != nil {
		return ListRequest{}, err
	}
	return out, nil
}

// DeleteList removes a list request.
func (c *Client) DeleteList(ctx context.Context, id int) error {
	return c.doJSON(ctx, "delete_list", http.MethodDelete, fmt.Sprintf("/api/lists/%d", id), nil, nil, nil)
}

// AddItems appends items to a list in one backend operation. A fresh
// bulk_operation_id ties the inserted rows together.
func (c *Client) AddItems(ctx context.Context, id int, updatedBy string, items []map[string]string) (BulkUploadResult, error) {
	body := struct {
		Items           []map[string]string `json:"items"`
		UpdatedBy       string              `json:"updated_by,omitempty"`
		BulkOperationID string              `json:"bulk_operation_id"`
	}{
		Items:           items,
		UpdatedBy:       updatedBy,
		BulkOperationID: uuid.NewString(),
	}

	var out BulkUploadResult
	if err := c.doJSON(ctx, "add_items", http.MethodPost, fmt.Sprintf("/api/lists/%d/items", id), nil, body, &out); err != nil {
		return BulkUploadResult{}, err
	}
	return out, nil
}

// Subdomains returns the subdomains of a domain.
func (c *Client) Subdomains(ctx context.Context, domainID int) ([]Subdomain, error) {
	q := url.Values{"domain_id": {strconv.Itoa(domainID)}}
	var out []Subdomain
	if err := c.doJSON(ctx, "subdomains", http.MethodGet, "/api/subdomains", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListRequests returns the list requests of a domain.
func (c *Client) ListRequests(ctx context.Context, domainID int) ([]ListRequest, error) {
	q := url.Values{"domain_id": {strconv.Itoa(domainID)}}
	var out []ListRequest
	if err := c.doJSON(ctx, "list_requests", http.MethodGet, "/api/list_requests", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
