package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// CreateRow inserts one row into an entry table.
func (c *Client) CreateRow(ctx context.Context, table string, fields map[string]string) (Record, error) {
	var out Record
	if err := c.doJSON(ctx, "create_row", http.MethodPost, "/api/"+url.PathEscape(table)+"/", nil, fields, &out); err != nil {
		return Record{}, err
	}
	return out, nil
}

// ListRows returns up to limit rows of an entry table. limit <= 0 uses the
// backend default.
func (c *Client) ListRows(ctx context.Context, table string, limit int) ([]Record, error) {
	var q url.Values
	if limit > 0 {
		q = url.Values{"limit": {strconv.Itoa(limit)}}
	}
	var out []Record
	if err := c.doJSON(ctx, "list_rows", http.MethodGet, "/api/"+url.PathEscape(table)+"/", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteRow removes one row by id.
func (c *Client) DeleteRow(ctx context.Context, table, id string) error {
	path := fmt.Sprintf("/api/%s/%s", url.PathEscape(table), url.PathEscape(id))
	return c.doJSON(ctx, "delete_row", http.MethodDelete, path, nil, nil, nil)
}

// UploadCSV hands a whole CSV file to the list-scoped bulk endpoint.
func (c *Client) UploadCSV(ctx context.Context, listID int, filename string, r io.Reader) (BulkUploadResult, error) {
	var out BulkUploadResult
	path := fmt.Sprintf("/api/lists/%d/upload-csv", listID)
	if err := c.doMultipart(ctx, "upload_csv", path, nil, "file", filename, r, &out); err != nil {
		return BulkUploadResult{}, err
	}
	return out, nil
}
