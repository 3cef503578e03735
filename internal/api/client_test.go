package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := New("not a url")
	assert.Error(t, err)

	c, err := New("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
}

func TestCreateRow(t *testing.T) {
	var gotBody map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/call_list_entries/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"entry_id": 42, "hcp_id": "HCP1", "hcp_name": "Dr. A"}`)
	})

	rec, err := c.CreateRow(context.Background(), "call_list_entries", map[string]string{"hcp_id": "HCP1", "hcp_name": "Dr. A"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"hcp_id": "HCP1", "hcp_name": "Dr. A"}, gotBody)

	id, ok := rec.ID()
	assert.True(t, ok)
	assert.Equal(t, "42", id)
	assert.Equal(t, []string{"entry_id", "hcp_id", "hcp_name"}, rec.Keys())
}

func TestListRows_KeepsKeyOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/target_list/", r.URL.Path)
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		_, _ = io.WriteString(w, `[{"id": 7, "zeta": "z", "alpha": null, "nested": {"a": 1}}]`)
	})

	rows, err := c.ListRows(context.Background(), "target_list", 25)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, []string{"id", "zeta", "alpha", "nested"}, rows[0].Keys())
	assert.Equal(t, "", rows[0].String("alpha"))
	assert.Equal(t, `{"a":1}`, rows[0].String("nested"))
	id, ok := rows[0].ID()
	assert.True(t, ok)
	assert.Equal(t, "7", id)
}

func TestDeleteRow(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/call_list_entries/17", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, c.DeleteRow(context.Background(), "call_list_entries", "17"))
}

func TestServerRejectedError_Detail(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"error field", 400, `{"error": "bad hcp", "detail": "ignored"}`, "bad hcp"},
		{"fastapi detail", 404, `{"detail": "List not found"}`, "List not found"},
		{"validation list", 422, `{"detail": [{"msg": "field required", "loc": ["body"]}]}`, "field required"},
		{"message field", 500, `{"message": "boom"}`, "boom"},
		{"no detail", 502, `<html>bad gateway</html>`, "server error (status 502)"},
		{"empty", 503, ``, "server error (status 503)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.CreateRow(context.Background(), "target_list", map[string]string{"a": "b"})
			var rejected *ServerRejectedError
			require.True(t, errors.As(err, &rejected), "error = %v", err)
			assert.Equal(t, tt.status, rejected.Status)
			assert.Equal(t, tt.want, rejected.Detail)
			assert.Contains(t, err.Error(), "server rejected request: "+tt.want)
		})
	}
}

func TestBearerToken(t *testing.T) {
	var got atomic.Value
	h := func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `[]`)
	}

	c := newTestClient(t, h, WithTokenSource(StaticToken("abc")))
	_, err := c.ListRows(context.Background(), "target_list", 0)
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", got.Load())

	c = newTestClient(t, h)
	_, err = c.ListRows(context.Background(), "target_list", 0)
	require.NoError(t, err)
	assert.Equal(t, "", got.Load())
}

func TestContextTokenAndChain(t *testing.T) {
	chain := Chain{ContextToken{}, StaticToken("fallback")}

	tok, err := chain.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fallback", tok)

	tok, err = chain.Token(ContextWithToken(context.Background(), "from-browser"))
	require.NoError(t, err)
	assert.Equal(t, "from-browser", tok)
}

func TestFileTokenStore(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "nested", "token"))
	ctx := context.Background()

	tok, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, store.Save("  secret \n"))
	tok, err = store.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "secret", tok)

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	tok, err = store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(-time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	got, ok := TokenExpiry(signed)
	require.True(t, ok)
	assert.True(t, got.Equal(exp))

	_, ok = TokenExpiry("opaque-token")
	assert.False(t, ok)
}

func TestUploadCSV(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/lists/9/upload-csv", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "entries.csv", hdr.Filename)
		assert.Equal(t, "hcp_id\nHCP1", string(data))

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"success": true, "items_added": 1, "table_used": "call_list_entries", "bulk_operation_id": "x", "version_id": 3, "version_number": 2}`)
	})

	res, err := c.UploadCSV(context.Background(), 9, "entries.csv", strings.NewReader("hcp_id\nHCP1"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.ItemsAdded)
	assert.Equal(t, "call_list_entries", res.TableUsed)
	require.NotNil(t, res.VersionID)
	assert.Equal(t, 3, *res.VersionID)
}

func TestListsAndDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/lists":
			assert.Equal(t, "4", r.URL.Query().Get("subdomain_id"))
			_, _ = io.WriteString(w, `[{"request_id": 1, "subdomain_id": 4, "requester_name": "Ann", "request_purpose": "Q3",
				"subdomains": {"subdomain_id": 4, "domain_id": 1, "subdomain_name": "Call Lists"},
				"current_version": {"version_id": 5, "request_id": 1, "version_number": 2, "is_current": true}}]`)
		case "/api/lists/1":
			_, _ = io.WriteString(w, `{"request_id": 1, "subdomain_id": 4, "requester_name": "Ann", "request_purpose": "Q3",
				"subdomain": {"subdomain_id": 4, "domain_id": 1, "subdomain_name": "Call Lists"},
				"current_snapshot": {"version_id": 5, "version_number": 2, "items": [{"entry_id": 1, "hcp_id": "HCP1"}]}}`)
		default:
			http.NotFound(w, r)
		}
	})

	lists, err := c.Lists(context.Background(), ListFilter{SubdomainID: 4})
	require.NoError(t, err)
	require.Len(t, lists, 1)
	require.NotNil(t, lists[0].Subdomain)
	assert.Equal(t, 1, lists[0].Subdomain.DomainID)
	assert.Equal(t, 2, lists[0].CurrentVersion.Number)

	detail, err := c.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Call Lists", detail.SubdomainInfo.Name)
	require.Len(t, detail.Items(), 1)
	assert.Equal(t, "HCP1", detail.Items()[0].String("hcp_id"))
}

func TestAddItemsSendsBulkOperationID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotEmpty(t, body["bulk_operation_id"])
		assert.Len(t, body["items"], 2)
		_, _ = io.WriteString(w, `{"success": true, "items_added": 2}`)
	})

	res, err := c.AddItems(context.Background(), 3, "cli", []map[string]string{{"a": "1"}, {"a": "2"}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.ItemsAdded)
}

func TestChatQueryAndClear(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/chatbot/query":
			var body ChatRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "how many HCPs?", body.Question)
			assert.Equal(t, "s1", body.SessionID)
			_, _ = io.WriteString(w, `{"answer": "12", "generated_sql": "select 1", "row_count": 1, "query_type": "sql"}`)
		case "/api/chatbot/clear-session":
			assert.Equal(t, "s1", r.URL.Query().Get("session_id"))
			_, _ = io.WriteString(w, `{"message": "Session s1 cleared"}`)
		}
	})

	resp, err := c.ChatQuery(context.Background(), ChatRequest{Question: "how many HCPs?", SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "12", resp.Answer)
	assert.Equal(t, 1, resp.RowCount)

	require.NoError(t, c.ChatClear(context.Background(), "s1"))
}

func TestIngest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/injection/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Ann", r.FormValue("uploader_name"))
		_, _ = io.WriteString(w, `{"message": "ok", "doc_id": "d1", "changes_made": 1}`)
	})

	res, err := c.Ingest(context.Background(), "Ann", "note.txt", strings.NewReader("Dr. A moved"))
	require.NoError(t, err)
	assert.Equal(t, "d1", res.DocID)
}

func TestHistoryEndpoints(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodPost {
			_, _ = io.WriteString(w, `{}`)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	})
	ctx := context.Background()

	_, err := c.Versions(ctx, 1)
	require.NoError(t, err)
	_, err = c.DomainVersions(ctx, 2)
	require.NoError(t, err)
	_, err = c.WorkLogs(ctx, 1)
	require.NoError(t, err)
	_, err = c.DomainWorkLogs(ctx, 2)
	require.NoError(t, err)
	_, err = c.CreateVersion(ctx, NewVersion{RequestID: 1})
	require.NoError(t, err)
	_, err = c.CreateWorkLog(ctx, NewWorkLog{RequestID: 1})
	require.NoError(t, err)
	_, err = c.Subdomains(ctx, 2)
	require.NoError(t, err)
	_, err = c.ListRequests(ctx, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"GET /versions/1",
		"GET /api/lists/domain/2/versions",
		"GET /worklogs/1",
		"GET /api/lists/domain/2/worklogs",
		"POST /versions",
		"POST /worklogs",
		"GET /api/subdomains",
		"GET /api/list_requests",
	}, paths)
}

func TestRecordMarshalKeepsOrder(t *testing.T) {
	var r Record
	require.NoError(t, json.Unmarshal([]byte(`{"b": 1, "a": "x"}`), &r))
	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"b":1,"a":"x"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`[1]`), &r))
}

func TestRecord_KeepsLargeIDsAndOrder(t *testing.T) {
	var r Record
	require.NoError(t, json.Unmarshal([]byte(`{"entry_id": 9007199254740993, "tags": ["a", "b"], "note": null, "ok": true}`), &r))

	assert.Equal(t, []string{"entry_id", "tags", "note", "ok"}, r.Keys())
	id, ok := r.ID()
	require.True(t, ok)
	assert.Equal(t, "9007199254740993", id)
	assert.Equal(t, `["a","b"]`, r.String("tags"))
	assert.Equal(t, "", r.String("note"))
	assert.Equal(t, "true", r.String("ok"))
	assert.Equal(t, "", r.String("missing"))
}

func TestRecord_SetReplacesInPlace(t *testing.T) {
	var r Record
	assert.Empty(t, r.Keys())
	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(out))

	r.Set("hcp_id", "HCP001")
	r.Set("status", "Open")
	r.Set("hcp_id", "HCP002")

	assert.Equal(t, []string{"hcp_id", "status"}, r.Keys())
	assert.Equal(t, "HCP002", r.String("hcp_id"))
	out, err = json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"hcp_id":"HCP002","status":"Open"}`, string(out))
}
