package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/pharmadb/internal/api"
	"github.com/JonMunkholm/pharmadb/internal/catalog"
	"github.com/JonMunkholm/pharmadb/internal/core"
)

// watchedView returns a view of the customer domain with Call Lists
// selected, backed by a server that accepts every create and delete.
func watchedView(t *testing.T) (*core.DomainView, *atomic.Int32, *atomic.Bool) {
	t.Helper()

	var v *core.DomainView
	var created atomic.Int32
	var pausedDuringSave atomic.Bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/call_list_entries/":
			n := created.Add(1)
			pausedDuringSave.Store(v.Poller().Paused())
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			body["entry_id"] = strconv.Itoa(int(n))
			_ = json.NewEncoder(w).Encode(body)
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	client, err := api.New(srv.URL)
	require.NoError(t, err)
	dom, ok := catalog.DomainByKey("customer")
	require.True(t, ok)

	v = core.NewService(client).NewDomainView(dom, time.Minute)
	require.NoError(t, v.Select("Call Lists"))
	return v, &created, &pausedDuringSave
}

func TestRunEntryCommand_Add(t *testing.T) {
	v, created, paused := watchedView(t)

	msg, err := runEntryCommand(context.Background(), v, []string{"add", "hcp_id=HCP001", "status="})
	require.NoError(t, err)
	assert.Equal(t, "Added entry 1 to call_list_entries", msg)
	assert.Equal(t, int32(1), created.Load())
	assert.True(t, paused.Load(), "view keeps refreshing during the save")
	assert.False(t, v.Poller().Paused())
}

func TestRunEntryCommand_AddFailureResumes(t *testing.T) {
	v, created, _ := watchedView(t)

	_, err := runEntryCommand(context.Background(), v, []string{"add", "status="})
	assert.ErrorIs(t, err, core.ErrEmptyRecord)
	assert.Zero(t, created.Load())
	assert.False(t, v.Poller().Paused())
}

func TestRunEntryCommand_Import(t *testing.T) {
	v, created, _ := watchedView(t)
	path := filepath.Join(t.TempDir(), "calls.csv")
	require.NoError(t, os.WriteFile(path, []byte("hcp_id,hcp_name\nHCP001,Ana\nHCP002,Ben\n"), 0o600))

	msg, err := runEntryCommand(context.Background(), v, []string{"import", path})
	require.NoError(t, err)
	assert.Equal(t, "Imported 2 entries", msg)
	assert.Equal(t, int32(2), created.Load())
	assert.False(t, v.Poller().Paused())
}

func TestRunEntryCommand_Delete(t *testing.T) {
	v, _, _ := watchedView(t)

	msg, err := runEntryCommand(context.Background(), v, []string{"delete", "4"})
	require.NoError(t, err)
	assert.Equal(t, "Deleted 1 entry", msg)
}

func TestRunEntryCommand_Rejects(t *testing.T) {
	v, created, _ := watchedView(t)
	ctx := context.Background()

	for _, fields := range [][]string{
		{"rename", "x"},
		{"import"},
		{"import", "a.csv", "zero"},
		{"delete"},
	} {
		_, err := runEntryCommand(ctx, v, fields)
		assert.Error(t, err, "%v", fields)
	}

	_, err := runEntryCommand(ctx, nil, []string{"add", "hcp_id=HCP001"})
	assert.Error(t, err, "dashboard has no entry table")
	assert.Zero(t, created.Load())
	assert.False(t, v.Poller().Paused())
}
