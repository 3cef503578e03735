package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/pharmadb/internal/api"
	"github.com/JonMunkholm/pharmadb/internal/catalog"
	"github.com/JonMunkholm/pharmadb/internal/csvfile"
)

func acceptAll(w http.ResponseWriter, r *http.Request, rr recordedRequest) {
	writeJSON(w, http.StatusCreated, rr.Body)
}

func openCSV(t *testing.T, svc *Service, subdomain string, opts ...WorkflowOption) *Workflow {
	t.Helper()
	w, err := svc.NewWorkflow(subdomain, opts...)
	require.NoError(t, err)
	require.NoError(t, w.Open())
	require.NoError(t, w.ChooseCSV())
	return w
}

func TestWorkflow_UnknownSubdomain(t *testing.T) {
	svc, fb := newTestService(t, acceptAll)

	_, err := svc.NewWorkflow("Sample Lists")
	assert.ErrorIs(t, err, catalog.ErrUnknownTableMapping)
	assert.Empty(t, fb.Requests())
}

func TestWorkflow_Transitions(t *testing.T) {
	svc, _ := newTestService(t, acceptAll)
	w, err := svc.NewWorkflow("Call Lists")
	require.NoError(t, err)
	assert.Equal(t, "call_list_entries", w.Table())
	assert.Equal(t, []string{"hcp_id", "hcp_name", "call_date", "sales_rep", "status"}, w.Columns())

	assert.Equal(t, StateIdle, w.State())
	assert.ErrorIs(t, w.ChooseManual(), ErrInvalidState)

	require.NoError(t, w.Open())
	assert.Equal(t, StateChoosingMode, w.State())
	assert.ErrorIs(t, w.Open(), ErrInvalidState)

	require.NoError(t, w.ChooseManual())
	assert.Equal(t, StateManualEntry, w.State())
	assert.ErrorIs(t, w.SelectFile("a.csv", nil), ErrInvalidState)

	w.Cancel()
	assert.Equal(t, StateIdle, w.State())

	require.NoError(t, w.Open())
	require.NoError(t, w.ChooseCSV())
	assert.Equal(t, StateCSVEntry, w.State())
	assert.ErrorIs(t, w.Set("hcp_id", "x"), ErrInvalidState)
}

func TestWorkflow_CancelSignalsNoRefresh(t *testing.T) {
	svc, _ := newTestService(t, acceptAll)
	var calls []bool
	w, err := svc.NewWorkflow("Call Lists", OnClose(func(refresh bool) { calls = append(calls, refresh) }))
	require.NoError(t, err)

	w.Cancel()
	assert.Empty(t, calls, "cancel from idle should not signal")

	require.NoError(t, w.Open())
	w.Cancel()
	assert.Equal(t, []bool{false}, calls)
}

func TestWorkflow_ManualEmptyRecordMakesNoRequest(t *testing.T) {
	svc, fb := newTestService(t, acceptAll)
	w, err := svc.NewWorkflow("Call Lists")
	require.NoError(t, err)
	require.NoError(t, w.Open())
	require.NoError(t, w.ChooseManual())

	require.NoError(t, w.Set("hcp_id", "   "))
	require.NoError(t, w.Set("hcp_name", ""))

	_, err = w.Save(context.Background())
	assert.ErrorIs(t, err, ErrEmptyRecord)
	assert.Equal(t, StateManualEntry, w.State())
	assert.Empty(t, fb.Requests())
}

func TestWorkflow_ManualSave(t *testing.T) {
	svc, fb := newTestService(t, func(w http.ResponseWriter, r *http.Request, rr recordedRequest) {
		body := map[string]any{"entry_id": 1}
		for k, v := range rr.Body {
			body[k] = v
		}
		writeJSON(w, http.StatusCreated, body)
	})

	refreshed := false
	w, err := svc.NewWorkflow("Call Lists", OnClose(func(refresh bool) { refreshed = refresh }))
	require.NoError(t, err)
	require.NoError(t, w.Open())
	require.NoError(t, w.ChooseManual())
	require.NoError(t, w.Set("hcp_id", "HCP1"))
	require.NoError(t, w.Set("sales_rep", " "))

	rec, err := w.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "HCP1", rec.String("hcp_id"))
	assert.Equal(t, StateIdle, w.State())
	assert.True(t, refreshed)

	reqs := fb.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/api/call_list_entries/", reqs[0].Path)
	assert.Equal(t, map[string]any{"hcp_id": "HCP1"}, reqs[0].Body)
}

func TestWorkflow_ManualSaveFailureStaysOpen(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request, rr recordedRequest) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "hcp_name is required"})
	})

	w, err := svc.NewWorkflow("Call Lists")
	require.NoError(t, err)
	require.NoError(t, w.Open())
	require.NoError(t, w.ChooseManual())
	require.NoError(t, w.Set("hcp_id", "HCP1"))

	_, err = w.Save(context.Background())
	var rejected *api.ServerRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "hcp_name is required", rejected.Detail)
	assert.Equal(t, StateManualEntry, w.State())
}

func TestWorkflow_HCPScenario_AllAccepted(t *testing.T) {
	svc, fb := newTestService(t, acceptAll)
	refreshed := false
	w := openCSV(t, svc, "Call Lists", OnClose(func(refresh bool) { refreshed = refresh }))

	require.NoError(t, w.SelectFile("hcps.csv", []byte("hcp_id,hcp_name\nHCP1,Dr. A\nHCP2,Dr. B")))
	res, err := w.Upload(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 0, res.Failed)
	assert.False(t, res.Partial())
	assert.Equal(t, "Imported 2 entries", res.Message())
	assert.Equal(t, StateIdle, w.State())
	assert.True(t, refreshed)

	reqs := fb.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, map[string]any{"hcp_id": "HCP1", "hcp_name": "Dr. A"}, reqs[0].Body)
	assert.Equal(t, map[string]any{"hcp_id": "HCP2", "hcp_name": "Dr. B"}, reqs[1].Body)
}

func TestWorkflow_HCPScenario_SecondRowFails(t *testing.T) {
	var n atomic.Int32
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request, rr recordedRequest) {
		if n.Add(1) == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, rr.Body)
	})

	refreshed := false
	w := openCSV(t, svc, "Call Lists", OnClose(func(refresh bool) { refreshed = refresh }))
	require.NoError(t, w.SelectFile("hcps.csv", []byte("hcp_id,hcp_name\nHCP1,Dr. A\nHCP2,Dr. B")))

	res, err := w.Upload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	assert.True(t, res.Partial())
	assert.Equal(t, "Imported 1 entry, 1 failed", res.Message())
	require.Len(t, res.Failures, 1)
	assert.Equal(t, 3, res.Failures[0].Line)
	assert.Equal(t, "server error (status 500)", res.Failures[0].Reason)
	assert.True(t, refreshed, "partial import still refreshes")
}

func TestWorkflow_RowKFailureContinues(t *testing.T) {
	for _, k := range []int{1, 4, 8} {
		t.Run(fmt.Sprintf("row %d", k), func(t *testing.T) {
			const total = 8
			var n atomic.Int32
			svc, fb := newTestService(t, func(w http.ResponseWriter, r *http.Request, rr recordedRequest) {
				if int(n.Add(1)) == k {
					writeJSON(w, http.StatusBadRequest, map[string]string{"error": "duplicate hcp"})
					return
				}
				writeJSON(w, http.StatusCreated, rr.Body)
			})

			lines := []string{"hcp_id,hcp_name"}
			for i := 1; i <= total; i++ {
				lines = append(lines, fmt.Sprintf("HCP%d,Dr. %d", i, i))
			}
			w := openCSV(t, svc, "Call Lists")
			require.NoError(t, w.SelectFile("rows.csv", []byte(strings.Join(lines, "\n"))))

			res, err := w.Upload(context.Background())
			require.NoError(t, err)
			assert.Equal(t, total-1, res.Succeeded)
			assert.Equal(t, 1, res.Failed)
			assert.Len(t, fb.Requests(), total)
			assert.Equal(t, "duplicate hcp", res.Failures[0].Reason)
		})
	}
}

func TestWorkflow_AllRowsFailIsStillPartial(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request, rr recordedRequest) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	w := openCSV(t, svc, "Call Lists")
	require.NoError(t, w.SelectFile("x.csv", []byte("hcp_id\nA\nB")))

	res, err := w.Upload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Succeeded)
	assert.Equal(t, 2, res.Failed)
	assert.True(t, res.Partial())
	assert.Equal(t, StateIdle, w.State())
}

func TestWorkflow_SkipsBlankRows(t *testing.T) {
	svc, fb := newTestService(t, acceptAll)
	w := openCSV(t, svc, "Call Lists")
	require.NoError(t, w.SelectFile("x.csv", []byte("hcp_id,hcp_name\nHCP1,\n , \nHCP3,Dr. C")))

	res, err := w.Upload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 1, res.Skipped)

	reqs := fb.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, map[string]any{"hcp_id": "HCP1"}, reqs[0].Body)
}

func TestWorkflow_UploadValidationBlocksWithoutRequests(t *testing.T) {
	svc, fb := newTestService(t, acceptAll)

	w := openCSV(t, svc, "Call Lists")
	_, err := w.Upload(context.Background())
	assert.ErrorIs(t, err, ErrNoFile)

	assert.ErrorIs(t, w.SelectFile("rows.xlsx", []byte("a\n1")), csvfile.ErrNotCSV)
	_, err = w.Upload(context.Background())
	assert.ErrorIs(t, err, ErrNoFile, "refused file must not be held")

	require.NoError(t, w.SelectFile("rows.csv", []byte("hcp_id,hcp_name\n")))
	_, err = w.Upload(context.Background())
	assert.ErrorIs(t, err, csvfile.ErrMalformedFile)

	assert.Equal(t, StateCSVEntry, w.State())
	assert.Empty(t, fb.Requests())
}

func TestWorkflow_FileTooLarge(t *testing.T) {
	svc, _ := newTestService(t, acceptAll, WithMaxFileSize(8))
	w := openCSV(t, svc, "Call Lists")
	assert.ErrorIs(t, w.SelectFile("big.csv", []byte("hcp_id\nHCP1\nHCP2")), ErrFileTooLarge)
}

func TestWorkflow_ListScopedUpload(t *testing.T) {
	svc, fb := newTestService(t, func(w http.ResponseWriter, r *http.Request, rr recordedRequest) {
		assert.Equal(t, "/api/lists/12/upload-csv", r.URL.Path)
		f, _, err := r.FormFile("file")
		if assert.NoError(t, err) {
			data, _ := io.ReadAll(f)
			assert.Equal(t, "hcp_id\nHCP1\nHCP2", string(data))
		}
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "items_added": 2, "table_used": "call_list_entries"})
	})

	w := openCSV(t, svc, "Call Lists", WithListScope(12))
	require.NoError(t, w.SelectFile("rows.csv", []byte("hcp_id\nHCP1\nHCP2")))

	res, err := w.Upload(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Bulk)
	assert.Equal(t, 2, res.ItemsAdded)
	assert.Equal(t, "Uploaded 2 entries to the list", res.Message())
	assert.Len(t, fb.Requests(), 1)
}

func TestWorkflow_ListScopedFailureStaysOpen(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request, rr recordedRequest) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "CSV file is empty."})
	})

	w := openCSV(t, svc, "Call Lists", WithListScope(12))
	require.NoError(t, w.SelectFile("rows.csv", []byte("hcp_id\n")))

	_, err := w.Upload(context.Background())
	var rejected *api.ServerRejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, "CSV file is empty.", rejected.Detail)
	assert.Equal(t, StateCSVEntry, w.State())
}

func TestWorkflow_ImportLimiterBusy(t *testing.T) {
	limiter := NewImportLimiter(1, 20*time.Millisecond)
	require.True(t, limiter.TryAcquire())
	defer limiter.Release()

	svc, fb := newTestService(t, acceptAll, WithImportLimiter(limiter))
	w := openCSV(t, svc, "Call Lists")
	require.NoError(t, w.SelectFile("rows.csv", []byte("hcp_id\nHCP1")))

	_, err := w.Upload(context.Background())
	assert.ErrorIs(t, err, ErrTooManyImports)
	assert.Empty(t, fb.Requests())
	assert.Equal(t, StateCSVEntry, w.State())
}

func TestImportResult_Message(t *testing.T) {
	tests := []struct {
		res  ImportResult
		want string
	}{
		{ImportResult{Succeeded: 0}, "Imported 0 entries"},
		{ImportResult{Succeeded: 1}, "Imported 1 entry"},
		{ImportResult{Succeeded: 3}, "Imported 3 entries"},
		{ImportResult{Succeeded: 1, Failed: 2}, "Imported 1 entry, 2 failed"},
		{ImportResult{Succeeded: 0, Failed: 1}, "Imported 0 entries, 1 failed"},
		{ImportResult{Bulk: true, ItemsAdded: 1}, "Uploaded 1 entry to the list"},
		{ImportResult{Bulk: true, ItemsAdded: 4}, "Uploaded 4 entries to the list"},
	}
	for _, tt := range tests {
		if got := tt.res.Message(); got != tt.want {
			t.Errorf("Message(%+v) = %q, want %q", tt.res, got, tt.want)
		}
	}
}

func TestWorkflow_OnCloseCallbacksChain(t *testing.T) {
	svc, _ := newTestService(t, acceptAll)
	var order []string
	w, err := svc.NewWorkflow("Call Lists",
		OnClose(func(bool) { order = append(order, "first") }),
		OnClose(func(bool) { order = append(order, "second") }),
	)
	require.NoError(t, err)

	require.NoError(t, w.Open())
	w.Cancel()
	assert.Equal(t, []string{"first", "second"}, order)
}
