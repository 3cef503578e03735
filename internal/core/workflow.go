package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/JonMunkholm/pharmadb/internal/api"
	"github.com/JonMunkholm/pharmadb/internal/catalog"
	"github.com/JonMunkholm/pharmadb/internal/csvfile"
	"github.com/JonMunkholm/pharmadb/internal/logging"
)

// State is the position of a Workflow in the add-entries flow.
type State int

const (
	StateIdle State = iota
	StateChoosingMode
	StateManualEntry
	StateCSVEntry
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateChoosingMode:
		return "choosing_mode"
	case StateManualEntry:
		return "manual_entry"
	case StateCSVEntry:
		return "csv_entry"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// RowFailure records why one CSV line was not created.
type RowFailure struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ImportResult is the outcome of one CSV upload.
type ImportResult struct {
	Table     string       `json:"table,omitempty"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Skipped   int          `json:"skipped"`
	Failures  []RowFailure `json:"failures,omitempty"`

	// Set when the list-scoped bulk endpoint handled the file.
	Bulk       bool `json:"bulk"`
	ItemsAdded int  `json:"items_added,omitempty"`
}

// Partial reports whether any row failed.
func (r ImportResult) Partial() bool {
	return r.Failed > 0
}

// Message is the notification text for the result. Any failure is phrased
// as a partial success, even when nothing succeeded.
func (r ImportResult) Message() string {
	if r.Bulk {
		return fmt.Sprintf("Uploaded %s to the list", entryCount(r.ItemsAdded))
	}
	if r.Failed > 0 {
		return fmt.Sprintf("Imported %s, %d failed", entryCount(r.Succeeded), r.Failed)
	}
	return fmt.Sprintf("Imported %s", entryCount(r.Succeeded))
}

func entryCount(n int) string {
	if n == 1 {
		return "1 entry"
	}
	return fmt.Sprintf("%d entries", n)
}

type selectedFile struct {
	name    string
	content []byte
}

// WorkflowOption configures a Workflow.
type WorkflowOption func(*Workflow)

// WithListScope sends CSV uploads to the bulk endpoint of list id.
func WithListScope(id int) WorkflowOption {
	return func(w *Workflow) { w.listID = id }
}

// OnClose is called when the workflow returns to Idle. refresh is true after
// a successful save or a finished upload and false on cancel. Callbacks from
// several OnClose options all run, in the order given.
func OnClose(fn func(refresh bool)) WorkflowOption {
	return func(w *Workflow) {
		prev := w.onClose
		if prev == nil {
			w.onClose = fn
			return
		}
		w.onClose = func(refresh bool) {
			prev(refresh)
			fn(refresh)
		}
	}
}

// Workflow drives one "Add entries" interaction for a subdomain.
//
//	Idle -> ChoosingMode -> ManualEntry | CSVEntry -> Idle
type Workflow struct {
	svc       *Service
	subdomain string
	table     string
	columns   []string
	listID    int
	onClose   func(refresh bool)

	mu    sync.Mutex
	state State
	draft map[string]string
	file  *selectedFile
}

func resolve(subdomain string) (string, error) {
	table, err := catalog.ResolveTable(subdomain)
	if err != nil {
		return "", fmt.Errorf("resolve entry table: %w", err)
	}
	return table, nil
}

// NewWorkflow resolves subdomain to its entry table. An unmapped subdomain
// fails with catalog.ErrUnknownTableMapping.
func (s *Service) NewWorkflow(subdomain string, opts ...WorkflowOption) (*Workflow, error) {
	table, err := resolve(subdomain)
	if err != nil {
		return nil, err
	}

	w := &Workflow{
		svc:       s,
		subdomain: strings.TrimSpace(subdomain),
		table:     table,
		state:     StateIdle,
	}
	if lt, err := catalog.LookupListType(w.subdomain); err == nil {
		w.columns = lt.Template.Headers
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Table returns the resolved entry table.
func (w *Workflow) Table() string {
	return w.table
}

// Subdomain returns the subdomain the workflow adds to.
func (w *Workflow) Subdomain() string {
	return w.subdomain
}

// Columns returns the template headers offered by the manual form.
func (w *Workflow) Columns() []string {
	out := make([]string, len(w.columns))
	copy(out, w.columns)
	return out
}

// State returns the current state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Workflow) expect(want State) error {
	if w.state != want {
		return fmt.Errorf("%w: in %s, need %s", ErrInvalidState, w.state, want)
	}
	return nil
}

// Open enters mode selection.
func (w *Workflow) Open() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.expect(StateIdle); err != nil {
		return err
	}
	w.state = StateChoosingMode
	return nil
}

// ChooseManual starts a blank manual record.
func (w *Workflow) ChooseManual() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.expect(StateChoosingMode); err != nil {
		return err
	}
	w.state = StateManualEntry
	w.draft = make(map[string]string)
	return nil
}

// ChooseCSV starts file selection.
func (w *Workflow) ChooseCSV() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.expect(StateChoosingMode); err != nil {
		return err
	}
	w.state = StateCSVEntry
	w.file = nil
	return nil
}

// Cancel abandons the interaction from any state.
func (w *Workflow) Cancel() {
	w.mu.Lock()
	wasOpen := w.state != StateIdle
	w.reset()
	w.mu.Unlock()

	if wasOpen {
		w.close(false)
	}
}

func (w *Workflow) reset() {
	w.state = StateIdle
	w.draft = nil
	w.file = nil
}

func (w *Workflow) close(refresh bool) {
	if w.onClose != nil {
		w.onClose(refresh)
	}
}

// Set stores one field of the manual record.
func (w *Workflow) Set(column, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.expect(StateManualEntry); err != nil {
		return err
	}
	w.draft[column] = value
	return nil
}

// Save creates the manual record. Blank fields are dropped; a record with no
// fields left fails with ErrEmptyRecord before any request is made. On
// failure the workflow stays in ManualEntry with the draft intact.
func (w *Workflow) Save(ctx context.Context) (api.Record, error) {
	w.mu.Lock()
	if err := w.expect(StateManualEntry); err != nil {
		w.mu.Unlock()
		return api.Record{}, err
	}
	fields := stripEmpty(w.draft)
	w.mu.Unlock()

	if len(fields) == 0 {
		return api.Record{}, ErrEmptyRecord
	}

	logger := logging.WithFields(ctx, "table", w.table, "actor", ActorFromContext(ctx))
	rec, err := w.svc.backend.CreateRow(ctx, w.table, fields)
	if err != nil {
		logger.Warn("manual save failed", "error", err)
		return api.Record{}, fmt.Errorf("save entry: %w", err)
	}
	logger.Info("manual entry saved", "fields", len(fields))

	w.mu.Lock()
	w.reset()
	w.mu.Unlock()
	w.close(true)
	return rec, nil
}

// SelectFile holds one file for upload, replacing any earlier selection.
// Files not ending in .csv are refused and nothing is held.
func (w *Workflow) SelectFile(name string, content []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.expect(StateCSVEntry); err != nil {
		return err
	}
	if err := csvfile.CheckExtension(name); err != nil {
		w.file = nil
		return err
	}
	if limit := w.svc.maxFileSize; limit > 0 && int64(len(content)) > limit {
		w.file = nil
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, len(content), limit)
	}
	w.file = &selectedFile{name: name, content: content}
	return nil
}

// Upload imports the selected file.
//
// With a list scope, the file goes to the bulk endpoint in one request and a
// failure is returned with the workflow still in CSVEntry. Otherwise the file
// is parsed and each non-empty row is created in order; row failures are
// tallied and never stop the import. Once every row has been attempted the
// workflow closes with a refresh, whatever the tally.
//
// Parse and validation failures return before any request is made.
func (w *Workflow) Upload(ctx context.Context) (ImportResult, error) {
	w.mu.Lock()
	if err := w.expect(StateCSVEntry); err != nil {
		w.mu.Unlock()
		return ImportResult{}, err
	}
	file := w.file
	w.mu.Unlock()

	if file == nil {
		return ImportResult{}, ErrNoFile
	}

	var (
		result ImportResult
		err    error
	)
	if w.listID > 0 {
		result, err = w.uploadBulk(ctx, file)
	} else {
		result, err = w.uploadRows(ctx, file)
	}
	if err != nil {
		return ImportResult{}, err
	}

	w.mu.Lock()
	w.reset()
	w.mu.Unlock()
	w.close(true)
	return result, nil
}

func (w *Workflow) uploadBulk(ctx context.Context, file *selectedFile) (ImportResult, error) {
	logger := logging.WithFields(ctx, "table", w.table, "list_id", w.listID, "file", file.name)
	start := time.Now()

	res, err := w.svc.backend.UploadCSV(ctx, w.listID, file.name, bytes.NewReader(file.content))
	if err != nil {
		logger.Warn("bulk upload failed", "error", err, "duration_ms", since(start))
		return ImportResult{}, fmt.Errorf("bulk upload: %w", err)
	}
	logger.Info("bulk upload finished", "items_added", res.ItemsAdded, "duration_ms", since(start))

	table := res.TableUsed
	if table == "" {
		table = w.table
	}
	w.svc.metrics.ImportRows(table, res.ItemsAdded, 0, 0)
	return ImportResult{
		Table:      table,
		Bulk:       true,
		ItemsAdded: res.ItemsAdded,
		Succeeded:  res.ItemsAdded,
	}, nil
}

func (w *Workflow) uploadRows(ctx context.Context, file *selectedFile) (ImportResult, error) {
	parsed, err := csvfile.Parse(string(file.content))
	if err != nil {
		return ImportResult{}, err
	}

	if l := w.svc.limiter; l != nil {
		if err := l.Acquire(ctx); err != nil {
			return ImportResult{}, err
		}
		defer l.Release()
	}

	return w.svc.importRows(ctx, w.table, file.name, parsed.Rows), nil
}

// importRows creates each row sequentially and tallies the outcome.
func (s *Service) importRows(ctx context.Context, table, filename string, rows []csvfile.Row) ImportResult {
	logger := logging.WithFields(ctx, "table", table, "file", filename, "rows", len(rows))
	logger.Info("import started")
	start := time.Now()

	result := ImportResult{Table: table}
	for _, row := range rows {
		fields := stripEmpty(row.Values)
		if len(fields) == 0 {
			result.Skipped++
			continue
		}
		if _, err := s.backend.CreateRow(ctx, table, fields); err != nil {
			result.Failed++
			result.Failures = append(result.Failures, RowFailure{Line: row.Line, Reason: rowReason(err)})
			logger.Debug("row failed", "line", row.Line, "error", err)
			continue
		}
		result.Succeeded++
	}

	s.metrics.ImportRows(table, result.Succeeded, result.Failed, result.Skipped)
	logger.Info("import finished",
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"skipped", result.Skipped,
		"duration_ms", since(start),
	)
	return result
}

func rowReason(err error) string {
	var rejected *api.ServerRejectedError
	if errors.As(err, &rejected) {
		return rejected.Detail
	}
	return err.Error()
}

// stripEmpty drops fields whose value is blank after trimming. Values are
// sent as entered.
func stripEmpty(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		if strings.TrimSpace(v) == "" {
			continue
		}
		out[k] = v
	}
	return out
}
