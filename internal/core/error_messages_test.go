package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/pharmadb/internal/api"
	"github.com/JonMunkholm/pharmadb/internal/catalog"
	"github.com/JonMunkholm/pharmadb/internal/csvfile"
)

func TestMapError(t *testing.T) {
	_, unknownType := catalog.LookupListType("Call List")
	_, unknownTable := catalog.ResolveTable("Sample Lists")

	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "unknown list type",
			err:         unknownType,
			wantCode:    "CAT001",
			wantMessage: "This list type is not known",
		},
		{
			name:        "unknown table mapping",
			err:         fmt.Errorf("open workflow: %w", unknownTable),
			wantCode:    "CAT002",
			wantMessage: "This subdomain has no entry table",
		},
		{
			name:        "malformed file",
			err:         csvfile.ErrMalformedFile,
			wantCode:    "FILE001",
			wantMessage: "The CSV file needs a header line and at least one data line",
		},
		{
			name:        "not csv",
			err:         csvfile.ErrNotCSV,
			wantCode:    "FILE002",
			wantMessage: "Only .csv files can be imported",
		},
		{
			name:        "no file",
			err:         ErrNoFile,
			wantCode:    "FILE003",
			wantMessage: "No file was selected",
		},
		{
			name:        "empty record",
			err:         ErrEmptyRecord,
			wantCode:    "VAL001",
			wantMessage: "Please fill at least one field",
		},
		{
			name:        "server rejection keeps detail",
			err:         fmt.Errorf("create_row: %w", &api.ServerRejectedError{Status: 400, Detail: "hcp_id is required"}),
			wantCode:    "API001",
			wantMessage: "hcp_id is required",
		},
		{
			name:        "connection refused",
			err:         errors.New("list_rows: dial tcp 127.0.0.1:8000: connect: connection refused"),
			wantCode:    "API002",
			wantMessage: "Unable to reach the PharmaDB server",
		},
		{
			name:        "deadline",
			err:         errors.New("chat_query: context deadline exceeded"),
			wantCode:    "API003",
			wantMessage: "The server did not answer in time",
		},
		{
			name:        "delete failures",
			err:         ErrSomeDeletesFailed,
			wantCode:    "DEL001",
			wantMessage: "Some entries could not be deleted",
		},
		{
			name:        "too many imports",
			err:         fmt.Errorf("import: %w", ErrTooManyImports),
			wantCode:    "API004",
			wantMessage: "Other imports are still running",
		},
		{
			name:        "file too large",
			err:         fmt.Errorf("%w: 20 bytes exceeds 10", ErrFileTooLarge),
			wantCode:    "FILE005",
			wantMessage: "The file exceeds the maximum upload size",
		},
		{
			name:        "unknown subdomain id",
			err:         fmt.Errorf("subdomain 99: %w", ErrNotFound),
			wantCode:    "NAV001",
			wantMessage: "The requested item does not exist",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("MALFORMED CSV"),
			wantCode:    "FILE001",
			wantMessage: "The CSV file needs a header line and at least one data line",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestMapError_RejectionWithoutDetail(t *testing.T) {
	got := MapError(&api.ServerRejectedError{Status: 500})
	if got.Code != "API001" {
		t.Errorf("code = %q, want API001", got.Code)
	}
	if got.Message != "The server rejected the request" {
		t.Errorf("message = %q", got.Message)
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrNoFile)

	expected := "No file was selected (Code: FILE003). Please select a CSV file to upload"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  ErrEmptyRecord,
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}
