package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestMapError(t *testing.T) {
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
			name:        "file too large maps correctly",
			err:         errors.New("file too large: 200MB exceeds limit"),
			wantCode:    "FILE001",
			wantMessage: "File exceeds the configured size limit",
		},
		{
			name:        "invalid csv maps correctly",
			err:         errors.New("invalid csv: record on line 4: wrong number of fields"),
			wantCode:    "FILE002",
			wantMessage: "File is not a valid comma-separated table",
		},
		{
			name:        "no input files maps correctly",
			err:         errors.New("no input files in ./exports"),
			wantCode:    "FILE004",
			wantMessage: "No files were found to process",
		},
		{
			name:        "empty file maps correctly",
			err:         errors.New("empty file: a.csv"),
			wantCode:    "FILE005",
			wantMessage: "The file has no header row",
		},
		{
			name:        "unsupported type maps correctly",
			err:         errors.New(`unsupported file type ".pdf"`),
			wantCode:    "FILE006",
			wantMessage: "Only .csv and .xlsx files are read",
		},
		{
			name:        "missing column maps correctly",
			err:         errors.New("mask: no promotion_code column"),
			wantCode:    "ROW001",
			wantMessage: "A required column is missing",
		},
		{
			name:        "uneven groups map correctly",
			err:         errors.New("offer_name groups have different lengths: A=2, B=1"),
			wantCode:    "ROW002",
			wantMessage: "Offer groups have different numbers of rows",
		},
		{
			name:        "invalid parts map correctly",
			err:         errors.New("parts must be at least 1, got 0"),
			wantCode:    "ROW003",
			wantMessage: "The number of parts is invalid",
		},
		{
			name:        "wrapped not-exist maps correctly",
			err:         fmt.Errorf("open file: %w", fs.ErrNotExist),
			wantCode:    "FILE007",
			wantMessage: "The file could not be opened",
		},
		{
			name:        "invalid xlsx maps correctly",
			err:         errors.New("invalid xlsx: zip: not a valid zip file"),
			wantCode:    "FILE008",
			wantMessage: "The spreadsheet could not be read",
		},
		{
			name:        "write failure maps correctly",
			err:         errors.New("write output: disk full"),
			wantCode:    "OUT001",
			wantMessage: "The normalized file could not be written",
		},
		{
			name:        "cancellation maps correctly",
			err:         fmt.Errorf("process b.csv: %w", context.Canceled),
			wantCode:    "RUN001",
			wantMessage: "The run was interrupted before this file",
		},
		{
			name:        "panic maps correctly",
			err:         errors.New("internal error: runtime error: index out of range"),
			wantCode:    "RUN002",
			wantMessage: "Processing this file failed unexpectedly",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("something odd happened"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("INVALID CSV on line 2"),
			wantCode:    "FILE002",
			wantMessage: "File is not a valid comma-separated table",
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

func TestFormatUserError(t *testing.T) {
	err := errors.New("empty file: a.csv")
	result := FormatUserError(err)

	expected := "The file has no header row (Code: FILE005). Export again including the header row"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}

	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
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
			err:  errors.New("invalid csv"),
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random failure xyz"),
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

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := errors.New("unsupported file type \".ods\"")
		userErr := NewUserError(techErr)

		want := "Only .csv and .xlsx files are read (Code: FILE006). Convert the export to CSV"
		if userErr.Error() != want {
			t.Errorf("Error() = %q, want %q", userErr.Error(), want)
		}

		if !errors.Is(userErr, techErr) {
			t.Error("Unwrap() should return original error")
		}
	})
}
