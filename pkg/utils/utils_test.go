package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
)

// --- CategorizeError Tests ---

func TestCategorizeError_NilError(t *testing.T) {
	result := CategorizeError(nil)
	if result != "None" {
		t.Errorf("CategorizeError(nil) = %q, want %q", result, "None")
	}
}

func TestCategorizeError_SentinelErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"RobotsDisallowed", ErrRobotsDisallowed, "Policy_Robots"},
		{"ResponseBodyRead", ErrResponseBodyRead, "Network_BodyRead"},
		{"ConfigValidation", ErrConfigValidation, "Config_Validation"},
		{"ProgressState", ErrProgressState, "Progress_State"},
		{"Database", ErrDatabase, "Database_Other"},
		{"Filesystem", ErrFilesystem, "Filesystem_Other"},
		{"Interrupted", ErrInterrupted, "System_Interrupted"},
		{"BareFetch", ErrFetch, "Network_Other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CategorizeError(tt.err)
			if result != tt.expected {
				t.Errorf("CategorizeError(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestCategorizeError_HTTPStatus(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{fmt.Errorf("%w: status 404 Not Found", ErrHTTPStatus), "HTTP_404"},
		{fmt.Errorf("%w: status 403 Forbidden", ErrHTTPStatus), "HTTP_403"},
		{fmt.Errorf("%w: status 503 Service Unavailable", ErrHTTPStatus), "HTTP_5xx"},
		{fmt.Errorf("%w: status 418 I'm a teapot", ErrHTTPStatus), "HTTP_4xx"},
		{fmt.Errorf("%w: status 302 Found", ErrHTTPStatus), "HTTP_OtherStatus"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := CategorizeError(tt.err); got != tt.expected {
				t.Errorf("CategorizeError(%v) = %q, want %q", tt.err, got, tt.expected)
			}
		})
	}
}

func TestCategorizeError_WrappedAndFallback(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"DoubleWrappedRobots", fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", ErrRobotsDisallowed)), "Policy_Robots"},
		{"ParsingHTML", WrapErrorf(ErrParsing, "HTML document for %s", "x"), "Content_ParsingHTML"},
		{"ParsingJSON", WrapErrorf(ErrParsing, "JSON record"), "Content_ParsingJSON"},
		{"FilesystemPermission", fmt.Errorf("%w: %w", ErrFilesystem, os.ErrPermission), "Filesystem_Permission"},
		{"ContextCanceled", context.Canceled, "System_ContextCanceled"},
		{"ConnectionRefused", fmt.Errorf("%w: dial tcp: connection refused", ErrFetch), "Network_ConnectionRefused"},
		{"DNS", errors.New("lookup lawphil.net: no such host"), "Network_DNSLookup"},
		{"Unknown", errors.New("something odd"), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CategorizeError(tt.err); got != tt.expected {
				t.Errorf("CategorizeError(%v) = %q, want %q", tt.err, got, tt.expected)
			}
		})
	}
}

func TestIsFatal(t *testing.T) {
	if IsFatal(nil) {
		t.Error("nil must not be fatal")
	}
	if IsFatal(fmt.Errorf("%w: timeout", ErrFetch)) {
		t.Error("transport failures are recovered locally")
	}
	if !IsFatal(fmt.Errorf("save record: %w", ErrFilesystem)) {
		t.Error("record write failures are fatal")
	}
	if !IsFatal(WrapErrorf(ErrProgressState, "corrupt file")) {
		t.Error("progress state failures are fatal")
	}
}

// --- Filename Tests ---

func TestSafeCaseFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"G.R. No. 1", "G_R__No__1"},
		{"A.M. No. 12-3", "A_M__No__12-3"},
		{"under_score", "under_score"},
		{"ñ/é", "___"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SafeCaseFilename(tt.input); got != tt.expected {
				t.Errorf("SafeCaseFilename(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFileStem(t *testing.T) {
	if got := FileStem("/a/b/G_R__No__1.json"); got != "G_R__No__1" {
		t.Errorf("FileStem() = %q", got)
	}
	if got := FileStem("gr_1234_1901.html"); got != "gr_1234_1901" {
		t.Errorf("FileStem() = %q", got)
	}
}
