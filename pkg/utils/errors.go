package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
)

// --- Sentinel Errors for Categorization ---
var (
	ErrFetch            = errors.New("fetch failed")                    // Transport-level failure (DNS, TCP, TLS, timeout)
	ErrHTTPStatus       = errors.New("unexpected HTTP status (non-2xx)") // Wraps status code/text
	ErrRobotsDisallowed = errors.New("disallowed by robots.txt")
	ErrResponseBodyRead = errors.New("failed to read response body")
	ErrParsing          = errors.New("parsing error")    // Wraps HTML, URL or JSON parse errors
	ErrFilesystem       = errors.New("filesystem error") // Wraps os errors on record/index/report files
	ErrProgressState    = errors.New("progress state error")
	ErrDatabase         = errors.New("database error") // Wraps badger errors
	ErrConfigValidation = errors.New("configuration validation error")
	ErrInterrupted      = errors.New("crawl interrupted")
)

// WrapErrorf wraps a sentinel with a formatted message, keeping errors.Is working
func WrapErrorf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

// IsFatal reports whether err must end the current run. Transport failures and
// parse misses are recovered locally; persistence and progress-state failures
// are not.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrFilesystem) || errors.Is(err, ErrProgressState)
}

// CategorizeError maps an error to a predefined category string for logging and the attempt ledger.
func CategorizeError(err error) string {
	if err == nil {
		return "None"
	}

	switch {
	case errors.Is(err, ErrInterrupted):
		return "System_Interrupted"
	case errors.Is(err, ErrHTTPStatus):
		errMsg := err.Error()
		for _, code := range []string{"404", "403", "401", "429"} {
			if strings.Contains(errMsg, "status "+code) {
				return "HTTP_" + code
			}
		}
		if strings.Contains(errMsg, "status 5") {
			return "HTTP_5xx"
		}
		if strings.Contains(errMsg, "status 4") {
			return "HTTP_4xx"
		}
		return "HTTP_OtherStatus"
	case errors.Is(err, ErrRobotsDisallowed):
		return "Policy_Robots"
	case errors.Is(err, ErrResponseBodyRead):
		return "Network_BodyRead"
	case errors.Is(err, ErrParsing):
		errMsg := err.Error()
		if strings.Contains(errMsg, "URL") {
			return "Content_ParsingURL"
		}
		if strings.Contains(errMsg, "HTML") {
			return "Content_ParsingHTML"
		}
		if strings.Contains(errMsg, "JSON") {
			return "Content_ParsingJSON"
		}
		return "Content_ParsingOther"
	case errors.Is(err, ErrFilesystem):
		if errors.Is(err, os.ErrPermission) {
			return "Filesystem_Permission"
		}
		if errors.Is(err, os.ErrNotExist) {
			return "Filesystem_NotExist"
		}
		return "Filesystem_Other"
	case errors.Is(err, ErrProgressState):
		return "Progress_State"
	case errors.Is(err, ErrDatabase):
		return "Database_Other"
	case errors.Is(err, ErrConfigValidation):
		return "Config_Validation"
	}

	if errors.Is(err, context.Canceled) {
		return "System_ContextCanceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "System_ContextDeadlineExceeded"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "Network_Timeout"
	}
	lowerErrMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lowerErrMsg, "timeout"):
		return "Network_Timeout"
	case strings.Contains(lowerErrMsg, "connection refused"):
		return "Network_ConnectionRefused"
	case strings.Contains(lowerErrMsg, "no such host"):
		return "Network_DNSLookup"
	case strings.Contains(lowerErrMsg, "tls") || strings.Contains(lowerErrMsg, "certificate"):
		return "Network_TLS"
	case strings.Contains(lowerErrMsg, "reset by peer"):
		return "Network_ConnectionReset"
	}
	if errors.Is(err, ErrFetch) {
		return "Network_Other"
	}

	return "Unknown"
}
