package models

import "time"

// PageStatus represents the outcome of fetching a listing or detail page, as kept in the attempt ledger
type PageStatus string

const (
	PageStatusUnset    PageStatus = ""          // Zero value = unset/unknown
	PageStatusSuccess  PageStatus = "success"   // Page fetched and, for detail pages, record persisted
	PageStatusFailure  PageStatus = "failure"   // Fetch or build failed; unit skipped
	PageStatusNotFound PageStatus = "not_found" // URL not in ledger
	PageStatusDBError  PageStatus = "db_error"  // Ledger read failed
)

// String implements fmt.Stringer for logging
func (s PageStatus) String() string {
	if s == "" {
		return "unset"
	}
	return string(s)
}

// IsValid returns true if the status is a known operational value
func (s PageStatus) IsValid() bool {
	switch s {
	case PageStatusSuccess, PageStatusFailure:
		return true
	}
	return false
}

// PageKind distinguishes month listings from case detail pages
type PageKind string

const (
	PageKindListing PageKind = "listing"
	PageKindDetail  PageKind = "detail"
)

// LedgerEntry stores the last fetch attempt for one URL
type LedgerEntry struct {
	Status      PageStatus `json:"status"`
	Kind        PageKind   `json:"kind"`
	Year        int        `json:"year"`
	Month       string     `json:"month"`
	ErrorType   string     `json:"error_type,omitempty"`  // CategorizeError output on failure
	RecordPath  string     `json:"record_path,omitempty"` // Persisted record on detail success
	LastAttempt time.Time  `json:"last_attempt"`
}
