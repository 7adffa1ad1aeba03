package metadata

import (
	"context"

	"github.com/xxxsen/mlibrary/internal/model"
)

const (
	SourceGoogleBooks = "google_books"
	SourceOpenLibrary = "open_library"
)

// Source is one external bibliographic service.
type Source interface {
	Name() string
	Enabled() bool
	Lookup(ctx context.Context, isbn string) LookupResult
}

type Status int

const (
	StatusFound Status = iota + 1
	// StatusAbsent means the source answered and had no match.
	StatusAbsent
	// StatusFailed means the lookup itself broke (transport, http status, payload shape).
	StatusFailed
	StatusDisabled
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusAbsent:
		return "absent"
	case StatusFailed:
		return "failed"
	case StatusDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

type LookupResult struct {
	Source string
	Status Status
	Record *model.BookRecord
	Err    error
}

func (r LookupResult) Found() bool {
	return r.Status == StatusFound && r.Record != nil
}

func found(source string, rec *model.BookRecord) LookupResult {
	return LookupResult{Source: source, Status: StatusFound, Record: rec}
}

func absent(source string) LookupResult {
	return LookupResult{Source: source, Status: StatusAbsent}
}

func failed(source string, err error) LookupResult {
	return LookupResult{Source: source, Status: StatusFailed, Err: err}
}

func disabled(source string) LookupResult {
	return LookupResult{Source: source, Status: StatusDisabled}
}
