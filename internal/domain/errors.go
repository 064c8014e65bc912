package domain

import "errors"

// Failure policy is asymmetric: the MODIS CSV feeds are
// mandatory and their errors propagate to the caller; the VIIRS feeds
// are optional and degrade to SourceResult.Unavailable, contributing
// zero rows.
var (
	// ErrSourceUnavailable marks an optional feed failure (network,
	// decode, missing key). It is recovered as an empty table and must
	// never abort a run.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrMissingAcqTime is returned when a live row reaches prediction
	// without an acquisition timestamp. The adapters always populate it,
	// so an absence on the live path is a bug, not data noise.
	ErrMissingAcqTime = errors.New("acquisition timestamp missing on live record")

	// ErrUnknownRegion is returned for a region name absent from the catalog.
	ErrUnknownRegion = errors.New("unknown region")
)

// SourceResult is the explicit Ok-or-Unavailable outcome of an optional
// feed fetch. An unavailable source contributes zero rows to the
// unified table instead of failing the run.
type SourceResult struct {
	Source string
	Table  Table
	Err    error
}

// OK wraps a successful fetch.
func OK(source string, t Table) SourceResult {
	return SourceResult{Source: source, Table: t}
}

// Unavailable wraps a failed optional fetch. The reason is retained for
// logging but the result behaves as "no data from this sensor".
func Unavailable(source string, reason error) SourceResult {
	return SourceResult{Source: source, Err: errors.Join(ErrSourceUnavailable, reason)}
}

// Available reports whether the fetch succeeded.
func (r SourceResult) Available() bool { return r.Err == nil }
