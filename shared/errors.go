package shared

import "errors"

var (
	// ErrNoUsableData indicates a series held no finite, non-null close.
	ErrNoUsableData = errors.New("no usable close in series")
	// ErrNoData indicates no quote could be produced after all fallbacks.
	ErrNoData = errors.New("no data for symbol")
	// ErrEmptyQuery indicates a search query shorter than the minimum length.
	ErrEmptyQuery = errors.New("search query too short")
)

// FetchError represents a transport failure from the upstream data source.
type FetchError struct {
	Route string
	Err   error
}

func (e *FetchError) Error() string {
	return "fetching from " + e.Route + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
