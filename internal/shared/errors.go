package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Fetch and parse errors
	ErrFetchFailed = fmt.Errorf("fetch failed")
	ErrInvalidURL  = fmt.Errorf("invalid URL")
	ErrParse       = fmt.Errorf("page could not be parsed")
	ErrTimeout     = fmt.Errorf("operation timed out")

	ErrBodyTooLarge     = fmt.Errorf("response body too large")
	ErrTooManyRedirects = fmt.Errorf("too many redirects")

	// Storage errors
	ErrCacheMiss = fmt.Errorf("cache miss")

	// Input validation errors
	ErrInvalidInput      = fmt.Errorf("invalid input")
	ErrMissingArgument   = fmt.Errorf("missing required argument")
	ErrInvalidArgument   = fmt.Errorf("invalid argument")
	ErrUnsupportedFormat = fmt.Errorf("unsupported format")
)
