package repository

import "errors"

var (
	// ErrPageLoadTimeout is returned when an expected selector never became present.
	ErrPageLoadTimeout = errors.New("page load timeout")
	// ErrNavigationFailed is returned when a page could not be opened or navigated.
	ErrNavigationFailed = errors.New("navigation failed")
	// ErrExtractionFailed is returned when a rendered page could not be parsed.
	ErrExtractionFailed = errors.New("extraction failed")
)
