package repository

import (
	"context"
	"time"
)

// Browser renders URLs into pages that can be queried and driven.
type Browser interface {
	// Open navigates a fresh rendering context to url. The caller must Close the page.
	Open(ctx context.Context, url string) (Page, error)
}

// Page is a rendered document inside a Browser.
type Page interface {
	// URL returns the current location of the page.
	URL(ctx context.Context) (string, error)
	// WaitForSelector blocks until selector is present or timeout elapses.
	// A timeout is reported as ErrPageLoadTimeout.
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error
	// Content returns the serialized DOM of the page.
	Content(ctx context.Context) (string, error)
	// ClickAndWaitForNavigation activates the element matching selector and waits until
	// the page signals that navigation settled. It returns the resulting URL.
	ClickAndWaitForNavigation(ctx context.Context, selector string, timeout time.Duration) (string, error)
	Close() error
}
