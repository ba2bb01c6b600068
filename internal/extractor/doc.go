// Package extractor turns rendered page HTML and text into structured data.
// Nothing in this package performs I/O.
package extractor
