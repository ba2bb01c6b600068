// Package main provides the entry point for the playlist email scraper.
//
// Usage:
//
//	crawler run --query "lofi beats" --max-playlists 50
//	crawler export --run-id <id>
//
// See --help for all available options.
package main

func main() {
	Execute()
}
