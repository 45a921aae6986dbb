// Package downloader fetches selected images into the topic directories that reference them.
//
// Jobs run sequentially; pacing comes from the client's rate limiter.
package downloader
