// Package archiver runs the two phases of forumdump against one forum: the JSON
// crawl and the image download. Both derive the archive directory from the
// host of the base URL so either can be rerun on its own.
package archiver
