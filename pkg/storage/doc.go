// Package storage is the filesystem-as-database layer of the archive.
//
// Every write goes to a temporary file in the target directory and is renamed
// into place, so an interrupted run never leaves a truncated artifact behind
// that a later run would mistake for a cache hit.
package storage
