package ingest

import "errors"

// Error kinds reported by ingestion. Use errors.Is to classify.
var (
	// ErrDecode marks a malformed or undecodable asset.
	ErrDecode = errors.New("ingest: decode error")
	// ErrIO marks a locator that could not be read.
	ErrIO = errors.New("ingest: i/o error")
	// ErrStaleLoad is returned by Accept for a result superseded by a newer load.
	ErrStaleLoad = errors.New("ingest: stale load discarded")
)
