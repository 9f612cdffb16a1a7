package core

import (
	"context"
)

// Resolver turns an abstract manifest entry (e.g. a repository link) into a concrete download.
type Resolver interface {
	GetName() string
	// Matches reports whether this resolver handles the entry at all.
	Matches(mod *ModEntry) bool
	// Resolve updates the entry's Version and DownloadURL in place. On error the entry
	// must be left exactly as it was.
	Resolve(ctx context.Context, mod *ModEntry) error
}

// ErrorRecorder persists an error for later inspection and returns where it went.
// It must never fail or panic; when nothing could be written it returns a human readable sentinel.
type ErrorRecorder interface {
	Record(context string, err error) string
}

// DiscardRecorder drops every error.
type DiscardRecorder struct{}

func (DiscardRecorder) Record(string, error) string {
	return "error log disabled"
}
