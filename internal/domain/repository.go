package domain

import (
	"context"
	"io"
)

// LeadStore defines the durable persistence boundary for the lead collection.
// The collection is loaded and saved as one unit; there is no per-record API.
type LeadStore interface {
	// LoadAll returns every persisted record in storage order.
	// On first use the store initializes itself with its seed collection.
	LoadAll(ctx context.Context) ([]Lead, error)

	// SaveAll replaces the persisted collection. Readers never observe a
	// partially written collection.
	SaveAll(ctx context.Context, leads []Lead) error
}

// EventPublisher ships lead lifecycle events to an external stream.
type EventPublisher interface {
	Publish(ctx context.Context, event LeadEvent) error
}

// ResumeStorage persists an uploaded resume and returns a URL referencing it.
// Delete removes a resume by the URL Store returned.
type ResumeStorage interface {
	Store(ctx context.Context, prefix, filename, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}
