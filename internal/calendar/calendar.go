// Package calendar defines the target calendar store contract and its
// backing implementations. The store offers only day-scoped listing and
// free-text descriptions; event identity is carried inside the description
// because no native key field exists.
package calendar

import (
	"context"
	"time"
)

// Entry is one calendar record in the target store. The pipeline creates
// entries and mutates them in place; it never deletes them.
type Entry struct {
	ID          string
	Title       string
	Location    string
	Description string
	Start       time.Time
	End         time.Time
}

// Equal reports whether every observable field except ID matches.
func (e Entry) Equal(other Entry) bool {
	return e.Title == other.Title &&
		e.Location == other.Location &&
		e.Description == other.Description &&
		e.Start.Equal(other.Start) &&
		e.End.Equal(other.End)
}

// Store is the external calendar collaborator.
type Store interface {
	// ListDay returns the entries overlapping the 24 hours starting at day.
	// Enumeration order within the day is not guaranteed.
	ListDay(ctx context.Context, day time.Time) ([]Entry, error)

	// Create stores a new entry and returns it with its assigned ID.
	Create(ctx context.Context, e Entry) (Entry, error)

	// Update overwrites the entry identified by e.ID.
	Update(ctx context.Context, e Entry) error
}
