// Package tracker holds the rule services for users, projects and tasks.
// Services validate input, check references against the Store and issue writes.
// They hold no state besides their Store and Config and are safe for concurrent use.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rezkam/taskboard/internal/domain"
)

// Config holds configuration shared by the services.
type Config struct {
	// Now returns the current time. Date rules are evaluated against its calendar date.
	// Defaults to time.Now.
	Now func() time.Time
}

func (c Config) withDefaults() Config {
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

func (c Config) today() time.Time {
	return domain.DateOf(c.Now())
}

// lookup calls find and turns a domain.ErrNotFound miss into (nil, nil).
func lookup[T any](ctx context.Context, find func(context.Context, int64) (*T, error), entity string, id int64) (*T, error) {
	v, err := find(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find %s %d: %w", entity, id, err)
	}
	return v, nil
}

func notFound(kind error, id int64) error {
	return fmt.Errorf("%w: id %d", kind, id)
}

// missingReference reports a task reference that names no stored record.
func missingReference(entity string, id int64) error {
	return domain.InvalidArgument("%s with ID %d does not exist", entity, id)
}

// filter returns the items matching keep. The result is never nil.
func filter[T any](items []*T, keep func(*T) bool) []*T {
	out := make([]*T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}
