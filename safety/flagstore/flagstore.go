// Package flagstore records private moderation flags against subjects
// (content items or accounts), eg "review-flagged" or "auto-deleted" marks
// raised by report escalation. Flags are internal state, never shown to
// users.
package flagstore

import (
	"context"
)

type FlagStore interface {
	Get(ctx context.Context, key string) ([]string, error)
	Add(ctx context.Context, key string, flags []string) error
	Remove(ctx context.Context, key string, flags []string) error
}
