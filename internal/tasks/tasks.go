// Package tasks implements the follow-up work run after an exercise is fully
// reconciled: syncing its authors and contributors, and publishing a
// content-updated site update.
//
// Tasks only look up users; creating them is someone else's job. Unknown
// usernames are skipped.
package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/tracksync/internal/ir"
)

// Store is the store surface used by the tasks.
type Store interface {
	FindUsersByUsernames(ctx context.Context, names []string) ([]ir.User, error)
	ReplaceAuthors(ctx context.Context, exerciseID int64, userIDs []int64) error
	ReplaceContributors(ctx context.Context, exerciseID int64, userIDs []int64) error
	CreateSiteUpdate(ctx context.Context, exerciseID int64, kind string, at time.Time) (bool, error)
}

// Pipeline runs the downstream tasks against a Store.
// It satisfies engine.Downstream.
type Pipeline struct {
	store Store
	now   func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the clock used for site update timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// New creates a Pipeline.
func New(s Store, opts ...Option) *Pipeline {
	p := &Pipeline{store: s, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SyncAuthors replaces the exercise's authors with the known users among usernames.
func (p *Pipeline) SyncAuthors(ctx context.Context, ex ir.Exercise, usernames []string) error {
	ids, err := p.userIDs(ctx, ex, "author", usernames)
	if err != nil {
		return err
	}
	if err := p.store.ReplaceAuthors(ctx, ex.ID, ids); err != nil {
		return fmt.Errorf("sync authors of %s: %w", ex.Slug, err)
	}
	return nil
}

// SyncContributors replaces the exercise's contributors with the known users
// among usernames.
func (p *Pipeline) SyncContributors(ctx context.Context, ex ir.Exercise, usernames []string) error {
	ids, err := p.userIDs(ctx, ex, "contributor", usernames)
	if err != nil {
		return err
	}
	if err := p.store.ReplaceContributors(ctx, ex.ID, ids); err != nil {
		return fmt.Errorf("sync contributors of %s: %w", ex.Slug, err)
	}
	return nil
}

// NotifyContentUpdated publishes a new-exercise site update, once per
// exercise. Deprecated exercises are not announced.
func (p *Pipeline) NotifyContentUpdated(ctx context.Context, ex ir.Exercise) error {
	if ex.Status == ir.StatusDeprecated {
		return nil
	}
	inserted, err := p.store.CreateSiteUpdate(ctx, ex.ID, ir.SiteUpdateNewExercise, p.now())
	if err != nil {
		return fmt.Errorf("notify %s: %w", ex.Slug, err)
	}
	if inserted {
		slog.Debug("site update created", "exercise", ex.Slug, "kind", ir.SiteUpdateNewExercise)
	}
	return nil
}

func (p *Pipeline) userIDs(ctx context.Context, ex ir.Exercise, role string, usernames []string) ([]int64, error) {
	users, err := p.store.FindUsersByUsernames(ctx, usernames)
	if err != nil {
		return nil, fmt.Errorf("find %ss of %s: %w", role, ex.Slug, err)
	}
	if skipped := len(usernames) - len(users); skipped > 0 {
		slog.Debug("skipping unknown users", "exercise", ex.Slug, "role", role, "skipped", skipped)
	}
	ids := make([]int64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids, nil
}
