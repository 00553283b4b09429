package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roach88/tracksync/internal/ir"
	"github.com/roach88/tracksync/internal/store"
)

// ConceptFinder is the related-entity store used to resolve concept references.
type ConceptFinder interface {
	FindConceptByUUID(ctx context.Context, uuid string) (ir.Concept, error)
}

// Resolution is the per-slug result of resolving a concept reference.
type Resolution struct {
	Slug  string
	UUID  string
	ID    int64
	Found bool
}

// ResolveConcepts maps concept slugs to persisted concept references.
//
// Input order is preserved. A slug is dropped, without error, when the track
// does not declare it or when its concept has not been persisted yet: config
// changes can land before the concept rows are created. Any other lookup
// failure is returned.
func ResolveConcepts(ctx context.Context, track *ir.Track, finder ConceptFinder, slugs []string) ([]ir.ConceptRef, error) {
	results := make([]Resolution, 0, len(slugs))
	for _, slug := range slugs {
		res, err := resolveConcept(ctx, track, finder, slug)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	refs := make([]ir.ConceptRef, 0, len(results))
	for _, res := range results {
		if !res.Found {
			slog.Debug("dropping unresolved concept reference", "slug", res.Slug, "uuid", res.UUID)
			continue
		}
		refs = append(refs, ir.ConceptRef{ID: res.ID, UUID: res.UUID, Slug: res.Slug})
	}
	return refs, nil
}

func resolveConcept(ctx context.Context, track *ir.Track, finder ConceptFinder, slug string) (Resolution, error) {
	res := Resolution{Slug: slug}

	cfg, ok := track.ConceptBySlug(slug)
	if !ok {
		return res, nil
	}
	res.UUID = cfg.UUID

	concept, err := finder.FindConceptByUUID(ctx, cfg.UUID)
	if errors.Is(err, store.ErrNotFound) {
		return res, nil
	}
	if err != nil {
		return res, err
	}

	res.ID = concept.ID
	res.Found = true
	return res, nil
}
