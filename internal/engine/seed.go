package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/roach88/tracksync/internal/content"
	"github.com/roach88/tracksync/internal/ir"
)

// SeedStore is the store surface used to create missing entities.
type SeedStore interface {
	InsertConcept(ctx context.Context, c ir.Concept) (bool, error)
	InsertUser(ctx context.Context, githubUsername string) (bool, error)
	InsertExercise(ctx context.Context, ex ir.Exercise) (bool, error)
}

// SeedReport counts the rows created by Seed.
type SeedReport struct {
	Track     string `json:"track"`
	HeadSHA   string `json:"head_sha"`
	Concepts  int    `json:"concepts"`
	Users     int    `json:"users"`
	Exercises int    `json:"exercises"`
}

// Seed creates the concepts, users and exercises declared at the head commit
// that do not exist yet. Existing rows are left alone.
//
// New exercises get their identity columns, title and position only. Their
// checkpoint is empty, so the next sync reconciles them in full.
func Seed(ctx context.Context, src content.Source, st SeedStore, anchor string) (*SeedReport, error) {
	if anchor == "" {
		anchor = DefaultAnchorSlug
	}
	head, err := src.HeadCommit(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed: read head commit: %w", err)
	}
	track, err := src.ReadTrack(ctx, head)
	if err != nil {
		return nil, fmt.Errorf("seed: read track at %s: %w", head, err)
	}
	report := &SeedReport{Track: track.Slug, HeadSHA: head}

	for _, c := range track.Concepts {
		if err := validUUID(c.UUID); err != nil {
			return nil, fmt.Errorf("seed: concept %s: %w", c.Slug, err)
		}
		inserted, err := st.InsertConcept(ctx, ir.Concept{UUID: c.UUID, Track: track.Slug, Slug: c.Slug, Name: c.Name})
		if err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
		if inserted {
			report.Concepts++
		}
	}

	for _, kind := range []ir.ExerciseKind{ir.KindConcept, ir.KindPractice} {
		rules, err := RulesFor(kind)
		if err != nil {
			return nil, err
		}
		for i, cfg := range rules.Siblings(track) {
			if err := validUUID(cfg.UUID); err != nil {
				return nil, fmt.Errorf("seed: exercise %s: %w", cfg.Slug, err)
			}
			files, err := src.ReadExercise(ctx, head, kind, cfg.Slug)
			if err != nil {
				return nil, fmt.Errorf("seed: %w", err)
			}
			for _, name := range append(append([]string{}, files.Authors...), files.Contributors...) {
				inserted, err := st.InsertUser(ctx, name)
				if err != nil {
					return nil, fmt.Errorf("seed: %w", err)
				}
				if inserted {
					report.Users++
				}
			}

			inserted, err := st.InsertExercise(ctx, ir.Exercise{
				UUID:     cfg.UUID,
				Track:    track.Slug,
				Kind:     kind,
				Slug:     cfg.Slug,
				Title:    ir.Presence(cfg.Name),
				Position: Position(cfg.Slug, i, rules.PrecedingCount(track), anchor),
			})
			if err != nil {
				return nil, fmt.Errorf("seed: %w", err)
			}
			if inserted {
				report.Exercises++
			}
		}
	}

	slog.Info("seed complete",
		"track", report.Track, "head", head,
		"concepts", report.Concepts, "users", report.Users, "exercises", report.Exercises)
	return report, nil
}

func validUUID(s string) error {
	if _, err := uuid.Parse(s); err != nil {
		return fmt.Errorf("invalid uuid %q: %w", s, err)
	}
	return nil
}
