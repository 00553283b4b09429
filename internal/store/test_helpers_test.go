package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/tracksync/internal/ir"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestConcept inserts a concept and returns it with its ID.
func createTestConcept(t *testing.T, s *Store, uuid, slug string) ir.Concept {
	t.Helper()
	ctx := context.Background()
	c := ir.Concept{UUID: uuid, Track: "ruby", Slug: slug, Name: slug}
	if _, err := s.InsertConcept(ctx, c); err != nil {
		t.Fatalf("InsertConcept() failed: %v", err)
	}
	found, err := s.FindConceptByUUID(ctx, uuid)
	if err != nil {
		t.Fatalf("FindConceptByUUID() failed: %v", err)
	}
	return found
}

// createTestUser inserts a user and returns it with its ID.
func createTestUser(t *testing.T, s *Store, username string) ir.User {
	t.Helper()
	ctx := context.Background()
	if _, err := s.InsertUser(ctx, username); err != nil {
		t.Fatalf("InsertUser() failed: %v", err)
	}
	users, err := s.FindUsersByUsernames(ctx, []string{username})
	if err != nil || len(users) != 1 {
		t.Fatalf("FindUsersByUsernames() = %v, %v", users, err)
	}
	return users[0]
}

// createTestExercise inserts a practice exercise and returns it with its ID.
func createTestExercise(t *testing.T, s *Store, uuid, slug string, position int) ir.Exercise {
	t.Helper()
	ctx := context.Background()
	ex := ir.Exercise{UUID: uuid, Track: "ruby", Kind: ir.KindPractice, Slug: slug, Position: position}
	if _, err := s.InsertExercise(ctx, ex); err != nil {
		t.Fatalf("InsertExercise() failed: %v", err)
	}
	got, err := s.ReadExercise(ctx, uuid)
	if err != nil {
		t.Fatalf("ReadExercise() failed: %v", err)
	}
	return got
}
