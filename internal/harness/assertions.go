package harness

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/roach88/tracksync/internal/ir"
	"github.com/roach88/tracksync/internal/store"
	"github.com/roach88/tracksync/internal/testutil"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Subject  string // Exercise slug or run ID
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s %s\n", e.Type, e.Subject)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions evaluates all assertions against the final store state.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(ctx context.Context, st *store.Store, assertions []Assertion) []string {
	var errs []string
	for i, assertion := range assertions {
		var err error
		switch assertion.Type {
		case AssertExercise:
			err = assertExercise(ctx, st, assertion)
		case AssertSyncRun:
			err = assertSyncRun(ctx, st, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func assertExercise(ctx context.Context, st *store.Store, assertion Assertion) error {
	exercises, err := st.ListExercises(ctx, testutil.SampleTrack)
	if err != nil {
		return err
	}
	for _, ex := range exercises {
		if ex.Slug != assertion.Exercise {
			continue
		}
		state, err := exerciseState(ctx, st, ex)
		if err != nil {
			return err
		}
		return matchState(AssertExercise, ex.Slug, state, assertion.Expect)
	}
	return &AssertionError{
		Type:     AssertExercise,
		Subject:  assertion.Exercise,
		Expected: "exercise to exist",
		Actual:   "not found",
	}
}

func assertSyncRun(ctx context.Context, st *store.Store, assertion Assertion) error {
	run, err := st.ReadSyncRun(ctx, assertion.Run)
	if errors.Is(err, store.ErrNotFound) {
		return &AssertionError{
			Type:     AssertSyncRun,
			Subject:  assertion.Run,
			Expected: "sync run to exist",
			Actual:   "not found",
		}
	}
	if err != nil {
		return err
	}
	state := map[string]interface{}{
		"track":           run.Track,
		"head_sha":        run.HeadSHA,
		"forced":          run.Forced,
		"finished":        run.FinishedAt != nil,
		"checkpoint_only": run.CheckpointOnly,
		"reconciled":      run.Reconciled,
		"failed":          run.Failed,
	}
	return matchState(AssertSyncRun, run.ID, state, assertion.Expect)
}

// exerciseState projects an exercise onto the field names scenarios assert on.
// Values use the types YAML decodes into, so they compare with reflect.DeepEqual.
func exerciseState(ctx context.Context, st *store.Store, ex ir.Exercise) (map[string]interface{}, error) {
	announced, err := st.HasSiteUpdate(ctx, ex.ID, ir.SiteUpdateNewExercise)
	if err != nil {
		return nil, err
	}
	var title interface{}
	if ex.Title != nil {
		title = *ex.Title
	}
	return map[string]interface{}{
		"uuid":               ex.UUID,
		"kind":               string(ex.Kind),
		"title":              title,
		"status":             string(ex.Status),
		"difficulty":         ex.Difficulty,
		"position":           ex.Position,
		"icon_name":          ex.IconName,
		"blurb":              ex.Blurb,
		"git_sha":            ex.GitSHA,
		"synced_to_git_sha":  ex.SyncedToGitSHA,
		"has_test_runner":    ex.HasTestRunner,
		"prerequisites":      toList(ex.PrerequisiteSlugs()),
		"practiced_concepts": toList(ex.PracticedConceptSlugs()),
		"authors":            toList(ex.Authors),
		"contributors":       toList(ex.Contributors),
		"site_update":        announced,
	}, nil
}

// matchState checks expected fields with subset semantics.
func matchState(kind, subject string, actual, expect map[string]interface{}) error {
	for _, key := range sortedKeys(expect) {
		actualValue, exists := actual[key]
		if !exists {
			return &AssertionError{
				Type:     kind,
				Subject:  subject,
				Expected: fmt.Sprintf("field %q to exist", key),
				Actual:   fmt.Sprintf("known fields: %v", sortedKeys(actual)),
			}
		}
		if !reflect.DeepEqual(normalize(expect[key]), actualValue) {
			return &AssertionError{
				Type:     kind,
				Subject:  subject,
				Expected: fmt.Sprintf("field %q = %v (type %T)", key, expect[key], expect[key]),
				Actual:   fmt.Sprintf("field %q = %v (type %T)", key, actualValue, actualValue),
			}
		}
	}
	return nil
}

// normalize makes YAML values comparable with exerciseState values.
func normalize(v interface{}) interface{} {
	switch val := v.(type) {
	case int64:
		return int(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	default:
		return v
	}
}

func toList(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
