package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tracksync/internal/testutil"
)

// Scenario defines an end-to-end sync scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Anchor is the slug pinned to position 0. Empty means the default.
	Anchor string `yaml:"anchor,omitempty"`

	// Workers bounds the parallelism of sync steps. Zero means the default.
	Workers int `yaml:"workers,omitempty"`

	// Commits are written in order. The first starts from the sample track;
	// every later one starts from its predecessor.
	Commits []Commit `yaml:"commits"`

	// Steps run against the store in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Commit describes one content repository commit as edits on its parent.
type Commit struct {
	SHA string `yaml:"sha"`

	// Exercises edits entries of the track config and exercise configs.
	Exercises []ExerciseEdit `yaml:"exercises,omitempty"`

	// Order is the new order of the practice exercises, by slug.
	Order []string `yaml:"order,omitempty"`

	// Files writes or overwrites files, keyed by repository path.
	Files map[string]string `yaml:"files,omitempty"`

	// Delete removes files by repository path.
	Delete []string `yaml:"delete,omitempty"`

	// Patch is stored as the diff from the previous commit. Without it the
	// diff is computed from file contents.
	Patch string `yaml:"patch,omitempty"`
}

// ExerciseEdit changes one exercise. Nil fields are left alone.
type ExerciseEdit struct {
	Slug          string    `yaml:"slug"`
	Name          *string   `yaml:"name,omitempty"`
	Status        *string   `yaml:"status,omitempty"`
	Difficulty    *int      `yaml:"difficulty,omitempty"`
	Prerequisites *[]string `yaml:"prerequisites,omitempty"`
	Practices     *[]string `yaml:"practices,omitempty"`
	Concepts      *[]string `yaml:"concepts,omitempty"`

	// Meta replaces the exercise's .meta/config.json.
	Meta *testutil.ExerciseMeta `yaml:"meta,omitempty"`

	// Remove drops the exercise from the track config. Its files stay.
	Remove bool `yaml:"remove,omitempty"`
}

// Step is one operation run against the store.
type Step struct {
	// Action is one of seed, sync, force or plan.
	Action string `yaml:"action"`

	// Head is the commit HEAD points at for this step.
	// Defaults to the previous step's head, or the first commit.
	Head string `yaml:"head,omitempty"`

	// Expect validates the step's report. Nil means no validation.
	Expect *StepExpect `yaml:"expect,omitempty"`
}

// StepExpect specifies the expected report of a sync, force or plan step.
// Only the fields that are set are checked.
type StepExpect struct {
	CheckpointOnly *int `yaml:"checkpoint_only,omitempty"`
	Reconciled     *int `yaml:"reconciled,omitempty"`
	Failed         *int `yaml:"failed,omitempty"`

	// Outcomes maps exercise slugs to checkpoint_only, reconciled or failed.
	Outcomes map[string]string `yaml:"outcomes,omitempty"`

	// Details maps exercise slugs to the report detail column
	// (trigger:field, or the error code of a failure).
	Details map[string]string `yaml:"details,omitempty"`
}

// Assertion validates the final state.
type Assertion struct {
	// Type specifies the assertion type:
	//   - "exercise": check fields of the exercise with slug Exercise
	//   - "sync_run": check fields of the sync run with ID Run
	Type string `yaml:"type"`

	Exercise string `yaml:"exercise,omitempty"`
	Run      string `yaml:"run,omitempty"`

	// Expect contains expected field values. Subset match.
	Expect map[string]interface{} `yaml:"expect"`
}

// Step actions.
const (
	ActionSeed  = "seed"
	ActionSync  = "sync"
	ActionForce = "force"
	ActionPlan  = "plan"
)

// Assertion type constants.
const (
	AssertExercise = "exercise"
	AssertSyncRun  = "sync_run"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches typos like "assertion:" vs "assertions:"
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Workers < 0 {
		return fmt.Errorf("workers must be non-negative")
	}
	if len(s.Commits) == 0 {
		return fmt.Errorf("commits list is required and must be non-empty")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	shas := map[string]bool{}
	for i, c := range s.Commits {
		if c.SHA == "" {
			return fmt.Errorf("commits[%d]: sha is required", i)
		}
		if shas[c.SHA] {
			return fmt.Errorf("commits[%d]: duplicate sha %q", i, c.SHA)
		}
		shas[c.SHA] = true
		if i == 0 && c.Patch != "" {
			return fmt.Errorf("commits[0]: patch requires a previous commit")
		}
		for j, e := range c.Exercises {
			if e.Slug == "" {
				return fmt.Errorf("commits[%d].exercises[%d]: slug is required", i, j)
			}
		}
	}

	for i, step := range s.Steps {
		switch step.Action {
		case ActionSeed, ActionSync, ActionForce, ActionPlan:
		case "":
			return fmt.Errorf("steps[%d]: action is required", i)
		default:
			return fmt.Errorf("steps[%d]: unknown action %q", i, step.Action)
		}
		if step.Head != "" && !shas[step.Head] {
			return fmt.Errorf("steps[%d]: unknown head %q", i, step.Head)
		}
		if step.Expect != nil && step.Action == ActionSeed {
			return fmt.Errorf("steps[%d]: expect is not supported for seed", i)
		}
		if step.Expect != nil {
			for slug, outcome := range step.Expect.Outcomes {
				switch outcome {
				case "checkpoint_only", "reconciled", "failed":
				default:
					return fmt.Errorf("steps[%d].expect.outcomes[%s]: unknown outcome %q", i, slug, outcome)
				}
			}
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertExercise:
		if a.Exercise == "" {
			return fmt.Errorf("assertions[%d]: exercise is required for exercise", index)
		}
	case AssertSyncRun:
		if a.Run == "" {
			return fmt.Errorf("assertions[%d]: run is required for sync_run", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	if len(a.Expect) == 0 {
		return fmt.Errorf("assertions[%d]: expect is required", index)
	}
	return nil
}
