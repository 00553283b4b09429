package content

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/tracksync/internal/ir"
)

// trackDocument mirrors the track's config.json.
type trackDocument struct {
	Slug      string `json:"slug"`
	Exercises struct {
		Concept  []ir.ExerciseConfig `json:"concept"`
		Practice []ir.ExerciseConfig `json:"practice"`
	} `json:"exercises"`
	Concepts []ir.ConceptConfig `json:"concepts"`
}

// exerciseDocument mirrors an exercise's .meta/config.json.
type exerciseDocument struct {
	Blurb        string   `json:"blurb"`
	Icon         string   `json:"icon"`
	Authors      []string `json:"authors"`
	Contributors []string `json:"contributors"`
	TestRunner   *bool    `json:"test_runner"`
	Files        struct {
		Solution    []string `json:"solution"`
		Test        []string `json:"test"`
		Example     []string `json:"example"`
		Exemplar    []string `json:"exemplar"`
		Editor      []string `json:"editor"`
		Invalidator []string `json:"invalidator"`
	} `json:"files"`
}

// decodeConfig compiles a JSON config file with CUE and decodes it into v.
// A fresh cue.Context is used per call; contexts are not safe for concurrent use.
func decodeConfig(filename string, data []byte, v any) error {
	ctx := cuecontext.New()
	val := ctx.CompileBytes(data, cue.Filename(filename))
	if err := val.Err(); err != nil {
		return fmt.Errorf("compile %s: %w", filename, err)
	}
	if err := val.Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", filename, err)
	}
	return nil
}

// parseTrack decodes config.json into a Track snapshot.
func parseTrack(commit string, data []byte) (*ir.Track, error) {
	var doc trackDocument
	if err := decodeConfig(ir.TrackConfigPath, data, &doc); err != nil {
		return nil, err
	}

	track := &ir.Track{
		Slug:              normalize(doc.Slug),
		Commit:            commit,
		ConceptExercises:  normalizeExercises(doc.Exercises.Concept),
		PracticeExercises: normalizeExercises(doc.Exercises.Practice),
		Concepts:          make([]ir.ConceptConfig, len(doc.Concepts)),
	}
	for i, c := range doc.Concepts {
		track.Concepts[i] = ir.ConceptConfig{
			UUID: strings.TrimSpace(c.UUID),
			Slug: normalize(c.Slug),
			Name: normalize(c.Name),
		}
	}
	return track, nil
}

// parseExercise decodes .meta/config.json into ExerciseFiles.
// The icon defaults to the slug and the test runner defaults to enabled.
func parseExercise(kind ir.ExerciseKind, slug string, data []byte) (*ir.ExerciseFiles, error) {
	configPath := ir.ExerciseConfigPath(kind, slug)

	var doc exerciseDocument
	if err := decodeConfig(configPath, data, &doc); err != nil {
		return nil, err
	}

	files := &ir.ExerciseFiles{
		Kind:          kind,
		Slug:          slug,
		Blurb:         normalize(doc.Blurb),
		IconName:      normalize(doc.Icon),
		Authors:       normalizeAll(doc.Authors),
		Contributors:  normalizeAll(doc.Contributors),
		HasTestRunner: doc.TestRunner == nil || *doc.TestRunner,
		ConfigPath:    configPath,
	}
	if files.IconName == "" {
		files.IconName = slug
	}

	dir := ir.ExerciseDir(kind, slug)
	for _, group := range [][]string{
		doc.Files.Test,
		doc.Files.Example,
		doc.Files.Exemplar,
		doc.Files.Editor,
		doc.Files.Invalidator,
	} {
		for _, f := range group {
			files.ToolingPaths = append(files.ToolingPaths, dir+"/"+strings.TrimPrefix(f, "./"))
		}
	}
	return files, nil
}

func normalizeExercises(in []ir.ExerciseConfig) []ir.ExerciseConfig {
	out := make([]ir.ExerciseConfig, len(in))
	for i, e := range in {
		out[i] = ir.ExerciseConfig{
			UUID:          strings.TrimSpace(e.UUID),
			Slug:          normalize(e.Slug),
			Name:          normalize(e.Name),
			Status:        normalize(e.Status),
			Difficulty:    e.Difficulty,
			Prerequisites: normalizeAll(e.Prerequisites),
			Practices:     normalizeAll(e.Practices),
			Concepts:      normalizeAll(e.Concepts),
		}
	}
	return out
}

// normalize applies Unicode NFC so visually identical strings compare equal.
func normalize(s string) string {
	return norm.NFC.String(s)
}

func normalizeAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = normalize(s)
	}
	return out
}
