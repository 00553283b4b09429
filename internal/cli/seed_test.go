package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tracksync/internal/engine"
	"github.com/roach88/tracksync/internal/ir"
)

func TestSeedText(t *testing.T) {
	repo, _, dbPath := sampleRepo(t)

	out, err := execute(NewSeedCommand(&RootOptions{Format: "text"}), "--db", dbPath, "--repo", repo.Root)
	require.NoError(t, err)
	assert.Equal(t, "seeded track=ruby head=c1 concepts=4 users=3 exercises=6\n", out)

	// Existing rows are left alone.
	out, err = execute(NewSeedCommand(&RootOptions{Format: "text"}), "--db", dbPath, "--repo", repo.Root)
	require.NoError(t, err)
	assert.Equal(t, "seeded track=ruby head=c1 concepts=0 users=0 exercises=0\n", out)
}

func TestSeedJSON(t *testing.T) {
	repo, _, dbPath := sampleRepo(t)

	out, err := execute(NewSeedCommand(&RootOptions{Format: "json"}), "--db", dbPath, "--repo", repo.Root)
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   engine.SeedReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, engine.SeedReport{Track: "ruby", HeadSHA: "c1", Concepts: 4, Users: 3, Exercises: 6}, resp.Data)
}

func TestSeedFromConfigFile(t *testing.T) {
	repo, _, dbPath := sampleRepo(t)

	configPath := filepath.Join(t.TempDir(), "tracksync.yaml")
	config := "database: " + dbPath + "\nrepo: " + repo.Root + "\n"
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0o644))

	out, err := execute(NewSeedCommand(&RootOptions{Format: "text", Config: configPath}))
	require.NoError(t, err)
	assert.Contains(t, out, "exercises=6")
}

func TestSeedInvalidConfigFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "tracksync.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("databse: typo.db\n"), 0o644))

	_, err := execute(NewSeedCommand(&RootOptions{Format: "text", Config: configPath}))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestSeedBrokenTrack(t *testing.T) {
	repo, tree, dbPath := sampleRepo(t)

	broken := tree.Clone()
	broken[ir.TrackConfigPath] = "{not json"
	require.NoError(t, repo.CommitHead("c2", broken))

	_, err := execute(NewSeedCommand(&RootOptions{Format: "text"}), "--db", dbPath, "--repo", repo.Root)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "seed failed")
}
