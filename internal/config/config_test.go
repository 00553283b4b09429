package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultPath)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "database: sync.db\nrepo: ./content\n")

	cfg, err := Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, "sync.db", cfg.Database)
	assert.Equal(t, "./content", cfg.Repo)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "hello-world", cfg.Anchor)
}

func TestLoad_AllFields(t *testing.T) {
	path := writeConfig(t, `
database: sync.db
repo: ./content
track: ruby
workers: 8
anchor: intro
`)

	cfg, err := Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, "ruby", cfg.Track)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "intro", cfg.Anchor)
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	path := writeConfig(t, "database: sync.db\nworkerz: 3\n")

	_, err := Load(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workerz")
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeConfig(t, "")

	cfg, err := Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(path, false)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database")
	assert.Contains(t, err.Error(), "repo")

	cfg.Database = "sync.db"
	cfg.Repo = "./content"
	assert.NoError(t, cfg.Validate())

	cfg.Workers = 0
	assert.Error(t, cfg.Validate())
}
