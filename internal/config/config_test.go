package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
catalog:
  source: sqlite
  path: /data/books.db
index:
  genre_strategy: shared_window
recommend:
  default_k: 8
covers:
  enabled: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Catalog.Source)
	assert.Equal(t, "/data/books.db", cfg.Catalog.Path)
	assert.Equal(t, "shared_window", cfg.Index.GenreStrategy)
	assert.Equal(t, 8, cfg.Recommend.DefaultK)
	assert.Equal(t, 100, cfg.Recommend.MaxK)
	assert.False(t, cfg.Covers.Enabled)
	assert.Equal(t, 32, cfg.Covers.Width)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "catalog:\n  path: from-file.csv\n")
	t.Setenv("BOOKREC_CATALOG__PATH", "from-env.csv")
	t.Setenv("BOOKREC_RECOMMEND__MAX_K", "20")
	t.Setenv("BOOKREC_LOG__LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env.csv", cfg.Catalog.Path)
	assert.Equal(t, 20, cfg.Recommend.MaxK)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"source":   "catalog:\n  source: parquet\n",
		"strategy": "index:\n  genre_strategy: random\n",
		"k":        "recommend:\n  default_k: 50\n  max_k: 10\n",
		"width":    "covers:\n  width: 1\n",
		"format":   "log:\n  format: xml\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, content))
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	want := defaultConfig()
	want.Catalog.Path = "elsewhere.csv"
	want.Presenter.BlurbSentences = 0

	require.NoError(t, Save(path, want))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadDefaultWritesUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	cfg, path, err := LoadDefault()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".config", "bookrec", "config.yaml"), path)
	assert.Equal(t, defaultConfig(), cfg)
	assert.FileExists(t, path)
}

func TestEnvTransform(t *testing.T) {
	assert.Equal(t, "covers.timeout_secs", envTransformFunc("BOOKREC_COVERS__TIMEOUT_SECS"))
	assert.Equal(t, "server.rate_limit_per_minute", envTransformFunc("BOOKREC_SERVER__RATE_LIMIT_PER_MINUTE"))
}
