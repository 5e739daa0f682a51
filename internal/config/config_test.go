package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Parser:  ParserConfig{PlayerTokens: []int{4, 5}, Format: "auto"},
		Batch:   BatchConfig{Workers: 4, ContinueOnError: true},
		Storage: StorageConfig{Path: "bstats.db"},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, [2]int{4, 5}, cfg.Parser.Tokens())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFromViper(New())
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, []int{4, 5}, cfg.Parser.PlayerTokens)
	assert.Equal(t, "auto", cfg.Parser.Format)
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.True(t, cfg.Batch.ContinueOnError)
	assert.Equal(t, "bstats.db", cfg.Storage.Path)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bstats.yaml")
	err := os.WriteFile(path, []byte(`
logging:
  level: debug
  format: console
parser:
  player_tokens: [5, 6]
  format: html
batch:
  workers: 2
output:
  dir: out
storage:
  path: league.db
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, [2]int{5, 6}, cfg.Parser.Tokens())
	assert.Equal(t, "html", cfg.Parser.Format)
	assert.Equal(t, 2, cfg.Batch.Workers)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, "league.db", cfg.Storage.Path)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("BSTATS_BATCH_WORKERS", "8")
	t.Setenv("BSTATS_LOGGING_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Batch.Workers)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("BSTATS_STORAGE_PATH=from-dotenv.db\n"), 0644))
	t.Setenv("BSTATS_STORAGE_PATH", "")
	os.Unsetenv("BSTATS_STORAGE_PATH")

	require.NoError(t, LoadDotEnv(path))
	cfg, err := LoadFromViper(New())
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.db", cfg.Storage.Path)

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestValidateLoggingLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidateParser(t *testing.T) {
	cfg := validConfig()
	cfg.Parser.PlayerTokens = []int{4}
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Parser.PlayerTokens = []int{3, 3}
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Parser.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateCollectsAllViolations(t *testing.T) {
	cfg := validConfig()
	cfg.Batch.Workers = 0
	cfg.Storage.Path = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch.workers")
	assert.Contains(t, err.Error(), "storage.path")
}

func TestPropertyWorkers(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(-100, 100).Draw(t, "workers")
		cfg := validConfig()
		cfg.Batch.Workers = n
		err := cfg.Validate()
		if (n >= 1) != (err == nil) {
			t.Fatalf("workers=%d: err=%v", n, err)
		}
	})
}
