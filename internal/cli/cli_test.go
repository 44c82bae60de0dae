package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/nounclass/internal/model"
)

func TestLoadConfig_Defaults(t *testing.T) {
	v := viper.New()
	require.NoError(t, setupViper(v, writeConfig(t, "{}\n")))

	cfg, err := loadConfig(v)
	require.NoError(t, err)

	want := model.DefaultConfig()
	assert.Equal(t, want.HTTP, cfg.HTTP)
	assert.Equal(t, want.Tagger, cfg.Tagger)
	assert.Equal(t, want.Sources, cfg.Sources)
	assert.Equal(t, 2*time.Minute, cfg.HTTP.Timeout)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	t.Setenv("NOUNCLASS_TAGGER_BACKEND", "udpipe")
	t.Setenv("NOUNCLASS_HTTP_TIMEOUT", "45s")

	file := writeConfig(t, `
concurrency:
  workers: 7
rate_limiting:
  requests_per_second: 0.5
sources:
  - name: persuasion
    url: https://www.gutenberg.org/files/105/105-0.txt
    encoding: utf-8
    strip_boilerplate: true
`)

	v := viper.New()
	require.NoError(t, setupViper(v, file))

	cfg, err := loadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, model.TaggerUDPipe, cfg.Tagger.Backend)
	assert.Equal(t, 45*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 7, cfg.Concurrency.Workers)
	assert.Equal(t, 0.5, cfg.RateLimiting.RequestsPerSecond)
	assert.Equal(t, 2, cfg.RateLimiting.BurstSize)
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, model.Source{
		Name:             "persuasion",
		URL:              "https://www.gutenberg.org/files/105/105-0.txt",
		Encoding:         "utf-8",
		StripBoilerplate: true,
	}, cfg.Sources[0])
}

func TestSetupViper_MissingExplicitFile(t *testing.T) {
	err := setupViper(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".nounclass", "config.yaml")
	require.NoError(t, writeDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# nounclass configuration file")
	assert.Contains(t, string(data), "pg8294.txt")

	// The written file loads back to the defaults
	v := viper.New()
	require.NoError(t, setupViper(v, path))
	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig().Sources, cfg.Sources)

	err = writeDefaultConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestClassifyConfig_SourcesFileAndSwitches(t *testing.T) {
	list := filepath.Join(t.TempDir(), "sources.txt")
	require.NoError(t, os.WriteFile(list, []byte("https://www.gutenberg.org/files/105/105-0.txt persuasion\n"), 0o644))

	sourcesFile, noCache, noRobots = list, true, true
	t.Cleanup(func() { sourcesFile, noCache, noRobots = "", false, false })

	v := viper.New()
	require.NoError(t, setupViper(v, writeConfig(t, "{}\n")))

	cfg, err := classifyConfig(v)
	require.NoError(t, err)
	assert.False(t, cfg.Cache.Enabled)
	assert.False(t, cfg.HTTP.RespectRobots)
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, "persuasion", cfg.Sources[0].Name)
}

func TestClassifyConfig_Invalid(t *testing.T) {
	v := viper.New()
	require.NoError(t, setupViper(v, writeConfig(t, "tagger:\n  backend: spacy\n")))

	_, err := classifyConfig(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spacy")
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPrintSources(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printSources(&buf, model.DefaultSources()))

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "austen")
	assert.Contains(t, out, "ascii")
	assert.Contains(t, out, "https://www.gutenberg.org/cache/epub/8294/pg8294.txt")
	// Only the bible source strips verse numbers.
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("strip")))
}

func TestPrintChecks(t *testing.T) {
	modified := time.Date(2023, 1, 2, 15, 4, 5, 0, time.UTC)
	results := []model.SourceCheck{
		{Name: "austen", StatusCode: 200, IsAccessible: true, RobotsAllowed: true, ContentLength: 3 << 20, LastModified: &modified},
		{Name: "reviews", StatusCode: 404, IsDead: true, RobotsAllowed: true, ContentLength: -1},
		{Name: "bible", RobotsAllowed: false, ContentLength: -1},
	}

	var buf bytes.Buffer
	require.NoError(t, printChecks(&buf, results))

	out := buf.String()
	assert.Contains(t, out, "3.0M")
	assert.Contains(t, out, "2023-01-02")
	assert.Contains(t, out, "dead")
	assert.Contains(t, out, "disallowed")
}

func TestSizeLabel(t *testing.T) {
	assert.Equal(t, "?", sizeLabel(-1))
	assert.Equal(t, "512", sizeLabel(512))
	assert.Equal(t, "2.0K", sizeLabel(2048))
	assert.Equal(t, "1.5M", sizeLabel(3<<19))
}
