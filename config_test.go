package docpost

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.WithDefaults()
	assert.Equal(t, "admin", cfg.Author)
	assert.Equal(t, "content", cfg.ContentDir)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "github", cfg.HighlightStyle)
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, 5*time.Minute, cfg.PostCacheTTL)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"too many workers", Config{Workers: 100}, "Workers"},
		{"negative workers", Config{Workers: -1}, "Workers"},
		{"bad url", Config{URL: "not a url"}, "URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "docpost.yaml")
	yaml := "author: lepture\ncontent_dir: posts\nworkers: 2\ninline_styles: true\npost_cache_ttl: 30s\n"
	require.NoError(t, os.WriteFile(file, []byte(yaml), 0o644))

	cfg, err := LoadConfig(file)
	require.NoError(t, err)
	assert.Equal(t, "lepture", cfg.Author)
	assert.Equal(t, "posts", cfg.ContentDir)
	assert.Equal(t, 2, cfg.Workers)
	assert.True(t, cfg.InlineStyles)
	assert.Equal(t, 30*time.Second, cfg.PostCacheTTL)
	assert.Equal(t, "github", cfg.HighlightStyle)
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("DOCPOST_AUTHOR", "env-author")
	t.Setenv("DOCPOST_WORKERS", "8")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "env-author", cfg.Author)
	assert.Equal(t, 8, cfg.Workers)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Setenv("DOCPOST_WORKERS", "500")
	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}
