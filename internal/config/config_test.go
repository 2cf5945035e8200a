package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishad/ffqf/internal/errors"
	"github.com/nishad/ffqf/internal/models"
)

func mapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, DefaultENAURL, cfg.ENA.BaseURL)
	assert.Equal(t, DefaultNCBIURL, cfg.NCBI.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.ENA.Timeout)
	assert.Equal(t, 10, cfg.ENA.Concurrency)
	assert.Equal(t, 10.0, cfg.ENA.RequestsPerSecond)
	assert.Equal(t, 3, cfg.NCBI.Concurrency)
	assert.Equal(t, 3.0, cfg.NCBI.RequestsPerSecond)
	assert.Equal(t, "ffqf", cfg.NCBI.Tool)
	assert.Equal(t, models.Fields(), cfg.ENA.Fields)
}

func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := Load("/nonexistent/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `ena:
  timeout: 5s
  concurrency: 4
ncbi:
  email: someone@example.org
  api_key: secret
  requests_per_second: 8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.ENA.Timeout)
	assert.Equal(t, 4, cfg.ENA.Concurrency)
	// untouched keys keep their defaults
	assert.Equal(t, DefaultENAURL, cfg.ENA.BaseURL)
	assert.Equal(t, "someone@example.org", cfg.NCBI.Email)
	assert.Equal(t, "secret", cfg.NCBI.APIKey)
	assert.Equal(t, 8.0, cfg.NCBI.RequestsPerSecond)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ffqf", "config.yaml")

	cfg := DefaultConfig()
	cfg.NCBI.Email = "someone@example.org"
	cfg.ENA.Timeout = 90 * time.Second
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ena: [unclosed"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindConfig))
}

func TestReadDotEnv(t *testing.T) {
	dir := t.TempDir()

	env, err := ReadDotEnv(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Empty(t, env)

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("FFQF_NCBI_EMAIL=dot@example.org\nFFQF_DOTENV_ONLY=1\n"), 0644))

	env, err = ReadDotEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "dot@example.org", env["FFQF_NCBI_EMAIL"])

	_, set := os.LookupEnv("FFQF_DOTENV_ONLY")
	assert.False(t, set, ".env must not leak into the process environment")
}

func TestLookupPrefersProcessEnv(t *testing.T) {
	t.Setenv("FFQF_NCBI_TOOL", "from-env")

	lookup := Lookup(map[string]string{
		"FFQF_NCBI_TOOL":  "from-dotenv",
		"FFQF_NCBI_EMAIL": "dot@example.org",
	})

	v, ok := lookup("FFQF_NCBI_TOOL")
	assert.True(t, ok)
	assert.Equal(t, "from-env", v)

	v, ok = lookup("FFQF_NCBI_EMAIL")
	assert.True(t, ok)
	assert.Equal(t, "dot@example.org", v)

	_, ok = lookup("FFQF_UNSET_FOR_TEST")
	assert.False(t, ok)
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ApplyEnv(mapLookup(map[string]string{
		"FFQF_ENA_API_URL":      "http://localhost:8080/ena/",
		"FFQF_ENA_TIMEOUT":      "12",
		"FFQF_ENA_CONCURRENCY":  "2",
		"FFQF_NCBI_TIMEOUT":     "1m",
		"FFQF_NCBI_RATE":        "0.5",
		"FFQF_NCBI_EMAIL":       "env@example.org",
		"FFQF_NCBI_API_KEY":     "",
		"FFQF_NCBI_CONCURRENCY": "1",
	}))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/ena/", cfg.ENA.BaseURL)
	assert.Equal(t, 12*time.Second, cfg.ENA.Timeout)
	assert.Equal(t, 2, cfg.ENA.Concurrency)
	assert.Equal(t, time.Minute, cfg.NCBI.Timeout)
	assert.Equal(t, 0.5, cfg.NCBI.RequestsPerSecond)
	assert.Equal(t, 1, cfg.NCBI.Concurrency)
	assert.Equal(t, "env@example.org", cfg.NCBI.Email)
	assert.Empty(t, cfg.NCBI.APIKey)
}

func TestApplyEnvRejectsBadNumbers(t *testing.T) {
	for _, key := range []string{"FFQF_ENA_CONCURRENCY", "FFQF_NCBI_RATE", "FFQF_ENA_TIMEOUT"} {
		cfg := DefaultConfig()
		err := cfg.ApplyEnv(mapLookup(map[string]string{key: "lots"}))
		require.Error(t, err, key)
		assert.True(t, errors.IsKind(err, errors.KindConfig), key)
		assert.Contains(t, err.Error(), key)
	}
}

func TestFinalizeAPIKeyRaisesNCBIRate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NCBI.Email = "someone@example.org"
	cfg.NCBI.APIKey = "secret"

	require.NoError(t, cfg.Finalize())
	assert.Equal(t, 10.0, cfg.NCBI.RequestsPerSecond)

	cfg = DefaultConfig()
	cfg.NCBI.Email = "someone@example.org"
	cfg.NCBI.APIKey = "secret"
	cfg.NCBI.RequestsPerSecond = 5

	require.NoError(t, cfg.Finalize())
	assert.Equal(t, 5.0, cfg.NCBI.RequestsPerSecond, "an explicit rate is kept")
}

func TestApplyDefaultsSkipsValidation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NCBI.APIKey = "secret"
	cfg.ENA.Fields = nil

	cfg.ApplyDefaults()

	assert.Equal(t, 10.0, cfg.NCBI.RequestsPerSecond)
	assert.Equal(t, models.Fields(), cfg.ENA.Fields)
	assert.Error(t, cfg.Validate(), "no email is set yet")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.NCBI.Email = "someone@example.org"
		return cfg
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing email", func(c *Config) { c.NCBI.Email = "" }},
		{"malformed email", func(c *Config) { c.NCBI.Email = "not an email" }},
		{"relative url", func(c *Config) { c.ENA.BaseURL = "ena/portal/api" }},
		{"ftp url", func(c *Config) { c.NCBI.BaseURL = "ftp://ftp.ncbi.nlm.nih.gov/" }},
		{"zero timeout", func(c *Config) { c.ENA.Timeout = 0 }},
		{"zero concurrency", func(c *Config) { c.NCBI.Concurrency = 0 }},
		{"negative rate", func(c *Config) { c.ENA.RequestsPerSecond = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsKind(err, errors.KindConfig))
		})
	}
}
