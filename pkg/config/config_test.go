package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir is t.Chdir from Go 1.24+, inlined so the tests run on older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Error(err)
		}
	})
}

func TestBuildDefaults(t *testing.T) {
	chdir(t, t.TempDir()) // keep a local config.yaml from leaking in

	cfg, err := Build("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultAuthFile(), cfg.AuthFile)
	assert.Equal(t, "https://api.green-got.com", cfg.APIURL)
	assert.Equal(t, 50, cfg.PageSize)
	assert.Equal(t, 30, cfg.TimeoutSeconds)
	assert.Equal(t, 0, cfg.SigninMaxRetries)
}

func TestBuildFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "auth_file: /tmp/auth.json\npage_size: 25\napi_url: https://staging.green-got.test\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Build(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/auth.json", cfg.AuthFile)
	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, "https://staging.green-got.test", cfg.APIURL)
}

func TestBuildFlagOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("page_size: 25\n"), 0o600))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("page-size", 50, "")
	require.NoError(t, flags.Parse([]string{"--page-size", "10"}))

	cfg, err := Build(path, flags)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.PageSize)
}

func TestBuildRejectsBadPageSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("page_size: -1\n"), 0o600))

	_, err := Build(path, nil)
	assert.ErrorContains(t, err, "page_size")
}

func TestWriteDefault(t *testing.T) {
	chdir(t, t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefault(path))

	cfg, err := Build(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.PageSize)
}
