package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenhouse-iot/sensordash/internal/config"
	"github.com/greenhouse-iot/sensordash/internal/errors"
)

func TestInit_WritesDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer

	path, err := Init(&buf, InitOptions{Dir: dir, NonInteractive: true})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, config.ConfigFileName), path)
	assert.Contains(t, buf.String(), "Wrote "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, config.Validate(cfg))
	assert.Equal(t, config.DefaultBaseURL, cfg.API.BaseURL)
}

func TestInit_BaseURL(t *testing.T) {
	dir := t.TempDir()

	path, err := Init(&bytes.Buffer{}, InitOptions{Dir: dir, BaseURL: "http://greenhouse.local:8080", NonInteractive: true})
	require.NoError(t, err)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://greenhouse.local:8080", cfg.API.BaseURL)
}

func TestInit_InvalidBaseURL(t *testing.T) {
	dir := t.TempDir()

	_, err := Init(&bytes.Buffer{}, InitOptions{Dir: dir, BaseURL: "greenhouse.local", NonInteractive: true})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInput))

	_, statErr := os.Stat(filepath.Join(dir, config.ConfigFileName))
	assert.True(t, os.IsNotExist(statErr), "nothing is written for a bad URL")
}

func TestInit_ExistingConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0644))

	_, err := Init(&bytes.Buffer{}, InitOptions{Dir: dir, NonInteractive: true})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))

	_, err = Init(&bytes.Buffer{}, InitOptions{Dir: dir, NonInteractive: true, Overwrite: true})
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "base_url")
}

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{in: "http://localhost:5000"},
		{in: "https://greenhouse.example.com"},
		{in: "localhost:5000", wantErr: true},
		{in: "ftp://host", wantErr: true},
		{in: "http://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := validateBaseURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigSet(t *testing.T) {
	path := writeTestConfig(t)
	var buf bytes.Buffer

	require.NoError(t, configSet(&buf, path, "refresh.interval", "10s"))
	assert.Contains(t, buf.String(), "refresh.interval = 10s")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "10s", cfg.Refresh.Interval.String())
}

func TestConfigSet_RejectsInvalidValue(t *testing.T) {
	path := writeTestConfig(t)

	err := configSet(&bytes.Buffer{}, path, "api.base_url", "not a url")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}
