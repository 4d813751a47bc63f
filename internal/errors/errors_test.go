package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrConfig,
		ErrAPI,
		ErrAuth,
		ErrServer,
		ErrInput,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "config error",
			code:       ErrConfig,
			message:    "Invalid configuration in .sensordash.yaml",
			suggestion: "Check your configuration file syntax",
		},
		{
			name:       "api error",
			code:       ErrAPI,
			message:    "Sensor API unreachable",
			suggestion: "Check api.base_url",
		},
		{
			name:       "auth error",
			code:       ErrAuth,
			message:    "Not logged in",
			suggestion: "Run 'sensordash login' first",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)

			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name          string
		err           *Error
		expectedParts []string
		notExpected   []string
	}{
		{
			name:          "basic error formatting",
			err:           New(ErrConfig, "Invalid configuration", "Check .sensordash.yaml syntax"),
			expectedParts: []string{"Invalid configuration", "Check .sensordash.yaml syntax"},
		},
		{
			name:          "error with failure symbol",
			err:           New(ErrAPI, "Request failed", "Try again"),
			expectedParts: []string{"✗", "Request failed"},
		},
		{
			name:          "error without suggestion",
			err:           New(ErrInput, "Bad sensor id", ""),
			expectedParts: []string{"Bad sensor id"},
			notExpected:   []string{"\n\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := tt.err.Error()
			for _, part := range tt.expectedParts {
				assert.Contains(t, output, part)
			}
			for _, part := range tt.notExpected {
				assert.NotContains(t, output, part)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := Wrap(cause, "Sensor API unreachable")

	require.NotNil(t, wrapped)
	assert.Equal(t, ErrAPI, wrapped.Code, "Wrap should default to ErrAPI code")
	assert.Equal(t, "Sensor API unreachable", wrapped.Message)
	assert.Equal(t, cause, wrapped.Cause)
	assert.Contains(t, wrapped.Error(), "connection refused")
}

func TestWrapWithCode(t *testing.T) {
	cause := errors.New("file not found")
	wrapped := WrapWithCode(cause, ErrConfig, "Failed to load config", "Run 'sensordash init'")

	assert.Equal(t, ErrConfig, wrapped.Code)
	assert.Equal(t, "Run 'sensordash init'", wrapped.Suggestion)
	assert.True(t, errors.Is(wrapped, cause))
	assert.Equal(t, cause, wrapped.Unwrap())
}

func TestErrorsAs(t *testing.T) {
	var err error = fmt.Errorf("outer: %w", New(ErrAuth, "Not logged in", ""))

	var sdErr *Error
	require.True(t, errors.As(err, &sdErr))
	assert.Equal(t, ErrAuth, sdErr.Code)
}

func TestIsCode(t *testing.T) {
	err := New(ErrConfig, "Config error", "")

	assert.True(t, IsCode(err, ErrConfig))
	assert.False(t, IsCode(err, ErrAPI))
	assert.False(t, IsCode(errors.New("standard error"), ErrConfig))
	assert.False(t, IsCode(nil, ErrConfig))
}

func TestErrorMessageStructure(t *testing.T) {
	err := WrapWithCode(
		errors.New("Get \"http://localhost:5000/api/sensors\": dial tcp: connection refused"),
		ErrAPI,
		"Cannot reach the sensor API",
		"Start the backend or run: sensordash serve",
	)

	lines := strings.Split(err.Error(), "\n")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[0]), "✗"))
	assert.Contains(t, lines[0], "Cannot reach the sensor API")
}
