package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenhouse-iot/sensordash/internal/errors"
	"github.com/greenhouse-iot/sensordash/internal/request"
)

func TestMachineMode_DefaultValue(t *testing.T) {
	oldMode := machineMode
	defer func() { machineMode = oldMode }()

	machineMode = false
	assert.False(t, MachineMode())

	machineMode = true
	assert.True(t, MachineMode())
}

func TestWriteJSONSuccess_BasicData(t *testing.T) {
	var buf bytes.Buffer

	err := WriteJSONSuccess(&buf, map[string]string{"key": "value"})
	require.NoError(t, err)

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))

	assert.True(t, env.Success)
	assert.Nil(t, env.Error)
	dataMap, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "value", dataMap["key"])
}

func TestWriteJSONSuccess_NilData(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteJSONSuccess(&buf, nil))

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))

	assert.True(t, env.Success)
	assert.Nil(t, env.Data)
	assert.Nil(t, env.Error)
}

func TestWriteJSONError_AllFields(t *testing.T) {
	var buf bytes.Buffer

	details := map[string]string{"sensor": "3"}
	err := WriteJSONError(&buf, ErrCodeNotFound, "Sensor not found", "List sensors first", details)
	require.NoError(t, err)

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))

	assert.False(t, env.Success)
	assert.Nil(t, env.Data)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeNotFound, env.Error.Code)
	assert.Equal(t, "Sensor not found", env.Error.Message)
	assert.Equal(t, "List sensors first", env.Error.Suggestion)

	detailsMap, ok := env.Error.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "3", detailsMap["sensor"])
}

func TestWriteJSONFromError_NilError(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteJSONFromError(&buf, nil))

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Nil(t, env.Error)
}

func TestWriteJSONFromError_GenericError(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteJSONFromError(&buf, fmt.Errorf("something went wrong")))

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeUnknown, env.Error.Code)
	assert.Equal(t, "something went wrong", env.Error.Message)
}

func TestWriteJSONFromError_WrappedStructuredError(t *testing.T) {
	var buf bytes.Buffer

	inner := errors.New(errors.ErrAuth, "Not logged in", "Run 'sensordash login' first.")
	require.NoError(t, WriteJSONFromError(&buf, fmt.Errorf("monitor: %w", inner)))

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeAuthRequired, env.Error.Code)
	assert.Equal(t, "Not logged in", env.Error.Message)
	assert.Equal(t, "Run 'sensordash login' first.", env.Error.Suggestion)
}

func TestErrorToJSON_NilReturnsNil(t *testing.T) {
	assert.Nil(t, ErrorToJSON(nil))
}

func TestErrorToJSON_InternalErrorCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "config not found",
			err:      errors.New(errors.ErrConfig, "Specified config file not found: x.yaml", ""),
			wantCode: ErrCodeConfigNotFound,
		},
		{
			name:     "config invalid",
			err:      errors.New(errors.ErrConfig, "Invalid refresh interval", ""),
			wantCode: ErrCodeConfigInvalid,
		},
		{
			name:     "auth",
			err:      errors.New(errors.ErrAuth, "Not logged in", ""),
			wantCode: ErrCodeAuthRequired,
		},
		{
			name:     "input",
			err:      errors.New(errors.ErrInput, "'x' is not a sensor ID", ""),
			wantCode: ErrCodeInvalidInput,
		},
		{
			name:     "api unavailable",
			err:      errors.WrapWithCode(fmt.Errorf("dial tcp: refused"), errors.ErrAPI, "Failed to list sensors", ""),
			wantCode: ErrCodeAPIUnavailable,
		},
		{
			name:     "api not found",
			err:      errors.WrapWithCode(&request.StatusError{Code: 404}, errors.ErrAPI, "Failed to get sensor 9: not found", ""),
			wantCode: ErrCodeNotFound,
		},
		{
			name:     "server",
			err:      errors.New(errors.ErrServer, "Server on :5000 stopped", ""),
			wantCode: ErrCodeServerFailed,
		},
		{
			name:     "unknown code",
			err:      errors.New("OTHER", "odd", ""),
			wantCode: ErrCodeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ErrorToJSON(tt.err)
			require.NotNil(t, result)
			assert.Equal(t, tt.wantCode, result.Code)
		})
	}
}

func TestErrorToJSON_StatusDetails(t *testing.T) {
	err := errors.WrapWithCode(&request.StatusError{Code: 500, Method: "GET", Path: "/api/sensors"},
		errors.ErrAPI, "Failed to list sensors", "")

	result := ErrorToJSON(err)

	details, ok := result.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 500, details["status"])
}

func TestErrorToJSON_NoStatusNoDetails(t *testing.T) {
	result := ErrorToJSON(errors.New(errors.ErrInput, "bad", ""))
	assert.Nil(t, result.Details)
}
