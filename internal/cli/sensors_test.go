package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenhouse-iot/sensordash/internal/errors"
	"github.com/greenhouse-iot/sensordash/internal/sensor"
)

func TestSensorsList(t *testing.T) {
	a, _ := testAPI(t)
	var buf bytes.Buffer

	require.NoError(t, sensorsList(context.Background(), a, &buf))

	out := buf.String()
	for _, name := range []string{"Air Temperature", "Air Humidity", "Soil pH", "Light Level"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "Greenhouse A")
}

func TestSensorsList_Empty(t *testing.T) {
	a, store := testAPI(t)
	for _, r := range store.List() {
		require.NoError(t, store.Delete(r.ID))
	}
	var buf bytes.Buffer

	require.NoError(t, sensorsList(context.Background(), a, &buf))
	assert.Contains(t, buf.String(), "No sensors yet")
}

func TestSensorsList_JSONNormalizes(t *testing.T) {
	a, _ := testAPI(t)
	withMachineMode(t)
	var buf bytes.Buffer

	require.NoError(t, sensorsList(context.Background(), a, &buf))

	var env struct {
		Success bool             `json:"success"`
		Data    []sensor.Reading `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.True(t, env.Success)
	require.Len(t, env.Data, 4)
	// Seeded sensors have no reading yet.
	assert.Equal(t, sensor.DefaultValue, env.Data[0].CurrentValue)
	assert.Equal(t, sensor.DefaultLastUpdate, env.Data[0].LastUpdate)
}

func TestSensorsGet(t *testing.T) {
	a, store := testAPI(t)
	require.NoError(t, store.Record(1, "temperature", 24.5, timeAt(10)))
	var buf bytes.Buffer

	require.NoError(t, sensorsGet(context.Background(), a, &buf, 1))

	out := buf.String()
	assert.Contains(t, out, "Air Temperature")
	assert.Contains(t, out, "24.5")
	assert.Contains(t, out, "active")
}

func TestSensorsGet_NotFound(t *testing.T) {
	a, _ := testAPI(t)
	var buf bytes.Buffer

	err := sensorsGet(context.Background(), a, &buf, 99)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrAPI))
	assert.Equal(t, ErrCodeNotFound, ErrorToJSON(err).Code)
}

func TestSensorsAdd(t *testing.T) {
	a, store := testAPI(t)
	var buf bytes.Buffer

	err := sensorsAdd(context.Background(), a, &buf, SensorInputOptions{
		Name: "Bench 2", Type: sensor.TypeHumidity, Location: "House B",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Sensor added")

	got, err := store.Get(5)
	require.NoError(t, err)
	assert.Equal(t, "Bench 2", got.Name)
	assert.Equal(t, sensor.StatusActive, got.Status, "add defaults to active")
}

func TestSensorsAdd_Validation(t *testing.T) {
	a, _ := testAPI(t)

	tests := []struct {
		name string
		opts SensorInputOptions
	}{
		{name: "missing name", opts: SensorInputOptions{Type: "Light"}},
		{name: "missing type", opts: SensorInputOptions{Name: "x"}},
		{name: "bad status", opts: SensorInputOptions{Name: "x", Type: "Light", Status: "on"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sensorsAdd(context.Background(), a, &bytes.Buffer{}, tt.opts)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrInput))
		})
	}
}

func TestSensorsUpdate(t *testing.T) {
	a, store := testAPI(t)
	var buf bytes.Buffer

	err := sensorsUpdate(context.Background(), a, &buf, 2, SensorInputOptions{Location: "House C"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Sensor updated")

	got, err := store.Get(2)
	require.NoError(t, err)
	assert.Equal(t, "House C", got.Location)
	assert.Equal(t, "Air Humidity", got.Name, "unset fields are kept")
}

func TestSensorsUpdate_NothingToUpdate(t *testing.T) {
	a, _ := testAPI(t)

	err := sensorsUpdate(context.Background(), a, &bytes.Buffer{}, 2, SensorInputOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInput))
}

func TestSensorsDelete(t *testing.T) {
	a, store := testAPI(t)
	withMachineMode(t)
	var buf bytes.Buffer

	require.NoError(t, sensorsDelete(context.Background(), a, &buf, 3))

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.True(t, env.Success)

	_, err := store.Get(3)
	assert.Error(t, err)

	err = sensorsDelete(context.Background(), a, &bytes.Buffer{}, 3)
	require.Error(t, err)
	assert.Equal(t, ErrCodeNotFound, ErrorToJSON(err).Code)
}

func TestSensorsCommand_APIDown(t *testing.T) {
	a := testApp(t, "http://127.0.0.1:1")

	err := sensorsList(context.Background(), a, &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, ErrCodeAPIUnavailable, ErrorToJSON(err).Code)
}
