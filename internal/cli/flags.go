package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/greenhouse-iot/sensordash/internal/config"
	"github.com/greenhouse-iot/sensordash/internal/errors"
	"github.com/greenhouse-iot/sensordash/internal/sensor"
)

// ParseInterval parses a refresh interval flag. An empty flag returns def.
func ParseInterval(flag string, def time.Duration) (time.Duration, error) {
	if flag == "" {
		return def, nil
	}

	d, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrInput,
			fmt.Sprintf("'%s' doesn't look like a valid interval", flag),
			"Try something like 2s, 5s, or 1m.")
	}
	if d < config.MinRefreshInterval {
		return 0, errors.New(errors.ErrInput,
			fmt.Sprintf("Interval %s is too short", d),
			fmt.Sprintf("Use at least %s so the API isn't hammered.", config.MinRefreshInterval))
	}
	return d, nil
}

// ParseSensorID parses a sensor ID argument.
func ParseSensorID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New(errors.ErrInput,
			fmt.Sprintf("'%s' is not a sensor ID", arg),
			"Sensor IDs are positive integers. List them with 'sensordash sensors list'.")
	}
	return id, nil
}

// ParseStatus validates a --status flag value. Empty means unchanged.
func ParseStatus(s string) (string, error) {
	switch s {
	case "", sensor.StatusActive, sensor.StatusInactive:
		return s, nil
	}
	return "", errors.New(errors.ErrInput,
		fmt.Sprintf("'%s' is not a sensor status", s),
		fmt.Sprintf("Use '%s' or '%s'.", sensor.StatusActive, sensor.StatusInactive))
}
