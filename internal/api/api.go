// Package api exposes the sensor REST endpoints as typed calls over the
// request client.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/greenhouse-iot/sensordash/internal/history"
	"github.com/greenhouse-iot/sensordash/internal/request"
	"github.com/greenhouse-iot/sensordash/internal/sensor"
)

// Endpoint paths.
const (
	PathSensors = "/api/sensors"
	PathHistory = "/api/sensors/history"
	PathLogin   = "/api/login"
)

// DefaultHistoryLimit is the number of history rows requested when no limit is given.
const DefaultHistoryLimit = 100

var (
	// ErrInvalidResponse means the body did not have the expected shape.
	ErrInvalidResponse = errors.New("invalid response format")
	// ErrInvalidPassword is returned by Login when the server rejects the password.
	ErrInvalidPassword = errors.New("invalid password")
)

// Envelope is the JSON wrapper around every response.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
	ID      int64           `json:"id,omitempty"`
}

// Text returns the server's error or message string.
func (e Envelope) Text() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// SensorInput is the body for create and update.
type SensorInput struct {
	Name     string `json:"name,omitempty"`
	Type     string `json:"type,omitempty"`
	Location string `json:"location,omitempty"`
	Status   string `json:"status,omitempty"`
}

// Result is the outcome of a write call.
type Result struct {
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
}

// Client calls the sensor API.
type Client struct {
	rc *request.Client
}

// New creates an API client on top of rc.
func New(rc *request.Client) *Client {
	return &Client{rc: rc}
}

// ListSensors returns every sensor as sent by the server.
func (c *Client) ListSensors(ctx context.Context) ([]sensor.Raw, error) {
	var env Envelope
	if err := c.rc.Get(ctx, PathSensors, nil, &env); err != nil {
		return nil, err
	}
	var raws []sensor.Raw
	if err := decodeData(env, &raws); err != nil {
		return nil, err
	}
	return raws, nil
}

// GetSensor returns one sensor. A missing sensor is a 404 StatusError.
func (c *Client) GetSensor(ctx context.Context, id int64) (sensor.Raw, error) {
	var env Envelope
	if err := c.rc.Get(ctx, sensorPath(id), nil, &env); err != nil {
		return sensor.Raw{}, err
	}
	var raw sensor.Raw
	if err := decodeData(env, &raw); err != nil {
		return sensor.Raw{}, err
	}
	return raw, nil
}

// CreateSensor adds a sensor.
func (c *Client) CreateSensor(ctx context.Context, in SensorInput) (Result, error) {
	var env Envelope
	if err := c.rc.Post(ctx, PathSensors, in, &env); err != nil {
		return Result{}, err
	}
	return result(env)
}

// UpdateSensor replaces the editable fields of a sensor.
func (c *Client) UpdateSensor(ctx context.Context, id int64, in SensorInput) (Result, error) {
	var env Envelope
	if err := c.rc.Put(ctx, sensorPath(id), in, &env); err != nil {
		return Result{}, err
	}
	return result(env)
}

// DeleteSensor removes a sensor.
func (c *Client) DeleteSensor(ctx context.Context, id int64) (Result, error) {
	var env Envelope
	if err := c.rc.Delete(ctx, sensorPath(id), &env); err != nil {
		return Result{}, err
	}
	return result(env)
}

// History returns up to limit rows of history grouped by metric. A 404 is
// returned to the caller without a user notification since it only means
// no history exists yet.
func (c *Client) History(ctx context.Context, limit int) (history.Snapshot, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	req := c.rc.NewRequest(http.MethodGet, PathHistory)
	req.Query = url.Values{"limit": {strconv.Itoa(limit)}}
	req.QuietStatuses = []int{http.StatusNotFound}

	var env Envelope
	if err := c.rc.Do(ctx, req, &env); err != nil {
		return nil, err
	}
	var snap history.Snapshot
	if err := decodeData(env, &snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// Login checks the dashboard password. A wrong password returns
// ErrInvalidPassword and is neither retried nor reported to the notifier.
func (c *Client) Login(ctx context.Context, password string) error {
	req := c.rc.NewRequest(http.MethodPost, PathLogin)
	req.Body = map[string]string{"password": password}
	req.Retries = 0
	req.QuietStatuses = []int{http.StatusUnauthorized}

	var env Envelope
	if err := c.rc.Do(ctx, req, &env); err != nil {
		if request.StatusCode(err) == http.StatusUnauthorized {
			return ErrInvalidPassword
		}
		return err
	}
	if !env.Success {
		return ErrInvalidPassword
	}
	return nil
}

func sensorPath(id int64) string {
	return PathSensors + "/" + strconv.FormatInt(id, 10)
}

// decodeData unmarshals env.Data into out. A failed envelope, a missing or
// null data field, or data of the wrong shape all yield ErrInvalidResponse.
func decodeData(env Envelope, out any) error {
	if !env.Success {
		if text := env.Text(); text != "" {
			return fmt.Errorf("%w: %s", ErrInvalidResponse, text)
		}
		return ErrInvalidResponse
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return ErrInvalidResponse
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

func result(env Envelope) (Result, error) {
	if !env.Success {
		if text := env.Text(); text != "" {
			return Result{}, fmt.Errorf("%w: %s", ErrInvalidResponse, text)
		}
		return Result{}, ErrInvalidResponse
	}
	return Result{Message: env.Text(), ID: env.ID}, nil
}
