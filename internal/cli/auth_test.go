package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenhouse-iot/sensordash/internal/errors"
)

func TestLoginCommand(t *testing.T) {
	a, _ := testAPI(t)
	var buf bytes.Buffer

	require.NoError(t, loginCommand(context.Background(), a, &buf, testPassword))
	assert.Contains(t, buf.String(), "Logged in to "+a.Config.API.BaseURL)

	st, err := a.Session.Load()
	require.NoError(t, err)
	assert.True(t, st.ValidFor(a.Config.API.BaseURL))
	assert.NoError(t, a.requireLogin())
}

func TestLoginCommand_WrongPassword(t *testing.T) {
	a, _ := testAPI(t)

	err := loginCommand(context.Background(), a, &bytes.Buffer{}, "nope")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrAuth))

	st, err := a.Session.Load()
	require.NoError(t, err)
	assert.False(t, st.LoggedIn, "a failed login leaves the session alone")
}

func TestLoginCommand_EmptyPassword(t *testing.T) {
	a, _ := testAPI(t)

	err := loginCommand(context.Background(), a, &bytes.Buffer{}, "  ")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInput))
}

func TestLogoutCommand(t *testing.T) {
	a, _ := testAPI(t)
	withMachineMode(t)
	require.NoError(t, loginCommand(context.Background(), a, &bytes.Buffer{}, testPassword))

	var buf bytes.Buffer
	require.NoError(t, logoutCommand(a, &buf))
	assert.Contains(t, buf.String(), `"logged_in": false`)

	err := a.requireLogin()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrAuth))

	// Logging out twice is fine.
	assert.NoError(t, logoutCommand(a, &bytes.Buffer{}))
}

func TestRequireLogin_OtherBaseURL(t *testing.T) {
	a, _ := testAPI(t)
	_, err := a.Session.Login("http://elsewhere:5000")
	require.NoError(t, err)

	err = a.requireLogin()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not "+a.Config.API.BaseURL)
}
