package main

import (
	"bytes"
	"client-registry/config"
	"client-registry/models"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupConsole(t *testing.T) {
	t.Helper()

	previous := config.AppConfig
	config.AppConfig = &config.Config{
		Env:            "test",
		LogLevel:       "error",
		DatabaseDriver: "sqlite3",
		DatabaseURL:    filepath.Join(t.TempDir(), "console.db"),
		PageSize:       10,
		SessionTTL:     time.Hour,
		SessionSweep:   "@every 1h",
	}
	t.Cleanup(func() { config.AppConfig = previous })
}

func runClients(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := clientsCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestClientsCommand(t *testing.T) {
	setupConsole(t)

	out, err := runClients(t, "add", "Famsa")
	require.NoError(t, err)
	assert.Contains(t, out, "added { id: None, active: true, name: Famsa }")

	out, err = runClients(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "{ id: 1, active: true, name: Famsa }")
	assert.Contains(t, out, "page 1 of 1")

	t.Run("Mutation refreshes the shown page", func(t *testing.T) {
		out, err := runClients(t, "drop", "1", "--show", "--active", "true")
		require.NoError(t, err)
		assert.Contains(t, out, "dropped { id: 1, active: false, name: Famsa }")
		assert.Contains(t, out, "page 1 of 0")
		assert.NotContains(t, out, "{ id: 1, active: true")
	})

	t.Run("Modify renames", func(t *testing.T) {
		out, err := runClients(t, "modify", "1", "Famsa MX", "--show", "--name", "MX")
		require.NoError(t, err)
		assert.Contains(t, out, "{ id: 1, active: false, name: Famsa MX }\npage 1 of 1")
	})

	t.Run("Unknown client", func(t *testing.T) {
		_, err := runClients(t, "get", "99")
		assert.Error(t, err)
	})

	t.Run("Delete", func(t *testing.T) {
		out, err := runClients(t, "delete", "1")
		require.NoError(t, err)
		assert.Contains(t, out, "deleted client 1")

		out, err = runClients(t, "list")
		require.NoError(t, err)
		assert.Contains(t, out, "page 1 of 0")
	})
}

func TestPrintPage(t *testing.T) {
	var out bytes.Buffer
	err := printPage(&out, models.ClientSearch{Page: 1, TotalPages: 1, Result: `[{"id_client":1,"client_active":true,"client_name":"Acme"}]`})
	require.NoError(t, err)
	assert.Equal(t, "{ id: 1, active: true, name: Acme }\npage 1 of 1\n", out.String())

	out.Reset()
	err = printPage(&out, models.ClientSearch{Page: 1, TotalPages: 1, Result: "not json"})
	assert.ErrorIs(t, err, models.ErrSerialization)
	assert.Empty(t, out.String())
}
