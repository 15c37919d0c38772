package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/vaultbot/core/buildinfo"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, buildinfo.String()+"\n", out.String())
}

func TestMigrateNeedsReadableConfig(t *testing.T) {
	rootCmd.SetArgs([]string{"migrate", "--config", "/nonexistent/config.yaml"})
	assert.Error(t, rootCmd.Execute())
}
