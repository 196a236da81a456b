package cmd

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)

	versionCmd.Run(versionCmd, nil)

	output := out.String()
	require.Contains(t, output, "User Service")
	require.Contains(t, output, "Version:    "+Version)
	require.Contains(t, output, "Git commit: "+GitCommit)
	require.Contains(t, output, "Go version: "+runtime.Version())
}
