package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scenekit/scenesync/internal/version"
)

func TestVersionCommand_PrintsDetailedVersion(t *testing.T) {
	cmd := &cobra.Command{Use: "scenesync"}
	cmd.AddCommand(newVersionCmd())

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())

	got := strings.TrimSpace(out.String())
	require.Equal(t, version.Detailed(), got)
}

func TestReconcileCommand_DryRun(t *testing.T) {
	workspace := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(workspace, "Main.server.lua"), []byte("return 1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(workspace, "scenesync.yaml"), []byte("name: demo\n"), 0o644))

	incoming := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(incoming, "Main.server.lua"), []byte("return 2"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(incoming, "Extra.lua"), []byte("return {}"), 0o644))

	cmd := &cobra.Command{Use: "scenesync"}
	cmd.PersistentFlags().StringP("project", "p", "", "")
	reconcile := newReconcileCmd()
	cmd.AddCommand(reconcile)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	t.Setenv("SCENESYNC_PROJECT", filepath.Join(workspace, "scenesync.yaml"))
	cmd.SetArgs([]string{"reconcile", incoming})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "create")
	assert.Contains(t, out.String(), "1")
}
