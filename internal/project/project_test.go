package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scenekit/scenesync/internal/scene"
)

func writeProject(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	p, err := Load(writeProject(t, dir, "name: demo\n"))
	require.NoError(t, err)

	assert.Equal(t, "demo", p.Name)
	assert.Equal(t, "Folder", p.RootClass)
	assert.Equal(t, dir, p.Workspace)
	assert.Empty(t, p.Ignore)
}

func TestLoadResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "src"), 0o755))

	body := "name: demo\nworkspace: src\njournal: .scenesync/journal.db\nignore:\n  - 'Build/**'\n"
	p, err := Load(writeProject(t, dir, body))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "src"), p.Workspace)
	assert.Equal(t, filepath.Join(dir, ".scenesync", "journal.db"), p.Journal)
	assert.Equal(t, []string{"Build/**"}, p.Ignore)
}

func TestLoadRejectsMissingWorkspace(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(writeProject(t, dir, "workspace: does-not-exist\n"))
	assert.Error(t, err)
}

func TestSnapshotBuildsTree(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Services"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Services", "Main.server.lua"), []byte("return 1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Util.lua"), []byte("return {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Label.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Label~1.txt"), []byte("dupe"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), nil, 0o644))
	writeProject(t, dir, "name: demo\n")

	p, err := Load(filepath.Join(dir, DefaultFileName))
	require.NoError(t, err)
	tree, err := p.Snapshot()
	require.NoError(t, err)

	root := tree.Get(tree.RootRef())
	assert.Equal(t, "demo", root.Name)
	assert.Equal(t, "Folder", root.Class)

	children := tree.ChildrenOf(tree.RootRef())
	require.Len(t, children, 4)

	byName := map[string]string{}
	for _, ref := range children {
		inst := tree.Get(ref)
		byName[inst.Source.Path] = inst.Class
	}
	assert.Equal(t, "StringValue", byName["Label.txt"])
	assert.Equal(t, "StringValue", byName["Label~1.txt"])
	assert.Equal(t, "Script", byName["Util.lua"])
	assert.Equal(t, "Folder", byName["Services"])

	// Dedup suffixes come off the instance name but stay on the artifact.
	var dupe bool
	for _, ref := range children {
		inst := tree.Get(ref)
		if inst.Source.Path == "Label~1.txt" {
			dupe = true
			assert.Equal(t, "Label", inst.Name)
		}
	}
	assert.True(t, dupe)
}

func TestSnapshotScriptRunContext(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "A.server.lua"), []byte("s"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "B.client.lua"), []byte("c"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "C.lua"), []byte("m"), 0o644))
	writeProject(t, dir, "name: demo\n")

	p, err := Load(filepath.Join(dir, DefaultFileName))
	require.NoError(t, err)
	tree, err := p.Snapshot()
	require.NoError(t, err)

	contexts := map[string]string{}
	for _, ref := range tree.ChildrenOf(tree.RootRef()) {
		inst := tree.Get(ref)
		rc := ""
		if v, ok := inst.Properties["RunContext"]; ok {
			rc = string(v.(scene.String))
		}
		contexts[inst.Name] = rc
	}
	assert.Equal(t, "Server", contexts["A"])
	assert.Equal(t, "Client", contexts["B"])
	assert.Equal(t, "", contexts["C"])
}
