package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	internalApp "github.com/haierkeys/watermelon-notes/internal/app"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := "log:\n  file: \"\"\n" +
		"database:\n  path: " + filepath.ToSlash(filepath.Join(dir, "notes.sqlite3")) + "\n" +
		"app:\n  default-folders: [\"Work\"]\n" +
		"storage:\n  save-path: " + filepath.ToSlash(filepath.Join(dir, "attachments")) + "\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	noteNewFlags.title, noteNewFlags.content, noteNewFlags.folder = "", "", ""
	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI_NotesAndFolders(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := execute(t, "-c", cfg, "folder", "add", "Ideas")
	require.NoError(t, err)
	assert.Contains(t, out, "added Ideas")

	out, err = execute(t, "-c", cfg, "note", "new", "--title", "Groceries", "--content", "- [ ] milk", "--folder", "Ideas")
	require.NoError(t, err)
	id, err := uuid.Parse(strings.TrimSpace(out))
	require.NoError(t, err)

	out, err = execute(t, "-c", cfg, "note", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "Ideas")

	out, err = execute(t, "-c", cfg, "note", "show", id.String())
	require.NoError(t, err)
	assert.Contains(t, out, "# Groceries")
	assert.Contains(t, out, "- [ ] milk")

	_, err = execute(t, "-c", cfg, "folder", "rename", "Ideas", "Errands")
	require.NoError(t, err)
	out, err = execute(t, "-c", cfg, "folder", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Errands")
	assert.NotContains(t, out, "Ideas")

	out, err = execute(t, "-c", cfg, "note", "delete", id.String())
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")

	_, err = execute(t, "-c", cfg, "note", "show", id.String())
	assert.Error(t, err)
}

func TestCLI_Errors(t *testing.T) {
	cfg := writeTestConfig(t)

	_, err := execute(t, "-c", cfg, "folder", "add", "Work")
	assert.Error(t, err)

	_, err = execute(t, "-c", cfg, "note", "delete", "not-a-uuid")
	assert.Error(t, err)

	_, err = execute(t, "-c", filepath.Join(t.TempDir(), "missing.yaml"), "folder", "list")
	assert.Error(t, err)
}

func TestCLI_Version(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, internalApp.Name)
	assert.Contains(t, out, internalApp.Version)
}

func TestResolveConfig_WritesEmbeddedDefault(t *testing.T) {
	t.Chdir(t.TempDir())
	prev := configDefault
	configDefault = "server:\n  http-port: \":9999\"\n"
	t.Cleanup(func() { configDefault = prev })

	path, err := resolveConfig(&runFlags{})
	require.NoError(t, err)
	assert.Equal(t, "config/config.yaml", path)

	cfg, _, err := internalApp.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.HttpPort)

	require.NoError(t, os.WriteFile("config.yaml", []byte("{}"), 0644))
	path, err = resolveConfig(&runFlags{})
	require.NoError(t, err)
	assert.Equal(t, "config.yaml", path)

	path, err = resolveConfig(&runFlags{config: "explicit.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "explicit.yaml", path)
}
