package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kk-code-lab/markln/internal/render"
	"github.com/kk-code-lab/markln/internal/syncview"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
	require.True(t, Default().AutoPreview)
	require.Equal(t, syncview.Synced, Default().Mode())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "theme: light\nwindow_mode: split\ntable_policy: truncate\nlist_indent: 4\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "light", cfg.Theme)
	require.Equal(t, syncview.Synced, cfg.Mode())
	require.Equal(t, 4, cfg.ListIndent)
	require.Equal(t, 2, cfg.TabWidth, "unset fields keep defaults")
	require.True(t, cfg.AutoPreview)

	opts := cfg.RenderOptions(60)
	require.Equal(t, render.TableTruncate, opts.TablePolicy)
	require.Equal(t, 60, opts.Width)
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme: [unclosed\n"), 0o600))
	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MARKLN_WINDOW_MODE", "preview")
	t.Setenv("MARKLN_AUTO_PREVIEW", "false")
	t.Setenv("MARKLN_TAB_WIDTH", "4")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, syncview.PreviewOnly, cfg.Mode())
	require.False(t, cfg.AutoPreview)
	require.Equal(t, 4, cfg.TabWidth)
	require.Equal(t, 4, cfg.ParseOptions().TabWidth)
}

func TestEnvOverrideErrors(t *testing.T) {
	t.Setenv("MARKLN_WRAP_CODE", "maybe")
	_, err := Load("")
	require.ErrorContains(t, err, "MARKLN_WRAP_CODE")
}

func TestValidateReportsEveryField(t *testing.T) {
	cfg := Default()
	cfg.WindowMode = "tiled"
	cfg.TablePolicy = "shrink"
	cfg.TabWidth = 0
	cfg.Theme = "neon"

	err := cfg.Validate()
	require.Error(t, err)
	for _, field := range []string{"window_mode", "table_policy", "tab_width", "theme"} {
		require.ErrorContains(t, err, field)
	}
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.LastFile = "/tmp/notes.md"
	cfg.WindowMode = "editor"
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestDefaultPathHonoursXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path, err := DefaultPath()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "markln", "config.yaml"), path)
}
