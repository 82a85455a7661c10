package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpandPath_Tilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got := ExpandPath("~/vaults/main.kdb")
	require.Equal(t, filepath.Join(home, "vaults", "main.kdb"), filepath.Clean(got))
}

func TestExpandPath_EnvVar(t *testing.T) {
	t.Setenv("KPSYNC_TEST_DIR", "/srv/vaults")

	got := ExpandPath("$KPSYNC_TEST_DIR/backup.kdb")
	require.Equal(t, "/srv/vaults/backup.kdb", got)
}

func TestExpandPath_PlainPathUnchanged(t *testing.T) {
	require.Equal(t, "/etc/passwd.kdb", ExpandPath("/etc/passwd.kdb"))
}

func TestIsDirWorldReadable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits not meaningful on windows")
	}

	tmp := t.TempDir()

	require.NoError(t, os.Chmod(tmp, 0o700))
	readable, err := IsDirWorldReadable(tmp)
	require.NoError(t, err)
	require.False(t, readable)

	require.NoError(t, os.Chmod(tmp, 0o704))
	readable, err = IsDirWorldReadable(tmp)
	require.NoError(t, err)
	require.True(t, readable)
}

func TestIsDirWorldReadable_Missing(t *testing.T) {
	_, err := IsDirWorldReadable(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))

	fi, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, fi.IsDir())

	// second call is a no-op
	require.NoError(t, EnsureDir(dir))
}

func TestConfigHome_XDGOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	got, err := ConfigHome()
	require.NoError(t, err)
	require.Equal(t, "/custom/config", got)
}
