package kdbx

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrabinow/kpsync/internal/common"
)

func TestCreateOpen_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.kdb")

	s, err := Create(path, []byte("master-pw"), "")
	require.NoError(t, err)

	email := s.AddGroup(s.Root(), "Email", []byte{2}, "mail accounts")
	expiry := time.Date(2027, 6, 1, 12, 0, 0, 0, time.UTC)
	s.AddEntry(email, "Gmail", "user", "pw",
		str("https://mail.google.com"), str("notes"), &expiry, []string{"mail", "personal"}, []byte{9})
	require.NoError(t, s.Save())

	got, err := Open(path, []byte("master-pw"), "")
	require.NoError(t, err)

	e := got.FindEntryByPath([]string{"Email", "Gmail"})
	require.NotNil(t, e)
	require.Equal(t, "user", *e.Username())
	require.Equal(t, "pw", *e.Password())
	require.Equal(t, "https://mail.google.com", *e.URL())
	require.Equal(t, []string{"mail", "personal"}, e.Tags())
	require.True(t, e.Expires())
	require.True(t, expiry.Equal(*e.ExpiryTime()))
	require.Equal(t, "mail accounts", e.Group().Notes())
	require.Equal(t, []byte{2}, e.Group().Icon())
}

func TestOpen_WrongPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.kdb")
	_, err := Create(path, []byte("master-pw"), "")
	require.NoError(t, err)

	_, err = Open(path, []byte("wrong"), "")
	require.True(t, errors.Is(err, common.ErrCredentials), "got %v", err)
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.kdb"), []byte("pw"), "")
	require.True(t, errors.Is(err, common.ErrStoreNotFound), "got %v", err)
}

func TestOpen_WithKeyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.kdb")
	keyfile := filepath.Join(dir, "main.key")
	require.NoError(t, os.WriteFile(keyfile, []byte("key material"), 0o600))

	_, err := Create(path, []byte("master-pw"), keyfile)
	require.NoError(t, err)

	_, err = Open(path, []byte("master-pw"), keyfile)
	require.NoError(t, err)

	// password alone is not enough
	_, err = Open(path, []byte("master-pw"), "")
	require.True(t, errors.Is(err, common.ErrCredentials), "got %v", err)
}

func TestOpenWithKey_ReloadsFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.kdb")
	s, err := Create(path, []byte("master-pw"), "")
	require.NoError(t, err)

	// external edit after the key was cached
	other, err := Open(path, []byte("master-pw"), "")
	require.NoError(t, err)
	other.AddEntry(other.Root(), "New", "u", "p", nil, nil, nil, nil, nil)
	require.NoError(t, other.Save())

	reloaded, err := OpenWithKey(path, s.Key())
	require.NoError(t, err)
	require.NotNil(t, reloaded.FindEntryByPath([]string{"New"}))
}

func TestOpen_GarbageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.kdb")
	require.NoError(t, os.WriteFile(path, []byte("not a store"), 0o600))

	_, err := Open(path, []byte("pw"), "")
	require.Error(t, err)
	require.False(t, errors.Is(err, common.ErrCredentials))
}

func TestSave_WithoutKeyMaterial(t *testing.T) {
	s := New("never-created.kdb")
	require.Error(t, s.Save())
}
