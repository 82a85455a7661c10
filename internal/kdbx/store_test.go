package kdbx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func TestGroupPath(t *testing.T) {
	s := New("test.kdb")

	email := s.AddGroup(s.Root(), "Email", nil, "")
	work := s.AddGroup(email, "Work", nil, "")

	require.Empty(t, s.Root().Path())
	require.Equal(t, []string{"Email"}, email.Path())
	require.Equal(t, []string{"Email", "Work"}, work.Path())
	require.Equal(t, "Group: Email/Work", work.String())
}

func TestFindGroups_CaseInsensitiveLeafName(t *testing.T) {
	s := New("test.kdb")
	email := s.AddGroup(s.Root(), "Email", nil, "")
	s.AddGroup(email, "Work", nil, "")
	s.AddGroup(s.Root(), "Banking", nil, "")

	got := s.FindGroups("email")
	require.Len(t, got, 1)
	require.Equal(t, "Email", got[0].Name())

	require.Empty(t, s.FindGroups("missing"))

	// nested groups are found by leaf name regardless of location
	got = s.FindGroups("WORK")
	require.Len(t, got, 1)
	require.Equal(t, []string{"Email", "Work"}, got[0].Path())
}

func TestFindGroupByPath_ExactWalk(t *testing.T) {
	s := New("test.kdb")
	email := s.AddGroup(s.Root(), "Email", nil, "")
	s.AddGroup(email, "Work", nil, "")

	require.Equal(t, s.Root(), s.FindGroupByPath(nil))
	require.NotNil(t, s.FindGroupByPath([]string{"Email", "Work"}))
	require.Nil(t, s.FindGroupByPath([]string{"Email", "Personal"}))
	require.Nil(t, s.FindGroupByPath([]string{"email"}), "path segments match exactly")
}

func TestFindEntries_ScopeAndCase(t *testing.T) {
	s := New("test.kdb")
	email := s.AddGroup(s.Root(), "Email", nil, "")
	banking := s.AddGroup(s.Root(), "Banking", nil, "")

	s.AddEntry(email, "Gmail", "user", "pw", nil, nil, nil, nil, nil)
	s.AddEntry(banking, "Gmail", "user2", "pw2", nil, nil, nil, nil, nil)

	all := s.FindEntries("gmail", nil)
	require.Len(t, all, 2)

	scoped := s.FindEntries("GMAIL", email)
	require.Len(t, scoped, 1)
	require.Equal(t, []string{"Email", "Gmail"}, scoped[0].Path())
}

func TestFindEntries_ExcludesRecycleBin(t *testing.T) {
	s := New("test.kdb")
	bin := s.AddGroup(s.Root(), "Recycle Bin", nil, "")
	deleted := s.AddGroup(bin, "Email", nil, "")
	s.AddEntry(deleted, "Gmail", "user", "pw", nil, nil, nil, nil, nil)

	require.Empty(t, s.FindEntries("Gmail", nil))
}

func TestFindEntryByPath(t *testing.T) {
	s := New("test.kdb")
	email := s.AddGroup(s.Root(), "Email", nil, "")
	s.AddEntry(email, "Gmail", "user", "pw", nil, nil, nil, nil, nil)

	require.NotNil(t, s.FindEntryByPath([]string{"Email", "Gmail"}))
	require.Nil(t, s.FindEntryByPath([]string{"Email", "gmail"}), "exact title match")
	require.Nil(t, s.FindEntryByPath([]string{"Banking", "Gmail"}))
	require.Nil(t, s.FindEntryByPath(nil))
}

func TestAddEntry_Fields(t *testing.T) {
	s := New("test.kdb")
	expiry := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	e := s.AddEntry(s.Root(), "Gmail", "user", "pw",
		str("https://mail.google.com"), str("personal"), &expiry, []string{"mail"}, []byte{1})

	require.Equal(t, "Gmail", e.Title())
	require.Equal(t, "user", *e.Username())
	require.Equal(t, "pw", *e.Password())
	require.True(t, e.Expires(), "expiry time implies the expires flag")
	require.WithinDuration(t, time.Now(), e.Modified(), time.Minute)

	noExpiry := s.AddEntry(s.Root(), "Other", "u", "p", nil, nil, nil, nil, nil)
	require.False(t, noExpiry.Expires())
	require.Nil(t, noExpiry.ExpiryTime())
}

func TestEntrySetters_TouchModified(t *testing.T) {
	s := New("test.kdb")
	e := s.AddEntry(s.Root(), "Gmail", "user", "pw", nil, nil, nil, nil, nil)

	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	e.SetModified(old)
	require.Equal(t, old, e.Modified())

	e.SetPassword(str("new-pw"))
	require.True(t, e.Modified().After(old))
}
