// Package syncer implements the replica reconciliation engine: for each
// named entry it selects the most recently modified copy across a set of
// open stores and propagates it, field by field, to every other store.
package syncer

import (
	"time"

	"github.com/jrabinow/kpsync/internal/kdbx"
)

// Store is the narrow slice of the credential-store engine the engine
// consumes. *kdbx.Store satisfies it; the engine never opens, decrypts or
// persists files itself.
type Store interface {
	Filename() string
	Root() *kdbx.Group

	FindGroups(name string) []*kdbx.Group
	FindGroupByPath(path []string) *kdbx.Group
	FindEntries(title string, scope *kdbx.Group) []*kdbx.Entry
	FindEntryByPath(path []string) *kdbx.Entry

	AddGroup(parent *kdbx.Group, name string, icon []byte, notes string) *kdbx.Group
	AddEntry(group *kdbx.Group, title, username, password string, url, notes *string, expiryTime *time.Time, tags []string, icon []byte) *kdbx.Entry

	Save() error
}
