package kdbx

import (
	"strings"
	"time"
)

// Entry is a leaf credential record owned by exactly one Group. Optional
// fields are pointers so that an absent value is distinguishable from an
// empty one; the reconciliation merge depends on that distinction.
//
// Every setter stamps Modified, mirroring how credential-store engines
// track per-record modification times.
type Entry struct {
	id         string
	title      string
	username   *string
	password   *string
	url        *string
	notes      *string
	tags       []string
	icon       []byte
	expires    bool
	expiryTime *time.Time
	modified   time.Time
	group      *Group
}

func (e *Entry) ID() string    { return e.id }
func (e *Entry) Title() string { return e.title }

func (e *Entry) Username() *string { return e.username }
func (e *Entry) Password() *string { return e.password }
func (e *Entry) URL() *string      { return e.url }
func (e *Entry) Notes() *string    { return e.notes }

func (e *Entry) Tags() []string { return e.tags }
func (e *Entry) Icon() []byte   { return e.icon }

func (e *Entry) Expires() bool             { return e.expires }
func (e *Entry) ExpiryTime() *time.Time   { return e.expiryTime }
func (e *Entry) Modified() time.Time      { return e.modified }
func (e *Entry) Group() *Group            { return e.group }
func (e *Entry) SetModified(t time.Time)  { e.modified = t.UTC() }

// Path returns the owning group's path with the title appended.
func (e *Entry) Path() []string {
	return append(e.group.Path(), e.title)
}

func (e *Entry) String() string {
	return "Entry: " + strings.Join(e.Path(), "/")
}

func (e *Entry) SetTitle(title string) {
	e.title = title
	e.touch()
}

func (e *Entry) SetUsername(username *string) {
	e.username = username
	e.touch()
}

func (e *Entry) SetPassword(password *string) {
	e.password = password
	e.touch()
}

func (e *Entry) SetURL(url *string) {
	e.url = url
	e.touch()
}

func (e *Entry) SetNotes(notes *string) {
	e.notes = notes
	e.touch()
}

func (e *Entry) SetTags(tags []string) {
	e.tags = tags
	e.touch()
}

func (e *Entry) SetIcon(icon []byte) {
	e.icon = icon
	e.touch()
}

// SetExpiryTime updates the expiry timestamp. The expires flag is left
// alone; the underlying formats keep flag and timestamp independent.
func (e *Entry) SetExpiryTime(t *time.Time) {
	e.expiryTime = t
	e.touch()
}

func (e *Entry) SetExpires(expires bool) {
	e.expires = expires
	e.touch()
}

func (e *Entry) touch() {
	e.modified = time.Now().UTC()
}
