package syncer

import (
	"bytes"
	"sort"
	"time"

	"github.com/jrabinow/kpsync/internal/kdbx"
)

// FieldSet captures the mergeable fields of one entry, with optional
// fields kept explicitly optional. Merging is a pure function over two
// FieldSets so the policy is testable without a store.
type FieldSet struct {
	Title      string
	Username   *string
	Password   *string
	URL        *string
	Notes      *string
	Tags       []string
	Icon       []byte
	Expires    bool
	ExpiryTime *time.Time
}

func fieldsOf(e *kdbx.Entry) FieldSet {
	return FieldSet{
		Title:      e.Title(),
		Username:   e.Username(),
		Password:   e.Password(),
		URL:        e.URL(),
		Notes:      e.Notes(),
		Tags:       e.Tags(),
		Icon:       e.Icon(),
		Expires:    e.Expires(),
		ExpiryTime: e.ExpiryTime(),
	}
}

// Merge folds the canonical fields into dst and reports whether anything
// differed. The rules:
//
//   - Title is overwritten unconditionally.
//   - Username/Password/URL/Notes/Tags/Icon are overwritten only when the
//     canonical value is present; an absent canonical field never erases a
//     concrete destination value.
//   - ExpiryTime is overwritten only when the canonical entry expires, or
//     its expires flag differs from the destination's, and the two
//     timestamps differ. Store engines materialize a timestamp even with
//     the flag off, so an unconditional copy would thrash.
//
// When changed is false the returned FieldSet equals dst.
func Merge(dst, canonical FieldSet) (FieldSet, bool) {
	changed := dst.Title != canonical.Title ||
		!optEqual(dst.Username, canonical.Username) ||
		!optEqual(dst.Password, canonical.Password) ||
		!optEqual(dst.URL, canonical.URL) ||
		!optEqual(dst.Notes, canonical.Notes) ||
		((canonical.Expires || canonical.Expires != dst.Expires) &&
			!timeEqual(dst.ExpiryTime, canonical.ExpiryTime)) ||
		!tagsEqual(dst.Tags, canonical.Tags) ||
		!bytes.Equal(dst.Icon, canonical.Icon)

	if !changed {
		return dst, false
	}

	out := dst
	out.Title = canonical.Title
	if canonical.Username != nil {
		out.Username = canonical.Username
	}
	if canonical.Password != nil {
		out.Password = canonical.Password
	}
	if canonical.URL != nil {
		out.URL = canonical.URL
	}
	if canonical.Notes != nil {
		out.Notes = canonical.Notes
	}
	if (canonical.Expires || canonical.Expires != dst.Expires) &&
		!timeEqual(canonical.ExpiryTime, dst.ExpiryTime) {
		out.ExpiryTime = canonical.ExpiryTime
	}
	if canonical.Tags != nil {
		out.Tags = canonical.Tags
	}
	if canonical.Icon != nil {
		out.Icon = canonical.Icon
	}
	return out, true
}

func optEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func timeEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// tagsEqual compares tags as sets.
func tagsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
