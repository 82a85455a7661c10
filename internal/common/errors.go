// Package common defines shared constants and sentinel errors used across
// kpsync components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Store acquisition errors.
	ErrCredentials   = errors.New("bad credentials")
	ErrStoreNotFound = errors.New("store file not found")

	// Reconciliation errors.
	ErrEntryNotFound  = errors.New("entry not found in any replica")
	ErrAmbiguousEntry = errors.New("more than one entry matches title")

	// Configuration errors (missing or malformed syncconfig).
	ErrConfig = errors.New("configuration error")

	// Cache daemon errors.
	ErrCacheUnavailable = errors.New("handle cache unavailable")
)
