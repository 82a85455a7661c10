// Package acquire resolves Database descriptors to live store handles,
// prompting for passwords and consulting the shared handle-cache daemon
// when a TTL was requested and the environment is safe for sharing.
package acquire

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/jrabinow/kpsync/internal/common"
	"github.com/jrabinow/kpsync/internal/config"
	"github.com/jrabinow/kpsync/internal/filex"
	"github.com/jrabinow/kpsync/internal/kdbx"
	"github.com/jrabinow/kpsync/internal/logging"
)

// CacheClient is the slice of the daemon contract acquisition needs.
type CacheClient interface {
	Lookup(ctx context.Context, path string) ([]byte, bool, error)
	Register(ctx context.Context, path string, key []byte, ttl time.Duration) error
}

// PasswordPrompt reads a password for the labelled store file.
type PasswordPrompt func(w io.Writer, label string) ([]byte, error)

type Acquirer struct {
	log    logging.Logger
	cache  CacheClient // nil when no daemon is configured
	out    io.Writer
	prompt PasswordPrompt
}

func NewAcquirer(log logging.Logger, cache CacheClient, out io.Writer, prompt PasswordPrompt) *Acquirer {
	return &Acquirer{
		log:    log.With("module", "acquire"),
		cache:  cache,
		out:    out,
		prompt: prompt,
	}
}

// Acquire opens one store. With ttl == 0 the handle is always opened
// fresh and never shared. With a positive ttl the daemon is consulted,
// unless the working directory is world-readable, which downgrades to
// fresh unshared handles.
func (a *Acquirer) Acquire(ctx context.Context, db config.Database, ttl time.Duration) (*kdbx.Store, error) {
	if ttl > 0 && a.cache != nil && a.cacheSafe(ctx) {
		return a.acquireCached(ctx, db, ttl)
	}
	return a.openFresh(ctx, db)
}

// AcquireAll opens every store before any reconciliation can begin; the
// first failure aborts the whole set.
func (a *Acquirer) AcquireAll(ctx context.Context, dbs []config.Database, ttl time.Duration) ([]*kdbx.Store, error) {
	stores := make([]*kdbx.Store, 0, len(dbs))
	for _, db := range dbs {
		store, err := a.Acquire(ctx, db, ttl)
		if err != nil {
			return nil, err
		}
		stores = append(stores, store)
	}
	return stores, nil
}

func (a *Acquirer) cacheSafe(ctx context.Context) bool {
	worldReadable, err := filex.IsDirWorldReadable(".")
	if err != nil {
		a.log.Warn(ctx, "cannot check working directory permissions, not using handle cache", "error", err)
		return false
	}
	if worldReadable {
		a.log.Warn(ctx, "working directory is world-readable, not using handle cache")
		return false
	}
	return true
}

func (a *Acquirer) acquireCached(ctx context.Context, db config.Database, ttl time.Duration) (*kdbx.Store, error) {
	key, found, err := a.cache.Lookup(ctx, db.File)
	if err != nil {
		a.log.Warn(ctx, "handle cache unreachable, opening fresh", "file", db.File, "error", err)
		return a.openFresh(ctx, db)
	}

	if found {
		// a hit is always re-read from disk; the daemon only keeps the key
		store, err := kdbx.OpenWithKey(db.File, key)
		if err == nil {
			a.log.Debug(ctx, "reloaded store from cached key", "file", db.File)
			return store, nil
		}
		if !errors.Is(err, common.ErrCredentials) {
			return nil, err
		}
		a.log.Warn(ctx, "cached key is stale, reprompting", "file", db.File)
	}

	store, err := a.openFresh(ctx, db)
	if err != nil {
		return nil, err
	}
	if err := a.cache.Register(ctx, db.File, store.Key(), ttl); err != nil {
		a.log.Warn(ctx, "could not register store key with handle cache", "file", db.File, "error", err)
	}
	return store, nil
}

func (a *Acquirer) openFresh(ctx context.Context, db config.Database) (*kdbx.Store, error) {
	password, err := a.prompt(a.out, db.File)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(password)

	return kdbx.Open(db.File, password, db.KeyFile)
}
