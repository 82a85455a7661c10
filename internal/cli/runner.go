package cli

import (
	"context"
	"time"

	"github.com/jrabinow/kpsync/internal/acquire"
	"github.com/jrabinow/kpsync/internal/config"
	"github.com/jrabinow/kpsync/internal/logging"
	"github.com/jrabinow/kpsync/internal/syncer"
)

// Runner sequences one job: acquire every participating store up front,
// reconcile the entries in declared order, then save the mutated stores
// in one batch at the end.
type Runner struct {
	log      logging.Logger
	acquirer *acquire.Acquirer
	rec      *syncer.Reconciler
	dryRun   bool
}

func NewRunner(log logging.Logger, acquirer *acquire.Acquirer, dryRun bool) *Runner {
	return &Runner{
		log:      log.With("module", "runner"),
		acquirer: acquirer,
		rec:      syncer.NewReconciler(log),
		dryRun:   dryRun,
	}
}

// RunJob executes one job. Acquisition is fail-fast and all-or-nothing;
// the first failing entry aborts the rest of the job with nothing saved.
func (r *Runner) RunJob(ctx context.Context, name string, dbs []config.Database, entries []string, ttl time.Duration) error {
	log := r.log.With("job", name)

	// each distinct store file is acquired once, in declaration order
	seen := make(map[string]struct{}, len(dbs))
	distinct := make([]config.Database, 0, len(dbs))
	for _, db := range dbs {
		if _, ok := seen[db.File]; ok {
			continue
		}
		seen[db.File] = struct{}{}
		distinct = append(distinct, db)
	}

	stores, err := r.acquirer.AcquireAll(ctx, distinct, ttl)
	if err != nil {
		return err
	}

	replicas := make([]syncer.Store, len(stores))
	for i, s := range stores {
		replicas[i] = s
	}

	dirtySeen := make(map[syncer.Store]struct{})
	var dirty []syncer.Store
	for _, entry := range entries {
		log.Debug(ctx, "reconciling entry", "entry", entry)
		mutated, err := r.rec.SyncEntry(ctx, replicas, entry)
		if err != nil {
			return err
		}
		for _, h := range mutated {
			if _, ok := dirtySeen[h]; ok {
				continue
			}
			dirtySeen[h] = struct{}{}
			dirty = append(dirty, h)
		}
	}

	if len(dirty) == 0 {
		log.Info(ctx, "all replicas already in sync")
		return nil
	}

	for _, h := range dirty {
		if r.dryRun {
			log.Info(ctx, "dry-run: would save store", "file", h.Filename())
			continue
		}
		log.Info(ctx, "saving store", "file", h.Filename())
		if err := h.Save(); err != nil {
			return err
		}
	}
	return nil
}
