package identity

import (
	"context"
	"strconv"
	"sync"
	"time"

	"tgosint/backend/internal/constants"
	apperrors "tgosint/backend/pkg/errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Resolution is the outcome of resolving one batch of user ids
type Resolution struct {
	// Handles holds every requested id that has a handle, cached or freshly fetched
	Handles map[int64]string
	// Fresh holds only the handles fetched from the directory in this batch
	Fresh map[int64]string
	// Unresolved lists requested ids without a handle, in request order
	Unresolved []int64
	// Failed counts lookups that returned an error
	Failed int
}

// Label returns the handle for id, or the decimal id when it could not be resolved
func (r Resolution) Label(id int64) string {
	if handle, ok := r.Handles[id]; ok && handle != "" {
		return handle
	}
	return strconv.FormatInt(id, 10)
}

// Resolver turns user ids into handles: the cache answers hits, the directory answers misses.
// It never mutates the cache; merging and persisting Fresh is the caller's job.
type Resolver struct {
	lookup      Lookup
	logger      *zap.Logger
	timeout     time.Duration
	concurrency int
}

// NewResolver creates a resolver. A nil lookup leaves every cache miss unresolved.
func NewResolver(lookup Lookup, logger *zap.Logger) *Resolver {
	return &Resolver{
		lookup:      lookup,
		logger:      logger,
		timeout:     10 * time.Second,
		concurrency: constants.DefaultLookupConcurrency,
	}
}

// SetTimeout bounds every single directory call
func (r *Resolver) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		r.timeout = timeout
	}
}

// SetConcurrency bounds the number of directory calls in flight
func (r *Resolver) SetConcurrency(n int) {
	if n > 0 {
		r.concurrency = n
	}
}

// Resolve returns handles for ids. Cached ids never touch the network. Misses are fetched
// as one batch that is awaited before returning; a failing id is logged and left out
// without affecting the rest of the batch.
func (r *Resolver) Resolve(ctx context.Context, ids []int64, cache Cache) Resolution {
	res := Resolution{
		Handles: make(map[int64]string),
		Fresh:   make(map[int64]string),
	}

	seen := make(map[int64]bool, len(ids))
	var misses []int64
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if handle, ok := cache.Lookup(id); ok {
			res.Handles[id] = handle
			continue
		}
		misses = append(misses, id)
	}

	if len(misses) == 0 {
		return res
	}
	if r.lookup == nil {
		r.logger.Debug("Directory lookup disabled, leaving ids unresolved",
			zap.Int("unresolved", len(misses)),
		)
		res.Unresolved = misses
		return res
	}

	r.logger.Info("Resolving uncached user ids",
		zap.Int("cached", len(res.Handles)),
		zap.Int("missing", len(misses)),
	)

	var (
		g      errgroup.Group
		mu     sync.Mutex
		failed int
	)
	g.SetLimit(r.concurrency)

	for _, id := range misses {
		userID := id
		g.Go(func() error {
			handle, err := r.lookupOne(ctx, userID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				r.logger.Warn("User lookup failed, falling back to numeric id",
					zap.Int64("user_id", userID),
					zap.Error(err),
				)
				return nil
			}
			if handle == "" {
				r.logger.Debug("User has no public username", zap.Int64("user_id", userID))
				return nil
			}
			res.Fresh[userID] = handle
			return nil
		})
	}
	// Goroutines never return errors, so Wait only synchronizes
	_ = g.Wait()

	for _, id := range misses {
		if handle, ok := res.Fresh[id]; ok {
			res.Handles[id] = handle
			continue
		}
		res.Unresolved = append(res.Unresolved, id)
	}
	res.Failed = failed

	r.logger.Info("User id resolution finished",
		zap.Int("resolved", len(res.Fresh)),
		zap.Int("unresolved", len(res.Unresolved)),
		zap.Int("failed", failed),
	)
	return res
}

func (r *Resolver) lookupOne(ctx context.Context, userID int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", apperrors.NewContextCancelled("user lookup", err)
	}

	lctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	username, err := r.lookup.LookupHandle(lctx, userID)
	if err != nil {
		return "", apperrors.NewLookupFailed(userID, err)
	}
	return FormatHandle(username), nil
}
