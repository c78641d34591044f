// Package snapcheck compares raw compiler output against stored snapshot
// files using the normalize pipeline. It owns the file reading and the
// pass/fail decision; rendering belongs to the CLI.
package snapcheck

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"diagsnap/internal/normalize"
)

// Pair names one raw-output file and the snapshot it is expected to match.
type Pair struct {
	Raw      string
	Snapshot string
}

// Result is the outcome of checking one pair.
type Result struct {
	Raw      string
	Snapshot string

	// Matched is true when the trimmed snapshot text equals one of the
	// normalized variations.
	Matched bool
	// SnapshotMissing is true when the snapshot file does not exist. The
	// pair counts as failed and Preferred carries the text a new snapshot
	// should contain.
	SnapshotMissing bool
	// Preferred is the most aggressively normalized variation, shown on
	// mismatch.
	Preferred string
	// Expected is the trimmed snapshot text, empty when missing.
	Expected string
	// FromCache is true when the verdict was served from the disk cache.
	FromCache bool
}

// Options tunes CheckAll.
type Options struct {
	// Jobs caps concurrent checks; values below 1 mean sequential.
	Jobs int
	// Cache, when non-nil, is consulted before normalizing and updated
	// after. A nil cache disables caching entirely.
	Cache *DiskCache
}

// Check normalizes the raw output file and tests the stored snapshot against
// every variation.
func Check(rawPath, snapshotPath string, nctx normalize.Context) (Result, error) {
	return checkCached(rawPath, snapshotPath, nctx, nil)
}

func checkCached(rawPath, snapshotPath string, nctx normalize.Context, cache *DiskCache) (Result, error) {
	res := Result{Raw: rawPath, Snapshot: snapshotPath}

	raw, err := os.ReadFile(rawPath)
	if err != nil {
		return res, fmt.Errorf("failed to read raw output %q: %w", rawPath, err)
	}

	snapshot, err := os.ReadFile(snapshotPath)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		res.SnapshotMissing = true
	default:
		return res, fmt.Errorf("failed to read snapshot %q: %w", snapshotPath, err)
	}

	key := resultKey(raw, snapshot, nctx)
	if cache != nil {
		var payload cachePayload
		if ok, err := cache.Get(key, &payload); err == nil && ok && payload.Schema == cacheSchemaVersion {
			res.Matched = payload.Matched && !res.SnapshotMissing
			res.Preferred = payload.Preferred
			res.Expected = payload.Expected
			res.FromCache = true
			return res, nil
		}
	}

	variations := normalize.Diagnostics(raw, nctx)
	res.Preferred = variations.Preferred()

	if !res.SnapshotMissing {
		res.Expected = normalize.Trim(snapshot)
		res.Matched = variations.Any(func(s string) bool { return s == res.Expected })
	}

	if cache != nil {
		payload := cachePayload{
			Schema:    cacheSchemaVersion,
			Matched:   res.Matched,
			Preferred: res.Preferred,
			Expected:  res.Expected,
		}
		// Cache writes are an optimization; a failed write must not fail
		// the check.
		_ = cache.Put(key, &payload)
	}

	return res, nil
}

// CheckAll checks every pair with bounded parallelism and returns results in
// pair order. The first file error cancels the remaining work.
func CheckAll(ctx context.Context, pairs []Pair, nctx normalize.Context, opts Options) ([]Result, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}

	results := make([]Result, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(pairs)))

	for i, pair := range pairs {
		i, pair := i, pair
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			res, err := checkCached(pair.Raw, pair.Snapshot, nctx, opts.Cache)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
