package core

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/huangsam/gitsize/internal/contract"
	"github.com/huangsam/gitsize/schema"
)

// CommitIndex is the searchable list of commits, newest first.
// It is built once and only read afterwards, so it can be shared across workers.
type CommitIndex struct {
	records []schema.CommitRecord
}

// NewCommitIndex builds an index from records already ordered newest first.
// The slice is copied; the order is kept as given.
func NewCommitIndex(records []schema.CommitRecord) *CommitIndex {
	return &CommitIndex{records: slices.Clone(records)}
}

// BuildIndex resolves startRef and streams its history into a CommitIndex.
func BuildIndex(ctx context.Context, client contract.GitClient, repoPath string, startRef string) (*CommitIndex, error) {
	if startRef == "" {
		startRef = contract.DefaultRef
	}
	headID, ok, err := client.ResolveCommit(ctx, repoPath, startRef)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", startRef, err)
	}
	if !ok {
		if startRef == contract.DefaultRef {
			return nil, fmt.Errorf("%w: %s has no commits yet", contract.ErrEmptyHistory, startRef)
		}
		return nil, fmt.Errorf("%w: %s does not name a commit", contract.ErrCommitNotFound, startRef)
	}

	var records []schema.CommitRecord
	for rec, err := range client.ListHistory(ctx, repoPath, headID) {
		if err != nil {
			return nil, fmt.Errorf("build commit index: %w", err)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no commits reachable from %s", contract.ErrEmptyHistory, startRef)
	}
	contract.LogDebug("indexed %s commits from %s", contract.FormatCount(int64(len(records))), contract.ShortID(headID))
	if n := outOfOrder(records); n > 0 {
		// Nearest-commit search assumes non-increasing timestamps; results stay usable but approximate.
		contract.LogWarn("Commit timestamps are not monotonic",
			fmt.Errorf("%d commit(s) of %s are newer than a descendant, sample commits may not be the nearest", n, startRef))
	}
	return &CommitIndex{records: records}, nil
}

// Len returns the number of indexed commits.
func (idx *CommitIndex) Len() int {
	return len(idx.records)
}

// Head returns the newest commit of the index.
func (idx *CommitIndex) Head() (schema.CommitRecord, bool) {
	if len(idx.records) == 0 {
		return schema.CommitRecord{}, false
	}
	return idx.records[0], true
}

// FirstAndLast returns the oldest and newest commit of the index.
func (idx *CommitIndex) FirstAndLast() (oldest, newest schema.CommitRecord, err error) {
	if len(idx.records) == 0 {
		return oldest, newest, contract.ErrEmptyHistory
	}
	return idx.records[len(idx.records)-1], idx.records[0], nil
}

// searchDescending returns the first index whose timestamp is <= target.
// The records are newest first, so the comparison is inverted.
func (idx *CommitIndex) searchDescending(target int64) int {
	i, _ := slices.BinarySearchFunc(idx.records, target, func(rec schema.CommitRecord, t int64) int {
		return cmp.Compare(t, rec.Timestamp)
	})
	return i
}

// runStart returns the first index of the run of equal timestamps containing j.
// The result never exceeds j, even when the history is not monotonic.
func (idx *CommitIndex) runStart(j int) int {
	return min(idx.searchDescending(idx.records[j].Timestamp), j)
}

// FindNearest returns the commit whose timestamp is closest to target.
//
// Ties go to the lower index, i.e. the more recent commit in history order.
// Within a run of equal timestamps the first record of the run is returned.
func (idx *CommitIndex) FindNearest(target int64) (schema.CommitRecord, bool) {
	n := len(idx.records)
	if n == 0 {
		return schema.CommitRecord{}, false
	}

	// Everything before i is newer than target, everything from i on is at or before it.
	i := idx.searchDescending(target)
	switch {
	case i == 0:
		return idx.records[0], true
	case i == n:
		return idx.records[idx.runStart(n-1)], true
	}

	newer := idx.runStart(i - 1)
	newerDist := absDiff(idx.records[newer].Timestamp, target)
	olderDist := absDiff(target, idx.records[i].Timestamp)
	if newerDist <= olderDist {
		return idx.records[newer], true
	}
	return idx.records[i], true
}

// outOfOrder counts records whose timestamp is later than the record before them.
func outOfOrder(records []schema.CommitRecord) int {
	n := 0
	for i := 1; i < len(records); i++ {
		if records[i].Timestamp > records[i-1].Timestamp {
			n++
		}
	}
	return n
}

// absDiff returns a-b for a >= b without overflowing int64.
func absDiff(a, b int64) uint64 {
	if a < b {
		a, b = b, a
	}
	return uint64(a) - uint64(b)
}
