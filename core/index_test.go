package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/huangsam/gitsize/internal/contract"
	"github.com/huangsam/gitsize/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeID returns a deterministic 40-char hex id for n.
func fakeID(n int) string {
	return fmt.Sprintf("%040x", n)
}

// descendingIndex builds an index from timestamps given newest first.
func descendingIndex(timestamps ...int64) *CommitIndex {
	records := make([]schema.CommitRecord, len(timestamps))
	for i, ts := range timestamps {
		records[i] = schema.CommitRecord{ID: fakeID(i), Timestamp: ts}
	}
	return NewCommitIndex(records)
}

// bruteNearest is the reference implementation of FindNearest.
func bruteNearest(records []schema.CommitRecord, target int64) (int, uint64) {
	best, bestDist := -1, uint64(math.MaxUint64)
	for i, rec := range records {
		if d := absDiff(rec.Timestamp, target); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}

func TestFindNearest_Empty(t *testing.T) {
	idx := NewCommitIndex(nil)
	_, ok := idx.FindNearest(12345)
	assert.False(t, ok)
	_, ok = idx.Head()
	assert.False(t, ok)
	_, _, err := idx.FirstAndLast()
	assert.ErrorIs(t, err, contract.ErrEmptyHistory)
}

func TestFindNearest_DescendingFixture(t *testing.T) {
	// Newest first: a plain ascending search would pick the wrong side.
	idx := descendingIndex(500, 400, 300, 200, 100)

	tests := []struct {
		name   string
		target int64
		wantTS int64
	}{
		{"exact newest", 500, 500},
		{"exact middle", 300, 300},
		{"exact oldest", 100, 100},
		{"after newest", 9999, 500},
		{"before oldest", -50, 100},
		{"closer to newer", 360, 400},
		{"closer to older", 330, 300},
		{"tie goes to newer", 350, 400},
		{"tie near the end", 150, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := idx.FindNearest(tt.target)
			require.True(t, ok)
			assert.Equal(t, tt.wantTS, rec.Timestamp)
		})
	}
}

func TestFindNearest_EqualTimestampRuns(t *testing.T) {
	idx := descendingIndex(500, 300, 300, 300, 100, 100)

	rec, ok := idx.FindNearest(300)
	require.True(t, ok)
	assert.Equal(t, fakeID(1), rec.ID, "the first record of the run wins")

	rec, _ = idx.FindNearest(310)
	assert.Equal(t, fakeID(1), rec.ID)

	rec, _ = idx.FindNearest(290)
	assert.Equal(t, fakeID(1), rec.ID, "approaching the run from above still returns its first record")

	rec, _ = idx.FindNearest(-1000)
	assert.Equal(t, fakeID(4), rec.ID, "the oldest run also resolves to its first record")
}

func TestFindNearest_SingleRecord(t *testing.T) {
	idx := descendingIndex(42)
	for _, target := range []int64{math.MinInt64, 0, 42, math.MaxInt64} {
		rec, ok := idx.FindNearest(target)
		require.True(t, ok)
		assert.Equal(t, int64(42), rec.Timestamp)
	}
}

func TestFindNearest_MinimalDistanceProperty(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for range 500 {
		n := 1 + rng.IntN(60)
		timestamps := make([]int64, n)
		for i := range timestamps {
			timestamps[i] = rng.Int64N(10_000) - 5_000
		}
		slices.SortFunc(timestamps, func(a, b int64) int { return int(b - a) })
		idx := descendingIndex(timestamps...)

		for range 20 {
			target := rng.Int64N(12_000) - 6_000
			rec, ok := idx.FindNearest(target)
			require.True(t, ok)
			best, bestDist := bruteNearest(idx.records, target)
			require.Equal(t, bestDist, absDiff(rec.Timestamp, target),
				"target %d: got %d, best %d", target, rec.Timestamp, idx.records[best].Timestamp)
		}
	}
}

func FuzzFindNearest(f *testing.F) {
	f.Add(int64(0), int64(10), int64(5), uint8(3))
	f.Add(int64(math.MinInt64), int64(math.MaxInt64), int64(0), uint8(2))
	f.Add(int64(100), int64(100), int64(100), uint8(5))

	f.Fuzz(func(t *testing.T, a, b, target int64, count uint8) {
		n := int(count%16) + 1
		lo, hi := min(a, b), max(a, b)
		timestamps := make([]int64, n)
		for i := range timestamps {
			// Evenly spread between lo and hi, newest first
			frac := float64(n-1-i) / float64(max(n-1, 1))
			timestamps[i] = lo + int64(frac*float64(uint64(hi-lo)))
		}
		slices.SortFunc(timestamps, func(x, y int64) int {
			switch {
			case x > y:
				return -1
			case x < y:
				return 1
			}
			return 0
		})
		idx := descendingIndex(timestamps...)
		rec, ok := idx.FindNearest(target)
		if !ok {
			t.Fatal("non-empty index returned no record")
		}
		_, bestDist := bruteNearest(idx.records, target)
		if got := absDiff(rec.Timestamp, target); got != bestDist {
			t.Fatalf("distance %d is not minimal (%d)", got, bestDist)
		}
	})
}

func TestFindNearest_NonMonotonicDoesNotPanic(t *testing.T) {
	idx := descendingIndex(100, 900, 50, 700, 300)
	for _, target := range []int64{-1, 0, 100, 500, 800, 1000} {
		_, ok := idx.FindNearest(target)
		assert.True(t, ok)
	}
}

func TestOutOfOrder(t *testing.T) {
	assert.Zero(t, outOfOrder(descendingIndex(900, 700, 700, 100).records))
	assert.Zero(t, outOfOrder(nil))
	assert.Equal(t, 2, outOfOrder(descendingIndex(100, 900, 50, 700, 300).records))
}

func TestNewCommitIndex_CopiesInput(t *testing.T) {
	records := []schema.CommitRecord{{ID: fakeID(1), Timestamp: 2}, {ID: fakeID(2), Timestamp: 1}}
	idx := NewCommitIndex(records)
	records[0].Timestamp = 99
	head, ok := idx.Head()
	require.True(t, ok)
	assert.Equal(t, int64(2), head.Timestamp)
}

func TestBuildIndex(t *testing.T) {
	ctx := context.Background()
	head := fakeID(9)

	t.Run("success", func(t *testing.T) {
		client := new(contract.MockGitClient)
		records := []schema.CommitRecord{{ID: head, Timestamp: 300}, {ID: fakeID(8), Timestamp: 100}}
		client.On("ResolveCommit", ctx, "/repo", "HEAD").Return(head, true, nil)
		client.On("ListHistory", ctx, "/repo", head).Return(contract.SeqFrom(records, nil))

		idx, err := BuildIndex(ctx, client, "/repo", "")
		require.NoError(t, err)
		assert.Equal(t, 2, idx.Len())
		oldest, newest, err := idx.FirstAndLast()
		require.NoError(t, err)
		assert.Equal(t, int64(100), oldest.Timestamp)
		assert.Equal(t, head, newest.ID)
		client.AssertExpectations(t)
	})

	t.Run("unborn head", func(t *testing.T) {
		client := new(contract.MockGitClient)
		client.On("ResolveCommit", ctx, "/repo", "HEAD").Return("", false, nil)

		_, err := BuildIndex(ctx, client, "/repo", "HEAD")
		assert.ErrorIs(t, err, contract.ErrEmptyHistory)
		client.AssertNotCalled(t, "ListHistory", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown branch", func(t *testing.T) {
		client := new(contract.MockGitClient)
		client.On("ResolveCommit", ctx, "/repo", "nope").Return("", false, nil)

		_, err := BuildIndex(ctx, client, "/repo", "nope")
		assert.ErrorIs(t, err, contract.ErrCommitNotFound)
	})

	t.Run("no records", func(t *testing.T) {
		client := new(contract.MockGitClient)
		client.On("ResolveCommit", ctx, "/repo", "HEAD").Return(head, true, nil)
		client.On("ListHistory", ctx, "/repo", head).Return(contract.SeqFrom[schema.CommitRecord](nil, nil))

		_, err := BuildIndex(ctx, client, "/repo", "HEAD")
		assert.ErrorIs(t, err, contract.ErrEmptyHistory)
	})

	t.Run("stream failure is fatal", func(t *testing.T) {
		client := new(contract.MockGitClient)
		streamErr := &contract.ToolError{Kind: contract.ErrParse, Op: "list history", Line: "garbage"}
		records := []schema.CommitRecord{{ID: head, Timestamp: 300}}
		client.On("ResolveCommit", ctx, "/repo", "HEAD").Return(head, true, nil)
		client.On("ListHistory", ctx, "/repo", head).Return(contract.SeqFrom(records, streamErr))

		_, err := BuildIndex(ctx, client, "/repo", "HEAD")
		assert.ErrorIs(t, err, contract.ErrParse)
	})

	t.Run("resolve failure", func(t *testing.T) {
		client := new(contract.MockGitClient)
		client.On("ResolveCommit", ctx, "/repo", "HEAD").Return("", false, errors.New("boom"))

		_, err := BuildIndex(ctx, client, "/repo", "HEAD")
		assert.Error(t, err)
	})
}
