package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/huangsam/gitsize/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPoints returns n sample points one day apart.
func testPoints(n int) []schema.SamplePoint {
	points := make([]schema.SamplePoint, n)
	for i := range points {
		points[i] = schema.SamplePoint{
			TargetDate: planBase.AddDate(0, 0, i),
			CommitID:   fakeID(i),
			CommitTime: planBase.AddDate(0, 0, i).Unix(),
		}
	}
	return points
}

// indexOf recovers the point position from its fake commit id.
func indexOf(points []schema.SamplePoint, p schema.SamplePoint) int {
	for i := range points {
		if points[i].CommitID == p.CommitID {
			return i
		}
	}
	return -1
}

func TestScheduler_PreservesOrderUnderReversedLatency(t *testing.T) {
	points := testPoints(12)
	s := &Scheduler{Workers: 4}

	results, err := s.Run(context.Background(), points, func(ctx context.Context, p schema.SamplePoint) (schema.SizeMeasurement, error) {
		i := indexOf(points, p)
		// Earlier points finish last
		time.Sleep(time.Duration(len(points)-i) * 2 * time.Millisecond)
		return schema.SizeMeasurement{PackedBytes: uint64(i * 100)}, nil
	})
	require.NoError(t, err)
	require.Len(t, results, len(points))
	for i, r := range results {
		assert.Equal(t, points[i], r.Sample)
		assert.Equal(t, uint64(i*100), r.PackedBytes)
		assert.False(t, r.Failed())
	}
}

func TestScheduler_RespectsWorkerLimit(t *testing.T) {
	points := testPoints(20)
	var inFlight, peak atomic.Int32
	s := &Scheduler{Workers: 3}

	_, err := s.Run(context.Background(), points, func(ctx context.Context, p schema.SamplePoint) (schema.SizeMeasurement, error) {
		n := inFlight.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		inFlight.Add(-1)
		return schema.SizeMeasurement{}, nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestScheduler_FailFast(t *testing.T) {
	points := testPoints(50)
	boom := errors.New("boom")
	var calls atomic.Int32
	s := &Scheduler{Workers: 2, Policy: schema.FailFast}

	results, err := s.Run(context.Background(), points, func(ctx context.Context, p schema.SamplePoint) (schema.SizeMeasurement, error) {
		calls.Add(1)
		if p.CommitID == points[1].CommitID {
			return schema.SizeMeasurement{}, boom
		}
		select {
		case <-ctx.Done():
			return schema.SizeMeasurement{}, ctx.Err()
		case <-time.After(5 * time.Millisecond):
		}
		return schema.SizeMeasurement{PackedBytes: 1}, nil
	})
	require.Error(t, err)
	assert.Nil(t, results)
	assert.Less(t, int(calls.Load()), len(points), "outstanding work is cancelled")
}

func TestScheduler_FailFastReportsSample(t *testing.T) {
	points := testPoints(1)
	boom := errors.New("boom")
	s := &Scheduler{Workers: 1}

	_, err := s.Run(context.Background(), points, func(ctx context.Context, p schema.SamplePoint) (schema.SizeMeasurement, error) {
		return schema.SizeMeasurement{}, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), points[0].Date())
	assert.Contains(t, err.Error(), "0000000000")
}

func TestScheduler_ContinueRecordsFailures(t *testing.T) {
	points := testPoints(6)
	boom := errors.New("boom")
	s := &Scheduler{Workers: 3, Policy: schema.ContinueOnError}

	results, err := s.Run(context.Background(), points, func(ctx context.Context, p schema.SamplePoint) (schema.SizeMeasurement, error) {
		i := indexOf(points, p)
		if i%2 == 1 {
			return schema.SizeMeasurement{}, boom
		}
		return schema.SizeMeasurement{PackedBytes: uint64(i + 1)}, nil
	})
	require.NoError(t, err)
	require.Len(t, results, 6)
	for i, r := range results {
		if i%2 == 1 {
			assert.ErrorIs(t, r.Err, boom)
			assert.Zero(t, r.PackedBytes)
		} else {
			assert.NoError(t, r.Err)
			assert.Equal(t, uint64(i+1), r.PackedBytes)
		}
	}
	assert.Equal(t, 3, CountFailures(results))
}

func TestScheduler_ProgressIsMonotonic(t *testing.T) {
	points := testPoints(30)
	var mu sync.Mutex
	var seen []int
	s := &Scheduler{
		Workers: 8,
		Progress: func(done, total int) {
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, len(points), total)
			seen = append(seen, done)
		},
	}

	_, err := s.Run(context.Background(), points, func(ctx context.Context, p schema.SamplePoint) (schema.SizeMeasurement, error) {
		return schema.SizeMeasurement{}, nil
	})
	require.NoError(t, err)
	require.Len(t, seen, len(points))
	for i, done := range seen {
		assert.Equal(t, i+1, done)
	}
}

func TestScheduler_EmptyInput(t *testing.T) {
	s := &Scheduler{}
	results, err := s.Run(context.Background(), nil, func(ctx context.Context, p schema.SamplePoint) (schema.SizeMeasurement, error) {
		t.Fatal("measure must not be called")
		return schema.SizeMeasurement{}, nil
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestScheduler_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, policy := range []schema.FailurePolicy{schema.FailFast, schema.ContinueOnError} {
		s := &Scheduler{Workers: 2, Policy: policy}
		_, err := s.Run(ctx, testPoints(5), func(ctx context.Context, p schema.SamplePoint) (schema.SizeMeasurement, error) {
			return schema.SizeMeasurement{}, ctx.Err()
		})
		assert.ErrorIs(t, err, context.Canceled, "policy %s", policy)
	}
}
