package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/huangsam/gitsize/internal/contract"
	"github.com/huangsam/gitsize/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// threeCommitHistory mirrors fourHundredDays as index records, newest first.
func threeCommitHistory() []schema.CommitRecord {
	return []schema.CommitRecord{
		{ID: fakeID(3), Timestamp: planBase.AddDate(0, 0, 400).Unix()},
		{ID: fakeID(2), Timestamp: planBase.AddDate(0, 0, 200).Unix()},
		{ID: fakeID(1), Timestamp: planBase.Unix()},
	}
}

// newHistoryClient programs a mock with the three commit history and packed sizes.
func newHistoryClient(sizes map[string]uint64, failing map[string]error) *contract.MockGitClient {
	client := new(contract.MockGitClient)
	client.On("ResolveCommit", mock.Anything, mock.Anything, "HEAD").Return(fakeID(3), true, nil)
	client.On("ListHistory", mock.Anything, mock.Anything, fakeID(3)).Return(contract.SeqFrom(threeCommitHistory(), nil))
	for id, size := range sizes {
		client.On("DiskUsage", mock.Anything, mock.Anything, id).Return(size, nil)
	}
	for id, err := range failing {
		client.On("DiskUsage", mock.Anything, mock.Anything, id).Return(uint64(0), err)
	}
	return client
}

func TestAnalyze_MonthlySamplesOverFourHundredDays(t *testing.T) {
	client := newHistoryClient(map[string]uint64{fakeID(1): 100, fakeID(2): 250, fakeID(3): 400}, nil)

	history, err := Analyze(context.Background(), client, AnalyzeOptions{RepoPath: t.TempDir(), Workers: 4})
	require.NoError(t, err)

	assert.Equal(t, schema.MonthlyInterval, history.Interval)
	assert.Equal(t, 3, history.TotalCommits)
	assert.Equal(t, fakeID(3), history.HeadCommit)
	assert.Equal(t, "HEAD", history.Ref)
	assert.Equal(t, fakeID(1), history.FirstCommit.ID)
	assert.Equal(t, fakeID(3), history.LastCommit.ID)
	assert.InDelta(t, 400/DaysPerYear, history.SpanYears, 1e-9)

	require.Len(t, history.Results, 15)
	require.Len(t, history.Samples, 15)
	wantSize := map[string]uint64{fakeID(1): 100, fakeID(2): 250, fakeID(3): 400}
	for i, s := range history.Samples {
		assert.Contains(t, wantSize, s.CommitID)
		assert.Equal(t, wantSize[s.CommitID], s.PackedBytes)
		assert.Nil(t, s.UncompressedBytes)
		assert.Empty(t, s.ErrorKind)
		if i > 0 {
			assert.Less(t, history.Samples[i-1].Date, s.Date, "dates are strictly increasing")
		}
	}
	assert.Equal(t, "2020-01-01", history.Samples[0].Date)
	assert.Equal(t, "2021-02-04", history.Samples[14].Date)
	assert.Equal(t, fakeID(3), history.Samples[14].CommitID)
}

func TestAnalyze_EmptyHistoryMeasuresNothing(t *testing.T) {
	client := new(contract.MockGitClient)
	client.On("ResolveCommit", mock.Anything, mock.Anything, "HEAD").Return("", false, nil)

	_, err := Analyze(context.Background(), client, AnalyzeOptions{RepoPath: t.TempDir()})
	require.ErrorIs(t, err, contract.ErrEmptyHistory)
	assert.Equal(t, contract.KindEmptyHistory, contract.Classify(err))
	client.AssertNotCalled(t, "DiskUsage", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyze_InvalidRepoPath(t *testing.T) {
	client := new(contract.MockGitClient)
	_, err := Analyze(context.Background(), client, AnalyzeOptions{RepoPath: "/definitely/not/here"})
	assert.ErrorIs(t, err, contract.ErrInvalidPath)
	client.AssertNotCalled(t, "ResolveCommit", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyze_ContinuePolicyKeepsFailedSamples(t *testing.T) {
	notFound := &contract.ToolError{Kind: contract.ErrCommitNotFound, Op: "disk usage", ExitCode: 128, Stderr: "fatal: bad object"}
	client := newHistoryClient(
		map[string]uint64{fakeID(1): 100, fakeID(3): 400},
		map[string]error{fakeID(2): notFound},
	)

	history, err := Analyze(context.Background(), client, AnalyzeOptions{
		RepoPath: t.TempDir(),
		Workers:  2,
		Policy:   schema.ContinueOnError,
	})
	require.NoError(t, err)
	require.Len(t, history.Samples, 15)

	failed := 0
	for _, s := range history.Samples {
		if s.CommitID == fakeID(2) {
			failed++
			assert.Equal(t, contract.KindCommitNotFound, s.ErrorKind)
			assert.Contains(t, s.Error, s.Date)
			continue
		}
		assert.Empty(t, s.ErrorKind)
	}
	assert.Positive(t, failed)
	assert.Equal(t, failed, CountFailures(history.Results))
}

func TestAnalyze_FailFastStopsRun(t *testing.T) {
	client := newHistoryClient(
		map[string]uint64{fakeID(1): 100, fakeID(3): 400},
		map[string]error{fakeID(2): errors.New("disk usage exploded")},
	)

	_, err := Analyze(context.Background(), client, AnalyzeOptions{RepoPath: t.TempDir(), Workers: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk usage exploded")
}

func TestAnalyze_ForcedYearly(t *testing.T) {
	client := newHistoryClient(map[string]uint64{fakeID(1): 100, fakeID(2): 250, fakeID(3): 400}, nil)

	history, err := Analyze(context.Background(), client, AnalyzeOptions{RepoPath: t.TempDir(), Mode: schema.YearlySampling})
	require.NoError(t, err)
	assert.Equal(t, schema.YearlyInterval, history.Interval)
	// 2020-01-01, 2020-12-31 and the last commit date
	require.Len(t, history.Samples, 3)
	assert.Equal(t, "2020-12-31", history.Samples[1].Date)
}

func TestAnalyze_RealRepository(t *testing.T) {
	repo := initTestRepo(t, fourHundredDays)
	ids := strings.Fields(runGit(t, repo, planBase, "rev-list", "HEAD"))
	require.Len(t, ids, 3)

	history, err := Analyze(context.Background(), contract.NewLocalGitClient(), AnalyzeOptions{
		RepoPath:         repo,
		WantUncompressed: true,
		Workers:          3,
	})
	require.NoError(t, err)

	assert.Equal(t, schema.MonthlyInterval, history.Interval)
	assert.Equal(t, 3, history.TotalCommits)
	assert.Equal(t, ids[0], history.HeadCommit)
	require.Len(t, history.Samples, 15)
	for i, s := range history.Samples {
		assert.Contains(t, ids, s.CommitID)
		assert.Positive(t, s.PackedBytes)
		require.NotNil(t, s.UncompressedBytes)
		if i > 0 && s.CommitID == history.Samples[i-1].CommitID {
			assert.Equal(t, history.Samples[i-1].PackedBytes, s.PackedBytes, "same commit, same size")
		}
	}
	assert.Equal(t, ids[2], history.Samples[0].CommitID)
	assert.Equal(t, ids[0], history.Samples[14].CommitID)
	assert.Equal(t, uint64(len("alpha\n")), *history.Samples[0].UncompressedBytes)
}

func TestAnalyze_RealRepositoryUnknownRef(t *testing.T) {
	repo := initTestRepo(t, fourHundredDays[:1])

	_, err := Analyze(context.Background(), contract.NewLocalGitClient(), AnalyzeOptions{RepoPath: repo, StartRef: "no-such-branch"})
	assert.ErrorIs(t, err, contract.ErrCommitNotFound)
}

func TestAnalyze_RealRepositoryUnborn(t *testing.T) {
	repo := initTestRepo(t, nil)

	_, err := Analyze(context.Background(), contract.NewLocalGitClient(), AnalyzeOptions{RepoPath: repo})
	assert.ErrorIs(t, err, contract.ErrEmptyHistory)
}

func TestBuildSampleOutputs(t *testing.T) {
	size := uint64(42)
	results := []schema.SizeResult{
		{Sample: testPoints(1)[0], PackedBytes: 10, UncompressedBytes: &size},
		{Sample: testPoints(2)[1], Err: &contract.ToolError{Kind: contract.ErrParse, Op: "batch check", Line: "x"}},
	}

	out := BuildSampleOutputs(results)
	require.Len(t, out, 2)
	assert.Equal(t, "2020-01-01", out[0].Date)
	assert.Equal(t, uint64(10), out[0].PackedBytes)
	assert.Equal(t, &size, out[0].UncompressedBytes)
	assert.Empty(t, out[0].Error)
	assert.Equal(t, contract.KindParse, out[1].ErrorKind)
	assert.NotEmpty(t, out[1].Error)
}
