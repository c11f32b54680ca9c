package core

import (
	"context"
	"testing"

	"github.com/huangsam/gitsize/internal/contract"
	"github.com/huangsam/gitsize/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMeasure_PackedOnly(t *testing.T) {
	client := new(contract.MockGitClient)
	id := fakeID(1)
	client.On("DiskUsage", mock.Anything, "/repo", id).Return(uint64(2048), nil)

	m, err := NewMeasurer(client).Measure(context.Background(), "/repo", id, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(2048), m.PackedBytes)
	assert.Nil(t, m.UncompressedBytes)
	client.AssertNotCalled(t, "ListReachableObjects", mock.Anything, mock.Anything, mock.Anything)
}

func TestMeasure_UncompressedSumsBlobs(t *testing.T) {
	client := new(contract.MockGitClient)
	id := fakeID(1)
	objects := []schema.ReachableObject{
		{ID: fakeID(1)},
		{ID: fakeID(2)},
		{ID: fakeID(3), Name: "a.txt"},
		{ID: fakeID(4), Name: "b.txt"},
		{ID: fakeID(5), Name: "gone.txt"},
	}
	sizes := []schema.ObjectSize{
		{ID: fakeID(1), Type: "commit", Size: 200},
		{ID: fakeID(2), Type: "tree", Size: 70},
		{ID: fakeID(3), Type: "blob", Size: 1000},
		{ID: fakeID(4), Type: "blob", Size: 24},
		{ID: fakeID(5), Missing: true},
	}
	client.On("DiskUsage", mock.Anything, "/repo", id).Return(uint64(512), nil)
	client.On("ListReachableObjects", mock.Anything, "/repo", id).Return(contract.SeqFrom(objects, nil))
	client.On("BatchObjectSize", mock.Anything, "/repo", mock.Anything).Return(contract.SeqFrom(sizes, nil))

	m, err := NewMeasurer(client).Measure(context.Background(), "/repo", id, true)
	require.NoError(t, err)
	assert.Equal(t, uint64(512), m.PackedBytes)
	require.NotNil(t, m.UncompressedBytes)
	assert.Equal(t, uint64(1024), *m.UncompressedBytes, "only blobs count; missing objects are skipped")
	client.AssertExpectations(t)
}

func TestMeasure_DiskUsageFailure(t *testing.T) {
	client := new(contract.MockGitClient)
	id := fakeID(7)
	toolErr := &contract.ToolError{Kind: contract.ErrCommitNotFound, Op: "disk usage", ExitCode: 128, Stderr: "fatal: bad object"}
	client.On("DiskUsage", mock.Anything, "/repo", id).Return(uint64(0), toolErr)

	_, err := NewMeasurer(client).Measure(context.Background(), "/repo", id, true)
	assert.ErrorIs(t, err, contract.ErrCommitNotFound)
	client.AssertNotCalled(t, "ListReachableObjects", mock.Anything, mock.Anything, mock.Anything)
}

func TestMeasure_ListingFailure(t *testing.T) {
	client := new(contract.MockGitClient)
	id := fakeID(1)
	listErr := &contract.ToolError{Kind: contract.ErrExternalTool, Op: "list objects", ExitCode: 128}
	client.On("DiskUsage", mock.Anything, "/repo", id).Return(uint64(512), nil)
	client.On("ListReachableObjects", mock.Anything, "/repo", id).
		Return(contract.SeqFrom([]schema.ReachableObject{{ID: fakeID(2)}}, listErr))
	client.On("BatchObjectSize", mock.Anything, "/repo", mock.Anything).Return(contract.SeqFrom[schema.ObjectSize](nil, nil))

	_, err := NewMeasurer(client).Measure(context.Background(), "/repo", id, true)
	assert.ErrorIs(t, err, contract.ErrExternalTool)
	assert.Contains(t, err.Error(), contract.ShortID(id))
}

func TestMeasure_BatchFailure(t *testing.T) {
	client := new(contract.MockGitClient)
	id := fakeID(1)
	parseErr := &contract.ToolError{Kind: contract.ErrParse, Op: "batch check", Line: "???"}
	client.On("DiskUsage", mock.Anything, "/repo", id).Return(uint64(512), nil)
	client.On("ListReachableObjects", mock.Anything, "/repo", id).Return(contract.SeqFrom([]schema.ReachableObject{{ID: fakeID(2)}}, nil))
	client.On("BatchObjectSize", mock.Anything, "/repo", mock.Anything).
		Return(contract.SeqFrom([]schema.ObjectSize{{ID: fakeID(2), Type: "blob", Size: 5}}, parseErr))

	_, err := NewMeasurer(client).Measure(context.Background(), "/repo", id, true)
	assert.ErrorIs(t, err, contract.ErrParse)
}

func TestMeasure_RealRepository(t *testing.T) {
	repo := initTestRepo(t, fourHundredDays)
	client := contract.NewLocalGitClient()
	ctx := context.Background()

	head, ok, err := client.ResolveCommit(ctx, repo, "HEAD")
	require.NoError(t, err)
	require.True(t, ok)

	measurer := NewMeasurer(client)
	first, err := measurer.Measure(ctx, repo, head, true)
	require.NoError(t, err)
	second, err := measurer.Measure(ctx, repo, head, true)
	require.NoError(t, err)

	assert.Greater(t, first.PackedBytes, uint64(0))
	assert.Equal(t, first, second, "measuring the same commit twice is stable")

	var want uint64
	for _, c := range fourHundredDays {
		want += uint64(len(c.content))
	}
	require.NotNil(t, first.UncompressedBytes)
	assert.Equal(t, want, *first.UncompressedBytes)
}
