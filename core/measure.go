package core

import (
	"context"
	"fmt"

	"github.com/huangsam/gitsize/internal/contract"
	"github.com/huangsam/gitsize/schema"
)

// Measurer reports the size of a repository as of a given commit.
type Measurer struct {
	Client contract.GitClient
}

// NewMeasurer creates a measurer backed by client.
func NewMeasurer(client contract.GitClient) *Measurer {
	return &Measurer{Client: client}
}

// Measure returns the packed size of everything reachable from commitID and,
// when wantUncompressed is set, the total uncompressed size of reachable blobs.
func (m *Measurer) Measure(ctx context.Context, repoPath string, commitID string, wantUncompressed bool) (schema.SizeMeasurement, error) {
	packed, err := m.Client.DiskUsage(ctx, repoPath, commitID)
	if err != nil {
		return schema.SizeMeasurement{}, err
	}
	result := schema.SizeMeasurement{PackedBytes: packed}
	if !wantUncompressed {
		return result, nil
	}

	uncompressed, err := m.uncompressedSize(ctx, repoPath, commitID)
	if err != nil {
		return schema.SizeMeasurement{}, err
	}
	result.UncompressedBytes = &uncompressed
	return result, nil
}

// uncompressedSize pipes the reachable object listing into the batch size reporter.
func (m *Measurer) uncompressedSize(ctx context.Context, repoPath string, commitID string) (uint64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ids := func(yield func(string, error) bool) {
		for obj, err := range m.Client.ListReachableObjects(ctx, repoPath, commitID) {
			if !yield(obj.ID, err) || err != nil {
				return
			}
		}
	}

	var total, objects, blobs, missing uint64
	for obj, err := range m.Client.BatchObjectSize(ctx, repoPath, ids) {
		if err != nil {
			return 0, fmt.Errorf("uncompressed size of %s: %w", contract.ShortID(commitID), err)
		}
		if obj.Missing {
			missing++
			continue
		}
		objects++
		if obj.Type == "blob" {
			blobs++
			total += obj.Size
		}
	}

	contract.LogDebug("%s: %d objects, %d blobs, %s uncompressed", contract.ShortID(commitID), objects, blobs, contract.FormatSize(total))
	if missing > 0 {
		contract.LogDebug("%s: skipped %d missing objects", contract.ShortID(commitID), missing)
	}
	return total, nil
}
