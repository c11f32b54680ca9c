package core

import (
	"context"
	"time"

	"github.com/huangsam/gitsize/internal/contract"
	"github.com/huangsam/gitsize/schema"
)

// AnalyzeOptions controls a single size history analysis.
type AnalyzeOptions struct {
	RepoPath         string
	StartRef         string // Defaults to HEAD
	Mode             schema.SamplingMode
	WantUncompressed bool
	Workers          int
	Policy           schema.FailurePolicy
	Progress         ProgressFunc
}

// Analyze samples the history of a repository and measures its size at each sample.
// Index failures are always fatal; per-sample failures follow opts.Policy.
func Analyze(ctx context.Context, client contract.GitClient, opts AnalyzeOptions) (*schema.SizeHistory, error) {
	start := time.Now()
	if err := contract.ValidateRepoPath(opts.RepoPath); err != nil {
		return nil, err
	}
	ref := opts.StartRef
	if ref == "" {
		ref = contract.DefaultRef
	}

	idx, err := BuildIndex(ctx, client, opts.RepoPath, ref)
	if err != nil {
		return nil, err
	}
	oldest, newest, err := idx.FirstAndLast()
	if err != nil {
		return nil, err
	}
	head, _ := idx.Head()

	interval, years := SelectInterval(oldest.Time(), newest.Time(), opts.Mode)
	targets := Plan(oldest.Time(), newest.Time(), opts.Mode)
	points := ResolveSamples(idx, targets)
	contract.LogDebug("planned %d targets, %d distinct sample dates (%s)", len(targets), len(points), interval)

	measurer := NewMeasurer(client)
	scheduler := &Scheduler{Workers: opts.Workers, Policy: opts.Policy, Progress: opts.Progress}
	results, err := scheduler.Run(ctx, points, func(ctx context.Context, p schema.SamplePoint) (schema.SizeMeasurement, error) {
		return measurer.Measure(ctx, opts.RepoPath, p.CommitID, opts.WantUncompressed)
	})
	if err != nil {
		return nil, err
	}

	history := &schema.SizeHistory{
		RepoPath:         opts.RepoPath,
		Ref:              ref,
		HeadCommit:       head.ID,
		FirstCommit:      oldest,
		LastCommit:       newest,
		TotalCommits:     idx.Len(),
		SpanYears:        years,
		Interval:         interval,
		WantUncompressed: opts.WantUncompressed,
		Results:          results,
		Duration:         time.Since(start),
	}
	history.Samples = BuildSampleOutputs(results)
	return history, nil
}

// BuildSampleOutputs converts results into their serializable form.
func BuildSampleOutputs(results []schema.SizeResult) []schema.SampleOutput {
	out := make([]schema.SampleOutput, 0, len(results))
	for _, r := range results {
		s := schema.SampleOutput{
			Date:              r.Sample.Date(),
			CommitID:          r.Sample.CommitID,
			CommitTime:        r.Sample.CommitTime,
			PackedBytes:       r.PackedBytes,
			UncompressedBytes: r.UncompressedBytes,
		}
		if r.Err != nil {
			s.ErrorKind = contract.Classify(r.Err)
			s.Error = r.Err.Error()
		}
		out = append(out, s)
	}
	return out
}

// CountFailures returns how many results carry an error.
func CountFailures(results []schema.SizeResult) int {
	n := 0
	for _, r := range results {
		if r.Failed() {
			n++
		}
	}
	return n
}
