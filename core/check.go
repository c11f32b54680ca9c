package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/gitsize/internal/contract"
	"github.com/huangsam/gitsize/schema"
)

// ErrCheckFailed is returned when at least one size threshold is exceeded.
var ErrCheckFailed = errors.New("size policy check failed")

// ExecuteSizeCheck runs the check command for CI/CD gating.
// It measures the target ref once (and the base ref when a growth gate is set),
// prints a concise report and returns ErrCheckFailed on any violation.
func ExecuteSizeCheck(ctx context.Context, cfg *contract.Config, client contract.GitClient) error {
	start := time.Now()
	result, err := RunSizeCheck(ctx, cfg, client)
	if err != nil {
		return err
	}
	printCheckResult(result, cfg, time.Since(start))
	if !result.Passed {
		return fmt.Errorf("%w: %d violation(s) found", ErrCheckFailed, len(result.Violations))
	}
	return nil
}

// RunSizeCheck measures the configured refs and evaluates every threshold.
func RunSizeCheck(ctx context.Context, cfg *contract.Config, client contract.GitClient) (*schema.CheckResult, error) {
	if err := contract.ValidateRepoPath(cfg.RepoPath); err != nil {
		return nil, err
	}
	measurer := NewMeasurer(client)

	targetID, err := resolveForCheck(ctx, client, cfg.RepoPath, cfg.Ref)
	if err != nil {
		return nil, err
	}
	target, err := measurer.Measure(ctx, cfg.RepoPath, targetID, cfg.WantUncompressed)
	if err != nil {
		return nil, err
	}

	result := &schema.CheckResult{
		TargetRef:    cfg.Ref,
		TargetID:     targetID,
		Packed:       target.PackedBytes,
		Uncompressed: target.UncompressedBytes,
	}

	if cfg.BaseRef != "" {
		baseID, err := resolveForCheck(ctx, client, cfg.RepoPath, cfg.BaseRef)
		if err != nil {
			return nil, err
		}
		base, err := measurer.Measure(ctx, cfg.RepoPath, baseID, false)
		if err != nil {
			return nil, err
		}
		result.BaseRef = cfg.BaseRef
		result.BaseID = baseID
		result.BasePacked = base.PackedBytes
		result.GrowthPct = contract.GrowthPercent(base.PackedBytes, target.PackedBytes)
	}

	evaluateThresholds(result, cfg)
	return result, nil
}

// resolveForCheck resolves ref, treating an unresolvable ref as a missing commit.
func resolveForCheck(ctx context.Context, client contract.GitClient, repoPath, ref string) (string, error) {
	id, ok, err := client.ResolveCommit(ctx, repoPath, ref)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", ref, err)
	}
	if !ok {
		return "", fmt.Errorf("%w: %s does not name a commit", contract.ErrCommitNotFound, ref)
	}
	return id, nil
}

// evaluateThresholds fills in the violations and the overall verdict.
func evaluateThresholds(result *schema.CheckResult, cfg *contract.Config) {
	if cfg.MaxPackedBytes > 0 && result.Packed > cfg.MaxPackedBytes {
		result.Violations = append(result.Violations, schema.CheckViolation{
			Metric:    "packed",
			Observed:  float64(result.Packed),
			Threshold: float64(cfg.MaxPackedBytes),
		})
	}
	if cfg.MaxUncompressedBytes > 0 && result.Uncompressed != nil && *result.Uncompressed > cfg.MaxUncompressedBytes {
		result.Violations = append(result.Violations, schema.CheckViolation{
			Metric:    "uncompressed",
			Observed:  float64(*result.Uncompressed),
			Threshold: float64(cfg.MaxUncompressedBytes),
		})
	}
	if cfg.MaxGrowthPct > 0 && result.BaseRef != "" && result.GrowthPct > cfg.MaxGrowthPct {
		result.Violations = append(result.Violations, schema.CheckViolation{
			Metric:    "growth",
			Observed:  result.GrowthPct,
			Threshold: cfg.MaxGrowthPct,
		})
	}
	result.Passed = len(result.Violations) == 0
}

// printCheckResult prints the check result in a concise format suitable for CI/CD.
func printCheckResult(result *schema.CheckResult, cfg *contract.Config, duration time.Duration) {
	fmt.Println("Size Check Results:")

	labels := []string{"Target:", "Packed:"}
	values := []any{
		fmt.Sprintf("%s (%s)", result.TargetRef, contract.ShortID(result.TargetID)),
		contract.FormatSize(result.Packed),
	}
	if result.Uncompressed != nil {
		labels = append(labels, "Uncompressed:")
		values = append(values, contract.FormatSize(*result.Uncompressed))
	}
	if result.BaseRef != "" {
		labels = append(labels, "Base:", "Growth:")
		values = append(values,
			fmt.Sprintf("%s (%s, %s)", result.BaseRef, contract.ShortID(result.BaseID), contract.FormatSize(result.BasePacked)),
			fmt.Sprintf("%+.*f%%", cfg.Precision, result.GrowthPct))
	}

	// Find the longest label for consistent padding
	maxLabelLen := 0
	for _, label := range labels {
		maxLabelLen = max(maxLabelLen, len(label))
	}
	for i, label := range labels {
		fmt.Printf("  %-*s %v\n", maxLabelLen+1, label, values[i])
	}
	fmt.Printf("\nChecked in %v\n\n", duration.Round(time.Millisecond))

	if result.Passed {
		fmt.Printf("✅ Repository size is within policy\n")
		return
	}
	fmt.Printf("❌ Size check failed: %d violation(s) found\n", len(result.Violations))
	for _, v := range result.Violations {
		if v.Metric == "growth" {
			fmt.Printf("  - growth %.*f%% > threshold %.*f%%\n", cfg.Precision, v.Observed, cfg.Precision, v.Threshold)
			continue
		}
		fmt.Printf("  - %s %s > threshold %s\n", v.Metric, contract.FormatSize(uint64(v.Observed)), contract.FormatSize(uint64(v.Threshold)))
	}
}
