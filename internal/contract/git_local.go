package contract

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/huangsam/gitsize/schema"
)

// BatchCheckFormat is the cat-file format string parsed by ParseBatchCheckLine.
const BatchCheckFormat = "%(objectname) %(objecttype) %(objectsize)"

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
//
// Every invocation disables replace refs and passes the repository path
// and commit ids as separate argv elements, never through a shell.
type LocalGitClient struct {
	// GitPath is the git executable to run. Empty means "git" from PATH.
	GitPath string
}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

func (c *LocalGitClient) gitPath() string {
	if c.GitPath == "" {
		return "git"
	}
	return c.GitPath
}

// commandFactory returns a constructor for a git command in repoPath.
func (c *LocalGitClient) commandFactory(repoPath string, args ...string) func(context.Context) *exec.Cmd {
	fullArgs := append([]string{"--no-replace-objects", "-C", repoPath}, args...)
	return func(ctx context.Context) *exec.Cmd {
		cmd := exec.CommandContext(ctx, c.gitPath(), fullArgs...)
		cmd.WaitDelay = processWaitDelay
		cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "LC_ALL=C")
		return cmd
	}
}

// ValidateRepoPath checks that repoPath can safely be handed to git.
func ValidateRepoPath(repoPath string) error {
	if repoPath == "" || strings.ContainsRune(repoPath, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidPath, repoPath)
	}
	info, err := os.Stat(repoPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidPath, repoPath)
	}
	return nil
}

// ValidateCommitID checks that id is a full lowercase hex object id (SHA-1 or SHA-256).
func ValidateCommitID(id string) error {
	if len(id) != 40 && len(id) != 64 {
		return fmt.Errorf("%w: %q is not a full object id", ErrCommitNotFound, id)
	}
	for i := 0; i < len(id); i++ {
		ch := id[i]
		if (ch < '0' || ch > '9') && (ch < 'a' || ch > 'f') {
			return fmt.Errorf("%w: %q is not a full object id", ErrCommitNotFound, id)
		}
	}
	return nil
}

// validateRef rejects refs that cannot be passed to git as a single argument.
func validateRef(ref string) error {
	if ref == "" || strings.ContainsRune(ref, 0) || strings.ContainsAny(ref, "\n\r") {
		return fmt.Errorf("%w: invalid reference %q", ErrCommitNotFound, ref)
	}
	return nil
}

// ParseHistoryLine parses one "<timestamp> <id>" line of rev-list --timestamp.
func ParseHistoryLine(line string) (schema.CommitRecord, error) {
	tsField, id, ok := strings.Cut(strings.TrimSpace(line), " ")
	if !ok {
		return schema.CommitRecord{}, parseError("list history", line, nil)
	}
	ts, err := strconv.ParseInt(tsField, 10, 64)
	if err != nil {
		return schema.CommitRecord{}, parseError("list history", line, err)
	}
	if ValidateCommitID(id) != nil {
		return schema.CommitRecord{}, parseError("list history", line, nil)
	}
	return schema.CommitRecord{ID: id, Timestamp: ts}, nil
}

// ParseReachableLine parses one "<id>[ <name>]" line of rev-list --objects.
func ParseReachableLine(line string) (schema.ReachableObject, error) {
	id, name, _ := strings.Cut(line, " ")
	if ValidateCommitID(id) != nil {
		return schema.ReachableObject{}, parseError("list reachable objects", line, nil)
	}
	return schema.ReachableObject{ID: id, Name: name}, nil
}

// ParseBatchCheckLine parses one line of cat-file --batch-check=BatchCheckFormat.
// A "<id> missing" line yields an ObjectSize with Missing set.
func ParseBatchCheckLine(line string) (schema.ObjectSize, error) {
	fields := strings.Fields(line)
	switch {
	case len(fields) == 2 && fields[1] == "missing":
		return schema.ObjectSize{ID: fields[0], Missing: true}, nil
	case len(fields) != 3:
		return schema.ObjectSize{}, parseError("batch object size", line, nil)
	}
	size, err := strconv.ParseUint(fields[2], 10, 64)
	if err != nil {
		return schema.ObjectSize{}, parseError("batch object size", line, err)
	}
	return schema.ObjectSize{ID: fields[0], Type: fields[1], Size: size}, nil
}

// ResolveCommit implements the GitClient interface.
func (c *LocalGitClient) ResolveCommit(ctx context.Context, repoPath string, ref string) (string, bool, error) {
	if err := ValidateRepoPath(repoPath); err != nil {
		return "", false, err
	}
	if err := validateRef(ref); err != nil {
		return "", false, err
	}
	mk := c.commandFactory(repoPath, "rev-parse", "--verify", "--quiet", "--end-of-options", ref+"^{commit}")
	var id string
	for line, err := range streamLines(ctx, "resolve commit", mk) {
		if err != nil {
			// --quiet exits 1 with no output when ref names no commit
			var te *ToolError
			if errors.As(err, &te) && te.ExitCode == 1 && strings.TrimSpace(te.Stderr) == "" {
				return "", false, nil
			}
			return "", false, err
		}
		if id == "" {
			id = strings.TrimSpace(line)
		}
	}
	if ValidateCommitID(id) != nil {
		return "", false, parseError("resolve commit", id, nil)
	}
	return id, true, nil
}

// PackDir implements the GitClient interface.
func (c *LocalGitClient) PackDir(ctx context.Context, repoPath string) (string, error) {
	if err := ValidateRepoPath(repoPath); err != nil {
		return "", err
	}
	mk := c.commandFactory(repoPath, "rev-parse", "--git-path", "objects/pack")
	var dir string
	for line, err := range streamLines(ctx, "pack dir", mk) {
		if err != nil {
			return "", err
		}
		if dir == "" {
			dir = strings.TrimSpace(line)
		}
	}
	if dir == "" {
		return "", parseError("pack dir", "", nil)
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(repoPath, dir)
	}
	return dir, nil
}

// ListHistory implements the GitClient interface.
func (c *LocalGitClient) ListHistory(ctx context.Context, repoPath string, startID string) iter.Seq2[schema.CommitRecord, error] {
	return func(yield func(schema.CommitRecord, error) bool) {
		if err := ValidateRepoPath(repoPath); err != nil {
			yield(schema.CommitRecord{}, err)
			return
		}
		if err := ValidateCommitID(startID); err != nil {
			yield(schema.CommitRecord{}, err)
			return
		}
		mk := c.commandFactory(repoPath, "rev-list", "--timestamp", "--end-of-options", startID, "--")
		for line, err := range streamLines(ctx, "list history", mk) {
			if err != nil {
				yield(schema.CommitRecord{}, err)
				return
			}
			if line == "" {
				continue
			}
			rec, err := ParseHistoryLine(line)
			if err != nil {
				yield(schema.CommitRecord{}, err)
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// DiskUsage implements the GitClient interface.
func (c *LocalGitClient) DiskUsage(ctx context.Context, repoPath string, commitID string) (uint64, error) {
	if err := ValidateRepoPath(repoPath); err != nil {
		return 0, err
	}
	if err := ValidateCommitID(commitID); err != nil {
		return 0, err
	}
	mk := c.commandFactory(repoPath,
		"rev-list", "--objects", "--disk-usage", "--use-bitmap-index",
		"--end-of-options", commitID, "--")
	var last string
	for line, err := range streamLines(ctx, "disk usage", mk) {
		if err != nil {
			return 0, err
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			last = trimmed
		}
	}
	if last == "" {
		return 0, parseError("disk usage", "", fmt.Errorf("no output"))
	}
	size, err := strconv.ParseUint(last, 10, 64)
	if err != nil {
		return 0, parseError("disk usage", last, err)
	}
	return size, nil
}

// ListReachableObjects implements the GitClient interface.
func (c *LocalGitClient) ListReachableObjects(ctx context.Context, repoPath string, commitID string) iter.Seq2[schema.ReachableObject, error] {
	return func(yield func(schema.ReachableObject, error) bool) {
		if err := ValidateRepoPath(repoPath); err != nil {
			yield(schema.ReachableObject{}, err)
			return
		}
		if err := ValidateCommitID(commitID); err != nil {
			yield(schema.ReachableObject{}, err)
			return
		}
		mk := c.commandFactory(repoPath, "rev-list", "--objects", "--end-of-options", commitID, "--")
		for line, err := range streamLines(ctx, "list reachable objects", mk) {
			if err != nil {
				yield(schema.ReachableObject{}, err)
				return
			}
			if line == "" {
				continue
			}
			obj, err := ParseReachableLine(line)
			if err != nil {
				yield(schema.ReachableObject{}, err)
				return
			}
			if !yield(obj, nil) {
				return
			}
		}
	}
}

// BatchObjectSize implements the GitClient interface.
func (c *LocalGitClient) BatchObjectSize(ctx context.Context, repoPath string, ids iter.Seq2[string, error]) iter.Seq2[schema.ObjectSize, error] {
	return func(yield func(schema.ObjectSize, error) bool) {
		if err := ValidateRepoPath(repoPath); err != nil {
			yield(schema.ObjectSize{}, err)
			return
		}
		mk := c.commandFactory(repoPath, "cat-file", "--batch-check="+BatchCheckFormat)
		for line, err := range pipeLines(ctx, "batch object size", mk, ids) {
			if err != nil {
				yield(schema.ObjectSize{}, err)
				return
			}
			if line == "" {
				continue
			}
			obj, err := ParseBatchCheckLine(line)
			if err != nil {
				yield(schema.ObjectSize{}, err)
				return
			}
			if !yield(obj, nil) {
				return
			}
		}
	}
}
