package core

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// skipIfGitNotAvailable skips the test if git binary is not found in PATH
func skipIfGitNotAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
}

// runGit runs a git command in dir with a fixed identity and date.
func runGit(t *testing.T, dir string, when time.Time, args ...string) string {
	t.Helper()
	full := append([]string{"-c", "user.name=Tester", "-c", "user.email=tester@example.com", "-c", "commit.gpgsign=false"}, args...)
	cmd := exec.Command("git", full...)
	cmd.Dir = dir
	date := when.UTC().Format(time.RFC3339)
	cmd.Env = append(os.Environ(), "GIT_AUTHOR_DATE="+date, "GIT_COMMITTER_DATE="+date)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, out)
	return strings.TrimSpace(string(out))
}

type fixtureCommit struct {
	when    time.Time
	file    string
	content string
}

// initTestRepo creates a repository with the given commits, oldest first.
func initTestRepo(t *testing.T, commits []fixtureCommit) string {
	t.Helper()
	skipIfGitNotAvailable(t)
	dir := t.TempDir()
	runGit(t, dir, time.Now(), "init", "-q")
	for _, c := range commits {
		require.NoError(t, os.WriteFile(filepath.Join(dir, c.file), []byte(c.content), 0o644))
		runGit(t, dir, c.when, "add", c.file)
		runGit(t, dir, c.when, "commit", "-q", "-m", "update "+c.file)
	}
	return dir
}

// fourHundredDays spans 400 days with three commits.
var fourHundredDays = []fixtureCommit{
	{when: planBase, file: "a.txt", content: "alpha\n"},
	{when: planBase.AddDate(0, 0, 200), file: "b.txt", content: "bravo bravo\n"},
	{when: planBase.AddDate(0, 0, 400), file: "a.txt", content: "alpha alpha alpha\n"},
}
