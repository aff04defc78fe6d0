// Package gitops records data-directory snapshots in git.
package gitops

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Init initializes a new git repository at dir.
func Init(dir string) error {
	if out, err := git(dir, nil, "init", "--quiet"); err != nil {
		return fmt.Errorf("git init: %s: %w", out, err)
	}
	return nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// CommitAll stages all files and creates a commit. Returns the short commit hash.
func CommitAll(dir, message, authorName, authorEmail string) (string, error) {
	return Committer{Dir: dir, AuthorName: authorName, AuthorEmail: authorEmail}.Commit(message)
}

// Committer commits changes under Dir as a fixed author.
type Committer struct {
	Dir         string
	AuthorName  string
	AuthorEmail string
}

// Commit stages paths (relative to Dir; all files when empty) and commits
// them. It returns the short hash, or "" when nothing changed.
func (c Committer) Commit(message string, paths ...string) (string, error) {
	add := append([]string{"add", "-A", "--"}, paths...)
	if out, err := git(c.Dir, nil, add...); err != nil {
		return "", fmt.Errorf("git add: %s: %w", out, err)
	}

	if _, err := git(c.Dir, nil, "diff", "--cached", "--quiet"); err == nil {
		return "", nil
	}

	author := fmt.Sprintf("%s <%s>", c.AuthorName, c.AuthorEmail)
	env := []string{
		"GIT_COMMITTER_NAME=" + c.AuthorName,
		"GIT_COMMITTER_EMAIL=" + c.AuthorEmail,
	}
	if out, err := git(c.Dir, env, "commit", "--quiet", "-m", message, "--author", author); err != nil {
		return "", fmt.Errorf("git commit: %s: %w", out, err)
	}

	out, err := git(c.Dir, nil, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func git(dir string, env []string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	out, err := cmd.CombinedOutput()
	return string(out), err
}
