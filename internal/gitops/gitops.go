// Package gitops commits ledger changes in a txnparse repo.
package gitops

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNothingToCommit is returned by Commit when the work tree is clean.
var ErrNothingToCommit = errors.New("nothing to commit")

// Author identifies who commits ledger changes.
type Author struct {
	Name  string
	Email string
}

func (a Author) String() string {
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// Repo is a git work tree.
type Repo struct {
	dir    string
	author Author
}

// Init initializes a new git repository at dir.
func Init(dir string, author Author) (*Repo, error) {
	r := &Repo{dir: dir, author: author}
	if _, err := r.git("init", "--quiet"); err != nil {
		return nil, err
	}
	return r, nil
}

// Open returns the repository at dir, or false when dir is not a git repo.
func Open(dir string, author Author) (*Repo, bool) {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		return nil, false
	}
	return &Repo{dir: dir, author: author}, true
}

// Commit stages all files and creates a commit with the repo's author as
// both author and committer. Returns the short commit hash.
func (r *Repo) Commit(message string) (string, error) {
	if _, err := r.git("add", "-A"); err != nil {
		return "", err
	}

	status, err := r.git("status", "--porcelain")
	if err != nil {
		return "", err
	}
	if status == "" {
		return "", ErrNothingToCommit
	}

	if _, err := r.git(
		"-c", "user.name="+r.author.Name,
		"-c", "user.email="+r.author.Email,
		"commit", "--quiet", "-m", message, "--author", r.author.String(),
	); err != nil {
		return "", err
	}

	return r.git("rev-parse", "--short", "HEAD")
}

func (r *Repo) git(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %s: %w", args[0], strings.TrimSpace(string(out)), err)
	}
	return strings.TrimSpace(string(out)), nil
}
