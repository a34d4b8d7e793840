package vcs

import (
	"context"
	"os/exec"
	"strings"
)

// Metadata holds version-control context for a deployment attempt. Fields
// left empty mean the information was unavailable; User degrades to
// "unknown" instead.
type Metadata struct {
	Commit string
	Branch string
	User   string
}

// Collector resolves version-control metadata for the working tree.
// Implementations are best-effort and never return errors; missing tooling
// or a non-repository directory yields zero values.
type Collector interface {
	Collect(ctx context.Context) Metadata
}

// GitCollector shells out to git. It is the only place in deployctl that
// runs a subprocess.
type GitCollector struct {
	// Dir is the working tree to inspect. Empty means the current directory.
	Dir string
}

// Collect resolves the current commit, branch, and configured user email.
// Every failure is swallowed: the enclosing deployment must not fail because
// git is absent or the directory is not a repository.
func (g GitCollector) Collect(ctx context.Context) Metadata {
	m := Metadata{User: "unknown"}

	if out, err := g.run(ctx, "rev-parse", "HEAD"); err == nil {
		m.Commit = out
	}
	if out, err := g.run(ctx, "rev-parse", "--abbrev-ref", "HEAD"); err == nil {
		m.Branch = out
	}
	if out, err := g.run(ctx, "config", "user.email"); err == nil && out != "" {
		m.User = out
	}
	return m
}

func (g GitCollector) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.Dir
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Static is a Collector returning fixed metadata, used by tests and dry
// runs where shelling out is undesirable.
type Static struct {
	Metadata Metadata
}

func (s Static) Collect(ctx context.Context) Metadata {
	return s.Metadata
}
