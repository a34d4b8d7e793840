package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/stocksure/deployctl/pkg/errdefs"
	"github.com/stocksure/deployctl/pkg/types"
	"github.com/stocksure/deployctl/pkg/vcs"
)

const ledgerVersion = "1.0.0"

// Retention defaults. Both limits apply after every append: the stored list
// is trimmed to the record count cap and to the age window, whichever bites
// first.
const (
	DefaultMaxRecords = 50
	DefaultRetention  = 90 * 24 * time.Hour
)

// ledgerFile is the on-disk shape: most-recent-first deployments under a
// format version.
type ledgerFile struct {
	Version     string                   `json:"version"`
	Deployments []types.DeploymentRecord `json:"deployments"`
}

// Config configures a Ledger.
type Config struct {
	// Path is the history JSON file.
	Path string

	// MaxRecords caps the stored record count (DefaultMaxRecords if zero).
	MaxRecords int

	// Retention caps record age (DefaultRetention if zero).
	Retention time.Duration

	// Collector resolves git metadata for new records. Defaults to a
	// GitCollector on the current directory.
	Collector vcs.Collector

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Ledger is the append-only deployment history store. Records are immutable
// once appended; only retention eviction removes them.
type Ledger struct {
	path       string
	maxRecords int
	retention  time.Duration
	collector  vcs.Collector
	now        func() time.Time
}

// NewLedger creates a ledger from cfg, applying defaults.
func NewLedger(cfg Config) *Ledger {
	l := &Ledger{
		path:       cfg.Path,
		maxRecords: cfg.MaxRecords,
		retention:  cfg.Retention,
		collector:  cfg.Collector,
		now:        cfg.Now,
	}
	if l.maxRecords <= 0 {
		l.maxRecords = DefaultMaxRecords
	}
	if l.retention <= 0 {
		l.retention = DefaultRetention
	}
	if l.collector == nil {
		l.collector = vcs.GitCollector{}
	}
	if l.now == nil {
		l.now = time.Now
	}
	return l
}

// Record appends a deployment attempt and returns its generated id. Git
// metadata is resolved best-effort; its absence never fails the append.
func (l *Ledger) Record(ctx context.Context, rec types.DeploymentRecord) (string, error) {
	now := l.now()
	rec.ID = fmt.Sprintf("deploy-%d-%s", now.UnixMilli(), uuid.New().String()[:4])
	rec.Timestamp = now

	meta := l.collector.Collect(ctx)
	if rec.GitCommit == "" {
		rec.GitCommit = meta.Commit
	}
	if rec.GitBranch == "" {
		rec.GitBranch = meta.Branch
	}
	if rec.DeployedBy == "" {
		rec.DeployedBy = meta.User
	}

	file, err := l.read()
	if err != nil {
		return "", err
	}

	file.Deployments = append([]types.DeploymentRecord{rec}, file.Deployments...)
	file.Deployments = l.evict(file.Deployments, now)

	if err := l.write(file); err != nil {
		return "", err
	}
	return rec.ID, nil
}

// evict applies both retention limits to a most-recent-first list.
func (l *Ledger) evict(records []types.DeploymentRecord, now time.Time) []types.DeploymentRecord {
	if len(records) > l.maxRecords {
		records = records[:l.maxRecords]
	}
	cutoff := now.Add(-l.retention)
	kept := records[:0]
	for _, r := range records {
		if !r.Timestamp.Before(cutoff) {
			kept = append(kept, r)
		}
	}
	return kept
}

// Filter selects records for Query. Zero values mean "no constraint".
type Filter struct {
	Environment string
	Status      types.DeploymentStatus
	Limit       int
}

// Query returns records matching the filter, most recent first. Filtering
// happens before the limit is applied. A missing history file yields an
// empty list.
func (l *Ledger) Query(f Filter) ([]types.DeploymentRecord, error) {
	file, err := l.read()
	if err != nil {
		return nil, err
	}

	matched := make([]types.DeploymentRecord, 0, len(file.Deployments))
	for _, r := range file.Deployments {
		if f.Environment != "" && r.Environment != f.Environment {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		matched = append(matched, r)
	}
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, nil
}

// Get returns the record with the given id, or nil if unknown.
func (l *Ledger) Get(id string) (*types.DeploymentRecord, error) {
	file, err := l.read()
	if err != nil {
		return nil, err
	}
	for i := range file.Deployments {
		if file.Deployments[i].ID == id {
			return &file.Deployments[i], nil
		}
	}
	return nil, nil
}

// PrepareRollback builds the manual rollback plan for a recorded
// deployment. The plan is derived, never persisted.
func (l *Ledger) PrepareRollback(id string) (*types.RollbackPlan, error) {
	file, err := l.read()
	if err != nil {
		return nil, err
	}

	var target *types.DeploymentRecord
	for i := range file.Deployments {
		if file.Deployments[i].ID == id {
			target = &file.Deployments[i]
			break
		}
	}
	if target == nil {
		return nil, errdefs.New(errdefs.CodeRollbackNotFound,
			fmt.Sprintf("no deployment with id %q in history", id),
			"list recorded deployments: deployctl history")
	}

	// Most-recent-first, so the first record for the environment is the
	// current deployment.
	var current *types.DeploymentRecord
	for i := range file.Deployments {
		if file.Deployments[i].Environment == target.Environment {
			current = &file.Deployments[i]
			break
		}
	}

	now := l.now()
	plan := &types.RollbackPlan{
		TargetDeployment:  target,
		CurrentDeployment: current,
		CreatedAt:         now,
	}

	if target.GitCommit != "" {
		plan.Steps = append(plan.Steps,
			fmt.Sprintf("check out the recorded commit: git checkout %s", target.GitCommit))
	}
	if target.GitBranch != "" {
		plan.Steps = append(plan.Steps,
			fmt.Sprintf("or check out the recorded branch: git checkout %s", target.GitBranch))
	}
	plan.Steps = append(plan.Steps,
		"reinstall dependencies: npm install",
		fmt.Sprintf("redeploy the target environment: deployctl deploy %s", target.Environment),
		fmt.Sprintf("verify service health: deployctl health --environment %s", target.Environment),
	)

	if target.Environment == "production" {
		plan.Warnings = append(plan.Warnings,
			"production rollback: obtain approval before proceeding")
	}
	if current != nil && current.ID != target.ID && current.Version != target.Version {
		plan.Warnings = append(plan.Warnings,
			fmt.Sprintf("version changes from %s back to %s", current.Version, target.Version))
	}
	if now.Sub(target.Timestamp) > 7*24*time.Hour {
		plan.Warnings = append(plan.Warnings,
			fmt.Sprintf("target deployment is %d days old", int(now.Sub(target.Timestamp).Hours()/24)))
	}
	plan.Warnings = append(plan.Warnings,
		"database migrations applied since then may need manual reversal",
		"environment variables may have changed since this deployment",
	)

	return plan, nil
}

func (l *Ledger) read() (*ledgerFile, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ledgerFile{Version: ledgerVersion, Deployments: []types.DeploymentRecord{}}, nil
		}
		return nil, errdefs.Wrap(err, errdefs.CodeHistoryReadFailed,
			"failed to read deployment history")
	}

	var file ledgerFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, errdefs.Wrap(err, errdefs.CodeHistoryReadFailed,
			"deployment history is not valid JSON",
			fmt.Sprintf("inspect and fix %s", l.path))
	}
	if file.Version == "" {
		file.Version = ledgerVersion
	}
	return &file, nil
}

func (l *Ledger) write(file *ledgerFile) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return errdefs.Wrap(err, errdefs.CodeHistoryWriteFailed,
			"failed to create history directory")
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return errdefs.Wrap(err, errdefs.CodeHistoryWriteFailed,
			"failed to encode deployment history")
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return errdefs.Wrap(err, errdefs.CodeHistoryWriteFailed,
			"failed to write deployment history")
	}
	return nil
}
