package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/devinsights/copilot-sync/internal/metrics"
	"github.com/devinsights/copilot-sync/pkg/config"
	"github.com/devinsights/copilot-sync/pkg/domo"
	"github.com/devinsights/copilot-sync/pkg/github"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SourceAPI is the upstream fetch boundary.
type SourceAPI interface {
	ListMetrics(ctx context.Context, since, until time.Time) ([]*github.DayMetrics, error)
	ListSeats(ctx context.Context) ([]*github.Seat, error)
	ListTeams(ctx context.Context) ([]*github.Team, error)
	ListTeamMembers(ctx context.Context, teamID int64) ([]*github.Assignee, error)
}

// Status is a run's terminal state.
type Status int

const (
	// StatusCompleted means rows were fetched, flattened and uploaded.
	StatusCompleted Status = iota
	// StatusUpToDate means the planner found nothing to fetch.
	StatusUpToDate
	// StatusUploadSkipped means rows were produced but the upload was
	// deliberately skipped.
	StatusUploadSkipped
	// StatusNoData means the fetch window returned no days; the checkpoint
	// stays put so the window is retried next run.
	StatusNoData
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusUpToDate:
		return "up_to_date"
	case StatusUploadSkipped:
		return "upload_skipped"
	case StatusNoData:
		return "no_data"
	default:
		return "unknown"
	}
}

// Options carries the per-invocation run configuration.
type Options struct {
	Mode          RunMode
	StartOverride *time.Time
	EndOverride   *time.Time
}

// Engine runs one synchronization pass end to end: plan, fetch, flatten,
// snapshot, dispatch, and commit the checkpoint.
type Engine struct {
	cfg         *config.Config
	api         SourceAPI
	dispatcher  *Dispatcher
	checkpoints CheckpointStore
	snapshots   *SnapshotWriter
	logger      *zap.Logger

	now func() time.Time
}

// NewEngine creates a new synchronization engine.
func NewEngine(
	cfg *config.Config,
	api SourceAPI,
	dispatcher *Dispatcher,
	checkpoints CheckpointStore,
	snapshots *SnapshotWriter,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		cfg:         cfg,
		api:         api,
		dispatcher:  dispatcher,
		checkpoints: checkpoints,
		snapshots:   snapshots,
		logger:      logger,
		now:         time.Now,
	}
}

// RunMetrics synchronizes Copilot usage metrics for the planned fetch window.
func (e *Engine) RunMetrics(ctx context.Context, opts Options) (Status, error) {
	started := e.now()
	runID := uuid.NewString()
	logger := e.logger.With(zap.String("run_id", runID), zap.String("run", "metrics"))
	defer func() {
		metrics.RunDuration.WithLabelValues("metrics").Observe(e.now().Sub(started).Seconds())
	}()

	cp, haveCheckpoint, err := e.checkpoints.Read()
	if err != nil {
		return StatusCompleted, err
	}

	input := PlanInput{
		Today:         e.now(),
		Mode:          opts.Mode,
		StartOverride: opts.StartOverride,
		EndOverride:   opts.EndOverride,
		LookbackDays:  e.cfg.Sync.LookbackDays,
	}
	if haveCheckpoint {
		input.Checkpoint = &cp
	}
	if earliest, perr := time.ParseInLocation(dateLayout, e.cfg.Sync.EarliestDate, time.UTC); perr == nil {
		input.EarliestDate = earliest
	}

	window, fetch, err := PlanWindow(input)
	if err != nil {
		return StatusCompleted, err
	}
	if !fetch {
		logger.Info("Run finished",
			zap.String("status", StatusUpToDate.String()),
			zap.String("mode", opts.Mode.String()))
		return StatusUpToDate, nil
	}

	// No client-side dedup exists for APPEND; overlapping windows duplicate
	// rows at the destination.
	if haveCheckpoint && !window.Start.After(cp) && opts.Mode != ModeRerunNoUpload {
		logger.Warn("Fetch window overlaps checkpointed range; APPEND upload may duplicate rows",
			zap.String("window", window.String()),
			zap.String("checkpoint", cp.Format(dateLayout)))
	}

	logger.Info("Fetching Copilot metrics",
		zap.String("window", window.String()),
		zap.Int("days", window.Days()),
		zap.String("mode", opts.Mode.String()))

	days, err := e.api.ListMetrics(ctx, window.Start, window.End)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("fetch_metrics").Inc()
		return StatusCompleted, fmt.Errorf("fetch metrics for %s: %w", window, err)
	}
	if len(days) == 0 {
		logger.Info("Run finished",
			zap.String("status", StatusNoData.String()),
			zap.String("window", window.String()))
		return StatusNoData, nil
	}

	rows := FlattenMetrics(days)
	metrics.RowsFlattened.WithLabelValues("metrics").Add(float64(len(rows)))
	logger.Info("Flattened metrics payload",
		zap.Int("days", len(days)),
		zap.Int("rows", len(rows)))

	rawName, flatName := "metrics_raw.json", "metrics.json"
	if opts.Mode == ModeRerunNoUpload {
		suffix := TimestampSuffix(e.now())
		rawName = "metrics_raw_rerun_" + suffix + ".json"
		flatName = "metrics_rerun_" + suffix + ".json"
	}
	if _, err := e.snapshots.WriteJSON(rawName, days); err != nil {
		return StatusCompleted, err
	}
	if _, err := e.snapshots.WriteJSON(flatName, rows); err != nil {
		return StatusCompleted, err
	}

	result, err := e.dispatcher.Dispatch(ctx,
		e.cfg.Domo.MetricsDatasetID,
		MetricColumns, MetricRecords(rows),
		domo.UpdateAppend,
		opts.Mode == ModeRerunNoUpload)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("dispatch_metrics").Inc()
		return StatusCompleted, err
	}

	if err := e.commitCheckpoint(logger, days, opts.Mode); err != nil {
		return StatusCompleted, err
	}

	status := StatusCompleted
	if result == ResultSkipped {
		status = StatusUploadSkipped
	}
	logger.Info("Run finished",
		zap.String("status", status.String()),
		zap.String("window", window.String()),
		zap.Int("rows", len(rows)),
		zap.Duration("elapsed", e.now().Sub(started)))
	return status, nil
}

// commitCheckpoint advances the checkpoint to the latest fetched day. Both
// Uploaded and Skipped-by-design runs commit; a no-upload run commits only
// when configured to.
func (e *Engine) commitCheckpoint(logger *zap.Logger, days []*github.DayMetrics, mode RunMode) error {
	if mode == ModeRerunNoUpload && !e.cfg.Sync.AdvanceCheckpointOnDryRun {
		logger.Info("Checkpoint left untouched (no-upload run)")
		return nil
	}

	var latest string
	for _, d := range days {
		if d != nil && d.Date > latest {
			latest = d.Date
		}
	}
	if latest == "" {
		return nil
	}

	date, err := time.ParseInLocation(dateLayout, latest, time.UTC)
	if err != nil {
		return fmt.Errorf("parse latest metrics date %q: %w", latest, err)
	}
	if err := e.checkpoints.Write(date); err != nil {
		return fmt.Errorf("advance checkpoint: %w", err)
	}

	metrics.LastSyncedDate.Set(float64(date.Unix()))
	logger.Info("Checkpoint advanced", zap.String("date", latest))
	return nil
}

// RunUsers synchronizes the user/team directory. Directory snapshots are
// point-in-time facts, so uploads replace the dataset and no checkpoint is
// involved.
func (e *Engine) RunUsers(ctx context.Context, opts Options) (Status, error) {
	started := e.now()
	runID := uuid.NewString()
	logger := e.logger.With(zap.String("run_id", runID), zap.String("run", "users"))
	defer func() {
		metrics.RunDuration.WithLabelValues("users").Observe(e.now().Sub(started).Seconds())
	}()

	seats, err := e.api.ListSeats(ctx)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("fetch_seats").Inc()
		return StatusCompleted, fmt.Errorf("fetch seats: %w", err)
	}
	users := BuildUserRows(seats)
	logger.Info("Fetched Copilot seats",
		zap.Int("seats", len(seats)),
		zap.Int("users", len(users)))

	teams, err := e.api.ListTeams(ctx)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("fetch_teams").Inc()
		return StatusCompleted, fmt.Errorf("fetch teams: %w", err)
	}

	idx := NewTeamIndex()
	for _, team := range teams {
		members, err := e.api.ListTeamMembers(ctx, team.ID)
		if err != nil {
			metrics.ErrorsTotal.WithLabelValues("fetch_team_members").Inc()
			return StatusCompleted, fmt.Errorf("fetch members of team %q: %w", team.Name, err)
		}
		for _, m := range members {
			idx.Add(m.Login, team)
		}
		logger.Debug("Indexed team roster",
			zap.String("team", team.Name),
			zap.Int("members", len(members)))
	}

	rows := FlattenUsers(users, idx)
	metrics.RowsFlattened.WithLabelValues("users").Add(float64(len(rows)))
	logger.Info("Flattened user directory",
		zap.Int("users", len(users)),
		zap.Int("teams", len(teams)),
		zap.Int("rows", len(rows)))

	rawName, flatName := "github_org_users.json", "github_users_flattened.json"
	if opts.Mode == ModeRerunNoUpload {
		suffix := TimestampSuffix(e.now())
		rawName = "github_org_users_" + suffix + ".json"
		flatName = "github_users_flattened_" + suffix + ".json"
	}
	if _, err := e.snapshots.WriteJSON(rawName, users); err != nil {
		return StatusCompleted, err
	}
	if _, err := e.snapshots.WriteJSON(flatName, rows); err != nil {
		return StatusCompleted, err
	}

	result, err := e.dispatcher.Dispatch(ctx,
		e.cfg.Domo.UsersDatasetID,
		UserTeamColumns, UserTeamRecords(rows),
		domo.UpdateReplace,
		opts.Mode == ModeRerunNoUpload)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("dispatch_users").Inc()
		return StatusCompleted, err
	}

	status := StatusCompleted
	if result == ResultSkipped {
		status = StatusUploadSkipped
	}
	logger.Info("Run finished",
		zap.String("status", status.String()),
		zap.Int("rows", len(rows)),
		zap.Duration("elapsed", e.now().Sub(started)))
	return status, nil
}
