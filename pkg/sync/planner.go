package sync

import (
	"errors"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// RunMode selects how a synchronization run treats the checkpoint and the
// upload dispatcher. Consumed by the planner and the engine as plain data.
type RunMode int

const (
	// ModeNormal is the incremental daily run.
	ModeNormal RunMode = iota
	// ModeRerun forces a fetch that includes the checkpointed date, to
	// repair a partial prior write.
	ModeRerun
	// ModeRerunNoUpload is a rerun that skips the destination upload and
	// routes output to timestamped local files.
	ModeRerunNoUpload
)

func (m RunMode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeRerun:
		return "rerun"
	case ModeRerunNoUpload:
		return "rerun_no_upload"
	default:
		return "unknown"
	}
}

// ErrInvalidOverride is returned when an explicit date-range override cannot
// produce a fetchable window. Detected before any network call.
var ErrInvalidOverride = errors.New("invalid date-range override")

// Window is an inclusive fetch date range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Days returns the number of calendar days covered by the window.
func (w Window) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

func (w Window) String() string {
	return w.Start.Format(dateLayout) + ".." + w.End.Format(dateLayout)
}

// PlanInput is everything the planner needs to choose a fetch window.
type PlanInput struct {
	// Checkpoint is the persisted last-synchronized date; nil when absent.
	Checkpoint *time.Time
	// Today is the current date; the upstream never serves same-day data,
	// so windows end at Today-1.
	Today time.Time
	Mode  RunMode
	// StartOverride/EndOverride form an explicit backfill window. Both must
	// be set together, and only in a rerun mode.
	StartOverride *time.Time
	EndOverride   *time.Time
	// LookbackDays bounds the first-run window when no checkpoint exists.
	LookbackDays int
	// EarliestDate floors the first-run window.
	EarliestDate time.Time
}

// PlanWindow computes the fetch window for a run. ok=false means the run is
// already up to date, a non-error terminal state.
func PlanWindow(in PlanInput) (w Window, ok bool, err error) {
	today := dateOnly(in.Today)
	yesterday := today.AddDate(0, 0, -1)

	if in.StartOverride != nil || in.EndOverride != nil {
		return planOverride(in, yesterday)
	}

	if in.Checkpoint == nil {
		return planLookback(in, yesterday)
	}

	cp := dateOnly(*in.Checkpoint)
	start := cp.AddDate(0, 0, 1)
	if in.Mode != ModeNormal {
		// Forced reruns re-fetch the checkpointed day itself.
		start = cp
	} else if !cp.Before(yesterday) {
		return Window{}, false, nil
	}

	if start.After(yesterday) {
		return Window{}, false, nil
	}
	return Window{Start: start, End: yesterday}, true, nil
}

func planOverride(in PlanInput, yesterday time.Time) (Window, bool, error) {
	if in.StartOverride == nil || in.EndOverride == nil {
		return Window{}, false, fmt.Errorf("%w: start and end must be set together", ErrInvalidOverride)
	}
	if in.Mode == ModeNormal {
		return Window{}, false, fmt.Errorf("%w: explicit dates require a rerun mode", ErrInvalidOverride)
	}

	start := dateOnly(*in.StartOverride)
	end := dateOnly(*in.EndOverride)
	if start.After(end) {
		return Window{}, false, fmt.Errorf("%w: start %s is after end %s",
			ErrInvalidOverride, start.Format(dateLayout), end.Format(dateLayout))
	}

	// The upstream has no same-day data; clip rather than fail.
	if end.After(yesterday) {
		end = yesterday
	}
	if start.After(end) {
		return Window{}, false, fmt.Errorf("%w: range is entirely in the future", ErrInvalidOverride)
	}
	return Window{Start: start, End: end}, true, nil
}

func planLookback(in PlanInput, yesterday time.Time) (Window, bool, error) {
	start := yesterday.AddDate(0, 0, -(in.LookbackDays - 1))
	if !in.EarliestDate.IsZero() && start.Before(in.EarliestDate) {
		start = dateOnly(in.EarliestDate)
	}
	if start.After(yesterday) {
		return Window{}, false, nil
	}
	return Window{Start: start, End: yesterday}, true, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
