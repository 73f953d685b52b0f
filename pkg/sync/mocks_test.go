package sync

import (
	"context"
	"time"

	"github.com/devinsights/copilot-sync/pkg/domo"
	"github.com/devinsights/copilot-sync/pkg/github"
)

// MockSourceAPI is a mock implementation of SourceAPI
type MockSourceAPI struct {
	ListMetricsFunc     func(ctx context.Context, since, until time.Time) ([]*github.DayMetrics, error)
	ListSeatsFunc       func(ctx context.Context) ([]*github.Seat, error)
	ListTeamsFunc       func(ctx context.Context) ([]*github.Team, error)
	ListTeamMembersFunc func(ctx context.Context, teamID int64) ([]*github.Assignee, error)
}

func (m *MockSourceAPI) ListMetrics(ctx context.Context, since, until time.Time) ([]*github.DayMetrics, error) {
	if m.ListMetricsFunc != nil {
		return m.ListMetricsFunc(ctx, since, until)
	}
	return nil, nil
}

func (m *MockSourceAPI) ListSeats(ctx context.Context) ([]*github.Seat, error) {
	if m.ListSeatsFunc != nil {
		return m.ListSeatsFunc(ctx)
	}
	return nil, nil
}

func (m *MockSourceAPI) ListTeams(ctx context.Context) ([]*github.Team, error) {
	if m.ListTeamsFunc != nil {
		return m.ListTeamsFunc(ctx)
	}
	return nil, nil
}

func (m *MockSourceAPI) ListTeamMembers(ctx context.Context, teamID int64) ([]*github.Assignee, error) {
	if m.ListTeamMembersFunc != nil {
		return m.ListTeamMembersFunc(ctx, teamID)
	}
	return nil, nil
}

// MockUploader is a mock implementation of Uploader
type MockUploader struct {
	UploadRowsFunc func(ctx context.Context, datasetID string, header []string, records [][]string, method domo.UpdateMethod) error
}

func (m *MockUploader) UploadRows(ctx context.Context, datasetID string, header []string, records [][]string, method domo.UpdateMethod) error {
	if m.UploadRowsFunc != nil {
		return m.UploadRowsFunc(ctx, datasetID, header, records, method)
	}
	return nil
}

// MockCheckpointStore is a mock implementation of CheckpointStore
type MockCheckpointStore struct {
	ReadFunc  func() (time.Time, bool, error)
	WriteFunc func(date time.Time) error
}

func (m *MockCheckpointStore) Read() (time.Time, bool, error) {
	if m.ReadFunc != nil {
		return m.ReadFunc()
	}
	return time.Time{}, false, nil
}

func (m *MockCheckpointStore) Write(date time.Time) error {
	if m.WriteFunc != nil {
		return m.WriteFunc(date)
	}
	return nil
}
