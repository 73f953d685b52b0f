package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/devinsights/copilot-sync/pkg/domo"
	"go.uber.org/zap"
)

func TestDispatcher_Uploads(t *testing.T) {
	var gotDataset string
	var gotMethod domo.UpdateMethod
	var gotRows int

	uploader := &MockUploader{
		UploadRowsFunc: func(ctx context.Context, datasetID string, header []string, records [][]string, method domo.UpdateMethod) error {
			gotDataset = datasetID
			gotMethod = method
			gotRows = len(records)
			return nil
		},
	}

	d := NewDispatcher(uploader, zap.NewNop())
	result, err := d.Dispatch(context.Background(), "ds-1", MetricColumns, [][]string{{"a"}, {"b"}}, domo.UpdateAppend, false)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if result != ResultUploaded {
		t.Errorf("Expected ResultUploaded, got %s", result)
	}
	if gotDataset != "ds-1" || gotMethod != domo.UpdateAppend || gotRows != 2 {
		t.Errorf("Unexpected upload call: dataset=%s method=%s rows=%d", gotDataset, gotMethod, gotRows)
	}
}

func TestDispatcher_SkipReasons(t *testing.T) {
	uploader := &MockUploader{
		UploadRowsFunc: func(context.Context, string, []string, [][]string, domo.UpdateMethod) error {
			t.Error("upload must not be called on a skip path")
			return nil
		},
	}

	cases := []struct {
		name      string
		d         *Dispatcher
		datasetID string
		noUpload  bool
	}{
		{name: "no-upload mode", d: NewDispatcher(uploader, zap.NewNop()), datasetID: "ds-1", noUpload: true},
		{name: "no dataset configured", d: NewDispatcher(uploader, zap.NewNop()), datasetID: ""},
		{name: "no destination credentials", d: NewDispatcher(nil, zap.NewNop()), datasetID: "ds-1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := tc.d.Dispatch(context.Background(), tc.datasetID, MetricColumns, [][]string{{"a"}}, domo.UpdateAppend, tc.noUpload)
			if err != nil {
				t.Fatalf("Dispatch failed: %v", err)
			}
			if result != ResultSkipped {
				t.Errorf("Expected ResultSkipped, got %s", result)
			}
		})
	}
}

func TestDispatcher_UploadFailure(t *testing.T) {
	wantErr := errors.New("boom")
	uploader := &MockUploader{
		UploadRowsFunc: func(context.Context, string, []string, [][]string, domo.UpdateMethod) error {
			return wantErr
		},
	}

	d := NewDispatcher(uploader, zap.NewNop())
	_, err := d.Dispatch(context.Background(), "ds-1", MetricColumns, [][]string{{"a"}}, domo.UpdateReplace, false)
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected wrapped upload error, got %v", err)
	}
}
