package sync

import (
	"context"
	"fmt"

	"github.com/devinsights/copilot-sync/internal/metrics"
	"github.com/devinsights/copilot-sync/pkg/domo"
	"go.uber.org/zap"
)

// Uploader pushes CSV row sets to the analytics destination.
type Uploader interface {
	UploadRows(ctx context.Context, datasetID string, header []string, records [][]string, method domo.UpdateMethod) error
}

// Result is the outcome of an upload dispatch.
type Result int

const (
	// ResultUploaded means the destination accepted the rows.
	ResultUploaded Result = iota
	// ResultSkipped means no network write happened by design: the dataset
	// is unconfigured or the run is in no-upload mode. Not a failure.
	ResultSkipped
)

func (r Result) String() string {
	if r == ResultSkipped {
		return "skipped"
	}
	return "uploaded"
}

// Dispatcher sends row sets to the destination, or deliberately skips.
type Dispatcher struct {
	uploader Uploader
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher. uploader may be nil when the process
// has no destination credentials; every dispatch then reports Skipped.
func NewDispatcher(uploader Uploader, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{uploader: uploader, logger: logger}
}

// Dispatch uploads records to datasetID with the given method. A dispatch
// never partially commits: the destination applies the CSV body as one unit.
func (d *Dispatcher) Dispatch(ctx context.Context, datasetID string, header []string, records [][]string, method domo.UpdateMethod, noUpload bool) (Result, error) {
	switch {
	case noUpload:
		d.logger.Info("Skipping upload (no-upload mode)", zap.String("dataset_id", datasetID))
	case datasetID == "":
		d.logger.Info("Skipping upload (no dataset configured)")
	case d.uploader == nil:
		d.logger.Info("Skipping upload (no destination credentials)")
	default:
		if err := d.uploader.UploadRows(ctx, datasetID, header, records, method); err != nil {
			metrics.UploadsTotal.WithLabelValues(datasetID, "failure").Inc()
			return ResultUploaded, fmt.Errorf("upload to dataset %s: %w", datasetID, err)
		}
		metrics.UploadsTotal.WithLabelValues(datasetID, "success").Inc()
		d.logger.Info("Upload complete",
			zap.String("dataset_id", datasetID),
			zap.String("method", string(method)),
			zap.Int("rows", len(records)))
		return ResultUploaded, nil
	}

	metrics.UploadsTotal.WithLabelValues(datasetID, "skipped").Inc()
	return ResultSkipped, nil
}
