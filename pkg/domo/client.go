// Package domo implements the Domo dataset operations the sync pipeline
// needs: CSV data pushes, dataset provisioning, and schema retrieval.
package domo

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/devinsights/copilot-sync/pkg/config"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// APIError is a non-2xx response from the Domo API.
type APIError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("domo: %s returned %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Client talks to the Domo platform API. Token acquisition and refresh is
// handled by the OAuth2 client-credentials transport.
type Client struct {
	cfg        *config.DomoConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new Domo API client.
func NewClient(cfg *config.DomoConfig, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("domo client credentials are required")
	}

	s := applyOptions(opts)

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.BaseURL + "/oauth/token",
		Scopes:       []string{"data"},
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	ctx := context.Background()
	if s.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	}
	httpClient := cc.Client(ctx)
	httpClient.Timeout = cfg.Timeout

	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     s.logger,
	}, nil
}

// UploadRows pushes rows to a dataset as CSV using the given update method.
// A failed push adds nothing in APPEND mode and leaves prior contents intact
// in REPLACE mode; Domo applies the body transactionally.
func (c *Client) UploadRows(ctx context.Context, datasetID string, header []string, records [][]string, method UpdateMethod) error {
	if datasetID == "" {
		return fmt.Errorf("domo: empty dataset id")
	}
	if len(records) == 0 {
		return fmt.Errorf("domo: no rows to upload")
	}

	// A REPLACE rewrites the whole dataset, so the rows must line up with the
	// dataset's current column order, not the producer's.
	if method == UpdateReplace {
		ds, err := c.GetDataset(ctx, datasetID)
		if err != nil {
			return fmt.Errorf("domo: fetch schema before replace: %w", err)
		}
		if len(ds.Schema.Columns) > 0 {
			header, records = ds.Schema.Align(header, records)
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("domo: encode csv header: %w", err)
	}
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("domo: encode csv rows: %w", err)
	}

	endpoint := fmt.Sprintf("/v1/datasets/%s/data?updateMethod=%s", datasetID, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.cfg.BaseURL+endpoint, &buf)
	if err != nil {
		return fmt.Errorf("domo: build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "text/csv")

	c.logger.Info("Uploading rows to Domo dataset",
		zap.String("dataset_id", datasetID),
		zap.String("update_method", string(method)),
		zap.Int("rows", len(records)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("domo: upload to dataset %s: %w", datasetID, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return &APIError{StatusCode: resp.StatusCode, Endpoint: endpoint, Body: truncateBody(body)}
	}

	c.logger.Info("Domo upload complete", zap.String("dataset_id", datasetID))
	return nil
}

// CreateDataset provisions a new dataset and returns its ID.
func (c *Client) CreateDataset(ctx context.Context, name, description string, schema Schema) (string, error) {
	payload, err := json.Marshal(createDatasetRequest{
		Name:        name,
		Description: description,
		Rows:        0,
		Schema:      schema,
	})
	if err != nil {
		return "", fmt.Errorf("domo: encode dataset request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/datasets", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("domo: build dataset request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("domo: create dataset: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("domo: read dataset response: %w", err)
	}
	if resp.StatusCode != http.StatusCreated {
		return "", &APIError{StatusCode: resp.StatusCode, Endpoint: "/v1/datasets", Body: truncateBody(body)}
	}

	var ds Dataset
	if err := json.Unmarshal(body, &ds); err != nil {
		return "", fmt.Errorf("domo: decode dataset response: %w", err)
	}

	c.logger.Info("Created Domo dataset",
		zap.String("dataset_id", ds.ID),
		zap.String("name", name),
		zap.Int("columns", len(schema.Columns)))
	return ds.ID, nil
}

// GetDataset fetches a dataset's metadata including its schema.
func (c *Client) GetDataset(ctx context.Context, datasetID string) (*Dataset, error) {
	endpoint := "/v1/datasets/" + datasetID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("domo: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("domo: get dataset %s: %w", datasetID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("domo: read dataset response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Endpoint: endpoint, Body: truncateBody(body)}
	}

	var ds Dataset
	if err := json.Unmarshal(body, &ds); err != nil {
		return nil, fmt.Errorf("domo: decode dataset response: %w", err)
	}
	return &ds, nil
}

// ListDatasets returns up to limit datasets. Used by the connectivity check.
func (c *Client) ListDatasets(ctx context.Context, limit int) ([]*Dataset, error) {
	endpoint := "/v1/datasets?limit=" + strconv.Itoa(limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("domo: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("domo: list datasets: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("domo: read datasets response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Endpoint: "/v1/datasets", Body: truncateBody(body)}
	}

	var datasets []*Dataset
	if err := json.Unmarshal(body, &datasets); err != nil {
		return nil, fmt.Errorf("domo: decode datasets response: %w", err)
	}
	return datasets, nil
}

const maxErrorBody = 512

func truncateBody(b []byte) string {
	if len(b) > maxErrorBody {
		return string(b[:maxErrorBody]) + "..."
	}
	return string(b)
}
