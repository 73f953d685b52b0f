// Package github implements the subset of the GitHub REST API the sync
// pipeline consumes: Copilot usage metrics, Copilot billing seats, and
// enterprise team rosters.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/devinsights/copilot-sync/internal/metrics"
	"github.com/devinsights/copilot-sync/pkg/config"
	"go.uber.org/zap"
)

const (
	acceptHeader = "application/vnd.github+json"

	// The metrics endpoint serves at most 28 days per request; staying one
	// under keeps the request windows aligned with the per_page cap.
	metricsMaxDays   = 27
	metricsPerPage   = 28
	dateFormat       = "2006-01-02"
	scopesHeader     = "X-Oauth-Scopes"
	apiVersionHeader = "X-GitHub-Api-Version"
)

// Client talks to the GitHub REST API for one enterprise or organization.
type Client struct {
	cfg        *config.GitHubConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new GitHub API client.
func NewClient(cfg *config.GitHubConfig, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("github token is required")
	}
	if cfg.Enterprise == "" {
		return nil, fmt.Errorf("github enterprise slug is required")
	}

	s := applyOptions(opts)
	httpClient := s.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     s.logger,
	}, nil
}

// ListMetrics fetches Copilot usage metrics for the inclusive date range,
// splitting the range into request windows the API accepts. Any window
// failure aborts the whole fetch; partial results are never returned.
func (c *Client) ListMetrics(ctx context.Context, since, until time.Time) ([]*DayMetrics, error) {
	var all []*DayMetrics

	current := since
	for !current.After(until) {
		windowEnd := current.AddDate(0, 0, metricsMaxDays-1)
		if windowEnd.After(until) {
			windowEnd = until
		}

		c.logger.Info("Fetching Copilot metrics window",
			zap.String("since", current.Format(dateFormat)),
			zap.String("until", windowEnd.Format(dateFormat)))

		q := url.Values{}
		q.Set("since", current.Format(dateFormat))
		q.Set("until", windowEnd.Format(dateFormat))
		q.Set("per_page", strconv.Itoa(metricsPerPage))

		endpoint := fmt.Sprintf("/enterprises/%s/copilot/metrics", c.cfg.Enterprise)
		body, err := c.get(ctx, endpoint, q)
		if err != nil {
			return nil, err
		}

		days, err := decodeMetrics(body)
		if err != nil {
			return nil, fmt.Errorf("decode metrics window %s..%s: %w",
				current.Format(dateFormat), windowEnd.Format(dateFormat), err)
		}
		all = append(all, days...)

		current = windowEnd.AddDate(0, 0, 1)
	}

	c.logger.Info("Fetched Copilot metrics", zap.Int("days", len(all)))
	return all, nil
}

// decodeMetrics accepts both the bare day array and the enveloped form some
// deployments return.
func decodeMetrics(body []byte) ([]*DayMetrics, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var days []*DayMetrics
		if err := json.Unmarshal(body, &days); err != nil {
			return nil, err
		}
		return days, nil
	}
	var env metricsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	return env.Metrics, nil
}

// ListSeats fetches all Copilot billing seats for the enterprise.
func (c *Client) ListSeats(ctx context.Context) ([]*Seat, error) {
	endpoint := fmt.Sprintf("/enterprises/%s/copilot/billing/seats", c.cfg.Enterprise)

	var seats []*Seat
	for page := 1; ; page++ {
		body, err := c.get(ctx, endpoint, c.pageQuery(page))
		if err != nil {
			return nil, err
		}

		var pg seatsPage
		if err := json.Unmarshal(body, &pg); err != nil {
			return nil, fmt.Errorf("decode seats page %d: %w", page, err)
		}
		if len(pg.Seats) == 0 {
			break
		}
		seats = append(seats, pg.Seats...)
		if len(pg.Seats) < c.cfg.PageSize {
			break
		}
	}

	c.logger.Info("Fetched Copilot seats", zap.Int("count", len(seats)))
	return seats, nil
}

// ListTeams fetches all teams for the enterprise.
func (c *Client) ListTeams(ctx context.Context) ([]*Team, error) {
	endpoint := fmt.Sprintf("/enterprises/%s/teams", c.cfg.Enterprise)

	var teams []*Team
	for page := 1; ; page++ {
		body, err := c.get(ctx, endpoint, c.pageQuery(page))
		if err != nil {
			return nil, err
		}

		var batch []*Team
		if err := json.Unmarshal(body, &batch); err != nil {
			return nil, fmt.Errorf("decode teams page %d: %w", page, err)
		}
		if len(batch) == 0 {
			break
		}
		teams = append(teams, batch...)
		if len(batch) < c.cfg.PageSize {
			break
		}
	}

	c.logger.Info("Fetched enterprise teams", zap.Int("count", len(teams)))
	return teams, nil
}

// ListTeamMembers fetches the members of one enterprise team.
func (c *Client) ListTeamMembers(ctx context.Context, teamID int64) ([]*Assignee, error) {
	endpoint := fmt.Sprintf("/enterprises/%s/teams/%d/memberships", c.cfg.Enterprise, teamID)

	var members []*Assignee
	for page := 1; ; page++ {
		body, err := c.get(ctx, endpoint, c.pageQuery(page))
		if err != nil {
			return nil, err
		}

		var batch []*membership
		if err := json.Unmarshal(body, &batch); err != nil {
			return nil, fmt.Errorf("decode memberships page %d: %w", page, err)
		}
		if len(batch) == 0 {
			break
		}
		for _, m := range batch {
			if m.User != nil {
				members = append(members, m.User)
			}
		}
		if len(batch) < c.cfg.PageSize {
			break
		}
	}

	return members, nil
}

// AuthenticatedUser returns the token's user and its OAuth scopes. Used by
// the connectivity check.
func (c *Client) AuthenticatedUser(ctx context.Context) (*Assignee, []string, error) {
	req, err := c.newRequest(ctx, "/user", nil)
	if err != nil {
		return nil, nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("github: request /user: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("github: read /user response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, &APIError{StatusCode: resp.StatusCode, Endpoint: "/user", Body: truncateBody(body)}
	}

	var user Assignee
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, nil, fmt.Errorf("decode /user: %w", err)
	}

	var scopes []string
	for _, s := range strings.Split(resp.Header.Get(scopesHeader), ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return &user, scopes, nil
}

func (c *Client) pageQuery(page int) url.Values {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(c.cfg.PageSize))
	q.Set("page", strconv.Itoa(page))
	return q
}

func (c *Client) newRequest(ctx context.Context, endpoint string, q url.Values) (*http.Request, error) {
	u := c.cfg.BaseURL + endpoint
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("github: build request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set(apiVersionHeader, c.cfg.APIVersion)
	return req, nil
}

func (c *Client) get(ctx context.Context, endpoint string, q url.Values) ([]byte, error) {
	req, err := c.newRequest(ctx, endpoint, q)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues("github", "transport_error").Inc()
		return nil, fmt.Errorf("github: request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	metrics.APIRequestsTotal.WithLabelValues("github", strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("github: read %s response: %w", endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Endpoint: endpoint, Body: truncateBody(body)}
	}
	return body, nil
}
