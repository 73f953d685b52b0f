package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/devinsights/copilot-sync/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *config.GitHubConfig {
	return &config.GitHubConfig{
		BaseURL:    baseURL,
		Enterprise: "acme",
		Token:      "test-token",
		APIVersion: "2022-11-28",
		PageSize:   2,
		Timeout:    5 * time.Second,
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	require.NoError(t, err)
	return d
}

func TestListMetrics_SplitsRangeIntoRequestWindows(t *testing.T) {
	type window struct{ since, until string }
	var windows []window

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/enterprises/acme/copilot/metrics", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "2022-11-28", r.Header.Get("X-GitHub-Api-Version"))
		assert.Equal(t, "28", r.URL.Query().Get("per_page"))

		windows = append(windows, window{
			since: r.URL.Query().Get("since"),
			until: r.URL.Query().Get("until"),
		})
		fmt.Fprintf(w, `[{"date": %q}]`, r.URL.Query().Get("since"))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	// 61 days: two full 27-day windows plus a 7-day remainder.
	days, err := client.ListMetrics(context.Background(), mustDate(t, "2025-05-01"), mustDate(t, "2025-06-30"))
	require.NoError(t, err)

	require.Len(t, windows, 3)
	assert.Equal(t, window{"2025-05-01", "2025-05-27"}, windows[0])
	assert.Equal(t, window{"2025-05-28", "2025-06-23"}, windows[1])
	assert.Equal(t, window{"2025-06-24", "2025-06-30"}, windows[2])
	assert.Len(t, days, 3)
}

func TestListMetrics_DecodesEnvelopedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"metrics": [{"date": "2025-07-01", "total_active_users": 42}]}`)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	days, err := client.ListMetrics(context.Background(), mustDate(t, "2025-07-01"), mustDate(t, "2025-07-01"))
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "2025-07-01", days[0].Date)
	require.NotNil(t, days[0].TotalActiveUsers)
	assert.EqualValues(t, 42, *days[0].TotalActiveUsers)
}

func TestListSeats_Paginates(t *testing.T) {
	pages := map[string]string{
		"1": `{"total_seats": 3, "seats": [
			{"assignee": {"id": 1, "login": "alice", "type": "User"}},
			{"assignee": {"id": 2, "login": "bob", "type": "User"}}]}`,
		"2": `{"total_seats": 3, "seats": [
			{"assignee": {"id": 3, "login": "carol", "type": "User"}}]}`,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/enterprises/acme/copilot/billing/seats", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("per_page"))
		fmt.Fprint(w, pages[r.URL.Query().Get("page")])
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	seats, err := client.ListSeats(context.Background())
	require.NoError(t, err)
	require.Len(t, seats, 3)
	assert.Equal(t, "carol", seats[2].Assignee.Login)
}

func TestListTeamMembers_SkipsEntriesWithoutUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/enterprises/acme/teams/10/memberships", r.URL.Path)
		fmt.Fprint(w, `[{"user": {"id": 1, "login": "alice"}}, {"user": null}]`)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	members, err := client.ListTeamMembers(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "alice", members[0].Login)
}

func TestGet_NonOKStatusIsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message": "Bad credentials"}`)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.ListTeams(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.True(t, apiErr.IsAuthFailure())
	assert.Contains(t, apiErr.Error(), "Bad credentials")
}

func TestAuthenticatedUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user", r.URL.Path)
		w.Header().Set("X-Oauth-Scopes", "repo, read:org, manage_billing:copilot")
		json.NewEncoder(w).Encode(Assignee{ID: 1, Login: "alice"})
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	user, scopes, err := client.AuthenticatedUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Login)
	assert.Equal(t, []string{"repo", "read:org", "manage_billing:copilot"}, scopes)
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient(&config.GitHubConfig{Enterprise: "acme"})
	require.Error(t, err)

	_, err = NewClient(&config.GitHubConfig{Token: "t"})
	require.Error(t, err)
}
